package sentiment

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactsRoundTrip(t *testing.T) {
	artifacts, report := trainFixture(t)
	dir := filepath.Join(t.TempDir(), "model")
	require.NoError(t, artifacts.Write(dir, report))

	for _, name := range []string{ClassifierFile, VectorizerFile, LabelsFile, ReportFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	loaded, err := ArtifactsFromDisk(dir)
	require.NoError(t, err)
	assert.Equal(t, artifacts.RunID, loaded.RunID)
	assert.True(t, artifacts.TrainedAt.Equal(loaded.TrainedAt))
	assert.Equal(t, artifacts.Codec.Labels(), loaded.Codec.Labels())
	assert.Equal(t, artifacts.Vectorizer.Vocabulary(), loaded.Vectorizer.Vocabulary())

	original, err := NewPipeline(artifacts)
	require.NoError(t, err)
	restored, err := NewPipeline(loaded)
	require.NoError(t, err)
	for _, text := range []string{"fantastic superb", "awful and horrible", "the agenda of the meeting", "unknown words"} {
		want, err := original.Score(context.Background(), text)
		require.NoError(t, err)
		got, err := restored.Score(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, want, got, text)
	}

	stored, err := ReportFromFS(os.DirFS(dir))
	require.NoError(t, err)
	assert.Equal(t, report.RunID, stored.RunID)
	assert.Equal(t, report.Search.Best, stored.Search.Best)
	assert.Equal(t, report.TestAccuracy, stored.TestAccuracy)
}

func TestArtifactsWriteReplaces(t *testing.T) {
	first, _ := trainFixture(t)
	second, _ := trainFixture(t)
	dir := filepath.Join(t.TempDir(), "model")

	require.NoError(t, first.Write(dir, nil))
	require.NoError(t, second.Write(dir, nil))

	loaded, err := ArtifactsFromDisk(dir)
	require.NoError(t, err)
	assert.Equal(t, second.RunID, loaded.RunID)
	assert.NoFileExists(t, filepath.Join(dir, ReportFile))

	entries, err := os.ReadDir(filepath.Dir(dir))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary directories are cleaned up")
}

func TestArtifactsPartialSet(t *testing.T) {
	artifacts, _ := trainFixture(t)
	dir := filepath.Join(t.TempDir(), "model")
	require.NoError(t, artifacts.Write(dir, nil))

	for _, name := range []string{ClassifierFile, VectorizerFile, LabelsFile} {
		t.Run(name, func(t *testing.T) {
			files := fstest.MapFS{}
			for _, other := range []string{ClassifierFile, VectorizerFile, LabelsFile} {
				if other == name {
					continue
				}
				data, err := os.ReadFile(filepath.Join(dir, other))
				require.NoError(t, err)
				files[other] = &fstest.MapFile{Data: data}
			}

			_, err := ArtifactsFromFS(files)
			assert.True(t, IsKind(err, KindArtifactMissing), "got %v", err)
		})
	}
}

func TestArtifactsCorrupt(t *testing.T) {
	artifacts, _ := trainFixture(t)
	dir := filepath.Join(t.TempDir(), "model")
	require.NoError(t, artifacts.Write(dir, nil))

	for _, name := range []string{ClassifierFile, VectorizerFile, LabelsFile} {
		t.Run(name, func(t *testing.T) {
			files := fstest.MapFS{}
			for _, other := range []string{ClassifierFile, VectorizerFile, LabelsFile} {
				data, err := os.ReadFile(filepath.Join(dir, other))
				require.NoError(t, err)
				files[other] = &fstest.MapFile{Data: data}
			}
			files[name] = &fstest.MapFile{Data: []byte("not a gob stream")}

			_, err := ArtifactsFromFS(files)
			assert.True(t, IsKind(err, KindArtifactCorrupt), "got %v", err)
		})
	}
}

func TestArtifactsMixedRuns(t *testing.T) {
	first, _ := trainFixture(t)
	second, _ := trainFixture(t)
	root := t.TempDir()
	dirA, dirB := filepath.Join(root, "a"), filepath.Join(root, "b")
	require.NoError(t, first.Write(dirA, nil))
	require.NoError(t, second.Write(dirB, nil))

	data, err := os.ReadFile(filepath.Join(dirB, LabelsFile))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dirA, LabelsFile), data, 0o644))

	_, err = ArtifactsFromDisk(dirA)
	assert.True(t, IsKind(err, KindCodecMismatch), "got %v", err)
}

func TestArtifactsValidate(t *testing.T) {
	artifacts, _ := trainFixture(t)

	tests := []struct {
		desc   string
		mutate func(a *Artifacts)
		kind   ErrorKind
	}{
		{"No classifier", func(a *Artifacts) { a.Classifier = nil }, KindArtifactMissing},
		{"No vectorizer", func(a *Artifacts) { a.Vectorizer = nil }, KindArtifactMissing},
		{"No codec", func(a *Artifacts) { a.Codec = nil }, KindArtifactMissing},
		{"Dimension mismatch", func(a *Artifacts) {
			clf := *a.Classifier
			clf.Dim++
			a.Classifier = &clf
		}, KindCodecMismatch},
		{"Short weights", func(a *Artifacts) {
			a.Classifier = reshaped(a.Classifier, func(m *machine) { m.Weights = m.Weights[:len(m.Weights)-1] })
		}, KindArtifactCorrupt},
		{"Unknown kernel", func(a *Artifacts) {
			clf := *a.Classifier
			clf.Params.Kernel = "poly"
			a.Classifier = &clf
		}, KindArtifactCorrupt},
		{"Support vector outside dimension", func(a *Artifacts) {
			dim := a.Classifier.Dim
			clf := reshaped(a.Classifier, func(m *machine) {
				*m = machine{
					SupportVectors: []FeatureVector{{Dim: dim, Indices: []int{dim}, Values: []float64{1}}},
					Coef:           []float64{1},
					SVNorms:        []float64{1},
				}
			})
			clf.Params.Kernel = RBFKernel
			a.Classifier = clf
		}, KindArtifactCorrupt},
		{"Missing coefficients", func(a *Artifacts) {
			dim := a.Classifier.Dim
			clf := reshaped(a.Classifier, func(m *machine) {
				*m = machine{
					SupportVectors: []FeatureVector{{Dim: dim, Indices: []int{0}, Values: []float64{1}}},
					SVNorms:        []float64{1},
				}
			})
			clf.Params.Kernel = RBFKernel
			a.Classifier = clf
		}, KindArtifactCorrupt},
		{"Class count mismatch", func(a *Artifacts) {
			codec := NewLabelCodec()
			_ = codec.Fit([]string{"negative", "positive"})
			a.Codec = codec
		}, KindCodecMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			copied := *artifacts
			tt.mutate(&copied)
			err := copied.Validate()
			assert.True(t, IsKind(err, tt.kind), "got %v", err)
			assert.True(t, IsKind(copied.Write(filepath.Join(t.TempDir(), "m"), nil), tt.kind))
		})
	}
}

// reshaped returns a copy of clf with change applied to every machine.
func reshaped(clf *Classifier, change func(m *machine)) *Classifier {
	out := *clf
	out.Machines = make([]machine, len(clf.Machines))
	for k, m := range clf.Machines {
		m.Weights = append([]float64(nil), m.Weights...)
		change(&m)
		out.Machines[k] = m
	}
	return &out
}

func TestArtifactsMalformedClassifier(t *testing.T) {
	artifacts, _ := trainFixture(t)
	dir := filepath.Join(t.TempDir(), "model")
	require.NoError(t, artifacts.Write(dir, nil))

	broken := reshaped(artifacts.Classifier, func(m *machine) { m.Weights = m.Weights[:1] })
	hdr := header{Format: artifactFormat, RunID: artifacts.RunID, TrainedAt: artifacts.TrainedAt}
	require.NoError(t, writeGob(filepath.Join(dir, ClassifierFile), hdr, broken))

	_, err := ArtifactsFromDisk(dir)
	assert.True(t, IsKind(err, KindArtifactCorrupt), "got %v", err)

	scorer, err := NewScorer(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, LexiconBackend, scorer.Backend())
}
