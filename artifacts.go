package sentiment

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Artifact file names inside a model directory.
const (
	ClassifierFile = "classifier.gob"
	VectorizerFile = "vectorizer.gob"
	LabelsFile     = "labels.gob"
	ReportFile     = "report.json"
)

const artifactFormat = 1

// Artifacts is the immutable result of one training run. It is built once at
// startup and shared by every inference call without locking.
type Artifacts struct {
	RunID      string
	TrainedAt  time.Time
	Classifier *Classifier
	Vectorizer *Vectorizer
	Codec      *LabelCodec
}

// header precedes the payload of every artifact file so a loader can refuse
// to combine files from different runs.
type header struct {
	Format    int
	RunID     string
	TrainedAt time.Time
}

// Validate checks that the three artifacts are present, agree with each other
// and that the classifier is well formed.
func (a *Artifacts) Validate() error {
	switch {
	case a.Classifier == nil:
		return newError(KindArtifactMissing, "classifier not loaded", nil)
	case a.Vectorizer == nil:
		return newError(KindArtifactMissing, "vectorizer not loaded", nil)
	case a.Codec == nil:
		return newError(KindArtifactMissing, "label codec not loaded", nil)
	}
	if a.Classifier.Dim != a.Vectorizer.Len() {
		return newError(KindCodecMismatch,
			fmt.Sprintf("classifier expects %d features, vectorizer produces %d", a.Classifier.Dim, a.Vectorizer.Len()), nil)
	}
	if a.Classifier.NumClasses() != a.Codec.Len() {
		return newError(KindCodecMismatch,
			fmt.Sprintf("classifier has %d classes, label codec has %d", a.Classifier.NumClasses(), a.Codec.Len()), nil)
	}
	return a.Classifier.validate()
}

// Write saves the artifacts, and report when non-nil, to path. Files are
// written into a temporary sibling directory that then replaces path, so
// readers see either the previous set or the complete new one.
func (a *Artifacts) Write(path string, report *Report) error {
	if err := a.Validate(); err != nil {
		return err
	}

	parent := filepath.Dir(path)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return err
	}
	tmp, err := os.MkdirTemp(parent, "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	hdr := header{Format: artifactFormat, RunID: a.RunID, TrainedAt: a.TrainedAt}
	files := []struct {
		name    string
		payload any
	}{
		{ClassifierFile, a.Classifier},
		{VectorizerFile, a.Vectorizer},
		{LabelsFile, a.Codec},
	}
	for _, f := range files {
		if err := writeGob(filepath.Join(tmp, f.name), hdr, f.payload); err != nil {
			return fmt.Errorf("writing %s: %w", f.name, err)
		}
	}
	if report != nil {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(tmp, ReportFile), data, 0o644); err != nil {
			return err
		}
	}

	var previous string
	if _, err := os.Stat(path); err == nil {
		previous = fmt.Sprintf("%s.old-%d", path, time.Now().UnixNano())
		if err := os.Rename(path, previous); err != nil {
			return err
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		if previous != "" {
			_ = os.Rename(previous, path)
		}
		return err
	}
	if previous != "" {
		return os.RemoveAll(previous)
	}
	return nil
}

func writeGob(name string, hdr header, payload any) error {
	file, err := os.Create(name)
	if err != nil {
		return err
	}
	enc := gob.NewEncoder(file)
	if err := enc.Encode(hdr); err != nil {
		file.Close()
		return err
	}
	if err := enc.Encode(payload); err != nil {
		file.Close()
		return err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// ArtifactsFromDisk loads artifacts from the directory at path.
func ArtifactsFromDisk(path string) (*Artifacts, error) {
	return ArtifactsFromFS(os.DirFS(path))
}

// ArtifactsFromFS loads artifacts from the root of filesys. A set with any
// file missing is treated as no model at all, and files stamped with
// different run ids are rejected.
func ArtifactsFromFS(filesys fs.FS) (*Artifacts, error) {
	for _, name := range []string{ClassifierFile, VectorizerFile, LabelsFile} {
		if _, err := fs.Stat(filesys, name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, newError(KindArtifactMissing, name+" not found", err)
			}
			return nil, newError(KindArtifactCorrupt, name+" unreadable", err)
		}
	}

	var (
		classifier Classifier
		vectorizer Vectorizer
		codec      LabelCodec
	)
	clfHdr, err := readGob(filesys, ClassifierFile, &classifier)
	if err != nil {
		return nil, err
	}
	vecHdr, err := readGob(filesys, VectorizerFile, &vectorizer)
	if err != nil {
		return nil, err
	}
	codecHdr, err := readGob(filesys, LabelsFile, &codec)
	if err != nil {
		return nil, err
	}
	if clfHdr.RunID != vecHdr.RunID || clfHdr.RunID != codecHdr.RunID {
		return nil, newError(KindCodecMismatch, fmt.Sprintf("artifacts come from different training runs (%s, %s, %s)",
			clfHdr.RunID, vecHdr.RunID, codecHdr.RunID), nil)
	}
	codec.buildIndex()

	artifacts := &Artifacts{
		RunID:      clfHdr.RunID,
		TrainedAt:  clfHdr.TrainedAt,
		Classifier: &classifier,
		Vectorizer: &vectorizer,
		Codec:      &codec,
	}
	if err := artifacts.Validate(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

func readGob(filesys fs.FS, name string, payload any) (header, error) {
	var hdr header
	file, err := filesys.Open(name)
	if err != nil {
		return hdr, newError(KindArtifactCorrupt, name+" unreadable", err)
	}
	defer file.Close()

	dec := gob.NewDecoder(file)
	if err := dec.Decode(&hdr); err != nil {
		return hdr, newError(KindArtifactCorrupt, name+" has no valid header", err)
	}
	if hdr.Format != artifactFormat {
		return hdr, newError(KindArtifactCorrupt, fmt.Sprintf("%s has format %d, want %d", name, hdr.Format, artifactFormat), nil)
	}
	if err := dec.Decode(payload); err != nil {
		return hdr, newError(KindArtifactCorrupt, name+" payload undecodable", err)
	}
	return hdr, nil
}

// ReportFromFS reads the training report stored next to the artifacts.
func ReportFromFS(filesys fs.FS) (*Report, error) {
	data, err := fs.ReadFile(filesys, ReportFile)
	if err != nil {
		return nil, err
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
