package sentiment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// An Example is one labeled training text.
type Example struct {
	Text  string
	Label string
}

// Corpus is a labeled training set.
type Corpus []Example

// TrainingConfig contains configuration for model training.
type TrainingConfig struct {
	Grid        []Params         // Hyperparameter combinations to search.
	Folds       int              // Cross-validation folds.
	TestSplit   float64          // Fraction of the corpus held out for evaluation.
	Seed        int64            // Seed of the train/test split.
	Parallelism int              // Grid points evaluated at once; 0 uses GOMAXPROCS.
	Solver      SolverConfig     // SMO settings.
	Vectorizer  VectorizerConfig // Feature extraction settings.
	Clock       clockwork.Clock
	Logger      *slog.Logger

	// ProgressCallback is invoked after every grid point with the number of
	// points finished so far. Calls are serialized.
	ProgressCallback func(done, total int, score GridScore)
}

// DefaultGrid returns C ∈ {0.1, 1, 10} × gamma ∈ {scale, auto} ×
// kernel ∈ {linear, rbf}, in the order ties are broken.
func DefaultGrid() []Params {
	var grid []Params
	for _, c := range []float64{0.1, 1, 10} {
		for _, gamma := range []GammaPolicy{GammaScale, GammaAuto} {
			for _, kernel := range []Kernel{LinearKernel, RBFKernel} {
				grid = append(grid, Params{C: c, Kernel: kernel, Gamma: gamma})
			}
		}
	}
	return grid
}

// DefaultTrainingConfig returns the reference training configuration.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		Grid:       DefaultGrid(),
		Folds:      3,
		TestSplit:  0.2,
		Seed:       42,
		Solver:     DefaultSolverConfig(),
		Vectorizer: DefaultVectorizerConfig(),
	}
}

// Trainer fits classifiers and complete artifact sets.
type Trainer struct {
	config TrainingConfig
}

// NewTrainer creates a new trainer with the given configuration. Zero fields
// take the values of DefaultTrainingConfig, except Seed, where 0 is a valid
// seed.
func NewTrainer(config TrainingConfig) *Trainer {
	if config.Clock == nil {
		config.Clock = clockwork.NewRealClock()
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.Parallelism <= 0 {
		config.Parallelism = runtime.GOMAXPROCS(0)
	}
	if len(config.Grid) == 0 {
		config.Grid = DefaultGrid()
	}
	if config.Folds == 0 {
		config.Folds = 3
	}
	if config.TestSplit == 0 {
		config.TestSplit = 0.2
	}
	if config.Vectorizer == (VectorizerConfig{}) {
		config.Vectorizer = DefaultVectorizerConfig()
	}
	if config.Solver.Tolerance <= 0 {
		config.Solver = DefaultSolverConfig()
	}
	return &Trainer{config: config}
}

// Config returns the effective configuration.
func (t *Trainer) Config() TrainingConfig {
	return t.config
}

// Fit runs the full training path on corpus: normalization, a stratified
// train/test split, vectorizer and codec fitting, grid search, refit and
// held-out evaluation.
func (t *Trainer) Fit(ctx context.Context, corpus Corpus) (*Artifacts, *Report, error) {
	start := t.config.Clock.Now()
	runID := uuid.NewString()
	logger := t.config.Logger.With("run_id", runID)

	if len(corpus) == 0 {
		return nil, nil, newError(KindTraining, "training data is empty", nil)
	}

	texts := make([]string, len(corpus))
	rawLabels := make([]string, len(corpus))
	for i, ex := range corpus {
		texts[i] = Normalize(ex.Text)
		rawLabels[i] = ex.Label
	}

	codec := NewLabelCodec()
	if err := codec.Fit(rawLabels); err != nil {
		return nil, nil, err
	}
	if codec.Len() < 2 {
		return nil, nil, newError(KindTraining, fmt.Sprintf("need at least 2 classes, got %d", codec.Len()), nil)
	}
	y, err := codec.EncodeAll(rawLabels)
	if err != nil {
		return nil, nil, err
	}

	trainIdx, testIdx, err := stratifiedSplit(y, t.config.TestSplit, t.config.Seed)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("split corpus", "train", len(trainIdx), "test", len(testIdx), "classes", codec.Len())

	vectorizer := newVectorizerFromConfig(t.config.Vectorizer)
	xTrain, err := vectorizer.FitTransform(selectStrings(texts, trainIdx))
	if err != nil {
		return nil, nil, err
	}
	xTest, err := vectorizer.TransformAll(selectStrings(texts, testIdx))
	if err != nil {
		return nil, nil, err
	}
	logger.Info("fitted vectorizer", "vocabulary", vectorizer.Len())

	yTrain, yTest := selectInts(y, trainIdx), selectInts(y, testIdx)
	classifier, search, err := t.Train(ctx, xTrain, yTrain, nil)
	if err != nil {
		return nil, nil, err
	}

	predicted := make([]int, len(xTest))
	for i, x := range xTest {
		predicted[i] = classifier.Predict(x)
	}
	eval := evaluate(yTest, predicted, codec.Classes)
	logger.Info("evaluated held-out split", "accuracy", eval.Accuracy, "best", search.Best.String())

	artifacts := &Artifacts{
		RunID:      runID,
		TrainedAt:  start,
		Classifier: classifier,
		Vectorizer: vectorizer,
		Codec:      codec,
	}
	report := &Report{
		RunID:          runID,
		StartedAt:      start,
		Duration:       t.config.Clock.Since(start),
		TrainSize:      len(trainIdx),
		TestSize:       len(testIdx),
		VocabularySize: vectorizer.Len(),
		Search:         search,
		TestAccuracy:   eval.Accuracy,
		Evaluation:     eval,
	}
	return artifacts, report, nil
}

// Train searches grid (the configured grid when nil) with stratified k-fold
// cross-validation and refits the best combination on all of features. Ties
// go to the earliest grid point, so the result does not depend on how many
// points run concurrently.
func (t *Trainer) Train(ctx context.Context, features []FeatureVector, labels []int, grid []Params) (*Classifier, SearchResult, error) {
	if len(grid) == 0 {
		grid = t.config.Grid
	}
	if len(features) != len(labels) {
		return nil, SearchResult{}, newError(KindTraining,
			fmt.Sprintf("%d feature vectors but %d labels", len(features), len(labels)), nil)
	}

	numClasses, err := countClasses(labels)
	if err != nil {
		return nil, SearchResult{}, err
	}
	folds, err := stratifiedFolds(labels, t.config.Folds)
	if err != nil {
		return nil, SearchResult{}, err
	}

	scores := make([]GridScore, len(grid))
	var (
		mu   sync.Mutex
		done int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.config.Parallelism)
	for i, params := range grid {
		i, params := i, params
		g.Go(func() error {
			score, err := t.crossValidate(gctx, features, labels, numClasses, folds, params)
			if err != nil {
				return err
			}
			scores[i] = score

			mu.Lock()
			defer mu.Unlock()
			done++
			t.config.Logger.Debug("grid point evaluated", "params", params.String(), "mean", score.MeanScore, "std", score.StdScore)
			if t.config.ProgressCallback != nil {
				t.config.ProgressCallback(done, len(grid), score)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, SearchResult{}, err
	}

	best := 0
	for i := range scores {
		if scores[i].MeanScore > scores[best].MeanScore {
			best = i
		}
	}
	result := SearchResult{
		Best:      scores[best].Params,
		BestScore: scores[best].MeanScore,
		BestStd:   scores[best].StdScore,
		Scores:    scores,
	}
	t.config.Logger.Info("grid search finished", "best", result.Best.String(), "score", result.BestScore)

	classifier, err := trainClassifier(ctx, features, labels, numClasses, result.Best, t.config.Solver, t.config.Logger)
	if err != nil {
		return nil, SearchResult{}, err
	}
	return classifier, result, nil
}

// CrossValidate scores params with stratified k-fold cross-validation.
func (t *Trainer) CrossValidate(ctx context.Context, features []FeatureVector, labels []int, params Params) (GridScore, error) {
	numClasses, err := countClasses(labels)
	if err != nil {
		return GridScore{}, err
	}
	folds, err := stratifiedFolds(labels, t.config.Folds)
	if err != nil {
		return GridScore{}, err
	}
	return t.crossValidate(ctx, features, labels, numClasses, folds, params)
}

func (t *Trainer) crossValidate(ctx context.Context, features []FeatureVector, labels []int, numClasses int, folds [][]int, params Params) (GridScore, error) {
	foldScores := make([]float64, len(folds))
	for f, held := range folds {
		trainIdx := complement(len(features), held)
		clf, err := trainClassifier(ctx, selectVectors(features, trainIdx), selectInts(labels, trainIdx),
			numClasses, params, t.config.Solver, t.config.Logger)
		if err != nil {
			return GridScore{}, err
		}

		correct := 0
		for _, idx := range held {
			if clf.Predict(features[idx]) == labels[idx] {
				correct++
			}
		}
		foldScores[f] = float64(correct) / float64(len(held))
	}

	mean, std := stat.PopMeanStdDev(foldScores, nil)
	return GridScore{
		Params:     params,
		MeanScore:  mean,
		StdScore:   std,
		FoldScores: foldScores,
	}, nil
}

// countClasses returns the number of class ids, requiring ids to be dense and
// at least two distinct classes to be present.
func countClasses(labels []int) (int, error) {
	seen := make(map[int]bool)
	numClasses := 0
	for _, l := range labels {
		if l < 0 {
			return 0, newError(KindTraining, fmt.Sprintf("negative class id %d", l), nil)
		}
		seen[l] = true
		numClasses = max(numClasses, l+1)
	}
	if len(seen) < 2 {
		return 0, newError(KindTraining, fmt.Sprintf("need at least 2 classes, got %d", len(seen)), nil)
	}
	return numClasses, nil
}
