package sentiment

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ClassMetrics holds precision, recall and F1 for one class, or an average
// over classes.
type ClassMetrics struct {
	Label     Label   `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Evaluation summarizes predictions against held-out labels.
type Evaluation struct {
	Accuracy    float64        `json:"accuracy"`
	Classes     []ClassMetrics `json:"classes"`
	MacroAvg    ClassMetrics   `json:"macro_avg"`
	WeightedAvg ClassMetrics   `json:"weighted_avg"`
	Confusion   [][]int        `json:"confusion"` // Rows are true classes, columns predictions.
}

// GridScore is the cross-validation outcome of one hyperparameter combination.
type GridScore struct {
	Params     Params    `json:"params"`
	MeanScore  float64   `json:"mean_score"`
	StdScore   float64   `json:"std_score"`
	FoldScores []float64 `json:"fold_scores"`
}

// SearchResult is the outcome of a grid search.
type SearchResult struct {
	Best      Params      `json:"best_params"`
	BestScore float64     `json:"best_score"`
	BestStd   float64     `json:"best_std"`
	Scores    []GridScore `json:"scores"`
}

// Report describes a complete training run. It is written next to the
// artifacts but is not needed for inference.
type Report struct {
	RunID          string        `json:"run_id"`
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"duration"`
	TrainSize      int           `json:"train_size"`
	TestSize       int           `json:"test_size"`
	VocabularySize int           `json:"vocabulary_size"`
	Search         SearchResult  `json:"search"`
	TestAccuracy   float64       `json:"test_accuracy"`
	Evaluation     Evaluation    `json:"evaluation"`
}

// EvaluateLabels compares predicted labels with true ones. Classes are the
// union of both sides in sorted order.
func EvaluateLabels(truth, predicted []Label) (Evaluation, error) {
	if len(truth) != len(predicted) {
		return Evaluation{}, fmt.Errorf("%d true labels but %d predictions", len(truth), len(predicted))
	}
	codec := NewLabelCodec()
	all := make([]string, 0, len(truth)+len(predicted))
	for _, l := range truth {
		all = append(all, string(l))
	}
	for _, l := range predicted {
		all = append(all, string(l))
	}
	if err := codec.Fit(all); err != nil {
		return Evaluation{}, err
	}
	ids, err := codec.EncodeAll(all)
	if err != nil {
		return Evaluation{}, err
	}
	return evaluate(ids[:len(truth)], ids[len(truth):], codec.Classes), nil
}

// evaluate compares predicted class ids with true ones.
func evaluate(yTrue, yPred []int, labels []Label) Evaluation {
	k := len(labels)
	confusion := mat.NewDense(max(k, 1), max(k, 1), nil)
	correct := 0
	for i := range yTrue {
		confusion.Set(yTrue[i], yPred[i], confusion.At(yTrue[i], yPred[i])+1)
		if yTrue[i] == yPred[i] {
			correct++
		}
	}

	eval := Evaluation{
		Classes:   make([]ClassMetrics, k),
		Confusion: make([][]int, k),
	}
	if len(yTrue) > 0 {
		eval.Accuracy = float64(correct) / float64(len(yTrue))
	}

	precision := make([]float64, k)
	recall := make([]float64, k)
	f1 := make([]float64, k)
	support := make([]float64, k)
	for c := 0; c < k; c++ {
		tp := confusion.At(c, c)
		predicted := mat.Sum(confusion.ColView(c))
		actual := mat.Sum(confusion.RowView(c))
		if predicted > 0 {
			precision[c] = tp / predicted
		}
		if actual > 0 {
			recall[c] = tp / actual
		}
		if precision[c]+recall[c] > 0 {
			f1[c] = 2 * precision[c] * recall[c] / (precision[c] + recall[c])
		}
		support[c] = actual

		eval.Classes[c] = ClassMetrics{
			Label:     labels[c],
			Precision: precision[c],
			Recall:    recall[c],
			F1:        f1[c],
			Support:   int(actual),
		}
		eval.Confusion[c] = make([]int, k)
		for p := 0; p < k; p++ {
			eval.Confusion[c][p] = int(confusion.At(c, p))
		}
	}

	if k > 0 {
		n := float64(k)
		eval.MacroAvg = ClassMetrics{
			Label:     "macro avg",
			Precision: floats.Sum(precision) / n,
			Recall:    floats.Sum(recall) / n,
			F1:        floats.Sum(f1) / n,
			Support:   len(yTrue),
		}
	}
	if total := floats.Sum(support); total > 0 {
		eval.WeightedAvg = ClassMetrics{
			Label:     "weighted avg",
			Precision: floats.Dot(precision, support) / total,
			Recall:    floats.Dot(recall, support) / total,
			F1:        floats.Dot(f1, support) / total,
			Support:   len(yTrue),
		}
	}
	return eval
}

// String renders the evaluation as a classification report.
func (e Evaluation) String() string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "\tprecision\trecall\tf1-score\tsupport\t")
	rows := append(append([]ClassMetrics(nil), e.Classes...), e.MacroAvg, e.WeightedAvg)
	for _, m := range rows {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%d\t\n", m.Label, m.Precision, m.Recall, m.F1, m.Support)
	}
	w.Flush()
	return b.String()
}

// String renders the report in the familiar classification-report layout.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s (%s)\n", r.RunID, r.Duration.Round(time.Millisecond))
	fmt.Fprintf(&b, "Train/test: %d/%d, vocabulary: %d\n", r.TrainSize, r.TestSize, r.VocabularySize)
	fmt.Fprintf(&b, "Best parameters: %s\n", r.Search.Best)
	fmt.Fprintf(&b, "Best cross-validation score: %.4f (±%.4f)\n", r.Search.BestScore, r.Search.BestStd)
	fmt.Fprintf(&b, "Test accuracy: %.4f\n\n", r.TestAccuracy)
	b.WriteString(r.Evaluation.String())
	return b.String()
}
