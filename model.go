package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Kernel selects the similarity function of the classifier.
type Kernel string

const (
	LinearKernel Kernel = "linear"
	RBFKernel    Kernel = "rbf"
)

// GammaPolicy selects how the RBF kernel scale is derived from the data.
type GammaPolicy string

const (
	// GammaScale uses 1 / (features × variance of the training matrix).
	GammaScale GammaPolicy = "scale"
	// GammaAuto uses 1 / features.
	GammaAuto GammaPolicy = "auto"
)

// Params is one point of the hyperparameter grid.
type Params struct {
	C      float64     `json:"C"`
	Kernel Kernel      `json:"kernel"`
	Gamma  GammaPolicy `json:"gamma"`
}

func (p Params) String() string {
	return fmt.Sprintf("C=%g kernel=%s gamma=%s", p.C, p.Kernel, p.Gamma)
}

// SolverConfig tunes the SMO solver.
type SolverConfig struct {
	Tolerance float64 // Stopping tolerance on the maximal KKT violation.
	MaxIter   int     // Iteration cap per binary problem; 0 picks max(10^7, 100n).
	CacheMB   int     // Kernel row cache budget.
}

// DefaultSolverConfig mirrors the usual libsvm defaults.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{Tolerance: 1e-3, CacheMB: 200}
}

// A Classifier is a kernel support vector machine trained one-vs-rest: one
// binary machine per class. It is immutable once trained.
type Classifier struct {
	Params   Params
	Gamma    float64 // Resolved RBF scale; unused for linear models.
	Dim      int     // Feature dimension the model was trained on.
	Machines []machine
}

// machine is one binary one-vs-rest decision function. Linear machines keep
// only a dense weight vector; RBF machines keep their support vectors.
type machine struct {
	Weights        []float64
	SupportVectors []FeatureVector
	Coef           []float64 // alpha_i * y_i per support vector.
	SVNorms        []float64
	Rho            float64
}

// NumClasses returns the number of classes the classifier separates.
func (c *Classifier) NumClasses() int {
	return len(c.Machines)
}

// validate checks that every machine fits the declared dimension, so a
// decoded model that is structurally broken fails before it scores anything.
func (c *Classifier) validate() error {
	if c.Params.Kernel != LinearKernel && c.Params.Kernel != RBFKernel {
		return newError(KindArtifactCorrupt, fmt.Sprintf("unknown kernel %q", c.Params.Kernel), nil)
	}
	for k := range c.Machines {
		m := &c.Machines[k]
		if c.Params.Kernel == LinearKernel {
			if len(m.Weights) != c.Dim {
				return newError(KindArtifactCorrupt,
					fmt.Sprintf("machine %d has %d weights for %d features", k, len(m.Weights), c.Dim), nil)
			}
			continue
		}
		if len(m.Coef) != len(m.SupportVectors) || len(m.SVNorms) != len(m.SupportVectors) {
			return newError(KindArtifactCorrupt, fmt.Sprintf("machine %d has %d support vectors, %d coefficients and %d norms",
				k, len(m.SupportVectors), len(m.Coef), len(m.SVNorms)), nil)
		}
		for i, sv := range m.SupportVectors {
			if err := sv.validate(c.Dim); err != nil {
				return newError(KindArtifactCorrupt, fmt.Sprintf("machine %d support vector %d", k, i), err)
			}
		}
	}
	return nil
}

// DecisionFunction returns the signed decision value of every class for x.
// Values are margins, not probabilities.
func (c *Classifier) DecisionFunction(x FeatureVector) []float64 {
	scores := make([]float64, len(c.Machines))
	xNorm := x.SquaredNorm()
	for k := range c.Machines {
		m := &c.Machines[k]
		var sum float64
		if m.Weights != nil {
			sum = x.DotDense(m.Weights)
		} else {
			for i, sv := range m.SupportVectors {
				sum += m.Coef[i] * rbf(c.Gamma, m.SVNorms[i], xNorm, sv.Dot(x))
			}
		}
		scores[k] = sum - m.Rho
	}
	return scores
}

// Predict returns the class id with the highest decision value.
func (c *Classifier) Predict(x FeatureVector) int {
	return floats.MaxIdx(c.DecisionFunction(x))
}

func rbf(gamma, normA, normB, dot float64) float64 {
	return math.Exp(-gamma * math.Max(normA+normB-2*dot, 0))
}

// resolveGamma computes the RBF scale for x under policy.
func resolveGamma(policy GammaPolicy, x []FeatureVector, dim int) float64 {
	if dim == 0 {
		return 1
	}
	if policy == GammaAuto {
		return 1 / float64(dim)
	}

	// Variance over every entry of the dense n×dim matrix, zeros included.
	var sum, sumSq float64
	for _, v := range x {
		sum += floats.Sum(v.Values)
		sumSq += v.SquaredNorm()
	}
	total := float64(len(x) * dim)
	mean := sum / total
	variance := sumSq/total - mean*mean
	if variance <= 0 {
		return 1
	}
	return 1 / (float64(dim) * variance)
}

// kernelCache computes Gram matrix rows on demand and keeps a bounded number
// of them, evicting the oldest first. Rows do not depend on the labels, so one
// cache serves every one-vs-rest problem over the same data.
type kernelCache struct {
	x        []FeatureVector
	norms    []float64
	kernel   Kernel
	gamma    float64
	rows     [][]float64
	order    []int
	capacity int
}

func newKernelCache(x []FeatureVector, kernel Kernel, gamma float64, cacheMB int) *kernelCache {
	n := len(x)
	capacity := n
	if n > 0 {
		capacity = max(2, min(n, cacheMB<<20/(8*n)))
	}
	norms := make([]float64, n)
	for i, v := range x {
		norms[i] = v.SquaredNorm()
	}
	return &kernelCache{
		x:        x,
		norms:    norms,
		kernel:   kernel,
		gamma:    gamma,
		rows:     make([][]float64, n),
		capacity: capacity,
	}
}

func (kc *kernelCache) eval(i, j int) float64 {
	dot := kc.x[i].Dot(kc.x[j])
	if kc.kernel == LinearKernel {
		return dot
	}
	return rbf(kc.gamma, kc.norms[i], kc.norms[j], dot)
}

func (kc *kernelCache) row(i int) []float64 {
	if r := kc.rows[i]; r != nil {
		return r
	}
	if len(kc.order) >= kc.capacity {
		kc.rows[kc.order[0]] = nil
		kc.order = kc.order[1:]
	}
	r := make([]float64, len(kc.x))
	for j := range kc.x {
		r[j] = kc.eval(i, j)
	}
	kc.rows[i] = r
	kc.order = append(kc.order, i)
	return r
}

// trainClassifier fits one binary machine per class on x with class ids y.
func trainClassifier(ctx context.Context, x []FeatureVector, y []int, numClasses int, params Params, solver SolverConfig, logger *slog.Logger) (*Classifier, error) {
	if len(x) != len(y) {
		return nil, newError(KindTraining, fmt.Sprintf("%d feature vectors but %d labels", len(x), len(y)), nil)
	}
	if len(x) == 0 {
		return nil, newError(KindTraining, "no training examples", nil)
	}
	if params.C <= 0 {
		return nil, newError(KindTraining, fmt.Sprintf("C must be positive, got %g", params.C), nil)
	}

	dim := x[0].Dim
	clf := &Classifier{
		Params:   params,
		Dim:      dim,
		Machines: make([]machine, numClasses),
	}
	if params.Kernel == RBFKernel {
		clf.Gamma = resolveGamma(params.Gamma, x, dim)
	}

	cache := newKernelCache(x, params.Kernel, clf.Gamma, solver.CacheMB)
	signs := make([]float64, len(y))
	for k := 0; k < numClasses; k++ {
		positives := 0
		for i, label := range y {
			signs[i] = -1
			if label == k {
				signs[i] = 1
				positives++
			}
		}

		switch positives {
		case 0:
			clf.Machines[k] = machine{Rho: 1, Weights: linearWeights(params.Kernel, dim)}
			continue
		case len(y):
			clf.Machines[k] = machine{Rho: -1, Weights: linearWeights(params.Kernel, dim)}
			continue
		}

		alpha, rho, converged, err := solveBinary(ctx, cache, signs, params.C, solver)
		if err != nil {
			return nil, err
		}
		if !converged {
			logger.Warn("solver reached iteration cap", "class", k, "params", params.String())
		}
		clf.Machines[k] = buildMachine(x, signs, alpha, rho, params.Kernel, dim, cache.norms)
	}
	return clf, nil
}

func linearWeights(kernel Kernel, dim int) []float64 {
	if kernel != LinearKernel {
		return nil
	}
	return make([]float64, dim)
}

func buildMachine(x []FeatureVector, signs, alpha []float64, rho float64, kernel Kernel, dim int, norms []float64) machine {
	m := machine{Rho: rho}
	if kernel == LinearKernel {
		m.Weights = make([]float64, dim)
		for i, a := range alpha {
			if a == 0 {
				continue
			}
			for k, idx := range x[i].Indices {
				m.Weights[idx] += a * signs[i] * x[i].Values[k]
			}
		}
		return m
	}
	for i, a := range alpha {
		if a == 0 {
			continue
		}
		m.SupportVectors = append(m.SupportVectors, x[i])
		m.Coef = append(m.Coef, a*signs[i])
		m.SVNorms = append(m.SVNorms, norms[i])
	}
	return m
}

// solveBinary solves the C-SVM dual for labels y in {-1, +1} with sequential
// minimal optimization, picking the maximal violating pair at every step.
func solveBinary(ctx context.Context, cache *kernelCache, y []float64, c float64, solver SolverConfig) ([]float64, float64, bool, error) {
	const tau = 1e-12

	n := len(y)
	maxIter := solver.MaxIter
	if maxIter <= 0 {
		maxIter = max(10_000_000, 100*n)
	}

	alpha := make([]float64, n)
	grad := make([]float64, n)
	for i := range grad {
		grad[i] = -1
	}

	converged := false
	for iter := 0; iter < maxIter; iter++ {
		if iter%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, 0, false, err
			}
		}

		i, j := -1, -1
		gmax, gmin := math.Inf(-1), math.Inf(1)
		for t := 0; t < n; t++ {
			v := -y[t] * grad[t]
			if isUp(y[t], alpha[t], c) && v > gmax {
				gmax, i = v, t
			}
			if isLow(y[t], alpha[t], c) && v < gmin {
				gmin, j = v, t
			}
		}
		if i < 0 || j < 0 || gmax-gmin < solver.Tolerance {
			converged = true
			break
		}

		ki, kj := cache.row(i), cache.row(j)
		quad := ki[i] + kj[j] - 2*ki[j]
		if quad <= 0 {
			quad = tau
		}
		// Room left before alpha_i and alpha_j hit a box bound along the
		// direction (+y_i, -y_j).
		roomI, edgeI := c-alpha[i], c
		if y[i] < 0 {
			roomI, edgeI = alpha[i], 0
		}
		roomJ, edgeJ := alpha[j], 0.0
		if y[j] < 0 {
			roomJ, edgeJ = c-alpha[j], c
		}
		step := math.Min((gmax-gmin)/quad, math.Min(roomI, roomJ))

		alpha[i] = clamp(alpha[i]+y[i]*step, 0, c)
		alpha[j] = clamp(alpha[j]-y[j]*step, 0, c)
		if step == roomI {
			alpha[i] = edgeI
		}
		if step == roomJ {
			alpha[j] = edgeJ
		}
		for t := 0; t < n; t++ {
			grad[t] += y[t] * step * (ki[t] - kj[t])
		}
	}

	return alpha, computeRho(y, alpha, grad, c), converged, nil
}

func isUp(y, a, c float64) bool {
	return (y > 0 && a < c) || (y < 0 && a > 0)
}

func isLow(y, a, c float64) bool {
	return (y < 0 && a < c) || (y > 0 && a > 0)
}

// computeRho averages y_i*G_i over free support vectors, falling back to the
// midpoint of the feasible interval when every alpha sits at a bound.
func computeRho(y, alpha, grad []float64, c float64) float64 {
	ub, lb := math.Inf(1), math.Inf(-1)
	var sumFree float64
	nFree := 0
	for i := range y {
		yg := y[i] * grad[i]
		switch {
		case alpha[i] >= c:
			if y[i] < 0 {
				ub = math.Min(ub, yg)
			} else {
				lb = math.Max(lb, yg)
			}
		case alpha[i] <= 0:
			if y[i] > 0 {
				ub = math.Min(ub, yg)
			} else {
				lb = math.Max(lb, yg)
			}
		default:
			nFree++
			sumFree += yg
		}
	}
	switch {
	case nFree > 0:
		return sumFree / float64(nFree)
	case math.IsInf(ub, 1) && math.IsInf(lb, -1):
		return 0
	case math.IsInf(ub, 1):
		return lb
	case math.IsInf(lb, -1):
		return ub
	}
	return (ub + lb) / 2
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
