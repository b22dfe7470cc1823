package textmodel

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

type RegressionOptions struct {
	// C is the inverse L2 regularisation strength.
	C       float64
	MaxIter int
	// Tolerance is the gradient infinity-norm at which the solver stops.
	Tolerance float64
}

func DefaultRegressionOptions() RegressionOptions {
	return RegressionOptions{
		C:         1.0,
		MaxIter:   500,
		Tolerance: 1e-5,
	}
}

func (o RegressionOptions) normalize() RegressionOptions {
	def := DefaultRegressionOptions()
	if o.C <= 0 {
		o.C = def.C
	}
	if o.MaxIter <= 0 {
		o.MaxIter = def.MaxIter
	}
	if o.Tolerance <= 0 {
		o.Tolerance = def.Tolerance
	}
	return o
}

// LogisticRegression is a multinomial (softmax) linear classifier.
type LogisticRegression struct {
	weights [][]float64
	bias    []float64
}

type fitStats struct {
	iterations int
	converged  bool
}

// fitLogistic minimises mean cross-entropy plus ||W||^2/(2*C*n) with L-BFGS.
func fitLogistic(ctx context.Context, xs []SparseVector, ys []int, nClasses, nFeatures int, opts RegressionOptions) (*LogisticRegression, fitStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, fitStats{}, err
	}

	obj := newSoftmaxObjective(xs, ys, nClasses, nFeatures, 1.0/(opts.C*float64(len(xs))))
	problem := optimize.Problem{Func: obj.loss, Grad: obj.gradient}
	settings := &optimize.Settings{
		GradientThreshold: opts.Tolerance,
		MajorIterations:   opts.MaxIter,
		Recorder:          contextRecorder{ctx: ctx},
	}

	result, err := optimize.Minimize(problem, make([]float64, obj.size()), settings, &optimize.LBFGS{})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fitStats{}, ctxErr
	}
	if result == nil {
		return nil, fitStats{}, fmt.Errorf("minimize: %w", err)
	}
	stats := fitStats{iterations: result.Stats.MajorIterations, converged: err == nil}
	if err != nil && result.Status != optimize.IterationLimit {
		return nil, stats, fmt.Errorf("minimize: %w", err)
	}
	return obj.model(result.X), stats, nil
}

// softmaxObjective lays parameters out class by class: nFeatures weights
// followed by the bias.
type softmaxObjective struct {
	xs        []SparseVector
	ys        []int
	nClasses  int
	nFeatures int
	reg       float64
	buf       []float64
}

func newSoftmaxObjective(xs []SparseVector, ys []int, nClasses, nFeatures int, reg float64) *softmaxObjective {
	return &softmaxObjective{
		xs:        xs,
		ys:        ys,
		nClasses:  nClasses,
		nFeatures: nFeatures,
		reg:       reg,
		buf:       make([]float64, nClasses),
	}
}

func (o *softmaxObjective) size() int {
	return o.nClasses * (o.nFeatures + 1)
}

// model returns a classifier whose weights alias theta.
func (o *softmaxObjective) model(theta []float64) *LogisticRegression {
	stride := o.nFeatures + 1
	m := &LogisticRegression{
		weights: make([][]float64, o.nClasses),
		bias:    make([]float64, o.nClasses),
	}
	for k := 0; k < o.nClasses; k++ {
		m.weights[k] = theta[k*stride : k*stride+o.nFeatures]
		m.bias[k] = theta[k*stride+o.nFeatures]
	}
	return m
}

func (o *softmaxObjective) loss(theta []float64) float64 {
	m := o.model(theta)
	var total float64
	for i, x := range o.xs {
		m.scores(x, o.buf)
		total += logSumExp(o.buf) - o.buf[o.ys[i]]
	}
	total /= float64(len(o.xs))

	var penalty float64
	for _, w := range m.weights {
		for _, v := range w {
			penalty += v * v
		}
	}
	return total + 0.5*o.reg*penalty
}

func (o *softmaxObjective) gradient(grad, theta []float64) {
	clear(grad)
	m := o.model(theta)
	stride := o.nFeatures + 1
	n := float64(len(o.xs))

	for i, x := range o.xs {
		m.probabilities(x, o.buf)
		for k := 0; k < o.nClasses; k++ {
			diff := o.buf[k]
			if o.ys[i] == k {
				diff -= 1
			}
			if diff == 0 {
				continue
			}
			base := k * stride
			grad[base+o.nFeatures] += diff / n
			for j, idx := range x.Indices {
				grad[base+idx] += diff * x.Values[j] / n
			}
		}
	}
	for k := 0; k < o.nClasses; k++ {
		base := k * stride
		for j := 0; j < o.nFeatures; j++ {
			grad[base+j] += o.reg * theta[base+j]
		}
	}
}

// contextRecorder stops the solver once ctx is done.
type contextRecorder struct {
	ctx context.Context
}

func (r contextRecorder) Init() error {
	return r.ctx.Err()
}

func (r contextRecorder) Record(*optimize.Location, optimize.Operation, *optimize.Stats) error {
	if err := r.ctx.Err(); err != nil {
		return errors.Join(errors.New("training cancelled"), err)
	}
	return nil
}

func logSumExp(values []float64) float64 {
	maxValue := math.Inf(-1)
	for _, v := range values {
		maxValue = math.Max(maxValue, v)
	}
	var sum float64
	for _, v := range values {
		sum += math.Exp(v - maxValue)
	}
	return maxValue + math.Log(sum)
}

func (m *LogisticRegression) scores(x SparseVector, out []float64) {
	for k := range m.weights {
		s := m.bias[k]
		w := m.weights[k]
		for j, idx := range x.Indices {
			s += w[idx] * x.Values[j]
		}
		out[k] = s
	}
}

func (m *LogisticRegression) probabilities(x SparseVector, out []float64) {
	m.scores(x, out)
	lse := logSumExp(out)
	for k, s := range out {
		out[k] = math.Exp(s - lse)
	}
}

// predict returns the index of the highest-scoring class; ties go to the lower index.
func (m *LogisticRegression) predict(x SparseVector, buf []float64) int {
	m.scores(x, buf)
	best := 0
	for k := 1; k < len(buf); k++ {
		if buf[k] > buf[best] {
			best = k
		}
	}
	return best
}
