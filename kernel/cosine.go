package kernel

import (
	"bitbucket.org/dtolpin/coskern/param"
	"bitbucket.org/dtolpin/coskern/priors"
	"fmt"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"math"
)

const (
	// DefaultEps is the default lower bound of the period length.
	DefaultEps = 1e-6
	// MaxPeriodLength is the upper bound of the period length.
	MaxPeriodLength = 1e5
	// PeriodLengthName is the default name of the registered
	// parameter.
	PeriodLengthName = "log_period_length"
)

// CosineOptions configure NewCosine. Zero values select defaults.
type CosineOptions struct {
	// ActiveDims restricts the kernel to these coordinates.
	ActiveDims []int
	// BatchSize is the number of independent period lengths, 1 by
	// default.
	BatchSize int
	// PeriodLengthPrior is placed over log_period_length.
	PeriodLengthPrior priors.Prior
	// Eps is the lower bound of the period length, DefaultEps by
	// default.
	Eps float64
	// Name overrides the parameter name, so that several kernels can
	// share a store.
	Name string
}

// Cosine is the periodic kernel
//
//	k(x1, x2) = cos(pi ||x1 - x2|| / p)
//
// with a learned period length p > 0, one per batch element.
type Cosine struct {
	*Base
	store  ParameterStore
	handle param.Handle
	eps    float64
	nbatch int
}

var _ Kernel = (*Cosine)(nil)

func NewCosine(store ParameterStore, opts CosineOptions) (*Cosine, error) {
	if store == nil {
		return nil, fmt.Errorf("cosine kernel: nil parameter store")
	}
	nbatch := opts.BatchSize
	switch {
	case nbatch == 0:
		nbatch = 1
	case nbatch < 0:
		return nil, fmt.Errorf("cosine kernel: batch size %d", nbatch)
	}
	eps := opts.Eps
	switch {
	case eps == 0:
		eps = DefaultEps
	case !(eps > 0 && eps < MaxPeriodLength):
		return nil, fmt.Errorf("cosine kernel: eps %g outside (0, %g)",
			eps, MaxPeriodLength)
	}
	name := opts.Name
	if name == "" {
		name = PeriodLengthName
	}

	k := &Cosine{
		store:  store,
		eps:    eps,
		nbatch: nbatch,
	}
	base, err := NewBase(cosineFormula{}, k, opts.ActiveDims, false)
	if err != nil {
		return nil, fmt.Errorf("cosine kernel: %w", err)
	}
	k.Base = base

	// log(p) = 0, p = 1
	k.handle, err = store.Register(name, []int{nbatch, 1, 1},
		make([]float64, nbatch), opts.PeriodLengthPrior)
	if err != nil {
		return nil, fmt.Errorf("cosine kernel: %w", err)
	}
	return k, nil
}

func (k *Cosine) Handle() param.Handle { return k.handle }

func (k *Cosine) Eps() float64 { return k.eps }

func (k *Cosine) BatchSize() int { return k.nbatch }

// PeriodLength is clamp(exp(log_period_length), eps, 1e5), computed
// from the current parameter value on every call.
func (k *Cosine) PeriodLength() []float64 {
	logp := k.store.Read(k.handle)
	p := make([]float64, len(logp))
	for i, v := range logp {
		p[i] = k.clamp(math.Exp(v))
	}
	return p
}

func (k *Cosine) clamp(p float64) float64 {
	switch {
	case math.IsNaN(p), p < k.eps:
		return k.eps
	case p > MaxPeriodLength:
		return MaxPeriodLength
	}
	return p
}

// Degenerate flags batch elements whose period length is held at a
// clamp bound.
func (k *Cosine) Degenerate() []bool {
	logp := k.store.Read(k.handle)
	flags := make([]bool, len(logp))
	for i, v := range logp {
		p := math.Exp(v)
		flags[i] = math.IsNaN(p) || p < k.eps || p > MaxPeriodLength
	}
	return flags
}

// CheckPeriodLength returns an error wrapping ErrDegenerateParameter
// if any period length is held at a clamp bound.
func (k *Cosine) CheckPeriodLength() error {
	for i, bad := range k.Degenerate() {
		if bad {
			return fmt.Errorf("%w: period length %d clamped to %g",
				ErrDegenerateParameter, i, k.PeriodLength()[i])
		}
	}
	return nil
}

// Preprocess divides every batch element of the inputs by its period
// length. A single period length applies to all batch elements, and a
// single input element is broadcast over all period lengths.
func (k *Cosine) Preprocess(x1, x2 Tensor) (Tensor, Tensor, error) {
	p := k.PeriodLength()
	x1, err := scaleBatch(x1, p)
	if err != nil {
		return Tensor{}, Tensor{}, err
	}
	x2, err = scaleBatch(x2, p)
	if err != nil {
		return Tensor{}, Tensor{}, err
	}
	return x1, x2, nil
}

func scaleBatch(x Tensor, p []float64) (Tensor, error) {
	n, err := broadcastBatch(x.Batch(), len(p))
	if err != nil {
		return Tensor{}, err
	}
	mats := make([]*mat.Dense, n)
	for b := range mats {
		src := x.Mat(b % x.Batch())
		r, c := src.Dims()
		m := mat.NewDense(r, c, nil)
		m.Scale(1/p[b%len(p)], src)
		mats[b] = m
	}
	return x.withMats(mats), nil
}

func broadcastBatch(nx, np int) (int, error) {
	switch {
	case nx == np, np == 1:
		return nx, nil
	case nx == 1:
		return np, nil
	}
	return 0, fmt.Errorf("%w: input batch %d, parameter batch %d",
		ErrShapeMismatch, nx, np)
}

type cosineFormula struct{}

// Forward computes cos(pi ||x1_i - x2_j||) for all pairs of points.
func (cosineFormula) Forward(x1, x2 Tensor) (Tensor, error) {
	return pairwise(x1, x2, func(r float64) float64 {
		return math.Cos(math.Pi * r)
	})
}

// GradLogPeriodLength is the derivative of every entry of
// Evaluate(x1, x2) with respect to log_period_length of the entry's
// batch element. With r the unscaled distance,
//
//	d/dlog(p) cos(pi r/p) = sin(pi r/p) pi r/p
//
// inside the clamp range, and 0 where the clamp holds p.
func (k *Cosine) GradLogPeriodLength(x1, x2 Tensor) (Tensor, error) {
	x1, x2, err := k.prepare(x1, x2)
	if err != nil {
		return Tensor{}, err
	}
	grad, err := pairwise(x1, x2, func(u float64) float64 {
		return math.Sin(math.Pi*u) * math.Pi * u
	})
	if err != nil {
		return Tensor{}, err
	}
	degenerate := k.Degenerate()
	for b := 0; b < grad.Batch(); b++ {
		if degenerate[b%len(degenerate)] {
			grad.Mat(b).Zero()
		}
	}
	return grad, nil
}

// pairwise applies f to the Euclidean distance between every point of
// x1 and every point of x2, batch element by batch element.
func pairwise(x1, x2 Tensor, f func(r float64) float64) (Tensor, error) {
	if err := checkPair(x1, x2); err != nil {
		return Tensor{}, err
	}
	mats := make([]*mat.Dense, x1.Batch())
	err := forEachBatch(len(mats), func(b int) error {
		a, c := x1.Mat(b), x2.Mat(b)
		n1, _ := a.Dims()
		n2, _ := c.Dims()
		res := mat.NewDense(n1, n2, nil)
		for i := 0; i < n1; i++ {
			ai := a.RawRowView(i)
			out := res.RawRowView(i)
			for j := 0; j < n2; j++ {
				out[j] = f(floats.Distance(ai, c.RawRowView(j), 2))
			}
		}
		mats[b] = res
		return nil
	})
	if err != nil {
		return Tensor{}, err
	}
	return x1.withMats(mats), nil
}
