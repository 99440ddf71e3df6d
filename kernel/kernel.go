// Package kernel computes covariance matrices between point sets for
// Gaussian-process models.
package kernel

import (
	"bitbucket.org/dtolpin/coskern/param"
	"bitbucket.org/dtolpin/coskern/priors"
	"errors"
	"fmt"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"runtime"
)

var (
	// ErrShapeMismatch is returned when point sets disagree in
	// dimensionality or batch size, or an active dimension is out of
	// range.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrDegenerateParameter reports a parameter pinned at a clamp
	// bound, where it gets no gradient. Evaluation never fails with it.
	ErrDegenerateParameter = errors.New("degenerate parameter")
)

// ParameterStore registers kernel parameters and reads back their
// current values. param.Store implements it.
type ParameterStore interface {
	Register(name string, shape []int, init []float64,
		prior priors.Prior) (param.Handle, error)
	Read(h param.Handle) []float64
}

// Kernel is a covariance function over point sets.
type Kernel interface {
	// Evaluate returns the (b, n1, n2) covariance between x1 (b, n1, d)
	// and x2 (b, n2, d).
	Evaluate(x1, x2 Tensor) (Tensor, error)
	// HasLengthscale tells composing code whether the kernel wants a
	// generic lengthscale parameter.
	HasLengthscale() bool
	// ActiveDims is the coordinate selection, nil for all coordinates.
	ActiveDims() []int
}

// Formula computes the pairwise covariance of preprocessed inputs
// with equal batch sizes and dimensionality.
type Formula interface {
	Forward(x1, x2 Tensor) (Tensor, error)
}

// Preprocessor transforms both inputs before the formula is applied.
type Preprocessor interface {
	Preprocess(x1, x2 Tensor) (Tensor, Tensor, error)
}

// Identity is the default preprocessor.
type Identity struct{}

func (Identity) Preprocess(x1, x2 Tensor) (Tensor, Tensor, error) {
	return x1, x2, nil
}

// Base implements the evaluation protocol shared by all kernels:
// shape checks, active dimension selection, preprocessing, formula.
type Base struct {
	activeDims     []int
	hasLengthscale bool
	pre            Preprocessor
	formula        Formula
}

// NewBase builds the protocol around formula. A nil pre is Identity.
// Active dimensions are kept in the given order; negative indices
// are rejected here, indices beyond the input width on Evaluate.
func NewBase(
	formula Formula,
	pre Preprocessor,
	activeDims []int,
	hasLengthscale bool,
) (*Base, error) {
	if formula == nil {
		return nil, errors.New("kernel: nil formula")
	}
	for i, idx := range activeDims {
		if idx < 0 {
			return nil, fmt.Errorf("%w: active dimension %d is %d",
				ErrShapeMismatch, i, idx)
		}
	}
	if pre == nil {
		pre = Identity{}
	}
	var dims []int // empty selection means all coordinates
	if len(activeDims) > 0 {
		dims = append([]int{}, activeDims...)
	}
	return &Base{
		activeDims:     dims,
		hasLengthscale: hasLengthscale,
		pre:            pre,
		formula:        formula,
	}, nil
}

func (k *Base) HasLengthscale() bool {
	return k.hasLengthscale
}

func (k *Base) ActiveDims() []int {
	if k.activeDims == nil {
		return nil
	}
	return append([]int{}, k.activeDims...)
}

func (k *Base) Evaluate(x1, x2 Tensor) (Tensor, error) {
	x1, x2, err := k.prepare(x1, x2)
	if err != nil {
		return Tensor{}, err
	}
	return k.formula.Forward(x1, x2)
}

// prepare checks the inputs, selects active dimensions and applies
// the preprocessor.
func (k *Base) prepare(x1, x2 Tensor) (Tensor, Tensor, error) {
	if err := checkPair(x1, x2); err != nil {
		return Tensor{}, Tensor{}, err
	}
	var err error
	if k.activeDims != nil {
		if x1, err = SelectDims(x1, k.activeDims); err != nil {
			return Tensor{}, Tensor{}, err
		}
		if x2, err = SelectDims(x2, k.activeDims); err != nil {
			return Tensor{}, Tensor{}, err
		}
	}
	return k.pre.Preprocess(x1, x2)
}

func checkPair(x1, x2 Tensor) error {
	switch {
	case x1.empty() || x2.empty():
		return fmt.Errorf("%w: empty input", ErrShapeMismatch)
	case x1.Cols() != x2.Cols():
		return fmt.Errorf("%w: x1 has %d dimensions, x2 has %d",
			ErrShapeMismatch, x1.Cols(), x2.Cols())
	case x1.Batch() != x2.Batch():
		return fmt.Errorf("%w: x1 batch is %d, x2 batch is %d",
			ErrShapeMismatch, x1.Batch(), x2.Batch())
	}
	return nil
}

// SelectDims gathers the columns dims of every batch element of x, in
// the order given. The result is freshly allocated.
func SelectDims(x Tensor, dims []int) (Tensor, error) {
	if len(dims) == 0 {
		return Tensor{}, fmt.Errorf("%w: no active dimensions", ErrShapeMismatch)
	}
	d := x.Cols()
	for _, idx := range dims {
		if idx < 0 || idx >= d {
			return Tensor{}, fmt.Errorf(
				"%w: active dimension %d out of range [0, %d)",
				ErrShapeMismatch, idx, d)
		}
	}
	mats := make([]*mat.Dense, x.Batch())
	for b := range mats {
		src := x.Mat(b)
		n, _ := src.Dims()
		dst := mat.NewDense(n, len(dims), nil)
		for i := 0; i < n; i++ {
			row := src.RawRowView(i)
			out := dst.RawRowView(i)
			for j, idx := range dims {
				out[j] = row[idx]
			}
		}
		mats[b] = dst
	}
	return x.withMats(mats), nil
}

// forEachBatch runs f for every batch element, in parallel for
// batches of more than one element.
func forEachBatch(n int, f func(b int) error) error {
	if n == 1 {
		return f(0)
	}
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for b := 0; b < n; b++ {
		g.Go(func() error { return f(b) })
	}
	return g.Wait()
}
