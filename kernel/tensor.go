package kernel

import (
	"fmt"
	"gonum.org/v1/gonum/mat"
)

// Tensor is a stack of equally shaped matrices, a (b, r, c) tensor.
// An unbatched tensor holds a single (r, c) matrix and behaves as
// b = 1. Input point sets are (b, n, d) tensors, covariance matrices
// are (b, n1, n2) tensors.
type Tensor struct {
	mats    []*mat.Dense
	batched bool
}

// Matrix wraps m into an unbatched tensor. The matrix is not copied.
func Matrix(m *mat.Dense) Tensor {
	return Tensor{mats: []*mat.Dense{m}}
}

// FromRows builds an unbatched tensor with one row per point.
func FromRows(rows [][]float64) (Tensor, error) {
	m, err := denseFromRows(rows)
	if err != nil {
		return Tensor{}, err
	}
	return Matrix(m), nil
}

// NewBatch stacks mats into a batched tensor. The matrices are not
// copied and must all have the same shape.
func NewBatch(mats ...*mat.Dense) (Tensor, error) {
	if len(mats) == 0 {
		return Tensor{}, fmt.Errorf("%w: empty batch", ErrShapeMismatch)
	}
	r, c := mats[0].Dims()
	for i, m := range mats[1:] {
		if ri, ci := m.Dims(); ri != r || ci != c {
			return Tensor{}, fmt.Errorf(
				"%w: batch element %d is %dx%d, element 0 is %dx%d",
				ErrShapeMismatch, i+1, ri, ci, r, c)
		}
	}
	return Tensor{mats: mats, batched: true}, nil
}

// BatchFromRows builds a batched tensor from per-element point lists.
func BatchFromRows(batch ...[][]float64) (Tensor, error) {
	mats := make([]*mat.Dense, len(batch))
	for i, rows := range batch {
		m, err := denseFromRows(rows)
		if err != nil {
			return Tensor{}, fmt.Errorf("batch element %d: %w", i, err)
		}
		mats[i] = m
	}
	return NewBatch(mats...)
}

func denseFromRows(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: no points", ErrShapeMismatch)
	}
	d := len(rows[0])
	data := make([]float64, 0, len(rows)*d)
	for i, row := range rows {
		if len(row) != d {
			return nil, fmt.Errorf("%w: point %d has %d coordinates, want %d",
				ErrShapeMismatch, i, len(row), d)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), d, data), nil
}

func (t Tensor) Batched() bool { return t.batched }

// Batch is the size of the leading axis, 1 for unbatched tensors.
func (t Tensor) Batch() int { return len(t.mats) }

func (t Tensor) Rows() int {
	if len(t.mats) == 0 {
		return 0
	}
	r, _ := t.mats[0].Dims()
	return r
}

func (t Tensor) Cols() int {
	if len(t.mats) == 0 {
		return 0
	}
	_, c := t.mats[0].Dims()
	return c
}

// Shape is (b, r, c) for batched and (r, c) for unbatched tensors.
func (t Tensor) Shape() []int {
	if t.batched {
		return []int{t.Batch(), t.Rows(), t.Cols()}
	}
	return []int{t.Rows(), t.Cols()}
}

// Mat returns batch element b. The matrix is shared, not copied.
func (t Tensor) Mat(b int) *mat.Dense {
	return t.mats[b]
}

func (t Tensor) At(b, i, j int) float64 {
	return t.mats[b].At(i, j)
}

// empty also covers zero-value gonum matrices, which have no rows
// or columns.
func (t Tensor) empty() bool {
	if len(t.mats) == 0 {
		return true
	}
	for _, m := range t.mats {
		if m == nil || m.IsEmpty() {
			return true
		}
	}
	return false
}

// withMats keeps the batching flag of t; a result wider than one
// element is always batched.
func (t Tensor) withMats(mats []*mat.Dense) Tensor {
	return Tensor{mats: mats, batched: t.batched || len(mats) > 1}
}
