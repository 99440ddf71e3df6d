// Package param holds named kernel parameters, each with an optional
// prior, and flattens them into a vector for external optimizers.
//
// A Store does no locking. Writers (Set, SetVector) must not run
// concurrently with readers.
package param

import (
	"bitbucket.org/dtolpin/coskern/priors"
	"errors"
	"fmt"
)

var (
	ErrDuplicate = errors.New("duplicate parameter")
	ErrShape     = errors.New("parameter shape mismatch")
)

// Handle refers to a registered parameter.
type Handle int

type entry struct {
	name  string
	shape []int
	data  []float64
	prior priors.Prior
}

// Store is the default parameter store.
type Store struct {
	entries []entry
	index   map[string]Handle
}

func NewStore() *Store {
	return &Store{index: make(map[string]Handle)}
}

// Register adds a parameter with the given shape and initial values.
// The initial values are copied.
func (s *Store) Register(
	name string,
	shape []int,
	init []float64,
	prior priors.Prior,
) (Handle, error) {
	if name == "" {
		return -1, fmt.Errorf("%w: empty name", ErrShape)
	}
	if _, ok := s.index[name]; ok {
		return -1, fmt.Errorf("%w: %q", ErrDuplicate, name)
	}
	size := 1
	for i, n := range shape {
		if n <= 0 {
			return -1, fmt.Errorf("%w: %q: dimension %d is %d",
				ErrShape, name, i, n)
		}
		size *= n
	}
	if size != len(init) {
		return -1, fmt.Errorf("%w: %q: shape %v holds %d values, got %d",
			ErrShape, name, shape, size, len(init))
	}
	if err := priors.Validate(prior); err != nil {
		return -1, fmt.Errorf("%q: %w", name, err)
	}

	if s.index == nil {
		s.index = make(map[string]Handle)
	}
	h := Handle(len(s.entries))
	s.entries = append(s.entries, entry{
		name:  name,
		shape: append([]int(nil), shape...),
		data:  append([]float64(nil), init...),
		prior: prior,
	})
	s.index[name] = h
	return h, nil
}

func (s *Store) entry(h Handle) *entry {
	if h < 0 || int(h) >= len(s.entries) {
		panic(fmt.Sprintf("param: unknown handle %d", h))
	}
	return &s.entries[h]
}

// Read returns a copy of the current values of the parameter.
func (s *Store) Read(h Handle) []float64 {
	return append([]float64(nil), s.entry(h).data...)
}

// Set replaces the values of the parameter.
func (s *Store) Set(h Handle, values []float64) error {
	e := s.entry(h)
	if len(values) != len(e.data) {
		return fmt.Errorf("%w: %q holds %d values, got %d",
			ErrShape, e.name, len(e.data), len(values))
	}
	copy(e.data, values)
	return nil
}

func (s *Store) Name(h Handle) string {
	return s.entry(h).name
}

func (s *Store) Shape(h Handle) []int {
	return append([]int(nil), s.entry(h).shape...)
}

func (s *Store) Prior(h Handle) priors.Prior {
	return s.entry(h).prior
}

func (s *Store) Lookup(name string) (Handle, bool) {
	h, ok := s.index[name]
	return h, ok
}

// Names lists parameter names in registration order.
func (s *Store) Names() []string {
	names := make([]string, len(s.entries))
	for i := range s.entries {
		names[i] = s.entries[i].name
	}
	return names
}

// Len is the total number of scalars across all parameters.
func (s *Store) Len() int {
	n := 0
	for i := range s.entries {
		n += len(s.entries[i].data)
	}
	return n
}

// Vector concatenates all parameter values in registration order.
func (s *Store) Vector() []float64 {
	x := make([]float64, 0, s.Len())
	for i := range s.entries {
		x = append(x, s.entries[i].data...)
	}
	return x
}

// SetVector is the inverse of Vector.
func (s *Store) SetVector(x []float64) error {
	if len(x) != s.Len() {
		return fmt.Errorf("%w: store holds %d values, got %d",
			ErrShape, s.Len(), len(x))
	}
	k := 0
	for i := range s.entries {
		k += copy(s.entries[i].data, x[k:])
	}
	return nil
}

// Priors lists, for every scalar of Vector, the prior governing it,
// nil for unpriored parameters.
func (s *Store) Priors() []priors.Prior {
	ps := make([]priors.Prior, 0, s.Len())
	for i := range s.entries {
		for range s.entries[i].data {
			ps = append(ps, s.entries[i].prior)
		}
	}
	return ps
}

// LogPrior is the joint log prior density of the current values.
// Every element of a batched parameter contributes independently.
func (s *Store) LogPrior() float64 {
	ll := 0.
	for i := range s.entries {
		e := &s.entries[i]
		if e.prior == nil {
			continue
		}
		for _, v := range e.data {
			ll += e.prior.Logp(v)
		}
	}
	return ll
}
