package model

import (
	"bitbucket.org/dtolpin/coskern/kernel"
	"bitbucket.org/dtolpin/coskern/param"
	"bitbucket.org/dtolpin/coskern/priors"
	"bitbucket.org/dtolpin/gogp/gp"
	adkernel "bitbucket.org/dtolpin/gogp/kernel/ad"
	"bitbucket.org/dtolpin/infergo/model"
	"math"
	"testing"
)

const (
	dx  = 1e-8
	eps = 1e-4
)

func TestPriorsGradient(t *testing.T) {
	store := param.NewStore()
	if _, err := kernel.NewCosine(store, kernel.CosineOptions{
		BatchSize:         2,
		PeriodLengthPrior: priors.Normal{Mu: 0.5, Sigma: 2},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Register("free", []int{1}, []float64{0}, nil); err != nil {
		t.Fatal(err)
	}
	m := &Priors{Store: store}

	for i, x := range [][]float64{
		{0, 0, 0},
		{1, -1, 3},
		{-2.5, 0.7, -1},
	} {
		ll0 := m.Observe(x)
		grad := model.Gradient(m)
		for j := range x {
			x0 := x[j]
			x[j] += dx
			ll := m.Observe(x)
			dldx := (ll - ll0) / dx
			x[j] = x0
			if math.Abs(grad[j]-dldx) > eps {
				t.Errorf("%d: dl/dx%d mismatch: got %.8f, want %.4f",
					i, j, dldx, grad[j])
			}
		}
		if grad[2] != 0 {
			t.Errorf("%d: unpriored parameter has gradient %g", i, grad[2])
		}
	}
}

// laplace is a prior outside the known families.
type laplace struct{ b float64 }

func (p laplace) Logp(x float64) float64 {
	return -math.Abs(x)/p.b - math.Log(2*p.b)
}

func (p laplace) Dlogp(x float64) float64 {
	if x < 0 {
		return 1 / p.b
	}
	return -1 / p.b
}

func TestPriorsMixed(t *testing.T) {
	store := param.NewStore()
	for _, r := range []struct {
		name  string
		prior priors.Prior
	}{
		{"n", priors.Normal{Mu: 1, Sigma: 0.5}},
		{"u", priors.Uniform{Lo: -2, Hi: 2}},
		{"l", laplace{b: 2}},
	} {
		if _, err := store.Register(r.name, []int{1}, []float64{0}, r.prior); err != nil {
			t.Fatal(err)
		}
	}
	m := &Priors{Store: store}

	x := []float64{0.3, -0.7, 1.1}
	ll0 := m.Observe(x)
	if err := store.SetVector(x); err != nil {
		t.Fatal(err)
	}
	if want := store.LogPrior(); math.Abs(ll0-want) > 1e-9 {
		t.Errorf("log prior: got %.6f, want %.6f", ll0, want)
	}
	grad := model.Gradient(m)
	for j := range x {
		x0 := x[j]
		x[j] += dx
		ll := m.Observe(x)
		dldx := (ll - ll0) / dx
		x[j] = x0
		if math.Abs(grad[j]-dldx) > eps {
			t.Errorf("dl/dx%d mismatch: got %.8f, want %.4f", j, dldx, grad[j])
		}
	}

	if ll := m.Observe([]float64{0, 3, 0}); !math.IsInf(ll, -1) {
		t.Errorf("outside uniform support: got %g, want -Inf", ll)
	}
}

func newSimil(t *testing.T, ndim int, logp float64, dims []int) *Simil {
	t.Helper()
	store := param.NewStore()
	k, err := kernel.NewCosine(store, kernel.CosineOptions{ActiveDims: dims})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set(k.Handle(), []float64{logp}); err != nil {
		t.Fatal(err)
	}
	return &Simil{Kernel: k, NDim: ndim}
}

func TestSimilGradient(t *testing.T) {
	for i, c := range []struct {
		ndim int
		logp float64
		dims []int
		x    []float64
	}{
		{1, 0, nil, []float64{0, 0.3}},
		{1, math.Log(2), nil, []float64{1.5, -0.2}},
		{2, 0.3, nil, []float64{0, 1, 0.4, -0.5}},
		{3, -0.2, []int{2, 0}, []float64{0, 1, 2, 0.5, -7, 1.1}},
		{2, 0, []int{1, 1}, []float64{0, 0.1, 3, 0.3}},
	} {
		s := newSimil(t, c.ndim, c.logp, c.dims)
		k0 := s.Observe(c.x)
		grad := s.Gradient()
		for j := range c.x {
			x0 := c.x[j]
			c.x[j] += dx
			k := s.Observe(c.x)
			dkdx := (k - k0) / dx
			c.x[j] = x0
			if math.Abs(grad[j]-dkdx) > eps {
				t.Errorf("%d: dk/dx%d mismatch: got %.8f, want %.4f",
					i, j, dkdx, grad[j])
			}
		}
	}
}

func TestSimilAgreesWithEvaluate(t *testing.T) {
	s := newSimil(t, 2, math.Log(1.3), nil)
	x1, err := kernel.FromRows([][]float64{{0, 1}, {2, -1}, {0.5, 0.5}})
	if err != nil {
		t.Fatal(err)
	}
	res, err := s.Kernel.Evaluate(x1, x1)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i != 3; i++ {
		for j := 0; j != 3; j++ {
			xa := x1.Mat(0).RawRowView(i)
			xb := x1.Mat(0).RawRowView(j)
			got := s.Observe(append(append([]float64{}, xa...), xb...))
			if got != res.At(0, i, j) {
				t.Errorf("(%d, %d): got %g, want %g", i, j, got, res.At(0, i, j))
			}
		}
	}
	if s.NTheta() != 0 {
		t.Errorf("NTheta: got %d, want 0", s.NTheta())
	}
}

func TestSimilInGP(t *testing.T) {
	s := newSimil(t, 1, math.Log(4), nil)
	g := &gp.GP{
		NDim:  1,
		Simil: s,
		Noise: adkernel.ConstantNoise(0.01),
	}
	X := [][]float64{{0}, {1}, {2}, {3}}
	Y := []float64{1, 0, -1, 0}
	if err := g.Absorb(X, Y); err != nil {
		t.Fatal(err)
	}
	mu, sigma, err := g.Produce([][]float64{{4}})
	if err != nil {
		t.Fatal(err)
	}
	if len(mu) != 1 || len(sigma) != 1 {
		t.Fatalf("got %d means and %d deviations, want 1 each",
			len(mu), len(sigma))
	}
	if math.IsNaN(mu[0]) || math.IsNaN(sigma[0]) {
		t.Errorf("prediction is not a number: %g, %g", mu[0], sigma[0])
	}
}
