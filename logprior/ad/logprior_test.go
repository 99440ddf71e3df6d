package ad

import (
	"bitbucket.org/dtolpin/coskern/logprior"
	"bitbucket.org/dtolpin/infergo/model"
	"math"
	"testing"
)

const (
	dx  = 1e-8
	eps = 1e-4
)

func testModels() []*logprior.Model {
	return []*logprior.Model{
		{},
		{Normal: []int{0}, Mu: []float64{0}, Sigma: []float64{1}},
		{
			Normal: []int{0, 2}, Mu: []float64{0.5, -1}, Sigma: []float64{2, 0.3},
			Uniform: []int{1}, Lo: []float64{-3}, Hi: []float64{3},
		},
	}
}

func differentiated(m *logprior.Model) *Model {
	return &Model{
		Normal: m.Normal, Mu: m.Mu, Sigma: m.Sigma,
		Uniform: m.Uniform, Lo: m.Lo, Hi: m.Hi,
	}
}

func TestObserve(t *testing.T) {
	for i, m := range testModels() {
		dm := differentiated(m)
		for _, x := range [][]float64{
			{0, 0, 0},
			{1, -1, 3},
			{-2.5, 0.7, -1},
		} {
			want := m.Observe(x)
			got := dm.Observe(x)
			if math.Abs(got-want) > 1e-9 {
				t.Errorf("%d: %v: got %.6f, want %.6f", i, x, got, want)
			}
		}
	}
}

func TestGradient(t *testing.T) {
	for i, m := range testModels() {
		dm := differentiated(m)
		for _, x := range [][]float64{
			{0, 0, 0},
			{1, -1, 3},
			{-2.5, 0.7, -1},
		} {
			ll0 := dm.Observe(x)
			grad := model.Gradient(dm)
			if len(grad) != len(x) {
				t.Fatalf("%d: gradient of length %d, want %d", i, len(grad), len(x))
			}
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
		}
	}
}

func TestOutsideSupport(t *testing.T) {
	m := &Model{Uniform: []int{0}, Lo: []float64{-1}, Hi: []float64{1}}
	if ll := m.Observe([]float64{2}); !math.IsInf(ll, -1) {
		t.Errorf("outside support: got %g, want -Inf", ll)
	}
	if ll := m.Observe([]float64{0.5}); math.Abs(ll+math.Log(2)) > 1e-12 {
		t.Errorf("inside support: got %g, want %g", ll, -math.Log(2))
	}
}
