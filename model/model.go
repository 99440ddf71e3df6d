// Package model adapts kernels and their parameter stores to infergo
// models and gogp similarity kernels.
package model

import (
	"bitbucket.org/dtolpin/coskern/kernel"
	"bitbucket.org/dtolpin/coskern/logprior/ad"
	"bitbucket.org/dtolpin/coskern/param"
	"bitbucket.org/dtolpin/coskern/priors"
	"bitbucket.org/dtolpin/infergo/model"
	"fmt"
	"math"
)

// Priors is the log prior density of all parameters in a store, as a
// function of the flattened parameter vector (see param.Store.Vector).
// It does not write x into the store. Normal and uniform priors are
// differentiated by infergo, other priors through their Dlogp.
type Priors struct {
	Store *param.Store
	grad  []float64
}

var _ model.Model = (*Priors)(nil)

func (m *Priors) Observe(x []float64) float64 {
	ps := m.Store.Priors()
	if len(x) != len(ps) {
		panic(fmt.Sprintf("model: %d parameters, store holds %d",
			len(x), len(ps)))
	}
	lp := &ad.Model{}
	var other []int
	for i, p := range ps {
		switch p := p.(type) {
		case nil:
		case priors.Normal:
			lp.Normal = append(lp.Normal, i)
			lp.Mu = append(lp.Mu, p.Mu)
			lp.Sigma = append(lp.Sigma, p.Sigma)
		case priors.Uniform:
			lp.Uniform = append(lp.Uniform, i)
			lp.Lo = append(lp.Lo, p.Lo)
			lp.Hi = append(lp.Hi, p.Hi)
		default:
			other = append(other, i)
		}
	}

	ll := lp.Observe(x)
	m.grad = append([]float64{}, model.Gradient(lp)...)
	for _, i := range other {
		ll += ps[i].Logp(x[i])
		m.grad[i] += ps[i].Dlogp(x[i])
	}
	return ll
}

// Gradient is the gradient of the last Observe.
func (m *Priors) Gradient() []float64 {
	return m.grad
}

// Simil makes a cosine kernel usable as the similarity kernel of a
// gogp Gaussian process. The kernel reads its own period length from
// its store, so there are no kernel parameters in x:
//
//	x = [xa..., xb...], len(xa) = len(xb) = NDim.
//
// Batch element 0 of the period length is used.
type Simil struct {
	Kernel *kernel.Cosine
	NDim   int
	grad   []float64
}

func (*Simil) NTheta() int { return 0 }

func (s *Simil) Observe(x []float64) float64 {
	if len(x) != 2*s.NDim {
		panic(fmt.Sprintf("model: similarity of %d values, want %d",
			len(x), 2*s.NDim))
	}
	xa, xb := x[:s.NDim], x[s.NDim:]
	x1, err := kernel.FromRows([][]float64{xa})
	if err != nil {
		panic(err)
	}
	x2, err := kernel.FromRows([][]float64{xb})
	if err != nil {
		panic(err)
	}
	k, err := s.Kernel.Evaluate(x1, x2)
	if err != nil {
		panic(err)
	}

	// dk/dxa = -sin(pi u) pi (xa - xb)/(p^2 u), u = ||xa - xb||/p,
	// summed over active dimensions; dk/dxb = -dk/dxa.
	dims := s.Kernel.ActiveDims()
	if dims == nil {
		dims = make([]int, s.NDim)
		for i := range dims {
			dims[i] = i
		}
	}
	p := s.Kernel.PeriodLength()[0]
	u := 0.
	for _, d := range dims {
		dd := (xa[d] - xb[d]) / p
		u += dd * dd
	}
	u = math.Sqrt(u)
	s.grad = make([]float64, len(x))
	if u > 0 {
		c := -math.Sin(math.Pi*u) * math.Pi / (p * p * u)
		for _, d := range dims {
			g := c * (xa[d] - xb[d])
			s.grad[d] += g
			s.grad[s.NDim+d] -= g
		}
	}
	return k.At(0, 0, 0)
}

// Gradient is the gradient of the last Observe with respect to xa
// and xb.
func (s *Simil) Gradient() []float64 {
	return s.grad
}
