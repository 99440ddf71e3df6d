// Package logprior is the log prior density of a flat parameter
// vector, as an infergo model. The differentiated version in
// logprior/ad is generated by deriv from this package:
//
//	deriv logprior
package logprior

import (
	. "bitbucket.org/dtolpin/infergo/dist"
	"math"
)

// Model places normal priors on the scalars listed in Normal and
// uniform priors on those listed in Uniform. Other scalars are
// free.
type Model struct {
	Normal []int
	Mu     []float64
	Sigma  []float64

	Uniform []int
	Lo      []float64
	Hi      []float64
}

func (m *Model) Observe(x []float64) float64 {
	ll := 0.
	for i, j := range m.Normal {
		ll += Normal.Logp(m.Mu[i], m.Sigma[i], x[j])
	}
	for i, j := range m.Uniform {
		if x[j] < m.Lo[i] || x[j] > m.Hi[i] {
			return math.Inf(-1)
		}
		ll -= math.Log(m.Hi[i] - m.Lo[i])
	}
	return ll
}
