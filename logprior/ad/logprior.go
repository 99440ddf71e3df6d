// Package logprior is the log prior density of a flat parameter
// vector, as an infergo model. The differentiated version in
// logprior/ad is generated by deriv from this package:
//
//	deriv logprior
package ad

import (
	"bitbucket.org/dtolpin/infergo/ad"
	. "bitbucket.org/dtolpin/infergo/dist/ad"
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
	if ad.Called() {
		ad.Enter()
	} else {
		ad.Setup(x)
	}
	var ll float64
	ad.Assignment(&ll, ad.Value(0.))
	for i, j := range m.Normal {
		ad.Assignment(&ll, ad.Arithmetic(ad.OpAdd, &ll, ad.Call(func(_ []float64) {
			Normal.Logp(0, 0, 0)
		}, 3, &m.Mu[i], &m.Sigma[i], &x[j])))
	}
	for i, j := range m.Uniform {
		if x[j] < m.Lo[i] || x[j] > m.Hi[i] {
			return ad.Return(ad.Value(math.Inf(-1)))
		}
		ad.Assignment(&ll, ad.Arithmetic(ad.OpSub, &ll, ad.Elemental(math.Log, ad.Arithmetic(ad.OpSub, &m.Hi[i], &m.Lo[i]))))
	}
	return ad.Return(&ll)
}
