// Package priors provides prior distributions over unconstrained
// kernel parameters, such as the logarithm of a period length.
package priors

import (
	"bitbucket.org/dtolpin/infergo/dist"
	"errors"
	"fmt"
	"gonum.org/v1/gonum/stat/distuv"
	"math"
)

// ErrInvalid is returned by Validate for priors with unusable
// hyperparameters.
var ErrInvalid = errors.New("invalid prior")

// Prior is a log density over a single unconstrained scalar.
type Prior interface {
	// Logp is the log density at x.
	Logp(x float64) float64
	// Dlogp is the derivative of Logp at x.
	Dlogp(x float64) float64
}

// Normal is a Gaussian prior. On a log-parameter it is the
// log-normal prior on the parameter itself.
type Normal struct {
	Mu    float64
	Sigma float64
}

func (p Normal) Logp(x float64) float64 {
	return dist.Normal.Logp(p.Mu, p.Sigma, x)
}

func (p Normal) Dlogp(x float64) float64 {
	return (p.Mu - x) / (p.Sigma * p.Sigma)
}

func (p Normal) String() string {
	return fmt.Sprintf("Normal(%g, %g)", p.Mu, p.Sigma)
}

// Uniform is flat on [Lo, Hi] and has zero density elsewhere.
type Uniform struct {
	Lo float64
	Hi float64
}

func (p Uniform) Logp(x float64) float64 {
	return distuv.Uniform{Min: p.Lo, Max: p.Hi}.LogProb(x)
}

// Dlogp is zero inside the support. Outside of it the density is
// zero, and there is no direction that helps.
func (p Uniform) Dlogp(x float64) float64 {
	return 0
}

func (p Uniform) String() string {
	return fmt.Sprintf("Uniform(%g, %g)", p.Lo, p.Hi)
}

// Validate checks hyperparameters of the known prior families.
// A nil prior is valid and means no prior.
func Validate(p Prior) error {
	switch p := p.(type) {
	case nil:
	case Normal:
		if !(p.Sigma > 0) || math.IsInf(p.Sigma, 0) || math.IsNaN(p.Mu) {
			return fmt.Errorf("%w: %v: sigma must be positive and finite",
				ErrInvalid, p)
		}
	case Uniform:
		if !(p.Hi > p.Lo) || math.IsInf(p.Hi-p.Lo, 0) {
			return fmt.Errorf("%w: %v: need finite lo < hi", ErrInvalid, p)
		}
	}
	return nil
}
