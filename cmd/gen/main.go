package main

import (
	"bitbucket.org/dtolpin/coskern/kernel"
	"bitbucket.org/dtolpin/coskern/param"
	"flag"
	"fmt"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"log/slog"
	"math"
	"os"
)

var (
	N      = 100
	STEP   = 0.1
	PERIOD = 2.
	NOISE  = 0.01
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			`Generate test data from a cosine kernel GP prior. Invocation:
	%s [OPTIONS] > OUTPUT
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.IntVar(&N, "n", N, "number of points")
	flag.Float64Var(&STEP, "step", STEP, "grid step")
	flag.Float64Var(&PERIOD, "period", PERIOD, "period of the signal")
	flag.Float64Var(&NOISE, "noise", NOISE, "noise variance")
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

func main() {
	flag.Parse()

	X, Y, err := sample(N, STEP, PERIOD, NOISE)
	if err != nil {
		slog.Error("sampling failed", "err", err)
		os.Exit(1)
	}
	for i := range X {
		fmt.Printf("%f,%f\n", X[i], Y[i])
	}
}

// sample draws y at x = 0, step, 2*step, ... from a GP with the
// cosine kernel of the given period plus white noise.
func sample(n int, step, period, noise float64) (
	X []float64,
	Y []float64,
	err error,
) {
	if n <= 0 || !(noise > 0) {
		return nil, nil, fmt.Errorf("need n > 0 and noise > 0")
	}
	store := param.NewStore()
	k, err := kernel.NewCosine(store, kernel.CosineOptions{})
	if err != nil {
		return nil, nil, err
	}
	// cos(pi r/p) repeats every 2p.
	if err := store.Set(k.Handle(), []float64{math.Log(period / 2)}); err != nil {
		return nil, nil, err
	}
	if err := k.CheckPeriodLength(); err != nil {
		return nil, nil, err
	}

	X = make([]float64, n)
	for i := range X {
		X[i] = float64(i) * step
	}
	x := kernel.Matrix(mat.NewDense(n, 1, append([]float64(nil), X...)))
	cov, err := k.Evaluate(x, x)
	if err != nil {
		return nil, nil, err
	}

	sigma := mat.NewSymDense(n, nil)
	for i := 0; i != n; i++ {
		for j := i; j != n; j++ {
			sigma.SetSym(i, j, cov.At(0, i, j))
		}
		sigma.SetSym(i, i, sigma.At(i, i)+noise)
	}
	normal, ok := distmv.NewNormal(make([]float64, n), sigma, nil)
	if !ok {
		return nil, nil, fmt.Errorf("covariance is not positive definite")
	}
	Y = normal.Rand(nil)
	return X, Y, nil
}
