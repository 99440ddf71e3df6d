package main

import (
	"bitbucket.org/dtolpin/coskern/config"
	"bitbucket.org/dtolpin/coskern/model"
	"bitbucket.org/dtolpin/coskern/param"
	"bitbucket.org/dtolpin/gogp/gp"
	adkernel "bitbucket.org/dtolpin/gogp/kernel/ad"
	"encoding/csv"
	"flag"
	"fmt"
	"gonum.org/v1/gonum/stat"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

var (
	CONFIG  = ""
	NOISE   = 0.01
	VERBOSE = false
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			`One-step-ahead forecasting with a periodic cosine kernel. Invocation:
  %s [OPTIONS] < INPUT > OUTPUT
or
  %s [OPTIONS] selfcheck
In 'selfcheck' mode, the data hard-coded into the program is used,
to demonstrate basic functionality.
`, os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}
	flag.StringVar(&CONFIG, "config", CONFIG, "kernel configuration (YAML)")
	flag.Float64Var(&NOISE, "noise", NOISE, "observation noise")
	flag.BoolVar(&VERBOSE, "v", VERBOSE, "verbose logging")
}

func main() {
	var (
		input  io.Reader = os.Stdin
		output io.Writer = os.Stdout
	)

	flag.Parse()
	setupLogging()
	switch {
	case flag.NArg() == 0:
	case flag.NArg() == 1 && flag.Arg(0) == "selfcheck":
		input = strings.NewReader(selfCheckData)
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err := run(input, output); err != nil {
		slog.Error("forecast failed", "err", err)
		os.Exit(1)
	}
}

func setupLogging() {
	level := slog.LevelInfo
	if VERBOSE {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr,
		&slog.HandlerOptions{Level: level})))
}

func run(input io.Reader, output io.Writer) error {
	cfg := config.Default()
	if CONFIG != "" {
		var err error
		if cfg, err = config.Load(CONFIG); err != nil {
			return err
		}
	}

	store := param.NewStore()
	k, err := cfg.Kernel.Build(store)
	if err != nil {
		return err
	}
	if err := k.CheckPeriodLength(); err != nil {
		slog.Warn("kernel starts degenerate", "err", err)
	}

	slog.Info("loading")
	X, Y, err := load(input)
	if err != nil {
		return err
	}
	if len(X) < 3 {
		return fmt.Errorf("need at least 3 observations, got %d", len(X))
	}
	slog.Info("loaded", "observations", len(X), "dimensions", len(X[0]))

	// Normalize Y
	meany, stdy := stat.MeanStdDev(Y, nil)
	if stdy > 0 {
		for i := range Y {
			Y[i] = (Y[i] - meany) / stdy
		}
	}

	g := &gp.GP{
		NDim:  len(X[0]),
		Simil: &model.Simil{Kernel: k, NDim: len(X[0])},
		Noise: adkernel.ConstantNoise(NOISE),
	}
	priors := &model.Priors{Store: store}
	lp := priors.Observe(store.Vector())
	period := k.PeriodLength()

	// Forecast one step out of sample, iteratively.
	slog.Info("forecasting")
	for end := 2; end != len(X); end++ {
		if err := g.Absorb(X[:end], Y[:end]); err != nil {
			return fmt.Errorf("absorb %d observations: %w", end, err)
		}
		Z := X[end : end+1]
		mu, sigma, err := g.Produce(Z)
		if err != nil {
			slog.Warn("failed to forecast", "at", end, "err", err)
			continue
		}
		for _, z := range Z[0] {
			fmt.Fprintf(output, "%f,", z)
		}
		fmt.Fprintf(output, "%f,%f,%f,%f", Y[end], mu[0], sigma[0], lp)
		for _, p := range period {
			fmt.Fprintf(output, ",%f", p)
		}
		fmt.Fprintln(output)
		slog.Debug("forecast", "at", end, "mean", mu[0], "std", sigma[0])
	}
	slog.Info("done")
	return nil
}

// load parses the data from csv and returns inputs and outputs,
// suitable for feeding to the GP.
func load(rdr io.Reader) (
	x [][]float64,
	y []float64,
	err error,
) {
	csv := csv.NewReader(rdr)
RECORDS:
	for {
		record, err := csv.Read()
		switch err {
		case nil:
			// record contains the data
			if len(record) < 2 {
				return x, y, fmt.Errorf("line %d: need inputs and an output",
					len(x)+1)
			}
			xi := make([]float64, len(record)-1)
			i := 0
			for ; i != len(record)-1; i++ {
				xi[i], err = strconv.ParseFloat(record[i], 64)
				if err != nil {
					// data error
					return x, y, err
				}
			}
			yi, err := strconv.ParseFloat(record[i], 64)
			if err != nil {
				// data error
				return x, y, err
			}
			x = append(x, xi)
			y = append(y, yi)
		case io.EOF:
			// end of file
			break RECORDS
		default:
			// i/o error
			return x, y, err
		}
	}

	return x, y, nil
}

// A noisy seasonal signal with period 2.
var selfCheckData = `0.00,1.0812
0.25,0.6534
0.50,0.0417
0.75,-0.7519
1.00,-0.9683
1.25,-0.6755
1.50,0.0529
1.75,0.7410
2.00,1.0126
2.25,0.6871
2.50,-0.0932
2.75,-0.6923
3.00,-1.0417
3.25,-0.7238
3.50,0.0214
3.75,0.7152
4.00,0.9731
4.25,0.7317
4.50,-0.0385
4.75,-0.6647
5.00,-1.0206
`
