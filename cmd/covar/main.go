package main

import (
	"bitbucket.org/dtolpin/coskern/config"
	"bitbucket.org/dtolpin/coskern/kernel"
	"bitbucket.org/dtolpin/coskern/param"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
)

var (
	CONFIG = ""
	X2     = ""
	LOGP   = 0.
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			`Prints the cosine kernel covariance matrix of CSV points. Invocation:
	%s [OPTIONS] < X1 > COVARIANCE
The covariance is between X1 and itself, or X1 and the -x2 points.
Batch elements are separated by an empty line.
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.StringVar(&CONFIG, "config", CONFIG, "kernel configuration (YAML)")
	flag.StringVar(&X2, "x2", X2, "second point set (CSV)")
	flag.Float64Var(&LOGP, "logp", LOGP, "log period length")
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

func main() {
	flag.Parse()
	if err := run(os.Stdin, os.Stdout); err != nil {
		slog.Error("covariance failed", "err", err)
		os.Exit(1)
	}
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
	logp := make([]float64, k.BatchSize())
	for i := range logp {
		logp[i] = LOGP
	}
	if err := store.Set(k.Handle(), logp); err != nil {
		return err
	}
	if err := k.CheckPeriodLength(); err != nil {
		slog.Warn("period length at a bound", "err", err)
	}

	x1, err := readPoints(input)
	if err != nil {
		return fmt.Errorf("x1: %w", err)
	}
	x2 := x1
	if X2 != "" {
		f, err := os.Open(X2)
		if err != nil {
			return err
		}
		defer f.Close()
		if x2, err = readPoints(f); err != nil {
			return fmt.Errorf("x2: %w", err)
		}
	}

	cov, err := k.Evaluate(x1, x2)
	if err != nil {
		return err
	}
	w := csv.NewWriter(output)
	record := make([]string, cov.Cols())
	for b := 0; b != cov.Batch(); b++ {
		if b > 0 {
			w.Flush()
			fmt.Fprintln(output)
		}
		for i := 0; i != cov.Rows(); i++ {
			for j := range record {
				record[j] = strconv.FormatFloat(cov.At(b, i, j), 'g', -1, 64)
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

// readPoints reads one point per CSV record.
func readPoints(rdr io.Reader) (kernel.Tensor, error) {
	records, err := csv.NewReader(rdr).ReadAll()
	if err != nil {
		return kernel.Tensor{}, err
	}
	points := make([][]float64, len(records))
	for i, record := range records {
		points[i] = make([]float64, len(record))
		for j := range record {
			points[i][j], err = strconv.ParseFloat(record[j], 64)
			if err != nil {
				return kernel.Tensor{}, fmt.Errorf("line %d: %w", i+1, err)
			}
		}
	}
	return kernel.FromRows(points)
}
