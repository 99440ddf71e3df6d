package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"gonum.org/v1/gonum/stat/distuv"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
)

var (
	COMMA  = ","
	SKIP   = 0
	NDIM   = 1
	NOISE  = 0.
	HEADER = false
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			`Computes average negative log predictive density of forecasts. Invocation:
	%s  [OPTIONS] < FORECASTS
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.StringVar(&COMMA, "comma", COMMA, "field separator")
	flag.IntVar(&SKIP, "s", SKIP, "initial records to skip")
	flag.IntVar(&NDIM, "d", NDIM, "number of input fields")
	flag.Float64Var(&NOISE, "noise", NOISE, "noise variance added to predictions")
	flag.BoolVar(&HEADER, "header", HEADER, "skip the header")
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

// negative log predictive density
func nlpd(y, mean, std float64) float64 {
	return -distuv.Normal{Mu: mean, Sigma: std}.LogProb(y)
}

func main() {
	flag.Parse()

	avg, err := average(os.Stdin)
	if err != nil {
		slog.Error("nlpd failed", "err", err)
		os.Exit(1)
	}
	fmt.Printf("%f\n", avg)
}

// average reads forecast records x..., y, mean, std, ... and returns
// the mean nlpd over records after the first SKIP.
func average(input io.Reader) (float64, error) {
	rdr := csv.NewReader(input)
	rdr.Comma = rune(COMMA[0])
	rdr.FieldsPerRecord = -1
	if HEADER {
		if _, err := rdr.Read(); err != nil {
			return 0, err
		}
	}

	sum := 0.
	n := 0
	for i := 0; ; i++ {
		record, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		if i < SKIP {
			continue
		}
		if len(record) < NDIM+3 {
			return 0, fmt.Errorf("record %d: %d fields, need %d",
				i, len(record), NDIM+3)
		}

		var v [3]float64
		for j := range v {
			if v[j], err = strconv.ParseFloat(record[NDIM+j], 64); err != nil {
				return 0, fmt.Errorf("record %d: %w", i, err)
			}
		}
		y, mean, std := v[0], v[1], v[2]
		std = math.Sqrt(std*std + NOISE)
		sum += nlpd(y, mean, std)
		n++
	}
	if n == 0 {
		return 0, fmt.Errorf("no forecasts")
	}
	return sum / float64(n), nil
}
