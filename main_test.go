package main

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	X, Y, err := load(strings.NewReader(selfCheckData))
	if err != nil {
		t.Fatal(err)
	}
	if len(X) != 21 || len(Y) != 21 {
		t.Fatalf("got %d inputs and %d outputs, want 21", len(X), len(Y))
	}
	if X[4][0] != 1 || Y[4] != -0.9683 {
		t.Errorf("record 4: got %v,%v", X[4], Y[4])
	}

	for _, data := range []string{
		"0,abc\n",
		"abc,0\n",
		"1\n",
	} {
		if _, _, err := load(strings.NewReader(data)); err == nil {
			t.Errorf("%q: no error", data)
		}
	}
}

func TestRunTooShort(t *testing.T) {
	var out bytes.Buffer
	if err := run(strings.NewReader("0,1\n1,2\n"), &out); err == nil {
		t.Error("no error for two observations")
	}
}

func TestRunSelfCheck(t *testing.T) {
	var out bytes.Buffer
	if err := run(strings.NewReader(selfCheckData), &out); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	// one forecast per observation after the first two
	if len(lines) != 19 {
		t.Fatalf("got %d forecasts, want 19", len(lines))
	}
	for i, line := range lines {
		fields := strings.Split(line, ",")
		// x, y, mean, std, log prior, period length
		if len(fields) != 6 {
			t.Fatalf("forecast %d: %d fields, want 6: %q", i, len(fields), line)
		}
		v := make([]float64, len(fields))
		for j, f := range fields {
			var err error
			if v[j], err = strconv.ParseFloat(f, 64); err != nil {
				t.Fatalf("forecast %d, field %d: %v", i, j, err)
			}
		}
		mean, std := v[2], v[3]
		if math.IsNaN(mean) || math.IsInf(mean, 0) {
			t.Errorf("forecast %d: mean %g", i, mean)
		}
		if math.IsNaN(std) || math.IsInf(std, 0) || std < 0 {
			t.Errorf("forecast %d: std %g", i, std)
		}
		if v[0] != 0.25*float64(i+2) {
			t.Errorf("forecast %d: input %g, want %g", i, v[0], 0.25*float64(i+2))
		}
		if v[5] != 1 {
			t.Errorf("forecast %d: period length %g, want 1", i, v[5])
		}
	}
}
