// Package config loads cosine kernel configuration from YAML.
//
//	kernel:
//	  active_dims: [0, 2]
//	  batch_size: 1
//	  eps: 1.0e-6
//	  prior:
//	    family: normal
//	    mu: 0
//	    sigma: 1
package config

import (
	"bitbucket.org/dtolpin/coskern/kernel"
	"bitbucket.org/dtolpin/coskern/priors"
	"bytes"
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
	"io"
	"log/slog"
	"os"
)

// ErrInvalid wraps every decoding and validation failure.
var ErrInvalid = errors.New("invalid configuration")

const (
	FamilyNone    = ""
	FamilyNormal  = "normal"
	FamilyUniform = "uniform"
)

// Prior selects a prior over log_period_length. Ranges and scales
// are checked by priors.Validate.
type Prior struct {
	Family string  `yaml:"family" validate:"omitempty,oneof=normal uniform"`
	Mu     float64 `yaml:"mu"`
	Sigma  float64 `yaml:"sigma" validate:"required_if=Family normal,gte=0"`
	Lo     float64 `yaml:"lo"`
	Hi     float64 `yaml:"hi"`
}

// Kernel holds the construction arguments of a cosine kernel.
type Kernel struct {
	ActiveDims []int   `yaml:"active_dims" validate:"omitempty,dive,gte=0"`
	BatchSize  int     `yaml:"batch_size" validate:"gte=1"`
	Eps        float64 `yaml:"eps" validate:"gt=0,lt=100000"`
	Prior      Prior   `yaml:"prior"`
}

type Config struct {
	Kernel Kernel `yaml:"kernel"`
}

var validate = validator.New()

// Default is the configuration of a kernel over all dimensions with a
// single period length and no prior.
func Default() *Config {
	return &Config{
		Kernel: Kernel{
			BatchSize: 1,
			Eps:       kernel.DefaultEps,
		},
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("loaded kernel configuration",
		"path", path,
		"active_dims", c.Kernel.ActiveDims,
		"batch_size", c.Kernel.BatchSize,
		"eps", c.Kernel.Eps,
		"prior", c.Kernel.Prior.Family)
	return c, nil
}

// Parse decodes YAML over Default and validates the result. Unknown
// fields are rejected.
func Parse(data []byte) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := priors.Validate(c.Kernel.Prior.Prior()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Prior returns the configured prior, nil for FamilyNone.
func (p Prior) Prior() priors.Prior {
	switch p.Family {
	case FamilyNormal:
		return priors.Normal{Mu: p.Mu, Sigma: p.Sigma}
	case FamilyUniform:
		return priors.Uniform{Lo: p.Lo, Hi: p.Hi}
	}
	return nil
}

// Options converts the configuration to kernel construction options.
func (k *Kernel) Options() kernel.CosineOptions {
	return kernel.CosineOptions{
		ActiveDims:        k.ActiveDims,
		BatchSize:         k.BatchSize,
		PeriodLengthPrior: k.Prior.Prior(),
		Eps:               k.Eps,
	}
}

// Build constructs the configured kernel over store.
func (k *Kernel) Build(store kernel.ParameterStore) (*kernel.Cosine, error) {
	return kernel.NewCosine(store, k.Options())
}
