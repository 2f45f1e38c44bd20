package hrimport

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Appraisals AppraisalConfig `yaml:"appraisals"`
	Rota       RotaConfig      `yaml:"rota"`
}

type AppraisalConfig struct {
	Sheet          string       `yaml:"sheet"`
	IntervalMonths int          `yaml:"interval_months"`
	Layout         ReviewLayout `yaml:"layout"`
}

type RotaConfig struct {
	// Year is the calendar year the April sheet belongs to.
	Year          int        `yaml:"year"`
	FirstRow      int        `yaml:"first_row"`
	MaxNameLength int        `yaml:"max_name_length"`
	Tolerance     float64    `yaml:"tolerance"`
	Workers       int        `yaml:"workers"`
	Codes         ShiftCodes `yaml:"codes"`
}

func DefaultConfig() Config {
	return Config{
		Appraisals: AppraisalConfig{
			Sheet:          "Apprasials",
			IntervalMonths: DefaultInterval,
			Layout: ReviewLayout{
				FirstRow:          3,
				NameColumn:        2,
				StartColumn:       3,
				FirstReviewColumn: 4,
				Reviews:           12,
			},
		},
		Rota: RotaConfig{
			Year:          2026,
			FirstRow:      3,
			MaxNameLength: 20,
			Tolerance:     0.5,
			Workers:       4,
			Codes:         DefaultShiftCodes(),
		},
	}
}

// LoadConfig reads a YAML config file. Settings missing from the file keep
// their defaults; codes listed in the file extend the default code table.
func LoadConfig(path string) (Config, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return ParseConfig(bs)
}

func ParseConfig(bs []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(bs, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := mergo.Merge(&cfg, DefaultConfig()); err != nil {
		return Config{}, fmt.Errorf("applying defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	a := c.Appraisals
	if a.Sheet == "" {
		return errors.New("appraisals.sheet must be set")
	}
	if a.IntervalMonths < 1 {
		return fmt.Errorf("appraisals.interval_months must be positive, got %d", a.IntervalMonths)
	}
	l := a.Layout
	if l.FirstRow < 1 || l.NameColumn < 1 || l.StartColumn < 1 || l.FirstReviewColumn < 1 {
		return errors.New("appraisals.layout rows and columns are one based")
	}
	if l.Reviews < 1 {
		return fmt.Errorf("appraisals.layout.reviews must be positive, got %d", l.Reviews)
	}

	r := c.Rota
	if r.Year < 1900 || r.Year > 9998 {
		return fmt.Errorf("rota.year out of range: %d", r.Year)
	}
	if r.FirstRow < 1 {
		return errors.New("rota.first_row is one based")
	}
	if r.MaxNameLength < 1 {
		return fmt.Errorf("rota.max_name_length must be positive, got %d", r.MaxNameLength)
	}
	if r.Tolerance < 0 {
		return fmt.Errorf("rota.tolerance must not be negative, got %v", r.Tolerance)
	}
	if r.Workers < 1 {
		return fmt.Errorf("rota.workers must be positive, got %d", r.Workers)
	}
	folded := make(map[string]string)
	for token, code := range r.Codes {
		if token == "" || code == "" {
			return fmt.Errorf("rota.codes: empty mapping %q -> %q", token, code)
		}
		// Codes name PL/pgSQL variables, which are case insensitive.
		lower := strings.ToLower(code)
		if other, ok := folded[lower]; ok && other != code {
			return fmt.Errorf("rota.codes: codes %q and %q differ only by case", other, code)
		}
		folded[lower] = code
	}
	return nil
}
