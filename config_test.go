package hrimport

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
appraisals:
  sheet: Appraisals
  layout:
    reviews: 8
rota:
  year: 2025
  tolerance: 1.5
  codes:
    N: NIGHT
`))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Appraisals.Sheet != "Appraisals" {
		t.Errorf("sheet %q", cfg.Appraisals.Sheet)
	}
	if cfg.Appraisals.IntervalMonths != 3 {
		t.Errorf("interval %d, expected default 3", cfg.Appraisals.IntervalMonths)
	}
	if l := cfg.Appraisals.Layout; l.Reviews != 8 || l.FirstReviewColumn != 4 || l.FirstRow != 3 {
		t.Errorf("layout %+v", l)
	}
	if cfg.Rota.Year != 2025 || cfg.Rota.Tolerance != 1.5 || cfg.Rota.MaxNameLength != 20 {
		t.Errorf("rota %+v", cfg.Rota)
	}
	if cfg.Rota.Codes["N"] != "NIGHT" || cfg.Rota.Codes["*"] != "RDO" {
		t.Errorf("codes %v, expected defaults plus N", cfg.Rota.Codes)
	}
}

func TestParseConfigInvalid(t *testing.T) {
	cases := []string{
		"rota: {workers: -1}",
		"rota: {tolerance: -0.5}",
		"appraisals: {interval_months: -3}",
		"rota: {year: 20260}",
		"rota: [not, a, map]",
		"rota: {max_name_length: -1}",
		"rota: {codes: {n: n, N: N}}",
		"rota: {codes: {x: rdo}}",
	}
	for _, c := range cases {
		if _, err := ParseConfig([]byte(c)); err == nil {
			t.Errorf("unexpected success: %s", c)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hrimport.yml")
	if err := os.WriteFile(path, []byte("rota:\n  year: 2027\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Rota.Year != 2027 || cfg.Appraisals.Sheet != "Apprasials" {
		t.Errorf("unexpected config %+v", cfg)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("unexpected success for missing file")
	}
}
