package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kingpin"
	diffpatch "github.com/sourcegraph/go-diff-patch"
	"kastelo.dev/hrimport"
	"kastelo.dev/hrimport/excel"
	"kastelo.dev/hrimport/sqlgen"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	configFile := kingpin.Flag("config", "YAML config file").ExistingFile()

	cmdAppraisals := kingpin.Command("appraisals", "Generate appraisal milestone SQL")
	apprInput := cmdAppraisals.Flag("input", "Input workbook").Required().ExistingFile()
	apprOutput := cmdAppraisals.Flag("output", "Output file (default stdout)").String()
	apprGenerated := cmdAppraisals.Flag("generated", "Generation date for the header, YYYY-MM-DD").String()

	cmdRota := kingpin.Command("rota", "Generate shift and contracted hours SQL")
	rotaInput := cmdRota.Flag("input", "Input workbook").Required().ExistingFile()
	rotaOutput := cmdRota.Flag("output", "Output file (default stdout)").String()
	rotaYear := cmdRota.Flag("year", "Year of the April sheet").Int()
	rotaGenerated := cmdRota.Flag("generated", "Generation date for the header, YYYY-MM-DD").String()

	cmdDiff := kingpin.Command("diff", "Show how regenerated SQL differs from an existing migration")
	diffInput := cmdDiff.Flag("input", "Input workbook").Required().ExistingFile()
	diffKind := cmdDiff.Flag("kind", "Pipeline to run").Required().Enum("appraisals", "rota")
	diffAgainst := cmdDiff.Flag("against", "Existing migration file").Required().ExistingFile()
	diffYear := cmdDiff.Flag("year", "Year of the April sheet (rota only)").Int()

	cmd := kingpin.Parse()

	cfg := hrimport.DefaultConfig()
	if *configFile != "" {
		var err error
		cfg, err = hrimport.LoadConfig(*configFile)
		if err != nil {
			fatal("Loading config", err)
		}
	}

	switch cmd {
	case cmdAppraisals.FullCommand():
		bs := appraisals(*apprInput, cfg, options(*apprInput, *apprGenerated))
		writeOutput(*apprOutput, bs)

	case cmdRota.FullCommand():
		if *rotaYear != 0 {
			cfg.Rota.Year = *rotaYear
		}
		bs := rota(*rotaInput, cfg, options(*rotaInput, *rotaGenerated))
		writeOutput(*rotaOutput, bs)

	case cmdDiff.FullCommand():
		if *diffYear != 0 {
			cfg.Rota.Year = *diffYear
		}
		opts := options(*diffInput, "")
		var bs []byte
		if *diffKind == "appraisals" {
			bs = appraisals(*diffInput, cfg, opts)
		} else {
			bs = rota(*diffInput, cfg, opts)
		}
		old, err := os.ReadFile(*diffAgainst)
		if err != nil {
			fatal("Reading migration", err)
		}
		if bytes.Equal(old, bs) {
			slog.Info("Migration is up to date", "file", *diffAgainst)
			return
		}
		fmt.Print(diffpatch.GeneratePatch(*diffAgainst, string(old), string(bs)))
	}
}

func appraisals(input string, cfg hrimport.Config, opts sqlgen.Options) []byte {
	wb := open(input)
	defer wb.Close()

	imp, err := hrimport.ImportAppraisals(wb, cfg.Appraisals)
	if err != nil {
		fatal("Importing appraisals", err)
	}
	imp.Diagnostics.Log(slog.Default())
	slog.Info("Appraisals classified",
		"sheet", imp.Sheet,
		"employees", len(imp.Employees),
		"reviews", imp.Facts(),
		"warnings", imp.Diagnostics.Warnings())

	return sqlgen.AppraisalSQL(imp, opts)
}

func rota(input string, cfg hrimport.Config, opts sqlgen.Options) []byte {
	wb := open(input)
	defer wb.Close()

	roster, err := hrimport.ImportRota(context.Background(), wb, cfg.Rota)
	if err != nil {
		fatal("Importing rota", err)
	}
	roster.Diagnostics.Log(slog.Default())
	for _, res := range roster.Sheets {
		if !res.Found {
			continue
		}
		attrs := []any{"month", res.Month.String(), "shifts", len(res.Shifts), "employees", len(res.Employees)}
		if res.HasContracted {
			attrs = append(attrs, "contracted", res.Contracted)
		}
		slog.Info("Sheet processed", attrs...)
	}
	slog.Info("Rota classified",
		"shifts", roster.Shifts(),
		"employees", len(roster.Employees),
		"warnings", roster.Diagnostics.Warnings())

	return sqlgen.RotaSQL(roster, opts)
}

func open(input string) *excel.Workbook {
	wb, err := excel.Open(input)
	if err != nil {
		fatal("Opening workbook", err)
	}
	return wb
}

func options(input, generated string) sqlgen.Options {
	opts := sqlgen.Options{Source: filepath.Base(input)}
	if generated != "" {
		t, err := time.Parse(time.DateOnly, generated)
		if err != nil {
			fatal("Parsing generation date", err)
		}
		opts.Generated = t
	}
	return opts
}

func writeOutput(path string, bs []byte) {
	if path == "" {
		if _, err := os.Stdout.Write(bs); err != nil {
			fatal("Writing SQL", err)
		}
		return
	}
	if err := os.WriteFile(path, bs, 0o644); err != nil {
		fatal("Writing SQL", err)
	}
	slog.Info("SQL written", "file", path)
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
