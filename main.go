package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Ahmedin-Jamil/QuickConverter/internal/api"
	"github.com/Ahmedin-Jamil/QuickConverter/internal/categorize"
	"github.com/Ahmedin-Jamil/QuickConverter/internal/logger"
	"github.com/Ahmedin-Jamil/QuickConverter/internal/pipeline"
)

const version = "1.0.0"

func main() {
	fromFlag := flag.String("from", "", "Source format: pdf, csv, txt, docx (inferred from extension if omitted)")
	toFlag := flag.String("to", "xlsx", "Target format: xlsx, csv, txt")
	outputFlag := flag.String("output", "", "Output file path (defaults to input filename with the target extension)")
	rulesFlag := flag.String("rules", "", "Optional YAML file overriding the category rule table")
	serveFlag := flag.String("serve", "", "Run the HTTP API on this address (e.g. :8080) instead of converting files")
	versionFlag := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `QuickConverter - statement to spreadsheet converter

Converts bank and card statements (PDF, CSV, TXT, DOCX) into audited
transaction exports (XLSX, CSV, TXT) with categorization, data quality
flags, and balance reconciliation.

Usage:
  quickconverter [flags] <input> [input2 ...]
  quickconverter --serve :8080

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Convert a PDF statement to a spreadsheet
  quickconverter statement.pdf

  # Convert a CSV export to a plain-text preview
  quickconverter --to=txt transactions.csv

  # Custom category rules
  quickconverter --rules=rules.yaml statement.pdf
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("quickconverter v%s\n", version)
		os.Exit(0)
	}

	log := logger.New()

	pl := pipeline.New(log)
	if *rulesFlag != "" {
		data, err := os.ReadFile(*rulesFlag)
		if err != nil {
			fatalf("reading rules file: %v\n", err)
		}
		rules, err := categorize.LoadRules(data)
		if err != nil {
			fatalf("%v\n", err)
		}
		pl = pipeline.NewWithRules(log, rules)
	}

	if *serveFlag != "" {
		app := fiber.New(fiber.Config{BodyLimit: 32 << 20})
		(&api.Handler{Pipeline: pl}).Register(app)
		log.Info().Str("addr", *serveFlag).Msg("starting HTTP API")
		if err := app.Listen(*serveFlag); err != nil {
			fatalf("server error: %v\n", err)
		}
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	for _, inputPath := range flag.Args() {
		if err := convertFile(pl, inputPath, *fromFlag, *toFlag, *outputFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inputPath, err)
			os.Exit(1)
		}
	}
}

func convertFile(pl *pipeline.Pipeline, inputPath, sourceFormat, targetFormat, outputPath string) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}

	if sourceFormat == "" {
		sourceFormat = strings.TrimPrefix(strings.ToLower(filepath.Ext(inputPath)), ".")
	}
	if outputPath == "" {
		base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
		outputPath = base + "." + targetFormat
	}

	fmt.Printf("Processing: %s\n", inputPath)

	var result *pipeline.Result
	for ev := range pl.Process(inputPath, sourceFormat, targetFormat) {
		fmt.Printf("  [%3d%%] %s\n", ev.Percent, ev.Message)
		if ev.Result != nil {
			result = ev.Result
		}
	}

	if result == nil || !result.Success {
		if result != nil {
			return fmt.Errorf("%s", result.Error)
		}
		return fmt.Errorf("pipeline produced no result")
	}

	if err := os.WriteFile(outputPath, result.OutputBuffer, 0o644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}

	recon := result.Stats.Reconciliation
	fmt.Printf("  Wrote %s (%d transactions, %d metadata rows, %s)\n",
		outputPath, len(result.Preview), result.Stats.MetadataRows, recon.Status)
	return nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
