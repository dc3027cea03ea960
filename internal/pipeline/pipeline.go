// Package pipeline sequences the extraction-to-load stages and reports
// progress. Stages run strictly in order, each consuming the previous
// stage's complete output; there is no streaming between stages and no
// shared state between concurrent runs.
package pipeline

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Ahmedin-Jamil/QuickConverter/internal/categorize"
	"github.com/Ahmedin-Jamil/QuickConverter/internal/dq"
	"github.com/Ahmedin-Jamil/QuickConverter/internal/extractor"
	"github.com/Ahmedin-Jamil/QuickConverter/internal/filter"
	"github.com/Ahmedin-Jamil/QuickConverter/internal/loader"
	"github.com/Ahmedin-Jamil/QuickConverter/internal/models"
	"github.com/Ahmedin-Jamil/QuickConverter/internal/transform"
)

// Event is one progress report. Exactly one event per run carries a
// non-nil Result, and it is always the last event.
type Event struct {
	Percent int     `json:"percent"`
	Message string  `json:"message"`
	Result  *Result `json:"result,omitempty"`
}

// Result is the terminal payload of a run.
type Result struct {
	Success      bool                  `json:"success"`
	Error        string                `json:"error,omitempty"`
	OutputBuffer []byte                `json:"-"`
	Stats        *loader.AuditData     `json:"stats,omitempty"`
	Preview      []*models.Transaction `json:"previewData,omitempty"`
	MetadataRows []*models.Transaction `json:"metadataRows,omitempty"`
}

// TargetFormats are the supported output artifact formats.
var TargetFormats = []string{"xlsx", "csv", "txt"}

// Pipeline runs documents through Extract, Transform, Filter,
// Categorize, Assess, and Load. Safe for concurrent use: every run
// owns its own stage state.
type Pipeline struct {
	log   zerolog.Logger
	rules []categorize.Rule
}

// New builds a pipeline with the default categorization rules.
func New(log zerolog.Logger) *Pipeline {
	return &Pipeline{log: log, rules: categorize.DefaultRules()}
}

// NewWithRules builds a pipeline with a custom categorization table.
func NewWithRules(log zerolog.Logger, rules []categorize.Rule) *Pipeline {
	return &Pipeline{log: log, rules: rules}
}

// Process runs one document through the pipeline and returns its event
// stream. The channel is unbuffered, so the caller observes one event
// at a time and the pipeline performs no work between the events it
// just reported. The channel is closed after the result event.
func (p *Pipeline) Process(filePath, sourceFormat, targetFormat string) <-chan Event {
	events := make(chan Event)
	go func() {
		defer close(events)
		p.run(filePath, sourceFormat, targetFormat, events)
	}()
	return events
}

func (p *Pipeline) run(filePath, sourceFormat, targetFormat string, events chan<- Event) {
	runID := uuid.NewString()
	log := p.log.With().Str("run_id", runID).Str("file", filePath).Logger()
	start := time.Now()

	fail := func(err error) {
		log.Error().Err(err).Msg("pipeline run failed")
		events <- Event{
			Percent: 0,
			Message: fmt.Sprintf("Error: %v", err),
			Result:  &Result{Success: false, Error: err.Error()},
		}
	}

	// A panic in any stage is converted into the standard failure
	// result; a raw panic must never reach the caller.
	defer func() {
		if r := recover(); r != nil {
			fail(fmt.Errorf("internal pipeline error: %v", r))
		}
	}()

	if !validTarget(targetFormat) {
		fail(fmt.Errorf("unsupported target format: %q", targetFormat))
		return
	}
	ext, err := extractor.New(sourceFormat)
	if err != nil {
		fail(err)
		return
	}

	// Extract.
	events <- Event{Percent: 10, Message: "Reading Document..."}
	payload, err := ext.Parse(filePath)
	if err != nil {
		fail(err)
		return
	}
	events <- Event{Percent: 20, Message: "Document Read Successful."}
	log.Debug().Str("document_hash", payload.DocumentHash).Int("fragments", len(payload.Fragments)).Msg("extraction complete")

	// Transform.
	events <- Event{Percent: 25, Message: "Extracting transactions..."}
	allRows := transform.New().Transform(payload)
	events <- Event{Percent: 40, Message: "Transformation Complete."}

	// Filter.
	events <- Event{Percent: 45, Message: "Filtering eligible transactions..."}
	eligible, metadataRows, extracted := filter.New().Apply(allRows)
	events <- Event{
		Percent: 55,
		Message: fmt.Sprintf("Found %d transactions, %d metadata rows.", len(eligible), len(metadataRows)),
	}

	// Categorize eligible transactions only.
	events <- Event{Percent: 58, Message: "Categorizing transactions..."}
	mapper := categorize.NewMapper(p.rules)
	for _, tx := range eligible {
		tx.Category = mapper.Categorize(tx.Description)
	}

	// Data quality.
	events <- Event{Percent: 60, Message: "Validating data..."}
	engine := dq.NewEngine()
	eligible = engine.Assess(eligible, metadataRows, extracted)
	report := engine.Report()
	events <- Event{Percent: 75, Message: "Validation Complete."}

	audit := buildAudit(runID, payload, eligible, metadataRows, extracted, engine, report, start)
	log.Info().
		Int("eligible", len(eligible)).
		Int("metadata_rows", len(metadataRows)).
		Bool("balanced", report.Reconciliation.IsBalanced).
		Msg("assessment complete")

	// Load.
	events <- Event{Percent: 85, Message: "Preparing document..."}
	buf, err := loader.New().Generate(eligible, audit, targetFormat)
	if err != nil {
		fail(err)
		return
	}
	events <- Event{Percent: 95, Message: "Finalizing..."}

	events <- Event{
		Percent: 100,
		Message: "Done",
		Result: &Result{
			Success:      true,
			OutputBuffer: buf.Bytes(),
			Stats:        &audit,
			Preview:      eligible,
			MetadataRows: metadataRows,
		},
	}
}

func buildAudit(runID string, payload *models.RawPayload, eligible, metadataRows []*models.Transaction,
	extracted models.ExtractedMetadata, engine *dq.Engine, report dq.Report, start time.Time) loader.AuditData {

	recon := engine.Reconciliation()

	duplicates := 0
	roundAmounts := 0
	seen := map[string]struct{}{}
	for _, tx := range eligible {
		key := tx.PostDate + "|" + tx.Description + "|" + fmt.Sprintf("%.2f", tx.Amount)
		if _, dup := seen[key]; dup {
			duplicates++
		} else {
			seen[key] = struct{}{}
		}
		if tx.Amount > 0 && tx.Amount == math.Trunc(tx.Amount) {
			roundAmounts++
		}
	}

	return loader.AuditData{
		DocumentHash:     payload.DocumentHash,
		SourceFile:       payload.SourceFile,
		RunID:            runID,
		ProcessingTimeMs: float64(time.Since(start).Microseconds()) / 1000.0,
		TotalRows:        len(eligible),
		MetadataRows:     len(metadataRows),
		DQStats:          engine.Stats(),
		DQReport:         report,
		Anomalies: loader.Anomalies{
			DuplicateCount: duplicates,
			RoundAmounts:   roundAmounts,
		},
		Timestamp: time.Now(),
		Financials: loader.Financials{
			TotalDebits:    recon.TotalDebits,
			TotalCredits:   recon.TotalCredits,
			OpeningBalance: extracted.OpeningBalance,
			ClosingBalance: extracted.ClosingBalance,
		},
		Reconciliation:    recon,
		StatementMetadata: extracted,
	}
}

func validTarget(format string) bool {
	for _, f := range TargetFormats {
		if f == format {
			return true
		}
	}
	return false
}
