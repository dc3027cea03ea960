// Package loader renders the final transaction set plus audit metadata
// into an output artifact: a multi-sheet spreadsheet, a flat CSV, or a
// plain-text preview report.
package loader

import (
	"bytes"
	"fmt"
	"time"

	"github.com/Ahmedin-Jamil/QuickConverter/internal/dq"
	"github.com/Ahmedin-Jamil/QuickConverter/internal/models"
)

// Anomalies are simple counters surfaced in the audit bundle.
type Anomalies struct {
	DuplicateCount int `json:"duplicateCount"`
	RoundAmounts   int `json:"roundAmounts"`
}

// Financials are the document-level money totals.
type Financials struct {
	TotalDebits    float64 `json:"totalDebits"`
	TotalCredits   float64 `json:"totalCredits"`
	OpeningBalance float64 `json:"openingBalance"`
	ClosingBalance float64 `json:"closingBalance"`
}

// AuditData is the audit bundle assembled by the pipeline and rendered
// into the artifact alongside the transactions.
type AuditData struct {
	DocumentHash      string                   `json:"documentHash"`
	SourceFile        string                   `json:"sourceFile"`
	RunID             string                   `json:"runId"`
	ProcessingTimeMs  float64                  `json:"processingTimeMs"`
	TotalRows         int                      `json:"totalRows"`
	MetadataRows      int                      `json:"metadataRows"`
	DQStats           dq.Stats                 `json:"dqStats"`
	DQReport          dq.Report                `json:"dqReport"`
	Anomalies         Anomalies                `json:"anomalies"`
	Timestamp         time.Time                `json:"timestamp"`
	Financials        Financials               `json:"financials"`
	Reconciliation    dq.Reconciliation        `json:"reconciliation"`
	StatementMetadata models.ExtractedMetadata `json:"statementMetadata"`
}

// Loader renders transactions into one of the supported target formats.
type Loader struct{}

func New() *Loader {
	return &Loader{}
}

// Generate produces the output artifact for the requested format.
// Supported targets: xlsx, csv, txt.
func (l *Loader) Generate(transactions []*models.Transaction, audit AuditData, targetFormat string) (*bytes.Buffer, error) {
	switch targetFormat {
	case "xlsx":
		return l.generateExcel(transactions, audit)
	case "csv":
		return l.generateCSV(transactions)
	case "txt":
		return l.generateText(transactions, audit)
	default:
		return nil, fmt.Errorf("unsupported target format: %q", targetFormat)
	}
}
