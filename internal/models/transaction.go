package models

import (
	"strconv"
	"time"
)

// TxType classifies what a row represents financially.
type TxType string

const (
	TxDebit   TxType = "debit"
	TxCredit  TxType = "credit"
	TxBalance TxType = "balance" // balance statement row, not a money movement
)

// ExtractionMethod records how a row was recovered from the document.
// Table rows are higher confidence than text-heuristic rows; the data
// quality engine keys off this distinction.
type ExtractionMethod string

const (
	MethodTable     ExtractionMethod = "table"
	MethodHeuristic ExtractionMethod = "heuristic"
)

// Data quality flags assigned by the DQ engine.
const (
	FlagClean          = "CLEAN"
	FlagRecovered      = "RECOVERED_TRANSACTION"
	FlagSuspect        = "SUSPECT"
	FlagNonTransaction = "NON_TRANSACTION"
)

// Metadata carries per-row provenance and audit fields.
type Metadata struct {
	SourceFileID        string           `json:"sourceFileId"`
	ExtractionMethod    ExtractionMethod `json:"extractionMethod"`
	DQFlag              string           `json:"dqFlag"`
	ProcessingTimestamp time.Time        `json:"processingTimestamp"`
	IsEligible          bool             `json:"isEligible"`
}

// Transaction is the canonical record produced by the transform stage.
// Amount is always a non-negative magnitude; the direction lives in Type.
// Balance is the running balance when the document provides one.
type Transaction struct {
	PostDate    string   `json:"postDate"`
	Description string   `json:"description"`
	Amount      float64  `json:"amount"`
	Type        TxType   `json:"txType"`
	Category    string   `json:"category"`
	Balance     *float64 `json:"balance,omitempty"`
	Meta        Metadata `json:"metadata"`
}

// Signature returns the deduplication key for a transaction:
// (post date, amount, first 30 chars of description).
func (t *Transaction) Signature() string {
	desc := t.Description
	if len(desc) > 30 {
		desc = desc[:30]
	}
	return t.PostDate + "|" + strconv.FormatFloat(t.Amount, 'f', 2, 64) + "|" + desc
}

// Fragment is a single extracted table row with page provenance,
// prior to any semantic interpretation.
type Fragment struct {
	Cells []string `json:"cells"`
	Page  int      `json:"page"`
}

// RawPayload is the uniform output of every extractor variant.
// Immutable after extraction.
type RawPayload struct {
	DocumentHash string     `json:"documentHash"`
	Fragments    []Fragment `json:"fragments"`
	RawText      string     `json:"rawText"`
	SourceFile   string     `json:"sourceFile"`
}

// ExtractedMetadata summarizes what the eligibility filter derived
// from a document's metadata rows.
type ExtractedMetadata struct {
	OpeningBalance float64 `json:"openingBalance"`
	ClosingBalance float64 `json:"closingBalance"`
	TotalRows      int     `json:"totalRows"`
	EligibleCount  int     `json:"eligibleCount"`
	MetadataCount  int     `json:"metadataCount"`
}
