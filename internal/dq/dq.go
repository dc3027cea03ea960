// Package dq implements the deterministic data-quality engine: a flag
// per transaction, duplicate detection, and reconciliation of computed
// against stated balances. Everything is rule-based and traceable; the
// engine is the authoritative source for DQ flags and overwrites any
// seed left by the transform stage.
package dq

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Ahmedin-Jamil/QuickConverter/internal/models"
)

// Flag entry types recorded in the report.
const (
	FlagTypeDuplicate   = "DUPLICATE"
	FlagTypeFormatIssue = "FORMAT_ISSUE"
	FlagTypeImbalance   = "IMBALANCE"
)

// Reconciliation tolerance: two cents absorbs floating-point rounding.
var reconciliationTolerance = decimal.NewFromFloat(0.02)

// Deltas above this suggest whole transactions are missing rather than
// rounding noise.
var largeDiscrepancy = decimal.NewFromInt(1000)

// Stats counts transactions per DQ flag.
type Stats struct {
	Total          int `json:"total"`
	Clean          int `json:"CLEAN"`
	Recovered      int `json:"RECOVERED_TRANSACTION"`
	Suspect        int `json:"SUSPECT"`
	NonTransaction int `json:"NON_TRANSACTION"`
}

// FlaggedRow is one entry in the flagged-rows table of the report.
type FlaggedRow struct {
	Row         int     `json:"row"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	FlagType    string  `json:"flagType"`
	Reason      string  `json:"reason"`
}

// Reconciliation is the arithmetic check that opening balance plus
// credits minus debits equals the stated closing balance.
type Reconciliation struct {
	OpeningBalance  float64 `json:"openingBalance"`
	TotalCredits    float64 `json:"totalCredits"`
	TotalDebits     float64 `json:"totalDebits"`
	ExpectedClosing float64 `json:"expectedClosing"`
	ActualClosing   float64 `json:"actualClosing"`
	Delta           float64 `json:"delta"`
	IsBalanced      bool    `json:"isBalanced"`
	Status          string  `json:"status"`
	FailureReason   string  `json:"failureReason,omitempty"`
}

// Summary condenses the report for quick checks.
type Summary struct {
	EligibleCount       int  `json:"eligibleCount"`
	NonTransactionCount int  `json:"nonTransactionCount"`
	CleanCount          int  `json:"cleanCount"`
	RecoveredCount      int  `json:"recoveredCount"`
	SuspectCount        int  `json:"suspectCount"`
	TotalFlags          int  `json:"totalFlags"`
	HasDuplicates       bool `json:"hasDuplicates"`
	HasImbalance        bool `json:"hasImbalance"`
}

// Report bundles everything the engine derived for one document.
type Report struct {
	Stats          Stats          `json:"stats"`
	Reconciliation Reconciliation `json:"reconciliation"`
	FlaggedRows    []FlaggedRow   `json:"flaggedRows"`
	Summary        Summary        `json:"summary"`
}

// Engine assesses one document's transactions. State is reset on each
// Assess call; do not share an Engine between concurrent runs.
type Engine struct {
	stats          Stats
	flagged        []FlaggedRow
	reconciliation Reconciliation
}

func NewEngine() *Engine {
	return &Engine{}
}

// Assess sets the DQ flag on every eligible transaction, records
// duplicates and format issues, and reconciles balances. Returns the
// same slice with flags applied.
func (e *Engine) Assess(eligible, metadataRows []*models.Transaction, extracted models.ExtractedMetadata) []*models.Transaction {
	e.stats = Stats{NonTransaction: len(metadataRows)}
	e.flagged = nil

	seen := map[string]int{}
	for i, tx := range eligible {
		e.stats.Total++
		rowNum := i + 1

		sig := tx.Signature()
		if prev, dup := seen[sig]; dup {
			e.addFlag(rowNum, tx, FlagTypeDuplicate, fmt.Sprintf("Duplicate of row %d", prev))
		} else {
			seen[sig] = rowNum
		}

		flag := classify(tx)
		tx.Meta.DQFlag = flag
		switch flag {
		case models.FlagClean:
			e.stats.Clean++
		case models.FlagRecovered:
			e.stats.Recovered++
		case models.FlagSuspect:
			e.stats.Suspect++
			e.addFlag(rowNum, tx, FlagTypeFormatIssue, "Missing required fields")
		case models.FlagNonTransaction:
			e.stats.NonTransaction++
		}
	}

	e.reconcile(eligible, extracted)
	return eligible
}

// classify derives the DQ flag for one transaction. Incompleteness
// wins over extraction provenance.
func classify(tx *models.Transaction) string {
	if !tx.Meta.IsEligible {
		// Defensive: should not occur after the filter stage.
		return models.FlagNonTransaction
	}
	complete := tx.PostDate != "" && tx.Description != "" && tx.Amount > 0
	switch {
	case !complete:
		return models.FlagSuspect
	case tx.Meta.ExtractionMethod == models.MethodTable:
		return models.FlagClean
	default:
		return models.FlagRecovered
	}
}

// reconcile computes opening + credits - debits against the stated
// closing balance. Sums run on decimals so the two-cent tolerance is
// not eaten by accumulation error.
func (e *Engine) reconcile(eligible []*models.Transaction, extracted models.ExtractedMetadata) {
	opening := decimal.NewFromFloat(extracted.OpeningBalance)
	closing := decimal.NewFromFloat(extracted.ClosingBalance)

	credits := decimal.Zero
	debits := decimal.Zero
	for _, tx := range eligible {
		if !tx.Meta.IsEligible {
			continue
		}
		amount := decimal.NewFromFloat(tx.Amount)
		switch tx.Type {
		case models.TxCredit:
			credits = credits.Add(amount)
		case models.TxDebit:
			debits = debits.Add(amount)
		}
	}

	expected := opening.Add(credits).Sub(debits)
	delta := expected.Sub(closing).Abs()
	balanced := delta.LessThan(reconciliationTolerance)

	deltaF, _ := delta.Round(2).Float64()
	r := Reconciliation{
		OpeningBalance:  extracted.OpeningBalance,
		TotalCredits:    credits.InexactFloat64(),
		TotalDebits:     debits.InexactFloat64(),
		ExpectedClosing: expected.Round(2).InexactFloat64(),
		ActualClosing:   extracted.ClosingBalance,
		Delta:           deltaF,
		IsBalanced:      balanced,
	}

	if balanced {
		r.Status = "Balanced"
	} else {
		r.Status = fmt.Sprintf("Mismatch ($%.2f)", deltaF)
		switch {
		case opening.IsZero() && closing.IsZero():
			r.FailureReason = "Missing balance information in statement"
		case delta.GreaterThan(largeDiscrepancy):
			r.FailureReason = "Large discrepancy - possible missing transactions"
		default:
			r.FailureReason = fmt.Sprintf("Small mismatch ($%.2f) - rounding or fees", deltaF)
		}
	}
	e.reconciliation = r

	if !balanced && len(eligible) > 0 {
		e.addFlag(0, eligible[len(eligible)-1], FlagTypeImbalance, r.FailureReason)
	}
}

func (e *Engine) addFlag(rowNum int, tx *models.Transaction, flagType, reason string) {
	desc := tx.Description
	if len(desc) > 50 {
		desc = desc[:50]
	}
	e.flagged = append(e.flagged, FlaggedRow{
		Row:         rowNum,
		Date:        tx.PostDate,
		Description: desc,
		Amount:      tx.Amount,
		FlagType:    flagType,
		Reason:      reason,
	})
}

// Stats returns the per-flag counts from the last Assess call.
func (e *Engine) Stats() Stats {
	return e.stats
}

// FlaggedRows returns the flag entries from the last Assess call.
func (e *Engine) FlaggedRows() []FlaggedRow {
	out := make([]FlaggedRow, len(e.flagged))
	copy(out, e.flagged)
	return out
}

// Reconciliation returns the balance check from the last Assess call.
func (e *Engine) Reconciliation() Reconciliation {
	return e.reconciliation
}

// Report assembles the full DQ report for the last Assess call.
func (e *Engine) Report() Report {
	hasDup := false
	for _, f := range e.flagged {
		if f.FlagType == FlagTypeDuplicate {
			hasDup = true
			break
		}
	}
	return Report{
		Stats:          e.stats,
		Reconciliation: e.reconciliation,
		FlaggedRows:    e.FlaggedRows(),
		Summary: Summary{
			EligibleCount:       e.stats.Clean + e.stats.Recovered + e.stats.Suspect,
			NonTransactionCount: e.stats.NonTransaction,
			CleanCount:          e.stats.Clean,
			RecoveredCount:      e.stats.Recovered,
			SuspectCount:        e.stats.Suspect,
			TotalFlags:          len(e.flagged),
			HasDuplicates:       hasDup,
			HasImbalance:        !e.reconciliation.IsBalanced,
		},
	}
}
