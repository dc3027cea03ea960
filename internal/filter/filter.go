// Package filter partitions candidate rows into eligible transactions
// and metadata rows, and derives the statement's opening and closing
// balances. Statements mix real money movements with balance and
// summary lines; reconciliation is only meaningful once the two are
// separated.
package filter

import (
	"strings"

	"github.com/Ahmedin-Jamil/QuickConverter/internal/models"
)

// SummaryKeywords mark a row as metadata when found in its description.
// Exported for transparency; the list is data, not logic.
var SummaryKeywords = []string{
	"previous balance",
	"ending balance",
	"opening balance",
	"beginning balance",
	"closing balance",
	"summary",
	"statement period",
	"your payment will be debited",
	"balance forward",
	"total",
	"subtotal",
}

var (
	openingKeywords      = []string{"opening", "previous", "beginning"}
	openingBalanceTypeKw = []string{"opening", "previous", "beginning", "forward"}
	closingKeywords      = []string{"ending", "closing"}
	closingBalanceTypeKw = []string{"ending", "closing", "final"}
)

// Filter separates transactions from metadata. Stateless across calls.
type Filter struct{}

func New() *Filter {
	return &Filter{}
}

// Apply routes each row to the eligible or metadata set and derives the
// opening/closing balances. Eligibility requires a date and a positive
// amount; everything else, including zero-amount non-metadata rows, is
// kept as metadata with IsEligible=false so no row is silently lost.
func (f *Filter) Apply(rows []*models.Transaction) (eligible, metadata []*models.Transaction, extracted models.ExtractedMetadata) {
	var opening, closing *float64

	for _, row := range rows {
		isMeta, balanceType := classifyMetadataRow(row)
		switch {
		case isMeta:
			// First opening wins, last closing wins.
			if balanceType == "opening" && opening == nil && row.Balance != nil {
				opening = row.Balance
			}
			if balanceType == "closing" && row.Balance != nil {
				closing = row.Balance
			}
			row.Meta.DQFlag = models.FlagNonTransaction
			row.Meta.IsEligible = false
			metadata = append(metadata, row)
		case isEligible(row):
			row.Meta.IsEligible = true
			eligible = append(eligible, row)
		default:
			row.Meta.DQFlag = models.FlagNonTransaction
			row.Meta.IsEligible = false
			metadata = append(metadata, row)
		}
	}

	// No explicit opening balance: back-compute it from the first
	// eligible transaction, assuming its balance already reflects the
	// transaction's effect. A wrong assumption degrades to a
	// reconciliation mismatch downstream, never to an error here.
	if opening == nil && len(eligible) > 0 {
		first := eligible[0]
		if first.Balance != nil {
			v := *first.Balance
			switch first.Type {
			case models.TxCredit:
				v -= first.Amount
			case models.TxDebit:
				v += first.Amount
			}
			opening = &v
		}
	}
	if closing == nil && len(eligible) > 0 {
		closing = eligible[len(eligible)-1].Balance
	}

	extracted = models.ExtractedMetadata{
		TotalRows:     len(rows),
		EligibleCount: len(eligible),
		MetadataCount: len(metadata),
	}
	if opening != nil {
		extracted.OpeningBalance = *opening
	}
	if closing != nil {
		extracted.ClosingBalance = *closing
	}
	return eligible, metadata, extracted
}

// classifyMetadataRow reports whether the row is metadata and, if so,
// whether it states an opening balance, a closing balance, or other
// summary information.
func classifyMetadataRow(row *models.Transaction) (bool, string) {
	desc := strings.ToLower(row.Description)

	if row.Type == models.TxBalance {
		switch {
		case containsAny(desc, openingBalanceTypeKw):
			return true, "opening"
		case containsAny(desc, closingBalanceTypeKw):
			return true, "closing"
		}
		return true, "other"
	}

	for _, kw := range SummaryKeywords {
		if strings.Contains(desc, kw) {
			switch {
			case containsAny(desc, openingKeywords):
				return true, "opening"
			case containsAny(desc, closingKeywords):
				return true, "closing"
			}
			return true, "other"
		}
	}
	return false, ""
}

func isEligible(row *models.Transaction) bool {
	return row.PostDate != "" && row.Amount > 0
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
