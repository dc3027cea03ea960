package transform

import (
	"math"
	"strconv"
	"strings"

	"github.com/Ahmedin-Jamil/QuickConverter/internal/models"
)

// creditKeywords and debitKeywords drive type inference when a row has
// no explicit debit/credit column. First list checked wins; an
// unrecognized description defaults to debit.
var creditKeywords = []string{
	"deposit", "credit", "refund", "transfer in", "payment received",
	"direct deposit", "interest", "cashback", "reward",
}

var debitKeywords = []string{
	"withdrawal", "debit", "payment", "purchase", "fee", "charge",
	"atm", "pos", "transfer out", "bill pay", "check",
}

// parseAmount converts strings like "$1,234.56" or "(25.00)" to an
// absolute magnitude. Unparseable values degrade to zero rather than
// erroring; missing amounts are a data-quality concern, not a failure.
func parseAmount(val string) float64 {
	s := strings.TrimSpace(val)
	if s == "" {
		return 0
	}
	s = strings.NewReplacer("$", "", "£", "", "€", "", ",", "", "(", "-", ")", "").Replace(s)
	s = strings.TrimSpace(s)

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return math.Abs(f)
}

// detectTxType infers debit/credit from description keywords.
func detectTxType(description string) models.TxType {
	desc := strings.ToLower(description)
	for _, kw := range creditKeywords {
		if strings.Contains(desc, kw) {
			return models.TxCredit
		}
	}
	for _, kw := range debitKeywords {
		if strings.Contains(desc, kw) {
			return models.TxDebit
		}
	}
	return models.TxDebit
}
