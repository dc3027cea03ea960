// Package transform normalizes raw extraction payloads into candidate
// transaction records. Two ordered passes feed one shared dedup set:
// table fragments first (high confidence), then a regex sweep over the
// raw text (recovery). Pure pattern matching, no learned models, so a
// given payload always yields the same records.
package transform

import (
	"regexp"
	"strings"
	"time"

	"github.com/Ahmedin-Jamil/QuickConverter/internal/models"
)

var (
	datePattern      = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}([/-]\d{2,4})?`)
	monthDatePattern = regexp.MustCompile(`(?i)(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{1,2}(,?\s+\d{2,4})?`)
	currencyPattern  = regexp.MustCompile(`\$?[\d,]+\.\d{1,2}`)
	lineAmtPattern   = regexp.MustCompile(`\$?[\d,]+\.\d{2}`)
)

// headerKeywords identify table header rows; a row containing at least
// two of these builds the column map.
var headerKeywords = []string{"date", "description", "debit", "credit", "balance", "amount", "check"}

// descriptionColumns are the header names that map to the description column.
var descriptionColumns = []string{"description", "details", "check", "vendor", "payee"}

// Text lines matching these phrases are never transactions.
var skipPhrases = []string{"your payment will be", "statement period", "total credits", "total debits"}

// balancePhrases mark a heuristic line as a balance statement row.
var balancePhrases = []string{"previous balance", "ending balance", "opening balance", "beginning balance"}

// Seed DQ flags recorded at transform time. The DQ engine is the
// authoritative source and overwrites these downstream.
const (
	seedClean     = "clean"
	seedRecovered = "recovered"
)

// Transformer converts a RawPayload into candidate transactions.
// All per-document state (column map, dedup set) is local to each
// Transform call, so one Transformer is safe across documents.
type Transformer struct {
	now func() time.Time // injectable for the balance-row placeholder date
}

func New() *Transformer {
	return &Transformer{now: time.Now}
}

// state is the request-scoped mutable state threaded through one
// Transform call.
type state struct {
	columnMap map[string]int
	seen      map[string]struct{}
}

// Transform runs both passes over the payload. A record emitted by an
// earlier pass is never overwritten by a later match with the same
// signature.
func (t *Transformer) Transform(payload *models.RawPayload) []*models.Transaction {
	st := &state{
		columnMap: map[string]int{},
		seen:      map[string]struct{}{},
	}
	sourceID := payload.DocumentHash

	var results []*models.Transaction

	// Pass 1: table fragments.
	for _, frag := range payload.Fragments {
		if isHeaderRow(frag.Cells) {
			buildColumnMap(st, frag.Cells)
			continue
		}
		tx := t.mapTableRow(st, frag.Cells, sourceID)
		if tx == nil {
			continue
		}
		if _, dup := st.seen[tx.Signature()]; dup {
			continue
		}
		st.seen[tx.Signature()] = struct{}{}
		results = append(results, tx)
	}

	// Pass 2: raw text recovery.
	for _, line := range strings.Split(payload.RawText, "\n") {
		tx := t.parseLineHeuristic(line, sourceID)
		if tx == nil {
			continue
		}
		if _, dup := st.seen[tx.Signature()]; dup {
			continue
		}
		st.seen[tx.Signature()] = struct{}{}
		results = append(results, tx)
	}

	return results
}

// isHeaderRow detects header rows by keyword count.
func isHeaderRow(cells []string) bool {
	joined := strings.ToLower(strings.Join(cells, " "))
	matches := 0
	for _, kw := range headerKeywords {
		if strings.Contains(joined, kw) {
			matches++
		}
	}
	return matches >= 2
}

// buildColumnMap maps semantic fields to column indexes. When several
// date-like columns exist, the one naming a transaction/post/effective
// date wins; otherwise the first seen is kept.
func buildColumnMap(st *state, cells []string) {
	st.columnMap = map[string]int{}
	for i, cell := range cells {
		c := strings.ToLower(strings.TrimSpace(cell))
		if c == "" {
			continue
		}
		switch {
		case strings.Contains(c, "date"):
			_, have := st.columnMap["date"]
			if !have || containsAny(c, []string{"tran", "post", "eff"}) {
				st.columnMap["date"] = i
			}
		case containsAny(c, descriptionColumns):
			st.columnMap["description"] = i
		case strings.Contains(c, "debit") || strings.Contains(c, "withdrawal"):
			st.columnMap["debit"] = i
		case strings.Contains(c, "credit") || strings.Contains(c, "deposit"):
			st.columnMap["credit"] = i
		case strings.Contains(c, "balance"):
			st.columnMap["balance"] = i
		case strings.Contains(c, "amount"):
			st.columnMap["amount"] = i
		}
	}
}

// mapTableRow maps cells to transaction fields using the current
// column map. Returns nil when the row is not a transaction.
func (t *Transformer) mapTableRow(st *state, cells []string, sourceID string) *models.Transaction {
	if len(st.columnMap) == 0 {
		return nil
	}

	dateVal := cellAt(cells, st.columnMap, "date")
	descVal := cellAt(cells, st.columnMap, "description")
	debit := parseAmount(cellAt(cells, st.columnMap, "debit"))
	credit := parseAmount(cellAt(cells, st.columnMap, "credit"))
	balance := parseAmount(cellAt(cells, st.columnMap, "balance"))
	amountCol := parseAmount(cellAt(cells, st.columnMap, "amount"))

	// Rows need a recognizable date to count as transactions.
	if dateVal == "" || !datePattern.MatchString(dateVal) {
		return nil
	}

	var amount float64
	var txType models.TxType
	switch {
	case credit > 0 && debit == 0:
		txType = models.TxCredit
		amount = credit
	case debit > 0:
		txType = models.TxDebit
		amount = debit
	default:
		// Debit and credit both empty: fall back to the amount column,
		// then to scanning all cells for the first non-zero currency
		// value. Direction comes from description keywords.
		amount = amountCol
		if amount == 0 {
			for _, cell := range cells {
				if !currencyPattern.MatchString(strings.ToLower(cell)) {
					continue
				}
				if v := parseAmount(cell); v != 0 {
					amount = v
					break
				}
			}
		}
		txType = detectTxType(descVal)
	}

	// Zero amount with a balance present is a summary row; the filter
	// recovers it through metadata detection, not this pass.
	if amount == 0 && balance != 0 {
		return nil
	}

	return &models.Transaction{
		PostDate:    strings.TrimSpace(dateVal),
		Description: truncate(strings.TrimSpace(descVal), 100),
		Amount:      amount,
		Type:        txType,
		Category:    "Uncategorized",
		Balance:     optionalBalance(balance),
		Meta: models.Metadata{
			SourceFileID:        sourceID,
			ExtractionMethod:    models.MethodTable,
			DQFlag:              seedClean,
			ProcessingTimestamp: t.now(),
		},
	}
}

// parseLineHeuristic recovers a transaction from one raw text line.
func (t *Transformer) parseLineHeuristic(line, sourceID string) *models.Transaction {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	var dateVal, prefix, suffix string
	loc := datePattern.FindStringIndex(line)
	if loc == nil {
		loc = monthDatePattern.FindStringIndex(line)
	}
	if loc != nil {
		dateVal = line[loc[0]:loc[1]]
		prefix = strings.TrimSpace(line[:loc[0]])
		suffix = strings.TrimSpace(line[loc[1]:])
	} else {
		// Balance statement lines often carry no date; synthesize a
		// placeholder so the row survives to the filter stage.
		if !containsAny(strings.ToLower(line), []string{"opening balance", "beginning balance", "ending balance"}) {
			return nil
		}
		dateVal = t.now().Format("01/02/2006")
		suffix = line
	}

	amountStrs := lineAmtPattern.FindAllString(suffix, -1)
	if len(amountStrs) == 0 {
		return nil
	}

	amounts := make([]float64, len(amountStrs))
	for i, s := range amountStrs {
		amounts[i] = parseAmount(s)
	}

	var txAmount float64
	var balanceVal *float64
	if len(amounts) >= 2 {
		// Convention: the last value is the running balance, the one
		// before it is the transaction amount.
		txAmount = amounts[len(amounts)-2]
		balanceVal = &amounts[len(amounts)-1]
	} else {
		txAmount = amounts[0]
	}

	desc := suffix
	for _, s := range amountStrs {
		desc = strings.ReplaceAll(desc, s, "")
	}
	desc = strings.Join(strings.Fields(prefix+" "+desc), " ")

	if len(desc) < 3 && txAmount == 0 {
		return nil
	}

	descLower := strings.ToLower(desc)
	if containsAny(descLower, skipPhrases) {
		return nil
	}

	tx := &models.Transaction{
		PostDate:    dateVal,
		Description: truncate(desc, 100),
		Category:    "Uncategorized",
		Meta: models.Metadata{
			SourceFileID:        sourceID,
			ExtractionMethod:    models.MethodHeuristic,
			DQFlag:              seedRecovered,
			ProcessingTimestamp: t.now(),
		},
	}

	if containsAny(descLower, balancePhrases) {
		tx.Type = models.TxBalance
		tx.Amount = 0
		if balanceVal != nil {
			tx.Balance = balanceVal
		} else {
			tx.Balance = &txAmount
		}
		tx.Meta.DQFlag = seedClean
	} else {
		tx.Type = detectTxType(desc)
		tx.Amount = txAmount
		tx.Balance = balanceVal
	}

	return tx
}

func cellAt(cells []string, columnMap map[string]int, field string) string {
	idx, ok := columnMap[field]
	if !ok || idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func optionalBalance(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}
