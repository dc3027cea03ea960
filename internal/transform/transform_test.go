package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ahmedin-Jamil/QuickConverter/internal/models"
)

func testTransformer() *Transformer {
	return &Transformer{now: func() time.Time {
		return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	}}
}

func tablePayload(rows ...[]string) *models.RawPayload {
	p := &models.RawPayload{DocumentHash: "doc-1", SourceFile: "test.csv"}
	for _, r := range rows {
		p.Fragments = append(p.Fragments, models.Fragment{Cells: r, Page: 1})
	}
	return p
}

func TestTransformTablePass(t *testing.T) {
	payload := tablePayload(
		[]string{"Date", "Description", "Debit", "Credit", "Balance"},
		[]string{"01/02/2026", "Uber Trip", "25.00", "", "975.00"},
		[]string{"01/03/2026", "Salary Deposit", "", "2000.00", "2975.00"},
	)

	txs := testTransformer().Transform(payload)
	require.Len(t, txs, 2)

	assert.Equal(t, "01/02/2026", txs[0].PostDate)
	assert.Equal(t, "Uber Trip", txs[0].Description)
	assert.Equal(t, 25.00, txs[0].Amount)
	assert.Equal(t, models.TxDebit, txs[0].Type)
	require.NotNil(t, txs[0].Balance)
	assert.Equal(t, 975.00, *txs[0].Balance)
	assert.Equal(t, models.MethodTable, txs[0].Meta.ExtractionMethod)
	assert.Equal(t, "doc-1", txs[0].Meta.SourceFileID)

	assert.Equal(t, models.TxCredit, txs[1].Type)
	assert.Equal(t, 2000.00, txs[1].Amount)
}

func TestTransformAmountColumnFallback(t *testing.T) {
	// Merged amount column: direction comes from description keywords.
	payload := tablePayload(
		[]string{"Date", "Description", "Amount", "Balance"},
		[]string{"01/02/2026", "Uber Trip", "25.00", "975.00"},
		[]string{"01/03/2026", "Salary Deposit", "2000.00", "2975.00"},
	)

	txs := testTransformer().Transform(payload)
	require.Len(t, txs, 2)
	assert.Equal(t, models.TxDebit, txs[0].Type)
	assert.Equal(t, 25.00, txs[0].Amount)
	assert.Equal(t, models.TxCredit, txs[1].Type)
	assert.Equal(t, 2000.00, txs[1].Amount)
}

func TestTransformCellScanFallback(t *testing.T) {
	// No mapped amount column at all: the first non-zero currency
	// value wins.
	payload := tablePayload(
		[]string{"Date", "Description", "Amount", "Balance"},
		[]string{"01/01/2026", "Opening Balance", "0.00", "1000.00"},
	)

	txs := testTransformer().Transform(payload)
	require.Len(t, txs, 1)
	assert.Equal(t, 1000.00, txs[0].Amount)
	assert.Equal(t, models.TxDebit, txs[0].Type)
}

func TestTransformDropsZeroAmountSummaryRows(t *testing.T) {
	payload := tablePayload(
		[]string{"Date", "Description", "Debit", "Credit", "Balance"},
		[]string{"01/31/2026", "carried", "", "", "2975"},
	)

	txs := testTransformer().Transform(payload)
	assert.Empty(t, txs)
}

func TestTransformRejectsRowsWithoutDate(t *testing.T) {
	payload := tablePayload(
		[]string{"Date", "Description", "Debit", "Balance"},
		[]string{"", "Mystery Charge", "10.00", "990.00"},
		[]string{"not a date", "Mystery Charge", "10.00", "990.00"},
	)

	txs := testTransformer().Transform(payload)
	assert.Empty(t, txs)
}

func TestTransformDedupAcrossPasses(t *testing.T) {
	payload := tablePayload(
		[]string{"Date", "Description", "Debit", "Balance"},
		[]string{"01/02/2026", "Uber Trip", "25.00", "975.00"},
	)
	// Same transaction appears in the raw text; the table pass wins.
	payload.RawText = "01/02/2026 Uber Trip 25.00 975.00"

	txs := testTransformer().Transform(payload)
	require.Len(t, txs, 1)
	assert.Equal(t, models.MethodTable, txs[0].Meta.ExtractionMethod)
}

func TestHeuristicLineWithTwoAmounts(t *testing.T) {
	payload := &models.RawPayload{
		DocumentHash: "doc-1",
		RawText:      "01/05/2026 STARBUCKS COFFEE 4.50 995.50",
	}

	txs := testTransformer().Transform(payload)
	require.Len(t, txs, 1)
	tx := txs[0]
	assert.Equal(t, "01/05/2026", tx.PostDate)
	assert.Equal(t, "STARBUCKS COFFEE", tx.Description)
	assert.Equal(t, 4.50, tx.Amount)
	require.NotNil(t, tx.Balance)
	assert.Equal(t, 995.50, *tx.Balance)
	assert.Equal(t, models.MethodHeuristic, tx.Meta.ExtractionMethod)
	assert.Equal(t, seedRecovered, tx.Meta.DQFlag)
}

func TestHeuristicLineWithSingleAmount(t *testing.T) {
	payload := &models.RawPayload{
		DocumentHash: "doc-1",
		RawText:      "01/05/2026 ATM WITHDRAWAL 60.00",
	}

	txs := testTransformer().Transform(payload)
	require.Len(t, txs, 1)
	assert.Equal(t, 60.00, txs[0].Amount)
	assert.Nil(t, txs[0].Balance)
	assert.Equal(t, models.TxDebit, txs[0].Type)
}

func TestHeuristicMonthNameDate(t *testing.T) {
	payload := &models.RawPayload{
		DocumentHash: "doc-1",
		RawText:      "Jan 5, 2026 Payroll Deposit 2500.00",
	}

	txs := testTransformer().Transform(payload)
	require.Len(t, txs, 1)
	assert.Equal(t, "Jan 5, 2026", txs[0].PostDate)
	assert.Equal(t, models.TxCredit, txs[0].Type)
}

func TestHeuristicBalanceRowWithoutDate(t *testing.T) {
	payload := &models.RawPayload{
		DocumentHash: "doc-1",
		RawText:      "Opening Balance 1000.00",
	}

	txs := testTransformer().Transform(payload)
	require.Len(t, txs, 1)
	tx := txs[0]
	assert.Equal(t, models.TxBalance, tx.Type)
	assert.Equal(t, 0.0, tx.Amount)
	require.NotNil(t, tx.Balance)
	assert.Equal(t, 1000.00, *tx.Balance)
	// Placeholder date so the row survives to the filter.
	assert.Equal(t, "01/15/2026", tx.PostDate)
	assert.Equal(t, seedClean, tx.Meta.DQFlag)
}

func TestHeuristicSkipsKnownNonTransactionPhrases(t *testing.T) {
	payload := &models.RawPayload{
		DocumentHash: "doc-1",
		RawText: "Total Credits 01/01/2026 2000.00\n" +
			"Total Debits 01/01/2026 150.00",
	}

	txs := testTransformer().Transform(payload)
	assert.Empty(t, txs)
}

func TestHeuristicSkipsShortDescriptionZeroAmount(t *testing.T) {
	payload := &models.RawPayload{
		DocumentHash: "doc-1",
		RawText:      "01/05/2026 ab 0.00",
	}

	txs := testTransformer().Transform(payload)
	assert.Empty(t, txs)
}

func TestBuildColumnMapPrefersTransactionDate(t *testing.T) {
	st := &state{columnMap: map[string]int{}}
	buildColumnMap(st, []string{"Eff Date", "Post Date", "Description", "Amount"})
	// Both date columns qualify as preferred; the later one wins.
	assert.Equal(t, 1, st.columnMap["date"])

	buildColumnMap(st, []string{"Date", "Value Date", "Description", "Amount"})
	// Neither is preferred, so the first seen is kept.
	assert.Equal(t, 0, st.columnMap["date"])
}

func TestIsHeaderRow(t *testing.T) {
	tests := []struct {
		name  string
		cells []string
		want  bool
	}{
		{"full header", []string{"Date", "Description", "Debit", "Credit", "Balance"}, true},
		{"two keywords", []string{"Date", "Amount"}, true},
		{"one keyword", []string{"Date", "Merchant"}, false},
		{"data row", []string{"01/02/2026", "Uber Trip", "25.00"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isHeaderRow(tt.cells))
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"25.99", 25.99},
		{"$1,234.56", 1234.56},
		{"(42.00)", 42.00},
		{"-17.50", 17.50},
		{"", 0},
		{"n/a", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseAmount(tt.input))
		})
	}
}

func TestDetectTxType(t *testing.T) {
	tests := []struct {
		desc string
		want models.TxType
	}{
		{"Direct Deposit Payroll", models.TxCredit},
		{"Interest Earned", models.TxCredit},
		{"ATM Withdrawal", models.TxDebit},
		{"Check 1042", models.TxDebit},
		{"Grocery Store", models.TxDebit}, // default
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, detectTxType(tt.desc))
		})
	}
}
