package loader

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/Ahmedin-Jamil/QuickConverter/internal/models"
)

// csvRow is the flat CSV export schema. Debit and credit are split
// into separate columns with exactly one populated per row; amounts
// are pre-formatted so the output is stable across platforms.
type csvRow struct {
	Date        string `csv:"Date"`
	Description string `csv:"Description"`
	Category    string `csv:"Category"`
	Debit       string `csv:"Debit"`
	Credit      string `csv:"Credit"`
	Balance     string `csv:"Balance"`
	DQFlag      string `csv:"DQ_Flag"`
}

func (l *Loader) generateCSV(transactions []*models.Transaction) (*bytes.Buffer, error) {
	rows := make([]csvRow, 0, len(transactions))
	for _, tx := range transactions {
		row := csvRow{
			Date:        tx.PostDate,
			Description: tx.Description,
			Category:    tx.Category,
			Debit:       money(0),
			Credit:      money(0),
			Balance:     money(0),
			DQFlag:      tx.Meta.DQFlag,
		}
		switch tx.Type {
		case models.TxDebit:
			row.Debit = money(tx.Amount)
		case models.TxCredit:
			row.Credit = money(tx.Amount)
		}
		if tx.Balance != nil {
			row.Balance = money(*tx.Balance)
		}
		rows = append(rows, row)
	}

	var buf bytes.Buffer
	if err := gocsv.Marshal(&rows, &buf); err != nil {
		return nil, fmt.Errorf("writing CSV output: %w", err)
	}
	return &buf, nil
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
