package loader

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Ahmedin-Jamil/QuickConverter/internal/models"
)

const (
	sheetTransactions = "Transactions"
	sheetSummary      = "Financial Summary"
	sheetDQ           = "Data Quality Report"

	currencyFormat = "$#,##0.00"
	headerColor    = "2D5016"
	warningColor   = "FEE2E2"
	successColor   = "DCFCE7"

	maxColWidth = 60
)

// xlsxStyles holds the style ids registered once per workbook.
type xlsxStyles struct {
	header   int
	currency int
	title    int
	section  int
	bold     int
	success  int
	warning  int
}

func newStyles(f *excelize.File) (*xlsxStyles, error) {
	s := &xlsxStyles{}
	var err error

	numFmt := currencyFormat
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerColor}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return nil, err
	}
	if s.currency, err = f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt}); err != nil {
		return nil, err
	}
	if s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}); err != nil {
		return nil, err
	}
	if s.section, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}}); err != nil {
		return nil, err
	}
	if s.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return nil, err
	}
	if s.success, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{successColor}},
	}); err != nil {
		return nil, err
	}
	if s.warning, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{warningColor}},
	}); err != nil {
		return nil, err
	}
	return s, nil
}

// sheet wraps cell writes on one worksheet and tracks content widths
// so columns can be auto-sized afterwards.
type sheet struct {
	f      *excelize.File
	name   string
	widths map[int]int
	err    error
}

func newSheet(f *excelize.File, name string) *sheet {
	return &sheet{f: f, name: name, widths: map[int]int{}}
}

func (s *sheet) set(col, row int, value any, styleID int) {
	if s.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		s.err = err
		return
	}
	if err := s.f.SetCellValue(s.name, cell, value); err != nil {
		s.err = err
		return
	}
	if styleID != 0 {
		if err := s.f.SetCellStyle(s.name, cell, cell, styleID); err != nil {
			s.err = err
			return
		}
	}
	if n := len(fmt.Sprint(value)); n > s.widths[col] {
		s.widths[col] = n
	}
}

// autoWidth sizes every written column to its content, capped at
// maxColWidth characters.
func (s *sheet) autoWidth() {
	if s.err != nil {
		return
	}
	for col, width := range s.widths {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			s.err = err
			return
		}
		w := float64(width + 4)
		if w > maxColWidth {
			w = maxColWidth
		}
		if err := s.f.SetColWidth(s.name, name, name, w); err != nil {
			s.err = err
			return
		}
	}
}

func (l *Loader) generateExcel(transactions []*models.Transaction, audit AuditData) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetTransactions); err != nil {
		return nil, fmt.Errorf("building workbook: %w", err)
	}
	for _, name := range []string{sheetSummary, sheetDQ} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("building workbook: %w", err)
		}
	}

	styles, err := newStyles(f)
	if err != nil {
		return nil, fmt.Errorf("registering styles: %w", err)
	}

	if err := writeTransactionsSheet(f, styles, transactions); err != nil {
		return nil, err
	}
	if err := writeSummarySheet(f, styles, audit); err != nil {
		return nil, err
	}
	if err := writeDQSheet(f, styles, audit); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf, nil
}

func writeTransactionsSheet(f *excelize.File, styles *xlsxStyles, transactions []*models.Transaction) error {
	s := newSheet(f, sheetTransactions)

	headers := []string{"Date", "Description", "Category", "Debit", "Credit", "Balance", "DQ Flag"}
	for i, h := range headers {
		s.set(i+1, 1, h, styles.header)
	}

	for i, tx := range transactions {
		row := i + 2
		s.set(1, row, tx.PostDate, 0)
		s.set(2, row, tx.Description, 0)
		s.set(3, row, tx.Category, 0)
		if tx.Type == models.TxDebit {
			s.set(4, row, tx.Amount, styles.currency)
		}
		if tx.Type == models.TxCredit {
			s.set(5, row, tx.Amount, styles.currency)
		}
		if tx.Balance != nil {
			s.set(6, row, *tx.Balance, styles.currency)
		}
		s.set(7, row, displayFlag(tx.Meta.DQFlag), 0)
	}

	s.autoWidth()
	if s.err != nil {
		return fmt.Errorf("writing transactions sheet: %w", s.err)
	}

	if err := f.SetPanes(sheetTransactions, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header row: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, styles *xlsxStyles, audit AuditData) error {
	s := newSheet(f, sheetSummary)

	s.set(1, 1, "FINANCIAL SUMMARY", styles.title)
	if err := f.MergeCell(sheetSummary, "A1", "B1"); err != nil {
		return fmt.Errorf("writing summary sheet: %w", err)
	}

	fin := audit.Financials
	items := []struct {
		label string
		value float64
	}{
		{"Opening Balance", fin.OpeningBalance},
		{"Total Credits (+)", fin.TotalCredits},
		{"Total Debits (-)", fin.TotalDebits},
		{"Net Change", fin.TotalCredits - fin.TotalDebits},
		{"Closing Balance", fin.ClosingBalance},
	}
	row := 4
	for _, item := range items {
		s.set(1, row, item.label, styles.bold)
		s.set(2, row, item.value, styles.currency)
		row++
	}

	row++
	s.set(1, row, "RECONCILIATION CHECK", styles.section)
	row++

	recon := audit.Reconciliation
	s.set(1, row, "Opening + Credits - Debits =", styles.bold)
	s.set(2, row, recon.ExpectedClosing, styles.currency)
	row++
	s.set(1, row, "Actual Closing Balance =", styles.bold)
	s.set(2, row, recon.ActualClosing, styles.currency)
	row++
	s.set(1, row, "Status", styles.bold)
	statusStyle := styles.success
	if !recon.IsBalanced {
		statusStyle = styles.warning
	}
	s.set(2, row, recon.Status, statusStyle)

	s.autoWidth()
	if s.err != nil {
		return fmt.Errorf("writing summary sheet: %w", s.err)
	}
	return nil
}

func writeDQSheet(f *excelize.File, styles *xlsxStyles, audit AuditData) error {
	s := newSheet(f, sheetDQ)

	s.set(1, 1, "DATA QUALITY REPORT", styles.title)
	if err := f.MergeCell(sheetDQ, "A1", "D1"); err != nil {
		return fmt.Errorf("writing DQ sheet: %w", err)
	}

	report := audit.DQReport
	s.set(1, 3, "Summary Statistics", styles.section)
	stats := []struct {
		label string
		value int
	}{
		{"Total Transactions", report.Stats.Total},
		{"Clean Transactions (Table)", report.Stats.Clean},
		{"Recovered Transactions (Regex)", report.Stats.Recovered},
		{"Suspect Rows (Anomalies)", report.Stats.Suspect},
		{"Non-Transaction Rows (Metadata)", report.Stats.NonTransaction},
		{"Total Flags", len(report.FlaggedRows)},
	}
	row := 4
	for _, stat := range stats {
		s.set(1, row, stat.label, 0)
		s.set(2, row, stat.value, 0)
		row++
	}

	row++
	s.set(1, row, "Flagged Rows Detail", styles.section)
	row++

	if len(report.FlaggedRows) == 0 {
		s.set(1, row, "No flagged rows - all data passed quality checks", styles.success)
	} else {
		for i, h := range []string{"Row #", "Date", "Description", "Amount", "Flag Type", "Reason"} {
			s.set(i+1, row, h, styles.header)
		}
		row++
		for _, flag := range report.FlaggedRows {
			s.set(1, row, flag.Row, 0)
			s.set(2, row, flag.Date, 0)
			s.set(3, row, flag.Description, 0)
			s.set(4, row, flag.Amount, styles.currency)
			s.set(5, row, flag.FlagType, 0)
			s.set(6, row, flag.Reason, 0)
			row++
		}
	}

	s.autoWidth()
	if s.err != nil {
		return fmt.Errorf("writing DQ sheet: %w", s.err)
	}
	return nil
}

// displayFlag renders a DQ flag for humans: RECOVERED_TRANSACTION
// becomes "RECOVERED TRANSACTION".
func displayFlag(flag string) string {
	return strings.ToUpper(strings.ReplaceAll(flag, "_", " "))
}
