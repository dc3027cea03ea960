package extractor

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/Ahmedin-Jamil/QuickConverter/internal/models"
)

// PDFExtractor performs hybrid extraction: it reconstructs table-like
// rows from positioned text for the high-confidence table pass, and
// keeps the full page text as a backstop for the heuristic pass.
type PDFExtractor struct{}

var numericDatePattern = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)

// Keywords that mark a table as transaction-like when found in its
// first two rows.
var tableKeywords = []string{"date", "amount", "description", "debit", "credit", "balance"}

// Minimum horizontal gap between words that indicates a column break.
const columnGap = 15.0

func (e *PDFExtractor) Parse(filePath string) (*models.RawPayload, error) {
	hash, err := FileHash(filePath)
	if err != nil {
		return nil, err
	}

	pages, err := readPages(filePath)
	if err != nil {
		return nil, fmt.Errorf("PDF extraction failed: %w", err)
	}

	var fragments []models.Fragment
	var rawParts []string
	for _, p := range pages {
		if isLikelyTransactionTable(p.rows) {
			for _, cells := range p.rows {
				fragments = append(fragments, models.Fragment{Cells: cells, Page: p.number})
			}
		}
		if p.text != "" {
			rawParts = append(rawParts, p.text)
		}
	}

	rawText := strings.Join(rawParts, "\n")
	if !isReadableText(rawText) && len(fragments) == 0 {
		return nil, fmt.Errorf("no readable text could be extracted from PDF %s; the file may be image-based or use undecodable font encodings", filePath)
	}

	return &models.RawPayload{
		DocumentHash: hash,
		Fragments:    fragments,
		RawText:      rawText,
		SourceFile:   filePath,
	}, nil
}

// page holds one page's reconstructed rows (cell slices) and its raw text.
type page struct {
	number int
	rows   [][]string
	text   string
}

// readPages walks the PDF and rebuilds lines from positioned text.
// Words on the same visual row separated by a large horizontal gap are
// treated as distinct cells. The library is known to panic on malformed
// files, so the whole walk runs under recover.
func readPages(filePath string) (pages []page, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	for i := 1; i <= numPages; i++ {
		pg := r.Page(i)
		if pg.V.IsNull() {
			continue
		}
		rows, rowErr := pg.GetTextByRow()
		if rowErr != nil {
			continue
		}

		p := page{number: i}
		var lines []string
		for _, row := range rows {
			cells := splitRowIntoCells(row)
			if len(cells) == 0 {
				continue
			}
			if len(cells) >= 2 {
				p.rows = append(p.rows, cells)
			}
			lines = append(lines, strings.Join(cells, " "))
		}
		p.text = strings.Join(lines, "\n")
		pages = append(pages, p)
	}
	return pages, nil
}

// splitRowIntoCells groups a row's words into cells using horizontal
// gaps between word start positions as column separators.
func splitRowIntoCells(row *pdf.Row) []string {
	var cells []string
	var current strings.Builder
	var prevX float64

	for i, word := range row.Content {
		s := strings.TrimSpace(word.S)
		if s == "" {
			continue
		}
		if i > 0 && word.X-prevX > columnGap && current.Len() > 0 {
			cells = append(cells, strings.TrimSpace(current.String()))
			current.Reset()
		} else if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(s)
		prevX = word.X
	}
	if current.Len() > 0 {
		cells = append(cells, strings.TrimSpace(current.String()))
	}
	return cells
}

// isLikelyTransactionTable decides whether reconstructed rows look like
// a transaction table: a keyword in the first two rows, or a numeric
// date in the first five.
func isLikelyTransactionTable(rows [][]string) bool {
	if len(rows) < 2 {
		return false
	}
	for _, row := range rows[:min(2, len(rows))] {
		joined := strings.ToLower(strings.Join(row, " "))
		for _, kw := range tableKeywords {
			if strings.Contains(joined, kw) {
				return true
			}
		}
	}
	for _, row := range rows[:min(5, len(rows))] {
		for _, cell := range row {
			if numericDatePattern.MatchString(cell) {
				return true
			}
		}
	}
	return false
}

// isReadableText guards against garbage output from identity-encoded
// fonts: requires a minimum length and a high ratio of plain ASCII.
func isReadableText(text string) bool {
	if len(strings.TrimSpace(text)) <= 50 {
		return false
	}
	total, readable := 0, 0
	for _, r := range text {
		total++
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
			strings.ContainsRune(`.,-/:;()'"$%&@#!?+=*`, r) {
			readable++
		}
	}
	return total > 0 && float64(readable)/float64(total) > 0.6
}
