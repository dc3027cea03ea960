package extractor

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/Ahmedin-Jamil/QuickConverter/internal/models"
)

// CSVExtractor maps CSV input directly to table fragments: the header
// row first (so the transformer can build its column map), then every
// data row. CSV is always tabular, so no raw text is kept for the
// heuristic fallback.
type CSVExtractor struct{}

func (e *CSVExtractor) Parse(filePath string) (*models.RawPayload, error) {
	hash, err := FileHash(filePath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening CSV %s: %w", filePath, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // statements in the wild have ragged rows
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV %s: %w", filePath, err)
	}

	fragments := make([]models.Fragment, 0, len(records))
	for _, rec := range records {
		fragments = append(fragments, models.Fragment{Cells: rec, Page: 1})
	}

	return &models.RawPayload{
		DocumentHash: hash,
		Fragments:    fragments,
		RawText:      "",
		SourceFile:   filePath,
	}, nil
}
