package extractor

import (
	"fmt"
	"os"

	"github.com/Ahmedin-Jamil/QuickConverter/internal/models"
)

// TextExtractor produces no fragments; the entire content goes to
// RawText for the heuristic line parser.
type TextExtractor struct{}

func (e *TextExtractor) Parse(filePath string) (*models.RawPayload, error) {
	hash, err := FileHash(filePath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading text file %s: %w", filePath, err)
	}

	return &models.RawPayload{
		DocumentHash: hash,
		Fragments:    nil,
		RawText:      string(data),
		SourceFile:   filePath,
	}, nil
}
