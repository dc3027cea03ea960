// Package extractor turns source documents into a uniform raw payload:
// table-row fragments plus the full extracted text, keyed by a SHA-256
// content hash. Format selection is by declared file type, not content
// sniffing.
package extractor

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Ahmedin-Jamil/QuickConverter/internal/models"
)

// Extractor reads a source document and produces the raw payload
// consumed by the transform stage.
type Extractor interface {
	Parse(filePath string) (*models.RawPayload, error)
}

// New returns the extractor for the declared file type.
func New(fileType string) (Extractor, error) {
	switch strings.ToLower(strings.TrimPrefix(fileType, ".")) {
	case "pdf":
		return &PDFExtractor{}, nil
	case "csv":
		return &CSVExtractor{}, nil
	case "txt":
		return &TextExtractor{}, nil
	case "docx":
		return &DocxExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file type: %q", fileType)
	}
}

// FileHash computes the SHA-256 digest of the file contents. The digest
// is the document's identity key and must be stable across runs.
func FileHash(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", filePath, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", filePath, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
