package extractor

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewSelectsExtractorByType(t *testing.T) {
	tests := []struct {
		fileType string
		want     any
	}{
		{"pdf", &PDFExtractor{}},
		{"csv", &CSVExtractor{}},
		{"txt", &TextExtractor{}},
		{"docx", &DocxExtractor{}},
		{".CSV", &CSVExtractor{}},
	}

	for _, tt := range tests {
		t.Run(tt.fileType, func(t *testing.T) {
			ext, err := New(tt.fileType)
			require.NoError(t, err)
			assert.IsType(t, tt.want, ext)
		})
	}
}

func TestNewRejectsUnsupportedType(t *testing.T) {
	_, err := New("xls")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported file type: "xls"`)
}

func TestFileHash(t *testing.T) {
	path := writeTemp(t, "a.txt", "hello")

	hash, err := FileHash(path)
	require.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", hash)

	// Same content elsewhere hashes identically.
	other := writeTemp(t, "b.txt", "hello")
	otherHash, err := FileHash(other)
	require.NoError(t, err)
	assert.Equal(t, hash, otherHash)
}

func TestFileHashMissingFile(t *testing.T) {
	_, err := FileHash(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestCSVExtractor(t *testing.T) {
	path := writeTemp(t, "statement.csv",
		"Date,Description,Amount,Balance\n"+
			"01/02/2026,Uber Trip,25.00,975.00\n"+
			"01/03/2026,\"Deposit, Salary\",2000.00,2975.00\n")

	payload, err := (&CSVExtractor{}).Parse(path)
	require.NoError(t, err)

	require.Len(t, payload.Fragments, 3)
	assert.Equal(t, []string{"Date", "Description", "Amount", "Balance"}, payload.Fragments[0].Cells)
	assert.Equal(t, []string{"01/03/2026", "Deposit, Salary", "2000.00", "2975.00"}, payload.Fragments[2].Cells)
	assert.Empty(t, payload.RawText)
	assert.Len(t, payload.DocumentHash, 64)
	assert.Equal(t, path, payload.SourceFile)
}

func TestCSVExtractorRaggedRows(t *testing.T) {
	path := writeTemp(t, "ragged.csv",
		"Date,Description,Amount\n"+
			"01/02/2026,Uber Trip,25.00,975.00\n"+
			"01/03/2026,Fee\n")

	payload, err := (&CSVExtractor{}).Parse(path)
	require.NoError(t, err)
	require.Len(t, payload.Fragments, 3)
	assert.Len(t, payload.Fragments[1].Cells, 4)
	assert.Len(t, payload.Fragments[2].Cells, 2)
}

func TestTextExtractor(t *testing.T) {
	content := "Opening Balance 1000.00\n01/02/2026 Uber Trip 25.00 975.00\n"
	path := writeTemp(t, "statement.txt", content)

	payload, err := (&TextExtractor{}).Parse(path)
	require.NoError(t, err)
	assert.Empty(t, payload.Fragments)
	assert.Equal(t, content, payload.RawText)
	assert.Len(t, payload.DocumentHash, 64)
}

const docxBody = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Statement for January</w:t></w:r></w:p>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>Date</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>Description</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>Amount</w:t></w:r></w:p></w:tc>
      </w:tr>
      <w:tr>
        <w:tc><w:p><w:r><w:t>01/02/2026</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>Uber </w:t></w:r><w:r><w:t>Trip</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>25.00</w:t></w:r></w:p></w:tc>
      </w:tr>
    </w:tbl>
    <w:p><w:r><w:t>Thank you for banking with us</w:t></w:r></w:p>
  </w:body>
</w:document>`

func writeDocx(t *testing.T, documentXML string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statement.docx")

	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestDocxExtractor(t *testing.T) {
	path := writeDocx(t, docxBody)

	payload, err := (&DocxExtractor{}).Parse(path)
	require.NoError(t, err)

	require.Len(t, payload.Fragments, 2)
	assert.Equal(t, []string{"Date", "Description", "Amount"}, payload.Fragments[0].Cells)
	// Split text runs within one cell are joined.
	assert.Equal(t, []string{"01/02/2026", "Uber Trip", "25.00"}, payload.Fragments[1].Cells)

	assert.Equal(t, "Statement for January\nThank you for banking with us", payload.RawText)
}

func TestDocxExtractorMissingDocumentXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/other.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<x/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, err = (&DocxExtractor{}).Parse(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing word/document.xml")
}

func TestDocxExtractorNotAZip(t *testing.T) {
	path := writeTemp(t, "fake.docx", "plain text, not a zip")
	_, err := (&DocxExtractor{}).Parse(path)
	assert.Error(t, err)
}
