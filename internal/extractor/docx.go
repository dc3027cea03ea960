package extractor

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/Ahmedin-Jamil/QuickConverter/internal/models"
)

// DocxExtractor reads word/document.xml out of the DOCX zip container
// and walks its XML token stream directly: paragraph text is
// concatenated into RawText, table cells become fragments.
type DocxExtractor struct{}

func (e *DocxExtractor) Parse(filePath string) (*models.RawPayload, error) {
	hash, err := FileHash(filePath)
	if err != nil {
		return nil, err
	}

	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening DOCX %s: %w", filePath, err)
	}
	defer zr.Close()

	var doc io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc, err = f.Open()
			if err != nil {
				return nil, fmt.Errorf("opening document.xml in %s: %w", filePath, err)
			}
			break
		}
	}
	if doc == nil {
		return nil, fmt.Errorf("%s is not a DOCX file: missing word/document.xml", filePath)
	}
	defer doc.Close()

	fragments, rawText, err := walkDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("parsing DOCX %s: %w", filePath, err)
	}

	return &models.RawPayload{
		DocumentHash: hash,
		Fragments:    fragments,
		RawText:      rawText,
		SourceFile:   filePath,
	}, nil
}

// walkDocument streams through the WordprocessingML tokens. Only four
// elements matter: w:tbl / w:tr / w:tc for tables and w:p / w:t for
// text runs. Paragraphs inside table cells belong to the cell, not to
// the raw text.
func walkDocument(r io.Reader) ([]models.Fragment, string, error) {
	dec := xml.NewDecoder(r)

	var fragments []models.Fragment
	var rawParts []string
	var row []string
	var cell strings.Builder
	var para strings.Builder
	tableDepth := 0
	inCell := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "tr":
				if tableDepth > 0 {
					row = nil
				}
			case "tc":
				if tableDepth > 0 {
					inCell = true
					cell.Reset()
				}
			case "p":
				if tableDepth == 0 {
					para.Reset()
				}
			case "t":
				var text string
				if err := dec.DecodeElement(&text, &t); err != nil {
					return nil, "", err
				}
				if inCell {
					cell.WriteString(text)
				} else if tableDepth == 0 {
					para.WriteString(text)
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth--
			case "tr":
				if tableDepth > 0 && len(row) > 0 {
					fragments = append(fragments, models.Fragment{Cells: row, Page: 1})
					row = nil
				}
			case "tc":
				if inCell {
					row = append(row, strings.TrimSpace(cell.String()))
					inCell = false
				}
			case "p":
				if tableDepth == 0 {
					if s := strings.TrimSpace(para.String()); s != "" {
						rawParts = append(rawParts, s)
					}
					para.Reset()
				}
			}
		}
	}

	return fragments, strings.Join(rawParts, "\n"), nil
}
