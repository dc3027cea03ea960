package loader

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/Ahmedin-Jamil/QuickConverter/internal/models"
)

// generateText renders a fixed-width report for fast human preview.
func (l *Loader) generateText(transactions []*models.Transaction, audit AuditData) (*bytes.Buffer, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "STATEMENT CONVERSION REPORT - %s\n", audit.Timestamp.Format(time.RFC3339))
	buf.WriteString(strings.Repeat("=", 50) + "\n\n")

	for _, tx := range transactions {
		desc := tx.Description
		if len(desc) > 40 {
			desc = desc[:40]
		}
		fmt.Fprintf(&buf, "[%s] %-40s | Amt: %10.2f | Type: %s | Cat: %s\n",
			tx.PostDate, desc, tx.Amount, tx.Type, tx.Category)
	}

	return &buf, nil
}
