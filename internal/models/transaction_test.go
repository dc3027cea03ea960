package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignature(t *testing.T) {
	tx := &Transaction{PostDate: "01/02/2026", Description: "Uber Trip", Amount: 25}
	assert.Equal(t, "01/02/2026|25.00|Uber Trip", tx.Signature())
}

func TestSignatureTruncatesDescription(t *testing.T) {
	long := strings.Repeat("x", 45)
	tx := &Transaction{PostDate: "01/02/2026", Description: long, Amount: 9.99}
	assert.Equal(t, "01/02/2026|9.99|"+long[:30], tx.Signature())
}

func TestSignatureDistinguishesAmounts(t *testing.T) {
	a := &Transaction{PostDate: "01/02/2026", Description: "Coffee", Amount: 4.5}
	b := &Transaction{PostDate: "01/02/2026", Description: "Coffee", Amount: 4.51}
	assert.NotEqual(t, a.Signature(), b.Signature())
}
