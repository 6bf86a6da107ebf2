// Package importer records bank transfers found on an uploaded bank statement
// as payments against the invoices they mention.
package importer

import (
	"io"
	"regexp"
	"strings"

	"github.com/MrJamesThe3rd/daycare/internal/billing"
	"github.com/MrJamesThe3rd/daycare/internal/encoding"
	"github.com/MrJamesThe3rd/daycare/internal/importer/bank"
)

const maxReference = 100

var invoiceNumber = regexp.MustCompile(`INV-\d{8}-\d{4}`)

type Parser interface {
	Parse(r io.Reader) (*bank.Statement, error)
}

// Entry is the outcome for one credit line.
type Entry struct {
	Line          bank.Line
	InvoiceNumber string
	Payment       *billing.Payment
	Reason        string
}

type Result struct {
	Profile    string
	Charset    encoding.Charset
	Recorded   []Entry
	Duplicates []Entry
	Unmatched  []Entry
	Failed     []Entry
	// Debits counts outgoing movements, which are never imported.
	Debits int
}

// findInvoiceNumber returns the first invoice number in a bank description.
func findInvoiceNumber(description string) (string, bool) {
	n := invoiceNumber.FindString(strings.ToUpper(description))
	return n, n != ""
}

// reference is the bank description cut to what a payment reference holds.
func reference(description string) string {
	r := []rune(strings.TrimSpace(description))
	if len(r) > maxReference {
		r = r[:maxReference]
	}

	return strings.TrimSpace(string(r))
}
