// Package identifier issues human-readable sequential codes of the form
// PREFIX-PERIOD-SEQ, where SEQ restarts at 1 whenever PERIOD changes.
package identifier

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind describes one family of identifiers.
type Kind struct {
	Prefix string
	// Width is the zero-padded width of the sequence segment.
	Width int
	// Layout is the time layout of the period segment.
	Layout string
}

var (
	// Registration numbers restart every calendar year: REG-2024-001.
	Registration = Kind{Prefix: "REG", Width: 3, Layout: "2006"}
	// InvoiceNumber restarts every calendar day: INV-20240115-0001.
	InvoiceNumber = Kind{Prefix: "INV", Width: 4, Layout: "20060102"}
	// Receipt numbers are issued per payment: RCT-20240115-0001.
	Receipt = Kind{Prefix: "RCT", Width: 4, Layout: "20060102"}
)

func (k Kind) PeriodKey(t time.Time) string {
	return t.Format(k.Layout)
}

// Key is the counter key for the period containing t, e.g. "INV-20240115".
func (k Kind) Key(t time.Time) string {
	return k.Prefix + "-" + k.PeriodKey(t)
}

func (k Kind) Format(period string, seq int64) string {
	return fmt.Sprintf("%s-%s-%0*d", k.Prefix, period, k.Width, seq)
}

// PeriodEnd returns the first instant after the period containing t.
func (k Kind) PeriodEnd(t time.Time) time.Time {
	switch k.Layout {
	case "2006":
		return time.Date(t.Year()+1, time.January, 1, 0, 0, 0, 0, t.Location())
	default:
		return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location())
	}
}

type Parsed struct {
	Prefix string
	Period string
	Seq    int64
}

// Key returns the PREFIX-PERIOD part.
func (p Parsed) Key() string {
	return p.Prefix + "-" + p.Period
}

func Parse(id string) (Parsed, error) {
	parts := strings.Split(id, "-")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return Parsed{}, fmt.Errorf("malformed identifier %q", id)
	}

	seq, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || seq < 1 {
		return Parsed{}, fmt.Errorf("malformed sequence in identifier %q", id)
	}

	return Parsed{Prefix: parts[0], Period: parts[1], Seq: seq}, nil
}

// NextAfter returns the sequence following the largest identifier in
// existing that belongs to key, or 1 when none does. Identifiers that do not
// parse are ignored.
func NextAfter(existing []string, key string) int64 {
	var last int64

	for _, id := range existing {
		p, err := Parse(id)
		if err != nil || p.Key() != key {
			continue
		}

		last = max(last, p.Seq)
	}

	return last + 1
}
