// Package bank reads the semicolon-separated CSV exports of the daycare's
// bank accounts.
package bank

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/daycare/internal/encoding"
)

var ErrUnknownFormat = errors.New("no known bank export format found")

// Line is one movement on the account. Amount is always positive.
type Line struct {
	Row         int
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Credit      bool
}

type Statement struct {
	Profile string
	Charset encoding.Charset
	Lines   []Line
}

// Credits returns the incoming movements.
func (s *Statement) Credits() []Line {
	var out []Line

	for _, l := range s.Lines {
		if l.Credit {
			out = append(out, l)
		}
	}

	return out
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse detects the export format from its header row. Rows before the
// header and rows without a date (balances, footers) are ignored.
func (p *Parser) Parse(r io.Reader) (*Statement, error) {
	utf8r, charset, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, ErrUnknownFormat
	}

	lines, err := parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
	if err != nil {
		return nil, err
	}

	return &Statement{Profile: profile.Name, Charset: charset, Lines: lines}, nil
}

type colIndex map[string]int

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := strings.TrimSpace(cell); name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matches(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matches(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows reports rows by their 1-based position in the file.
func parseRows(p *Profile, cols colIndex, rows [][]string, offset int) ([]Line, error) {
	var lines []Line

	for i, row := range rows {
		rowNum := offset + i + 1

		date, err := time.Parse(p.DateLayout, cell(row, cols[p.DateCol]))
		if err != nil {
			continue
		}

		desc := cell(row, cols[p.DescCol])
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		amount, credit, ok := parseAmount(p, cols, row)
		if !ok {
			continue
		}

		lines = append(lines, Line{
			Row:         rowNum,
			Date:        date,
			Description: desc,
			Amount:      amount,
			Credit:      credit,
		})
	}

	return lines, nil
}

func parseAmount(p *Profile, cols colIndex, row []string) (decimal.Decimal, bool, bool) {
	if p.AmountMode == amountSplit {
		if d, ok := nonZero(cell(row, cols[p.DebitCol])); ok {
			return d.Abs(), false, true
		}

		if d, ok := nonZero(cell(row, cols[p.CreditCol])); ok {
			return d.Abs(), true, true
		}

		return decimal.Zero, false, false
	}

	d, ok := nonZero(cell(row, cols[p.AmountCol]))
	if !ok {
		return decimal.Zero, false, false
	}

	return d.Abs(), d.IsPositive(), true
}

func nonZero(s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Zero, false
	}

	d, err := parseEuropeanAmount(s)
	if err != nil || d.IsZero() {
		return decimal.Zero, false
	}

	return d, true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
