// Package csvimport reads bank statement exports into an account.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"cloud.google.com/go/civil"
	"github.com/ncruces/go-strftime"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/theirongolddev/banker/internal/ledger"
)

// Settings describe the layout of a CSV file. Column numbers start at 1.
type Settings struct {
	DateColumn         int
	DateFormat         string // strftime, e.g. "%d.%m.%Y"
	AmountColumn       int
	DecimalSeparator   string
	DescriptionColumns []int // joined with a space
	Delimiter          string
	Encoding           string // IANA name; cpNNNN is accepted for windows-NNNN
	SkipFirstLine      bool
}

// DefaultSettings returns the settings offered when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		DateColumn:         1,
		DateFormat:         "%Y/%m/%d",
		AmountColumn:       2,
		DecimalSeparator:   ".",
		DescriptionColumns: []int{3, 4, 5},
		Delimiter:          ";",
		Encoding:           "utf-8",
	}
}

// Row is one parsed statement line.
type Row struct {
	Date        civil.Date
	Amount      decimal.Decimal
	Description string
}

// RowError reports the line a parse failure happened on.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e *RowError) Unwrap() error { return e.Err }

// Validate checks the settings before any input is read.
func (s Settings) Validate() error {
	if s.DateColumn < 1 || s.AmountColumn < 1 {
		return errors.New("date and amount columns must be 1 or greater")
	}
	for _, c := range s.DescriptionColumns {
		if c < 1 {
			return fmt.Errorf("description column %d must be 1 or greater", c)
		}
	}
	if s.DateFormat == "" {
		return errors.New("date format is empty")
	}
	if s.DecimalSeparator == "" {
		return errors.New("decimal separator is empty")
	}
	if utf8.RuneCountInString(s.Delimiter) != 1 {
		return fmt.Errorf("delimiter %q must be a single character", s.Delimiter)
	}
	return nil
}

// Parse reads every row of r. Any malformed row fails the whole parse.
func Parse(r io.Reader, s Settings) ([]Row, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	dec, err := decoder(r, s.Encoding)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(dec)
	cr.Comma, _ = utf8.DecodeRuneInString(s.Delimiter)
	cr.FieldsPerRecord = -1

	var rows []Row
	for n := 0; ; n++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, &RowError{Line: perr.Line, Err: perr.Err}
			}
			return nil, err
		}
		if n == 0 && s.SkipFirstLine {
			continue
		}
		if blank(rec) {
			continue
		}
		row, err := s.parseRecord(rec)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, &RowError{Line: line, Err: err}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Import parses r and adds one transaction per row to account. Nothing is
// added unless every row parses.
func Import(r io.Reader, account *ledger.Account, s Settings) ([]*ledger.Transaction, error) {
	rows, err := Parse(r, s)
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	txs := make([]*ledger.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := account.AddTransaction(row.Amount, row.Description, row.Date)
		if err != nil {
			return txs, fmt.Errorf("adding %s %s: %w", row.Date, row.Amount, err)
		}
		txs = append(txs, t)
	}
	return txs, nil
}

func (s Settings) parseRecord(rec []string) (Row, error) {
	field := func(col int) (string, error) {
		if col > len(rec) {
			return "", fmt.Errorf("column %d missing, row has %d", col, len(rec))
		}
		return strings.TrimSpace(rec[col-1]), nil
	}

	var row Row
	raw, err := field(s.DateColumn)
	if err != nil {
		return row, err
	}
	t, err := strftime.Parse(s.DateFormat, raw)
	if err != nil {
		return row, fmt.Errorf("date %q does not match %s: %w", raw, s.DateFormat, err)
	}
	row.Date = civil.DateOf(t)

	raw, err = field(s.AmountColumn)
	if err != nil {
		return row, err
	}
	if row.Amount, err = ParseAmount(raw, s.DecimalSeparator); err != nil {
		return row, err
	}

	// Description columns past the end of a short row count as empty.
	parts := make([]string, 0, len(s.DescriptionColumns))
	for _, col := range s.DescriptionColumns {
		if col > len(rec) {
			continue
		}
		if v := strings.TrimSpace(rec[col-1]); v != "" {
			parts = append(parts, v)
		}
	}
	row.Description = strings.Join(parts, " ")
	return row, nil
}

// ParseAmount parses a signed amount written with sep as decimal separator.
// Spaces used as digit grouping are ignored.
func ParseAmount(raw, sep string) (decimal.Decimal, error) {
	v := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, raw)
	if sep != "." {
		v = strings.Replace(v, sep, ".", 1)
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount %q is not a number", raw)
	}
	return d, nil
}

func decoder(r io.Reader, name string) (io.Reader, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "utf-8" || name == "utf8" {
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder()), nil
	}
	if rest, ok := strings.CutPrefix(name, "cp"); ok {
		name = "windows-" + rest
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("encoding %q is not supported", name)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
