package csvimport

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/banker/internal/config"
	"github.com/theirongolddev/banker/internal/ledger"
)

func TestParse(t *testing.T) {
	in := "date;amount;payee;memo\n" +
		"2026/01/05;-12.50;Grocer;weekly\n" +
		"\n" +
		"2026/01/31;2 000.00;Employer;\n"
	s := DefaultSettings()
	s.SkipFirstLine = true
	s.DescriptionColumns = []int{3, 4}

	rows, err := Parse(strings.NewReader(in), s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0].Date != (civil.Date{Year: 2026, Month: time.January, Day: 5}) {
		t.Fatalf("rows[0].Date = %s", rows[0].Date)
	}
	if !rows[0].Amount.Equal(decimal.RequireFromString("-12.5")) || rows[0].Description != "Grocer weekly" {
		t.Fatalf("rows[0] = %+v", rows[0])
	}
	if !rows[1].Amount.Equal(decimal.NewFromInt(2000)) || rows[1].Description != "Employer" {
		t.Fatalf("rows[1] = %+v", rows[1])
	}
}

func TestParse_ShortRowWithDefaults(t *testing.T) {
	in := "2026/01/05;-12.50;Grocer\n2026/01/06;3;Bakery;fresh\n"
	rows, err := Parse(strings.NewReader(in), DefaultSettings())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0].Description != "Grocer" {
		t.Fatalf("rows[0].Description = %q, want Grocer", rows[0].Description)
	}
	if rows[1].Description != "Bakery fresh" {
		t.Fatalf("rows[1].Description = %q, want %q", rows[1].Description, "Bakery fresh")
	}
}

func TestParse_DecimalCommaAndEncoding(t *testing.T) {
	// "15.03.2026,\"-3,20\",N\xe1kup" encoded as windows-1250
	in := []byte("15.03.2026,\"-3,20\",N\xe1kup\n")
	s := Settings{
		DateColumn:         1,
		DateFormat:         "%d.%m.%Y",
		AmountColumn:       2,
		DecimalSeparator:   ",",
		DescriptionColumns: []int{3},
		Delimiter:          ",",
		Encoding:           "cp1250",
	}
	rows, err := Parse(bytes.NewReader(in), s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 1 || !rows[0].Amount.Equal(decimal.RequireFromString("-3.2")) {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[0].Description != "Nákup" {
		t.Fatalf("Description = %q, want Nákup", rows[0].Description)
	}
}

func TestParse_MalformedRowFails(t *testing.T) {
	in := "2026/01/05;-12.50;ok\n2026/13/40;1;bad date\n"
	_, err := Parse(strings.NewReader(in), DefaultSettings())
	var rerr *RowError
	if !errors.As(err, &rerr) || rerr.Line != 2 {
		t.Fatalf("err = %v, want RowError on line 2", err)
	}

	in = "2026/01/05;twelve;bad amount\n"
	if _, err := Parse(strings.NewReader(in), DefaultSettings()); err == nil {
		t.Fatal("non-numeric amount accepted")
	}

	in = "2026/01/05\n"
	if _, err := Parse(strings.NewReader(in), DefaultSettings()); err == nil {
		t.Fatal("missing columns accepted")
	}
}

func TestImport_AllOrNothing(t *testing.T) {
	m := ledger.New(nil)
	a, _ := m.CreateAccount("Checking")

	bad := "2026/01/05;1;a\n2026/01/06;x;b\n"
	if _, err := Import(strings.NewReader(bad), a, DefaultSettings()); err == nil {
		t.Fatal("Import with a bad row succeeded")
	}
	if len(a.Transactions()) != 0 {
		t.Fatalf("failed import added %d transactions", len(a.Transactions()))
	}

	good := "2026/01/05;1;a\n2026/01/06;2.5;b\n"
	txs, err := Import(strings.NewReader(good), a, DefaultSettings())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(txs) != 2 || !a.Balance().Equal(decimal.RequireFromString("3.5")) {
		t.Fatalf("imported %d, balance %s", len(txs), a.Balance())
	}
}

func TestValidate(t *testing.T) {
	s := DefaultSettings()
	s.Delimiter = ";;"
	if err := s.Validate(); err == nil {
		t.Fatal("two-character delimiter accepted")
	}
	s = DefaultSettings()
	s.AmountColumn = 0
	if err := s.Validate(); err == nil {
		t.Fatal("column 0 accepted")
	}
	s = DefaultSettings()
	s.Encoding = "klingon"
	if _, err := Parse(strings.NewReader(""), s); err == nil {
		t.Fatal("unknown encoding accepted")
	}
}

func TestProfileRoundTrip(t *testing.T) {
	s := FromProfile(config.CSVProfile{AmountColumn: 4, Encoding: "windows-1250"})
	if s.AmountColumn != 4 || s.DateColumn != 1 || s.Delimiter != ";" {
		t.Fatalf("FromProfile = %+v", s)
	}
	back := FromProfile(s.Profile())
	if back.AmountColumn != 4 || back.Encoding != "windows-1250" || back.DateFormat != s.DateFormat {
		t.Fatalf("round trip = %+v", back)
	}
}
