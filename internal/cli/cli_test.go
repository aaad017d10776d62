package cli

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"cloud.google.com/go/civil"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-45000, "-45,000"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Fatalf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	d := civil.Date{Year: 2026, Month: time.March, Day: 15}
	if got := FormatDate(d); got != "2026-03-15 Sun" {
		t.Fatalf("FormatDate = %q, want %q", got, "2026-03-15 Sun")
	}
	if got := FormatDate(civil.Date{}); got != "-" {
		t.Fatalf("FormatDate(zero) = %q, want -", got)
	}
}

func TestFormatTags(t *testing.T) {
	if got := FormatTags([]string{"food", "bank"}); got != "#food #bank" {
		t.Fatalf("FormatTags = %q", got)
	}
	if got := FormatTags(nil); got != "" {
		t.Fatalf("FormatTags(nil) = %q, want empty", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("groceries", 20); got != "groceries" {
		t.Fatalf("Truncate short = %q", got)
	}
	got := Truncate("Überweisung Miete März", 10)
	if utf8.RuneCountInString(got) != 10 || !strings.HasSuffix(got, "…") {
		t.Fatalf("Truncate long = %q", got)
	}
}

func TestRenderSparkline(t *testing.T) {
	got := []rune(RenderSparkline([]float64{-10, 0, 10}))
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0] != '▁' || got[2] != '█' {
		t.Fatalf("sparkline = %q", string(got))
	}
	flat := RenderSparkline([]float64{5, 5})
	if flat != "▁▁" {
		t.Fatalf("flat sparkline = %q", flat)
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Account", "Balance"},
		Rows: [][]string{
			{"Checking", "1.00"},
			Separator,
			{"Total", "1.00"},
		},
	})
	for _, want := range []string{"Account", "Checking", "Total", "├"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
	if lines := strings.Count(out, "\n"); lines != 7 {
		t.Fatalf("table has %d lines, want 7:\n%s", lines, out)
	}
}

func TestThemeByName(t *testing.T) {
	if ThemeByName("tokyo-night").Name != "tokyo-night" {
		t.Fatal("tokyo-night not found")
	}
	if ThemeByName("nope").Name != FlexokiDark.Name {
		t.Fatal("unknown theme did not fall back to flexoki-dark")
	}
}
