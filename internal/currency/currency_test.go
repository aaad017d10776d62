package currency

import (
	"slices"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func mustCode(t *testing.T, code string) Rules {
	t.Helper()
	_, r, err := Lookup(code)
	if err != nil {
		t.Fatalf("Lookup(%q): %v", code, err)
	}
	return r
}

func TestFormat_RuleSets(t *testing.T) {
	tests := []struct {
		code     string
		positive string
		negative string
	}{
		{"USD", "$1,234.50", "-$5.00"},
		{"EUR", "1 234,50 €", "-5,00 €"},
		{"GBP", "£1,234.50", "-£5.00"},
		{"JPY", "￥1,234", "￥5-"},
		{"RUB", "1 234.50 руб", "-5.00 руб"},
		{"UAH", "1 234,50 гр", "-5,00 гр"},
		{"SAR", "1234.50 ريال", "-5.00 ريال"},
		{"NOK", "kr1 234,50", "kr5,00-"},
		{"VND", "1.234₫", "-₫5"},
		{"INR", "₨ 1,234.50", "-₨ 5.00"},
		{"ILS", "שח 1,234.50", "שח 5.00-"},
		{"AED", "د.إ. 1,234.500", "د.إ. 5.000-"},
		{"MYR", "RM1,234.50", "(RM5.00)"},
		{"ZAR", "R1 234,50", "-R5,00"},
	}

	for _, tt := range tests {
		r := mustCode(t, tt.code)
		if got := r.Format(decimal.RequireFromString("1234.5"), 0, false); got != tt.positive {
			t.Errorf("%s Format(1234.5) = %q, want %q", tt.code, got, tt.positive)
		}
		if got := r.Format(decimal.NewFromInt(-5), 0, false); got != tt.negative {
			t.Errorf("%s Format(-5) = %q, want %q", tt.code, got, tt.negative)
		}
	}
}

func TestFormat_NoNegativeZero(t *testing.T) {
	usd := mustCode(t, "USD")
	for _, v := range []string{"-0.0004", "-0.004", "-0.0001", "0"} {
		got := usd.Format(decimal.RequireFromString(v), 0, false)
		if got != "$0.00" {
			t.Errorf("Format(%s) = %q, want $0.00", v, got)
		}
	}
}

func TestFormat_Grouping(t *testing.T) {
	usd := mustCode(t, "USD")
	if got := usd.Format(decimal.NewFromInt(1234567890), 0, false); got != "$1,234,567,890.00" {
		t.Errorf("USD grouping = %q", got)
	}

	inr := mustCode(t, "INR")
	if got := inr.Format(decimal.RequireFromString("12345678.9"), 0, false); got != "₨ 1,23,45,678.90" {
		t.Errorf("INR grouping = %q", got)
	}

	noRepeat := usd
	noRepeat.Grouping = []int{3}
	if got := noRepeat.Format(decimal.NewFromInt(1234567), 0, false); got != "$1234,567.00" {
		t.Errorf("non-repeating grouping = %q", got)
	}
}

func TestFormat_NickAndWidth(t *testing.T) {
	usd := mustCode(t, "USD")
	if got := usd.Format(decimal.RequireFromString("1234.5"), 0, true); got != "USD $1,234.50" {
		t.Errorf("withNick = %q", got)
	}

	got := usd.Format(decimal.NewFromInt(5), 12, false)
	if got != "       $5.00" {
		t.Errorf("width 12 = %q", got)
	}

	eur := mustCode(t, "EUR")
	got = eur.Format(decimal.NewFromInt(5), 8, false)
	if got != "  5,00 €" {
		t.Errorf("width counts runes, got %q", got)
	}
}

func TestFormat_BankRounding(t *testing.T) {
	usd := mustCode(t, "USD")
	if got := usd.Format(decimal.RequireFromString("0.125"), 0, false); got != "$0.12" {
		t.Errorf("Format(0.125) = %q, want $0.12", got)
	}
	if got := usd.Format(decimal.RequireFromString("0.135"), 0, false); got != "$0.14" {
		t.Errorf("Format(0.135) = %q, want $0.14", got)
	}
}

func TestRulesEqual(t *testing.T) {
	a := mustCode(t, "EUR")
	b := mustCode(t, "EUR")
	b.Name = "Something else"
	if !a.Equal(b) {
		t.Fatal("rule sets differing only in name should be equal")
	}
	if a.Equal(mustCode(t, "USD")) {
		t.Fatal("EUR should not equal USD")
	}
}

func TestLookup(t *testing.T) {
	i, r, err := Lookup(" eur ")
	if err != nil {
		t.Fatalf("Lookup(eur): %v", err)
	}
	if i != 2 || r.Code != "EUR" {
		t.Fatalf("Lookup(eur) = %d %s, want 2 EUR", i, r.Code)
	}

	if _, _, err := Lookup("BRL"); err == nil || !strings.Contains(err.Error(), "no formatting rules") {
		t.Fatalf("Lookup(BRL) err = %v, want missing rules", err)
	}
	if _, _, err := Lookup("QQQ"); err == nil || !strings.Contains(err.Error(), "unknown") {
		t.Fatalf("Lookup(QQQ) err = %v, want unknown", err)
	}
}

func TestByIndex(t *testing.T) {
	if _, err := ByIndex(Count()); err == nil {
		t.Fatal("ByIndex(Count()) should fail")
	}
	r, err := ByIndex(1)
	if err != nil || r.Code != "USD" {
		t.Fatalf("ByIndex(1) = %v, %v; want USD", r.Code, err)
	}
	if got := MustIndex(-1); got.Name != "Localized" {
		t.Fatalf("MustIndex(-1) = %s, want localized fallback", got.Name)
	}
}

func TestRulesAreCopies(t *testing.T) {
	r, _ := ByIndex(1)
	if len(r.Grouping) == 0 {
		t.Fatal("USD has no grouping")
	}
	want := slices.Clone(r.Grouping)
	r.Grouping[0] = 99

	_, looked, _ := Lookup("USD")
	looked.Grouping[0] = 98

	again, _ := ByIndex(1)
	if !slices.Equal(again.Grouping, want) {
		t.Fatalf("Grouping = %v after caller writes, want %v", again.Grouping, want)
	}
}

func TestDetect(t *testing.T) {
	env := func(vars map[string]string) func(string) string {
		return func(k string) string { return vars[k] }
	}

	r := detect(env(map[string]string{"LANG": "de_DE.UTF-8"}))
	if r.Code != "EUR" || r.Name != "Localized" {
		t.Fatalf("de_DE detected %s/%s, want EUR/Localized", r.Code, r.Name)
	}

	r = detect(env(map[string]string{"LC_ALL": "C", "LANG": "ja_JP.UTF-8"}))
	if r.Code != "JPY" {
		t.Fatalf("C then ja_JP detected %s, want JPY", r.Code)
	}

	r = detect(env(nil))
	if r.Code != "USD" {
		t.Fatalf("empty environment detected %s, want USD", r.Code)
	}
}

func TestStrings(t *testing.T) {
	s := Strings()
	if len(s) != Count() {
		t.Fatalf("Strings() len = %d, want %d", len(s), Count())
	}
	if s[1] != "USD: $1.00" {
		t.Errorf("Strings()[1] = %q", s[1])
	}
	if !strings.HasSuffix(s[LocalizedIndex], "(detected)") {
		t.Errorf("localized entry = %q", s[LocalizedIndex])
	}
}
