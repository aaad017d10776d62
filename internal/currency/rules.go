// Package currency formats monetary amounts according to static, locale-like
// rule sets. A rule set only selects a display format; no exchange rates are
// involved anywhere.
package currency

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Sign positions, as in POSIX localeconv.
const (
	SignParens      = 0 // (value and symbol)
	SignBefore      = 1 // sign precedes value and symbol
	SignAfter       = 2 // sign follows value and symbol
	SignBeforeValue = 3 // sign immediately precedes the value
	SignAfterValue  = 4 // sign immediately follows the value
)

// Rules is an immutable bundle of monetary formatting conventions.
type Rules struct {
	Name   string
	Code   string // ISO 4217 code, shown as the nick
	Symbol string

	DecimalPoint string
	ThousandsSep string
	// Grouping lists group sizes from the right. A 0 ends the list and
	// repeats the previous size; an empty list disables grouping.
	Grouping   []int
	FracDigits int

	PosCSPrecedes bool
	NegCSPrecedes bool
	PosSepBySpace int
	NegSepBySpace int
	PosSignPosn   int
	NegSignPosn   int
	PositiveSign  string
	NegativeSign  string
}

// Equal reports whether both rule sets format every amount identically.
// The display name is not part of the comparison.
func (r Rules) Equal(o Rules) bool {
	return r.Code == o.Code &&
		r.Symbol == o.Symbol &&
		r.DecimalPoint == o.DecimalPoint &&
		r.ThousandsSep == o.ThousandsSep &&
		slices.Equal(r.Grouping, o.Grouping) &&
		r.FracDigits == o.FracDigits &&
		r.PosCSPrecedes == o.PosCSPrecedes &&
		r.NegCSPrecedes == o.NegCSPrecedes &&
		r.PosSepBySpace == o.PosSepBySpace &&
		r.NegSepBySpace == o.NegSepBySpace &&
		r.PosSignPosn == o.PosSignPosn &&
		r.NegSignPosn == o.NegSignPosn &&
		r.PositiveSign == o.PositiveSign &&
		r.NegativeSign == o.NegativeSign
}

// Nick returns the short currency code, e.g. "USD".
func (r Rules) Nick() string { return r.Code }

// base is seeded with western conventions; every rule set below starts from it.
func base(name, code, symbol string, opts ...func(*Rules)) Rules {
	r := Rules{
		Name:          name,
		Code:          code,
		Symbol:        symbol,
		DecimalPoint:  ".",
		ThousandsSep:  ",",
		Grouping:      []int{3, 3, 0},
		FracDigits:    2,
		PosCSPrecedes: true,
		NegCSPrecedes: true,
		PosSignPosn:   SignBefore,
		NegSignPosn:   SignBefore,
		NegativeSign:  "-",
	}
	for _, o := range opts {
		o(&r)
	}
	return r
}

func seps(dec, thousands string) func(*Rules) {
	return func(r *Rules) { r.DecimalPoint, r.ThousandsSep = dec, thousands }
}

func grouping(g ...int) func(*Rules) {
	return func(r *Rules) { r.Grouping = g }
}

func frac(n int) func(*Rules) {
	return func(r *Rules) { r.FracDigits = n }
}

// symbolAfter places the symbol after the value, separated by a space.
func symbolAfter(r *Rules) {
	r.PosCSPrecedes, r.NegCSPrecedes = false, false
	r.PosSepBySpace, r.NegSepBySpace = 1, 1
}

func spaced(pos, neg int) func(*Rules) {
	return func(r *Rules) { r.PosSepBySpace, r.NegSepBySpace = pos, neg }
}

func signPosn(pos, neg int) func(*Rules) {
	return func(r *Rules) { r.PosSignPosn, r.NegSignPosn = pos, neg }
}

// catalogue holds every supported rule set. The index of an entry is what
// gets persisted, so entries must only ever be appended. Index 0 is replaced
// at startup by the rules detected from the host locale.
var catalogue = []Rules{
	{}, // localized, filled by init
	base("United States", "USD", "$"),
	base("Euro", "EUR", "€", seps(",", " "), symbolAfter),
	base("Great Britain", "GBP", "£"),
	base("Japan", "JPY", "￥", frac(0), signPosn(SignAfterValue, SignAfterValue), grouping(3, 0)),
	base("Russia", "RUB", "руб", seps(".", " "), symbolAfter),
	base("Ukraine", "UAH", "гр", seps(",", " "), symbolAfter, spaced(2, 1)),
	base("Mexico", "MXN", "$"),
	base("Sweden", "SEK", "kr", seps(",", " "), symbolAfter),
	base("Saudi Arabia", "SAR", "ريال", seps(".", ""), symbolAfter, grouping()),
	base("Norway", "NOK", "kr", seps(",", " "), signPosn(SignAfterValue, SignAfterValue)),
	base("Thailand", "THB", "฿", spaced(2, 2), signPosn(SignAfterValue, SignAfterValue), grouping(3, 0)),
	base("Vietnam", "VND", "₫", seps(",", "."), frac(0), func(r *Rules) { r.PosCSPrecedes = false }),
	base("India", "INR", "₨", spaced(1, 1), grouping(3, 2, 0)),
	base("Romania", "RON", "Lei", seps(",", "."), spaced(1, 1)),
	base("United Arab Emirates", "AED", "د.إ.", frac(3), spaced(1, 1), signPosn(SignBefore, SignAfter), grouping(3, 0)),
	base("Lithuania", "LTL", "Lt", seps(",", "."), symbolAfter),
	base("Serbia", "RSD", "дин", seps(",", "."), symbolAfter),
	base("Hungary", "HUF", "Ft", seps(",", "."), symbolAfter),
	base("Israel", "ILS", "שח", spaced(1, 1), signPosn(SignAfter, SignAfter)),
	base("Egypt", "EGP", "ج.م.", frac(3), spaced(1, 1), signPosn(SignBefore, SignAfter), grouping(3, 0)),
	base("Poland", "PLN", "zł", seps(",", "."), symbolAfter),
	base("Czech Republic", "CZK", "Kč", seps(",", " "), symbolAfter),
	base("Argentina", "ARS", "$", seps(",", "."), spaced(1, 1)),
	base("Taiwan", "TWD", "NT$", grouping(3, 0)),
	base("Guatemala", "GTQ", "Q", spaced(1, 1)),
	base("China", "CNY", "￥", signPosn(SignAfterValue, SignAfterValue), grouping(3, 0)),
	base("Morocco", "MAD", "د.م.", frac(3), spaced(1, 1), signPosn(SignBefore, SignAfter), grouping(3, 0)),
	base("Macedonia", "MKD", "ден", seps(",", " "), symbolAfter),
	base("Indonesia", "IDR", "Rp", seps(",", ".")),
	base("Canada", "CAD", "$"),
	base("Kazakhstan", "KZT", "тг", seps(".", " "), symbolAfter),
	base("Tunisia", "TND", "د.ت.", frac(3), spaced(1, 1), signPosn(SignBefore, SignAfter), grouping(3, 0)),
	base("Malaysia", "MYR", "RM", signPosn(SignBefore, SignParens), grouping(3, 0)),
	base("South Africa", "ZAR", "R", seps(",", " ")),
}

// LocalizedIndex is the catalogue slot holding the host-derived rule set.
const LocalizedIndex = 0

func init() {
	catalogue[LocalizedIndex] = detect(os.Getenv)
}

// Count returns the number of available rule sets.
func Count() int { return len(catalogue) }

// ByIndex returns the rule set stored at index i.
func ByIndex(i int) (Rules, error) {
	if i < 0 || i >= len(catalogue) {
		return Rules{}, fmt.Errorf("currency index %d out of range [0, %d)", i, len(catalogue))
	}
	return entry(i), nil
}

// entry returns catalogue slot i with its own copy of the grouping list, so
// callers cannot change the shared rule set.
func entry(i int) Rules {
	r := catalogue[i]
	r.Grouping = slices.Clone(r.Grouping)
	return r
}

// MustIndex is ByIndex for indexes known to be valid. Out-of-range indexes
// fall back to the localized rules.
func MustIndex(i int) Rules {
	r, err := ByIndex(i)
	if err != nil {
		return entry(LocalizedIndex)
	}
	return r
}

// Lookup resolves an ISO 4217 code to a catalogue index. Non-localized
// entries take precedence, so "USD" always resolves to the United States slot.
func Lookup(code string) (int, Rules, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for i := 1; i < len(catalogue); i++ {
		if catalogue[i].Code == code {
			return i, entry(i), nil
		}
	}
	if money.GetCurrency(code) != nil {
		return -1, Rules{}, fmt.Errorf("currency %s has no formatting rules", code)
	}
	return -1, Rules{}, fmt.Errorf("unknown currency code %q", code)
}

// Strings lists every rule set as "CODE: <formatted 1>", suitable for a
// selection list. The localized entry is marked as detected.
func Strings() []string {
	out := make([]string, len(catalogue))
	for i, r := range catalogue {
		out[i] = fmt.Sprintf("%s: %s", r.Code, r.Format(decimal.NewFromInt(1), 0, false))
	}
	out[LocalizedIndex] += " (detected)"
	return out
}
