package currency

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// negativeZero is the magnitude below which an amount is shown as zero.
var negativeZero = decimal.New(1, -3)

// Format renders amount with the rule set's symbol, sign and grouping
// conventions. With withNick the ISO code is prefixed, and a positive width
// right-justifies the result to that many characters.
func (r Rules) Format(amount decimal.Decimal, width int, withNick bool) string {
	if amount.Abs().LessThan(negativeZero) {
		amount = decimal.Zero
	}

	magnitude := amount.Abs().RoundBank(int32(r.FracDigits))
	negative := amount.IsNegative() && !magnitude.IsZero()

	// '<' and '>' mark the value edges for sign positions 3 and 4.
	s := "<" + r.digits(magnitude) + ">"

	precedes, sepBySpace := r.PosCSPrecedes, r.PosSepBySpace
	signPosn, sign := r.PosSignPosn, r.PositiveSign
	if negative {
		precedes, sepBySpace = r.NegCSPrecedes, r.NegSepBySpace
		signPosn, sign = r.NegSignPosn, r.NegativeSign
	}

	sep := ""
	if sepBySpace != 0 {
		sep = " "
	}
	if precedes {
		s = r.Symbol + sep + s
	} else {
		s = s + sep + r.Symbol
	}

	switch signPosn {
	case SignParens:
		s = "(" + s + ")"
	case SignAfter:
		s += sign
	case SignBeforeValue:
		s = strings.Replace(s, "<", sign, 1)
	case SignAfterValue:
		s = strings.Replace(s, ">", sign, 1)
	default:
		s = sign + s
	}
	s = strings.NewReplacer("<", "", ">", "").Replace(s)

	if withNick {
		s = r.Nick() + " " + s
	}
	if pad := width - utf8.RuneCountInString(s); pad > 0 {
		s = strings.Repeat(" ", pad) + s
	}
	return s
}

// digits renders a non-negative, already rounded amount with the grouping
// and decimal point of the rule set.
func (r Rules) digits(magnitude decimal.Decimal) string {
	fixed := magnitude.StringFixedBank(int32(r.FracDigits))
	intPart, fracPart, _ := strings.Cut(fixed, ".")
	intPart = r.group(intPart)
	if r.FracDigits <= 0 {
		return intPart
	}
	return intPart + r.DecimalPoint + fracPart
}

// group splits an integer digit string into groups from the right.
func (r Rules) group(s string) string {
	sizes := r.Grouping
	if len(sizes) == 0 {
		return s
	}

	var groups []string
	size, repeating := 0, false
	for i := 0; ; i++ {
		switch {
		case repeating:
		case i >= len(sizes):
			size = 0
		case sizes[i] == 0:
			repeating = true
		default:
			size = sizes[i]
		}
		if size <= 0 || size >= len(s) {
			break
		}
		groups = append(groups, s[len(s)-size:])
		s = s[:len(s)-size]
	}
	groups = append(groups, s)

	for i, j := 0, len(groups)-1; i < j; i, j = i+1, j-1 {
		groups[i], groups[j] = groups[j], groups[i]
	}
	return strings.Join(groups, r.ThousandsSep)
}
