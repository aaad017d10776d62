package ledger

import (
	"fmt"
	"regexp"
	"strings"
)

// SearchField selects which transaction field a search matches against.
type SearchField int

const (
	FieldAmount SearchField = iota
	FieldDescription
	FieldDate
)

var fieldNames = []string{"amount", "description", "date"}

func (f SearchField) String() string {
	if f < FieldAmount || f > FieldDate {
		return fmt.Sprintf("SearchField(%d)", int(f))
	}
	return fieldNames[f]
}

// ParseSearchField parses "amount", "description" or "date".
func ParseSearchField(s string) (SearchField, error) {
	for i, name := range fieldNames {
		if strings.EqualFold(s, name) {
			return SearchField(i), nil
		}
	}
	return 0, fmt.Errorf("unknown search field %q", s)
}

// Search returns the transactions whose rendered field matches query, case
// insensitively. query is a regular expression; if it does not compile it is
// matched literally. A nil account searches every account.
func (m *Model) Search(query string, account *Account, field SearchField) []*Transaction {
	re, err := regexp.Compile("(?i)" + query)
	if err != nil {
		re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))
	}

	var candidates []*Transaction
	if account == nil {
		candidates = m.Transactions()
	} else {
		candidates = account.Transactions()
	}

	var matches []*Transaction
	for _, t := range candidates {
		if re.MatchString(t.fieldText(field)) {
			matches = append(matches, t)
		}
	}
	return matches
}

func (t *Transaction) fieldText(f SearchField) string {
	switch f {
	case FieldAmount:
		// Fixed to the currency's fraction digits, as amounts are displayed.
		places := 2
		if t.owner != nil {
			places = t.owner.CurrencyRules().FracDigits
		}
		return t.amount.StringFixed(int32(places))
	case FieldDate:
		return t.date.String()
	default:
		return t.description
	}
}
