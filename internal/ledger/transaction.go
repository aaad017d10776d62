package ledger

import (
	"fmt"
	"slices"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Transaction is a single dated, signed monetary entry. Its identity never
// changes; its fields are mutated in place so every holder of the pointer
// observes the change.
type Transaction struct {
	id          string
	owner       *Account
	amount      decimal.Decimal
	description string
	date        civil.Date
	tags        []string // sorted, unique
}

// ID returns the stable identifier of the transaction.
func (t *Transaction) ID() string { return t.id }

// Owner returns the account holding the transaction, or nil once removed.
func (t *Transaction) Owner() *Account { return t.owner }

func (t *Transaction) Amount() decimal.Decimal { return t.amount }
func (t *Transaction) Description() string     { return t.description }
func (t *Transaction) Date() civil.Date        { return t.date }

// GetAmount returns the raw amount. The currency index only selects a
// display format elsewhere; no conversion takes place.
func (t *Transaction) GetAmount(_ int) decimal.Decimal { return t.amount }

// Tags returns a copy of the transaction's tags in sorted order.
func (t *Transaction) Tags() []string { return slices.Clone(t.tags) }

// HasTag reports whether the transaction carries tag.
func (t *Transaction) HasTag(tag string) bool {
	_, found := slices.BinarySearch(t.tags, tag)
	return found
}

// SetAmount changes the amount and notifies subscribers.
func (t *Transaction) SetAmount(amount decimal.Decimal) error {
	m, err := t.model("set amount")
	if err != nil {
		return err
	}
	if t.amount.Equal(amount) {
		return nil
	}
	t.amount = amount
	m.publish(TopicTransactionUpdated, Change{Account: t.owner, Transaction: t})
	m.publish(TopicAccountBalanceChanged, Change{Account: t.owner})
	return nil
}

// SetDescription changes the description and notifies subscribers.
func (t *Transaction) SetDescription(description string) error {
	m, err := t.model("set description")
	if err != nil {
		return err
	}
	if t.description == description {
		return nil
	}
	t.description = description
	m.publish(TopicTransactionUpdated, Change{Account: t.owner, Transaction: t})
	return nil
}

// SetDate changes the date and notifies subscribers.
func (t *Transaction) SetDate(date civil.Date) error {
	m, err := t.model("set date")
	if err != nil {
		return err
	}
	if !date.IsValid() {
		return invalid("set date", "invalid date %v", date)
	}
	if t.date == date {
		return nil
	}
	t.date = date
	m.publish(TopicTransactionUpdated, Change{Account: t.owner, Transaction: t})
	return nil
}

// AddTags tags the transaction. Tags it already carries are ignored; the
// tagged notification lists only the new ones.
func (t *Transaction) AddTags(tags ...string) error {
	m, err := t.model("tag")
	if err != nil {
		return err
	}
	var added []string
	for _, tag := range normalizeTags(tags) {
		if !t.HasTag(tag) && !slices.Contains(added, tag) {
			added = append(added, tag)
		}
	}
	if len(added) == 0 {
		return nil
	}
	t.tags = normalizeTags(append(t.tags, added...))
	m.onTransactionTagged(added)
	m.publish(TopicTransactionTagged, Change{Account: t.owner, Transaction: t, Tags: added})
	return nil
}

// RemoveTags untags the transaction. Tags it does not carry are ignored.
func (t *Transaction) RemoveTags(tags ...string) error {
	m, err := t.model("untag")
	if err != nil {
		return err
	}
	var removed []string
	for _, tag := range normalizeTags(tags) {
		if t.HasTag(tag) {
			removed = append(removed, tag)
		}
	}
	if len(removed) == 0 {
		return nil
	}
	t.tags = slices.DeleteFunc(t.tags, func(tag string) bool { return slices.Contains(removed, tag) })
	m.onTransactionUntagged(removed)
	m.publish(TopicTransactionUntagged, Change{Account: t.owner, Transaction: t, Tags: removed})
	return nil
}

// Equal compares transactions by value: amount, description, date and tags.
func (t *Transaction) Equal(o *Transaction) bool {
	return t.amount.Equal(o.amount) &&
		t.description == o.description &&
		t.date == o.date &&
		slices.Equal(t.tags, o.tags)
}

func (t *Transaction) String() string {
	s := fmt.Sprintf("%s %s %s", t.date, t.amount.StringFixed(2), t.description)
	if len(t.tags) > 0 {
		s += " #" + strings.Join(t.tags, " #")
	}
	return s
}

func (t *Transaction) model(op string) (*Model, error) {
	if t.owner == nil {
		return nil, invalid(op, "transaction %s is not owned by an account", t.id)
	}
	m := t.owner.model
	if err := m.checkOpen(op); err != nil {
		return nil, err
	}
	return m, nil
}

// CompareByDate orders transactions by date only. Used with a stable sort it
// keeps insertion order among transactions of the same day.
func CompareByDate(a, b *Transaction) int {
	switch {
	case a.date.Before(b.date):
		return -1
	case a.date.After(b.date):
		return 1
	}
	return 0
}

// SortByDate returns a copy of txs stably sorted by date.
func SortByDate(txs []*Transaction) []*Transaction {
	out := slices.Clone(txs)
	slices.SortStableFunc(out, CompareByDate)
	return out
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
		if tag != "" {
			out = append(out, tag)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
