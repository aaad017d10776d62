package ledger

import (
	"fmt"
	"iter"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Repeat is the period unit of a recurring transaction.
type Repeat int

const (
	Daily Repeat = iota
	Weekly
	Monthly
	Yearly
)

var repeatNames = []string{"daily", "weekly", "monthly", "yearly"}

func (r Repeat) valid() bool { return r >= Daily && r <= Yearly }

func (r Repeat) String() string {
	if !r.valid() {
		return fmt.Sprintf("Repeat(%d)", int(r))
	}
	return repeatNames[r]
}

// ParseRepeat parses "daily", "weekly", "monthly" or "yearly".
func ParseRepeat(s string) (Repeat, error) {
	for i, name := range repeatNames {
		if strings.EqualFold(s, name) {
			return Repeat(i), nil
		}
	}
	return 0, fmt.Errorf("unknown repeat %q", s)
}

// RecurringTransaction is a template producing a transaction on every due
// date of its schedule.
type RecurringTransaction struct {
	id             string
	account        *Account
	amount         decimal.Decimal
	description    string
	start          civil.Date
	end            civil.Date // zero: no end
	repeat         Repeat
	every          int
	lastTransacted civil.Date // zero: nothing materialized yet
}

func (r *RecurringTransaction) ID() string                 { return r.id }
func (r *RecurringTransaction) Account() *Account          { return r.account }
func (r *RecurringTransaction) Amount() decimal.Decimal    { return r.amount }
func (r *RecurringTransaction) Description() string        { return r.description }
func (r *RecurringTransaction) Start() civil.Date          { return r.start }
func (r *RecurringTransaction) End() civil.Date            { return r.end }
func (r *RecurringTransaction) Repeat() Repeat             { return r.repeat }
func (r *RecurringTransaction) Every() int                 { return r.every }
func (r *RecurringTransaction) LastTransacted() civil.Date { return r.lastTransacted }

// occurrence returns the k-th scheduled date, counting from start.
func (r *RecurringTransaction) occurrence(k int) civil.Date {
	n := k * r.every
	switch r.repeat {
	case Daily:
		return r.start.AddDays(n)
	case Weekly:
		return r.start.AddDays(7 * n)
	case Monthly:
		return addMonths(r.start, n)
	default:
		return addMonths(r.start, 12*n)
	}
}

// GetUntransactedDates yields due dates not yet materialized as
// transactions, in order. Without future the sequence stops at today; with
// it the sequence runs to the end date, or forever when there is none.
// The sequence is lazy and may be ranged over repeatedly.
func (r *RecurringTransaction) GetUntransactedDates(future bool) iter.Seq[civil.Date] {
	return func(yield func(civil.Date) bool) {
		today := civil.DateOf(time.Now())
		if r.account != nil {
			today = r.account.model.Today()
		}
		for k := 0; ; k++ {
			d := r.occurrence(k)
			if !r.end.IsZero() && d.After(r.end) {
				return
			}
			if !future && d.After(today) {
				return
			}
			if !r.lastTransacted.IsZero() && !d.After(r.lastTransacted) {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}
}

// Next returns the first untransacted date, due or not.
func (r *RecurringTransaction) Next() (civil.Date, bool) {
	for d := range r.GetUntransactedDates(true) {
		return d, true
	}
	return civil.Date{}, false
}

// PerformTransactions adds a transaction for every past-due date and
// advances LastTransacted. It returns the transactions created.
func (r *RecurringTransaction) PerformTransactions() ([]*Transaction, error) {
	const op = "perform recurring transaction"
	if r.account == nil {
		return nil, invalid(op, "recurring transaction %s has been removed", r.id)
	}
	if err := r.account.model.checkOpen(op); err != nil {
		return nil, err
	}

	var created []*Transaction
	for d := range r.GetUntransactedDates(false) {
		t, err := r.account.AddTransaction(r.amount, r.description, d)
		if err != nil {
			return created, err
		}
		created = append(created, t)
		r.lastTransacted = d
	}
	if len(created) > 0 {
		r.account.model.publish(TopicRecurringUpdated, Change{Account: r.account, Recurring: r})
	}
	return created, nil
}

func (r *RecurringTransaction) String() string {
	s := fmt.Sprintf("%s %s every %d %s from %s", r.amount.StringFixed(2), r.description, r.every, r.repeat, r.start)
	if !r.end.IsZero() {
		s += " until " + r.end.String()
	}
	return s
}

// addMonths moves d by n months, clamping the day to the target month's
// length so the 31st maps to the last day of shorter months.
func addMonths(d civil.Date, n int) civil.Date {
	first := time.Date(d.Year, d.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	day := d.Day
	if day > last {
		day = last
	}
	return civil.Date{Year: first.Year(), Month: first.Month(), Day: day}
}
