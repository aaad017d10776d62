package ledger

import (
	"slices"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/banker/internal/currency"
)

// Account is a named, ordered collection of transactions with its own
// display currency.
type Account struct {
	model        *Model
	id           string
	name         string
	currency     int
	transactions []*Transaction
	recurring    []*RecurringTransaction
}

// ID returns the stable identifier of the account.
func (a *Account) ID() string { return a.id }

// Name returns the account name, unique within its Model.
func (a *Account) Name() string { return a.name }

// Model returns the model owning the account.
func (a *Account) Model() *Model { return a.model }

// Currency returns the index of the account's display rule set.
func (a *Account) Currency() int { return a.currency }

// CurrencyRules returns the account's display rule set.
func (a *Account) CurrencyRules() currency.Rules { return currency.MustIndex(a.currency) }

// FormatAmount renders amount with the account's rule set.
func (a *Account) FormatAmount(amount decimal.Decimal, width int, withNick bool) string {
	return a.CurrencyRules().Format(amount, width, withNick)
}

// Transactions returns the account's transactions in insertion order. The
// slice is a copy but the elements are the live instances.
func (a *Account) Transactions() []*Transaction {
	return slices.Clone(a.transactions)
}

// Contains reports whether t is currently held by the account.
func (a *Account) Contains(t *Transaction) bool {
	return t != nil && t.owner == a && slices.Contains(a.transactions, t)
}

// Balance is the sum of every transaction amount.
func (a *Account) Balance() decimal.Decimal {
	sum := decimal.Zero
	for _, t := range a.transactions {
		sum = sum.Add(t.amount)
	}
	return sum
}

// SetName renames the account. The name must be unique within the model.
func (a *Account) SetName(name string) error {
	const op = "rename account"
	if err := a.model.checkOpen(op); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid(op, "account name is empty")
	}
	if name == a.name {
		return nil
	}
	if other := a.model.lookup(name); other != nil {
		return invalid(op, "an account named %q already exists", name)
	}
	old := a.name
	a.name = name
	a.model.publish(TopicAccountRenamed, Change{Account: a, OldName: old})
	return nil
}

// SetCurrency selects the account's display rule set.
func (a *Account) SetCurrency(index int) error {
	const op = "set account currency"
	if err := a.model.checkOpen(op); err != nil {
		return err
	}
	if _, err := currency.ByIndex(index); err != nil {
		return &ValidationError{Op: op, Msg: err.Error(), Err: err}
	}
	if a.currency == index {
		return nil
	}
	a.currency = index
	a.model.publish(TopicCurrencyChanged, Change{Account: a, Currency: index})
	return nil
}

// AddTransaction appends a new transaction and returns it. A zero date means
// today.
func (a *Account) AddTransaction(amount decimal.Decimal, description string, date civil.Date, tags ...string) (*Transaction, error) {
	const op = "add transaction"
	if err := a.model.checkOpen(op); err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = a.model.Today()
	}
	if !date.IsValid() {
		return nil, invalid(op, "invalid date %v", date)
	}

	t := &Transaction{
		id:          uuid.NewString(),
		amount:      amount,
		description: description,
		date:        date,
	}
	a.attach(t)
	a.model.publish(TopicTransactionCreated, Change{Account: a, Transaction: t})
	a.model.publish(TopicAccountBalanceChanged, Change{Account: a})

	if len(tags) > 0 {
		if err := t.AddTags(tags...); err != nil {
			return t, err
		}
	}
	return t, nil
}

// RemoveTransaction deletes t from the account. Its tags stop counting
// towards the model's tag usage.
func (a *Account) RemoveTransaction(t *Transaction) error {
	const op = "remove transaction"
	if err := a.model.checkOpen(op); err != nil {
		return err
	}
	if !a.Contains(t) {
		return a.notOwned(t)
	}

	a.detach(t)
	if len(t.tags) > 0 {
		a.model.onTransactionUntagged(t.tags)
		a.model.publish(TopicTransactionUntagged, Change{Account: a, Transaction: t, Tags: slices.Clone(t.tags)})
	}
	a.model.publish(TopicTransactionRemoved, Change{Account: a, Transaction: t})
	a.model.publish(TopicAccountBalanceChanged, Change{Account: a})
	return nil
}

// MoveTransaction re-parents t onto target, keeping its identity and fields.
// Moving onto the current owner is rejected.
func (a *Account) MoveTransaction(t *Transaction, target *Account) error {
	const op = "move transaction"
	if err := a.model.checkOpen(op); err != nil {
		return err
	}
	if !a.Contains(t) {
		return a.notOwned(t)
	}
	if target == nil || target.model != a.model || a.model.lookup(target.name) != target {
		return &NotFoundError{Kind: "account", Key: targetName(target)}
	}
	if target == a {
		return invalid(op, "transaction already belongs to %q", a.name)
	}

	i := slices.Index(a.transactions, t)
	a.transactions = slices.Delete(a.transactions, i, i+1)
	target.transactions = append(target.transactions, t)
	t.owner = target

	a.model.publish(TopicTransactionMoved, Change{Account: a, Target: target, Transaction: t})
	a.model.publish(TopicAccountBalanceChanged, Change{Account: a})
	a.model.publish(TopicAccountBalanceChanged, Change{Account: target})
	return nil
}

// RecurringTransactions returns the account's recurring definitions.
func (a *Account) RecurringTransactions() []*RecurringTransaction {
	return slices.Clone(a.recurring)
}

// AddRecurringTransaction defines a transaction repeating every `every`
// periods from start. A zero end date repeats indefinitely.
func (a *Account) AddRecurringTransaction(amount decimal.Decimal, description string, start civil.Date, repeat Repeat, every int, end civil.Date) (*RecurringTransaction, error) {
	const op = "add recurring transaction"
	if err := a.model.checkOpen(op); err != nil {
		return nil, err
	}
	if start.IsZero() {
		start = a.model.Today()
	}
	switch {
	case !start.IsValid():
		return nil, invalid(op, "invalid start date %v", start)
	case !repeat.valid():
		return nil, invalid(op, "unknown repeat type %d", repeat)
	case every < 1:
		return nil, invalid(op, "repeat interval must be at least 1, got %d", every)
	case !end.IsZero() && end.Before(start):
		return nil, invalid(op, "end date %s is before start date %s", end, start)
	}

	r := &RecurringTransaction{
		id:          uuid.NewString(),
		account:     a,
		amount:      amount,
		description: description,
		start:       start,
		end:         end,
		repeat:      repeat,
		every:       every,
	}
	a.recurring = append(a.recurring, r)
	a.model.publish(TopicRecurringCreated, Change{Account: a, Recurring: r})
	return r, nil
}

// RemoveRecurringTransaction deletes a recurring definition. Transactions it
// already produced are kept.
func (a *Account) RemoveRecurringTransaction(r *RecurringTransaction) error {
	const op = "remove recurring transaction"
	if err := a.model.checkOpen(op); err != nil {
		return err
	}
	i := slices.Index(a.recurring, r)
	if i < 0 {
		key := ""
		if r != nil {
			key = r.id
		}
		return &NotFoundError{Kind: "recurring transaction", Key: key}
	}
	a.recurring = slices.Delete(a.recurring, i, i+1)
	r.account = nil
	a.model.publish(TopicRecurringRemoved, Change{Account: a, Recurring: r})
	return nil
}

// Equal compares accounts by value: name, currency and the multiset of
// transaction values.
func (a *Account) Equal(o *Account) bool {
	if a.name != o.name || a.currency != o.currency || len(a.transactions) != len(o.transactions) {
		return false
	}
	x, y := sortedByValue(a.transactions), sortedByValue(o.transactions)
	for i := range x {
		if !x[i].Equal(y[i]) {
			return false
		}
	}
	return true
}

func (a *Account) attach(t *Transaction) {
	t.owner = a
	a.transactions = append(a.transactions, t)
	a.model.txByID[t.id] = t
}

func (a *Account) detach(t *Transaction) {
	i := slices.Index(a.transactions, t)
	a.transactions = slices.Delete(a.transactions, i, i+1)
	delete(a.model.txByID, t.id)
	t.owner = nil
}

func (a *Account) notOwned(t *Transaction) error {
	if t == nil {
		return &NotFoundError{Kind: "transaction", Key: ""}
	}
	return &NotFoundError{Kind: "transaction", Key: t.id + " in account " + a.name}
}

func targetName(a *Account) string {
	if a == nil {
		return ""
	}
	return a.name
}

// sortedByValue orders transactions by a total order on their values, so
// two multisets compare element-wise.
func sortedByValue(txs []*Transaction) []*Transaction {
	out := slices.Clone(txs)
	slices.SortFunc(out, func(a, b *Transaction) int {
		if c := CompareByDate(a, b); c != 0 {
			return c
		}
		if c := a.amount.Cmp(b.amount); c != 0 {
			return c
		}
		if c := strings.Compare(a.description, b.description); c != 0 {
			return c
		}
		return slices.Compare(a.tags, b.tags)
	})
	return out
}
