// Package ledger holds the in-memory entity graph of the personal finance
// ledger: a Model owning Accounts owning Transactions. Every mutation goes
// through these types and publishes a notification on the model's bus before
// returning.
package ledger

import (
	"maps"
	"slices"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/banker/internal/currency"
	"github.com/theirongolddev/banker/internal/event"
)

// Store persists model snapshots.
type Store interface {
	Save(Snapshot) error
}

// Model is the full in-memory ledger state.
type Model struct {
	bus   event.Bus
	store Store
	now   func() time.Time

	accounts       []*Account
	txByID         map[string]*Transaction
	tags           map[string]int
	globalCurrency int
	lastAccountID  string
	mintEnabled    bool

	closed bool
	subs   []event.Subscription
}

// Option configures a Model.
type Option func(*Model)

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// WithStore sets the backend used by Save.
func WithStore(s Store) Option {
	return func(m *Model) { m.store = s }
}

// New returns an empty model publishing on bus.
func New(bus event.Bus, opts ...Option) *Model {
	if bus == nil {
		bus = event.New()
	}
	m := &Model{
		bus:    bus,
		now:    time.Now,
		txByID: make(map[string]*Transaction),
		tags:   make(map[string]int),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Bus returns the bus the model publishes on.
func (m *Model) Bus() event.Bus { return m.bus }

// Today returns the current calendar date in local time.
func (m *Model) Today() civil.Date { return civil.DateOf(m.now()) }

// Accounts returns every account ordered by name.
func (m *Model) Accounts() []*Account {
	out := slices.Clone(m.accounts)
	slices.SortFunc(out, func(a, b *Account) int {
		return strings.Compare(strings.ToLower(a.name), strings.ToLower(b.name))
	})
	return out
}

// Account returns the account called name.
func (m *Model) Account(name string) (*Account, error) {
	if a := m.lookup(name); a != nil {
		return a, nil
	}
	return nil, &NotFoundError{Kind: "account", Key: name}
}

// AccountByID returns the account with the given identifier.
func (m *Model) AccountByID(id string) (*Account, error) {
	for _, a := range m.accounts {
		if a.id == id {
			return a, nil
		}
	}
	return nil, &NotFoundError{Kind: "account", Key: id}
}

// TransactionByID returns the live transaction with the given identifier.
func (m *Model) TransactionByID(id string) (*Transaction, error) {
	if t, ok := m.txByID[id]; ok {
		return t, nil
	}
	return nil, &NotFoundError{Kind: "transaction", Key: id}
}

// CreateAccount adds an empty account. New accounts use the currency of the
// existing ones, or the global currency for the first account.
func (m *Model) CreateAccount(name string) (*Account, error) {
	const op = "create account"
	if err := m.checkOpen(op); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid(op, "account name is empty")
	}
	if m.lookup(name) != nil {
		return nil, invalid(op, "an account named %q already exists", name)
	}

	cur := m.globalCurrency
	if existing := m.Accounts(); len(existing) > 0 {
		cur = existing[0].currency
	}
	a := &Account{model: m, id: uuid.NewString(), name: name, currency: cur}
	m.accounts = append(m.accounts, a)
	m.publish(TopicAccountCreated, Change{Account: a})
	return a, nil
}

// RemoveAccount deletes the account called name with all its transactions.
func (m *Model) RemoveAccount(name string) error {
	const op = "remove account"
	if err := m.checkOpen(op); err != nil {
		return err
	}
	a := m.lookup(name)
	if a == nil {
		return &NotFoundError{Kind: "account", Key: name}
	}

	var tags []string
	for _, t := range a.transactions {
		tags = append(tags, t.tags...)
		delete(m.txByID, t.id)
		t.owner = nil
	}
	if len(tags) > 0 {
		m.onTransactionUntagged(tags)
	}
	for _, r := range a.recurring {
		r.account = nil
	}
	m.accounts = slices.DeleteFunc(m.accounts, func(x *Account) bool { return x == a })
	if m.lastAccountID == a.id {
		m.lastAccountID = ""
	}
	m.publish(TopicAccountRemoved, Change{Account: a, Tags: tags})
	return nil
}

// Balance sums every account balance. Accounts are assumed to share one
// economic currency; the global currency only selects the display format.
func (m *Model) Balance() decimal.Decimal {
	sum := decimal.Zero
	for _, a := range m.accounts {
		sum = sum.Add(a.Balance())
	}
	return sum
}

// Transactions returns every transaction of every account.
func (m *Model) Transactions() []*Transaction {
	var out []*Transaction
	for _, a := range m.Accounts() {
		out = append(out, a.transactions...)
	}
	return out
}

// RecurringTransactions returns the recurring definitions of every account.
func (m *Model) RecurringTransactions() []*RecurringTransaction {
	var out []*RecurringTransaction
	for _, a := range m.Accounts() {
		out = append(out, a.recurring...)
	}
	return out
}

// Tags returns the tags in use, sorted.
func (m *Model) Tags() []string {
	return slices.Sorted(maps.Keys(m.tags))
}

// TagCount returns the number of transactions carrying tag.
func (m *Model) TagCount(tag string) int { return m.tags[tag] }

// GlobalCurrency returns the index of the rule set used for totals.
func (m *Model) GlobalCurrency() int { return m.globalCurrency }

// GlobalRules returns the rule set used for totals.
func (m *Model) GlobalRules() currency.Rules { return currency.MustIndex(m.globalCurrency) }

// FormatAmount renders a non account-specific amount, such as a total.
func (m *Model) FormatAmount(amount decimal.Decimal, width int, withNick bool) string {
	return m.GlobalRules().Format(amount, width, withNick)
}

// SetGlobalCurrency selects the rule set used for totals.
func (m *Model) SetGlobalCurrency(index int) error {
	const op = "set global currency"
	if err := m.checkOpen(op); err != nil {
		return err
	}
	if _, err := currency.ByIndex(index); err != nil {
		return &ValidationError{Op: op, Msg: err.Error(), Err: err}
	}
	if m.globalCurrency == index {
		return nil
	}
	m.globalCurrency = index
	m.publish(TopicCurrencyChanged, Change{Currency: index})
	return nil
}

// LastAccount returns the account last selected by a view, if any.
func (m *Model) LastAccount() (*Account, bool) {
	if m.lastAccountID == "" {
		return nil, false
	}
	a, err := m.AccountByID(m.lastAccountID)
	return a, err == nil
}

// SetLastAccount records the selected account; nil clears it.
func (m *Model) SetLastAccount(a *Account) error {
	const op = "set last account"
	if err := m.checkOpen(op); err != nil {
		return err
	}
	id := ""
	if a != nil {
		if a.model != m || m.lookup(a.name) != a {
			return &NotFoundError{Kind: "account", Key: a.name}
		}
		id = a.id
	}
	if id == m.lastAccountID {
		return nil
	}
	m.lastAccountID = id
	m.publish(TopicLastAccountChanged, Change{Account: a})
	return nil
}

// MintEnabled reports whether the aggregator sync is switched on.
func (m *Model) MintEnabled() bool { return m.mintEnabled }

// SetMintEnabled switches the aggregator sync on or off.
func (m *Model) SetMintEnabled(enabled bool) error {
	const op = "toggle mint"
	if err := m.checkOpen(op); err != nil {
		return err
	}
	if m.mintEnabled == enabled {
		return nil
	}
	m.mintEnabled = enabled
	m.publish(TopicMintToggled, Change{})
	return nil
}

// Save persists the model through its store.
func (m *Model) Save() error {
	if m.store == nil {
		return &StorageError{Op: "save", Err: errNoStore}
	}
	if err := m.store.Save(m.Snapshot()); err != nil {
		return err
	}
	m.publish(TopicModelSaved, Change{})
	return nil
}

// Listen subscribes the model to the user and view topics it reacts to.
// Subscriptions are released by Close.
func (m *Model) Listen() {
	m.subs = append(m.subs,
		m.bus.Subscribe(TopicUserGlobalCurrency, func(_ string, p any) {
			if i, ok := p.(int); ok {
				_ = m.SetGlobalCurrency(i)
			}
		}),
		m.bus.Subscribe(TopicUserAccountCurrency, func(_ string, p any) {
			if ac, ok := p.(AccountCurrency); ok && ac.Account != nil && ac.Account.model == m {
				_ = ac.Account.SetCurrency(ac.Currency)
			}
		}),
		m.bus.Subscribe(TopicUserMintToggled, func(_ string, p any) {
			if enabled, ok := p.(bool); ok {
				_ = m.SetMintEnabled(enabled)
			}
		}),
		m.bus.Subscribe(TopicViewAccountChanged, func(_ string, p any) {
			a, _ := p.(*Account)
			if a == nil || a.model == m {
				_ = m.SetLastAccount(a)
			}
		}),
	)
}

// Close releases the model's subscriptions. A closed model rejects every
// further mutation.
func (m *Model) Close() {
	if m.closed {
		return
	}
	for _, s := range m.subs {
		m.bus.Unsubscribe(s)
	}
	m.subs = nil
	m.closed = true
}

// Closed reports whether Close has been called.
func (m *Model) Closed() bool { return m.closed }

// Equal compares models structurally: accounts by value, the set of tags in
// use and MintEnabled. The global currency and last account are not part of
// the comparison.
func (m *Model) Equal(o *Model) bool {
	if o == nil || len(m.accounts) != len(o.accounts) || m.mintEnabled != o.mintEnabled {
		return false
	}
	if !slices.Equal(m.Tags(), o.Tags()) {
		return false
	}
	for _, a := range m.accounts {
		b := o.lookup(a.name)
		if b == nil || !a.Equal(b) {
			return false
		}
	}
	return true
}

func (m *Model) lookup(name string) *Account {
	for _, a := range m.accounts {
		if a.name == name {
			return a
		}
	}
	return nil
}

func (m *Model) checkOpen(op string) error {
	if m.closed {
		return &ValidationError{Op: op, Msg: ErrClosed.Error(), Err: ErrClosed}
	}
	return nil
}

func (m *Model) publish(topic string, c Change) {
	c.Model = m
	m.bus.Publish(topic, c)
}

func (m *Model) onTransactionTagged(tags []string) {
	for _, tag := range tags {
		m.tags[tag]++
	}
}

func (m *Model) onTransactionUntagged(tags []string) {
	for _, tag := range tags {
		if m.tags[tag] <= 1 {
			delete(m.tags, tag)
			continue
		}
		m.tags[tag]--
	}
}
