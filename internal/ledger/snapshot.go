package ledger

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/banker/internal/currency"
	"github.com/theirongolddev/banker/internal/event"
)

// Snapshot is a detached, value-only copy of a model's persisted state.
type Snapshot struct {
	Accounts       []AccountRecord
	GlobalCurrency int
	LastAccountID  string
	MintEnabled    bool
}

type AccountRecord struct {
	ID           string
	Name         string
	Currency     int
	Transactions []TransactionRecord
	Recurring    []RecurringRecord
}

type TransactionRecord struct {
	ID          string
	Amount      decimal.Decimal
	Description string
	Date        civil.Date
	Tags        []string
}

type RecurringRecord struct {
	ID             string
	Amount         decimal.Decimal
	Description    string
	Start          civil.Date
	End            civil.Date
	Repeat         Repeat
	Every          int
	LastTransacted civil.Date
}

// Snapshot copies the model's state. Accounts keep creation order and
// transactions keep insertion order.
func (m *Model) Snapshot() Snapshot {
	s := Snapshot{
		GlobalCurrency: m.globalCurrency,
		LastAccountID:  m.lastAccountID,
		MintEnabled:    m.mintEnabled,
	}
	for _, a := range m.accounts {
		ar := AccountRecord{ID: a.id, Name: a.name, Currency: a.currency}
		for _, t := range a.transactions {
			ar.Transactions = append(ar.Transactions, TransactionRecord{
				ID:          t.id,
				Amount:      t.amount,
				Description: t.description,
				Date:        t.date,
				Tags:        t.Tags(),
			})
		}
		for _, r := range a.recurring {
			ar.Recurring = append(ar.Recurring, RecurringRecord{
				ID:             r.id,
				Amount:         r.amount,
				Description:    r.description,
				Start:          r.start,
				End:            r.end,
				Repeat:         r.repeat,
				Every:          r.every,
				LastTransacted: r.lastTransacted,
			})
		}
		s.Accounts = append(s.Accounts, ar)
	}
	return s
}

// FromSnapshot builds a fresh model from s without publishing anything.
// Every call returns new instances.
func FromSnapshot(bus event.Bus, s Snapshot, opts ...Option) (*Model, error) {
	m := New(bus, opts...)
	if _, err := currency.ByIndex(s.GlobalCurrency); err != nil {
		return nil, fmt.Errorf("global currency: %w", err)
	}
	m.globalCurrency = s.GlobalCurrency
	m.mintEnabled = s.MintEnabled

	for _, ar := range s.Accounts {
		if m.lookup(ar.Name) != nil {
			return nil, fmt.Errorf("duplicate account name %q", ar.Name)
		}
		if _, err := currency.ByIndex(ar.Currency); err != nil {
			return nil, fmt.Errorf("account %q: %w", ar.Name, err)
		}
		a := &Account{model: m, id: ar.ID, name: ar.Name, currency: ar.Currency}
		for _, tr := range ar.Transactions {
			if _, dup := m.txByID[tr.ID]; dup {
				return nil, fmt.Errorf("duplicate transaction id %s", tr.ID)
			}
			t := &Transaction{
				id:          tr.ID,
				amount:      tr.Amount,
				description: tr.Description,
				date:        tr.Date,
				tags:        normalizeTags(tr.Tags),
			}
			a.attach(t)
			m.onTransactionTagged(t.tags)
		}
		for _, rr := range ar.Recurring {
			if !rr.Repeat.valid() || rr.Every < 1 {
				return nil, fmt.Errorf("recurring transaction %s: invalid schedule", rr.ID)
			}
			a.recurring = append(a.recurring, &RecurringTransaction{
				id:             rr.ID,
				account:        a,
				amount:         rr.Amount,
				description:    rr.Description,
				start:          rr.Start,
				end:            rr.End,
				repeat:         rr.Repeat,
				every:          rr.Every,
				lastTransacted: rr.LastTransacted,
			})
		}
		m.accounts = append(m.accounts, a)
	}

	if s.LastAccountID != "" {
		if _, err := m.AccountByID(s.LastAccountID); err == nil {
			m.lastAccountID = s.LastAccountID
		}
	}
	return m, nil
}
