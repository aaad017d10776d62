package cmd

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/banker/internal/csvimport"
	"github.com/theirongolddev/banker/internal/ledger"
)

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := csvimport.ParseAmount(s, ".")
	if err != nil {
		return d, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

// parseDate accepts an ISO date, "today", "yesterday" or "" for the zero
// date.
func parseDate(m *ledger.Model, s string) (civil.Date, error) {
	switch strings.ToLower(s) {
	case "":
		return civil.Date{}, nil
	case "today":
		return m.Today(), nil
	case "yesterday":
		return m.Today().AddDays(-1), nil
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return d, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return d, nil
}

// accountOrLast resolves an account name, falling back to the last selected
// account when name is empty. It returns nil when neither exists.
func accountOrLast(m *ledger.Model, name string) (*ledger.Account, error) {
	if name != "" {
		return m.Account(name)
	}
	a, _ := m.LastAccount()
	return a, nil
}

// findTransaction resolves a unique transaction id prefix.
func findTransaction(m *ledger.Model, prefix string) (*ledger.Transaction, error) {
	if prefix == "" {
		return nil, &ledger.NotFoundError{Kind: "transaction", Key: prefix}
	}
	var found *ledger.Transaction
	for _, t := range m.Transactions() {
		if !strings.HasPrefix(t.ID(), prefix) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("transaction id %q is ambiguous", prefix)
		}
		found = t
	}
	if found == nil {
		return nil, &ledger.NotFoundError{Kind: "transaction", Key: prefix}
	}
	return found, nil
}

// findRecurring resolves a unique recurring transaction id prefix.
func findRecurring(m *ledger.Model, prefix string) (*ledger.RecurringTransaction, error) {
	if prefix == "" {
		return nil, &ledger.NotFoundError{Kind: "recurring transaction", Key: prefix}
	}
	var found *ledger.RecurringTransaction
	for _, r := range m.RecurringTransactions() {
		if !strings.HasPrefix(r.ID(), prefix) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("recurring transaction id %q is ambiguous", prefix)
		}
		found = r
	}
	if found == nil {
		return nil, &ledger.NotFoundError{Kind: "recurring transaction", Key: prefix}
	}
	return found, nil
}
