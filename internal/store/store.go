// Package store persists ledger models in an embedded SQLite database.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/banker/internal/event"
	"github.com/theirongolddev/banker/internal/ledger"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Store is a ledger database. It implements ledger.Store.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens an existing ledger database. A missing or unreadable file is
// reported as a *ledger.StorageError.
func Open(dbPath string) (*Store, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, &ledger.StorageError{Op: "open", Path: dbPath, Err: err}
	}
	return open(dbPath)
}

// OpenOrCreate opens the ledger database at dbPath, creating it and its
// parent directory when missing.
func OpenOrCreate(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, &ledger.StorageError{Op: "create", Path: dbPath, Err: fmt.Errorf("creating data dir: %w", err)}
	}
	return open(dbPath)
}

func open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, &ledger.StorageError{Op: "open", Path: dbPath, Err: err}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, &ledger.StorageError{Op: "open", Path: dbPath, Err: fmt.Errorf("creating schema: %w", err)}
	}

	var version string
	err = db.QueryRow("SELECT value FROM meta WHERE key = ?", metaSchemaVersion).Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.Exec("INSERT INTO meta (key, value) VALUES (?, ?)", metaSchemaVersion, schemaVersion); err != nil {
			_ = db.Close()
			return nil, &ledger.StorageError{Op: "open", Path: dbPath, Err: err}
		}
	case err != nil:
		_ = db.Close()
		return nil, &ledger.StorageError{Op: "open", Path: dbPath, Err: err}
	case version != schemaVersion:
		_ = db.Close()
		return nil, &ledger.StorageError{Op: "open", Path: dbPath, Err: fmt.Errorf("unsupported schema version %q", version)}
	}

	return &Store{db: db, path: dbPath}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load materializes a new model from the database. Every call returns fresh
// instances; the model saves back into s.
func (s *Store) Load(bus event.Bus, opts ...ledger.Option) (*ledger.Model, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, &ledger.StorageError{Op: "load", Path: s.path, Err: err}
	}
	m, err := ledger.FromSnapshot(bus, snap, append(opts, ledger.WithStore(s))...)
	if err != nil {
		return nil, &ledger.StorageError{Op: "load", Path: s.path, Err: err}
	}
	return m, nil
}

// Save replaces the stored state with snap in a single transaction.
func (s *Store) Save(snap ledger.Snapshot) error {
	if err := s.save(snap); err != nil {
		return &ledger.StorageError{Op: "save", Path: s.path, Err: err}
	}
	return nil
}

func (s *Store) save(snap ledger.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"transactions", "recurring_transactions", "accounts"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for i, a := range snap.Accounts {
		_, err = tx.Exec("INSERT INTO accounts (id, name, currency, seq) VALUES (?, ?, ?, ?)",
			a.ID, a.Name, a.Currency, i)
		if err != nil {
			return fmt.Errorf("account %q: %w", a.Name, err)
		}

		for j, t := range a.Transactions {
			tags, err := json.Marshal(nonNil(t.Tags))
			if err != nil {
				return err
			}
			_, err = tx.Exec(`INSERT INTO transactions
				(id, account_id, seq, amount, description, date, tags)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				t.ID, a.ID, j, t.Amount.String(), t.Description, t.Date.String(), string(tags),
			)
			if err != nil {
				return fmt.Errorf("transaction %s: %w", t.ID, err)
			}
		}

		for j, r := range a.Recurring {
			_, err = tx.Exec(`INSERT INTO recurring_transactions
				(id, account_id, seq, amount, description, start_date, end_date,
				 repeat_type, repeat_every, last_transacted)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				r.ID, a.ID, j, r.Amount.String(), r.Description, r.Start.String(), dateText(r.End),
				r.Repeat.String(), r.Every, dateText(r.LastTransacted),
			)
			if err != nil {
				return fmt.Errorf("recurring transaction %s: %w", r.ID, err)
			}
		}
	}

	mint := "0"
	if snap.MintEnabled {
		mint = "1"
	}
	meta := map[string]string{
		metaGlobalCurrency: fmt.Sprint(snap.GlobalCurrency),
		metaLastAccountID:  snap.LastAccountID,
		metaMintEnabled:    mint,
	}
	for k, v := range meta {
		if _, err := tx.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("meta %s: %w", k, err)
		}
	}

	return tx.Commit()
}

func (s *Store) snapshot() (ledger.Snapshot, error) {
	var snap ledger.Snapshot
	if err := s.readMeta(&snap); err != nil {
		return snap, err
	}

	rows, err := s.db.Query("SELECT id, name, currency FROM accounts ORDER BY seq")
	if err != nil {
		return snap, err
	}
	defer func() { _ = rows.Close() }()

	accountIdx := make(map[string]int)
	for rows.Next() {
		var a ledger.AccountRecord
		if err := rows.Scan(&a.ID, &a.Name, &a.Currency); err != nil {
			return snap, err
		}
		accountIdx[a.ID] = len(snap.Accounts)
		snap.Accounts = append(snap.Accounts, a)
	}
	if err := rows.Err(); err != nil {
		return snap, err
	}

	if err := s.readTransactions(&snap, accountIdx); err != nil {
		return snap, err
	}
	if err := s.readRecurring(&snap, accountIdx); err != nil {
		return snap, err
	}
	return snap, nil
}

func (s *Store) readMeta(snap *ledger.Snapshot) error {
	rows, err := s.db.Query("SELECT key, value FROM meta")
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return err
		}
		switch k {
		case metaGlobalCurrency:
			if _, err := fmt.Sscan(v, &snap.GlobalCurrency); err != nil {
				return fmt.Errorf("meta %s: %w", k, err)
			}
		case metaLastAccountID:
			snap.LastAccountID = v
		case metaMintEnabled:
			snap.MintEnabled = v == "1"
		}
	}
	return rows.Err()
}

func (s *Store) readTransactions(snap *ledger.Snapshot, accountIdx map[string]int) error {
	rows, err := s.db.Query(`SELECT id, account_id, amount, description, date, tags
		FROM transactions ORDER BY account_id, seq`)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id, accountID, amount, desc, date, tags string
		if err := rows.Scan(&id, &accountID, &amount, &desc, &date, &tags); err != nil {
			return err
		}
		idx, ok := accountIdx[accountID]
		if !ok {
			return fmt.Errorf("transaction %s: unknown account %s", id, accountID)
		}

		t := ledger.TransactionRecord{ID: id, Description: desc}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return fmt.Errorf("transaction %s amount: %w", id, err)
		}
		if t.Date, err = civil.ParseDate(date); err != nil {
			return fmt.Errorf("transaction %s date: %w", id, err)
		}
		if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil {
			return fmt.Errorf("transaction %s tags: %w", id, err)
		}
		snap.Accounts[idx].Transactions = append(snap.Accounts[idx].Transactions, t)
	}
	return rows.Err()
}

func (s *Store) readRecurring(snap *ledger.Snapshot, accountIdx map[string]int) error {
	rows, err := s.db.Query(`SELECT id, account_id, amount, description, start_date, end_date,
		repeat_type, repeat_every, last_transacted
		FROM recurring_transactions ORDER BY account_id, seq`)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id, accountID, amount, desc, start, end, repeat, last string
		var r ledger.RecurringRecord
		if err := rows.Scan(&id, &accountID, &amount, &desc, &start, &end, &repeat, &r.Every, &last); err != nil {
			return err
		}
		idx, ok := accountIdx[accountID]
		if !ok {
			return fmt.Errorf("recurring transaction %s: unknown account %s", id, accountID)
		}

		r.ID, r.Description = id, desc
		if r.Amount, err = decimal.NewFromString(amount); err != nil {
			return fmt.Errorf("recurring transaction %s amount: %w", id, err)
		}
		if r.Start, err = civil.ParseDate(start); err != nil {
			return fmt.Errorf("recurring transaction %s start: %w", id, err)
		}
		if r.End, err = parseOptionalDate(end); err != nil {
			return fmt.Errorf("recurring transaction %s end: %w", id, err)
		}
		if r.LastTransacted, err = parseOptionalDate(last); err != nil {
			return fmt.Errorf("recurring transaction %s last transacted: %w", id, err)
		}
		if r.Repeat, err = ledger.ParseRepeat(repeat); err != nil {
			return fmt.Errorf("recurring transaction %s: %w", id, err)
		}
		snap.Accounts[idx].Recurring = append(snap.Accounts[idx].Recurring, r)
	}
	return rows.Err()
}

func dateText(d civil.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func parseOptionalDate(s string) (civil.Date, error) {
	if s == "" {
		return civil.Date{}, nil
	}
	return civil.ParseDate(s)
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
