package store

const schemaVersion = "1"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS accounts (
    id                   TEXT PRIMARY KEY,
    name                 TEXT NOT NULL UNIQUE,
    currency             INTEGER NOT NULL DEFAULT 0,
    seq                  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    id                   TEXT PRIMARY KEY,
    account_id           TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    seq                  INTEGER NOT NULL,
    amount               TEXT NOT NULL,
    description          TEXT NOT NULL DEFAULT '',
    date                 TEXT NOT NULL,
    tags                 TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS recurring_transactions (
    id                   TEXT PRIMARY KEY,
    account_id           TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    seq                  INTEGER NOT NULL,
    amount               TEXT NOT NULL,
    description          TEXT NOT NULL DEFAULT '',
    start_date           TEXT NOT NULL,
    end_date             TEXT NOT NULL DEFAULT '',
    repeat_type          TEXT NOT NULL,
    repeat_every         INTEGER NOT NULL DEFAULT 1,
    last_transacted      TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS meta (
    key                  TEXT PRIMARY KEY,
    value                TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account_id, seq);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
CREATE INDEX IF NOT EXISTS idx_recurring_account ON recurring_transactions(account_id, seq);
`

// Keys of the meta table.
const (
	metaSchemaVersion  = "SchemaVersion"
	metaGlobalCurrency = "GlobalCurrency"
	metaLastAccountID  = "LastAccountId"
	metaMintEnabled    = "MintEnabled"
)
