package ledger

// Topics published by the ledger after a mutation has been applied.
const (
	TopicAccountCreated        = "account.created"
	TopicAccountRemoved        = "account.removed"
	TopicAccountRenamed        = "account.renamed"
	TopicAccountBalanceChanged = "account.balance changed"
	TopicTransactionCreated    = "transaction.created"
	TopicTransactionRemoved    = "transaction.removed"
	TopicTransactionMoved      = "transaction.moved"
	TopicTransactionUpdated    = "transaction.updated"
	TopicTransactionTagged     = "transaction.tagged"
	TopicTransactionUntagged   = "transaction.untagged"
	TopicRecurringCreated      = "recurringtransaction.created"
	TopicRecurringUpdated      = "recurringtransaction.updated"
	TopicRecurringRemoved      = "recurringtransaction.removed"
	TopicCurrencyChanged       = "currency_changed"
	TopicMintToggled           = "mint.toggled"
	TopicLastAccountChanged    = "lastaccount.changed"
	TopicModelSaved            = "model.saved"
)

// Topics the ledger listens on when a Model is attached to a bus.
const (
	TopicUserGlobalCurrency  = "user.global_currency_changed"
	TopicUserAccountCurrency = "user.account_currency_changed"
	TopicUserMintToggled     = "user.mint.toggled"
	TopicViewAccountChanged  = "view.account changed"
)

// MutationTopics lists every topic announcing a change of persisted state.
var MutationTopics = []string{
	TopicAccountCreated,
	TopicAccountRemoved,
	TopicAccountRenamed,
	TopicTransactionCreated,
	TopicTransactionRemoved,
	TopicTransactionMoved,
	TopicTransactionUpdated,
	TopicTransactionTagged,
	TopicTransactionUntagged,
	TopicRecurringCreated,
	TopicRecurringUpdated,
	TopicRecurringRemoved,
	TopicCurrencyChanged,
	TopicMintToggled,
	TopicLastAccountChanged,
}

// Change is the payload of every ledger topic. Only the fields relevant to
// the topic are set.
type Change struct {
	Model       *Model
	Account     *Account
	Target      *Account // destination of a move
	Transaction *Transaction
	Recurring   *RecurringTransaction
	Tags        []string
	Currency    int
	OldName     string
}

// AccountCurrency is the payload expected on TopicUserAccountCurrency.
type AccountCurrency struct {
	Account  *Account
	Currency int
}
