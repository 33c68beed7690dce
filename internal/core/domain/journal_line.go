package domain

import (
	"github.com/shopspring/decimal"
)

// JournalEntryLine is a single debit or credit against one account.
type JournalEntryLine struct {
	LineID         string          `json:"lineID"`
	JournalEntryID string          `json:"journalEntryID"`
	AccountID      string          `json:"accountID"`
	DebitAmount    decimal.Decimal `json:"debitAmount"`
	CreditAmount   decimal.Decimal `json:"creditAmount"`
	Description    string          `json:"description"`
}

// LedgerLine is a posted line joined to the type of the account it hits.
type LedgerLine struct {
	AccountID    string          `json:"accountID"`
	AccountType  AccountType     `json:"accountType"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
}
