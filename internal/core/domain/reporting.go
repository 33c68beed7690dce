package domain

import (
	"github.com/shopspring/decimal"
)

// AccountAmount is one income or expense account's contribution to net income,
// expressed in the account's normal-balance direction (positive = increase).
type AccountAmount struct {
	AccountID   string          `json:"accountID"`
	AccountType AccountType     `json:"accountType"`
	NetAmount   decimal.Decimal `json:"netAmount"`
}
