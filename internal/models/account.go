package models

import (
	"github.com/shopspring/decimal"
)

// Account mirrors a row of the accounts table.
// Nullable columns are pointers so pgx can scan NULL.
type Account struct {
	AccountID       string          `db:"account_id"`
	CompanyID       string          `db:"company_id"`
	Code            string          `db:"code"`
	Name            string          `db:"name"`
	AccountType     string          `db:"account_type"`
	SubType         *string         `db:"sub_type"`
	NormalBalance   string          `db:"normal_balance"`
	OpeningBalance  decimal.Decimal `db:"opening_balance"`
	ParentAccountID *string         `db:"parent_account_id"`
	IsActive        bool            `db:"is_active"`
	AuditFields
}
