package accounting

import (
	"fmt"
	"sort"

	"github.com/SscSPs/closing_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerScale is the number of fractional digits amounts are rounded to before they are posted.
const LedgerScale int32 = 2

// DefaultEpsilon is the smallest net income that still produces a closing entry.
var DefaultEpsilon = decimal.RequireFromString("0.01")

// CalculateSignedAmount returns the effect of a line on an account in the account's normal direction.
// DEBIT-normal (ASSET, EXPENSE) -> debit - credit
// CREDIT-normal (LIABILITY, EQUITY, INCOME) -> credit - debit
func CalculateSignedAmount(line domain.LedgerLine) (decimal.Decimal, error) {
	switch line.AccountType {
	case domain.Asset, domain.Expense:
		return line.DebitAmount.Sub(line.CreditAmount), nil
	case domain.Liability, domain.Equity, domain.Income:
		return line.CreditAmount.Sub(line.DebitAmount), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s' encountered for account ID %s", line.AccountType, line.AccountID)
	}
}

// CalculateNetIncome aggregates income and expense lines into a signed net income.
// Lines on balance sheet accounts are ignored.
func CalculateNetIncome(lines []domain.LedgerLine) domain.NetIncome {
	income := decimal.Zero
	expense := decimal.Zero
	perAccount := make(map[string]decimal.Decimal)
	types := make(map[string]domain.AccountType)
	counted := 0

	for _, line := range lines {
		switch line.AccountType {
		case domain.Income:
			amt := line.CreditAmount.Sub(line.DebitAmount)
			income = income.Add(amt)
			perAccount[line.AccountID] = perAccount[line.AccountID].Add(amt)
		case domain.Expense:
			amt := line.DebitAmount.Sub(line.CreditAmount)
			expense = expense.Add(amt)
			perAccount[line.AccountID] = perAccount[line.AccountID].Add(amt)
		default:
			continue
		}
		types[line.AccountID] = line.AccountType
		counted++
	}

	result := domain.NetIncome{
		TotalRevenue:  income,
		TotalExpenses: expense,
		NetIncome:     income.Sub(expense),
		LineCount:     counted,
		Revenue:       []domain.AccountAmount{},
		Expenses:      []domain.AccountAmount{},
	}

	ids := make([]string, 0, len(perAccount))
	for id := range perAccount {
		ids = append(ids, id)
	}
	sort.Strings(ids) // deterministic line order for the full closing mode

	for _, id := range ids {
		amt := domain.AccountAmount{AccountID: id, AccountType: types[id], NetAmount: perAccount[id]}
		if types[id] == domain.Income {
			result.Revenue = append(result.Revenue, amt)
		} else {
			result.Expenses = append(result.Expenses, amt)
		}
	}
	return result
}

// ValidateEntryBalance checks that lines form a balanced entry with non-negative one-sided amounts.
func ValidateEntryBalance(lines []domain.JournalEntryLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("journal entry must have at least two lines")
	}

	debits := decimal.Zero
	credits := decimal.Zero
	for i, line := range lines {
		if line.DebitAmount.IsNegative() || line.CreditAmount.IsNegative() {
			return fmt.Errorf("line %d has a negative amount", i)
		}
		if line.DebitAmount.IsPositive() == line.CreditAmount.IsPositive() {
			return fmt.Errorf("line %d must carry exactly one of debit or credit", i)
		}
		debits = debits.Add(line.DebitAmount)
		credits = credits.Add(line.CreditAmount)
	}

	if !debits.Equal(credits) {
		return fmt.Errorf("journal entry does not balance: debits %s, credits %s", debits.String(), credits.String())
	}
	return nil
}
