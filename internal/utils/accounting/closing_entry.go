package accounting

import (
	"github.com/SscSPs/closing_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ClosingMode selects how much of the income statement a closing entry touches.
type ClosingMode string

const (
	// ModeTransfer posts only the Income Summary / Retained Earnings pair.
	ModeTransfer ClosingMode = "transfer"
	// ModeFull also zeroes every income and expense account into Income Summary.
	ModeFull ClosingMode = "full"
)

const (
	descProfitTransfer = "Transfer net income to retained earnings"
	descLossTransfer   = "Transfer net loss from retained earnings"
	descZeroIncome     = "Close income account to income summary"
	descZeroExpense    = "Close expense account to income summary"
)

// ComposeOptions tunes ComposeClosingLines.
type ComposeOptions struct {
	Epsilon decimal.Decimal
	Mode    ClosingMode
}

// ComposeClosingLines builds the lines of a closing entry for the given net income.
// Every amount is rounded once and reused for both sides of its pair, so the result balances by construction.
// A net income within epsilon of zero yields no lines in transfer mode. The comparison uses the
// unrounded net, so a sub-cent result never rounds up into a posting.
func ComposeClosingLines(income domain.NetIncome, accounts domain.SystemAccounts, opts ComposeOptions) []domain.JournalEntryLine {
	eps := opts.Epsilon
	if eps.IsZero() {
		eps = DefaultEpsilon
	}

	net := income.NetIncome
	var lines []domain.JournalEntryLine

	if opts.Mode == ModeFull {
		// Per-account pairs; the Income Summary side of each pair mirrors the account side exactly.
		net = decimal.Zero
		for _, amt := range income.Revenue {
			v := amt.NetAmount.Round(LedgerScale)
			if v.IsZero() {
				continue
			}
			net = net.Add(v)
			lines = append(lines, zeroingPair(amt.AccountID, accounts.IncomeSummary.AccountID, v.Neg(), descZeroIncome)...)
		}
		for _, amt := range income.Expenses {
			v := amt.NetAmount.Round(LedgerScale)
			if v.IsZero() {
				continue
			}
			net = net.Sub(v)
			lines = append(lines, zeroingPair(amt.AccountID, accounts.IncomeSummary.AccountID, v, descZeroExpense)...)
		}
	}

	if net.Abs().LessThan(eps) {
		return lines
	}
	amount := net.Abs().Round(LedgerScale)
	if amount.IsZero() {
		return lines
	}

	reID := accounts.RetainedEarnings.AccountID
	isID := accounts.IncomeSummary.AccountID

	if net.IsPositive() {
		lines = append(lines,
			domain.JournalEntryLine{AccountID: isID, DebitAmount: amount, CreditAmount: decimal.Zero, Description: descProfitTransfer},
			domain.JournalEntryLine{AccountID: reID, DebitAmount: decimal.Zero, CreditAmount: amount, Description: descProfitTransfer},
		)
	} else {
		lines = append(lines,
			domain.JournalEntryLine{AccountID: reID, DebitAmount: amount, CreditAmount: decimal.Zero, Description: descLossTransfer},
			domain.JournalEntryLine{AccountID: isID, DebitAmount: decimal.Zero, CreditAmount: amount, Description: descLossTransfer},
		)
	}
	return lines
}

// zeroingPair moves signed amount v off accountID against Income Summary.
// Positive v credits the account (clears a debit balance), negative v debits it.
func zeroingPair(accountID, incomeSummaryID string, v decimal.Decimal, desc string) []domain.JournalEntryLine {
	amount := v.Abs()
	if v.IsPositive() {
		return []domain.JournalEntryLine{
			{AccountID: accountID, DebitAmount: decimal.Zero, CreditAmount: amount, Description: desc},
			{AccountID: incomeSummaryID, DebitAmount: amount, CreditAmount: decimal.Zero, Description: desc},
		}
	}
	return []domain.JournalEntryLine{
		{AccountID: accountID, DebitAmount: amount, CreditAmount: decimal.Zero, Description: desc},
		{AccountID: incomeSummaryID, DebitAmount: decimal.Zero, CreditAmount: amount, Description: desc},
	}
}
