package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/SscSPs/closing_engine/internal/core/domain"
	"github.com/SscSPs/closing_engine/internal/dto"
	"github.com/spf13/cobra"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printClosingResult(cmd *cobra.Command, flags *globalFlags, result *domain.ClosingResult) error {
	resp := dto.ToClosingResultResponse(result)
	w := cmd.OutOrStdout()
	if flags.JSON {
		return printJSON(w, resp)
	}

	fmt.Fprintf(w, "Outcome:            %s\n", resp.Outcome)
	if resp.Success {
		fmt.Fprintf(w, "Net income:         %s\n", resp.NetIncome.StringFixed(2))
		fmt.Fprintf(w, "Retained earnings:  %s\n", resp.RetainedEarningsBalance.StringFixed(2))
		if resp.JournalEntryID != "" {
			fmt.Fprintf(w, "Journal entry:      %s\n", resp.JournalEntryID)
		} else {
			fmt.Fprintln(w, "Journal entry:      none (nothing to transfer)")
		}
		if resp.PeriodID != "" {
			fmt.Fprintf(w, "Period:             %s\n", resp.PeriodID)
		}
		if resp.FiscalYearClosingID != "" {
			fmt.Fprintf(w, "Fiscal-year record: %s\n", resp.FiscalYearClosingID)
		}
	}
	for _, warning := range resp.Warnings {
		fmt.Fprintf(w, "Warning:            %s\n", warning)
	}
	if resp.NeedsOperator {
		fmt.Fprintln(w, "The ledger holds a partial closing write. Reconcile it manually before retrying.")
	}
	return nil
}

func printCanClose(cmd *cobra.Command, flags *globalFlags, answer *domain.CanCloseResult) error {
	resp := dto.CanCloseResponse{CanClose: answer.CanClose, Reason: answer.Reason}
	w := cmd.OutOrStdout()
	if flags.JSON {
		return printJSON(w, resp)
	}
	if resp.CanClose {
		fmt.Fprintln(w, "yes")
		return nil
	}
	fmt.Fprintf(w, "no: %s\n", resp.Reason)
	return nil
}

func printPreview(cmd *cobra.Command, flags *globalFlags, preview *domain.ClosingPreview) error {
	resp := dto.ToClosingPreviewResponse(preview)
	w := cmd.OutOrStdout()
	if flags.JSON {
		return printJSON(w, resp)
	}

	fmt.Fprintf(w, "Revenue:     %s\n", resp.TotalRevenue.StringFixed(2))
	fmt.Fprintf(w, "Expenses:    %s\n", resp.TotalExpenses.StringFixed(2))
	fmt.Fprintf(w, "Net income:  %s\n", resp.NetIncome.StringFixed(2))
	if !resp.CanClose {
		fmt.Fprintf(w, "Cannot close: %s\n", resp.Reason)
	}
	if len(resp.Lines) == 0 {
		fmt.Fprintln(w, "No closing entry would be posted.")
		return nil
	}
	fmt.Fprintln(w, "Closing entry:")
	for _, l := range resp.Lines {
		fmt.Fprintf(w, "  %-24s  Dr %12s  Cr %12s  %s\n", l.AccountID, l.DebitAmount.StringFixed(2), l.CreditAmount.StringFixed(2), l.Description)
	}
	return nil
}

func printPeriods(cmd *cobra.Command, flags *globalFlags, periods []domain.AccountingPeriod, next *string) error {
	resp := dto.ToListPeriodsResponse(periods, next)
	w := cmd.OutOrStdout()
	if flags.JSON {
		return printJSON(w, resp)
	}
	for _, p := range resp.Periods {
		fmt.Fprintf(w, "%s  %s..%s  %-6s  %s\n", p.PeriodID, p.PeriodStart, p.PeriodEnd, p.Status, p.PeriodName)
	}
	if resp.NextToken != nil {
		fmt.Fprintf(w, "next page: --token %s\n", *resp.NextToken)
	}
	return nil
}
