// Package cli implements closectl, the operator command line for the closing engine.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/SscSPs/closing_engine/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
)

var validate = validator.New()

// globalFlags are shared by every subcommand.
type globalFlags struct {
	CompanyID  string `validate:"required"`
	LedgerFile string
	SaveTo     string
	JSON       bool
	Verbose    bool
}

// NewRootCmd builds the closectl command tree.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "closectl",
		Short: "Close accounting periods and fiscal years",
		Long: `closectl closes accounting periods and fiscal years against the ledger database
configured by PGSQL_URL. With --ledger it works on a JSON ledger file instead, which
is useful for rehearsing a close; --save writes the resulting ledger back out.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := slog.LevelWarn
			if flags.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(middleware.WithLogger(ctx, logger))
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.CompanyID, "company", "c", "", "Company ID")
	pf.StringVar(&flags.LedgerFile, "ledger", "", "Work on a JSON ledger file instead of the database")
	pf.StringVar(&flags.SaveTo, "save", "", "Write the ledger file back to this path after a close (requires --ledger)")
	pf.BoolVar(&flags.JSON, "json", false, "Print results as JSON")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "Log engine activity to stderr")

	rootCmd.AddCommand(
		newClosePeriodCmd(flags),
		newCanCloseCmd(flags),
		newPreviewCmd(flags),
		newCloseYearCmd(flags),
		newCanCloseYearCmd(flags),
		newPeriodsCmd(flags),
	)
	return rootCmd
}

// Execute runs closectl with the process arguments.
func Execute(ctx context.Context) error {
	cmd := NewRootCmd()
	cmd.SetArgs(os.Args[1:])
	return cmd.ExecuteContext(ctx)
}
