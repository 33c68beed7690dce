package cli

import (
	"errors"
	"fmt"

	"github.com/SscSPs/closing_engine/internal/core/domain"
	"github.com/SscSPs/closing_engine/internal/dto"
	"github.com/spf13/cobra"
)

type periodFlags struct {
	Start string `validate:"required,datetime=2006-01-02"`
	End   string `validate:"required,datetime=2006-01-02"`
}

func (p periodFlags) parse() (domain.ClosePeriodRequest, error) {
	if err := validate.Struct(p); err != nil {
		return domain.ClosePeriodRequest{}, fmt.Errorf("invalid period: %w", err)
	}
	start, errStart := dto.ParseDate(p.Start)
	end, errEnd := dto.ParseDate(p.End)
	if err := errors.Join(errStart, errEnd); err != nil {
		return domain.ClosePeriodRequest{}, fmt.Errorf("invalid period: %w", err)
	}
	return domain.ClosePeriodRequest{PeriodStart: start, PeriodEnd: end}, nil
}

func bindPeriodFlags(cmd *cobra.Command, p *periodFlags) {
	cmd.Flags().StringVar(&p.Start, "start", "", "First day of the period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&p.End, "end", "", "Last day of the period (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
}

type closeFlags struct {
	ClosedBy string `validate:"required"`
	Name     string `validate:"max=100"`
	Notes    string `validate:"max=1000"`
}

func newClosePeriodCmd(flags *globalFlags) *cobra.Command {
	var period periodFlags
	var opts closeFlags

	cmd := &cobra.Command{
		Use:   "close-period",
		Short: "Close an accounting period",
		Long: `Post the closing entry for a period, transferring its net income to retained
earnings, and mark the period closed. A period can only be closed once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := period.parse()
			if err != nil {
				return err
			}
			if err := validate.Struct(opts); err != nil {
				return fmt.Errorf("invalid flags: %w", err)
			}

			env, err := openEnvironment(cmd, flags)
			if err != nil {
				return err
			}
			defer env.Close()

			req.CompanyID = flags.CompanyID
			req.ClosedBy = opts.ClosedBy
			req.PeriodName = opts.Name
			req.Notes = opts.Notes

			result, closeErr := env.services.Closing.ClosePeriod(cmd.Context(), req)
			if result != nil {
				if err := printClosingResult(cmd, flags, result); err != nil {
					return err
				}
			}
			if closeErr != nil {
				return closeErr
			}
			return env.persist(flags)
		},
	}
	bindPeriodFlags(cmd, &period)
	cmd.Flags().StringVar(&opts.ClosedBy, "by", "", "User recorded as closing the period")
	cmd.Flags().StringVar(&opts.Name, "name", "", "Period name (defaults to the month or date range)")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "Notes stored on the period")
	_ = cmd.MarkFlagRequired("by")
	return cmd
}

func newCanCloseCmd(flags *globalFlags) *cobra.Command {
	var period periodFlags

	cmd := &cobra.Command{
		Use:   "can-close",
		Short: "Check whether a period can be closed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := period.parse()
			if err != nil {
				return err
			}
			env, err := openEnvironment(cmd, flags)
			if err != nil {
				return err
			}
			defer env.Close()

			answer, err := env.services.Closing.CanClosePeriod(cmd.Context(), flags.CompanyID, req.PeriodStart, req.PeriodEnd)
			if err != nil {
				return err
			}
			return printCanClose(cmd, flags, answer)
		},
	}
	bindPeriodFlags(cmd, &period)
	return cmd
}

func newPreviewCmd(flags *globalFlags) *cobra.Command {
	var period periodFlags

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the closing entry a period close would post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := period.parse()
			if err != nil {
				return err
			}
			env, err := openEnvironment(cmd, flags)
			if err != nil {
				return err
			}
			defer env.Close()

			preview, err := env.services.Closing.PreviewClose(cmd.Context(), flags.CompanyID, req.PeriodStart, req.PeriodEnd)
			if err != nil {
				return err
			}
			return printPreview(cmd, flags, preview)
		},
	}
	bindPeriodFlags(cmd, &period)
	return cmd
}

type yearFlags struct {
	Year int `validate:"min=1900,max=9999"`
}

func newCloseYearCmd(flags *globalFlags) *cobra.Command {
	var year yearFlags
	var opts closeFlags

	cmd := &cobra.Command{
		Use:   "close-year",
		Short: "Close a fiscal year",
		Long: `Transfer whatever net income of the fiscal year has not already been closed
into retained earnings, record the fiscal-year closing and lock every period of the year.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validate.Struct(year); err != nil {
				return fmt.Errorf("invalid fiscal year: %w", err)
			}
			if err := validate.Struct(opts); err != nil {
				return fmt.Errorf("invalid flags: %w", err)
			}
			env, err := openEnvironment(cmd, flags)
			if err != nil {
				return err
			}
			defer env.Close()

			result, closeErr := env.services.Closing.CloseFiscalYear(cmd.Context(), domain.CloseFiscalYearRequest{
				CompanyID:  flags.CompanyID,
				FiscalYear: year.Year,
				ClosedBy:   opts.ClosedBy,
				Notes:      opts.Notes,
			})
			if result != nil {
				if err := printClosingResult(cmd, flags, result); err != nil {
					return err
				}
			}
			if closeErr != nil {
				return closeErr
			}
			return env.persist(flags)
		},
	}
	cmd.Flags().IntVar(&year.Year, "year", 0, "Fiscal year to close")
	cmd.Flags().StringVar(&opts.ClosedBy, "by", "", "User recorded as closing the year")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "Notes stored on the fiscal-year closing")
	_ = cmd.MarkFlagRequired("year")
	_ = cmd.MarkFlagRequired("by")
	return cmd
}

func newCanCloseYearCmd(flags *globalFlags) *cobra.Command {
	var year yearFlags

	cmd := &cobra.Command{
		Use:   "can-close-year",
		Short: "Check whether a fiscal year can be closed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openEnvironment(cmd, flags)
			if err != nil {
				return err
			}
			defer env.Close()

			answer, err := env.services.Closing.CanCloseFiscalYear(cmd.Context(), flags.CompanyID, year.Year)
			if err != nil {
				return err
			}
			return printCanClose(cmd, flags, answer)
		},
	}
	cmd.Flags().IntVar(&year.Year, "year", 0, "Fiscal year to check")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func newPeriodsCmd(flags *globalFlags) *cobra.Command {
	var limit int
	var token string

	cmd := &cobra.Command{
		Use:   "periods",
		Short: "List the accounting periods of a company",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openEnvironment(cmd, flags)
			if err != nil {
				return err
			}
			defer env.Close()

			var next *string
			if token != "" {
				next = &token
			}
			periods, nextToken, err := env.services.Closing.ListPeriods(cmd.Context(), flags.CompanyID, limit, next)
			if err != nil {
				return err
			}
			return printPeriods(cmd, flags, periods, nextToken)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Page size (max 100)")
	cmd.Flags().StringVar(&token, "token", "", "Token printed by the previous page")
	return cmd
}
