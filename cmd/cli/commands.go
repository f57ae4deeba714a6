package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/xuri/excelize/v2"

	"github.com/iho/fincore/internal/adapter/export"
	"github.com/iho/fincore/internal/adapter/http/dto"
	postgresRepo "github.com/iho/fincore/internal/adapter/repository/postgres"
	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/engine/amortization"
	"github.com/iho/fincore/internal/infrastructure/postgres"
	"github.com/iho/fincore/internal/money"
	"github.com/iho/fincore/internal/usecase"
)

func amortizeCmd(opts *options) *cobra.Command {
	var (
		principal string
		rate      string
		term      int
		start     string
		xlsxPath  string
	)

	cmd := &cobra.Command{
		Use:   "amortize",
		Short: "Print a fixed-payment amortization schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cents, err := money.ParseAmount(principal, opts.loc())
			if err != nil {
				return fmt.Errorf("--principal: %w", err)
			}
			annualRate, err := decimal.NewFromString(rate)
			if err != nil {
				return fmt.Errorf("--rate: %w", err)
			}
			startDate, err := opts.todayDate()
			if err != nil {
				return err
			}
			if start != "" {
				if startDate, err = parseDate("start", start); err != nil {
					return err
				}
			}

			schedule, err := amortization.ComputeFixedPaymentSchedule(cents, annualRate, term, startDate)
			if err != nil {
				return err
			}
			debt := &domain.LongTermDebt{
				Name:              "Loan",
				OriginalPrincipal: cents,
				CurrentPrincipal:  cents,
				AnnualRate:        annualRate,
				TermMonths:        term,
				StartDate:         startDate,
				Method:            domain.MethodFrench,
				Schedule:          schedule,
				MonthlyPayment:    schedule[0].PaymentAmount,
				Active:            true,
			}

			if xlsxPath != "" {
				f, err := export.ScheduleWorkbook(debt)
				if err != nil {
					return err
				}
				return writeWorkbook(cmd, xlsxPath, f)
			}
			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return printJSON(out, dto.DebtDetailsFromDomain(&usecase.DebtDetails{Debt: *debt, Summary: amortization.Summarize(schedule)}))
			}

			tw := newTable(out)
			fmt.Fprintln(tw, "Period\tDue\tPayment\tPrincipal\tInterest\tRemaining\t")
			for _, e := range schedule {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t\n",
					e.Period, dto.FormatDate(e.DueDate), opts.money(e.PaymentAmount),
					opts.money(e.PrincipalAmount), opts.money(e.InterestAmount), opts.money(e.RemainingPrincipal))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Total interest: %s\n", opts.money(amortization.TotalInterestCost(schedule)))
			return nil
		},
	}

	cmd.Flags().StringVar(&principal, "principal", "", "Loan principal")
	cmd.Flags().StringVar(&rate, "rate", "", "Annual interest rate as a fraction (0.12 for 12%)")
	cmd.Flags().IntVar(&term, "term", 0, "Term in months")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD, default --today)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write the schedule to an XLSX file instead")
	_ = cmd.MarkFlagRequired("principal")
	_ = cmd.MarkFlagRequired("rate")
	_ = cmd.MarkFlagRequired("term")

	return cmd
}

func reportCmd(opts *options) *cobra.Command {
	var (
		from        string
		to          string
		granularity string
		xlsxPath    string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Income and expense analytics for a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDate("from", from)
			if err != nil {
				return err
			}
			end, err := parseDate("to", to)
			if err != nil {
				return err
			}
			reports, err := opts.reportUseCase()
			if err != nil {
				return err
			}

			report, err := reports.Analytics(cmd.Context(), usecase.AnalyticsInput{
				Start:       start,
				End:         end,
				Granularity: domain.PeriodKind(granularity),
			})
			if err != nil {
				return err
			}

			if xlsxPath != "" {
				f, err := export.AnalyticsWorkbook(report)
				if err != nil {
					return err
				}
				return writeWorkbook(cmd, xlsxPath, f)
			}
			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return printJSON(out, dto.AnalyticsFromDomain(report))
			}

			tw := newTable(out)
			fmt.Fprintln(tw, "Period\tIncome\tExpense\tNet\t")
			for _, p := range report.TimeSeries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", p.Label, opts.money(p.Income), opts.money(p.Expense), opts.money(p.Net))
			}
			fmt.Fprintf(tw, "Total\t%s\t%s\t%s\t\n", opts.money(report.TotalIncome), opts.money(report.TotalExpense), opts.money(report.Net))
			if err := tw.Flush(); err != nil {
				return err
			}

			if len(report.ExpenseByCategory) > 0 {
				fmt.Fprintln(out)
				tw = newTable(out)
				fmt.Fprintln(tw, "Category\tExpense\tShare\t")
				for _, b := range report.ExpenseByCategory {
					fmt.Fprintf(tw, "%s\t%s\t%d%%\t\n", truncate(b.Label, 24), opts.money(b.Expense), b.Percentage)
				}
				return tw.Flush()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&granularity, "granularity", "", "daily, weekly, monthly, quarterly or annual (default by range)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write the report to an XLSX file instead")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func budgetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "budget",
		Short: "Evaluate every budget for its current period",
		RunE: func(cmd *cobra.Command, args []string) error {
			today, err := opts.todayDate()
			if err != nil {
				return err
			}
			ledger, err := opts.load()
			if err != nil {
				return err
			}

			budgets := usecase.NewBudgetUseCase(ledger.Budgets(), ledger.Alerts(), ledger.Movements(), postgresRepo.NewULIDGenerator(), nil)
			statuses, err := budgets.Statuses(cmd.Context(), today)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return printJSON(out, dto.BudgetStatusesFromDomain(statuses))
			}

			tw := newTable(out)
			fmt.Fprintln(tw, "Budget\tPeriod\tSpent\tLimit\tRemaining\tUsage\tState\tAlerts\t")
			for _, s := range statuses {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d%%\t%s\t%s\t\n",
					s.BudgetID, s.PeriodLabel, opts.money(s.SpentAmount), opts.money(s.EffectiveLimit),
					opts.money(s.RemainingAmount), s.UsagePercentage, s.State, thresholds(s.PendingAlerts))
			}
			return tw.Flush()
		},
	}
}

func healthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Financial health snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			today, err := opts.todayDate()
			if err != nil {
				return err
			}
			reports, err := opts.reportUseCase()
			if err != nil {
				return err
			}

			snapshot, err := reports.Health(cmd.Context(), today)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return printJSON(out, dto.HealthFromDomain(snapshot))
			}

			fmt.Fprintf(out, "Score: %d/100\n", snapshot.Score)
			fmt.Fprintf(out, "Net worth: %s (assets %s, liabilities %s)\n",
				opts.money(snapshot.NetWorth), opts.money(snapshot.TotalAssets), opts.money(snapshot.TotalLiabilities))
			tw := newTable(out)
			fmt.Fprintln(tw, "Ratio\tValue\tBenchmark\tLevel\t")
			for _, r := range snapshot.Ratios {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", r.Name, ratio(r.Value), r.Benchmark.String(), r.Level)
			}
			return tw.Flush()
		},
	}
}

func forecastCmd(opts *options) *cobra.Command {
	var (
		start   string
		horizon int
		kind    string
	)

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Project balances from recurring rules, loans and goals",
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, err := opts.todayDate()
			if err != nil {
				return err
			}
			if start != "" {
				if startDate, err = parseDate("start", start); err != nil {
					return err
				}
			}
			reports, err := opts.reportUseCase()
			if err != nil {
				return err
			}

			fc, err := reports.Forecast(cmd.Context(), usecase.ForecastInput{
				Start:         startDate,
				Period:        domain.PeriodKind(kind),
				HorizonMonths: horizon,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return printJSON(out, dto.ForecastFromDomain(fc))
			}

			tw := newTable(out)
			fmt.Fprintln(tw, "Period\tOpening\tIncome\tExpenses\tClosing\t")
			for _, e := range fc.Entries {
				label := e.Label
				if e.HasEstimates {
					label += "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", label, opts.money(e.OpeningBalance),
					opts.money(e.ProjectedIncome), opts.money(e.ProjectedExpenses), opts.money(e.ClosingBalance))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Lowest balance: %s on %s\n", opts.money(fc.LowestBalance), dto.FormatDate(fc.LowestBalanceDate))
			if fc.FirstNegativeDate != nil {
				fmt.Fprintf(out, "Balance goes negative on %s\n", dto.FormatDate(*fc.FirstNegativeDate))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "First day (YYYY-MM-DD, default --today)")
	cmd.Flags().IntVar(&horizon, "horizon", usecase.DefaultForecastHorizon, "Horizon in months")
	cmd.Flags().StringVar(&kind, "period", string(domain.PeriodMonthly), "Bucket size: weekly or monthly")

	return cmd
}

func recurringCmd(opts *options) *cobra.Command {
	recurringCmd := &cobra.Command{
		Use:   "recurring",
		Short: "Recurring rule operations",
	}

	dueCmd := &cobra.Command{
		Use:   "due",
		Short: "List rules with an unposted occurrence on or before today",
		RunE: func(cmd *cobra.Command, args []string) error {
			today, err := opts.todayDate()
			if err != nil {
				return err
			}
			ledger, err := opts.load()
			if err != nil {
				return err
			}

			rules := usecase.NewRecurringUseCase(nil, ledger.Rules(), ledger.Postings(), ledger.Movements(), postgresRepo.NewULIDGenerator(), nil, nil, nil)
			due, err := rules.DueRules(cmd.Context(), today)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return printJSON(out, dto.RulesFromDomain(due))
			}

			tw := newTable(out)
			fmt.Fprintln(tw, "Rule\tDescription\tNext due\tAmount\tAuto\t")
			for _, r := range due {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t\n", r.ID, truncate(r.Description, 30),
					dto.FormatDate(r.NextDueDate), opts.money(r.Direction.Sign()*r.Amount), r.AutoPost)
			}
			return tw.Flush()
		},
	}

	recurringCmd.AddCommand(dueCmd)
	return recurringCmd
}

func formatCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:                "format <cents>",
		Short:              "Format an amount in cents for the locale",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			arg, err := amountArg(cmd, args)
			if err != nil {
				return err
			}
			cents, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				return fmt.Errorf("%w: %q", domain.ErrInvalidAmountFormat, arg)
			}
			fmt.Fprintln(cmd.OutOrStdout(), opts.money(cents))
			return nil
		},
	}
}

func parseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:                "parse <amount>",
		Short:              "Parse a locale-formatted amount into cents",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			arg, err := amountArg(cmd, args)
			if err != nil {
				return err
			}
			cents, err := money.ParseAmount(arg, opts.loc())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cents)
			return nil
		},
	}
}

// amountArg parses the flags of a command that takes one amount argument.
// Tokens such as "-5" or "-1,50" are amounts rather than shorthand flags, so
// negative values work without a "--" separator.
func amountArg(cmd *cobra.Command, args []string) (string, error) {
	var flagArgs, amounts []string
	for i, a := range args {
		if a == "--" {
			amounts = append(amounts, args[i+1:]...)
			break
		}
		if len(a) > 1 && a[0] == '-' && a[1] >= '0' && a[1] <= '9' {
			amounts = append(amounts, a)
			continue
		}
		flagArgs = append(flagArgs, a)
	}

	// Persistent flags are only merged by cobra when it parses flags itself.
	cmd.InheritedFlags()
	flags := cmd.Flags()
	if err := flags.Parse(flagArgs); err != nil {
		return "", err
	}
	if help, _ := flags.GetBool("help"); help {
		return "", pflag.ErrHelp
	}

	amounts = append(flags.Args(), amounts...)
	if len(amounts) != 1 {
		return "", fmt.Errorf("accepts 1 arg(s), received %d", len(amounts))
	}
	return amounts[0], nil
}

func migrateCmd(opts *options, defaultURL string) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migrations",
	}
	migrateCmd.PersistentFlags().StringVar(&opts.databaseURL, "database-url", defaultURL, "PostgreSQL connection URL")

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrations(opts.databaseURL)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrationsDown(opts.databaseURL)
			},
		},
	)
	return migrateCmd
}

// Swapped in tests.
var (
	runMigrations     = postgres.RunMigrations
	runMigrationsDown = postgres.RunMigrationsDown
)

func (o *options) reportUseCase() (*usecase.ReportUseCase, error) {
	ledger, err := o.load()
	if err != nil {
		return nil, err
	}
	return usecase.NewReportUseCase(ledger.Movements(), ledger.Entities(), ledger.Rules(), ledger.Postings(), ledger.Debts(), ledger.Contributions(), nil, 0, nil), nil
}

func ratio(r domain.Ratio) string {
	v, err := r.Decimal()
	if err != nil {
		return "n/a"
	}
	return v.StringFixed(2)
}

func thresholds(values []decimal.Decimal) string {
	if len(values) == 0 {
		return "-"
	}
	s := ""
	for i, v := range values {
		if i > 0 {
			s += ","
		}
		s += v.String()
	}
	return s
}

func writeWorkbook(cmd *cobra.Command, path string, f *excelize.File) error {
	if err := writeFile(path, func(w io.Writer) error { return export.Write(w, f) }); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
