package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/fincore/internal/adapter/snapshot"
	"github.com/iho/fincore/internal/infrastructure/config"
	"github.com/iho/fincore/internal/money"
	"github.com/iho/fincore/internal/period"
)

// options are shared by every subcommand through persistent flags.
type options struct {
	snapshotPath string
	today        string
	locale       string
	jsonOutput   bool
	databaseURL  string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "fincore",
		Short:        "Personal finance calculations",
		Long:         `Offline amortization, analytics, budget, health and forecast reports over a JSON ledger snapshot.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.snapshotPath, "snapshot", "s", "ledger.json", "Path to the JSON ledger snapshot")
	rootCmd.PersistentFlags().StringVar(&opts.today, "today", "", "Evaluation date (YYYY-MM-DD, default today)")
	rootCmd.PersistentFlags().StringVar(&opts.locale, "locale", cfg.DefaultLocale, "Locale for amounts (en-US, de-DE, ...)")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Print JSON instead of a table")

	rootCmd.AddCommand(
		amortizeCmd(opts),
		reportCmd(opts),
		budgetCmd(opts),
		healthCmd(opts),
		forecastCmd(opts),
		recurringCmd(opts),
		formatCmd(opts),
		parseCmd(opts),
		migrateCmd(opts, cfg.DatabaseURL),
	)

	return rootCmd
}

func (o *options) loc() money.Locale {
	return money.Lookup(o.locale)
}

func (o *options) money(cents int64) string {
	return money.FormatAmount(cents, o.loc())
}

func (o *options) todayDate() (time.Time, error) {
	if o.today == "" {
		return period.Day(time.Now().UTC()), nil
	}
	return parseDate("today", o.today)
}

func (o *options) load() (*snapshot.Ledger, error) {
	return snapshot.Open(o.snapshotPath)
}

func parseDate(flag, value string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: expected YYYY-MM-DD, got %q", flag, value)
	}
	return t, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
