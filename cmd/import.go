package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/banker/internal/config"
	"github.com/theirongolddev/banker/internal/controller"
	"github.com/theirongolddev/banker/internal/csvimport"
	"github.com/theirongolddev/banker/internal/ledger"
)

func newImportCmd(a *app) *cobra.Command {
	var (
		profile, saveAs string
		s               = csvimport.DefaultSettings()
		dryRun          bool
	)
	cmd := &cobra.Command{
		Use:   "import FILE ACCOUNT",
		Short: "Import a CSV bank statement into an account",
		Long: `Import reads every row of FILE and adds it to ACCOUNT. A single bad row
aborts the whole import. Column numbers start at 1; the date format uses
strftime directives such as %d.%m.%Y.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := s
			if profile != "" {
				p, ok := a.cfg.CSV.Profiles[profile]
				if !ok {
					return fmt.Errorf("no CSV profile %q in %s", profile, config.ConfigPath())
				}
				settings = overrideSettings(cmd, csvimport.FromProfile(p), s)
			}
			if err := settings.Validate(); err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening statement: %w", err)
			}
			defer f.Close()

			if dryRun {
				rows, err := csvimport.Parse(f, settings)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "  %d row(s) would be imported\n", len(rows))
			} else {
				err = a.session(func(c *controller.Controller) error {
					acct, err := c.Model().Account(args[1])
					if err != nil {
						return err
					}
					var created []*ledger.Transaction
					err = c.Batch(func() error {
						var err error
						created, err = csvimport.Import(f, acct, settings)
						return err
					})
					if err != nil {
						return err
					}
					a.log.Info().Str("file", args[0]).Str("account", acct.Name()).Int("rows", len(created)).Msg("statement imported")
					fmt.Fprintf(a.out, "  Imported %d transaction(s) into %s\n", len(created), acct.Name())
					return nil
				})
				if err != nil {
					return err
				}
			}

			if saveAs != "" {
				if a.cfg.CSV.Profiles == nil {
					a.cfg.CSV.Profiles = make(map[string]config.CSVProfile)
				}
				a.cfg.CSV.Profiles[saveAs] = settings.Profile()
				if err := config.Save(a.cfg); err != nil {
					return fmt.Errorf("saving profile: %w", err)
				}
				fmt.Fprintf(a.out, "  Saved profile %q to %s\n", saveAs, config.ConfigPath())
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&profile, "profile", "p", "", "Use a saved CSV profile")
	f.StringVar(&saveAs, "save-profile", "", "Save these settings as a profile")
	f.BoolVar(&dryRun, "dry-run", false, "Parse the file without importing")
	f.IntVar(&s.DateColumn, "date-column", s.DateColumn, "Date column")
	f.StringVar(&s.DateFormat, "date-format", s.DateFormat, "Date format (strftime)")
	f.IntVar(&s.AmountColumn, "amount-column", s.AmountColumn, "Amount column")
	f.StringVar(&s.DecimalSeparator, "decimal", s.DecimalSeparator, "Decimal separator")
	f.IntSliceVar(&s.DescriptionColumns, "description-columns", s.DescriptionColumns, "Description columns, joined with spaces")
	f.StringVar(&s.Delimiter, "delimiter", s.Delimiter, "Field delimiter")
	f.StringVar(&s.Encoding, "encoding", s.Encoding, "File encoding, e.g. utf-8 or cp1250")
	f.BoolVar(&s.SkipFirstLine, "skip-first-line", s.SkipFirstLine, "Skip a header line")
	return cmd
}

// overrideSettings applies the flags given on the command line over a
// profile.
func overrideSettings(cmd *cobra.Command, base, flags csvimport.Settings) csvimport.Settings {
	changed := cmd.Flags().Changed
	if changed("date-column") {
		base.DateColumn = flags.DateColumn
	}
	if changed("date-format") {
		base.DateFormat = flags.DateFormat
	}
	if changed("amount-column") {
		base.AmountColumn = flags.AmountColumn
	}
	if changed("decimal") {
		base.DecimalSeparator = flags.DecimalSeparator
	}
	if changed("description-columns") {
		base.DescriptionColumns = flags.DescriptionColumns
	}
	if changed("delimiter") {
		base.Delimiter = flags.Delimiter
	}
	if changed("encoding") {
		base.Encoding = flags.Encoding
	}
	if changed("skip-first-line") {
		base.SkipFirstLine = flags.SkipFirstLine
	}
	return base
}
