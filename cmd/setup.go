package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/banker/internal/cli"
	"github.com/theirongolddev/banker/internal/config"
	"github.com/theirongolddev/banker/internal/currency"
)

func newSetupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "First-time setup wizard",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.runSetup()
		},
	}
}

func (a *app) runSetup() error {
	cfg := a.cfg

	dbPath := cfg.DBPath()
	code := cfg.General.Currency
	if code == "" {
		code = currency.MustIndex(currency.LocalizedIndex).Code
	}

	var currencies []huh.Option[string]
	for i, label := range currency.Strings() {
		currencies = append(currencies, huh.NewOption(label, currency.MustIndex(i).Code))
	}
	var themes []huh.Option[string]
	for _, t := range cli.Themes {
		themes = append(themes, huh.NewOption(t.Name, t.Name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to banker!").
				Description("A few questions and your ledger is ready."),
			huh.NewInput().
				Title("Ledger database").
				Value(&dbPath),
			huh.NewConfirm().
				Title("Save after every change?").
				Value(&cfg.General.AutoSave),
			huh.NewSelect[string]().
				Title("Default currency").
				Options(currencies...).
				Height(8).
				Value(&code),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&cfg.Appearance.Theme),
			huh.NewInput().
				Title("Aggregator username").
				Description("The password is read from " + config.EnvMintPassword + ".").
				Value(&cfg.Mint.Username),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	cfg.General.DBPath = ""
	if p := strings.TrimSpace(dbPath); p != config.DefaultDBPath() {
		cfg.General.DBPath = p
	}
	cfg.General.Currency = code

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	a.cfg = cfg

	fmt.Fprintln(a.out)
	fmt.Fprintf(a.out, "  Saved to %s\n", config.ConfigPath())
	fmt.Fprintln(a.out, "  Run `banker setup` anytime to reconfigure.")
	fmt.Fprintln(a.out)
	return nil
}
