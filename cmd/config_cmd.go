package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/banker/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			a.printConfig()
			return nil
		},
	}
}

func (a *app) printConfig() {
	cfg := a.cfg
	w := a.out

	fmt.Fprintf(w, "  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Fprintln(w, "  Status: loaded")
	} else {
		fmt.Fprintln(w, "  Status: using defaults (no config file)")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  [General]")
	fmt.Fprintf(w, "    Ledger:    %s\n", a.path())
	fmt.Fprintf(w, "    Autosave:  %v\n", cfg.General.AutoSave && !a.noAutoSave)
	if cfg.General.Currency != "" {
		fmt.Fprintf(w, "    Currency:  %s\n", cfg.General.Currency)
	} else {
		fmt.Fprintln(w, "    Currency:  from locale")
	}
	fmt.Fprintf(w, "    Log level: %s\n", cfg.General.LogLevel)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  [Account sync]")
	if cfg.Mint.Username != "" {
		fmt.Fprintf(w, "    Username: %s\n", cfg.Mint.Username)
	} else {
		fmt.Fprintln(w, "    Username: not configured")
	}
	if config.MintPassword() != "" {
		fmt.Fprintf(w, "    Password: set via %s\n", config.EnvMintPassword)
	} else {
		fmt.Fprintf(w, "    Password: not set (%s)\n", config.EnvMintPassword)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  [Appearance]")
	fmt.Fprintf(w, "    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  [CSV profiles]")
	if len(cfg.CSV.Profiles) == 0 {
		fmt.Fprintln(w, "    none")
	}
	names := make([]string, 0, len(cfg.CSV.Profiles))
	for name := range cfg.CSV.Profiles {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		p := cfg.CSV.Profiles[name]
		fmt.Fprintf(w, "    %-12s date %d (%s), amount %d, %s, %q\n",
			name, p.DateColumn, p.DateFormat, p.AmountColumn, p.Encoding, p.Delimiter)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  Run `banker setup` to reconfigure.")
}
