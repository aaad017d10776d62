// Package cmd implements the banker CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/banker/internal/cli"
	"github.com/theirongolddev/banker/internal/config"
	"github.com/theirongolddev/banker/internal/controller"
	"github.com/theirongolddev/banker/internal/currency"
	"github.com/theirongolddev/banker/internal/logger"
	"github.com/theirongolddev/banker/internal/mint"
)

// app is the state shared by every command of one invocation.
type app struct {
	in  io.Reader
	out io.Writer
	err io.Writer

	cfg config.Config
	log zerolog.Logger

	dbPath     string
	interact   bool
	noAutoSave bool
	logLevel   string
	noColor    bool

	// ctrl is the open controller while the shell runs.
	ctrl *controller.Controller
}

// Execute is the main entry point called from main.go.
func Execute() {
	a := &app{in: os.Stdin, out: os.Stdout, err: os.Stderr}
	if err := newRootCmd(a).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "banker",
		Short: "Personal finance ledger",
		Long:  "Keep accounts and transactions, follow balances over time, and import bank statements.",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.init()
		},
		RunE: func(*cobra.Command, []string) error {
			if a.interact {
				return a.runShell()
			}
			return a.session(a.printSummary)
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.err)

	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "Ledger database (default from config)")
	root.PersistentFlags().BoolVar(&a.interact, "cli", false, "Run the interactive command shell")
	root.PersistentFlags().BoolVar(&a.noAutoSave, "no-autosave", false, "Only save on request")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(ledgerCommands(a)...)
	root.AddCommand(
		newImportCmd(a),
		newReportCmd(a),
		newSyncCmd(a),
		newConfigCmd(a),
		newSetupCmd(a),
	)
	return root
}

// ledgerCommands are the commands available both one-shot and in the shell.
func ledgerCommands(a *app) []*cobra.Command {
	return []*cobra.Command{
		newAccountCmd(a),
		newTxCmd(a),
		newSearchCmd(a),
		newTotalsCmd(a),
		newTagsCmd(a),
		newRecurringCmd(a),
		newCurrencyCmd(a),
	}
}

func (a *app) init() error {
	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.General.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	a.log = logger.New(a.err, level)

	cli.SetTheme(cfg.Appearance.Theme)
	if a.noColor || os.Getenv("NO_COLOR") != "" {
		cli.DisableColor()
	}
	return nil
}

func (a *app) path() string {
	if a.dbPath != "" {
		return a.dbPath
	}
	return a.cfg.DBPath()
}

// open opens the ledger with the configured policy and installs the
// dirty-exit prompt.
func (a *app) open() (*controller.Controller, error) {
	creds := mint.Credentials{Username: a.cfg.Mint.Username, Password: config.MintPassword()}
	c, err := controller.New(a.path(),
		controller.WithLogger(a.log),
		controller.WithAutoSave(a.cfg.General.AutoSave && !a.noAutoSave),
		controller.WithSync(mint.Offline{}, creds),
	)
	if err != nil {
		return nil, err
	}

	m := c.Model()
	if code := a.cfg.General.Currency; code != "" && len(m.Accounts()) == 0 && m.GlobalCurrency() == currency.LocalizedIndex {
		idx, _, err := currency.Lookup(code)
		if err != nil {
			a.log.Warn().Err(err).Str("currency", code).Msg("ignoring configured currency")
		} else if err := m.SetGlobalCurrency(idx); err != nil {
			a.log.Warn().Err(err).Msg("setting configured currency")
		}
	}

	c.Bus().Subscribe(controller.TopicDirtyExit, a.onDirtyExit)
	c.Bus().Subscribe(controller.TopicSaveFailed, func(_ string, p any) {
		fmt.Fprintln(a.err, cli.Warn(fmt.Sprintf("  Save failed: %v", p)))
	})
	c.Bus().Subscribe(mint.TopicDisabled, func(_ string, p any) {
		fmt.Fprintln(a.err, cli.Warn(fmt.Sprintf("  Account sync disabled: %v", p)))
	})
	return c, nil
}

// session runs fn against the open shell controller, or opens the ledger
// for the duration of fn.
func (a *app) session(fn func(*controller.Controller) error) error {
	if a.ctrl != nil {
		return fn(a.ctrl)
	}
	c, err := a.open()
	if err != nil {
		return err
	}
	return errors.Join(fn(c), c.Close())
}

func (a *app) interactive() bool {
	return isTerminal(a.in)
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
