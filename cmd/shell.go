package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/banker/internal/cli"
	"github.com/theirongolddev/banker/internal/controller"
	"github.com/theirongolddev/banker/internal/mint"
)

// runShell reads commands line by line against one open ledger until quit
// or end of input.
func (a *app) runShell() error {
	c, err := a.open()
	if err != nil {
		return err
	}
	a.ctrl = c
	defer func() { a.ctrl = nil }()

	c.Bus().Subscribe(mint.TopicUpdated, func(_ string, p any) {
		a.printSyncBalances(c.Model(), p)
	})

	interactive := a.interactive()
	if interactive {
		fmt.Fprintln(a.out, cli.Muted("  banker "+c.Path()+"  (help for commands, quit to leave)"))
	}

	sc := bufio.NewScanner(a.in)
	for {
		c.PollSync()
		if interactive {
			fmt.Fprint(a.out, "banker> ")
		}
		if !sc.Scan() {
			break
		}

		args, err := splitArgs(sc.Text())
		if err != nil {
			fmt.Fprintln(a.err, "  Error:", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "quit", "exit", "q":
			c.Bus().Publish(controller.TopicExiting, nil)
			if c.Closed() {
				return nil
			}
			continue
		}

		cmd := newShellCmd(a)
		cmd.SetArgs(args)
		if err := cmd.Execute(); err != nil {
			fmt.Fprintln(a.err, "  Error:", err)
		}
	}
	if err := sc.Err(); err != nil {
		a.log.Error().Err(err).Msg("reading commands")
	}

	// Input is gone, so there is no editing to go back to.
	a.ctrl = nil
	return c.Close()
}

func newShellCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "banker>",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.err)

	root.AddCommand(ledgerCommands(a)...)
	root.AddCommand(
		newImportCmd(a),
		newReportCmd(a),
		newSyncCmd(a),
		newConfigCmd(a),
		&cobra.Command{
			Use:   "save",
			Short: "Save the ledger",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				c := a.ctrl
				c.Bus().Publish(controller.TopicUserSaved, nil)
				if c.Dirty() {
					return errors.New("save failed, see log")
				}
				fmt.Fprintln(a.out, "  Saved")
				return nil
			},
		},
		&cobra.Command{
			Use:   "autosave [on|off]",
			Short: "Show or change whether every change is saved",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				c := a.ctrl
				if len(args) == 1 {
					var on bool
					switch strings.ToLower(args[0]) {
					case "on", "true", "yes":
						on = true
					case "off", "false", "no":
					default:
						return fmt.Errorf("want on or off, got %q", args[0])
					}
					if err := c.SetAutoSave(on); err != nil {
						return err
					}
				}
				state := "off"
				if c.AutoSave() {
					state = "on"
				}
				fmt.Fprintf(a.out, "  Autosave is %s\n", state)
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the state of the open ledger",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				c := a.ctrl
				m := c.Model()
				fmt.Fprintf(a.out, "  Ledger:   %s\n", c.Path())
				fmt.Fprintf(a.out, "  Accounts: %d, transactions: %s\n", len(m.Accounts()), cli.FormatNumber(int64(len(m.Transactions()))))
				fmt.Fprintf(a.out, "  Autosave: %v\n", c.AutoSave())
				if c.Dirty() {
					fmt.Fprintln(a.out, cli.Warn("  Unsaved changes"))
				}
				fmt.Fprintf(a.out, "  Sync:     %v\n", m.MintEnabled())
				return nil
			},
		},
	)
	return root
}

// splitArgs splits a command line into words. Single and double quotes
// group words; a backslash escapes the next character outside single
// quotes.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped, inWord = true, true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote, inWord = r, true
		case r == ' ' || r == '\t':
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if escaped {
		return nil, errors.New("trailing backslash")
	}
	if inWord {
		args = append(args, cur.String())
	}
	return args, nil
}
