package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/banker/internal/cli"
	"github.com/theirongolddev/banker/internal/controller"
	"github.com/theirongolddev/banker/internal/currency"
	"github.com/theirongolddev/banker/internal/ledger"
)

func newAccountCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "account",
		Aliases: []string{"accounts", "balance"},
		Short:   "List and manage accounts",
		Args:    cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.session(a.printSummary)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List accounts with their balances",
			Args:    cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return a.session(a.printSummary)
			},
		},
		&cobra.Command{
			Use:   "create NAME",
			Short: "Create an account",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return a.session(func(c *controller.Controller) error {
					acct, err := c.Model().CreateAccount(args[0])
					if err != nil {
						return err
					}
					fmt.Fprintf(a.out, "  Created %s (%s)\n", acct.Name(), acct.CurrencyRules().Code)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:     "remove NAME",
			Aliases: []string{"rm"},
			Short:   "Remove an account and its transactions",
			Args:    cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return a.session(func(c *controller.Controller) error {
					if err := c.Model().RemoveAccount(args[0]); err != nil {
						return err
					}
					fmt.Fprintf(a.out, "  Removed %s\n", args[0])
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "rename OLD NEW",
			Short: "Rename an account",
			Args:  cobra.ExactArgs(2),
			RunE: func(_ *cobra.Command, args []string) error {
				return a.session(func(c *controller.Controller) error {
					acct, err := c.Model().Account(args[0])
					if err != nil {
						return err
					}
					return acct.SetName(args[1])
				})
			},
		},
		&cobra.Command{
			Use:   "currency NAME CODE",
			Short: "Set the display currency of an account",
			Args:  cobra.ExactArgs(2),
			RunE: func(_ *cobra.Command, args []string) error {
				return a.session(func(c *controller.Controller) error {
					acct, err := c.Model().Account(args[0])
					if err != nil {
						return err
					}
					idx, _, err := currency.Lookup(args[1])
					if err != nil {
						return err
					}
					c.Bus().Publish(ledger.TopicUserAccountCurrency, ledger.AccountCurrency{Account: acct, Currency: idx})
					if acct.Currency() != idx {
						return fmt.Errorf("currency of %s was not changed", acct.Name())
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "select [NAME]",
			Short: "Select the default account, or clear it",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return a.session(func(c *controller.Controller) error {
					var acct *ledger.Account
					if len(args) == 1 {
						var err error
						if acct, err = c.Model().Account(args[0]); err != nil {
							return err
						}
					}
					c.Bus().Publish(ledger.TopicViewAccountChanged, acct)
					return nil
				})
			},
		},
	)
	return cmd
}

func (a *app) printSummary(c *controller.Controller) error {
	m := c.Model()
	accounts := m.Accounts()

	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, cli.RenderTitle("banker  "+c.Path()))
	fmt.Fprintln(a.out)

	if len(accounts) == 0 {
		fmt.Fprintln(a.out, "  No accounts yet. Create one with `banker account create NAME`.")
		fmt.Fprintln(a.out)
		return nil
	}

	last, _ := m.LastAccount()
	var rows [][]string
	for _, acct := range accounts {
		name := acct.Name()
		if acct == last {
			name += " *"
		}
		bal := acct.Balance()
		rows = append(rows, []string{
			name,
			acct.CurrencyRules().Code,
			cli.FormatNumber(int64(len(acct.Transactions()))),
			cli.Amount(acct.FormatAmount(bal, 0, false), bal.IsNegative()),
		})
	}
	total := m.Balance()
	rows = append(rows, cli.Separator, []string{
		"Total",
		m.GlobalRules().Code,
		cli.FormatNumber(int64(len(m.Transactions()))),
		cli.Amount(m.FormatAmount(total, 0, false), total.IsNegative()),
	})

	fmt.Fprint(a.out, cli.RenderTable(cli.Table{
		Headers: []string{"Account", "Currency", "Transactions", "Balance"},
		Rows:    rows,
	}))

	if n := len(dueRecurring(m)); n > 0 {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, cli.Warn("  "+strconv.Itoa(n)+" recurring transaction(s) due. Run `banker recurring perform`."))
	}
	fmt.Fprintln(a.out)
	return nil
}
