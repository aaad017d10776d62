package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/banker/internal/cli"
	"github.com/theirongolddev/banker/internal/controller"
	"github.com/theirongolddev/banker/internal/ledger"
)

func newTxCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transaction", "transactions"},
		Short:   "List and manage transactions",
	}
	cmd.AddCommand(
		newTxListCmd(a),
		newTxAddCmd(a),
		newTxEditCmd(a),
		&cobra.Command{
			Use:     "remove ID",
			Aliases: []string{"rm"},
			Short:   "Remove a transaction",
			Args:    cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return a.session(func(c *controller.Controller) error {
					t, err := findTransaction(c.Model(), args[0])
					if err != nil {
						return err
					}
					return t.Owner().RemoveTransaction(t)
				})
			},
		},
		&cobra.Command{
			Use:     "move ID ACCOUNT",
			Aliases: []string{"mv"},
			Short:   "Move a transaction to another account",
			Args:    cobra.ExactArgs(2),
			RunE: func(_ *cobra.Command, args []string) error {
				return a.session(func(c *controller.Controller) error {
					m := c.Model()
					t, err := findTransaction(m, args[0])
					if err != nil {
						return err
					}
					target, err := m.Account(args[1])
					if err != nil {
						return err
					}
					return t.Owner().MoveTransaction(t, target)
				})
			},
		},
		&cobra.Command{
			Use:   "tag ID TAG...",
			Short: "Tag a transaction",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(_ *cobra.Command, args []string) error {
				return a.session(func(c *controller.Controller) error {
					t, err := findTransaction(c.Model(), args[0])
					if err != nil {
						return err
					}
					return t.AddTags(args[1:]...)
				})
			},
		},
		&cobra.Command{
			Use:   "untag ID TAG...",
			Short: "Remove tags from a transaction",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(_ *cobra.Command, args []string) error {
				return a.session(func(c *controller.Controller) error {
					t, err := findTransaction(c.Model(), args[0])
					if err != nil {
						return err
					}
					return t.RemoveTags(args[1:]...)
				})
			},
		},
	)
	return cmd
}

func newTxListCmd(a *app) *cobra.Command {
	var tag string
	cmd := &cobra.Command{
		Use:     "list [ACCOUNT]",
		Aliases: []string{"ls"},
		Short:   "List transactions by date",
		Long:    "List the transactions of ACCOUNT, of the selected account, or of every account.",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.session(func(c *controller.Controller) error {
				m := c.Model()
				name := ""
				if len(args) == 1 {
					name = args[0]
				}
				acct, err := accountOrLast(m, name)
				if err != nil {
					return err
				}

				var txs []*ledger.Transaction
				if acct != nil {
					txs = ledger.SortByDate(acct.Transactions())
				} else {
					txs = ledger.SortByDate(m.Transactions())
				}
				if tag != "" {
					var tagged []*ledger.Transaction
					for _, t := range txs {
						if t.HasTag(tag) {
							tagged = append(tagged, t)
						}
					}
					txs = tagged
				}
				a.printTransactions(m, acct, txs)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Only transactions carrying this tag")
	return cmd
}

func newTxAddCmd(a *app) *cobra.Command {
	var (
		date string
		tags []string
	)
	cmd := &cobra.Command{
		Use:   "add ACCOUNT AMOUNT [DESCRIPTION]",
		Short: "Add a transaction",
		Long:  "Add a transaction. Put -- before a negative amount: tx add Checking -- -12.50 groceries",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.session(func(c *controller.Controller) error {
				m := c.Model()
				acct, err := m.Account(args[0])
				if err != nil {
					return err
				}
				amount, err := parseAmount(args[1])
				if err != nil {
					return err
				}
				d, err := parseDate(m, date)
				if err != nil {
					return err
				}
				desc := ""
				if len(args) == 3 {
					desc = args[2]
				}
				t, err := acct.AddTransaction(amount, desc, d, tags...)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "  Added %s  %s\n", cli.FormatID(t.ID()), acct.FormatAmount(t.Amount(), 0, true))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "Date as YYYY-MM-DD (default today)")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "Tags (repeatable)")
	return cmd
}

func newTxEditCmd(a *app) *cobra.Command {
	var amount, desc, date string
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change the amount, description or date of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.session(func(c *controller.Controller) error {
				m := c.Model()
				t, err := findTransaction(m, args[0])
				if err != nil {
					return err
				}
				flags := cmd.Flags()
				if flags.Changed("amount") {
					v, err := parseAmount(amount)
					if err != nil {
						return err
					}
					if err := t.SetAmount(v); err != nil {
						return err
					}
				}
				if flags.Changed("description") {
					if err := t.SetDescription(desc); err != nil {
						return err
					}
				}
				if flags.Changed("date") {
					d, err := parseDate(m, date)
					if err != nil {
						return err
					}
					if err := t.SetDate(d); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "New amount")
	cmd.Flags().StringVarP(&desc, "description", "m", "", "New description")
	cmd.Flags().StringVarP(&date, "date", "d", "", "New date as YYYY-MM-DD")
	return cmd
}

// printTransactions renders txs. A running balance is shown when they all
// belong to acct.
func (a *app) printTransactions(m *ledger.Model, acct *ledger.Account, txs []*ledger.Transaction) {
	if len(txs) == 0 {
		fmt.Fprintln(a.out, "  No transactions.")
		return
	}

	headers := []string{"ID", "Date", "Description", "Tags", "Amount"}
	if acct != nil {
		headers = append(headers, "Balance")
	}

	var running decimal.Decimal
	rows := make([][]string, 0, len(txs))
	for _, t := range txs {
		owner := t.Owner()
		desc := t.Description()
		if acct == nil && owner != nil {
			desc = owner.Name() + ": " + desc
		}
		row := []string{
			cli.FormatID(t.ID()),
			cli.FormatDate(t.Date()),
			cli.Truncate(desc, 40),
			cli.Truncate(cli.FormatTags(t.Tags()), 24),
			cli.Amount(formatFor(m, owner, t.Amount()), t.Amount().IsNegative()),
		}
		if acct != nil {
			running = running.Add(t.Amount())
			row = append(row, acct.FormatAmount(running, 0, false))
		}
		rows = append(rows, row)
	}

	title := "All accounts"
	if acct != nil {
		title = acct.Name()
	}
	fmt.Fprint(a.out, cli.RenderTable(cli.Table{
		Title:   title,
		Headers: headers,
		Rows:    rows,
		Left:    []int{0, 1, 2, 3},
	}))
}

func formatFor(m *ledger.Model, acct *ledger.Account, amount decimal.Decimal) string {
	if acct != nil {
		return acct.FormatAmount(amount, 0, false)
	}
	return m.FormatAmount(amount, 0, false)
}
