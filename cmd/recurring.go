package cmd

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/banker/internal/cli"
	"github.com/theirongolddev/banker/internal/controller"
	"github.com/theirongolddev/banker/internal/ledger"
)

func newRecurringCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recurring",
		Aliases: []string{"rec"},
		Short:   "Manage recurring transactions",
		Args:    cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.session(a.printRecurring)
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List recurring transactions",
			Args:    cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return a.session(a.printRecurring)
			},
		},
		newRecurringAddCmd(a),
		&cobra.Command{
			Use:     "remove ID",
			Aliases: []string{"rm"},
			Short:   "Remove a recurring transaction",
			Args:    cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return a.session(func(c *controller.Controller) error {
					r, err := findRecurring(c.Model(), args[0])
					if err != nil {
						return err
					}
					return r.Account().RemoveRecurringTransaction(r)
				})
			},
		},
		&cobra.Command{
			Use:   "due",
			Short: "List dates that are due but not yet transacted",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return a.session(func(c *controller.Controller) error {
					due := dueRecurring(c.Model())
					if len(due) == 0 {
						fmt.Fprintln(a.out, "  Nothing due.")
						return nil
					}
					var rows [][]string
					for _, r := range due {
						for d := range r.GetUntransactedDates(false) {
							rows = append(rows, []string{
								cli.FormatID(r.ID()),
								r.Account().Name(),
								cli.FormatDate(d),
								cli.Truncate(r.Description(), 30),
								r.Account().FormatAmount(r.Amount(), 0, false),
							})
						}
					}
					fmt.Fprint(a.out, cli.RenderTable(cli.Table{
						Headers: []string{"ID", "Account", "Date", "Description", "Amount"},
						Rows:    rows,
						Left:    []int{0, 1, 2, 3},
					}))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "perform [ID]",
			Short: "Add the transactions that are due",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return a.session(func(c *controller.Controller) error {
					m := c.Model()
					targets := m.RecurringTransactions()
					if len(args) == 1 {
						r, err := findRecurring(m, args[0])
						if err != nil {
							return err
						}
						targets = []*ledger.RecurringTransaction{r}
					}
					total := 0
					err := c.Batch(func() error {
						for _, r := range targets {
							created, err := r.PerformTransactions()
							total += len(created)
							if err != nil {
								return err
							}
						}
						return nil
					})
					fmt.Fprintf(a.out, "  Added %d transaction(s)\n", total)
					return err
				})
			},
		},
	)
	return cmd
}

func newRecurringAddCmd(a *app) *cobra.Command {
	var (
		start, end, repeat string
		every              int
	)
	cmd := &cobra.Command{
		Use:   "add ACCOUNT AMOUNT DESCRIPTION",
		Short: "Add a recurring transaction",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			rep, err := ledger.ParseRepeat(repeat)
			if err != nil {
				return err
			}
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
				s, err := parseDate(m, start)
				if err != nil {
					return err
				}
				if s.IsZero() {
					s = m.Today()
				}
				e, err := parseDate(m, end)
				if err != nil {
					return err
				}
				r, err := acct.AddRecurringTransaction(amount, args[2], s, rep, every, e)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "  Added %s  %s\n", cli.FormatID(r.ID()), r)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "First date (default today)")
	cmd.Flags().StringVar(&end, "end", "", "Last date (default none)")
	cmd.Flags().StringVarP(&repeat, "repeat", "r", ledger.Monthly.String(), "daily, weekly, monthly or yearly")
	cmd.Flags().IntVarP(&every, "every", "e", 1, "Repeat every N periods")
	return cmd
}

func (a *app) printRecurring(c *controller.Controller) error {
	rs := c.Model().RecurringTransactions()
	if len(rs) == 0 {
		fmt.Fprintln(a.out, "  No recurring transactions.")
		return nil
	}
	rows := make([][]string, 0, len(rs))
	for _, r := range rs {
		next := "-"
		if d, ok := r.Next(); ok {
			next = cli.FormatDate(d)
		}
		rows = append(rows, []string{
			cli.FormatID(r.ID()),
			r.Account().Name(),
			cli.Truncate(r.Description(), 30),
			r.Account().FormatAmount(r.Amount(), 0, false),
			"every " + strconv.Itoa(r.Every()) + " " + r.Repeat().String(),
			next,
		})
	}
	fmt.Fprint(a.out, cli.RenderTable(cli.Table{
		Headers: []string{"ID", "Account", "Description", "Amount", "Repeat", "Next"},
		Rows:    rows,
		Left:    []int{0, 1, 2, 4},
	}))
	return nil
}

// dueRecurring returns the recurring transactions with past-due dates.
func dueRecurring(m *ledger.Model) []*ledger.RecurringTransaction {
	return slices.DeleteFunc(m.RecurringTransactions(), func(r *ledger.RecurringTransaction) bool {
		for range r.GetUntransactedDates(false) {
			return false
		}
		return true
	})
}
