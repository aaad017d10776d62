package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/banker/internal/cli"
	"github.com/theirongolddev/banker/internal/controller"
	"github.com/theirongolddev/banker/internal/ledger"
)

func newTotalsCmd(a *app) *cobra.Command {
	var from, to string
	var daily bool
	cmd := &cobra.Command{
		Use:   "totals [ACCOUNT]",
		Short: "Show the balance over time",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.session(func(c *controller.Controller) error {
				m := c.Model()
				var acct *ledger.Account
				if len(args) == 1 {
					var err error
					if acct, err = m.Account(args[0]); err != nil {
						return err
					}
				}

				var r *ledger.DateRange
				if cmd.Flags().Changed("from") || cmd.Flags().Changed("to") {
					rng := m.GetDateRange()
					if to == "" && rng.End.Before(m.Today()) {
						rng.End = m.Today()
					}
					var err error
					if from != "" {
						if rng.Start, err = parseDate(m, from); err != nil {
							return err
						}
					}
					if to != "" {
						if rng.End, err = parseDate(m, to); err != nil {
							return err
						}
					}
					r = &rng
				}

				totals := m.GetXTotals(acct, r)
				if len(totals) == 0 {
					fmt.Fprintln(a.out, "  No transactions in range.")
					return nil
				}
				a.printTotals(m, acct, totals, daily)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "First day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last day (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&daily, "daily", false, "List every day")
	return cmd
}

func (a *app) printTotals(m *ledger.Model, acct *ledger.Account, totals []ledger.DayTotal, daily bool) {
	name := "All accounts"
	if acct != nil {
		name = acct.Name()
	}
	first, last := totals[0], totals[len(totals)-1]

	values := make([]float64, len(totals))
	low, high := first, first
	for i, t := range totals {
		values[i] = t.Balance.InexactFloat64()
		if t.Balance.LessThan(low.Balance) {
			low = t
		}
		if t.Balance.GreaterThan(high.Balance) {
			high = t
		}
	}

	fmtAmount := func(t ledger.DayTotal) string {
		return cli.Amount(formatFor(m, acct, t.Balance), t.Balance.IsNegative())
	}

	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, cli.RenderTitle(fmt.Sprintf("%s  %s to %s", name, first.Date, last.Date)))
	fmt.Fprintln(a.out)
	fmt.Fprintf(a.out, "  %s\n\n", cli.RenderSparkline(sample(values, 55)))

	rows := [][]string{
		{"Start", cli.FormatDate(first.Date), fmtAmount(first)},
		{"End", cli.FormatDate(last.Date), fmtAmount(last)},
		{"Lowest", cli.FormatDate(low.Date), fmtAmount(low)},
		{"Highest", cli.FormatDate(high.Date), fmtAmount(high)},
	}
	if daily {
		rows = append(rows, cli.Separator)
		for _, t := range totals {
			rows = append(rows, []string{"", cli.FormatDate(t.Date), fmtAmount(t)})
		}
	}
	fmt.Fprint(a.out, cli.RenderTable(cli.Table{
		Headers: []string{"", "Date", "Balance"},
		Rows:    rows,
		Left:    []int{0, 1},
	}))
	fmt.Fprintln(a.out)
}

// sample picks at most n evenly spaced values, always keeping the last.
func sample(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	out := make([]float64, n)
	for i := range n {
		out[i] = values[i*(len(values)-1)/(n-1)]
	}
	return out
}
