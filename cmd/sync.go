package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/banker/internal/cli"
	"github.com/theirongolddev/banker/internal/controller"
	"github.com/theirongolddev/banker/internal/ledger"
	"github.com/theirongolddev/banker/internal/mint"
)

func newSyncCmd(a *app) *cobra.Command {
	var off bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Check balances against the account aggregator",
		Long:  "Sync enables the aggregator check and waits for its result. A failed login switches the feature off again.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.session(func(c *controller.Controller) error {
				if off {
					c.Bus().Publish(ledger.TopicUserMintToggled, false)
					fmt.Fprintln(a.out, "  Account sync disabled")
					return nil
				}

				sub := c.Bus().Subscribe(mint.TopicUpdated, func(_ string, p any) {
					a.printSyncBalances(c.Model(), p)
				})
				defer c.Bus().Unsubscribe(sub)

				c.Bus().Publish(ledger.TopicUserMintToggled, true)
				ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
				defer cancel()
				if !c.WaitSync(ctx) {
					return fmt.Errorf("account sync did not finish")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&off, "off", false, "Disable the aggregator check")
	return cmd
}

func (a *app) printSyncBalances(m *ledger.Model, payload any) {
	remote, ok := payload.(map[string]decimal.Decimal)
	if !ok {
		return
	}
	var rows [][]string
	for _, acct := range m.Accounts() {
		r, found := remote[acct.Name()]
		if !found {
			continue
		}
		diff := r.Sub(acct.Balance())
		rows = append(rows, []string{
			acct.Name(),
			acct.FormatAmount(acct.Balance(), 0, false),
			acct.FormatAmount(r, 0, false),
			cli.Amount(acct.FormatAmount(diff, 0, false), diff.IsNegative()),
		})
	}
	if len(rows) == 0 {
		fmt.Fprintln(a.out, "  No linked accounts.")
		return
	}
	fmt.Fprint(a.out, cli.RenderTable(cli.Table{
		Headers: []string{"Account", "Ledger", "Aggregator", "Difference"},
		Rows:    rows,
	}))
}
