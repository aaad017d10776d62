package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/banker/internal/controller"
	"github.com/theirongolddev/banker/internal/currency"
	"github.com/theirongolddev/banker/internal/ledger"
)

func newCurrencyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "currency",
		Short: "Show the ledger's global currency",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.session(func(c *controller.Controller) error {
				r := c.Model().GlobalRules()
				fmt.Fprintf(a.out, "  %s (%s)  %s\n", r.Name, r.Code, r.Format(decimal.RequireFromString("1234.5"), 0, false))
				return nil
			})
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set CODE",
			Short: "Set the global currency",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				idx, _, err := currency.Lookup(args[0])
				if err != nil {
					return err
				}
				return a.session(func(c *controller.Controller) error {
					c.Bus().Publish(ledger.TopicUserGlobalCurrency, idx)
					if c.Model().GlobalCurrency() != idx {
						return fmt.Errorf("global currency was not changed")
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List the supported currencies",
			Args:    cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				for i, s := range currency.Strings() {
					fmt.Fprintf(a.out, "  %2d  %s\n", i, s)
				}
				return nil
			},
		},
	)
	return cmd
}
