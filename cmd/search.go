package cmd

import (
	"github.com/spf13/cobra"

	"github.com/theirongolddev/banker/internal/controller"
	"github.com/theirongolddev/banker/internal/ledger"
)

func newSearchCmd(a *app) *cobra.Command {
	var account, field string
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Find transactions by description, amount or date",
		Long:  "Search matches QUERY, a case-insensitive regular expression, against one field of every transaction.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			f, err := ledger.ParseSearchField(field)
			if err != nil {
				return err
			}
			return a.session(func(c *controller.Controller) error {
				m := c.Model()
				var acct *ledger.Account
				if account != "" {
					if acct, err = m.Account(account); err != nil {
						return err
					}
				}
				a.printTransactions(m, acct, ledger.SortByDate(m.Search(args[0], acct, f)))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&account, "account", "a", "", "Search a single account")
	cmd.Flags().StringVarP(&field, "field", "f", ledger.FieldDescription.String(), "Field to match: description, amount or date")
	return cmd
}
