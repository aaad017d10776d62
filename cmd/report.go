package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	md "github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/banker/internal/cli"
	"github.com/theirongolddev/banker/internal/controller"
	"github.com/theirongolddev/banker/internal/ledger"
)

func newReportCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write a markdown report of balances and tags",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.session(func(c *controller.Controller) error {
				report := reportMarkdown(c.Model())
				if output == "" {
					fmt.Fprint(a.out, a.renderMarkdown(report))
					return nil
				}
				if err := os.WriteFile(output, []byte(report), 0o600); err != nil {
					return fmt.Errorf("writing report: %w", err)
				}
				fmt.Fprintf(a.out, "  Wrote %s\n", output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

// renderMarkdown styles doc for a terminal and leaves it as plain markdown
// for pipes and files.
func (a *app) renderMarkdown(doc string) string {
	if a.noColor || !isTerminal(a.out) {
		return doc
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
	if err != nil {
		a.log.Debug().Err(err).Msg("markdown renderer")
		return doc
	}
	out, err := r.Render(doc)
	if err != nil {
		a.log.Debug().Err(err).Msg("rendering markdown")
		return doc
	}
	return out
}

func reportMarkdown(m *ledger.Model) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Ledger report on %s", m.Today()))
	doc.PlainText(fmt.Sprintf("Total balance: %s", m.FormatAmount(m.Balance(), 0, true)))

	doc.H2("Accounts")
	var rows [][]string
	for _, a := range m.Accounts() {
		txs := ledger.SortByDate(a.Transactions())
		last := "-"
		if len(txs) > 0 {
			last = txs[len(txs)-1].Date().String()
		}
		rows = append(rows, []string{
			a.Name(),
			cli.FormatNumber(int64(len(txs))),
			last,
			a.FormatAmount(a.Balance(), 0, true),
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Account", "Transactions", "Last activity", "Balance"},
		Rows:   rows,
	})

	if tags := m.Tags(); len(tags) > 0 {
		doc.H2("Tags")
		rows = nil
		for _, tag := range tags {
			rows = append(rows, []string{tag, cli.FormatNumber(int64(m.TagCount(tag)))})
		}
		doc.Table(md.TableSet{
			Header: []string{"Tag", "Transactions"},
			Rows:   rows,
		})
	}

	if rs := m.RecurringTransactions(); len(rs) > 0 {
		doc.H2("Recurring")
		rows = nil
		for _, r := range rs {
			next := "-"
			if d, ok := r.Next(); ok {
				next = d.String()
			}
			rows = append(rows, []string{r.Account().Name(), r.Description(), r.Repeat().String(), next})
		}
		doc.Table(md.TableSet{
			Header: []string{"Account", "Description", "Repeat", "Next"},
			Rows:   rows,
		})
	}

	return doc.String()
}
