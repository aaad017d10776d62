package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/banker/internal/cli"
	"github.com/theirongolddev/banker/internal/controller"
)

func newTagsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List tags by usage",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.session(func(c *controller.Controller) error {
				m := c.Model()
				tags := m.Tags()
				if len(tags) == 0 {
					fmt.Fprintln(a.out, "  No tags.")
					return nil
				}

				width, most := 0, 0
				for _, tag := range tags {
					width = max(width, len(tag))
					most = max(most, m.TagCount(tag))
				}
				for _, tag := range tags {
					n := m.TagCount(tag)
					label := fmt.Sprintf("#%-*s %5s", width, tag, cli.FormatNumber(int64(n)))
					fmt.Fprintln(a.out, cli.RenderHorizontalBar(label, float64(n), float64(most), 30))
				}
				return nil
			})
		},
	}
}
