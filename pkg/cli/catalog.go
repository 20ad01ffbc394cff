package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"section-cms/pkg/services"
)

func newCatalogCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List section families and their variants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := services.GetCatalog()
			if err != nil {
				return err
			}
			families := cat.Families()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), families)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FAMILY\tCOMPONENT\tVARIANT\tREQUIRED")
			for _, f := range families {
				for _, v := range f.Variants {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.Name, f.Component, v.Key, strings.Join(v.Required, ","))
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print full family definitions as JSON")
	return cmd
}
