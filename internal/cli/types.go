package cli

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newTypesCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List registered table types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := env.App()
			if err != nil {
				return err
			}
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"ID", "Layout", "Columns", "Description"})
			table.SetAutoWrapText(false)
			table.SetAutoFormatHeaders(false)
			for _, id := range a.Store.IDs() {
				tt, _ := a.Store.Lookup(id)
				table.Append([]string{
					id,
					string(tt.Config.Layout.Type),
					strconv.Itoa(len(tt.Config.Columns)),
					tt.Description,
				})
			}
			table.Render()
			return nil
		},
	}
}
