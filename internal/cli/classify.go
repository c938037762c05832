package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-tablegen/pkg/performance"
)

func newClassifyCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "classify ROWS",
		Short: "Show the performance strategy for a row count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := strconv.Atoi(args[0])
			if err != nil || rows < 0 {
				return fmt.Errorf("row count must be a non-negative integer, got %q", args[0])
			}
			desc := performance.Classify(rows)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "strategy: %s\n", desc.Strategy)

			table := tablewriter.NewWriter(out)
			table.SetHeader([]string{"Kind", "Hint", "Value"})
			table.SetAutoFormatHeaders(false)
			appendHints(table, "dom", desc.DOMHints)
			appendHints(table, "css", desc.CSSHints)
			js := make(map[string]string, len(desc.JSHints))
			for k, v := range desc.JSHints {
				js[k] = fmt.Sprint(v)
			}
			appendHints(table, "js", js)
			table.Render()
			return nil
		},
	}
}

func appendHints(table *tablewriter.Table, kind string, hints map[string]string) {
	keys := make([]string, 0, len(hints))
	for k := range hints {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		table.Append([]string{kind, k, hints[k]})
	}
}
