package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/epicexcelsior/awaken-long-tail-chains/chains"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(chainsCmd)
}

var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "Lists the supported chain presets.",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tCHAIN\tPROVIDER\tNATIVE\tAPI")
		for _, chain := range chains.All() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", chain.Name, chain.DisplayName, chain.Provider, chain.Native.Symbol, chain.APIURL)
		}
		return w.Flush()
	},
}
