// rapport serves and inspects player relationship analytics.
//
// Usage:
//
//	rapport serve
//	rapport top <board> --dataset=<path> [--limit=N] [--format=ascii|markdown|json]
//	rapport seed --out=<path> [--players=N] [--max-games=N] [--seed=N]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rapport",
		Short: "Player chemistry, rivalry and trio analytics",
		Long: "rapport scores how players perform together and against each other,\n" +
			"serves the leaderboards over HTTP and prints them from a dataset file.",
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Version: version,
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newTopCmd())
	root.AddCommand(newSeedCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
