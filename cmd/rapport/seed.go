package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/rapport/internal/seed"
)

func newSeedCmd() *cobra.Command {
	var (
		out string
		cfg seed.Config
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a synthetic dataset for the file provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "-" {
				return seed.Write(cmd.Context(), cmd.OutOrStdout(), cfg)
			}
			if err := seed.WriteFile(cmd.Context(), out, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&out, "out", "o", "dataset.yaml", "output path, - for stdout")
	f.IntVar(&cfg.Players, "players", 12, "player pool size")
	f.IntVar(&cfg.MaxGames, "max-games", 40, "most games any two players shared")
	f.Uint64Var(&cfg.Seed, "seed", 1, "random seed")
	return cmd
}
