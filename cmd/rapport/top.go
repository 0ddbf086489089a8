package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/okian/rapport/internal/adapters/provider"
	service "github.com/okian/rapport/internal/app"
	"github.com/okian/rapport/internal/domain/leaderboard"
	"github.com/okian/rapport/internal/domain/types"
	"github.com/okian/rapport/pkg/logger"
)

// Output formats for the top command.
const (
	formatASCII    = "ascii"
	formatMarkdown = "markdown"
	formatJSON     = "json"
)

type topFlags struct {
	dataset string
	limit   int
	format  string
}

func newTopCmd() *cobra.Command {
	var f topFlags
	cmd := &cobra.Command{
		Use:       "top <board>",
		Short:     "Print one leaderboard from a dataset file",
		Long:      "Boards: " + boardNames(),
		Args:      cobra.ExactArgs(1),
		ValidArgs: boardList(),
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := leaderboard.ParseBoard(args[0])
			if err != nil {
				return err
			}
			return runTop(cmd, board, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.dataset, "dataset", "dataset.yaml", "YAML or JSON dataset file")
	fl.IntVarP(&f.limit, "limit", "n", 10, "number of standings to print")
	fl.StringVar(&f.format, "format", formatASCII, "output format: ascii, markdown or json")
	return cmd
}

func runTop(cmd *cobra.Command, board leaderboard.Board, f topFlags) error {
	ctx := cmd.Context()
	p, err := provider.NewFileProvider(f.dataset)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	svc := service.New(p, service.WithLogger(logger.GetOrNop()))
	if _, err := svc.Refresh(ctx); err != nil {
		return err
	}
	view, err := svc.Leaderboard(ctx, board, f.limit)
	if err != nil {
		return err
	}
	return renderBoard(cmd.OutOrStdout(), view, f.format)
}

// renderBoard writes view in the requested format.
func renderBoard(w io.Writer, view types.LeaderboardView, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	case formatASCII, formatMarkdown:
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(view.Title)
	t.AppendHeader(table.Row{"#", "Players", "Score", "Games", "Key"})
	for _, s := range view.Standings {
		t.AppendRow(table.Row{s.Rank, strings.Join(s.Players, " + "), fmt.Sprintf("%.2f", s.Score), s.Games, s.Key})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	if format == formatMarkdown {
		t.RenderMarkdown()
		return nil
	}
	t.SetStyle(table.StyleLight)
	t.Style().Format.Footer = text.FormatDefault
	if len(view.Standings) == 0 {
		t.AppendFooter(table.Row{"", "no qualifying records"})
	}
	t.Render()
	return nil
}

func boardNames() string {
	return strings.Join(boardList(), ", ")
}

func boardList() []string {
	out := make([]string, len(leaderboard.Boards))
	for i, b := range leaderboard.Boards {
		out[i] = b.String()
	}
	return out
}
