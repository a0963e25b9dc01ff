package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"geoplay-service/internal/config"
	"geoplay-service/internal/domain"
	"github.com/spf13/cobra"
)

// NewLeaderboardCmd prints the persisted top scores.
func NewLeaderboardCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the top scores from the configured storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printLeaderboard(cmd.Context(), cmd.OutOrStdout(), *configPath)
		},
	}
}

func printLeaderboard(ctx context.Context, out io.Writer, configPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	b, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	board, err := loadLeaderboard(ctx, b, cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	return writeLeaderboard(out, board.Entries())
}

func writeLeaderboard(out io.Writer, entries []domain.LeaderboardEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(out, "no games recorded")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSCORE\tACCURACY\tMODE\tDIFFICULTY\tDATE")
	for i, e := range entries {
		fmt.Fprintf(tw, "%d\t%d\t%d%%\t%s\t%s\t%s\n",
			i+1, e.Score, e.Accuracy, e.Mode, e.Difficulty, e.Date.Format("2006-01-02"))
	}
	return tw.Flush()
}
