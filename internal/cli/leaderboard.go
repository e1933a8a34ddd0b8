package cli

import (
	"context"
	"errors"
	"log"

	"github.com/spf13/cobra"
	"quizo-service/internal/app"
	"quizo-service/internal/config"
)

// errLocalLeaderboard is returned when there is no shared projection to repair.
var errLocalLeaderboard = errors.New("leaderboard rebuild needs redis.addr: without it the projection lives in the server process and is restored from the ledger at start")

// NewLeaderboardCmd groups leaderboard maintenance.
func NewLeaderboardCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Leaderboard maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "rebuild",
		Short: "Re-project every total from the attempt ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			n, err := rebuildLeaderboard(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			log.Printf("rebuilt %d leaderboard entries", n)
			return nil
		},
	})
	return cmd
}

func rebuildLeaderboard(ctx context.Context, cfg config.Config) (int, error) {
	if cfg.Redis.Addr == "" {
		return 0, errLocalLeaderboard
	}
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return 0, err
	}
	defer b.Close()
	return app.NewLeaderboardService(b.leaderboard, b.attempts, b.users).Rebuild(ctx)
}
