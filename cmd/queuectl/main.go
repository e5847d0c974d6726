package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/queuely/queue-service/internal/cli"
	"github.com/queuely/queue-service/internal/config"
	"github.com/queuely/queue-service/internal/persistence"
	"github.com/queuely/queue-service/internal/repository"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "queuectl",
		Short: "Inspect queues stored by the queue service",
		Long: `queuectl reads queues straight from Postgres using the same POSTGRES_DSN
as the API server. It never modifies data.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cli.ListCmd(openStore))
	rootCmd.AddCommand(cli.ShowCmd(openStore))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context) (repository.QueueRepository, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, zap.NewNop())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect postgres: %w", err)
	}
	return repository.NewQueueRepository(pg.PoolHandle()), pg.Close, nil
}
