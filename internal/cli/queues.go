// Package cli holds the queuectl operator commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/queuely/queue-service/internal/domain"
	"github.com/queuely/queue-service/internal/queuestate"
	"github.com/queuely/queue-service/internal/repository"
)

// Opener connects to the store. The returned func releases it.
type Opener func(ctx context.Context) (repository.QueueRepository, func(), error)

// ListCmd prints every stored queue.
func ListCmd(open Opener) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all queues with status, owner and waiting count",
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" && !domain.QueueStatus(status).Valid() {
				return fmt.Errorf("unknown status %q", status)
			}
			queues, closeFn, err := openAndList(cmd.Context(), open)
			if err != nil {
				return err
			}
			defer closeFn()

			out := cmd.OutOrStdout()
			shown := 0
			for i := range queues {
				q := &queues[i]
				if status != "" && string(q.Status) != status {
					continue
				}
				shown++
				fmt.Fprintf(out, "%d. %s - Status: %s - ID: %s - Created by: %s - Waiting: %d/%d\n",
					shown, q.Name, colorStatus(q.Status), q.ID, q.CreatedBy, len(q.Members), q.Capacity)
			}
			fmt.Fprintf(out, "Found %d queues\n", shown)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only show queues with this status (active, paused, completed)")
	return cmd
}

// ShowCmd prints one queue with its members and stats.
func ShowCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "show <queue-id>",
		Short: "Show a queue's members and statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := uuid.Parse(args[0]); err != nil {
				return fmt.Errorf("invalid queue id %q", args[0])
			}
			repo, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			q, err := repo.GetByID(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load queue %s: %w", args[0], err)
			}
			printQueue(cmd.OutOrStdout(), q)
			return nil
		},
	}
}

func openAndList(ctx context.Context, open Opener) ([]domain.Queue, func(), error) {
	repo, closeFn, err := open(ctx)
	if err != nil {
		return nil, nil, err
	}
	queues, err := repo.ListAll(ctx)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("failed to list queues: %w", err)
	}
	sort.SliceStable(queues, func(i, j int) bool {
		return queues[i].CreatedAt.After(queues[j].CreatedAt)
	})
	return queues, closeFn, nil
}

func printQueue(out io.Writer, q *domain.Queue) {
	fmt.Fprintf(out, "%s [%s]\n", q.Name, colorStatus(q.Status))
	fmt.Fprintf(out, "  ID:          %s\n", q.ID)
	fmt.Fprintf(out, "  Category:    %s\n", q.Category)
	fmt.Fprintf(out, "  Description: %s\n", q.Description)
	fmt.Fprintf(out, "  Owner:       %s\n", q.CreatedBy)
	fmt.Fprintf(out, "  Capacity:    %d/%d\n", len(q.Members), q.Capacity)
	fmt.Fprintf(out, "  Joined: %d  Served: %d  Avg wait: %d min\n",
		q.Stats.TotalJoined, q.Stats.TotalServed, q.Stats.AverageWaitTime)

	if len(q.Members) == 0 {
		fmt.Fprintln(out, "  (nobody waiting)")
		return
	}
	fmt.Fprintln(out, "  Waiting:")
	for _, m := range q.Members {
		fmt.Fprintf(out, "    %3d. %s  joined %s  ~%d min\n",
			m.Position, m.UserID, m.JoinedAt.Format("2006-01-02 15:04"), queuestate.EstimatedWaitTime(q, m.Position))
	}
}

func colorStatus(status domain.QueueStatus) string {
	switch status {
	case domain.QueueStatusActive:
		return color.New(color.FgGreen).Sprint(status)
	case domain.QueueStatusPaused:
		return color.New(color.FgYellow).Sprint(status)
	default:
		return color.New(color.FgRed).Sprint(status)
	}
}
