package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queuely/queue-service/internal/domain"
	"github.com/queuely/queue-service/internal/repository"
	"github.com/queuely/queue-service/internal/repository/repositorytest"
)

func seededOpener(t *testing.T) (Opener, *domain.Queue) {
	t.Helper()
	color.NoColor = true
	store := repositorytest.NewQueueStore()
	ctx := context.Background()

	active := &domain.Queue{
		Name:      "Clinic",
		Category:  domain.CategoryHealth,
		Capacity:  10,
		Status:    domain.QueueStatusActive,
		CreatedBy: "admin-1",
		Members: []domain.Membership{
			{UserID: "u-1", Position: 1, JoinedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)},
		},
	}
	require.NoError(t, store.Create(ctx, active))
	require.NoError(t, store.Create(ctx, &domain.Queue{
		Name: "Archive", Category: domain.CategoryOther, Capacity: 20,
		Status: domain.QueueStatusCompleted, CreatedBy: "admin-2",
	}))

	open := func(context.Context) (repository.QueueRepository, func(), error) {
		return store, func() {}, nil
	}
	return open, active
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestListCmd(t *testing.T) {
	open, active := seededOpener(t)

	out, err := run(t, ListCmd(open))
	require.NoError(t, err)
	assert.Contains(t, out, "Clinic - Status: active - ID: "+active.ID+" - Created by: admin-1 - Waiting: 1/10")
	assert.Contains(t, out, "Archive - Status: completed")
	assert.Contains(t, out, "Found 2 queues")

	out, err = run(t, ListCmd(open), "--status", "active")
	require.NoError(t, err)
	assert.NotContains(t, out, "Archive")
	assert.Contains(t, out, "Found 1 queues")

	_, err = run(t, ListCmd(open), "--status", "closed")
	assert.ErrorContains(t, err, "unknown status")
}

func TestShowCmd(t *testing.T) {
	open, active := seededOpener(t)

	out, err := run(t, ShowCmd(open), active.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Clinic [active]")
	assert.Contains(t, out, "Capacity:    1/10")
	assert.Contains(t, out, "u-1")
	assert.Contains(t, out, "~15 min")

	_, err = run(t, ShowCmd(open), "nope")
	assert.ErrorContains(t, err, "invalid queue id")

	_, err = run(t, ShowCmd(open), uuid.NewString())
	assert.ErrorContains(t, err, "failed to load queue")
}
