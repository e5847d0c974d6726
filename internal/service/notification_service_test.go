package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queuely/queue-service/internal/domain"
	"github.com/queuely/queue-service/internal/events"
)

func TestNotificationService_MemberCalled(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	publisher := &recordingPublisher{}
	NewNotificationService(dispatcher, publisher, nil).RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventMemberCalled,
		QueueID: "q-1",
		Payload: events.MemberCalledPayload{
			UserID:   "a",
			Position: 1,
			WaitTime: 7,
			Remaining: []domain.Membership{
				{UserID: "b", Position: 1},
				{UserID: "c", Position: 2},
			},
		},
	})
	require.NoError(t, err)

	sent := publisher.sent()
	require.Len(t, sent, 3)
	assert.Equal(t, "user-a", sent[0].Channel)
	assert.Equal(t, MessageYourTurn, sent[0].Message["type"])
	assert.Equal(t, "user-c", sent[2].Channel)
	assert.Equal(t, 2, sent[2].Message["position"])
}

func TestNotificationService_NilPublisherOnlyLogs(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, nil, nil).RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventMemberJoined,
		QueueID: "q-1",
		Payload: events.MemberJoinedPayload{UserID: "a", Position: 1},
	})
	assert.NoError(t, err)
}

func TestNotificationService_PushFailureIsReported(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	publisher := &recordingPublisher{err: errors.New("pubnub unavailable")}
	NewNotificationService(dispatcher, publisher, nil).RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventMemberLeft,
		QueueID: "q-1",
		Payload: events.MemberLeftPayload{
			UserID:           "a",
			PreviousPosition: 1,
			Remaining:        []domain.Membership{{UserID: "b", Position: 1}},
		},
	})
	assert.ErrorContains(t, err, "pubnub unavailable")
}

func TestNotificationService_StatusChangedReachesWaitingMembers(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	publisher := &recordingPublisher{}
	NewNotificationService(dispatcher, publisher, nil).RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventQueueStatusChanged,
		QueueID: "q-1",
		Payload: events.QueueStatusChangedPayload{
			OldStatus: domain.QueueStatusActive,
			NewStatus: domain.QueueStatusPaused,
			Waiting:   []string{"a", "b"},
		},
	})
	require.NoError(t, err)

	sent := publisher.sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "user-a", sent[0].Channel)
	assert.Equal(t, "user-b", sent[1].Channel)
	assert.Equal(t, MessageStatusChanged, sent[1].Message["type"])
	assert.Equal(t, "q-1", sent[1].Message["queue_id"])
	assert.Equal(t, "paused", sent[1].Message["status"])
}
