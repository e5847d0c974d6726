package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher_PublishInvokesAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string

	d.Subscribe(EventMemberJoined, func(ctx context.Context, e Event) error {
		calls = append(calls, "first")
		return errors.New("first failed")
	})
	d.Subscribe(EventMemberJoined, func(ctx context.Context, e Event) error {
		calls = append(calls, "second:"+e.QueueID)
		return nil
	})
	d.Subscribe(EventMemberLeft, func(ctx context.Context, e Event) error {
		calls = append(calls, "unrelated")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventMemberJoined, QueueID: "q-1"})

	assert.ErrorContains(t, err, "first failed")
	assert.Equal(t, []string{"first", "second:q-1"}, calls)
}

func TestDispatcher_NoSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventQueueDeleted}))
}
