package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/queuely/queue-service/internal/domain"
	"github.com/queuely/queue-service/internal/events"
	"github.com/queuely/queue-service/internal/notify"
)

// Message types pushed to user channels.
const (
	MessageYourTurn      = "queue_your_turn"
	MessagePosition      = "queue_position"
	MessageStatusChanged = "queue_status"
)

// NotificationService turns queue events into log lines and per-user pushes.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  notify.Publisher
	logger     *zap.Logger
}

// NewNotificationService creates the service. A nil publisher only logs.
func NewNotificationService(dispatcher events.Dispatcher, publisher notify.Publisher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventQueueCreated, n.handleQueueCreated)
	n.dispatcher.Subscribe(events.EventQueueDeleted, n.handleQueueDeleted)
	n.dispatcher.Subscribe(events.EventQueueStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventMemberJoined, n.handleMemberJoined)
	n.dispatcher.Subscribe(events.EventMemberLeft, n.handleMemberLeft)
	n.dispatcher.Subscribe(events.EventMemberCalled, n.handleMemberCalled)
}

func (n *NotificationService) handleQueueCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("QueueCreated", zap.String("queue_id", event.QueueID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleQueueDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("QueueDeleted", zap.String("queue_id", event.QueueID), zap.String("actor", event.Actor.UserID))
	return nil
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.QueueStatusChangedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("QueueStatusChanged",
		zap.String("queue_id", event.QueueID),
		zap.String("old_status", string(payload.OldStatus)),
		zap.String("new_status", string(payload.NewStatus)),
		zap.Int("waiting", len(payload.Waiting)))

	var errs []error
	for _, userID := range payload.Waiting {
		err := n.push(ctx, userID, map[string]any{
			"type":     MessageStatusChanged,
			"queue_id": event.QueueID,
			"status":   string(payload.NewStatus),
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (n *NotificationService) handleMemberJoined(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.MemberJoinedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("MemberJoined",
		zap.String("queue_id", event.QueueID),
		zap.String("user_id", payload.UserID),
		zap.Int("position", payload.Position))
	return n.push(ctx, payload.UserID, map[string]any{
		"type":     MessagePosition,
		"queue_id": event.QueueID,
		"position": payload.Position,
	})
}

func (n *NotificationService) handleMemberLeft(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.MemberLeftPayload)
	if !ok {
		return nil
	}
	n.logger.Info("MemberLeft",
		zap.String("queue_id", event.QueueID),
		zap.String("user_id", payload.UserID),
		zap.Int("previous_position", payload.PreviousPosition))
	return n.pushPositions(ctx, event.QueueID, payload.Remaining)
}

func (n *NotificationService) handleMemberCalled(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.MemberCalledPayload)
	if !ok {
		return nil
	}
	n.logger.Info("MemberCalled",
		zap.String("queue_id", event.QueueID),
		zap.String("user_id", payload.UserID),
		zap.Int("wait_time", payload.WaitTime))

	err := n.push(ctx, payload.UserID, map[string]any{
		"type":      MessageYourTurn,
		"queue_id":  event.QueueID,
		"wait_time": payload.WaitTime,
	})
	return errors.Join(err, n.pushPositions(ctx, event.QueueID, payload.Remaining))
}

func (n *NotificationService) pushPositions(ctx context.Context, queueID string, members []domain.Membership) error {
	var errs []error
	for _, m := range members {
		err := n.push(ctx, m.UserID, map[string]any{
			"type":     MessagePosition,
			"queue_id": queueID,
			"position": m.Position,
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (n *NotificationService) push(ctx context.Context, userID string, message map[string]any) error {
	if n.publisher == nil {
		return nil
	}
	channel := notify.UserChannel(userID)
	if err := n.publisher.Publish(ctx, channel, message); err != nil {
		n.logger.Warn("push failed", zap.String("channel", channel), zap.Error(err))
		return err
	}
	return nil
}
