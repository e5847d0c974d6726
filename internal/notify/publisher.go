package notify

import (
	"context"
	"fmt"

	pubnub "github.com/pubnub/go/v7"

	"github.com/queuely/queue-service/internal/config"
)

// Publisher delivers a message to a single realtime channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, message map[string]any) error
}

// UserChannel is the channel a client subscribes to for its own updates.
func UserChannel(userID string) string {
	return fmt.Sprintf("user-%s", userID)
}

// PubNubPublisher pushes messages through PubNub.
type PubNubPublisher struct {
	pn *pubnub.PubNub
}

// NewPubNubPublisher returns nil when no keys are configured.
func NewPubNubPublisher(cfg config.NotificationConfig) *PubNubPublisher {
	if !cfg.PushEnabled() {
		return nil
	}
	pnConfig := pubnub.NewConfigWithUserId(pubnub.UserId(cfg.PubNubUserID))
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey
	return &PubNubPublisher{pn: pubnub.NewPubNub(pnConfig)}
}

func (p *PubNubPublisher) Publish(ctx context.Context, channel string, message map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, status, err := p.pn.Publish().
		Channel(channel).
		Message(message).
		Execute()
	if err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	if status.StatusCode >= 400 {
		return fmt.Errorf("publish to %s: status %d", channel, status.StatusCode)
	}
	return nil
}
