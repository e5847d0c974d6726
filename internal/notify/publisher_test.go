package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/queuely/queue-service/internal/config"
)

func TestUserChannel(t *testing.T) {
	assert.Equal(t, "user-42", UserChannel("42"))
}

func TestNewPubNubPublisher(t *testing.T) {
	assert.Nil(t, NewPubNubPublisher(config.NotificationConfig{}))

	p := NewPubNubPublisher(config.NotificationConfig{
		PubNubPublishKey:   "pub-c-test",
		PubNubSubscribeKey: "sub-c-test",
		PubNubUserID:       "server",
	})
	assert.NotNil(t, p)
}
