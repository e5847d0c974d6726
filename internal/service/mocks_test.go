package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/queuely/queue-service/pkg/util/errorutil"
)

type pushed struct {
	Channel string
	Message map[string]any
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []pushed
	err      error
}

func (p *recordingPublisher) Publish(ctx context.Context, channel string, message map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, pushed{Channel: channel, Message: message})
	return nil
}

func (p *recordingPublisher) sent() []pushed {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]pushed(nil), p.messages...)
}

func requireDomainError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, status, de.HTTPStatus)
	assert.Equal(t, code, de.Code)
}
