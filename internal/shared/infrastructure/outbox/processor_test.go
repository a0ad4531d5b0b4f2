package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/vaxsched/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu        sync.Mutex
	published []string
	failWith  error
}

func (p *capturePublisher) Publish(_ context.Context, routingKey string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWith != nil {
		return p.failWith
	}
	p.published = append(p.published, routingKey)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.published...)
}

func TestProcessor_ProcessOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes pending messages in order", func(t *testing.T) {
		repo := newTestRepo(t)
		pub := &capturePublisher{}
		metrics := observability.NewInMemoryMetrics()
		proc := NewProcessor(repo, pub, DefaultProcessorConfig(), nil, metrics)

		for i := 0; i < 3; i++ {
			msg, err := NewMessage(newStubEvent("Pfizer"))
			require.NoError(t, err)
			require.NoError(t, repo.Save(ctx, msg))
		}

		require.NoError(t, proc.ProcessOnce(ctx))

		assert.Len(t, pub.keys(), 3)

		remaining, err := repo.GetUnpublished(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, remaining)
	})

	t.Run("failed publish schedules a retry", func(t *testing.T) {
		repo := newTestRepo(t)
		pub := &capturePublisher{failWith: errors.New("broker down")}
		proc := NewProcessor(repo, pub, DefaultProcessorConfig(), nil, nil)

		msg, err := NewMessage(newStubEvent("Moderna"))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, msg))

		require.NoError(t, proc.ProcessOnce(ctx))

		// Backed off, so not immediately due again.
		due, err := repo.GetUnpublished(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, due)
	})

	t.Run("exhausted retries dead-letter the message", func(t *testing.T) {
		repo := newTestRepo(t)
		pub := &capturePublisher{failWith: errors.New("broker down")}
		cfg := DefaultProcessorConfig()
		cfg.MaxRetries = 1
		proc := NewProcessor(repo, pub, cfg, nil, nil)

		msg, err := NewMessage(newStubEvent("Moderna"))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, msg))

		require.NoError(t, proc.ProcessOnce(ctx))

		due, err := repo.GetUnpublished(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, due)

		// Publisher recovery must not resurrect a dead-lettered message.
		pub.mu.Lock()
		pub.failWith = nil
		pub.mu.Unlock()
		require.NoError(t, proc.ProcessOnce(ctx))
		assert.Empty(t, pub.keys())
	})
}

func TestProcessor_StartStop(t *testing.T) {
	repo := newTestRepo(t)
	pub := &capturePublisher{}
	cfg := DefaultProcessorConfig()
	cfg.PollInterval = 10 * time.Millisecond
	proc := NewProcessor(repo, pub, cfg, nil, nil)

	ctx := context.Background()
	msg, err := NewMessage(newStubEvent("Pfizer"))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, msg))

	require.NoError(t, proc.Start(ctx))
	assert.True(t, proc.IsRunning())

	require.Eventually(t, func() bool {
		return len(pub.keys()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	proc.Stop()
	assert.False(t, proc.IsRunning())
}

func TestProcessor_RetryBackoff(t *testing.T) {
	proc := NewProcessor(nil, nil, ProcessorConfig{
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
	}, nil, nil)

	assert.Equal(t, time.Second, proc.retryBackoff(1))
	assert.Equal(t, 2*time.Second, proc.retryBackoff(2))
	assert.Equal(t, 4*time.Second, proc.retryBackoff(3))
	assert.Equal(t, time.Minute, proc.retryBackoff(10))
	assert.Equal(t, time.Minute, proc.retryBackoff(100))
}
