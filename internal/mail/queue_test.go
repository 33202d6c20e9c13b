// AngelaMos | 2026
// queue_test.go

package mail

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/blog-api/internal/config"
)

type recordingSender struct {
	mu    sync.Mutex
	sent  []Envelope
	gate  chan struct{}
	fail  bool
	calls int
}

func (s *recordingSender) Send(ctx context.Context, env Envelope) error {
	if s.gate != nil {
		<-s.gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.fail {
		return errors.New("smtp unavailable")
	}
	s.sent = append(s.sent, env)
	return nil
}

func (s *recordingSender) Sent() []Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Envelope(nil), s.sent...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(workers, size int) config.MailConfig {
	return config.MailConfig{
		Sender:        "Blog Admin <blog@example.com>",
		SubjectPrefix: "[Blog]",
		Workers:       workers,
		QueueSize:     size,
		SendTimeout:   time.Second,
	}
}

func TestQueueDeliversRenderedMessage(t *testing.T) {
	sender := &recordingSender{}
	q, err := NewQueue(testConfig(1, 4), sender, discardLogger())
	require.NoError(t, err)
	q.Start()

	ok := q.Enqueue(Message{
		To:       "bin@example.com",
		Subject:  "Confirm Your Account",
		Template: TemplateConfirm,
		Data:     map[string]any{"Username": "bin", "Token": "tok-123"},
	})
	require.True(t, ok)
	require.NoError(t, q.Close(context.Background()))

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "bin@example.com", sent[0].To)
	assert.Equal(t, "[Blog] Confirm Your Account", sent[0].Subject)
	assert.Equal(t, "Blog Admin <blog@example.com>", sent[0].From)
	assert.Contains(t, sent[0].Body, "Dear bin,")
	assert.Contains(t, sent[0].Body, "tok-123")
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	sender := &recordingSender{gate: make(chan struct{})}
	q, err := NewQueue(testConfig(1, 1), sender, discardLogger())
	require.NoError(t, err)

	msg := Message{To: "a@example.com", Template: TemplateNewUser}

	assert.True(t, q.Enqueue(msg))
	assert.False(t, q.Enqueue(msg))

	pending, capacity := q.Stats()
	assert.Equal(t, 1, pending)
	assert.Equal(t, 1, capacity)

	q.Start()
	close(sender.gate)
	require.NoError(t, q.Close(context.Background()))
	assert.Len(t, sender.Sent(), 1)
}

func TestEnqueueAfterCloseIsDropped(t *testing.T) {
	q, err := NewQueue(testConfig(1, 1), &recordingSender{}, discardLogger())
	require.NoError(t, err)
	q.Start()

	require.NoError(t, q.Close(context.Background()))
	assert.False(t, q.Enqueue(Message{To: "a@example.com", Template: TemplateNewUser}))
	require.NoError(t, q.Close(context.Background()))
}

func TestDeliveryFailureDoesNotStopWorkers(t *testing.T) {
	sender := &recordingSender{fail: true}
	q, err := NewQueue(testConfig(2, 8), sender, discardLogger())
	require.NoError(t, err)
	q.Start()

	for range 5 {
		q.Enqueue(Message{To: "a@example.com", Template: TemplateNewUser})
	}
	require.NoError(t, q.Close(context.Background()))

	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Equal(t, 5, sender.calls)
}

func TestUnknownTemplateIsNotSent(t *testing.T) {
	sender := &recordingSender{}
	q, err := NewQueue(testConfig(1, 1), sender, discardLogger())
	require.NoError(t, err)
	q.Start()

	q.Enqueue(Message{To: "a@example.com", Template: "missing"})
	require.NoError(t, q.Close(context.Background()))
	assert.Empty(t, sender.Sent())
}

func TestNewQueueRejectsZeroWorkers(t *testing.T) {
	_, err := NewQueue(testConfig(0, 1), &recordingSender{}, discardLogger())
	assert.Error(t, err)
}

func TestRenderAllTemplates(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	for _, name := range []string{
		TemplateConfirm,
		TemplateResetPassword,
		TemplateChangeEmail,
		TemplateNewUser,
	} {
		body, err := r.Render(name, map[string]any{
			"Username": "cat",
			"Email":    "cat@example.com",
			"Token":    "tok",
		})
		require.NoError(t, err, name)
		assert.Contains(t, body, "cat", name)
	}
}
