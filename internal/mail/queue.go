// AngelaMos | 2026
// queue.go

// Package mail renders and delivers transactional email off the request
// path through a bounded in-process queue.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/carterperez-dev/templates/blog-api/internal/config"
)

type Message struct {
	To       string
	Subject  string
	Template string
	Data     map[string]any
}

type Queue struct {
	cfg      config.MailConfig
	sender   Sender
	renderer *Renderer
	logger   *slog.Logger

	jobs   chan Message
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewQueue(
	cfg config.MailConfig,
	sender Sender,
	logger *slog.Logger,
) (*Queue, error) {
	if cfg.Workers < 1 || cfg.QueueSize < 1 {
		return nil, fmt.Errorf("mail queue needs at least one worker and slot")
	}

	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	return &Queue{
		cfg:      cfg,
		sender:   sender,
		renderer: renderer,
		logger:   logger,
		jobs:     make(chan Message, cfg.QueueSize),
	}, nil
}

func (q *Queue) Start() {
	for range q.cfg.Workers {
		q.wg.Add(1)
		go q.worker()
	}
}

// Enqueue hands msg to the workers without blocking. It reports false when
// the queue is full or closed; the message is then dropped.
func (q *Queue) Enqueue(msg Message) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.logger.Warn("mail dropped, queue closed",
			"to", msg.To,
			"template", msg.Template,
		)
		return false
	}

	select {
	case q.jobs <- msg:
		return true
	default:
		q.logger.Warn("mail dropped, queue full",
			"to", msg.To,
			"template", msg.Template,
			"queue_size", q.cfg.QueueSize,
		)
		return false
	}
}

// Stats reports the number of messages waiting for a worker and the
// queue capacity.
func (q *Queue) Stats() (pending, capacity int) {
	return len(q.jobs), cap(q.jobs)
}

// Close stops accepting messages and waits for queued ones to be sent or
// for ctx to end.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain mail queue: %w", ctx.Err())
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()

	for msg := range q.jobs {
		if err := q.deliver(msg); err != nil {
			q.logger.Error("mail delivery failed",
				"to", msg.To,
				"template", msg.Template,
				"error", err,
			)
		}
	}
}

func (q *Queue) deliver(msg Message) error {
	body, err := q.renderer.Render(msg.Template, msg.Data)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if q.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.cfg.SendTimeout)
		defer cancel()
	}

	return q.sender.Send(ctx, Envelope{
		From:    q.cfg.Sender,
		To:      msg.To,
		Subject: q.subject(msg.Subject),
		Body:    body,
	})
}

func (q *Queue) subject(s string) string {
	if q.cfg.SubjectPrefix == "" {
		return s
	}
	return q.cfg.SubjectPrefix + " " + s
}
