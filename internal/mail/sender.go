// AngelaMos | 2026
// sender.go

package mail

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/blog-api/internal/config"
)

// Envelope is a fully rendered message ready for delivery.
type Envelope struct {
	From    string
	To      string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, env Envelope) error
}

// NewSender returns an SMTP sender, or a sender that only logs when no
// mail host is configured.
func NewSender(cfg config.MailConfig, logger *slog.Logger) Sender {
	if cfg.Host == "" {
		return &LogSender{logger: logger}
	}
	return &SMTPSender{cfg: cfg}
}

type SMTPSender struct {
	cfg config.MailConfig
}

func (s *SMTPSender) Send(ctx context.Context, env Envelope) error {
	from, err := mail.ParseAddress(env.From)
	if err != nil {
		return fmt.Errorf("parse sender: %w", err)
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, from.Address, []string{env.To}, buildMessage(env))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail to %s: %w", env.To, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send mail to %s: %w", env.To, ctx.Err())
	}
}

func buildMessage(env Envelope) []byte {
	var b strings.Builder

	b.WriteString("From: " + env.From + "\r\n")
	b.WriteString("To: " + env.To + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", env.Subject) + "\r\n")
	b.WriteString("Date: " + time.Now().UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("Message-ID: <" + uuid.New().String() + "@blog-api>\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(env.Body, "\n", "\r\n"))

	return []byte(b.String())
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	logger *slog.Logger
}

func (s *LogSender) Send(ctx context.Context, env Envelope) error {
	s.logger.InfoContext(ctx, "mail not delivered, no mail server configured",
		"to", env.To,
		"subject", env.Subject,
	)
	return nil
}
