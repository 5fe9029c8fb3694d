package mail

import (
	"context"
	"log/slog"
)

type Message struct {
	ToName  string
	ToEmail string
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of delivering them.
// Used when no SendGrid key is configured.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log.With(slog.String("component", "mail"))}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.log.Info("mail not delivered, no provider configured",
		slog.String("to", msg.ToEmail),
		slog.String("subject", msg.Subject),
		slog.String("text", msg.Text),
	)
	return nil
}
