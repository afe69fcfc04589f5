package notification

import (
	"context"

	"go.uber.org/zap"
)

// Channel is the delivery channel for a notification.
type Channel string

const (
	ChannelEmail Channel = "EMAIL"
	ChannelSMS   Channel = "PHONE_NUMBER"
)

// Template selects which message the delivery collaborator renders.
type Template string

const (
	TemplateSignupOTP Template = "signup-otp"
	TemplateResetOTP  Template = "reset-password-otp"
	TemplateLoginOTP  Template = "login-otp"
)

// Message is a notification to deliver to a user's contact address.
type Message struct {
	Channel   Channel
	Recipient string
	Template  Template
	Data      map[string]string
}

// Publisher delivers notifications. Callers invoke Publish fire-and-forget:
// delivery failures never fail the calling flow, and any retry or queue
// policy belongs to the publisher implementation.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// LogPublisher is the default publisher. It only records the dispatch; real
// email/SMS delivery is an external collaborator wired in deployment.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a log-backed publisher
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the notification dispatch
func (p *LogPublisher) Publish(ctx context.Context, msg Message) error {
	p.logger.Info("notification dispatched",
		zap.String("channel", string(msg.Channel)),
		zap.String("recipient", msg.Recipient),
		zap.String("template", string(msg.Template)),
	)
	return nil
}
