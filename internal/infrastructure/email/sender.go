package email

import (
	"context"
	"fmt"
	"net/smtp"

	"ContentPilot/internal/config"
	"ContentPilot/internal/domain"
	"ContentPilot/internal/ports"
)

// DeliveryError wraps a failed transmission. It surfaces on the result
// envelope; content generation itself is unaffected by it.
type DeliveryError struct {
	Recipient string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver to %s: %v", e.Recipient, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Sender delivers generated content over SMTP as a multipart
// HTML + plain-text message.
type Sender struct {
	host     string
	port     int
	username string
	password string
	from     string

	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

var _ ports.Deliverer = (*Sender)(nil)

// NewSender builds a sender from configuration.
func NewSender(cfg config.EmailConfig) *Sender {
	return &Sender{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		send:     smtp.SendMail,
	}
}

// Deliver renders and transmits the message. Honors context cancellation
// before dialing; the SMTP exchange itself is bounded by the server.
func (s *Sender) Deliver(ctx context.Context, msg domain.Message) error {
	if s.host == "" || s.from == "" {
		return &DeliveryError{Recipient: msg.Recipient, Err: fmt.Errorf("smtp sender misconfigured")}
	}
	if err := ctx.Err(); err != nil {
		return &DeliveryError{Recipient: msg.Recipient, Err: err}
	}

	raw, err := buildMIME(s.from, msg)
	if err != nil {
		return &DeliveryError{Recipient: msg.Recipient, Err: err}
	}

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	if err := s.send(addr, auth, s.from, []string{msg.Recipient}, raw); err != nil {
		return &DeliveryError{Recipient: msg.Recipient, Err: err}
	}

	return nil
}
