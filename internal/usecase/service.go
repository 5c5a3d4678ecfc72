package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ContentPilot/internal/domain"
	"ContentPilot/internal/ports"
)

// ServiceDeps wires the pipeline and optional collaborators into the
// content-generation service.
type ServiceDeps struct {
	Pipeline  *Pipeline
	Deliverer ports.Deliverer
	Logger    *slog.Logger

	// DefaultSubject is the configured email subject used when a request
	// does not carry its own; empty means derive one from the topics.
	DefaultSubject string
}

// Service runs the pipeline for one request, wraps the output into a result
// envelope, and optionally hands it to the email collaborator.
type Service struct {
	pipeline       *Pipeline
	deliverer      ports.Deliverer
	logger         *slog.Logger
	defaultSubject string
}

// NewService constructs the orchestration component.
func NewService(deps ServiceDeps) *Service {
	return &Service{
		pipeline:       deps.Pipeline,
		deliverer:      deps.Deliverer,
		logger:         deps.Logger,
		defaultSubject: deps.DefaultSubject,
	}
}

// Generate validates the parameters, executes the three-task run, and
// returns the result envelope. Delivery failures are reported on the
// envelope; they never turn a successful generation into an error.
func (s *Service) Generate(ctx context.Context, params domain.ParameterSet) (domain.Envelope, error) {
	params = params.Normalize()
	if err := params.Validate(); err != nil {
		return domain.Envelope{}, err
	}

	s.info("starting content generation", "topics", strings.Join(params.ContentTopics, ", "))

	content, err := s.pipeline.Run(ctx, params)
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("generate content: %w", err)
	}

	generatedAt := time.Now().UTC().Truncate(time.Second)
	envelope := domain.NewEnvelope(content, params.ContentTopics, generatedAt)

	if params.Delivery != nil {
		s.deliver(ctx, params, &envelope, generatedAt)
	}

	return envelope, nil
}

func (s *Service) deliver(ctx context.Context, params domain.ParameterSet, envelope *domain.Envelope, generatedAt time.Time) {
	recipient := params.Delivery.Recipient
	if recipient == "" {
		envelope.MarkEmail(false, "email sending failed: recipient address is required")
		return
	}
	if s.deliverer == nil {
		envelope.MarkEmail(false, "email sending failed: delivery is not configured")
		return
	}

	subject := params.Delivery.Subject
	if subject == "" {
		subject = s.defaultSubject
	}
	if subject == "" {
		subject = deriveSubject(params.ContentTopics)
	}

	err := s.deliverer.Deliver(ctx, domain.Message{
		Recipient:    recipient,
		Subject:      subject,
		Content:      envelope.Content,
		Topics:       params.ContentTopics,
		ContentTypes: params.ContentTypes,
		GeneratedAt:  generatedAt,
	})
	if err != nil {
		s.warn("email delivery failed", "recipient", recipient, "error", err)
		envelope.MarkEmail(false, fmt.Sprintf("email sending failed: %v", err))
		return
	}

	s.info("email delivered", "recipient", recipient)
	envelope.MarkEmail(true, fmt.Sprintf("content successfully sent to %s", recipient))
}

// deriveSubject lists the first two topics and counts the rest.
func deriveSubject(topics []string) string {
	shown := topics
	if len(shown) > 2 {
		shown = shown[:2]
	}
	subject := "Your AI-Generated Content: " + strings.Join(shown, ", ")
	if rest := len(topics) - len(shown); rest > 0 {
		subject += fmt.Sprintf(" and %d more", rest)
	}
	return subject
}

func (s *Service) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Service) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
