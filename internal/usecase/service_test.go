package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"ContentPilot/internal/crew"
	"ContentPilot/internal/domain"
)

type stubDeliverer struct {
	err  error
	got  *domain.Message
	sent int
}

func (d *stubDeliverer) Deliver(_ context.Context, msg domain.Message) error {
	d.sent++
	if d.got != nil {
		*d.got = msg
	}
	return d.err
}

func newScriptedService(model *scriptedModel, deliverer *stubDeliverer) *Service {
	team := crew.NewTeam(model)
	deps := ServiceDeps{Pipeline: NewPipeline(team.Tasks(), 0, nil)}
	if deliverer != nil {
		deps.Deliverer = deliverer
	}
	return NewService(deps)
}

func rpwModel() *scriptedModel {
	return &scriptedModel{answers: map[string]string{
		"Researcher": "R", "Planner": "P", "Writer": "W",
	}}
}

func TestGenerateEnvelope(t *testing.T) {
	t.Parallel()

	svc := newScriptedService(rpwModel(), nil)

	envelope, err := svc.Generate(context.Background(), sampleParams())
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if envelope.Status != domain.StatusSuccess {
		t.Fatalf("unexpected status: %s", envelope.Status)
	}
	if envelope.Content != "W" {
		t.Fatalf("unexpected content: %q", envelope.Content)
	}
	if len(envelope.Topics) != 1 || envelope.Topics[0] != "Eco-Friendly Travel" {
		t.Fatalf("unexpected topics echo: %v", envelope.Topics)
	}
	if _, err := time.Parse(time.RFC3339, envelope.GeneratedAt); err != nil {
		t.Fatalf("generated_at is not RFC 3339: %q", envelope.GeneratedAt)
	}
	if envelope.EmailSent != nil || envelope.EmailStatus != "" {
		t.Fatal("email fields must be absent when delivery was not requested")
	}
}

func TestGenerateRejectsInvalidParams(t *testing.T) {
	t.Parallel()

	svc := newScriptedService(rpwModel(), nil)

	params := sampleParams()
	params.ContentTopics = nil

	_, err := svc.Generate(context.Background(), params)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var valErr *domain.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
}

func TestGenerateDeliversEmail(t *testing.T) {
	t.Parallel()

	var got domain.Message
	deliverer := &stubDeliverer{got: &got}
	svc := newScriptedService(rpwModel(), deliverer)

	params := sampleParams()
	params.Delivery = &domain.DeliveryRequest{Recipient: "X@Example.com"}

	envelope, err := svc.Generate(context.Background(), params)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if deliverer.sent != 1 {
		t.Fatalf("expected one delivery, got %d", deliverer.sent)
	}
	if got.Recipient != "x@example.com" {
		t.Fatalf("recipient not normalized: %q", got.Recipient)
	}
	if got.Content != "W" {
		t.Fatalf("delivered content mismatch: %q", got.Content)
	}
	if got.Subject != "Your AI-Generated Content: Eco-Friendly Travel" {
		t.Fatalf("unexpected default subject: %q", got.Subject)
	}

	if envelope.EmailSent == nil || !*envelope.EmailSent {
		t.Fatal("email_sent should be true")
	}
	if envelope.EmailStatus == "" {
		t.Fatal("email_status should be set")
	}
}

func TestGenerateSurvivesDeliveryFailure(t *testing.T) {
	t.Parallel()

	deliverer := &stubDeliverer{err: errors.New("smtp unreachable")}
	svc := newScriptedService(rpwModel(), deliverer)

	params := sampleParams()
	params.Delivery = &domain.DeliveryRequest{Recipient: "x@example.com"}

	envelope, err := svc.Generate(context.Background(), params)
	if err != nil {
		t.Fatalf("delivery failure must not fail generation: %v", err)
	}

	if envelope.Status != domain.StatusSuccess || envelope.Content != "W" {
		t.Fatalf("generation result was demoted: %+v", envelope)
	}
	if envelope.EmailSent == nil || *envelope.EmailSent {
		t.Fatal("email_sent should be false")
	}
	if envelope.EmailStatus == "" {
		t.Fatal("email_status should describe the failure")
	}
}

func TestGenerateDeliveryNeedsRecipient(t *testing.T) {
	t.Parallel()

	deliverer := &stubDeliverer{}
	svc := newScriptedService(rpwModel(), deliverer)

	params := sampleParams()
	params.Delivery = &domain.DeliveryRequest{}

	envelope, err := svc.Generate(context.Background(), params)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if deliverer.sent != 0 {
		t.Fatal("no delivery should be attempted without a recipient")
	}
	if envelope.EmailSent == nil || *envelope.EmailSent {
		t.Fatal("email_sent should be false")
	}
	if envelope.EmailStatus == "" {
		t.Fatal("email_status should explain the missing recipient")
	}
}

func TestGenerateConfiguredSubjectFallback(t *testing.T) {
	t.Parallel()

	var got domain.Message
	deliverer := &stubDeliverer{got: &got}
	team := crew.NewTeam(rpwModel())
	svc := NewService(ServiceDeps{
		Pipeline:       NewPipeline(team.Tasks(), 0, nil),
		Deliverer:      deliverer,
		DefaultSubject: "Weekly Content Drop",
	})

	params := sampleParams()
	params.Delivery = &domain.DeliveryRequest{Recipient: "x@example.com"}

	if _, err := svc.Generate(context.Background(), params); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got.Subject != "Weekly Content Drop" {
		t.Fatalf("configured subject not applied: %q", got.Subject)
	}

	params.Delivery.Subject = "Per-Request Subject"
	if _, err := svc.Generate(context.Background(), params); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got.Subject != "Per-Request Subject" {
		t.Fatalf("request subject must win over the configured one: %q", got.Subject)
	}
}

func TestGenerateStampsMessageWithGenerationTime(t *testing.T) {
	t.Parallel()

	var got domain.Message
	deliverer := &stubDeliverer{got: &got}
	svc := newScriptedService(rpwModel(), deliverer)

	params := sampleParams()
	params.Delivery = &domain.DeliveryRequest{Recipient: "x@example.com"}

	envelope, err := svc.Generate(context.Background(), params)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	want, err := time.Parse(time.RFC3339, envelope.GeneratedAt)
	if err != nil {
		t.Fatalf("generated_at is not RFC 3339: %q", envelope.GeneratedAt)
	}
	if !got.GeneratedAt.Equal(want) {
		t.Fatalf("message time %v disagrees with envelope time %v", got.GeneratedAt, want)
	}
}

func TestDeriveSubjectTruncatesTopics(t *testing.T) {
	t.Parallel()

	got := deriveSubject([]string{"A", "B", "C", "D"})
	want := "Your AI-Generated Content: A, B and 2 more"
	if got != want {
		t.Fatalf("unexpected subject: %q", got)
	}

	if got := deriveSubject([]string{"A", "B"}); got != "Your AI-Generated Content: A, B" {
		t.Fatalf("unexpected subject for two topics: %q", got)
	}
}
