package domain

import "time"

// Run statuses reported to the caller.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the uniform result wrapper handed back to the caller once a
// run completes. Content carries the writer task's raw output unchanged.
type Envelope struct {
	Status      string   `json:"status"`
	Content     string   `json:"content"`
	GeneratedAt string   `json:"generated_at"`
	Topics      []string `json:"topics"`

	// Email fields are present only when delivery was requested.
	EmailSent   *bool  `json:"email_sent,omitempty"`
	EmailStatus string `json:"email_status,omitempty"`
}

// NewEnvelope wraps raw pipeline output into a success envelope. The content
// string is carried verbatim; it is never re-parsed or re-templated.
func NewEnvelope(content string, topics []string, generatedAt time.Time) Envelope {
	return Envelope{
		Status:      StatusSuccess,
		Content:     content,
		GeneratedAt: generatedAt.Format(time.RFC3339),
		Topics:      topics,
	}
}

// MarkEmail records the delivery outcome on the envelope. A failed delivery
// never demotes a successful generation.
func (e *Envelope) MarkEmail(sent bool, status string) {
	e.EmailSent = &sent
	e.EmailStatus = status
}
