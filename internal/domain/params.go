package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	maxTopics         = 5
	maxLongFieldLen   = 500
	maxShortFieldLen  = 200
	topicsField       = "content_topics"
	goalsField        = "business_goals"
	audienceField     = "target_audience"
	timelineField     = "timeline"
	contentTypesField = "content_types"
	brandVoiceField   = "brand_voice"
	notesField        = "additional_notes"
)

// ParameterSet is the caller-supplied input shared by every task in a run.
// It is constructed once per run and never mutated afterwards.
type ParameterSet struct {
	ContentTopics   []string
	BusinessGoals   string
	TargetAudience  string
	Timeline        string
	ContentTypes    string
	BrandVoice      string
	AdditionalNotes string

	// Delivery is nil unless the caller asked for the result to be emailed.
	Delivery *DeliveryRequest
}

// DeliveryRequest carries the optional email opt-in attached to a run.
type DeliveryRequest struct {
	Recipient string
	Subject   string
}

// ValidationError reports a malformed ParameterSet field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalidField(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Normalize trims whitespace from every field and lowercases the recipient
// address. Returns a copy; the receiver is left untouched.
func (p ParameterSet) Normalize() ParameterSet {
	topics := make([]string, 0, len(p.ContentTopics))
	for _, t := range p.ContentTopics {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			topics = append(topics, trimmed)
		}
	}

	out := ParameterSet{
		ContentTopics:   topics,
		BusinessGoals:   strings.TrimSpace(p.BusinessGoals),
		TargetAudience:  strings.TrimSpace(p.TargetAudience),
		Timeline:        strings.TrimSpace(p.Timeline),
		ContentTypes:    strings.TrimSpace(p.ContentTypes),
		BrandVoice:      strings.TrimSpace(p.BrandVoice),
		AdditionalNotes: strings.TrimSpace(p.AdditionalNotes),
	}

	if p.Delivery != nil {
		out.Delivery = &DeliveryRequest{
			Recipient: strings.ToLower(strings.TrimSpace(p.Delivery.Recipient)),
			Subject:   strings.TrimSpace(p.Delivery.Subject),
		}
	}

	return out
}

// Validate checks the ParameterSet invariants. The API boundary is expected
// to reject malformed input before a run starts; this is the defensive
// re-check the pipeline performs anyway.
func (p ParameterSet) Validate() error {
	if len(p.ContentTopics) == 0 {
		return invalidField(topicsField, "at least one topic is required")
	}
	if len(p.ContentTopics) > maxTopics {
		return invalidField(topicsField, fmt.Sprintf("at most %d topics are allowed", maxTopics))
	}
	for _, topic := range p.ContentTopics {
		if strings.TrimSpace(topic) == "" {
			return invalidField(topicsField, "topics must be non-empty")
		}
	}

	required := []struct {
		name  string
		value string
		limit int
	}{
		{goalsField, p.BusinessGoals, maxLongFieldLen},
		{audienceField, p.TargetAudience, maxLongFieldLen},
		{timelineField, p.Timeline, maxShortFieldLen},
		{contentTypesField, p.ContentTypes, maxShortFieldLen},
		{brandVoiceField, p.BrandVoice, maxShortFieldLen},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return invalidField(field.name, "must not be empty")
		}
		if utf8.RuneCountInString(field.value) > field.limit {
			return invalidField(field.name, fmt.Sprintf("must not exceed %d characters", field.limit))
		}
	}

	if utf8.RuneCountInString(p.AdditionalNotes) > maxLongFieldLen {
		return invalidField(notesField, fmt.Sprintf("must not exceed %d characters", maxLongFieldLen))
	}

	if p.Delivery != nil && p.Delivery.Recipient != "" {
		if _, err := mail.ParseAddress(p.Delivery.Recipient); err != nil {
			return invalidField("recipient_email", "must be a valid email address")
		}
	}

	return nil
}

// Fields exposes the parameter values under their template placeholder
// names. The topics list is joined into a human-readable string.
func (p ParameterSet) Fields() map[string]string {
	return map[string]string{
		topicsField:       strings.Join(p.ContentTopics, ", "),
		goalsField:        p.BusinessGoals,
		audienceField:     p.TargetAudience,
		timelineField:     p.Timeline,
		contentTypesField: p.ContentTypes,
		brandVoiceField:   p.BrandVoice,
		notesField:        p.AdditionalNotes,
	}
}

// FieldNames enumerates every placeholder a task template may reference.
func FieldNames() []string {
	return []string{
		topicsField,
		goalsField,
		audienceField,
		timelineField,
		contentTypesField,
		brandVoiceField,
		notesField,
	}
}
