package domain

import "time"

// Invocation is a single model call on behalf of one agent. PriorContext
// carries the raw outputs of every task completed earlier in the run, in
// execution order.
type Invocation struct {
	Role      string
	Goal      string
	Backstory string
	Prompt    string

	PriorContext []string

	// AllowSearch grants the model the web-search tool for this call.
	// The writer agent never gets it.
	AllowSearch bool
}

// SearchResult is one entry returned by a web-search provider.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// Message is a finished piece of content addressed to a recipient.
// GeneratedAt is the same instant reported in the result envelope.
type Message struct {
	Recipient    string
	Subject      string
	Content      string
	Topics       []string
	ContentTypes string
	GeneratedAt  time.Time
}
