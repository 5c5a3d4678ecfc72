package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ContentPilot/internal/config"
	"ContentPilot/internal/domain"
)

const toolCallResponse = `{
	"id": "cmpl-1",
	"object": "chat.completion",
	"model": "gpt-4o-mini",
	"choices": [{
		"index": 0,
		"finish_reason": "tool_calls",
		"message": {
			"role": "assistant",
			"content": "",
			"tool_calls": [{
				"id": "call_1",
				"type": "function",
				"function": {"name": "search", "arguments": "{\"query\": \"eco travel trends\"}"}
			}]
		}
	}]
}`

const finalResponse = `{
	"id": "cmpl-2",
	"object": "chat.completion",
	"model": "gpt-4o-mini",
	"choices": [{
		"index": 0,
		"finish_reason": "stop",
		"message": {"role": "assistant", "content": "final research notes"}
	}]
}`

// fakeModelServer scripts an OpenAI-compatible endpoint: the first request
// is answered with a tool call, every later one with the final answer. It
// records each request body for assertions.
func fakeModelServer(t *testing.T) (*httptest.Server, *[]map[string]any) {
	t.Helper()

	var requests []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read request: %v", err)
		}

		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		requests = append(requests, body)

		w.Header().Set("Content-Type", "application/json")
		if len(requests) == 1 {
			_, _ = w.Write([]byte(toolCallResponse))
			return
		}
		_, _ = w.Write([]byte(finalResponse))
	}))

	return server, &requests
}

type fixedSearch struct {
	results []domain.SearchResult
	err     error
	queries []string
}

func (s *fixedSearch) Name() string { return "fixed" }

func (s *fixedSearch) Search(_ context.Context, query string) ([]domain.SearchResult, error) {
	s.queries = append(s.queries, query)
	return s.results, s.err
}

func newTestClient(t *testing.T, endpoint string, search *fixedSearch) *Client {
	t.Helper()

	client, err := New(config.LLMConfig{
		Endpoint:    endpoint,
		Model:       "gpt-4o-mini",
		APIKey:      "test-key",
		MaxTokens:   256,
		Temperature: 0.7,
	}, search, 4, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func researcherInvocation() domain.Invocation {
	return domain.Invocation{
		Role:        "Researcher",
		Goal:        "Find useful information",
		Backstory:   "You find helpful information online",
		Prompt:      "Research these topics: Eco-Friendly Travel",
		AllowSearch: true,
	}
}

func TestInvokeRunsSearchToolLoop(t *testing.T) {
	t.Parallel()

	server, requests := fakeModelServer(t)
	defer server.Close()

	search := &fixedSearch{results: []domain.SearchResult{
		{Title: "Eco Travel 2026", URL: "https://example.org/eco", Snippet: "Trends overview."},
	}}

	client := newTestClient(t, server.URL, search)

	out, err := client.Invoke(context.Background(), researcherInvocation())
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if out != "final research notes" {
		t.Fatalf("unexpected answer: %q", out)
	}

	if len(search.queries) != 1 || search.queries[0] != "eco travel trends" {
		t.Fatalf("unexpected search queries: %v", search.queries)
	}

	if len(*requests) != 2 {
		t.Fatalf("expected 2 model calls, got %d", len(*requests))
	}

	first := (*requests)[0]
	if _, ok := first["tools"]; !ok {
		t.Fatal("first request should declare the search tool")
	}

	second := (*requests)[1]
	toolMsg := findMessage(t, second, "tool")
	if !strings.Contains(toolMsg, "Eco Travel 2026") {
		t.Fatalf("tool result not forwarded to the model: %q", toolMsg)
	}
}

func TestInvokeSurvivesSearchFailure(t *testing.T) {
	t.Parallel()

	server, requests := fakeModelServer(t)
	defer server.Close()

	search := &fixedSearch{err: errors.New("connection refused")}
	client := newTestClient(t, server.URL, search)

	out, err := client.Invoke(context.Background(), researcherInvocation())
	if err != nil {
		t.Fatalf("a tool failure must not fail the invocation: %v", err)
	}
	if out != "final research notes" {
		t.Fatalf("unexpected answer: %q", out)
	}

	toolMsg := findMessage(t, (*requests)[1], "tool")
	if !strings.Contains(toolMsg, "search failed") {
		t.Fatalf("agent should see a failure description, got %q", toolMsg)
	}
}

func TestInvokeWithoutSearchDeclaresNoTools(t *testing.T) {
	t.Parallel()

	var requests []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		requests = append(requests, body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(finalResponse))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, &fixedSearch{})

	inv := researcherInvocation()
	inv.Role = "Writer"
	inv.AllowSearch = false
	inv.PriorContext = []string{"R", "P"}

	out, err := client.Invoke(context.Background(), inv)
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if out != "final research notes" {
		t.Fatalf("unexpected answer: %q", out)
	}

	if len(requests) != 1 {
		t.Fatalf("expected a single model call, got %d", len(requests))
	}
	if _, ok := requests[0]["tools"]; ok {
		t.Fatal("writer invocation must not declare tools")
	}

	prior := findMessage(t, requests[0], "user")
	if !strings.Contains(prior, "--- Task 1 output ---") || !strings.Contains(prior, "R") {
		t.Fatalf("prior context missing from messages: %q", prior)
	}
}

func TestInvokeEmptyContent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cmpl-3","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  "}}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)

	inv := researcherInvocation()
	inv.AllowSearch = false

	if _, err := client.Invoke(context.Background(), inv); err == nil {
		t.Fatal("expected error for empty model content")
	}
}

// findMessage returns the content of the first message with the given role
// from a recorded request body.
func findMessage(t *testing.T, request map[string]any, role string) string {
	t.Helper()

	msgs, ok := request["messages"].([]any)
	if !ok {
		t.Fatalf("request has no messages: %v", request)
	}

	for _, raw := range msgs {
		msg, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if msg["role"] != role {
			continue
		}
		if content, ok := msg["content"].(string); ok {
			return content
		}
	}

	t.Fatalf("no %s message found", role)
	return ""
}
