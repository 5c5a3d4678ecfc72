package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"ContentPilot/internal/config"
	"ContentPilot/internal/domain"
	"ContentPilot/internal/ports"
)

const searchToolName = "search"

// Client implements ports.ModelClient using the official openai-go SDK.
// One client is shared by all agents; whether an invocation gets the search
// tool is decided per call.
type Client struct {
	model        string
	maxTokens    int
	temperature  float64
	maxToolCalls int
	search       ports.SearchProvider
	api          openai.Client
	logger       *slog.Logger
}

var _ ports.ModelClient = (*Client)(nil)

// New builds the shared model client. search may be nil when no provider is
// configured; agents then reason without the tool.
func New(cfg config.LLMConfig, search ports.SearchProvider, maxToolCalls int, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm api key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}

	if maxToolCalls <= 0 {
		maxToolCalls = 4
	}

	return &Client{
		model:        cfg.Model,
		maxTokens:    cfg.MaxTokens,
		temperature:  cfg.Temperature,
		maxToolCalls: maxToolCalls,
		search:       search,
		api:          openai.NewClient(opts...),
		logger:       logger,
	}, nil
}

// Invoke runs one chat-completion exchange for the agent. The model decides
// whether and how often to call the search tool, bounded by maxToolCalls;
// once the budget is spent the tool is withheld and the model must answer
// from the context it has.
func (c *Client) Invoke(ctx context.Context, inv domain.Invocation) (string, error) {
	msgs := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt(inv)),
	}
	if len(inv.PriorContext) > 0 {
		msgs = append(msgs, openai.UserMessage(contextBlock(inv.PriorContext)))
	}
	msgs = append(msgs, openai.UserMessage(inv.Prompt))

	toolEnabled := inv.AllowSearch && c.search != nil
	budget := c.maxToolCalls

	// One extra round lets the model produce its final answer after the
	// tool budget is exhausted.
	for round := 0; round <= c.maxToolCalls+1; round++ {
		params := openai.ChatCompletionNewParams{
			Model:    openai.ChatModel(c.model),
			Messages: msgs,
		}
		if c.maxTokens > 0 {
			params.MaxTokens = openai.Int(int64(c.maxTokens))
		}
		if c.temperature > 0 {
			params.Temperature = openai.Float(c.temperature)
		}
		if toolEnabled && budget > 0 {
			params.Tools = searchToolDefinition()
		}

		resp, err := c.api.Chat.Completions.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("model returned no choices")
		}

		message := resp.Choices[0].Message
		if len(message.ToolCalls) == 0 {
			answer := strings.TrimSpace(message.Content)
			if answer == "" {
				return "", errors.New("model returned empty content")
			}
			return answer, nil
		}

		msgs = append(msgs, message.ToParam())
		for _, call := range message.ToolCalls {
			msgs = append(msgs, openai.ToolMessage(c.runTool(ctx, inv.Role, call), call.ID))
			budget--
		}
	}

	return "", errors.New("model did not produce a final answer within the tool budget")
}

// runTool executes one search call. A failed search is degraded context for
// the agent, never an invocation error.
func (c *Client) runTool(ctx context.Context, role string, call openai.ChatCompletionMessageToolCallUnion) string {
	if call.Function.Name != searchToolName {
		return fmt.Sprintf("tool %s is not available", call.Function.Name)
	}

	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil || strings.TrimSpace(args.Query) == "" {
		return "search failed: the query argument is missing or malformed; continue with what you already know"
	}

	c.debug("search tool call", "role", role, "query", args.Query)

	results, err := c.search.Search(ctx, args.Query)
	if err != nil {
		c.debug("search tool failed", "role", role, "error", err)
		return fmt.Sprintf("search failed: %v; continue with the context you already have", err)
	}
	if len(results) == 0 {
		return "search returned no results"
	}

	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s\n%s\n%s\n\n", i+1, r.Title, r.URL, r.Snippet)
	}
	return strings.TrimSpace(sb.String())
}

func searchToolDefinition() []openai.ChatCompletionToolUnionParam {
	return []openai.ChatCompletionToolUnionParam{
		openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        searchToolName,
			Description: openai.String("Search the web for current information on a topic"),
			Parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "The search query",
					},
				},
				"required": []string{"query"},
			},
		}),
	}
}

func systemPrompt(inv domain.Invocation) string {
	return fmt.Sprintf("You are the %s. %s\nYour goal: %s.", inv.Role, inv.Backstory, inv.Goal)
}

func contextBlock(prior []string) string {
	var sb strings.Builder
	sb.WriteString("Output of the previous tasks, in order:\n")
	for i, out := range prior {
		fmt.Fprintf(&sb, "\n--- Task %d output ---\n%s\n", i+1, out)
	}
	return sb.String()
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
