package crew

import (
	"context"
	"fmt"

	"ContentPilot/internal/domain"
	"ContentPilot/internal/ports"
	"ContentPilot/internal/prompt"
)

// Agent is a named reasoning role bound to the shared language model. The
// three agents are built once at startup and hold no per-run state, so they
// are shared across concurrent runs.
type Agent struct {
	Role      string
	Goal      string
	Backstory string

	// searchEnabled grants the agent the web-search tool. The writer is
	// deliberately built without it.
	searchEnabled bool
	model         ports.ModelClient
}

// HasSearchTool reports whether this agent may call web search.
func (a *Agent) HasSearchTool() bool {
	return a.searchEnabled
}

// Invoke submits the rendered prompt plus role framing and the outputs of
// previously completed tasks to the model. Single attempt; retry policy
// belongs to the caller.
func (a *Agent) Invoke(ctx context.Context, renderedPrompt string, priorContext []string) (string, error) {
	if a.model == nil {
		return "", fmt.Errorf("agent %s has no model client", a.Role)
	}

	return a.model.Invoke(ctx, domain.Invocation{
		Role:         a.Role,
		Goal:         a.Goal,
		Backstory:    a.Backstory,
		Prompt:       renderedPrompt,
		PriorContext: priorContext,
		AllowSearch:  a.searchEnabled,
	})
}

// Task binds a description template and an expected-output rubric to
// exactly one agent. Placeholders must name ParameterSet fields; Validate
// enforces that once at startup.
type Task struct {
	Name           string
	Description    string
	ExpectedOutput string
	Agent          *Agent
}

// Team is the fixed researcher/planner/writer trio.
type Team struct {
	Researcher *Agent
	Planner    *Agent
	Writer     *Agent
}

// NewTeam builds the three agents around a shared model client.
func NewTeam(model ports.ModelClient) Team {
	return Team{
		Researcher: &Agent{
			Role:          "Researcher",
			Goal:          "Find useful information",
			Backstory:     "You find helpful information online",
			searchEnabled: true,
			model:         model,
		},
		Planner: &Agent{
			Role:          "Planner",
			Goal:          "Make simple content plans",
			Backstory:     "You create easy-to-follow content plans",
			searchEnabled: true,
			model:         model,
		},
		Writer: &Agent{
			Role:      "Writer",
			Goal:      "Create engaging content",
			Backstory: "You write content people enjoy reading",
			model:     model,
		},
	}
}

// Tasks returns the ordered research -> plan -> write sequence. Task n+1
// builds on task n's output, so the order is fixed.
func (t Team) Tasks() []Task {
	return []Task{
		{
			Name: "research",
			Description: `Research these topics: {content_topics}

Find:
1. Current trends
2. What people want to know
3. Useful facts and examples

Keep it simple and practical.`,
			ExpectedOutput: "List of trends, audience interests, and useful facts",
			Agent:          t.Researcher,
		},
		{
			Name: "plan",
			Description: `Create a simple content plan for: {content_topics}

Include:
1. Topics to cover
2. Content types to create
3. When to publish each piece within: {timeline}
4. Goals for each content piece

The audience is: {target_audience}
The goals are: {business_goals}
The brand voice is: {brand_voice}`,
			ExpectedOutput: "Simple content plan with topics, a publication schedule, and goals",
			Agent:          t.Planner,
		},
		{
			Name: "write",
			Description: `Write content about: {content_topics}

Create:
1. One complete example of each content type listed: {content_types}
2. Make it appeal to: {target_audience}
3. Use this voice: {brand_voice}
4. Include helpful examples and tips

Additional notes: {additional_notes}`,
			ExpectedOutput: "Complete content examples ready to use",
			Agent:          t.Writer,
		},
	}
}

// ValidateTasks checks every task template against the known parameter
// fields. An unresolved placeholder is a configuration defect and fatal at
// startup.
func ValidateTasks(tasks []Task) error {
	known := domain.FieldNames()
	for _, task := range tasks {
		if err := prompt.Validate(task.Description, known); err != nil {
			return fmt.Errorf("task %s: %w", task.Name, err)
		}
	}
	return nil
}
