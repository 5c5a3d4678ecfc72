package app

import (
	"context"
	"fmt"
	"log/slog"

	"ContentPilot/internal/config"
	"ContentPilot/internal/crew"
	"ContentPilot/internal/domain"
	"ContentPilot/internal/infrastructure/email"
	"ContentPilot/internal/infrastructure/llm"
	"ContentPilot/internal/infrastructure/search"
	"ContentPilot/internal/logging"
	"ContentPilot/internal/ports"
	"ContentPilot/internal/usecase"
)

// Application wires configs to the content-generation service.
type Application struct {
	cfg     config.Config
	service *usecase.Service
}

// New builds a runnable application instance. Agents, tasks, and the model
// client are constructed once here and shared across runs; task templates
// are validated before the first request can touch them.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := search.NewRegistry()
	registry.Register(search.NewTavilyProvider(cfg.Search))
	registry.Register(search.NewDuckDuckGoProvider(cfg.Search.MaxResults))

	provider, err := registry.Resolve(cfg.Search.Provider)
	if err != nil {
		return nil, fmt.Errorf("resolve search provider: %w", err)
	}

	model, err := llm.New(cfg.LLM, provider, cfg.Search.MaxCalls, logging.ForComponent(baseLogger, "llm"))
	if err != nil {
		return nil, fmt.Errorf("build model client: %w", err)
	}

	team := crew.NewTeam(model)
	tasks := team.Tasks()
	if err := crew.ValidateTasks(tasks); err != nil {
		return nil, fmt.Errorf("validate task templates: %w", err)
	}

	pipeline := usecase.NewPipeline(tasks, cfg.LLM.Timeout(), logging.ForComponent(baseLogger, "pipeline"))

	var deliverer ports.Deliverer
	if cfg.Email.Enabled() {
		deliverer = email.NewSender(cfg.Email)
	}

	service := usecase.NewService(usecase.ServiceDeps{
		Pipeline:       pipeline,
		Deliverer:      deliverer,
		Logger:         logging.ForComponent(baseLogger, "service"),
		DefaultSubject: cfg.Email.Subject,
	})

	return &Application{cfg: cfg, service: service}, nil
}

// Generate runs one content-generation request end to end.
func (a *Application) Generate(ctx context.Context, params domain.ParameterSet) (domain.Envelope, error) {
	return a.service.Generate(ctx, params)
}
