package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"ContentPilot/internal/app"
	"ContentPilot/internal/config"
	"ContentPilot/internal/domain"
	"ContentPilot/internal/logging"
)

func main() {
	topics := flag.String("topics", "", "comma-separated content topics (1-5)")
	goals := flag.String("goals", "", "what the content should achieve")
	audience := flag.String("audience", "", "who the content is for")
	timeline := flag.String("timeline", "Weekly for one month", "publication timeline")
	types := flag.String("types", "Blog posts, Social media posts", "content types, comma-joined")
	voice := flag.String("voice", "Friendly and helpful", "brand voice")
	notes := flag.String("notes", "", "additional notes")
	emailTo := flag.String("email-to", "", "send the result to this address")
	emailSubject := flag.String("email-subject", "", "override the generated email subject")
	flag.Parse()

	if *topics == "" || *goals == "" || *audience == "" {
		fmt.Fprintln(os.Stderr, "-topics, -goals, and -audience are required")
		os.Exit(1)
	}

	ctx := context.Background()
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	params := domain.ParameterSet{
		ContentTopics:   splitTopics(*topics),
		BusinessGoals:   *goals,
		TargetAudience:  *audience,
		Timeline:        *timeline,
		ContentTypes:    *types,
		BrandVoice:      *voice,
		AdditionalNotes: *notes,
	}
	if *emailTo != "" {
		params.Delivery = &domain.DeliveryRequest{
			Recipient: *emailTo,
			Subject:   *emailSubject,
		}
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	envelope, err := application.Generate(ctx, params)
	if err != nil {
		logger.Error("content generation failed", "error", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}

	fmt.Println(string(out))
}

func splitTopics(raw string) []string {
	parts := strings.Split(raw, ",")
	topics := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			topics = append(topics, trimmed)
		}
	}
	return topics
}
