package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv   = "CONTENTPILOT_CONFIG"
	openAIKeyEnv    = "OPENAI_API_KEY"
	openAIModelEnv  = "OPENAI_MODEL"
	tavilyKeyEnv    = "TAVILY_API_KEY"
	smtpUsernameEnv = "SMTP_USERNAME"
	smtpPasswordEnv = "SMTP_PASSWORD"
	smtpFromEnv     = "SMTP_FROM"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	LLM     LLMConfig     `yaml:"llm"`
	Search  SearchConfig  `yaml:"search"`
	Email   EmailConfig   `yaml:"email"`
}

// LoggingConfig controls log output verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// LLMConfig defines how to contact the language-model API shared by all agents.
type LLMConfig struct {
	Endpoint       string  `yaml:"endpoint"`
	Model          string  `yaml:"model"`
	APIKey         string  `yaml:"apiKey"`
	MaxTokens      int     `yaml:"maxTokens"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeoutSeconds"`
}

// Timeout bounds a single agent invocation.
func (l LLMConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds) * time.Second
}

// SearchConfig describes the web-search provider agents may call as a tool.
type SearchConfig struct {
	Provider   string `yaml:"provider"`
	Endpoint   string `yaml:"endpoint"`
	APIKey     string `yaml:"apiKey"`
	MaxResults int    `yaml:"maxResults"`
	Depth      string `yaml:"depth"`
	MaxCalls   int    `yaml:"maxCalls"`
}

// EmailConfig wires all data required to deliver generated content over SMTP.
type EmailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	Subject  string `yaml:"subject"`
}

// Enabled reports whether outbound email is configured at all.
func (e EmailConfig) Enabled() bool {
	return e.Host != "" && e.From != ""
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(openAIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}

	if v := os.Getenv(openAIModelEnv); v != "" {
		c.LLM.Model = v
	}

	if v := os.Getenv(tavilyKeyEnv); v != "" {
		c.Search.APIKey = v
	}

	if v := os.Getenv(smtpUsernameEnv); v != "" {
		c.Email.Username = v
	}

	if v := os.Getenv(smtpPasswordEnv); v != "" {
		c.Email.Password = v
	}

	if v := os.Getenv(smtpFromEnv); v != "" {
		c.Email.From = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.LLM.Endpoint != "" {
		base.LLM.Endpoint = override.LLM.Endpoint
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.MaxTokens > 0 {
		base.LLM.MaxTokens = override.LLM.MaxTokens
	}
	if override.LLM.Temperature > 0 {
		base.LLM.Temperature = override.LLM.Temperature
	}
	if override.LLM.TimeoutSeconds > 0 {
		base.LLM.TimeoutSeconds = override.LLM.TimeoutSeconds
	}

	if override.Search.Provider != "" {
		base.Search.Provider = override.Search.Provider
	}
	if override.Search.Endpoint != "" {
		base.Search.Endpoint = override.Search.Endpoint
	}
	if override.Search.APIKey != "" {
		base.Search.APIKey = override.Search.APIKey
	}
	if override.Search.MaxResults > 0 {
		base.Search.MaxResults = override.Search.MaxResults
	}
	if override.Search.Depth != "" {
		base.Search.Depth = override.Search.Depth
	}
	if override.Search.MaxCalls > 0 {
		base.Search.MaxCalls = override.Search.MaxCalls
	}

	if override.Email.Host != "" {
		base.Email.Host = override.Email.Host
	}
	if override.Email.Port > 0 {
		base.Email.Port = override.Email.Port
	}
	if override.Email.Username != "" {
		base.Email.Username = override.Email.Username
	}
	if override.Email.Password != "" {
		base.Email.Password = override.Email.Password
	}
	if override.Email.From != "" {
		base.Email.From = override.Email.From
	}
	if override.Email.Subject != "" {
		base.Email.Subject = override.Email.Subject
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		LLM: LLMConfig{
			Model:          "gpt-4o-mini",
			MaxTokens:      4096,
			Temperature:    0.7,
			TimeoutSeconds: 180,
		},
		Search: SearchConfig{
			Provider:   "tavily",
			Endpoint:   "https://api.tavily.com/search",
			MaxResults: 3,
			Depth:      "advanced",
			MaxCalls:   4,
		},
		Email: EmailConfig{
			Host:    "smtp.gmail.com",
			Port:    587,
			Subject: "",
		},
	}
}
