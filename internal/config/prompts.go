package config

import (
	"fmt"
	"os"
	"time"
)

const (
	// EnvPromptsBaseURL overrides the prompt registry base URL.
	EnvPromptsBaseURL = "PROMPTS_BASE_URL"

	// EnvPromptsAPIKey overrides the prompt registry API key.
	EnvPromptsAPIKey = "PROMPTS_API_KEY"

	// EnvPromptsProjectTag overrides the project tag filter.
	EnvPromptsProjectTag = "PROMPTS_PROJECT_TAG"
)

// PromptsConfig contains prompt registry configuration.
type PromptsConfig struct {
	// BaseURL is the prompt registry HTTP endpoint.
	BaseURL string `toml:"base_url"`

	APIKey string `toml:"api_key"`

	// ProjectTag scopes registry lookups to this project's prompts.
	ProjectTag string `toml:"project_tag"`

	// ListLimit caps the number of prompts fetched per lookup.
	ListLimit int `toml:"list_limit"`

	RequestTimeout string `toml:"request_timeout"`
}

// RequestTimeoutDuration parses and returns the registry request timeout.
func (c *PromptsConfig) RequestTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RequestTimeout)
	return d
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *PromptsConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *PromptsConfig) Merge(overlay *PromptsConfig) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.ProjectTag != "" {
		c.ProjectTag = overlay.ProjectTag
	}
	if overlay.ListLimit != 0 {
		c.ListLimit = overlay.ListLimit
	}
	if overlay.RequestTimeout != "" {
		c.RequestTimeout = overlay.RequestTimeout
	}
}

func (c *PromptsConfig) loadDefaults() {
	if c.ProjectTag == "" {
		c.ProjectTag = "docuglot"
	}
	if c.ListLimit == 0 {
		c.ListLimit = 100
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = "10s"
	}
}

func (c *PromptsConfig) loadEnv() {
	if v := os.Getenv(EnvPromptsBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvPromptsAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvPromptsProjectTag); v != "" {
		c.ProjectTag = v
	}
}

func (c *PromptsConfig) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url required")
	}
	if c.ListLimit < 1 {
		return fmt.Errorf("list_limit must be positive")
	}
	if _, err := time.ParseDuration(c.RequestTimeout); err != nil {
		return fmt.Errorf("invalid request_timeout: %w", err)
	}
	return nil
}
