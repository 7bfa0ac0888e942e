package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	// EnvInferenceBaseURL overrides the inference endpoint base URL.
	EnvInferenceBaseURL = "INFERENCE_BASE_URL"

	// EnvInferenceAPIKey overrides the inference endpoint API key.
	EnvInferenceAPIKey = "INFERENCE_API_KEY"

	// EnvInferenceModel overrides the chat model name.
	EnvInferenceModel = "INFERENCE_MODEL"

	// EnvInferenceVisionModel overrides the vision model name.
	EnvInferenceVisionModel = "INFERENCE_VISION_MODEL"
)

// InferenceConfig contains the inference endpoint configuration.
type InferenceConfig struct {
	// BaseURL points at an OpenAI-compatible endpoint. Empty uses the
	// client library default.
	BaseURL string `toml:"base_url"`

	APIKey      string `toml:"api_key"`
	Model       string `toml:"model"`
	VisionModel string `toml:"vision_model"`

	// Temperature is the fixed sampling temperature for the per-batch call.
	Temperature float32 `toml:"temperature"`

	// MaxOutputTokens caps generated output length.
	MaxOutputTokens int `toml:"max_output_tokens"`
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *InferenceConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *InferenceConfig) Merge(overlay *InferenceConfig) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.VisionModel != "" {
		c.VisionModel = overlay.VisionModel
	}
	if overlay.Temperature != 0 {
		c.Temperature = overlay.Temperature
	}
	if overlay.MaxOutputTokens != 0 {
		c.MaxOutputTokens = overlay.MaxOutputTokens
	}
}

func (c *InferenceConfig) loadDefaults() {
	if c.Model == "" {
		c.Model = "gpt-4o"
	}
	if c.VisionModel == "" {
		c.VisionModel = c.Model
	}
	if c.Temperature == 0 {
		c.Temperature = 0.2
	}
	if c.MaxOutputTokens == 0 {
		c.MaxOutputTokens = 8192
	}
}

func (c *InferenceConfig) loadEnv() {
	if v := os.Getenv(EnvInferenceBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvInferenceAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvInferenceModel); v != "" {
		c.Model = v
	}
	if v := os.Getenv(EnvInferenceVisionModel); v != "" {
		c.VisionModel = v
	}
}

func (c *InferenceConfig) validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api_key required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature out of range: %s", strconv.FormatFloat(float64(c.Temperature), 'f', -1, 32))
	}
	if c.MaxOutputTokens < 1 {
		return fmt.Errorf("max_output_tokens must be positive")
	}
	return nil
}
