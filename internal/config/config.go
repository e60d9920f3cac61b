// Package config holds the user-adjustable application settings:
// timer durations, long-break interval, language, and the optional AI
// service credentials. The whole config is persisted as one JSON record
// and re-saved on every change.
package config

import (
	"encoding/json"
	"os"

	"grove/internal/store"
)

// Built-in defaults, used on first run and whenever the persisted
// record is corrupted.
const (
	DefaultWorkDuration      = 25 // minutes
	DefaultBreakDuration     = 5
	DefaultLongBreakDuration = 15
	DefaultLongBreakInterval = 4
	DefaultLanguage          = "en"

	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
)

// Policy decides what the AI gateway does when no API key is
// configured: substitute a deterministic placeholder, or refuse.
type Policy string

const (
	PolicyMock  Policy = "mock"
	PolicyError Policy = "error"
)

// AIConfig carries the credentials and endpoint for the AI service.
type AIConfig struct {
	APIKey       string `json:"apiKey"`
	BaseURL      string `json:"baseUrl,omitempty"`
	Model        string `json:"model,omitempty"`
	OnMissingKey Policy `json:"onMissingKey,omitempty"`
}

// Config is the singleton application configuration.
type Config struct {
	WorkDuration      int      `json:"workDuration"` // minutes
	BreakDuration     int      `json:"breakDuration"`
	LongBreakDuration int      `json:"longBreakDuration"`
	LongBreakInterval int      `json:"longBreakInterval"`
	Language          string   `json:"language"`
	AI                AIConfig `json:"aiConfig"`
}

func Default() Config {
	return Config{
		WorkDuration:      DefaultWorkDuration,
		BreakDuration:     DefaultBreakDuration,
		LongBreakDuration: DefaultLongBreakDuration,
		LongBreakInterval: DefaultLongBreakInterval,
		Language:          DefaultLanguage,
		AI:                AIConfig{OnMissingKey: PolicyMock},
	}
}

// Load reads the persisted config. A missing or corrupted record falls
// back to the built-in defaults; startup never fails on bad config.
func Load(st *store.Store) Config {
	raw, ok, err := st.Get(store.KeyConfig)
	if err != nil || !ok {
		return Default()
	}
	var c Config
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return Default()
	}
	c.normalize()
	return c
}

// Save persists the whole config as one record.
func Save(st *store.Store, c Config) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return st.Set(store.KeyConfig, string(data))
}

// normalize clamps nonsense values back to the defaults so a hand-edited
// or partially written record cannot wedge the timer.
func (c *Config) normalize() {
	if c.WorkDuration <= 0 {
		c.WorkDuration = DefaultWorkDuration
	}
	if c.BreakDuration <= 0 {
		c.BreakDuration = DefaultBreakDuration
	}
	if c.LongBreakDuration <= 0 {
		c.LongBreakDuration = DefaultLongBreakDuration
	}
	if c.LongBreakInterval <= 0 {
		c.LongBreakInterval = DefaultLongBreakInterval
	}
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.AI.OnMissingKey != PolicyError {
		c.AI.OnMissingKey = PolicyMock
	}
}

// FillAIFromEnv seeds empty AI fields from the environment
// (GROVE_AI_API_KEY, GROVE_AI_BASE_URL, GROVE_AI_MODEL), typically
// loaded from a .env file. Persisted values win over the environment.
func (c *Config) FillAIFromEnv() {
	if c.AI.APIKey == "" {
		c.AI.APIKey = os.Getenv("GROVE_AI_API_KEY")
	}
	if c.AI.BaseURL == "" {
		c.AI.BaseURL = os.Getenv("GROVE_AI_BASE_URL")
	}
	if c.AI.Model == "" {
		c.AI.Model = os.Getenv("GROVE_AI_MODEL")
	}
}

// WorkSeconds is the work interval length in seconds.
func (c Config) WorkSeconds() int { return c.WorkDuration * 60 }

// BreakSeconds is the short-break length in seconds.
func (c Config) BreakSeconds() int { return c.BreakDuration * 60 }

// LongBreakSeconds is the long-break length in seconds.
func (c Config) LongBreakSeconds() int { return c.LongBreakDuration * 60 }
