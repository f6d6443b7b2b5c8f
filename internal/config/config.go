// Package config loads swapduel settings from a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/peterkuimelis/swapduel/internal/decision"
)

// EnvAIKey overrides ai.api_key when set.
const EnvAIKey = "SWAPDUEL_AI_KEY"

// Config is the top-level settings file.
type Config struct {
	// Catalog is a card catalog YAML file. Empty uses the built-in set.
	Catalog string      `yaml:"catalog"`
	Match   MatchConfig `yaml:"match"`
	AI      AIConfig    `yaml:"ai"`
}

type MatchConfig struct {
	Difficulty          string        `yaml:"difficulty"`
	Style               string        `yaml:"style"`
	SwapBelowConfidence *float64      `yaml:"swap_below_confidence"`
	Seed                int64         `yaml:"seed"`
	DecisionTimeout     time.Duration `yaml:"decision_timeout"`
	HumanTimeout        time.Duration `yaml:"human_timeout"`
}

// AIConfig configures the remote agent. An empty URL disables it and the
// bot plays alone.
type AIConfig struct {
	URL        string        `yaml:"url"`
	AgentID    string        `yaml:"agent_id"`
	APIKey     string        `yaml:"api_key"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Match.Difficulty == "" {
		c.Match.Difficulty = "normal"
	}
	if c.Match.Style == "" {
		c.Match.Style = "balanced"
	}
	if c.Match.SwapBelowConfidence == nil {
		v := 0.5
		c.Match.SwapBelowConfidence = &v
	}
	if c.Match.DecisionTimeout == 0 {
		c.Match.DecisionTimeout = 5 * time.Second
	}
	if c.Match.HumanTimeout == 0 {
		c.Match.HumanTimeout = 2 * time.Minute
	}
	if c.AI.AgentID == "" {
		c.AI.AgentID = "training-agent-v1"
	}
	if c.AI.Timeout == 0 {
		c.AI.Timeout = 3 * time.Second
	}
	if c.AI.MaxRetries == 0 {
		c.AI.MaxRetries = 2
	}
	if c.AI.RetryDelay == 0 {
		c.AI.RetryDelay = 200 * time.Millisecond
	}
}

// Parse decodes YAML and fills in defaults.
func Parse(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads path (empty for defaults) and applies the environment override.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if c, err = Parse(data); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	if key := os.Getenv(EnvAIKey); key != "" {
		c.AI.APIKey = key
	}
	return c, nil
}

// Validate checks ranges the loader cannot default.
func (c Config) Validate() error {
	switch c.Match.Difficulty {
	case "easy", "normal", "hard":
	default:
		return fmt.Errorf("match.difficulty %q: want easy, normal or hard", c.Match.Difficulty)
	}
	if v := *c.Match.SwapBelowConfidence; v < 0 || v > 1 {
		return fmt.Errorf("match.swap_below_confidence %v: want a value in [0,1]", v)
	}
	if c.Match.DecisionTimeout < 0 || c.Match.HumanTimeout < 0 || c.AI.Timeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.AI.URL != "" && c.Match.DecisionTimeout > 0 && c.AI.Timeout >= c.Match.DecisionTimeout {
		return fmt.Errorf("ai.timeout %v must be shorter than match.decision_timeout %v so the bot can answer", c.AI.Timeout, c.Match.DecisionTimeout)
	}
	return nil
}

// Decision returns the provider tuning for the configured match.
func (c Config) Decision() decision.Config {
	threshold := 0.5
	if c.Match.SwapBelowConfidence != nil {
		threshold = *c.Match.SwapBelowConfidence
	}
	return decision.Config{
		Difficulty:          c.Match.Difficulty,
		Style:               c.Match.Style,
		SwapBelowConfidence: threshold,
	}
}

// Remote returns the agent client settings.
func (c Config) Remote() decision.RemoteConfig {
	return decision.RemoteConfig{
		BaseURL:    c.AI.URL,
		AgentID:    c.AI.AgentID,
		APIKey:     c.AI.APIKey,
		MaxRetries: c.AI.MaxRetries,
		RetryDelay: c.AI.RetryDelay,
	}
}

// Opponent builds the provider for the computer seat: the remote agent with
// the bot as mandatory fallback when a URL is configured, the bot otherwise.
func (c Config) Opponent(bot decision.Provider) decision.Provider {
	if c.AI.URL == "" {
		return bot
	}
	return decision.WithFallback(decision.NewRemote(c.Remote()), bot, c.AI.Timeout)
}
