package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config describes the top-level application configuration loaded from YAML and ENV.
type Config struct {
	Version   string                    `mapstructure:"version"`
	Providers map[string]ProviderConfig `mapstructure:"providers"`
	Models    map[string]ModelConfig    `mapstructure:"models"`
	Agent     AgentConfig               `mapstructure:"agent"`
	Runner    RunnerConfig              `mapstructure:"runner"`
	Output    OutputConfig              `mapstructure:"output"`
	MCP       MCPConfig                 `mapstructure:"mcp"`
	Logging   LoggingConfig             `mapstructure:"logging"`
}

// ProviderConfig represents LLM provider configuration such as OpenAI, Ollama, or custom gateways.
type ProviderConfig struct {
	Type      string        `mapstructure:"type"`       // openai, openrouter, ollama, vllm, lmstudio, custom
	Model     string        `mapstructure:"model"`      // default model for the provider
	BaseURL   string        `mapstructure:"base_url"`   // API base URL
	APIKey    string        `mapstructure:"api_key"`    // optional API key
	Timeout   time.Duration `mapstructure:"timeout"`    // request timeout
	MaxTokens int           `mapstructure:"max_tokens"` // optional provider-level token cap
}

// ModelConfig binds a logical model name to a provider entry and model parameters.
type ModelConfig struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Default     bool    `mapstructure:"default"`
}

// AgentConfig describes conversation loop parameters.
type AgentConfig struct {
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	// MaxRetries caps re-queries after a malformed model response.
	// 0 keeps retrying until the model cooperates or the user interrupts.
	MaxRetries int `mapstructure:"max_retries"`
}

// RunnerConfig controls generated-code execution.
type RunnerConfig struct {
	PythonBin      string `mapstructure:"python_bin"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// OutputConfig controls console rendering.
type OutputConfig struct {
	Color       bool   `mapstructure:"color"`
	SyntaxTheme string `mapstructure:"syntax_theme"`
}

// MCPConfig lists tool-protocol servers configured outside the --mcp-server flag.
type MCPConfig struct {
	Servers []string `mapstructure:"servers"`
}

// LoggingConfig controls logger behaviour.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // console or json
}

// Load reads configuration from the provided path or falls back to defaults when
// no config file exists. Environment variables override file values
// (prefix: SMARTCLI_, dots replaced with underscores).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SMARTCLI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("configs")
	} else {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// No config file is fine: providers and models come from the environment.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults populates sensible defaults for optional fields.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")

	v.SetDefault("agent.max_tokens", 2048)
	v.SetDefault("agent.temperature", 0.2)
	v.SetDefault("agent.max_retries", 0)

	v.SetDefault("runner.python_bin", "")
	v.SetDefault("runner.timeout_seconds", 30)

	v.SetDefault("output.color", true)
	v.SetDefault("output.syntax_theme", "monokai")

	v.SetDefault("mcp.servers", []string{})
}

// Validate performs basic sanity checks on configuration values.
// Empty provider/model maps are allowed; the registry builder synthesizes
// defaults from the environment in that case.
func (c *Config) Validate() error {
	for name, p := range c.Providers {
		if p.Type == "" {
			return fmt.Errorf("provider %q must define type", name)
		}
	}

	var defaultFound bool
	for name, m := range c.Models {
		if m.Provider == "" {
			return fmt.Errorf("model %q must reference provider", name)
		}

		if _, ok := c.Providers[m.Provider]; !ok {
			return fmt.Errorf("model %q references unknown provider %q", name, m.Provider)
		}

		if m.Temperature < 0 || m.Temperature > 2 {
			return fmt.Errorf("model %q temperature must be within [0,2]", name)
		}

		if m.MaxTokens < 0 {
			return fmt.Errorf("model %q max_tokens cannot be negative", name)
		}

		if m.Default {
			defaultFound = true
		}
	}

	if len(c.Models) > 0 && !defaultFound {
		return errors.New("one model should be marked as default")
	}

	if c.Agent.MaxTokens < 0 {
		return errors.New("agent.max_tokens must be >= 0")
	}
	if c.Agent.Temperature < 0 || c.Agent.Temperature > 2 {
		return errors.New("agent.temperature must be within [0,2]")
	}
	if c.Agent.MaxRetries < 0 {
		return errors.New("agent.max_retries must be >= 0")
	}

	if c.Runner.TimeoutSeconds <= 0 {
		return errors.New("runner.timeout_seconds must be > 0")
	}

	return nil
}
