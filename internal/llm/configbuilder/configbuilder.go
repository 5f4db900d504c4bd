package configbuilder

import (
	"fmt"
	"os"
	"strings"

	"github.com/prudhvi1709/smart-cli/internal/config"
	"github.com/prudhvi1709/smart-cli/internal/llm"
	llmanthropic "github.com/prudhvi1709/smart-cli/internal/llm/providers/anthropic"
	llmollama "github.com/prudhvi1709/smart-cli/internal/llm/providers/ollama"
	llmopenai "github.com/prudhvi1709/smart-cli/internal/llm/providers/openai"
)

// Fallback model spec used when neither a flag nor the environment chooses one.
const fallbackModelSpec = "anthropic:claude-sonnet-4-0"

// DefaultModelSpec resolves which model to talk to, in priority order:
// the explicit flag, an OpenAI key in the environment, an environment
// variable naming a model, then the hardcoded fallback.
func DefaultModelSpec(flagValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	if os.Getenv("OPENAI_API_KEY") != "" {
		return "openai:gpt-4.1-mini"
	}
	if spec := os.Getenv("SMARTCLI_MODEL"); spec != "" {
		return spec
	}
	if spec := os.Getenv("ANTHROPIC_MODEL"); spec != "" {
		return spec
	}
	return fallbackModelSpec
}

// BuildRegistry constructs a provider registry. When the config defines
// providers and models they are used as-is and the returned model id honors
// the flag. Otherwise a single provider and model are synthesized from a
// "provider:model" spec chosen by DefaultModelSpec.
func BuildRegistry(cfg *config.Config, modelFlag string) (*llm.Registry, string, error) {
	if len(cfg.Providers) > 0 {
		reg, err := buildFromConfig(cfg)
		if err != nil {
			return nil, "", err
		}
		if modelFlag != "" {
			if _, _, err := reg.Resolve(modelFlag); err != nil {
				return nil, "", err
			}
			return reg, modelFlag, nil
		}
		return reg, "", nil
	}

	spec := DefaultModelSpec(modelFlag)
	providerType, model, err := splitSpec(spec)
	if err != nil {
		return nil, "", err
	}

	p, err := buildProvider(providerType, config.ProviderConfig{Type: providerType, APIKey: envAPIKey(providerType)})
	if err != nil {
		return nil, "", err
	}

	reg := llm.NewRegistry()
	reg.RegisterProvider(providerType, p)
	reg.RegisterModel(spec, llm.ModelRoute{
		Provider:    providerType,
		Model:       model,
		Temperature: cfg.Agent.Temperature,
		MaxTokens:   cfg.Agent.MaxTokens,
	}, true)

	return reg, spec, nil
}

func buildFromConfig(cfg *config.Config) (*llm.Registry, error) {
	reg := llm.NewRegistry()

	for name, pCfg := range cfg.Providers {
		p, err := buildProvider(name, pCfg)
		if err != nil {
			return nil, err
		}
		reg.RegisterProvider(name, p)
	}

	for name, mCfg := range cfg.Models {
		reg.RegisterModel(name, llm.ModelRoute{
			Provider:    mCfg.Provider,
			Model:       mCfg.Model,
			Temperature: mCfg.Temperature,
			MaxTokens:   mCfg.MaxTokens,
		}, mCfg.Default)
	}

	if _, _, err := reg.Resolve(""); err != nil {
		return nil, err
	}

	return reg, nil
}

func buildProvider(name string, cfg config.ProviderConfig) (llm.Provider, error) {
	switch cfg.Type {
	case "openai", "openrouter", "vllm", "lmstudio", "custom":
		return llmopenai.NewProvider(name, cfg.BaseURL, cfg.APIKey, cfg.Timeout), nil
	case "anthropic":
		return llmanthropic.NewProvider(name, cfg.BaseURL, cfg.APIKey, cfg.Timeout), nil
	case "ollama":
		return llmollama.NewProvider(name, cfg.BaseURL, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown provider type %q for provider %s", cfg.Type, name)
	}
}

// splitSpec parses "provider:model" specs such as openai:gpt-4.1-mini.
// A bare model name without a provider prefix defaults to anthropic,
// matching the fallback backend.
func splitSpec(spec string) (string, string, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return "", "", fmt.Errorf("empty model spec")
	}
	providerType, model, found := strings.Cut(spec, ":")
	if !found {
		return "anthropic", spec, nil
	}
	if providerType == "" || model == "" {
		return "", "", fmt.Errorf("malformed model spec %q", spec)
	}
	return providerType, model, nil
}

func envAPIKey(providerType string) string {
	switch providerType {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	default:
		return ""
	}
}
