// services/provider_factory.go
package services

import (
	"fmt"
	"strings"

	"github.com/tomhenman/trustable/internal/config"
)

// NewProvider creates the appropriate AI provider for a model name.
func NewProvider(modelName string, cfg *config.Config, costService CostService) (AIProvider, error) {
	modelLower := strings.ToLower(modelName)

	if strings.Contains(modelLower, "claude") || strings.Contains(modelLower, "sonnet") ||
		strings.Contains(modelLower, "opus") || strings.Contains(modelLower, "haiku") {
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key is empty in config")
		}
		fmt.Printf("[ProviderFactory] Selected Anthropic provider for model: %s\n", modelName)
		return NewAnthropicProvider(cfg, modelName, costService), nil
	}

	if strings.Contains(modelLower, "gpt") {
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is empty in config")
		}
		fmt.Printf("[ProviderFactory] Selected OpenAI provider for model: %s\n", modelName)
		return NewOpenAIProvider(cfg, modelName, costService), nil
	}

	return nil, fmt.Errorf("unsupported model: %s", modelName)
}
