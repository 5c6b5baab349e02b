package services_test

import (
	"testing"

	"github.com/tomhenman/trustable/internal/config"
	"github.com/tomhenman/trustable/services"
)

func TestNewProvider(t *testing.T) {
	cfg := &config.Config{
		OpenAIAPIKey:    "test-openai-key",
		AnthropicAPIKey: "test-anthropic-key",
	}
	costService := services.NewCostService()

	tests := []struct {
		name             string
		modelName        string
		expectedProvider string
		expectError      bool
	}{
		{
			name:             "gpt model routes to openai",
			modelName:        "gpt-4.1",
			expectedProvider: "openai",
		},
		{
			name:             "gpt mini routes to openai",
			modelName:        "gpt-4.1-mini",
			expectedProvider: "openai",
		},
		{
			name:             "claude model routes to anthropic",
			modelName:        "claude-sonnet-4-20250514",
			expectedProvider: "anthropic",
		},
		{
			name:             "haiku alias routes to anthropic",
			modelName:        "claude-3-5-haiku-latest",
			expectedProvider: "anthropic",
		},
		{
			name:        "unknown model is rejected",
			modelName:   "llama-3-70b",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := services.NewProvider(tt.modelName, cfg, costService)

			if tt.expectError {
				if err == nil {
					t.Fatal("NewProvider succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProvider failed: %v", err)
			}
			if provider.GetProviderName() != tt.expectedProvider {
				t.Errorf("GetProviderName = %q, want %q", provider.GetProviderName(), tt.expectedProvider)
			}
		})
	}
}

func TestNewProviderMissingKeys(t *testing.T) {
	costService := services.NewCostService()

	if _, err := services.NewProvider("gpt-4.1", &config.Config{}, costService); err == nil {
		t.Error("NewProvider with empty OpenAI key succeeded, want error")
	}
	if _, err := services.NewProvider("claude-sonnet-4-20250514", &config.Config{}, costService); err == nil {
		t.Error("NewProvider with empty Anthropic key succeeded, want error")
	}
}
