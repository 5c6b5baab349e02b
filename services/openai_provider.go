// services/openai_provider.go
package services

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/tomhenman/trustable/internal/config"
)

type openAIProvider struct {
	client      *openai.Client
	model       string
	costService CostService
}

func NewOpenAIProvider(cfg *config.Config, model string, costService CostService) AIProvider {
	client := openai.NewClient(
		option.WithAPIKey(cfg.OpenAIAPIKey),
	)

	fmt.Printf("[NewOpenAIProvider] Created provider (model: %s, key length: %d)\n", model, len(cfg.OpenAIAPIKey))

	return &openAIProvider{
		client:      &client,
		model:       model,
		costService: costService,
	}
}

func (p *openAIProvider) GetProviderName() string {
	return "openai"
}

// RunPrompt asks the assistant the scan prompt verbatim. The answer is kept
// as free text: the scoring engine consumes raw responses, so no structured
// output format is imposed here.
func (p *openAIProvider) RunPrompt(ctx context.Context, prompt string, websearch bool) (*AIResponse, error) {
	fmt.Printf("[OpenAIProvider] Running prompt (model: %s, websearch: %v)\n", p.model, websearch)

	chatResponse, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModel(p.model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai prompt failed: %w", err)
	}

	if len(chatResponse.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned from OpenAI")
	}

	inputTokens := int(chatResponse.Usage.PromptTokens)
	outputTokens := int(chatResponse.Usage.CompletionTokens)

	return &AIResponse{
		Response:     chatResponse.Choices[0].Message.Content,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         p.costService.CalculateCost(p.GetProviderName(), p.model, inputTokens, outputTokens, websearch),
	}, nil
}
