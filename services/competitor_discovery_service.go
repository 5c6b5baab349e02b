// services/competitor_discovery_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/tomhenman/trustable/internal/config"
)

// competitorDiscoveryService suggests competitor names for a business
// profile. It populates the profile the scoring engine reads from; the
// engine itself never calls an LLM.
type competitorDiscoveryService struct {
	cfg          *config.Config
	openAIClient *openai.Client
	costService  CostService
}

func NewCompetitorDiscoveryService(cfg *config.Config) CompetitorDiscoveryService {
	client := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))

	return &competitorDiscoveryService{
		cfg:          cfg,
		openAIClient: &client,
		costService:  NewCostService(),
	}
}

// CompetitorListResponse is the structured output shape for discovery.
type CompetitorListResponse struct {
	Competitors []string `json:"competitors" jsonschema_description:"List of direct competitor business names"`
}

func (s *competitorDiscoveryService) DiscoverCompetitors(ctx context.Context, businessID uuid.UUID, businessName string, industry string) ([]string, error) {
	fmt.Printf("[DiscoverCompetitors] Discovering competitors for business %s (%s)\n", businessID, businessName)

	prompt := fmt.Sprintf(`You are an expert in competitive analysis and brand identification. List the direct competitors of the business below.

**TARGET BUSINESS:** %s
**INDUSTRY:** %s

Rules:
- Return only real, named businesses that compete in the same market
- Use the most recognizable/official name for each competitor
- Do not include the target business itself or generic terms
- Return 5-10 names; fewer if the market is small
- If you cannot identify any competitors, return an empty list`,
		"`"+businessName+"`", industry)

	model := openai.ChatModel("gpt-4.1-mini")

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "competitor_discovery",
		Description: openai.String("Identify direct competitors of a business"),
		Schema:      GenerateSchema[CompetitorListResponse](),
		Strict:      openai.Bool(true),
	}

	chatResponse, err := s.openAIClient.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are an expert in competitive analysis and brand identification. Identify competitor businesses accurately."),
			openai.UserMessage(prompt),
		},
		Model: model,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
		},
		Temperature: openai.Float(0.1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover competitors: %w", err)
	}

	if len(chatResponse.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned from OpenAI")
	}

	var extractedData CompetitorListResponse
	if err := json.Unmarshal([]byte(chatResponse.Choices[0].Message.Content), &extractedData); err != nil {
		return nil, fmt.Errorf("failed to parse competitor discovery response: %w", err)
	}

	var competitors []string
	for _, name := range extractedData.Competitors {
		name = strings.TrimSpace(name)
		if name == "" || strings.EqualFold(name, businessName) {
			continue
		}
		competitors = append(competitors, name)
	}

	fmt.Printf("[DiscoverCompetitors] Found %d competitors\n", len(competitors))
	return competitors, nil
}
