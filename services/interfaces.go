// services/interfaces.go
package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
	"github.com/jmoiron/sqlx"

	"github.com/tomhenman/trustable/internal/models"
	"github.com/tomhenman/trustable/internal/repositories"
)

// RepositoryManager manages all database repositories
type RepositoryManager struct {
	db *sqlx.DB

	BusinessRepo       repositories.BusinessRepository
	AnalysisRepo       repositories.ResponseAnalysisRepository
	CompositeScoreRepo repositories.CompositeScoreRepository
	AlertRepo          repositories.AlertRepository
}

// NewRepositoryManager creates a new repository manager with all repositories
func NewRepositoryManager(db *sqlx.DB) *RepositoryManager {
	return &RepositoryManager{
		db:                 db,
		BusinessRepo:       repositories.NewBusinessRepo(db),
		AnalysisRepo:       repositories.NewResponseAnalysisRepo(db),
		CompositeScoreRepo: repositories.NewCompositeScoreRepo(db),
		AlertRepo:          repositories.NewAlertRepo(db),
	}
}

// BeginTx starts a database transaction
func (rm *RepositoryManager) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return rm.db.BeginTxx(ctx, nil)
}

// ExtractionService reads one raw AI response and emits the structured
// signal set for a business. Pure and synchronous: no I/O, no errors, safe
// from any number of goroutines.
type ExtractionService interface {
	ExtractSignals(responseText string, business models.BusinessIdentity) models.SignalSet
}

// ClassificationService turns a signal set plus the raw response into a
// classified analysis using the configured lexicons. Deterministic for a
// fixed configuration.
type ClassificationService interface {
	Classify(signals models.SignalSet, responseText string) models.ResponseAnalysis
}

// ScoringService folds a closed scan batch into one composite score. The
// only error it can return wraps models.ErrMalformedAnalysis.
type ScoringService interface {
	Aggregate(batch *models.ScanBatch) (*models.CompositeScore, error)
}

// AlertService handles score drift: linking a new score to its predecessor
// and emitting at most one alert per scan.
type AlertService interface {
	LinkPrevious(current *models.CompositeScore, previous *models.CompositeScore)
	Evaluate(current *models.CompositeScore, previous *models.CompositeScore) *models.Alert
}

// CompetitorDiscoveryService suggests competitor names for a business
// profile via an LLM. This feeds the business profile only; the engine's
// own competitor matching stays lexical and deterministic.
type CompetitorDiscoveryService interface {
	DiscoverCompetitors(ctx context.Context, businessID uuid.UUID, businessName string, industry string) ([]string, error)
}

// CostService calculates per-call provider costs from token usage.
type CostService interface {
	CalculateCost(provider string, model string, inputTokens int, outputTokens int, websearch bool) float64
}

// AIProvider is one AI assistant platform the scan orchestrator queries.
type AIProvider interface {
	GetProviderName() string
	RunPrompt(ctx context.Context, prompt string, websearch bool) (*AIResponse, error)
}

// AIResponse contains the response from an AI provider
type AIResponse struct {
	Response     string
	InputTokens  int
	OutputTokens int
	Cost         float64
}

// ScanSummary accumulates per-response outcomes while a scan runs.
type ScanSummary struct {
	TotalPrompts     int      `json:"total_prompts"`
	TotalResponses   int      `json:"total_responses"`
	TotalAnalyses    int      `json:"total_analyses"`
	TotalCost        float64  `json:"total_cost"`
	ProcessingErrors []string `json:"processing_errors"`
}

// GenerateSchema generates a JSON schema for structured outputs
func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	var zero T
	schema := reflector.Reflect(zero)

	// Convert to the format expected by OpenAI
	result := map[string]interface{}{
		"type":       "object",
		"properties": schema.Properties,
		"required":   schema.Required,
	}

	if schema.AdditionalProperties != nil {
		result["additionalProperties"] = false
	}

	return result
}
