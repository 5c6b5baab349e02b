// services/scan_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomhenman/trustable/internal/config"
	"github.com/tomhenman/trustable/internal/models"
)

// ScanService runs one complete scan for a business: query every configured
// AI platform, classify each response through the scoring engine, close the
// batch, aggregate exactly once, then evaluate drift against the previous
// stored score. The engine stays pure; everything stateful (providers,
// storage) lives here.
type ScanService interface {
	GetBusiness(ctx context.Context, businessID uuid.UUID) (*models.Business, error)
	GetBusinessIDsByScheduledDOW(ctx context.Context, dow int) ([]uuid.UUID, error)
	GetBusinessCountByWeekday(ctx context.Context) (map[string]int, error)
	EnsureCompetitors(ctx context.Context, business *models.Business) error
	RunPrompts(ctx context.Context, business *models.Business, summary *ScanSummary) []*models.PromptResponse
	AnalyzeResponses(scanID uuid.UUID, business *models.Business, responses []*models.PromptResponse, summary *ScanSummary) (*models.ScanBatch, error)
	ScoreAndPersist(ctx context.Context, business *models.Business, batch *models.ScanBatch) (*models.CompositeScore, *models.Alert, error)
}

type scanService struct {
	cfg            *config.Config
	repos          *RepositoryManager
	extraction     ExtractionService
	classification ClassificationService
	scoring        ScoringService
	alerts         AlertService
	discovery      CompetitorDiscoveryService
	costService    CostService
}

func NewScanService(
	cfg *config.Config,
	repos *RepositoryManager,
	extraction ExtractionService,
	classification ClassificationService,
	scoring ScoringService,
	alerts AlertService,
	discovery CompetitorDiscoveryService,
) ScanService {
	return &scanService{
		cfg:            cfg,
		repos:          repos,
		extraction:     extraction,
		classification: classification,
		scoring:        scoring,
		alerts:         alerts,
		discovery:      discovery,
		costService:    NewCostService(),
	}
}

// defaultPrompts covers businesses whose profile has no configured prompts
// yet. The %s placeholder receives the business name.
var defaultPrompts = []string{
	"What do you know about %s?",
	"Is %s trustworthy? What do reviews say?",
	"What are the best alternatives to %s?",
}

func (s *scanService) GetBusiness(ctx context.Context, businessID uuid.UUID) (*models.Business, error) {
	business, err := s.repos.BusinessRepo.GetByID(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to load business %s: %w", businessID, err)
	}
	if business == nil {
		return nil, fmt.Errorf("business %s not found", businessID)
	}
	return business, nil
}

func (s *scanService) GetBusinessIDsByScheduledDOW(ctx context.Context, dow int) ([]uuid.UUID, error) {
	return s.repos.BusinessRepo.GetIDsByScheduledDOW(ctx, dow)
}

func (s *scanService) GetBusinessCountByWeekday(ctx context.Context) (map[string]int, error) {
	return s.repos.BusinessRepo.GetCountByWeekday(ctx)
}

// EnsureCompetitors backfills the competitor list for profiles that have
// none yet, so comparison mention typing has names to match against. A
// failed discovery is not fatal: the scan proceeds without competitor
// signals.
func (s *scanService) EnsureCompetitors(ctx context.Context, business *models.Business) error {
	if len(business.Competitors) > 0 || s.discovery == nil {
		return nil
	}

	competitors, err := s.discovery.DiscoverCompetitors(ctx, business.BusinessID, business.Name, business.Industry)
	if err != nil {
		return fmt.Errorf("failed to discover competitors for %s: %w", business.Name, err)
	}
	if len(competitors) == 0 {
		return nil
	}

	if err := s.repos.BusinessRepo.SetCompetitors(ctx, business.BusinessID, competitors); err != nil {
		return fmt.Errorf("failed to store discovered competitors: %w", err)
	}
	business.Competitors = competitors

	fmt.Printf("[EnsureCompetitors] Stored %d discovered competitors for business %s\n",
		len(competitors), business.Name)
	return nil
}

// RunPrompts executes the prompt x platform matrix. Failed calls are
// recorded in the summary and skipped; a scan where every call fails still
// produces a (neutral) score downstream.
func (s *scanService) RunPrompts(ctx context.Context, business *models.Business, summary *ScanSummary) []*models.PromptResponse {
	prompts := business.Prompts
	if len(prompts) == 0 {
		for _, template := range defaultPrompts {
			prompts = append(prompts, fmt.Sprintf(template, business.Name))
		}
	}
	summary.TotalPrompts = len(prompts) * len(s.cfg.ScanModels)

	var responses []*models.PromptResponse
	for _, modelName := range s.cfg.ScanModels {
		provider, err := NewProvider(modelName, s.cfg, s.costService)
		if err != nil {
			summary.ProcessingErrors = append(summary.ProcessingErrors,
				fmt.Sprintf("Failed to create provider for model %s: %v", modelName, err))
			continue
		}

		for _, prompt := range prompts {
			aiResponse, err := provider.RunPrompt(ctx, prompt, false)
			if err != nil {
				summary.ProcessingErrors = append(summary.ProcessingErrors,
					fmt.Sprintf("Prompt failed on %s: %v", modelName, err))
				continue
			}

			responses = append(responses, &models.PromptResponse{
				Platform:     provider.GetProviderName() + "/" + modelName,
				PromptText:   prompt,
				ResponseText: aiResponse.Response,
				InputTokens:  aiResponse.InputTokens,
				OutputTokens: aiResponse.OutputTokens,
				Cost:         aiResponse.Cost,
				Timestamp:    time.Now().UTC(),
			})
			summary.TotalResponses++
			summary.TotalCost += aiResponse.Cost
		}
	}

	fmt.Printf("[RunPrompts] Collected %d/%d responses for business %s\n",
		summary.TotalResponses, summary.TotalPrompts, business.Name)
	return responses
}

// AnalyzeResponses classifies every collected response and closes the scan
// batch. Responses with empty text are rejected by batch ingestion and
// surface in the summary rather than skewing the score silently.
func (s *scanService) AnalyzeResponses(scanID uuid.UUID, business *models.Business, responses []*models.PromptResponse, summary *ScanSummary) (*models.ScanBatch, error) {
	identity := business.Identity()
	batch := models.NewScanBatch(scanID, business.BusinessID)
	now := time.Now().UTC()

	for _, response := range responses {
		signals := s.extraction.ExtractSignals(response.ResponseText, identity)
		analysis := s.classification.Classify(signals, response.ResponseText)

		analysis.AnalysisID = uuid.New()
		analysis.BusinessID = business.BusinessID
		analysis.ScanID = scanID
		analysis.Platform = response.Platform
		analysis.CreatedAt = now

		if err := batch.Add(&analysis); err != nil {
			summary.ProcessingErrors = append(summary.ProcessingErrors,
				fmt.Sprintf("Rejected analysis from %s: %v", response.Platform, err))
			continue
		}
		summary.TotalAnalyses++
	}

	return batch, nil
}

// ScoreAndPersist aggregates the closed batch once, links and stores the
// new score, then evaluates drift against the previous one. All rows for
// the scan (analyses, score, alert) commit in one transaction: a failed
// insert must not leave a partial scan in the business's history, which a
// retried workflow step would then sit next to under a fresh scan ID.
func (s *scanService) ScoreAndPersist(ctx context.Context, business *models.Business, batch *models.ScanBatch) (*models.CompositeScore, *models.Alert, error) {
	score, err := s.scoring.Aggregate(batch)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to aggregate scan %s: %w", batch.ScanID, err)
	}

	score.ScoreID = uuid.New()
	score.CreatedAt = time.Now().UTC()

	previous, err := s.repos.CompositeScoreRepo.GetLatestForBusiness(ctx, business.BusinessID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load previous score: %w", err)
	}
	s.alerts.LinkPrevious(score, previous)
	alert := s.alerts.Evaluate(score, previous)

	tx, err := s.repos.BeginTx(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin scan transaction: %w", err)
	}
	defer tx.Rollback() // no-op once committed

	for _, analysis := range batch.Analyses() {
		if err := s.repos.AnalysisRepo.CreateTx(ctx, tx, analysis); err != nil {
			return nil, nil, fmt.Errorf("failed to store analysis %s: %w", analysis.AnalysisID, err)
		}
	}
	if err := s.repos.CompositeScoreRepo.CreateTx(ctx, tx, score); err != nil {
		return nil, nil, fmt.Errorf("failed to store composite score: %w", err)
	}
	if alert != nil {
		if err := s.repos.AlertRepo.CreateTx(ctx, tx, alert); err != nil {
			return nil, nil, fmt.Errorf("failed to store alert: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit scan %s: %w", batch.ScanID, err)
	}

	if alert != nil {
		fmt.Printf("[ScoreAndPersist] Alert %s (%s) for business %s: %s\n",
			alert.Type, alert.Severity, business.Name, alert.Message)
	}

	fmt.Printf("[ScoreAndPersist] Business %s scored overall=%d (visibility=%d sentiment=%d trust=%d)\n",
		business.Name, score.Overall, score.Visibility, score.Sentiment, score.Trust)
	return score, alert, nil
}
