// internal/repositories/analysis_repo.go
package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tomhenman/trustable/internal/models"
)

type responseAnalysisRepo struct {
	db *sqlx.DB
}

func NewResponseAnalysisRepo(db *sqlx.DB) ResponseAnalysisRepository {
	return &responseAnalysisRepo{db: db}
}

// analysisRow flattens a ResponseAnalysis (including its nested signal set)
// onto one table row. Array columns use Postgres arrays via lib/pq.
type analysisRow struct {
	AnalysisID uuid.UUID `db:"analysis_id"`
	BusinessID uuid.UUID `db:"business_id"`
	ScanID     uuid.UUID `db:"scan_id"`

	Platform     string `db:"platform"`
	ResponseText string `db:"response_text"`

	Mentioned            bool           `db:"mentioned"`
	MentionCount         int            `db:"mention_count"`
	MentionContext       string         `db:"mention_context"`
	RankingPosition      *int           `db:"ranking_position"`
	CitedURLs            pq.StringArray `db:"cited_urls"`
	BusinessCitedURL     *string        `db:"business_cited_url"`
	HasPrimaryCitation   bool           `db:"has_primary_citation"`
	CompetitorsMentioned pq.StringArray `db:"competitors_mentioned"`

	Sentiment              string         `db:"sentiment"`
	SentimentScore         float64        `db:"sentiment_score"`
	ConfidenceScore        float64        `db:"confidence_score"`
	HasHedging             bool           `db:"has_hedging"`
	HedgingPhrases         pq.StringArray `db:"hedging_phrases"`
	IsRecommended          bool           `db:"is_recommended"`
	RecommendationStrength string         `db:"recommendation_strength"`
	MentionType            string         `db:"mention_type"`

	CreatedAt time.Time `db:"created_at"`
}

func toAnalysisRow(a *models.ResponseAnalysis) *analysisRow {
	return &analysisRow{
		AnalysisID:             a.AnalysisID,
		BusinessID:             a.BusinessID,
		ScanID:                 a.ScanID,
		Platform:               a.Platform,
		ResponseText:           a.ResponseText,
		Mentioned:              a.Signals.Mentioned,
		MentionCount:           a.Signals.MentionCount,
		MentionContext:         a.Signals.MentionContext,
		RankingPosition:        a.Signals.RankingPosition,
		CitedURLs:              pq.StringArray(a.Signals.CitedURLs),
		BusinessCitedURL:       a.Signals.BusinessCitedURL,
		HasPrimaryCitation:     a.Signals.HasPrimaryCitation,
		CompetitorsMentioned:   pq.StringArray(a.Signals.CompetitorsMentioned),
		Sentiment:              string(a.Sentiment),
		SentimentScore:         a.SentimentScore,
		ConfidenceScore:        a.ConfidenceScore,
		HasHedging:             a.HasHedging,
		HedgingPhrases:         pq.StringArray(a.HedgingPhrases),
		IsRecommended:          a.IsRecommended,
		RecommendationStrength: string(a.RecommendationStrength),
		MentionType:            string(a.MentionType),
		CreatedAt:              a.CreatedAt,
	}
}

func (row *analysisRow) toModel() *models.ResponseAnalysis {
	return &models.ResponseAnalysis{
		AnalysisID:   row.AnalysisID,
		BusinessID:   row.BusinessID,
		ScanID:       row.ScanID,
		Platform:     row.Platform,
		ResponseText: row.ResponseText,
		Signals: models.SignalSet{
			Mentioned:            row.Mentioned,
			MentionCount:         row.MentionCount,
			MentionContext:       row.MentionContext,
			RankingPosition:      row.RankingPosition,
			CitedURLs:            []string(row.CitedURLs),
			BusinessCitedURL:     row.BusinessCitedURL,
			HasPrimaryCitation:   row.HasPrimaryCitation,
			CompetitorsMentioned: []string(row.CompetitorsMentioned),
		},
		Sentiment:              models.Sentiment(row.Sentiment),
		SentimentScore:         row.SentimentScore,
		ConfidenceScore:        row.ConfidenceScore,
		HasHedging:             row.HasHedging,
		HedgingPhrases:         []string(row.HedgingPhrases),
		IsRecommended:          row.IsRecommended,
		RecommendationStrength: models.RecommendationStrength(row.RecommendationStrength),
		MentionType:            models.MentionType(row.MentionType),
		CreatedAt:              row.CreatedAt,
	}
}

const insertAnalysisQuery = `
	INSERT INTO response_analyses (
		analysis_id, business_id, scan_id, platform, response_text,
		mentioned, mention_count, mention_context, ranking_position,
		cited_urls, business_cited_url, has_primary_citation, competitors_mentioned,
		sentiment, sentiment_score, confidence_score, has_hedging, hedging_phrases,
		is_recommended, recommendation_strength, mention_type, created_at
	) VALUES (
		:analysis_id, :business_id, :scan_id, :platform, :response_text,
		:mentioned, :mention_count, :mention_context, :ranking_position,
		:cited_urls, :business_cited_url, :has_primary_citation, :competitors_mentioned,
		:sentiment, :sentiment_score, :confidence_score, :has_hedging, :hedging_phrases,
		:is_recommended, :recommendation_strength, :mention_type, :created_at
	)`

func (r *responseAnalysisRepo) Create(ctx context.Context, analysis *models.ResponseAnalysis) error {
	return createAnalysis(ctx, r.db, analysis)
}

func (r *responseAnalysisRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, analysis *models.ResponseAnalysis) error {
	return createAnalysis(ctx, tx, analysis)
}

func createAnalysis(ctx context.Context, ext sqlx.ExtContext, analysis *models.ResponseAnalysis) error {
	if _, err := sqlx.NamedExecContext(ctx, ext, insertAnalysisQuery, toAnalysisRow(analysis)); err != nil {
		return fmt.Errorf("failed to create response analysis: %w", err)
	}
	return nil
}

func (r *responseAnalysisRepo) GetByScan(ctx context.Context, scanID uuid.UUID) ([]*models.ResponseAnalysis, error) {
	var rows []*analysisRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM response_analyses WHERE scan_id = $1 ORDER BY created_at`, scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get analyses for scan %s: %w", scanID, err)
	}
	return rowsToModels(rows), nil
}

func (r *responseAnalysisRepo) GetByBusiness(ctx context.Context, businessID uuid.UUID, limit int) ([]*models.ResponseAnalysis, error) {
	var rows []*analysisRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM response_analyses WHERE business_id = $1 ORDER BY created_at DESC LIMIT $2`,
		businessID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get analyses for business %s: %w", businessID, err)
	}
	return rowsToModels(rows), nil
}

func rowsToModels(rows []*analysisRow) []*models.ResponseAnalysis {
	analyses := make([]*models.ResponseAnalysis, 0, len(rows))
	for _, row := range rows {
		analyses = append(analyses, row.toModel())
	}
	return analyses
}
