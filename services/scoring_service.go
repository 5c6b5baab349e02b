// services/scoring_service.go
package services

import (
	"fmt"
	"math"

	"github.com/tomhenman/trustable/internal/config"
	"github.com/tomhenman/trustable/internal/models"
)

type scoringService struct {
	cfg *config.EngineConfig
}

func NewScoringService(cfg *config.EngineConfig) ScoringService {
	return &scoringService{cfg: cfg}
}

// Aggregate folds a closed scan batch into one composite score. Every
// contributing formula is a commutative sum or count, so the result is
// independent of batch order. An empty batch is a valid, reportable
// outcome (a scan where every platform call failed) and yields fixed
// neutral defaults rather than an error.
//
// The weighted trust and overall sums consume the already-rounded
// sub-scores; rounding is half-away-from-zero throughout.
func (s *scoringService) Aggregate(batch *models.ScanBatch) (*models.CompositeScore, error) {
	score := &models.CompositeScore{}
	if batch != nil {
		score.ScanID = batch.ScanID
		score.BusinessID = batch.BusinessID
	}

	var (
		n                int
		mentionedCount   int
		recommendedCount int
		citedCount       int
		hedgedCount      int
		nonNegativeCount int
		sentimentSum     float64
		confidenceSum    float64
	)

	if batch != nil {
		for _, analysis := range batch.Analyses() {
			if analysis == nil || analysis.ResponseText == "" {
				// Malformed items are rejected at batch ingestion; seeing one
				// here means the caller bypassed ScanBatch.Add. Propagate, do
				// not coerce.
				return nil, fmt.Errorf("aggregate scan %s: %w", batch.ScanID, models.ErrMalformedAnalysis)
			}

			n++
			if analysis.Signals.Mentioned {
				mentionedCount++
			}
			if analysis.IsRecommended {
				recommendedCount++
			}
			if len(analysis.Signals.CitedURLs) > 0 {
				citedCount++
			}
			if analysis.HasHedging {
				hedgedCount++
			}
			if analysis.MentionType != models.MentionNegative {
				nonNegativeCount++
			}
			sentimentSum += analysis.SentimentScore
			confidenceSum += analysis.ConfidenceScore
		}
	}

	var hedgingRate, nonNegativeRate float64
	if n == 0 {
		// Neutral defaults for a scan with zero successful platform calls.
		score.Visibility = 0
		score.Sentiment = 50
		score.Confidence = 50
		score.Recommendation = 0
		score.Citation = 0
	} else {
		fn := float64(n)
		score.Visibility = roundScore(100 * float64(mentionedCount) / fn)
		score.Sentiment = roundScore(100 * (sentimentSum/fn + 1) / 2)
		score.Confidence = roundScore(100 * confidenceSum / fn)
		score.Recommendation = roundScore(100 * float64(recommendedCount) / fn)
		score.Citation = roundScore(100 * float64(citedCount) / fn)
		hedgingRate = float64(hedgedCount) / fn
		nonNegativeRate = float64(nonNegativeCount) / fn
	}

	score.Trust = roundScore(
		s.cfg.TrustSentimentWeight*float64(score.Sentiment) +
			s.cfg.TrustHedgingWeight*(100-100*hedgingRate) +
			s.cfg.TrustRecWeight*float64(score.Recommendation) +
			s.cfg.TrustNonNegativeWeight*100*nonNegativeRate)

	score.Overall = roundScore(
		s.cfg.OverallTrustWeight*float64(score.Trust) +
			s.cfg.OverallVisibilityWeight*float64(score.Visibility) +
			s.cfg.OverallRecWeight*float64(score.Recommendation) +
			s.cfg.OverallCitationWeight*float64(score.Citation) +
			s.cfg.OverallSentimentWeight*float64(score.Sentiment) +
			s.cfg.OverallConfidenceWeight*float64(score.Confidence))

	score.ResponseCount = n
	return score, nil
}

// roundScore converts to the final integer score, rounding halves away
// from zero.
func roundScore(v float64) int {
	return int(math.Round(v))
}
