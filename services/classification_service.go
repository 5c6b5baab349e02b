// services/classification_service.go
package services

import (
	"strings"

	"github.com/tomhenman/trustable/internal/config"
	"github.com/tomhenman/trustable/internal/lexicon"
	"github.com/tomhenman/trustable/internal/models"
)

type classificationService struct {
	cfg *config.EngineConfig
	lex *lexicon.Lexicon
}

func NewClassificationService(cfg *config.EngineConfig, lex *lexicon.Lexicon) ClassificationService {
	return &classificationService{cfg: cfg, lex: lex}
}

// Classify computes the semantic fields of a response analysis from the
// extracted signals, the raw response and the configured lexicons. It is a
// pure function: identity fields and timestamps are stamped by the caller.
func (s *classificationService) Classify(signals models.SignalSet, responseText string) models.ResponseAnalysis {
	folded := strings.ToLower(responseText)

	// Each lexicon entry contributes at most once, no matter how many times
	// it repeats in the response.
	positiveHits := distinctHits(folded, s.lex.Positive)
	negativeHits := distinctHits(folded, s.lex.Negative)
	hedgingHits := distinctHits(folded, s.lex.Hedging)
	recommendationHits := distinctHits(folded, s.lex.Recommendation)

	positiveCount := len(positiveHits)
	negativeCount := len(negativeHits)

	sentimentScore := sentimentScoreFor(positiveCount, negativeCount)
	sentiment := s.sentimentCategory(sentimentScore, negativeCount)

	confidenceScore := clamp01(0.5 + 0.1*float64(positiveCount) - 0.1*float64(len(hedgingHits)))

	isRecommended := len(recommendationHits) > 0 && sentiment != models.SentimentNegative

	return models.ResponseAnalysis{
		ResponseText:           responseText,
		Signals:                signals,
		Sentiment:              sentiment,
		SentimentScore:         sentimentScore,
		ConfidenceScore:        confidenceScore,
		HasHedging:             len(hedgingHits) >= s.cfg.HedgingMin,
		HedgingPhrases:         hedgingHits,
		IsRecommended:          isRecommended,
		RecommendationStrength: s.recommendationStrength(len(recommendationHits)),
		MentionType:            s.mentionType(signals, negativeCount),
	}
}

func sentimentScoreFor(positiveCount, negativeCount int) float64 {
	total := positiveCount + negativeCount
	if total < 1 {
		total = 1
	}
	return float64(positiveCount-negativeCount) / float64(total)
}

// sentimentCategory applies the category rules in priority order, first
// match wins.
func (s *classificationService) sentimentCategory(score float64, negativeCount int) models.Sentiment {
	switch {
	case negativeCount >= s.cfg.NegativeMin:
		return models.SentimentNegative
	case score > s.cfg.PositiveCutoff:
		// Placeholder split: a future revision may promote this branch to
		// very_positive. Both branches intentionally yield positive today.
		return models.SentimentPositive
	case score > 0:
		return models.SentimentPositive
	case negativeCount > 0:
		return models.SentimentCautious
	default:
		return models.SentimentNeutral
	}
}

func (s *classificationService) recommendationStrength(recommendationCount int) models.RecommendationStrength {
	switch {
	case recommendationCount >= s.cfg.StrongRecMin:
		return models.RecommendationStrong
	case recommendationCount >= 1:
		return models.RecommendationModerate
	default:
		return models.RecommendationNone
	}
}

// mentionType classifies how the response features the business. Severity
// outranks volume, volume outranks relational context, comparison outranks
// the brief default.
func (s *classificationService) mentionType(signals models.SignalSet, negativeCount int) models.MentionType {
	if !signals.Mentioned {
		return models.MentionAbsent
	}
	switch {
	case negativeCount >= s.cfg.NegativeMin:
		return models.MentionNegative
	case signals.MentionCount >= s.cfg.PrimaryMentions:
		return models.MentionPrimary
	case signals.MentionCount >= s.cfg.FeaturedMentions:
		return models.MentionFeatured
	case len(signals.CompetitorsMentioned) > 0:
		return models.MentionComparison
	default:
		return models.MentionBrief
	}
}

// distinctHits returns the lexicon entries present as substrings of the
// folded response, in lexicon order.
func distinctHits(foldedResponse string, entries []string) []string {
	var hits []string
	for _, entry := range entries {
		if entry == "" {
			continue
		}
		if strings.Contains(foldedResponse, strings.ToLower(entry)) {
			hits = append(hits, entry)
		}
	}
	return hits
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
