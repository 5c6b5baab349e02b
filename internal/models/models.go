// internal/models/models.go
package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sentiment is the classifier's sentiment taxonomy. VeryPositive and
// VeryNegative are declared for forward compatibility but the current rule
// set never produces them.
type Sentiment string

const (
	SentimentVeryPositive Sentiment = "very_positive"
	SentimentPositive     Sentiment = "positive"
	SentimentNeutral      Sentiment = "neutral"
	SentimentCautious     Sentiment = "cautious"
	SentimentNegative     Sentiment = "negative"
	SentimentVeryNegative Sentiment = "very_negative"
)

// RecommendationStrength grades how assertively a response recommends the
// business.
type RecommendationStrength string

const (
	RecommendationNone     RecommendationStrength = "none"
	RecommendationModerate RecommendationStrength = "moderate"
	RecommendationStrong   RecommendationStrength = "strong"
)

// MentionType classifies how a response features the business. Exactly one
// type applies per analysis; MentionAbsent iff the business never appears.
type MentionType string

const (
	MentionAbsent     MentionType = "absent"
	MentionBrief      MentionType = "brief"
	MentionComparison MentionType = "comparison"
	MentionFeatured   MentionType = "featured"
	MentionPrimary    MentionType = "primary"
	MentionNegative   MentionType = "negative"
)

type AlertType string

const (
	AlertScoreDrop        AlertType = "score_drop"
	AlertScoreImprovement AlertType = "score_improvement"
)

type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
	SeverityPositive AlertSeverity = "positive"
)

// BusinessIdentity is the per-scan snapshot of who we are scoring: the
// business name plus the competitor names and owned websites used for
// co-mention and citation matching. Name matching downstream is
// case-insensitive and substring based.
type BusinessIdentity struct {
	Name        string   `json:"name"`
	Websites    []string `json:"websites"`
	Competitors []string `json:"competitors"`
}

// Business is the stored business profile.
type Business struct {
	BusinessID   uuid.UUID `db:"business_id" json:"business_id"`
	Name         string    `db:"name" json:"name"`
	Industry     string    `db:"industry" json:"industry,omitempty"`
	ScheduledDOW *int      `db:"scheduled_dow" json:"scheduled_dow,omitempty"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`

	// Loaded from their own tables, not columns on businesses.
	Websites    []string `db:"-" json:"websites,omitempty"`
	Competitors []string `db:"-" json:"competitors,omitempty"`
	Prompts     []string `db:"-" json:"prompts,omitempty"`
}

// Identity returns the matching snapshot handed to the engine once per scan.
func (b *Business) Identity() BusinessIdentity {
	return BusinessIdentity{
		Name:        b.Name,
		Websites:    b.Websites,
		Competitors: b.Competitors,
	}
}

// SignalSet is the raw, pre-classification output of the signal extractor
// for a single AI response.
//
// Invariants: Mentioned == (MentionCount > 0); MentionContext is non-empty
// iff Mentioned.
type SignalSet struct {
	Mentioned            bool     `json:"mentioned"`
	MentionCount         int      `json:"mention_count"`
	MentionContext       string   `json:"mention_context,omitempty"`
	RankingPosition      *int     `json:"ranking_position,omitempty"`
	CitedURLs            []string `json:"cited_urls,omitempty"`
	BusinessCitedURL     *string  `json:"business_cited_url,omitempty"`
	HasPrimaryCitation   bool     `json:"has_primary_citation"`
	CompetitorsMentioned []string `json:"competitors_mentioned,omitempty"`
}

// ResponseAnalysis is one classified AI response. The semantic fields are a
// pure function of (response text, business identity, lexicons); identity
// and timestamps are stamped by the orchestrating caller so classification
// itself stays deterministic.
type ResponseAnalysis struct {
	AnalysisID uuid.UUID `db:"analysis_id" json:"analysis_id"`
	BusinessID uuid.UUID `db:"business_id" json:"business_id"`
	ScanID     uuid.UUID `db:"scan_id" json:"scan_id"`

	// Platform tags which AI assistant produced the response. It is opaque
	// to the engine: never branched on, only carried through for reporting.
	Platform     string `db:"platform" json:"platform"`
	ResponseText string `db:"response_text" json:"response_text"`

	Signals SignalSet `db:"-" json:"signals"`

	Sentiment              Sentiment              `db:"sentiment" json:"sentiment"`
	SentimentScore         float64                `db:"sentiment_score" json:"sentiment_score"`
	ConfidenceScore        float64                `db:"confidence_score" json:"confidence_score"`
	HasHedging             bool                   `db:"has_hedging" json:"has_hedging"`
	HedgingPhrases         []string               `db:"-" json:"hedging_phrases,omitempty"`
	IsRecommended          bool                   `db:"is_recommended" json:"is_recommended"`
	RecommendationStrength RecommendationStrength `db:"recommendation_strength" json:"recommendation_strength"`
	MentionType            MentionType            `db:"mention_type" json:"mention_type"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ErrMalformedAnalysis marks a ResponseAnalysis built from an absent
// response text upstream. Such items are rejected at batch ingestion rather
// than coerced to defaults, so one bad platform call cannot silently skew a
// scan's score.
var ErrMalformedAnalysis = errors.New("malformed response analysis: empty response text")

// ScanBatch is the closed set of analyses for one scan of one business.
// Callers add every analysis before aggregation begins; the aggregator never
// observes a partially filled batch.
type ScanBatch struct {
	ScanID     uuid.UUID
	BusinessID uuid.UUID

	analyses []*ResponseAnalysis
}

func NewScanBatch(scanID, businessID uuid.UUID) *ScanBatch {
	return &ScanBatch{ScanID: scanID, BusinessID: businessID}
}

// Add ingests one analysis, rejecting malformed items.
func (b *ScanBatch) Add(a *ResponseAnalysis) error {
	if a == nil || a.ResponseText == "" {
		return fmt.Errorf("scan %s: %w", b.ScanID, ErrMalformedAnalysis)
	}
	b.analyses = append(b.analyses, a)
	return nil
}

// Analyses returns the batch contents. The slice header is shared; callers
// must not append to it.
func (b *ScanBatch) Analyses() []*ResponseAnalysis {
	return b.analyses
}

func (b *ScanBatch) Len() int {
	return len(b.analyses)
}

// CompositeScore is one immutable scoring snapshot for a business. New scans
// append new rows; the drift evaluator compares against the most recently
// created row for the same business.
type CompositeScore struct {
	ScoreID    uuid.UUID `db:"score_id" json:"score_id"`
	BusinessID uuid.UUID `db:"business_id" json:"business_id"`
	ScanID     uuid.UUID `db:"scan_id" json:"scan_id"`

	Visibility     int `db:"visibility" json:"visibility"`
	Sentiment      int `db:"sentiment" json:"sentiment"`
	Confidence     int `db:"confidence" json:"confidence"`
	Recommendation int `db:"recommendation" json:"recommendation"`
	Citation       int `db:"citation" json:"citation"`
	Trust          int `db:"trust" json:"trust"`
	Overall        int `db:"overall" json:"overall"`

	ResponseCount int `db:"response_count" json:"response_count"`

	PreviousScoreID *uuid.UUID `db:"previous_score_id" json:"previous_score_id,omitempty"`
	OverallChange   *int       `db:"overall_change" json:"overall_change,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Alert is emitted by the drift evaluator when consecutive composite scores
// diverge past a threshold. Immutable after creation; only the Read flag is
// touched later, and that belongs to the notification system.
type Alert struct {
	AlertID    uuid.UUID     `db:"alert_id" json:"alert_id"`
	BusinessID uuid.UUID     `db:"business_id" json:"business_id"`
	ScoreID    uuid.UUID     `db:"score_id" json:"score_id"`
	Type       AlertType     `db:"type" json:"type"`
	Severity   AlertSeverity `db:"severity" json:"severity"`
	Message    string        `db:"message" json:"message"`

	CurrentOverall  int `db:"current_overall" json:"current_overall"`
	PreviousOverall int `db:"previous_overall" json:"previous_overall"`
	Delta           int `db:"delta" json:"delta"`

	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PromptResponse is the raw answer handed over by the AI-platform query
// collaborator: one response text per prompt execution, tagged with the
// platform that produced it.
type PromptResponse struct {
	Platform     string    `json:"platform"`
	PromptText   string    `json:"prompt_text"`
	ResponseText string    `json:"response_text"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	Cost         float64   `json:"cost"`
	Error        string    `json:"error,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
