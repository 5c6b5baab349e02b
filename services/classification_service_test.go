package services_test

import (
	"math"
	"testing"

	"github.com/tomhenman/trustable/internal/models"
	"github.com/tomhenman/trustable/services"
)

func TestClassifyAbsentMention(t *testing.T) {
	extraction := services.NewExtractionService(engineConfig())
	classification := services.NewClassificationService(engineConfig(), testLexicon())

	// The business never appears, but the lexicons still run over the text.
	text := "We love this company, highly recommended and trusted!"
	identity := models.BusinessIdentity{Name: "Acme"}

	signals := extraction.ExtractSignals(text, identity)
	analysis := classification.Classify(signals, text)

	if signals.Mentioned {
		t.Error("Mentioned = true, want false")
	}
	if analysis.MentionType != models.MentionAbsent {
		t.Errorf("MentionType = %s, want %s", analysis.MentionType, models.MentionAbsent)
	}
	// "love" and "trusted" hit the positive lexicon.
	if analysis.Sentiment != models.SentimentPositive {
		t.Errorf("Sentiment = %s, want %s", analysis.Sentiment, models.SentimentPositive)
	}
	// "highly recommended" is not a recommendation-lexicon phrase; the
	// lexicon carries assertive verb phrases like "would recommend".
	if analysis.IsRecommended {
		t.Error("IsRecommended = true, want false")
	}
}

func TestClassifyPrimaryMention(t *testing.T) {
	extraction := services.NewExtractionService(engineConfig())
	classification := services.NewClassificationService(engineConfig(), testLexicon())

	text := "Acme is a known name. Acme serves the whole metro. Many customers stay with Acme for years."
	identity := models.BusinessIdentity{Name: "Acme"}

	signals := extraction.ExtractSignals(text, identity)
	analysis := classification.Classify(signals, text)

	if !signals.Mentioned {
		t.Error("Mentioned = false, want true")
	}
	if signals.MentionCount != 3 {
		t.Errorf("MentionCount = %d, want 3", signals.MentionCount)
	}
	if analysis.MentionType != models.MentionPrimary {
		t.Errorf("MentionType = %s, want %s", analysis.MentionType, models.MentionPrimary)
	}
}

func TestClassifyHedgingConfidence(t *testing.T) {
	extraction := services.NewExtractionService(engineConfig())
	classification := services.NewClassificationService(engineConfig(), testLexicon())

	// Exactly two distinct hedging words ("might", "typically") and one
	// positive word ("great").
	text := "It might be a great option, though results typically vary."
	identity := models.BusinessIdentity{Name: "Acme"}

	signals := extraction.ExtractSignals(text, identity)
	analysis := classification.Classify(signals, text)

	if !analysis.HasHedging {
		t.Errorf("HasHedging = false, want true (phrases: %v)", analysis.HedgingPhrases)
	}
	if len(analysis.HedgingPhrases) != 2 {
		t.Errorf("HedgingPhrases = %v, want exactly 2 entries", analysis.HedgingPhrases)
	}
	if math.Abs(analysis.ConfidenceScore-0.4) > 1e-9 {
		t.Errorf("ConfidenceScore = %v, want 0.4", analysis.ConfidenceScore)
	}
}

func TestClassifySentimentCategories(t *testing.T) {
	classification := services.NewClassificationService(engineConfig(), testLexicon())

	tests := []struct {
		name         string
		responseText string
		expected     models.Sentiment
	}{
		{
			name:         "two negative words dominate positives",
			responseText: "A great company, but avoid it: it is unreliable and the service is bad.",
			expected:     models.SentimentNegative,
		},
		{
			name:         "positive words only",
			responseText: "An excellent and reliable provider.",
			expected:     models.SentimentPositive,
		},
		{
			name:         "mixed leaning positive",
			responseText: "Excellent service, reliable staff, though somewhat overpriced.",
			expected:     models.SentimentPositive,
		},
		{
			name:         "single negative word",
			responseText: "Some customers found it overpriced.",
			expected:     models.SentimentCautious,
		},
		{
			name:         "no lexicon hits",
			responseText: "The company operates in three cities.",
			expected:     models.SentimentNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := classification.Classify(models.SignalSet{}, tt.responseText)
			if analysis.Sentiment != tt.expected {
				t.Errorf("Sentiment = %s, want %s (score %v)", analysis.Sentiment, tt.expected, analysis.SentimentScore)
			}
		})
	}
}

func TestClassifySentimentScoreBounds(t *testing.T) {
	classification := services.NewClassificationService(engineConfig(), testLexicon())

	texts := []string{
		"",
		"excellent great best leading trusted reliable",
		"poor bad avoid scam complaint lawsuit fraud worst",
		"great but disappointing",
	}

	for _, text := range texts {
		analysis := classification.Classify(models.SignalSet{}, text)
		if analysis.SentimentScore < -1 || analysis.SentimentScore > 1 {
			t.Errorf("SentimentScore = %v for %q, want within [-1,1]", analysis.SentimentScore, text)
		}
		if analysis.ConfidenceScore < 0 || analysis.ConfidenceScore > 1 {
			t.Errorf("ConfidenceScore = %v for %q, want within [0,1]", analysis.ConfidenceScore, text)
		}
	}
}

func TestClassifyRecommendation(t *testing.T) {
	classification := services.NewClassificationService(engineConfig(), testLexicon())

	tests := []struct {
		name             string
		responseText     string
		expectedStrength models.RecommendationStrength
		expectedFlag     bool
	}{
		{
			name:             "no recommendation language",
			responseText:     "The company is based downtown.",
			expectedStrength: models.RecommendationNone,
			expectedFlag:     false,
		},
		{
			name:             "single phrase is moderate",
			responseText:     "I would recommend them for routine work.",
			expectedStrength: models.RecommendationModerate,
			expectedFlag:     true,
		},
		{
			name:             "two phrases are strong",
			responseText:     "I would recommend them; they are the top choice locally.",
			expectedStrength: models.RecommendationStrong,
			expectedFlag:     true,
		},
		{
			name:             "negative sentiment blocks the flag",
			responseText:     "Some would recommend them, but reviews say avoid: unreliable and overpriced.",
			expectedStrength: models.RecommendationModerate,
			expectedFlag:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := classification.Classify(models.SignalSet{}, tt.responseText)
			if analysis.RecommendationStrength != tt.expectedStrength {
				t.Errorf("RecommendationStrength = %s, want %s", analysis.RecommendationStrength, tt.expectedStrength)
			}
			if analysis.IsRecommended != tt.expectedFlag {
				t.Errorf("IsRecommended = %v, want %v", analysis.IsRecommended, tt.expectedFlag)
			}
		})
	}
}

func TestClassifyMentionTypes(t *testing.T) {
	classification := services.NewClassificationService(engineConfig(), testLexicon())

	tests := []struct {
		name         string
		signals      models.SignalSet
		responseText string
		expected     models.MentionType
	}{
		{
			name:         "absent",
			signals:      models.SignalSet{},
			responseText: "Nothing about the business here.",
			expected:     models.MentionAbsent,
		},
		{
			name:         "negative outranks volume",
			signals:      models.SignalSet{Mentioned: true, MentionCount: 5},
			responseText: "Mentioned often, but avoid: unreliable.",
			expected:     models.MentionNegative,
		},
		{
			name:         "primary at three mentions",
			signals:      models.SignalSet{Mentioned: true, MentionCount: 3},
			responseText: "Neutral text.",
			expected:     models.MentionPrimary,
		},
		{
			name:         "featured at two mentions",
			signals:      models.SignalSet{Mentioned: true, MentionCount: 2},
			responseText: "Neutral text.",
			expected:     models.MentionFeatured,
		},
		{
			name: "comparison when competitors co-mentioned",
			signals: models.SignalSet{
				Mentioned:            true,
				MentionCount:         1,
				CompetitorsMentioned: []string{"Rapid Rooter"},
			},
			responseText: "Neutral text.",
			expected:     models.MentionComparison,
		},
		{
			name:         "brief single mention",
			signals:      models.SignalSet{Mentioned: true, MentionCount: 1},
			responseText: "Neutral text.",
			expected:     models.MentionBrief,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := classification.Classify(tt.signals, tt.responseText)
			if analysis.MentionType != tt.expected {
				t.Errorf("MentionType = %s, want %s", analysis.MentionType, tt.expected)
			}

			gotAbsent := analysis.MentionType == models.MentionAbsent
			if gotAbsent != !tt.signals.Mentioned {
				t.Errorf("ABSENT iff not mentioned violated: MentionType=%s Mentioned=%v", analysis.MentionType, tt.signals.Mentioned)
			}
		})
	}
}
