package services_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/tomhenman/trustable/internal/config"
	"github.com/tomhenman/trustable/internal/lexicon"
	"github.com/tomhenman/trustable/internal/models"
	"github.com/tomhenman/trustable/services"
)

// engineConfig mirrors the production defaults from config.Load without
// touching the environment.
func engineConfig() *config.EngineConfig {
	return &config.EngineConfig{
		ContextWindow:   150,
		MaxRankingValue: 10,

		HedgingMin:       2,
		NegativeMin:      2,
		PositiveCutoff:   0.3,
		StrongRecMin:     2,
		PrimaryMentions:  3,
		FeaturedMentions: 2,

		TrustSentimentWeight:   0.35,
		TrustHedgingWeight:     0.30,
		TrustRecWeight:         0.25,
		TrustNonNegativeWeight: 0.10,

		OverallTrustWeight:      0.25,
		OverallVisibilityWeight: 0.20,
		OverallRecWeight:        0.20,
		OverallCitationWeight:   0.10,
		OverallSentimentWeight:  0.15,
		OverallConfidenceWeight: 0.10,

		DropWarning:  -10,
		DropCritical: -20,
		GainPositive: 10,
		GainStrong:   20,
	}
}

func testLexicon() *lexicon.Lexicon {
	return lexicon.Default()
}

func acmeIdentity() models.BusinessIdentity {
	return models.BusinessIdentity{
		Name:        "Acme Plumbing",
		Websites:    []string{"acmeplumbing.com"},
		Competitors: []string{"Rapid Rooter", "Drain Masters"},
	}
}

func TestExtractSignalsMentionDetection(t *testing.T) {
	svc := services.NewExtractionService(engineConfig())

	tests := []struct {
		name          string
		responseText  string
		expectedCount int
	}{
		{
			name:          "no mention",
			responseText:  "There are many plumbers in the area worth calling.",
			expectedCount: 0,
		},
		{
			name:          "single exact mention",
			responseText:  "Acme Plumbing is a local service company.",
			expectedCount: 1,
		},
		{
			name:          "case insensitive mention",
			responseText:  "Have you tried ACME PLUMBING? Many people like acme plumbing.",
			expectedCount: 2,
		},
		{
			name:          "three mentions",
			responseText:  "Acme Plumbing is popular. Acme Plumbing has been around for years. Call Acme Plumbing today.",
			expectedCount: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := svc.ExtractSignals(tt.responseText, acmeIdentity())

			if signals.MentionCount != tt.expectedCount {
				t.Errorf("MentionCount = %d, want %d", signals.MentionCount, tt.expectedCount)
			}
			if signals.Mentioned != (tt.expectedCount > 0) {
				t.Errorf("Mentioned = %v, want %v", signals.Mentioned, tt.expectedCount > 0)
			}
			if signals.Mentioned != (signals.MentionCount > 0) {
				t.Errorf("invariant violated: Mentioned=%v but MentionCount=%d", signals.Mentioned, signals.MentionCount)
			}
		})
	}
}

func TestExtractSignalsPunctuatedName(t *testing.T) {
	svc := services.NewExtractionService(engineConfig())
	identity := models.BusinessIdentity{Name: "Joe's Pizza + Pasta"}

	signals := svc.ExtractSignals("Locals swear by Joe's Pizza + Pasta on Main Street.", identity)
	if !signals.Mentioned || signals.MentionCount != 1 {
		t.Errorf("Mentioned=%v MentionCount=%d, want mentioned once", signals.Mentioned, signals.MentionCount)
	}
}

// Lowercasing can change the byte length of some runes (U+023A grows from
// two bytes to three, U+0130 lowers to a two-rune sequence), so mention
// offsets must come from the original-case string or the context window
// slices out of range.
func TestExtractSignalsUnicodeResponse(t *testing.T) {
	svc := services.NewExtractionService(engineConfig())

	tests := []struct {
		name         string
		responseText string
	}{
		{
			name:         "growing case fold before the mention",
			responseText: strings.Repeat("Ⱥ", 300) + " Acme Plumbing is reliable.",
		},
		{
			name:         "turkish dotted capital before the mention",
			responseText: strings.Repeat("İ", 300) + " Acme Plumbing is reliable.",
		},
		{
			name:         "multibyte text surrounding the mention",
			responseText: strings.Repeat("日本語テキスト ", 40) + "Acme Plumbing" + strings.Repeat(" さらに続くテキスト", 40),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := svc.ExtractSignals(tt.responseText, acmeIdentity())

			if !signals.Mentioned || signals.MentionCount != 1 {
				t.Fatalf("Mentioned=%v MentionCount=%d, want mentioned once", signals.Mentioned, signals.MentionCount)
			}
			if !strings.Contains(signals.MentionContext, "Acme Plumbing") {
				t.Errorf("MentionContext %q does not contain the mention", signals.MentionContext)
			}
			if !utf8.ValidString(signals.MentionContext) {
				t.Errorf("MentionContext %q is not valid UTF-8", signals.MentionContext)
			}
		})
	}
}

func TestExtractSignalsEmptyInputs(t *testing.T) {
	svc := services.NewExtractionService(engineConfig())

	signals := svc.ExtractSignals("", acmeIdentity())
	if signals.Mentioned || signals.MentionCount != 0 {
		t.Errorf("empty response: got %+v, want zero signals", signals)
	}

	signals = svc.ExtractSignals("Some response text.", models.BusinessIdentity{})
	if signals.Mentioned || signals.MentionCount != 0 {
		t.Errorf("empty business name: got %+v, want zero signals", signals)
	}
}

func TestExtractSignalsMentionContext(t *testing.T) {
	svc := services.NewExtractionService(engineConfig())

	t.Run("short text has no ellipses", func(t *testing.T) {
		text := "Acme Plumbing is reliable."
		signals := svc.ExtractSignals(text, acmeIdentity())
		if signals.MentionContext != text {
			t.Errorf("MentionContext = %q, want the full text %q", signals.MentionContext, text)
		}
	})

	t.Run("long text is trimmed with ellipses", func(t *testing.T) {
		padding := strings.Repeat("plumbing services in the region are varied. ", 10)
		text := padding + "Acme Plumbing stands out here. " + padding
		signals := svc.ExtractSignals(text, acmeIdentity())

		if !strings.HasPrefix(signals.MentionContext, "...") {
			t.Errorf("MentionContext missing leading ellipsis: %q", signals.MentionContext)
		}
		if !strings.HasSuffix(signals.MentionContext, "...") {
			t.Errorf("MentionContext missing trailing ellipsis: %q", signals.MentionContext)
		}
		if !strings.Contains(signals.MentionContext, "Acme Plumbing") {
			t.Errorf("MentionContext does not contain the mention: %q", signals.MentionContext)
		}
	})

	t.Run("context preserves original case", func(t *testing.T) {
		text := "ACME PLUMBING Is The One."
		signals := svc.ExtractSignals(text, acmeIdentity())
		if !strings.Contains(signals.MentionContext, "ACME PLUMBING") {
			t.Errorf("MentionContext folded the original text: %q", signals.MentionContext)
		}
	})
}

func TestExtractSignalsRanking(t *testing.T) {
	svc := services.NewExtractionService(engineConfig())

	tests := []struct {
		name         string
		responseText string
		expected     *int
	}{
		{
			name:         "numbered list position detected",
			responseText: "Top plumbers:\n1. Acme Plumbing\n2. Rapid Rooter",
			expected:     intPtr(1),
		},
		{
			name:         "first number wins",
			responseText: "3. Drain Masters\n4. Acme Plumbing",
			expected:     intPtr(3),
		},
		{
			name:         "position past ceiling dropped",
			responseText: "42. Acme Plumbing barely makes the list",
			expected:     nil,
		},
		{
			name:         "no numbered list",
			responseText: "Acme Plumbing is one of several options.",
			expected:     nil,
		},
		{
			name:         "ranking ignored when not mentioned",
			responseText: "1. Rapid Rooter\n2. Drain Masters",
			expected:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := svc.ExtractSignals(tt.responseText, acmeIdentity())

			if tt.expected == nil {
				if signals.RankingPosition != nil {
					t.Errorf("RankingPosition = %d, want nil", *signals.RankingPosition)
				}
				return
			}
			if signals.RankingPosition == nil {
				t.Fatalf("RankingPosition = nil, want %d", *tt.expected)
			}
			if *signals.RankingPosition != *tt.expected {
				t.Errorf("RankingPosition = %d, want %d", *signals.RankingPosition, *tt.expected)
			}
		})
	}
}

func TestExtractSignalsCitations(t *testing.T) {
	svc := services.NewExtractionService(engineConfig())

	t.Run("http and https URLs collected in order", func(t *testing.T) {
		text := "See https://acmeplumbing.com/reviews and http://example.org/plumbers for Acme Plumbing details."
		signals := svc.ExtractSignals(text, acmeIdentity())

		want := []string{"https://acmeplumbing.com/reviews", "http://example.org/plumbers"}
		if len(signals.CitedURLs) != len(want) {
			t.Fatalf("CitedURLs = %v, want %v", signals.CitedURLs, want)
		}
		for i := range want {
			if signals.CitedURLs[i] != want[i] {
				t.Errorf("CitedURLs[%d] = %q, want %q", i, signals.CitedURLs[i], want[i])
			}
		}
	})

	t.Run("non-http schemes excluded", func(t *testing.T) {
		text := "Contact Acme Plumbing at mailto:info@acmeplumbing.com or ftp://files.acmeplumbing.com"
		signals := svc.ExtractSignals(text, acmeIdentity())
		if len(signals.CitedURLs) != 0 {
			t.Errorf("CitedURLs = %v, want none", signals.CitedURLs)
		}
	})
}

func TestExtractSignalsBusinessCitedURL(t *testing.T) {
	svc := services.NewExtractionService(engineConfig())

	t.Run("hostname containing squashed name matches", func(t *testing.T) {
		text := "Acme Plumbing reviews: https://www.acmeplumbing.com/reviews"
		signals := svc.ExtractSignals(text, acmeIdentity())
		if signals.BusinessCitedURL == nil {
			t.Fatal("BusinessCitedURL = nil, want matched URL")
		}
		if *signals.BusinessCitedURL != "https://www.acmeplumbing.com/reviews" {
			t.Errorf("BusinessCitedURL = %q", *signals.BusinessCitedURL)
		}
	})

	t.Run("unrelated hostname does not match", func(t *testing.T) {
		text := "Acme Plumbing reviews: https://yelp.com/biz/acme-plumbing"
		signals := svc.ExtractSignals(text, acmeIdentity())
		// The squashed-name heuristic false-negatives here on purpose: the
		// hostname is yelp.com, the path is not consulted.
		if signals.BusinessCitedURL != nil {
			t.Errorf("BusinessCitedURL = %q, want nil", *signals.BusinessCitedURL)
		}
	})
}

func TestExtractSignalsPrimaryCitation(t *testing.T) {
	svc := services.NewExtractionService(engineConfig())

	tests := []struct {
		name         string
		responseText string
		expected     bool
	}{
		{
			name:         "owned domain cited",
			responseText: "Acme Plumbing publishes rates at https://acmeplumbing.com/pricing",
			expected:     true,
		},
		{
			name:         "subdomain resolves to owned registrable domain",
			responseText: "Acme Plumbing blog: https://blog.acmeplumbing.com/post",
			expected:     true,
		},
		{
			name:         "third party citation only",
			responseText: "Acme Plumbing reviews at https://www.yelp.com/biz/acme",
			expected:     false,
		},
		{
			name:         "no citations",
			responseText: "Acme Plumbing is a known name locally.",
			expected:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := svc.ExtractSignals(tt.responseText, acmeIdentity())
			if signals.HasPrimaryCitation != tt.expected {
				t.Errorf("HasPrimaryCitation = %v, want %v", signals.HasPrimaryCitation, tt.expected)
			}
		})
	}
}

func TestExtractSignalsCompetitors(t *testing.T) {
	svc := services.NewExtractionService(engineConfig())

	text := "Drain Masters and Acme Plumbing both serve the area; rapid rooter does too."
	signals := svc.ExtractSignals(text, acmeIdentity())

	// Profile order, not appearance order.
	want := []string{"Rapid Rooter", "Drain Masters"}
	if len(signals.CompetitorsMentioned) != len(want) {
		t.Fatalf("CompetitorsMentioned = %v, want %v", signals.CompetitorsMentioned, want)
	}
	for i := range want {
		if signals.CompetitorsMentioned[i] != want[i] {
			t.Errorf("CompetitorsMentioned[%d] = %q, want %q", i, signals.CompetitorsMentioned[i], want[i])
		}
	}
}

func intPtr(v int) *int {
	return &v
}
