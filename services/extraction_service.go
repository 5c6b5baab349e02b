// services/extraction_service.go
package services

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/publicsuffix"
	"mvdan.cc/xurls/v2"

	"github.com/tomhenman/trustable/internal/config"
	"github.com/tomhenman/trustable/internal/models"
)

// rankingPattern matches the first numbered-list item anywhere in a
// response, e.g. "3. Acme Plumbing".
var rankingPattern = regexp.MustCompile(`(\d+)\.\s+\S`)

type extractionService struct {
	cfg *config.EngineConfig
}

func NewExtractionService(cfg *config.EngineConfig) ExtractionService {
	return &extractionService{cfg: cfg}
}

// ExtractSignals detects mentions, context, ranking, citations and
// competitor co-mentions for one response. It never fails: absent data
// yields empty and false defaults.
func (s *extractionService) ExtractSignals(responseText string, business models.BusinessIdentity) models.SignalSet {
	signals := models.SignalSet{}
	if responseText == "" || business.Name == "" {
		return signals
	}

	folded := strings.ToLower(responseText)

	// Mention detection is case-insensitive whole-substring matching, not
	// tokenized; the name is escaped so punctuation in business names
	// ("Joe's Pizza + Pasta") cannot break the pattern. Matching runs on
	// the original-case string: lowercasing first is not byte-length
	// preserving for every rune, which would skew the offsets the context
	// window slices with.
	namePattern := regexp.MustCompile("(?i)" + regexp.QuoteMeta(business.Name))
	matches := namePattern.FindAllStringIndex(responseText, -1)

	signals.MentionCount = len(matches)
	signals.Mentioned = signals.MentionCount > 0

	if signals.Mentioned {
		signals.MentionContext = s.contextWindow(responseText, matches[0][0], matches[0][1])
		signals.RankingPosition = s.detectRanking(responseText)
	}

	signals.CitedURLs = extractCitationURLs(responseText)
	signals.BusinessCitedURL = businessCitedURL(signals.CitedURLs, business.Name)
	signals.HasPrimaryCitation = hasPrimaryCitation(signals.CitedURLs, business.Websites)
	signals.CompetitorsMentioned = competitorsIn(folded, business.Competitors)

	return signals
}

// contextWindow cuts a symmetric window around the first mention, taken
// from the original-case text. Cut points are widened to the nearest rune
// boundary so the window never starts or ends mid-rune.
func (s *extractionService) contextWindow(text string, matchStart, matchEnd int) string {
	window := s.cfg.ContextWindow

	start := matchStart - window
	if start < 0 {
		start = 0
	}
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	end := matchEnd + window
	if end > len(text) {
		end = len(text)
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}

	context := text[start:end]
	if start > 0 {
		context = "..." + context
	}
	if end < len(text) {
		context = context + "..."
	}
	return context
}

// detectRanking reports the first numbered-list position in the response.
// Positions past the configured ceiling are noise and dropped.
func (s *extractionService) detectRanking(text string) *int {
	match := rankingPattern.FindStringSubmatch(text)
	if match == nil {
		return nil
	}

	position, err := strconv.Atoi(match[1])
	if err != nil {
		return nil
	}
	if position > s.cfg.MaxRankingValue {
		return nil
	}
	return &position
}

// extractCitationURLs collects every well-formed http(s) URL token in the
// response, in order of appearance. Duplicates are kept; rates downstream
// only care whether any citation exists.
func extractCitationURLs(text string) []string {
	var cited []string
	for _, match := range xurls.Strict().FindAllString(text, -1) {
		urlStr := strings.TrimSpace(match)
		u, err := url.Parse(urlStr)
		if err != nil {
			continue
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			continue // skip mailto:, ftp:, etc.
		}
		cited = append(cited, urlStr)
	}
	return cited
}

// businessCitedURL picks the first citation whose host contains the
// business name with spaces stripped.
//
// This is a best-effort heuristic, not a guarantee: it false-negatives for
// most real citations (brands rarely match their domain exactly) and is
// kept as-is pending a product-level review of citation attribution.
func businessCitedURL(citedURLs []string, businessName string) *string {
	nameKey := strings.ReplaceAll(strings.ToLower(businessName), " ", "")
	if nameKey == "" {
		return nil
	}

	for _, citedURL := range citedURLs {
		u, err := url.Parse(citedURL)
		if err != nil || u.Hostname() == "" {
			continue
		}
		if strings.Contains(strings.ToLower(u.Hostname()), nameKey) {
			matched := citedURL
			return &matched
		}
	}
	return nil
}

// hasPrimaryCitation reports whether any citation resolves to one of the
// business's own websites, compared at the registrable-domain level.
func hasPrimaryCitation(citedURLs []string, websites []string) bool {
	for _, citedURL := range citedURLs {
		if isPrimaryDomain(citedURL, websites) {
			return true
		}
	}
	return false
}

// isPrimaryDomain checks if a citation URL belongs to any of the business's
// own domains.
func isPrimaryDomain(citationURL string, websites []string) bool {
	citationBase, err := getBaseDomain(citationURL)
	if err != nil {
		// If we can't parse the citation URL, default to secondary
		return false
	}

	for _, website := range websites {
		websiteBase, err := getBaseDomain(website)
		if err != nil {
			continue
		}
		if strings.EqualFold(citationBase, websiteBase) {
			return true
		}
	}
	return false
}

// getBaseDomain extracts the base domain (eTLD+1) from a URL using publicsuffix
func getBaseDomain(urlStr string) (string, error) {
	// Handle URLs without protocol
	if !strings.HasPrefix(urlStr, "http://") && !strings.HasPrefix(urlStr, "https://") {
		urlStr = "https://" + urlStr
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL %s: %w", urlStr, err)
	}

	hostname := u.Hostname()
	if hostname == "" {
		return "", fmt.Errorf("no hostname found in URL: %s", urlStr)
	}

	baseDomain, err := publicsuffix.EffectiveTLDPlusOne(hostname)
	if err != nil {
		return "", fmt.Errorf("failed to get base domain for %s: %w", hostname, err)
	}

	return baseDomain, nil
}

// competitorsIn returns the competitors whose folded name appears in the
// folded response, preserving the profile's competitor order.
func competitorsIn(foldedResponse string, competitors []string) []string {
	var mentioned []string
	for _, competitor := range competitors {
		foldedCompetitor := strings.ToLower(competitor)
		if foldedCompetitor == "" {
			continue
		}
		if strings.Contains(foldedResponse, foldedCompetitor) {
			mentioned = append(mentioned, competitor)
		}
	}
	return mentioned
}
