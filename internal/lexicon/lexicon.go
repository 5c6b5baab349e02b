// internal/lexicon/lexicon.go
package lexicon

import (
	"encoding/json"
	"fmt"
	"os"
)

// Lexicon holds the word and phrase lists the response classifier matches
// against. Entries are matched case-insensitively as plain substrings of the
// response, so multi-word phrases are allowed. The lists are configuration
// data: they carry a version string and can be replaced wholesale from a JSON
// file without touching classifier logic.
type Lexicon struct {
	Version        string   `json:"version"`
	Positive       []string `json:"positive"`
	Negative       []string `json:"negative"`
	Hedging        []string `json:"hedging"`
	Recommendation []string `json:"recommendation"`
}

// Default returns the compiled-in lexicon set.
func Default() *Lexicon {
	return &Lexicon{
		Version: "2025-08-01",
		Positive: []string{
			"excellent", "great", "best", "leading", "trusted", "reliable",
			"reputable", "popular", "outstanding", "well-known", "well known",
			"high quality", "high-quality", "award-winning", "innovative",
			"love", "highly rated", "top-rated", "impressive", "solid choice",
		},
		Negative: []string{
			"poor", "bad", "avoid", "scam", "complaint", "lawsuit",
			"untrustworthy", "unreliable", "negative reviews", "controversy",
			"fraud", "worst", "disappointing", "overpriced", "hidden fees",
			"misleading", "shady",
		},
		Hedging: []string{
			"might", "could", "possibly", "perhaps", "typically", "generally",
			"usually", "sometimes", "often", "depends", "unclear", "not sure",
			"reportedly", "allegedly", "seems to", "appears to",
			"in some cases", "varies", "hard to say",
		},
		Recommendation: []string{
			"we recommend", "i recommend", "i'd recommend", "would recommend",
			"recommend trying", "recommend checking", "should consider",
			"worth considering", "worth a look", "top choice", "top pick",
			"best option", "go-to", "check out", "suggest trying",
		},
	}
}

// LoadFile reads a JSON lexicon override from disk. Missing lists fall back
// to the defaults so an override file only needs to name the lists it
// changes.
func LoadFile(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file %s: %w", path, err)
	}

	var lex Lexicon
	if err := json.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon file %s: %w", path, err)
	}

	defaults := Default()
	if lex.Version == "" {
		lex.Version = defaults.Version
	}
	if len(lex.Positive) == 0 {
		lex.Positive = defaults.Positive
	}
	if len(lex.Negative) == 0 {
		lex.Negative = defaults.Negative
	}
	if len(lex.Hedging) == 0 {
		lex.Hedging = defaults.Hedging
	}
	if len(lex.Recommendation) == 0 {
		lex.Recommendation = defaults.Recommendation
	}

	return &lex, nil
}

// Load resolves the lexicon for a given override path: the file when one is
// configured, the compiled-in defaults otherwise.
func Load(path string) (*Lexicon, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}
