package lexicon_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tomhenman/trustable/internal/lexicon"
)

func TestDefaultListsPopulated(t *testing.T) {
	lex := lexicon.Default()

	if lex.Version == "" {
		t.Error("Version is empty")
	}
	if len(lex.Positive) == 0 {
		t.Error("Positive list is empty")
	}
	if len(lex.Negative) == 0 {
		t.Error("Negative list is empty")
	}
	if len(lex.Hedging) == 0 {
		t.Error("Hedging list is empty")
	}
	if len(lex.Recommendation) == 0 {
		t.Error("Recommendation list is empty")
	}
}

func TestLoadWithoutPathReturnsDefaults(t *testing.T) {
	lex, err := lexicon.Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if lex.Version != lexicon.Default().Version {
		t.Errorf("Version = %q, want default %q", lex.Version, lexicon.Default().Version)
	}
}

func TestLoadFilePartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.json")
	override := `{"version":"test-1","positive":["stellar","superb"]}`
	if err := os.WriteFile(path, []byte(override), 0o644); err != nil {
		t.Fatalf("failed to write override file: %v", err)
	}

	lex, err := lexicon.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if lex.Version != "test-1" {
		t.Errorf("Version = %q, want test-1", lex.Version)
	}
	if len(lex.Positive) != 2 || lex.Positive[0] != "stellar" {
		t.Errorf("Positive = %v, want the override list", lex.Positive)
	}

	// Lists the file does not name fall back to the defaults.
	defaults := lexicon.Default()
	if len(lex.Negative) != len(defaults.Negative) {
		t.Errorf("Negative = %v, want defaults", lex.Negative)
	}
	if len(lex.Hedging) != len(defaults.Hedging) {
		t.Errorf("Hedging = %v, want defaults", lex.Hedging)
	}
	if len(lex.Recommendation) != len(defaults.Recommendation) {
		t.Errorf("Recommendation = %v, want defaults", lex.Recommendation)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := lexicon.LoadFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("LoadFile on a missing path succeeded, want error")
	}
}

func TestLoadFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if _, err := lexicon.LoadFile(path); err == nil {
		t.Error("LoadFile on malformed JSON succeeded, want error")
	}
}
