package ticker

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"signal-sniper/internal/domain"
)

type MatchMode string

const (
	// ModeSubstring reports a match whenever the symbol occurs anywhere in the text.
	ModeSubstring MatchMode = "substring"
	// ModeWord requires the symbol to stand alone between non-alphanumeric runes.
	ModeWord MatchMode = "word"
)

// ParseMatchMode maps a config value to a MatchMode. Empty means substring.
func ParseMatchMode(v string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(v))) {
	case "", ModeSubstring:
		return ModeSubstring, nil
	case ModeWord:
		return ModeWord, nil
	default:
		return "", fmt.Errorf("unknown ticker match mode %q", v)
	}
}

type Matcher struct {
	mode MatchMode
}

func NewMatcher(mode MatchMode) *Matcher {
	if mode != ModeWord {
		mode = ModeSubstring
	}
	return &Matcher{mode: mode}
}

func (m *Matcher) Mode() MatchMode { return m.mode }

// Matches reports whether symbol, bare or as a $cashtag, is mentioned in text.
// Comparison is case-insensitive.
func (m *Matcher) Matches(text, symbol string) bool {
	symbol = domain.CanonicalTicker(symbol)
	if symbol == "" || text == "" {
		return false
	}
	upper := strings.ToUpper(text)
	if m.mode == ModeWord {
		return containsWord(upper, symbol)
	}
	return strings.Contains(upper, "$"+symbol) || strings.Contains(upper, symbol)
}

// MatchAll returns the symbols from tickers mentioned in text, in the given order.
func (m *Matcher) MatchAll(text string, tickers []string) []string {
	var out []string
	for _, symbol := range tickers {
		if m.Matches(text, symbol) {
			out = append(out, domain.CanonicalTicker(symbol))
		}
	}
	return out
}

func containsWord(upper, symbol string) bool {
	for start := 0; start < len(upper); {
		idx := strings.Index(upper[start:], symbol)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(symbol)
		if boundaryBefore(upper, idx) && boundaryAfter(upper, end) {
			return true
		}
		start = idx + 1
	}
	return false
}

func boundaryBefore(s string, idx int) bool {
	if idx == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:idx])
	return r == '$' || !isWordRune(r)
}

func boundaryAfter(s string, end int) bool {
	if end >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[end:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
