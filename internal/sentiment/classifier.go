package sentiment

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"signal-sniper/internal/domain"
)

// MaxInputRunes is the longest text handed to any backend.
const MaxInputRunes = 512

// Result is a categorical label and the model's confidence in it.
type Result struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier scores a span of text.
type Classifier interface {
	Classify(ctx context.Context, text string) (Result, error)
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(ctx context.Context, text string) (Result, error)

func (f ClassifierFunc) Classify(ctx context.Context, text string) (Result, error) {
	return f(ctx, text)
}

// Truncate cuts text to MaxInputRunes runes.
func Truncate(text string) string {
	if utf8.RuneCountInString(text) <= MaxInputRunes {
		return text
	}
	n := 0
	for i := range text {
		if n == MaxInputRunes {
			return text[:i]
		}
		n++
	}
	return text
}

// NormalizeLabel maps backend-specific labels onto POSITIVE, NEGATIVE and NEUTRAL.
func NormalizeLabel(label string) string {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "positive", "pos", "bull", "bullish", "label_2":
		return domain.LabelPositive
	case "negative", "neg", "bear", "bearish", "label_0":
		return domain.LabelNegative
	default:
		return domain.LabelNeutral
	}
}

func normalizeResult(r Result) Result {
	return Result{Label: NormalizeLabel(r.Label), Score: clamp(r.Score, 0, 1)}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type Backend string

const (
	BackendHeuristic   Backend = "heuristic"
	BackendOpenAI      Backend = "openai"
	BackendHuggingFace Backend = "huggingface"
)

// Options selects and configures a backend for New.
type Options struct {
	Backend      Backend
	OpenAIAPIKey string
	OpenAIModel  string
	HFAPIURL     string
	HFAPIToken   string
}

// New builds the classifier named by opts.Backend.
func New(opts Options) (Classifier, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(string(opts.Backend)))) {
	case "", BackendHeuristic:
		return NewHeuristic(), nil
	case BackendOpenAI:
		c := NewOpenAI(opts.OpenAIAPIKey, opts.OpenAIModel)
		if c == nil {
			return nil, fmt.Errorf("openai classifier requires an API key")
		}
		return c, nil
	case BackendHuggingFace:
		return NewHuggingFace(opts.HFAPIURL, opts.HFAPIToken), nil
	default:
		return nil, fmt.Errorf("unknown classifier backend %q", opts.Backend)
	}
}
