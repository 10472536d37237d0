package sentiment

import (
	"context"
	"strings"

	"signal-sniper/internal/domain"
)

var (
	bullishTerms = []string{"bull", "moon", "rocket", "squeeze", "breakout", "surge", "rally", "calls", "buy", "long", "tendies", "diamond hands", "undervalued", "beat", "upgrade", "rip"}
	bearishTerms = []string{"bear", "puts", "crash", "dump", "sell", "short", "bagholder", "drill", "rug", "overvalued", "miss", "downgrade", "lawsuit", "bankrupt", "dilution"}
)

// Heuristic is a keyword classifier used when no model backend is configured.
type Heuristic struct{}

func NewHeuristic() *Heuristic { return &Heuristic{} }

func (h *Heuristic) Classify(ctx context.Context, text string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	label, score := HeuristicSentiment(Truncate(text))
	return Result{Label: label, Score: score}, nil
}

// HeuristicSentiment counts bullish and bearish terms and returns a label with a confidence.
func HeuristicSentiment(text string) (string, float64) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return domain.LabelNeutral, 0.25
	}

	bullCount := countMatches(text, bullishTerms)
	bearCount := countMatches(text, bearishTerms)

	polarity := float64(bullCount-bearCount) / float64(bullCount+bearCount+1)
	confidence := clamp(0.5+(0.1*float64(absInt(bullCount-bearCount))), 0.5, 0.95)

	switch {
	case polarity > 0.2:
		return domain.LabelPositive, confidence
	case polarity < -0.2:
		return domain.LabelNegative, confidence
	default:
		return domain.LabelNeutral, clamp(0.5-absFloat(polarity), 0.25, 0.5)
	}
}

func countMatches(text string, tokens []string) int {
	count := 0
	for _, token := range tokens {
		if strings.Contains(text, token) {
			count++
		}
	}
	return count
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
