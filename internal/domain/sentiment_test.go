package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalTicker(t *testing.T) {
	cases := map[string]string{
		"gme":     "GME",
		" $tsla ": "TSLA",
		"NVDA":    "NVDA",
		"":        "",
		"$":       "",
	}
	for in, want := range cases {
		assert.Equal(t, want, CanonicalTicker(in), "input %q", in)
	}
}

func TestExcerptBoundsOnRuneBoundary(t *testing.T) {
	short := "$GME to the moon"
	assert.Equal(t, short, Excerpt(short))

	long := strings.Repeat("é", MaxExcerptLen)
	got := Excerpt(long)
	assert.LessOrEqual(t, len(got), MaxExcerptLen)
	assert.True(t, utf8.ValidString(got))
}

func TestSentimentEntryJSONShape(t *testing.T) {
	e := SentimentEntry{
		Ticker:     "GME",
		Label:      LabelPositive,
		Score:      0.97,
		ObservedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Subreddit:  "wallstreetbets",
		Excerpt:    "$GME to the moon",
	}
	raw, err := json.Marshal(e)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "GME", body["ticker"])
	assert.Equal(t, "POSITIVE", body["sentiment"])
	assert.Equal(t, 0.97, body["score"])
	assert.Equal(t, "2026-01-02T03:04:05Z", body["time"])
	assert.Equal(t, "wallstreetbets", body["subreddit"])
	assert.Equal(t, "$GME to the moon", body["text"])
}
