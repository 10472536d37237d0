package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	LabelPositive = "POSITIVE"
	LabelNegative = "NEGATIVE"
	LabelNeutral  = "NEUTRAL"
)

const (
	// MaxExcerptLen bounds SentimentEntry.Excerpt in bytes.
	MaxExcerptLen = 300
	// DefaultTrendingLimit is the size of the trending snapshot served to callers.
	DefaultTrendingLimit = 10
)

// DefaultTickers and DefaultSources are used when configuration does not override them.
var (
	DefaultTickers = []string{"GME", "AMC", "TSLA", "NVDA", "AAPL", "PLTR"}
	DefaultSources = []string{"wallstreetbets", "stocks", "pennystocks"}
)

// Post is one discussion item collected from a source during a refresh cycle.
type Post struct {
	ID          string
	Title       string
	Body        string
	Source      string
	URL         string
	Author      string
	PublishedAt time.Time
	RetrievedAt time.Time
}

// SentimentEntry is one scored mention of a ticker.
type SentimentEntry struct {
	Ticker     string    `json:"ticker"`
	Label      string    `json:"sentiment"`
	Score      float64   `json:"score"`
	ObservedAt time.Time `json:"time"`
	Subreddit  string    `json:"subreddit"`
	Excerpt    string    `json:"text"`
}

// TickerMention is one row of the trending ranking.
type TickerMention struct {
	Ticker   string `json:"ticker"`
	Mentions int    `json:"mentions"`
}

// CycleResult summarizes one ingestion refresh cycle.
type CycleResult struct {
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
	Sources          int       `json:"sources"`
	SourcesFailed    int       `json:"sources_failed"`
	PostsScanned     int       `json:"posts_scanned"`
	Matches          int       `json:"matches"`
	EntriesAdded     int       `json:"entries_added"`
	ClassifyFailures int       `json:"classify_failures"`
	Errors           []string  `json:"errors"`
}

// IngestStatus reports the most recent completed cycle.
type IngestStatus struct {
	Cycles     int          `json:"cycles"`
	LastCycle  *CycleResult `json:"last_cycle,omitempty"`
	LastError  string       `json:"last_error,omitempty"`
	TotalItems int          `json:"total_entries"`
}

// CanonicalTicker trims a symbol, drops a leading cashtag and uppercases it.
func CanonicalTicker(symbol string) string {
	symbol = strings.TrimSpace(symbol)
	symbol = strings.TrimPrefix(symbol, "$")
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Excerpt bounds s to MaxExcerptLen bytes without splitting a rune.
func Excerpt(s string) string {
	if len(s) <= MaxExcerptLen {
		return s
	}
	cut := MaxExcerptLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
