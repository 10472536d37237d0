package aggregate

import (
	"sync"

	"signal-sniper/internal/domain"
)

// Store keeps the per-ticker sentiment history in memory. One ingestion
// writer and any number of readers may use it concurrently.
type Store struct {
	mu           sync.RWMutex
	entries      map[string][]domain.SentimentEntry
	mentions     map[string]int
	order        []string
	maxPerTicker int
	total        int
}

// NewStore returns an empty store. maxPerTicker <= 0 keeps every entry.
func NewStore(maxPerTicker int) *Store {
	if maxPerTicker < 0 {
		maxPerTicker = 0
	}
	return &Store{
		entries:      make(map[string][]domain.SentimentEntry),
		mentions:     make(map[string]int),
		maxPerTicker: maxPerTicker,
	}
}

// Append adds e to the end of ticker's history. Once the history exceeds
// the retention bound the oldest entries are dropped.
func (s *Store) Append(ticker string, e domain.SentimentEntry) {
	key := domain.CanonicalTicker(ticker)
	if key == "" {
		return
	}
	e.Ticker = key

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.entries[key]
	if !ok {
		s.order = append(s.order, key)
	}
	history = append(history, e)
	s.total++
	s.mentions[key]++
	if s.maxPerTicker > 0 && len(history) > s.maxPerTicker {
		// Reslice past the evicted head; append reallocates to a compact
		// array once the spare capacity is used up.
		drop := len(history) - s.maxPerTicker
		clear(history[:drop])
		history = history[drop:]
		s.total -= drop
	}
	s.entries[key] = history
}

// Get returns a copy of ticker's history in arrival order. Unknown tickers
// yield an empty, non-nil slice.
func (s *Store) Get(ticker string) []domain.SentimentEntry {
	key := domain.CanonicalTicker(ticker)

	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.entries[key]
	out := make([]domain.SentimentEntry, len(history))
	copy(out, history)
	return out
}

// TickerCounts returns the number of retained entries per ticker.
func (s *Store) TickerCounts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int, len(s.entries))
	for key, history := range s.entries {
		counts[key] = len(history)
	}
	return counts
}

// Tickers returns every ticker with history, in first-registration order.
func (s *Store) Tickers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Len is the total number of entries held across all tickers.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

func (s *Store) MaxPerTicker() int { return s.maxPerTicker }

// Mentions returns how many entries were ever appended for ticker,
// including ones already evicted by retention.
func (s *Store) Mentions(ticker string) int {
	key := domain.CanonicalTicker(ticker)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mentions[key]
}

// counts returns lifetime mention counts in first-registration order under
// a single read lock, so rankings see a consistent snapshot.
func (s *Store) counts() []domain.TickerMention {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.TickerMention, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, domain.TickerMention{Ticker: key, Mentions: s.mentions[key]})
	}
	return out
}
