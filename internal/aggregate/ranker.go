package aggregate

import (
	"sort"

	"signal-sniper/internal/domain"
)

// Ranker orders tickers by recorded mention volume.
type Ranker struct {
	store *Store
}

func NewRanker(store *Store) *Ranker {
	return &Ranker{store: store}
}

// Top returns at most n tickers sorted by mentions, highest first. Equal
// counts keep first-registration order. n <= 0 uses DefaultTrendingLimit.
func (r *Ranker) Top(n int) []domain.TickerMention {
	if n <= 0 {
		n = domain.DefaultTrendingLimit
	}
	if r == nil || r.store == nil {
		return []domain.TickerMention{}
	}

	ranked := r.store.counts()
	filtered := ranked[:0]
	for _, row := range ranked {
		if row.Mentions > 0 {
			filtered = append(filtered, row)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Mentions > filtered[j].Mentions
	})
	if len(filtered) > n {
		filtered = filtered[:n]
	}
	return filtered
}
