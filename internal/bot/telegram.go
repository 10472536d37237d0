package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"signal-sniper/internal/domain"
	"signal-sniper/pkg/logger"

	tele "gopkg.in/telebot.v3"
)

type Querier interface {
	GetSentiment(ctx context.Context, ticker string) []domain.SentimentEntry
	GetTrending(ctx context.Context) []domain.TickerMention
}

// recentEntries is how many of a ticker's latest entries /sentiment shows.
const recentEntries = 5

// StartTelegramBot starts long polling in the background and returns the
// bot so the caller can stop it. An empty token disables the bot.
func StartTelegramBot(token string, query Querier) (*tele.Bot, error) {
	log := logger.Get().With("component", "telegram")
	if token == "" {
		log.Info("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil, nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("create Telegram bot: %w", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/trending", func(c tele.Context) error {
		return c.Send(FormatTrending(query.GetTrending(context.Background())))
	})

	b.Handle("/sentiment", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send("Usage: /sentiment GME")
		}
		symbol := domain.CanonicalTicker(args[0])
		return c.Send(FormatSentiment(symbol, query.GetSentiment(context.Background(), symbol)))
	})

	log.Info("Telegram bot started")
	go b.Start()
	return b, nil
}

func FormatTrending(mentions []domain.TickerMention) string {
	if len(mentions) == 0 {
		return "No ticker mentions yet."
	}
	var b strings.Builder
	b.WriteString("Trending tickers\n")
	for i, m := range mentions {
		fmt.Fprintf(&b, "%d. %s (%d)\n", i+1, m.Ticker, m.Mentions)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatSentiment summarizes label counts and lists the most recent entries.
func FormatSentiment(symbol string, entries []domain.SentimentEntry) string {
	if symbol == "" {
		return "Usage: /sentiment GME"
	}
	if len(entries) == 0 {
		return fmt.Sprintf("No sentiment recorded for %s.", symbol)
	}

	counts := map[string]int{}
	for _, e := range entries {
		counts[e.Label]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d mentions\nPositive: %d  Negative: %d  Neutral: %d\n",
		symbol, len(entries),
		counts[domain.LabelPositive], counts[domain.LabelNegative], counts[domain.LabelNeutral],
	)

	start := len(entries) - recentEntries
	if start < 0 {
		start = 0
	}
	for i := len(entries) - 1; i >= start; i-- {
		e := entries[i]
		fmt.Fprintf(&b, "\n[%s %.2f] r/%s: %s", e.Label, e.Score, e.Subreddit, e.Excerpt)
	}
	return b.String()
}
