package provider

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"signal-sniper/internal/domain"

	"github.com/mmcdole/gofeed"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RSSProvider reads RSS and Atom feeds.
type RSSProvider struct {
	client    *http.Client
	parser    *gofeed.Parser
	userAgent string
	tracer    trace.Tracer
	now       func() time.Time
}

func NewRSSProvider(tracer trace.Tracer, userAgent string) *RSSProvider {
	if strings.TrimSpace(userAgent) == "" {
		userAgent = defaultRedditUA
	}
	return &RSSProvider{
		client:    &http.Client{Timeout: 20 * time.Second},
		parser:    gofeed.NewParser(),
		userAgent: userAgent,
		tracer:    tracer,
		now:       time.Now,
	}
}

// Collect returns up to limit feed entries. The post source is feedURL.
func (p *RSSProvider) Collect(ctx context.Context, feedURL string, limit int) ([]domain.Post, error) {
	ctx, span := p.tracer.Start(ctx, "rss.collect")
	defer span.End()

	feedURL = strings.TrimSpace(feedURL)
	if feedURL == "" {
		return nil, fmt.Errorf("feed url is required")
	}
	if limit <= 0 {
		limit = 40
	}
	span.SetAttributes(attribute.String("rss.feed", feedURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Source: "rss", StatusCode: resp.StatusCode, Body: string(body)}
	}

	feed, err := p.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	retrievedAt := p.now().UTC()
	posts := make([]domain.Post, 0, min(limit, len(feed.Items)))
	for _, entry := range feed.Items {
		if len(posts) == limit {
			break
		}
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			continue
		}
		published := retrievedAt
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.UTC()
		} else if entry.UpdatedParsed != nil {
			published = entry.UpdatedParsed.UTC()
		}
		body := entry.Description
		if strings.TrimSpace(body) == "" {
			body = entry.Content
		}
		author := ""
		if entry.Author != nil {
			author = entry.Author.Name
		}
		id := strings.TrimSpace(entry.GUID)
		if id == "" {
			id = strings.TrimSpace(entry.Link)
		}
		if id == "" {
			h := sha1.Sum([]byte(title + "|" + published.Format(time.RFC3339Nano)))
			id = hex.EncodeToString(h[:])
		}

		posts = append(posts, domain.Post{
			ID:          id,
			Title:       title,
			Body:        strings.TrimSpace(htmlStrip(body)),
			Source:      feedURL,
			URL:         entry.Link,
			Author:      author,
			PublishedAt: published,
			RetrievedAt: retrievedAt,
		})
	}

	return posts, nil
}

func htmlStrip(in string) string {
	if strings.TrimSpace(in) == "" {
		return ""
	}
	var b strings.Builder
	inside := false
	for _, r := range in {
		switch r {
		case '<':
			inside = true
			continue
		case '>':
			inside = false
			continue
		}
		if !inside {
			b.WriteRune(r)
		}
	}
	return b.String()
}
