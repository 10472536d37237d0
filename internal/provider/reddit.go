package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"signal-sniper/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	redditBaseURL      = "https://www.reddit.com"
	redditOAuthBaseURL = "https://oauth.reddit.com"
	redditTokenURL     = "https://www.reddit.com/api/v1/access_token"
	defaultRedditUA    = "signal-sniper-bot/1.0"
	maxRedditLimit     = 100
)

type RedditConfig struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	Limiter      *RateLimiter
}

// RedditProvider reads the hot listing of a subreddit. With client
// credentials it uses the OAuth API, otherwise the public JSON endpoints.
type RedditProvider struct {
	client       *http.Client
	baseURL      string
	oauthBaseURL string
	tokenURL     string
	userAgent    string
	clientID     string
	clientSecret string
	limiter      *RateLimiter
	tracer       trace.Tracer
	now          func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewRedditProvider(tracer trace.Tracer, cfg RedditConfig) *RedditProvider {
	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = defaultRedditUA
	}
	return &RedditProvider{
		client:       &http.Client{Timeout: 20 * time.Second},
		baseURL:      redditBaseURL,
		oauthBaseURL: redditOAuthBaseURL,
		tokenURL:     redditTokenURL,
		userAgent:    ua,
		clientID:     strings.TrimSpace(cfg.ClientID),
		clientSecret: strings.TrimSpace(cfg.ClientSecret),
		limiter:      cfg.Limiter,
		tracer:       tracer,
		now:          time.Now,
	}
}

func (p *RedditProvider) authenticated() bool {
	return p.clientID != "" && p.clientSecret != ""
}

// Collect returns up to limit posts from the subreddit's hot listing, skipping stickied posts.
func (p *RedditProvider) Collect(ctx context.Context, subreddit string, limit int) ([]domain.Post, error) {
	ctx, span := p.tracer.Start(ctx, "reddit.collect")
	defer span.End()

	subreddit = strings.TrimPrefix(strings.TrimSpace(subreddit), "r/")
	if subreddit == "" {
		return nil, fmt.Errorf("subreddit is required")
	}
	if limit <= 0 || limit > maxRedditLimit {
		limit = maxRedditLimit
	}
	span.SetAttributes(attribute.String("reddit.subreddit", subreddit), attribute.Int("reddit.limit", limit))

	base := strings.TrimRight(p.baseURL, "/")
	var bearer string
	if p.authenticated() {
		token, err := p.accessToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("reddit auth: %w", err)
		}
		bearer = token
		base = strings.TrimRight(p.oauthBaseURL, "/")
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/r/%s/hot.json?limit=%d&raw_json=1", base, url.PathEscape(subreddit), limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", p.userAgent)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && bearer != "" {
		p.invalidateToken()
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Source: "reddit", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode reddit response: %w", err)
	}

	retrievedAt := p.now().UTC()
	posts := make([]domain.Post, 0, len(listing.Data.Children))
	for _, row := range listing.Data.Children {
		data := row.Data
		if data.Stickied || strings.TrimSpace(data.ID) == "" {
			continue
		}
		postURL := strings.TrimSpace(data.URL)
		if permalink := strings.TrimSpace(data.Permalink); permalink != "" {
			postURL = redditBaseURL + permalink
		}
		posts = append(posts, domain.Post{
			ID:          data.ID,
			Title:       data.Title,
			Body:        data.SelfText,
			Source:      subreddit,
			URL:         postURL,
			Author:      data.Author,
			PublishedAt: time.Unix(int64(data.CreatedUTC), 0).UTC(),
			RetrievedAt: retrievedAt,
		})
		if len(posts) == limit {
			break
		}
	}
	span.SetAttributes(attribute.Int("reddit.posts", len(posts)))

	return posts, nil
}

// accessToken returns a cached application-only OAuth token, refreshing it
// a minute before expiry.
func (p *RedditProvider) accessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && p.now().Before(p.tokenExpiry) {
		return p.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.clientID, p.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("reddit token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &StatusError{Source: "reddit oauth", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("decode reddit token: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("reddit token response missing access_token")
	}

	p.token = tokenResp.AccessToken
	p.tokenExpiry = p.now().Add(time.Duration(tokenResp.ExpiresIn-60) * time.Second)
	return p.token, nil
}

func (p *RedditProvider) invalidateToken() {
	p.mu.Lock()
	p.token = ""
	p.mu.Unlock()
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID         string  `json:"id"`
	Subreddit  string  `json:"subreddit"`
	Title      string  `json:"title"`
	SelfText   string  `json:"selftext"`
	Author     string  `json:"author"`
	CreatedUTC float64 `json:"created_utc"`
	Permalink  string  `json:"permalink"`
	URL        string  `json:"url"`
	Stickied   bool    `json:"stickied"`
}
