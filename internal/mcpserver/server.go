package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"signal-sniper/internal/domain"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type Querier interface {
	GetSentiment(ctx context.Context, ticker string) []domain.SentimentEntry
	GetTrending(ctx context.Context) []domain.TickerMention
}

type SentimentInput struct {
	Ticker string `json:"ticker" jsonschema:"ticker symbol such as GME or $TSLA"`
}

type TrendingInput struct{}

// New builds an MCP server exposing the sentiment query tools.
func New(query Querier, version string) *mcp.Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(&mcp.Implementation{Name: "signal-sniper", Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_sentiment",
		Description: "Sentiment history for one ticker, oldest first",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in SentimentInput) (*mcp.CallToolResult, any, error) {
		symbol := domain.CanonicalTicker(in.Ticker)
		if symbol == "" {
			return nil, nil, fmt.Errorf("ticker is required")
		}
		return jsonResult(query.GetSentiment(ctx, symbol))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_trending",
		Description: "Up to 10 tickers ranked by mention count",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in TrendingInput) (*mcp.CallToolResult, any, error) {
		return jsonResult(query.GetTrending(ctx))
	})

	return server
}

// Handler serves the server over streamable HTTP.
func Handler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}, nil, nil
}
