package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"signal-sniper/internal/domain"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const refreshEvery = 30 * time.Second

type view int

const (
	viewTrending view = iota
	viewTicker
)

type trendingMsg struct {
	rows []domain.TickerMention
	err  error
}

type sentimentMsg struct {
	ticker  string
	entries []domain.SentimentEntry
	err     error
}

type tickMsg time.Time

// Model is the dashboard: a trending table with drill-down into one ticker.
type Model struct {
	source   DataSource
	username string

	view     view
	trending table.Model
	entries  table.Model
	ticker   string
	latest   []domain.SentimentEntry

	status  string
	err     error
	width   int
	height  int
	updated time.Time
}

func NewModel(source DataSource, username string) *Model {
	trending := table.New(
		table.WithColumns([]table.Column{
			{Title: "#", Width: 3},
			{Title: "Ticker", Width: 8},
			{Title: "Mentions", Width: 10},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	entries := table.New(
		table.WithColumns([]table.Column{
			{Title: "Time", Width: 17},
			{Title: "Label", Width: 9},
			{Title: "Score", Width: 6},
			{Title: "Source", Width: 16},
			{Title: "Text", Width: 50},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.BorderForeground(borderColor).BorderBottom(true).Bold(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("#F9FAFB")).Background(primaryColor)
	trending.SetStyles(styles)
	entries.SetStyles(styles)

	if username == "" {
		username = "guest"
	}
	return &Model{
		source:   source,
		username: username,
		trending: trending,
		entries:  entries,
		status:   "loading...",
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchTrending(), tick())
}

// SetSize applies the terminal size before the first WindowSizeMsg arrives.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if height > 8 {
		m.trending.SetHeight(height - 8)
		m.entries.SetHeight(height - 8)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.status = "refreshing..."
			if m.view == viewTicker {
				return m, m.fetchSentiment(m.ticker)
			}
			return m, m.fetchTrending()
		case "esc", "backspace":
			if m.view == viewTicker {
				m.view = viewTrending
				m.status = ""
				return m, nil
			}
		case "enter":
			if m.view == viewTrending {
				row := m.trending.SelectedRow()
				if len(row) > 1 {
					m.ticker = row[1]
					m.status = "loading " + m.ticker + "..."
					return m, m.fetchSentiment(m.ticker)
				}
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case trendingMsg:
		m.err = msg.err
		if msg.err == nil {
			m.trending.SetRows(trendingRows(msg.rows))
			m.updated = time.Now()
			m.status = fmt.Sprintf("%d tickers", len(msg.rows))
		}
		return m, nil

	case sentimentMsg:
		m.err = msg.err
		if msg.err == nil {
			m.ticker = msg.ticker
			m.latest = msg.entries
			m.entries.SetRows(entryRows(msg.entries))
			m.entries.GotoTop()
			m.view = viewTicker
			m.updated = time.Now()
			m.status = summarize(msg.entries)
		}
		return m, nil

	case tickMsg:
		if m.view == viewTicker {
			return m, tea.Batch(m.fetchSentiment(m.ticker), tick())
		}
		return m, tea.Batch(m.fetchTrending(), tick())
	}

	var cmd tea.Cmd
	if m.view == viewTicker {
		m.entries, cmd = m.entries.Update(msg)
	} else {
		m.trending, cmd = m.trending.Update(msg)
	}
	return m, cmd
}

func (m *Model) View() string {
	var b strings.Builder

	title := "Trending tickers"
	body := m.trending.View()
	help := "enter: drill down  r: refresh  q: quit"
	if m.view == viewTicker {
		title = "Sentiment: " + m.ticker
		body = m.entries.View()
		help = "esc: back  r: refresh  q: quit"
	}

	b.WriteString(titleStyle.Render("signal-sniper") + statusStyle.Render(" "+m.username) + "\n")
	b.WriteString(panelStyle.Render(titleStyle.Render(title) + "\n" + body))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render("error: " + m.err.Error()))
	} else {
		status := m.status
		if !m.updated.IsZero() {
			status += "  updated " + m.updated.Format("15:04:05")
		}
		b.WriteString(statusStyle.Render(status))
	}
	b.WriteString("\n" + helpStyle.Render(help))
	return b.String()
}

func (m *Model) fetchTrending() tea.Cmd {
	source := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		rows, err := source.Trending(ctx)
		return trendingMsg{rows: rows, err: err}
	}
}

func (m *Model) fetchSentiment(ticker string) tea.Cmd {
	source := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		entries, err := source.Sentiment(ctx, ticker)
		return sentimentMsg{ticker: ticker, entries: entries, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func trendingRows(mentions []domain.TickerMention) []table.Row {
	rows := make([]table.Row, 0, len(mentions))
	for i, m := range mentions {
		rows = append(rows, table.Row{strconv.Itoa(i + 1), m.Ticker, strconv.Itoa(m.Mentions)})
	}
	return rows
}

// entryRows lists entries newest first.
func entryRows(entries []domain.SentimentEntry) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		rows = append(rows, table.Row{
			e.ObservedAt.UTC().Format("2006-01-02 15:04"),
			e.Label,
			fmt.Sprintf("%.2f", e.Score),
			e.Subreddit,
			e.Excerpt,
		})
	}
	return rows
}

func summarize(entries []domain.SentimentEntry) string {
	counts := map[string]int{}
	for _, e := range entries {
		counts[e.Label]++
	}
	return fmt.Sprintf("%d entries  %s  %s  %s",
		len(entries),
		labelStyle(domain.LabelPositive).Render(fmt.Sprintf("+%d", counts[domain.LabelPositive])),
		labelStyle(domain.LabelNegative).Render(fmt.Sprintf("-%d", counts[domain.LabelNegative])),
		labelStyle(domain.LabelNeutral).Render(fmt.Sprintf("=%d", counts[domain.LabelNeutral])),
	)
}
