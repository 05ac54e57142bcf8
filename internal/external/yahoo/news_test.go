package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wonny/tradewind/pkg/config"
	"github.com/wonny/tradewind/pkg/httputil"
	"github.com/wonny/tradewind/pkg/logger"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Yahoo! Finance: AAPL News</title>
<item>
<title>Apple unveils new chip</title>
<link>https://finance.yahoo.com/news/apple-chip.html</link>
<description>Apple announced a new processor today.</description>
<pubDate>Mon, 15 Jan 2024 14:30:00 +0000</pubDate>
</item>
<item>
<title>Analysts weigh in on iPhone sales</title>
<link>https://finance.yahoo.com/news/iphone-sales.html</link>
<description>Mixed expectations ahead of earnings.</description>
<pubDate>Tue, 16 Jan 2024 09:00:00 +0000</pubDate>
</item>
</channel>
</rss>`

func newNewsTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{Env: "test", LogLevel: "error"}
	log := logger.New(cfg)
	client := NewClient(config.MarketDataConfig{
		ChartBaseURL: server.URL,
		NewsBaseURL:  server.URL,
		RatePerSec:   100, // no pacing in tests
	}, httputil.New(cfg, log), log)
	return client, server
}

func TestFetchNews(t *testing.T) {
	client, _ := newNewsTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rss/2.0/headline" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("s") != "AAPL" {
			t.Errorf("Expected symbol query AAPL, got %s", r.URL.Query().Get("s"))
		}
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(sampleFeed))
	}))

	articles, err := client.FetchNews(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("FetchNews failed: %v", err)
	}

	if len(articles) != 2 {
		t.Fatalf("Expected 2 articles, got %d", len(articles))
	}
	if articles[0].Title != "Apple unveils new chip" {
		t.Errorf("Unexpected title: %s", articles[0].Title)
	}
	if articles[0].Link != "https://finance.yahoo.com/news/apple-chip.html" {
		t.Errorf("Unexpected link: %s", articles[0].Link)
	}

	want := time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)
	if !articles[0].Published.Equal(want) {
		t.Errorf("Published = %v, want %v", articles[0].Published, want)
	}
}

func TestFetchNewsEmptyFeed(t *testing.T) {
	empty := `<?xml version="1.0"?><rss version="2.0"><channel><title>Empty</title></channel></rss>`
	client, _ := newNewsTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(empty))
	}))

	articles, err := client.FetchNews(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("FetchNews failed: %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("Expected no articles, got %d", len(articles))
	}
}

func TestParsePubDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantZero bool
	}{
		{"rfc1123z", "Mon, 15 Jan 2024 14:30:00 +0000", false},
		{"rfc1123", "Mon, 15 Jan 2024 14:30:00 GMT", false},
		{"single digit day", "Mon, 1 Jan 2024 14:30:00 +0000", false},
		{"garbage", "yesterday", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parsePubDate(tt.input)
			if got.IsZero() != tt.wantZero {
				t.Errorf("parsePubDate(%q) = %v, wantZero %v", tt.input, got, tt.wantZero)
			}
		})
	}
}
