package yahoo

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"time"

	"github.com/wonny/tradewind/internal/contracts"
)

// rssFeed mirrors the RSS 2.0 feed structure
type rssFeed struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

// pubDateFormats are the date layouts seen in the wild on RSS feeds
var pubDateFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	time.RFC3339,
}

// FetchNews fetches the news headline RSS feed for a symbol. A feed
// with no items is not an error; sentiment falls back to neutral.
// ⭐ SSOT: 뉴스 피드 조회는 이 함수에서만
func (c *Client) FetchNews(ctx context.Context, symbol string) ([]contracts.Article, error) {
	fullURL := fmt.Sprintf(
		"%s/rss/2.0/headline?s=%s&region=US&lang=en-US",
		c.newsBaseURL, url.QueryEscape(symbol),
	)

	body, err := c.fetch(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("fetch news for %s: %w", symbol, err)
	}

	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("decode news feed for %s: %w", symbol, err)
	}

	articles := make([]contracts.Article, 0, len(feed.Channel.Items))
	for _, item := range feed.Channel.Items {
		articles = append(articles, contracts.Article{
			Title:     item.Title,
			Link:      item.Link,
			Summary:   item.Description,
			Published: parsePubDate(item.PubDate),
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol":   symbol,
		"articles": len(articles),
	}).Debug("Fetched news feed")
	return articles, nil
}

// parsePubDate tries the known RSS date layouts; a zero time means the
// date could not be parsed
func parsePubDate(s string) time.Time {
	for _, layout := range pubDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
