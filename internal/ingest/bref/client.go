package bref

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

const (
	// DefaultBaseURL of the box score site
	DefaultBaseURL = "https://www.basketball-reference.com"

	// UserAgent for requests
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// MinRequestInterval keeps us under the site's rate limit (20 req/min)
	MinRequestInterval = 3 * time.Second
)

// Fetcher returns the rendered HTML of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Client fetches box score pages through a headless browser with rate
// limiting. Safe for concurrent use; requests are serialized.
type Client struct {
	baseURL string

	mu          sync.Mutex
	lastRequest time.Time
	interval    time.Duration

	// Chromedp context for headless browser
	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewClient creates a new client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(UserAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		interval: MinRequestInterval,
		allocCtx: allocCtx,
		cancel:   cancel,
	}
}

// Close releases resources
func (c *Client) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}

// BaseURL returns the site root the client was built for.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Fetch fetches a page, waiting out the rate limit first.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lastRequest.IsZero() {
		if wait := c.interval - time.Since(c.lastRequest); wait > 0 {
			log.Printf("Rate limiting: waiting %v before next request", wait)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}
	}

	html, err := c.fetch(ctx, url)
	c.lastRequest = time.Now()

	return html, err
}

// fetch performs the actual fetch using chromedp
func (c *Client) fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(c.allocCtx)
	defer cancel()

	// Stop the browser tab when the caller's context ends
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	browserCtx, cancel = context.WithTimeout(browserCtx, 30*time.Second)
	defer cancel()

	var htmlContent string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady(`body`, chromedp.ByQuery),
		chromedp.OuterHTML(`html`, &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp error: %w", err)
	}

	if htmlContent == "" {
		return "", fmt.Errorf("empty HTML content returned")
	}

	return htmlContent, nil
}

// BoxScoreURL returns the page of one game.
func BoxScoreURL(baseURL, gameID string) string {
	return fmt.Sprintf("%s/boxscores/%s.html", strings.TrimRight(baseURL, "/"), gameID)
}

// DayURL returns the index of games played on date.
func DayURL(baseURL string, date time.Time) string {
	return fmt.Sprintf("%s/boxscores/?month=%d&day=%d&year=%d",
		strings.TrimRight(baseURL, "/"), int(date.Month()), date.Day(), date.Year())
}

// ParseHTML converts raw HTML to a goquery Document for parsing
func ParseHTML(htmlContent string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}
