// Package scraper fetches web pages and extracts their readable text.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cloo-solutions/inbox/internal/domain"
	"golang.org/x/time/rate"
)

const (
	// MinContentLength is the shortest extraction worth saving
	MinContentLength = 50

	maxBodyBytes       = 5 << 20
	articleMinLength   = 200
	paragraphMinLength = 50
	listItemMinLength  = 10
	metaMinLength      = 20
	userAgent          = "Mozilla/5.0 (compatible; inbox/1.0; +https://github.com/cloo-solutions/inbox)"
)

// noise is removed before any text is read.
const noise = "script, style, nav, footer, header, noscript, iframe, aside, .ad, .advertisement, .cookie-notice, #cookie-banner"

var articleSelectors = []string{
	"article",
	`[role="main"]`,
	".article-content",
	".post-content",
	".entry-content",
	".content",
	"main",
	"#content",
	".main-content",
}

type Config struct {
	Timeout   time.Duration
	RateLimit float64 // requests per second
	Client    *http.Client
}

// Scraper extracts page text. It is safe for concurrent use; the limiter is shared.
type Scraper struct {
	client  *http.Client
	limiter *rate.Limiter
}

func New(cfg Config) *Scraper {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 1
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Scraper{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
	}
}

// Extract downloads rawURL and returns its title and readable text.
func (s *Scraper) Extract(ctx context.Context, rawURL string) (*domain.ExtractedPage, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, domain.ErrInvalidURL
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	raw, err := s.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	page, err := Parse(raw, rawURL)
	if err != nil {
		return nil, err
	}
	log.Printf("scraper: extracted %d characters from %s", len(page.Content), rawURL)
	return page, nil
}

func (s *Scraper) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received status code %d for URL: %s", resp.StatusCode, rawURL)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

// Parse runs the extraction strategies over an HTML document. Strategies are
// combined: meta description, main article block, long paragraphs, lists and
// headings. The whole body is used only when those yield too little.
func Parse(raw []byte, source string) (*domain.ExtractedPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	doc.Find(noise).Remove()

	title := clean(doc.Find("title").First().Text())
	if title == "" {
		title = clean(doc.Find("h1").First().Text())
	}
	if title == "" {
		title = source
	}

	var parts []string

	meta, _ := doc.Find(`meta[name="description"]`).Attr("content")
	if meta == "" {
		meta, _ = doc.Find(`meta[property="og:description"]`).Attr("content")
	}
	meta = clean(meta)
	if len(meta) > metaMinLength {
		parts = append(parts, meta)
	}

	for _, selector := range articleSelectors {
		text := clean(doc.Find(selector).First().Text())
		if len(text) > articleMinLength {
			parts = append(parts, text)
			break
		}
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := clean(p.Text()); len(text) > paragraphMinLength {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) > 0 {
		parts = append(parts, strings.Join(paragraphs, "\n\n"))
	}

	var lists []string
	doc.Find("ul, ol").Each(func(_ int, list *goquery.Selection) {
		var items []string
		list.Find("li").Each(func(_ int, li *goquery.Selection) {
			if text := clean(li.Text()); len(text) > listItemMinLength {
				items = append(items, "• "+text)
			}
		})
		if len(items) > 0 {
			lists = append(lists, strings.Join(items, "\n"))
		}
	})
	if len(lists) > 0 {
		parts = append(parts, strings.Join(lists, "\n\n"))
	}

	var headings []string
	doc.Find("h1, h2, h3").Each(func(_ int, h *goquery.Selection) {
		if text := clean(h.Text()); len(text) > 3 && len(text) < 200 {
			headings = append(headings, "【"+text+"】")
		}
	})
	if len(headings) > 0 {
		parts = append(parts, strings.Join(headings, " "))
	}

	content := clean(strings.Join(parts, "\n\n"))
	if len(content) < articleMinLength {
		content = clean(doc.Find("body").Text())
		if len(content) < 100 {
			content = clean(title + ". " + meta)
		}
	}

	if len(content) < MinContentLength {
		return nil, domain.ErrExtractionFailed
	}

	return &domain.ExtractedPage{
		Title:   title,
		Content: content,
		Source:  source,
		RawHTML: raw,
	}, nil
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
