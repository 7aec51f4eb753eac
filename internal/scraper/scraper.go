package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"
)

const (
	SnowSummaryURL = "https://opensnow.com/location/beavercreek/snow-summary"
	UserAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
	Timeout        = 15 * time.Second
)

// ErrSourceUnavailable is returned when the snow report cannot be fetched or parsed.
var ErrSourceUnavailable = errors.New("source unavailable")

// Scraper fetches the snow report page
type Scraper struct {
	client *resty.Client
	url    string
}

// New creates a Scraper for url. An empty url uses SnowSummaryURL and a
// non-positive timeout uses Timeout.
func New(url string, timeout time.Duration) *Scraper {
	if url == "" {
		url = SnowSummaryURL
	}
	if timeout <= 0 {
		timeout = Timeout
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", UserAgent)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	return &Scraper{
		client: client,
		url:    url,
	}
}

// URL returns the page the scraper reads.
func (s *Scraper) URL() string {
	return s.url
}

// Fetch returns the visible text of the snow report page.
func (s *Scraper) Fetch(ctx context.Context) (string, error) {
	resp, err := s.client.R().SetContext(ctx).Get(s.url)
	if err != nil {
		return "", fmt.Errorf("%w: fetching page: %w", ErrSourceUnavailable, err)
	}

	if !resp.IsSuccess() {
		return "", fmt.Errorf("%w: unexpected status code: %d", ErrSourceUnavailable, resp.StatusCode())
	}

	text, err := pageText(bytes.NewReader(resp.Body()))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	return text, nil
}

// pageText reduces an HTML document to its visible text. Text nodes are
// trimmed and joined with single spaces; script and style content is dropped.
func pageText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	doc.Find("script, style, noscript, template").Remove()

	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.Join(strings.Fields(n.Data), " "); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}

	return strings.Join(parts, " "), nil
}
