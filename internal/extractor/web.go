package extractor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	requestTimeout   = 100 * time.Second
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// WebExtractor fetches a web page and extracts its readable text.
type WebExtractor struct {
	httpClient *http.Client
	userAgent  string
}

func NewWebExtractor() *WebExtractor {
	return &WebExtractor{
		httpClient: &http.Client{Timeout: requestTimeout},
		userAgent:  defaultUserAgent,
	}
}

func (e *WebExtractor) Extract(ctx context.Context, url string) (string, error) {
	doc, err := e.fetch(ctx, url)
	if err != nil {
		return "", err
	}

	text := collectText(doc)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no readable text found at %s", url)
	}
	return text, nil
}

// Title fetches a page and returns its <title>, falling back to the last URL
// path segment.
func (e *WebExtractor) Title(ctx context.Context, url string) string {
	doc, err := e.fetch(ctx, url)
	if err == nil {
		if title := findTitle(doc); title != "" {
			return title
		}
	}
	parts := strings.Split(strings.TrimRight(url, "/"), "/")
	return parts[len(parts)-1]
}

func (e *WebExtractor) fetch(ctx context.Context, url string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return doc, nil
}

// collectText walks the DOM gathering visible text, skipping script, style,
// and other non-content elements.
func collectText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head":
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				sb.WriteString(text)
				sb.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
		return strings.TrimSpace(n.FirstChild.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := findTitle(c); title != "" {
			return title
		}
	}
	return ""
}
