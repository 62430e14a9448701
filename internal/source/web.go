package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"go.uber.org/zap"

	"github.com/mindwell-ai/mindwell/internal/domain"
)

const (
	webFetchTimeout = 30 * time.Second
	webUserAgent    = "Mozilla/5.0 (compatible; mindwell-ingest/1.0)"
)

// Hub describes one crawl entry point: a listing page plus the link prefix
// that identifies its article pages.
type Hub struct {
	URL        string `yaml:"url"`
	LinkPrefix string `yaml:"link_prefix"`
}

// WebSource crawls self-help article hubs. For each hub it collects the
// article links matching the prefix, deduplicates them, and extracts
// readable text from every article page.
type WebSource struct {
	hubs   []Hub
	client *http.Client
	logger *zap.Logger
}

// NewWebSource creates a crawler over the given hubs.
func NewWebSource(hubs []Hub, logger *zap.Logger) *WebSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSource{
		hubs:   hubs,
		client: &http.Client{Timeout: webFetchTimeout},
		logger: logger,
	}
}

// WithClient replaces the HTTP client, mainly for tests.
func (s *WebSource) WithClient(c *http.Client) *WebSource {
	s.client = c
	return s
}

func (s *WebSource) Type() domain.SourceType { return domain.SourceWeb }

// Fetch crawls every hub. A hub that cannot be fetched is skipped with its
// whole link set; individual dead or unreadable articles are skipped one by
// one. The result is empty, not an error, when nothing survives.
func (s *WebSource) Fetch(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document
	for _, hub := range s.hubs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		links, err := s.collectLinks(ctx, hub)
		if err != nil {
			skip(s.logger, s.Type(), hub.URL, err)
			continue
		}

		for _, link := range links {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			doc, err := s.fetchArticle(ctx, link)
			if err != nil {
				skip(s.logger, s.Type(), link, err)
				continue
			}
			docs = append(docs, doc)
		}

		s.logger.Info("hub crawl complete",
			zap.String("hub", hub.URL),
			zap.Int("links", len(links)),
		)
	}
	return docs, nil
}

// collectLinks fetches the hub page and returns the deduplicated, absolute
// article links matching the hub's prefix, in stable order.
func (s *WebSource) collectLinks(ctx context.Context, hub Hub) ([]string, error) {
	base, err := url.Parse(hub.URL)
	if err != nil {
		return nil, fmt.Errorf("parse hub url: %w", err)
	}

	body, err := s.get(ctx, hub.URL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	page, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse hub page: %w", err)
	}

	seen := make(map[string]struct{})
	page.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !strings.HasPrefix(href, hub.LinkPrefix) {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref).String()
		if abs == hub.URL {
			return
		}
		seen[abs] = struct{}{}
	})

	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	sort.Strings(links)
	return links, nil
}

func (s *WebSource) fetchArticle(ctx context.Context, link string) (domain.Document, error) {
	body, err := s.get(ctx, link)
	if err != nil {
		return domain.Document{}, err
	}
	defer body.Close()

	pageURL, err := url.Parse(link)
	if err != nil {
		return domain.Document{}, fmt.Errorf("parse article url: %w", err)
	}

	article, err := readability.FromReader(body, pageURL)
	if err != nil {
		return domain.Document{}, fmt.Errorf("extract article: %w", err)
	}
	if strings.TrimSpace(article.TextContent) == "" {
		return domain.Document{}, fmt.Errorf("no readable content")
	}

	return domain.Document{
		Text: article.TextContent,
		Metadata: domain.Metadata{
			Source: link,
			Type:   domain.SourceWeb,
			Title:  article.Title,
		},
	}, nil
}

func (s *WebSource) get(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", webUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}
	return resp.Body, nil
}
