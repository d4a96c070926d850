package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/AnuragC07/curatd/internal/config"
	"github.com/AnuragC07/curatd/internal/domain"
	"github.com/AnuragC07/curatd/internal/logging"
	"github.com/AnuragC07/curatd/internal/scanner"
)

const (
	defaultPageLimit  = 5
	defaultPageWindow = 10
	selectorsOption   = "selectors"
)

// defaultSelectors are tried in order until one yields a usable link.
var defaultSelectors = []string{
	"article a[href]",
	".post-title a[href]",
	".entry-title a[href]",
	"h2 a[href]",
	"h3 a[href]",
	".article-title a[href]",
	".headline a[href]",
}

// PageScanner extracts article links from a listing page.
type PageScanner struct {
	client   *http.Client
	identity *Identity
	logger   *slog.Logger
	now      func() time.Time
}

var _ scanner.Scanner = (*PageScanner)(nil)

// NewPageScanner wires an HTTP client and identity pool.
func NewPageScanner(client *http.Client, identity *Identity, log *slog.Logger) *PageScanner {
	if client == nil {
		client = NewHTTPClient(0)
	}
	if log == nil {
		log = logging.Discard()
	}
	return &PageScanner{client: client, identity: identity, logger: log, now: time.Now}
}

// Name identifies the strategy inside the registry.
func (p *PageScanner) Name() string {
	return config.ScannerPage
}

// Scan fetches the listing page once and returns the accepted links of the first productive selector.
func (p *PageScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Item, error) {
	base, err := url.Parse(req.URL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid page url %q", req.URL)
	}

	doc, err := fetchDocument(ctx, p.client, p.identity, req.URL)
	if err != nil {
		return nil, err
	}

	return p.extract(doc, base, req), nil
}

func (p *PageScanner) extract(doc *goquery.Document, base *url.URL, req scanner.Request) []domain.Item {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	window := req.Window
	if window <= 0 {
		window = defaultPageWindow
	}
	kind := req.Kind
	if kind == "" {
		kind = domain.KindArticle
	}

	origin := base.Host
	fetchedAt := p.now().UTC()

	for _, selector := range selectorsFor(req.Options) {
		links := doc.Find(selector)
		if links.Length() == 0 {
			continue
		}

		var found []domain.Item
		urls := map[string]struct{}{}
		links.EachWithBreak(func(i int, link *goquery.Selection) bool {
			if i >= window {
				return false
			}

			href, ok := link.Attr("href")
			title := normalizeSpace(link.Text())
			if !ok || strings.TrimSpace(href) == "" || title == "" {
				return true
			}

			full, err := base.Parse(strings.TrimSpace(href))
			if err != nil || (full.Scheme != "http" && full.Scheme != "https") {
				return true
			}
			full.Fragment = ""

			item := domain.NewItem(kind, title, full.String(), origin, fetchedAt)
			if !req.Query.Accepts(item) {
				return true
			}
			if _, dup := urls[item.URL]; dup {
				return true
			}
			urls[item.URL] = struct{}{}
			found = append(found, item)
			return true
		})

		if len(found) > 0 {
			p.logger.Debug("selector matched", "site", req.SiteName, "selector", selector, "count", len(found))
			if len(found) > limit {
				found = found[:limit]
			}
			return found
		}
	}

	return nil
}

// selectorsFor honours a per-site override given as a ';'-separated list.
func selectorsFor(options map[string]string) []string {
	raw := strings.TrimSpace(options[selectorsOption])
	if raw == "" {
		return defaultSelectors
	}

	var selectors []string
	for _, s := range strings.Split(raw, ";") {
		if s = strings.TrimSpace(s); s != "" {
			selectors = append(selectors, s)
		}
	}
	if len(selectors) == 0 {
		return defaultSelectors
	}
	return selectors
}
