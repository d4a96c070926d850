package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/AnuragC07/curatd/internal/config"
	"github.com/AnuragC07/curatd/internal/domain"
	"github.com/AnuragC07/curatd/internal/logging"
	"github.com/AnuragC07/curatd/internal/scanner"
)

const (
	defaultFeedBase     = "https://www.youtube.com/feeds/videos.xml"
	watchURL            = "https://www.youtube.com/watch?v="
	channelIDOption     = "channel_id"
	defaultVideoLimit   = 3
	defaultVideoWindow  = 20
	unknownChannelLabel = "Unknown"
)

var channelIDExpr = regexp.MustCompile(`UC[0-9A-Za-z_-]{22}`)

// YouTubeScanner lists recent uploads of a channel through its public Atom feed.
type YouTubeScanner struct {
	client   *http.Client
	identity *Identity
	feedBase string
	logger   *slog.Logger
	now      func() time.Time

	// channel page URL -> resolved channel id
	ids sync.Map
}

var _ scanner.Scanner = (*YouTubeScanner)(nil)

// NewYouTubeScanner wires an HTTP client; feedBase defaults to YouTube's feed endpoint.
func NewYouTubeScanner(client *http.Client, identity *Identity, feedBase string, log *slog.Logger) *YouTubeScanner {
	if client == nil {
		client = NewHTTPClient(0)
	}
	if feedBase == "" {
		feedBase = defaultFeedBase
	}
	if log == nil {
		log = logging.Discard()
	}
	return &YouTubeScanner{
		client:   client,
		identity: identity,
		feedBase: feedBase,
		logger:   log,
		now:      time.Now,
	}
}

// Name identifies the strategy inside the registry.
func (y *YouTubeScanner) Name() string {
	return config.ScannerYouTube
}

// Scan resolves the channel, reads its feed and keeps relevant unseen uploads.
func (y *YouTubeScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Item, error) {
	channelID, err := y.channelID(ctx, req)
	if err != nil {
		return nil, err
	}

	feed, err := y.fetchFeed(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("channel %s: %w", channelID, err)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultVideoLimit
	}
	window := req.Window
	if window <= 0 {
		window = defaultVideoWindow
	}

	origin := channelName(feed, req.SiteName)
	fetchedAt := y.now().UTC()

	var videos []domain.Item
	for i, entry := range feed.Items {
		if i >= window || len(videos) >= limit {
			break
		}
		if entry == nil {
			continue
		}

		title := normalizeSpace(entry.Title)
		link := videoLink(entry)
		if title == "" || link == "" {
			continue
		}

		item := domain.NewItem(domain.KindVideo, title, link, origin, fetchedAt)
		if !req.Query.Accepts(item) {
			continue
		}
		videos = append(videos, item)
	}

	return videos, nil
}

func (y *YouTubeScanner) channelID(ctx context.Context, req scanner.Request) (string, error) {
	if id := strings.TrimSpace(req.Options[channelIDOption]); id != "" {
		return id, nil
	}

	if u, err := url.Parse(req.URL); err == nil && strings.HasPrefix(u.Path, "/channel/") {
		if id := channelIDExpr.FindString(u.Path); id != "" {
			return id, nil
		}
	}

	if cached, ok := y.ids.Load(req.URL); ok {
		return cached.(string), nil
	}

	doc, err := fetchDocument(ctx, y.client, y.identity, req.URL)
	if err != nil {
		return "", fmt.Errorf("resolve channel %s: %w", req.SiteName, err)
	}

	id := findChannelID(doc)
	if id == "" {
		return "", fmt.Errorf("resolve channel %s: no channel id on page", req.SiteName)
	}

	y.ids.Store(req.URL, id)
	y.logger.Debug("channel resolved", "channel", req.SiteName, "id", id)
	return id, nil
}

func (y *YouTubeScanner) fetchFeed(ctx context.Context, channelID string) (*gofeed.Feed, error) {
	feedURL, err := url.Parse(y.feedBase)
	if err != nil {
		return nil, fmt.Errorf("invalid feed base: %w", err)
	}
	q := feedURL.Query()
	q.Set(channelIDOption, channelID)
	feedURL.RawQuery = q.Encode()

	resp, err := get(ctx, y.client, y.identity, feedURL.String())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// gofeed parsers keep per-document state, so each scan gets its own.
	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

func findChannelID(doc *goquery.Document) string {
	candidates := []string{
		attr(doc, `meta[itemprop="identifier"]`, "content"),
		attr(doc, `meta[itemprop="channelId"]`, "content"),
		attr(doc, `link[rel="canonical"]`, "href"),
		attr(doc, `meta[property="og:url"]`, "content"),
	}
	for _, c := range candidates {
		if id := channelIDExpr.FindString(c); id != "" {
			return id
		}
	}
	return ""
}

func attr(doc *goquery.Document, selector, name string) string {
	v, _ := doc.Find(selector).First().Attr(name)
	return v
}

func videoLink(entry *gofeed.Item) string {
	if entry.Link != "" {
		return entry.Link
	}
	if yt, ok := entry.Extensions["yt"]; ok {
		if ids := yt["videoId"]; len(ids) > 0 && ids[0].Value != "" {
			return watchURL + ids[0].Value
		}
	}
	return ""
}

func channelName(feed *gofeed.Feed, fallback string) string {
	for _, author := range feed.Authors {
		if author != nil && strings.TrimSpace(author.Name) != "" {
			return strings.TrimSpace(author.Name)
		}
	}
	if t := strings.TrimSpace(feed.Title); t != "" {
		return t
	}
	if fallback != "" {
		return fallback
	}
	return unknownChannelLabel
}
