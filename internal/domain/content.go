package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Kind separates the two content categories the curator serves.
type Kind string

const (
	KindArticle Kind = "article"
	KindVideo   Kind = "video"
)

// Item is a single piece of curated content. Origin holds the site host for
// articles and the channel name for videos.
type Item struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Origin      string    `json:"origin"`
	Kind        Kind      `json:"kind"`
	FetchedAt   time.Time `json:"fetched_at"`
	Fingerprint string    `json:"fingerprint"`
}

// NewItem builds an item with its fingerprint already computed.
func NewItem(kind Kind, title, url, origin string, fetchedAt time.Time) Item {
	return Item{
		Title:       title,
		URL:         url,
		Origin:      origin,
		Kind:        kind,
		FetchedAt:   fetchedAt,
		Fingerprint: Fingerprint(title, url),
	}
}

// Fingerprint is the dedup key of an item: hex SHA-256 over title and url.
func Fingerprint(title, url string) string {
	sum := sha256.Sum256([]byte(title + "|" + url))
	return hex.EncodeToString(sum[:])
}

// Key returns the stored fingerprint, computing it for items built by hand.
func (i Item) Key() string {
	if i.Fingerprint != "" {
		return i.Fingerprint
	}
	return Fingerprint(i.Title, i.URL)
}

// HistoryRecord is the persisted selection history.
type HistoryRecord struct {
	Articles   []Item `json:"articles"`
	Videos     []Item `json:"videos"`
	LastUpdate string `json:"last_update"`
}

// EmptyHistory returns a record with non-nil sequences so it serialises as [] rather than null.
func EmptyHistory() HistoryRecord {
	return HistoryRecord{Articles: []Item{}, Videos: []Item{}}
}

// Items returns the sequence for kind.
func (h HistoryRecord) Items(kind Kind) []Item {
	if kind == KindVideo {
		return h.Videos
	}
	return h.Articles
}

// SetItems replaces the sequence for kind.
func (h *HistoryRecord) SetItems(kind Kind, items []Item) {
	if kind == KindVideo {
		h.Videos = items
		return
	}
	h.Articles = items
}

// Bundle is the result of a daily selection.
type Bundle struct {
	Articles []Item
	Videos   []Item
}

// ArticleEntry is an article as shown to readers.
type ArticleEntry struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`
}

// VideoEntry is a video as shown to readers.
type VideoEntry struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Channel string `json:"channel"`
}

// DailyView is the public JSON shape of a daily bundle.
type DailyView struct {
	Articles []ArticleEntry `json:"articles"`
	Videos   []VideoEntry   `json:"videos"`
}

// View converts the bundle to its public shape. Empty categories stay [].
func (b Bundle) View() DailyView {
	v := DailyView{
		Articles: make([]ArticleEntry, 0, len(b.Articles)),
		Videos:   make([]VideoEntry, 0, len(b.Videos)),
	}
	for _, it := range b.Articles {
		v.Articles = append(v.Articles, ArticleEntry{Title: it.Title, URL: it.URL, Source: it.Origin})
	}
	for _, it := range b.Videos {
		v.Videos = append(v.Videos, VideoEntry{Title: it.Title, URL: it.URL, Channel: it.Origin})
	}
	return v
}

// TagBundle is the result of a tag search, laid out as parallel columns.
type TagBundle struct {
	ArticleTitles  []string `json:"article_titles"`
	ArticleSources []string `json:"article_sources"`
	ArticleURLs    []string `json:"article_urls"`
	VideoTitles    []string `json:"video_titles"`
	VideoChannels  []string `json:"video_channels"`
	VideoURLs      []string `json:"video_urls"`
}

// NewTagBundle lays the selected items out column-wise. Nil inputs yield empty columns.
func NewTagBundle(articles, videos []Item) TagBundle {
	b := TagBundle{
		ArticleTitles:  make([]string, 0, len(articles)),
		ArticleSources: make([]string, 0, len(articles)),
		ArticleURLs:    make([]string, 0, len(articles)),
		VideoTitles:    make([]string, 0, len(videos)),
		VideoChannels:  make([]string, 0, len(videos)),
		VideoURLs:      make([]string, 0, len(videos)),
	}
	for _, a := range articles {
		b.ArticleTitles = append(b.ArticleTitles, a.Title)
		b.ArticleSources = append(b.ArticleSources, a.Origin)
		b.ArticleURLs = append(b.ArticleURLs, a.URL)
	}
	for _, v := range videos {
		b.VideoTitles = append(b.VideoTitles, v.Title)
		b.VideoChannels = append(b.VideoChannels, v.Origin)
		b.VideoURLs = append(b.VideoURLs, v.URL)
	}
	return b
}

// Len reports how many items the bundle carries across both categories.
func (b TagBundle) Len() int {
	return len(b.ArticleTitles) + len(b.VideoTitles)
}
