// Package render formats selected content for people: terminal tables for the
// CLI and message bodies for digest notifiers.
package render

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/AnuragC07/curatd/internal/domain"
)

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiCyan  = "\x1b[36m"

	ruleWidth = 60

	noArticles = "No articles found today. Try again later!"
	noVideos   = "No videos found today. Try again later!"
	noMatches  = "No matches for these tags."
	signOff    = "Enjoy your learning journey!"
)

// Console writes bundles as numbered tables.
type Console struct {
	colorize bool
}

// NewConsole enables colour only when w is a terminal.
func NewConsole(w io.Writer) *Console {
	return &Console{colorize: shouldColorize(w)}
}

// Daily prints the daily bundle with its banner and closing line.
func (c *Console) Daily(w io.Writer, bundle domain.Bundle) error {
	var b strings.Builder

	c.rule(&b)
	c.heading(&b, "HERE IS YOUR DAILY CURATED CONTENT")
	c.rule(&b)
	b.WriteString("\n")

	c.section(&b, "PRODUCTIVITY ARTICLES", "Source", bundle.Articles, noArticles)
	c.section(&b, "LIFE IMPROVEMENT VIDEOS", "Channel", bundle.Videos, noVideos)

	c.rule(&b)
	b.WriteString(signOff + "\n")
	c.rule(&b)

	_, err := io.WriteString(w, b.String())
	return err
}

// Tags prints a tag-driven bundle.
func (c *Console) Tags(w io.Writer, tags []string, bundle domain.TagBundle) error {
	var b strings.Builder

	c.rule(&b)
	c.heading(&b, "CONTENT FOR: "+strings.Join(tags, ", "))
	c.rule(&b)
	b.WriteString("\n")

	c.columns(&b, "ARTICLES", "Source", bundle.ArticleTitles, bundle.ArticleSources, bundle.ArticleURLs)
	c.columns(&b, "VIDEOS", "Channel", bundle.VideoTitles, bundle.VideoChannels, bundle.VideoURLs)

	_, err := io.WriteString(w, b.String())
	return err
}

// History prints the stored history, newest entries last.
func (c *Console) History(w io.Writer, record domain.HistoryRecord) error {
	var b strings.Builder

	updated := record.LastUpdate
	if updated == "" {
		updated = "never"
	}
	c.heading(&b, "Last update: "+updated)
	b.WriteString("\n")

	c.section(&b, fmt.Sprintf("ARTICLES (%d)", len(record.Articles)), "Source", record.Articles, "No articles recorded.")
	c.section(&b, fmt.Sprintf("VIDEOS (%d)", len(record.Videos)), "Channel", record.Videos, "No videos recorded.")

	_, err := io.WriteString(w, b.String())
	return err
}

func (c *Console) section(b *strings.Builder, title, originHeader string, items []domain.Item, empty string) {
	if len(items) == 0 {
		b.WriteString(empty + "\n\n")
		return
	}
	titles := make([]string, len(items))
	origins := make([]string, len(items))
	urls := make([]string, len(items))
	for i, it := range items {
		titles[i], origins[i], urls[i] = it.Title, it.Origin, it.URL
	}
	c.columns(b, title, originHeader, titles, origins, urls)
}

func (c *Console) columns(b *strings.Builder, title, originHeader string, titles, origins, urls []string) {
	c.heading(b, title)
	if len(titles) == 0 {
		b.WriteString(noMatches + "\n\n")
		return
	}
	b.WriteString(itemTable(originHeader, titles, origins, urls))
	b.WriteString("\n\n")
}

func (c *Console) heading(b *strings.Builder, s string) {
	if c.colorize {
		b.WriteString(ansiBold + ansiCyan + s + ansiReset + "\n")
		return
	}
	b.WriteString(s + "\n")
}

func (c *Console) rule(b *strings.Builder) {
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n")
}

func itemTable(originHeader string, titles, origins, urls []string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Title", originHeader, "Link"})

	for i := range titles {
		tw.AppendRow(table.Row{strconv.Itoa(i + 1), titles[i], at(origins, i), at(urls, i)})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 2, WidthMax: 60},
	})
	return tw.Render()
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

func shouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
