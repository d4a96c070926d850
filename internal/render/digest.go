package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/AnuragC07/curatd/internal/domain"
)

var markdownEscaper = strings.NewReplacer(
	"_", `\_`,
	"*", `\*`,
	"[", `\[`,
	"`", "\\`",
)

// DigestMarkdown formats a bundle for chat apps using legacy Markdown.
func DigestMarkdown(bundle domain.Bundle) string {
	var b strings.Builder
	b.WriteString("*Your daily curated content*\n\n")
	writeMarkdownSection(&b, "Articles", bundle.Articles)
	writeMarkdownSection(&b, "Videos", bundle.Videos)
	return strings.TrimRight(b.String(), "\n")
}

func writeMarkdownSection(b *strings.Builder, title string, items []domain.Item) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "*%s*\n", title)
	for i, it := range items {
		fmt.Fprintf(b, "%d. %s (%s)\n%s\n", i+1, markdownEscaper.Replace(it.Title), markdownEscaper.Replace(it.Origin), it.URL)
	}
	b.WriteString("\n")
}

var digestTemplate = template.Must(template.New("digest").Parse(
	`<h2>Your daily curated content</h2>
{{- if .Articles}}
<h3>Articles</h3>
<ol>
{{- range .Articles}}
  <li><a href="{{.URL}}">{{.Title}}</a> <small>{{.Origin}}</small></li>
{{- end}}
</ol>
{{- end}}
{{- if .Videos}}
<h3>Videos</h3>
<ol>
{{- range .Videos}}
  <li><a href="{{.URL}}">{{.Title}}</a> <small>{{.Origin}}</small></li>
{{- end}}
</ol>
{{- end}}
<p>Enjoy your learning journey!</p>
`))

// DigestHTML formats a bundle as an email body.
func DigestHTML(bundle domain.Bundle) (string, error) {
	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, bundle); err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	return buf.String(), nil
}
