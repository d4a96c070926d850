package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/AnuragC07/curatd/internal/logging"
	"github.com/AnuragC07/curatd/internal/ports"
	"github.com/AnuragC07/curatd/internal/relevance"
)

// ErrMissingFields reports a newsletter request without an address or tags.
var ErrMissingFields = errors.New("missing email or tags")

const defaultSubject = "Your productivity newsletter"

var newsletterTemplate = template.Must(template.New("newsletter").Parse(
	`<h2>Your curated topics</h2>
<p>Here is what you asked to hear about:</p>
<ul>
{{- range .Tags}}
  <li>{{.}}</li>
{{- end}}
</ul>
`))

// Newsletter composes the tag list email and relays it through a Mailer.
type Newsletter struct {
	mailer  ports.Mailer
	subject string
	logger  *slog.Logger
}

// NewNewsletter builds the newsletter use case. An empty subject uses the default.
func NewNewsletter(mailer ports.Mailer, subject string, log *slog.Logger) *Newsletter {
	if log == nil {
		log = logging.Discard()
	}
	if strings.TrimSpace(subject) == "" {
		subject = defaultSubject
	}
	return &Newsletter{mailer: mailer, subject: subject, logger: log}
}

// Send mails the list of tags to email.
func (n *Newsletter) Send(ctx context.Context, email string, tags []string) error {
	email = strings.TrimSpace(email)
	cleaned := cleanTags(tags)
	if email == "" || len(cleaned) == 0 {
		return ErrMissingFields
	}
	if n.mailer == nil {
		return errors.New("newsletter mailer is not configured")
	}

	html, err := RenderNewsletter(cleaned)
	if err != nil {
		return err
	}

	if err := n.mailer.Send(ctx, ports.Email{
		To:      []string{email},
		Subject: n.subject,
		HTML:    html,
	}); err != nil {
		return fmt.Errorf("send newsletter: %w", err)
	}

	n.logger.Info("newsletter sent", "tags", len(cleaned))
	return nil
}

// RenderNewsletter returns the HTML body listing tags.
func RenderNewsletter(tags []string) (string, error) {
	var buf bytes.Buffer
	if err := newsletterTemplate.Execute(&buf, struct{ Tags []string }{Tags: tags}); err != nil {
		return "", fmt.Errorf("render newsletter: %w", err)
	}
	return buf.String(), nil
}

// cleanTags trims tags and drops blanks and repeats while keeping the
// caller's spelling for display.
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := relevance.NormalizeTags([]string{tag})[0]
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}
