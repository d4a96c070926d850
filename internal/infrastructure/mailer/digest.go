package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/AnuragC07/curatd/internal/domain"
	"github.com/AnuragC07/curatd/internal/ports"
	"github.com/AnuragC07/curatd/internal/render"
)

// DigestNotifier emails the daily bundle to a fixed recipient list.
type DigestNotifier struct {
	mailer     ports.Mailer
	recipients []string
	subject    string
}

var _ ports.Notifier = (*DigestNotifier)(nil)

// NewDigestNotifier wires a mailer with the digest recipients.
func NewDigestNotifier(mailer ports.Mailer, recipients []string, subject string) *DigestNotifier {
	return &DigestNotifier{mailer: mailer, recipients: recipients, subject: subject}
}

// Name identifies the notifier in logs.
func (n *DigestNotifier) Name() string { return "email" }

// PublishDigest renders the bundle as HTML and mails each recipient separately,
// so addresses are not disclosed to one another.
func (n *DigestNotifier) PublishDigest(ctx context.Context, bundle domain.Bundle) error {
	if n.mailer == nil || len(n.recipients) == 0 {
		return errors.New("email digest has no mailer or recipients")
	}

	html, err := render.DigestHTML(bundle)
	if err != nil {
		return err
	}

	var errs []error
	for _, to := range n.recipients {
		if err := n.mailer.Send(ctx, ports.Email{To: []string{to}, Subject: n.subject, HTML: html}); err != nil {
			errs = append(errs, fmt.Errorf("mail %s: %w", to, err))
		}
	}
	return errors.Join(errs...)
}
