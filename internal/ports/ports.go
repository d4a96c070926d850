package ports

import (
	"context"

	"github.com/AnuragC07/curatd/internal/config"
	"github.com/AnuragC07/curatd/internal/domain"
	"github.com/AnuragC07/curatd/internal/scanner"
)

// CandidateSource pulls candidate items from a single configured source.
// It has no error result: a failing source yields an empty slice.
type CandidateSource interface {
	Candidates(ctx context.Context, kind domain.Kind, source config.Source, query scanner.Query) []domain.Item
}

// Pacer spaces out outbound calls to remote hosts.
type Pacer interface {
	Wait(ctx context.Context, target string) error
}

// Mailer delivers a single HTML email.
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

// Email is the provider-neutral message handed to a Mailer.
type Email struct {
	To      []string
	Subject string
	HTML    string
}

// Notifier publishes a selected bundle to an outbound channel (email, Telegram, etc.).
type Notifier interface {
	Name() string
	PublishDigest(ctx context.Context, bundle domain.Bundle) error
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(context.Context)) error
	Stop(ctx context.Context) error
}
