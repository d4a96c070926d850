package parser

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Identity hands out request identities so consecutive calls do not share one User-Agent.
type Identity struct {
	agents []string
}

// NewIdentity builds a pool; an empty pool falls back to a single generic agent.
func NewIdentity(agents []string) *Identity {
	pool := make([]string, 0, len(agents))
	for _, a := range agents {
		if a = strings.TrimSpace(a); a != "" {
			pool = append(pool, a)
		}
	}
	if len(pool) == 0 {
		pool = []string{"curatd/1.0"}
	}
	return &Identity{agents: pool}
}

// UserAgent returns a random agent from the pool.
func (i *Identity) UserAgent() string {
	if i == nil || len(i.agents) == 0 {
		return "curatd/1.0"
	}
	return i.agents[rand.IntN(len(i.agents))]
}

// NewHTTPClient returns the client shared by scanners.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func get(ctx context.Context, client *http.Client, identity *Identity, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", identity.UserAgent())
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", target, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%s returned %s", target, resp.Status)
	}

	return resp, nil
}

func fetchDocument(ctx context.Context, client *http.Client, identity *Identity, target string) (*goquery.Document, error) {
	resp, err := get(ctx, client, identity, target)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
