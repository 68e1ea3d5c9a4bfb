// Package providers implements HTTP clients for the external data sources
// backing each classification kind: the RSS3 decentralized activity API for
// EVM addresses and the OSSInsight API for GitHub repositories and users.
//
// Providers are opaque remote services. Every fetch is bounded by the
// client's timeout, never retried, and returns the provider's raw
// JSON-shaped payload. Callers sit behind the read-through cache in
// internal/cache and must not assume anything about payload structure.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/web3insight/go-insight-backend/internal/classify"
)

// ErrUnavailable is returned when a provider call fails, times out, or
// answers with a non-2xx status. The cause is wrapped for logging; callers
// should branch on this sentinel only.
var ErrUnavailable = errors.New("provider unavailable")

// Provider fetches entity metadata for an already-classified identifier.
type Provider interface {
	// Lookup returns the raw payload for the given kind/identifier pair.
	// Kind must be one of the three concrete kinds; KindUnclassified is a
	// programming error and yields ErrUnavailable.
	Lookup(ctx context.Context, kind classify.Kind, identifier string) (json.RawMessage, error)
}

// Client is the production Provider backed by RSS3 and OSSInsight.
type Client struct {
	rss3Base       string
	ossinsightBase string
	http           *http.Client
}

// New builds a Client for the given base URLs with a per-request timeout.
func New(rss3Base, ossinsightBase string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		rss3Base:       strings.TrimRight(rss3Base, "/"),
		ossinsightBase: strings.TrimRight(ossinsightBase, "/"),
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Lookup dispatches on the resolved kind.
func (c *Client) Lookup(ctx context.Context, kind classify.Kind, identifier string) (json.RawMessage, error) {
	switch kind {
	case classify.KindEVMAddress:
		return c.evmActivity(ctx, identifier)
	case classify.KindGitHubRepo:
		return c.githubRepo(ctx, identifier)
	case classify.KindGitHubUser:
		return c.githubUser(ctx, identifier)
	default:
		return nil, fmt.Errorf("%w: no provider for kind %s", ErrUnavailable, kind)
	}
}

// evmActivity fetches recent decentralized activity for an address or ENS
// name from the RSS3 DSL endpoint.
func (c *Client) evmActivity(ctx context.Context, address string) (json.RawMessage, error) {
	u := fmt.Sprintf("%s/decentralized/%s?limit=50&action_limit=10", c.rss3Base, url.PathEscape(address))
	return c.getJSON(ctx, u)
}

// githubRepo fetches repository metrics from OSSInsight and unwraps the
// "data" envelope.
func (c *Client) githubRepo(ctx context.Context, repo string) (json.RawMessage, error) {
	u := fmt.Sprintf("%s/repo/%s", c.ossinsightBase, repo)
	raw, err := c.getJSON(ctx, u)
	if err != nil {
		return nil, err
	}
	return unwrapData(raw)
}

// githubUser fetches user metrics from OSSInsight and unwraps the "data"
// envelope.
func (c *Client) githubUser(ctx context.Context, user string) (json.RawMessage, error) {
	u := fmt.Sprintf("%s/users/%s", c.ossinsightBase, url.PathEscape(user))
	raw, err := c.getJSON(ctx, u)
	if err != nil {
		return nil, err
	}
	return unwrapData(raw)
}

// getJSON performs one bounded GET and returns the body on 2xx.
func (c *Client) getJSON(ctx context.Context, rawURL string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d from %s", ErrUnavailable, resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: invalid JSON from %s", ErrUnavailable, rawURL)
	}
	return json.RawMessage(body), nil
}

// unwrapData extracts the "data" member of an OSSInsight response envelope.
// A missing or null member is treated as an unavailable payload; the cache
// layer must never see a response that only looked successful.
func unwrapData(raw json.RawMessage) (json.RawMessage, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil, fmt.Errorf("%w: empty data envelope", ErrUnavailable)
	}
	return envelope.Data, nil
}
