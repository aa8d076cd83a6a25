// Package glacier is a small client for the two Glacier API endpoints the registry
// enrichment needs: the bulk chain listing and the per-subnet detail.
package glacier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"l1registry/pkg/cache"

	"github.com/rs/zerolog/log"
)

const (
	DefaultBaseURL = "https://glacier-api.avax.network/v1"
	DefaultNetwork = "mainnet"
	DefaultTimeout = 30 * time.Second

	apiKeyHeader = "x-glacier-api-key"

	// snapshotCacheKey stores the raw /chains body.
	snapshotCacheKey = "glacier/chains"

	maxResponseBody = 32 << 20
)

var (
	// ErrAPIKeyRequired is returned by NewClient when no API key is configured.
	ErrAPIKeyRequired = errors.New("glacier API key is required")

	// ErrNotFound is returned when the API does not know the requested subnet, e.g. a
	// testnet or private subnet.
	ErrNotFound = errors.New("not found")
)

// StatusError is returned for non-2xx responses other than 404.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

type ClientOptions struct {
	BaseURL string
	APIKey  string
	// Network selects the subnet lookup path (mainnet or fuji).
	Network    string
	Timeout    time.Duration
	HTTPClient *http.Client

	// Cache, with a positive SnapshotTTL, keeps the bulk listing across runs.
	Cache       *cache.Cache
	SnapshotTTL time.Duration
}

type Client struct {
	baseURL     string
	apiKey      string
	network     string
	httpClient  *http.Client
	cache       *cache.Cache
	snapshotTTL time.Duration
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Network == "" {
		opts.Network = DefaultNetwork
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
			},
		}
	}

	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		apiKey:      opts.APIKey,
		network:     opts.Network,
		httpClient:  opts.HTTPClient,
		cache:       opts.Cache,
		snapshotTTL: opts.SnapshotTTL,
	}, nil
}

// FetchSnapshot downloads the bulk chain listing.
func (c *Client) FetchSnapshot(ctx context.Context) (*Snapshot, error) {
	fetch := func() ([]byte, error) {
		body, err := c.get(ctx, "/chains")
		if err != nil {
			return nil, err
		}
		// Only well-formed listings are worth caching.
		if _, err := parseChains(body); err != nil {
			return nil, err
		}
		return body, nil
	}

	var body []byte
	var err error
	if c.cache != nil && c.snapshotTTL > 0 {
		body, err = c.cache.Get(snapshotCacheKey, c.snapshotTTL, fetch)
	} else {
		body, err = fetch()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chain listing: %w", err)
	}

	chains, err := parseChains(body)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("component", "glacier").Int("chains", len(chains)).Msg("Fetched chain listing")
	return NewSnapshot(chains), nil
}

// FetchIsL1 reports whether the subnet has been converted to an L1. Unknown subnets
// return ErrNotFound.
func (c *Client) FetchIsL1(ctx context.Context, subnetID string) (bool, error) {
	path := fmt.Sprintf("/networks/%s/subnets/%s", url.PathEscape(c.network), url.PathEscape(subnetID))
	body, err := c.get(ctx, path)
	if err != nil {
		return false, err
	}

	var resp subnetResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, fmt.Errorf("failed to decode subnet %s: %w", subnetID, err)
	}
	return resp.IsL1 != nil && *resp.IsL1, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to issue request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}
	return body, nil
}

func parseChains(body []byte) ([]ChainSummary, error) {
	var resp chainsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode chain listing: %w", err)
	}
	if resp.Chains == nil {
		return nil, errors.New("invalid response from Glacier API: missing chains")
	}
	return *resp.Chains, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
