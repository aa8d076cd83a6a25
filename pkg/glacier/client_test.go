package glacier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"l1registry/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chainsBody = `{
  "chains": [
    {"chainId": "43114", "platformChainId": "2q9e4r6Mu3U68nU1fYjgbR6JvwrRx36CohpAX5UQxse55x1Q5", "networkToken": {"symbol": "AVAX", "logoUri": "https://example.com/avax.png"}},
    {"chainId": "4337", "platformChainId": "beam-chain", "networkToken": {"symbol": "BEAM", "logoUri": ""}},
    {"chainId": "9999", "platformChainId": "beam-chain", "networkToken": {"symbol": "BEAM", "logoUri": "https://example.com/late.png"}}
  ],
  "nextPageToken": ""
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(ClientOptions{BaseURL: srv.URL + "/v1/", APIKey: "test-key"})
	require.NoError(t, err)
	return client, srv
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(ClientOptions{})
	assert.ErrorIs(t, err, ErrAPIKeyRequired)
}

func TestFetchSnapshot(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chains", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-glacier-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(chainsBody))
	})

	snap, err := client.FetchSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Len())

	logo, ok := snap.LogoURI("2q9e4r6Mu3U68nU1fYjgbR6JvwrRx36CohpAX5UQxse55x1Q5")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/avax.png", logo)

	_, ok = snap.LogoURI("beam-chain")
	assert.False(t, ok, "first match has no logo")

	_, ok = snap.LogoURI("unknown")
	assert.False(t, ok)
}

func TestFetchSnapshotMalformed(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"missing chains", http.StatusOK, `{"items": []}`},
		{"not json", http.StatusOK, `<html>`},
		{"server error", http.StatusBadGateway, `bad gateway`},
		{"unauthorized", http.StatusUnauthorized, `{"message":"invalid key"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			snap, err := client.FetchSnapshot(context.Background())
			assert.Error(t, err)
			assert.Nil(t, snap)
		})
	}
}

func TestNilSnapshotFindsNothing(t *testing.T) {
	var snap *Snapshot
	_, ok := snap.LogoURI("anything")
	assert.False(t, ok)
	assert.Equal(t, 0, snap.Len())
}

func TestFetchIsL1(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/networks/mainnet/subnets/l1-subnet":
			_, _ = w.Write([]byte(`{"subnetId":"l1-subnet","isL1":true}`))
		case "/v1/networks/mainnet/subnets/legacy-subnet":
			_, _ = w.Write([]byte(`{"subnetId":"legacy-subnet","isL1":false}`))
		case "/v1/networks/mainnet/subnets/no-flag":
			_, _ = w.Write([]byte(`{"subnetId":"no-flag"}`))
		case "/v1/networks/mainnet/subnets/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	isL1, err := client.FetchIsL1(ctx, "l1-subnet")
	require.NoError(t, err)
	assert.True(t, isL1)

	isL1, err = client.FetchIsL1(ctx, "legacy-subnet")
	require.NoError(t, err)
	assert.False(t, isL1)

	isL1, err = client.FetchIsL1(ctx, "no-flag")
	require.NoError(t, err)
	assert.False(t, isL1)

	_, err = client.FetchIsL1(ctx, "testnet-only")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = client.FetchIsL1(ctx, "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}

func TestFetchIsL1UsesNetwork(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"isL1":true}`))
	}))
	defer srv.Close()

	client, err := NewClient(ClientOptions{BaseURL: srv.URL, APIKey: "k", Network: "fuji"})
	require.NoError(t, err)

	_, err = client.FetchIsL1(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "/networks/fuji/subnets/abc", gotPath)
}

func TestFetchIsL1Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"isL1":true}`))
	}))
	defer srv.Close()

	client, err := NewClient(ClientOptions{BaseURL: srv.URL, APIKey: "k", Timeout: 20 * time.Millisecond})
	require.NoError(t, err)

	_, err = client.FetchIsL1(context.Background(), "abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFetchSnapshotUsesCache(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte(chainsBody))
	}))
	defer srv.Close()

	c, err := cache.New(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	defer c.Close()

	for i := 0; i < 3; i++ {
		client, err := NewClient(ClientOptions{BaseURL: srv.URL, APIKey: "k", Cache: c, SnapshotTTL: time.Hour})
		require.NoError(t, err)
		snap, err := client.FetchSnapshot(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, snap.Len())
	}
	assert.Equal(t, int32(1), requests.Load())
}

func TestFetchSnapshotDoesNotCacheMalformedListing(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		_, _ = w.Write([]byte(chainsBody))
	}))
	defer srv.Close()

	c, err := cache.New(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	defer c.Close()

	client, err := NewClient(ClientOptions{BaseURL: srv.URL, APIKey: "k", Cache: c, SnapshotTTL: time.Hour})
	require.NoError(t, err)

	_, err = client.FetchSnapshot(context.Background())
	require.Error(t, err)

	snap, err := client.FetchSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Len())
}
