// internal/feed/http_test.go
package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groundctl/groundcontrol/internal/config"
)

func feedConfig(endpoint string) config.FeedConfig {
	return config.FeedConfig{
		Endpoint:    endpoint,
		TimeoutMs:   1000,
		EntitiesKey: "aircraft",
		Fields: config.FieldConfig{
			ID:       "hex",
			Priority: "seen",
			Label:    "flight",
			Squawk:   "squawk",
		},
		PriorityMode: "recency",
		Watchlist:    []string{"7500", "7600", "7700"},
	}
}

const sampleBody = `{
	"now": 1628342400.0,
	"messages": 123456,
	"aircraft": [
		{"hex": "406b9d", "flight": "BAW123  ", "seen": 2.1, "squawk": "4721"},
		{"hex": "a1b2c3", "seen": 55.0},
		{"hex": "4ca7b4", "flight": "RYR8CD", "seen": 0.4, "squawk": "7700"},
		{"flight": "NOID", "seen": 1.0}
	]
}`

func TestFetch_DecodesMappedFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	c := NewHTTPClient(feedConfig(srv.URL))
	snap, err := c.Fetch(context.Background())
	require.NoError(t, err)

	// The entry without an id is dropped.
	require.Len(t, snap.Entities, 3)

	baw := snap.Entities[0]
	assert.Equal(t, "406b9d", baw.ID)
	assert.Equal(t, "BAW123", baw.Label)
	assert.Equal(t, "4721", baw.Squawk)
	assert.InDelta(t, -2.1, baw.Priority, 0.001)
	assert.False(t, baw.Emergency)
}

func TestFetch_WatchlistBoost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	c := NewHTTPClient(feedConfig(srv.URL))
	snap, err := c.Fetch(context.Background())
	require.NoError(t, err)

	ryr := snap.Entities[2]
	require.True(t, ryr.Emergency)

	// The emergency entity must outrank everything else in the snapshot.
	for _, e := range snap.Entities[:2] {
		assert.Greater(t, ryr.Priority, e.Priority)
	}
}

func TestFetch_BearerToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{"aircraft": []}`))
	}))
	defer srv.Close()

	cfg := feedConfig(srv.URL)
	cfg.BearerToken = "sekrit"

	c := NewHTTPClient(cfg)
	_, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer sekrit", got)
}

func TestFetch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewHTTPClient(feedConfig(srv.URL))
	_, err := c.Fetch(context.Background())
	assert.True(t, errors.Is(err, ErrUnavailable), "got %v", err)
}

func TestFetch_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse immediately

	c := NewHTTPClient(feedConfig(srv.URL))
	_, err := c.Fetch(context.Background())
	assert.True(t, errors.Is(err, ErrUnavailable), "got %v", err)
}

func TestFetch_MalformedBody(t *testing.T) {
	cases := map[string]string{
		"not json":       `<html>boom</html>`,
		"missing key":    `{"planes": []}`,
		"wrong key type": `{"aircraft": {"hex": "406b9d"}}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer srv.Close()

			c := NewHTTPClient(feedConfig(srv.URL))
			_, err := c.Fetch(context.Background())
			assert.True(t, errors.Is(err, ErrMalformed), "got %v", err)
		})
	}
}

func TestFetch_PriorityFieldMode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"aircraft": [{"hex": "abc", "seen": 9.5}]}`))
	}))
	defer srv.Close()

	cfg := feedConfig(srv.URL)
	cfg.PriorityMode = "field"

	c := NewHTTPClient(cfg)
	snap, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Entities, 1)
	assert.InDelta(t, 9.5, snap.Entities[0].Priority, 0.001)
}
