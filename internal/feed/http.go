// internal/feed/http.go
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/groundctl/groundcontrol/internal/config"
)

// watchBoost lifts watchlist entities above any plausible feed priority.
const watchBoost = 1 << 20

// maxBodyBytes bounds the response we are willing to decode.
const maxBodyBytes = 4 << 20

// HTTPClient fetches snapshots from a JSON endpoint such as a
// dump1090/FlightAware aircraft.json. The field mapping is config-driven:
// no JSON key is hardcoded here.
type HTTPClient struct {
	cfg  config.FeedConfig
	http *http.Client

	watch map[string]bool
}

// NewHTTPClient builds a client from normalized feed config.
func NewHTTPClient(cfg config.FeedConfig) *HTTPClient {
	watch := make(map[string]bool, len(cfg.Watchlist))
	for _, code := range cfg.Watchlist {
		watch[code] = true
	}

	return &HTTPClient{
		cfg: cfg,
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMs) * time.Millisecond,
		},
		watch: watch,
	}
}

// Fetch performs one request. One attempt per call, no retries.
func (c *HTTPClient) Fetch(ctx context.Context) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.BearerToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Snapshot{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	snap, err := c.decode(body)
	if err != nil {
		return Snapshot{}, err
	}
	snap.At = time.Now()
	return snap, nil
}

// decode maps the raw JSON document onto a Snapshot using the configured
// field names. Entries without a usable id are dropped, not fatal.
func (c *HTTPClient) decode(body []byte) (Snapshot, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	raw, ok := doc[c.cfg.EntitiesKey]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: missing %q key", ErrMalformed, c.cfg.EntitiesKey)
	}

	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %q is not an array of objects", ErrMalformed, c.cfg.EntitiesKey)
	}

	snap := Snapshot{Entities: make([]Entity, 0, len(items))}

	for _, item := range items {
		id, _ := item[c.cfg.Fields.ID].(string)
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}

		e := Entity{ID: id}

		if label, ok := item[c.cfg.Fields.Label].(string); ok {
			e.Label = strings.TrimSpace(label)
		}
		if squawk, ok := item[c.cfg.Fields.Squawk].(string); ok {
			e.Squawk = strings.TrimSpace(squawk)
		}

		e.Priority = c.priorityOf(item)

		if c.watch[e.Squawk] {
			e.Emergency = true
			e.Priority += watchBoost
		}

		snap.Entities = append(snap.Entities, e)
	}

	return snap, nil
}

// priorityOf derives the ranking value for one feed entry.
func (c *HTTPClient) priorityOf(item map[string]any) float64 {
	v, ok := asFloat(item[c.cfg.Fields.Priority])

	switch c.cfg.PriorityMode {
	case "recency":
		// The field counts seconds since last message; invert so that
		// fresher traffic ranks higher. Entries never heard rank last.
		if !ok {
			return -watchBoost
		}
		return -v
	default: // "field"
		if !ok {
			return 0
		}
		return v
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
