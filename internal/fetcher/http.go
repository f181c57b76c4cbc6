package fetcher

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

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const snapshotPathFormat = "/pools/%s/snapshot"

// HTTPOptions parameterise the explorer REST source.
type HTTPOptions struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	UserAgent         string
}

// HTTPSource fetches snapshots from the explorer REST backend.
type HTTPSource struct {
	opts    HTTPOptions
	logger  zerolog.Logger
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
}

// NewHTTPSource constructs a rate-limited REST source.
func NewHTTPSource(opts HTTPOptions, logger zerolog.Logger) *HTTPSource {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &HTTPSource{
		opts:    opts,
		logger:  logger.With().Str("component", "snapshot_http").Logger(),
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
	}
}

// FetchSnapshot retrieves the snapshot of poolID.
func (h *HTTPSource) FetchSnapshot(ctx context.Context, poolID string) (PoolSnapshot, error) {
	if h.baseURL == "" {
		return PoolSnapshot{}, errors.New("source.base_url not configured")
	}
	if poolID == "" {
		return PoolSnapshot{}, errors.New("pool id required")
	}

	if err := h.limiter.Wait(ctx); err != nil {
		return PoolSnapshot{}, fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := h.baseURL + fmt.Sprintf(snapshotPathFormat, url.PathEscape(poolID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return PoolSnapshot{}, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(h.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "poolcalc/1.0")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return PoolSnapshot{}, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return PoolSnapshot{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return PoolSnapshot{}, parseHTTPError(resp.StatusCode, payload)
	}

	var snap PoolSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return PoolSnapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.PoolID == "" {
		snap.PoolID = poolID
	}

	h.logger.Debug().Str("pool_id", poolID).Int("epoch", snap.Epoch).Msg("snapshot fetched")
	return snap, nil
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func parseHTTPError(status int, payload []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil {
		if apiErr.Message != "" {
			return fmt.Errorf("explorer api error (%d): %s", status, apiErr.Message)
		}
		if apiErr.Error != "" {
			return fmt.Errorf("explorer api error (%d): %s", status, apiErr.Error)
		}
	}
	if len(payload) > 0 {
		return fmt.Errorf("explorer api error (%d): %s", status, strings.TrimSpace(string(payload)))
	}
	return fmt.Errorf("explorer api error (%d)", status)
}

var _ SnapshotSource = (*HTTPSource)(nil)
