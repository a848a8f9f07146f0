// ABOUTME: HTTP client for the remote dealer and activity resources
// ABOUTME: Implements store.Remote with no-cache reads and whole-collection writes

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/harperreed/dealerdesk/models"
	"github.com/harperreed/dealerdesk/store"
)

const (
	// DefaultTimeout bounds each request when the config sets none.
	DefaultTimeout = 15 * time.Second

	// MaxResponseSize caps how much of a response body is read (10MB).
	MaxResponseSize = 10 * 1024 * 1024

	DefaultDealersPath    = "/data/dealers.json"
	DefaultActivitiesPath = "/api/activities"
)

// Config holds client configuration.
type Config struct {
	BaseURL        string
	DealersPath    string
	ActivitiesPath string
	Timeout        time.Duration
}

// Client talks to the remote resources over HTTP.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
	today  func() time.Time
}

var _ store.Remote = (*Client)(nil)

// NewClient creates a client. Empty paths and a zero timeout take defaults.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.DealersPath == "" {
		cfg.DealersPath = DefaultDealersPath
	}
	if cfg.ActivitiesPath == "" {
		cfg.ActivitiesPath = DefaultActivitiesPath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
		today:  time.Now,
	}
}

// dealersEnvelope is the wrapped form of the dealer resource.
type dealersEnvelope struct {
	LastUpdated string                `json:"lastUpdated,omitempty"`
	Dealers     []models.DealerRecord `json:"dealers"`
}

type activitiesEnvelope struct {
	Activities []models.ActivityEntry `json:"activities"`
}

type activityResponse struct {
	Activity *models.ActivityEntry `json:"activity"`
}

// LoadDealers fetches the dealer collection. The body may be a bare array or
// an object with a "dealers" field.
func (c *Client) LoadDealers(ctx context.Context) ([]models.DealerRecord, error) {
	const op = "load dealers"

	body, err := c.do(ctx, op, http.MethodGet, c.cfg.DealersPath, nil)
	if err != nil {
		return nil, err
	}

	var dealers []models.DealerRecord
	switch firstByte(body) {
	case '[':
		if err := json.Unmarshal(body, &dealers); err != nil {
			return nil, &store.MalformedResponseError{Op: op, Err: err}
		}
	case '{':
		var env struct {
			Dealers *[]models.DealerRecord `json:"dealers"`
		}
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, &store.MalformedResponseError{Op: op, Err: err}
		}
		if env.Dealers == nil {
			return nil, &store.MalformedResponseError{Op: op, Err: fmt.Errorf("missing dealers field")}
		}
		dealers = *env.Dealers
	default:
		return nil, &store.MalformedResponseError{Op: op, Err: fmt.Errorf("expected array or object")}
	}

	c.logger.Debug("loaded dealers", zap.Int("count", len(dealers)))
	return dealers, nil
}

// SaveDealers posts the whole collection with today's date.
func (c *Client) SaveDealers(ctx context.Context, dealers []models.DealerRecord) error {
	if dealers == nil {
		dealers = []models.DealerRecord{}
	}
	payload, err := json.Marshal(dealersEnvelope{
		LastUpdated: c.today().Format(models.DateLayout),
		Dealers:     dealers,
	})
	if err != nil {
		return fmt.Errorf("failed to encode dealers: %w", err)
	}

	_, err = c.do(ctx, "save dealers", http.MethodPost, c.cfg.DealersPath, payload)
	return err
}

// LoadActivities fetches the activity log, most recent first. An object with
// no "activities" field is an empty log.
func (c *Client) LoadActivities(ctx context.Context) ([]models.ActivityEntry, error) {
	const op = "load activities"

	body, err := c.do(ctx, op, http.MethodGet, c.cfg.ActivitiesPath, nil)
	if err != nil {
		return nil, err
	}

	var activities []models.ActivityEntry
	switch firstByte(body) {
	case '[':
		if err := json.Unmarshal(body, &activities); err != nil {
			return nil, &store.MalformedResponseError{Op: op, Err: err}
		}
	case '{':
		var env activitiesEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, &store.MalformedResponseError{Op: op, Err: err}
		}
		activities = env.Activities
	default:
		return nil, &store.MalformedResponseError{Op: op, Err: fmt.Errorf("expected array or object")}
	}

	return activities, nil
}

// AppendActivity posts one entry and returns the stored copy the server
// echoes back, or nil when the response carries none.
func (c *Client) AppendActivity(ctx context.Context, entry models.ActivityEntry) (*models.ActivityEntry, error) {
	const op = "append activity"

	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to encode activity: %w", err)
	}

	body, err := c.do(ctx, op, http.MethodPost, c.cfg.ActivitiesPath, payload)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var resp activityResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &store.MalformedResponseError{Op: op, Err: err}
	}
	return resp.Activity, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reqBody)
	if err != nil {
		return nil, &store.NetworkError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	} else {
		req.Header.Set("Cache-Control", "no-cache")
		req.Header.Set("Pragma", "no-cache")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &store.NetworkError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, &store.NetworkError{Op: op, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	if len(body) > MaxResponseSize {
		return nil, &store.MalformedResponseError{Op: op, Err: fmt.Errorf("response body exceeds %d bytes", MaxResponseSize)}
	}

	c.logger.Debug("remote request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &store.NetworkError{Op: op, StatusCode: resp.StatusCode}
	}
	return body, nil
}

func firstByte(body []byte) byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}
