package pixel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ryanbastic/go-sheetdesk/internal/circuitbreaker"
	"github.com/ryanbastic/go-sheetdesk/internal/metrics"
)

// APIError is an error object returned by the Graph API.
type APIError struct {
	Status    int    `json:"-"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      int    `json:"code"`
	FBTraceID string `json:"fbtrace_id"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("graph api status %d", e.Status)
	}
	return fmt.Sprintf("graph api error %d (%s): %s", e.Code, e.Type, e.Message)
}

// Temporary reports whether retrying the same request may succeed.
func (e *APIError) Temporary() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests
}

// Response is the body returned for an accepted batch of events.
type Response struct {
	EventsReceived int      `json:"events_received"`
	Messages       []string `json:"messages"`
	FBTraceID      string   `json:"fbtrace_id"`
}

// eventsRequest is the POST body. The access token stays out of the URL.
type eventsRequest struct {
	Data        []Event `json:"data"`
	AccessToken string  `json:"access_token"`
}

// Config holds the client settings.
type Config struct {
	GraphURL   string
	APIVersion string
	MaxRetries int
	BaseDelay  time.Duration
	Timeout    time.Duration
}

// Client posts events to <graph>/<version>/<pixel>/events with retries.
// Transient failures are retried with exponential backoff; the whole
// exchange runs behind a circuit breaker that only counts transient failures.
type Client struct {
	httpClient *http.Client
	cfg        Config
	breaker    *circuitbreaker.Breaker
	logger     *slog.Logger
}

// NewClient creates a Client. breaker may be nil.
func NewClient(cfg Config, breaker *circuitbreaker.Breaker, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		breaker:    breaker,
		logger:     logger,
	}
}

// IsTransient reports whether err should count against the breaker.
func IsTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return err != nil
}

// Send delivers events to the pixel using accessToken.
func (c *Client) Send(ctx context.Context, pixelID, accessToken string, events ...Event) (*Response, error) {
	if pixelID == "" {
		return nil, errors.New("pixel id is required")
	}
	if accessToken == "" {
		return nil, errors.New("access token is required")
	}

	data, err := json.Marshal(eventsRequest{Data: events, AccessToken: accessToken})
	if err != nil {
		return nil, fmt.Errorf("marshal events: %w", err)
	}
	endpoint := c.endpoint(pixelID)

	start := time.Now()
	var resp *Response
	call := func() error {
		var err error
		resp, err = c.sendWithRetry(ctx, endpoint, data)
		return err
	}
	if c.breaker != nil {
		err = c.breaker.Execute(call)
	} else {
		err = call()
	}
	metrics.ObserveRemote("pixel", "send_events", start, err)

	if err != nil {
		c.logger.Error("conversion events not delivered", "pixel_id", pixelID, "events", len(events), "error", err)
		return nil, err
	}
	c.logger.Debug("conversion events delivered", "pixel_id", pixelID, "events_received", resp.EventsReceived, "fbtrace_id", resp.FBTraceID)
	return resp, nil
}

func (c *Client) endpoint(pixelID string) string {
	base := strings.TrimRight(c.cfg.GraphURL, "/")
	return fmt.Sprintf("%s/%s/%s/events", base, c.cfg.APIVersion, url.PathEscape(pixelID))
}

func (c *Client) sendWithRetry(ctx context.Context, endpoint string, data []byte) (*Response, error) {
	var lastErr error
	for attempt := range c.cfg.MaxRetries + 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := c.doRequest(ctx, endpoint, data)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !IsTransient(err) {
			return nil, err
		}

		if attempt < c.cfg.MaxRetries {
			delay := c.cfg.BaseDelay * time.Duration(math.Pow(2, float64(attempt)))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return nil, fmt.Errorf("send events failed after %d attempts: %w", c.cfg.MaxRetries+1, lastErr)
}

func (c *Client) doRequest(ctx context.Context, endpoint string, data []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var envelope struct {
			Error *APIError `json:"error"`
		}
		apiErr := &APIError{}
		if json.Unmarshal(body, &envelope) == nil && envelope.Error != nil {
			apiErr = envelope.Error
		}
		apiErr.Status = resp.StatusCode
		return nil, apiErr
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("unmarshal events response: %w", err)
	}
	return &out, nil
}
