// Package otp is a thin client for the upstream OTP GraphQL API. It knows the
// two operations the tracker consumes and the transport options needed to
// reach the backend; it is not a general-purpose GraphQL client.
package otp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tracker.transitlive.org/internal/metrics"
	"tracker.transitlive.org/internal/utils"
)

// TransportError reports a failure to obtain a well-formed GraphQL response:
// a network error, a non-success HTTP status, or a non-JSON body.
type TransportError struct {
	Operation string
	Status    int
	Err       error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("otp: %s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("otp: %s: upstream returned HTTP %d", e.Operation, e.Status)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UpstreamError reports a GraphQL-level error payload from the upstream.
type UpstreamError struct {
	Operation string
	Messages  []string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("otp: %s: upstream errors: %s", e.Operation, strings.Join(e.Messages, "; "))
}

type graphqlError struct {
	Message string `json:"message"`
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

// Options configures a Client. Everything here is transport configuration;
// it never changes the calling contract.
type Options struct {
	Endpoint string
	Timeout  time.Duration
	ProxyURL string
	Headers  map[string]string
	Metrics  *metrics.Metrics
}

// Client issues GraphQL operations against one OTP endpoint. No retries.
type Client struct {
	endpoint   string
	headers    map[string]string
	httpClient *http.Client
	metrics    *metrics.Metrics
}

// Responses larger than this are treated as malformed rather than buffered.
const maxResponseBytes = 16 * 1024 * 1024

// NewClient builds a Client with a pooled transport. The transport is cloned
// from http.DefaultTransport to preserve its defaults (dialer, HTTP/2,
// keepalives); the per-request timeout also applies through the caller's
// context, and the stricter of the two wins.
func NewClient(opts Options) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("otp: endpoint must not be empty")
	}

	var transport *http.Transport
	if t, ok := http.DefaultTransport.(*http.Transport); ok {
		transport = t.Clone()
	} else {
		transport = &http.Transport{}
	}
	transport.MaxIdleConns = 50
	transport.MaxIdleConnsPerHost = 10
	transport.IdleConnTimeout = 90 * time.Second
	transport.TLSHandshakeTimeout = 10 * time.Second

	if opts.ProxyURL != "" {
		proxy, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("otp: invalid proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		endpoint: opts.Endpoint,
		headers:  opts.Headers,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		metrics: opts.Metrics,
	}, nil
}

// Execute posts the operation and returns the raw data payload.
func (c *Client) Execute(ctx context.Context, q Query) (json.RawMessage, error) {
	start := time.Now()
	data, err := c.execute(ctx, q)
	c.observe(q.OperationName, time.Since(start), err)
	return data, err
}

func (c *Client) execute(ctx context.Context, q Query) (json.RawMessage, error) {
	payload, err := json.Marshal(map[string]any{
		"query":     q.Text,
		"variables": q.Variables,
	})
	if err != nil {
		return nil, &TransportError{Operation: q.OperationName, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Operation: q.OperationName, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Operation: q.OperationName, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, &TransportError{Operation: q.OperationName, Err: err}
	}
	if len(body) > maxResponseBytes {
		return nil, &TransportError{Operation: q.OperationName, Err: fmt.Errorf("response exceeds %d bytes", maxResponseBytes)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Operation: q.OperationName, Status: resp.StatusCode}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &TransportError{Operation: q.OperationName, Err: fmt.Errorf("decoding response: %w", err)}
	}

	if len(env.Errors) > 0 {
		messages := make([]string, len(env.Errors))
		for i, gqlErr := range env.Errors {
			messages[i] = gqlErr.Message
		}
		return nil, &UpstreamError{Operation: q.OperationName, Messages: messages}
	}

	return env.Data, nil
}

func (c *Client) observe(operation string, elapsed time.Duration, err error) {
	if c.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.metrics.UpstreamRequestsTotal.WithLabelValues(operation, status).Inc()
	c.metrics.UpstreamRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// VehiclePositions fetches the live vehicles inside bounds for the given
// transit modes. A null or missing list decodes to an empty slice.
func (c *Client) VehiclePositions(ctx context.Context, bounds utils.CoordinateBounds, modes []string) ([]VehiclePosition, error) {
	data, err := c.Execute(ctx, VehiclePositionsQuery(bounds, modes))
	if err != nil {
		return nil, err
	}

	var result struct {
		VehiclePositions []VehiclePosition `json:"vehiclePositions"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &TransportError{Operation: "VehiclePositions", Err: fmt.Errorf("decoding data: %w", err)}
	}
	if result.VehiclePositions == nil {
		return []VehiclePosition{}, nil
	}
	return result.VehiclePositions, nil
}

// Trip fetches the timetable and geometry for one trip on the given service
// day. Returns (nil, nil) when the upstream knows no such trip; callers treat
// that the same as a failed enrichment.
func (c *Client) Trip(ctx context.Context, tripID, serviceDay string) (*TripDetail, error) {
	data, err := c.Execute(ctx, TripQuery(tripID, serviceDay))
	if err != nil {
		return nil, err
	}

	var result struct {
		Trip *TripDetail `json:"trip"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &TransportError{Operation: "Trip", Err: fmt.Errorf("decoding data: %w", err)}
	}
	return result.Trip, nil
}
