package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// metadataFields are extraction-quality annotations the service mixes into
// the field map. Only document-content fields may reach the comparison
// engine, so these are stripped from every successful result.
var metadataFields = map[string]struct{}{
	"confidence":     {},
	"valid":          {},
	"validity":       {},
	"document_score": {},
	"quality_score":  {},
}

const defaultTimeout = 10 * time.Second

// Client talks to the external document-recognition service. It performs no
// retries; retry policy belongs to the caller.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithClientLogger sets the client logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// NewClient builds a recognition-service client. The timeout bounds every
// Extract call so a hung service cannot stall the verification pipeline.
func NewClient(endpoint, apiKey string, timeout time.Duration, opts ...ClientOption) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("extraction endpoint is required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		apiKey:     apiKey,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type extractRequest struct {
	ImageURL string `json:"image_url"`
}

// extractEnvelope mirrors the service response: a status indicator plus a
// nested OCR field section. Data stays a pointer so "absent section" is
// distinguishable from "empty section".
type extractEnvelope struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   *struct {
		OCR map[string]string `json:"ocr"`
	} `json:"data,omitempty"`
}

// Extract requests recognition of a single document image and returns the
// document-content field map. Every failure carries a typed Cause; see
// parseResponse for the response-shape contract.
func (c *Client) Extract(ctx context.Context, imageRef string) (map[string]string, error) {
	if imageRef == "" {
		return nil, newFailure(MissingPayload, "image reference is empty", nil)
	}

	body, err := json.Marshal(extractRequest{ImageURL: imageRef})
	if err != nil {
		return nil, newFailure(MalformedResponse, "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, newFailure(NetworkError, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport errors and deadline expiry land here; both are network
		// failures from the caller's point of view.
		return nil, newFailure(NetworkError, "recognition service unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newFailure(NetworkError, "read response body", err)
	}

	fields, err := parseResponse(resp.StatusCode, raw)
	if err != nil {
		c.logger.WarnContext(ctx, "document extraction failed",
			"cause", string(CauseOf(err)),
			"http_status", resp.StatusCode,
		)
		return nil, err
	}
	return fields, nil
}

// parseResponse enforces the response-shape contract:
// non-success status (HTTP or envelope) => ServiceReportedError; absent body
// => MissingPayload; absent nested OCR section => MalformedResponse. No other
// shape is accepted. Extraction-quality metadata is stripped from the result.
func parseResponse(statusCode int, body []byte) (map[string]string, error) {
	if statusCode < 200 || statusCode >= 300 {
		return nil, newFailure(ServiceReportedError,
			fmt.Sprintf("recognition service returned status %d", statusCode), nil)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, newFailure(MissingPayload, "response body is empty", nil)
	}

	var envelope extractEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, newFailure(MalformedResponse, "undecodable response body", err)
	}
	if envelope.Status != "success" {
		msg := envelope.Error
		if msg == "" {
			msg = "recognition service reported status " + envelope.Status
		}
		return nil, newFailure(ServiceReportedError, msg, nil)
	}
	if envelope.Data == nil || envelope.Data.OCR == nil {
		return nil, newFailure(MalformedResponse, "response is missing the ocr section", nil)
	}

	fields := make(map[string]string, len(envelope.Data.OCR))
	for k, v := range envelope.Data.OCR {
		if _, isMeta := metadataFields[k]; isMeta {
			continue
		}
		fields[k] = v
	}
	return fields, nil
}
