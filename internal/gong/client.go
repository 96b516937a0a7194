package gong

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/roivaz/gong-mcp/internal/logging"
)

const requestTimeout = 30 * time.Second

// APIError is a failed upstream exchange: a transport error has Status 0,
// a non-2xx response carries the upstream's message when one was found in
// the response body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Message)
}

type ClientConfig struct {
	BaseURL   string
	AccessKey string
	Secret    string
	Logger    logging.Logger
	// Now is the timestamp source; nil means wall clock. Signatures cover
	// the timestamp captured when the request is issued.
	Now func() time.Time
	// HTTPClient overrides the default 30s-timeout client, for tests.
	HTTPClient *http.Client
}

// Client issues signed requests against the upstream API and returns the
// parsed JSON body. No retries: a failed call fails the enclosing operation.
type Client struct {
	baseURL   string
	accessKey string
	secret    []byte
	http      *http.Client
	now       func() time.Time
	log       logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		accessKey: cfg.AccessKey,
		secret:    []byte(cfg.Secret),
		http:      httpClient,
		now:       now,
		log:       cfg.Logger,
	}
}

// Get issues a signed GET with the given query parameters.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (gjson.Result, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

// Post issues a signed POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (gjson.Result, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (gjson.Result, error) {
	timestamp := c.now().UTC().Format(time.RFC3339)

	payload, bodyBytes, err := serializePayload(query, body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("serialize request payload: %w", err)
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reader io.Reader
	if bodyBytes != nil {
		reader = bytes.NewReader(bodyBytes)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("build request: %w", err)
	}

	basic := base64.StdEncoding.EncodeToString([]byte(c.accessKey + ":" + string(c.secret)))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("X-Gong-AccessKey", c.accessKey)
	req.Header.Set("X-Gong-Timestamp", timestamp)
	req.Header.Set("X-Gong-Signature", Sign(c.secret, method, path, timestamp, payload))
	if bodyBytes != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, &APIError{Message: fmt.Sprintf("%s %s: %v", method, path, err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, &APIError{Message: fmt.Sprintf("read response for %s %s: %v", method, path, err)}
	}

	c.log.Debug("upstream call", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start).String())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return gjson.Result{}, &APIError{Status: resp.StatusCode, Message: upstreamMessage(raw)}
	}
	return gjson.ParseBytes(raw), nil
}

// serializePayload returns the string covered by the signature and, when a
// body is present, its exact wire bytes.
func serializePayload(query url.Values, body any) (string, []byte, error) {
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return "", nil, err
		}
		return string(b), b, nil
	}
	if len(query) > 0 {
		flat := make(map[string]string, len(query))
		for k := range query {
			flat[k] = query.Get(k)
		}
		b, err := json.Marshal(flat)
		if err != nil {
			return "", nil, err
		}
		return string(b), nil, nil
	}
	return "", nil, nil
}

// upstreamMessage probes the common error-message fields the upstream uses.
func upstreamMessage(raw []byte) string {
	parsed := gjson.ParseBytes(raw)
	for _, key := range []string{"errors.0", "message", "error"} {
		if v := parsed.Get(key); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	if trimmed := strings.TrimSpace(string(raw)); trimmed != "" {
		return trimmed
	}
	return "no error detail provided"
}
