// Package analysis talks to the remote service that recognises and solves
// the expressions drawn on the board.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Path is appended to the configured base URL.
const Path = "/calculate/analyze"

// RequestIDHeader carries a per-request UUID.
const RequestIDHeader = "X-Request-ID"

// ErrMalformedResponse reports a reply that does not have the expected shape.
var ErrMalformedResponse = errors.New("malformed analysis response")

// StatusError is returned for non-2xx replies.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("analysis service returned %d", e.Code)
	}
	return fmt.Sprintf("analysis service returned %d: %s", e.Code, e.Body)
}

// Request is the JSON body sent to the service.
type Request struct {
	Image string            `json:"image"`
	Vars  map[string]string `json:"dict_of_vars"`
}

// Entry is one recognised expression.
type Entry struct {
	Expr   string `json:"expr"`
	Result string `json:"result"`
	Assign bool   `json:"assign"`
}

// Display returns the display pair for e.
func (e Entry) Display() Result {
	return Result{Expression: e.Expr, Answer: e.Result}
}

// Analyzer is implemented by Client and by test fakes.
type Analyzer interface {
	Analyze(ctx context.Context, image string, vars map[string]string) ([]Entry, error)
}

// Client posts board snapshots to the analysis service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	newID      func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.httpClient = hc } }

// NewClient returns a client for the service rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: http.DefaultClient,
		newID:      func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Endpoint returns the full analysis URL.
func (c *Client) Endpoint() string { return c.baseURL + Path }

// Analyze sends image with the current variable bindings and returns the
// recognised entries in service order. The call fails as a unit.
func (c *Client) Analyze(ctx context.Context, image string, vars map[string]string) ([]Entry, error) {
	if vars == nil {
		vars = map[string]string{}
	}
	body, err := json.Marshal(Request{Image: image, Vars: vars})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, c.newID())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analyze request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return DecodeResponse(data)
}

type wireResponse struct {
	Data *[]wireEntry `json:"data"`
}

type wireEntry struct {
	Expr   *string         `json:"expr"`
	Result json.RawMessage `json:"result"`
	Assign *bool           `json:"assign"`
}

// DecodeResponse validates and decodes a service reply.
func DecodeResponse(data []byte) ([]Entry, error) {
	var w wireResponse
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if w.Data == nil {
		return nil, fmt.Errorf("%w: missing data", ErrMalformedResponse)
	}
	out := make([]Entry, 0, len(*w.Data))
	for i, we := range *w.Data {
		if we.Expr == nil {
			return nil, fmt.Errorf("%w: entry %d missing expr", ErrMalformedResponse, i)
		}
		res, err := scalar(we.Result)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d result: %v", ErrMalformedResponse, i, err)
		}
		e := Entry{Expr: *we.Expr, Result: res}
		if we.Assign != nil {
			e.Assign = *we.Assign
		}
		out = append(out, e)
	}
	return out, nil
}

// scalar accepts a JSON string or number and returns its text.
func scalar(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", errors.New("missing")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return "", fmt.Errorf("want string or number, got %s", raw)
	}
	return n.String(), nil
}
