// HTTP Fetch Tool.
//
// Information Hiding:
// - HTTP client implementation details hidden
// - Allowlist enforcement before any network contact
// - Response decoding to text

package tools

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
)

const (
	// maxResponseBytes caps the body text returned to the model. Longer
	// bodies are truncated.
	maxResponseBytes = 1 << 20 // 1 MiB
	maxRedirects     = 10
)

// HTTPFetchTool makes allowlisted HTTP requests.
type HTTPFetchTool struct {
	client      *http.Client
	timeoutSecs uint32
}

// NewHTTPFetchTool creates a new fetch tool with the given timeout.
func NewHTTPFetchTool(timeoutSecs uint32) *HTTPFetchTool {
	return &HTTPFetchTool{
		client: &http.Client{
			Timeout: time.Duration(timeoutSecs) * time.Second,
		},
		timeoutSecs: timeoutSecs,
	}
}

// Metadata returns the tool metadata.
func (t *HTTPFetchTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "http_fetch",
		Description: "Fetch a URL with GET or POST. Only hosts on the allowlist can be fetched.",
		Parameters: []ToolParameter{
			{Name: "url", ParamType: "string", Description: "The URL to request", Required: true},
			{Name: "method", ParamType: "string", Description: "HTTP method (GET or POST), defaults to GET", Enum: []string{"GET", "POST"}},
			{Name: "headers", ParamType: "object", Description: "Request headers"},
			{Name: "body", ParamType: "string", Description: "Request body for POST requests"},
		},
	}
}

type httpArgs struct {
	URL     string            `json:"url" validate:"required,url"`
	Method  string            `json:"method" validate:"omitempty,oneof=GET POST"`
	Headers map[string]string `json:"headers"`
	Body    *string           `json:"body"`
}

// HTTPFetchOutput is the upstream status, content type and body text.
type HTTPFetchOutput struct {
	Status      int     `json:"status" validate:"gte=100,lte=599"`
	ContentType *string `json:"contentType"`
	Text        string  `json:"text"`
}

// Validate validates the arguments.
func (t *HTTPFetchTool) Validate(args json.RawMessage) error {
	_, err := decodeArgs[httpArgs](args)
	return err
}

// Execute checks the allowlist and makes the HTTP request.
// Non-2xx statuses are returned as results.
func (t *HTTPFetchTool) Execute(ctx context.Context, args json.RawMessage, policy Policy) (any, error) {
	a, err := decodeArgs[httpArgs](args)
	if err != nil {
		return nil, err
	}

	if !policy.Allowlist.Allows(a.URL) {
		return nil, fmt.Errorf("%w: %s", ErrURLNotAllowed, hostOf(a.URL))
	}

	method := a.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if method == http.MethodPost && a.Body != nil {
		body = strings.NewReader(*a.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range a.Headers {
		req.Header.Set(k, v)
	}

	resp, err := t.clientFor(policy).Do(req)
	if err != nil {
		if errors.Is(err, ErrURLNotAllowed) {
			return nil, unwrapURLError(err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("request timed out after %d seconds", t.timeoutSecs)
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var contentType *string
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		contentType = &ct
	}

	return HTTPFetchOutput{
		Status:      resp.StatusCode,
		ContentType: contentType,
		Text:        string(text),
	}, nil
}

// clientFor returns a client that checks every redirect hop against the
// run's allowlist before following it.
func (t *HTTPFetchTool) clientFor(policy Policy) *http.Client {
	client := *t.client
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		if !policy.Allowlist.Allows(req.URL.String()) {
			return fmt.Errorf("%w: redirect to %s", ErrURLNotAllowed, req.URL.Hostname())
		}
		return nil
	}
	return &client
}

// unwrapURLError drops the *url.Error wrapper added by the client so the
// message names the refused host only.
func unwrapURLError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}

func hostOf(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	return rawURL
}
