// Package http provides the HTTP transport of the exporter: a client for
// the wiki's parse API, a dump downloader and the streaming export handler.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/semjson"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"
)

// DefaultTimeout is the default timeout for HTTP requests.
const DefaultTimeout = 10 * time.Second

// Ensure Renderer implements semjson.Renderer at compile time.
var _ semjson.Renderer = (*Renderer)(nil)

// Renderer renders wiki markup to HTML through the MediaWiki parse API
// (api.php?action=parse).
type Renderer struct {
	apiURL  string
	client  *http.Client
	timeout time.Duration
	limiter *rate.Limiter
	retries []time.Duration
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(r *Renderer) {
		r.timeout = d
	}
}

// WithRateLimit limits requests to rps per second, without bursting.
func WithRateLimit(rps float64) Option {
	return func(r *Renderer) {
		if rps > 0 {
			r.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithRetryDelays retries failed requests once per delay, waiting the
// delay before each attempt. Only transport errors, HTTP 429 and 5xx
// responses are retried.
func WithRetryDelays(delays ...time.Duration) Option {
	return func(r *Renderer) {
		r.retries = delays
	}
}

// NewRenderer creates a Renderer calling the API at apiURL.
func NewRenderer(apiURL string, opts ...Option) *Renderer {
	r := &Renderer{
		apiURL:  apiURL,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.client = &http.Client{
		Timeout: r.timeout,
	}

	return r
}

type parseResponse struct {
	Parse *struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	} `json:"parse"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// Render parses text in the context of the page named title.
func (r *Renderer) Render(ctx context.Context, text, title string) (string, error) {
	return withRetry(ctx, r.retries, func() (string, error) {
		return r.render(ctx, text, title)
	})
}

func (r *Renderer) render(ctx context.Context, text, title string) (string, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	form := url.Values{
		"action":             {"parse"},
		"format":             {"json"},
		"formatversion":      {"2"},
		"contentmodel":       {"wikitext"},
		"prop":               {"text"},
		"disablelimitreport": {"1"},
		"disableeditsection": {"1"},
		"text":               {text},
	}
	if title != "" {
		form.Set("title", title)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", &transientError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("HTTP %d for %s", resp.StatusCode, r.apiURL)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", &transientError{err: err}
		}
		return "", err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed parseResponse
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decoding parse response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("parse API error %s: %s", parsed.Error.Code, parsed.Error.Info)
	}
	if parsed.Parse == nil {
		return "", fmt.Errorf("parse API returned no text")
	}
	return parsed.Parse.Text, nil
}
