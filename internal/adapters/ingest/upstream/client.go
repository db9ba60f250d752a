// Package upstream fetches listing search pages from the marketplace API
package upstream

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"time"

	perr "carcrawl/internal/platform/errors"
	"carcrawl/internal/platform/logger"

	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 30 * time.Second

// Options configures the Client
type Options struct {
	BaseURL string
	Timeout time.Duration

	// InsecureTLS disables certificate verification; the upstream chain has been unreliable
	InsecureTLS bool

	// Headers replaces DefaultHeaders when non-nil
	Headers map[string]string
}

// Page is one fetched response body, already normalized to UTF-8 and known to be valid JSON
type Page struct {
	URL     string
	Status  int
	Charset string
	Body    json.RawMessage
	Elapsed time.Duration
}

// Client performs single GETs without retries; callers decide what a failure means
type Client struct {
	http *resty.Client
	opts Options
	log  logger.Logger
}

// NewClient creates a Client with defaults applied
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.Headers == nil {
		o.Headers = DefaultHeaders()
	}

	log := *logger.Named("upstream")

	hc := resty.New()
	hc.SetLogger(restyLog{log: log})
	hc.SetTimeout(o.Timeout)
	hc.SetHeaders(o.Headers)
	hc.SetRetryCount(0)
	if o.InsecureTLS {
		hc.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}) //nolint:gosec // operator is warned below
		log.Warn().Str("base_url", o.BaseURL).Msg("TLS certificate verification is disabled for upstream requests")
	}

	return &Client{http: hc, opts: o, log: log}
}

// BaseURL returns the configured endpoint
func (c *Client) BaseURL() string { return c.opts.BaseURL }

// Fetch GETs one page. Errors are Transport (network, timeout), Status (non-2xx),
// Malformed (body is not JSON) or Canceled
func (c *Client) Fetch(ctx context.Context, q Query) (Page, error) {
	url := q.URL(c.opts.BaseURL)
	log := logger.C(ctx)
	log.Debug().Str("url", url).Msg("upstream fetch")

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(q.Values()).
		Get(c.opts.BaseURL)
	if err != nil {
		if ctx.Err() != nil {
			return Page{URL: url}, perr.FromContext(ctx.Err())
		}
		return Page{URL: url}, perr.WithOp(perr.Transportf(err, "GET page %d", q.Page), "upstream.fetch")
	}

	p := Page{URL: url, Status: resp.StatusCode(), Elapsed: resp.Time()}
	if !resp.IsSuccess() {
		return p, perr.WithOp(perr.Statusf("GET page %d: http %d", q.Page, resp.StatusCode()), "upstream.fetch")
	}

	body, cs := toUTF8(resp.Header().Get("Content-Type"), resp.Body())
	p.Charset = cs

	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		log.Debug().Int("bytes", len(body)).Str("preview", preview(body)).Msg("upstream body is not json")
		return p, perr.WithOp(perr.Malformedf(err, "GET page %d: invalid json", q.Page), "upstream.fetch")
	}
	p.Body = raw

	log.Debug().
		Int("status", p.Status).
		Str("charset", cs).
		Int("bytes", len(body)).
		Dur("latency", p.Elapsed).
		Msg("upstream response")
	return p, nil
}

func preview(b []byte) string {
	const n = 500
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
