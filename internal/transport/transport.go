// Package transport executes signed HTTP requests against an S3-compatible
// endpoint. It is a single-attempt primitive: any network-level failure is
// mapped to a retryable NETWORK_ERROR and surfaced to the caller, which
// owns retry policy.
package transport

import (
	"io"
	"net/http"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
)

// Doer abstracts the HTTP client so tests can substitute fakes without
// performing real network work.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Response is the fully buffered outcome of one HTTP exchange.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// OK reports whether the response carries a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client issues single HTTP requests through an injected Doer.
type Client struct {
	doer Doer
}

// New creates a transport Client. When doer is nil a net/http client with
// the given timeout is used. Transparent gzip decompression is disabled on
// that default so response bodies and Content-Encoding arrive exactly as
// the provider stored them.
func New(doer Doer, timeout time.Duration) *Client {
	if doer == nil {
		doer = &http.Client{
			Timeout:   timeout,
			Transport: defaultTransport(),
		}
	}
	return &Client{doer: doer}
}

func defaultTransport() *http.Transport {
	t, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return &http.Transport{DisableCompression: true}
	}
	t = t.Clone()
	t.DisableCompression = true
	return t
}

// Do executes req once and buffers the response body. Connection, DNS, and
// timeout failures come back as NETWORK_ERROR with Retryable set; status
// interpretation is left entirely to the caller.
func (c *Client) Do(req *http.Request) (*Response, error) {
	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, errors.New(errors.CodeNetwork, "transport").
			WithMessage("request failed").
			WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New(errors.CodeNetwork, "transport").
			WithMessage("reading response body failed").
			WithCause(err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
