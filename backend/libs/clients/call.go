package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// NoContent is the result of calls whose upstream answers without a body.
type NoContent struct{}

// Call is a prepared request. Nothing is sent until Do or Start is invoked, and each
// invocation sends a fresh request.
type Call[T any] struct {
	client  *BaseClient
	method  string
	path    string
	query   url.Values
	headers http.Header
	payload any
	hasBody bool
	decode  func(*Response) (T, error)
}

func newCall[T any](client *BaseClient, method, path string, decode func(*Response) (T, error)) *Call[T] {
	return &Call[T]{
		client:  client,
		method:  method,
		path:    path,
		headers: http.Header{},
		decode:  decode,
	}
}

func (c *Call[T]) withBody(payload any) *Call[T] {
	c.payload = payload
	c.hasBody = true
	return c
}

func (c *Call[T]) withQuery(key, value string) *Call[T] {
	if c.query == nil {
		c.query = url.Values{}
	}
	c.query.Set(key, value)
	return c
}

// Method returns the HTTP verb.
func (c *Call[T]) Method() string {
	return c.method
}

// URL returns the absolute target including the query string.
func (c *Call[T]) URL() string {
	return c.client.buildURL(c.path, c.query)
}

// Body returns the value that will be JSON encoded, or nil for bodiless calls.
func (c *Call[T]) Body() any {
	if !c.hasBody {
		return nil
	}
	return c.payload
}

// WithHeader returns a copy of the call carrying an additional header.
func (c *Call[T]) WithHeader(key, value string) *Call[T] {
	clone := *c
	clone.headers = c.headers.Clone()
	clone.headers.Add(key, value)
	return &clone
}

// Do sends the request and decodes the answer. Transport errors are returned as they
// come from the HTTPDoer; non-2xx answers become *StatusError.
func (c *Call[T]) Do(ctx context.Context) (T, error) {
	var zero T

	req := Request{
		Method:  c.method,
		Path:    c.path,
		Query:   c.query,
		Headers: c.headers,
	}
	if c.hasBody {
		data, err := json.Marshal(c.payload)
		if err != nil {
			return zero, fmt.Errorf("clients: encode request: %w", err)
		}
		req.Body = data
	}

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return zero, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return zero, &StatusError{
			Method:     c.method,
			URL:        c.URL(),
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       resp.Body,
		}
	}
	return c.decode(resp)
}

// Start runs the call on its own goroutine.
func (c *Call[T]) Start(ctx context.Context) *Pending[T] {
	ctx, cancel := context.WithCancel(ctx)
	p := &Pending[T]{
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go func() {
		defer close(p.done)
		defer cancel()
		p.value, p.err = c.Do(ctx)
	}()
	return p
}

// Pending is an in-flight call started with Start.
type Pending[T any] struct {
	done   chan struct{}
	cancel context.CancelFunc
	value  T
	err    error
}

// Done is closed once the call finished.
func (p *Pending[T]) Done() <-chan struct{} {
	return p.done
}

// Cancel aborts the in-flight request. Safe to call more than once.
func (p *Pending[T]) Cancel() {
	p.cancel()
}

// Wait blocks until the call finished.
func (p *Pending[T]) Wait() (T, error) {
	<-p.done
	return p.value, p.err
}

func decodeJSON[T any](resp *Response) (T, error) {
	var out T
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return out, fmt.Errorf("clients: decode response: %w", err)
	}
	return out, nil
}

func decodeNone(*Response) (NoContent, error) {
	return NoContent{}, nil
}

func decodeFull(resp *Response) (*Response, error) {
	return resp, nil
}
