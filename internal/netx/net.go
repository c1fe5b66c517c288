// Package netx holds small HTTP helpers shared by outbound JSON clients.
package netx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MaxBodySize caps how much of a response body DoJSON keeps.
const MaxBodySize = 1 << 20

// Response is a buffered HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
}

// Decode unmarshals the buffered body into v.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return io.EOF
	}
	return json.Unmarshal(r.Body, v)
}

// Snippet returns the first n bytes of the body as trimmed text, for error messages.
func (r *Response) Snippet(n int) string {
	b := r.Body
	if len(b) > n {
		b = b[:n]
	}
	return strings.TrimSpace(string(b))
}

// DoJSON sends in (when non-nil) as a JSON body and buffers the response.
// Non-2xx statuses are not errors; callers inspect StatusCode.
func DoJSON(ctx context.Context, hc *http.Client, method, url string, header http.Header, in any) (*Response, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: b}, nil
}
