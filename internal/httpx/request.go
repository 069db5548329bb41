// Package httpx issues single-shot HTTP requests with buffered bodies.
// Attempt scheduling belongs to the caller so each attempt times its own
// network window.
package httpx

import (
	"bytes"
	"context"
	"net/http"
)

// Do sends one request. Callers must close the returned response body.
func Do(ctx context.Context, client *http.Client, method, url string, body []byte, headers http.Header) (*http.Response, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if headers != nil {
		req.Header = headers.Clone()
	}
	return client.Do(req)
}
