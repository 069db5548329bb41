// Package fileio loads tool inputs and writes result artifacts for the MCP
// server.
package fileio

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ResolveInput loads binary input from exactly one of a filesystem path, a
// base64 string, or a URL. label names the tool's argument family in
// errors, for example "image" or "audio".
func ResolveInput(ctx context.Context, client *http.Client, label, path, base64Data, rawURL string) ([]byte, error) {
	n := 0
	for _, v := range []string{path, base64Data, rawURL} {
		if v != "" {
			n++
		}
	}
	if n != 1 {
		return nil, fmt.Errorf("provide exactly one of %[1]s_path, %[1]s_base64, or %[1]s_url", label)
	}
	switch {
	case path != "":
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return b, nil
	case base64Data != "":
		b, err := base64.StdEncoding.DecodeString(base64Data)
		if err != nil {
			return nil, fmt.Errorf("%s_base64 decode: %w", label, err)
		}
		return b, nil
	default:
		return fetchURL(ctx, client, label, rawURL)
	}
}

func fetchURL(ctx context.Context, client *http.Client, label, rawURL string) ([]byte, error) {
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	resp, err := client.Do(r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s_url http status %d", label, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
