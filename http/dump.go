package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// DumpClient downloads XML dumps from a wiki.
type DumpClient struct {
	client *http.Client
}

// NewDumpClient creates a new DumpClient with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewDumpClient(client *http.Client) *DumpClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &DumpClient{client: client}
}

// OpenDump fetches the dump at dumpURL and returns its body.
// The caller must close the returned reader.
func (c *DumpClient) OpenDump(ctx context.Context, dumpURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dumpURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, dumpURL)
	}

	return resp.Body, nil
}
