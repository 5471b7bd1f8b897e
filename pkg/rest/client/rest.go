package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// httpClient allows http.Client to be mocked for tests
type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Generic REST restClient
type restClient struct {
	client  httpClient
	baseURL *url.URL
}

// StatusError reports a response other than 200 OK.
type StatusError struct {
	Method  string
	URI     string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s for %q, unexpected %v: %s", e.Method, e.URI, e.Code, e.Message)
}

// do performs an HTTP request with this client and returns the response.
func (c *restClient) do(
	ctx context.Context, method, uri string, query url.Values, body []byte,
) (*http.Response, error) {
	url := c.baseURL.JoinPath(uri)
	url.RawQuery = query.Encode()
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url.String(), r)
	if err != nil {
		return nil, fmt.Errorf("%s for %q: %v", method, url, err)
	}

	return c.client.Do(req)
}

// doText performs an HTTP request with this client and returns the response body as text.
func (c *restClient) doText(
	ctx context.Context, method, uri string, query url.Values, body []byte,
) (string, error) {
	resp, err := c.do(ctx, method, uri, query, body)
	if err != nil {
		return "", err
	}

	defer func() {
		_ = resp.Body.Close()
	}()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%s for %q: read response: %v", method, uri, err)
	}
	if resp.StatusCode == http.StatusOK {
		return string(b), nil
	}

	return "", &StatusError{
		Method:  method,
		URI:     uri,
		Code:    resp.StatusCode,
		Message: strings.TrimSpace(string(b)),
	}
}
