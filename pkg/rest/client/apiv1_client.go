// Package client provides a basic REST client for the mimetpl server
package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Client accesses the mimetpl REST API v1
type Client struct {
	restClient
}

// InterpretOptions overrides the server side interpreter configuration for one request. Zero
// values keep the server configuration. Headers is "all", "none" or a comma separated list of
// header names; Filter is "all", "only:<type>", "include:<types>" or "exclude:<types>".
type InterpretOptions struct {
	Headers        string
	Filter         string
	Multiparts     *bool
	StripSignature *bool
}

func (o *InterpretOptions) query() url.Values {
	q := url.Values{}
	if o == nil {
		return q
	}
	if o.Headers != "" {
		q.Set("headers", o.Headers)
	}
	if o.Filter != "" {
		q.Set("filter", o.Filter)
	}
	if o.Multiparts != nil {
		q.Set("multiparts", strconv.FormatBool(*o.Multiparts))
	}
	if o.StripSignature != nil {
		q.Set("stripsignature", strconv.FormatBool(*o.StripSignature))
	}
	return q
}

// New creates a new v1 REST API client given the base URL of a mimetpl server, ex:
// "http://localhost:9025"
func New(baseURL string, opts ...func(*ClientOptions)) (*Client, error) {
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	options := getDefaultClientOptions()
	for _, opt := range opts {
		opt(options)
	}
	c := &Client{
		restClient{
			client: &http.Client{
				Transport: options.transport,
				Timeout:   options.timeout,
			},
			baseURL: parsedURL,
		},
	}
	return c, nil
}

// Interpret sends the raw message to the server and returns the rendered template.
func (c *Client) Interpret(ctx context.Context, raw []byte, opts *InterpretOptions) (string, error) {
	return c.doText(ctx, "POST", "/api/v1/interpret", opts.query(), raw)
}
