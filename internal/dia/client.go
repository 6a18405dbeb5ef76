package dia

import (
	"net/http"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=dia_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

const (
	defaultBaseURL = "https://api.diadata.org"
	// GraphQL endpoint serving the AMPE special case.
	defaultGraphURL = "https://squid.subsquid.io/amplitude-squid/graphql"
)

// Client is a client for the DIA data API.
type Client struct {
	// baseURL is the base URL for the REST endpoints.
	baseURL string
	// graphURL is the GraphQL endpoint used for graph-routed assets.
	graphURL string
	// httpClient performs the requests.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
}

// ClientOption is a configuration option for the DIA API client.
type ClientOption func(*Client)

// WithBaseURL sets the base URL for the REST endpoints.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithGraphURL sets the GraphQL endpoint for graph-routed assets.
func WithGraphURL(graphURL string) ClientOption {
	return func(c *Client) {
		c.graphURL = graphURL
	}
}

// WithHTTPClient sets the HTTP client used for all requests.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) ClientOption {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// NewClient creates a new DIA API client.
func NewClient(options ...ClientOption) (*Client, error) {
	var client = &Client{
		baseURL:    defaultBaseURL,
		graphURL:   defaultGraphURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
	}
	for _, option := range options {
		option(client)
	}
	return client, nil
}
