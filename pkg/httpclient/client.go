package httpclient

import (
	"net/http"
	"time"
)

// Client is the subset of http.Client the survey backend client needs
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}

// StandardHTTPClient wraps http.Client and stamps every request with the client's User-Agent
type StandardHTTPClient struct {
	client    *http.Client
	userAgent string
}

var _ Client = (*StandardHTTPClient)(nil)

// NewStandardClient creates a new HTTP client. A zero timeout leaves requests unbounded.
func NewStandardClient(timeout time.Duration, userAgent string) *StandardHTTPClient {
	return &StandardHTTPClient{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// UserAgent builds the User-Agent value sent to the survey backend
func UserAgent(service, version string) string {
	if version == "" {
		return service
	}
	return service + "/" + version
}

// Do executes an HTTP request. A User-Agent already set on req wins.
func (c *StandardHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", c.userAgent)
	}
	return c.client.Do(req)
}
