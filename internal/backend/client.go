package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"

	"github.com/hubwatch/panelhost/internal/infrastructure/logging"
)

// Client proxies backend-bound view methods to the monitored backend
// over HTTP. Payloads pass through uninterpreted in both directions.
// Retries, if any, are the backend's own concern, not this layer's.
type Client struct {
	resty *resty.Client
	log   *logging.Logger
}

// New creates a backend client against baseURL.
func New(baseURL string, timeout time.Duration, log *logging.Logger) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &Client{resty: rc, log: log}
}

// Call forwards one method. A 404 means the backend does not recognize
// the method (handled=false); any 2xx body is decoded and returned as
// the opaque reply.
func (c *Client) Call(ctx context.Context, method string, params map[string]interface{}) (interface{}, bool, error) {
	if params == nil {
		params = map[string]interface{}{}
	}

	resp, err := c.resty.R().
		SetContext(ctx).
		SetBody(params).
		Post("/rpc/" + method)
	if err != nil {
		return nil, false, fmt.Errorf("backend call %s: %w", method, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, false, nil
	case resp.IsError():
		return nil, false, fmt.Errorf("backend call %s: %s", method, resp.Status())
	}

	body := resp.Body()
	if len(body) == 0 || resp.StatusCode() == http.StatusNoContent {
		return nil, true, nil
	}

	var reply interface{}
	if err := sonic.Unmarshal(body, &reply); err != nil {
		return nil, false, fmt.Errorf("backend reply %s: %w", method, err)
	}
	return reply, true, nil
}
