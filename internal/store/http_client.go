package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"resdb-tools/internal/record"
)

// Client is a Backend that talks to a remote `resdb serve` instance.
type Client struct {
	baseURL    string
	user       string
	httpClient *http.Client
	retry      RetryConfig
}

type ClientConfig struct {
	BaseURL string
	// User is sent as X-Resdb-User and must own any record the client writes.
	User    string
	Timeout time.Duration
	Retry   RetryConfig
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = DefaultRetryConfig()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		user:    cfg.User,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        16,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		retry: cfg.Retry,
	}
}

func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func recordPath(id record.Identity) string {
	return "/v1/records/" + url.PathEscape(id.OwnerID) + "/" + url.PathEscape(id.RecordID)
}

func (c *Client) Fetch(ctx context.Context, id record.Identity) (record.Record, error) {
	var rec record.Record
	err := c.do(ctx, http.MethodGet, recordPath(id), nil, &rec)
	return rec, err
}

func (c *Client) Persist(ctx context.Context, rec record.Record) error {
	return c.do(ctx, http.MethodPut, recordPath(rec.Identity()), rec, nil)
}

func (c *Client) Create(ctx context.Context, rec record.Record) (record.Record, error) {
	var out record.Record
	err := c.do(ctx, http.MethodPost, "/v1/records", rec, &out)
	return out, err
}

func (c *Client) Delete(ctx context.Context, id record.Identity) error {
	return c.do(ctx, http.MethodDelete, recordPath(id), nil, nil)
}

func (c *Client) List(ctx context.Context, ownerID, path string) ([]record.Record, error) {
	var out []record.Record
	p := "/v1/records/" + url.PathEscape(ownerID) + "?path=" + url.QueryEscape(path)
	if err := c.do(ctx, http.MethodGet, p, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = b
	}
	return withRetry(ctx, c.retry, func() error {
		var rd io.Reader
		if payload != nil {
			rd = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.user != "" {
			req.Header.Set(UserHeader, c.user)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return retryable(&FailureInfo{Code: CodeUnavailable, Message: "Record server unreachable", Err: err})
		}
		defer resp.Body.Close()
		return decodeResponse(resp, out)
	})
}

func decodeResponse(resp *http.Response, out any) error {
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxRecordBody)).Decode(&env); err != nil && err != io.EOF {
		err = &FailureInfo{Code: CodeUnavailable, Message: fmt.Sprintf("Bad response (%d)", resp.StatusCode), Err: err}
		if resp.StatusCode >= 500 {
			return retryable(err)
		}
		return err
	}

	if resp.StatusCode >= 400 {
		f := &FailureInfo{Code: statusCode(resp.StatusCode), Message: http.StatusText(resp.StatusCode)}
		if env.Error != nil {
			if env.Error.Code != "" {
				f.Code = env.Error.Code
			}
			if env.Error.Message != "" {
				f.Message = env.Error.Message
			}
		}
		if resp.StatusCode >= 500 {
			return retryable(f)
		}
		return f
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func statusCode(status int) FailureCode {
	switch status {
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return CodeUnauthorized
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return CodeInvalid
	case http.StatusConflict:
		return CodeConflict
	default:
		return CodeUnavailable
	}
}
