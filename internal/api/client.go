package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/net/publicsuffix"
)

// InvalidationHandler is called when the server rejects the session.
type InvalidationHandler func(ctx context.Context) error

// NewJar returns the cookie jar shared by the job and session clients, so the
// token set by POST /jwt rides along on job calls.
func NewJar() (http.CookieJar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}

// Client makes REST calls to the job API.
type Client struct {
	baseURL string
	client  *http.Client

	mu         sync.Mutex
	onInvalid  InvalidationHandler
	registered bool
}

// NewClient creates a client targeting baseURL (e.g. "http://127.0.0.1:5000").
// There is no request timeout; callers bound calls with their context.
func NewClient(baseURL string, jar http.CookieJar) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Jar: jar},
	}
}

// OnSessionInvalidated installs the handler for 401/403 responses. Only the
// first registration takes effect; later calls return false.
func (c *Client) OnSessionInvalidated(h InvalidationHandler) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.registered || h == nil {
		return false
	}
	c.onInvalid = h
	c.registered = true
	return true
}

// ListJobs fetches GET /jobs, optionally sorted by the server.
func (c *Client) ListJobs(ctx context.Context, sort SortOrder) ([]Job, error) {
	path := "/jobs"
	if sort != SortDefault {
		path += "?sort=" + url.QueryEscape(string(sort))
	}
	var out []Job
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetJob fetches GET /job/{id}.
func (c *Client) GetJob(ctx context.Context, id string) (*Job, error) {
	var out Job
	if err := c.do(ctx, http.MethodGet, "/job/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateJob sends POST /jobs.
func (c *Client) CreateJob(ctx context.Context, job Job) (*InsertResult, error) {
	job.ID = ""
	var out InsertResult
	if err := c.do(ctx, http.MethodPost, "/jobs", job, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateJob sends PUT /job/{id}.
func (c *Client) UpdateJob(ctx context.Context, id string, job Job) (*UpdateResult, error) {
	job.ID = ""
	var out UpdateResult
	if err := c.do(ctx, http.MethodPut, "/job/"+url.PathEscape(id), job, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteJob sends DELETE /job/{id}.
func (c *Client) DeleteJob(ctx context.Context, id string) (*DeleteResult, error) {
	var out DeleteResult
	if err := c.do(ctx, http.MethodDelete, "/job/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// JobsByEmployer fetches GET /jobs/employer/{email}.
func (c *Client) JobsByEmployer(ctx context.Context, email string) ([]Job, error) {
	var out []Job
	if err := c.do(ctx, http.MethodGet, "/jobs/employer/"+url.PathEscape(email), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AcceptTask sends POST /accepted-tasks.
func (c *Client) AcceptTask(ctx context.Context, task AcceptedTask) (*InsertResult, error) {
	task.ID = ""
	var out InsertResult
	if err := c.do(ctx, http.MethodPost, "/accepted-tasks", task, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AcceptedTasksByTaker fetches GET /accepted-tasks/taker/{email}.
func (c *Client) AcceptedTasksByTaker(ctx context.Context, email string) ([]AcceptedTask, error) {
	var out []AcceptedTask
	if err := c.do(ctx, http.MethodGet, "/accepted-tasks/taker/"+url.PathEscape(email), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteAcceptedTask sends DELETE /accepted-tasks/{id}.
func (c *Client) DeleteAcceptedTask(ctx context.Context, id string) (*DeleteResult, error) {
	var out DeleteResult
	if err := c.do(ctx, http.MethodDelete, "/accepted-tasks/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	err := send(ctx, c.client, c.baseURL, method, path, body, out)
	if se, ok := err.(*StatusError); ok && isSessionRejection(se.Code) {
		c.invalidate(ctx)
	}
	return err
}

// invalidate runs the handler once for the current failed response. The
// handler outlives the request's cancellation.
func (c *Client) invalidate(ctx context.Context) {
	c.mu.Lock()
	h := c.onInvalid
	c.mu.Unlock()
	if h == nil {
		return
	}
	if err := h(context.WithoutCancel(ctx)); err != nil {
		log.Printf("api: session invalidation handler: %v", err)
	}
}

// send performs one JSON request. Non-2xx responses become *StatusError.
func send(ctx context.Context, hc *http.Client, baseURL, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s %s: decode: %w", method, path, err)
		}
	}
	return nil
}
