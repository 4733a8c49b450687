// Package api is the gateway to the Pioneer REST backend. It issues the
// requests, attaches the bearer credential, decodes structured errors, and
// owns the cached copy of server resources plus their invalidation.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"pioneer-cli/internal/model"
	"pioneer-cli/internal/session"

	"github.com/charmbracelet/log"
)

const DefaultBaseURL = "https://api.pioneer-alpha.app"

// Config builds a Client. Session is explicit: the gateway never consults
// globals for the credential.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *log.Logger
	Session    *session.Session
}

type Client struct {
	baseURL string
	http    *http.Client
	log     *log.Logger
	sess    *session.Session

	inval invalidations

	mu         sync.Mutex
	todos      []model.Task
	todosValid bool
	profile    *model.UserProfile
	profileOK  bool
}

func NewClient(cfg Config) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Client{
		baseURL: base,
		http:    hc,
		log:     logger,
		sess:    cfg.Session,
	}
}

// SetSession swaps the credential the gateway attaches, e.g. right after
// login. The auth cache is dropped along with it.
func (c *Client) SetSession(sess *session.Session) {
	c.mu.Lock()
	c.sess = sess
	c.profile = nil
	c.profileOK = false
	c.mu.Unlock()
	c.Invalidate(TagAuth)
}

// Session returns the credential currently attached to requests.
func (c *Client) Session() *session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

// Invalidate drops the cache for a tag and notifies subscribers.
func (c *Client) Invalidate(tag Tag) {
	c.mu.Lock()
	switch tag {
	case TagTodo:
		c.todos = nil
		c.todosValid = false
	case TagAuth:
		c.profile = nil
		c.profileOK = false
	}
	c.mu.Unlock()
	c.inval.publish(tag)
}

// Invalidations returns a channel receiving a Tag whenever a cached resource
// family is invalidated (typically by a successful mutation).
func (c *Client) Invalidations() <-chan Tag {
	return c.inval.subscribe()
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// newRequest builds a request; authed attaches the bearer token and fails
// with session.ErrNoSession when none is stored.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, authed bool) (*http.Request, error) {
	u := c.endpoint(path)
	if _, err := url.Parse(u); err != nil {
		return nil, fmt.Errorf("bad endpoint %q: %w", u, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if authed {
		c.mu.Lock()
		sess := c.sess
		c.mu.Unlock()
		tok, err := sess.Token()
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

// doJSON runs a request with a JSON body (nil allowed) and decodes a JSON
// response into out (nil to discard). Non-2xx responses decode into *Error.
func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any, authed bool) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := c.newRequest(ctx, method, path, body, authed)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("request failed", "method", req.Method, "path", req.URL.Path, "err", err)
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("request", "method", req.Method, "path", req.URL.Path,
		"status", resp.StatusCode, "dur", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}
	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", req.URL.Path, err)
	}
	return nil
}
