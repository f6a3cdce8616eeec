// Package httpclient is the HTTP+JSON outbound transport: it implements
// both ring.Transport and fileservice.Transport against a peer's
// internal/boundary/httpserver routes.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/chordfs/chordfs/internal/boundary/wire"
	"github.com/chordfs/chordfs/internal/fileservice"
	"github.com/chordfs/chordfs/internal/ring"
)

// Client is an HTTP-backed implementation of ring.Transport and
// fileservice.Transport. One Client can address any number of peers; it
// holds no per-peer state beyond the shared *http.Client.
type Client struct {
	http *http.Client
}

// New returns a Client whose requests use timeout as the HTTP client's own
// request timeout, as a backstop behind whatever deadline ctx carries.
func New(timeout time.Duration) *Client {
	return &Client{http: &http.Client{Timeout: timeout}}
}

func peerURL(target ring.Identity, path string) string {
	return fmt.Sprintf("http://%s%s", target.Address(), path)
}

func (c *Client) postJSON(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("httpclient: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("httpclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("httpclient: build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s %s: %w", req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fileservice.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp wire.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error != "" {
			return fmt.Errorf("httpclient: %s %s: status %d: %s", req.Method, req.URL, resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("httpclient: %s %s: status %d", req.Method, req.URL, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("httpclient: decode response from %s: %w", req.URL, err)
	}
	return nil
}

// --------- ring.Transport ---------

func (c *Client) Join(ctx context.Context, target, joining ring.Identity, hops int) (ring.Identity, error) {
	var resp wire.JoinResponse
	err := c.postJSON(ctx, peerURL(target, "/peer/join"), wire.JoinRequest{Joining: joining, Hops: hops}, &resp)
	return resp.Successor, err
}

func (c *Client) FindSuccessor(ctx context.Context, target ring.Identity, key uint64, requester ring.Identity, hops int) (ring.Identity, error) {
	var resp wire.FindSuccessorResponse
	err := c.postJSON(ctx, peerURL(target, "/peer/find-successor"),
		wire.FindSuccessorRequest{Key: key, Requester: requester, Hops: hops}, &resp)
	return resp.Successor, err
}

func (c *Client) Notify(ctx context.Context, target, candidate ring.Identity) error {
	return c.postJSON(ctx, peerURL(target, "/peer/notify"), wire.NotifyRequest{Candidate: candidate}, nil)
}

func (c *Client) GetPredecessor(ctx context.Context, target ring.Identity) (ring.Identity, bool, error) {
	var resp wire.GetPredecessorResponse
	if err := c.getJSON(ctx, peerURL(target, "/peer/predecessor"), &resp); err != nil {
		return ring.Identity{}, false, err
	}
	if resp.Predecessor == nil {
		return ring.Identity{}, false, nil
	}
	return *resp.Predecessor, true, nil
}

func (c *Client) Ping(ctx context.Context, target ring.Identity) (bool, error) {
	var resp wire.PingResponse
	if err := c.getJSON(ctx, peerURL(target, "/peer/ping"), &resp); err != nil {
		return false, err
	}
	return resp.Alive, nil
}

// --------- fileservice.Transport ---------

func (c *Client) ForwardFile(ctx context.Context, target ring.Identity, name string, contents []byte) error {
	return c.postJSON(ctx, peerURL(target, "/peer/forward-file"),
		wire.ForwardFileRequest{Name: name, Contents: contents}, nil)
}

func (c *Client) GetFile(ctx context.Context, target ring.Identity, name string) ([]byte, error) {
	var resp wire.GetFileResponse
	reqURL := peerURL(target, "/peer/file") + "?name=" + url.QueryEscape(name)
	if err := c.getJSON(ctx, reqURL, &resp); err != nil {
		return nil, err
	}
	return resp.Contents, nil
}

func (c *Client) DeleteFile(ctx context.Context, target ring.Identity, name string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, peerURL(target, "/peer/file")+"?name="+url.QueryEscape(name), nil)
	if err != nil {
		return false, fmt.Errorf("httpclient: build request: %w", err)
	}
	var resp wire.DeleteFileResponse
	if err := c.do(req, &resp); err != nil {
		return false, err
	}
	return resp.Deleted, nil
}
