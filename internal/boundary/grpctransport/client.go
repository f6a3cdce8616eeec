package grpctransport

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/chordfs/chordfs/internal/fileservice"
	"github.com/chordfs/chordfs/internal/ring"
)

// Client is a gRPC-backed implementation of ring.Transport and
// fileservice.Transport. It pools one *grpc.ClientConn per peer address,
// mirroring armon-go-chord's GRPCTransport connection cache, but leans on
// grpc-go's own built-in connection management (HTTP/2 multiplexing,
// automatic reconnect) rather than armon's manual idle-reaper, which exists
// to work around the older grpc package's lack of that.
type Client struct {
	mu    sync.Mutex
	conns map[string]*grpc.ClientConn
}

// New returns a Client with no open connections; conns are dialed lazily per
// target and kept for reuse.
func New() *Client {
	return &Client{conns: map[string]*grpc.ClientConn{}}
}

// Close tears down every pooled connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for addr, conn := range c.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("grpctransport: close %s: %w", addr, err)
		}
	}
	c.conns = map[string]*grpc.ClientConn{}
	return firstErr
}

func (c *Client) conn(target ring.Identity) (*grpc.ClientConn, error) {
	addr := target.Address()
	c.mu.Lock()
	defer c.mu.Unlock()
	if conn, ok := c.conns[addr]; ok {
		return conn, nil
	}
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpctransport: dial %s: %w", addr, err)
	}
	c.conns[addr] = conn
	return conn, nil
}

func (c *Client) invoke(ctx context.Context, target ring.Identity, method string, req, resp any) error {
	conn, err := c.conn(target)
	if err != nil {
		return err
	}
	fullMethod := fmt.Sprintf("/%s/%s", serviceName, method)
	if err := conn.Invoke(ctx, fullMethod, req, resp, grpc.CallContentSubtype(codecName)); err != nil {
		if status.Code(err) == codes.NotFound {
			return fileservice.ErrNotFound
		}
		return fmt.Errorf("grpctransport: %s to %s: %w", method, target.Address(), err)
	}
	return nil
}

// --------- ring.Transport ---------

func (c *Client) Join(ctx context.Context, target, joining ring.Identity, hops int) (ring.Identity, error) {
	var resp joinResponse
	err := c.invoke(ctx, target, "Join", &joinRequest{Joining: joining, Hops: hops}, &resp)
	return resp.Successor, err
}

func (c *Client) FindSuccessor(ctx context.Context, target ring.Identity, key uint64, requester ring.Identity, hops int) (ring.Identity, error) {
	var resp findSuccessorResponse
	err := c.invoke(ctx, target, "FindSuccessor", &findSuccessorRequest{Key: key, Requester: requester, Hops: hops}, &resp)
	return resp.Successor, err
}

func (c *Client) Notify(ctx context.Context, target, candidate ring.Identity) error {
	var resp empty
	return c.invoke(ctx, target, "Notify", &notifyRequest{Candidate: candidate}, &resp)
}

func (c *Client) GetPredecessor(ctx context.Context, target ring.Identity) (ring.Identity, bool, error) {
	var resp getPredecessorResp
	if err := c.invoke(ctx, target, "GetPredecessor", &empty{}, &resp); err != nil {
		return ring.Identity{}, false, err
	}
	if resp.Predecessor == nil {
		return ring.Identity{}, false, nil
	}
	return *resp.Predecessor, true, nil
}

func (c *Client) Ping(ctx context.Context, target ring.Identity) (bool, error) {
	var resp pingResponse
	if err := c.invoke(ctx, target, "Ping", &empty{}, &resp); err != nil {
		return false, err
	}
	return resp.Alive, nil
}

// --------- fileservice.Transport ---------

func (c *Client) ForwardFile(ctx context.Context, target ring.Identity, name string, contents []byte) error {
	var resp empty
	return c.invoke(ctx, target, "ForwardFile", &forwardFileRequest{Name: name, Contents: contents}, &resp)
}

func (c *Client) GetFile(ctx context.Context, target ring.Identity, name string) ([]byte, error) {
	var resp getFileResponse
	if err := c.invoke(ctx, target, "GetFile", &fileNameRequest{Name: name}, &resp); err != nil {
		return nil, err
	}
	return resp.Contents, nil
}

func (c *Client) DeleteFile(ctx context.Context, target ring.Identity, name string) (bool, error) {
	var resp deleteFileResponse
	if err := c.invoke(ctx, target, "DeleteFile", &fileNameRequest{Name: name}, &resp); err != nil {
		return false, err
	}
	return resp.Deleted, nil
}
