// Package wire defines the JSON message shapes shared by the HTTP peer
// transport's server and client halves. Every message uses named fields —
// spec.md §9 calls out the source's positional tuple-shuffling
// (tuple(d.values())) as a bug class to avoid, so nothing here is
// deserialized by field order.
package wire

import "github.com/chordfs/chordfs/internal/ring"

// JoinRequest asks a peer to accept Joining as (potentially) its new
// successor. Hops bounds further forwarding, per ring.Transport's contract.
type JoinRequest struct {
	Joining ring.Identity `json:"joining"`
	Hops    int           `json:"hops"`
}

// JoinResponse carries back the identity Joining should treat as its
// successor.
type JoinResponse struct {
	Successor ring.Identity `json:"successor"`
}

// FindSuccessorRequest asks a peer to resolve Key on behalf of Requester.
type FindSuccessorRequest struct {
	Key       uint64        `json:"key"`
	Requester ring.Identity `json:"requester"`
	Hops      int           `json:"hops"`
}

// FindSuccessorResponse carries back the resolved owner.
type FindSuccessorResponse struct {
	Successor ring.Identity `json:"successor"`
}

// NotifyRequest informs a peer that Candidate may be its predecessor.
type NotifyRequest struct {
	Candidate ring.Identity `json:"candidate"`
}

// GetPredecessorResponse carries back a peer's current predecessor.
// Predecessor is nil when the peer has none set.
type GetPredecessorResponse struct {
	Predecessor *ring.Identity `json:"predecessor"`
}

// PingResponse reports a peer's liveness.
type PingResponse struct {
	Alive bool `json:"alive"`
}

// ForwardFileRequest carries a file's full contents to the node the ring
// resolves as owner. Not idempotent at the protocol level: each call
// unconditionally overwrites.
type ForwardFileRequest struct {
	Name     string `json:"name"`
	Contents []byte `json:"contents"` // base64-encoded by encoding/json
}

// GetFileResponse carries back a file's contents.
type GetFileResponse struct {
	Contents []byte `json:"contents"`
}

// DeleteFileResponse reports whether a file was present and removed.
type DeleteFileResponse struct {
	Deleted bool `json:"deleted"`
}

// ErrorResponse is the uniform JSON body for non-2xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// InfoResponse is the diagnostic snapshot served at the client surface's
// info endpoint.
type InfoResponse struct {
	Self        ring.Identity   `json:"self"`
	Successor   ring.Identity   `json:"successor"`
	Predecessor *ring.Identity  `json:"predecessor"`
	Fingers     []ring.Identity `json:"fingers"`
	MBits       uint            `json:"mBits"`
	UptimeSecs  float64         `json:"uptimeSeconds"`
	LocalFiles  int             `json:"localFiles"`
}
