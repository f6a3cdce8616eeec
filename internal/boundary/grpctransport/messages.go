package grpctransport

import "github.com/chordfs/chordfs/internal/boundary/wire"

// Request/response shapes reuse internal/boundary/wire where the HTTP
// transport already defines the right one; gob only needs exported
// fields, so the json struct tags there are simply unused here. A target
// identity never appears in any of these messages — unlike HTTP+JSON,
// where the target is part of the URL, here it selects which
// grpc.ClientConn to dial, so it never needs to travel as payload.

type (
	joinRequest           = wire.JoinRequest
	joinResponse          = wire.JoinResponse
	findSuccessorRequest  = wire.FindSuccessorRequest
	findSuccessorResponse = wire.FindSuccessorResponse
	notifyRequest         = wire.NotifyRequest
	getPredecessorResp    = wire.GetPredecessorResponse
	pingResponse          = wire.PingResponse
	forwardFileRequest    = wire.ForwardFileRequest
	getFileResponse       = wire.GetFileResponse
	deleteFileResponse    = wire.DeleteFileResponse
)

// empty is the payload for RPCs that carry no request fields (GetPredecessor,
// Ping) — gob needs a concrete type to decode into, so this stands in for
// what would otherwise be google.protobuf.Empty.
type empty struct{}

// fileNameRequest names the blob a GetFile/DeleteFile call addresses.
type fileNameRequest struct {
	Name string
}
