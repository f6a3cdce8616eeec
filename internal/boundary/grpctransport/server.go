package grpctransport

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/chordfs/chordfs/internal/fileservice"
	"github.com/chordfs/chordfs/internal/logger"
	"github.com/chordfs/chordfs/internal/ring"
)

// RingService is the subset of *ring.Service the peer RPCs call into —
// the same shape httpserver.RingService depends on, kept as its own
// declaration here so the two transports have no compile-time dependency
// on each other.
type RingService interface {
	Join(ctx context.Context, joining ring.Identity, hops int) (ring.Identity, error)
	FindSuccessor(ctx context.Context, key uint64, requester ring.Identity, hops int) (ring.Identity, error)
	Notify(candidate ring.Identity)
	GetPredecessor() (ring.Identity, bool)
	Ping() bool
}

// FileService is the subset of *fileservice.Service the forward-file and
// peer-file RPCs call into.
type FileService interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) (bool, error)
	StoreLocal(ctx context.Context, name string, contents []byte) error
}

// peerServer is the HandlerType the hand-rolled ServiceDesc below dispatches
// against — the gRPC analogue of httpserver's route table.
type peerServer struct {
	ring  RingService
	files FileService
	log   logger.Logger
}

// Server hosts the gRPC peer surface on one listener.
type Server struct {
	addr   string
	server *grpc.Server
	peer   *peerServer
}

// New builds a Server bound to addr, not yet listening. Call Start to begin
// serving.
func New(addr string, ringSvc RingService, fileSvc FileService, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop{}
	}
	gs := grpc.NewServer()
	p := &peerServer{ring: ringSvc, files: fileSvc, log: log.Named("grpctransport")}
	gs.RegisterService(&serviceDesc, p)
	return &Server{addr: addr, server: gs, peer: p}
}

// Start opens addr and serves until Shutdown (or GracefulStop) is called. It
// blocks; run it in a goroutine.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("grpctransport: listen on %s: %w", s.addr, err)
	}
	return s.Serve(lis)
}

// Serve runs the gRPC server against an already-open listener until
// Shutdown (or GracefulStop) is called. It blocks; run it in a goroutine.
// Exposed separately from Start so tests can pass a listener of their own;
// this package's tests use a loopback listener on an ephemeral port.
func (s *Server) Serve(lis net.Listener) error {
	if err := s.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("grpctransport: serve: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully, letting in-flight RPCs finish.
func (s *Server) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.server.Stop()
		return ctx.Err()
	}
}

func (p *peerServer) handleJoin(ctx context.Context, req *joinRequest) (*joinResponse, error) {
	successor, err := p.ring.Join(ctx, req.Joining, req.Hops)
	if err != nil {
		return nil, err
	}
	return &joinResponse{Successor: successor}, nil
}

func (p *peerServer) handleFindSuccessor(ctx context.Context, req *findSuccessorRequest) (*findSuccessorResponse, error) {
	successor, err := p.ring.FindSuccessor(ctx, req.Key, req.Requester, req.Hops)
	if err != nil {
		return nil, err
	}
	return &findSuccessorResponse{Successor: successor}, nil
}

func (p *peerServer) handleNotify(ctx context.Context, req *notifyRequest) (*empty, error) {
	p.ring.Notify(req.Candidate)
	return &empty{}, nil
}

func (p *peerServer) handleGetPredecessor(ctx context.Context, req *empty) (*getPredecessorResp, error) {
	pred, ok := p.ring.GetPredecessor()
	resp := &getPredecessorResp{}
	if ok {
		resp.Predecessor = &pred
	}
	return resp, nil
}

func (p *peerServer) handlePing(ctx context.Context, req *empty) (*pingResponse, error) {
	return &pingResponse{Alive: p.ring.Ping()}, nil
}

func (p *peerServer) handleForwardFile(ctx context.Context, req *forwardFileRequest) (*empty, error) {
	if req.Name == "" {
		return nil, errors.New("grpctransport: name is required")
	}
	if err := p.files.StoreLocal(ctx, req.Name, req.Contents); err != nil {
		return nil, err
	}
	return &empty{}, nil
}

func (p *peerServer) handleGetFile(ctx context.Context, req *fileNameRequest) (*getFileResponse, error) {
	data, err := p.files.Get(ctx, req.Name)
	if err != nil {
		if errors.Is(err, fileservice.ErrNotFound) {
			return nil, status.Error(codes.NotFound, err.Error())
		}
		return nil, err
	}
	return &getFileResponse{Contents: data}, nil
}

func (p *peerServer) handleDeleteFile(ctx context.Context, req *fileNameRequest) (*deleteFileResponse, error) {
	deleted, err := p.files.Delete(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	return &deleteFileResponse{Deleted: deleted}, nil
}

// --------- hand-rolled ServiceDesc ---------
//
// armon-go-chord's grpc.go dispatches against protoc-generated ChordClient/
// ChordServer stubs compiled from a .proto file; no such generated code (or
// protoc invocation) is available in this module, so the descriptor below
// is built by hand, the same shape generated code takes: one MethodDesc
// per RPC, each a thin decode-call-encode shim over peerServer.

const serviceName = "chordfs.Peer"

func unaryHandler[Req, Resp any](call func(*peerServer, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := new(Req)
		if err := dec(req); err != nil {
			return nil, err
		}
		p := srv.(*peerServer)
		if interceptor == nil {
			return call(p, ctx, req)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/"}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(p, ctx, req.(*Req))
		}
		return interceptor(ctx, req, info, handler)
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Join", Handler: unaryHandler[joinRequest, joinResponse]((*peerServer).handleJoin)},
		{MethodName: "FindSuccessor", Handler: unaryHandler[findSuccessorRequest, findSuccessorResponse]((*peerServer).handleFindSuccessor)},
		{MethodName: "Notify", Handler: unaryHandler[notifyRequest, empty]((*peerServer).handleNotify)},
		{MethodName: "GetPredecessor", Handler: unaryHandler[empty, getPredecessorResp]((*peerServer).handleGetPredecessor)},
		{MethodName: "Ping", Handler: unaryHandler[empty, pingResponse]((*peerServer).handlePing)},
		{MethodName: "ForwardFile", Handler: unaryHandler[forwardFileRequest, empty]((*peerServer).handleForwardFile)},
		{MethodName: "GetFile", Handler: unaryHandler[fileNameRequest, getFileResponse]((*peerServer).handleGetFile)},
		{MethodName: "DeleteFile", Handler: unaryHandler[fileNameRequest, deleteFileResponse]((*peerServer).handleDeleteFile)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "chordfs/grpctransport",
}
