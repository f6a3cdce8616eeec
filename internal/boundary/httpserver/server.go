// Package httpserver is the HTTP+JSON boundary adapter: one ServeMux route
// per peer operation, plus the client-facing upload/download/delete/list/
// info routes. It is intentionally thin — all protocol logic lives in
// internal/ring and internal/fileservice; this package only translates HTTP
// requests into calls against them and their results back into JSON.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/chordfs/chordfs/internal/boundary/wire"
	"github.com/chordfs/chordfs/internal/fileservice"
	"github.com/chordfs/chordfs/internal/logger"
	"github.com/chordfs/chordfs/internal/ring"
)

// RingService is the subset of *ring.Service the peer routes call into.
type RingService interface {
	Join(ctx context.Context, joining ring.Identity, hops int) (ring.Identity, error)
	FindSuccessor(ctx context.Context, key uint64, requester ring.Identity, hops int) (ring.Identity, error)
	Notify(candidate ring.Identity)
	GetPredecessor() (ring.Identity, bool)
	Ping() bool
	Info() ring.Snapshot
}

// FileService is the subset of *fileservice.Service the client and
// forward-file routes call into.
type FileService interface {
	Put(ctx context.Context, name string, contents []byte) (ring.Identity, error)
	Get(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) (bool, error)
	StoreLocal(ctx context.Context, name string, contents []byte) error
	ListLocal(ctx context.Context) ([]string, error)
}

// Server hosts a node's full HTTP surface: peer RPCs and client CRUD.
type Server struct {
	ring  RingService
	files FileService
	log   logger.Logger

	httpServer *http.Server
}

// New builds a Server bound to addr (":port" or "host:port"), not yet
// listening. Call Start to begin serving.
func New(addr string, ringSvc RingService, fileSvc FileService, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop{}
	}
	s := &Server{ring: ringSvc, files: fileSvc, log: log.Named("httpserver")}

	mux := http.NewServeMux()
	// peer surface
	mux.HandleFunc("/peer/join", s.handleJoin)
	mux.HandleFunc("/peer/find-successor", s.handleFindSuccessor)
	mux.HandleFunc("/peer/notify", s.handleNotify)
	mux.HandleFunc("/peer/predecessor", s.handleGetPredecessor)
	mux.HandleFunc("/peer/ping", s.handlePing)
	mux.HandleFunc("/peer/forward-file", s.handleForwardFile)
	mux.HandleFunc("/peer/file", s.handlePeerFile)

	// client surface
	mux.HandleFunc("/files/", s.handleClientFile)
	mux.HandleFunc("/files", s.handleListLocal)
	mux.HandleFunc("/info", s.handleInfo)

	s.httpServer = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Handler returns the server's routed http.Handler, for tests that want to
// drive it via httptest without binding a real listener.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the HTTP server until Shutdown is called. It blocks; run it in
// a goroutine.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("httpserver: listen and serve: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server, waiting for in-flight requests to
// finish (or ctx to expire).
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("httpserver: shutdown: %w", err)
	}
	return nil
}

// --------- PEER SURFACE ---------

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req wire.JoinRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	successor, err := s.ring.Join(r.Context(), req.Joining, req.Hops)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.JoinResponse{Successor: successor})
}

func (s *Server) handleFindSuccessor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req wire.FindSuccessorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	successor, err := s.ring.FindSuccessor(r.Context(), req.Key, req.Requester, req.Hops)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.FindSuccessorResponse{Successor: successor})
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req wire.NotifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.ring.Notify(req.Candidate)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleGetPredecessor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	pred, ok := s.ring.GetPredecessor()
	resp := wire.GetPredecessorResponse{}
	if ok {
		resp.Predecessor = &pred
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, wire.PingResponse{Alive: s.ring.Ping()})
}

func (s *Server) handleForwardFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req wire.ForwardFileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, errors.New("name is required"))
		return
	}
	if err := s.files.StoreLocal(r.Context(), req.Name, req.Contents); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handlePeerFile serves GET/DELETE on /peer/file?name=... — the peer-facing
// counterparts of get_file/delete_file in spec.md's transport table, called
// by another node's file service after it resolves this node as the owner.
func (s *Server) handlePeerFile(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, errors.New("name is required"))
		return
	}
	switch r.Method {
	case http.MethodGet:
		data, err := s.files.Get(r.Context(), name)
		if err != nil {
			if errors.Is(err, fileservice.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, wire.GetFileResponse{Contents: data})
	case http.MethodDelete:
		deleted, err := s.files.Delete(r.Context(), name)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, wire.DeleteFileResponse{Deleted: deleted})
	default:
		methodNotAllowed(w)
	}
}

// --------- CLIENT SURFACE ---------

func (s *Server) handleClientFile(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/files/")
	if name == "" {
		writeError(w, http.StatusBadRequest, errors.New("a file name is required"))
		return
	}
	switch r.Method {
	case http.MethodPut:
		contents, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("reading body: %w", err))
			return
		}
		location, err := s.files.Put(r.Context(), name, contents)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "ok", "location": location.String()})
	case http.MethodGet:
		data, err := s.files.Get(r.Context(), name)
		if err != nil {
			if errors.Is(err, fileservice.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	case http.MethodDelete:
		deleted, err := s.files.Delete(r.Context(), name)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if !deleted {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleListLocal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	names, err := s.files.ListLocal(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	snap := s.ring.Info()
	names, err := s.files.ListLocal(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.InfoResponse{
		Self:        snap.Self,
		Successor:   snap.Successor,
		Predecessor: snap.Predecessor,
		Fingers:     snap.Fingers,
		MBits:       snap.MBits,
		UptimeSecs:  snap.Uptime.Seconds(),
		LocalFiles:  len(names),
	})
}

// --------- HELPERS ---------

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, wire.ErrorResponse{Error: err.Error()})
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}
