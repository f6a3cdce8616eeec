// Package fileservice is the stateless routing layer over the ring
// service and a storage backend: it decides whether a name is owned
// locally or must be forwarded, but holds no state of its own beyond what
// it is constructed with.
package fileservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/chordfs/chordfs/internal/logger"
	"github.com/chordfs/chordfs/internal/ring"
	"github.com/chordfs/chordfs/internal/storage"
)

// ErrNotFound mirrors storage.ErrNotFound at the file-service boundary, so
// callers of this package need not import internal/storage directly.
var ErrNotFound = storage.ErrNotFound

// RingLookup is the subset of ring.Service the file service depends on:
// ownership decisions and owner resolution. A narrow interface rather than
// *ring.Service so tests can substitute a fake ring without standing up a
// full Service.
type RingLookup interface {
	Self() ring.Identity
	IsResponsible(key uint64) bool
	Lookup(ctx context.Context, key uint64) ring.Identity
}

// Transport is the outbound peer RPC surface the file service calls when a
// name is not locally owned. Concrete implementations live under
// internal/boundary and must carry these semantics over whichever wire
// encoding they use.
type Transport interface {
	// ForwardFile sends contents to target's StoreLocal, unconditionally
	// overwriting whatever that node already has under name. Not
	// idempotent at the protocol level — see spec.md §4.5/§5.
	ForwardFile(ctx context.Context, target ring.Identity, name string, contents []byte) error

	// GetFile asks target for the bytes stored under name.
	GetFile(ctx context.Context, target ring.Identity, name string) ([]byte, error)

	// DeleteFile asks target to delete name, reporting whether it was
	// present there.
	DeleteFile(ctx context.Context, target ring.Identity, name string) (bool, error)
}

// Service routes PUT/GET/DELETE by key ownership: local storage when this
// node owns the key, an outbound ring lookup plus transport call
// otherwise.
type Service struct {
	ring      RingLookup
	transport Transport
	storage   storage.Storage
	mBits     uint
	log       logger.Logger
}

// New builds a Service. mBits must match the ring's identifier space so
// filenames hash into the same coordinate system the ring routes on.
func New(ringSvc RingLookup, transport Transport, store storage.Storage, mBits uint, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop{}
	}
	return &Service{
		ring:      ringSvc,
		transport: transport,
		storage:   store,
		mBits:     mBits,
		log:       log.Named("fileservice"),
	}
}

// Put stores contents under name, locally if this node owns the name's
// key, otherwise by forwarding to the owner (or best-effort hint) the ring
// resolves. location is the identity that ended up holding the bytes.
func (s *Service) Put(ctx context.Context, name string, contents []byte) (ring.Identity, error) {
	key := ring.KeyID(name, s.mBits)
	if s.ring.IsResponsible(key) {
		if _, err := s.storage.Save(ctx, name, contents); err != nil {
			return ring.Identity{}, fmt.Errorf("fileservice: put %s locally: %w", name, err)
		}
		return s.ring.Self(), nil
	}

	target := s.ring.Lookup(ctx, key)
	if err := s.transport.ForwardFile(ctx, target, name, contents); err != nil {
		return ring.Identity{}, fmt.Errorf("fileservice: forward put %s to %s: %w", name, target, err)
	}
	return target, nil
}

// Get returns the bytes stored under name, fetching locally or remotely
// depending on ownership. Only one node is asked: this one when it owns the
// key, otherwise the resolved owner. Returns ErrNotFound if that node has
// no such name.
func (s *Service) Get(ctx context.Context, name string) ([]byte, error) {
	key := ring.KeyID(name, s.mBits)
	if s.ring.IsResponsible(key) {
		data, err := s.storage.Get(ctx, name)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("fileservice: get %s locally: %w", name, err)
		}
		return data, nil
	}

	target := s.ring.Lookup(ctx, key)
	data, err := s.transport.GetFile(ctx, target, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fileservice: get %s from %s: %w", name, target, err)
	}
	return data, nil
}

// Delete removes name, locally or remotely depending on ownership,
// reporting whether it was actually present wherever it was looked for.
func (s *Service) Delete(ctx context.Context, name string) (bool, error) {
	key := ring.KeyID(name, s.mBits)
	if s.ring.IsResponsible(key) {
		deleted, err := s.storage.Delete(ctx, name)
		if err != nil {
			return false, fmt.Errorf("fileservice: delete %s locally: %w", name, err)
		}
		return deleted, nil
	}

	target := s.ring.Lookup(ctx, key)
	deleted, err := s.transport.DeleteFile(ctx, target, name)
	if err != nil {
		return false, fmt.Errorf("fileservice: delete %s from %s: %w", name, target, err)
	}
	return deleted, nil
}

// StoreLocal unconditionally saves contents under name on this node,
// regardless of ownership. This is what the forwarding endpoint calls: a
// forwarded PUT always lands here even if stabilization has since moved
// ownership elsewhere (spec.md §7's "ownership mismatch" rule — the
// receiving node stores it anyway, and the next lookup sorts it out).
func (s *Service) StoreLocal(ctx context.Context, name string, contents []byte) error {
	if _, err := s.storage.Save(ctx, name, contents); err != nil {
		return fmt.Errorf("fileservice: store_local %s: %w", name, err)
	}
	return nil
}

// ListLocal returns this node's local inventory with no ring traversal.
func (s *Service) ListLocal(ctx context.Context) ([]string, error) {
	names, err := s.storage.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("fileservice: list_local: %w", err)
	}
	return names, nil
}
