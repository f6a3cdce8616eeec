package ring

import (
	"context"
	"fmt"
	"sync"
)

// memTransport is an in-process stand-in for a real peer transport: it
// dispatches each call directly to the target Service's inbound handlers,
// keyed by address, the same way a real HTTP or gRPC transport would
// dispatch over the network. Used only by this package's tests.
type memTransport struct {
	mu       sync.RWMutex
	services map[string]*Service
}

func newMemTransport() *memTransport {
	return &memTransport{services: make(map[string]*Service)}
}

func (t *memTransport) register(s *Service) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.services[s.Self().Address()] = s
}

func (t *memTransport) resolve(target Identity) (*Service, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.services[target.Address()]
	if !ok {
		return nil, fmt.Errorf("memTransport: no such node %s", target.Address())
	}
	return s, nil
}

func (t *memTransport) Join(ctx context.Context, target, joining Identity, hops int) (Identity, error) {
	s, err := t.resolve(target)
	if err != nil {
		return Identity{}, err
	}
	return s.Join(ctx, joining, hops)
}

func (t *memTransport) FindSuccessor(ctx context.Context, target Identity, key uint64, requester Identity, hops int) (Identity, error) {
	s, err := t.resolve(target)
	if err != nil {
		return Identity{}, err
	}
	return s.FindSuccessor(ctx, key, requester, hops)
}

func (t *memTransport) Notify(ctx context.Context, target, candidate Identity) error {
	s, err := t.resolve(target)
	if err != nil {
		return err
	}
	s.Notify(candidate)
	return nil
}

func (t *memTransport) GetPredecessor(ctx context.Context, target Identity) (Identity, bool, error) {
	s, err := t.resolve(target)
	if err != nil {
		return Identity{}, false, err
	}
	pred, ok := s.GetPredecessor()
	return pred, ok, nil
}

func (t *memTransport) Ping(ctx context.Context, target Identity) (bool, error) {
	s, err := t.resolve(target)
	if err != nil {
		return false, err
	}
	return s.Ping(), nil
}
