package ring

import (
	"context"

	"github.com/chordfs/chordfs/internal/logger"
)

// Join handles an inbound join request from a node trying to enter the
// ring. It implements the three cases from spec.md §4.3.1:
//
//  1. We are alone: adopt joining as our new successor and return self —
//     the joining node's successor becomes us, forming a 2-node ring.
//  2. joining falls in (self, successor]: splice it in between us and our
//     current successor, returning the old successor to the joiner.
//  3. Otherwise: route the join request to the closest preceding finger,
//     so joins cost O(log N) hops rather than forwarding through the
//     successor chain (the source's degraded O(N) behavior, noted in
//     spec.md §9, is deliberately not reproduced here). hops bounds how
//     many more times this request may be forwarded before a node gives up
//     and answers locally.
func (s *Service) Join(ctx context.Context, joining Identity, hops int) (Identity, error) {
	s.mu.Lock()
	switch {
	case SameNode(s.successor, s.self):
		oldSelf := s.self
		s.successor = joining
		s.fingers.Set(1, joining)
		s.mu.Unlock()
		return oldSelf, nil

	case InArc(s.self.ID, s.successor.ID, joining.ID):
		oldSuccessor := s.successor
		s.successor = joining
		s.fingers.Set(1, joining)
		s.mu.Unlock()
		return oldSuccessor, nil

	default:
		next := s.fingers.ClosestPreceding(joining.ID)
		successor := s.successor
		self := s.self
		s.mu.Unlock()

		if SameNode(next, self) || hops <= 0 {
			return successor, nil
		}
		rpcCtx, cancel := s.rpcContext(ctx)
		defer cancel()
		return s.transport.Join(rpcCtx, next, joining, hops-1)
	}
}

// FindSuccessor handles an inbound lookup request: if key falls in
// (self, successor], we are the answer. Otherwise we forward the request
// to the closest preceding finger and return its answer, bounded by hops —
// once hops reaches zero a node stops forwarding and answers with its own
// current successor as a best-effort guess, rather than forwarding forever
// on a stale or cyclic finger table (spec.md §9).
func (s *Service) FindSuccessor(ctx context.Context, key uint64, requester Identity, hops int) (Identity, error) {
	s.mu.RLock()
	if InArc(s.self.ID, s.successor.ID, key) {
		successor := s.successor
		s.mu.RUnlock()
		return successor, nil
	}
	next := s.fingers.ClosestPreceding(key)
	self, successor := s.self, s.successor
	s.mu.RUnlock()

	if SameNode(next, self) || hops <= 0 {
		return successor, nil
	}
	rpcCtx, cancel := s.rpcContext(ctx)
	defer cancel()
	answer, err := s.transport.FindSuccessor(rpcCtx, next, key, requester, hops-1)
	if err != nil {
		s.log.Warn("find_successor forward failed, answering with local successor",
			logger.F("target", next.String()), logger.F("err", err.Error()))
		return successor, nil
	}
	return answer, nil
}

// Notify handles a candidate's claim to be our predecessor. It is accepted
// iff predecessor is unset or candidate falls strictly between the current
// predecessor and self (the open interval (predecessor, self), excluding
// self itself); otherwise the call is a silent no-op — there is no
// "rejected" error, only an unchanged predecessor.
//
// candidate == self is always rejected explicitly, and self is excluded as
// the arc's upper bound rather than folded in via dec: InArc(start, end, v)
// treats start == end as the whole ring (the rule that lets a solo node own
// every key), and self.ID-1 == predecessor.ID whenever predecessor is
// already our immediate predecessor, so decrementing self into the bound
// would collapse the open interval to zero width and accept any candidate.
// Using self.ID as the bound directly, with the explicit identity guard
// taking care of the closed endpoint, avoids that collapse.
func (s *Service) Notify(candidate Identity) {
	if SameNode(candidate, s.self) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.predecessor == nil || InArc(s.predecessor.ID, s.self.ID, candidate.ID) {
		c := candidate
		s.predecessor = &c
	}
}

// GetPredecessor is a read-only accessor used by the stabilize protocol.
func (s *Service) GetPredecessor() (Identity, bool) {
	return s.Predecessor()
}

// Ping always reports alive while the node is running; there is no
// liveness state beyond "did this call get answered".
func (s *Service) Ping() bool {
	return true
}
