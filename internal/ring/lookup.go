package ring

import (
	"context"

	"github.com/chordfs/chordfs/internal/logger"
)

// Lookup resolves the owner of key, best-effort. It never returns an error
// to the caller — transport failures degrade to "return the current
// successor as a hint" rather than propagating, per spec.md §4.3.5: callers
// must treat any identity returned as a hint, never an authority.
func (s *Service) Lookup(ctx context.Context, key uint64) Identity {
	s.mu.RLock()
	if InArc(s.self.ID, s.successor.ID, key) {
		successor := s.successor
		s.mu.RUnlock()
		return successor
	}
	next := s.fingers.ClosestPreceding(key)
	self, fallback := s.self, s.successor
	s.mu.RUnlock()

	if SameNode(next, self) {
		return fallback
	}

	rpcCtx, cancel := s.rpcContext(ctx)
	defer cancel()
	answer, err := s.transport.FindSuccessor(rpcCtx, next, key, self, s.maxHops())
	if err != nil {
		s.log.Warn("lookup failed, falling back to current successor",
			logger.F("target", next.String()), logger.F("err", err.Error()))
		return fallback
	}
	return answer
}
