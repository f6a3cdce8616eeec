package ring

import (
	"context"
	"time"

	"github.com/chordfs/chordfs/internal/logger"
)

// stabilizeLoop runs stabilizeOnce on a fixed cadence until ctx is
// canceled. Iterations never overlap: the loop only receives the next tick
// once the previous iteration has returned, and the ticker drops ticks that
// arrive while nobody is receiving.
func (s *Service) stabilizeLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.StabilizeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.stabilizeOnce(ctx)
		}
	}
}

// stabilizeOnce runs one iteration of the stabilize protocol (spec.md
// §4.3.4): repair the successor pointer from the successor's own
// predecessor, notify the successor of ourselves, then refresh every
// finger table entry.
func (s *Service) stabilizeOnce(ctx context.Context) {
	if s.Alone() {
		return
	}

	successor := s.Successor()
	rpcCtx, cancel := s.rpcContext(ctx)
	x, ok, err := s.transport.GetPredecessor(rpcCtx, successor)
	cancel()
	switch {
	case err != nil:
		s.log.Warn("stabilize: get_predecessor failed, retrying next tick",
			logger.F("successor", successor.String()), logger.F("err", err.Error()))
	// x must fall strictly between self and successor: InArc alone gives
	// the half-open (self, successor], and treats start == end as the
	// whole ring, so immediate-neighbor cases need both endpoints excluded
	// by identity rather than folded into the arc bound.
	case ok && InArc(s.self.ID, successor.ID, x.ID) && !SameNode(x, successor) && !SameNode(x, s.self):
		s.mu.Lock()
		s.successor = x
		s.fingers.Set(1, x)
		s.mu.Unlock()
		successor = x
	}

	notifyCtx, notifyCancel := s.rpcContext(ctx)
	if err := s.transport.Notify(notifyCtx, successor, s.self); err != nil {
		s.log.Warn("stabilize: notify failed, retrying next tick",
			logger.F("successor", successor.String()), logger.F("err", err.Error()))
	}
	notifyCancel()

	if s.cfg.PredecessorCheck {
		s.checkPredecessor(ctx)
	}

	for _, target := range s.fingers.RefreshTargets() {
		node := s.Lookup(ctx, target.Key)
		s.mu.Lock()
		s.fingers.Set(target.Index, node)
		s.mu.Unlock()
	}
}

// checkPredecessor pings the current predecessor and clears it if
// unreachable. This is the optional keepalive probe named in spec.md
// §4.3.5 ("no explicit predecessor-failure detector is required in the
// core"); it is off by default and, when on, only ever clears the
// predecessor — it never assigns one, so it cannot violate the ownership
// invariant in §3.
func (s *Service) checkPredecessor(ctx context.Context) {
	pred, ok := s.Predecessor()
	if !ok {
		return
	}
	rpcCtx, cancel := s.rpcContext(ctx)
	alive, err := s.transport.Ping(rpcCtx, pred)
	cancel()
	if err != nil || !alive {
		s.mu.Lock()
		if s.predecessor != nil && SameNode(*s.predecessor, pred) {
			s.predecessor = nil
		}
		s.mu.Unlock()
		s.log.Info("predecessor unreachable, cleared", logger.F("predecessor", pred.String()))
	}
}
