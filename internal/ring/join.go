package ring

import (
	"context"
	"time"

	"github.com/chordfs/chordfs/internal/logger"
)

// joinRing runs the outbound join protocol against bootstrap: send
// join(self), retrying on a fixed interval until a successor comes back;
// install it in slot 1 and fill the finger table with it to bootstrap
// routing; then notify the new successor so it may adopt us as
// predecessor. The stabilize loop (started by the caller right after) does
// the rest of the convergence.
func (s *Service) joinRing(ctx context.Context, bootstrap Identity) error {
	ticker := time.NewTicker(s.cfg.JoinRetryInterval)
	defer ticker.Stop()

	for {
		rpcCtx, cancel := s.rpcContext(ctx)
		successor, err := s.transport.Join(rpcCtx, bootstrap, s.self, s.maxHops())
		cancel()
		if err == nil {
			s.mu.Lock()
			s.successor = successor
			s.fingers.Fill(successor)
			s.mu.Unlock()
			s.log.Info("joined ring", logger.F("bootstrap", bootstrap.String()), logger.F("successor", successor.String()))

			notifyCtx, notifyCancel := s.rpcContext(ctx)
			notifyErr := s.transport.Notify(notifyCtx, successor, s.self)
			notifyCancel()
			if notifyErr != nil {
				s.log.Warn("initial notify of new successor failed", logger.F("err", notifyErr.Error()))
			}
			return nil
		}

		s.log.Warn("join attempt failed, retrying",
			logger.F("bootstrap", bootstrap.String()), logger.F("err", err.Error()))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
