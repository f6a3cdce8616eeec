package ring

import (
	"context"
	"sync"
	"time"

	"github.com/chordfs/chordfs/internal/logger"
)

// Config parameterizes a Service.
type Config struct {
	Host               string
	Port               int
	ID                 *uint64 // pins this node's ring ID; nil derives it from Host:Port
	MBits              uint
	StabilizeInterval  time.Duration
	JoinRetryInterval  time.Duration
	RPCTimeout         time.Duration
	PredecessorCheck   bool // optional keepalive probe of the predecessor, see SPEC_FULL §4.3
	MaxLookupHops      int  // bound on remote hops during Lookup; 0 selects a default of MBits
}

// Service owns one node's ring state (self, successor, predecessor, finger
// table), exposes the inbound protocol handlers peers call, and drives the
// background stabilize loop. Two Services can coexist in one process; there
// is no package-level shared state.
type Service struct {
	cfg       Config
	transport Transport
	log       logger.Logger

	mu          sync.RWMutex
	self        Identity
	successor   Identity
	predecessor *Identity
	fingers     *FingerTable

	startedAt time.Time
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// Snapshot is a diagnostic, read-only copy of a Service's state.
type Snapshot struct {
	Self        Identity
	Successor   Identity
	Predecessor *Identity
	Fingers     []Identity
	MBits       uint
	Uptime      time.Duration
}

// New builds a Service in solo-ring form: successor is self, predecessor is
// unset. Call Start to either stay solo or join through a bootstrap peer.
func New(cfg Config, transport Transport, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop{}
	}
	id := NodeID(cfg.Host, cfg.Port, cfg.MBits)
	if cfg.ID != nil {
		id = *cfg.ID
	}
	self := Identity{
		ID:   id,
		Host: cfg.Host,
		Port: cfg.Port,
	}
	s := &Service{
		cfg:       cfg,
		transport: transport,
		log:       log.Named("ring").With(logger.F("self", self.String())),
		self:      self,
		successor: self,
		fingers:   NewFingerTable(self, cfg.MBits),
	}
	return s
}

// Self returns this node's identity.
func (s *Service) Self() Identity {
	return s.self
}

// Successor returns the current successor pointer.
func (s *Service) Successor() Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.successor
}

// Predecessor returns the current predecessor, if set.
func (s *Service) Predecessor() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.predecessor == nil {
		return Identity{}, false
	}
	return *s.predecessor, true
}

// Alone reports whether this node believes itself to be the only member of
// the ring (successor == self).
func (s *Service) Alone() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SameNode(s.successor, s.self)
}

// IsResponsible is the key-ownership predicate: a key k is owned by this
// node iff k ∈ (predecessor.ID, self.ID]. A node with no predecessor claims
// ownership of everything only while it is alone; otherwise it declines,
// deferring to stabilization to repair the predecessor pointer first. This
// rule is load-bearing for correctness during churn (spec.md §3).
func (s *Service) IsResponsible(key uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.predecessor == nil {
		return SameNode(s.successor, s.self)
	}
	return InArc(s.predecessor.ID, s.self.ID, key)
}

// Info returns a diagnostic snapshot of the full ring state.
func (s *Service) Info() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Self:        s.self,
		Successor:   s.successor,
		Predecessor: s.predecessor,
		Fingers:     s.fingers.Snapshot(),
		MBits:       s.cfg.MBits,
		Uptime:      time.Since(s.startedAt),
	}
}

// Start brings the ring online: if bootstrap is non-nil it runs the join
// protocol against that peer (retrying on a fixed interval until a
// successor is installed, bounded by ctx), otherwise this node forms a new
// one-node ring. Either way, Start then launches the stabilize loop on its
// own lifetime context, independent of ctx, which runs until Shutdown
// cancels it — ctx only bounds how long Start is willing to wait to join.
func (s *Service) Start(ctx context.Context, bootstrap *Identity) error {
	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.startedAt = time.Now()

	if bootstrap != nil {
		if err := s.joinRing(ctx, *bootstrap); err != nil {
			cancel()
			return err
		}
	}

	s.wg.Add(1)
	go s.stabilizeLoop(runCtx)
	return nil
}

// Shutdown cancels the stabilize loop and waits for it to exit. It does not
// close the transport; that belongs to whichever boundary adapter owns it.
func (s *Service) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Service) rpcContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, s.cfg.RPCTimeout)
}

func (s *Service) maxHops() int {
	if s.cfg.MaxLookupHops > 0 {
		return s.cfg.MaxLookupHops
	}
	if int(s.cfg.MBits) > 0 {
		return int(s.cfg.MBits)
	}
	return 10
}
