package ring

import "context"

// Transport is the outbound peer RPC surface the ring service calls against
// remote nodes. Concrete implementations (HTTP+JSON, gRPC) live under
// internal/boundary and must preserve these semantics regardless of wire
// encoding; every call carries the caller's context so a deadline or
// cancellation aborts the outbound RPC.
//
// Join and FindSuccessor both carry a hops budget: each peer that forwards
// one of these calls on to a closer finger decrements it and fails closed
// (returns its own best local answer) once it reaches zero, rather than
// forwarding again. This bounds the handful of genuinely recursive,
// peer-to-peer protocol steps against the stale-finger-table infinite-loop
// risk spec.md §9 calls out in the source.
type Transport interface {
	// Join asks target to accept joining as (potentially) its new
	// successor, per the three-case protocol in the ring service.
	Join(ctx context.Context, target, joining Identity, hops int) (Identity, error)

	// FindSuccessor asks target to resolve key, on behalf of requester.
	FindSuccessor(ctx context.Context, target Identity, key uint64, requester Identity, hops int) (Identity, error)

	// Notify informs target that candidate may be its predecessor.
	Notify(ctx context.Context, target, candidate Identity) error

	// GetPredecessor reads target's current predecessor, if any.
	GetPredecessor(ctx context.Context, target Identity) (pred Identity, ok bool, err error)

	// Ping checks target's liveness.
	Ping(ctx context.Context, target Identity) (bool, error)
}
