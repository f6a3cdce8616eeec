// Package ring implements the Chord ring membership and routing protocol:
// identifier algebra, finger table, join, stabilize, and key lookup.
package ring

import (
	"crypto/sha1"
	"fmt"
	"math/big"
	"net"
	"strconv"
)

// Identity is the (id, host, port) triple that names a node on the ring.
// Two identities are considered the same node when their Host and Port
// match; the ID is derived from the address and is not itself a reliable
// equality key (distinct addresses may collide on ID).
type Identity struct {
	ID   uint64 `json:"id"`
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Address returns the "host:port" form used to dial this identity.
func (i Identity) Address() string {
	return net.JoinHostPort(i.Host, strconv.Itoa(i.Port))
}

func (i Identity) String() string {
	return fmt.Sprintf("%d@%s", i.ID, i.Address())
}

// SameNode reports whether a and b name the same physical node, by address
// rather than by ID.
func SameNode(a, b Identity) bool {
	return a.Host == b.Host && a.Port == b.Port
}

// RingSize returns 2^m, the number of points in an m-bit identifier space.
func RingSize(m uint) uint64 {
	return uint64(1) << m
}

// Hash reduces data's SHA-1 digest modulo 2^m. It is deterministic: the
// same bytes always hash to the same identifier, regardless of how those
// bytes were produced (a string and its UTF-8 encoding hash equal).
func Hash(data []byte, m uint) uint64 {
	sum := sha1.Sum(data)
	digest := new(big.Int).SetBytes(sum[:])
	mod := new(big.Int).Lsh(big.NewInt(1), m)
	digest.Mod(digest, mod)
	return digest.Uint64()
}

// NodeID derives a node's identifier from its network address.
func NodeID(host string, port int, m uint) uint64 {
	return Hash([]byte(fmt.Sprintf("%s:%d", host, port)), m)
}

// KeyID derives a file key's identifier from its name.
func KeyID(name string, m uint) uint64 {
	return Hash([]byte(name), m)
}
