package ring

// FingerTable is an m-entry routing cache of exponentially spaced successor
// pointers. Entry i (1-based) targets the node responsible for key
// (self.ID + 2^(i-1)) mod 2^m; entry 1 always doubles as the node's
// successor.
type FingerTable struct {
	selfID uint64
	mBits  uint
	slots  []Identity
}

// NewFingerTable builds a fresh table, every slot pointing at self.
func NewFingerTable(self Identity, mBits uint) *FingerTable {
	ft := &FingerTable{
		selfID: self.ID,
		mBits:  mBits,
		slots:  make([]Identity, mBits),
	}
	ft.Fill(self)
	return ft
}

// Fill sets every slot to node. Used right after a fresh join, before the
// real finger entries have been learned.
func (ft *FingerTable) Fill(node Identity) {
	for i := range ft.slots {
		ft.slots[i] = node
	}
}

// Set writes slot i (1-based).
func (ft *FingerTable) Set(i int, node Identity) {
	ft.slots[i-1] = node
}

// Get reads slot i (1-based).
func (ft *FingerTable) Get(i int) Identity {
	return ft.slots[i-1]
}

// Len returns the number of slots, i.e. m.
func (ft *FingerTable) Len() int {
	return len(ft.slots)
}

// Successor reads slot 1.
func (ft *FingerTable) Successor() Identity {
	return ft.slots[0]
}

// Snapshot returns a copy of every finger slot, for diagnostics.
func (ft *FingerTable) Snapshot() []Identity {
	out := make([]Identity, len(ft.slots))
	copy(out, ft.slots)
	return out
}

// ClosestPreceding scans slots from m down to 1 and returns the first slot
// whose id lies in the arc strictly between self and key — i.e. the
// highest finger that does not overshoot key. If none qualifies, it
// returns slot 1 (the successor).
func (ft *FingerTable) ClosestPreceding(key uint64) Identity {
	upper := dec(key, ft.mBits)
	if upper == ft.selfID {
		// key is self+1: the open arc (self, key) is empty, and
		// InArc(self, self, v) would read it as the whole ring.
		return ft.slots[0]
	}
	for i := len(ft.slots) - 1; i >= 0; i-- {
		entry := ft.slots[i]
		if InArc(ft.selfID, upper, entry.ID) {
			return entry
		}
	}
	return ft.slots[0]
}

// FingerTarget is one (index, key) pair to resolve during a finger refresh.
type FingerTarget struct {
	Index int
	Key   uint64
}

// RefreshTargets yields exactly m pairs; target i is
// (self.ID + 2^(i-1)) mod 2^m. Callers look up successor(target) and
// install the result in slot i.
func (ft *FingerTable) RefreshTargets() []FingerTarget {
	size := RingSize(ft.mBits)
	targets := make([]FingerTarget, len(ft.slots))
	for idx := range ft.slots {
		offset := uint64(1) << uint(idx)
		targets[idx] = FingerTarget{
			Index: idx + 1,
			Key:   (ft.selfID + offset) % size,
		}
	}
	return targets
}
