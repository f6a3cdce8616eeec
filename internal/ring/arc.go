package ring

// InArc reports whether v lies in the half-open circular arc (start, end]
// on the ring. Three cases, per the identifier algebra:
//
//   - start == end: the arc is the whole ring, every v qualifies. This is
//     what lets a solo node own every key.
//   - start < end: the ordinary, non-wrapping range.
//   - start > end: the arc wraps through zero.
//
// All ownership and routing decisions are expressed through InArc; nothing
// else in this package inlines its own circular comparison.
func InArc(start, end, v uint64) bool {
	if start == end {
		return true
	}
	if start < end {
		return v > start && v <= end
	}
	return v > start || v <= end
}

// dec returns (key - 1) mod 2^m, wrapping to the top of the ring at zero.
func dec(key uint64, m uint) uint64 {
	if key == 0 {
		return RingSize(m) - 1
	}
	return key - 1
}
