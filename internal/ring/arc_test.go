package ring

import "testing"

func naiveInArc(m uint, start, end, v uint64) bool {
	size := RingSize(m)
	if start == end {
		return true
	}
	// Walk clockwise from start, inclusive of end, and see if v appears.
	for i := uint64(1); ; i++ {
		p := (start + i) % size
		if p == v {
			return true
		}
		if p == end {
			return false
		}
	}
}

func TestInArcAgreesWithNaiveWalk(t *testing.T) {
	const m = 6 // keep the walk small
	size := RingSize(m)
	for start := uint64(0); start < size; start++ {
		for end := uint64(0); end < size; end++ {
			for v := uint64(0); v < size; v++ {
				got := InArc(start, end, v)
				want := naiveInArc(m, start, end, v)
				if got != want {
					t.Fatalf("InArc(%d,%d,%d) = %v, want %v", start, end, v, got, want)
				}
			}
		}
	}
}

func TestInArcSoloRingOwnsEverything(t *testing.T) {
	for v := uint64(0); v < 16; v++ {
		if !InArc(7, 7, v) {
			t.Fatalf("InArc(7,7,%d) = false, want true (solo-ring rule)", v)
		}
	}
}

func TestInArcWrapAround(t *testing.T) {
	// m=10, n.id=50, predecessor.id=900: owns {950, 0, 50}, not 500.
	const m = 10
	_ = m
	owned := []uint64{950, 0, 50}
	for _, k := range owned {
		if !InArc(900, 50, k) {
			t.Errorf("InArc(900,50,%d) = false, want true", k)
		}
	}
	if InArc(900, 50, 500) {
		t.Errorf("InArc(900,50,500) = true, want false")
	}
}

func TestHashStableAndStringBytesAgree(t *testing.T) {
	a := Hash([]byte("host:1234"), 10)
	b := Hash([]byte("host:1234"), 10)
	if a != b {
		t.Fatalf("Hash not stable across calls: %d != %d", a, b)
	}
	c := Hash([]byte(string([]byte("host:1234"))), 10)
	if a != c {
		t.Fatalf("Hash of string and its byte form disagree: %d != %d", a, c)
	}
	if a >= RingSize(10) {
		t.Fatalf("hash %d not reduced mod 2^10", a)
	}
}
