package ring

import "testing"

func TestFreshFingerTableAllSelf(t *testing.T) {
	self := Identity{ID: 42, Host: "n", Port: 1}
	ft := NewFingerTable(self, 10)
	for i := 1; i <= 10; i++ {
		if got := ft.Get(i); got != self {
			t.Errorf("slot %d = %v, want self %v", i, got, self)
		}
	}
}

func TestRefreshTargetsCountAndValues(t *testing.T) {
	const m = 10
	self := Identity{ID: 100, Host: "n", Port: 1}
	ft := NewFingerTable(self, m)
	targets := ft.RefreshTargets()
	if len(targets) != m {
		t.Fatalf("got %d targets, want %d", len(targets), m)
	}
	size := RingSize(m)
	for idx, target := range targets {
		i := idx + 1
		want := (self.ID + (uint64(1) << uint(i-1))) % size
		if target.Index != i {
			t.Errorf("target %d has Index %d", idx, target.Index)
		}
		if target.Key != want {
			t.Errorf("target %d: key = %d, want %d", i, target.Key, want)
		}
	}
}

func TestClosestPrecedingReturnsSuccessorWhenNoneQualify(t *testing.T) {
	self := Identity{ID: 10, Host: "n", Port: 1}
	ft := NewFingerTable(self, 10)
	successor := Identity{ID: 20, Host: "s", Port: 1}
	ft.Set(1, successor)
	// Every other slot still points at self, so none of them lie strictly
	// between self and key; closestPreceding must fall back to slot 1.
	got := ft.ClosestPreceding(500)
	if got != successor {
		t.Fatalf("ClosestPreceding = %v, want successor %v", got, successor)
	}
}

func TestClosestPrecedingNeverOvershootsKey(t *testing.T) {
	const m = 10
	self := Identity{ID: 100, Host: "n", Port: 1}
	ft := NewFingerTable(self, m)
	far := Identity{ID: 900, Host: "far", Port: 1}
	near := Identity{ID: 150, Host: "near", Port: 1}
	ft.Set(1, near)
	ft.Set(int(m), far)

	got := ft.ClosestPreceding(200)
	if got.ID == 900 {
		t.Fatalf("ClosestPreceding(200) returned a finger (%v) that overshoots the key", got)
	}
}
