package texture

import (
	"testing"

	"rusteria/internal/vmvalue"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("sqlite://:memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.EnsureSchema(); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSampleReturnsStoredTexel(t *testing.T) {
	s := newTestStore(t)
	u, v := nearestTexel(0.25), nearestTexel(0.75)
	if err := s.Put("brick", u, v, 1, 0.5, 0.25); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got := s.Sample(vmvalue.NewString("brick"), vmvalue.New(0.25, 0.75, 0))
	if got.X != 1 || got.Y != 0.5 || got.Z != 0.25 {
		t.Errorf("expected (1,0.5,0.25), got (%v,%v,%v)", got.X, got.Y, got.Z)
	}
}

func TestSampleMissingTexelReturnsZero(t *testing.T) {
	s := newTestStore(t)
	got := s.Sample(vmvalue.NewString("nothing"), vmvalue.New(0, 0, 0))
	if got.X != 0 || got.Y != 0 || got.Z != 0 {
		t.Errorf("expected zero value for a missing texel, got (%v,%v,%v)", got.X, got.Y, got.Z)
	}
}

func TestSampleHitsCacheOnSecondLookup(t *testing.T) {
	s := newTestStore(t)
	u, v := nearestTexel(0.5), nearestTexel(0.5)
	if err := s.Put("tile", u, v, 0.1, 0.2, 0.3); err != nil {
		t.Fatalf("Put: %v", err)
	}
	uv := vmvalue.New(0.5, 0.5, 0)
	first := s.Sample(vmvalue.NewString("tile"), uv)

	// Mutate the backing row directly; a cache hit should still return
	// the value observed on the first Sample call.
	if _, err := s.db.Exec(`UPDATE texels SET r = 9 WHERE tex_ref = 'tile'`); err != nil {
		t.Fatalf("direct update: %v", err)
	}
	second := s.Sample(vmvalue.NewString("tile"), uv)

	if second != first {
		t.Errorf("expected cached value %v, got %v", first, second)
	}
}

func TestNumericTextureRef(t *testing.T) {
	s := newTestStore(t)
	if err := s.Put("7", 0, 0, 0.9, 0.8, 0.7); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got := s.Sample(vmvalue.Broadcast(7), vmvalue.New(0, 0, 0))
	if got.X != 0.9 {
		t.Errorf("expected numeric texture ref 7 to resolve, got %v", got.X)
	}
}
