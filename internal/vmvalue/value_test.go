package vmvalue

import "testing"

func TestGetComponentsSwizzle(t *testing.T) {
	v := New(1, 2, 3)

	if got := GetComponents(v, []int{LaneX}); got != Broadcast(1) {
		t.Errorf("x swizzle: got %+v", got)
	}
	if got := GetComponents(v, []int{LaneX, LaneZ}); got != New(1, 3, 0) {
		t.Errorf("xz swizzle: got %+v", got)
	}
	if got := GetComponents(v, []int{LaneZ, LaneY, LaneX}); got != New(3, 2, 1) {
		t.Errorf("zyx swizzle: got %+v", got)
	}
}

func TestSetComponentsSwizzle(t *testing.T) {
	target := New(1, 2, 3)
	patch := New(10, 20, 0)

	got := SetComponents(target, patch, []int{LaneX, LaneZ})
	want := New(10, 2, 20)
	if got != want {
		t.Errorf("xz set: got %+v", got)
	}
}

func TestSwizzledCompoundAssignExample(t *testing.T) {
	// p.xz += vec2(10,20) starting from p = (1,2,3) should yield (11,2,23).
	p := New(1, 2, 3)
	delta := Pack2(Broadcast(10), Broadcast(20))

	current := GetComponents(p, []int{LaneX, LaneZ})
	updated := current.Add(delta)
	p = SetComponents(p, updated, []int{LaneX, LaneZ})

	if p != New(11, 2, 23) {
		t.Errorf("got %+v, want (11,2,23)", p)
	}
}

func TestEqualStrings(t *testing.T) {
	a := NewString("hello")
	b := NewString("hello")
	c := NewString("world")
	if !Equal(a, b) {
		t.Error("expected equal strings to compare equal")
	}
	if Equal(a, c) {
		t.Error("expected different strings to compare unequal")
	}
}

func TestEqualNumeric(t *testing.T) {
	if !Equal(Broadcast(4), New(4, 99, 99)) {
		t.Error("expected x-lane-only numeric equality")
	}
}

func TestClamp(t *testing.T) {
	got := Clamp(New(-1, 0.5, 2), Broadcast(0), Broadcast(1))
	if got != New(0, 0.5, 1) {
		t.Errorf("got %+v", got)
	}
}
