package geom

import "testing"

func TestRect_OverlapsEdgesDoNotTouch(t *testing.T) {
	a := R(0, 0, 10, 10)
	cases := []struct {
		name string
		b    Rect
		want bool
	}{
		{"inside", R(2, 2, 2, 2), true},
		{"partial", R(5, 5, 10, 10), true},
		{"touch right edge", R(10, 0, 5, 5), false},
		{"touch bottom edge", R(0, 10, 5, 5), false},
		{"far away", R(100, 100, 1, 1), false},
	}
	for _, tc := range cases {
		if got := a.Overlaps(tc.b); got != tc.want {
			t.Errorf("%s: Overlaps=%v, want %v", tc.name, got, tc.want)
		}
		if got := tc.b.Overlaps(a); got != tc.want {
			t.Errorf("%s (reversed): Overlaps=%v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRect_Anchors(t *testing.T) {
	r := R(10, 20, 30, 40)
	if mb := r.MidBottom(); mb != (Vec{25, 60}) {
		t.Fatalf("MidBottom=%v, want (25,60)", mb)
	}
	if c := r.Center(); c != (Vec{25, 40}) {
		t.Fatalf("Center=%v, want (25,40)", c)
	}
	moved := r.WithMidBottom(Vec{100, 100})
	if moved.MidBottom() != (Vec{100, 100}) || moved.W != 30 || moved.H != 40 {
		t.Fatalf("WithMidBottom produced %+v", moved)
	}
	if got := r.WithCenter(Vec{0, 0}).Center(); got != (Vec{0, 0}) {
		t.Fatalf("WithCenter centre=%v", got)
	}
}

func TestClamp_InvertedRangeReturnsMidpoint(t *testing.T) {
	if got := Clamp(5, 10, 20); got != 10 {
		t.Fatalf("Clamp low=%v", got)
	}
	if got := Clamp(25, 10, 20); got != 20 {
		t.Fatalf("Clamp high=%v", got)
	}
	if got := Clamp(0, 20, 10); got != 15 {
		t.Fatalf("Clamp inverted=%v, want 15", got)
	}
}

func TestVec_Arithmetic(t *testing.T) {
	a, b := Vec{X: 3, Y: 4}, Vec{X: 1, Y: -2}
	if got := a.Add(b); got != (Vec{4, 2}) {
		t.Errorf("Add=%v", got)
	}
	if got := a.Sub(b); got != (Vec{2, 6}) {
		t.Errorf("Sub=%v", got)
	}
	if got := a.Scale(2); got != (Vec{6, 8}) {
		t.Errorf("Scale=%v", got)
	}
	if got := a.Len(); got != 5 {
		t.Errorf("Len=%v, want 5", got)
	}
	if got := a.Dist(Vec{}); got != 5 {
		t.Errorf("Dist=%v, want 5", got)
	}
	if got := a.Normalize(); got != (Vec{0.6, 0.8}) {
		t.Errorf("Normalize=%v, want (0.6,0.8)", got)
	}
	if got := (Vec{}).Normalize(); got != (Vec{}) {
		t.Errorf("zero Normalize=%v, want zero", got)
	}
}
