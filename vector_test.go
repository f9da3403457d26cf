package raybox

import (
	"math"
	"testing"
)

func approxVec(a, b Vector, eps float64) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps && math.Abs(a.Z-b.Z) < eps
}

func TestVectorAddSub(t *testing.T) {
	a := V(1, 2, 3)
	b := V(4, -1, 2)
	if got := a.Add(b); !approxVec(got, V(5, 1, 5), 1e-9) {
		t.Errorf("Add = %v", got)
	}
	if got := a.Sub(b); !approxVec(got, V(-3, 3, 1), 1e-9) {
		t.Errorf("Sub = %v", got)
	}
}

func TestVectorDotCross(t *testing.T) {
	x := V(1, 0, 0)
	y := V(0, 1, 0)
	if got := x.Dot(y); got != 0 {
		t.Errorf("Dot = %v, want 0", got)
	}
	if got := x.Cross(y); !approxVec(got, V(0, 0, 1), 1e-9) {
		t.Errorf("Cross = %v, want (0,0,1)", got)
	}
}

func TestVectorNormalize(t *testing.T) {
	v := V(3, 4, 0)
	n := v.Normalize()
	if math.Abs(n.Length()-1) > 1e-9 {
		t.Errorf("Normalize length = %v, want 1", n.Length())
	}
	if got := (Vector{}).Normalize(); got != (Vector{}) {
		t.Errorf("Normalize of zero vector = %v, want zero", got)
	}
}

func TestVectorLengthDistance(t *testing.T) {
	v := V(3, 4, 0)
	if v.Length() != 5 {
		t.Errorf("Length = %v, want 5", v.Length())
	}
	a := V(0, 0, 0)
	b := V(3, 4, 0)
	if a.Distance(b) != 5 {
		t.Errorf("Distance = %v, want 5", a.Distance(b))
	}
	if a.DistanceSquared(b) != 25 {
		t.Errorf("DistanceSquared = %v, want 25", a.DistanceSquared(b))
	}
}

func TestVectorLerp(t *testing.T) {
	a := V(0, 0, 0)
	b := V(10, 10, 10)
	if got := a.Lerp(b, 0.5); !approxVec(got, V(5, 5, 5), 1e-9) {
		t.Errorf("Lerp = %v", got)
	}
	if got := a.Lerp(b, 0); got != a {
		t.Errorf("Lerp t=0 should equal a, got %v", got)
	}
	if got := a.Lerp(b, 1); got != b {
		t.Errorf("Lerp t=1 should equal b, got %v", got)
	}
}

func TestVectorReflect(t *testing.T) {
	incoming := V(1, -1, 0)
	normal := V(0, 1, 0)
	got := incoming.Reflect(normal)
	if !approxVec(got, V(1, 1, 0), 1e-9) {
		t.Errorf("Reflect = %v, want (1,1,0)", got)
	}
}

func TestVectorIsDegenerate(t *testing.T) {
	if (V(1, 2, 3)).IsDegenerate() {
		t.Error("finite vector reported degenerate")
	}
	if !(V(math.NaN(), 0, 0)).IsDegenerate() {
		t.Error("NaN vector not reported degenerate")
	}
	if !(V(math.Inf(1), 0, 0)).IsDegenerate() {
		t.Error("Inf vector not reported degenerate")
	}
}

func TestVectorMinMaxComponent(t *testing.T) {
	v := V(-1, 5, 2)
	if v.MinComponent() != -1 {
		t.Errorf("MinComponent = %v, want -1", v.MinComponent())
	}
	if v.MaxComponent() != 5 {
		t.Errorf("MaxComponent = %v, want 5", v.MaxComponent())
	}
}

func TestVectorWOutside(t *testing.T) {
	inside := VectorW{0, 0, 0, 1}
	if inside.Outside() {
		t.Error("origin should be inside clip cube")
	}
	outside := VectorW{2, 0, 0, 1}
	if !outside.Outside() {
		t.Error("x=2,w=1 should be outside clip cube")
	}
}

func TestVectorWLerp(t *testing.T) {
	a := VectorW{0, 0, 0, 1}
	b := VectorW{10, 0, 0, 1}
	got := a.Lerp(b, 0.5)
	if got.X != 5 {
		t.Errorf("VectorW.Lerp = %v, want X=5", got)
	}
}

func TestSegmentDistance(t *testing.T) {
	p := V(0, 1, 0)
	v := V(0, 0, 0)
	w := V(10, 0, 0)
	if got := p.SegmentDistance(v, w); math.Abs(got-1) > 1e-9 {
		t.Errorf("SegmentDistance = %v, want 1", got)
	}
	// degenerate segment (v == w)
	if got := p.SegmentDistance(v, v); math.Abs(got-p.Distance(v)) > 1e-9 {
		t.Errorf("SegmentDistance degenerate = %v, want %v", got, p.Distance(v))
	}
}
