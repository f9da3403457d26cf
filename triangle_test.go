package raybox

import (
	"math"
	"testing"
)

func TestTriangleNormal(t *testing.T) {
	tri := NewTriangleForPoints(V(0, 0, 0), V(1, 0, 0), V(0, 1, 0))
	n := tri.Normal()
	if !approxVec(n, V(0, 0, 1), 1e-9) {
		t.Errorf("Normal = %v, want (0,0,1)", n)
	}
}

func TestTriangleArea(t *testing.T) {
	tri := NewTriangleForPoints(V(0, 0, 0), V(2, 0, 0), V(0, 2, 0))
	if got := tri.Area(); math.Abs(got-2) > 1e-9 {
		t.Errorf("Area = %v, want 2", got)
	}
}

func TestTriangleBoundingBox(t *testing.T) {
	tri := NewTriangleForPoints(V(-1, 0, 2), V(3, -2, 0), V(0, 5, -1))
	box := tri.BoundingBox()
	if box.Min != V(-1, -2, -1) || box.Max != V(3, 5, 2) {
		t.Errorf("BoundingBox = %v, want min(-1,-2,-1) max(3,5,2)", box)
	}
}

func TestTriangleReverseWinding(t *testing.T) {
	tri := NewTriangleForPoints(V(0, 0, 0), V(1, 0, 0), V(0, 1, 0))
	n := tri.Normal()
	rev := tri.ReverseWinding()
	if !approxVec(rev.Normal(), n.Negate(), 1e-9) {
		t.Errorf("reversed triangle normal = %v, want %v", rev.Normal(), n.Negate())
	}
}

func TestTriangleIsDegenerate(t *testing.T) {
	zeroArea := NewTriangleForPoints(V(0, 0, 0), V(1, 0, 0), V(2, 0, 0))
	if !zeroArea.IsDegenerate() {
		t.Error("collinear triangle should be degenerate")
	}
	valid := NewTriangleForPoints(V(0, 0, 0), V(1, 0, 0), V(0, 1, 0))
	if valid.IsDegenerate() {
		t.Error("valid triangle reported degenerate")
	}
	nanTri := NewTriangleForPoints(V(math.NaN(), 0, 0), V(1, 0, 0), V(0, 1, 0))
	if !nanTri.IsDegenerate() {
		t.Error("triangle with NaN vertex should be degenerate")
	}
}

func TestTriangleTransform(t *testing.T) {
	tri := NewTriangleForPoints(V(0, 0, 0), V(1, 0, 0), V(0, 1, 0))
	m := Translate(V(5, 0, 0))
	got := tri.Transform(m, m.NormalMatrix())
	if got.V1.Position != V(5, 0, 0) {
		t.Errorf("Transform V1 = %v, want (5,0,0)", got.V1.Position)
	}
}
