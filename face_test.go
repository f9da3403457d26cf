package raybox

import "testing"

func TestFaceComputedNormalFromWinding(t *testing.T) {
	f := NewTriangleFace(
		Vertex{Position: V(0, 0, 0)},
		Vertex{Position: V(1, 0, 0)},
		Vertex{Position: V(0, 1, 0)},
	)
	if got := f.ComputedNormal(); !approxVec(got, V(0, 0, 1), 1e-9) {
		t.Errorf("ComputedNormal = %v, want (0,0,1)", got)
	}
}

func TestFaceComputedNormalExplicit(t *testing.T) {
	f := NewTriangleFace(
		Vertex{Position: V(0, 0, 0)},
		Vertex{Position: V(1, 0, 0)},
		Vertex{Position: V(0, 1, 0)},
	)
	custom := V(1, 0, 0)
	f.Normal = &custom
	if got := f.ComputedNormal(); got != custom {
		t.Errorf("ComputedNormal should prefer explicit normal, got %v want %v", got, custom)
	}
}

func TestFaceTriangulateQuad(t *testing.T) {
	f := NewFace(
		Vertex{Position: V(0, 0, 0)},
		Vertex{Position: V(1, 0, 0)},
		Vertex{Position: V(1, 1, 0)},
		Vertex{Position: V(0, 1, 0)},
	)
	tris := f.Triangulate()
	if len(tris) != 2 {
		t.Fatalf("quad should fan-triangulate into 2 triangles, got %d", len(tris))
	}
}

func TestFaceTriangulateDegenerate(t *testing.T) {
	f := NewFace(Vertex{Position: V(0, 0, 0)}, Vertex{Position: V(1, 0, 0)})
	if got := f.Triangulate(); got != nil {
		t.Errorf("a 2-vertex face should not triangulate, got %d triangles", len(got))
	}
}

func TestFaceBoundingBox(t *testing.T) {
	f := NewTriangleFace(
		Vertex{Position: V(-1, 0, 0)},
		Vertex{Position: V(1, 2, 0)},
		Vertex{Position: V(0, -1, 3)},
	)
	box := f.BoundingBox()
	if box.Min != V(-1, -1, 0) || box.Max != V(1, 2, 3) {
		t.Errorf("BoundingBox = %v, want min(-1,-1,0) max(1,2,3)", box)
	}
}

func TestFaceReverseWinding(t *testing.T) {
	f := NewTriangleFace(
		Vertex{Position: V(0, 0, 0)},
		Vertex{Position: V(1, 0, 0)},
		Vertex{Position: V(0, 1, 0)},
	)
	n := f.ComputedNormal()
	rev := f.ReverseWinding()
	if !approxVec(rev.ComputedNormal(), n.Negate(), 1e-9) {
		t.Errorf("reversed face normal = %v, want %v", rev.ComputedNormal(), n.Negate())
	}
	if len(rev.Vertices) != len(f.Vertices) {
		t.Errorf("ReverseWinding should preserve vertex count")
	}
}

func TestFaceTransformPreservesMaterial(t *testing.T) {
	mat := NewPBRMaterial()
	f := NewTriangleFace(
		Vertex{Position: V(0, 0, 0)},
		Vertex{Position: V(1, 0, 0)},
		Vertex{Position: V(0, 1, 0)},
	)
	f.Material = mat
	m := Translate(V(1, 1, 1))
	got := f.Transform(m, m.NormalMatrix())
	if got.Material != mat {
		t.Error("Transform should carry the material reference unchanged")
	}
	if got.Vertices[0].Position != V(1, 1, 1) {
		t.Errorf("Transform should move vertex 0, got %v", got.Vertices[0].Position)
	}
}
