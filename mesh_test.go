package raybox

import (
	"math"
	"testing"
)

func unitTriangleFace() *Face {
	return NewTriangleFace(
		Vertex{Position: V(0, 0, 0)},
		Vertex{Position: V(1, 0, 0)},
		Vertex{Position: V(0, 1, 0)},
	)
}

func TestMeshTriangles(t *testing.T) {
	m := NewFaceMesh([]*Face{unitTriangleFace()})
	tris := m.Triangles()
	if len(tris) != 1 {
		t.Fatalf("expected 1 triangle, got %d", len(tris))
	}
}

func TestMeshBoundingBox(t *testing.T) {
	m := NewFaceMesh([]*Face{unitTriangleFace()})
	box := m.BoundingBox()
	if box.Min != V(0, 0, 0) || box.Max != V(1, 1, 0) {
		t.Errorf("BoundingBox = %v, want min(0,0,0) max(1,1,0)", box)
	}
}

func TestMeshBoundingBoxCachedUntilDirty(t *testing.T) {
	m := NewFaceMesh([]*Face{unitTriangleFace()})
	_ = m.BoundingBox()
	m.Add(NewFaceMesh([]*Face{
		NewTriangleFace(
			Vertex{Position: V(5, 5, 5)},
			Vertex{Position: V(6, 5, 5)},
			Vertex{Position: V(5, 6, 5)},
		),
	}))
	box := m.BoundingBox()
	if box.Max != V(6, 6, 5) {
		t.Errorf("BoundingBox after Add should reflect new faces, got %v", box)
	}
}

func TestMeshVolumeOfCube(t *testing.T) {
	m := NewFaceMesh(nil)
	for _, f := range cubeFaces(1) {
		m.Faces = append(m.Faces, f)
	}
	if got := m.Volume(); math.Abs(got-1) > 1e-6 {
		t.Errorf("Volume of unit cube = %v, want ~1", got)
	}
}

// cubeFaces builds 12 triangle faces forming an axis-aligned cube
// centered at the origin with the given side length, used only to
// exercise Mesh's triangle-consuming operations.
func cubeFaces(side float64) []*Face {
	r := side / 2
	corners := [8]Vector{
		{-r, -r, -r}, {r, -r, -r}, {r, r, -r}, {-r, r, -r},
		{-r, -r, r}, {r, -r, r}, {r, r, r}, {-r, r, r},
	}
	quad := func(a, b, c, d int) []*Face {
		v := func(i int) Vertex { return Vertex{Position: corners[i]} }
		return []*Face{
			NewTriangleFace(v(a), v(b), v(c)),
			NewTriangleFace(v(a), v(c), v(d)),
		}
	}
	var faces []*Face
	faces = append(faces, quad(0, 1, 2, 3)...) // back
	faces = append(faces, quad(4, 7, 6, 5)...) // front
	faces = append(faces, quad(0, 4, 5, 1)...) // bottom
	faces = append(faces, quad(3, 2, 6, 7)...) // top
	faces = append(faces, quad(0, 3, 7, 4)...) // left
	faces = append(faces, quad(1, 5, 6, 2)...) // right
	return faces
}

func TestMeshModelMatrixIdentityByDefault(t *testing.T) {
	m := NewEmptyMesh()
	if got := m.ModelMatrix(); got != Identity() {
		t.Errorf("default ModelMatrix = %v, want Identity", got)
	}
}

func TestMeshTransformVerticesBakesTransform(t *testing.T) {
	m := NewFaceMesh([]*Face{unitTriangleFace()})
	m.TransformVertices(Translate(V(10, 0, 0)))
	box := m.BoundingBox()
	if box.Min.X != 10 {
		t.Errorf("TransformVertices should bake translation, box = %v", box)
	}
}

func TestMeshReverseWinding(t *testing.T) {
	m := NewFaceMesh([]*Face{unitTriangleFace()})
	before := m.Triangles()[0].Normal()
	m.ReverseWinding()
	after := m.Triangles()[0].Normal()
	if !approxVec(after, before.Negate(), 1e-9) {
		t.Errorf("ReverseWinding should flip the normal: before %v after %v", before, after)
	}
}

func TestMeshSimplifyNoOpAboveOne(t *testing.T) {
	m := NewFaceMesh([]*Face{unitTriangleFace()})
	before := len(m.Faces)
	m.Simplify(1.5)
	if len(m.Faces) != before {
		t.Errorf("Simplify(>=1) should be a no-op, got %d faces want %d", len(m.Faces), before)
	}
}

func TestMeshSimplifyZeroEmptiesMesh(t *testing.T) {
	m := NewFaceMesh([]*Face{unitTriangleFace()})
	m.Simplify(0)
	if len(m.Faces) != 0 {
		t.Errorf("Simplify(0) should empty the mesh, got %d faces", len(m.Faces))
	}
}

func TestMeshSplitFacesRespectsMaxEdge(t *testing.T) {
	m := NewFaceMesh([]*Face{
		NewTriangleFace(
			Vertex{Position: V(0, 0, 0)},
			Vertex{Position: V(10, 0, 0)},
			Vertex{Position: V(0, 10, 0)},
		),
	})
	m.SplitFaces(3)
	for _, f := range m.Faces {
		vs := f.Vertices
		d1 := vs[0].Position.Distance(vs[1].Position)
		d2 := vs[1].Position.Distance(vs[2].Position)
		d3 := vs[2].Position.Distance(vs[0].Position)
		if d1 > 3.01 || d2 > 3.01 || d3 > 3.01 {
			t.Errorf("split face has an edge longer than max: %v/%v/%v", d1, d2, d3)
		}
	}
	if len(m.Faces) <= 1 {
		t.Errorf("expected subdivision to produce multiple faces, got %d", len(m.Faces))
	}
}

func TestMeshCopyIsIndependent(t *testing.T) {
	m := NewFaceMesh([]*Face{unitTriangleFace()})
	c := m.Copy()
	c.Faces[0] = unitTriangleFace() // replace slice entry, not mutate shared slice
	if m.Faces[0] == c.Faces[0] {
		t.Error("Copy should allow independent face slice mutation")
	}
}
