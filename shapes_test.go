package raybox

import (
	"math"
	"testing"
)

func TestNewCubeBoundingBox(t *testing.T) {
	m := NewCube(nil)
	box := m.BoundingBox()
	size := box.Size()
	if math.Abs(size.X-1) > 1e-6 || math.Abs(size.Y-1) > 1e-6 || math.Abs(size.Z-1) > 1e-6 {
		t.Errorf("NewCube bounding box size = %v, want (1,1,1)", size)
	}
}

func TestNewCubeHasSixFacesWorthOfTriangles(t *testing.T) {
	m := NewCube(nil)
	tris := m.Triangles()
	if len(tris) != 12 {
		t.Errorf("cube should fan-triangulate to 12 triangles, got %d", len(tris))
	}
}

func TestNewSphereVerticesOnUnitSphere(t *testing.T) {
	m := NewSphere(2, nil)
	for _, f := range m.Faces {
		for _, v := range f.Vertices {
			if math.Abs(v.Position.Length()-1) > 1e-6 {
				t.Errorf("sphere vertex %v should lie at radius 1, got %v", v.Position, v.Position.Length())
			}
		}
	}
}

func TestNewIcosahedronIsNonEmpty(t *testing.T) {
	m := NewIcosahedron(nil)
	if len(m.Faces) == 0 {
		t.Error("icosahedron should produce faces")
	}
}

func TestNewPlaneIsFlat(t *testing.T) {
	m := NewPlane(2, 3, nil)
	for _, f := range m.Faces {
		for _, v := range f.Vertices {
			if v.Position.Y != 0 {
				t.Errorf("plane vertex should lie at y=0, got %v", v.Position)
			}
		}
	}
}

func TestNewCylinderBoundingBoxHeight(t *testing.T) {
	m := NewCylinder(1, 4, 8, 1, false, nil)
	box := m.BoundingBox()
	if math.Abs(box.Size().Y-4) > 1e-6 {
		t.Errorf("cylinder height = %v, want 4", box.Size().Y)
	}
}

func TestSubdivideIncreasesTriangleCount(t *testing.T) {
	m := NewCube(nil)
	before := len(m.Triangles())
	sub := m.Subdivide()
	after := len(sub.Triangles())
	if after <= before {
		t.Errorf("Subdivide should increase triangle count: before %d after %d", before, after)
	}
}

func TestTessellateRespectsMaxEdgeLength(t *testing.T) {
	m := NewFaceMesh([]*Face{
		NewTriangleFace(
			Vertex{Position: V(0, 0, 0)},
			Vertex{Position: V(10, 0, 0)},
			Vertex{Position: V(0, 10, 0)},
		),
	})
	out := m.Tessellate(2)
	if len(out.Faces) <= 1 {
		t.Errorf("Tessellate should subdivide a large triangle, got %d faces", len(out.Faces))
	}
}
