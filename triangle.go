package raybox

// Triangle is the primitive the rasterizer and clipper consume.
// Faces (arbitrary polygons, §3) fan-triangulate into Triangles at
// projection time; procedural shape factories build three-vertex
// Faces directly.
type Triangle struct {
	V1, V2, V3 Vertex
}

func NewTriangle(v1, v2, v3 Vertex) *Triangle {
	return &Triangle{v1, v2, v3}
}

func NewTriangleForPoints(p1, p2, p3 Vector) *Triangle {
	t := Triangle{
		V1: Vertex{Position: p1},
		V2: Vertex{Position: p2},
		V3: Vertex{Position: p3},
	}
	n := t.Normal()
	t.V1.Normal, t.V2.Normal, t.V3.Normal = n, n, n
	return &t
}

// Normal returns the geometric (winding-derived) face normal.
func (t *Triangle) Normal() Vector {
	e1 := t.V2.Position.Sub(t.V1.Position)
	e2 := t.V3.Position.Sub(t.V1.Position)
	return e1.Cross(e2).Normalize()
}

// Area returns the triangle's area via the half cross-product magnitude.
func (t *Triangle) Area() float64 {
	e1 := t.V2.Position.Sub(t.V1.Position)
	e2 := t.V3.Position.Sub(t.V1.Position)
	return e1.Cross(e2).Length() / 2
}

func (t *Triangle) BoundingBox() Box {
	min := t.V1.Position.Min(t.V2.Position).Min(t.V3.Position)
	max := t.V1.Position.Max(t.V2.Position).Max(t.V3.Position)
	return Box{min, max}
}

// Transform applies matrix/normalMatrix to all three vertices.
func (t *Triangle) Transform(matrix, normalMatrix Matrix) *Triangle {
	return &Triangle{
		t.V1.Transform(matrix, normalMatrix),
		t.V2.Transform(matrix, normalMatrix),
		t.V3.Transform(matrix, normalMatrix),
	}
}

// ReverseWinding flips vertex order. The render passes do not call
// it: mirrored draws get the opposite backface-culling sense from
// Projector.FlipCulling (§4.C step 4 / §4.G step 2).
func (t *Triangle) ReverseWinding() *Triangle {
	return &Triangle{t.V3, t.V2, t.V1}
}

// IsDegenerate reports a zero-area or non-finite triangle, the
// condition §7 requires the pipeline to silently skip.
func (t *Triangle) IsDegenerate() bool {
	if t.V1.Position.IsDegenerate() || t.V2.Position.IsDegenerate() || t.V3.Position.IsDegenerate() {
		return true
	}
	return t.Area() < 1e-12
}

// Line is a two-point segment used for wireframe overlays and sharp-edge
// visualization (mesh.go's SharpEdges).
type Line struct {
	V1, V2 Vertex
}

func NewLineForPoints(p1, p2 Vector) *Line {
	return &Line{Vertex{Position: p1}, Vertex{Position: p2}}
}

func (l *Line) Transform(matrix Matrix) *Line {
	return &Line{
		Vertex{Position: matrix.MulPosition(l.V1.Position), Color: l.V1.Color},
		Vertex{Position: matrix.MulPosition(l.V2.Position), Color: l.V2.Color},
	}
}

func (l *Line) BoundingBox() Box {
	min := l.V1.Position.Min(l.V2.Position)
	max := l.V1.Position.Max(l.V2.Position)
	return Box{min, max}
}
