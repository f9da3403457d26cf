package raybox

// Face is an ordered polygon of three or more vertices, the unit a
// mesh loader or procedural generator actually produces. The
// rasterizer only ever sees triangles, so Triangulate fan-splits the
// polygon about its first vertex — correct for the convex polygons
// every loader and generator in this codebase emits.
type Face struct {
	Vertices     []Vertex
	Normal       *Vector
	Material     *Material
	FlatColor    *Color
	DoubleSided  bool
}

func NewFace(vertices ...Vertex) *Face {
	return &Face{Vertices: vertices}
}

// NewTriangleFace builds a three-vertex face. It sets no face normal;
// ComputedNormal derives one from the winding when asked.
func NewTriangleFace(v1, v2, v3 Vertex) *Face {
	f := &Face{Vertices: []Vertex{v1, v2, v3}}
	return f
}

// ComputedNormal returns the explicit face normal if set, otherwise
// derives it from the winding of the first three vertices.
func (f *Face) ComputedNormal() Vector {
	if f.Normal != nil {
		return *f.Normal
	}
	if len(f.Vertices) < 3 {
		return Vector{}
	}
	e1 := f.Vertices[1].Position.Sub(f.Vertices[0].Position)
	e2 := f.Vertices[2].Position.Sub(f.Vertices[0].Position)
	return e1.Cross(e2).Normalize()
}

// Triangulate fan-triangulates the polygon about vertex 0. A face
// with fewer than 3 vertices yields no triangles (degenerate, §7).
func (f *Face) Triangulate() []*Triangle {
	if len(f.Vertices) < 3 {
		return nil
	}
	tris := make([]*Triangle, 0, len(f.Vertices)-2)
	v0 := f.Vertices[0]
	for i := 1; i+1 < len(f.Vertices); i++ {
		tris = append(tris, NewTriangle(v0, f.Vertices[i], f.Vertices[i+1]))
	}
	return tris
}

func (f *Face) BoundingBox() Box {
	if len(f.Vertices) == 0 {
		return EmptyBox
	}
	box := Box{f.Vertices[0].Position, f.Vertices[0].Position}
	for _, v := range f.Vertices[1:] {
		box = box.Extend(Box{v.Position, v.Position})
	}
	return box
}

// Transform applies a position/normal/tangent transform to every vertex.
func (f *Face) Transform(matrix, normalMatrix Matrix) *Face {
	verts := make([]Vertex, len(f.Vertices))
	for i, v := range f.Vertices {
		verts[i] = v.Transform(matrix, normalMatrix)
	}
	nf := &Face{Vertices: verts, Material: f.Material, FlatColor: f.FlatColor, DoubleSided: f.DoubleSided}
	if f.Normal != nil {
		n := normalMatrix.MulDirection(*f.Normal)
		nf.Normal = &n
	}
	return nf
}

// ReverseWinding reverses vertex order (flips the culling sense).
func (f *Face) ReverseWinding() *Face {
	verts := make([]Vertex, len(f.Vertices))
	for i, v := range f.Vertices {
		verts[len(verts)-1-i] = v
	}
	nf := *f
	nf.Vertices = verts
	return &nf
}
