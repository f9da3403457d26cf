package raybox

// Vertex is the unit of geometry the rasterizer and clipper operate
// on. Output is a homogeneous position that LerpVertex carries along
// with the other attributes; the projector does not set it, and the
// rasterizer's perspective-correct interpolation reads 1/w from
// ProjectedVertex instead.
type Vertex struct {
	Position Vector
	Normal   Vector
	Texture  Vector // UV stored in X,Y; Z unused
	Tangent  VectorW
	Color    Color
	Output   VectorW
}

// Transform applies a position/normal/tangent transform, carrying UV
// and Color unchanged. normalMatrix should be matrix.NormalMatrix()
// of the same transform, precomputed once per mesh/face rather than
// per vertex.
func (v Vertex) Transform(matrix, normalMatrix Matrix) Vertex {
	v.Position = matrix.MulPosition(v.Position)
	if v.Normal != (Vector{}) {
		v.Normal = normalMatrix.MulDirection(v.Normal)
	}
	if v.Tangent != (VectorW{}) {
		t := normalMatrix.MulDirection(Vector{v.Tangent.X, v.Tangent.Y, v.Tangent.Z})
		v.Tangent = VectorW{t.X, t.Y, t.Z, v.Tangent.W}
	}
	return v
}

// InterpolateVertexes blends three vertices by barycentric weights
// bary (which must sum to 1). Mesh.SplitFaces uses it with two of the
// three weights nonzero to make edge midpoints. Output is not blended.
func InterpolateVertexes(v1, v2, v3 Vertex, bary Vector) Vertex {
	b0, b1, b2 := bary.X, bary.Y, bary.Z
	pos := v1.Position.MulScalar(b0).Add(v2.Position.MulScalar(b1)).Add(v3.Position.MulScalar(b2))
	normal := v1.Normal.MulScalar(b0).Add(v2.Normal.MulScalar(b1)).Add(v3.Normal.MulScalar(b2))
	tex := v1.Texture.MulScalar(b0).Add(v2.Texture.MulScalar(b1)).Add(v3.Texture.MulScalar(b2))
	tangent := v1.Tangent.MulScalar(b0).Add(v2.Tangent.MulScalar(b1)).Add(v3.Tangent.MulScalar(b2))
	color := v1.Color.MulScalar(b0).Add(v2.Color.MulScalar(b1)).Add(v3.Color.MulScalar(b2))
	return Vertex{
		Position: pos,
		Normal:   normal,
		Texture:  tex,
		Tangent:  tangent,
		Color:    color,
	}
}

// LerpVertex linearly interpolates two vertices at parameter t,
// used when splitting an edge during clipping.
func LerpVertex(a, b Vertex, t float64) Vertex {
	return Vertex{
		Position: a.Position.Lerp(b.Position, t),
		Normal:   a.Normal.Lerp(b.Normal, t),
		Texture:  a.Texture.Lerp(b.Texture, t),
		Tangent:  a.Tangent.Lerp(b.Tangent, t),
		Color:    a.Color.Lerp(b.Color, t),
		Output:   a.Output.Lerp(b.Output, t),
	}
}
