package raybox

// clipPlane identifies one of the six canonical clip-space half-spaces
// a homogeneous coordinate must satisfy to be inside the view volume:
// -w <= x <= w, -w <= y <= w, -w <= z <= w (right-handed clip space,
// matching Frustum/Perspective in matrix.go).
type clipPlane int

const (
	clipLeft clipPlane = iota
	clipRight
	clipBottom
	clipTop
	clipNear
	clipFar
)

// distance returns the signed distance of a clip-space vertex from
// the named plane; >=0 means inside.
func (p clipPlane) distance(v VectorW) float64 {
	switch p {
	case clipLeft:
		return v.W + v.X
	case clipRight:
		return v.W - v.X
	case clipBottom:
		return v.W + v.Y
	case clipTop:
		return v.W - v.Y
	case clipNear:
		return v.W + v.Z
	case clipFar:
		return v.W - v.Z
	default:
		return 0
	}
}

// clipVertex pairs a transformed vertex with its already-computed
// clip-space position, so repeated plane passes don't re-derive it.
type clipVertex struct {
	Vertex Vertex
	Clip   VectorW
}

// clipAgainstPlane runs one Sutherland-Hodgman pass, walking the
// polygon edges and emitting intersection vertices wherever an edge
// crosses the plane.
func clipAgainstPlane(poly []clipVertex, plane clipPlane) []clipVertex {
	if len(poly) == 0 {
		return nil
	}
	out := make([]clipVertex, 0, len(poly)+1)
	for i := range poly {
		cur := poly[i]
		prev := poly[(i-1+len(poly))%len(poly)]
		curIn := plane.distance(cur.Clip) >= 0
		prevIn := plane.distance(prev.Clip) >= 0
		if curIn != prevIn {
			dPrev := plane.distance(prev.Clip)
			dCur := plane.distance(cur.Clip)
			t := dPrev / (dPrev - dCur)
			out = append(out, clipVertex{
				Vertex: LerpVertex(prev.Vertex, cur.Vertex, t),
				Clip:   prev.Clip.Lerp(cur.Clip, t),
			})
		}
		if curIn {
			out = append(out, cur)
		}
	}
	return out
}

// ClipTriangleNear clips a triangle against only the near plane, the
// single pass §4.C's geometry stage performs before screen mapping
// (far/left/right/top/bottom are left to the rasterizer's
// scissor/viewport test). Returns 0, 1 or 2 triangles (fan-split when
// clipping turns the triangle into a quad), or nil when fully culled.
func ClipTriangleNear(tri *Triangle, mvp Matrix) []*Triangle {
	poly := make([]clipVertex, 3)
	verts := [3]Vertex{tri.V1, tri.V2, tri.V3}
	for i, v := range verts {
		poly[i] = clipVertex{Vertex: v, Clip: mvp.MulPositionW(v.Position)}
	}
	clipped := clipAgainstPlane(poly, clipNear)
	if len(clipped) < 3 {
		return nil
	}
	out := make([]*Triangle, 0, len(clipped)-2)
	for i := 1; i+1 < len(clipped); i++ {
		out = append(out, NewTriangle(clipped[0].Vertex, clipped[i].Vertex, clipped[i+1].Vertex))
	}
	return out
}

// ClipTriangleFull runs all six planes, used by §4.F's shadow pass to
// clip casters fully into light clip space before rasterizing into
// the shadow map.
func ClipTriangleFull(tri *Triangle, mvp Matrix) []*Triangle {
	poly := make([]clipVertex, 3)
	verts := [3]Vertex{tri.V1, tri.V2, tri.V3}
	for i, v := range verts {
		poly[i] = clipVertex{Vertex: v, Clip: mvp.MulPositionW(v.Position)}
	}
	planes := [6]clipPlane{clipNear, clipFar, clipLeft, clipRight, clipBottom, clipTop}
	for _, p := range planes {
		poly = clipAgainstPlane(poly, p)
		if len(poly) == 0 {
			return nil
		}
	}
	if len(poly) < 3 {
		return nil
	}
	out := make([]*Triangle, 0, len(poly)-2)
	for i := 1; i+1 < len(poly); i++ {
		out = append(out, NewTriangle(poly[0].Vertex, poly[i].Vertex, poly[i+1].Vertex))
	}
	return out
}
