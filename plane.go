package raybox

import "math"

// Plane is n·p + d = 0, with n assumed unit length after Normalize.
type Plane struct {
	Normal Vector
	D      float64
}

func NewPlane(normal Vector, d float64) Plane {
	return Plane{normal, d}
}

// PlaneFromPointNormal builds a plane through point p with the given normal.
func PlaneFromPointNormal(p, normal Vector) Plane {
	n := normal.Normalize()
	return Plane{n, -n.Dot(p)}
}

func (p Plane) Normalize() Plane {
	l := p.Normal.Length()
	if l == 0 {
		return p
	}
	return Plane{p.Normal.DivScalar(l), p.D / l}
}

// Distance returns the signed point-distance n·p + d.
func (p Plane) Distance(point Vector) float64 {
	return p.Normal.Dot(point) + p.D
}

// ReflectionMatrix returns R = I - 2*n*n^T with the translation column
// set so that points on the plane map to themselves: R·R = I.
func (p Plane) ReflectionMatrix() Matrix {
	n := p.Normal
	d := p.D
	return Matrix{
		1 - 2*n.X*n.X, -2 * n.X * n.Y, -2 * n.X * n.Z, -2 * d * n.X,
		-2 * n.Y * n.X, 1 - 2*n.Y*n.Y, -2 * n.Y * n.Z, -2 * d * n.Y,
		-2 * n.Z * n.X, -2 * n.Z * n.Y, 1 - 2*n.Z*n.Z, -2 * d * n.Z,
		0, 0, 0, 1,
	}
}

// Transform maps a world-space plane into another space (e.g. camera
// space) given the transform matrix's normal matrix and a point on
// the plane transformed by the full matrix.
func (p Plane) Transform(m Matrix) Plane {
	point := p.Normal.MulScalar(-p.D)
	worldPoint := m.MulPosition(point)
	worldNormal := m.NormalMatrix().MulDirection(p.Normal)
	return PlaneFromPointNormal(worldPoint, worldNormal)
}

// ViewFrustum holds the six outward-facing planes of a camera's
// clip volume, used for coarse mesh/shadow-caster culling.
type ViewFrustum struct {
	Planes [6]Plane
}

// NewViewFrustumFromMatrix extracts the six frustum planes from a
// view-projection matrix by adding/subtracting its rows (Gribb-Hartmann).
func NewViewFrustumFromMatrix(vp Matrix) ViewFrustum {
	rows := [4][4]float64{
		{vp.X00, vp.X01, vp.X02, vp.X03},
		{vp.X10, vp.X11, vp.X12, vp.X13},
		{vp.X20, vp.X21, vp.X22, vp.X23},
		{vp.X30, vp.X31, vp.X32, vp.X33},
	}
	build := func(a, b [4]float64, sign float64) Plane {
		var r [4]float64
		for i := range r {
			r[i] = a[i] + sign*b[i]
		}
		p := Plane{Vector{r[0], r[1], r[2]}, r[3]}
		return p.Normalize()
	}
	var f ViewFrustum
	f.Planes[0] = build(rows[3], rows[0], 1)  // left
	f.Planes[1] = build(rows[3], rows[0], -1) // right
	f.Planes[2] = build(rows[3], rows[1], 1)  // bottom
	f.Planes[3] = build(rows[3], rows[1], -1) // top
	f.Planes[4] = build(rows[3], rows[2], 1)  // near
	f.Planes[5] = build(rows[3], rows[2], -1) // far
	return f
}

// IntersectsBox reports whether box is at least partially inside the
// frustum, using the standard "most negative corner" rejection test.
func (f ViewFrustum) IntersectsBox(box Box) bool {
	for _, plane := range f.Planes {
		p := Vector{
			pick(plane.Normal.X >= 0, box.Max.X, box.Min.X),
			pick(plane.Normal.Y >= 0, box.Max.Y, box.Min.Y),
			pick(plane.Normal.Z >= 0, box.Max.Z, box.Min.Z),
		}
		if plane.Distance(p) < 0 {
			return false
		}
	}
	return true
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}

// ClipCodesForBox computes the Gribb-Hartmann outside-plane bitmask
// for each of a box's eight corners, used by the shadow subsystem's
// AABB-vs-frustum trivial-reject test: when every corner shares at
// least one outside plane bit, the box is entirely excluded.
func (f ViewFrustum) ClipCodesForBox(box Box) []uint8 {
	corners := [8]Vector{
		{box.Min.X, box.Min.Y, box.Min.Z}, {box.Max.X, box.Min.Y, box.Min.Z},
		{box.Min.X, box.Max.Y, box.Min.Z}, {box.Max.X, box.Max.Y, box.Min.Z},
		{box.Min.X, box.Min.Y, box.Max.Z}, {box.Max.X, box.Min.Y, box.Max.Z},
		{box.Min.X, box.Max.Y, box.Max.Z}, {box.Max.X, box.Max.Y, box.Max.Z},
	}
	codes := make([]uint8, 8)
	for i, c := range corners {
		var code uint8
		for j, plane := range f.Planes {
			if plane.Distance(c) < 0 {
				code |= 1 << uint(j)
			}
		}
		codes[i] = code
	}
	return codes
}

// TrivialReject reports whether all eight per-corner codes share a
// common outside-plane bit, meaning the box lies entirely on the
// excluded side of at least one frustum plane.
func TrivialReject(codes []uint8) bool {
	var common uint8 = math.MaxUint8
	for _, c := range codes {
		common &= c
	}
	return common != 0
}
