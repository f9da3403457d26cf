package raybox

import (
	"math"

	"github.com/fogleman/simplify"
)

// Mesh (the "Model" of §3) owns a set of polygon faces plus a
// local-space transform (translation, Euler rotation, nonuniform
// scale). Faces carry their own material reference; the mesh itself
// carries no material so multi-material meshes (as glTF primitives
// group them) are a single Mesh whose faces point at different
// Materials.
type Mesh struct {
	Faces []*Face
	Lines []*Line

	Translation Vector
	Rotation    Vector // Euler angles, radians, applied Z then Y then X
	Scale       Vector

	box    *Box
	sphere *sphere
}

type sphere struct {
	center Vector
	radius float64
}

func NewEmptyMesh() *Mesh {
	return &Mesh{Scale: Vector{1, 1, 1}}
}

func NewMesh(faces []*Face, lines []*Line) *Mesh {
	return &Mesh{Faces: faces, Lines: lines, Scale: Vector{1, 1, 1}}
}

func NewFaceMesh(faces []*Face) *Mesh {
	return NewMesh(faces, nil)
}

func NewLineMesh(lines []*Line) *Mesh {
	return NewMesh(nil, lines)
}

// Triangles flattens every face to its fan-triangulation. Procedural
// generators that only ever emit 3-vertex faces get a 1:1 mapping;
// this is also what the projector and rasterizer ultimately consume.
func (m *Mesh) Triangles() []*Triangle {
	var tris []*Triangle
	for _, f := range m.Faces {
		tris = append(tris, f.Triangulate()...)
	}
	return tris
}

func (m *Mesh) dirty() {
	m.box = nil
	m.sphere = nil
}

func (m *Mesh) Copy() *Mesh {
	faces := make([]*Face, len(m.Faces))
	copy(faces, m.Faces)
	lines := make([]*Line, len(m.Lines))
	copy(lines, m.Lines)
	c := NewMesh(faces, lines)
	c.Translation, c.Rotation, c.Scale = m.Translation, m.Rotation, m.Scale
	return c
}

// Add appends another mesh's faces and lines (local transform is NOT
// merged — callers bake b's transform in first if that's intended).
func (m *Mesh) Add(b *Mesh) {
	m.Faces = append(m.Faces, b.Faces...)
	m.Lines = append(m.Lines, b.Lines...)
	m.dirty()
}

func (m *Mesh) Volume() float64 {
	var v float64
	for _, t := range m.Triangles() {
		p1, p2, p3 := t.V1.Position, t.V2.Position, t.V3.Position
		v += p1.X*(p2.Y*p3.Z-p3.Y*p2.Z) - p2.X*(p1.Y*p3.Z-p3.Y*p1.Z) + p3.X*(p1.Y*p2.Z-p2.Y*p1.Z)
	}
	return math.Abs(v / 6)
}

func (m *Mesh) SurfaceArea() float64 {
	var a float64
	for _, t := range m.Triangles() {
		a += t.Area()
	}
	return a
}

func smoothNormalsThreshold(normal Vector, normals []Vector, threshold float64) Vector {
	result := Vector{}
	for _, x := range normals {
		if x.Dot(normal) >= threshold {
			result = result.Add(x)
		}
	}
	return result.Normalize()
}

// SmoothNormalsThreshold averages vertex normals across faces sharing
// a position, excluding neighbors whose normal diverges by more than
// the given angle (radians) — a crease-preserving smooth.
func (m *Mesh) SmoothNormalsThreshold(radians float64) {
	threshold := math.Cos(radians)
	lookup := make(map[Vector][]Vector)
	for _, f := range m.Faces {
		for _, v := range f.Vertices {
			lookup[v.Position] = append(lookup[v.Position], v.Normal)
		}
	}
	for _, f := range m.Faces {
		for i, v := range f.Vertices {
			f.Vertices[i].Normal = smoothNormalsThreshold(v.Normal, lookup[v.Position], threshold)
		}
	}
}

func (m *Mesh) SmoothNormals() {
	lookup := make(map[Vector]Vector)
	for _, f := range m.Faces {
		for _, v := range f.Vertices {
			lookup[v.Position] = lookup[v.Position].Add(v.Normal)
		}
	}
	for k, v := range lookup {
		lookup[k] = v.Normalize()
	}
	for _, f := range m.Faces {
		for i, v := range f.Vertices {
			f.Vertices[i].Normal = lookup[v.Position]
		}
	}
}

func (m *Mesh) UnitCube() Matrix {
	const r = 0.5
	return m.FitInside(Box{Vector{-r, -r, -r}, Vector{r, r, r}}, Vector{0.5, 0.5, 0.5})
}

func (m *Mesh) BiUnitCube() Matrix {
	const r = 1
	return m.FitInside(Box{Vector{-r, -r, -r}, Vector{r, r, r}}, Vector{0.5, 0.5, 0.5})
}

func (m *Mesh) MoveTo(position, anchor Vector) Matrix {
	matrix := Translate(position.Sub(m.BoundingBox().Anchor(anchor)))
	m.TransformVertices(matrix)
	return matrix
}

func (m *Mesh) Center() Matrix {
	return m.MoveTo(Vector{}, Vector{0.5, 0.5, 0.5})
}

func (m *Mesh) FitInside(box Box, anchor Vector) Matrix {
	scale := box.Size().Div(m.BoundingBox().Size()).MinComponent()
	extra := box.Size().Sub(m.BoundingBox().Size().MulScalar(scale))
	matrix := Identity()
	matrix = matrix.Translate(m.BoundingBox().Min.Negate())
	matrix = matrix.Scale(Vector{scale, scale, scale})
	matrix = matrix.Translate(box.Min.Add(extra.Mul(anchor)))
	m.TransformVertices(matrix)
	return matrix
}

// BoundingBox returns the local-space AABB of the mesh's vertex data,
// recomputed lazily and cached until the next structural change.
func (m *Mesh) BoundingBox() Box {
	if m.box == nil {
		box := EmptyBox
		for _, f := range m.Faces {
			box = box.Extend(f.BoundingBox())
		}
		for _, l := range m.Lines {
			box = box.Extend(l.BoundingBox())
		}
		m.box = &box
	}
	return *m.box
}

// BoundingSphere returns the local-space bounding sphere (center +
// radius), derived from the AABB center and its farthest vertex.
func (m *Mesh) BoundingSphere() (Vector, float64) {
	if m.sphere == nil {
		box := m.BoundingBox()
		center := box.Center()
		radius := 0.0
		for _, f := range m.Faces {
			for _, v := range f.Vertices {
				if d := v.Position.Distance(center); d > radius {
					radius = d
				}
			}
		}
		m.sphere = &sphere{center, radius}
	}
	return m.sphere.center, m.sphere.radius
}

// ModelMatrix builds T * R(Euler ZYX) * S per §4.C step 1.
func (m *Mesh) ModelMatrix() Matrix {
	rot := Rotate(Vector{0, 0, 1}, m.Rotation.Z).
		Rotate(Vector{0, 1, 0}, m.Rotation.Y).
		Rotate(Vector{1, 0, 0}, m.Rotation.X)
	return Translate(m.Translation).Mul(rot).Mul(Scale(m.Scale))
}

// NormalMatrix is the model matrix's transpose-inverse upper-3x3.
func (m *Mesh) NormalMatrix() Matrix {
	return m.ModelMatrix().NormalMatrix()
}

// TransformVertices bakes matrix permanently into the mesh's vertex
// data (used by procedural-shape helpers and fitting operations, as
// opposed to Translation/Rotation/Scale which describe a per-frame
// local transform left unevaluated until the projector runs).
func (m *Mesh) TransformVertices(matrix Matrix) {
	normalMatrix := matrix.NormalMatrix()
	for i, f := range m.Faces {
		m.Faces[i] = f.Transform(matrix, normalMatrix)
	}
	for i, l := range m.Lines {
		m.Lines[i] = l.Transform(matrix)
	}
	m.dirty()
}

func (m *Mesh) ReverseWinding() {
	for i, f := range m.Faces {
		m.Faces[i] = f.ReverseWinding()
	}
}

// Simplify reduces the mesh's triangle count to approximately factor
// of its original count, using fogleman/simplify's quadric-error mesh
// decimation rather than naive uniform sampling. factor >= 1 is a
// no-op; factor <= 0 empties the mesh.
func (m *Mesh) Simplify(factor float64) {
	if factor >= 1.0 {
		return
	}
	if factor <= 0 {
		m.Faces = nil
		m.dirty()
		return
	}

	tris := m.Triangles()
	if len(tris) == 0 {
		return
	}

	sm := simplify.NewMesh()
	indexOf := make(map[Vector]int)
	addVertex := func(p Vector) int {
		if i, ok := indexOf[p]; ok {
			return i
		}
		i := len(sm.Vertices)
		sm.Vertices = append(sm.Vertices, simplify.Vector{X: p.X, Y: p.Y, Z: p.Z})
		indexOf[p] = i
		return i
	}
	// material/normal/UV data cannot survive quadric collapse, so the
	// simplifier operates on raw positions and the result is rebuilt
	// as flat-shaded faces carrying the first face's material.
	var material *Material
	if len(m.Faces) > 0 {
		material = m.Faces[0].Material
	}
	for _, t := range tris {
		i1 := addVertex(t.V1.Position)
		i2 := addVertex(t.V2.Position)
		i3 := addVertex(t.V3.Position)
		sm.Triangles = append(sm.Triangles, simplify.Triangle{V1: i1, V2: i2, V3: i3})
	}

	targetCount := int(float64(len(sm.Triangles)) * factor)
	if targetCount < 1 {
		targetCount = 1
	}
	sm = sm.SimplifyMesh(targetCount, 7, false)

	faces := make([]*Face, 0, len(sm.Triangles))
	for _, t := range sm.Triangles {
		p1 := sm.Vertices[t.V1]
		p2 := sm.Vertices[t.V2]
		p3 := sm.Vertices[t.V3]
		v1 := Vector{p1.X, p1.Y, p1.Z}
		v2 := Vector{p2.X, p2.Y, p2.Z}
		v3 := Vector{p3.X, p3.Y, p3.Z}
		n := v2.Sub(v1).Cross(v3.Sub(v1)).Normalize()
		f := NewTriangleFace(
			Vertex{Position: v1, Normal: n},
			Vertex{Position: v2, Normal: n},
			Vertex{Position: v3, Normal: n},
		)
		f.Material = material
		faces = append(faces, f)
	}
	m.Faces = faces
	m.dirty()
}

// SplitFaces recursively subdivides any triangular face whose longest
// edge exceeds maxEdgeLength, used by tessellation and displacement
// workflows. Non-triangular faces are left as-is.
func (m *Mesh) SplitFaces(maxEdgeLength float64) {
	var faces []*Face

	var split func(v1, v2, v3 Vertex)
	split = func(v1, v2, v3 Vertex) {
		p1, p2, p3 := v1.Position, v2.Position, v3.Position
		d12, d23, d31 := p1.Distance(p2), p2.Distance(p3), p3.Distance(p1)
		max := math.Max(d12, math.Max(d23, d31))
		if max <= maxEdgeLength {
			faces = append(faces, NewTriangleFace(v1, v2, v3))
			return
		}
		switch max {
		case d12:
			v := InterpolateVertexes(v1, v2, v3, Vector{0.5, 0.5, 0})
			split(v3, v1, v)
			split(v2, v3, v)
		case d23:
			v := InterpolateVertexes(v1, v2, v3, Vector{0, 0.5, 0.5})
			split(v1, v2, v)
			split(v3, v1, v)
		default:
			v := InterpolateVertexes(v1, v2, v3, Vector{0.5, 0, 0.5})
			split(v2, v3, v)
			split(v1, v2, v)
		}
	}

	for _, f := range m.Faces {
		if len(f.Vertices) != 3 {
			faces = append(faces, f)
			continue
		}
		split(f.Vertices[0], f.Vertices[1], f.Vertices[2])
	}

	m.Faces = faces
	m.dirty()
}

// SharpEdges returns a line mesh of every triangle edge whose two
// adjacent face normals diverge by more than angleThreshold radians.
func (m *Mesh) SharpEdges(angleThreshold float64) *Mesh {
	type edge struct{ A, B Vector }
	makeEdge := func(a, b Vector) edge {
		if a.Less(b) {
			return edge{a, b}
		}
		return edge{b, a}
	}

	var lines []*Line
	other := make(map[edge]Vector) // edge -> neighboring face normal
	for _, t := range m.Triangles() {
		p1, p2, p3 := t.V1.Position, t.V2.Position, t.V3.Position
		n := t.Normal()
		for _, e := range []edge{makeEdge(p1, p2), makeEdge(p2, p3), makeEdge(p3, p1)} {
			if u, ok := other[e]; ok {
				if a := math.Acos(Clamp(n.Dot(u), -1, 1)); a > angleThreshold {
					lines = append(lines, NewLineForPoints(e.A, e.B))
				}
			}
			other[e] = n
		}
	}
	return NewLineMesh(lines)
}
