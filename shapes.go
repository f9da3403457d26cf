package raybox

import "math"

func faceForPoints(p1, p2, p3 Vector, material *Material) *Face {
	n := p2.Sub(p1).Cross(p3.Sub(p1)).Normalize()
	f := NewTriangleFace(
		Vertex{Position: p1, Normal: n},
		Vertex{Position: p2, Normal: n},
		Vertex{Position: p3, Normal: n},
	)
	f.Material = material
	return f
}

func smoothFaceForPoints(p1, p2, p3, n1, n2, n3 Vector, material *Material) *Face {
	f := NewTriangleFace(
		Vertex{Position: p1, Normal: n1},
		Vertex{Position: p2, Normal: n2},
		Vertex{Position: p3, Normal: n3},
	)
	f.Material = material
	return f
}

// NewCube builds a unit cube centered at the origin, flat-shaded.
func NewCube(material *Material) *Mesh {
	v := []Vector{
		{-1, -1, -1}, {-1, -1, 1}, {-1, 1, -1}, {-1, 1, 1},
		{1, -1, -1}, {1, -1, 1}, {1, 1, -1}, {1, 1, 1},
	}
	faces := []*Face{
		faceForPoints(v[3], v[5], v[7], material),
		faceForPoints(v[5], v[3], v[1], material),
		faceForPoints(v[0], v[6], v[4], material),
		faceForPoints(v[6], v[0], v[2], material),
		faceForPoints(v[0], v[5], v[1], material),
		faceForPoints(v[5], v[0], v[4], material),
		faceForPoints(v[5], v[6], v[7], material),
		faceForPoints(v[6], v[5], v[4], material),
		faceForPoints(v[6], v[3], v[7], material),
		faceForPoints(v[3], v[6], v[2], material),
		faceForPoints(v[0], v[3], v[2], material),
		faceForPoints(v[3], v[0], v[1], material),
	}
	mesh := NewFaceMesh(faces)
	mesh.TransformVertices(Scale(Vector{0.5, 0.5, 0.5}))
	return mesh
}

// NewCubeForBox fits a cube to an axis-aligned box.
func NewCubeForBox(box Box, material *Material) *Mesh {
	m := Translate(Vector{0.5, 0.5, 0.5})
	m = m.Scale(box.Size())
	m = m.Translate(box.Min)
	cube := NewCube(material)
	cube.TransformVertices(m)
	return cube
}

// NewCubeOutlineForBox returns the 12-edge wireframe of a box.
func NewCubeOutlineForBox(box Box) *Mesh {
	x0, y0, z0 := box.Min.X, box.Min.Y, box.Min.Z
	x1, y1, z1 := box.Max.X, box.Max.Y, box.Max.Z
	return NewLineMesh([]*Line{
		NewLineForPoints(Vector{x0, y0, z0}, Vector{x0, y0, z1}),
		NewLineForPoints(Vector{x0, y1, z0}, Vector{x0, y1, z1}),
		NewLineForPoints(Vector{x1, y0, z0}, Vector{x1, y0, z1}),
		NewLineForPoints(Vector{x1, y1, z0}, Vector{x1, y1, z1}),
		NewLineForPoints(Vector{x0, y0, z0}, Vector{x0, y1, z0}),
		NewLineForPoints(Vector{x0, y0, z1}, Vector{x0, y1, z1}),
		NewLineForPoints(Vector{x1, y0, z0}, Vector{x1, y1, z0}),
		NewLineForPoints(Vector{x1, y0, z1}, Vector{x1, y1, z1}),
		NewLineForPoints(Vector{x0, y0, z0}, Vector{x1, y0, z0}),
		NewLineForPoints(Vector{x0, y1, z0}, Vector{x1, y1, z0}),
		NewLineForPoints(Vector{x0, y0, z1}, Vector{x1, y0, z1}),
		NewLineForPoints(Vector{x0, y1, z1}, Vector{x1, y1, z1}),
	})
}

// NewSphere recursively subdivides an icosahedron, smooth-shaded with
// per-vertex normals equal to the (unit-sphere) vertex position.
func NewSphere(detail int, material *Material) *Mesh {
	var faces []*Face
	ico := NewIcosahedron(nil)
	for _, t := range ico.Triangles() {
		faces = append(faces, sphereHelper(detail, t.V1.Position, t.V2.Position, t.V3.Position, material)...)
	}
	return NewFaceMesh(faces)
}

func sphereHelper(detail int, v1, v2, v3 Vector, material *Material) []*Face {
	if detail == 0 {
		return []*Face{smoothFaceForPoints(v1, v2, v3, v1, v2, v3, material)}
	}
	v12 := v1.Add(v2).DivScalar(2).Normalize()
	v13 := v1.Add(v3).DivScalar(2).Normalize()
	v23 := v2.Add(v3).DivScalar(2).Normalize()
	var faces []*Face
	faces = append(faces, sphereHelper(detail-1, v1, v12, v13, material)...)
	faces = append(faces, sphereHelper(detail-1, v2, v23, v12, material)...)
	faces = append(faces, sphereHelper(detail-1, v3, v13, v23, material)...)
	faces = append(faces, sphereHelper(detail-1, v12, v23, v13, material)...)
	return faces
}

// NewCone builds a circular cone along Z with base radius 1 (at
// z=-0.5) and height 1 (apex at z=0.5).
func NewCone(step int, capped bool, material *Material) *Mesh {
	var faces []*Face
	for a0 := 0; a0 < 360; a0 += step {
		a1 := (a0 + step) % 360
		r0, r1 := Radians(float64(a0)), Radians(float64(a1))
		x0, y0 := math.Cos(r0), math.Sin(r0)
		x1, y1 := math.Cos(r1), math.Sin(r1)
		p00 := Vector{x0, y0, -0.5}
		p10 := Vector{x1, y1, -0.5}
		apex := Vector{0, 0, 0.5}
		faces = append(faces, faceForPoints(p00, p10, apex, material))
		if capped {
			base := Vector{0, 0, -0.5}
			faces = append(faces, faceForPoints(base, p10, p00, material))
		}
	}
	return NewFaceMesh(faces)
}

// NewIcosahedron is the base mesh NewSphere subdivides.
func NewIcosahedron(material *Material) *Mesh {
	const a = 0.8506507174597755
	const b = 0.5257312591858783
	vertices := []Vector{
		{-a, -b, 0}, {-a, b, 0}, {-b, 0, -a}, {-b, 0, a},
		{0, -a, -b}, {0, -a, b}, {0, a, -b}, {0, a, b},
		{b, 0, -a}, {b, 0, a}, {a, -b, 0}, {a, b, 0},
	}
	indices := [][3]int{
		{0, 3, 1}, {1, 3, 7}, {2, 0, 1}, {2, 1, 6}, {4, 0, 2}, {4, 5, 0},
		{5, 3, 0}, {6, 1, 7}, {6, 7, 11}, {7, 3, 9}, {8, 2, 6}, {8, 4, 2},
		{8, 6, 11}, {8, 10, 4}, {8, 11, 10}, {9, 3, 5}, {10, 5, 4}, {10, 9, 5},
		{11, 7, 9}, {11, 9, 10},
	}
	faces := make([]*Face, len(indices))
	for i, idx := range indices {
		faces[i] = faceForPoints(vertices[idx[0]], vertices[idx[1]], vertices[idx[2]], material)
	}
	return NewFaceMesh(faces)
}

// NewPlane builds a single-quad (two-triangle) plane in the XZ plane.
func NewPlane(width, height float64, material *Material) *Mesh {
	w, h := width/2, height/2
	v := []Vector{{-w, 0, -h}, {w, 0, -h}, {w, 0, h}, {-w, 0, h}}
	up := Vector{0, 1, 0}
	face := NewFace(
		Vertex{Position: v[0], Normal: up, Texture: Vector{0, 0, 0}},
		Vertex{Position: v[1], Normal: up, Texture: Vector{1, 0, 0}},
		Vertex{Position: v[2], Normal: up, Texture: Vector{1, 1, 0}},
		Vertex{Position: v[3], Normal: up, Texture: Vector{0, 1, 0}},
	)
	face.Material = material
	return NewFaceMesh([]*Face{face})
}

// NewCylinder builds a radius/height cylinder with optional caps,
// smooth-shaded on the side wall.
func NewCylinder(radius, height float64, radialSegments, heightSegments int, openEnded bool, material *Material) *Mesh {
	var faces []*Face
	vertices := make([][]Vector, heightSegments+1)
	normals := make([][]Vector, heightSegments+1)
	for y := 0; y <= heightSegments; y++ {
		vertices[y] = make([]Vector, radialSegments)
		normals[y] = make([]Vector, radialSegments)
		v := float64(y)/float64(heightSegments)*height - height/2
		for x := 0; x < radialSegments; x++ {
			u := float64(x) / float64(radialSegments) * math.Pi * 2
			vertices[y][x] = Vector{math.Cos(u) * radius, v, math.Sin(u) * radius}
			normals[y][x] = Vector{math.Cos(u), 0, math.Sin(u)}
		}
	}
	for y := 0; y < heightSegments; y++ {
		for x := 0; x < radialSegments; x++ {
			x1 := (x + 1) % radialSegments
			faces = append(faces, smoothFaceForPoints(vertices[y][x], vertices[y+1][x], vertices[y][x1], normals[y][x], normals[y+1][x], normals[y][x1], material))
			faces = append(faces, smoothFaceForPoints(vertices[y+1][x], vertices[y+1][x1], vertices[y][x1], normals[y+1][x], normals[y+1][x1], normals[y][x1], material))
		}
	}
	if !openEnded {
		topCenter := Vector{0, height / 2, 0}
		bottomCenter := Vector{0, -height / 2, 0}
		for x := 0; x < radialSegments; x++ {
			x1 := (x + 1) % radialSegments
			faces = append(faces, faceForPoints(topCenter, vertices[heightSegments][x], vertices[heightSegments][x1], material))
			faces = append(faces, faceForPoints(bottomCenter, vertices[0][x1], vertices[0][x], material))
		}
	}
	return NewFaceMesh(faces)
}

// NewTorus builds a torus in the XZ plane.
func NewTorus(radius, tubeRadius float64, radialSegments, tubularSegments int, material *Material) *Mesh {
	var faces []*Face
	vertices := make([][]Vector, radialSegments)
	normals := make([][]Vector, radialSegments)
	for i := 0; i < radialSegments; i++ {
		vertices[i] = make([]Vector, tubularSegments)
		normals[i] = make([]Vector, tubularSegments)
		u := float64(i) / float64(radialSegments) * math.Pi * 2
		for j := 0; j < tubularSegments; j++ {
			v := float64(j) / float64(tubularSegments) * math.Pi * 2
			cu, su := math.Cos(u), math.Sin(u)
			cv, sv := math.Cos(v), math.Sin(v)
			vertices[i][j] = Vector{(radius + tubeRadius*cv) * cu, tubeRadius * sv, (radius + tubeRadius*cv) * su}
			normals[i][j] = Vector{cv * cu, sv, cv * su}
		}
	}
	for i := 0; i < radialSegments; i++ {
		i1 := (i + 1) % radialSegments
		for j := 0; j < tubularSegments; j++ {
			j1 := (j + 1) % tubularSegments
			faces = append(faces, smoothFaceForPoints(vertices[i][j], vertices[i][j1], vertices[i1][j], normals[i][j], normals[i][j1], normals[i1][j], material))
			faces = append(faces, smoothFaceForPoints(vertices[i][j1], vertices[i1][j1], vertices[i1][j], normals[i][j1], normals[i1][j1], normals[i1][j], material))
		}
	}
	return NewFaceMesh(faces)
}

// NewCapsule builds an open-ended cylinder plus two full spheres of
// the same radius centred on its end circles.
func NewCapsule(radius, height float64, radialSegments, heightSegments, capSegments int, material *Material) *Mesh {
	mesh := NewEmptyMesh()
	cylinderHeight := height - 2*radius
	if cylinderHeight > 0 {
		mesh.Add(NewCylinder(radius, cylinderHeight, radialSegments, heightSegments, true, material))
	}
	top := NewSphere(capSegments, material)
	top.TransformVertices(Scale(Vector{radius, radius, radius}).Translate(Vector{0, cylinderHeight / 2, 0}))
	mesh.Add(top)
	bottom := NewSphere(capSegments, material)
	bottom.TransformVertices(Scale(Vector{radius, radius, radius}).Translate(Vector{0, -cylinderHeight / 2, 0}))
	mesh.Add(bottom)
	return mesh
}

// Subdivide splits every triangle face into four by its edge
// midpoints, carrying interpolated normals/UVs (one pass of loop-style
// subdivision without the smoothing step).
func (m *Mesh) Subdivide() *Mesh {
	var faces []*Face
	for _, f := range m.Faces {
		for _, t := range f.Triangulate() {
			mid12 := LerpVertex(t.V1, t.V2, 0.5)
			mid23 := LerpVertex(t.V2, t.V3, 0.5)
			mid31 := LerpVertex(t.V3, t.V1, 0.5)
			faces = append(faces,
				subFace(t.V1, mid12, mid31, f.Material),
				subFace(t.V2, mid23, mid12, f.Material),
				subFace(t.V3, mid31, mid23, f.Material),
				subFace(mid12, mid23, mid31, f.Material),
			)
		}
	}
	return NewFaceMesh(faces)
}

func subFace(v1, v2, v3 Vertex, material *Material) *Face {
	f := NewTriangleFace(v1, v2, v3)
	f.Material = material
	return f
}

// Tessellate recursively splits triangles whose longest edge exceeds
// maxEdgeLength, bisecting at that edge's midpoint.
func (m *Mesh) Tessellate(maxEdgeLength float64) *Mesh {
	var faces []*Face
	var split func(v1, v2, v3 Vertex, material *Material)
	split = func(v1, v2, v3 Vertex, material *Material) {
		d12 := v1.Position.Distance(v2.Position)
		d23 := v2.Position.Distance(v3.Position)
		d31 := v3.Position.Distance(v1.Position)
		max := math.Max(d12, math.Max(d23, d31))
		if max <= maxEdgeLength {
			faces = append(faces, subFace(v1, v2, v3, material))
			return
		}
		switch max {
		case d12:
			mid := LerpVertex(v1, v2, 0.5)
			split(v3, v1, mid, material)
			split(v2, v3, mid, material)
		case d23:
			mid := LerpVertex(v2, v3, 0.5)
			split(v1, v2, mid, material)
			split(v3, v1, mid, material)
		default:
			mid := LerpVertex(v3, v1, 0.5)
			split(v2, v3, mid, material)
			split(v1, v2, mid, material)
		}
	}
	for _, f := range m.Faces {
		for _, t := range f.Triangulate() {
			split(t.V1, t.V2, t.V3, f.Material)
		}
	}
	return NewFaceMesh(faces)
}

// Smooth averages the position of vertices that coincide exactly,
// iteratively, then recomputes flat per-face normals.
func (m *Mesh) Smooth(iterations int) *Mesh {
	result := m.Copy()
	for iter := 0; iter < iterations; iter++ {
		sums := make(map[Vector]Vector)
		counts := make(map[Vector]int)
		for _, f := range result.Faces {
			for _, v := range f.Vertices {
				sums[v.Position] = sums[v.Position].Add(v.Position)
				counts[v.Position]++
			}
		}
		averaged := make(map[Vector]Vector, len(sums))
		for pos, sum := range sums {
			averaged[pos] = sum.DivScalar(float64(counts[pos]))
		}
		for _, f := range result.Faces {
			for i, v := range f.Vertices {
				f.Vertices[i].Position = averaged[v.Position]
			}
		}
	}
	for _, f := range result.Faces {
		n := f.ComputedNormal()
		for i := range f.Vertices {
			f.Vertices[i].Normal = n
		}
	}
	result.dirty()
	return result
}
