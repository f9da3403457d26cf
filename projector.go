package raybox

import "math"

// ProjectedVertex is one fan-triangulated vertex after the geometry
// stage: screen-space xy, NDC z, 1/w for perspective-correct
// interpolation, and the world-space vertex the fragment stage
// reconstructs shading inputs from.
type ProjectedVertex struct {
	ScreenX, ScreenY float64
	NDCZ             float64
	InvW             float64
	World            Vertex
}

// DepthInfo is a face's {min,max,avg} positive view-space distance,
// used for transparency sorting and shadow-frustum AABB culling.
type DepthInfo struct {
	Min, Max, Avg float64
}

// ProjectedFace is the fan-triangulated, clipped, culled, screen-space
// view of a Face the rasterizer consumes.
type ProjectedFace struct {
	Vertices    []ProjectedVertex
	WorldCenter Vector
	Normal      Vector
	Depth       DepthInfo
	Material    *Material
	FlatColor   *Color
	DoubleSided bool
}

// Triangles fan-triangulates the projected polygon the same way
// Face.Triangulate does, for the rasterizer's per-triangle entry points.
func (pf *ProjectedFace) Triangles() [][3]ProjectedVertex {
	if len(pf.Vertices) < 3 {
		return nil
	}
	out := make([][3]ProjectedVertex, 0, len(pf.Vertices)-2)
	for i := 1; i+1 < len(pf.Vertices); i++ {
		out = append(out, [3]ProjectedVertex{pf.Vertices[0], pf.Vertices[i], pf.Vertices[i+1]})
	}
	return out
}

// Projector runs §4.C's geometry stage: model/world/view transform,
// near-plane clip, backface cull, and screen mapping.
type Projector struct {
	ViewMatrix       Matrix
	ProjectionMatrix Matrix
	Width, Height    float64
	FlipCulling      bool // reflections invert the culling sense
}

func NewProjector(view, proj Matrix, width, height float64) *Projector {
	return &Projector{ViewMatrix: view, ProjectionMatrix: proj, Width: width, Height: height}
}

// ProjectMesh runs every face of a mesh through the geometry stage,
// returning the subset that survives clipping and culling.
func (p *Projector) ProjectMesh(mesh *Mesh) []*ProjectedFace {
	model := mesh.ModelMatrix()
	normalMat := mesh.NormalMatrix()
	view := p.ViewMatrix
	out := make([]*ProjectedFace, 0, len(mesh.Faces))
	for _, face := range mesh.Faces {
		if pf := p.ProjectFace(face, model, normalMat, view); pf != nil {
			out = append(out, pf)
		}
	}
	return out
}

// ProjectFace implements §4.C steps 2-5 for a single face.
func (p *Projector) ProjectFace(face *Face, model, normalMat, view Matrix) *ProjectedFace {
	if len(face.Vertices) < 3 {
		return nil
	}

	// Step 2: model -> world -> view, carrying UV/color unchanged.
	viewVerts := make([]Vertex, len(face.Vertices))
	worldVerts := make([]Vertex, len(face.Vertices))
	for i, v := range face.Vertices {
		wv := v.Transform(model, normalMat)
		worldVerts[i] = wv
		viewVerts[i] = wv.Transform(view, view.Upper3x3())
	}

	// Step 3: near clip in view space. clipPolygonNear keeps the part
	// of the polygon in front of z = -1e-5; the camera's near distance
	// is not used here.
	clipped := clipPolygonNear(viewVerts, worldVerts)
	if len(clipped.view) < 3 {
		return nil
	}

	// Step 4: backface cull on the clipped view-space polygon.
	n := polygonNormal(clipped.view)
	dot := n.Dot(clipped.view[0].Position)
	culled := dot > 0
	if p.FlipCulling {
		culled = !culled
	}
	if culled && !face.DoubleSided {
		return nil
	}

	// Step 5: project, perspective-divide, map to screen.
	pf := &ProjectedFace{
		Vertices:    make([]ProjectedVertex, len(clipped.view)),
		Material:    face.Material,
		FlatColor:   face.FlatColor,
		DoubleSided: face.DoubleSided,
	}
	minD, maxD, sumD := math.Inf(1), math.Inf(-1), 0.0
	var worldSum Vector
	for i := range clipped.view {
		vv := clipped.view[i]
		clip := p.ProjectionMatrix.MulPositionW(vv.Position)
		if clip.W == 0 || math.IsNaN(clip.W) || math.IsInf(clip.W, 0) {
			return nil
		}
		invW := 1 / clip.W
		ndcX, ndcY, ndcZ := clip.X*invW, clip.Y*invW, clip.Z*invW
		sx := (ndcX*0.5 + 0.5) * p.Width
		sy := (0.5 - ndcY*0.5) * p.Height
		pf.Vertices[i] = ProjectedVertex{
			ScreenX: sx, ScreenY: sy, NDCZ: ndcZ, InvW: invW,
			World: clipped.world[i],
		}
		d := -vv.Position.Z // positive view-space distance, view looks down -Z
		if d < minD {
			minD = d
		}
		if d > maxD {
			maxD = d
		}
		sumD += d
		worldSum = worldSum.Add(clipped.world[i].Position)
	}
	pf.Depth = DepthInfo{Min: minD, Max: maxD, Avg: sumD / float64(len(clipped.view))}
	pf.WorldCenter = worldSum.DivScalar(float64(len(clipped.view)))
	pf.Normal = face.ComputedNormal()
	if face.Normal == nil {
		pf.Normal = normalMat.MulDirection(n)
	}
	return pf
}

type clippedPolygon struct {
	view  []Vertex
	world []Vertex
}

// clipPolygonNear runs Sutherland-Hodgman in view space against the
// plane z = -near (near is folded into the caller's projector state
// via the projection matrix, so the test here uses the canonical
// z <= -epsilon near-plane the teacher's projection targets).
func clipPolygonNear(view, world []Vertex) clippedPolygon {
	const nearZ = -1e-5
	n := len(view)
	outView := make([]Vertex, 0, n+1)
	outWorld := make([]Vertex, 0, n+1)
	for i := 0; i < n; i++ {
		curV, prevV := view[i], view[(i-1+n)%n]
		curW, prevW := world[i], world[(i-1+n)%n]
		curIn := curV.Position.Z <= nearZ
		prevIn := prevV.Position.Z <= nearZ
		if curIn != prevIn {
			t := (nearZ - prevV.Position.Z) / (curV.Position.Z - prevV.Position.Z)
			outView = append(outView, LerpVertex(prevV, curV, t))
			outWorld = append(outWorld, LerpVertex(prevW, curW, t))
		}
		if curIn {
			outView = append(outView, curV)
			outWorld = append(outWorld, curW)
		}
	}
	return clippedPolygon{view: outView, world: outWorld}
}

func polygonNormal(verts []Vertex) Vector {
	e1 := verts[1].Position.Sub(verts[0].Position)
	e2 := verts[2].Position.Sub(verts[0].Position)
	return e1.Cross(e2).Normalize()
}
