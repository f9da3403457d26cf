package raybox

import "math"

const (
	shadowMinW       = 1e-5
	shadowMinNear    = 0.05
)

// ShadowMap is the per-light depth buffer of §3, plus the bias and
// filtering parameters §4.F's sampling step reads. Grounded on the
// teacher's ShadowMap (Width/Height/DepthMap/Clear/GetDepth/SetDepth),
// extended with the light-space matrices and bias knobs the source
// shadow.go left as shader fields instead of map state.
type ShadowMap struct {
	Size       int
	DepthMap   []float64 // NDC z in [-1,+1]; +Inf = empty
	LightView  Matrix
	LightProj  Matrix
	LightVP    Matrix
	LightDir   Vector // world-space direction the light casts along

	ConstantBias float64
	SlopeBias    float64
	NormalBias   float64
	NormalBiasMin float64
	TexelBias    float64
	MaxBias      float64
	PCFRadius    int
	Strength     float64

	transmission []Color // colored attenuation buffer, same dims as DepthMap
}

func NewShadowMap(size int) *ShadowMap {
	sm := &ShadowMap{
		Size:          size,
		DepthMap:      make([]float64, size*size),
		ConstantBias:  0.002,
		SlopeBias:     0.01,
		NormalBias:    0.02,
		NormalBiasMin: 0.002,
		TexelBias:     1.5,
		MaxBias:       0.05,
		PCFRadius:     1,
		Strength:      0.7,
	}
	sm.Clear()
	return sm
}

func (sm *ShadowMap) Clear() {
	for i := range sm.DepthMap {
		sm.DepthMap[i] = math.Inf(1)
	}
	if sm.transmission == nil {
		sm.transmission = make([]Color, sm.Size*sm.Size)
	}
	for i := range sm.transmission {
		sm.transmission[i] = White
	}
}

func (sm *ShadowMap) at(x, y int) (float64, bool) {
	if x < 0 || x >= sm.Size || y < 0 || y >= sm.Size {
		return 0, false
	}
	return sm.DepthMap[y*sm.Size+x], true
}

func (sm *ShadowMap) transmissionAt(x, y int) Color {
	if x < 0 || x >= sm.Size || y < 0 || y >= sm.Size {
		return White
	}
	return sm.transmission[y*sm.Size+x]
}

// SetupDirectional places the light camera per §4.F step 1: back off
// from the scene center along -dir, orthographic box sized to the
// scene radius.
func (sm *ShadowMap) SetupDirectional(dir Vector, sceneCenter Vector, radius float64) bool {
	if radius <= 0 || dir.IsDegenerate() || dir.Length() < 1e-8 {
		return false
	}
	dir = dir.Normalize()
	sm.LightDir = dir
	up := Vector{0, 1, 0}
	if math.Abs(dir.Y) > 0.999 {
		up = Vector{0, 0, 1}
	}
	eye := sceneCenter.Sub(dir.MulScalar(1.5 * radius))
	sm.LightView = LookAt(eye, sceneCenter, up)
	box := 1.2 * radius
	sm.LightProj = Orthographic(-box, box, -box, box, 0, 3*radius)
	sm.LightVP = sm.LightProj.Mul(sm.LightView)
	return sm.LightVP.Determinant() != 0
}

// SetupSpot places the light camera per §4.F step 1's spot branch.
func (sm *ShadowMap) SetupSpot(light *Light, distanceToScene, sceneRadius float64) bool {
	if light.Direction.IsDegenerate() || light.Direction.Length() < 1e-8 {
		return false
	}
	dir := light.Direction.Normalize()
	sm.LightDir = dir
	up := Vector{0, 1, 0}
	if math.Abs(dir.Y) > 0.999 {
		up = Vector{0, 0, 1}
	}
	sm.LightView = LookAt(light.Position, light.Position.Add(dir), up)
	near := math.Max(shadowMinNear, distanceToScene-sceneRadius)
	far := math.Max(near+0.1, math.Min(light.Range, distanceToScene+sceneRadius))
	fov := 2 * light.OuterCone
	sm.LightProj = Perspective(Degrees(fov), 1, near, far)
	sm.LightVP = sm.LightProj.Mul(sm.LightView)
	return sm.LightVP.Determinant() != 0
}

// ShadowSystem owns one ShadowMap per shadow-casting light, lazily
// created and dropped as lights come and go, per §3's lifecycle note.
type ShadowSystem struct {
	Size int
	maps map[*Light]*ShadowMap
}

func NewShadowSystem(size int) *ShadowSystem {
	return &ShadowSystem{Size: size, maps: make(map[*Light]*ShadowMap)}
}

func (s *ShadowSystem) mapFor(light *Light) *ShadowMap {
	sm, ok := s.maps[light]
	if !ok {
		sm = NewShadowMap(s.Size)
		s.maps[light] = sm
	}
	return sm
}

// Prune drops shadow maps for lights no longer present.
func (s *ShadowSystem) Prune(active []*Light) {
	keep := make(map[*Light]bool, len(active))
	for _, l := range active {
		keep[l] = true
	}
	for l := range s.maps {
		if !keep[l] {
			delete(s.maps, l)
		}
	}
}

// Render runs §4.F steps 2-4 for one shadow-casting light: clear,
// rasterize opaque depth with AABB-vs-frustum culling, then the
// colored-transmission pass for BLEND faces. Returns nil (and leaves
// the light unshadowed for the frame) on setup failure, per §7.
func (s *ShadowSystem) Render(light *Light, meshes []*Mesh, sceneCenter Vector, sceneRadius float64) *ShadowMap {
	sm := s.mapFor(light)
	var ok bool
	switch light.Kind {
	case LightDirectional:
		ok = sm.SetupDirectional(light.Direction, sceneCenter, sceneRadius)
	case LightSpot:
		ok = sm.SetupSpot(light, light.Position.Sub(sceneCenter).Length(), sceneRadius)
	default:
		return nil // point lights have no single-map caster in scope
	}
	if !ok {
		return nil
	}
	sm.Clear()

	frustum := NewViewFrustumFromMatrix(sm.LightVP)
	rc := newShadowRaster(sm)

	for _, mesh := range meshes {
		box := mesh.BoundingBox()
		codes := frustum.ClipCodesForBox(box)
		if TrivialReject(codes) {
			continue
		}
		model := mesh.ModelMatrix()
		normalMat := mesh.NormalMatrix()
		mvp := sm.LightVP.Mul(model)

		for _, face := range mesh.Faces {
			if face.Material != nil && face.Material.AlphaMode == AlphaBlend {
				continue
			}
			n := face.ComputedNormal()
			worldN := normalMat.MulDirection(n)
			if worldN.Dot(sm.LightDir) > 0 && !face.DoubleSided {
				continue
			}
			for _, tri := range face.Triangulate() {
				worldTri := tri.Transform(model, normalMat)
				for _, clipped := range ClipTriangleFull(worldTri, mvp) {
					rc.drawDepth(clipped, sm, mvp, face.Material)
				}
			}
		}
	}

	for _, mesh := range meshes {
		model := mesh.ModelMatrix()
		normalMat := mesh.NormalMatrix()
		mvp := sm.LightVP.Mul(model)
		for _, face := range mesh.Faces {
			if face.Material == nil || face.Material.AlphaMode != AlphaBlend {
				continue
			}
			for _, tri := range face.Triangulate() {
				worldTri := tri.Transform(model, normalMat)
				for _, clipped := range ClipTriangleFull(worldTri, mvp) {
					rc.drawTransmission(clipped, sm, mvp, face.Material)
				}
			}
		}
	}

	return sm
}

// shadowRaster rasterizes already-clip-space triangles directly into
// a ShadowMap's depth/transmission buffers, independent from the
// screen-space Context used by the main pass.
type shadowRaster struct{ size int }

func newShadowRaster(sm *ShadowMap) *shadowRaster { return &shadowRaster{size: sm.Size} }

func (r *shadowRaster) project(tri *Triangle, mvp Matrix) (p [3]struct {
	X, Y, Z, InvW float64
	V             Vertex
}, ok bool) {
	verts := [3]Vertex{tri.V1, tri.V2, tri.V3}
	for i, v := range verts {
		clip := mvp.MulPositionW(v.Position)
		if clip.W < shadowMinW {
			return p, false
		}
		invW := 1 / clip.W
		ndcX, ndcY, ndcZ := clip.X*invW, clip.Y*invW, clip.Z*invW
		sx := (ndcX*0.5 + 0.5) * float64(r.size)
		sy := (0.5 - ndcY*0.5) * float64(r.size)
		p[i].X, p[i].Y, p[i].Z, p[i].InvW, p[i].V = sx, sy, ndcZ, invW, v
	}
	return p, true
}

func (r *shadowRaster) drawDepth(tri *Triangle, sm *ShadowMap, mvp Matrix, material *Material) {
	p, ok := r.project(tri, mvp)
	if !ok {
		return
	}
	minX, maxX := ClampInt(int(math.Min(p[0].X, math.Min(p[1].X, p[2].X))), 0, r.size-1), ClampInt(int(math.Max(p[0].X, math.Max(p[1].X, p[2].X))), 0, r.size-1)
	minY, maxY := ClampInt(int(math.Min(p[0].Y, math.Min(p[1].Y, p[2].Y))), 0, r.size-1), ClampInt(int(math.Max(p[0].Y, math.Max(p[1].Y, p[2].Y))), 0, r.size-1)
	area := edgeFunction(p[0].X, p[0].Y, p[1].X, p[1].Y, p[2].X, p[2].Y)
	if area == 0 {
		return
	}
	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			w0 := edgeFunction(p[1].X, p[1].Y, p[2].X, p[2].Y, px, py)
			w1 := edgeFunction(p[2].X, p[2].Y, p[0].X, p[0].Y, px, py)
			w2 := edgeFunction(p[0].X, p[0].Y, p[1].X, p[1].Y, px, py)
			if area > 0 {
				if w0 < 0 || w1 < 0 || w2 < 0 {
					continue
				}
			} else if w0 > 0 || w1 > 0 || w2 > 0 {
				continue
			}
			b0, b1, b2 := w0/area, w1/area, w2/area
			invW := b0*p[0].InvW + b1*p[1].InvW + b2*p[2].InvW
			if invW == 0 {
				continue
			}
			z := (b0*p[0].Z*p[0].InvW + b1*p[1].Z*p[1].InvW + b2*p[2].Z*p[2].InvW) / invW

			if material != nil && material.AlphaMode == AlphaMask && material.BaseColorMap != nil {
				uv := interpolateUV(p, b0, b1, b2, invW)
				a := material.BaseColorMap.Sample(uv.X, uv.Y).A
				if a < material.AlphaCutoff {
					continue
				}
			}

			idx := y*r.size + x
			if z < sm.DepthMap[idx] {
				sm.DepthMap[idx] = z
			}
		}
	}
}

func (r *shadowRaster) drawTransmission(tri *Triangle, sm *ShadowMap, mvp Matrix, material *Material) {
	if material == nil {
		return
	}
	p, ok := r.project(tri, mvp)
	if !ok {
		return
	}
	minX, maxX := ClampInt(int(math.Min(p[0].X, math.Min(p[1].X, p[2].X))), 0, r.size-1), ClampInt(int(math.Max(p[0].X, math.Max(p[1].X, p[2].X))), 0, r.size-1)
	minY, maxY := ClampInt(int(math.Min(p[0].Y, math.Min(p[1].Y, p[2].Y))), 0, r.size-1), ClampInt(int(math.Max(p[0].Y, math.Max(p[1].Y, p[2].Y))), 0, r.size-1)
	area := edgeFunction(p[0].X, p[0].Y, p[1].X, p[1].Y, p[2].X, p[2].Y)
	if area == 0 {
		return
	}
	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			w0 := edgeFunction(p[1].X, p[1].Y, p[2].X, p[2].Y, px, py)
			w1 := edgeFunction(p[2].X, p[2].Y, p[0].X, p[0].Y, px, py)
			w2 := edgeFunction(p[0].X, p[0].Y, p[1].X, p[1].Y, px, py)
			if area > 0 {
				if w0 < 0 || w1 < 0 || w2 < 0 {
					continue
				}
			} else if w0 > 0 || w1 > 0 || w2 > 0 {
				continue
			}
			b0, b1, b2 := w0/area, w1/area, w2/area
			invW := b0*p[0].InvW + b1*p[1].InvW + b2*p[2].InvW
			if invW == 0 {
				continue
			}
			uv := interpolateUV(p, b0, b1, b2, invW)
			albedo := Color{1, 1, 1, 1}
			if material.BaseColorMap != nil {
				albedo = material.BaseColorMap.Sample(uv.X, uv.Y)
			}
			idx := y*r.size + x
			tint := albedo.MulScalar(albedo.A)
			sm.transmission[idx] = sm.transmission[idx].Mul(Color{tint.R, tint.G, tint.B, 1})
		}
	}
}

func interpolateUV(p [3]struct {
	X, Y, Z, InvW float64
	V             Vertex
}, b0, b1, b2, invW float64) Vector {
	u := (b0*p[0].V.Texture.X*p[0].InvW + b1*p[1].V.Texture.X*p[1].InvW + b2*p[2].V.Texture.X*p[2].InvW) / invW
	v := (b0*p[0].V.Texture.Y*p[0].InvW + b1*p[1].V.Texture.Y*p[1].InvW + b2*p[2].V.Texture.Y*p[2].InvW) / invW
	return Vector{u, v, 0}
}

// Sample implements §4.F's getShadowFactor(world, N) -> RGB.
func (sm *ShadowMap) Sample(world Vector, normal Vector) Color {
	cosTheta := math.Max(0, normal.Dot(sm.LightDir.Negate()))
	bias := sm.NormalBiasMin + (sm.NormalBias-sm.NormalBiasMin)*(1-cosTheta)
	offset := world.Add(normal.MulScalar(bias))

	clip := sm.LightVP.MulPositionW(offset)
	if clip.W <= shadowMinW {
		return White
	}
	invW := 1 / clip.W
	ndcX, ndcY, ndcZ := clip.X*invW, clip.Y*invW, clip.Z*invW
	if ndcX < -1 || ndcX > 1 || ndcY < -1 || ndcY > 1 || ndcZ < -1 || ndcZ > 1 {
		return White
	}
	u := ndcX*0.5 + 0.5
	v := 0.5 - ndcY*0.5
	texelBias := sm.TexelBias * 2 / float64(sm.Size)
	totalBias := math.Min(sm.MaxBias, sm.ConstantBias+sm.SlopeBias*(1-cosTheta)+texelBias)

	cx := int(u * float64(sm.Size))
	cy := int(v * float64(sm.Size))

	var lit, samples float64
	var transmission Color
	haveTransmission := false
	for dy := -sm.PCFRadius; dy <= sm.PCFRadius; dy++ {
		for dx := -sm.PCFRadius; dx <= sm.PCFRadius; dx++ {
			depth, ok := sm.at(cx+dx, cy+dy)
			if !ok {
				continue
			}
			samples++
			if ndcZ-totalBias <= depth {
				lit++
			} else {
				t := sm.transmissionAt(cx+dx, cy+dy)
				if !haveTransmission {
					transmission = t
					haveTransmission = true
				} else {
					transmission = transmission.Add(t)
				}
			}
		}
	}
	if samples == 0 {
		return White
	}
	litFraction := lit / samples
	shadowAttenuation := (1 - litFraction) * sm.Strength
	factor := 1 - shadowAttenuation
	out := Color{factor, factor, factor, 1}
	if haveTransmission {
		out = out.Mul(Color{
			1 - shadowAttenuation*(1-transmission.R),
			1 - shadowAttenuation*(1-transmission.G),
			1 - shadowAttenuation*(1-transmission.B),
			1,
		})
	}
	return out
}
