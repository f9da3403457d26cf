package raybox

import "math"

// ShadingContext is the read-only context passed into shading,
// replacing the teacher's ad-hoc shader fields (CameraPosition,
// LightDirection, ...) with one bundle per §4.E.
type ShadingContext struct {
	CameraPosition Vector
	Lights         []*Light
	ShadowsEnabled bool
	SHEnabled      bool
	SH             SHCoefficients
	Gamma          float64
	WorldMatrix    Matrix
	ShadowMaps     map[*Light]*ShadowMap
	Transmission   map[*Light]*Context // per-light transmission buffer, see shadow.go

	// Reflective materials sample the plane-keyed buffer matching their
	// own Material.Mirror under their own screen coordinates (§4.G step 3).
	ReflectionBuffers        map[string]*ReflectionBuffer
	ScreenWidth, ScreenHeight float64
}

func (ctx *ShadingContext) shadowFactor(light *Light, world Vertex, normal Vector) Color {
	if !ctx.ShadowsEnabled {
		return White
	}
	sm := ctx.ShadowMaps[light]
	if sm == nil {
		return White
	}
	return sm.Sample(world.Position, normal)
}

// SurfaceKind discriminates the Evaluator's output, mirroring
// Material's Kind but collapsed to what the lighting strategy needs.
type SurfaceKind int

const (
	SurfacePBR SurfaceKind = iota
	SurfacePhong
	SurfaceUnlit
)

// Surface is everything the lighting strategy needs, already linear
// and with all texture channels resolved — §4.E's Evaluator output.
type Surface struct {
	Kind      SurfaceKind
	Albedo    Color
	Normal    Vector
	Opacity   float64
	Emissive  Color
	EmissiveIntensity float64

	// PBR.
	Roughness   float64
	Metalness   float64
	F0          float64
	IOR         float64
	Occlusion   float64
	Clearcoat   ClearcoatParams
	Sheen       SheenParams
	Transmission TransmissionParams

	// Phong.
	Diffuse   Color
	Ambient   Color
	Specular  Color
	Shininess float64
}

// EvaluateMaterial implements the Material Evaluator: samples every
// map, applies glTF channel conventions, reconstructs the shading
// normal via TBN, and enforces the alpha mode.
func EvaluateMaterial(m *Material, v Vertex) (*Surface, bool) {
	if m == nil {
		return &Surface{Kind: SurfaceUnlit, Albedo: White, Opacity: 1}, true
	}

	albedo := m.Albedo
	if m.Kind == MaterialPhong || m.Kind == MaterialGouraud {
		albedo = m.Diffuse
	}
	if m.BaseColorMap != nil {
		albedo = albedo.Mul(m.BaseColorMap.Decoded(v.Texture.X, v.Texture.Y))
	}
	opacity := albedo.A * m.Opacity

	switch m.AlphaMode {
	case AlphaMask:
		if opacity < m.AlphaCutoff {
			return nil, false
		}
	case AlphaOpaque:
		opacity = 1
	}

	normal := shadingNormal(m, v)

	surf := &Surface{
		Normal:  normal,
		Albedo:  albedo,
		Opacity: opacity,
	}

	switch m.Kind {
	case MaterialUnlit:
		surf.Kind = SurfaceUnlit

	case MaterialPhong, MaterialGouraud:
		surf.Kind = SurfacePhong
		surf.Diffuse = albedo
		surf.Ambient = m.Ambient
		surf.Specular = m.Specular
		surf.Shininess = m.Shininess

	default: // MaterialPBR, MaterialBasic
		surf.Kind = SurfacePBR
		roughness, metalness := m.Roughness, m.Metalness
		if m.MetallicRoughnessMap != nil {
			mr := m.MetallicRoughnessMap.Sample(v.Texture.X, v.Texture.Y)
			metalness *= mr.B
			roughness *= mr.G
		}
		occlusion := 1.0
		if m.OcclusionMap != nil {
			o := m.OcclusionMap.Sample(v.Texture.X, v.Texture.Y)
			occlusion = 1 - (1-o.R)*m.OcclusionStrength
		}
		emissive := m.Emissive
		if m.EmissiveMap != nil {
			emissive = emissive.Mul(m.EmissiveMap.Decoded(v.Texture.X, v.Texture.Y))
		}
		surf.Roughness = Clamp(roughness, 0.02, 1)
		surf.Metalness = Clamp(metalness, 0, 1)
		surf.F0 = m.F0()
		surf.IOR = m.IOR
		surf.Occlusion = occlusion
		surf.Emissive = emissive
		surf.EmissiveIntensity = m.EmissiveIntensity
		surf.Clearcoat = m.Clearcoat
		surf.Sheen = m.Sheen
		surf.Transmission = m.Transmission
	}
	return surf, true
}

// shadingNormal reconstructs the world-space shading normal from a
// tangent-space normal map via Gram-Schmidt TBN orthogonalization,
// falling back to the geometric normal when there is no map or the
// tangent is degenerate (§8 scenario 5).
func shadingNormal(m *Material, v Vertex) Vector {
	geo := v.Normal
	if geo.IsDegenerate() {
		geo = Vector{0, 0, 1}
	}
	if m.NormalMap == nil {
		return geo
	}
	tangentVec := Vector{v.Tangent.X, v.Tangent.Y, v.Tangent.Z}
	if tangentVec.IsDegenerate() || tangentVec.Length() < 1e-8 {
		return geo
	}
	handedness := v.Tangent.W
	if handedness == 0 {
		handedness = 1
	}
	t := tangentVec.Sub(geo.MulScalar(geo.Dot(tangentVec))).Normalize()
	b := geo.Cross(t).MulScalar(handedness)

	sample := m.NormalMap.Sample(v.Texture.X, v.Texture.Y)
	tn := Vector{
		(sample.R*2 - 1) * m.NormalScale,
		(sample.G*2 - 1) * m.NormalScale,
		sample.B*2 - 1,
	}
	world := t.MulScalar(tn.X).Add(b.MulScalar(tn.Y)).Add(geo.MulScalar(tn.Z))
	if world.IsDegenerate() || world.Length() < 1e-8 {
		return geo
	}
	return world.Normalize()
}

// LightingStrategy is §4.E's second interface: it turns a Surface
// plus context into a linear-RGB color with channels in 0-1.
type LightingStrategy interface {
	Calculate(world, normal, viewDir Vector, surf *Surface, ctx *ShadingContext) Color
}

// UnlitStrategy returns the surface albedo untouched.
type UnlitStrategy struct{}

func (UnlitStrategy) Calculate(world, normal, viewDir Vector, surf *Surface, ctx *ShadingContext) Color {
	return surf.Albedo
}

// BlinnPhongStrategy implements the Lambert+half-vector strategy.
type BlinnPhongStrategy struct{}

func (BlinnPhongStrategy) Calculate(world, normal, viewDir Vector, surf *Surface, ctx *ShadingContext) Color {
	result := surf.Ambient.Mul(surf.Diffuse)
	for _, light := range ctx.Lights {
		if light.Kind == LightAmbient {
			result = result.Add(light.Color.MulScalar(light.Intensity).Mul(surf.Diffuse))
			continue
		}
		if light.Kind == LightProbe {
			continue
		}
		contrib, ok := light.computeContribution(world)
		if !ok {
			continue
		}
		ndotl := math.Max(0, normal.Dot(contrib.Direction))
		if ndotl <= 0 {
			continue
		}
		shadow := ctx.shadowFactor(light, Vertex{Position: world}, normal)
		diffuse := surf.Diffuse.Mul(contrib.Radiance).MulScalar(ndotl)
		half := contrib.Direction.Add(viewDir).Normalize()
		ndoth := math.Max(0, normal.Dot(half))
		spec := surf.Specular.Mul(contrib.Radiance).MulScalar(math.Pow(ndoth, math.Max(1, surf.Shininess)))
		result = result.Add(diffuse.Add(spec).Mul(shadow))
	}
	if ctx.SHEnabled && !ctx.SH.IsZero() {
		result = result.Add(CalculateIrradiance(normal, ctx.SH).Mul(surf.Diffuse).MulScalar(1.0 / 255))
	}
	return result.Clamp()
}

// PBRStrategy implements the Cook-Torrance strategy of §4.E.
type PBRStrategy struct{}

func (PBRStrategy) Calculate(world, normal, viewDir Vector, surf *Surface, ctx *ShadingContext) Color {
	alpha := surf.Roughness * surf.Roughness
	f0 := Vector{surf.F0, surf.F0, surf.F0}
	if surf.Metalness > 0 {
		base := Vector{surf.Albedo.R, surf.Albedo.G, surf.Albedo.B}
		f0 = f0.Lerp(base, surf.Metalness)
	}

	result := surf.Emissive.MulScalar(surf.EmissiveIntensity)

	hasAmbientLight := false
	for _, light := range ctx.Lights {
		switch light.Kind {
		case LightAmbient:
			hasAmbientLight = true
			result = result.Add(surf.Albedo.Mul(light.Color).MulScalar(light.Intensity * surf.Occlusion))
		case LightProbe:
			// handled by the SH branch below
		default:
			contrib, ok := light.computeContribution(world)
			if !ok {
				continue
			}
			shadow := ctx.shadowFactor(light, Vertex{Position: world}, normal)
			result = result.Add(pbrContribution(surf, normal, viewDir, contrib, f0, alpha).Mul(shadow))
		}
	}

	if ctx.SHEnabled && !ctx.SH.IsZero() {
		irradiance := CalculateIrradiance(normal, ctx.SH).MulScalar(1.0 / 255)
		kS := fresnelSchlick(math.Max(0, normal.Dot(viewDir)), f0)
		kD := Vector{1, 1, 1}.Sub(kS).MulScalar(1 - surf.Metalness)
		ambient := irradiance.Mul(surf.Albedo).MulScalar(surf.Occlusion)
		ambient = Color{ambient.R * kD.X, ambient.G * kD.Y, ambient.B * kD.Z, ambient.A}
		result = result.Add(ambient)
	} else if !hasAmbientLight {
		result = result.Add(surf.Albedo.MulScalar(SRGBToLinear(0.05) * surf.Occlusion))
	}

	if surf.Transmission.Factor > 0 {
		result = result.MulScalar(1 - surf.Transmission.Factor)
		absorb := absorption(surf.Transmission.AttenuationColor, surf.Transmission.AttenuationDistance)
		thickness := surf.Transmission.ThicknessFactor
		atten := Color{
			math.Exp(-absorb.R * thickness),
			math.Exp(-absorb.G * thickness),
			math.Exp(-absorb.B * thickness),
			1,
		}
		result = result.Add(surf.Albedo.Mul(atten).MulScalar(surf.Transmission.Factor))
	}

	tone := result.ToneMapACES()
	return Color{tone.R, tone.G, tone.B, surf.Opacity}
}

func absorption(attenuationColor Color, attenuationDistance float64) Color {
	if math.IsInf(attenuationDistance, 1) || attenuationDistance <= 0 {
		return Color{}
	}
	safe := func(c float64) float64 {
		return -math.Log(math.Max(c, 1e-6)) / attenuationDistance
	}
	return Color{safe(attenuationColor.R), safe(attenuationColor.G), safe(attenuationColor.B), 0}
}

func pbrContribution(surf *Surface, normal, viewDir Vector, contrib Contribution, f0 Vector, alpha float64) Color {
	ndotl := math.Max(0, normal.Dot(contrib.Direction))
	if ndotl <= 0 {
		return Color{}
	}
	half := contrib.Direction.Add(viewDir).Normalize()
	ndotv := math.Max(0, normal.Dot(viewDir))
	ndoth := math.Max(0, normal.Dot(half))
	vdoth := math.Max(0, viewDir.Dot(half))

	D := distributionGGX(ndoth, alpha)
	G := geometrySmith(ndotv, ndotl, alpha)
	F := fresnelSchlick(vdoth, f0)

	denom := 4*ndotv*ndotl + 0.001
	specular := D * G / denom

	kS := F
	kD := Vector{1, 1, 1}.Sub(kS).MulScalar(1 - surf.Metalness)
	diffuse := Vector{surf.Albedo.R / math.Pi, surf.Albedo.G / math.Pi, surf.Albedo.B / math.Pi}

	brdf := kD.Mul(diffuse).Add(Vector{specular * F.X, specular * F.Y, specular * F.Z})

	// Clearcoat adds a second, always-dielectric specular lobe.
	var coat Vector
	if surf.Clearcoat.Factor > 0 {
		coatAlpha := surf.Clearcoat.RoughnessFactor * surf.Clearcoat.RoughnessFactor
		coatK := coatAlpha * coatAlpha / 2
		coatD := distributionGGX(ndoth, coatAlpha)
		coatG := geometrySchlickGGXk(ndotv, coatK) * geometrySchlickGGXk(ndotl, coatK)
		coatF := 0.04 + (1-0.04)*math.Pow(1-vdoth, 5)
		coat = Vector{coatD * coatG * coatF, coatD * coatG * coatF, coatD * coatG * coatF}.MulScalar(surf.Clearcoat.Factor)
	}

	radiance := Vector{contrib.Radiance.R, contrib.Radiance.G, contrib.Radiance.B}
	contribution := brdf.Add(coat).Mul(radiance).MulScalar(ndotl)
	return Color{contribution.X, contribution.Y, contribution.Z, 0}
}

func distributionGGX(ndoth, alpha float64) float64 {
	a2 := alpha * alpha
	d := ndoth*ndoth*(a2-1) + 1
	return a2 / (math.Pi * d * d)
}

func geometrySchlickGGXk(ndotv, k float64) float64 {
	return ndotv / (ndotv*(1-k) + k)
}

func geometrySmith(ndotv, ndotl, alpha float64) float64 {
	k := (alpha + 1) * (alpha + 1) / 8
	return geometrySchlickGGXk(ndotv, k) * geometrySchlickGGXk(ndotl, k)
}

func fresnelSchlick(cosTheta float64, f0 Vector) Vector {
	f := math.Pow(1-cosTheta, 5)
	one := Vector{1, 1, 1}
	return f0.Add(one.Sub(f0).MulScalar(f))
}

// MaterialShader implements the rasterizer's Shader interface,
// wiring together the Evaluator and a chosen Strategy. Flat-shaded
// variants can share one Surface across a whole face by evaluating
// once in Initialize and ignoring the per-fragment vertex.
type MaterialShader struct {
	Material *Material
	Strategy LightingStrategy
	Context  *ShadingContext
	Flat     bool

	face    *ProjectedFace
	flatSurf *Surface
}

func NewMaterialShader(m *Material, ctx *ShadingContext) *MaterialShader {
	var strat LightingStrategy
	switch {
	case m == nil || m.Kind == MaterialUnlit:
		strat = UnlitStrategy{}
	case m.Kind == MaterialPhong || m.Kind == MaterialGouraud:
		strat = BlinnPhongStrategy{}
	default:
		strat = PBRStrategy{}
	}
	return &MaterialShader{Material: m, Strategy: strat, Context: ctx}
}

func (s *MaterialShader) Initialize(face *ProjectedFace, ctx *ShadingContext) {
	s.face = face
	s.Context = ctx
	s.flatSurf = nil
	if s.Flat {
		centerVertex := Vertex{Position: face.WorldCenter, Normal: face.Normal}
		if surf, ok := EvaluateMaterial(s.Material, centerVertex); ok {
			s.flatSurf = surf
		}
	}
}

func (s *MaterialShader) Shade(world Vertex, normal Vector, screenX, screenY float64) (Color, bool) {
	surf := s.flatSurf
	if surf == nil {
		var ok bool
		surf, ok = EvaluateMaterial(s.Material, world)
		if !ok {
			return Color{}, false
		}
	}
	viewDir := s.Context.CameraPosition.Sub(world.Position).Normalize()
	c := s.Strategy.Calculate(world.Position, normal, viewDir, surf, s.Context)

	if refl, ok := s.reflection(screenX, screenY); ok {
		mix := Clamp(s.Material.Reflectivity, 0, 1)
		if s.Material.Fresnel {
			ndotv := math.Max(0, normal.Dot(viewDir))
			mix = mix + (1-mix)*math.Pow(1-ndotv, 5)
		}
		c = c.Lerp(refl, mix)
	}

	return c.Alpha(surf.Opacity), true
}

// reflection samples the reflection buffer keyed by this material's
// mirror plane at the fragment's own screen coordinates, per §4.G
// step 3. Returns false when the material is not reflective or no
// buffer was rendered for its plane this frame.
func (s *MaterialShader) reflection(screenX, screenY float64) (Color, bool) {
	if s.Material == nil || s.Material.Mirror == nil || s.Context.ReflectionBuffers == nil {
		return Color{}, false
	}
	buf, ok := s.Context.ReflectionBuffers[reflectionKey(s.Material.Mirror.Plane())]
	if !ok || buf.Context == nil || s.Context.ScreenWidth == 0 || s.Context.ScreenHeight == 0 {
		return Color{}, false
	}
	w, h := buf.Context.Width, buf.Context.Height
	sx := screenX / s.Context.ScreenWidth * float64(w)
	sy := screenY / s.Context.ScreenHeight * float64(h)
	ix := ClampInt(int(sx), 0, w-1)
	iy := ClampInt(int(sy), 0, h-1)
	nc := buf.Context.ColorBuffer.NRGBAAt(ix, iy)
	return Color{R: float64(nc.R) / 255, G: float64(nc.G) / 255, B: float64(nc.B) / 255, A: float64(nc.A) / 255}, true
}

func (s *MaterialShader) Opacity() float64 {
	if s.flatSurf != nil {
		return s.flatSurf.Opacity
	}
	if s.Material != nil {
		return s.Material.Opacity
	}
	return 1
}
