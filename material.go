package raybox

import "math"

// MaterialKind discriminates the Material sum type of §3. Rather
// than an interface hierarchy (see design note in SPEC_FULL.md §9),
// Material is one struct whose fields are grouped by which Kind
// reads them — the tagged-variant-with-shared-header shape the
// fragment stage's Evaluator dispatches on.
type MaterialKind int

const (
	MaterialBasic MaterialKind = iota
	MaterialPhong
	MaterialGouraud
	MaterialPBR
	MaterialUnlit
)

// AlphaMode controls how the rasterizer and shadow subsystem treat a
// fragment's alpha.
type AlphaMode int

const (
	AlphaOpaque AlphaMode = iota
	AlphaMask
	AlphaBlend
)

// MirrorPlane identifies the plane a reflective material samples its
// reflection buffer against (§4.G); nil means the material is not
// a mirror surface.
type MirrorPlane struct {
	Normal   Vector
	Constant float64
}

func (m MirrorPlane) Plane() Plane {
	return Plane{m.Normal, m.Constant}
}

// ClearcoatParams, SheenParams, TransmissionParams, AnisotropyParams,
// IridescenceParams and SpecularParams hold the optional PBR
// extension channels §3's expansion adds, mirroring the glTF
// extensions the teacher's PBRMaterial already enumerated.
type ClearcoatParams struct {
	Factor          float64
	RoughnessFactor float64
	NormalMap       *Texture
}

type SheenParams struct {
	ColorFactor     Color
	RoughnessFactor float64
}

type TransmissionParams struct {
	Factor              float64
	ThicknessFactor     float64
	AttenuationDistance float64
	AttenuationColor    Color
}

type AnisotropyParams struct {
	Strength float64
	Rotation float64
}

type IridescenceParams struct {
	Factor              float64
	IOR                 float64
	ThicknessMinimum    float64
	ThicknessMaximum    float64
}

type SpecularParams struct {
	Factor float64
	Color  Color
}

// Material is the full sum type. BaseColorMap/Opacity/AlphaMode etc
// are the shared header every Kind reads; the rest are read only by
// the Kind(s) named in their doc comment.
type Material struct {
	Kind MaterialKind

	// Shared header (§3 Material).
	Opacity      float64
	DoubleSided  bool
	AlphaMode    AlphaMode
	AlphaCutoff  float64
	BaseColorMap *Texture
	Mirror       *MirrorPlane
	Reflectivity float64
	Fresnel      bool
	Wireframe    bool

	// Phong / Gouraud.
	Diffuse   Color
	Ambient   Color
	Specular  Color
	Shininess float64

	// PBR.
	Albedo            Color
	Roughness         float64
	Metalness         float64
	Emissive          Color
	EmissiveIntensity float64
	Reflectance       float64 // drives F0 = 0.16 * reflectance^2 when IOR absent
	IOR               float64

	MetallicRoughnessMap *Texture
	NormalMap             *Texture
	NormalScale           float64
	OcclusionMap          *Texture
	OcclusionStrength     float64
	EmissiveMap           *Texture

	Clearcoat    ClearcoatParams
	Sheen        SheenParams
	Transmission TransmissionParams
	Anisotropy   AnisotropyParams
	Iridescence  IridescenceParams
	Specular2    SpecularParams // KHR_materials_specular; named to avoid colliding with Phong's Specular color
}

// NewPBRMaterial returns a PBR material with the teacher's defaults
// (dielectric reflectance, fully rough, non-metal, no extensions
// active), adapted from pbr.go's NewPBRMaterial.
func NewPBRMaterial() *Material {
	return &Material{
		Kind:              MaterialPBR,
		Opacity:           1,
		AlphaCutoff:       0.5,
		Albedo:            White,
		Roughness:         1,
		Metalness:         0,
		Emissive:          Black,
		EmissiveIntensity: 1,
		Reflectance:       0.5,
		IOR:               1.5,
		NormalScale:       1,
		OcclusionStrength: 1,
		Transmission:      TransmissionParams{AttenuationDistance: math.Inf(1), AttenuationColor: White},
		Specular2:         SpecularParams{Factor: 1, Color: White},
	}
}

func NewPhongMaterial() *Material {
	return &Material{
		Kind:      MaterialPhong,
		Opacity:   1,
		Ambient:   Color{0.2, 0.2, 0.2, 1},
		Diffuse:   Color{0.8, 0.8, 0.8, 1},
		Specular:  White,
		Shininess: 32,
	}
}

func NewUnlitMaterial(albedo Color) *Material {
	return &Material{Kind: MaterialUnlit, Opacity: 1, Albedo: albedo}
}

// F0 returns the dielectric base reflectance derived from IOR when
// set (>0), falling back to the reflectance-factor approximation.
func (m *Material) F0() float64 {
	if m.IOR > 0 {
		r := (m.IOR - 1) / (m.IOR + 1)
		return r * r
	}
	return 0.16 * m.Reflectance * m.Reflectance
}
