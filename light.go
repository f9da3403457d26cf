package raybox

import "math"

// LightKind discriminates the Light sum type of §3.
type LightKind int

const (
	LightAmbient LightKind = iota
	LightDirectional
	LightPoint
	LightSpot
	LightProbe // spherical-harmonics ambient probe
)

// Light is a tagged variant: fields are grouped by which Kind reads
// them, mirroring Material's shape and the teacher's separate
// Light/LightType pairing in pbr.go.
type Light struct {
	Kind LightKind

	Color     Color
	Intensity float64

	// Directional / Point / Spot.
	Position  Vector
	Direction Vector

	// Point / Spot attenuation.
	Range float64

	// Spot cone, radians.
	InnerCone float64
	OuterCone float64

	// LightProbe.
	SH *SHCoefficients
}

func NewAmbientLight(c Color, intensity float64) Light {
	return Light{Kind: LightAmbient, Color: c, Intensity: intensity}
}

func NewDirectionalLight(direction Vector, c Color, intensity float64) Light {
	return Light{Kind: LightDirectional, Direction: direction.Normalize(), Color: c, Intensity: intensity}
}

func NewPointLight(position Vector, c Color, intensity, rangeLimit float64) Light {
	return Light{Kind: LightPoint, Position: position, Color: c, Intensity: intensity, Range: rangeLimit}
}

func NewSpotLight(position, direction Vector, c Color, intensity, rangeLimit, inner, outer float64) Light {
	return Light{Kind: LightSpot, Position: position, Direction: direction.Normalize(), Color: c,
		Intensity: intensity, Range: rangeLimit, InnerCone: inner, OuterCone: outer}
}

func NewProbeLight(sh SHCoefficients) Light {
	return Light{Kind: LightProbe, SH: &sh}
}

// Contribution is the per-light result a surface point sees: an
// incoming direction, an attenuated radiance, or nothing at all when
// the light cannot reach the point (out of range, outside the cone,
// back side of a one-sided falloff).
type Contribution struct {
	Direction Vector
	Radiance  Color
}

// windowedAttenuation implements the smooth distance falloff shared by
// point and spot lights: max(0, 1 - d/range)^2, adapted from pbr.go's
// PointLight/SpotLight branches.
func windowedAttenuation(distance, rangeLimit float64) float64 {
	if rangeLimit <= 0 {
		return 1
	}
	a := math.Max(0, 1-distance/rangeLimit)
	return a * a
}

// computeContribution implements §4.E's per-light evaluation. Ambient
// and probe lights have no direction and are handled separately by
// the lighting strategy (uniform term / SH irradiance); this only
// serves the three directional-style kinds.
func (l Light) computeContribution(point Vector) (Contribution, bool) {
	switch l.Kind {
	case LightDirectional:
		return Contribution{
			Direction: l.Direction.Negate(),
			Radiance:  l.Color.MulScalar(l.Intensity),
		}, true

	case LightPoint:
		toLight := l.Position.Sub(point)
		distance := toLight.Length()
		if l.Range > 0 && distance > l.Range {
			return Contribution{}, false
		}
		dir := toLight.Normalize()
		att := windowedAttenuation(distance, l.Range)
		if att <= 0 {
			return Contribution{}, false
		}
		return Contribution{Direction: dir, Radiance: l.Color.MulScalar(l.Intensity * att)}, true

	case LightSpot:
		toLight := l.Position.Sub(point)
		distance := toLight.Length()
		if l.Range > 0 && distance > l.Range {
			return Contribution{}, false
		}
		dir := toLight.Normalize()
		att := windowedAttenuation(distance, l.Range)
		cosAngle := dir.Dot(l.Direction.Negate())
		innerCos, outerCos := math.Cos(l.InnerCone), math.Cos(l.OuterCone)
		switch {
		case cosAngle < outerCos:
			return Contribution{}, false
		case cosAngle > innerCos:
			// full intensity inside the inner cone
		default:
			att *= (cosAngle - outerCos) / (innerCos - outerCos)
		}
		if att <= 0 {
			return Contribution{}, false
		}
		return Contribution{Direction: dir, Radiance: l.Color.MulScalar(l.Intensity * att)}, true

	default:
		return Contribution{}, false
	}
}
