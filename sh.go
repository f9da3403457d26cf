package raybox

import "math"

// SHCoefficients holds nine second-order real spherical-harmonic
// coefficients per color channel, used as a compact low-frequency
// ambient/irradiance environment — the only form of global
// illumination this renderer supports beyond direct lights.
type SHCoefficients struct {
	R, G, B [9]float64
}

// SH basis normalization constants for bands 0, 1, 2 (real SH, y-up).
const (
	shY00  = 0.282095
	shY1   = 0.488603
	shY20  = 1.092548
	shY21  = 0.315392
	shY22  = 0.546274
)

// SHBasis evaluates the nine real SH basis functions at direction n
// (must be unit length).
func SHBasis(n Vector) [9]float64 {
	x, y, z := n.X, n.Y, n.Z
	return [9]float64{
		shY00,
		shY1 * y,
		shY1 * z,
		shY1 * x,
		shY20 * x * y,
		shY20 * y * z,
		shY21 * (3*z*z - 1),
		shY20 * x * z,
		shY22 * (x*x - y*y),
	}
}

// IsZero reports whether every coefficient is zero, the condition
// under which SH ambient must behave as if disabled (§8 SH gate).
func (c SHCoefficients) IsZero() bool {
	for i := 0; i < 9; i++ {
		if c.R[i] != 0 || c.G[i] != 0 || c.B[i] != 0 {
			return false
		}
	}
	return true
}

// shIrradianceConvolution holds the cosine-lobe convolution weights
// (A0, A1, A1, A1, A2, A2, A2, A2, A2) that turn SH radiance
// coefficients into SH irradiance coefficients for a Lambertian
// surface, per Ramamoorthi & Hanrahan.
var shIrradianceConvolution = [9]float64{
	math.Pi,
	2 * math.Pi / 3,
	2 * math.Pi / 3,
	2 * math.Pi / 3,
	math.Pi / 4,
	math.Pi / 4,
	math.Pi / 4,
	math.Pi / 4,
	math.Pi / 4,
}

// CalculateIrradiance reconstructs the diffuse irradiance arriving
// from direction n given SH radiance coefficients sh, returning a
// linear-space Color scaled the way raw light intensities are (i.e.
// sh[0] = R/Y00 with all else zero reconstructs to R*pi for any n,
// since the DC term is direction-independent).
func CalculateIrradiance(n Vector, sh SHCoefficients) Color {
	basis := SHBasis(n)
	var r, g, b float64
	for i := 0; i < 9; i++ {
		w := basis[i] * shIrradianceConvolution[i]
		r += sh.R[i] * w
		g += sh.G[i] * w
		b += sh.B[i] * w
	}
	return Color{r, g, b, 1}
}
