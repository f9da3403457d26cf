// Package postfx holds the three screen-space passes the core
// pipeline's Config exposes as feature flags but does not itself run:
// FXAA edge antialiasing, gamma encoding, and a volumetric light-shaft
// approximation. Each is grounded on the same per-pixel sampling
// techniques the core's retained reference passes used, narrowed to
// just the operations named.
package postfx

import (
	"image"
	"image/color"
	"math"
)

type vec3 struct{ X, Y, Z float64 }

func sub(a, b vec3) vec3  { return vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func add(a, b vec3) vec3  { return vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func mul(a, b vec3) vec3  { return vec3{a.X * b.X, a.Y * b.Y, a.Z * b.Z} }
func mins(a, b vec3) vec3 { return vec3{math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z)} }
func maxs(a, b vec3) vec3 { return vec3{math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z)} }
func scale(a vec3, s float64) vec3 {
	return vec3{a.X * s, a.Y * s, a.Z * s}
}
func addScalar(a vec3, s float64) vec3 { return vec3{a.X + s, a.Y + s, a.Z + s} }
func absVec(a vec3) vec3               { return vec3{math.Abs(a.X), math.Abs(a.Y), math.Abs(a.Z)} }
func invVec(a vec3) vec3 {
	return vec3{1.0 / (a.X + 0.0001), 1.0 / (a.Y + 0.0001), 1.0 / (a.Z + 0.0001)}
}
func clampVec(a vec3, lo, hi float64) vec3 {
	return vec3{
		math.Min(math.Max(a.X, lo), hi),
		math.Min(math.Max(a.Y, lo), hi),
		math.Min(math.Max(a.Z, lo), hi),
	}
}
func dotScalar(a vec3, s float64) float64 { return a.X*s + a.Y*s + a.Z*s }
func lerpVec(a, b vec3, t float64) vec3 {
	return vec3{a.X + t*(b.X-a.X), a.Y + t*(b.Y-a.Y), a.Z + t*(b.Z-a.Z)}
}

func sampleAt(img *image.NRGBA, x, y int, bounds image.Rectangle) vec3 {
	if x < 0 || x >= bounds.Dx() || y < 0 || y >= bounds.Dy() {
		return vec3{}
	}
	c := img.NRGBAAt(x+bounds.Min.X, y+bounds.Min.Y)
	return vec3{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255}
}

func sampleBilinear(img *image.NRGBA, x, y float64, bounds image.Rectangle) vec3 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	dx := x - float64(x0)
	dy := y - float64(y0)
	c00 := sampleAt(img, x0, y0, bounds)
	c01 := sampleAt(img, x0, y0+1, bounds)
	c10 := sampleAt(img, x0+1, y0, bounds)
	c11 := sampleAt(img, x0+1, y0+1, bounds)
	return lerpVec(lerpVec(c00, c01, dy), lerpVec(c10, c11, dy), dx)
}

func writeVec(out *image.NRGBA, x, y int, bounds image.Rectangle, v vec3, a uint8) {
	out.SetNRGBA(x+bounds.Min.X, y+bounds.Min.Y, color.NRGBA{
		R: uint8(math.Min(255, math.Max(0, v.X*255))),
		G: uint8(math.Min(255, math.Max(0, v.Y*255))),
		B: uint8(math.Min(255, math.Max(0, v.Z*255))),
		A: a,
	})
}

// ApplyFXAA runs one pass of luma-gradient-directed edge antialiasing
// over the frame. Span/reduce constants match the defaults of the
// retained reference implementation.
func ApplyFXAA(input *image.NRGBA) *image.NRGBA {
	const spanMax = 8.0
	const reduceMul = 1.0 / 8.0

	bounds := input.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	output := image.NewNRGBA(bounds)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			m := sampleAt(input, x, y, bounds)
			n := sampleAt(input, x, y-1, bounds)
			s := sampleAt(input, x, y+1, bounds)
			e := sampleAt(input, x+1, y, bounds)
			w := sampleAt(input, x-1, y, bounds)

			dir := add(sub(s, n), sub(e, w))
			dirAbs := absVec(dir)
			dirAbs = add(dirAbs, dirAbs)
			reduced := addScalar(dirAbs, reduceMul)
			dirAbs = maxs(dirAbs, reduced)
			dirAbs = invVec(dirAbs)
			dirAbs = scale(dirAbs, 1.0/16.0)
			dir = mul(dir, dirAbs)
			dir = clampVec(dir, -spanMax, spanMax)

			a := sampleBilinear(input, float64(x)+dir.X, float64(y)+dir.Y, bounds)
			b := sampleBilinear(input, float64(x)-dir.X, float64(y)-dir.Y, bounds)
			f := scale(add(a, b), 0.5)

			blend := math.Min(1.0, dotScalar(absVec(sub(f, m)), 1.0)*4.0)
			result := lerpVec(m, f, blend)

			writeVec(output, x, y, bounds, result, input.NRGBAAt(x+bounds.Min.X, y+bounds.Min.Y).A)
		}
	}
	return output
}

// EncodeGamma applies display gamma encoding (out = in^(1/gamma)) to
// every pixel, the same per-channel power curve the retained tone
// mapper used, with the exposure and Reinhard compression stripped
// since the core's linear color buffer is already range-limited
// before this pass runs.
func EncodeGamma(input *image.NRGBA, gamma float64) *image.NRGBA {
	if gamma <= 0 {
		gamma = 2.2
	}
	bounds := input.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	output := image.NewNRGBA(bounds)
	invGamma := 1.0 / gamma

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := input.NRGBAAt(x+bounds.Min.X, y+bounds.Min.Y)
			v := vec3{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255}
			v = vec3{math.Pow(v.X, invGamma), math.Pow(v.Y, invGamma), math.Pow(v.Z, invGamma)}
			writeVec(output, x, y, bounds, v, c.A)
		}
	}
	return output
}

// VolumetricLight is one light-shaft source: its screen-space origin
// (already projected by the caller) and a brightness threshold above
// which pixels seed the shaft.
type VolumetricLight struct {
	ScreenX, ScreenY float64
	Threshold        float64
	Intensity        float64
	Samples          int
	Decay            float64
}

// ApplyVolumetric accumulates radial samples from each pixel toward
// every light's screen position, keeping only the bright (typically
// sky/emissive) contributions, the way the retained bloom pass masked
// by a brightness threshold before blurring — except the blur kernel
// here is a radial one-directional walk per pixel toward the light,
// the retained motion-blur pass's per-pixel directional accumulation
// aimed at a single shared point instead of a constant angle.
func ApplyVolumetric(input *image.NRGBA, lights []VolumetricLight) *image.NRGBA {
	bounds := input.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	output := image.NewNRGBA(bounds)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			base := sampleAt(input, x, y, bounds)
			shaft := vec3{}

			for _, light := range lights {
				samples := light.Samples
				if samples <= 0 {
					samples = 16
				}
				decay := light.Decay
				if decay <= 0 {
					decay = 0.96
				}
				stepX := (light.ScreenX - float64(x)) / float64(samples)
				stepY := (light.ScreenY - float64(y)) / float64(samples)
				sx, sy := float64(x), float64(y)
				weight := 1.0
				var accum vec3
				for i := 0; i < samples; i++ {
					sx += stepX
					sy += stepY
					c := sampleBilinear(input, sx, sy, bounds)
					bright := (c.X + c.Y + c.Z) / 3
					if bright > light.Threshold {
						accum = add(accum, scale(c, weight))
					}
					weight *= decay
				}
				shaft = add(shaft, scale(accum, light.Intensity/float64(samples)))
			}

			result := add(base, shaft)
			writeVec(output, x, y, bounds, result, input.NRGBAAt(x+bounds.Min.X, y+bounds.Min.Y).A)
		}
	}
	return output
}
