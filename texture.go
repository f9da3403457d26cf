package raybox

import (
	"image"
	"image/color"
	"math"

	"github.com/nfnt/resize"
)

// TextureWrap selects the per-axis wrap mode of §4.B.
type TextureWrap int

const (
	WrapRepeat TextureWrap = iota
	WrapClamp
	WrapMirroredRepeat
)

// ColorSpace selects how a texture's raw samples relate to linear light.
type ColorSpace int

const (
	ColorSpaceSRGB ColorSpace = iota
	ColorSpaceLinear
	ColorSpaceHDR
)

// TextureFilter selects the reconstruction filter Sample uses; the
// rasterizer's glue code always has the option of calling
// BilinearSample directly regardless of this setting.
type TextureFilter int

const (
	FilterNearest TextureFilter = iota
	FilterBilinear
)

// UVAnimation scrolls and rotates a texture's sampling coordinates
// over time, evaluated before the static Offset/Repeat/Rotation
// transform. Grounded on the teacher's uv_modifier.go, repurposed
// here from an authoring-time tool into a per-frame input: Elapsed is
// advanced by the orchestrator's own frame clock rather than a
// keyframe track, since animation/skinning proper is out of scope.
type UVAnimation struct {
	ScrollSpeed    Vector // X,Y per-second UV scroll
	RotationSpeed  float64
	Elapsed        float64
}

// Texture is a 2D pixel buffer plus the sampling state of §3.
type Texture struct {
	Data   []Color // row-major, top-left origin, length Width*Height
	Width  int
	Height int

	WrapS, WrapT TextureWrap
	MinFilter    TextureFilter
	MagFilter    TextureFilter
	ColorSpace   ColorSpace

	Offset   Vector // X,Y
	Repeat   Vector // X,Y
	Rotation float64

	Animation *UVAnimation

	mips [][]Color // precomputed mipmap chain, level 0 = Data
}

// NewTexture builds a texture from a decoded image in colorspace cs,
// defaulting to repeat wrapping and nearest sampling.
func NewTexture(img image.Image, cs ColorSpace) *Texture {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	data := make([]Color, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			data[y*w+x] = Color{float64(r) / 65535, float64(g) / 65535, float64(bl) / 65535, float64(a) / 65535}
		}
	}
	return &Texture{
		Data: data, Width: w, Height: h,
		WrapS: WrapRepeat, WrapT: WrapRepeat,
		MinFilter: FilterNearest, MagFilter: FilterNearest,
		ColorSpace: cs,
		Repeat:     Vector{1, 1, 0},
	}
}

// at fetches a raw texel with integer coordinates already clamped by
// the caller to [0,Width-1]x[0,Height-1].
func (t *Texture) at(x, y int) Color {
	return t.Data[y*t.Width+x]
}

func (t *Texture) wrapCoordinate(coord float64, wrap TextureWrap) float64 {
	switch wrap {
	case WrapClamp:
		return Clamp(coord, 0, 1)
	case WrapMirroredRepeat:
		c := coord - math.Floor(coord)
		if int(math.Floor(coord))%2 != 0 {
			c = 1 - c
		}
		return c
	default: // WrapRepeat
		return coord - math.Floor(coord)
	}
}

// transformUV applies animation, then repeat/offset, then rotation
// about (0.5, 0.5), per §4.B / the UVAnimation extension.
func (t *Texture) transformUV(u, v float64) (float64, float64) {
	if t.Animation != nil {
		a := t.Animation
		u += a.ScrollSpeed.X * a.Elapsed
		v += a.ScrollSpeed.Y * a.Elapsed
		if a.RotationSpeed != 0 {
			theta := a.RotationSpeed * a.Elapsed
			cu, cv := u-0.5, v-0.5
			s, c := math.Sin(theta), math.Cos(theta)
			u = cu*c-cv*s + 0.5
			v = cu*s+cv*c + 0.5
		}
	}
	u = u*t.Repeat.X + t.Offset.X
	v = v*t.Repeat.Y + t.Offset.Y
	if t.Rotation != 0 {
		s, c := math.Sin(t.Rotation), math.Cos(t.Rotation)
		cu, cv := u-0.5, v-0.5
		u = cu*c-cv*s + 0.5
		v = cu*s+cv*c + 0.5
	}
	return u, v
}

// Sample implements the §4.B contract: transform UV, wrap, then a
// nearest fetch (MagFilter FilterNearest, NewTexture's default) or a
// bilinear one (FilterBilinear); MinFilter is not read. Null/zero-sized
// textures return opaque white per §7.
func (t *Texture) Sample(u, v float64) Color {
	if t == nil || t.Width <= 0 || t.Height <= 0 {
		return White
	}
	u, v = t.transformUV(u, v)
	u = t.wrapCoordinate(u, t.WrapS)
	v = t.wrapCoordinate(v, t.WrapT)
	if t.MagFilter == FilterBilinear {
		return t.bilinear(u, v)
	}
	return t.nearest(u, v)
}

func (t *Texture) nearest(u, v float64) Color {
	x := ClampInt(int(u*float64(t.Width)), 0, t.Width-1)
	y := ClampInt(int(v*float64(t.Height)), 0, t.Height-1)
	return t.at(x, y)
}

// BilinearSample always uses bilinear reconstruction regardless of
// MagFilter — used where smoothness matters more than matching the
// material's configured filter (e.g. reflection-buffer resampling).
func (t *Texture) BilinearSample(u, v float64) Color {
	if t == nil || t.Width <= 0 || t.Height <= 0 {
		return White
	}
	u, v = t.transformUV(u, v)
	u = t.wrapCoordinate(u, t.WrapS)
	v = t.wrapCoordinate(v, t.WrapT)
	return t.bilinear(u, v)
}

func (t *Texture) bilinear(u, v float64) Color {
	x := u*float64(t.Width) - 0.5
	y := v*float64(t.Height) - 0.5
	x0, y0 := int(math.Floor(x)), int(math.Floor(y))
	fx, fy := x-float64(x0), y-float64(y0)
	x0c := ClampInt(x0, 0, t.Width-1)
	y0c := ClampInt(y0, 0, t.Height-1)
	x1c := ClampInt(x0+1, 0, t.Width-1)
	y1c := ClampInt(y0+1, 0, t.Height-1)
	c00, c10 := t.at(x0c, y0c), t.at(x1c, y0c)
	c01, c11 := t.at(x0c, y1c), t.at(x1c, y1c)
	top := c00.Lerp(c10, fx)
	bottom := c01.Lerp(c11, fx)
	return top.Lerp(bottom, fy)
}

// Decoded returns a sample already converted to scene-linear light,
// applying the sRGB EOTF when ColorSpace requires it. HDR/Linear data
// is assumed already linear.
func (t *Texture) Decoded(u, v float64) Color {
	c := t.Sample(u, v)
	if t.ColorSpace == ColorSpaceSRGB {
		return c.ColorSRGBToLinear()
	}
	return c
}

// GenerateMipmaps builds a full mip chain via nfnt/resize's Lanczos3
// downsampling, replacing the teacher's placeholder that duplicated
// the full-resolution image at every level.
func (t *Texture) GenerateMipmaps() {
	t.mips = [][]Color{t.Data}
	img := t.toImage()
	w, h := t.Width, t.Height
	for w > 1 || h > 1 {
		w = maxInt(1, w/2)
		h = maxInt(1, h/2)
		resized := resize.Resize(uint(w), uint(h), img, resize.Lanczos3)
		level := make([]Color, w*h)
		b := resized.Bounds()
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r, g, bl, a := resized.At(b.Min.X+x, b.Min.Y+y).RGBA()
				level[y*w+x] = Color{float64(r) / 65535, float64(g) / 65535, float64(bl) / 65535, float64(a) / 65535}
			}
		}
		t.mips = append(t.mips, level)
		img = resized
	}
}

func (t *Texture) toImage() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, t.Width, t.Height))
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			r, g, b, a := t.at(x, y).NRGBA()
			img.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: a})
		}
	}
	return img
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// CubeMapTexture is a six-face environment map sampled by direction,
// distinct from the planar-mirror reflection subsystem of §4.G. No
// lighting strategy or render pass samples it. Grounded on the
// teacher's cube-sampling logic.
type CubeMapTexture struct {
	Faces [6]*Texture // +X, -X, +Y, -Y, +Z, -Z
}

func (c *CubeMapTexture) Sample(direction Vector) Color {
	d := direction.Normalize()
	absX, absY, absZ := math.Abs(d.X), math.Abs(d.Y), math.Abs(d.Z)
	var face int
	var u, v float64
	switch {
	case absX >= absY && absX >= absZ:
		if d.X > 0 {
			face, u, v = 0, (-d.Z/absX+1)*0.5, (-d.Y/absX+1)*0.5
		} else {
			face, u, v = 1, (d.Z/absX+1)*0.5, (-d.Y/absX+1)*0.5
		}
	case absY >= absZ:
		if d.Y > 0 {
			face, u, v = 2, (d.X/absY+1)*0.5, (d.Z/absY+1)*0.5
		} else {
			face, u, v = 3, (d.X/absY+1)*0.5, (-d.Z/absY+1)*0.5
		}
	default:
		if d.Z > 0 {
			face, u, v = 4, (d.X/absZ+1)*0.5, (-d.Y/absZ+1)*0.5
		} else {
			face, u, v = 5, (-d.X/absZ+1)*0.5, (-d.Y/absZ+1)*0.5
		}
	}
	if c.Faces[face] == nil {
		return Black
	}
	return c.Faces[face].BilinearSample(u, v)
}
