package raybox

import (
	"image"
	"image/color"
	"math"
)

func nrgba(r, g, b, a uint8) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

// Shader is the glue §4.E's Shader component exposes to the
// rasterizer: initialize once per face, shade once per fragment.
type Shader interface {
	Initialize(face *ProjectedFace, ctx *ShadingContext)
	Shade(world Vertex, normal Vector, screenX, screenY float64) (Color, bool)
	Opacity() float64
}

// Context is the rasterizer: it owns the color/depth buffers and
// exposes the three entry points §4.D names. Grounded on the
// teacher's Context (ColorBuffer/DepthBuffer/Shader/WriteColor/
// WriteDepth fields borrowed and restored around the shadow pass).
type Context struct {
	ColorBuffer *image.NRGBA
	DepthBuffer []float64 // positive view-space distance; +Inf = empty

	Width, Height int
	WriteColor    bool
	WriteDepth    bool
	Shader        Shader
}

func NewContext(width, height int) *Context {
	c := &Context{
		ColorBuffer: image.NewNRGBA(image.Rect(0, 0, width, height)),
		DepthBuffer: make([]float64, width*height),
		Width:       width,
		Height:      height,
		WriteColor:  true,
		WriteDepth:  true,
	}
	c.ClearDepth()
	return c
}

func (c *Context) ClearDepth() {
	for i := range c.DepthBuffer {
		c.DepthBuffer[i] = math.Inf(1)
	}
}

func (c *Context) ClearColor(background Color) {
	r, g, b, a := background.NRGBA()
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			c.ColorBuffer.SetNRGBA(x, y, nrgba(r, g, b, a))
		}
	}
}

// edgeFunction is the signed area of the parallelogram (c-a)x(b-a)
// projected to the screen plane, used for both the inside test and
// the barycentric weights.
func edgeFunction(ax, ay, bx, by, px, py float64) float64 {
	return (px-ax)*(by-ay) - (py-ay)*(bx-ax)
}

// DrawTriangle fills one screen triangle, perspective-correctly
// interpolating all shading inputs and Z-testing against linear
// view-space depth. BLEND fragments blend source-over without
// writing depth.
func (c *Context) DrawTriangle(v0, v1, v2 ProjectedVertex, face *ProjectedFace, isTransparent bool) {
	minX := int(math.Floor(math.Min(v0.ScreenX, math.Min(v1.ScreenX, v2.ScreenX))))
	maxX := int(math.Ceil(math.Max(v0.ScreenX, math.Max(v1.ScreenX, v2.ScreenX))))
	minY := int(math.Floor(math.Min(v0.ScreenY, math.Min(v1.ScreenY, v2.ScreenY))))
	maxY := int(math.Ceil(math.Max(v0.ScreenY, math.Max(v1.ScreenY, v2.ScreenY))))
	minX, minY = ClampInt(minX, 0, c.Width-1), ClampInt(minY, 0, c.Height-1)
	maxX, maxY = ClampInt(maxX, 0, c.Width-1), ClampInt(maxY, 0, c.Height-1)

	area := edgeFunction(v0.ScreenX, v0.ScreenY, v1.ScreenX, v1.ScreenY, v2.ScreenX, v2.ScreenY)
	if area == 0 {
		return
	}

	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			w0 := edgeFunction(v1.ScreenX, v1.ScreenY, v2.ScreenX, v2.ScreenY, px, py)
			w1 := edgeFunction(v2.ScreenX, v2.ScreenY, v0.ScreenX, v0.ScreenY, px, py)
			w2 := edgeFunction(v0.ScreenX, v0.ScreenY, v1.ScreenX, v1.ScreenY, px, py)
			if area > 0 {
				if w0 < 0 || w1 < 0 || w2 < 0 {
					continue
				}
			} else {
				if w0 > 0 || w1 > 0 || w2 > 0 {
					continue
				}
			}
			b0, b1, b2 := w0/area, w1/area, w2/area

			invW := b0*v0.InvW + b1*v1.InvW + b2*v2.InvW
			if invW == 0 {
				continue
			}
			ndcZ := b0*v0.NDCZ + b1*v1.NDCZ + b2*v2.NDCZ
			_ = ndcZ

			world := interpolatePerspective(v0, v1, v2, b0, b1, b2, invW)
			viewDepth := 1 / invW

			idx := y*c.Width + x
			if viewDepth < 0 || viewDepth > c.DepthBuffer[idx] {
				if !isTransparent {
					continue
				}
			}

			normal := face.Normal
			if !world.Normal.IsDegenerate() {
				normal = world.Normal
			}

			var color Color
			ok := true
			if c.Shader != nil {
				color, ok = c.Shader.Shade(world, normal, px, py)
			} else if face.FlatColor != nil {
				color = *face.FlatColor
			} else {
				color = White
			}
			if !ok {
				continue
			}

			if isTransparent {
				c.blend(x, y, color)
				continue
			}
			if viewDepth >= c.DepthBuffer[idx] {
				continue
			}
			if c.WriteColor {
				c.setPixel(x, y, color)
			}
			if c.WriteDepth {
				c.DepthBuffer[idx] = viewDepth
			}
		}
	}
}

// DrawDepthTriangle rasterizes depth only, used by the shadow pass;
// material is consulted for MASK alpha-discard.
func (c *Context) DrawDepthTriangle(v0, v1, v2 ProjectedVertex, material *Material) {
	minX := int(math.Floor(math.Min(v0.ScreenX, math.Min(v1.ScreenX, v2.ScreenX))))
	maxX := int(math.Ceil(math.Max(v0.ScreenX, math.Max(v1.ScreenX, v2.ScreenX))))
	minY := int(math.Floor(math.Min(v0.ScreenY, math.Min(v1.ScreenY, v2.ScreenY))))
	maxY := int(math.Ceil(math.Max(v0.ScreenY, math.Max(v1.ScreenY, v2.ScreenY))))
	minX, minY = ClampInt(minX, 0, c.Width-1), ClampInt(minY, 0, c.Height-1)
	maxX, maxY = ClampInt(maxX, 0, c.Width-1), ClampInt(maxY, 0, c.Height-1)

	area := edgeFunction(v0.ScreenX, v0.ScreenY, v1.ScreenX, v1.ScreenY, v2.ScreenX, v2.ScreenY)
	if area == 0 {
		return
	}

	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			w0 := edgeFunction(v1.ScreenX, v1.ScreenY, v2.ScreenX, v2.ScreenY, px, py)
			w1 := edgeFunction(v2.ScreenX, v2.ScreenY, v0.ScreenX, v0.ScreenY, px, py)
			w2 := edgeFunction(v0.ScreenX, v0.ScreenY, v1.ScreenX, v1.ScreenY, px, py)
			if area > 0 {
				if w0 < 0 || w1 < 0 || w2 < 0 {
					continue
				}
			} else {
				if w0 > 0 || w1 > 0 || w2 > 0 {
					continue
				}
			}
			b0, b1, b2 := w0/area, w1/area, w2/area
			invW := b0*v0.InvW + b1*v1.InvW + b2*v2.InvW
			if invW == 0 {
				continue
			}
			ndcZ := (b0*v0.NDCZ*v0.InvW + b1*v1.NDCZ*v1.InvW + b2*v2.NDCZ*v2.InvW) / invW

			if material != nil && material.AlphaMode == AlphaMask && material.BaseColorMap != nil {
				world := interpolatePerspective(v0, v1, v2, b0, b1, b2, invW)
				a := material.BaseColorMap.Sample(world.Texture.X, world.Texture.Y).A
				if a < material.AlphaCutoff {
					continue
				}
			}

			idx := y*c.Width + x
			if ndcZ < c.DepthBuffer[idx] {
				c.DepthBuffer[idx] = ndcZ
			}
		}
	}
}

// DrawTransmissionTriangle writes colored attenuation for BLEND faces
// into an off-screen transmission buffer consulted by shadow sampling.
func (c *Context) DrawTransmissionTriangle(v0, v1, v2 ProjectedVertex, material *Material) {
	if material == nil {
		return
	}
	minX := int(math.Floor(math.Min(v0.ScreenX, math.Min(v1.ScreenX, v2.ScreenX))))
	maxX := int(math.Ceil(math.Max(v0.ScreenX, math.Max(v1.ScreenX, v2.ScreenX))))
	minY := int(math.Floor(math.Min(v0.ScreenY, math.Min(v1.ScreenY, v2.ScreenY))))
	maxY := int(math.Ceil(math.Max(v0.ScreenY, math.Max(v1.ScreenY, v2.ScreenY))))
	minX, minY = ClampInt(minX, 0, c.Width-1), ClampInt(minY, 0, c.Height-1)
	maxX, maxY = ClampInt(maxX, 0, c.Width-1), ClampInt(maxY, 0, c.Height-1)
	area := edgeFunction(v0.ScreenX, v0.ScreenY, v1.ScreenX, v1.ScreenY, v2.ScreenX, v2.ScreenY)
	if area == 0 {
		return
	}
	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			w0 := edgeFunction(v1.ScreenX, v1.ScreenY, v2.ScreenX, v2.ScreenY, px, py)
			w1 := edgeFunction(v2.ScreenX, v2.ScreenY, v0.ScreenX, v0.ScreenY, px, py)
			w2 := edgeFunction(v0.ScreenX, v0.ScreenY, v1.ScreenX, v1.ScreenY, px, py)
			if area > 0 {
				if w0 < 0 || w1 < 0 || w2 < 0 {
					continue
				}
			} else if w0 > 0 || w1 > 0 || w2 > 0 {
				continue
			}
			b0, b1, b2 := w0/area, w1/area, w2/area
			invW := b0*v0.InvW + b1*v1.InvW + b2*v2.InvW
			if invW == 0 {
				continue
			}
			world := interpolatePerspective(v0, v1, v2, b0, b1, b2, invW)
			albedo := Color{1, 1, 1, 1}
			if material.BaseColorMap != nil {
				albedo = material.BaseColorMap.Sample(world.Texture.X, world.Texture.Y)
			}
			tint := albedo.MulScalar(albedo.A)
			c.blend(x, y, tint)
		}
	}
}

func (c *Context) blend(x, y int, src Color) {
	r, g, b, _ := c.ColorBuffer.NRGBAAt(x, y).RGBA()
	dst := Color{float64(r) / 65535, float64(g) / 65535, float64(b) / 65535, 1}
	out := src.Lerp(dst, 1-src.A)
	c.setPixel(x, y, out.Alpha(1))
}

func (c *Context) setPixel(x, y int, col Color) {
	r, g, b, a := col.NRGBA()
	c.ColorBuffer.SetNRGBA(x, y, nrgba(r, g, b, a))
}

// interpolatePerspective recovers a Vertex's attributes at a
// fragment via a/w barycentric blend then division by interpolated
// 1/w, the perspective-correct scheme §4.D requires.
func interpolatePerspective(v0, v1, v2 ProjectedVertex, b0, b1, b2, invW float64) Vertex {
	blend := func(a0, a1, a2 Vector) Vector {
		return a0.MulScalar(b0 * v0.InvW).Add(a1.MulScalar(b1 * v1.InvW)).Add(a2.MulScalar(b2 * v2.InvW)).DivScalar(invW)
	}
	blendColor := func(a0, a1, a2 Color) Color {
		return a0.MulScalar(b0 * v0.InvW).Add(a1.MulScalar(b1 * v1.InvW)).Add(a2.MulScalar(b2 * v2.InvW)).DivScalar(invW)
	}
	return Vertex{
		Position: blend(v0.World.Position, v1.World.Position, v2.World.Position),
		Normal:   blend(v0.World.Normal, v1.World.Normal, v2.World.Normal).Normalize(),
		Texture:  blend(v0.World.Texture, v1.World.Texture, v2.World.Texture),
		Color:    blendColor(v0.World.Color, v1.World.Color, v2.World.Color),
	}
}
