package raybox

import (
	"fmt"
	"math"
)

// reflectionKey quantizes a mirror plane's equation so distinct Face
// references to the "same" plane share one buffer, per §4.G.
func reflectionKey(p Plane) string {
	q := func(x float64) float64 { return math.Round(x*1000) / 1000 }
	return fmt.Sprintf("%.3f|%.3f|%.3f|%.3f", q(p.Normal.X), q(p.Normal.Y), q(p.Normal.Z), q(p.D))
}

// ReflectionBuffer is an off-screen render target for one mirror
// plane, per §3.
type ReflectionBuffer struct {
	Plane   Plane
	Context *Context
}

// reflectionPool manages per-plane buffers, sized by a resolution
// scale of the main canvas, with released buffers returned to a
// size-keyed freelist (§4.G).
type reflectionPool struct {
	scale     float64
	active    map[string]*ReflectionBuffer
	freelist  map[string][]*Context
}

func newReflectionPool(scale float64) *reflectionPool {
	return &reflectionPool{scale: scale, active: make(map[string]*ReflectionBuffer), freelist: make(map[string][]*Context)}
}

func (p *reflectionPool) sizeKey(w, h int) string { return fmt.Sprintf("%dx%d", w, h) }

func (p *reflectionPool) acquire(plane Plane, width, height int) *ReflectionBuffer {
	key := reflectionKey(plane)
	if buf, ok := p.active[key]; ok {
		return buf
	}
	sw := maxInt(1, int(float64(width)*p.scale))
	sh := maxInt(1, int(float64(height)*p.scale))
	sk := p.sizeKey(sw, sh)
	var ctx *Context
	if pool := p.freelist[sk]; len(pool) > 0 {
		ctx = pool[len(pool)-1]
		p.freelist[sk] = pool[:len(pool)-1]
		ctx.ClearDepth()
	} else {
		ctx = NewContext(sw, sh)
	}
	buf := &ReflectionBuffer{Plane: plane, Context: ctx}
	p.active[key] = buf
	return buf
}

// release returns buffers for planes no longer referenced by any face
// back to the freelist, keyed by size for reuse, and reports how many
// were released.
func (p *reflectionPool) release(stillReferenced map[string]bool) int {
	released := 0
	for key, buf := range p.active {
		if stillReferenced[key] {
			continue
		}
		sk := p.sizeKey(buf.Context.Width, buf.Context.Height)
		p.freelist[sk] = append(p.freelist[sk], buf.Context)
		delete(p.active, key)
		released++
	}
	return released
}

// ReflectionMatrix computes R = I - 2*n*n^T with the translation
// column -2*d*n, as plane.go's ReflectionMatrix already implements;
// this wrapper exists for call-site symmetry with the spec's naming.
func ReflectionMatrix(plane Plane) Matrix {
	return plane.ReflectionMatrix()
}

// ReflectedView is the mirrored camera state of §4.G step 1: the
// reflected eye position plus the view/projection pair a Projector
// can be built from directly (Projector takes matrices, not a
// Camera, so there is no need to force this back into a Camera).
type ReflectedView struct {
	Position Vector
	View     Matrix
	Proj     Matrix
}

// ReflectCamera mirrors the eye, reflects the view, and applies an
// oblique near-clip so the mirror plane itself becomes the new near
// plane (Lengyel's method, right-handed NDC).
func ReflectCamera(cam *Camera, plane Plane) ReflectedView {
	r := plane.ReflectionMatrix()
	position := r.MulPosition(cam.Position)
	view := cam.ViewMatrix().Mul(r)

	camPlane := plane.Transform(view)
	if camPlane.Distance(Vector{}) < 0 {
		camPlane.Normal = camPlane.Normal.Negate()
		camPlane.D = -camPlane.D
	}
	proj := obliqueNearClip(cam.ProjectionMatrix(), camPlane)

	return ReflectedView{Position: position, View: view, Proj: proj}
}

// obliqueNearClip implements Lengyel's method: find the clip-space
// corner most opposite the mirror plane, scale the plane so the
// corner maps to w after transform, and replace the projection's
// third row.
func obliqueNearClip(proj Matrix, plane Plane) Matrix {
	sign := func(x float64) float64 {
		if x > 0 {
			return 1
		} else if x < 0 {
			return -1
		}
		return 0
	}
	cx := sign(plane.Normal.X)
	cy := sign(plane.Normal.Y)
	corner := Vector{cx, cy, 1}

	invProj := proj.Inverse()
	q := invProj.MulPositionW(corner)

	c := Vector{plane.Normal.X, plane.Normal.Y, plane.Normal.Z}
	cDotQ := c.X*q.X + c.Y*q.Y + c.Z*q.Z + plane.D*q.W
	if cDotQ == 0 {
		return proj
	}
	scale := 2 / cDotQ
	out := proj
	out.X20 = c.X * scale
	out.X21 = c.Y * scale
	out.X22 = c.Z*scale + 1
	out.X23 = plane.D * scale
	return out
}
