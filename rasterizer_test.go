package raybox

import (
	"math"
	"testing"
)

func TestEdgeFunctionSignMatchesWinding(t *testing.T) {
	ccw := edgeFunction(0, 0, 1, 0, 0.5, 1)
	if ccw >= 0 {
		t.Errorf("edgeFunction (p-a)x(b-a) for a point left of edge a->b should be negative, got %v", ccw)
	}
}

func TestNewContextClearsDepthToInfinity(t *testing.T) {
	ctx := NewContext(4, 4)
	for _, d := range ctx.DepthBuffer {
		if !math.IsInf(d, 1) {
			t.Fatalf("fresh context depth buffer entry = %v, want +Inf", d)
		}
	}
}

func TestContextClearColorFillsBuffer(t *testing.T) {
	ctx := NewContext(2, 2)
	ctx.ClearColor(Color{1, 0, 0, 1})
	c := ctx.ColorBuffer.NRGBAAt(0, 0)
	if c.R != 255 || c.G != 0 {
		t.Errorf("ClearColor(red) pixel = %+v, want R=255 G=0", c)
	}
}

func frontFacingTriangle() (ProjectedVertex, ProjectedVertex, ProjectedVertex) {
	v0 := ProjectedVertex{ScreenX: 1, ScreenY: 1, NDCZ: 0, InvW: 1, World: Vertex{Position: V(0, 0, -1), Normal: V(0, 0, 1)}}
	v1 := ProjectedVertex{ScreenX: 9, ScreenY: 1, NDCZ: 0, InvW: 1, World: Vertex{Position: V(1, 0, -1), Normal: V(0, 0, 1)}}
	v2 := ProjectedVertex{ScreenX: 5, ScreenY: 9, NDCZ: 0, InvW: 1, World: Vertex{Position: V(0.5, 1, -1), Normal: V(0, 0, 1)}}
	return v0, v1, v2
}

func TestDrawTriangleWritesDepthAndColor(t *testing.T) {
	ctx := NewContext(10, 10)
	v0, v1, v2 := frontFacingTriangle()
	face := &ProjectedFace{Normal: V(0, 0, 1), FlatColor: &Color{0, 1, 0, 1}}
	ctx.DrawTriangle(v0, v1, v2, face, false)

	idx := 5*10 + 5
	if math.IsInf(ctx.DepthBuffer[idx], 1) {
		t.Error("DrawTriangle should write a finite depth inside the triangle")
	}
	px := ctx.ColorBuffer.NRGBAAt(5, 5)
	if px.G == 0 {
		t.Error("DrawTriangle should have painted the flat color at an interior pixel")
	}
}

func TestDrawTriangleRespectsDepthTest(t *testing.T) {
	ctx := NewContext(10, 10)
	v0, v1, v2 := frontFacingTriangle()
	near := &ProjectedFace{Normal: V(0, 0, 1), FlatColor: &Color{1, 0, 0, 1}}
	ctx.DrawTriangle(v0, v1, v2, near, false)

	far0, far1, far2 := v0, v1, v2
	far0.World.Position.Z, far1.World.Position.Z, far2.World.Position.Z = -10, -10, -10
	far0.InvW, far1.InvW, far2.InvW = 0.1, 0.1, 0.1
	farFace := &ProjectedFace{Normal: V(0, 0, 1), FlatColor: &Color{0, 0, 1, 1}}
	ctx.DrawTriangle(far0, far1, far2, farFace, false)

	px := ctx.ColorBuffer.NRGBAAt(5, 5)
	if px.B != 0 {
		t.Error("a triangle farther away should not overwrite a nearer triangle's pixel")
	}
}

func TestDrawDepthTriangleWritesNDCDepthOnly(t *testing.T) {
	ctx := NewContext(10, 10)
	v0, v1, v2 := frontFacingTriangle()
	ctx.DrawDepthTriangle(v0, v1, v2, nil)
	idx := 5*10 + 5
	if math.IsInf(ctx.DepthBuffer[idx], 1) {
		t.Error("DrawDepthTriangle should write a finite depth inside the triangle")
	}
}

func TestInterpolatePerspectiveBlendsAtCentroid(t *testing.T) {
	v0 := ProjectedVertex{InvW: 1, World: Vertex{Position: V(0, 0, 0), Normal: V(0, 0, 1)}}
	v1 := ProjectedVertex{InvW: 1, World: Vertex{Position: V(3, 0, 0), Normal: V(0, 0, 1)}}
	v2 := ProjectedVertex{InvW: 1, World: Vertex{Position: V(0, 3, 0), Normal: V(0, 0, 1)}}
	got := interpolatePerspective(v0, v1, v2, 1.0/3, 1.0/3, 1.0/3, 1)
	want := V(1, 1, 0)
	if !approxVec(got.Position, want, 1e-9) {
		t.Errorf("centroid interpolation = %v, want %v", got.Position, want)
	}
}
