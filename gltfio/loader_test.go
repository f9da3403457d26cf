package gltfio

import (
	"math"
	"testing"

	raybox "github.com/kesh3d/raybox"
	"github.com/qmuntal/gltf"
)

func identityNode() *gltf.Node {
	return &gltf.Node{
		Scale: [3]float32{1, 1, 1},
	}
}

func TestNodeTransformIdentityWhenUnset(t *testing.T) {
	got := nodeTransform(identityNode())
	want := raybox.Identity()
	if got != want {
		t.Errorf("nodeTransform of a default node = %v, want identity", got)
	}
}

func TestNodeTransformAppliesTranslation(t *testing.T) {
	n := identityNode()
	n.Translation = [3]float32{1, 2, 3}
	got := nodeTransform(n)
	p := got.MulPosition(raybox.Vector{X: 0, Y: 0, Z: 0})
	if p.X != 1 || p.Y != 2 || p.Z != 3 {
		t.Errorf("nodeTransform with translation = %v applied to origin, want (1,2,3)", p)
	}
}

func TestNodeTransformAppliesScale(t *testing.T) {
	n := identityNode()
	n.Scale = [3]float32{2, 2, 2}
	got := nodeTransform(n)
	p := got.MulPosition(raybox.Vector{X: 1, Y: 1, Z: 1})
	if p.X != 2 || p.Y != 2 || p.Z != 2 {
		t.Errorf("nodeTransform with scale=2 applied to (1,1,1) = %v, want (2,2,2)", p)
	}
}

func TestNodeTransformPrefersExplicitMatrix(t *testing.T) {
	n := &gltf.Node{}
	// Column-major translation-by-5-along-X matrix.
	n.Matrix = [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		5, 0, 0, 1,
	}
	got := nodeTransform(n)
	p := got.MulPosition(raybox.Vector{X: 0, Y: 0, Z: 0})
	if math.Abs(p.X-5) > 1e-6 {
		t.Errorf("nodeTransform with an explicit matrix should use it directly, got %v", p)
	}
}

func TestColumnMajorMatrixTranslationColumn(t *testing.T) {
	m := [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		7, 8, 9, 1,
	}
	got := columnMajorMatrix(m)
	if got.X03 != 7 || got.X13 != 8 || got.X23 != 9 {
		t.Errorf("columnMajorMatrix translation column = (%v,%v,%v), want (7,8,9)", got.X03, got.X13, got.X23)
	}
}

func TestDecodeDataURIValid(t *testing.T) {
	// base64("hi") == "aGk="
	data, ok := decodeDataURI("data:application/octet-stream;base64,aGk=")
	if !ok || string(data) != "hi" {
		t.Errorf("decodeDataURI = (%q,%v), want (\"hi\",true)", data, ok)
	}
}

func TestDecodeDataURIRejectsNonDataURI(t *testing.T) {
	if _, ok := decodeDataURI("https://example.com/image.png"); ok {
		t.Error("decodeDataURI should reject a non-data URI")
	}
}

func TestDecodeDataURIRejectsMissingBase64Marker(t *testing.T) {
	if _, ok := decodeDataURI("data:text/plain,hello"); ok {
		t.Error("decodeDataURI should reject a data URI without the base64 marker")
	}
}

func TestGrayTextureIsOnePixelMidGray(t *testing.T) {
	tex := grayTexture()
	if tex.Width != 1 || tex.Height != 1 {
		t.Errorf("grayTexture size = %dx%d, want 1x1", tex.Width, tex.Height)
	}
}

func TestDecodeKTX2FallsBackToGray(t *testing.T) {
	// Not a valid KTX2 stream; should still fall back instead of panicking.
	tex := decodeKTX2([]byte("not a ktx2 file"))
	if tex == nil || tex.Width != 1 {
		t.Error("decodeKTX2 on invalid data should fall back to a 1x1 gray texture")
	}
}

func TestBasisuSourceDetectsExtension(t *testing.T) {
	plain := &gltf.Texture{}
	if basisuSource(plain) {
		t.Error("a texture with no extensions should not be detected as basisu")
	}
}

func TestLoadReturnsErrorForMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/does-not-exist.gltf"); err == nil {
		t.Error("Load should return an error for a nonexistent file")
	}
}
