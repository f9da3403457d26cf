package raybox

import "testing"

func TestReflectionKeyIsStableAndRoundsCoordinates(t *testing.T) {
	p1 := Plane{Normal: V(0, 1, 0), D: 0.00041}
	p2 := Plane{Normal: V(0, 1, 0), D: 0.00049}
	if reflectionKey(p1) != reflectionKey(p2) {
		t.Errorf("reflectionKey should quantize close plane constants to the same key: %q vs %q", reflectionKey(p1), reflectionKey(p2))
	}
}

func TestReflectionKeyDiffersForDifferentPlanes(t *testing.T) {
	p1 := Plane{Normal: V(0, 1, 0), D: 0}
	p2 := Plane{Normal: V(1, 0, 0), D: 0}
	if reflectionKey(p1) == reflectionKey(p2) {
		t.Error("reflectionKey should differ for distinct planes")
	}
}

func TestReflectionPoolAcquireReusesSamePlaneBuffer(t *testing.T) {
	pool := newReflectionPool(1.0)
	plane := Plane{Normal: V(0, 1, 0), D: 0}
	buf1 := pool.acquire(plane, 16, 16)
	buf2 := pool.acquire(plane, 16, 16)
	if buf1 != buf2 {
		t.Error("acquiring the same plane twice should return the same buffer")
	}
}

func TestReflectionPoolReleaseFreesUnreferencedBuffers(t *testing.T) {
	pool := newReflectionPool(1.0)
	plane := Plane{Normal: V(0, 1, 0), D: 0}
	pool.acquire(plane, 16, 16)
	released := pool.release(map[string]bool{})
	if released != 1 {
		t.Errorf("release with no referenced planes should free 1 buffer, got %d", released)
	}
	if len(pool.active) != 0 {
		t.Error("released buffers should be removed from the active set")
	}
}

func TestReflectionPoolAcquireReusesFreelistBufferAfterRelease(t *testing.T) {
	pool := newReflectionPool(1.0)
	plane := Plane{Normal: V(0, 1, 0), D: 0}
	first := pool.acquire(plane, 8, 8)
	pool.release(map[string]bool{})
	second := pool.acquire(plane, 8, 8)
	if first.Context != second.Context {
		t.Error("acquire after release should reuse the freelist's buffer of matching size")
	}
}

func TestReflectionMatrixMatchesPlaneMethod(t *testing.T) {
	p := Plane{Normal: V(0, 1, 0), D: -2}
	if ReflectionMatrix(p) != p.ReflectionMatrix() {
		t.Error("ReflectionMatrix should be a pass-through to Plane.ReflectionMatrix")
	}
}

func TestReflectCameraMirrorsEyeAcrossPlane(t *testing.T) {
	cam := NewPerspectiveCamera(V(0, 2, 5), V(0, 0, 0), V(0, 1, 0), Radians(60), 1, 0.1, 100)
	ground := Plane{Normal: V(0, 1, 0), D: 0}
	reflected := ReflectCamera(cam, ground)
	if !approxVec(reflected.Position, V(0, -2, 5), 1e-9) {
		t.Errorf("reflecting the eye across y=0 should negate its Y, got %v", reflected.Position)
	}
}

func TestObliqueNearClipPreservesInvertibility(t *testing.T) {
	cam := NewPerspectiveCamera(V(0, 2, 5), V(0, 0, 0), V(0, 1, 0), Radians(60), 1, 0.1, 100)
	proj := cam.ProjectionMatrix()
	plane := Plane{Normal: V(0, 1, 0), D: 0}
	out := obliqueNearClip(proj, plane)
	if out.Determinant() == 0 {
		t.Error("obliqueNearClip should not produce a singular projection matrix")
	}
}
