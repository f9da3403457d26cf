package raybox

import (
	"math"
	"testing"
)

func TestCameraForwardPointsAtTarget(t *testing.T) {
	eye := V(0, 0, 5)
	target := V(0, 0, 0)
	cam := NewPerspectiveCamera(eye, target, V(0, 1, 0), Radians(60), 1, 0.1, 100)
	want := target.Sub(eye).Normalize()
	if got := cam.Forward(); !approxVec(got, want, 1e-9) {
		t.Errorf("Forward = %v, want %v", got, want)
	}
}

func TestCameraViewMatrixMapsEyeToOrigin(t *testing.T) {
	cam := NewPerspectiveCamera(V(0, 0, 5), V(0, 0, 0), V(0, 1, 0), Radians(60), 1, 0.1, 100)
	got := cam.ViewMatrix().MulPosition(cam.Position)
	if !approxVec(got, V(0, 0, 0), 1e-9) {
		t.Errorf("ViewMatrix should map the eye position to the view-space origin, got %v", got)
	}
}

func TestCameraViewMatrixPlacesTargetAheadOnNegativeZ(t *testing.T) {
	cam := NewPerspectiveCamera(V(0, 0, 5), V(0, 0, 0), V(0, 1, 0), Radians(60), 1, 0.1, 100)
	got := cam.ViewMatrix().MulPosition(V(0, 0, 0))
	if got.Z >= 0 {
		t.Errorf("target should be in front of the camera (negative view-space Z), got %v", got)
	}
}

func TestCameraLookAtUpdatesOrientation(t *testing.T) {
	cam := NewPerspectiveCamera(V(0, 0, 5), V(0, 0, 0), V(0, 1, 0), Radians(60), 1, 0.1, 100)
	cam.LookAt(V(5, 0, 5), V(0, 1, 0))
	want := V(5, 0, 5).Sub(V(0, 0, 5)).Normalize()
	if got := cam.Forward(); !approxVec(got, want, 1e-9) {
		t.Errorf("after LookAt, Forward = %v, want %v", got, want)
	}
}

func TestOrthographicProjectionType(t *testing.T) {
	cam := NewOrthographicCamera(V(0, 0, 5), V(0, 0, 0), V(0, 1, 0), 10, 1, 0.1, 100)
	m := cam.ProjectionMatrix()
	// An orthographic projection matrix's bottom row is (0,0,0,1), unlike perspective's (0,0,-1,0).
	if m.X33 != 1 || m.X32 != 0 {
		t.Errorf("orthographic projection bottom row = (%v,%v,%v,%v), want (0,0,0,1)", m.X30, m.X31, m.X32, m.X33)
	}
}

func TestOrbitCameraUpdatePositionsOnSphere(t *testing.T) {
	target := V(0, 0, 0)
	oc := NewOrbitCamera(target, 10, Radians(60), 1, 0.1, 100)
	oc.VerticalAngle = math.Pi / 2
	oc.HorizontalAngle = 0
	oc.Update()
	if math.Abs(oc.Position.Distance(target)-10) > 1e-6 {
		t.Errorf("orbit camera should stay at fixed distance from target, got %v", oc.Position.Distance(target))
	}
}

func TestOrbitCameraZoomClampsToMinimum(t *testing.T) {
	oc := NewOrbitCamera(V(0, 0, 0), 1, Radians(60), 1, 0.1, 100)
	oc.Zoom(-10)
	if oc.Distance < 0.1 {
		t.Errorf("Zoom should clamp distance to a positive minimum, got %v", oc.Distance)
	}
}

func TestOrbitCameraRotateClampsVerticalAngle(t *testing.T) {
	oc := NewOrbitCamera(V(0, 0, 0), 5, Radians(60), 1, 0.1, 100)
	oc.Rotate(0, -100)
	if oc.VerticalAngle < 0.1 {
		t.Errorf("VerticalAngle should clamp above 0.1, got %v", oc.VerticalAngle)
	}
	oc.Rotate(0, 1000)
	if oc.VerticalAngle > math.Pi-0.1 {
		t.Errorf("VerticalAngle should clamp below pi-0.1, got %v", oc.VerticalAngle)
	}
}
