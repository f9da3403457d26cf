package raybox

import (
	"math"
	"testing"
)

func approxQuat(a, b Quaternion, eps float64) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps &&
		math.Abs(a.Z-b.Z) < eps && math.Abs(a.W-b.W) < eps
}

func TestQuaternionIdentityRotation(t *testing.T) {
	q := IdentityQuaternion()
	v := V(1, 2, 3)
	if got := q.RotateVector(v); !approxVec(got, v, 1e-9) {
		t.Errorf("identity quaternion should not rotate, got %v", got)
	}
}

func TestQuaternionFromAxisAngleNinety(t *testing.T) {
	q := QuaternionFromAxisAngle(V(0, 0, 1), math.Pi/2)
	got := q.RotateVector(V(1, 0, 0))
	if !approxVec(got, V(0, 1, 0), 1e-9) {
		t.Errorf("90deg rotation about Z of (1,0,0) = %v, want (0,1,0)", got)
	}
}

func TestQuaternionNormalize(t *testing.T) {
	q := Quaternion{1, 2, 3, 4}.Normalize()
	if math.Abs(q.Length()-1) > 1e-9 {
		t.Errorf("Normalize length = %v, want 1", q.Length())
	}
	if got := (Quaternion{}).Normalize(); got != IdentityQuaternion() {
		t.Errorf("Normalize of zero quaternion = %v, want identity", got)
	}
}

func TestQuaternionMatrixRoundTrip(t *testing.T) {
	q := QuaternionFromAxisAngle(V(0, 1, 0), 0.6).Normalize()
	m := q.Matrix()
	q2 := QuaternionFromMatrix(m)
	// q and -q represent the same rotation.
	if !approxQuat(q, q2, 1e-6) && !approxQuat(Quaternion{-q.X, -q.Y, -q.Z, -q.W}, q2, 1e-6) {
		t.Errorf("quaternion->matrix->quaternion round trip mismatch: %v vs %v", q, q2)
	}
}

func TestQuaternionSlerpEndpoints(t *testing.T) {
	a := IdentityQuaternion()
	b := QuaternionFromAxisAngle(V(1, 0, 0), math.Pi/2)
	if got := a.Slerp(b, 0); !approxQuat(got, a, 1e-9) {
		t.Errorf("Slerp t=0 = %v, want a", got)
	}
	if got := a.Slerp(b, 1); !approxQuat(got, b, 1e-9) {
		t.Errorf("Slerp t=1 = %v, want b", got)
	}
}

func TestQuaternionConjugateInversesUnitQuaternion(t *testing.T) {
	q := QuaternionFromAxisAngle(V(0, 1, 0), 1.1).Normalize()
	composed := q.Mul(q.Conjugate())
	if !approxQuat(composed, IdentityQuaternion(), 1e-9) {
		t.Errorf("q * conjugate(q) = %v, want identity", composed)
	}
}
