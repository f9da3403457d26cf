package raybox

import "math"

// ProjectionType selects perspective or orthographic projection.
type ProjectionType int

const (
	PerspectiveProjection ProjectionType = iota
	OrthographicProjection
)

// Camera carries position + quaternion orientation (rather than the
// teacher's Target-point lookAt pair) plus the projection parameters
// needed to build view/projection matrices and the six frustum planes
// culling and shadow casting test against.
type Camera struct {
	Position       Vector
	Orientation    Quaternion
	FOV            float64 // radians, vertical
	AspectRatio    float64
	NearPlane      float64
	FarPlane       float64
	ProjectionType ProjectionType
	OrthoSize      float64 // orthographic half-height
}

// NewPerspectiveCamera builds a camera looking from position toward
// target, derived via QuaternionLookAt so downstream code only ever
// reasons about Orientation.
func NewPerspectiveCamera(position, target, up Vector, fov, aspectRatio, near, far float64) *Camera {
	return &Camera{
		Position:       position,
		Orientation:    QuaternionLookAt(position, target, up),
		FOV:            fov,
		AspectRatio:    aspectRatio,
		NearPlane:      near,
		FarPlane:       far,
		ProjectionType: PerspectiveProjection,
	}
}

func NewOrthographicCamera(position, target, up Vector, orthoSize, aspectRatio, near, far float64) *Camera {
	return &Camera{
		Position:       position,
		Orientation:    QuaternionLookAt(position, target, up),
		AspectRatio:    aspectRatio,
		NearPlane:      near,
		FarPlane:       far,
		ProjectionType: OrthographicProjection,
		OrthoSize:      orthoSize,
	}
}

// Forward/Right/Up derive the camera's basis vectors from Orientation
// by rotating the canonical -Z/+X/+Y axes (right-handed, looking down -Z).
func (c *Camera) Forward() Vector { return c.Orientation.RotateVector(Vector{0, 0, -1}) }
func (c *Camera) Right() Vector   { return c.Orientation.RotateVector(Vector{1, 0, 0}) }
func (c *Camera) Up() Vector      { return c.Orientation.RotateVector(Vector{0, 1, 0}) }

// LookAt re-points the camera at target without disturbing Position.
func (c *Camera) LookAt(target, up Vector) {
	c.Orientation = QuaternionLookAt(c.Position, target, up)
}

// ViewMatrix builds the view transform (inverse of the camera's world
// transform) as LookAt(Position, Position+Forward(), Up()), both axes
// taken from Orientation; no target point is stored.
func (c *Camera) ViewMatrix() Matrix {
	return LookAt(c.Position, c.Position.Add(c.Forward()), c.Up())
}

func (c *Camera) ProjectionMatrix() Matrix {
	switch c.ProjectionType {
	case PerspectiveProjection:
		return Perspective(Degrees(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
	case OrthographicProjection:
		width := c.OrthoSize * c.AspectRatio
		height := c.OrthoSize
		return Orthographic(-width/2, width/2, -height/2, height/2, c.NearPlane, c.FarPlane)
	default:
		return Identity()
	}
}

func (c *Camera) ViewProjectionMatrix() Matrix {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}

// Frustum returns the six world-space clip planes of §4.F/§4.H,
// extracted from the combined view-projection matrix.
func (c *Camera) Frustum() ViewFrustum {
	return NewViewFrustumFromMatrix(c.ViewProjectionMatrix())
}

// OrbitCamera drives a Camera around a fixed target using spherical
// coordinates, adapted from the teacher's orbit controller to update
// Orientation via QuaternionLookAt instead of a Target field.
type OrbitCamera struct {
	*Camera
	Target          Vector
	Distance        float64
	HorizontalAngle float64
	VerticalAngle   float64
}

func NewOrbitCamera(target Vector, distance, fov, aspectRatio, near, far float64) *OrbitCamera {
	oc := &OrbitCamera{
		Camera:   NewPerspectiveCamera(target.Add(Vector{0, 0, distance}), target, Vector{0, 1, 0}, fov, aspectRatio, near, far),
		Target:   target,
		Distance: distance,
	}
	return oc
}

func (oc *OrbitCamera) Update() {
	x := oc.Distance * math.Sin(oc.VerticalAngle) * math.Cos(oc.HorizontalAngle)
	y := oc.Distance * math.Cos(oc.VerticalAngle)
	z := oc.Distance * math.Sin(oc.VerticalAngle) * math.Sin(oc.HorizontalAngle)
	oc.Position = oc.Target.Add(Vector{x, y, z})
	oc.LookAt(oc.Target, Vector{0, 1, 0})
}

func (oc *OrbitCamera) Rotate(horizontalDelta, verticalDelta float64) {
	oc.HorizontalAngle += horizontalDelta
	oc.VerticalAngle = Clamp(oc.VerticalAngle+verticalDelta, 0.1, math.Pi-0.1)
	oc.Update()
}

func (oc *OrbitCamera) Zoom(delta float64) {
	oc.Distance = math.Max(0.1, oc.Distance+delta)
	oc.Update()
}
