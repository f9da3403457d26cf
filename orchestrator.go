package raybox

import (
	"sort"

	"github.com/kesh3d/raybox/rlog"
	"go.uber.org/zap"
)

// Config mirrors the options table external callers tune per frame,
// with feature flags defaulting the way the teacher's own constructors
// default: correctness-affecting features on, expensive optional ones
// opt-in.
type Config struct {
	EnableLighting   bool
	EnableSH         bool
	EnableShadows    bool
	EnableReflection bool
	EnableFXAA       bool
	EnableGamma      bool
	EnableVolumetric bool
	WorldMatrix      Matrix
}

func DefaultConfig() Config {
	return Config{
		EnableLighting:   true,
		EnableSH:         true,
		EnableShadows:    true,
		EnableReflection: true,
		EnableFXAA:       false,
		EnableGamma:      true,
		EnableVolumetric: false,
		WorldMatrix:      Identity(),
	}
}

// Orchestrator drives the frame state machine of §4.H:
// idle -> tick -> update-camera -> update-lights -> shadow ->
// reflection -> clear -> project-meshes -> partition -> draw opaque ->
// sort+draw transparent -> post -> blit -> idle.
type Orchestrator struct {
	Width, Height int
	Camera        *Camera
	Meshes        []*Mesh
	Lights        []*Light
	Config        Config
	Background    Color

	shadows     *ShadowSystem
	reflections *reflectionPool
	context     *Context

	invalidated bool
	lastFrame   []*ProjectedFace // retained for pick()
	lastOwners  []*Mesh          // parallel to lastFrame

	OnFrameStart func()
	OnFrameEnd   func()
}

func NewOrchestrator(width, height int, camera *Camera) *Orchestrator {
	return &Orchestrator{
		Width:       width,
		Height:      height,
		Camera:      camera,
		Config:      DefaultConfig(),
		Background:  Black,
		shadows:     NewShadowSystem(1024),
		reflections: newReflectionPool(0.5),
		context:     NewContext(width, height),
		invalidated: true,
	}
}

// Invalidate marks the frame dirty; the next Tick runs every pass.
// Scene mutations (AddMesh, AddLight, camera moves the caller applies
// directly) should call this.
func (o *Orchestrator) Invalidate() { o.invalidated = true }

func (o *Orchestrator) AddMesh(m *Mesh) {
	o.Meshes = append(o.Meshes, m)
	o.Invalidate()
}

func (o *Orchestrator) AddLight(l *Light) {
	o.Lights = append(o.Lights, l)
	o.Invalidate()
}

// ColorBuffer exposes the last-blitted frame.
func (o *Orchestrator) ColorBuffer() *Context { return o.context }

// Tick runs one frame. When the scene has not been invalidated it
// still emits the framestart/frameend notification pair but skips
// every pass, per §4.H.
func (o *Orchestrator) Tick() *Context {
	if o.OnFrameStart != nil {
		o.OnFrameStart()
	}
	defer func() {
		if o.OnFrameEnd != nil {
			o.OnFrameEnd()
		}
	}()

	if !o.invalidated {
		return o.context
	}
	o.invalidated = false

	// update-camera, update-lights: callers mutate Camera/Lights
	// in place before calling Tick; there is no further state here
	// to derive beyond what ViewMatrix/ProjectionMatrix already read
	// live off the Camera each frame.

	sceneCenter, sceneRadius := o.sceneBounds()

	shadowStart := len(o.Lights)
	shadowMaps := o.runShadowPass(sceneCenter, sceneRadius)
	rlog.L.Debug("shadow pass", zap.Int("lights", shadowStart), zap.Int("maps", len(shadowMaps)))

	reflectionBuffers := o.runReflectionPass(sceneCenter, sceneRadius)
	rlog.L.Debug("reflection pass", zap.Int("buffers", len(reflectionBuffers)))

	o.context.ClearDepth()
	o.context.ClearColor(o.Background)

	projector := NewProjector(o.Camera.ViewMatrix(), o.Camera.ProjectionMatrix(), float64(o.Width), float64(o.Height))
	var projected []*ProjectedFace
	var owners []*Mesh
	for _, mesh := range o.Meshes {
		for _, pf := range projector.ProjectMesh(mesh) {
			projected = append(projected, pf)
			owners = append(owners, mesh)
		}
	}
	o.lastFrame = projected
	o.lastOwners = owners

	var opaque, transparent []*ProjectedFace
	for _, pf := range projected {
		if pf.Material != nil && pf.Material.AlphaMode == AlphaBlend {
			transparent = append(transparent, pf)
		} else {
			opaque = append(opaque, pf)
		}
	}

	shadingCtx := &ShadingContext{
		CameraPosition:    o.Camera.Position,
		Lights:            o.Lights,
		ShadowsEnabled:    o.Config.EnableShadows,
		SHEnabled:         o.Config.EnableSH,
		SH:                o.ambientSH(),
		Gamma:             2.2,
		WorldMatrix:       o.Config.WorldMatrix,
		ShadowMaps:        shadowMaps,
		ReflectionBuffers: reflectionBuffers,
		ScreenWidth:       float64(o.Width),
		ScreenHeight:      float64(o.Height),
	}

	for _, pf := range opaque {
		o.drawFace(pf, shadingCtx, false)
	}

	sort.SliceStable(transparent, func(i, j int) bool {
		return transparent[i].Depth.Avg > transparent[j].Depth.Avg
	})
	for _, pf := range transparent {
		o.drawFace(pf, shadingCtx, true)
	}
	rlog.L.Debug("frame drawn", zap.Int("opaque", len(opaque)), zap.Int("transparent", len(transparent)))

	// post and blit are the caller's business: post (§4.L's postfx
	// package) is out of core scope and the color buffer returned
	// here already stands in for "blit" since there is no separate
	// presentation surface in the core.
	return o.context
}

func (o *Orchestrator) drawFace(pf *ProjectedFace, ctx *ShadingContext, transparent bool) {
	shader := NewMaterialShader(pf.Material, ctx)
	shader.Initialize(pf, ctx)
	o.context.Shader = shader
	for _, tri := range pf.Triangles() {
		o.context.DrawTriangle(tri[0], tri[1], tri[2], pf, transparent)
	}
}

// ambientSH collects SH coefficients from probe lights. Only the
// first probe contributes; combining multiple probes into one volume
// is out of scope.
func (o *Orchestrator) ambientSH() SHCoefficients {
	for _, l := range o.Lights {
		if l.Kind == LightProbe && l.SH != nil {
			return *l.SH
		}
	}
	return SHCoefficients{}
}

func (o *Orchestrator) sceneBounds() (Vector, float64) {
	box := EmptyBox
	for _, mesh := range o.Meshes {
		box = box.Extend(mesh.BoundingBox().Transform(mesh.ModelMatrix()))
	}
	center := box.Center()
	radius := center.Distance(box.Min)
	if radius <= 0 {
		radius = 1
	}
	return center, radius
}

// runShadowPass renders one shadow map per shadow-casting light,
// pruning maps for lights no longer present (§4.F).
func (o *Orchestrator) runShadowPass(sceneCenter Vector, sceneRadius float64) map[*Light]*ShadowMap {
	if !o.Config.EnableShadows {
		return nil
	}
	o.shadows.Prune(o.Lights)
	maps := make(map[*Light]*ShadowMap)
	for _, light := range o.Lights {
		if light.Kind == LightAmbient || light.Kind == LightProbe || light.Kind == LightPoint {
			continue
		}
		sm := o.shadows.Render(light, o.Meshes, sceneCenter, sceneRadius)
		if sm == nil {
			rlog.L.Warn("shadow map render skipped", zap.Int("lightKind", int(light.Kind)))
			continue
		}
		maps[light] = sm
	}
	return maps
}

// runReflectionPass renders one buffer per unique mirror plane
// referenced by any face's material, per §4.G.
func (o *Orchestrator) runReflectionPass(sceneCenter Vector, sceneRadius float64) map[string]*ReflectionBuffer {
	if !o.Config.EnableReflection {
		return nil
	}
	planes := o.collectMirrorPlanes()
	referenced := make(map[string]bool, len(planes))
	buffers := make(map[string]*ReflectionBuffer, len(planes))

	for key, plane := range planes {
		referenced[key] = true
		buf := o.reflections.acquire(plane, o.Width, o.Height)
		rlog.L.Info("reflection buffer acquired", zap.String("plane", key))
		o.renderReflection(buf, plane, sceneCenter, sceneRadius)
		buffers[key] = buf
	}
	released := o.reflections.release(referenced)
	if released > 0 {
		rlog.L.Info("reflection buffers released", zap.Int("count", released))
	}
	return buffers
}

func (o *Orchestrator) collectMirrorPlanes() map[string]Plane {
	planes := make(map[string]Plane)
	for _, mesh := range o.Meshes {
		for _, face := range mesh.Faces {
			if face.Material == nil || face.Material.Mirror == nil {
				continue
			}
			plane := face.Material.Mirror.Plane()
			planes[reflectionKey(plane)] = plane
		}
	}
	return planes
}

// renderReflection projects and rasterizes the scene into buf from
// the mirrored camera, culling back-side faces and faces that
// reference this same plane (recursion guard), per §4.G step 2.
func (o *Orchestrator) renderReflection(buf *ReflectionBuffer, plane Plane, sceneCenter Vector, sceneRadius float64) {
	reflected := ReflectCamera(o.Camera, plane)
	projector := NewProjector(reflected.View, reflected.Proj, float64(buf.Context.Width), float64(buf.Context.Height))
	projector.FlipCulling = true

	buf.Context.ClearDepth()
	buf.Context.ClearColor(o.Background)

	key := reflectionKey(plane)
	camSide := plane.Distance(o.Camera.Position)
	var opaque, transparent []*ProjectedFace
	for _, mesh := range o.Meshes {
		for _, pf := range projector.ProjectMesh(mesh) {
			if pf.Material != nil && pf.Material.Mirror != nil && reflectionKey(pf.Material.Mirror.Plane()) == key {
				continue // skip self-reflection to avoid recursion
			}
			if plane.Distance(pf.WorldCenter)*camSide < 0 {
				continue // behind the mirror from the real camera's side
			}
			if pf.Material != nil && pf.Material.AlphaMode == AlphaBlend {
				transparent = append(transparent, pf)
			} else {
				opaque = append(opaque, pf)
			}
		}
	}

	shadingCtx := &ShadingContext{
		CameraPosition: reflected.Position,
		Lights:         o.Lights,
		ShadowsEnabled: false, // shadow maps were built for the real camera's frustum only
		SHEnabled:      o.Config.EnableSH,
		SH:             o.ambientSH(),
		Gamma:          2.2,
		WorldMatrix:    o.Config.WorldMatrix,
		ScreenWidth:    float64(buf.Context.Width),
		ScreenHeight:   float64(buf.Context.Height),
	}

	draw := func(pf *ProjectedFace, transparent bool) {
		shader := NewMaterialShader(pf.Material, shadingCtx)
		shader.Initialize(pf, shadingCtx)
		buf.Context.Shader = shader
		for _, tri := range pf.Triangles() {
			buf.Context.DrawTriangle(tri[0], tri[1], tri[2], pf, transparent)
		}
	}
	for _, pf := range opaque {
		draw(pf, false)
	}
	sort.SliceStable(transparent, func(i, j int) bool {
		return transparent[i].Depth.Avg > transparent[j].Depth.Avg
	})
	for _, pf := range transparent {
		draw(pf, true)
	}
}

// Pick returns the mesh owning the nearest projected face under the
// given screen coordinates, by depthInfo.avg, per §4.H.
func (o *Orchestrator) Pick(screenX, screenY float64) (*Mesh, bool) {
	bestIdx := -1
	for i, pf := range o.lastFrame {
		if !pointInProjectedFace(pf, screenX, screenY) {
			continue
		}
		if bestIdx == -1 || pf.Depth.Avg < o.lastFrame[bestIdx].Depth.Avg {
			bestIdx = i
		}
	}
	if bestIdx == -1 {
		return nil, false
	}
	return o.lastOwners[bestIdx], true
}

func pointInProjectedFace(pf *ProjectedFace, x, y float64) bool {
	for _, tri := range pf.Triangles() {
		if pointInScreenTriangle(tri[0].ScreenX, tri[0].ScreenY, tri[1].ScreenX, tri[1].ScreenY, tri[2].ScreenX, tri[2].ScreenY, x, y) {
			return true
		}
	}
	return false
}

func pointInScreenTriangle(ax, ay, bx, by, cx, cy, px, py float64) bool {
	d1 := edgeFunction(ax, ay, bx, by, px, py)
	d2 := edgeFunction(bx, by, cx, cy, px, py)
	d3 := edgeFunction(cx, cy, ax, ay, px, py)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}
