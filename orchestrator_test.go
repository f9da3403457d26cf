package raybox

import "testing"

func TestDefaultConfigEnablesCorrectnessFeatures(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.EnableLighting || !cfg.EnableSH || !cfg.EnableShadows || !cfg.EnableReflection || !cfg.EnableGamma {
		t.Errorf("DefaultConfig should enable correctness-affecting features by default: %+v", cfg)
	}
	if cfg.EnableFXAA || cfg.EnableVolumetric {
		t.Errorf("DefaultConfig should leave expensive optional features off: %+v", cfg)
	}
}

func TestOrchestratorTickSkipsPassesWhenNotInvalidated(t *testing.T) {
	cam := NewPerspectiveCamera(V(0, 0, 5), V(0, 0, 0), V(0, 1, 0), Radians(60), 1, 0.1, 100)
	orch := NewOrchestrator(16, 16, cam)
	orch.Tick()
	started := 0
	orch.OnFrameStart = func() { started++ }
	orch.Tick()
	if started != 1 {
		t.Errorf("OnFrameStart should still fire once even when the frame is not invalidated, got %d", started)
	}
}

func TestOrchestratorAddMeshInvalidatesFrame(t *testing.T) {
	cam := NewPerspectiveCamera(V(0, 0, 5), V(0, 0, 0), V(0, 1, 0), Radians(60), 1, 0.1, 100)
	orch := NewOrchestrator(16, 16, cam)
	orch.Tick()
	orch.AddMesh(NewCube(nil))
	if !orch.invalidated {
		t.Error("AddMesh should invalidate the frame")
	}
}

func TestOrchestratorDrawsOpaqueCubeToColorBuffer(t *testing.T) {
	cam := NewPerspectiveCamera(V(0, 0, 5), V(0, 0, 0), V(0, 1, 0), Radians(60), 1, 0.1, 100)
	orch := NewOrchestrator(32, 32, cam)
	orch.Background = Color{0, 0, 0, 1}
	mat := NewUnlitMaterial(Color{1, 0, 0, 1})
	orch.AddMesh(NewCube(mat))
	ctx := orch.Tick()

	center := ctx.ColorBuffer.NRGBAAt(16, 16)
	if center.R == 0 {
		t.Error("a red unlit cube filling the view should leave a non-zero red channel at the screen center")
	}
}

func TestOrchestratorAmbientSHUsesFirstProbeLight(t *testing.T) {
	cam := NewPerspectiveCamera(V(0, 0, 5), V(0, 0, 0), V(0, 1, 0), Radians(60), 1, 0.1, 100)
	orch := NewOrchestrator(8, 8, cam)
	sh := SHCoefficients{}
	sh.R[0] = 5
	probe := NewProbeLight(sh)
	orch.Lights = append(orch.Lights, &probe)
	got := orch.ambientSH()
	if got.R[0] != 5 {
		t.Errorf("ambientSH should return the first probe light's coefficients, got R[0]=%v", got.R[0])
	}
}

func TestOrchestratorAmbientSHEmptyWithNoProbe(t *testing.T) {
	cam := NewPerspectiveCamera(V(0, 0, 5), V(0, 0, 0), V(0, 1, 0), Radians(60), 1, 0.1, 100)
	orch := NewOrchestrator(8, 8, cam)
	got := orch.ambientSH()
	if !got.IsZero() {
		t.Error("ambientSH with no probe lights should be zero")
	}
}

func TestOrchestratorSceneBoundsDefaultsToUnitRadiusWhenEmpty(t *testing.T) {
	cam := NewPerspectiveCamera(V(0, 0, 5), V(0, 0, 0), V(0, 1, 0), Radians(60), 1, 0.1, 100)
	orch := NewOrchestrator(8, 8, cam)
	_, radius := orch.sceneBounds()
	if radius != 1 {
		t.Errorf("sceneBounds with no meshes should fall back to radius 1, got %v", radius)
	}
}

func TestOrchestratorCollectMirrorPlanesFindsReflectiveFaces(t *testing.T) {
	cam := NewPerspectiveCamera(V(0, 0, 5), V(0, 0, 0), V(0, 1, 0), Radians(60), 1, 0.1, 100)
	orch := NewOrchestrator(8, 8, cam)
	mat := NewPBRMaterial()
	mat.Mirror = &MirrorPlane{Normal: V(0, 1, 0), Constant: 0}
	orch.AddMesh(NewPlane(1, 1, mat))
	planes := orch.collectMirrorPlanes()
	if len(planes) != 1 {
		t.Errorf("collectMirrorPlanes should find 1 mirror plane, got %d", len(planes))
	}
}

func TestOrchestratorPickReturnsFalseWithNoFrameRendered(t *testing.T) {
	cam := NewPerspectiveCamera(V(0, 0, 5), V(0, 0, 0), V(0, 1, 0), Radians(60), 1, 0.1, 100)
	orch := NewOrchestrator(8, 8, cam)
	if _, ok := orch.Pick(4, 4); ok {
		t.Error("Pick before any Tick has rendered a frame should return false")
	}
}

func TestOrchestratorPickFindsMeshUnderScreenCenter(t *testing.T) {
	cam := NewPerspectiveCamera(V(0, 0, 5), V(0, 0, 0), V(0, 1, 0), Radians(60), 1, 0.1, 100)
	orch := NewOrchestrator(32, 32, cam)
	mesh := NewCube(nil)
	orch.AddMesh(mesh)
	orch.Tick()
	got, ok := orch.Pick(16, 16)
	if !ok || got != mesh {
		t.Errorf("Pick at screen center should hit the cube filling the view, got mesh=%v ok=%v", got, ok)
	}
}

func TestPointInScreenTriangleInsideAndOutside(t *testing.T) {
	if !pointInScreenTriangle(0, 0, 10, 0, 5, 10, 5, 5) {
		t.Error("center point should be inside the triangle")
	}
	if pointInScreenTriangle(0, 0, 10, 0, 5, 10, 100, 100) {
		t.Error("far-away point should be outside the triangle")
	}
}
