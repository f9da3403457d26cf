package raybox

import "testing"

func TestSceneNodeHierarchyWorldTransform(t *testing.T) {
	root := NewSceneNode("root")
	child := NewSceneNode("child")
	child.SetTransform(Translate(V(1, 0, 0)))
	root.AddChild(child)
	root.SetTransform(Translate(V(10, 0, 0)))
	got := child.GetWorldPosition()
	if got != V(11, 0, 0) {
		t.Errorf("child world position = %v, want (11,0,0)", got)
	}
}

func TestSceneNodeRemoveChild(t *testing.T) {
	root := NewSceneNode("root")
	child := NewSceneNode("child")
	root.AddChild(child)
	root.RemoveChild(child)
	if len(root.Children) != 0 {
		t.Error("RemoveChild should remove the child")
	}
	if child.Parent != nil {
		t.Error("removed child should have nil Parent")
	}
}

func TestSceneNodeFindChild(t *testing.T) {
	root := NewSceneNode("root")
	child := NewSceneNode("target")
	root.AddChild(child)
	if root.FindChild("target") != child {
		t.Error("FindChild should locate a descendant by name")
	}
	if root.FindChild("missing") != nil {
		t.Error("FindChild should return nil for an unknown name")
	}
}

func TestSceneNodeGetRenderableNodes(t *testing.T) {
	root := NewSceneNode("root")
	withMesh := NewSceneNode("withMesh")
	withMesh.Mesh = NewCube(nil)
	withoutMesh := NewSceneNode("withoutMesh")
	hiddenWithMesh := NewSceneNode("hidden")
	hiddenWithMesh.Mesh = NewCube(nil)
	hiddenWithMesh.Visible = false
	root.AddChild(withMesh)
	root.AddChild(withoutMesh)
	root.AddChild(hiddenWithMesh)

	got := root.GetRenderableNodes()
	if len(got) != 1 || got[0] != withMesh {
		t.Errorf("GetRenderableNodes = %v, want only [withMesh]", got)
	}
}

func TestSceneAddLightsHelpers(t *testing.T) {
	scene := NewScene("test")
	scene.AddDirectionalLight(V(0, -1, 0), White, 1)
	scene.AddPointLight(V(0, 5, 0), White, 1, 10)
	scene.AddAmbientLight(White, 0.2)
	if len(scene.Lights) != 3 {
		t.Fatalf("expected 3 lights, got %d", len(scene.Lights))
	}
	if len(scene.GetLightsByKind(LightDirectional)) != 1 {
		t.Error("expected 1 directional light")
	}
	if len(scene.GetLightsByKind(LightPoint)) != 1 {
		t.Error("expected 1 point light")
	}
	scene.ClearLights()
	if len(scene.Lights) != 0 {
		t.Error("ClearLights should empty the light list")
	}
}

func TestSceneMaterialTextureMeshLibraries(t *testing.T) {
	scene := NewScene("test")
	mat := NewPBRMaterial()
	scene.AddMaterial("metal", mat)
	if scene.GetMaterial("metal") != mat {
		t.Error("GetMaterial should return the registered material")
	}
	mesh := NewCube(mat)
	scene.AddMesh("cube", mesh)
	if scene.GetMesh("cube") != mesh {
		t.Error("GetMesh should return the registered mesh")
	}
}

func TestSceneGetBoundsEmpty(t *testing.T) {
	scene := NewScene("empty")
	if got := scene.GetBounds(); got != EmptyBox {
		t.Errorf("GetBounds of an empty scene = %v, want EmptyBox", got)
	}
}

func TestSceneGetBoundsWithMesh(t *testing.T) {
	scene := NewScene("test")
	node := NewSceneNode("cube")
	node.Mesh = NewCube(nil)
	node.SetTransform(Translate(V(5, 0, 0)))
	scene.RootNode.AddChild(node)

	bounds := scene.GetBounds()
	if bounds.Center().X < 4 || bounds.Center().X > 6 {
		t.Errorf("GetBounds center X = %v, want near 5", bounds.Center().X)
	}
}

func TestSceneFlattenBakesWorldTransform(t *testing.T) {
	scene := NewScene("test")
	node := NewSceneNode("cube")
	node.Mesh = NewCube(nil)
	node.SetTransform(Translate(V(3, 0, 0)))
	scene.RootNode.AddChild(node)

	meshes := scene.Flatten()
	if len(meshes) != 1 {
		t.Fatalf("expected 1 flattened mesh, got %d", len(meshes))
	}
	box := meshes[0].BoundingBox()
	if box.Center().X < 2 || box.Center().X > 4 {
		t.Errorf("flattened mesh bounding box center X = %v, want near 3", box.Center().X)
	}
}

func TestSceneBuildOrchestratorWiresLightsAndMeshes(t *testing.T) {
	scene := NewScene("test")
	cam := NewPerspectiveCamera(V(0, 0, 5), V(0, 0, 0), V(0, 1, 0), Radians(60), 1, 0.1, 100)
	scene.AddCamera(cam)
	node := NewSceneNode("cube")
	node.Mesh = NewCube(nil)
	scene.RootNode.AddChild(node)
	scene.AddDirectionalLight(V(0, -1, 0), White, 1)

	orch := scene.BuildOrchestrator(64, 48)
	if len(orch.Meshes) != 1 {
		t.Errorf("expected 1 mesh wired into the orchestrator, got %d", len(orch.Meshes))
	}
	if len(orch.Lights) != 1 {
		t.Errorf("expected 1 light wired into the orchestrator, got %d", len(orch.Lights))
	}
}
