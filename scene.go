package raybox

// Scene is a named library of cameras, lights, materials, textures,
// and meshes plus a SceneNode hierarchy describing how mesh instances
// are placed relative to one another. Skinning, morph targets, and
// keyframe animation are out of scope (see DESIGN.md); the rest of
// the teacher's library/node-graph shape is kept.
type Scene struct {
	RootNode     *SceneNode
	Cameras      []*Camera
	Lights       []*Light
	Materials    map[string]*Material
	Textures     map[string]*Texture
	Meshes       map[string]*Mesh
	ActiveCamera *Camera
	Name         string
}

func NewScene(name string) *Scene {
	return &Scene{
		RootNode:  NewSceneNode("root"),
		Materials: make(map[string]*Material),
		Textures:  make(map[string]*Texture),
		Meshes:    make(map[string]*Mesh),
		Name:      name,
	}
}

// SceneNode is one node of the placement hierarchy: a local transform,
// an optional mesh instance (material lives on the mesh's faces), and
// child nodes.
type SceneNode struct {
	Name           string
	LocalTransform Matrix
	WorldTransform Matrix
	Parent         *SceneNode
	Children       []*SceneNode
	Mesh           *Mesh
	Visible        bool
	CastShadows    bool
	ReceiveShadows bool
}

func NewSceneNode(name string) *SceneNode {
	return &SceneNode{
		Name:           name,
		LocalTransform: Identity(),
		WorldTransform: Identity(),
		Visible:        true,
		CastShadows:    true,
		ReceiveShadows: true,
	}
}

func (node *SceneNode) AddChild(child *SceneNode) {
	if child == nil {
		return
	}
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = node
	node.Children = append(node.Children, child)
	child.UpdateWorldTransform()
}

func (node *SceneNode) RemoveChild(child *SceneNode) {
	for i, c := range node.Children {
		if c == child {
			node.Children = append(node.Children[:i], node.Children[i+1:]...)
			child.Parent = nil
			return
		}
	}
}

func (node *SceneNode) UpdateWorldTransform() {
	if node.Parent != nil {
		node.WorldTransform = node.Parent.WorldTransform.Mul(node.LocalTransform)
	} else {
		node.WorldTransform = node.LocalTransform
	}
	for _, child := range node.Children {
		child.UpdateWorldTransform()
	}
}

func (node *SceneNode) SetTransform(transform Matrix) {
	node.LocalTransform = transform
	node.UpdateWorldTransform()
}

func (node *SceneNode) Translate(translation Vector) {
	node.LocalTransform = node.LocalTransform.Translate(translation)
	node.UpdateWorldTransform()
}

func (node *SceneNode) Rotate(axis Vector, angle float64) {
	node.LocalTransform = node.LocalTransform.Rotate(axis, angle)
	node.UpdateWorldTransform()
}

func (node *SceneNode) Scale(scale Vector) {
	node.LocalTransform = node.LocalTransform.Scale(scale)
	node.UpdateWorldTransform()
}

func (node *SceneNode) GetWorldPosition() Vector {
	return node.WorldTransform.MulPosition(Vector{0, 0, 0})
}

func (node *SceneNode) VisitNodes(visitor func(*SceneNode)) {
	visitor(node)
	for _, child := range node.Children {
		child.VisitNodes(visitor)
	}
}

// GetRenderableNodes returns every visible node with a mesh attached.
func (node *SceneNode) GetRenderableNodes() []*SceneNode {
	var renderables []*SceneNode
	node.VisitNodes(func(n *SceneNode) {
		if n.Visible && n.Mesh != nil {
			renderables = append(renderables, n)
		}
	})
	return renderables
}

func (node *SceneNode) FindChild(name string) *SceneNode {
	if node.Name == name {
		return node
	}
	for _, child := range node.Children {
		if result := child.FindChild(name); result != nil {
			return result
		}
	}
	return nil
}

// GetBounds unions every renderable node's world-space bounding box.
func (scene *Scene) GetBounds() Box {
	bounds := EmptyBox
	scene.RootNode.VisitNodes(func(node *SceneNode) {
		if node.Mesh != nil {
			worldBounds := node.Mesh.BoundingBox().Transform(node.WorldTransform.Mul(node.Mesh.ModelMatrix()))
			bounds = bounds.Extend(worldBounds)
		}
	})
	return bounds
}

func (scene *Scene) AddCamera(camera *Camera) {
	scene.Cameras = append(scene.Cameras, camera)
	if scene.ActiveCamera == nil {
		scene.ActiveCamera = camera
	}
}

func (scene *Scene) AddLight(light *Light) {
	scene.Lights = append(scene.Lights, light)
}

func (scene *Scene) AddMaterial(name string, material *Material) { scene.Materials[name] = material }
func (scene *Scene) GetMaterial(name string) *Material            { return scene.Materials[name] }
func (scene *Scene) AddTexture(name string, texture *Texture)     { scene.Textures[name] = texture }
func (scene *Scene) GetTexture(name string) *Texture              { return scene.Textures[name] }
func (scene *Scene) AddMesh(name string, mesh *Mesh)              { scene.Meshes[name] = mesh }
func (scene *Scene) GetMesh(name string) *Mesh                    { return scene.Meshes[name] }

// CreateMeshNode creates a scene node instancing a library mesh. The
// material lives on the mesh's own faces (set via materialName when
// the mesh was built), matching the teacher's library convention
// while respecting the Face-owns-Material data model of §9.
func (scene *Scene) CreateMeshNode(name, meshName string) *SceneNode {
	node := NewSceneNode(name)
	node.Mesh = scene.GetMesh(meshName)
	return node
}

func (scene *Scene) AddDirectionalLight(direction Vector, color Color, intensity float64) {
	light := NewDirectionalLight(direction, color, intensity)
	scene.AddLight(&light)
}

func (scene *Scene) AddPointLight(position Vector, color Color, intensity, rangeLimit float64) {
	light := NewPointLight(position, color, intensity, rangeLimit)
	scene.AddLight(&light)
}

func (scene *Scene) AddSpotLight(position, direction Vector, color Color, intensity, rangeLimit, innerCone, outerCone float64) {
	light := NewSpotLight(position, direction, color, intensity, rangeLimit, innerCone, outerCone)
	scene.AddLight(&light)
}

func (scene *Scene) AddAmbientLight(color Color, intensity float64) {
	light := NewAmbientLight(color, intensity)
	scene.AddLight(&light)
}

func (scene *Scene) ClearLights() { scene.Lights = nil }

func (scene *Scene) GetLightsByKind(kind LightKind) []*Light {
	var lights []*Light
	for _, light := range scene.Lights {
		if light.Kind == kind {
			lights = append(lights, light)
		}
	}
	return lights
}

// Flatten bakes every renderable node's world transform onto a copy
// of its mesh (Mesh.ModelMatrix already carries the mesh's own local
// T/R/S, so the node's world transform is baked into vertex data
// rather than composed algebraically — it is the node graph, not the
// per-frame pipeline, that understands parent/child placement). The
// result is the flat []*Mesh list an Orchestrator consumes directly.
func (scene *Scene) Flatten() []*Mesh {
	var meshes []*Mesh
	identity := Identity()
	for _, node := range scene.RootNode.GetRenderableNodes() {
		baked := node.Mesh.Copy()
		if node.WorldTransform != identity {
			local := baked.ModelMatrix()
			baked.TransformVertices(node.WorldTransform.Mul(local))
			baked.Translation, baked.Rotation, baked.Scale = Vector{}, Vector{}, Vector{1, 1, 1}
		}
		meshes = append(meshes, baked)
	}
	return meshes
}

// BuildOrchestrator assembles an Orchestrator from the scene's active
// camera, flattened meshes, and lights, ready for Tick.
func (scene *Scene) BuildOrchestrator(width, height int) *Orchestrator {
	o := NewOrchestrator(width, height, scene.ActiveCamera)
	for _, mesh := range scene.Flatten() {
		o.AddMesh(mesh)
	}
	for _, light := range scene.Lights {
		o.AddLight(light)
	}
	return o
}
