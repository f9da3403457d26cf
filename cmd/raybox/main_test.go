package main

import (
	"testing"

	raybox "github.com/kesh3d/raybox"
)

func TestFramePathSingleFrameReturnsBaseUnchanged(t *testing.T) {
	if got := framePath("out.png", 0, 1); got != "out.png" {
		t.Errorf("framePath with total=1 = %q, want unchanged \"out.png\"", got)
	}
}

func TestFramePathMultiFrameInsertsIndex(t *testing.T) {
	got := framePath("out.png", 2, 10)
	want := "out_002.png"
	if got != want {
		t.Errorf("framePath(2, 10) = %q, want %q", got, want)
	}
}

func TestFramePathWithoutExtensionStillAppendsIndex(t *testing.T) {
	got := framePath("frame", 1, 5)
	if got != "frame_001.png" {
		t.Errorf("framePath without a .png suffix = %q, want \"frame_001.png\"", got)
	}
}

func TestDepthSuffixInsertsBeforeExtension(t *testing.T) {
	if got := depthSuffix("frame.png"); got != "frame_depth.png" {
		t.Errorf("depthSuffix(\"frame.png\") = %q, want \"frame_depth.png\"", got)
	}
}

func TestDepthSuffixWithoutExtension(t *testing.T) {
	if got := depthSuffix("frame"); got != "frame_depth.png" {
		t.Errorf("depthSuffix(\"frame\") = %q, want \"frame_depth.png\"", got)
	}
}

func TestDefaultCameraFramesSceneBounds(t *testing.T) {
	scene := raybox.NewScene("test")
	node := raybox.NewSceneNode("cube")
	node.Mesh = raybox.NewCube(nil)
	scene.RootNode.AddChild(node)

	cam := defaultCamera(scene, 800, 600)
	if cam == nil {
		t.Fatal("defaultCamera should return a non-nil camera")
	}
	if cam.Position.Distance(raybox.V(0, 0, 0)) <= 0 {
		t.Error("defaultCamera should be positioned away from the scene center")
	}
}

func TestDefaultCameraHandlesEmptyScene(t *testing.T) {
	scene := raybox.NewScene("empty")
	cam := defaultCamera(scene, 800, 600)
	if cam == nil {
		t.Fatal("defaultCamera should not be nil even for an empty scene")
	}
}

func TestAddDefaultLightingAddsThreeDirectionalLights(t *testing.T) {
	scene := raybox.NewScene("test")
	addDefaultLighting(scene)
	if len(scene.Lights) != 3 {
		t.Errorf("addDefaultLighting should add 3 lights, got %d", len(scene.Lights))
	}
	for _, l := range scene.Lights {
		if l.Kind != raybox.LightDirectional {
			t.Errorf("addDefaultLighting should only add directional lights, got kind %v", l.Kind)
		}
	}
}

func TestDepthImageBackgroundIsBlack(t *testing.T) {
	ctx := raybox.NewContext(4, 4)
	img := depthImage(ctx)
	r, g, b, _ := img.At(0, 0).RGBA()
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("an empty depth buffer (all +Inf) should render black, got (%d,%d,%d)", r, g, b)
	}
}

func TestDepthImageNearestSampleIsBrightest(t *testing.T) {
	ctx := raybox.NewContext(2, 1)
	ctx.DepthBuffer[0] = 1
	ctx.DepthBuffer[1] = 10
	img := depthImage(ctx)
	near, _, _, _ := img.At(0, 0).RGBA()
	far, _, _, _ := img.At(1, 0).RGBA()
	if near <= far {
		t.Errorf("a nearer depth sample should render brighter than a farther one: near=%v far=%v", near, far)
	}
}
