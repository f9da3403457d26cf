package postfx

import (
	"image"
	"image/color"
	"testing"
)

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestApplyFXAAFlatImageUnchanged(t *testing.T) {
	img := solidImage(8, 8, color.NRGBA{R: 100, G: 100, B: 100, A: 255})
	out := ApplyFXAA(img)
	c := out.NRGBAAt(4, 4)
	if c.R != 100 || c.G != 100 || c.B != 100 {
		t.Errorf("FXAA on a flat image should leave color unchanged at an interior pixel, got %+v", c)
	}
}

func TestApplyFXAAPreservesAlpha(t *testing.T) {
	img := solidImage(4, 4, color.NRGBA{R: 10, G: 20, B: 30, A: 128})
	out := ApplyFXAA(img)
	if out.NRGBAAt(2, 2).A != 128 {
		t.Errorf("FXAA should preserve the source alpha channel, got %v", out.NRGBAAt(2, 2).A)
	}
}

func TestEncodeGammaBrightensMidGray(t *testing.T) {
	img := solidImage(2, 2, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
	out := EncodeGamma(img, 2.2)
	if out.NRGBAAt(0, 0).R <= 128 {
		t.Errorf("gamma-encoding mid-gray with gamma=2.2 should brighten it, got %v", out.NRGBAAt(0, 0).R)
	}
}

func TestEncodeGammaDefaultsNonPositiveGamma(t *testing.T) {
	img := solidImage(2, 2, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
	zero := EncodeGamma(img, 0)
	std := EncodeGamma(img, 2.2)
	if zero.NRGBAAt(0, 0) != std.NRGBAAt(0, 0) {
		t.Errorf("EncodeGamma with gamma<=0 should default to 2.2: got %+v want %+v", zero.NRGBAAt(0, 0), std.NRGBAAt(0, 0))
	}
}

func TestApplyVolumetricNoLightsLeavesImageUnchanged(t *testing.T) {
	img := solidImage(4, 4, color.NRGBA{R: 50, G: 50, B: 50, A: 255})
	out := ApplyVolumetric(img, nil)
	if out.NRGBAAt(2, 2) != img.NRGBAAt(2, 2) {
		t.Errorf("ApplyVolumetric with no lights should leave pixels unchanged, got %+v want %+v", out.NRGBAAt(2, 2), img.NRGBAAt(2, 2))
	}
}

func TestApplyVolumetricBrightensTowardLight(t *testing.T) {
	img := solidImage(16, 16, color.NRGBA{R: 10, G: 10, B: 10, A: 255})
	// Seed one very bright pixel the shaft will sample from.
	img.SetNRGBA(15, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	lights := []VolumetricLight{{ScreenX: 15, ScreenY: 0, Threshold: 0.5, Intensity: 2, Samples: 8, Decay: 0.9}}
	out := ApplyVolumetric(img, lights)
	if out.NRGBAAt(0, 0).R <= img.NRGBAAt(0, 0).R {
		t.Errorf("a pixel on the path toward a bright light should gain shaft contribution, got %v want >%v", out.NRGBAAt(0, 0).R, img.NRGBAAt(0, 0).R)
	}
}
