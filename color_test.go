package raybox

import (
	"math"
	"testing"
)

func TestColorClamp(t *testing.T) {
	c := Color{1.5, -0.5, 0.5, 2}
	got := c.Clamp()
	if got != (Color{1, 0, 0.5, 1}) {
		t.Errorf("Clamp = %v, want (1,0,0.5,1)", got)
	}
}

func TestColorIsDiscard(t *testing.T) {
	if !Discard.IsDiscard() {
		t.Error("Discard.IsDiscard() should be true")
	}
	if White.IsDiscard() {
		t.Error("White.IsDiscard() should be false")
	}
}

func TestColorLerp(t *testing.T) {
	got := Black.Lerp(White, 0.5)
	want := Color{0.5, 0.5, 0.5, 1}
	if got != want {
		t.Errorf("Lerp(Black,White,0.5) = %v, want %v", got, want)
	}
}

func TestColorNRGBARoundTrip(t *testing.T) {
	c := MakeColor(200, 100, 50, 255)
	r, g, b, a := c.NRGBA()
	if r != 200 || g != 100 || b != 50 || a != 255 {
		t.Errorf("NRGBA round trip = %d,%d,%d,%d, want 200,100,50,255", r, g, b, a)
	}
}

func TestSRGBLinearRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 0.01, 0.2, 0.5, 0.9, 1} {
		got := LinearToSRGB(SRGBToLinear(v))
		if math.Abs(got-v) > 1e-6 {
			t.Errorf("round trip sRGB<->linear at %v = %v", v, got)
		}
	}
}

func TestLuminanceOfWhiteAndBlack(t *testing.T) {
	if math.Abs(White.Luminance()-1) > 1e-9 {
		t.Errorf("White luminance = %v, want 1", White.Luminance())
	}
	if Black.Luminance() != 0 {
		t.Errorf("Black luminance = %v, want 0", Black.Luminance())
	}
}

func TestACESFilmClampsToUnit(t *testing.T) {
	got := ACESFilm(1000)
	if got < 0 || got > 1 {
		t.Errorf("ACESFilm(1000) = %v, want within [0,1]", got)
	}
	if ACESFilm(0) != 0 {
		t.Errorf("ACESFilm(0) = %v, want 0", ACESFilm(0))
	}
}
