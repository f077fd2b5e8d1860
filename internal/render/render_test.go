package render

import (
	"image"
	"testing"
)

func alphaSum(img image.Image) uint64 {
	bounds := img.Bounds()
	var sum uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			sum += uint64(a)
		}
	}
	return sum
}

func TestRenderEmptyIsTransparent(t *testing.T) {
	r := testRenderer()

	img := r.Render("   ")
	bounds := img.Bounds()
	if bounds.Dx() != r.cfg.FrameWidth || bounds.Dy() != r.cfg.FrameHeight {
		t.Errorf("frame size = %dx%d, want %dx%d",
			bounds.Dx(), bounds.Dy(), r.cfg.FrameWidth, r.cfg.FrameHeight)
	}
	if alphaSum(img) != 0 {
		t.Error("expected a fully transparent frame for empty text")
	}
}

func TestRenderDrawsText(t *testing.T) {
	r := testRenderer()

	img := r.Render("hello")
	if alphaSum(img) == 0 {
		t.Error("expected drawn pixels for non-empty text")
	}
}

func TestRenderHebrewDrawsText(t *testing.T) {
	r := testRenderer()

	img := r.Render("שלום עולם")
	if alphaSum(img) == 0 {
		t.Error("expected drawn pixels for Hebrew text")
	}
}
