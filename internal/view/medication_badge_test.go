package view

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"testing"
)

func TestParseHexColor(t *testing.T) {
	got, err := ParseHexColor("#3B82F6")
	if err != nil {
		t.Fatalf("ParseHexColor returned error: %v", err)
	}
	if got != (color.RGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}) {
		t.Fatalf("unexpected color %+v", got)
	}

	short, err := ParseHexColor("#fff")
	if err != nil || short != (color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}) {
		t.Fatalf("unexpected short color %+v, %v", short, err)
	}

	for _, raw := range []string{"", "blue", "#12345", "#GGGGGG"} {
		if _, err := ParseHexColor(raw); !errors.Is(err, ErrInvalidColor) {
			t.Fatalf("expected ErrInvalidColor for %q, got %v", raw, err)
		}
	}

	if BadgeColor("not-a-color") != (color.RGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}) {
		t.Fatal("expected palette fallback")
	}
}

func TestBadgeLetter(t *testing.T) {
	cases := map[string]rune{
		"aspirin":     'A',
		"  (9) vit":   '9',
		"พาราเซตามอล": '+',
		"":            '+',
	}
	for name, want := range cases {
		if got := BadgeLetter(name); got != want {
			t.Fatalf("BadgeLetter(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestRenderBadge(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderBadge(&buf, "Metformin", "#10B981", 48); err != nil {
		t.Fatalf("RenderBadge returned error: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if img.Bounds().Dx() != 48 || img.Bounds().Dy() != 48 {
		t.Fatalf("unexpected size %v", img.Bounds())
	}

	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Fatalf("corner should be transparent, alpha=%d", a)
	}
	r, g, b, _ := img.At(24, 2).RGBA()
	if uint8(r>>8) != 0x10 || uint8(g>>8) != 0xb9 || uint8(b>>8) != 0x81 {
		t.Fatalf("unexpected fill near the top edge: %d %d %d", r>>8, g>>8, b>>8)
	}
}

func TestRenderBadgeClampsSize(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderBadge(&buf, "A", "", 0); err != nil {
		t.Fatalf("RenderBadge returned error: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if img.Bounds().Dx() != DefaultBadgeSize {
		t.Fatalf("expected default size, got %d", img.Bounds().Dx())
	}

	buf.Reset()
	if err := RenderBadge(&buf, "A", "", 4096); err != nil {
		t.Fatalf("RenderBadge returned error: %v", err)
	}
	img, _ = png.Decode(&buf)
	if img.Bounds().Dx() != maxBadgeSize {
		t.Fatalf("expected clamped size, got %d", img.Bounds().Dx())
	}
}
