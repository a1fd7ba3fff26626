package preview

import (
	"bytes"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/chazu/wigmesh/pkg/geom"
	"github.com/chazu/wigmesh/pkg/revolve"
	"github.com/chazu/wigmesh/pkg/solidify"
	"github.com/chazu/wigmesh/pkg/vehicle"
)

func hull(t *testing.T) *geom.Solid {
	t.Helper()
	f := vehicle.NewFuselage("hull",
		vehicle.ProfilePoint{X: 0, Radius: 0},
		vehicle.ProfilePoint{X: 1, Radius: 0.5},
		vehicle.ProfilePoint{X: 4, Radius: 0.4},
		vehicle.ProfilePoint{X: 5, Radius: 0},
	)
	g, err := revolve.Fuselage(f, geom.Resolution{ChordRes: 4, SpanRes: 2, FuselageLongRes: 20, FuselageRadialRes: 16})
	if err != nil {
		t.Fatal(err)
	}
	s, _, err := solidify.Fuselage(g)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRenderCoversCenter(t *testing.T) {
	view := DefaultView()
	view.Width, view.Height = 160, 90
	img, err := Render(hull(t), view)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 160 || b.Dy() != 90 {
		t.Fatalf("image size = %v", b)
	}
	r, g, bl, _ := img.At(b.Dx()/2, b.Dy()/2).RGBA()
	bg := [3]uint32{0xFF, 0xF8, 0xE3}
	if r>>8 == bg[0] && g>>8 == bg[1] && bl>>8 == bg[2] {
		t.Error("center pixel is background; mesh not drawn")
	}
	r, g, bl, _ = img.At(0, 0).RGBA()
	if r>>8 != bg[0] || g>>8 != bg[1] || bl>>8 != bg[2] {
		t.Errorf("corner pixel = %x %x %x, want background", r>>8, g>>8, bl>>8)
	}
}

func TestWritePNG(t *testing.T) {
	view := DefaultView()
	view.Width, view.Height, view.Supersample = 64, 48, 1
	var buf bytes.Buffer
	if err := WritePNG(&buf, hull(t), view); err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 64 || cfg.Height != 48 {
		t.Errorf("size = %dx%d", cfg.Width, cfg.Height)
	}
}

func TestSavePNG(t *testing.T) {
	view := DefaultView()
	view.Width, view.Height = 32, 32
	path := filepath.Join(t.TempDir(), "hull.png")
	if err := SavePNG(path, hull(t), view); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
}

func TestRenderRejects(t *testing.T) {
	if _, err := Render(&geom.Solid{}, DefaultView()); err == nil {
		t.Error("expected error for empty mesh")
	}
	view := DefaultView()
	view.Width = 0
	if _, err := Render(hull(t), view); err == nil {
		t.Error("expected error for zero width")
	}
}
