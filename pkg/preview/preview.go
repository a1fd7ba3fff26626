// Package preview renders a shaded snapshot of a mesh to PNG.
package preview

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/chazu/wigmesh/pkg/geom"
	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/spatial/r3"
)

// Background is the clear color of every preview.
const Background = "#FFF8E3"

// View configures the camera. The mesh is fitted into a bi-unit cube
// centered at the origin before rendering, so Eye and LookAt are given in
// that normalized space.
type View struct {
	Width, Height int
	Supersample   int // render at this multiple, then downsample
	FovY          float64
	Near, Far     float64
	Eye           r3.Vec
	LookAt        r3.Vec
	Up            r3.Vec
	Color         string
}

// DefaultView looks at the craft from ahead, to port and above, with z up.
func DefaultView() View {
	return View{
		Width:       800,
		Height:      450,
		Supersample: 2,
		FovY:        30,
		Near:        1,
		Far:         10,
		Eye:         r3.Vec{X: -3, Y: -2.5, Z: 1.8},
		Up:          r3.Vec{Z: 1},
		Color:       "#468966",
	}
}

func v(p r3.Vec) fauxgl.Vector { return fauxgl.V(p.X, p.Y, p.Z) }

// Render rasterizes s with a Phong shader.
func Render(s *geom.Solid, view View) (image.Image, error) {
	if s.IsEmpty() {
		return nil, fmt.Errorf("preview: nothing to render")
	}
	if view.Width <= 0 || view.Height <= 0 {
		return nil, fmt.Errorf("preview: bad image size %dx%d", view.Width, view.Height)
	}
	scale := max(view.Supersample, 1)

	tris := s.Triangles()
	faces := make([]*fauxgl.Triangle, 0, len(tris))
	for _, t := range tris {
		faces = append(faces, fauxgl.NewTriangleForPoints(v(t[0]), v(t[1]), v(t[2])))
	}
	mesh := fauxgl.NewTriangleMesh(faces)
	mesh.BiUnitCube()

	ctx := fauxgl.NewContext(view.Width*scale, view.Height*scale)
	ctx.ClearColorBufferWith(fauxgl.HexColor(Background))
	aspect := float64(view.Width) / float64(view.Height)
	eye := v(view.Eye)
	matrix := fauxgl.LookAt(eye, v(view.LookAt), v(view.Up)).
		Perspective(view.FovY, aspect, view.Near, view.Far)
	light := fauxgl.V(-0.75, 1, 0.25).Normalize()
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = fauxgl.HexColor(view.Color)
	ctx.Shader = shader
	ctx.DrawMesh(mesh)

	img := ctx.Image()
	if scale > 1 {
		img = resize.Resize(uint(view.Width), uint(view.Height), img, resize.Bilinear)
	}
	return img, nil
}

// WritePNG renders s and encodes the image to w.
func WritePNG(w io.Writer, s *geom.Solid, view View) error {
	img, err := Render(s, view)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// SavePNG renders s to the file at path.
func SavePNG(path string, s *geom.Solid, view View) error {
	img, err := Render(s, view)
	if err != nil {
		return err
	}
	return fauxgl.SavePNG(path, img)
}
