// Package render ray-marches a signed distance field into a grayscale image.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"

	"github.com/born-ml/siren/internal/parallel"
)

// Light is a point light.
type Light struct {
	Position  Vec3
	Intensity float32
}

// Renderer draws a Field as seen from a Camera.
//
// Example:
//
//	r := render.NewRenderer(cam, light, render.NewNetworkField(net))
//	img := r.Render(512, 512)
//	err := render.Save("sdf.bmp", img)
type Renderer struct {
	Camera   Camera
	Light    Light
	Marcher  *Marcher
	Parallel parallel.Config // Row fan-out
}

// NewRenderer creates a renderer with default marcher limits. Rays travelling
// past cam.ZFar count as misses.
func NewRenderer(cam Camera, light Light, field Field) *Renderer {
	m := NewMarcher(field)
	m.MaxTravel = cam.ZFar

	cfg := parallel.DefaultConfig()
	cfg.MinChunkSize = 1

	return &Renderer{
		Camera:   cam,
		Light:    light,
		Marcher:  m,
		Parallel: cfg,
	}
}

// Render traces one ray per pixel. Rows are rendered concurrently; missed rays
// are left transparent black.
func (r *Renderer) Render(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	parallel.For(height, func(y int) {
		r.renderRow(img, y, width, height)
	}, r.Parallel)
	return img
}

func (r *Renderer) renderRow(img *image.RGBA, y, width, height int) {
	origins, dirs := r.Camera.Rays(y, width, height)
	hits, points := r.Marcher.March(origins, dirs)

	var surface []Vec3
	var columns []int
	for x, hit := range hits {
		if hit {
			surface = append(surface, points[x])
			columns = append(columns, x)
		}
	}

	normals := r.Marcher.Normals(surface)
	for k, x := range columns {
		c := Shade(surface[k], normals[k], r.Light.Position, r.Light.Intensity)
		g := uint8(c*255 + 0.5)
		img.SetRGBA(x, y, color.RGBA{R: g, G: g, B: g, A: 255})
	}
}

// Encode writes img to w as "bmp" or "png".
func Encode(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case "bmp":
		return bmp.Encode(w, img)
	case "png":
		return png.Encode(w, img)
	default:
		return fmt.Errorf("unsupported image format %q (want bmp or png)", format)
	}
}

// Save writes img to path, choosing the format from the file extension.
func Save(path string, img image.Image) (err error) {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if format != "bmp" && format != "png" {
		return fmt.Errorf("cannot infer image format from %q (want .bmp or .png)", path)
	}

	//nolint:gosec // G304: File path comes from user input, which is expected for image output
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close image: %w", cerr)
		}
	}()

	return Encode(f, img, format)
}
