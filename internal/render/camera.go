package render

import (
	"github.com/chewxy/math32"
)

// Camera is a pinhole camera.
type Camera struct {
	Position    Vec3
	Target      Vec3
	Up          Vec3
	FieldOfView float32 // vertical, in degrees
	ZNear       float32 // rays start this far from Position
	ZFar        float32 // rays travelling further miss (0 = unlimited)
}

// basis returns the orthonormal forward, right and up vectors of the camera.
func (c Camera) basis() (forward, right, up Vec3) {
	forward = c.Target.Sub(c.Position).Normalize()
	right = forward.Cross(c.Up).Normalize()
	up = right.Cross(forward)
	return forward, right, up
}

// Rays returns the origin and unit direction of the ray through the centre of
// every pixel of row y in a width×height image. Row 0 is the top of the image.
func (c Camera) Rays(y, width, height int) (origins, dirs []Vec3) {
	forward, right, up := c.basis()
	tanHalf := math32.Tan(c.FieldOfView * math32.Pi / 360)
	aspect := float32(width) / float32(height)

	sy := (1 - 2*(float32(y)+0.5)/float32(height)) * tanHalf
	origins = make([]Vec3, width)
	dirs = make([]Vec3, width)
	for x := range width {
		sx := (2*(float32(x)+0.5)/float32(width) - 1) * tanHalf * aspect
		d := forward.Add(right.Scale(sx)).Add(up.Scale(sy)).Normalize()
		dirs[x] = d
		origins[x] = c.Position.Add(d.Scale(c.ZNear))
	}
	return origins, dirs
}
