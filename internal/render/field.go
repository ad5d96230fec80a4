package render

import (
	"github.com/born-ml/siren/internal/nn"
	"github.com/born-ml/siren/internal/tensor"
)

// Field is a signed distance field evaluated in batches.
//
// Distances writes the distance of points[i] into out[i]. Implementations must
// be safe for concurrent use.
type Field interface {
	Distances(points []Vec3, out []float32)
}

// FieldFunc adapts a point-wise distance function to Field.
type FieldFunc func(p Vec3) float32

// Distances implements Field.
func (f FieldFunc) Distances(points []Vec3, out []float32) {
	for i, p := range points {
		out[i] = f(p)
	}
}

// Sphere returns the exact SDF of a sphere.
func Sphere(center Vec3, radius float32) FieldFunc {
	return func(p Vec3) float32 {
		return p.Sub(center).Length() - radius
	}
}

// UnitCube is the exact SDF of the axis-aligned cube [-1, 1]³.
func UnitCube(p Vec3) float32 {
	d := p.Abs().Sub(Vec3{1, 1, 1})
	return min(d.MaxComponent(), 0) + d.MaxScalar(0).Length()
}

// NetworkField evaluates a trained SIREN network.
//
// The network is only trained inside the unit cube, so the field is intersected
// with it: Distance(p) = max(net(p), UnitCube(p)). Rays starting outside the cube
// then march toward it safely.
type NetworkField struct {
	net *nn.Network
}

// NewNetworkField wraps net.
func NewNetworkField(net *nn.Network) *NetworkField {
	return &NetworkField{net: net}
}

// Distances implements Field with a single batched forward pass.
func (f *NetworkField) Distances(points []Vec3, out []float32) {
	n := len(points)
	if n == 0 {
		return
	}

	x := tensor.New(tensor.Shape{nn.InDim, n})
	xd := x.Data()
	for i, p := range points {
		xd[i] = p.X
		xd[n+i] = p.Y
		xd[2*n+i] = p.Z
	}

	pred := f.net.Eval(x).Data()
	for i, p := range points {
		out[i] = max(pred[i], UnitCube(p))
	}
}
