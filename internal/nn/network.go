package nn

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/born-ml/siren/internal/serialization"
	"github.com/born-ml/siren/internal/tensor"
)

// Network is an ordered Linear → Sine → … → Linear stack.
//
// The layer sequence is fixed at construction. Forward runs the layers in order,
// Backward runs them in reverse and fills every parameter gradient.
//
// Example:
//
//	net, err := nn.NewSiren(nn.Topology{Hidden: 2, HiddenSize: 64})
//	if err != nil { ... }
//	pred := net.Forward(x) // x: [3, batch], pred: [1, batch]
type Network struct {
	layers []Layer
}

// NetworkOption configures NewSiren.
type NetworkOption func(*networkOptions)

type networkOptions struct {
	rng *rand.Rand
	w0  float32
}

// WithRand sets the random source used for weight initialization.
func WithRand(rng *rand.Rand) NetworkOption {
	return func(o *networkOptions) {
		o.rng = rng
	}
}

// WithSeed seeds a fresh random source for weight initialization.
func WithSeed(seed int64) NetworkOption {
	return func(o *networkOptions) {
		//nolint:gosec // Using math/rand for weight initialization (not security-critical)
		o.rng = rand.New(rand.NewSource(seed))
	}
}

// WithW0 overrides the sine frequency (default 30).
func WithW0(w0 float32) NetworkOption {
	return func(o *networkOptions) {
		o.w0 = w0
	}
}

// NewSiren builds a freshly initialized network for the topology.
func NewSiren(topo Topology, opts ...NetworkOption) (*Network, error) {
	if err := topo.Validate(); err != nil {
		return nil, err
	}

	options := &networkOptions{w0: DefaultW0}
	for _, opt := range opts {
		opt(options)
	}
	if options.rng == nil {
		//nolint:gosec // Using math/rand for weight initialization (not security-critical)
		options.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	shapes := topo.LinearShapes()
	layers := make([]Layer, 0, 2*len(shapes)-1)
	for i, s := range shapes {
		layers = append(layers, NewLinear(s[1], s[0], options.w0, options.rng))
		if i < len(shapes)-1 {
			layers = append(layers, NewSine(options.w0))
		}
	}

	return NewNetwork(layers...)
}

// NewNetwork wraps an explicit layer stack after checking the SIREN layout:
// the first layer is Linear with 3 inputs, the last is Linear with 1 output,
// adjacent widths agree, and exactly one Sine follows every Linear but the last.
func NewNetwork(layers ...Layer) (*Network, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("%w: no layers", ErrInvalidTopology)
	}

	prevOut := InDim
	expectLinear := true
	for i, layer := range layers {
		switch l := layer.(type) {
		case *Linear:
			if !expectLinear {
				return nil, fmt.Errorf("%w: layer %d: Linear must be followed by Sine", ErrInvalidTopology, i)
			}
			if l.InFeatures() != prevOut {
				return nil, fmt.Errorf("%w: layer %d: expected %d input features, got %d",
					ErrInvalidTopology, i, prevOut, l.InFeatures())
			}
			prevOut = l.OutFeatures()
			expectLinear = false
		case *Sine:
			if expectLinear {
				return nil, fmt.Errorf("%w: layer %d: Sine must follow a Linear layer", ErrInvalidTopology, i)
			}
			if i == len(layers)-1 {
				return nil, fmt.Errorf("%w: the final layer must be Linear", ErrInvalidTopology)
			}
			expectLinear = true
		default:
			return nil, fmt.Errorf("%w: layer %d: unsupported layer type %T", ErrInvalidTopology, i, layer)
		}
	}
	if expectLinear {
		return nil, fmt.Errorf("%w: the final layer must be Linear", ErrInvalidTopology)
	}
	if prevOut != OutDim {
		return nil, fmt.Errorf("%w: final layer must have %d output, got %d", ErrInvalidTopology, OutDim, prevOut)
	}

	return &Network{layers: append([]Layer(nil), layers...)}, nil
}

// Forward applies all layers in sequence, caching inputs for Backward.
//
// Input shape: [3, batch_size]. Output shape: [1, batch_size].
func (n *Network) Forward(input *tensor.Tensor) *tensor.Tensor {
	output := input
	for _, layer := range n.layers {
		output = layer.Forward(output)
	}
	return output
}

// Eval applies all layers without caching. Safe for concurrent use while no
// training step runs.
func (n *Network) Eval(input *tensor.Tensor) *tensor.Tensor {
	output := input
	for _, layer := range n.layers {
		output = layer.Apply(output)
	}
	return output
}

// Backward propagates gradOutput through the layers in reverse order.
//
// It must be called exactly once after each Forward; the gradient with respect
// to the network input is discarded.
func (n *Network) Backward(gradOutput *tensor.Tensor) error {
	grad := gradOutput
	for i := len(n.layers) - 1; i >= 0; i-- {
		var err error
		grad, err = n.layers[i].Backward(grad)
		if err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return nil
}

// Parameters returns all trainable parameters in layer order
// (weight then bias of every Linear layer). The order is stable across calls
// and defines the weight file layout.
func (n *Network) Parameters() []*Parameter {
	var params []*Parameter
	for _, layer := range n.layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}

// NumParams returns the total number of scalar parameters.
func (n *Network) NumParams() int {
	total := 0
	for _, p := range n.Parameters() {
		total += p.NumElements()
	}
	return total
}

// Len returns the number of layers.
func (n *Network) Len() int {
	return len(n.layers)
}

// Layer returns the layer at index.
//
// Panics if index is out of bounds.
func (n *Network) Layer(index int) Layer {
	if index < 0 || index >= len(n.layers) {
		panic("Network.Layer: index out of bounds")
	}
	return n.layers[index]
}

// Topology reports the topology of the stack, if it has the uniform shape NewSiren builds.
func (n *Network) Topology() (Topology, bool) {
	var linears []*Linear
	for _, layer := range n.layers {
		if l, ok := layer.(*Linear); ok {
			linears = append(linears, l)
		}
	}
	if len(linears) < 2 {
		return Topology{}, false
	}
	h := linears[0].OutFeatures()
	for _, l := range linears[1 : len(linears)-1] {
		if l.InFeatures() != h || l.OutFeatures() != h {
			return Topology{}, false
		}
	}
	return Topology{Hidden: len(linears) - 2, HiddenSize: h}, true
}

// W0 returns the frequency of the first Sine layer, or DefaultW0 if there is none.
func (n *Network) W0() float32 {
	for _, layer := range n.layers {
		if s, ok := layer.(*Sine); ok {
			return s.W0()
		}
	}
	return DefaultW0
}

// Flatten concatenates all parameters in Parameters() order.
func (n *Network) Flatten() []float32 {
	out := make([]float32, 0, n.NumParams())
	for _, p := range n.Parameters() {
		out = append(out, p.Tensor().Data()...)
	}
	return out
}

// LoadFlat overwrites every parameter from a flat slice in Parameters() order.
//
// Returns ErrTopologyMismatch if the length differs from NumParams.
func (n *Network) LoadFlat(values []float32) error {
	if want := n.NumParams(); len(values) != want {
		return fmt.Errorf("%w: network holds %d parameters, weights contain %d values",
			ErrTopologyMismatch, want, len(values))
	}
	offset := 0
	for _, p := range n.Parameters() {
		data := p.Tensor().Data()
		copy(data, values[offset:offset+len(data)])
		offset += len(data)
	}
	return nil
}

// WriteTo writes the raw headerless weight stream. It implements io.WriterTo.
func (n *Network) WriteTo(w io.Writer) (int64, error) {
	values := n.Flatten()
	if err := serialization.WriteRaw(w, values); err != nil {
		return 0, err
	}
	return int64(len(values)) * serialization.Float32Size, nil
}

// Save writes the raw headerless weight stream to path.
func (n *Network) Save(path string) error {
	return saveFile(path, func(w io.Writer) error {
		_, err := n.WriteTo(w)
		return err
	})
}

// WriteContainer writes the weights in the self-describing container layout.
func (n *Network) WriteContainer(w io.Writer, metadata map[string]string) error {
	topo, ok := n.Topology()
	if !ok {
		return fmt.Errorf("%w: container format needs a uniform hidden width", ErrInvalidTopology)
	}

	header := serialization.Header{
		Topology: serialization.TopologyMeta{
			Hidden:     topo.Hidden,
			HiddenSize: topo.HiddenSize,
			InDim:      InDim,
			OutDim:     OutDim,
			W0:         n.W0(),
		},
		Metadata: metadata,
	}

	linearIndex := 0
	for _, layer := range n.layers {
		params := layer.Parameters()
		if len(params) == 0 {
			continue
		}
		for _, p := range params {
			header.Tensors = append(header.Tensors, serialization.TensorMeta{
				Name:  fmt.Sprintf("%d.%s", linearIndex, p.Name()),
				Shape: []int(p.Tensor().Shape().Clone()),
			})
		}
		linearIndex++
	}

	return serialization.WriteContainer(w, header, n.Flatten())
}

// SaveContainer writes the container layout to path.
func (n *Network) SaveContainer(path string, metadata map[string]string) error {
	return saveFile(path, func(w io.Writer) error {
		return n.WriteContainer(w, metadata)
	})
}

// ReadNetwork builds a network for topo and fills it from r.
//
// Both layouts are accepted. Raw streams are checked against topo.NumParams();
// containers must also declare the same topology.
func ReadNetwork(r io.Reader, topo Topology) (*Network, error) {
	header, values, err := serialization.ReadWeights(r)
	if err != nil {
		return nil, err
	}

	opts := []NetworkOption{WithSeed(0)}
	if header != nil {
		t := header.Topology
		if t.Hidden != topo.Hidden || t.HiddenSize != topo.HiddenSize || t.InDim != InDim || t.OutDim != OutDim {
			return nil, fmt.Errorf("%w: file holds n_hidden=%d hidden_size=%d, requested %s",
				ErrTopologyMismatch, t.Hidden, t.HiddenSize, topo)
		}
		if t.W0 != 0 {
			opts = append(opts, WithW0(t.W0))
		}
	}

	net, err := NewSiren(topo, opts...)
	if err != nil {
		return nil, err
	}
	if err := net.LoadFlat(values); err != nil {
		return nil, err
	}
	return net, nil
}

// LoadNetwork reads a weight file written by Save or SaveContainer.
func LoadNetwork(path string, topo Topology) (*Network, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open weights: %w", err)
	}
	defer f.Close()

	net, err := ReadNetwork(f, topo)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return net, nil
}

func saveFile(path string, write func(io.Writer) error) (err error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return errors.Join(fmt.Errorf("failed to flush %s", path), err)
	}
	return nil
}
