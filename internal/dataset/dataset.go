// Package dataset reads and writes SDF point clouds.
//
// Binary layout (little-endian):
//
//	int32        n       number of points
//	float32[3n]  points  n rows of (x, y, z)
//	float32[n]   sdf     signed distance per point
package dataset

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/siren/internal/tensor"
)

// PointDim is the number of coordinates per point.
const PointDim = 3

// Dataset errors.
var (
	// ErrTruncated is returned when the stream ends before 4 + 16n bytes.
	ErrTruncated = errors.New("dataset: truncated stream")

	// ErrInvalidCount is returned when the point count is negative.
	ErrInvalidCount = errors.New("dataset: invalid point count")

	// ErrLengthMismatch is returned by Encode when points and targets disagree.
	ErrLengthMismatch = errors.New("dataset: points and sdf lengths differ")
)

// Dataset holds n points and their signed distances.
type Dataset struct {
	Points []float32 // n rows of (x, y, z), row-major
	SDF    []float32 // n signed distances
}

// New builds a dataset and checks that len(points) == 3·len(sdf).
func New(points, sdf []float32) (*Dataset, error) {
	ds := &Dataset{Points: points, SDF: sdf}
	if err := ds.validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

func (d *Dataset) validate() error {
	if len(d.Points) != PointDim*len(d.SDF) {
		return fmt.Errorf("%w: %d coordinates for %d targets", ErrLengthMismatch, len(d.Points), len(d.SDF))
	}
	return nil
}

// Len returns the number of points.
func (d *Dataset) Len() int {
	return len(d.SDF)
}

// Point returns the coordinates of point i.
func (d *Dataset) Point(i int) [PointDim]float32 {
	return [PointDim]float32{d.Points[PointDim*i], d.Points[PointDim*i+1], d.Points[PointDim*i+2]}
}

// Batch returns samples [lo, hi) in feature-major layout:
// x has shape [3, hi-lo] and y has shape [1, hi-lo].
//
// Panics if the range is empty or out of bounds.
func (d *Dataset) Batch(lo, hi int) (x, y *tensor.Tensor) {
	if lo < 0 || hi > d.Len() || lo >= hi {
		panic(fmt.Sprintf("Dataset.Batch: invalid range [%d, %d) for %d points", lo, hi, d.Len()))
	}
	b := hi - lo

	x = tensor.New(tensor.Shape{PointDim, b})
	xd := x.Data()
	for k := range b {
		p := d.Points[PointDim*(lo+k):]
		for c := range PointDim {
			xd[c*b+k] = p[c]
		}
	}

	y = tensor.New(tensor.Shape{1, b})
	copy(y.Data(), d.SDF[lo:hi])
	return x, y
}

// All returns the whole dataset as a single batch.
func (d *Dataset) All() (x, y *tensor.Tensor) {
	return d.Batch(0, d.Len())
}

// Decode reads a dataset from r.
func Decode(r io.Reader) (*Dataset, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, truncated("point count", err)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}

	points, err := readFloats(r, PointDim*int(n))
	if err != nil {
		return nil, truncated("points", err)
	}

	sdf, err := readFloats(r, int(n))
	if err != nil {
		return nil, truncated("sdf values", err)
	}

	return &Dataset{Points: points, SDF: sdf}, nil
}

// readChunk is the number of values readFloats decodes per read.
const readChunk = 1 << 14

// readFloats reads count little-endian float32 values. Storage grows with the
// bytes actually read, so a short stream fails with io.ErrUnexpectedEOF before
// the declared count is ever allocated.
func readFloats(r io.Reader, count int) ([]float32, error) {
	values := make([]float32, 0, min(count, readChunk))
	buf := make([]float32, min(count, readChunk))
	for len(values) < count {
		chunk := buf[:min(count-len(values), readChunk)]
		if err := binary.Read(r, binary.LittleEndian, chunk); err != nil {
			if len(values) > 0 && errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		values = append(values, chunk...)
	}
	return values, nil
}

// EncodedSize returns the size in bytes of an encoded dataset of n points.
func EncodedSize(n int) int64 {
	return 4 + int64(n)*(PointDim+1)*4
}

func truncated(section string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: reading %s: %w", ErrTruncated, section, err)
	}
	return fmt.Errorf("dataset: reading %s: %w", section, err)
}

// Encode writes ds to w in the binary layout.
func Encode(w io.Writer, ds *Dataset) error {
	if err := ds.validate(); err != nil {
		return err
	}
	//nolint:gosec // G115: point counts beyond int32 cannot be represented by the format
	if err := binary.Write(w, binary.LittleEndian, int32(ds.Len())); err != nil {
		return fmt.Errorf("dataset: writing point count: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, ds.Points); err != nil {
		return fmt.Errorf("dataset: writing points: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, ds.SDF); err != nil {
		return fmt.Errorf("dataset: writing sdf values: %w", err)
	}
	return nil
}

// Load reads a dataset file.
func Load(path string) (*Dataset, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for dataset loading
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Mode().IsRegular() {
		var n int32
		if err := binary.Read(f, binary.LittleEndian, &n); err == nil && n >= 0 {
			if want := EncodedSize(int(n)); info.Size() < want {
				return nil, fmt.Errorf("failed to load %s: %w: %d points need %d bytes, file has %d",
					path, ErrTruncated, n, want, info.Size())
			}
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	ds, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return ds, nil
}

// Save writes ds to path.
func Save(path string, ds *Dataset) (err error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for dataset saving
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close dataset: %w", cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := Encode(bw, ds); err != nil {
		return err
	}
	return bw.Flush()
}

// Chunk is a half-open sample range [Lo, Hi).
type Chunk struct {
	Lo, Hi int
}

// Len returns the number of samples in the chunk.
func (c Chunk) Len() int {
	return c.Hi - c.Lo
}

// Chunks partitions n samples into ceil(n/batchSize) contiguous ranges in index
// order. The last chunk holds the remainder.
//
// Panics if batchSize is not positive.
func Chunks(n, batchSize int) []Chunk {
	if batchSize <= 0 {
		panic(fmt.Sprintf("dataset.Chunks: batch size must be positive, got %d", batchSize))
	}
	chunks := make([]Chunk, 0, (n+batchSize-1)/batchSize)
	for lo := 0; lo < n; lo += batchSize {
		chunks = append(chunks, Chunk{Lo: lo, Hi: min(lo+batchSize, n)})
	}
	return chunks
}
