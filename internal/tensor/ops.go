package tensor

import (
	"fmt"
	"sync/atomic"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/born-ml/siren/internal/parallel"
)

var parallelCfg atomic.Pointer[parallel.Config]

func init() {
	cfg := parallel.DefaultConfig()
	parallelCfg.Store(&cfg)
}

// SetParallelConfig replaces the fan-out configuration used by the matrix products.
//
// Use parallel.Sequential() to force single-goroutine kernels.
func SetParallelConfig(cfg parallel.Config) {
	parallelCfg.Store(&cfg)
}

// ParallelConfig returns the current fan-out configuration.
func ParallelConfig() parallel.Config {
	return *parallelCfg.Load()
}

// MatMul computes a @ b.
//
// Shapes: [m, k] @ [k, n] = [m, n]. Panics on mismatched inner dimensions.
func MatMul(a, b *Tensor) *Tensor {
	m, k := a.shape[0], a.shape[1]
	if b.shape[0] != k {
		panic(fmt.Sprintf("tensor.MatMul: inner dimensions differ: %v @ %v", a.shape, b.shape))
	}
	out := New(Shape{m, b.shape[1]})
	gemm(blas.NoTrans, blas.NoTrans, a, b, out)
	return out
}

// MatMulTransA computes aᵀ @ b without materializing the transpose.
//
// Shapes: [k, m]ᵀ @ [k, n] = [m, n].
func MatMulTransA(a, b *Tensor) *Tensor {
	k, m := a.shape[0], a.shape[1]
	if b.shape[0] != k {
		panic(fmt.Sprintf("tensor.MatMulTransA: row counts differ: %v vs %v", a.shape, b.shape))
	}
	out := New(Shape{m, b.shape[1]})
	gemm(blas.Trans, blas.NoTrans, a, b, out)
	return out
}

// MatMulTransB computes a @ bᵀ without materializing the transpose.
//
// Shapes: [m, k] @ [n, k]ᵀ = [m, n].
func MatMulTransB(a, b *Tensor) *Tensor {
	m, k := a.shape[0], a.shape[1]
	if b.shape[1] != k {
		panic(fmt.Sprintf("tensor.MatMulTransB: column counts differ: %v vs %v", a.shape, b.shape))
	}
	out := New(Shape{m, b.shape[0]})
	gemm(blas.NoTrans, blas.Trans, a, b, out)
	return out
}

// gemm writes op(a) @ op(b) into out with SGEMM, splitting the rows of out
// into blocks that run concurrently. Each block is a view into a and out, so
// every output element is summed in the same order whatever the split.
func gemm(tA, tB blas.Transpose, a, b, out *Tensor) {
	m, n := out.shape[0], out.shape[1]
	k := a.shape[1]
	if tA == blas.Trans {
		k = a.shape[0]
	}
	if m == 0 || n == 0 || k == 0 {
		return
	}

	bg := general(b)
	parallel.ForRange(m, func(lo, hi int) {
		// Rows lo..hi of op(a): a row block, or a column block when transposed.
		ag := blas32.General{Rows: hi - lo, Cols: k, Stride: a.shape[1], Data: a.data[lo*a.shape[1]:]}
		if tA == blas.Trans {
			ag = blas32.General{Rows: k, Cols: hi - lo, Stride: a.shape[1], Data: a.data[lo:]}
		}
		cg := blas32.General{Rows: hi - lo, Cols: n, Stride: n, Data: out.data[lo*n : hi*n]}
		blas32.Gemm(tA, tB, 1, ag, bg, 0, cg)
	}, rowConfig(m, k*n))
}

// general views t as a BLAS matrix without copying.
func general(t *Tensor) blas32.General {
	return blas32.General{Rows: t.shape[0], Cols: t.shape[1], Stride: t.shape[1], Data: t.data}
}

// rowConfig shrinks the fan-out for products too small to amortize goroutines.
func rowConfig(rows, workPerRow int) parallel.Config {
	cfg := ParallelConfig()
	if !cfg.Enabled {
		return cfg
	}
	// MinChunkSize counts rows; aim for at least ~16K multiply-adds per goroutine.
	const minWork = 1 << 14
	minRows := 1
	if workPerRow > 0 {
		minRows = (minWork + workPerRow - 1) / workPerRow
	}
	cfg.MinChunkSize = max(1, min(minRows, rows+1))
	return cfg
}

// AddColumn returns t + col, broadcasting the [rows, 1] column across every column of t.
func AddColumn(t, col *Tensor) *Tensor {
	if col.shape[1] != 1 || col.shape[0] != t.shape[0] {
		panic(fmt.Sprintf("tensor.AddColumn: cannot broadcast %v over %v", col.shape, t.shape))
	}
	out := t.Clone()
	cols := t.shape[1]
	for i, b := range col.data {
		row := out.data[i*cols : (i+1)*cols]
		for j := range row {
			row[j] += b
		}
	}
	return out
}

// SumRows reduces every row to its sum, returning a [rows, 1] column.
func SumRows(t *Tensor) *Tensor {
	rows, cols := t.shape[0], t.shape[1]
	out := New(Shape{rows, 1})
	for i := 0; i < rows; i++ {
		var sum float32
		for _, v := range t.data[i*cols : (i+1)*cols] {
			sum += v
		}
		out.data[i] = sum
	}
	return out
}

// Map returns a new tensor with f applied to every element.
func Map(t *Tensor, f func(float32) float32) *Tensor {
	out := New(t.shape)
	for i, v := range t.data {
		out.data[i] = f(v)
	}
	return out
}

// Zip returns a new tensor with f applied element-wise to a and b.
//
// Panics if the shapes differ.
func Zip(a, b *Tensor, f func(x, y float32) float32) *Tensor {
	if !a.shape.Equal(b.shape) {
		panic(fmt.Sprintf("tensor.Zip: shape mismatch %v vs %v", a.shape, b.shape))
	}
	out := New(a.shape)
	for i, v := range a.data {
		out.data[i] = f(v, b.data[i])
	}
	return out
}

// Sub returns a - b element-wise.
func Sub(a, b *Tensor) *Tensor {
	return Zip(a, b, func(x, y float32) float32 { return x - y })
}

// Mul returns the element-wise (Hadamard) product of a and b.
func Mul(a, b *Tensor) *Tensor {
	return Zip(a, b, func(x, y float32) float32 { return x * y })
}

// Scale returns t * s.
func Scale(t *Tensor, s float32) *Tensor {
	return Map(t, func(x float32) float32 { return x * s })
}

// Transpose returns a new [cols, rows] tensor.
func Transpose(t *Tensor) *Tensor {
	rows, cols := t.shape[0], t.shape[1]
	out := New(Shape{cols, rows})
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.data[j*rows+i] = t.data[i*cols+j]
		}
	}
	return out
}
