package train_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/siren/internal/dataset"
	"github.com/born-ml/siren/internal/nn"
	"github.com/born-ml/siren/internal/optim"
	"github.com/born-ml/siren/internal/train"
)

// sphereDataset samples n points in [-1, 1]³ labelled with the SDF of a sphere of radius 0.5.
func sphereDataset(t *testing.T, n int, seed int64) *dataset.Dataset {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	points := make([]float32, 3*n)
	sdf := make([]float32, n)
	for i := range n {
		x, y, z := rng.Float32()*2-1, rng.Float32()*2-1, rng.Float32()*2-1
		points[3*i], points[3*i+1], points[3*i+2] = x, y, z
		sdf[i] = math32.Sqrt(x*x+y*y+z*z) - 0.5
	}
	ds, err := dataset.New(points, sdf)
	require.NoError(t, err)
	return ds
}

// countingOptimizer leaves parameters untouched and counts steps.
type countingOptimizer struct {
	steps int
}

func (c *countingOptimizer) Step()          { c.steps++ }
func (c *countingOptimizer) ZeroGrad()      {}
func (c *countingOptimizer) GetLR() float32 { return 0 }

func TestFit_ReducesLoss(t *testing.T) {
	ds := sphereDataset(t, 256, 1)
	net, err := nn.NewSiren(nn.Topology{Hidden: 1, HiddenSize: 8}, nn.WithSeed(2))
	require.NoError(t, err)

	before := train.Evaluate(net, ds, 64)

	opt := optim.NewAdam(net.Parameters(), optim.AdamConfig{LR: 2e-3})
	trainer := train.New(net, opt, train.Config{Epochs: 50, BatchSize: 32, Seed: 3})

	losses, err := trainer.Fit(context.Background(), ds)
	require.NoError(t, err)
	require.Len(t, losses, 50)

	after := train.Evaluate(net, ds, 64)
	assert.Less(t, after, 0.5*before, "loss before=%g after=%g", before, after)
}

func TestFit_RecordsLastBatchLoss(t *testing.T) {
	ds := sphereDataset(t, 50, 4)
	net, err := nn.NewSiren(nn.Topology{Hidden: 1, HiddenSize: 4}, nn.WithSeed(5))
	require.NoError(t, err)

	const seed = 9
	opt := &countingOptimizer{}
	trainer := train.New(net, opt, train.Config{Epochs: 3, BatchSize: 16, Seed: seed})

	var stats []train.EpochStats
	trainer.OnEpoch = func(s train.EpochStats) { stats = append(stats, s) }

	losses, err := trainer.Fit(context.Background(), ds)
	require.NoError(t, err)
	require.Len(t, losses, 3)
	require.Len(t, stats, 3)
	assert.Equal(t, 3*4, opt.steps)

	// Replay the chunk shuffle to find the last batch of every epoch.
	chunks := dataset.Chunks(ds.Len(), 16)
	rng := rand.New(rand.NewSource(seed))
	mse := nn.NewMSELoss()
	for epoch := range 3 {
		order := append([]dataset.Chunk(nil), chunks...)
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		last := order[len(order)-1]
		x, y := ds.Batch(last.Lo, last.Hi)
		want := mse.Forward(net.Eval(x), y)

		assert.Equal(t, want, losses[epoch], "epoch %d", epoch+1)
		assert.Equal(t, want, stats[epoch].LastLoss)
		assert.Equal(t, epoch+1, stats[epoch].Epoch)
		assert.Equal(t, 3, stats[epoch].Epochs)
		assert.Equal(t, 4, stats[epoch].Batches)
	}

	// Parameters never moved, so every epoch sees the same four batch losses.
	assert.InDelta(t, stats[0].MeanLoss, stats[1].MeanLoss, 1e-9)
}

func TestFit_ContextCanceled(t *testing.T) {
	ds := sphereDataset(t, 32, 1)
	net, err := nn.NewSiren(nn.Topology{Hidden: 0, HiddenSize: 4}, nn.WithSeed(1))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opt := &countingOptimizer{}
	losses, err := train.New(net, opt, train.Config{Epochs: 5, BatchSize: 8}).Fit(ctx, ds)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, losses)
	assert.Zero(t, opt.steps)
}

func TestFit_EmptyDataset(t *testing.T) {
	net, err := nn.NewSiren(nn.Topology{Hidden: 0, HiddenSize: 2}, nn.WithSeed(1))
	require.NoError(t, err)

	_, err = train.New(net, &countingOptimizer{}, train.Config{}).Fit(context.Background(), &dataset.Dataset{})
	require.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	net, err := nn.NewSiren(nn.Topology{Hidden: 0, HiddenSize: 2}, nn.WithSeed(1))
	require.NoError(t, err)

	cfg := train.New(net, &countingOptimizer{}, train.Config{}).Config()
	assert.Equal(t, 1500, cfg.Epochs)
	assert.Equal(t, 512, cfg.BatchSize)
}

func TestEvaluate(t *testing.T) {
	ds := sphereDataset(t, 20, 7)
	net, err := nn.NewSiren(nn.Topology{Hidden: 1, HiddenSize: 4}, nn.WithSeed(1))
	require.NoError(t, err)

	x, y := ds.All()
	want := nn.NewMSELoss().Forward(net.Eval(x), y)

	// Batching must not change the result beyond float rounding.
	assert.InDelta(t, want, train.Evaluate(net, ds, 7), 1e-6)
	assert.InDelta(t, want, train.Evaluate(net, ds, 100), 1e-6)
}
