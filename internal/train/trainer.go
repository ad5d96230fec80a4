// Package train fits a SIREN network to an SDF dataset with mini-batch
// gradient descent.
package train

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/born-ml/siren/internal/dataset"
	"github.com/born-ml/siren/internal/nn"
	"github.com/born-ml/siren/internal/optim"
)

// Config holds the batching schedule.
type Config struct {
	Epochs    int   // Number of passes over the dataset (default: 1500)
	BatchSize int   // Samples per mini-batch (default: 512)
	Seed      int64 // Seed for the chunk-order shuffle
}

// EpochStats summarizes one epoch.
type EpochStats struct {
	Epoch    int           // 1-based epoch index
	Epochs   int           // Total epochs of the run
	Batches  int           // Mini-batches processed
	LastLoss float32       // Loss of the last batch visited; this is the recorded epoch loss
	MeanLoss float64       // Mean batch loss over the epoch
	Elapsed  time.Duration // Wall time of the epoch
}

// Trainer runs the forward → loss → backward → step loop.
//
// Example:
//
//	opt := optim.NewAdam(net.Parameters(), optim.AdamConfig{LR: 5e-5})
//	trainer := train.New(net, opt, train.Config{Epochs: 100, BatchSize: 512, Seed: 1})
//	trainer.OnEpoch = func(s train.EpochStats) { fmt.Println(s.Epoch, s.LastLoss) }
//	losses, err := trainer.Fit(ctx, ds)
type Trainer struct {
	net       *nn.Network
	optimizer optim.Optimizer
	loss      *nn.MSELoss
	cfg       Config
	rng       *rand.Rand

	// OnEpoch, if set, is called after every epoch.
	OnEpoch func(EpochStats)
}

// New creates a trainer. Zero Config fields take their defaults.
func New(net *nn.Network, optimizer optim.Optimizer, cfg Config) *Trainer {
	if cfg.Epochs == 0 {
		cfg.Epochs = 1500
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 512
	}

	return &Trainer{
		net:       net,
		optimizer: optimizer,
		loss:      nn.NewMSELoss(),
		cfg:       cfg,
		//nolint:gosec // Using math/rand for batch shuffling (not security-critical)
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Config returns the effective configuration.
func (t *Trainer) Config() Config {
	return t.cfg
}

// Fit trains for cfg.Epochs epochs and returns the recorded loss of every epoch,
// which is the loss of the last batch visited in that epoch.
//
// The context is checked between batches. On cancellation or a layer error the
// losses of the completed epochs are returned with the error.
func (t *Trainer) Fit(ctx context.Context, ds *dataset.Dataset) ([]float32, error) {
	if t.cfg.Epochs < 0 || t.cfg.BatchSize < 0 {
		return nil, fmt.Errorf("train: epochs and batch size must be positive, got %d and %d",
			t.cfg.Epochs, t.cfg.BatchSize)
	}
	if ds.Len() == 0 {
		return nil, fmt.Errorf("train: empty dataset")
	}

	chunks := dataset.Chunks(ds.Len(), t.cfg.BatchSize)
	losses := make([]float32, 0, t.cfg.Epochs)

	for epoch := range t.cfg.Epochs {
		stats, err := t.trainEpoch(ctx, ds, chunks)
		if err != nil {
			return losses, fmt.Errorf("epoch %d: %w", epoch+1, err)
		}
		stats.Epoch = epoch + 1
		stats.Epochs = t.cfg.Epochs

		losses = append(losses, stats.LastLoss)
		if t.OnEpoch != nil {
			t.OnEpoch(stats)
		}
	}

	return losses, nil
}

// trainEpoch visits every chunk once in a freshly shuffled order.
func (t *Trainer) trainEpoch(ctx context.Context, ds *dataset.Dataset, chunks []dataset.Chunk) (EpochStats, error) {
	start := time.Now()

	order := make([]dataset.Chunk, len(chunks))
	copy(order, chunks)
	t.rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	batchLosses := make([]float64, 0, len(order))
	var last float32
	for _, chunk := range order {
		if err := ctx.Err(); err != nil {
			return EpochStats{}, err
		}

		loss, err := t.Step(ds, chunk)
		if err != nil {
			return EpochStats{}, err
		}
		last = loss
		batchLosses = append(batchLosses, float64(loss))
	}

	return EpochStats{
		Batches:  len(order),
		LastLoss: last,
		MeanLoss: stat.Mean(batchLosses, nil),
		Elapsed:  time.Since(start),
	}, nil
}

// Step runs one mini-batch update on the samples of chunk and returns its loss.
func (t *Trainer) Step(ds *dataset.Dataset, chunk dataset.Chunk) (float32, error) {
	x, y := ds.Batch(chunk.Lo, chunk.Hi)

	t.optimizer.ZeroGrad()

	pred := t.net.Forward(x)
	loss := t.loss.Forward(pred, y)

	grad, err := t.loss.Backward()
	if err != nil {
		return 0, err
	}
	if err := t.net.Backward(grad); err != nil {
		return 0, err
	}

	t.optimizer.Step()
	return loss, nil
}

// Evaluate returns the MSE of net over the whole dataset, evaluated in batches
// of batchSize without touching layer caches.
func Evaluate(net *nn.Network, ds *dataset.Dataset, batchSize int) float32 {
	if ds.Len() == 0 {
		return 0
	}
	var sum float64
	for _, chunk := range dataset.Chunks(ds.Len(), batchSize) {
		x, y := ds.Batch(chunk.Lo, chunk.Hi)
		pred := net.Eval(x).Data()
		for i, target := range y.Data() {
			d := float64(pred[i]) - float64(target)
			sum += d * d
		}
	}
	return float32(sum / float64(ds.Len()))
}
