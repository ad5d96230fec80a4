package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/born-ml/siren/internal/config"
	"github.com/born-ml/siren/internal/dataset"
	"github.com/born-ml/siren/internal/nn"
	"github.com/born-ml/siren/internal/optim"
	"github.com/born-ml/siren/internal/train"
)

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	points := fs.String("points", "", "Dataset file (int32 n, float32[3n] points, float32[n] distances)")
	nHidden := fs.Int("n-hidden", 3, "Number of hidden Linear+Sine blocks (overrides config)")
	hiddenSize := fs.Int("hidden-size", 64, "Width of the hidden layers (overrides config)")
	configPath := fs.String("config", "", "YAML training config (optional)")
	epochs := fs.Int("epochs", 0, "Number of epochs (overrides config)")
	lr := fs.Float64("lr", 0, "Learning rate (overrides config)")
	batchSize := fs.Int("batch-size", 0, "Mini-batch size (overrides config)")
	seed := fs.Int64("seed", 0, "Seed for initialization and batch order (overrides config)")
	optimizer := fs.String("optimizer", "", "adam or sgd (overrides config)")
	saveTo := fs.String("save-to", "", "Output weights file")
	header := fs.Bool("header", false, "Write a self-describing container instead of raw weights")
	verbose := fs.Bool("v", false, "Print progress every log_every_n_epochs epochs")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if *points == "" || *saveTo == "" {
		fs.Usage()
		return fmt.Errorf("%w: -points and -save-to are required", errUsage)
	}

	cfg, err := config.LoadTrain(*configPath)
	if err != nil {
		return err
	}
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(env); err != nil {
		return err
	}
	if *epochs > 0 {
		cfg.Epochs = *epochs
	}
	if *lr > 0 {
		cfg.LR = float32(*lr)
	}
	if *batchSize > 0 {
		cfg.BatchSize = *batchSize
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *optimizer != "" {
		cfg.Optimizer = *optimizer
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "n-hidden":
			cfg.Hidden = *nHidden
		case "hidden-size":
			cfg.HiddenSize = *hiddenSize
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	ds, err := dataset.Load(*points)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d samples from %s\n", ds.Len(), *points)

	topo := cfg.Topology()
	net, err := nn.NewSiren(topo, nn.WithSeed(cfg.Seed))
	if err != nil {
		return err
	}

	kind, err := optim.ParseKind(cfg.Optimizer)
	if err != nil {
		return err
	}
	opt, err := optim.New(kind, net.Parameters(), cfg.LR, cfg.Momentum)
	if err != nil {
		return err
	}

	fmt.Printf("Network %s: %d parameters\n", topo, net.NumParams())
	fmt.Printf("Optimizer: %s (lr=%g), batch size %d, %d epochs\n", kind, cfg.LR, cfg.BatchSize, cfg.Epochs)
	if path := env.Path(); path != "" {
		fmt.Printf("Environment overrides from %s\n", path)
	}

	trainer := train.New(net, opt, train.Config{
		Epochs:    cfg.Epochs,
		BatchSize: cfg.BatchSize,
		Seed:      cfg.Seed,
	})
	if *verbose && cfg.LogEvery > 0 {
		trainer.OnEpoch = func(s train.EpochStats) {
			if s.Epoch%cfg.LogEvery == 0 || s.Epoch == s.Epochs {
				fmt.Printf("Epoch %4d/%d: loss=%.6f mean=%.6f (%v)\n",
					s.Epoch, s.Epochs, s.LastLoss, s.MeanLoss, s.Elapsed.Round(time.Millisecond))
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	losses, err := trainer.Fit(ctx, ds)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	fmt.Printf("Training finished in %v, final loss %.6f\n",
		time.Since(start).Round(time.Millisecond), losses[len(losses)-1])

	if *header {
		err = net.SaveContainer(*saveTo, map[string]string{
			"dataset":    *points,
			"epochs":     fmt.Sprint(cfg.Epochs),
			"lr":         fmt.Sprint(cfg.LR),
			"batch_size": fmt.Sprint(cfg.BatchSize),
			"optimizer":  string(kind),
		})
	} else {
		err = net.Save(*saveTo)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Saved weights to %s\n", *saveTo)
	return nil
}
