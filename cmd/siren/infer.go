package main

import (
	"flag"
	"fmt"

	"github.com/born-ml/siren/internal/dataset"
	"github.com/born-ml/siren/internal/nn"
	"github.com/born-ml/siren/internal/train"
)

func runInfer(args []string) error {
	fs := flag.NewFlagSet("infer", flag.ContinueOnError)
	weights := fs.String("weights", "", "Weights file (raw or container)")
	points := fs.String("points", "", "Dataset file to evaluate against")
	nHidden := fs.Int("n-hidden", 3, "Number of hidden Linear+Sine blocks")
	hiddenSize := fs.Int("hidden-size", 64, "Width of the hidden layers")
	nShow := fs.Int("n-show", 10, "Number of predictions to print")
	batchSize := fs.Int("batch-size", 4096, "Evaluation batch size")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if *weights == "" || *points == "" {
		fs.Usage()
		return fmt.Errorf("%w: -weights and -points are required", errUsage)
	}
	if *batchSize <= 0 {
		return fmt.Errorf("%w: -batch-size must be > 0", errUsage)
	}

	net, err := nn.LoadNetwork(*weights, nn.Topology{Hidden: *nHidden, HiddenSize: *hiddenSize})
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %s: %d parameters\n", *weights, net.NumParams())

	ds, err := dataset.Load(*points)
	if err != nil {
		return err
	}

	show := min(*nShow, ds.Len())
	if show > 0 {
		x, y := ds.Batch(0, show)
		pred := net.Eval(x).Data()
		fmt.Printf("%5s  %28s  %10s  %10s\n", "#", "point", "target", "predicted")
		for i, target := range y.Data() {
			p := ds.Point(i)
			fmt.Printf("%5d  (%8.4f %8.4f %8.4f)  %10.6f  %10.6f\n", i, p[0], p[1], p[2], target, pred[i])
		}
	}

	fmt.Printf("MSE over %d samples: %.6g\n", ds.Len(), train.Evaluate(net, ds, *batchSize))
	return nil
}
