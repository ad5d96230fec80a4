package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/born-ml/siren/internal/config"
	"github.com/born-ml/siren/internal/nn"
	"github.com/born-ml/siren/internal/render"
)

func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	weights := fs.String("weights", "", "Weights file (raw or container)")
	nHidden := fs.Int("n-hidden", 3, "Number of hidden Linear+Sine blocks")
	hiddenSize := fs.Int("hidden-size", 64, "Width of the hidden layers")
	cameraPath := fs.String("camera", "", "YAML camera config (optional)")
	lightPath := fs.String("light", "", "YAML light config (optional)")
	resolution := fs.Int("resolution", 512, "Image width and height in pixels")
	out := fs.String("out", "sdf.bmp", "Output image (.bmp or .png)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if *weights == "" {
		fs.Usage()
		return fmt.Errorf("%w: -weights is required", errUsage)
	}
	if *resolution <= 0 {
		return fmt.Errorf("%w: -resolution must be > 0", errUsage)
	}

	camCfg, err := config.LoadCamera(*cameraPath)
	if err != nil {
		return err
	}
	lightCfg, err := config.LoadLight(*lightPath)
	if err != nil {
		return err
	}

	net, err := nn.LoadNetwork(*weights, nn.Topology{Hidden: *nHidden, HiddenSize: *hiddenSize})
	if err != nil {
		return err
	}

	r := render.NewRenderer(cameraFromConfig(camCfg), lightFromConfig(lightCfg), render.NewNetworkField(net))

	start := time.Now()
	img := r.Render(*resolution, *resolution)
	fmt.Printf("Rendered %dx%d in %v\n", *resolution, *resolution, time.Since(start).Round(time.Millisecond))

	if err := render.Save(*out, img); err != nil {
		return err
	}
	fmt.Printf("Saved image to %s\n", *out)
	return nil
}

func cameraFromConfig(c config.Camera) render.Camera {
	return render.Camera{
		Position:    render.V(c.Position),
		Target:      render.V(c.Target),
		Up:          render.V(c.Up),
		FieldOfView: c.FieldOfView,
		ZNear:       c.ZNear,
		ZFar:        c.ZFar,
	}
}

func lightFromConfig(l config.Light) render.Light {
	return render.Light{Position: render.V(l.Direction), Intensity: l.Intensity}
}
