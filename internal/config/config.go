// Package config loads training and rendering settings.
//
// Settings come from YAML files, then SIREN_* environment variables (the process
// environment first, then a .env file found in the working directory or one of
// its parents). Command-line flags are applied last by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/siren/internal/nn"
	"github.com/born-ml/siren/internal/optim"
)

// ErrInvalidConfig is returned by the Validate methods.
var ErrInvalidConfig = errors.New("invalid config")

// Vec3 is an (x, y, z) triple, written in YAML as a three-element sequence.
type Vec3 [3]float32

// Train holds the network topology plus optimizer and schedule settings.
type Train struct {
	Network   `yaml:",inline"`
	LR        float32 `yaml:"lr"`
	Epochs    int     `yaml:"n_epochs"`
	LogEvery  int     `yaml:"log_every_n_epochs"`
	BatchSize int     `yaml:"batch_size"`
	Seed      int64   `yaml:"seed"`
	Optimizer string  `yaml:"optimizer"`
	Momentum  float32 `yaml:"momentum"`
}

// DefaultTrain returns the default training settings.
func DefaultTrain() Train {
	return Train{
		Network:   Network{Hidden: 3, HiddenSize: 64},
		LR:        5e-5,
		Epochs:    1500,
		LogEvery:  100,
		BatchSize: 512,
		Seed:      1,
		Optimizer: string(optim.KindAdam),
	}
}

// Validate checks the training settings.
func (t Train) Validate() error {
	switch {
	case t.LR <= 0:
		return fmt.Errorf("%w: lr must be > 0, got %g", ErrInvalidConfig, t.LR)
	case t.Epochs <= 0:
		return fmt.Errorf("%w: n_epochs must be > 0, got %d", ErrInvalidConfig, t.Epochs)
	case t.BatchSize <= 0:
		return fmt.Errorf("%w: batch_size must be > 0, got %d", ErrInvalidConfig, t.BatchSize)
	case t.LogEvery < 0:
		return fmt.Errorf("%w: log_every_n_epochs must be >= 0, got %d", ErrInvalidConfig, t.LogEvery)
	case t.Momentum < 0 || t.Momentum >= 1:
		return fmt.Errorf("%w: momentum must be in [0, 1), got %g", ErrInvalidConfig, t.Momentum)
	}
	if _, err := optim.ParseKind(t.Optimizer); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := t.Topology().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Network holds the topology settings.
type Network struct {
	Hidden     int `yaml:"n_hidden"`
	HiddenSize int `yaml:"hidden_size"`
}

// Topology converts the settings to an nn.Topology.
func (n Network) Topology() nn.Topology {
	return nn.Topology{Hidden: n.Hidden, HiddenSize: n.HiddenSize}
}

// Camera describes the render viewpoint.
type Camera struct {
	Position    Vec3    `yaml:"camera_position"`
	Target      Vec3    `yaml:"target"`
	Up          Vec3    `yaml:"up"`
	FieldOfView float32 `yaml:"field_of_view"` // vertical, in degrees
	ZNear       float32 `yaml:"z_near"`
	ZFar        float32 `yaml:"z_far"`
}

// DefaultCamera looks at the origin from slightly above and in front of the unit cube.
func DefaultCamera() Camera {
	return Camera{
		Position:    Vec3{0, 1.5, -3},
		Target:      Vec3{0, 0, 0},
		Up:          Vec3{0, 1, 0},
		FieldOfView: 90,
		ZNear:       0.1,
		ZFar:        100,
	}
}

// Validate checks the camera settings.
func (c Camera) Validate() error {
	switch {
	case c.Position == c.Target:
		return fmt.Errorf("%w: camera_position and target coincide", ErrInvalidConfig)
	case c.Up == Vec3{}:
		return fmt.Errorf("%w: up must be non-zero", ErrInvalidConfig)
	case c.FieldOfView <= 0 || c.FieldOfView >= 180:
		return fmt.Errorf("%w: field_of_view must be in (0, 180), got %g", ErrInvalidConfig, c.FieldOfView)
	case c.ZNear <= 0 || c.ZFar <= c.ZNear:
		return fmt.Errorf("%w: need 0 < z_near < z_far, got %g and %g", ErrInvalidConfig, c.ZNear, c.ZFar)
	case collinear(sub(c.Target, c.Position), c.Up):
		return fmt.Errorf("%w: up %v is parallel to the view direction", ErrInvalidConfig, c.Up)
	}
	return nil
}

func sub(a, b Vec3) Vec3 {
	return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// collinear reports whether a and b lie on one line, in which case their
// cross product cannot span a camera basis.
func collinear(a, b Vec3) bool {
	cx := float64(a[1])*float64(b[2]) - float64(a[2])*float64(b[1])
	cy := float64(a[2])*float64(b[0]) - float64(a[0])*float64(b[2])
	cz := float64(a[0])*float64(b[1]) - float64(a[1])*float64(b[0])
	cross := cx*cx + cy*cy + cz*cz
	return cross <= 1e-12*norm2(a)*norm2(b)
}

func norm2(v Vec3) float64 {
	x, y, z := float64(v[0]), float64(v[1]), float64(v[2])
	return x*x + y*y + z*z
}

// Light describes the point light used for shading.
type Light struct {
	Direction Vec3    `yaml:"light_direction"` // shading uses normalize(Direction - p)
	Intensity float32 `yaml:"intensity"`
}

// DefaultLight returns a light above and in front of the scene.
func DefaultLight() Light {
	return Light{
		Direction: Vec3{2, 4, -3},
		Intensity: 1,
	}
}

// Validate checks the light settings.
func (l Light) Validate() error {
	if l.Intensity < 0 {
		return fmt.Errorf("%w: intensity must be >= 0, got %g", ErrInvalidConfig, l.Intensity)
	}
	return nil
}

// LoadTrain reads training settings from a YAML file on top of DefaultTrain.
// An empty path returns the defaults. The result is not validated, since env
// and flag overrides still follow.
func LoadTrain(path string) (Train, error) {
	cfg := DefaultTrain()
	if err := loadYAML(path, &cfg); err != nil {
		return Train{}, err
	}
	return cfg, nil
}

// LoadCamera reads camera settings from a YAML file on top of DefaultCamera.
func LoadCamera(path string) (Camera, error) {
	cfg := DefaultCamera()
	if err := loadYAML(path, &cfg); err != nil {
		return Camera{}, err
	}
	return cfg, cfg.Validate()
}

// LoadLight reads light settings from a YAML file on top of DefaultLight.
func LoadLight(path string) (Light, error) {
	cfg := DefaultLight()
	if err := loadYAML(path, &cfg); err != nil {
		return Light{}, err
	}
	return cfg, cfg.Validate()
}

func loadYAML(path string, out any) error {
	if path == "" {
		return nil
	}
	//nolint:gosec // G304: File path comes from user input, which is expected for config loading
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
