// Package main provides the siren CLI: train a SIREN on a signed distance
// dataset, check its predictions, and ray-march the learned surface.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
)

const version = "v0.1.0-dev"

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		log.Fatalf("siren: %v", err)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		usage()
		return errUsage
	}

	switch args[0] {
	case "train":
		return runTrain(args[1:])
	case "infer":
		return runInfer(args[1:])
	case "render":
		return runRender(args[1:])
	case "version":
		fmt.Printf("siren %s\n", version)
		return nil
	case "help", "-h", "-help", "--help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func usage() {
	fmt.Println("siren - SIREN signed distance field trainer")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  train     Fit a network to a point/SDF dataset and save its weights")
	fmt.Println("  infer     Load weights and compare predictions with a dataset")
	fmt.Println("  render    Ray-march the learned surface to a BMP or PNG image")
	fmt.Println("  version   Show version")
	fmt.Println("")
	fmt.Println("Run 'siren <command> -h' for command flags.")
}
