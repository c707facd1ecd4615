//go:build mage

// Package main contains Mage build targets for developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binDir = "bin"

var binaries = map[string]string{
	"indicatord": "./cmd/indicatord",
	"climind":    "./cmd/climind",
}

// Build compiles the service and CLI binaries into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	for name, pkg := range binaries {
		out := filepath.Join(binDir, name)
		if err := sh.RunV("go", "build", "-o", out, pkg); err != nil {
			return fmt.Errorf("go build %s: %w", pkg, err)
		}
		fmt.Printf("Built %s\n", out)
	}
	return nil
}

// Test runs the unit test suite with race detection.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// TestIntegration runs the Kafka integration tests. Requires Docker.
func TestIntegration() error {
	return sh.RunV("go", "test", "-race", "-tags=integration", "-count=1",
		"-timeout=10m", "./internal/integration/...")
}

// Lint runs golangci-lint over the module.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Vet runs go vet over the module.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Genmock regenerates the year-long mock fixtures through the domain code.
func Genmock() error {
	return sh.RunV("go", "run", "./cmd/genmock",
		"-year", "2001",
		"-raw-out", "data/mock/climate_readings_2001.json",
		"-obs-out", "data/mock/climate_observations_2001.json",
	)
}

// Validate checks the indicator catalog and the mock fixtures.
func Validate() error {
	return sh.RunV("go", "run", "./cmd/validate")
}

// CI runs the checks the build pipeline runs: vet then unit tests.
func CI() error {
	mg.SerialDeps(Vet, Test)
	return nil
}
