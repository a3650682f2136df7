//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds a static weightsync binary into ./bin.
func (Build) Binary() error {
	if _, err := executeCmd("go", withArgs("build", "-ldflags", ldflags(), "-o", "bin/weightsync", "."), withEnv("CGO_ENABLED=0"), withStream()); err != nil {
		return err
	}
	return nil
}

type Test mg.Namespace

// Runs every package test with the race detector.
func (Test) All() error {
	if _, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}
