//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Writes the sample scene into ./sample and watches it.
func (Run) Watch() error {
	mg.Deps(Build.Binary)
	if _, err := executeCmd("bin/weightsync", withArgs("init", "sample"), withStream()); err != nil {
		return err
	}
	fmt.Println("Watching sample scene...")
	scene := "sample/scene.toml"
	if v := os.Getenv("WEIGHTSYNC_SCENE"); v != "" {
		scene = v
	}
	if _, err := executeCmd("bin/weightsync", withArgs("watch", "--scene", scene), withStream()); err != nil {
		return err
	}
	return nil
}
