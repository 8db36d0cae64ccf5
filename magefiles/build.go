//go:build mage

package main

import (
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

const (
	binary     = "bin/hdrr"
	shadersDir = "assets/shaders"
)

// Builds the demo binary into bin/.
func (Build) Demo() error {
	mg.Deps(Build.Shaders)
	fmt.Println("Building demo...")
	_, err := executeCmd("go", withArgs("build", "-o", binary, "."), withStream())
	return err
}

// Validates the GLSL sources with glslangValidator, when it is installed.
func (Build) Shaders() error {
	if _, err := exec.LookPath("glslangValidator"); err != nil {
		fmt.Println("glslangValidator not found, skipping shader validation")
		return nil
	}
	for _, pattern := range []string{"*.vert", "*.frag"} {
		files, err := filepath.Glob(filepath.Join(shadersDir, pattern))
		if err != nil {
			return err
		}
		for _, file := range files {
			if _, err := executeCmd("glslangValidator", withArgs(filepath.Base(file)), withDir(shadersDir)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Runs the unit tests, none of them needs a GPU.
func Test() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream())
	return err
}
