//go:build mage

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the objminify binary into bin/.
func (Build) CLI() error {
	if err := os.MkdirAll("bin", 0755); err != nil {
		return err
	}
	out := filepath.Join("bin", "objminify")
	_, err := executeCmd("go", withArgs("build", "-o", out, "./cmd/objminify"), withStream())
	return err
}

// Runs go mod tidy.
func (Build) Tidy() error {
	_, err := executeCmd("go", withArgs("mod", "tidy"))
	return err
}
