//+build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var (
	name    = "recyclebin"
	version = "v0.2.0"
)

func Linux() error {
	return build(map[string]string{}, name)
}

// Builds a Development binary with the race detector enabled.
func Dev() error {
	if err := os.Mkdir("output", 0700); err != nil && !os.IsExist(err) {
		return fmt.Errorf("failed to create output: %v", err)
	}

	env := make(map[string]string)
	return sh.RunWith(
		env,
		mg.GoCmd(), "build", "-race",
		"-o", filepath.Join("output", name),
		"-ldflags", flags(),
		"./bin/")
}

// Cross compile the windows binary. The tool is pure Go so no
// cross compiler toolchain is needed.
func Windows() error {
	return build(map[string]string{
		"GOOS":        "windows",
		"GOARCH":      "amd64",
		"CGO_ENABLED": "0",
	}, name+".exe")
}

func Darwin() error {
	return build(map[string]string{
		"GOOS":        "darwin",
		"GOARCH":      "amd64",
		"CGO_ENABLED": "0",
	}, name+"_darwin")
}

func Clean() error {
	return sh.Rm("output")
}

func build(env map[string]string, output_name string) error {
	if err := os.Mkdir("output", 0700); err != nil && !os.IsExist(err) {
		return fmt.Errorf("failed to create output: %v", err)
	}

	return sh.RunWith(
		env,
		mg.GoCmd(), "build",
		"-o", filepath.Join("output", output_name),
		"-ldflags=-s -w "+flags(),
		"./bin/")
}

func flags() string {
	timestamp := time.Now().Format(time.RFC3339)
	return fmt.Sprintf(`-X "www.velocidex.com/golang/recyclebin/config.build_time=%s" -X "www.velocidex.com/golang/recyclebin/config.commit_hash=%s"`, timestamp, hash())
}

// hash returns the git hash for the current repo or "" if none.
func hash() string {
	hash, _ := sh.Output("git", "rev-parse", "--short", "HEAD")
	return hash
}
