//go:build ignore

// build.go - license API build helper
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: build, test, release, clean

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

const (
	binary  = "license-api"
	mainPkg = "./cmd/license-api"
	distDir = "dist"
)

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorBlue  = "\033[34m"
)

var releaseTargets = []struct{ goos, goarch string }{
	{"linux", "amd64"},
	{"linux", "arm64"},
	{"darwin", "arm64"},
}

func main() {
	target := flag.String("target", "build", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	version := flag.String("version", "dev", "Version stamped into the binary")
	flag.Parse()

	start := time.Now()

	var err error
	switch *target {
	case "build":
		err = build(*version, "", "", *verbose)
	case "test":
		err = runTests(*verbose)
	case "release":
		err = release(*version, *verbose)
	case "clean":
		err = os.RemoveAll(distDir)
	default:
		fmt.Println("Targets: build, test, release, clean")
		os.Exit(1)
	}

	if err != nil {
		printError(err.Error())
		os.Exit(1)
	}
	printSuccess(fmt.Sprintf("%s completed in %s", *target, time.Since(start).Round(time.Millisecond)))
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func build(version, goos, goarch string, verbose bool) error {
	out := filepath.Join(distDir, binary)
	if goos != "" {
		out = filepath.Join(distDir, fmt.Sprintf("%s-%s-%s", binary, goos, goarch))
	}
	printInfo("Building " + out)

	ldflags := fmt.Sprintf("-s -w -X main.version=%s", version)
	args := []string{"build", "-trimpath", "-ldflags", ldflags, "-o", out}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, mainPkg)

	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	if goos != "" {
		cmd.Env = append(cmd.Env, "GOOS="+goos, "GOARCH="+goarch)
	}
	return cmd.Run()
}

func runTests(verbose bool) error {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func release(version string, verbose bool) error {
	for _, t := range releaseTargets {
		if err := build(version, t.goos, t.goarch, verbose); err != nil {
			return fmt.Errorf("%s/%s: %w", t.goos, t.goarch, err)
		}
	}
	return nil
}
