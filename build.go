//go:build ignore

// build.go - BikePulse Build System
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, bikepulse, summary, test, clean

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const module = "bikepulse"

var (
	rootDir string
	distDir string

	// key = directory under cmd/, value = output name without extension
	executables = map[string]string{
		"bikepulse": "bikepulse",
		"summary":   "bikepulse-summary",
	}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	cwd, err := os.Getwd()
	if err != nil {
		printError(fmt.Sprintf("Failed to get current directory: %v", err))
		os.Exit(1)
	}
	rootDir = cwd
	distDir = filepath.Join(rootDir, "dist")

	printHeader()
	start := time.Now()

	switch *target {
	case "all":
		for _, name := range []string{"bikepulse", "summary"} {
			buildExecutable(name, *verbose)
		}
	case "bikepulse", "summary":
		buildExecutable(*target, *verbose)
	case "test":
		runTests(*verbose)
	case "clean":
		clean(*verbose)
	default:
		printError(fmt.Sprintf("Unknown target: %s", *target))
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Done in %s", time.Since(start).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Printf("%s=== BikePulse build (%s/%s) ===%s\n", colorCyan, runtime.GOOS, runtime.GOARCH, colorReset)
}

func printInfo(msg string)    { fmt.Printf("%s[INFO]%s %s\n", colorCyan, colorReset, msg) }
func printSuccess(msg string) { fmt.Printf("%s[OK]%s %s\n", colorGreen, colorReset, msg) }
func printError(msg string)   { fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg) }
func printWarning(msg string) { fmt.Printf("%s[WARN]%s %s\n", colorYellow, colorReset, msg) }

func buildExecutable(name string, verbose bool) {
	out := executables[name]
	if runtime.GOOS == "windows" {
		out += ".exe"
	}
	output := filepath.Join(distDir, out)
	printInfo(fmt.Sprintf("Building %s -> %s", name, output))

	ldflags := fmt.Sprintf("-s -w -X %s/pkg/contracts.BuildTime=%s -X %s/pkg/contracts.GitCommit=%s",
		module, time.Now().UTC().Format(time.RFC3339), module, gitCommit())

	args := []string{"build", "-ldflags", ldflags, "-o", output}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./cmd/"+name)

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", name, err))
		os.Exit(1)
	}
	printSuccess(fmt.Sprintf("Built %s", out))
}

func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func runTests(verbose bool) {
	args := []string{"test", "-race", "./..."}
	if verbose {
		args = append(args, "-v")
	}
	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		printError("Tests failed")
		os.Exit(1)
	}
	printSuccess("All tests passed")
}

func clean(verbose bool) {
	if _, err := os.Stat(distDir); os.IsNotExist(err) {
		printWarning("Nothing to clean")
		return
	}
	if verbose {
		printInfo(fmt.Sprintf("Removing %s", distDir))
	}
	if err := os.RemoveAll(distDir); err != nil {
		printError(fmt.Sprintf("Failed to clean: %v", err))
		os.Exit(1)
	}
	printSuccess("Cleaned dist/")
}
