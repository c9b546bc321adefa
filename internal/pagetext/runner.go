// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pagetext

import (
	"fmt"
	"io"
	"os"
	"os/exec"
)

const (
	binDocker = "docker"
	binPodman = "podman"
)

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (o *osExecutor) RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	return cmd.Run()
}

var defaultExec = &osExecutor{}

// runner executes the extraction tool against one document, writing page
// text to stdout.
type runner interface {
	// Name identifies the selected tool for diagnostics, e.g. "pdftotext"
	// or "docker:docker.io/minidocks/poppler".
	Name() string

	// Run extracts the document at path.
	Run(path string, stdout io.Writer) error
}

// toolArgs builds the pdftotext argument list. -layout keeps option
// columns aligned; the trailing "-" sends text to stdout.
func toolArgs(input string) []string {
	return []string{"-layout", "-enc", "UTF-8", input, "-"}
}

// localRunner runs a pdftotext binary found on PATH.
type localRunner struct {
	bin  string
	exec executor
}

func (l *localRunner) Name() string { return l.bin }

func (l *localRunner) Run(path string, stdout io.Writer) error {
	if err := l.exec.RunPiped(l.bin, toolArgs(path), nil, stdout); err != nil {
		return fmt.Errorf("running %s on %s: %w", l.bin, path, err)
	}
	return nil
}

// containerRunner pipes the document through a poppler container image.
// Docker and Podman share the logic; they differ only in binary name.
type containerRunner struct {
	bin   string
	image string
	exec  executor
}

func (c *containerRunner) Name() string { return c.bin + ":" + c.image }

func (c *containerRunner) Run(path string, stdout io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	args := append([]string{"run", "--rm", "-i", c.image, "pdftotext"}, toolArgs("-")...)
	if err := c.exec.RunPiped(c.bin, args, f, stdout); err != nil {
		return fmt.Errorf("running %s container %s on %s: %w", c.bin, c.image, path, err)
	}
	return nil
}

// detectRunner prefers a local tool binary, then the image under docker,
// then podman. Returns an error when none is usable.
func detectRunner(tool, image string, exec executor) (runner, error) {
	if _, err := exec.LookPath(tool); err == nil {
		return &localRunner{bin: tool, exec: exec}, nil
	}

	for _, bin := range []string{binDocker, binPodman} {
		if _, err := exec.LookPath(bin); err != nil {
			continue
		}
		if exec.RunSilent(bin, "info") != nil {
			continue
		}
		return &containerRunner{bin: bin, image: image, exec: exec}, nil
	}

	return nil, fmt.Errorf(
		"no %s binary on PATH and no container runtime available: neither %s nor %s found or operational",
		tool, binDocker, binPodman,
	)
}
