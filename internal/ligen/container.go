package ligen

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/me/ligflow/internal/toolexec"
)

// TaskContext carries what every engine invocation needs: the container
// image, a scratch workdir and a logger.
type TaskContext struct {
	// Workdir is the directory holding the engine's inputs and outputs.
	Workdir string
	// Image is an Apptainer image: a .sif file path or a docker:// reference.
	Image string

	Logger *slog.Logger
}

// NewContainer prepares a fresh container invocation for this context.
func (t *TaskContext) NewContainer() *Container {
	return NewContainer(t.Image, t.Logger)
}

// Container prepares one engine invocation inside an Apptainer image. Host
// files are mapped to fixed container mount points before the run; the
// description generator needs the container-side paths, the runtime needs the
// bind list.
type Container struct {
	image  string
	binds  []string
	mapped map[string]string
	n      int
	logger *slog.Logger
}

// NewContainer creates a Container for the given image.
func NewContainer(image string, logger *slog.Logger) *Container {
	return &Container{
		image:  image,
		mapped: make(map[string]string),
		logger: logger.With("component", "ligen-container"),
	}
}

// MapInput binds the host file's directory read-only into the container and
// returns the container-side path of the file. Mapping the same host path
// twice returns the same container path.
func (c *Container) MapInput(hostPath string) string {
	return c.mapFile(hostPath, "in", ":ro")
}

// MapOutput binds the host file's directory read-write into the container and
// returns the container-side path the engine should write to.
func (c *Container) MapOutput(hostPath string) string {
	return c.mapFile(hostPath, "out", "")
}

func (c *Container) mapFile(hostPath, prefix, mode string) string {
	if mapped, ok := c.mapped[hostPath]; ok {
		return mapped
	}
	c.n++
	mount := fmt.Sprintf("/mnt/%s%d", prefix, c.n)
	c.binds = append(c.binds, filepath.Dir(hostPath)+":"+mount+mode)
	mapped := mount + "/" + filepath.Base(hostPath)
	c.mapped[hostPath] = mapped
	return mapped
}

// Run executes a command inside the container, piping stdin to it. The
// command sees only the mapped mount points.
func (c *Container) Run(ctx context.Context, command string, stdin []byte) error {
	args := []any{"exec"}
	for _, bind := range c.binds {
		args = append(args, "--bind", bind)
	}
	args = append(args, c.imageRef(), command)

	apptainer := toolexec.New("", "apptainer", c.logger)
	return apptainer.Execute(ctx, args, &toolexec.Options{Input: stdin})
}

// RunArgs executes a command with plain arguments inside the container,
// without piping anything to stdin.
func (c *Container) RunArgs(ctx context.Context, command string, cmdArgs []any) error {
	args := []any{"exec"}
	for _, bind := range c.binds {
		args = append(args, "--bind", bind)
	}
	args = append(args, c.imageRef(), command)
	args = append(args, cmdArgs...)

	apptainer := toolexec.New("", "apptainer", c.logger)
	return apptainer.Execute(ctx, args, nil)
}

// imageRef returns the image reference the Apptainer CLI expects: .sif paths
// verbatim, everything else as a docker:// reference unless already one.
func (c *Container) imageRef() string {
	if strings.HasSuffix(c.image, ".sif") || strings.Contains(c.image, "://") {
		return c.image
	}
	return "docker://" + c.image
}

// Binds exposes the accumulated bind mounts. Used by tests.
func (c *Container) Binds() []string {
	return c.binds
}
