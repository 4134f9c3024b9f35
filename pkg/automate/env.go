package automate

import (
	"context"
	"io"
	"path/filepath"

	"github.com/cunarist/rinf/automate/pkg/config"
	"github.com/cunarist/rinf/automate/pkg/shell"
)

// Env holds everything a procedure needs. It is built once per process.
type Env struct {
	// Root is the absolute path of the repository checkout
	Root   string
	Config *config.Config
	Runner shell.Runner

	// Out receives task headers and Progress receives progress bars.
	// Nothing is rendered to a nil writer.
	Out      io.Writer
	Progress io.Writer
}

// Path resolves parts relative to the repository root
func (e *Env) Path(parts ...string) string {
	return filepath.Join(append([]string{e.Root}, parts...)...)
}

// Resolve returns path unchanged if it's absolute and relative to the repository root otherwise
func (e *Env) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return e.Path(path)
}

func (e *Env) out() io.Writer {
	return orDiscard(e.Out)
}

func (e *Env) progress() io.Writer {
	return orDiscard(e.Progress)
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

func (e *Env) run(ctx context.Context, dir string, name string, args ...string) error {
	return e.Runner.Run(ctx, shell.Command{Name: name, Args: args, Dir: dir})
}
