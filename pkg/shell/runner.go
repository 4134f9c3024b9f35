// Package shell runs external tools through the mvdan.cc/sh interpreter so that
// commands behave the same on every platform and never go through string interpolation.
package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/cunarist/rinf/automate/pkg"
)

// Command is a single external program invocation
type Command struct {
	Name string
	Args []string
	Dir  string
}

// Line returns the command as a shell line with every argument quoted
func (c Command) Line() (string, error) {
	words := make([]string, 0, len(c.Args)+1)
	for _, word := range append([]string{c.Name}, c.Args...) {
		quoted, err := syntax.Quote(word, syntax.LangBash)
		if err != nil {
			return "", eris.Wrapf(err, "Failed to quote %q", word)
		}
		words = append(words, quoted)
	}

	return strings.Join(words, " "), nil
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner executes commands and blocks until they finish
type Runner interface {
	// Run fails if the command can't be started or exits with a non-zero status
	Run(ctx context.Context, cmd Command) error
	// LookPath fails if the named program can't be found in PATH
	LookPath(name string) error
}

// ExitError is returned when a command exits with a non-zero status
type ExitError struct {
	Command string
	Status  uint8
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Command, e.Status)
}

// ShellRunner runs commands with inherited environment and standard streams
type ShellRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

var defaultExecHandler = interp.DefaultExecHandler(2 * time.Second)

func (r *ShellRunner) environ() expand.Environ {
	return expand.ListEnviron(os.Environ()...)
}

// Run executes cmd in cmd.Dir
func (r *ShellRunner) Run(ctx context.Context, cmd Command) error {
	line, err := cmd.Line()
	if err != nil {
		return err
	}

	file, err := syntax.NewParser().Parse(strings.NewReader(line), cmd.Name)
	if err != nil {
		return eris.Wrapf(err, "Failed to parse command %s", line)
	}

	runner, err := interp.New(
		interp.Dir(cmd.Dir),
		interp.Env(r.environ()),
		interp.ExecHandler(defaultExecHandler),
		interp.StdIO(r.Stdin, r.Stdout, r.Stderr),
		interp.Params("-e"),
	)
	if err != nil {
		return eris.Wrap(err, "Failed to initialize runner")
	}

	pkg.Log(ctx).Info().
		Str("dir", cmd.Dir).
		Bool("command", true).
		Msg(line)

	err = runner.Run(ctx, file)
	if err != nil {
		if status, ok := interp.IsExitStatus(err); ok {
			return eris.Wrapf(&ExitError{Command: cmd.String(), Status: status}, "Command failed in %s", cmd.Dir)
		}

		return eris.Wrapf(err, "Failed to run %s", cmd)
	}

	return nil
}

// LookPath resolves name against PATH (and PATHEXT on Windows)
func (r *ShellRunner) LookPath(name string) error {
	wd, err := os.Getwd()
	if err != nil {
		return eris.Wrap(err, "Failed to retrieve the current working directory")
	}

	_, err = interp.LookPathDir(wd, r.environ(), name)
	if err != nil {
		return eris.Wrapf(err, "%s was not found in PATH", name)
	}

	return nil
}
