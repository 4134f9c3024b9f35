package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cunarist/rinf/automate/pkg/automate"
	"github.com/cunarist/rinf/automate/pkg/shell"
)

type recordingRunner struct {
	commands []shell.Command
}

func (r *recordingRunner) Run(ctx context.Context, cmd shell.Command) error {
	r.commands = append(r.commands, cmd)
	return nil
}

func (r *recordingRunner) LookPath(name string) error {
	return nil
}

func useRecordingRunner(t *testing.T) *recordingRunner {
	t.Helper()

	runner := &recordingRunner{}
	previous := newRunner
	newRunner = func(*cobra.Command) shell.Runner { return runner }
	t.Cleanup(func() { newRunner = previous })
	return runner
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	rootCmd := NewRootCmd()
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := Dispatch(context.Background(), rootCmd, args)
	return stdout.String(), stderr.String(), err
}

func snapshot(t *testing.T, dir string) map[string]string {
	t.Helper()

	result := map[string]string{}
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		require.NoError(t, err)
		if info.IsDir() {
			result[path] = "dir"
			return nil
		}

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		result[path] = string(data)
		return nil
	})
	require.NoError(t, err)
	return result
}

func newRoot(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("/target/"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Cargo.toml"), []byte("[workspace]\n"), 0o644))
	return root
}

func TestMissingOption(t *testing.T) {
	runner := useRecordingRunner(t)

	stdout, _, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, stdout, automate.MissingMessage)
	assert.NotContains(t, stdout, automate.UnknownMessage)
	assert.Empty(t, runner.commands)
}

func TestUnknownOption(t *testing.T) {
	root := newRoot(t)
	before := snapshot(t, root)
	runner := useRecordingRunner(t)

	cases := [][]string{
		{"bogus-command", "--root", root},
		{"PREPARE-TEST-APP", "--root", root},
		{"prepare", "--root", root},
		{"update-cargokit-now", "--root", root},
		{"--root", root, "prepare-test-app"},
		{"-x"},
		{"--bogus"},
		{"bogus", "-x"},
		{"help"},
		{"help", "prepare-test-app"},
		{"--help"},
		{"-h"},
		{"completion", "bash"},
	}
	for _, args := range cases {
		stdout, _, err := execute(t, args...)
		require.NoError(t, err, args)
		assert.Contains(t, stdout, automate.UnknownMessage, args)
		assert.NotContains(t, stdout, automate.MissingMessage, args)
	}
	assert.Empty(t, runner.commands)
	assert.Equal(t, before, snapshot(t, root))
}

func TestOptionsAreListed(t *testing.T) {
	stdout, _, err := execute(t)
	require.NoError(t, err)

	for _, proc := range automate.Procedures() {
		assert.Contains(t, stdout, proc.Name+":")
		assert.Contains(t, stdout, proc.Short)
	}
}

func TestProcedureHelp(t *testing.T) {
	runner := useRecordingRunner(t)

	stdout, _, err := execute(t, "update-cargokit", "--help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Pulls the vendored cargokit subtree from upstream")
	assert.Empty(t, runner.commands)
}

func TestInvalidLogLevel(t *testing.T) {
	root := newRoot(t)
	before := snapshot(t, root)

	_, _, err := execute(t, "prepare-test-app", "--root", root, "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
	assert.Equal(t, before, snapshot(t, root))
}

func TestProcedureIgnoresExtraArguments(t *testing.T) {
	root := newRoot(t)

	cases := [][]string{
		{"prepare-example-app", "--root", root},
		{"prepare-example-app", "extra", "--root", root},
		{"prepare-example-app", "-x", "--root", root},
		{"prepare-example-app", "--root", root, "--bogus=1", "extra", "more"},
	}
	for _, args := range cases {
		runner := useRecordingRunner(t)

		stdout, _, err := execute(t, args...)
		require.NoError(t, err, args)
		assert.Contains(t, stdout, "Generating example app bindings", args)
		require.Len(t, runner.commands, 1, args)
		assert.Equal(t, "rinf gen", runner.commands[0].String())
		assert.Equal(t, filepath.Join(root, "flutter_package", "example"), runner.commands[0].Dir)
	}
}

func TestConsoleWriter(t *testing.T) {
	out := &bytes.Buffer{}
	logger := zerolog.New(NewConsoleWriter(out, false)).With().Str("procedure", "prepare-test-app").Logger()

	logger.Info().Bool("command", true).Msg("flutter create test_app")
	assert.Contains(t, out.String(), "prepare-test-app: $ flutter create test_app")

	out.Reset()
	logger.Warn().Msg("rinf is not listed in the app's dependencies")
	assert.Contains(t, out.String(), "rinf is not listed in the app's dependencies")
	assert.NotContains(t, out.String(), "$ ")
}

func TestConsoleWriterSimplifiesPaths(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	out := &bytes.Buffer{}
	logger := zerolog.New(NewConsoleWriter(out, false))
	path := filepath.Join(wd, "test_app", "pubspec.yaml")

	logger.Warn().Str("path", path).Msgf("Could not read %s", path)
	assert.Contains(t, out.String(), "Could not read "+filepath.Join("test_app", "pubspec.yaml"))
}
