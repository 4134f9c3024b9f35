package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workspaceManifest = `# Root workspace
[workspace]
members = ["test_app/native/*", "rust_crate"]
resolver = "2"

[workspace.dependencies]
`

func writeManifest(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestWorkspaceMembers(t *testing.T) {
	path := writeManifest(t, "Cargo.toml", workspaceManifest)

	members, err := WorkspaceMembers(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"test_app/native/*", "rust_crate"}, members)

	ok, err := IsWorkspaceMember(path, "test_app/native/*")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IsWorkspaceMember(path, "flutter_package/example/native/*")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWorkspaceMembersWithoutWorkspace(t *testing.T) {
	path := writeManifest(t, "Cargo.toml", "[package]\nname = \"hub\"\n")

	members, err := WorkspaceMembers(path)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestWorkspaceMembersInvalid(t *testing.T) {
	path := writeManifest(t, "Cargo.toml", "[workspace\nmembers = ")

	_, err := WorkspaceMembers(path)
	assert.Error(t, err)
}

func TestReadPubspec(t *testing.T) {
	path := writeManifest(t, "pubspec.yaml", `name: test_app
environment:
  sdk: ">=3.0.0 <4.0.0"
dependencies:
  flutter:
    sdk: flutter
  rinf:
    path: ../flutter_package
dev_dependencies:
  flutter_lints: ^3.0.0
`)

	spec, err := ReadPubspec(path)
	require.NoError(t, err)
	assert.Equal(t, "test_app", spec.Name)
	assert.True(t, spec.HasDependency("rinf"))
	assert.False(t, spec.HasDependency("flutter_lints"))
}

func TestReadPubspecMissing(t *testing.T) {
	_, err := ReadPubspec(filepath.Join(t.TempDir(), "pubspec.yaml"))
	assert.Error(t, err)
}
