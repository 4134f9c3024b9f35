// Package manifest reads the build manifests of the Rust and Dart sides of the repository.
package manifest

import (
	"github.com/BurntSushi/toml"
	"github.com/rotisserie/eris"
)

type cargoManifest struct {
	Workspace struct {
		Members []string `toml:"members"`
	} `toml:"workspace"`
}

// WorkspaceMembers returns the workspace.members entries of a Cargo.toml file
func WorkspaceMembers(path string) ([]string, error) {
	var manifest cargoManifest
	_, err := toml.DecodeFile(path, &manifest)
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to parse %s", path)
	}

	return manifest.Workspace.Members, nil
}

// IsWorkspaceMember reports whether member is listed in the workspace of the Cargo.toml at path
func IsWorkspaceMember(path, member string) (bool, error) {
	members, err := WorkspaceMembers(path)
	if err != nil {
		return false, err
	}

	for _, item := range members {
		if item == member {
			return true, nil
		}
	}

	return false, nil
}
