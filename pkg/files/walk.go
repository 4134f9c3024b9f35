package files

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// ListFiles returns every file below dir. Directories are descended into but not returned.
// Symlinks are not followed; a symlink pointing to a directory is skipped.
// A missing dir yields an empty list.
func ListFiles(dir string) ([]string, error) {
	result := []string{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir && eris.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return eris.Wrapf(err, "Failed to read %s", path)
		}

		if d.IsDir() {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err == nil && info.IsDir() {
				return nil
			}
		}

		result = append(result, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
