package pkg

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/mitchellh/colorstring"
	"github.com/rotisserie/eris"
)

// GetProjectRoot returns the top-level directory of the git checkout containing start.
func GetProjectRoot(start string) (string, error) {
	start, err := filepath.Abs(start)
	if err != nil {
		return "", eris.Wrapf(err, "Failed to resolve %s", start)
	}

	repo, err := git.PlainOpenWithOptions(start, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if eris.Is(err, git.ErrRepositoryNotExists) {
			return "", eris.Errorf("Project root not found above %s", start)
		}
		return "", eris.Wrap(err, "Error ocurred while searching for project root")
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", eris.Wrap(err, "Project root has no worktree")
	}

	return wt.Filesystem.Root(), nil
}

// ModifiedFiles lists tracked files in the checkout at root which have uncommitted changes.
// Untracked files are ignored.
func ModifiedFiles(root string) ([]string, error) {
	repo, err := git.PlainOpen(root)
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to open repository at %s", root)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, eris.Wrap(err, "Failed to access worktree")
	}

	status, err := wt.Status()
	if err != nil {
		return nil, eris.Wrap(err, "Failed to read worktree status")
	}

	modified := []string{}
	for path, fileStatus := range status {
		if fileStatus.Worktree == git.Untracked && fileStatus.Staging == git.Untracked {
			continue
		}

		if fileStatus.Worktree != git.Unmodified || fileStatus.Staging != git.Unmodified {
			modified = append(modified, path)
		}
	}

	sort.Strings(modified)
	return modified, nil
}

// DirExists reports whether path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if eris.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, eris.Wrapf(err, "Failed to check %s", path)
	}

	return info.IsDir(), nil
}

func PrintTask(out io.Writer, msg string) {
	colorstring.Fprintf(out, "[blue][bold]==>[default] %s\n", msg)
}

func PrintSubtask(out io.Writer, msg string) {
	colorstring.Fprintf(out, "[green][bold]  ->[reset] %s\n", msg)
}
