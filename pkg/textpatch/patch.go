// Package textpatch applies literal, first-match text substitutions to files.
package textpatch

import (
	"os"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
)

// Replace returns content with the first occurrence of before replaced by after
func Replace(content, before, after string) string {
	return strings.Replace(content, before, after, 1)
}

// ReplaceOnce rewrites the file at path with the first occurrence of before replaced by after.
// The file is written back even if before doesn't occur; the returned bool reports whether
// anything was replaced.
func ReplaceOnce(path, before, after string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, eris.Wrapf(err, "Failed to stat %s", path)
	}

	content, err := readText(path)
	if err != nil {
		return false, err
	}

	found := strings.Contains(content, before)
	err = os.WriteFile(path, []byte(Replace(content, before, after)), info.Mode().Perm())
	if err != nil {
		return false, eris.Wrapf(err, "Failed to write %s", path)
	}

	return found, nil
}

// AppendLine appends a line break followed by line to the file at path. Unless allowDuplicates
// is set, nothing happens if the file already contains line on its own.
func AppendLine(path, line string, allowDuplicates bool) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, eris.Wrapf(err, "Failed to stat %s", path)
	}

	content, err := readText(path)
	if err != nil {
		return false, err
	}

	if !allowDuplicates && HasLine(content, line) {
		return false, nil
	}

	err = os.WriteFile(path, []byte(content+"\n"+line), info.Mode().Perm())
	if err != nil {
		return false, eris.Wrapf(err, "Failed to write %s", path)
	}

	return true, nil
}

// HasLine reports whether content contains line, ignoring surrounding whitespace and CRLF endings
func HasLine(content, line string) bool {
	line = strings.TrimSpace(line)
	for _, item := range strings.Split(content, "\n") {
		if strings.TrimSpace(item) == line {
			return true
		}
	}

	return false
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrapf(err, "Failed to read %s", path)
	}

	if !utf8.Valid(data) {
		return "", eris.Errorf("%s is not valid UTF-8 text", path)
	}

	return string(data), nil
}
