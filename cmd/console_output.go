package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mitchellh/colorstring"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

var levelColors = map[string]string{
	"fatal": "[red]",
	"error": "[red]",
	"warn":  "[yellow]",
	"debug": "[blue]",
	"trace": "[blue]",
}

// setErrorTraces controls whether logged errors include their eris stack trace
func setErrorTraces(enabled bool) {
	zerolog.ErrorMarshalFunc = func(err error) interface{} {
		return eris.ToString(err, enabled)
	}
}

func init() {
	setErrorTraces(false)
}

// ConsoleWriter turns zerolog's JSON events into short colored lines. A "procedure" field
// becomes a prefix and events with "command" set are shown like a shell prompt.
type ConsoleWriter struct {
	out     io.Writer
	verbose bool
	wd      string
	mu      sync.Mutex
}

func NewConsoleWriter(out io.Writer, verbose bool) *ConsoleWriter {
	wd, _ := os.Getwd()
	return &ConsoleWriter{out: out, verbose: verbose, wd: wd}
}

func (w *ConsoleWriter) Write(p []byte) (int, error) {
	evt := map[string]interface{}{}
	decoder := json.NewDecoder(bytes.NewReader(p))
	decoder.UseNumber()
	if err := decoder.Decode(&evt); err != nil {
		return 0, eris.Wrapf(err, "cannot decode event: %s", p)
	}

	line := w.render(evt)

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := colorstring.Fprint(w.out, line); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *ConsoleWriter) render(evt map[string]interface{}) string {
	level, _ := evt["level"].(string)
	color, ok := levelColors[level]
	if !ok {
		color = "[green]"
	}

	var sb strings.Builder
	sb.WriteString(color)
	if proc, ok := evt["procedure"].(string); ok {
		sb.WriteString(proc + ": ")
	}
	if level == "error" {
		sb.WriteString("Error: ")
	}
	if isCmd, _ := evt["command"].(bool); isCmd {
		sb.WriteString("$ ")
	}

	msg, _ := evt["message"].(string)
	if path, ok := evt["path"].(string); ok {
		msg = strings.ReplaceAll(msg, path, w.shortPath(path))
	}
	sb.WriteString(msg)

	if details, ok := evt["error"].(string); ok {
		sb.WriteString("\n" + details)
	}

	if w.verbose {
		keys := make([]string, 0, len(evt))
		for key := range evt {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		sb.WriteString("\n")
		for _, key := range keys {
			fmt.Fprintf(&sb, "  %s: %+v\n", key, evt[key])
		}
	}

	sb.WriteString("[reset]\n")
	return sb.String()
}

func (w *ConsoleWriter) shortPath(path string) string {
	if w.wd == "" {
		return path
	}

	rel, err := filepath.Rel(w.wd, path)
	if err != nil {
		return path
	}
	return rel
}
