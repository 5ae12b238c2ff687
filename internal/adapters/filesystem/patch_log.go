package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	corepatch "github.com/example/patchrun/internal/core/patch"
	"github.com/example/patchrun/internal/ports/secondary"
)

// PatchLogFile implements secondary.PatchLog as an append-only Markdown file.
// The file is opened and closed per entry so an interrupted run leaves a
// complete prefix of entries.
type PatchLogFile struct {
	path string
}

// NewPatchLogFile creates a patch log writing to path.
func NewPatchLogFile(path string) *PatchLogFile {
	return &PatchLogFile{path: path}
}

// Append writes one entry, prefixing the header when the file is new.
func (l *PatchLogFile) Append(ctx context.Context, entry corepatch.Entry) error {
	line := corepatch.FormatEntry(entry)

	_, err := os.Stat(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		line = corepatch.LogHeader + line
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open patch log: %w", err)
	}

	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return fmt.Errorf("failed to write patch log: %w", err)
	}

	return f.Close()
}

// Path returns the log file path.
func (l *PatchLogFile) Path() string {
	return l.path
}

var _ secondary.PatchLog = (*PatchLogFile)(nil)
