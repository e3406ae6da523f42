package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"code.cloudfoundry.org/bytefmt"
)

// Text is a plain text dataset; the working copy is a mutable byte slice.
type Text struct {
	path    string
	data    string
	work    []byte
	loaded  bool
	hasCopy bool
}

func NewText(path string) *Text {
	return &Text{path: path}
}

// GenerateText writes content to path.
func GenerateText(path, content string) (*Text, error) {
	if path == "" {
		path = TimestampName(time.Now()) + ".txt"
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("writing text %s: %w", path, err)
	}
	return NewText(path), nil
}

func (t *Text) Path() string { return t.path }

func (t *Text) Read() error {
	b, err := os.ReadFile(t.path)
	if err != nil {
		return err
	}
	t.data = string(b)
	t.loaded = true
	return nil
}

func (t *Text) Clear() {
	t.data = ""
	t.loaded = false
}

func (t *Text) Data() string {
	return t.data
}

func (t *Text) Copy() ([]byte, error) {
	t.ClearCopy()
	if !t.loaded {
		return nil, fmt.Errorf("text %s has not been read", t.path)
	}
	t.work = []byte(t.data)
	t.hasCopy = true
	return t.work, nil
}

func (t *Text) ClearCopy() {
	t.work = nil
	t.hasCopy = false
}

func (t *Text) SaveCopy(runDir string, argIndex, threads int) (string, error) {
	if !t.hasCopy {
		return "", ErrNoWorkingCopy
	}
	name := ArtifactName(argIndex, threads, filepath.Base(t.path))
	if err := os.WriteFile(filepath.Join(runDir, name), t.work, 0o644); err != nil {
		return "", err
	}
	return name, nil
}

func (t *Text) Title() string {
	return fmt.Sprintf("Text %s: %s", filepath.Base(t.path), bytefmt.ByteSize(uint64(len(t.data))))
}
