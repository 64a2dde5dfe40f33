package plan

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/calvinalkan/vwplan/internal/fs"
)

// Buffers accumulates rendered fragments per tag for one run.
// Append never overwrites: fragments for a tag are kept in append order.
type Buffers interface {
	Append(tag, fragment string) error

	// Read returns everything appended for tag, or "" if nothing was.
	Read(tag string) (string, error)
}

// MemoryBuffers keeps fragments in memory. The zero value is not usable;
// call [NewMemoryBuffers].
type MemoryBuffers struct {
	bufs map[string]*strings.Builder
}

// NewMemoryBuffers returns empty in-memory buffers.
func NewMemoryBuffers() *MemoryBuffers {
	return &MemoryBuffers{bufs: make(map[string]*strings.Builder)}
}

// Append adds fragment to the end of tag's buffer.
func (m *MemoryBuffers) Append(tag, fragment string) error {
	b, ok := m.bufs[tag]
	if !ok {
		b = &strings.Builder{}
		m.bufs[tag] = b
	}

	b.WriteString(fragment)

	return nil
}

// Read returns everything appended for tag, or "" if nothing was.
func (m *MemoryBuffers) Read(tag string) (string, error) {
	if b, ok := m.bufs[tag]; ok {
		return b.String(), nil
	}

	return "", nil
}

const (
	scratchDirPerms  = 0o755
	scratchFilePerms = 0o644
	scratchExt       = ".tmp"
)

// ScratchBuffers keeps one append-only file per tag in a scratch directory.
//
// The directory is owned by the run: [NewScratchBuffers] wipes and
// recreates it, so a missing or stale directory gives the same result.
// Callers must keep concurrent runs off the same directory (see [fs.TryLock]).
type ScratchBuffers struct {
	fs  fs.FS
	dir string
}

// NewScratchBuffers wipes dir and recreates it empty.
func NewScratchBuffers(fsys fs.FS, dir string) (*ScratchBuffers, error) {
	if dir == "" {
		return nil, errors.New("scratch directory is empty")
	}

	if err := fsys.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("clearing scratch dir: %w", err)
	}

	if err := fsys.MkdirAll(dir, scratchDirPerms); err != nil {
		return nil, fmt.Errorf("creating scratch dir: %w", err)
	}

	return &ScratchBuffers{fs: fsys, dir: dir}, nil
}

// Dir returns the scratch directory.
func (s *ScratchBuffers) Dir() string {
	return s.dir
}

// Append opens tag's scratch file in append mode and writes fragment.
func (s *ScratchBuffers) Append(tag, fragment string) error {
	f, err := s.fs.OpenFile(s.path(tag), os.O_CREATE|os.O_APPEND|os.O_WRONLY, scratchFilePerms)
	if err != nil {
		return fmt.Errorf("opening scratch buffer for %q: %w", tag, err)
	}

	_, writeErr := f.Write([]byte(fragment))
	closeErr := f.Close()

	if err := errors.Join(writeErr, closeErr); err != nil {
		return fmt.Errorf("appending to scratch buffer for %q: %w", tag, err)
	}

	return nil
}

// Read returns the contents of tag's scratch file, or "" if it was never written.
func (s *ScratchBuffers) Read(tag string) (string, error) {
	data, err := s.fs.ReadFile(s.path(tag))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}

		return "", fmt.Errorf("reading scratch buffer for %q: %w", tag, err)
	}

	return string(data), nil
}

// path escapes tag so names with "/" stay inside the scratch directory.
func (s *ScratchBuffers) path(tag string) string {
	return filepath.Join(s.dir, url.PathEscape(tag)+scratchExt)
}
