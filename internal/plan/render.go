package plan

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/calvinalkan/vwplan/internal/fs"
	"github.com/calvinalkan/vwplan/internal/tagindex"
)

// Render errors.
var (
	ErrSourceMissing  = errors.New("source file not found")
	ErrLineOutOfRange = errors.New("line number out of range")
)

// markerPattern matches inline wiki tags such as ":proj:".
var markerPattern = regexp.MustCompile(`:[^ ]+:`)

// StripMarkers removes every colon-delimited marker token from s.
func StripMarkers(s string) string {
	return markerPattern.ReplaceAllString(s, "")
}

// RenderError reports an occurrence that could not be rendered.
type RenderError struct {
	Tag  string
	File string
	Line int
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s (%s:%d): %v", e.Tag, e.File, e.Line, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Renderer turns occurrences into plan text. Source paths are resolved
// against Root.
type Renderer struct {
	FS   fs.FS
	Root string
}

// Render returns the fragment for occ in the given display mode.
func (r *Renderer) Render(occ tagindex.Occurrence, display Display) (string, error) {
	var (
		out string
		err error
	)

	switch display {
	case DisplayLine:
		out, err = r.renderLine(occ)
	case DisplayDescription:
		out = renderDescription(occ)
	case DisplayFile:
		out, err = r.renderFile(occ)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownDisplay, display)
	}

	if err != nil {
		return "", &RenderError{Tag: occ.Tag, File: occ.File, Line: occ.Line, Err: err}
	}

	return out, nil
}

func (r *Renderer) renderLine(occ tagindex.Occurrence) (string, error) {
	text, err := r.sourceLine(occ.File, occ.Line)
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, ":"+occ.Tag+":", "")

	return StripMarkers(text + "[[" + strings.TrimSpace(occ.Link) + "|@]]\n"), nil
}

func renderDescription(occ tagindex.Occurrence) string {
	link := "[[" + strings.TrimSpace(occ.Link) + "|" + strings.TrimSpace(occ.ShortDescription) + "]]"

	return StripMarkers("* " + link + "\n")
}

func (r *Renderer) renderFile(occ tagindex.Occurrence) (string, error) {
	data, err := r.FS.ReadFile(r.path(occ.File))
	if err != nil {
		return "", sourceErr(err)
	}

	return StripMarkers(string(data)), nil
}

// sourceLine returns line n (1-based) of file without its line ending.
func (r *Renderer) sourceLine(file string, n int) (string, error) {
	f, err := r.FS.Open(r.path(file))
	if err != nil {
		return "", sourceErr(err)
	}
	defer f.Close()

	lines := bufio.NewScanner(f)
	lines.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for i := 1; lines.Scan(); i++ {
		if i == n {
			return lines.Text(), nil
		}
	}

	if err := lines.Err(); err != nil {
		return "", fmt.Errorf("reading %s: %w", file, err)
	}

	return "", fmt.Errorf("%w: line %d", ErrLineOutOfRange, n)
}

func (r *Renderer) path(file string) string {
	return filepath.Join(r.Root, file)
}

func sourceErr(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrSourceMissing, err)
	}

	return err
}
