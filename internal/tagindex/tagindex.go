// Package tagindex decodes the tag index an external wiki indexer writes:
// one tab-separated, ctags-style line per tagged location.
//
// A line looks like
//
//	mytag<TAB>notes/work.wiki<TAB>12;"<TAB>vimwiki:notes/work\tnotes/work#Fix bug\tFix bug
//
// where the last field packs its parts with the two-character sequence `\t`
// rather than a real tab. The description is the part between the first and
// second `\t`; a trailing third part (the indexer repeats the anchor text
// there) is dropped.
package tagindex

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CommentPrefix marks header and metadata lines, which are ignored.
const CommentPrefix = "!"

const (
	minFields       = 4
	addressSuffix   = `;"`
	packedSeparator = `\t`
	anchorSeparator = "#"
)

// Errors for malformed index lines.
var (
	ErrTooFewFields  = errors.New("too few fields")
	ErrBadAddress    = errors.New("malformed line address")
	ErrNoDescription = errors.New("description field has no separator")
)

// Occurrence is one tagged location decoded from the index.
type Occurrence struct {
	// Tag is the tag name without surrounding colons.
	Tag string

	// File is the source file, relative to the wiki root.
	File string

	// Line is the 1-based line number of the tag in File.
	Line int

	// RawDescription is the packed description field as read.
	RawDescription string

	// Description is the wiki page reference, e.g. "notes/work#Fix bug".
	Description string

	// ShortDescription is the text after the first '#' in Description,
	// or Description itself when there is no '#'.
	ShortDescription string

	// Link is Description prefixed with "/", usable as a wiki link target.
	Link string
}

// LineError reports a malformed index line.
type LineError struct {
	// Num is the 1-based line number within the index.
	Num  int
	Line string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("tag index line %d: %v", e.Num, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// IsComment reports whether line is a header/metadata line.
func IsComment(line string) bool {
	return strings.HasPrefix(line, CommentPrefix)
}

// ParseLine decodes one index line. Trailing CR/LF is ignored, as are any
// fields after the fourth.
func ParseLine(line string) (Occurrence, error) {
	line = strings.TrimRight(line, "\r\n")

	fields := strings.Split(line, "\t")
	if len(fields) < minFields {
		return Occurrence{}, fmt.Errorf("%w: got %d, want at least %d", ErrTooFewFields, len(fields), minFields)
	}

	lineNum, err := parseAddress(fields[2])
	if err != nil {
		return Occurrence{}, err
	}

	desc, err := unpackDescription(fields[3])
	if err != nil {
		return Occurrence{}, err
	}

	return Occurrence{
		Tag:              fields[0],
		File:             fields[1],
		Line:             lineNum,
		RawDescription:   fields[3],
		Description:      desc,
		ShortDescription: shortDescription(desc),
		Link:             "/" + desc,
	}, nil
}

func parseAddress(field string) (int, error) {
	addr, ok := strings.CutSuffix(field, addressSuffix)
	if !ok {
		return 0, fmt.Errorf("%w: %q lacks %s suffix", ErrBadAddress, field, addressSuffix)
	}

	n, err := strconv.Atoi(addr)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q is not a line number", ErrBadAddress, field)
	}

	return n, nil
}

// unpackDescription returns the second packed part of the description
// field. A third part, when the indexer writes one, is display text that
// duplicates the anchor and is dropped.
func unpackDescription(field string) (string, error) {
	_, rest, ok := strings.Cut(field, packedSeparator)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNoDescription, field)
	}

	desc, _, _ := strings.Cut(rest, packedSeparator)

	return desc, nil
}

func shortDescription(desc string) string {
	if _, after, ok := strings.Cut(desc, anchorSeparator); ok {
		return after
	}

	return desc
}
