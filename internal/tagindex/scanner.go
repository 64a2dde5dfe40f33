package tagindex

import (
	"bufio"
	"io"
	"strings"
)

// maxLineSize bounds a single index line. Tag indexes of large wikis can
// carry long descriptions; bufio's 64 KiB default is too small for some.
const maxLineSize = 1 << 20

// Scanner streams occurrences from a tag index.
//
// Header lines (see [CommentPrefix]) and blank lines are skipped. Malformed
// lines are skipped too and handed to OnMalformed, unless Strict is set, in
// which case scanning stops and [Scanner.Err] returns the [*LineError].
//
// Typical use:
//
//	sc := tagindex.NewScanner(f)
//	for sc.Scan() {
//	    occ := sc.Occurrence()
//	}
//	if err := sc.Err(); err != nil {
//	    return err
//	}
type Scanner struct {
	// Strict makes the first malformed line fatal.
	Strict bool

	// OnMalformed is called for every skipped malformed line. May be nil.
	OnMalformed func(*LineError)

	lines *bufio.Scanner
	num   int
	occ   Occurrence
	err   error
}

// NewScanner returns a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	lines := bufio.NewScanner(r)
	lines.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	return &Scanner{lines: lines}
}

// Scan advances to the next well-formed occurrence. It returns false at the
// end of input or on error.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}

	for s.lines.Scan() {
		s.num++

		line := s.lines.Text()
		if IsComment(line) || strings.TrimSpace(line) == "" {
			continue
		}

		occ, err := ParseLine(line)
		if err != nil {
			lineErr := &LineError{Num: s.num, Line: line, Err: err}
			if s.Strict {
				s.err = lineErr

				return false
			}

			if s.OnMalformed != nil {
				s.OnMalformed(lineErr)
			}

			continue
		}

		s.occ = occ

		return true
	}

	s.err = s.lines.Err()

	return false
}

// Occurrence returns the occurrence produced by the last successful Scan.
func (s *Scanner) Occurrence() Occurrence {
	return s.occ
}

// LineNum returns the 1-based index line of the current occurrence.
func (s *Scanner) LineNum() int {
	return s.num
}

// Err returns the first non-EOF error, including a [*LineError] in strict mode.
func (s *Scanner) Err() error {
	return s.err
}
