// Package plan builds the daily plan document: it expands tag templates for
// a date, groups matching tag index entries into sections, renders them and
// assembles the final text.
//
// Output order is part of the contract. Sections follow configuration
// order, tags within a section follow the order they are first seen in the
// index, and occurrences of a tag follow index order.
package plan

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/calvinalkan/vwplan/internal/fs"
	"github.com/calvinalkan/vwplan/internal/logfields"
	"github.com/calvinalkan/vwplan/internal/tagindex"
)

// ErrNoSections is returned when no sections are configured.
var ErrNoSections = errors.New("no sections configured")

const targetPerms = 0o644

// Options configures one run.
type Options struct {
	Date      time.Time
	Sections  []string
	Templates map[string]Template

	// WikiRoot is the directory source files are relative to.
	WikiRoot string

	// IndexPath is the tag index file.
	IndexPath string

	FS fs.FS

	// Buffers receives rendered fragments. Defaults to [NewMemoryBuffers].
	Buffers Buffers

	// Logger receives debug tracing. Defaults to a discarding logger.
	Logger *slog.Logger

	// Strict makes a malformed index line abort the run.
	Strict bool

	// FailFast makes a render error abort the run.
	FailFast bool

	// OnWarning is called for every skipped index line or occurrence.
	OnWarning func(error)
}

// Entry is a matched occurrence with the display mode of its tag.
type Entry struct {
	tagindex.Occurrence

	Display Display
}

// Stats summarizes a run.
type Stats struct {
	Sections    int
	Tags        int
	Occurrences int
	Rendered    int
	Skipped     int
}

// Plan is the grouped and rendered result of a run.
type Plan struct {
	date     time.Time
	sections []*section
	buffers  Buffers
	stats    Stats
}

// section groups entries by tag, remembering first-seen tag order.
type section struct {
	name    string
	tags    []string
	entries map[string][]Entry
}

func (s *section) add(e Entry) {
	if _, ok := s.entries[e.Tag]; !ok {
		s.tags = append(s.tags, e.Tag)
	}

	s.entries[e.Tag] = append(s.entries[e.Tag], e)
}

// Build runs every stage up to, but not including, writing the target.
func Build(opts Options) (*Plan, error) {
	if len(opts.Sections) == 0 {
		return nil, ErrNoSections
	}

	if opts.FS == nil {
		opts.FS = fs.NewReal()
	}

	if opts.Buffers == nil {
		opts.Buffers = NewMemoryBuffers()
	}

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	warn := opts.OnWarning
	if warn == nil {
		warn = func(error) {}
	}

	mapping, err := Generate(opts.Templates, opts.Date)
	if err != nil {
		return nil, err
	}

	p := &Plan{date: opts.Date, buffers: opts.Buffers}

	byName := make(map[string]*section, len(opts.Sections))
	for _, name := range opts.Sections {
		if _, dup := byName[name]; dup {
			return nil, fmt.Errorf("duplicate section %q", name)
		}

		s := &section{name: name, entries: make(map[string][]Entry)}
		p.sections = append(p.sections, s)
		byName[name] = s
	}

	for _, tag := range slices.Sorted(maps.Keys(mapping)) {
		route := mapping[tag]
		if _, ok := byName[route.Section]; !ok {
			return nil, fmt.Errorf("template %q (tag %q): %w: %q", route.Template, tag, ErrUnknownSection, route.Section)
		}
	}

	log.Debug("generated tag names", logfields.Date(opts.Date.Format(time.DateOnly)), logfields.Count(len(mapping)))

	if err := p.scan(opts, mapping, byName, log, warn); err != nil {
		return nil, err
	}

	renderer := &Renderer{FS: opts.FS, Root: opts.WikiRoot}
	if err := p.render(renderer, opts.FailFast, log, warn); err != nil {
		return nil, err
	}

	p.stats.Sections = len(p.sections)

	return p, nil
}

func (p *Plan) scan(opts Options, mapping Mapping, byName map[string]*section, log *slog.Logger, warn func(error)) error {
	f, err := opts.FS.Open(opts.IndexPath)
	if err != nil {
		return fmt.Errorf("opening tag index: %w", err)
	}
	defer f.Close()

	sc := tagindex.NewScanner(f)
	sc.Strict = opts.Strict
	sc.OnMalformed = func(lineErr *tagindex.LineError) {
		p.stats.Skipped++
		warn(lineErr)
	}

	for sc.Scan() {
		occ := sc.Occurrence()

		route, ok := mapping[occ.Tag]
		if !ok {
			continue
		}

		sec := byName[route.Section]
		if _, seen := sec.entries[occ.Tag]; !seen {
			p.stats.Tags++
		}

		sec.add(Entry{Occurrence: occ, Display: route.Display})
		p.stats.Occurrences++

		log.Debug("matched tag",
			logfields.Tag(occ.Tag), logfields.Section(route.Section), logfields.Display(string(route.Display)),
			logfields.File(occ.File), logfields.Line(occ.Line))
	}

	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading tag index %s: %w", opts.IndexPath, err)
	}

	return nil
}

func (p *Plan) render(r *Renderer, failFast bool, log *slog.Logger, warn func(error)) error {
	for _, sec := range p.sections {
		for _, tag := range sec.tags {
			for _, e := range sec.entries[tag] {
				fragment, err := r.Render(e.Occurrence, e.Display)
				if err != nil {
					if failFast {
						return err
					}

					p.stats.Skipped++
					warn(err)
					log.Debug("skipped occurrence", logfields.Tag(tag), logfields.Error(err))

					continue
				}

				if err := p.buffers.Append(tag, fragment); err != nil {
					return err
				}

				p.stats.Rendered++
			}
		}
	}

	return nil
}

// Stats returns counts for the run.
func (p *Plan) Stats() Stats {
	return p.stats
}

// SectionNames returns the sections in output order.
func (p *Plan) SectionNames() []string {
	names := make([]string, 0, len(p.sections))
	for _, s := range p.sections {
		names = append(names, s.name)
	}

	return names
}

// Tags returns the tags of a section in first-seen order.
func (p *Plan) Tags(sectionName string) []string {
	for _, s := range p.sections {
		if s.name == sectionName {
			return slices.Clone(s.tags)
		}
	}

	return nil
}

// Entries returns the occurrences grouped under tag, in index order.
func (p *Plan) Entries(tag string) []Entry {
	for _, s := range p.sections {
		if entries, ok := s.entries[tag]; ok {
			return slices.Clone(entries)
		}
	}

	return nil
}

// Title returns the document title line, without a trailing newline.
func Title(date time.Time) string {
	return "= " + date.Format(time.DateOnly) + " ="
}

// Heading returns a section heading line, without a trailing newline.
func Heading(name string) string {
	return "= " + name + " ="
}

// Document assembles the final text: the title, a blank line, then per
// section its heading, the concatenated tag buffers and a blank separator.
func (p *Plan) Document() (string, error) {
	var b strings.Builder

	b.WriteString(Title(p.date) + "\n\n")

	for _, sec := range p.sections {
		b.WriteString(Heading(sec.name) + "\n")

		for _, tag := range sec.tags {
			text, err := p.buffers.Read(tag)
			if err != nil {
				return "", err
			}

			b.WriteString(text)
		}

		b.WriteString("\n\n")
	}

	return b.String(), nil
}

// TargetName returns the diary file name for date.
func TargetName(date time.Time) string {
	return date.Format(time.DateOnly) + ".wiki"
}

// Write assembles the document and atomically replaces target with it,
// creating the target's directory if needed.
func (p *Plan) Write(fsys fs.FS, target string) error {
	doc, err := p.Document()
	if err != nil {
		return err
	}

	if err := fsys.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating diary dir: %w", err)
	}

	if err := fsys.WriteFileAtomic(target, []byte(doc), targetPerms); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}

	return nil
}

// Result describes a completed run.
type Result struct {
	Target string
	Stats  Stats
}

// Run builds the plan and writes it to target.
func Run(opts Options, target string) (Result, error) {
	start := time.Now()

	p, err := Build(opts)
	if err != nil {
		return Result{}, err
	}

	fsys := opts.FS
	if fsys == nil {
		fsys = fs.NewReal()
	}

	if err := p.Write(fsys, target); err != nil {
		return Result{}, err
	}

	if opts.Logger != nil {
		opts.Logger.Info("plan written",
			logfields.Path(target),
			logfields.Count(p.stats.Rendered),
			logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	}

	return Result{Target: target, Stats: p.stats}, nil
}
