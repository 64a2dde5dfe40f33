package plan

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/ncruces/go-strftime"
)

// Template models.
const (
	// ModelDate expands Pattern as a strftime format against the run date.
	ModelDate = "date"
	// ModelString uses Pattern verbatim.
	ModelString = "string"
)

// Display selects how a matched occurrence is rendered.
type Display string

// Display modes.
const (
	DisplayLine        Display = "line"
	DisplayDescription Display = "description"
	DisplayFile        Display = "file"
)

// Valid reports whether d is a known display mode.
func (d Display) Valid() bool {
	switch d {
	case DisplayLine, DisplayDescription, DisplayFile:
		return true
	default:
		return false
	}
}

// Template errors.
var (
	ErrUnknownModel   = errors.New("unknown template model")
	ErrUnknownDisplay = errors.New("unknown display mode")
	ErrUnknownSection = errors.New("template section is not configured")
	ErrTagCollision   = errors.New("templates generate the same tag")
)

// Template is a configured rule computing one tag name for a run date.
type Template struct {
	Model   string  `json:"model"   yaml:"model"`
	Pattern string  `json:"pattern" yaml:"pattern"`
	Leader  string  `json:"leader"  yaml:"leader"`
	Section string  `json:"section" yaml:"section"`
	Display Display `json:"display" yaml:"display"`
}

// Validate checks the model and display mode.
func (t Template) Validate() error {
	if t.Model != ModelDate && t.Model != ModelString {
		return fmt.Errorf("%w: %q (want %q or %q)", ErrUnknownModel, t.Model, ModelDate, ModelString)
	}

	if !t.Display.Valid() {
		return fmt.Errorf("%w: %q (want %q, %q or %q)", ErrUnknownDisplay, t.Display,
			DisplayLine, DisplayDescription, DisplayFile)
	}

	return nil
}

// TagName returns Leader followed by the expanded Pattern.
func (t Template) TagName(date time.Time) (string, error) {
	switch t.Model {
	case ModelDate:
		return t.Leader + strftime.Format(t.Pattern, date), nil
	case ModelString:
		return t.Leader + t.Pattern, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownModel, t.Model)
	}
}

// Route tells the assembler where a tag's occurrences go.
type Route struct {
	Section string
	Display Display

	// Template is the configuration key of the originating template.
	Template string
}

// Mapping maps generated tag names to their routes.
type Mapping map[string]Route

// Generate expands every template for date.
//
// Templates are visited in key order, so errors are deterministic. Two
// templates producing the same tag name is an [ErrTagCollision].
func Generate(templates map[string]Template, date time.Time) (Mapping, error) {
	mapping := make(Mapping, len(templates))

	for _, key := range slices.Sorted(maps.Keys(templates)) {
		tpl := templates[key]

		if err := tpl.Validate(); err != nil {
			return nil, fmt.Errorf("template %q: %w", key, err)
		}

		tag, err := tpl.TagName(date)
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", key, err)
		}

		if prev, ok := mapping[tag]; ok {
			return nil, fmt.Errorf("%w: %q from %q and %q", ErrTagCollision, tag, prev.Template, key)
		}

		mapping[tag] = Route{Section: tpl.Section, Display: tpl.Display, Template: key}
	}

	return mapping, nil
}
