// Package format turns the free text returned by the language model into
// the HTML fragment shown in the chat window. The text is split into the
// advice sections of a Schema, each line is cleaned, and the sections are
// rendered in a fixed order with a fixed visual style.
package format

import "strings"

// SectionID identifies one advice section. The numeric order is the render order.
type SectionID int

const (
	PossibleCauses SectionID = iota
	Prevention
	HomeRemedies
	BasicMedications
	SeeADoctor
	Disclaimer
)

// Style is the visual descriptor attached to a section heading.
type Style struct {
	Class string // css class on the section container
	Color string // heading colour
}

// SectionDef is the static definition of a section: its heading as the model
// is asked to write it and how it is drawn.
type SectionDef struct {
	ID    SectionID
	Name  string
	Style Style
}

// headerPattern maps a lower-case fragment to the section it announces. An
// exact pattern must be the whole heading, not a fragment of a longer line.
type headerPattern struct {
	pattern string
	id      SectionID
	exact   bool
}

// Schema is the immutable table of sections plus the ordered list of header
// patterns. It is built once at startup and shared by the prompt builder and
// the Formatter so the headings requested from the model and the headings
// recognised in its reply cannot drift apart.
type Schema struct {
	defs     []SectionDef
	patterns []headerPattern
}

// DefaultSchema returns the canonical six-section schema.
//
// Header patterns are tested in this order and the first hit wins:
//
//	when to see a doctor, basic medications, home remedies, possible causes,
//	disclaimer, prevention, causes
//
// Longer names come before the shorter fragments they could be confused with.
// "causes" is last and only matches a line that is nothing but the heading, so
// a bare "Causes:" joins Possible Causes while "smoking causes cancer" stays an
// item.
func DefaultSchema() *Schema {
	return &Schema{
		defs: []SectionDef{
			{ID: PossibleCauses, Name: "Possible Causes", Style: Style{Class: "section-causes badge-warn", Color: "#d93025"}},
			{ID: Prevention, Name: "Prevention", Style: Style{Class: "section-prevention", Color: "#1e8e3e"}},
			{ID: HomeRemedies, Name: "Home Remedies", Style: Style{Class: "section-remedies", Color: "#1a73e8"}},
			{ID: BasicMedications, Name: "Basic Medications", Style: Style{Class: "section-medications", Color: "#9334e6"}},
			{ID: SeeADoctor, Name: "When to See a Doctor", Style: Style{Class: "section-doctor badge-warn", Color: "#e37400"}},
			{ID: Disclaimer, Name: "Disclaimer", Style: Style{Class: "section-disclaimer", Color: "#5f6368"}},
		},
		patterns: []headerPattern{
			{pattern: "when to see a doctor", id: SeeADoctor},
			{pattern: "basic medications", id: BasicMedications},
			{pattern: "home remedies", id: HomeRemedies},
			{pattern: "possible causes", id: PossibleCauses},
			{pattern: "disclaimer", id: Disclaimer},
			{pattern: "prevention", id: Prevention},
			{pattern: "causes", id: PossibleCauses, exact: true},
		},
	}
}

// Headings lists the section names in render order. The prompt builder embeds
// exactly these strings.
func (s *Schema) Headings() []string {
	out := make([]string, len(s.defs))
	for i, d := range s.defs {
		out[i] = d.Name
	}
	return out
}

// Def returns the definition of id.
func (s *Schema) Def(id SectionID) (SectionDef, bool) {
	for _, d := range s.defs {
		if d.ID == id {
			return d, true
		}
	}
	return SectionDef{}, false
}

// Match reports which section a line announces, if any. Patterns are tried in
// priority order; most are a case-insensitive containment test, exact ones
// compare against the line with bullets, markup and the trailing colon removed.
func (s *Schema) Match(line string) (SectionID, bool) {
	lower := strings.ToLower(line)
	var bare string
	for _, p := range s.patterns {
		if !p.exact {
			if strings.Contains(lower, p.pattern) {
				return p.id, true
			}
			continue
		}
		if bare == "" {
			bare = headingText(lower)
		}
		if bare == p.pattern {
			return p.id, true
		}
	}
	return 0, false
}

// headingDecor is what the model wraps a heading in: markdown bullets, hashes,
// emphasis and the closing colon.
const headingDecor = " \t•-*#_:"

// headingText reduces a heading line to its words: tags and the surrounding
// markdown are dropped.
func headingText(line string) string {
	var b strings.Builder
	inTag := false
	for _, r := range line {
		switch {
		case r == '<':
			inTag = true
		case r == '>' && inTag:
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), headingDecor)
}

// newSections builds an empty working copy of the schema for one call.
func (s *Schema) newSections() Sections {
	out := make(Sections, len(s.defs))
	for i, d := range s.defs {
		out[i] = Section{Def: d}
	}
	return out
}
