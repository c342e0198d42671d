package format

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

// DefaultDisclaimer is appended when the model supplies no disclaimer of its own.
const DefaultDisclaimer = "This information is for general awareness only and is not a substitute for professional medical advice. Please consult a qualified healthcare provider for diagnosis and treatment."

// DefaultMinItemLength is the shortest cleaned line, in runes, kept as an item.
const DefaultMinItemLength = 3

// bulletMarkers are stripped from the start of item lines.
const bulletMarkers = "•-* \t"

// markupTag finds HTML the model actually emitted. A bare "<" in prose such
// as "a<b" or "<and sugar>" does not match and is left for Render to escape.
var markupTag = regexp.MustCompile(`(?i)</?(a|b|i|u|em|strong|p|br|hr|li|ul|ol|h[1-6]|span|div|script|style|iframe|object|embed|code|pre|table|thead|tbody|tr|td|th|img|font|small|sup|sub|blockquote|mark)\b[^>]*>|<!--`)

// Section is one section of a parsed answer.
type Section struct {
	Def   SectionDef
	Items []string
}

// Sections is the per-call working copy of a Schema, in render order.
type Sections []Section

// Get returns the section with the given id, or nil.
func (ss Sections) Get(id SectionID) *Section {
	for i := range ss {
		if ss[i].Def.ID == id {
			return &ss[i]
		}
	}
	return nil
}

// NonEmpty lists the names of sections that hold at least one item.
func (ss Sections) NonEmpty() []string {
	var names []string
	for _, s := range ss {
		if len(s.Items) > 0 {
			names = append(names, s.Def.Name)
		}
	}
	return names
}

// Formatter parses model output into Sections and renders them. A Formatter
// holds only read-only tables and is safe for concurrent use.
type Formatter struct {
	schema     *Schema
	minItemLen int
	disclaimer string
	strip      *bluemonday.Policy
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithMinItemLength sets the minimum item length in runes. Values below 1 are ignored.
func WithMinItemLength(n int) Option {
	return func(f *Formatter) {
		if n >= 1 {
			f.minItemLen = n
		}
	}
}

// WithDefaultDisclaimer overrides the fallback disclaimer sentence.
func WithDefaultDisclaimer(s string) Option {
	return func(f *Formatter) {
		if s = strings.TrimSpace(s); s != "" {
			f.disclaimer = s
		}
	}
}

// New returns a Formatter for schema. A nil schema means DefaultSchema.
func New(schema *Schema, opts ...Option) *Formatter {
	if schema == nil {
		schema = DefaultSchema()
	}
	f := &Formatter{
		schema:     schema,
		minItemLen: DefaultMinItemLength,
		disclaimer: DefaultDisclaimer,
		strip:      bluemonday.StrictPolicy(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Schema returns the schema the Formatter recognises.
func (f *Formatter) Schema() *Schema { return f.schema }

// Parse splits raw into sections. Lines are assigned to the most recent header;
// lines seen before the first header are dropped. If the Disclaimer section is
// still empty at the end it receives the default disclaimer.
func (f *Formatter) Parse(raw string) Sections {
	sections := f.schema.newSections()
	var current *Section

	for _, line := range strings.Split(norm.NFKC.String(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if id, ok := f.schema.Match(line); ok {
			current = sections.Get(id)
			continue
		}
		if current == nil {
			continue
		}
		if item := f.cleanItem(line); utf8.RuneCountInString(item) >= f.minItemLen {
			current.Items = append(current.Items, item)
		}
	}

	if d := sections.Get(Disclaimer); d != nil && len(d.Items) == 0 {
		d.Items = append(d.Items, f.disclaimer)
	}
	return sections
}

// cleanItem removes markup the model may have emitted and the leading bullet.
// Only lines carrying a recognisable tag go through the sanitizer.
func (f *Formatter) cleanItem(line string) string {
	text := line
	if markupTag.MatchString(line) {
		text = f.strip.Sanitize(line)
	}
	text = html.UnescapeString(text)
	text = strings.TrimLeft(text, bulletMarkers)
	return strings.TrimSpace(text)
}

// Format parses raw and renders the result.
func (f *Formatter) Format(raw string) string {
	return f.Render(f.Parse(raw))
}
