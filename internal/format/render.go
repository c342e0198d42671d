package format

import (
	"html"
	"strings"
)

// Render draws every non-empty section in schema order. The result is empty
// when no section has items; callers treat that as "no usable answer".
func (f *Formatter) Render(sections Sections) string {
	var b strings.Builder
	for _, s := range sections {
		if len(s.Items) == 0 {
			continue
		}
		writeSection(&b, s)
	}
	return b.String()
}

func writeSection(b *strings.Builder, s Section) {
	b.WriteString(`<div class="health-section `)
	b.WriteString(html.EscapeString(s.Def.Style.Class))
	b.WriteString(`"><h3 style="color:`)
	b.WriteString(html.EscapeString(s.Def.Style.Color))
	b.WriteString(`;">`)
	b.WriteString(html.EscapeString(s.Def.Name))
	b.WriteString(`</h3><ul>`)
	for _, item := range s.Items {
		b.WriteString("<li>")
		b.WriteString(html.EscapeString(item))
		b.WriteString("</li>")
	}
	b.WriteString("</ul></div>\n")
}

// pageStyle is the inline style sheet the chat window expects around an answer.
const pageStyle = `<style>
.health-section h3 { font-weight:700; margin-top:8px; }
.health-section ul { padding-left:1rem; }
.badge { display:inline-block; padding:2px 6px; border-radius:6px; background:#e8f0fe; color:#1a73e8; font-weight:600; }
.badge-warn h3 { border-left:3px solid #fdecea; padding-left:6px; }
</style>`

// Wrap places a rendered fragment inside the answer container with its style
// sheet. An empty fragment stays empty.
func Wrap(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	return `<div class="health-answer" style="line-height:1.6;">` + "\n" + fragment + pageStyle + "\n</div>"
}
