package oracle

import "strings"

// Sentinel is the exact reply the model is told to give when it has nothing
// reliable to say.
const Sentinel = "NO_INFORMATION_AVAILABLE"

// IsNoInformation reports whether the model declined to answer.
func IsNoInformation(text string) bool {
	return strings.Contains(text, Sentinel)
}

// BuildPrompt asks the model for plain-text advice under the given headings.
// headings must be the section names the formatter recognises.
func BuildPrompt(headings []string, query string) string {
	var b strings.Builder
	b.WriteString("You are a public health assistant. When the user asks about a disease, symptoms, or treatment, ")
	b.WriteString("answer in plain text using exactly these section headings, each on its own line followed by a colon:\n")
	for _, h := range headings {
		b.WriteString(h)
		b.WriteString(":\n")
	}
	b.WriteString("Under each heading write short bullet points, one per line, each starting with \"- \". ")
	b.WriteString("Do not use HTML, tables or nested lists. Keep the advice simple and practical. ")
	b.WriteString("If you do not have reliable information for this question, reply with exactly ")
	b.WriteString(Sentinel)
	b.WriteString(" and nothing else.\n\nUser: ")
	b.WriteString(strings.TrimSpace(query))
	return b.String()
}
