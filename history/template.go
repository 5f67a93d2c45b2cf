package history

import (
	"regexp"
	"strings"
)

// Template is a parsed record-content template. Templates contain literal
// text, variable placeholders like %USER%, and the reserved response
// placeholder %RESPONSE% (or its {RESPONSE} alias) which is replaced by the
// record content.
//
// Parsing happens once; rendering substitutes by segment position, so a
// variable value containing another placeholder's literal text is never
// re-substituted.
type Template struct {
	source   string
	segments []segment
}

type segmentKind int

const (
	segLiteral segmentKind = iota
	segVariable
	segResponse
)

type segment struct {
	kind segmentKind
	text string // literal text, or the bare variable name (e.g. "USER")
}

var placeholderPattern = regexp.MustCompile(`%[A-Z_]+%|\{RESPONSE\}`)

// DefaultTemplate passes content through unchanged.
var DefaultTemplate = MustParseTemplate("%RESPONSE%")

// ParseTemplate parses a template string. Unknown placeholders are kept as
// variable segments and render as their literal text unless a value is
// supplied.
func ParseTemplate(source string) (*Template, error) {
	t := &Template{source: source}
	last := 0
	for _, loc := range placeholderPattern.FindAllStringIndex(source, -1) {
		if loc[0] > last {
			t.segments = append(t.segments, segment{kind: segLiteral, text: source[last:loc[0]]})
		}
		token := source[loc[0]:loc[1]]
		if token == "%RESPONSE%" || token == "{RESPONSE}" {
			t.segments = append(t.segments, segment{kind: segResponse})
		} else {
			t.segments = append(t.segments, segment{kind: segVariable, text: strings.Trim(token, "%")})
		}
		last = loc[1]
	}
	if last < len(source) {
		t.segments = append(t.segments, segment{kind: segLiteral, text: source[last:]})
	}
	return t, nil
}

// MustParseTemplate parses a template string, panicking on error. Intended
// for package-level defaults.
func MustParseTemplate(source string) *Template {
	t, err := ParseTemplate(source)
	if err != nil {
		panic(err)
	}
	return t
}

// Source returns the original template string.
func (t *Template) Source() string { return t.source }

// HasResponse reports whether the template contains a response placeholder.
// Rendering a template without one drops the content entirely.
func (t *Template) HasResponse() bool {
	for _, s := range t.segments {
		if s.kind == segResponse {
			return true
		}
	}
	return false
}

// Render substitutes variables and the response content into the template.
// Variables map bare names (e.g. "USER") to values; placeholders without a
// value render literally.
func (t *Template) Render(content string, variables map[string]string) string {
	var b strings.Builder
	for _, s := range t.segments {
		switch s.kind {
		case segLiteral:
			b.WriteString(s.text)
		case segResponse:
			b.WriteString(content)
		case segVariable:
			if v, ok := variables[s.text]; ok {
				b.WriteString(v)
			} else {
				b.WriteString("%" + s.text + "%")
			}
		}
	}
	return b.String()
}
