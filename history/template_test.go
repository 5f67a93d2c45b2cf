package history

import "testing"

func TestTemplate_RenderPositional(t *testing.T) {
	tmpl, err := ParseTemplate("%USER% (%PRONOUNS%) at %TIMESTAMP%: %RESPONSE%")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	got := tmpl.Render("hello there", map[string]string{
		"USER":      "Sam",
		"PRONOUNS":  "they/them",
		"TIMESTAMP": "noon",
	})
	want := "Sam (they/them) at noon: hello there"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTemplate_ResponseAlias(t *testing.T) {
	tmpl := MustParseTemplate("reply: {RESPONSE}")
	if got := tmpl.Render("ok", nil); got != "reply: ok" {
		t.Fatalf("got %q", got)
	}
	if !tmpl.HasResponse() {
		t.Fatal("{RESPONSE} must count as a response token")
	}
}

func TestTemplate_ContentAsVariableValue(t *testing.T) {
	// Placeholder-looking text inside the content or a variable value must
	// render literally, not expand again.
	tmpl := MustParseTemplate("%USER%: %RESPONSE%")
	got := tmpl.Render("%USER% wrote this", map[string]string{"USER": "%RESPONSE%"})
	if got != "%RESPONSE%: %USER% wrote this" {
		t.Fatalf("positional rendering broken: %q", got)
	}
}

func TestTemplate_WithoutResponseTokenDropsContent(t *testing.T) {
	tmpl := MustParseTemplate("%USER% said something")
	got := tmpl.Render("this content is dropped", map[string]string{"USER": "Sam"})
	if got != "Sam said something" {
		t.Fatalf("got %q", got)
	}
}

func TestTemplate_UnknownPlaceholderRendersLiterally(t *testing.T) {
	tmpl := MustParseTemplate("%UNKNOWN% %RESPONSE%")
	if got := tmpl.Render("hi", nil); got != "%UNKNOWN% hi" {
		t.Fatalf("got %q", got)
	}
}

func TestDefaultTemplate(t *testing.T) {
	if got := DefaultTemplate.Render("plain", nil); got != "plain" {
		t.Fatalf("default template must pass content through, got %q", got)
	}
}
