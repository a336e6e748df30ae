package services

import (
	"strings"
	"testing"
)

func TestRenderTemplate(t *testing.T) {
	got := renderTemplate("Hello {{name}}, your quote for {{rfq}} is due.", map[string]string{
		"name": "Acme Fiber",
		"rfq":  "RFQ-20250601-1234",
	})
	want := "Hello Acme Fiber, your quote for RFQ-20250601-1234 is due."
	if got != want {
		t.Errorf("renderTemplate = %q, want %q", got, want)
	}
}

func TestRenderTemplateLeavesUnknownPlaceholders(t *testing.T) {
	got := renderTemplate("Hi {{name}}, see {{unknown}}.", map[string]string{"name": "Sam"})
	if !strings.Contains(got, "{{unknown}}") {
		t.Errorf("renderTemplate = %q, want unknown placeholder left intact", got)
	}
}

func TestConvertHTMLToText(t *testing.T) {
	html := `<p>Dear Supplier,</p><p>Items:</p><ul><li>Fiber cable</li><li>Splice trays</li></ul>`
	got := convertHTMLToText(html)

	for _, want := range []string{"Dear Supplier,", "- Fiber cable", "- Splice trays"} {
		if !strings.Contains(got, want) {
			t.Errorf("convertHTMLToText output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "<") {
		t.Errorf("convertHTMLToText left markup in output:\n%s", got)
	}
}

func TestConvertHTMLToTextInvalidHTMLFallsBack(t *testing.T) {
	// html.Parse is lenient, but plain text must always survive.
	got := convertHTMLToText("just plain text")
	if !strings.Contains(got, "just plain text") {
		t.Errorf("convertHTMLToText = %q, want passthrough of plain text", got)
	}
}
