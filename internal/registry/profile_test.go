package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGet_Builtins(t *testing.T) {
	for _, name := range []string{"aifa", "AIFA", "italy", "rpl", "poland"} {
		p, err := Get(name)
		if err != nil {
			t.Errorf("Get(%q): %v", name, err)
			continue
		}
		if p.Name == "" || p.StartURL == "" {
			t.Errorf("Get(%q) returned incomplete profile: %+v", name, p)
		}
		if len(p.PDF().MAHolder.Patterns) == 0 {
			t.Errorf("Get(%q): PDF MA-holder patterns not compiled", name)
		}
		if len(p.PDF().Manufacturer.Patterns) == 0 {
			t.Errorf("Get(%q): PDF manufacturer patterns not compiled", name)
		}
	}
}

func TestGet_Unknown(t *testing.T) {
	if _, err := Get("ema"); err == nil {
		t.Fatal("expected an error for an unknown registry")
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != 2 {
		t.Fatalf("names = %v, want two builtins", names)
	}
	for _, n := range names {
		if _, err := Get(n); err != nil {
			t.Errorf("listed name %q does not resolve: %v", n, err)
		}
	}
}

func TestAIFA_Shape(t *testing.T) {
	p, err := AIFA()
	if err != nil {
		t.Fatal(err)
	}
	if p.Mode != ModeNavigate {
		t.Errorf("mode = %q, want navigate", p.Mode)
	}
	if p.ModalCheckbox == "" || p.ModalAccept == "" {
		t.Error("AIFA must configure its disclaimer modal")
	}
	if len(p.SuggestionItems) == 0 {
		t.Error("AIFA must configure autocomplete suggestions")
	}
}

func TestRPL_Shape(t *testing.T) {
	p, err := RPL()
	if err != nil {
		t.Fatal(err)
	}
	if p.Mode != ModeExpand {
		t.Errorf("mode = %q, want expand", p.Mode)
	}
	if len(p.ExpandButtons) == 0 {
		t.Error("expand mode requires expand buttons")
	}
	if len(p.NextButtons) == 0 {
		t.Error("RPL paginates and must configure next buttons")
	}
}

const validYAML = `name: custom
start_url: https://example.test/search
mode: navigate
search_inputs: ["input.q"]
result_markers: [".results"]
result_items: [".results a"]
ma_holder:
  synonyms: ["marketing authorisation holder"]
manufacturer:
  synonyms: ["manufacturer"]
pdf_ma_holder:
  patterns: ['(?i)holder:?\s*([^\n]+)']
pdf_manufacturer:
  patterns: ['(?i)manufacturer:?\s*([^\n]+)']
manufacturer_html_pattern: '(?i)manufacturer[:\s]*([^\n<]{3,200})'
`

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFromFile(t *testing.T) {
	p, err := FromFile(writeProfile(t, validYAML))
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if p.Name != "custom" {
		t.Errorf("name = %q, want custom", p.Name)
	}
	if len(p.PDF().MAHolder.Patterns) != 1 {
		t.Error("PDF patterns not compiled")
	}
	if p.ManufacturerHTMLRegexp() == nil {
		t.Error("manufacturer HTML pattern not compiled")
	}
}

func TestFromFile_MissingRequiredField(t *testing.T) {
	content := strings.Replace(validYAML, `search_inputs: ["input.q"]`, "", 1)
	if _, err := FromFile(writeProfile(t, content)); err == nil {
		t.Fatal("expected validation error for missing search inputs")
	}
}

func TestFromFile_ExpandRequiresButtons(t *testing.T) {
	content := strings.Replace(validYAML, "mode: navigate", "mode: expand", 1)
	_, err := FromFile(writeProfile(t, content))
	if err == nil || !strings.Contains(err.Error(), "expand_buttons") {
		t.Fatalf("err = %v, want expand_buttons complaint", err)
	}
}

func TestFromFile_BadPattern(t *testing.T) {
	content := strings.Replace(validYAML, `'(?i)holder:?\s*([^\n]+)'`, `'(unclosed'`, 1)
	if _, err := FromFile(writeProfile(t, content)); err == nil {
		t.Fatal("expected compile error for a bad pattern")
	}
}

func TestFromFile_NotFound(t *testing.T) {
	if _, err := FromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestSelectorGroup(t *testing.T) {
	got := SelectorGroup([]string{"a.x", "button.y"})
	if got != "a.x, button.y" {
		t.Errorf("group = %q", got)
	}
}
