package results

import "testing"

func TestSet_AppendAndMerge(t *testing.T) {
	a := &Set{}
	a.Append(Row{SearchSubstance: "ibuprofen"})
	a.Append(Row{SearchSubstance: "ibuprofen", ProductName: "Brufen"})

	b := &Set{}
	b.Append(Row{SearchSubstance: "paracetamol"})

	a.Merge(b)
	a.Merge(nil)

	if a.Len() != 3 {
		t.Fatalf("len = %d, want 3", a.Len())
	}
	rows := a.Rows()
	if rows[2].SearchSubstance != "paracetamol" {
		t.Errorf("merge must preserve order, got %q last", rows[2].SearchSubstance)
	}
}

func TestOr(t *testing.T) {
	if got := Or("", NotFound); got != NotFound {
		t.Errorf("Or empty = %q", got)
	}
	if got := Or("  ", NotFound); got != NotFound {
		t.Errorf("Or blank = %q", got)
	}
	if got := Or("Acme", NotFound); got != "Acme" {
		t.Errorf("Or value = %q", got)
	}
}

func TestFound(t *testing.T) {
	if Found(NotFound) {
		t.Error("placeholder must not count as found")
	}
	if Found("") || Found("   ") {
		t.Error("blank must not count as found")
	}
	if !Found("Acme S.p.A.") {
		t.Error("real value must count as found")
	}
}

func TestSafeFileName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"ibuprofen", "ibuprofen"},
		{"acido acetilsalicilico", "acido_acetilsalicilico"},
		{" kwas acetylosalicylowy ", "kwas_acetylosalicylowy"},
		{"a:b*c?", "abc"},
		{"sito/percorso", "sitopercorso"},
	}
	for _, c := range cases {
		if got := SafeFileName(c.in); got != c.want {
			t.Errorf("SafeFileName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
