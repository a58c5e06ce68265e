package extract

import "testing"

func leafletPatterns() PDFFields {
	return PDFFields{
		MAHolder: FieldPatterns{
			Patterns: MustPatterns(
				`(?i)Titolare dell['’]autorizzazione all['’]immissione in commercio:?\s*\n?((?:[^\n]+\n?){1,6})`,
				`(?i)Titolare A\.?I\.?C\.?:?\s*\n?((?:[^\n]+\n?){1,4})`,
			),
			SectionLabels: []string{"produttore", "cosa contiene"},
			LabelLines:    []string{"titolare"},
		},
		Manufacturer: FieldPatterns{
			Patterns: MustPatterns(
				`(?i)Produttore:?\s*\n?((?:[^\n]+\n?){1,6})`,
			),
			SectionLabels: []string{"titolare", "cosa contiene"},
			LabelLines:    []string{"produttore"},
		},
	}
}

func TestFromPDFText_BothFields(t *testing.T) {
	text := `6. Contenuto della confezione e altre informazioni

Titolare dell'autorizzazione all'immissione in commercio:
Pfizer Italia S.r.l.
Via Isonzo 71

Produttore:
Pfizer Manufacturing Deutschland GmbH
Betriebsstatte Freiburg`

	got := FromPDFText(text, leafletPatterns())
	if want := "Pfizer Italia S.r.l. Via Isonzo 71"; got.MAHolder != want {
		t.Errorf("MAHolder = %q, want %q", got.MAHolder, want)
	}
	if want := "Pfizer Manufacturing Deutschland GmbH Betriebsstatte Freiburg"; got.Manufacturer != want {
		t.Errorf("Manufacturer = %q, want %q", got.Manufacturer, want)
	}
}

func TestFromPDFText_FieldsIndependent(t *testing.T) {
	text := "Titolare AIC:\nAcme S.p.A.\n\nAltre informazioni"

	got := FromPDFText(text, leafletPatterns())
	if got.MAHolder != "Acme S.p.A." {
		t.Errorf("MAHolder = %q, want %q", got.MAHolder, "Acme S.p.A.")
	}
	if got.Manufacturer != "" {
		t.Errorf("Manufacturer = %q, want empty on a leaflet with no manufacturer section", got.Manufacturer)
	}
}

func TestExtractField_FirstPatternWins(t *testing.T) {
	text := "Titolare dell'autorizzazione all'immissione in commercio:\nPrimo S.r.l.\n\nTitolare AIC:\nSecondo S.p.A.\n"

	got := extractField(text, leafletPatterns().MAHolder)
	if got != "Primo S.r.l." {
		t.Errorf("value = %q, want first pattern's capture", got)
	}
}

func TestTidyCapture_StopsAtSectionLabel(t *testing.T) {
	fp := leafletPatterns().MAHolder
	got := tidyCapture("Acme S.p.A.\nVia Roma 1\nProduttore: altrove\nignored", fp)
	if got != "Acme S.p.A. Via Roma 1" {
		t.Errorf("capture = %q, want truncation at section label", got)
	}
}

func TestTidyCapture_StopsAtBlankLine(t *testing.T) {
	fp := leafletPatterns().MAHolder
	got := tidyCapture("Acme S.p.A.\n\nVia Roma 1", fp)
	if got != "Acme S.p.A." {
		t.Errorf("capture = %q, want truncation at blank line", got)
	}
}

func TestTidyCapture_FiltersLabelLines(t *testing.T) {
	fp := leafletPatterns().MAHolder
	got := tidyCapture("Titolare AIC\nAcme S.p.A.", fp)
	if got != "Acme S.p.A." {
		t.Errorf("capture = %q, label-repeating line should be dropped", got)
	}
}

func TestFromPDFText_NoMatch(t *testing.T) {
	got := FromPDFText("Foglio illustrativo senza le sezioni attese", leafletPatterns())
	if got.MAHolder != "" || got.Manufacturer != "" {
		t.Errorf("expected empty fields, got %+v", got)
	}
}
