package extract

import (
	"regexp"
	"strings"
)

// FieldPatterns is an ordered list of regular expressions for one field.
// The first pattern that matches wins; each pattern must expose exactly
// one capture group holding the raw value.
type FieldPatterns struct {
	Patterns []*regexp.Regexp

	// SectionLabels are phrasings that open a different section; a
	// multi-line capture is truncated when one of these starts a line.
	SectionLabels []string

	// LabelLines are phrasings identifying lines that merely repeat the
	// field's own label; such lines are filtered from the capture.
	LabelLines []string
}

// PDFFields holds the per-field pattern tables applied to leaflet text.
type PDFFields struct {
	MAHolder     FieldPatterns
	Manufacturer FieldPatterns
}

// Fields is the result of a PDF extraction pass. Empty means not found.
type Fields struct {
	MAHolder     string
	Manufacturer string
}

// MustPatterns compiles the given expressions, panicking on a bad one.
// Intended for package-level pattern tables.
func MustPatterns(exprs ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		res = append(res, regexp.MustCompile(e))
	}
	return res
}

// FromPDFText extracts both fields from leaflet text. Fields resolve
// independently: a miss on one never affects the other.
func FromPDFText(text string, cfg PDFFields) Fields {
	return Fields{
		MAHolder:     extractField(text, cfg.MAHolder),
		Manufacturer: extractField(text, cfg.Manufacturer),
	}
}

// extractField applies the ordered patterns, first match wins, then trims
// the raw capture back to the value proper.
func extractField(text string, fp FieldPatterns) string {
	for _, re := range fp.Patterns {
		m := re.FindStringSubmatch(text)
		if m == nil || len(m) < 2 {
			continue
		}
		if v := tidyCapture(m[1], fp); v != "" {
			return v
		}
	}
	return ""
}

// tidyCapture truncates a raw capture at the first blank line or foreign
// section label, drops label-repeating lines, and joins the remainder
// with single spaces.
func tidyCapture(raw string, fp FieldPatterns) string {
	var kept []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			break
		}
		if startsWithAny(trimmed, fp.SectionLabels) {
			break
		}
		if containsAny(trimmed, fp.LabelLines) {
			continue
		}
		kept = append(kept, trimmed)
	}
	return strings.Join(strings.Fields(strings.Join(kept, " ")), " ")
}

func startsWithAny(s string, prefixes []string) bool {
	n := normalize(s)
	for _, p := range prefixes {
		p = normalize(p)
		if p != "" && strings.HasPrefix(n, p) {
			return true
		}
	}
	return false
}
