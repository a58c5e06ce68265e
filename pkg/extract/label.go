// Package extract pulls field values out of semi-structured registry
// content: label-proximity heuristics for HTML/plain text and ordered
// regex patterns for PDF text.
//
// Registry pages render label/value pairs with inconsistent markup
// (siblings, parent blocks, or flat sequential nodes), so the extractors
// here are heuristic. Misses are reported, never fatal.
package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// MatchSeparator joins independent matches of the same label.
const MatchSeparator = " || "

// FragmentSeparator joins fragments belonging to a single match.
const FragmentSeparator = " | "

// LabelConfig parameterizes label-proximity extraction for one field of
// one registry. Synonyms and headings are matched as lower-cased,
// whitespace-collapsed substrings.
type LabelConfig struct {
	// Synonyms are the label phrasings that identify the field, e.g.
	// "titolare", "podmiot odpowiedzialny", "marketing authorisation holder".
	Synonyms []string

	// ExcludeHeadings are label phrasings for unrelated fields that must
	// never leak into a value, e.g. "produttore" when extracting the
	// MA holder, or "forma farmaceutica".
	ExcludeHeadings []string
}

// normalize lower-cases and collapses whitespace for substring matching.
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func containsAny(s string, variants []string) bool {
	n := normalize(s)
	for _, v := range variants {
		if v != "" && strings.Contains(n, normalize(v)) {
			return true
		}
	}
	return false
}

// isLabel reports whether s matches a synonym or an excluded heading.
func (c LabelConfig) isLabel(s string) bool {
	return containsAny(s, c.Synonyms) || containsAny(s, c.ExcludeHeadings)
}

// ByLabelText extracts the value associated with any configured label
// synonym from plain text. Lines play the role of nodes: a line containing
// a synonym is a label hit; its value is the remainder of the line after
// the synonym, or the first following line that is not itself a label.
// Returns false when no hit yields a non-empty cleaned value.
func ByLabelText(text string, cfg LabelConfig) (string, bool) {
	lines := strings.Split(text, "\n")

	var values []string
	for i, line := range lines {
		if !containsAny(line, cfg.Synonyms) {
			continue
		}

		if rest := remainderAfterSynonym(line, cfg.Synonyms); rest != "" {
			values = append(values, rest)
			continue
		}

		// Forward scan: first non-empty following line that is not a label.
		for j := i + 1; j < len(lines); j++ {
			next := strings.TrimSpace(lines[j])
			if next == "" {
				continue
			}
			if cfg.isLabel(next) {
				break
			}
			values = append(values, next)
			break
		}
	}

	return finish(values, cfg)
}

// ByLabelNode extracts the value associated with any configured label
// synonym from a DOM container. Strategies per label hit, first success
// wins: next-sibling text, parent-block residue, forward scan in document
// order.
func ByLabelNode(container *goquery.Selection, cfg LabelConfig) (string, bool) {
	if container == nil {
		return "", false
	}

	nodes := container.Find("*")

	var values []string
	nodes.Each(func(i int, s *goquery.Selection) {
		// Only an element whose own text carries the synonym counts as a
		// hit; matching full subtree text would flag every ancestor too.
		if !containsAny(ownText(s), cfg.Synonyms) {
			return
		}

		// 1. Next-sibling value.
		if v := strings.TrimSpace(s.Next().Text()); v != "" && !cfg.isLabel(v) {
			values = append(values, v)
			return
		}

		// 2. Parent-block residue: parent text minus label/heading lines.
		if v := parentResidue(s, cfg); v != "" {
			values = append(values, v)
			return
		}

		// 3. Forward scan: first non-empty text-bearing node after the hit.
		for j := i + 1; j < nodes.Length(); j++ {
			cand := nodes.Eq(j)
			v := strings.TrimSpace(ownText(cand))
			if v == "" {
				continue
			}
			if cfg.isLabel(v) {
				break
			}
			values = append(values, v)
			break
		}
	})

	return finish(values, cfg)
}

// ownText returns the concatenated direct text children of s, excluding
// descendant element text.
func ownText(s *goquery.Selection) string {
	var b strings.Builder
	for _, node := range s.Nodes {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// parentResidue returns the parent's text with every line that itself
// matches a synonym or excluded heading removed, remaining lines joined
// as fragments of one match.
func parentResidue(s *goquery.Selection, cfg LabelConfig) string {
	parent := s.Parent()
	if parent.Length() == 0 {
		return ""
	}

	var fragments []string
	for _, line := range strings.Split(parent.Text(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || cfg.isLabel(line) {
			continue
		}
		fragments = append(fragments, line)
	}
	return strings.Join(fragments, FragmentSeparator)
}

// remainderAfterSynonym returns the text after the most specific synonym
// occurrence in line, trimmed of separator punctuation. Empty when the
// line is label-only.
func remainderAfterSynonym(line string, synonyms []string) string {
	n := normalize(line)
	best := -1
	for _, syn := range synonyms {
		syn = normalize(syn)
		if syn == "" {
			continue
		}
		if idx := strings.Index(n, syn); idx >= 0 {
			if end := idx + len(syn); end > best {
				best = end
			}
		}
	}
	if best < 0 {
		return ""
	}

	// Map the offset in the normalized text back onto the original line.
	collapsed := strings.Join(strings.Fields(line), " ")
	if best > len(collapsed) {
		return ""
	}
	return trimSeparators(collapsed[best:])
}

// finish deduplicates, cleans, and joins the collected candidate values.
func finish(values []string, cfg LabelConfig) (string, bool) {
	var cleaned []string
	seen := make(map[string]bool)
	for _, v := range values {
		v = cleanValue(v, cfg)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		cleaned = append(cleaned, v)
	}
	if len(cleaned) == 0 {
		return "", false
	}
	return strings.Join(cleaned, MatchSeparator), true
}

// cleanValue strips residual label text and unrelated headings from a
// candidate value, collapses whitespace, and trims separator characters.
func cleanValue(v string, cfg LabelConfig) string {
	for _, phrase := range append(append([]string{}, cfg.Synonyms...), cfg.ExcludeHeadings...) {
		phrase = normalize(phrase)
		if phrase == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(phrase))
		if err != nil {
			continue
		}
		v = re.ReplaceAllString(v, "")
	}
	v = strings.Join(strings.Fields(v), " ")
	return trimSeparators(v)
}

func trimSeparators(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), ":|-–"))
}
