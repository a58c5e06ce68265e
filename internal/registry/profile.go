// Package registry defines per-registry scraping profiles: the selector
// sets, label synonym tables, and PDF pattern tables that parameterize the
// traversal engine for one national medicines register. AIFA (Italy) and
// RPL (Poland) ship as builtins; additional registries load from YAML.
package registry

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/pharmaseek/pharmaseek/pkg/extract"
)

// Mode selects how a result item is opened.
type Mode string

const (
	// ModeNavigate clicks into a separate detail page and navigates back.
	ModeNavigate Mode = "navigate"

	// ModeExpand clicks a control inside the result card and extracts from
	// the listing page itself. Pagination only applies in this mode.
	ModeExpand Mode = "expand"
)

// LabelSpec configures label-proximity extraction for one field.
type LabelSpec struct {
	Synonyms        []string `yaml:"synonyms" validate:"required,min=1"`
	ExcludeHeadings []string `yaml:"exclude_headings"`
}

// Config converts the label spec into an extractor configuration.
func (l LabelSpec) Config() extract.LabelConfig {
	return extract.LabelConfig{
		Synonyms:        l.Synonyms,
		ExcludeHeadings: l.ExcludeHeadings,
	}
}

// PatternSpec configures ordered regex extraction of one field from PDF
// text. Patterns are compiled at load time.
type PatternSpec struct {
	Patterns      []string `yaml:"patterns" validate:"required,min=1"`
	SectionLabels []string `yaml:"section_labels"`
	LabelLines    []string `yaml:"label_lines"`
}

func (p PatternSpec) compile() (extract.FieldPatterns, error) {
	fp := extract.FieldPatterns{
		SectionLabels: p.SectionLabels,
		LabelLines:    p.LabelLines,
	}
	for _, expr := range p.Patterns {
		re, err := regexp.Compile(expr)
		if err != nil {
			return fp, fmt.Errorf("bad pattern %q: %w", expr, err)
		}
		fp.Patterns = append(fp.Patterns, re)
	}
	return fp, nil
}

// Profile describes one registry. Selector fields are alternatives tried
// together (joined into one selector group); the first match wins.
type Profile struct {
	Name     string `yaml:"name" validate:"required"`
	StartURL string `yaml:"start_url" validate:"required"`
	Mode     Mode   `yaml:"mode" validate:"required,oneof=navigate expand"`

	// Disclaimer modal, dismissed after navigation when present.
	ModalCheckbox string `yaml:"modal_checkbox"`
	ModalAccept   string `yaml:"modal_accept"`

	// Search controls.
	SearchInputs    []string `yaml:"search_inputs" validate:"required,min=1"`
	SearchButtons   []string `yaml:"search_buttons"`
	SuggestionItems []string `yaml:"suggestion_items"`

	// Result listing.
	ResultMarkers []string `yaml:"result_markers" validate:"required,min=1"`
	ResultItems   []string `yaml:"result_items" validate:"required,min=1"`

	// ModeExpand: control clicked inside the Nth result card.
	ExpandButtons []string `yaml:"expand_buttons"`

	// ModeNavigate: detail-page readiness markers, in fallback order.
	DetailURLPattern string   `yaml:"detail_url_pattern"`
	TitleSelectors   []string `yaml:"title_selectors"`
	DetailMarkers    []string `yaml:"detail_markers"`

	// Leaflet documents: link-text variants tried before generic
	// .pdf-extension matching.
	PDFLinkTexts []string `yaml:"pdf_link_texts"`

	// Pagination (ModeExpand).
	NextButtons []string `yaml:"next_buttons"`

	// Field extraction configuration.
	MAHolder     LabelSpec `yaml:"ma_holder" validate:"required"`
	Manufacturer LabelSpec `yaml:"manufacturer" validate:"required"`

	PDFMAHolder     PatternSpec `yaml:"pdf_ma_holder" validate:"required"`
	PDFManufacturer PatternSpec `yaml:"pdf_manufacturer" validate:"required"`

	// Page-HTML regex fallback for the manufacturer, applied when no PDF
	// yields a value.
	ManufacturerHTMLPattern string `yaml:"manufacturer_html_pattern"`

	pdf         extract.PDFFields
	mfrHTMLExpr *regexp.Regexp
}

// PDF returns the compiled PDF pattern tables.
func (p *Profile) PDF() extract.PDFFields {
	return p.pdf
}

// ManufacturerHTMLRegexp returns the compiled page-HTML fallback pattern,
// or nil when none is configured.
func (p *Profile) ManufacturerHTMLRegexp() *regexp.Regexp {
	return p.mfrHTMLExpr
}

// SelectorGroup joins selector alternatives into one comma group.
func SelectorGroup(selectors []string) string {
	return strings.Join(selectors, ", ")
}

var validate = validator.New()

// finalize validates the profile and compiles its pattern tables.
func (p *Profile) finalize() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid profile %q: %w", p.Name, err)
	}
	if p.Mode == ModeExpand && len(p.ExpandButtons) == 0 {
		return fmt.Errorf("invalid profile %q: expand mode requires expand_buttons", p.Name)
	}

	var err error
	p.pdf.MAHolder, err = p.PDFMAHolder.compile()
	if err != nil {
		return fmt.Errorf("profile %q ma_holder: %w", p.Name, err)
	}
	p.pdf.Manufacturer, err = p.PDFManufacturer.compile()
	if err != nil {
		return fmt.Errorf("profile %q manufacturer: %w", p.Name, err)
	}

	if p.ManufacturerHTMLPattern != "" {
		p.mfrHTMLExpr, err = regexp.Compile(p.ManufacturerHTMLPattern)
		if err != nil {
			return fmt.Errorf("profile %q manufacturer_html_pattern: %w", p.Name, err)
		}
	}
	return nil
}

// FromFile loads and validates a YAML profile.
func FromFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- CLI reads user-specified profile file
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	if err := p.finalize(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Get returns a builtin profile by name.
func Get(name string) (*Profile, error) {
	switch strings.ToLower(name) {
	case "aifa", "italy":
		return AIFA()
	case "rpl", "poland":
		return RPL()
	default:
		return nil, fmt.Errorf("unknown registry %q (builtins: aifa, rpl)", name)
	}
}

// Names lists the builtin registry names.
func Names() []string {
	return []string{"aifa", "rpl"}
}
