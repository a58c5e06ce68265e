package traverse

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pharmaseek/pharmaseek/internal/browser"
	"github.com/pharmaseek/pharmaseek/internal/logger"
	"github.com/pharmaseek/pharmaseek/internal/registry"
	"github.com/pharmaseek/pharmaseek/internal/results"
	"github.com/pharmaseek/pharmaseek/pkg/extract"
	"github.com/pharmaseek/pharmaseek/pkg/pdftext"
)

// Config holds per-run engine settings.
type Config struct {
	OutputDir string // downloaded documents land here
	DebugDir  string // diagnostic snapshots; empty disables them
	MaxPages  int    // pagination bound, 0 = unlimited
	StartURL  string // overrides the profile's start URL (offline snapshots)

	SearchTimeout   time.Duration
	ListingTimeout  time.Duration
	DetailTimeout   time.Duration
	DownloadTimeout time.Duration
	SettleDelay     time.Duration // pause after in-place DOM mutations
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		OutputDir:       "outputs",
		SearchTimeout:   10 * time.Second,
		ListingTimeout:  20 * time.Second,
		DetailTimeout:   8 * time.Second,
		DownloadTimeout: 60 * time.Second,
		SettleDelay:     800 * time.Millisecond,
	}
}

// Engine walks one registry for one substance at a time. It owns no
// shared state: every Run returns a fresh output set.
type Engine struct {
	session browser.Session
	profile *registry.Profile
	pdfText pdftext.Extractor
	cfg     Config

	// skipped counts items passed over across Runs of this engine.
	skipped int
}

// New creates an engine bound to a session and registry profile.
func New(session browser.Session, profile *registry.Profile, pdfText pdftext.Extractor, cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.OutputDir == "" {
		cfg.OutputDir = def.OutputDir
	}
	if cfg.SearchTimeout == 0 {
		cfg.SearchTimeout = def.SearchTimeout
	}
	if cfg.ListingTimeout == 0 {
		cfg.ListingTimeout = def.ListingTimeout
	}
	if cfg.DetailTimeout == 0 {
		cfg.DetailTimeout = def.DetailTimeout
	}
	if cfg.DownloadTimeout == 0 {
		cfg.DownloadTimeout = def.DownloadTimeout
	}
	return &Engine{
		session: session,
		profile: profile,
		pdfText: pdfText,
		cfg:     cfg,
	}
}

// Skipped returns the number of items skipped so far.
func (e *Engine) Skipped() int {
	return e.skipped
}

// Run searches the registry for substance and traverses every result,
// including paginated listings. The returned set is complete for this
// substance; only run-level failures produce an error.
func (e *Engine) Run(ctx context.Context, substance string) (*results.Set, error) {
	log := logger.With("registry", e.profile.Name, "substance", substance)
	set := &results.Set{}

	startURL := e.cfg.StartURL
	if startURL == "" {
		startURL = e.profile.StartURL
	}

	if err := e.session.Navigate(ctx, startURL, e.cfg.ListingTimeout); err != nil {
		return set, fmt.Errorf("cannot reach registry: %w", err)
	}
	e.dismissModal(ctx)

	if err := e.search(ctx, substance); err != nil {
		return set, err
	}

	markers := registry.SelectorGroup(e.profile.ResultMarkers)
	if !e.session.WaitVisible(ctx, markers, e.cfg.ListingTimeout) {
		return set, ErrNoResults
	}

	canonical, err := e.session.CurrentURL(ctx)
	if err != nil {
		return set, fmt.Errorf("cannot record listing URL: %w", err)
	}
	log.Debug("listing loaded", "url", canonical)

	page := 1
	for {
		e.traverseListing(ctx, substance, canonical, page, set, log)

		if !e.nextPage(ctx, page, log) {
			break
		}
		page++

		// Pagination may move the listing to a new URL; the resync anchor
		// must follow it or item navigations would drag the session back to
		// the first page.
		if url, err := e.session.CurrentURL(ctx); err == nil && url != "" {
			canonical = url
		}
	}

	log.Info("run complete", "rows", set.Len(), "pages", page)
	return set, nil
}

// search fills the search control and submits the query. AIFA offers an
// autocomplete suggestion list; clicking the matching entry is preferred,
// then the explicit search button, then Enter.
func (e *Engine) search(ctx context.Context, substance string) error {
	inputs := registry.SelectorGroup(e.profile.SearchInputs)
	if !e.session.WaitVisible(ctx, inputs, e.cfg.SearchTimeout) {
		return ErrSearchInputNotFound
	}
	if err := e.session.Fill(ctx, inputs, substance); err != nil {
		return fmt.Errorf("%w: %v", ErrSearchInputNotFound, err)
	}

	if len(e.profile.SuggestionItems) > 0 {
		suggestions := registry.SelectorGroup(e.profile.SuggestionItems)
		clicked, err := e.session.ClickMatchingText(ctx, suggestions, substance, 6*time.Second)
		if err == nil && clicked {
			return nil
		}
	}

	// Button and Enter are alternative submissions, never both: a second
	// submit can fire the query twice.
	if len(e.profile.SearchButtons) > 0 {
		buttons := registry.SelectorGroup(e.profile.SearchButtons)
		if clicked, err := e.session.ClickFirstVisible(ctx, buttons, e.cfg.SearchTimeout); err == nil && clicked {
			e.settle(ctx)
			return nil
		}
	}
	if err := e.session.PressEnter(ctx, inputs); err == nil {
		e.settle(ctx)
	}
	return nil
}

// dismissModal accepts the disclaimer modal when the profile defines one.
// Its absence is normal.
func (e *Engine) dismissModal(ctx context.Context) {
	if e.profile.ModalCheckbox != "" {
		if ok, _ := e.session.ClickFirstVisible(ctx, e.profile.ModalCheckbox, 2*time.Second); ok {
			e.settle(ctx)
		}
	}
	if e.profile.ModalAccept != "" {
		if ok, _ := e.session.ClickFirstVisible(ctx, e.profile.ModalAccept, 5*time.Second); ok {
			logger.Debug("disclaimer modal dismissed", "registry", e.profile.Name)
			e.settle(ctx)
		}
	}
}

// traverseListing walks every item of the current listing page by index.
// The initial count bounds the loop; re-enumeration happens each
// iteration and shrinkage truncates the loop instead of erroring.
func (e *Engine) traverseListing(ctx context.Context, substance, canonical string, page int, set *results.Set, log *slog.Logger) {
	items := registry.SelectorGroup(e.profile.ResultItems)

	total, err := e.session.Count(ctx, items)
	if err != nil {
		log.Warn("cannot enumerate result items", "error", err)
		return
	}
	log.Info("traversing listing", "page", page, "items", total)

	for index := 0; index < total; index++ {
		if ctx.Err() != nil {
			return
		}

		if !e.resync(ctx, canonical, log) {
			return
		}

		// Re-enumerate: element references from before the last navigation
		// are stale and the listing may have shrunk.
		current, err := e.session.Count(ctx, items)
		if err != nil || index >= current {
			log.Warn("listing shrank, stopping early",
				"reason", SkipIndexDrift, "index", index, "was", total, "now", current)
			return
		}

		if !e.openItem(ctx, items, index, log) {
			e.skip(ctx, substance, index, SkipItemOpenFailed, log)
			continue
		}

		if e.profile.Mode == registry.ModeNavigate && !e.awaitDetail(ctx) {
			e.skip(ctx, substance, index, SkipDetailNotReady, log)
			continue
		}
		e.settle(ctx)

		row := e.extractItem(ctx, substance, index, log)
		set.Append(row)
		log.Debug("row emitted",
			"index", index,
			"product", row.ProductName,
			"ma_holder", row.MAHolder,
			"manufacturer", row.Manufacturer)

		if e.profile.Mode == registry.ModeNavigate {
			// A failed goBack lands wherever it lands; the resync at the
			// top of the next iteration recovers.
			if err := e.session.GoBack(ctx); err != nil {
				log.Debug("goBack failed, relying on resync", "error", err)
			}
		}
	}
}

// resync restores the canonical listing when a prior navigation left the
// session elsewhere.
func (e *Engine) resync(ctx context.Context, canonical string, log *slog.Logger) bool {
	current, err := e.session.CurrentURL(ctx)
	if err == nil && current == canonical {
		return true
	}

	log.Debug("resyncing to listing", "current", current, "canonical", canonical)
	if err := e.session.Navigate(ctx, canonical, e.cfg.ListingTimeout); err != nil {
		log.Warn("resync navigation failed", "error", err)
		return false
	}
	e.dismissModal(ctx)
	markers := registry.SelectorGroup(e.profile.ResultMarkers)
	if !e.session.WaitVisible(ctx, markers, e.cfg.ListingTimeout) {
		log.Warn("listing did not reappear after resync")
		return false
	}
	return true
}

// openItem opens the index-th result: a click into the detail page, or the
// in-card expand control depending on mode.
func (e *Engine) openItem(ctx context.Context, items string, index int, log *slog.Logger) bool {
	var err error
	if e.profile.Mode == registry.ModeExpand {
		inner := registry.SelectorGroup(e.profile.ExpandButtons)
		err = e.session.ClickNthInner(ctx, items, index, inner, e.cfg.DetailTimeout)
	} else {
		err = e.session.ClickNth(ctx, items, index, e.cfg.DetailTimeout)
	}
	if err != nil {
		log.Debug("item open failed", "index", index, "error", err)
		return false
	}
	return true
}

// awaitDetail waits for the detail page with fallbacks in priority order:
// URL pattern, title marker, detail-container marker.
func (e *Engine) awaitDetail(ctx context.Context) bool {
	if e.profile.DetailURLPattern != "" &&
		e.session.URLContains(ctx, e.profile.DetailURLPattern, e.cfg.DetailTimeout) {
		return true
	}
	if len(e.profile.TitleSelectors) > 0 &&
		e.session.WaitVisible(ctx, registry.SelectorGroup(e.profile.TitleSelectors), e.cfg.DetailTimeout) {
		return true
	}
	if len(e.profile.DetailMarkers) > 0 &&
		e.session.WaitVisible(ctx, registry.SelectorGroup(e.profile.DetailMarkers), e.cfg.DetailTimeout) {
		return true
	}
	return false
}

// skip records a per-item failure, optionally snapshotting the page.
func (e *Engine) skip(ctx context.Context, substance string, index int, reason SkipReason, log *slog.Logger) {
	e.skipped++
	log.Warn("skipping item", "index", index, "reason", reason)
	if e.cfg.DebugDir != "" {
		name := fmt.Sprintf("%s_item%d", results.SafeFileName(substance), index)
		_ = e.session.Snapshot(ctx, e.cfg.DebugDir, name)
	}
}

// nextPage advances pagination. Returns false when no next control exists,
// it reports disabled, the page bound is reached, or the click fails.
func (e *Engine) nextPage(ctx context.Context, page int, log *slog.Logger) bool {
	if len(e.profile.NextButtons) == 0 {
		return false
	}
	if e.cfg.MaxPages > 0 && page >= e.cfg.MaxPages {
		log.Debug("page bound reached", "pages", page)
		return false
	}

	next := registry.SelectorGroup(e.profile.NextButtons)
	disabled, found, err := e.session.IsDisabled(ctx, next)
	if err != nil || !found || disabled {
		log.Debug("pagination finished", "found", found, "disabled", disabled)
		return false
	}

	clicked, err := e.session.ClickFirstVisible(ctx, next, e.cfg.DetailTimeout)
	if err != nil || !clicked {
		log.Warn("next-page click failed", "error", err)
		return false
	}

	e.settle(ctx)
	markers := registry.SelectorGroup(e.profile.ResultMarkers)
	if !e.session.WaitVisible(ctx, markers, e.cfg.ListingTimeout) {
		log.Warn("listing did not reload after pagination")
		return false
	}
	return true
}

// settle pauses briefly after in-place DOM mutations.
func (e *Engine) settle(ctx context.Context) {
	if e.cfg.SettleDelay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(e.cfg.SettleDelay):
	}
}

// extractItem reads the open item (detail page or expanded card) and
// builds its row. Extraction misses become NotFound fields, never errors.
func (e *Engine) extractItem(ctx context.Context, substance string, index int, log *slog.Logger) results.Row {
	row := results.Row{
		SearchSubstance: substance,
		ProductName:     "(no name)",
		MAHolder:        results.NotFound,
		Manufacturer:    results.NotFound,
		PDFFile:         results.NotFound,
		DetailURL:       results.NotFound,
	}

	if url, err := e.session.CurrentURL(ctx); err == nil && url != "" {
		row.DetailURL = url
	}

	html, err := e.session.PageHTML(ctx)
	if err != nil {
		log.Warn("cannot read page content", "index", index, "error", err)
		return row
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Warn("cannot parse page content", "index", index, "error", err)
		return row
	}

	container := e.itemContainer(doc, index)

	if name := e.productName(container, doc); name != "" {
		row.ProductName = name
	}

	// HTML-derived fields.
	htmlMA, htmlMAFound := e.byLabelWithPageFallback(container, doc, e.profile.MAHolder.Config())
	var htmlMfr string
	var htmlMfrFound bool
	if e.profile.Mode == registry.ModeExpand {
		// Expanded cards carry the manufacturer in the same panel.
		htmlMfr, htmlMfrFound = e.byLabelWithPageFallback(container, doc, e.profile.Manufacturer.Config())
	}

	// PDF-derived fields.
	var pdfFields extract.Fields
	if path, ok := e.fetchDocument(ctx, container, doc, substance, index, row.DetailURL, log); ok {
		row.PDFFile = path
		if text, err := e.pdfText.Extract(path); err != nil {
			log.Debug("pdf text extraction failed", "path", path, "error", err)
		} else {
			pdfFields = extract.FromPDFText(text, e.profile.PDF())
		}
	}

	// Merge: MA holder prefers the page value; the manufacturer comes
	// from the PDF first, as registry pages rarely carry it.
	if htmlMAFound {
		row.MAHolder = htmlMA
	} else {
		row.MAHolder = results.Or(pdfFields.MAHolder, results.NotFound)
	}

	switch {
	case pdfFields.Manufacturer != "":
		row.Manufacturer = pdfFields.Manufacturer
	case htmlMfrFound:
		row.Manufacturer = htmlMfr
	default:
		if re := e.profile.ManufacturerHTMLRegexp(); re != nil {
			if m := re.FindStringSubmatch(html); len(m) > 1 {
				row.Manufacturer = strings.Join(strings.Fields(m[1]), " ")
			}
		}
	}

	return row
}

// itemContainer scopes extraction to the index-th result card in expand
// mode; in navigate mode the whole document is the detail record.
func (e *Engine) itemContainer(doc *goquery.Document, index int) *goquery.Selection {
	if e.profile.Mode != registry.ModeExpand {
		return doc.Selection
	}
	cards := doc.Find(registry.SelectorGroup(e.profile.ResultItems)).FilterFunction(
		func(_ int, s *goquery.Selection) bool {
			return strings.TrimSpace(s.Text()) != ""
		})
	if index < cards.Length() {
		return cards.Eq(index)
	}
	return doc.Selection
}

// byLabelWithPageFallback tries the scoped container first, then the whole
// page; side panels often render outside the card that triggered them.
func (e *Engine) byLabelWithPageFallback(container *goquery.Selection, doc *goquery.Document, cfg extract.LabelConfig) (string, bool) {
	if v, ok := extract.ByLabelNode(container, cfg); ok {
		return v, true
	}
	if container != doc.Selection {
		return extract.ByLabelNode(doc.Selection, cfg)
	}
	return "", false
}

// productName reads the display name from the first matching title
// selector, preferring the scoped container.
func (e *Engine) productName(container *goquery.Selection, doc *goquery.Document) string {
	for _, sel := range e.profile.TitleSelectors {
		if name := strings.TrimSpace(container.Find(sel).First().Text()); name != "" {
			return strings.Join(strings.Fields(name), " ")
		}
	}
	for _, sel := range e.profile.TitleSelectors {
		if name := strings.TrimSpace(doc.Find(sel).First().Text()); name != "" {
			return strings.Join(strings.Fields(name), " ")
		}
	}
	return ""
}

// fetchDocument locates the leaflet link and downloads it. The scoped
// container is searched first so expanded cards never pick up a sibling
// card's document; the whole page is the fallback, as with labels.
// Failures leave the item intact; fields then resolve from HTML only.
func (e *Engine) fetchDocument(ctx context.Context, container *goquery.Selection, doc *goquery.Document, substance string, index int, baseURL string, log *slog.Logger) (string, bool) {
	link := findDocumentLink(container, e.profile.PDFLinkTexts, baseURL)
	if link == "" && container != doc.Selection {
		link = findDocumentLink(doc.Selection, e.profile.PDFLinkTexts, baseURL)
	}
	if link == "" {
		log.Debug("no document link on item", "index", index)
		return "", false
	}

	dest := filepath.Join(e.cfg.OutputDir,
		fmt.Sprintf("%s_%d.pdf", results.SafeFileName(substance), index))
	path, err := e.session.Download(ctx, link, dest, e.cfg.DownloadTimeout)
	if err != nil {
		log.Debug("document download failed", "url", link, "error", err)
		return "", false
	}
	return path, true
}
