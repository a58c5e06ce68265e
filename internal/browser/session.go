// Package browser implements the browsing session consumed by the
// traversal engine on top of chromedp. One session owns one page; element
// references never survive a navigation, so every operation that touches
// result items re-queries the DOM by selector and position.
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/pharmaseek/pharmaseek/internal/logger"
)

// Session is the browsing capability consumed by the traversal engine.
type Session interface {
	// Navigate loads url and waits for the body to be ready.
	Navigate(ctx context.Context, url string, timeout time.Duration) error

	// CurrentURL returns the page's current location.
	CurrentURL(ctx context.Context) (string, error)

	// PageHTML returns the full document markup.
	PageHTML(ctx context.Context) (string, error)

	// Count returns the number of visible, text-bearing elements matching
	// the selector group, evaluated fresh on every call.
	Count(ctx context.Context, selectorGroup string) (int, error)

	// ClickNth clicks the index-th visible match of the selector group.
	ClickNth(ctx context.Context, selectorGroup string, index int, timeout time.Duration) error

	// ClickNthInner clicks the first innerGroup match inside the index-th
	// visible match of the selector group.
	ClickNthInner(ctx context.Context, selectorGroup string, index int, innerGroup string, timeout time.Duration) error

	// ClickFirstVisible clicks the first visible match; false when none.
	ClickFirstVisible(ctx context.Context, selectorGroup string, timeout time.Duration) (bool, error)

	// ClickMatchingText clicks the first visible match whose text contains
	// text (case-insensitive); false when none appears within timeout.
	ClickMatchingText(ctx context.Context, selectorGroup, text string, timeout time.Duration) (bool, error)

	// Fill focuses the first match of the selector group and types text.
	Fill(ctx context.Context, selectorGroup, text string) error

	// PressEnter sends Enter to the first match of the selector group.
	PressEnter(ctx context.Context, selectorGroup string) error

	// WaitVisible waits for any match to become visible. Timeout is a
	// false return, not an error.
	WaitVisible(ctx context.Context, selectorGroup string, timeout time.Duration) bool

	// URLContains waits until the current URL contains fragment.
	URLContains(ctx context.Context, fragment string, timeout time.Duration) bool

	// IsDisabled inspects the first match: found reports presence,
	// disabled its state (disabled/aria-disabled attribute or a class
	// containing "disabled").
	IsDisabled(ctx context.Context, selectorGroup string) (disabled, found bool, err error)

	// Download fetches url into destPath, first via the browser's download
	// machinery (keeping session cookies), then over plain HTTP.
	Download(ctx context.Context, url, destPath string, timeout time.Duration) (string, error)

	// GoBack navigates one history entry back.
	GoBack(ctx context.Context) error

	// Snapshot writes page HTML and a full-page screenshot under dir with
	// the given base name. Advisory; failures are logged only.
	Snapshot(ctx context.Context, dir, name string) error

	// Close releases the browser.
	Close() error
}

// Config holds browser session configuration.
type Config struct {
	Headless    bool
	UserAgent   string
	Timeout     time.Duration // default per-operation timeout
	DownloadDir string
}

// Chrome user agent for better compatibility
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Headless:  true,
		UserAgent: defaultUserAgent,
		Timeout:   30 * time.Second,
	}
}

// ChromeSession drives a single headless Chrome page via chromedp.
type ChromeSession struct {
	config        Config
	allocCtx      context.Context
	cancelAlloc   context.CancelFunc
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
}

// New starts a browser and opens its single page context.
func New(cfg Config) (*ChromeSession, error) {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultConfig().UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(cfg.UserAgent),
	)

	// chromedp's default binary lookup can miss distro installs
	if chromePath := FindChromePath(); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			logger.Debug("chromedp", "msg", fmt.Sprintf(format, args...))
		}),
	)

	logger.Debug("browser session created",
		"headless", cfg.Headless,
		"timeout", cfg.Timeout,
		"download_dir", cfg.DownloadDir)

	return &ChromeSession{
		config:        cfg,
		allocCtx:      allocCtx,
		cancelAlloc:   cancelAlloc,
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
	}, nil
}

// run executes actions against the page with a bounded deadline.
func (s *ChromeSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if timeout == 0 {
		timeout = s.config.Timeout
	}
	opCtx, cancel := context.WithTimeout(s.browserCtx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- chromedp.Run(opCtx, actions...) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	}
}

// Navigate loads url and waits for the body to be ready.
func (s *ChromeSession) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	logger.Debug("navigate", "url", url)
	if err := s.run(ctx, timeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// CurrentURL returns the page's current location.
func (s *ChromeSession) CurrentURL(ctx context.Context) (string, error) {
	var loc string
	if err := s.run(ctx, 0, chromedp.Location(&loc)); err != nil {
		return "", err
	}
	return loc, nil
}

// PageHTML returns the full document markup.
func (s *ChromeSession) PageHTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, 0, chromedp.OuterHTML("html", &html)); err != nil {
		return "", err
	}
	return html, nil
}

// Count returns the number of visible, text-bearing matches. Evaluated
// fresh each call; never cached across navigations.
func (s *ChromeSession) Count(ctx context.Context, selectorGroup string) (int, error) {
	var n int
	js := fmt.Sprintf(
		`Array.from(document.querySelectorAll(%q)).filter(e => e.offsetParent !== null && e.innerText.trim().length > 0).length`,
		selectorGroup)
	if err := s.run(ctx, 0, chromedp.Evaluate(js, &n)); err != nil {
		return 0, err
	}
	return n, nil
}

// ClickNth clicks the index-th visible match of the selector group.
func (s *ChromeSession) ClickNth(ctx context.Context, selectorGroup string, index int, timeout time.Duration) error {
	var ok bool
	js := fmt.Sprintf(`(() => {
		const els = Array.from(document.querySelectorAll(%q)).filter(e => e.offsetParent !== null && e.innerText.trim().length > 0);
		const el = els[%d];
		if (!el) return false;
		el.scrollIntoView({block: "center"});
		el.click();
		return true;
	})()`, selectorGroup, index)
	if err := s.run(ctx, timeout, chromedp.Evaluate(js, &ok)); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("click failed: no element at index %d", index)
	}
	return nil
}

// ClickNthInner clicks the first innerGroup match inside the index-th
// visible match of the selector group.
func (s *ChromeSession) ClickNthInner(ctx context.Context, selectorGroup string, index int, innerGroup string, timeout time.Duration) error {
	var ok bool
	js := fmt.Sprintf(`(() => {
		const els = Array.from(document.querySelectorAll(%q)).filter(e => e.offsetParent !== null && e.innerText.trim().length > 0);
		const card = els[%d];
		if (!card) return false;
		const inner = card.querySelector(%q);
		if (!inner) return false;
		inner.scrollIntoView({block: "center"});
		inner.click();
		return true;
	})()`, selectorGroup, index, innerGroup)
	if err := s.run(ctx, timeout, chromedp.Evaluate(js, &ok)); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("click failed: no inner control at index %d", index)
	}
	return nil
}

// ClickFirstVisible clicks the first visible match; false when none.
func (s *ChromeSession) ClickFirstVisible(ctx context.Context, selectorGroup string, timeout time.Duration) (bool, error) {
	var ok bool
	js := fmt.Sprintf(`(() => {
		const el = Array.from(document.querySelectorAll(%q)).find(e => e.offsetParent !== null);
		if (!el) return false;
		el.scrollIntoView({block: "center"});
		el.click();
		return true;
	})()`, selectorGroup)
	if err := s.run(ctx, timeout, chromedp.Evaluate(js, &ok)); err != nil {
		return false, err
	}
	return ok, nil
}

// ClickMatchingText polls for a visible match containing text and clicks
// it. Returns false when none appears within timeout.
func (s *ChromeSession) ClickMatchingText(ctx context.Context, selectorGroup, text string, timeout time.Duration) (bool, error) {
	if timeout == 0 {
		timeout = s.config.Timeout
	}
	js := fmt.Sprintf(`(() => {
		const want = %q.toUpperCase();
		const el = Array.from(document.querySelectorAll(%q))
			.find(e => e.offsetParent !== null && e.innerText.toUpperCase().includes(want));
		if (!el) return false;
		el.scrollIntoView({block: "center"});
		el.click();
		return true;
	})()`, text, selectorGroup)

	deadline := time.Now().Add(timeout)
	for {
		var ok bool
		if err := s.run(ctx, 0, chromedp.Evaluate(js, &ok)); err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
}

// Fill focuses the first match and types text into it.
func (s *ChromeSession) Fill(ctx context.Context, selectorGroup, text string) error {
	return s.run(ctx, 0,
		chromedp.Click(selectorGroup, chromedp.ByQuery),
		chromedp.Clear(selectorGroup, chromedp.ByQuery),
		chromedp.SendKeys(selectorGroup, text, chromedp.ByQuery),
	)
}

// PressEnter sends Enter to the first match.
func (s *ChromeSession) PressEnter(ctx context.Context, selectorGroup string) error {
	return s.run(ctx, 0, chromedp.SendKeys(selectorGroup, kb.Enter, chromedp.ByQuery))
}

// WaitVisible waits for any match to become visible. Timeout is a false
// return, not an error.
func (s *ChromeSession) WaitVisible(ctx context.Context, selectorGroup string, timeout time.Duration) bool {
	err := s.run(ctx, timeout, chromedp.WaitVisible(selectorGroup, chromedp.ByQuery))
	if err != nil {
		logger.Debug("wait for selector timed out", "selector", selectorGroup, "error", err)
		return false
	}
	return true
}

// URLContains waits until the current URL contains fragment.
func (s *ChromeSession) URLContains(ctx context.Context, fragment string, timeout time.Duration) bool {
	if timeout == 0 {
		timeout = s.config.Timeout
	}
	deadline := time.Now().Add(timeout)
	for {
		loc, err := s.CurrentURL(ctx)
		if err == nil && loc != "" && containsFold(loc, fragment) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(200 * time.Millisecond):
		}
	}
}

// IsDisabled inspects the first match of the selector group.
func (s *ChromeSession) IsDisabled(ctx context.Context, selectorGroup string) (bool, bool, error) {
	var state struct {
		Found    bool `json:"found"`
		Disabled bool `json:"disabled"`
	}
	js := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) return {found: false, disabled: false};
		const cls = (el.getAttribute("class") || "").toLowerCase();
		const disabled = el.hasAttribute("disabled")
			|| el.getAttribute("aria-disabled") === "true"
			|| cls.includes("disabled");
		return {found: true, disabled: disabled};
	})()`, selectorGroup)
	if err := s.run(ctx, 0, chromedp.Evaluate(js, &state)); err != nil {
		return false, false, err
	}
	return state.Disabled, state.Found, nil
}

// GoBack navigates one history entry back.
func (s *ChromeSession) GoBack(ctx context.Context) error {
	return s.run(ctx, 0, chromedp.NavigateBack())
}

// Close releases the browser.
func (s *ChromeSession) Close() error {
	if s.cancelBrowser != nil {
		s.cancelBrowser()
	}
	if s.cancelAlloc != nil {
		s.cancelAlloc()
	}
	return nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
