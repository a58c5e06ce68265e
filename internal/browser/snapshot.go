package browser

import (
	"context"
	"os"
	"path/filepath"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/pharmaseek/pharmaseek/internal/logger"
)

// Snapshot writes the current page's HTML and a full-page screenshot under
// dir as name.html and name.png. Purely diagnostic; failures are logged
// and swallowed so a broken snapshot never fails the item that triggered it.
func (s *ChromeSession) Snapshot(ctx context.Context, dir, name string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		logger.Warn("snapshot directory not writable", "dir", dir, "error", err)
		return nil
	}

	var html string
	var shot []byte
	err := s.run(ctx, 0,
		chromedp.OuterHTML("html", &html),
		chromedp.ActionFunc(func(ctx context.Context) error {
			b, err := page.CaptureScreenshot().WithCaptureBeyondViewport(true).Do(ctx)
			if err != nil {
				return err
			}
			shot = b
			return nil
		}),
	)
	if err != nil {
		logger.Warn("snapshot capture failed", "name", name, "error", err)
		return nil
	}

	htmlPath := filepath.Join(dir, name+".html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o640); err != nil {
		logger.Warn("snapshot write failed", "path", htmlPath, "error", err)
	}
	pngPath := filepath.Join(dir, name+".png")
	if err := os.WriteFile(pngPath, shot, 0o640); err != nil {
		logger.Warn("snapshot write failed", "path", pngPath, "error", err)
	}

	logger.Debug("snapshot saved", "html", htmlPath, "png", pngPath)
	return nil
}
