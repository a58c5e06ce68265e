package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	"github.com/gocolly/colly/v2"

	"github.com/pharmaseek/pharmaseek/internal/logger"
)

// ErrDownloadTimeout is returned when neither the browser nor the HTTP
// fallback produced the document within the deadline.
var ErrDownloadTimeout = errors.New("download timed out")

// Download fetches url into destPath. The browser download path keeps the
// session's cookies, which registry sites often require; when it fails or
// times out, a plain HTTP fetch is attempted before giving up.
func (s *ChromeSession) Download(ctx context.Context, url, destPath string, timeout time.Duration) (string, error) {
	if timeout == 0 {
		timeout = s.config.Timeout
	}

	if path, err := s.downloadViaBrowser(ctx, url, destPath, timeout); err == nil {
		return path, nil
	} else {
		logger.Debug("browser download failed, trying plain HTTP", "url", url, "error", err)
	}

	if err := httpDownload(url, destPath, s.config.UserAgent, timeout); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadTimeout, err)
	}
	return destPath, nil
}

// downloadViaBrowser asks the page to navigate to the document URL with
// download interception enabled and waits for completion.
func (s *ChromeSession) downloadViaBrowser(ctx context.Context, url, destPath string, timeout time.Duration) (string, error) {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", err
	}

	opCtx, cancel := context.WithTimeout(s.browserCtx, timeout)
	defer cancel()

	done := make(chan string, 1)
	chromedp.ListenTarget(opCtx, func(ev interface{}) {
		if p, ok := ev.(*cdpbrowser.EventDownloadProgress); ok && p.State == cdpbrowser.DownloadProgressStateCompleted {
			select {
			case done <- p.GUID:
			default:
			}
		}
	})

	err := chromedp.Run(opCtx,
		cdpbrowser.SetDownloadBehavior(cdpbrowser.SetDownloadBehaviorBehaviorAllowAndName).
			WithDownloadPath(dir).
			WithEventsEnabled(true),
		chromedp.Navigate(url),
	)
	// Navigating straight into a download aborts the navigation itself;
	// the download still proceeds.
	if err != nil && !strings.Contains(err.Error(), "net::ERR_ABORTED") {
		return "", err
	}

	select {
	case guid := <-done:
		tmp := filepath.Join(dir, guid)
		if err := os.Rename(tmp, destPath); err != nil {
			return "", err
		}
		logger.Debug("browser download complete", "url", url, "path", destPath)
		return destPath, nil
	case <-opCtx.Done():
		return "", ErrDownloadTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// httpDownload fetches url without the browser, saving the response body.
func httpDownload(url, destPath, userAgent string, timeout time.Duration) error {
	c := colly.NewCollector(colly.UserAgent(userAgent))
	c.SetRequestTimeout(timeout)

	var saveErr error
	saved := false
	c.OnResponse(func(r *colly.Response) {
		ct := strings.ToLower(r.Headers.Get("Content-Type"))
		if r.StatusCode != 200 {
			saveErr = fmt.Errorf("unexpected status %d", r.StatusCode)
			return
		}
		if !strings.Contains(ct, "pdf") && !strings.Contains(ct, "octet-stream") {
			saveErr = fmt.Errorf("unexpected content type %q", ct)
			return
		}
		saveErr = os.WriteFile(destPath, r.Body, 0o640)
		saved = saveErr == nil
	})
	c.OnError(func(_ *colly.Response, err error) {
		saveErr = err
	})

	if err := c.Visit(url); err != nil {
		return err
	}
	if saveErr != nil {
		return saveErr
	}
	if !saved {
		return errors.New("no response body")
	}
	return nil
}
