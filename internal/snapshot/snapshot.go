// Package snapshot captures the rendered dashboard with a headless browser.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/blockedby/sales-dashboard/internal/logger"
)

const (
	// DefaultTimeout bounds one capture, including browser start.
	DefaultTimeout = 30 * time.Second
	// DefaultSettle lets chart animations finish after the data is drawn.
	DefaultSettle = 750 * time.Millisecond
)

// Format is the capture output type.
type Format string

// Formats.
const (
	PDF Format = "pdf"
	PNG Format = "png"
)

// ErrDashboardFailed is returned when the page reports a failed refresh.
var ErrDashboardFailed = errors.New("dashboard failed to load")

// stateScript yields the status state once it is no longer loading.
const stateScript = `(() => {
	const s = document.getElementById('dashboardStatus');
	if (!s || !s.dataset.state || s.dataset.state === 'loading') return '';
	return s.dataset.state;
})()`

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return PDF, nil
	case ".png":
		return PNG, nil
	default:
		return "", fmt.Errorf("unsupported snapshot extension %q", filepath.Ext(path))
	}
}

// Capturer drives a headless Chrome.
type Capturer struct {
	timeout time.Duration
	settle  time.Duration
	width   int64
	height  int64
	log     *logger.Logger
}

// Option configures a Capturer.
type Option func(*Capturer)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Capturer) { c.timeout = d }
}

// WithSettle overrides DefaultSettle.
func WithSettle(d time.Duration) Option {
	return func(c *Capturer) { c.settle = d }
}

// WithViewport sets the browser window size.
func WithViewport(width, height int64) Option {
	return func(c *Capturer) {
		c.width = width
		c.height = height
	}
}

// New creates a Capturer.
func New(opts ...Option) *Capturer {
	c := &Capturer{
		timeout: DefaultTimeout,
		settle:  DefaultSettle,
		width:   1280,
		height:  900,
		log:     logger.Get().Component("snapshot"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Capture loads url, waits for the dashboard to finish its refresh and
// returns the page as PDF or PNG.
func (c *Capturer) Capture(ctx context.Context, url string, format Format) ([]byte, error) {
	if format != PDF && format != PNG {
		return nil, fmt.Errorf("unsupported snapshot format %q", format)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	actx, cancel := chromedp.NewExecAllocator(ctx,
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(int(c.width), int(c.height)),
	)
	defer cancel()

	cctx, cancel := chromedp.NewContext(actx)
	defer cancel()

	var state, message string
	var buf []byte
	err := chromedp.Run(cctx,
		chromedp.EmulateViewport(c.width, c.height),
		chromedp.Navigate(url),
		chromedp.Poll(stateScript, &state),
		chromedp.Evaluate(`document.getElementById('dashboardStatus').textContent`, &message),
		chromedp.Sleep(c.settle),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if state == "failed" {
				return fmt.Errorf("%w: %s", ErrDashboardFailed, message)
			}
			var err error
			switch format {
			case PDF:
				buf, _, err = page.PrintToPDF().WithPrintBackground(true).WithLandscape(true).Do(ctx)
			case PNG:
				err = chromedp.FullScreenshot(&buf, 100).Do(ctx)
			}
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp run: %w", err)
	}

	c.log.Info().Str("url", url).Str("format", string(format)).Int("bytes", len(buf)).Msg("dashboard captured")
	return buf, nil
}

// CaptureToFile captures url into path, choosing the format from its extension.
func (c *Capturer) CaptureToFile(ctx context.Context, url, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	data, err := c.Capture(ctx, url, format)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
