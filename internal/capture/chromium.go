// Package capture photographs the clock page with headless Chromium.
package capture

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/chromedp/chromedp"
)

// Default capture parameters for the clock page.
const (
	DefaultWidth      = 480
	DefaultHeight     = 720
	DefaultTimeoutSec = 30
)

// clockSelector is the page element that holds the face and the period
// table. It carries data-ready and data-state.
const clockSelector = "#clock"

// Options defines parameters for a clock capture.
type Options struct {
	// URL of a classclock server or of its clock page, e.g.
	// "http://127.0.0.1:8080". See PageURL.
	URL string

	// MinuteMarks asks the page to draw minute marks.
	MinuteMarks bool

	// OutputPath is where the PNG screenshot will be written.
	OutputPath string

	// Width and Height are the viewport dimensions in pixels. If zero,
	// DefaultWidth / DefaultHeight are used.
	Width  int
	Height int

	// Timeout bounds the entire capture operation. If zero,
	// DefaultTimeoutSec is used.
	Timeout time.Duration
}

// Result describes a written capture.
type Result struct {
	URL string
	// State is the page's data-state: in_period or no_active_period.
	State string
	Bytes int
}

func (o *Options) normalize() error {
	if o.URL == "" {
		return fmt.Errorf("capture: URL is required")
	}
	if o.OutputPath == "" {
		return fmt.Errorf("capture: OutputPath is required")
	}
	page, err := PageURL(o.URL, o.MinuteMarks)
	if err != nil {
		return err
	}
	o.URL = page
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}
	return nil
}

// PageURL turns a server address into the clock page URL a capture needs:
// path /clock when none is given, no meta refresh and no controls, so the
// page stays still while it is photographed. minuteMarks adds minutes=1;
// otherwise an explicit minutes parameter is kept.
func PageURL(raw string, minuteMarks bool) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("capture: invalid URL %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("capture: URL %q must be http(s) with a host", raw)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/clock"
	}
	q := u.Query()
	q.Set("refresh", "0")
	q.Set("controls", "0")
	if minuteMarks {
		q.Set("minutes", "1")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ClockPNG opens the clock page in headless Chromium, waits until #clock
// marks itself ready with data-ready="true", and writes a PNG of that
// element.
func ClockPNG(parentCtx context.Context, opts Options) (Result, error) {
	if err := opts.normalize(); err != nil {
		return Result{}, err
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var (
		png   []byte
		state string
		found bool
	)
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(clockSelector+`[data-ready="true"]`, chromedp.ByQuery),
		chromedp.AttributeValue(clockSelector, "data-state", &state, &found, chromedp.ByQuery),
		// Let the last paint land.
		chromedp.Sleep(200 * time.Millisecond),
		chromedp.Screenshot(clockSelector, &png, chromedp.ByQuery),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return Result{}, fmt.Errorf("capture: chromedp run failed: %w", err)
	}
	if !found {
		return Result{}, fmt.Errorf("capture: %s has no data-state; not a clock page?", opts.URL)
	}

	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return Result{}, fmt.Errorf("capture: failed to write PNG: %w", err)
	}
	return Result{URL: opts.URL, State: state, Bytes: len(png)}, nil
}
