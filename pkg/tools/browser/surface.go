// Package browser provides the playwright-backed page surface and the tool
// set the model uses to drive it. Each tool is a thin wrapper over the
// action dispatcher in pkg/page, translating model arguments into dispatch
// calls and dispatch output into tool-result text.
package browser

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/webpilot/pkg/page"
)

const (
	// DefaultViewportWidth is the browser viewport width in pixels.
	DefaultViewportWidth = 1280
	// DefaultViewportHeight is the browser viewport height in pixels.
	DefaultViewportHeight = 800
	// DefaultActionTimeout is the per-action timeout in milliseconds.
	DefaultActionTimeout = 30000
)

// SurfaceOptions configure the browser launch.
type SurfaceOptions struct {
	Headless       bool
	ViewportWidth  int
	ViewportHeight int
	// Timeout is the default per-action timeout in milliseconds.
	Timeout float64
}

// Surface drives a single chromium page through playwright and implements
// page.Surface. Element references resolve to the n-th match of
// page.InteractiveSelector in document order, the same enumeration the
// serializer performs on the shipped-out HTML.
type Surface struct {
	mu      sync.Mutex
	opts    SurfaceOptions
	pw      *playwright.Playwright
	browser playwright.Browser
	bctx    playwright.BrowserContext
	page    playwright.Page
	started bool
}

// NewSurface creates an unstarted surface. Call Start before use.
func NewSurface(opts SurfaceOptions) *Surface {
	if opts.ViewportWidth == 0 {
		opts.ViewportWidth = DefaultViewportWidth
	}
	if opts.ViewportHeight == 0 {
		opts.ViewportHeight = DefaultViewportHeight
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultActionTimeout
	}
	return &Surface{opts: opts}
}

// Start installs the playwright driver if needed, launches chromium, and
// opens the page. Driver output is discarded so it cannot interleave with
// terminal UI output.
func (s *Surface) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := playwright.Install(runOpts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}
	pw, err := playwright.Run(runOpts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &s.opts.Headless,
	})
	if err != nil {
		pw.Stop()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  s.opts.ViewportWidth,
			Height: s.opts.ViewportHeight,
		},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return fmt.Errorf("failed to create browser context: %w", err)
	}

	pg, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		browser.Close()
		pw.Stop()
		return fmt.Errorf("failed to create page: %w", err)
	}
	pg.SetDefaultTimeout(s.opts.Timeout)

	s.pw = pw
	s.browser = browser
	s.bctx = bctx
	s.page = pg
	s.started = true
	return nil
}

// Close shuts the page, browser, and playwright driver down.
func (s *Surface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	_ = s.page.Close()
	_ = s.bctx.Close()
	_ = s.browser.Close()
	s.started = false
	if err := s.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}

// URL returns the current document location.
func (s *Surface) URL(ctx context.Context) (string, error) {
	pg, err := s.livePage()
	if err != nil {
		return "", err
	}
	return pg.URL(), nil
}

// HTML returns the full serialized document.
func (s *Surface) HTML(ctx context.Context) (string, error) {
	pg, err := s.livePage()
	if err != nil {
		return "", err
	}
	content, err := pg.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return content, nil
}

// Status reports the document load state from document.readyState.
func (s *Surface) Status(ctx context.Context) (page.LoadStatus, error) {
	pg, err := s.livePage()
	if err != nil {
		return page.StatusLoading, err
	}
	state, err := pg.Evaluate("document.readyState")
	if err != nil {
		return page.StatusLoading, fmt.Errorf("failed to read readyState: %w", err)
	}
	if str, ok := state.(string); ok && str == "complete" {
		return page.StatusComplete, nil
	}
	return page.StatusLoading, nil
}

// Navigate changes the document location. It waits only for navigation to
// commit; the dispatcher owns readiness polling.
func (s *Surface) Navigate(ctx context.Context, url string) error {
	pg, err := s.livePage()
	if err != nil {
		return err
	}
	waitUntil := playwright.WaitUntilStateDomcontentloaded
	if _, err := pg.Goto(url, playwright.PageGotoOptions{WaitUntil: waitUntil}); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// Back triggers a history back-navigation.
func (s *Surface) Back(ctx context.Context) error {
	pg, err := s.livePage()
	if err != nil {
		return err
	}
	waitUntil := playwright.WaitUntilStateDomcontentloaded
	if _, err := pg.GoBack(playwright.PageGoBackOptions{WaitUntil: waitUntil}); err != nil {
		return fmt.Errorf("back navigation failed: %w", err)
	}
	return nil
}

// Click dispatches a click on the referenced element.
func (s *Surface) Click(ctx context.Context, ref page.ElementRef) error {
	pg, err := s.livePage()
	if err != nil {
		return err
	}
	locator := pg.Locator(page.InteractiveSelector).Nth(ref.Index)
	if err := locator.Click(); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

// SetValue fills the referenced control. Fill dispatches input and change
// events, so reactive page scripts observe the edit.
func (s *Surface) SetValue(ctx context.Context, ref page.ElementRef, value string) error {
	pg, err := s.livePage()
	if err != nil {
		return err
	}
	locator := pg.Locator(page.InteractiveSelector).Nth(ref.Index)
	if err := locator.Fill(value); err != nil {
		return fmt.Errorf("fill failed: %w", err)
	}
	return nil
}

func (s *Surface) livePage() (playwright.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil, fmt.Errorf("browser surface not started")
	}
	return s.page, nil
}
