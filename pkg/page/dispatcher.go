package page

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// defaultPollInterval is how often the surface load status is polled
	// after a navigation-causing action.
	defaultPollInterval = 500 * time.Millisecond

	// defaultSettleDelay absorbs post-load script execution and DOM
	// mutation once the load status reports complete.
	defaultSettleDelay = 1000 * time.Millisecond

	// defaultReadDelay is the extra short settle applied before reading
	// page context.
	defaultReadDelay = 200 * time.Millisecond
)

// NavigationGuard vets a target URL before the dispatcher navigates to it.
type NavigationGuard interface {
	// Allow returns an error when navigation to the URL is not permitted.
	Allow(target string) error
}

// LinkResult is the per-id outcome of an extract-link call. Individual ids
// may fail without failing the whole call; those entries carry Err.
type LinkResult struct {
	ID    int    `json:"id"`
	Label string `json:"label,omitempty"`
	URL   string `json:"url,omitempty"`
	Err   string `json:"error,omitempty"`
}

// Dispatcher executes named actions against the current page surface and
// returns a textual result plus refreshed page context. All operations are
// sequential by design: each action's side effects must be visible to the
// next action's preconditions.
type Dispatcher struct {
	surface    Surface
	serializer *Serializer
	guard      NavigationGuard

	pollInterval time.Duration
	settleDelay  time.Duration
	readDelay    time.Duration
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithNavigationGuard installs a URL guard checked before every navigate.
func WithNavigationGuard(guard NavigationGuard) DispatcherOption {
	return func(d *Dispatcher) {
		d.guard = guard
	}
}

// WithWaitPolicy overrides the page-ready wait timings. Intended for tests;
// production uses the fixed two-tier policy.
func WithWaitPolicy(poll, settle, read time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.pollInterval = poll
		d.settleDelay = settle
		d.readDelay = read
	}
}

// NewDispatcher creates a dispatcher over the surface and serializer.
func NewDispatcher(surface Surface, serializer *Serializer, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		surface:      surface,
		serializer:   serializer,
		pollInterval: defaultPollInterval,
		settleDelay:  defaultSettleDelay,
		readDelay:    defaultReadDelay,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Serializer returns the serializer the dispatcher refreshes context with.
func (d *Dispatcher) Serializer() *Serializer {
	return d.serializer
}

// Navigate changes the active surface's location, waits for the page to be
// ready, and returns refreshed page context.
func (d *Dispatcher) Navigate(ctx context.Context, target string) (string, error) {
	if d.guard != nil {
		if err := d.guard.Allow(target); err != nil {
			return "", &NavigationError{URL: target, Err: err}
		}
	}

	if err := d.surface.Navigate(ctx, target); err != nil {
		return "", &NavigationError{URL: target, Err: err}
	}
	if err := d.waitReady(ctx); err != nil {
		return "", err
	}

	pageContext, err := d.PageContext(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Navigated to %s\n\n%s", target, pageContext), nil
}

// Click resolves the element id against the current snapshot, dispatches a
// click, waits for the page to be ready, and returns refreshed context.
func (d *Dispatcher) Click(ctx context.Context, id int) (string, error) {
	el, ok := d.serializer.Resolve(id)
	if !ok {
		return "", &ElementNotFoundError{ID: id}
	}

	if err := d.surface.Click(ctx, el.Ref); err != nil {
		return "", &ActionError{Action: "click", Err: err}
	}
	if err := d.waitReady(ctx); err != nil {
		return "", err
	}

	pageContext, err := d.PageContext(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Clicked element %d (%s)\n\n%s", id, el.Label(), pageContext), nil
}

// InputText sets the control's value and emits input/change notifications.
// It deliberately returns a lightweight confirmation naming the element
// instead of full page context, to save tokens.
func (d *Dispatcher) InputText(ctx context.Context, id int, text string) (string, error) {
	el, ok := d.serializer.Resolve(id)
	if !ok {
		return "", &ElementNotFoundError{ID: id}
	}

	if err := d.surface.SetValue(ctx, el.Ref, text); err != nil {
		return "", &ActionError{Action: "input-text", Err: err}
	}
	if err := d.sleep(ctx, d.readDelay); err != nil {
		return "", err
	}

	return fmt.Sprintf("Entered text into element %d (%s)", id, el.Label()), nil
}

// GoBack triggers a history back-navigation, waits for the page to be
// ready, and returns refreshed context.
func (d *Dispatcher) GoBack(ctx context.Context) (string, error) {
	if err := d.surface.Back(ctx); err != nil {
		return "", &ActionError{Action: "go-back", Err: err}
	}
	if err := d.waitReady(ctx); err != nil {
		return "", err
	}

	pageContext, err := d.PageContext(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Went back\n\n%s", pageContext), nil
}

// ExtractLinks resolves each id to a label and an absolute URL against the
// current page location. Individual not-found ids produce a per-item error
// without failing the whole call.
func (d *Dispatcher) ExtractLinks(ctx context.Context, ids []int) ([]LinkResult, error) {
	current, err := d.surface.URL(ctx)
	if err != nil {
		return nil, &ActionError{Action: "extract-link", Err: err}
	}
	base, err := url.Parse(current)
	if err != nil {
		return nil, &ActionError{Action: "extract-link", Err: fmt.Errorf("invalid page URL %q: %w", current, err)}
	}

	results := make([]LinkResult, 0, len(ids))
	for _, id := range ids {
		el, ok := d.serializer.Resolve(id)
		if !ok {
			results = append(results, LinkResult{
				ID:  id,
				Err: (&ElementNotFoundError{ID: id}).Error(),
			})
			continue
		}

		result := LinkResult{ID: id, Label: el.Label()}
		if el.Href != "" {
			if ref, parseErr := url.Parse(el.Href); parseErr == nil {
				result.URL = base.ResolveReference(ref).String()
			} else {
				result.Err = fmt.Sprintf("invalid href %q", el.Href)
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// PageContext applies the pre-read settle delay, refreshes the serializer,
// and returns the current location plus the minimized snapshot.
func (d *Dispatcher) PageContext(ctx context.Context) (string, error) {
	if err := d.sleep(ctx, d.readDelay); err != nil {
		return "", err
	}
	if err := d.serializer.Refresh(ctx); err != nil {
		return "", err
	}

	current, err := d.surface.URL(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read page URL: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Current page: ")
	sb.WriteString(current)
	sb.WriteString("\n")
	sb.WriteString(d.serializer.Snapshot())
	return sb.String(), nil
}

// waitReady implements the two-tier page-ready wait: poll the load status
// at a fixed interval until complete, then apply one fixed settle delay to
// absorb post-load script execution.
func (d *Dispatcher) waitReady(ctx context.Context) error {
	for {
		status, err := d.surface.Status(ctx)
		if err != nil {
			return &ActionError{Action: "wait-ready", Err: err}
		}
		if status == StatusComplete {
			break
		}
		if err := d.sleep(ctx, d.pollInterval); err != nil {
			return err
		}
	}
	return d.sleep(ctx, d.settleDelay)
}

// sleep waits for the duration or until the context is done.
func (d *Dispatcher) sleep(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return nil
	}
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
