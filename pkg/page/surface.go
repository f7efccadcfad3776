// Package page implements the page-facing half of the command core: a
// serializer that converts a live document into a compact, addressable text
// snapshot, and a dispatcher that executes named actions against the page
// and waits for it to settle.
//
// The package never touches a document in-process. All reads and mutations
// go through the Surface capability interface, implemented by a page-side
// collaborator (a real browser in production, a fake in tests).
package page

import "context"

// LoadStatus reports whether the surface's document has finished loading.
type LoadStatus string

const (
	// StatusLoading indicates the document is still loading.
	StatusLoading LoadStatus = "loading"

	// StatusComplete indicates the document has finished loading.
	StatusComplete LoadStatus = "complete"
)

// InteractiveSelector matches the elements the serializer treats as
// addressable: form controls, links, and elements carrying interaction
// event attributes. The Go-side predicate in the serializer must agree with
// this selector. Both enumerate in document order, so the nth match on
// either side addresses the same element.
const InteractiveSelector = `a, button, input, select, textarea, [onclick], [onchange], [onsubmit], [onkeydown], [onkeyup], [role="button"]`

// ElementRef addresses one live element on the surface: the n-th match (in
// document order, zero-based) of InteractiveSelector at the time the
// snapshot was taken. Refs are only meaningful against the document state
// they were captured from.
type ElementRef struct {
	Index int
}

// Surface is the capability boundary to the live page. Implementations
// mutate the real document; the serializer only ever works on the HTML text
// shipped out through this interface.
//
// All operations take a context because they cross into another execution
// context (a browser process) and may block.
type Surface interface {
	// URL returns the current document location.
	URL(ctx context.Context) (string, error)

	// HTML returns the full serialized document.
	HTML(ctx context.Context) (string, error)

	// Status reports the document load state.
	Status(ctx context.Context) (LoadStatus, error)

	// Navigate changes the document location.
	Navigate(ctx context.Context, url string) error

	// Back triggers a history back-navigation.
	Back(ctx context.Context) error

	// Click dispatches a click on the referenced element.
	Click(ctx context.Context, ref ElementRef) error

	// SetValue sets the referenced control's value and emits input and
	// change notifications so page scripts observe the edit.
	SetValue(ctx context.Context, ref ElementRef, value string) error
}
