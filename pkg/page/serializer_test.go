package page

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSurface is an in-memory Surface serving canned HTML and recording
// every action it receives.
type fakeSurface struct {
	mu sync.Mutex

	html   string
	url    string
	status LoadStatus

	// statusSequence, when non-empty, is consumed one entry per Status
	// call before falling back to status.
	statusSequence []LoadStatus

	htmlErr     error
	navigateErr error
	clickErr    error
	setValueErr error
	backErr     error

	navigations []string
	clicks      []ElementRef
	inputs      []struct {
		Ref   ElementRef
		Value string
	}
	backs       int
	statusCalls int
}

func newFakeSurface(html string) *fakeSurface {
	return &fakeSurface{
		html:   html,
		url:    "https://a.test/page",
		status: StatusComplete,
	}
}

func (s *fakeSurface) URL(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url, nil
}

func (s *fakeSurface) HTML(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.html, s.htmlErr
}

func (s *fakeSurface) Status(context.Context) (LoadStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusCalls++
	if len(s.statusSequence) > 0 {
		next := s.statusSequence[0]
		s.statusSequence = s.statusSequence[1:]
		return next, nil
	}
	return s.status, nil
}

func (s *fakeSurface) Navigate(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.navigateErr != nil {
		return s.navigateErr
	}
	s.navigations = append(s.navigations, url)
	s.url = url
	return nil
}

func (s *fakeSurface) Back(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backErr != nil {
		return s.backErr
	}
	s.backs++
	return nil
}

func (s *fakeSurface) Click(_ context.Context, ref ElementRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clickErr != nil {
		return s.clickErr
	}
	s.clicks = append(s.clicks, ref)
	return nil
}

func (s *fakeSurface) SetValue(_ context.Context, ref ElementRef, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setValueErr != nil {
		return s.setValueErr
	}
	s.inputs = append(s.inputs, struct {
		Ref   ElementRef
		Value string
	}{ref, value})
	return nil
}

func refresh(t *testing.T, html string) *Serializer {
	t.Helper()
	s := NewSerializer(newFakeSurface(html))
	require.NoError(t, s.Refresh(context.Background()))
	return s
}

func TestSerializerAssignsSequentialIDs(t *testing.T) {
	s := refresh(t, `<html><body>
		<a href="/one">One</a>
		<div><button>Two</button></div>
		<input type="text" placeholder="Three">
	</body></html>`)

	assert.Equal(t, 3, s.ElementCount())

	one, ok := s.Resolve(1)
	require.True(t, ok)
	assert.Equal(t, "a", one.Tag)
	assert.Equal(t, "One", one.Text)
	assert.Equal(t, "/one", one.Href)
	assert.Equal(t, ElementRef{Index: 0}, one.Ref)

	two, ok := s.Resolve(2)
	require.True(t, ok)
	assert.Equal(t, "button", two.Tag)
	assert.Equal(t, ElementRef{Index: 1}, two.Ref)

	three, ok := s.Resolve(3)
	require.True(t, ok)
	assert.Equal(t, "input", three.Tag)
	assert.Equal(t, "Three", three.Placeholder)

	_, ok = s.Resolve(4)
	assert.False(t, ok)
	_, ok = s.Resolve(0)
	assert.False(t, ok)

	snapshot := s.Snapshot()
	assert.Contains(t, snapshot, `<a id="1">One</a>`)
	assert.Contains(t, snapshot, `<button id="2">Two</button>`)
	assert.Contains(t, snapshot, `id="3"`)
}

func TestSerializerRecognizesEventHandlersAndRoles(t *testing.T) {
	s := refresh(t, `<html><body>
		<div onclick="go()">Clickable div</div>
		<span role="button">Span button</span>
		<form onsubmit="s()"><input type="text"></form>
	</body></html>`)

	// div[onclick], span[role=button], form[onsubmit], input.
	assert.Equal(t, 4, s.ElementCount())

	div, ok := s.Resolve(1)
	require.True(t, ok)
	assert.Equal(t, "div", div.Tag)
	assert.Equal(t, "Clickable div", div.Text)
}

func TestSerializerStripsAttributes(t *testing.T) {
	s := refresh(t, `<html><body>
		<div class="hero" style="color:red" data-track="x"><a href="/go" class="btn" target="_blank">Go</a></div>
	</body></html>`)

	snapshot := s.Snapshot()
	assert.NotContains(t, snapshot, "class=")
	assert.NotContains(t, snapshot, "style=")
	assert.NotContains(t, snapshot, "data-track")
	assert.NotContains(t, snapshot, "target=")
	assert.NotContains(t, snapshot, "href=")

	// Label metadata is captured before stripping.
	el, ok := s.Resolve(1)
	require.True(t, ok)
	assert.Equal(t, "/go", el.Href)
}

func TestSerializerKeepsFormControlState(t *testing.T) {
	s := refresh(t, `<html><body>
		<input type="checkbox" checked name="opt" class="big">
		<select name="c"><option value="a" selected>A</option><option value="b">B</option></select>
		<input type="text" value="hello" autocomplete="off">
	</body></html>`)

	snapshot := s.Snapshot()
	assert.Contains(t, snapshot, "checked")
	assert.Contains(t, snapshot, `selected`)
	assert.Contains(t, snapshot, `value="hello"`)
	assert.NotContains(t, snapshot, "name=")
	assert.NotContains(t, snapshot, "autocomplete")
	assert.NotContains(t, snapshot, "type=")
}

func TestSerializerBlanksScriptAndStyle(t *testing.T) {
	s := refresh(t, `<html><head>
		<style>body { color: red; }</style>
		<script>var secret = "token";</script>
	</head><body><p>Visible</p></body></html>`)

	snapshot := s.Snapshot()
	assert.NotContains(t, snapshot, "color: red")
	assert.NotContains(t, snapshot, "secret")
	assert.Contains(t, snapshot, "Visible")
}

func TestSerializerRemovesComments(t *testing.T) {
	s := refresh(t, `<html><body><!-- hidden note --><p>Text</p></body></html>`)
	assert.NotContains(t, s.Snapshot(), "hidden note")
}

func TestSerializerRemovesHiddenElements(t *testing.T) {
	s := refresh(t, `<html><body>
		<p hidden>Gone</p>
		<p aria-hidden="true">Also gone</p>
		<p style="display: none">Styled away</p>
		<p style="visibility:hidden">Invisible</p>
		<div role="presentation">Decoration</div>
		<p>Stays</p>
	</body></html>`)

	snapshot := s.Snapshot()
	assert.NotContains(t, snapshot, "Gone")
	assert.NotContains(t, snapshot, "Also gone")
	assert.NotContains(t, snapshot, "Styled away")
	assert.NotContains(t, snapshot, "Invisible")
	assert.NotContains(t, snapshot, "Decoration")
	assert.Contains(t, snapshot, "Stays")
}

func TestSerializerHiddenInteractiveElementsConsumeIndexes(t *testing.T) {
	// The live document keeps hidden elements in its selector matches, so
	// hidden interactive elements must still consume ids for the nth-match
	// addressing to line up.
	s := refresh(t, `<html><body>
		<a href="/hidden" hidden>Hidden link</a>
		<a href="/visible">Visible link</a>
	</body></html>`)

	assert.Equal(t, 2, s.ElementCount())

	visible, ok := s.Resolve(2)
	require.True(t, ok)
	assert.Equal(t, "Visible link", visible.Text)
	assert.Equal(t, ElementRef{Index: 1}, visible.Ref)

	// The hidden element is removed from the snapshot text even though it
	// holds an id.
	snapshot := s.Snapshot()
	assert.NotContains(t, snapshot, "Hidden link")
	assert.Contains(t, snapshot, `<a id="2">Visible link</a>`)
}

func TestSerializerPrunesEmptyWrappers(t *testing.T) {
	s := refresh(t, `<html><body>
		<div><span></span></div>
		<div><p></p><p></p></div>
		<button></button>
		<a href="/go"></a>
		<p>Content</p>
	</body></html>`)

	snapshot := s.Snapshot()
	assert.NotContains(t, snapshot, "<span>")
	assert.NotContains(t, snapshot, "<p></p>")
	// Control tags and href carriers survive even when empty.
	assert.Contains(t, snapshot, "<button")
	assert.Contains(t, snapshot, `<a id=`)
	assert.Contains(t, snapshot, "Content")
}

func TestSerializerCollapsesSingleChildWrappers(t *testing.T) {
	s := refresh(t, `<html><body>
		<div><div><div><a href="/deep">Deep link</a></div></div></div>
	</body></html>`)

	assert.Contains(t, s.Snapshot(), `<a id="1">Deep link</a>`)
	assert.NotContains(t, s.Snapshot(), "<div>")
}

func TestSerializerKeepsWrappersWithMixedContent(t *testing.T) {
	s := refresh(t, `<html><body>
		<div>Intro text <a href="/go">Link</a></div>
	</body></html>`)

	snapshot := s.Snapshot()
	assert.Contains(t, snapshot, "Intro text")
	assert.Contains(t, snapshot, "Link")
	assert.Contains(t, snapshot, "<div>")
}

func TestSerializerNormalizesWhitespace(t *testing.T) {
	s := refresh(t, "<html><body>\n\t<p>Multi\n\n   spaced\ttext</p>\n   <p>Next</p>\n</body></html>")

	snapshot := s.Snapshot()
	assert.Contains(t, snapshot, "Multi spaced text")
	assert.NotContains(t, snapshot, "\n")
	assert.NotContains(t, snapshot, "\t")
	assert.NotContains(t, snapshot, "> <")
}

func TestSerializerRefreshReplacesMapping(t *testing.T) {
	surface := newFakeSurface(`<html><body><a href="/a">A</a><a href="/b">B</a></body></html>`)
	s := NewSerializer(surface)
	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, 2, s.ElementCount())

	surface.mu.Lock()
	surface.html = `<html><body><button>Only</button></body></html>`
	surface.mu.Unlock()
	require.NoError(t, s.Refresh(context.Background()))

	assert.Equal(t, 1, s.ElementCount())
	el, ok := s.Resolve(1)
	require.True(t, ok)
	assert.Equal(t, "button", el.Tag)
	_, ok = s.Resolve(2)
	assert.False(t, ok)
}

func TestSerializerRefreshSurfaceError(t *testing.T) {
	surface := newFakeSurface("")
	surface.htmlErr = errors.New("page closed")
	s := NewSerializer(surface)

	err := s.Refresh(context.Background())
	assert.ErrorContains(t, err, "failed to read page HTML")
}

func TestElementLabelPrecedence(t *testing.T) {
	tests := []struct {
		name    string
		element Element
		want    string
	}{
		{"text wins", Element{Tag: "a", Text: "Click", Href: "/x"}, "Click"},
		{"title next", Element{Tag: "a", Title: "Tip", Href: "/x"}, "Tip"},
		{"alt next", Element{Tag: "input", Alt: "Search"}, "Search"},
		{"placeholder next", Element{Tag: "input", Placeholder: "Email"}, "Email"},
		{"href next", Element{Tag: "a", Href: "/about"}, "/about"},
		{"src next", Element{Tag: "input", Src: "/btn.png"}, "/btn.png"},
		{"tag fallback", Element{Tag: "button"}, "<button>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.element.Label())
		})
	}
}

func TestSerializerVisibleTextSkipsScripts(t *testing.T) {
	s := refresh(t, `<html><body>
		<button>Buy <script>track()</script>now</button>
	</body></html>`)

	el, ok := s.Resolve(1)
	require.True(t, ok)
	assert.Equal(t, "Buy now", el.Text)
}
