package page

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// Element is one addressable element captured by the most recent refresh.
// The Ref addresses the live element on the surface; the remaining fields
// are label metadata recorded before the snapshot copy had its attributes
// stripped.
type Element struct {
	ID          int
	Ref         ElementRef
	Tag         string
	Text        string
	Href        string
	Title       string
	Alt         string
	Placeholder string
	Src         string
}

// Label returns a human-readable name for the element: the first non-empty
// of visible text, title, alt, placeholder, href, and src, falling back to
// the tag name.
func (e *Element) Label() string {
	for _, candidate := range []string{e.Text, e.Title, e.Alt, e.Placeholder, e.Href, e.Src} {
		if candidate != "" {
			return candidate
		}
	}
	return "<" + e.Tag + ">"
}

// Serializer produces a minimized, LLM-consumable text snapshot of the
// current page and a within-snapshot mapping from small integer ids to live
// elements. Every refresh replaces the mapping wholesale: ids are not stable
// across refreshes and callers must re-resolve after any action that may
// have changed the page.
type Serializer struct {
	surface Surface

	mu       sync.RWMutex
	elements map[int]*Element
	snapshot string
}

// NewSerializer creates a serializer over the given surface.
func NewSerializer(surface Surface) *Serializer {
	return &Serializer{
		surface:  surface,
		elements: make(map[int]*Element),
	}
}

// Refresh re-scans the live document, replacing the id→element mapping and
// regenerating the minimized snapshot text.
func (s *Serializer) Refresh(ctx context.Context) error {
	raw, err := s.surface.HTML(ctx)
	if err != nil {
		return fmt.Errorf("failed to read page HTML: %w", err)
	}

	// The parse is the disposable deep copy of the document: the live DOM
	// sits in another execution context and is never mutated here.
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to parse page HTML: %w", err)
	}

	elements, snapshot := minify(doc)

	s.mu.Lock()
	s.elements = elements
	s.snapshot = snapshot
	s.mu.Unlock()
	return nil
}

// Resolve returns the element assigned the given id in the current
// snapshot, or false if the id is not (or no longer) valid.
func (s *Serializer) Resolve(id int) (*Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	el, ok := s.elements[id]
	return el, ok
}

// Snapshot returns the minimized text of the most recent refresh.
func (s *Serializer) Snapshot() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// ElementCount returns the number of addressable elements in the current
// snapshot.
func (s *Serializer) ElementCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.elements)
}

// nodeFacts holds per-node state captured before attribute stripping, since
// the later pipeline steps need it after the attributes are gone.
type nodeFacts struct {
	hasHref bool
	hidden  bool
}

// minify runs the fixed minimization pipeline over the parsed copy. Order
// matters: later steps depend on earlier invariants (ids must be assigned
// before pruning so addressable-but-empty elements survive; facts must be
// captured before stripping).
func minify(doc *html.Node) (map[int]*Element, string) {
	interactive := findInteractive(doc)

	elements := make(map[int]*Element, len(interactive))
	ids := make(map[*html.Node]int, len(interactive))
	for i, n := range interactive {
		id := i + 1
		elements[id] = &Element{
			ID:          id,
			Ref:         ElementRef{Index: i},
			Tag:         n.Data,
			Text:        visibleText(n),
			Href:        attrVal(n, "href"),
			Title:       attrVal(n, "title"),
			Alt:         attrVal(n, "alt"),
			Placeholder: attrVal(n, "placeholder"),
			Src:         attrVal(n, "src"),
		}
		ids[n] = id
	}

	facts := captureFacts(doc)
	stripAttributes(doc)
	assignIDs(ids)
	blankScriptStyle(doc)
	removeComments(doc)
	removeHidden(doc, facts)
	pruneEmpty(doc, ids, facts)
	collapseWrappers(doc, ids)

	return elements, renderMinified(doc)
}

// findInteractive enumerates, in document order, the elements matching the
// interactive selector set. Must agree with InteractiveSelector.
func findInteractive(doc *html.Node) []*html.Node {
	var found []*html.Node
	walk(doc, func(n *html.Node) {
		if n.Type == html.ElementNode && isInteractive(n) {
			found = append(found, n)
		}
	})
	return found
}

// isInteractive is the Go-side predicate equivalent of InteractiveSelector.
func isInteractive(n *html.Node) bool {
	switch n.Data {
	case "a", "button", "input", "select", "textarea":
		return true
	}
	for _, key := range []string{"onclick", "onchange", "onsubmit", "onkeydown", "onkeyup"} {
		if hasAttr(n, key) {
			return true
		}
	}
	return attrVal(n, "role") == "button"
}

// isFormControl reports whether a tag carries interaction-relevant state
// worth preserving through attribute stripping.
func isFormControl(tag string) bool {
	switch tag {
	case "input", "select", "option", "textarea":
		return true
	}
	return false
}

// isControlTag reports whether a tag is exempt from the empty-wrapper prune.
func isControlTag(tag string) bool {
	return isFormControl(tag) || tag == "button"
}

// captureFacts records href presence and hiddenness for every element before
// attribute stripping discards the evidence.
func captureFacts(doc *html.Node) map[*html.Node]nodeFacts {
	facts := make(map[*html.Node]nodeFacts)
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		facts[n] = nodeFacts{
			hasHref: hasAttr(n, "href"),
			hidden:  isHidden(n),
		}
	})
	return facts
}

// isHidden detects elements excluded from the visual page: an explicit
// hidden attribute, aria-hidden, a presentational role, or an inline style
// that removes the element from rendering.
func isHidden(n *html.Node) bool {
	if hasAttr(n, "hidden") {
		return true
	}
	if attrVal(n, "aria-hidden") == "true" {
		return true
	}
	switch attrVal(n, "role") {
	case "presentation", "none":
		return true
	}
	style := strings.ReplaceAll(strings.ToLower(attrVal(n, "style")), " ", "")
	return strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden")
}

// stripAttributes removes every attribute from every element except the
// current value/checked/selected state on form controls. Attributes are the
// dominant token cost of raw HTML.
func stripAttributes(doc *html.Node) {
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || len(n.Attr) == 0 {
			return
		}
		if !isFormControl(n.Data) {
			n.Attr = nil
			return
		}
		kept := n.Attr[:0]
		for _, attr := range n.Attr {
			switch attr.Key {
			case "value", "checked", "selected":
				kept = append(kept, attr)
			}
		}
		n.Attr = kept
	})
}

// assignIDs writes each interactive element's id onto its snapshot copy so
// the model can address it.
func assignIDs(ids map[*html.Node]int) {
	for n, id := range ids {
		n.Attr = append(n.Attr, html.Attribute{Key: "id", Val: strconv.Itoa(id)})
	}
}

// blankScriptStyle discards the text content of script and style subtrees.
// The elements themselves survive until the prune steps; their code must
// never reach the model context.
func blankScriptStyle(doc *html.Node) {
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		if n.Data != "script" && n.Data != "style" {
			return
		}
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			if c.Type == html.TextNode {
				n.RemoveChild(c)
			}
			c = next
		}
	})
}

// removeComments deletes all comment nodes.
func removeComments(doc *html.Node) {
	var comments []*html.Node
	walk(doc, func(n *html.Node) {
		if n.Type == html.CommentNode {
			comments = append(comments, n)
		}
	})
	for _, n := range comments {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
}

// removeHidden deletes elements that were hidden in the live document.
// Hidden elements are removed even when they carry an assigned id; the
// has-id guard protects only against the emptiness prune.
func removeHidden(doc *html.Node, facts map[*html.Node]nodeFacts) {
	var hidden []*html.Node
	walk(doc, func(n *html.Node) {
		if n.Type == html.ElementNode && facts[n].hidden {
			hidden = append(hidden, n)
		}
	})
	for _, n := range hidden {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
}

// pruneEmpty recursively removes decorative wrappers: elements with no
// assigned id, no recognized control tag, no href, and neither direct text
// nor element children. Children are pruned first so emptied parents fall
// in the same pass.
func pruneEmpty(n *html.Node, ids map[*html.Node]int, facts map[*html.Node]nodeFacts) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		pruneEmpty(c, ids, facts)
		c = next
	}

	if n.Type != html.ElementNode || n.Parent == nil {
		return
	}
	if ids[n] != 0 || isControlTag(n.Data) || facts[n].hasHref {
		return
	}
	if hasDirectText(n) || hasElementChild(n) {
		return
	}
	n.Parent.RemoveChild(n)
}

// hasDirectText reports whether the node has a direct text child with
// non-whitespace content.
func hasDirectText(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) != "" {
			return true
		}
	}
	return false
}

// hasElementChild reports whether the node has a direct element child.
func hasElementChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return true
		}
	}
	return false
}

// collapseWrappers replaces elements whose only content is a single child
// element (and no non-empty text) with that child, reducing nesting depth
// without losing information. Wrappers carrying an assigned id are kept so
// their ids stay present in the output.
func collapseWrappers(n *html.Node, ids map[*html.Node]int) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		collapseWrappers(c, ids)
		c = next
	}

	if n.Type != html.ElementNode || n.Parent == nil {
		return
	}
	if ids[n] != 0 || isControlTag(n.Data) {
		return
	}

	child := singleElementChild(n)
	if child == nil {
		return
	}
	n.RemoveChild(child)
	n.Parent.InsertBefore(child, n)
	n.Parent.RemoveChild(n)
}

// singleElementChild returns the sole element child when the node contains
// exactly one element and no non-empty text, or nil otherwise.
func singleElementChild(n *html.Node) *html.Node {
	var child *html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			if child != nil {
				return nil
			}
			child = c
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				return nil
			}
		}
	}
	return child
}

var whitespaceRuns = regexp.MustCompile(`\s+`)

// renderMinified serializes the tree and normalizes whitespace: runs of
// whitespace collapse to single spaces, inter-tag whitespace is removed,
// and the result is trimmed.
func renderMinified(doc *html.Node) string {
	var sb strings.Builder
	// Render only fails on unwritable writers or malformed trees; neither
	// applies to a Builder and a tree produced by Parse.
	_ = html.Render(&sb, doc)

	out := whitespaceRuns.ReplaceAllString(sb.String(), " ")
	out = strings.ReplaceAll(out, "> <", "><")
	return strings.TrimSpace(out)
}

// walk visits every node in pre-order.
func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

// visibleText returns the whitespace-collapsed text of a subtree, skipping
// script and style content.
func visibleText(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(sb.String(), " "))
}

func attrVal(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}
