package dom

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// identPattern matches id/class values that are safe to embed in a CSS
// selector without escaping.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// BuildSelector generates the shortest CSS selector that uniquely identifies
// n within the document, preferring ids, then classes, then nth-child
// disambiguation. The result is verified against the document at every step
// so the returned selector always resolves to exactly one node.
func (d *Document) BuildSelector(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}

	var parts []string
	for cur := n; cur != nil && cur.Type == html.ElementNode && cur.Data != "html"; cur = parentElement(cur) {
		if id, ok := Attr(cur, "id"); ok && identPattern.MatchString(id) {
			anchored := fmt.Sprintf("%s#%s", cur.Data, id)
			selector := joinSelector(anchored, parts)
			if d.matchCount(selector) == 1 {
				return selector
			}
		}

		segment := cur.Data
		if class := firstUsableClass(cur); class != "" {
			segment = fmt.Sprintf("%s.%s", cur.Data, class)
		}
		if d.segmentAmbiguous(cur, segment) {
			segment = fmt.Sprintf("%s:nth-child(%d)", cur.Data, ElementIndex(cur))
		}

		parts = append([]string{segment}, parts...)
		selector := strings.Join(parts, " > ")
		if d.matchCount(selector) == 1 {
			return selector
		}
	}

	return strings.Join(parts, " > ")
}

// BuildXPath generates an absolute XPath for n, shortcutting through the
// nearest uniquely-identified ancestor.
func (d *Document) BuildXPath(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}

	var steps []string
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = parentElement(cur) {
		if id, ok := Attr(cur, "id"); ok && id != "" && d.idCount(id) == 1 {
			prefix := fmt.Sprintf(`//*[@id="%s"]`, id)
			if len(steps) == 0 {
				return prefix
			}
			return prefix + "/" + strings.Join(steps, "/")
		}
		steps = append([]string{fmt.Sprintf("%s[%d]", cur.Data, SameTagIndex(cur))}, steps...)
	}

	return "/" + strings.Join(steps, "/")
}

// matchCount returns how many nodes a selector resolves to, 0 for invalid
// selectors.
func (d *Document) matchCount(selector string) int {
	nodes, err := d.Query(selector)
	if err != nil {
		return 0
	}
	return len(nodes)
}

// idCount counts elements carrying the given id. Real-world documents reuse
// ids, so uniqueness has to be checked before anchoring on one.
func (d *Document) idCount(id string) int {
	count := 0
	d.WalkElements(func(n *html.Node) bool {
		if v, ok := Attr(n, "id"); ok && v == id {
			count++
		}
		return true
	})
	return count
}

// segmentAmbiguous reports whether a tag/class segment matches more than one
// element among n's siblings.
func (d *Document) segmentAmbiguous(n *html.Node, segment string) bool {
	parent := parentElement(n)
	if parent == nil {
		return false
	}

	matches := 0
	class := ""
	if dot := strings.Index(segment, "."); dot >= 0 {
		class = segment[dot+1:]
	}
	for sib := parent.FirstChild; sib != nil; sib = sib.NextSibling {
		if sib.Type != html.ElementNode || sib.Data != n.Data {
			continue
		}
		if class != "" && !hasClass(sib, class) {
			continue
		}
		matches++
	}
	return matches > 1
}

func joinSelector(head string, rest []string) string {
	if len(rest) == 0 {
		return head
	}
	return head + " > " + strings.Join(rest, " > ")
}

func parentElement(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return p
		}
	}
	return nil
}

func firstUsableClass(n *html.Node) string {
	raw, ok := Attr(n, "class")
	if !ok {
		return ""
	}
	for _, class := range strings.Fields(raw) {
		if identPattern.MatchString(class) {
			return class
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	raw, ok := Attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(raw) {
		if c == class {
			return true
		}
	}
	return false
}
