package dom

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// The pipeline only ever needs to evaluate the XPath grammar its own
// generator emits: absolute tag[n] step paths, optionally rooted at an
// id-anchored element. Anything else is rejected.

var (
	idRootPattern = regexp.MustCompile(`^//\*\[@id=["']([^"']+)["']\]`)
	stepPattern   = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9-]*)(?:\[(\d+)\])?$`)
)

// QueryXPath evaluates a restricted XPath expression against the document
// and returns matching nodes.
func (d *Document) QueryXPath(xpath string) ([]*html.Node, error) {
	xpath = strings.TrimSpace(xpath)
	if xpath == "" {
		return nil, fmt.Errorf("xpath is empty")
	}

	current := []*html.Node{}

	rest := xpath
	if m := idRootPattern.FindStringSubmatch(xpath); m != nil {
		id := m[1]
		d.WalkElements(func(n *html.Node) bool {
			if v, ok := Attr(n, "id"); ok && v == id {
				current = append(current, n)
			}
			return true
		})
		rest = xpath[len(m[0]):]
		if rest == "" {
			return current, nil
		}
	} else if strings.HasPrefix(xpath, "/") && !strings.HasPrefix(xpath, "//") {
		// Root() is the document node; its element children start the path.
		root := d.Root()
		if root == nil {
			return nil, nil
		}
		return d.walkSteps([]*html.Node{root}, strings.TrimPrefix(xpath, "/"))
	} else {
		return nil, fmt.Errorf("unsupported xpath expression: %s", xpath)
	}

	return d.walkSteps(current, strings.TrimPrefix(rest, "/"))
}

// walkSteps applies the remaining /tag[n] steps to the current node set.
func (d *Document) walkSteps(current []*html.Node, path string) ([]*html.Node, error) {
	if path == "" {
		return current, nil
	}

	for _, step := range strings.Split(path, "/") {
		m := stepPattern.FindStringSubmatch(step)
		if m == nil {
			return nil, fmt.Errorf("unsupported xpath step: %s", step)
		}
		tag := strings.ToLower(m[1])

		var next []*html.Node
		for _, node := range current {
			children := elementChildren(node, tag)
			if m[2] != "" {
				idx, err := strconv.Atoi(m[2])
				if err != nil || idx < 1 {
					return nil, fmt.Errorf("invalid xpath index in step %s", step)
				}
				if idx <= len(children) {
					next = append(next, children[idx-1])
				}
			} else {
				next = append(next, children...)
			}
		}
		current = next
		if len(current) == 0 {
			return nil, nil
		}
	}

	return current, nil
}

// elementChildren returns the element children of n with the given tag, in
// document order.
func elementChildren(n *html.Node, tag string) []*html.Node {
	var children []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && strings.ToLower(c.Data) == tag {
			children = append(children, c)
		}
	}
	return children
}
