package dom

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/ternarybob/adnota/internal/models"
)

// maxOutlineChars caps the markdown outline attached to DocumentContext.
const maxOutlineChars = 4000

// Document is an immutable parsed HTML tree. It is built once per pipeline
// run and shared by reference across concurrent validate/repair calls; no
// method mutates it.
type Document struct {
	doc *goquery.Document
}

// Parse builds a Document from a raw HTML string. Empty or whitespace-only
// input is rejected; goquery tolerates malformed markup the way browsers do,
// so a parse error here means the input is not text at all.
func Parse(rawHTML string) (*Document, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, fmt.Errorf("document HTML is empty")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document HTML: %w", err)
	}

	return &Document{doc: doc}, nil
}

// Selection exposes the underlying goquery document for CSS queries.
func (d *Document) Selection() *goquery.Document {
	return d.doc
}

// Root returns the root html node of the parsed tree.
func (d *Document) Root() *html.Node {
	nodes := d.doc.Nodes
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// Query evaluates a CSS selector against the document and returns all
// matching element nodes. The selector is compiled explicitly so an invalid
// one is reported as an error; language models produce arbitrary selector
// strings and Find would silently match nothing.
func (d *Document) Query(selector string) ([]*html.Node, error) {
	if strings.TrimSpace(selector) == "" {
		return nil, fmt.Errorf("selector is empty")
	}

	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}

	sel := d.doc.FindMatcher(matcher)
	return sel.Nodes, nil
}

// TextContent returns the concatenated text of a node's subtree.
func TextContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// OuterHTML serializes a node including its own tag.
func OuterHTML(n *html.Node) (string, error) {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return "", fmt.Errorf("failed to render node: %w", err)
	}
	return sb.String(), nil
}

// ExtractContext computes the document-level metadata shared by all chunks
// of a run: title, language, root attributes, presence of a main-content
// container, and a truncated markdown outline used to orient prompts.
func (d *Document) ExtractContext() *models.DocumentContext {
	ctx := &models.DocumentContext{
		RootAttributes: map[string]string{},
	}

	ctx.Title = strings.TrimSpace(d.doc.Find("title").First().Text())
	if ctx.Title == "" {
		ctx.Title = strings.TrimSpace(d.doc.Find("h1").First().Text())
	}

	if htmlSel := d.doc.Find("html").First(); htmlSel.Length() > 0 {
		if lang, ok := htmlSel.Attr("lang"); ok {
			ctx.Language = lang
		}
		for _, attr := range htmlSel.Nodes[0].Attr {
			ctx.RootAttributes[attr.Key] = attr.Val
		}
	}

	ctx.HasMainContent = d.doc.Find("main, article, [role=main], #content, .content").Length() > 0

	ctx.Outline = d.markdownOutline()

	return ctx
}

// markdownOutline converts the body to markdown and truncates it. Conversion
// failure falls back to stripped text; the outline is advisory prompt
// context, never an anchor source.
func (d *Document) markdownOutline() string {
	body, err := d.doc.Find("body").First().Html()
	if err != nil || strings.TrimSpace(body) == "" {
		return ""
	}

	converter := md.NewConverter("", true, nil)
	outline, err := converter.ConvertString(body)
	if err != nil {
		outline = strings.TrimSpace(d.doc.Find("body").Text())
	}

	outline = strings.TrimSpace(outline)
	if len(outline) > maxOutlineChars {
		outline = outline[:maxOutlineChars]
	}
	return outline
}

// ElementIndex returns the 1-based position of n among element siblings
// (nth-child semantics).
func ElementIndex(n *html.Node) int {
	index := 1
	for sib := n.PrevSibling; sib != nil; sib = sib.PrevSibling {
		if sib.Type == html.ElementNode {
			index++
		}
	}
	return index
}

// SameTagIndex returns the 1-based position of n among element siblings
// sharing its tag name (XPath step semantics).
func SameTagIndex(n *html.Node) int {
	index := 1
	for sib := n.PrevSibling; sib != nil; sib = sib.PrevSibling {
		if sib.Type == html.ElementNode && sib.Data == n.Data {
			index++
		}
	}
	return index
}

// Attr returns the value of an attribute on an element node.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// WalkElements visits every element node in document order. The visitor
// returns false to stop the walk.
func (d *Document) WalkElements(visit func(n *html.Node) bool) {
	root := d.Root()
	if root == nil {
		return
	}
	var walk func(*html.Node) bool
	walk = func(node *html.Node) bool {
		if node.Type == html.ElementNode {
			if !visit(node) {
				return false
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(root)
}
