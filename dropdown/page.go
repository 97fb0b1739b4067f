package dropdown

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/antchfx/htmlquery"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

// DefaultHeaderClass marks the navigation header region dropdowns attach to.
const DefaultHeaderClass = "navbar-header"

// Page is the render target: a parsed HTML document with a single writer at a
// time. Dropdowns are only ever appended to it.
type Page struct {
	mu  sync.Mutex
	doc *html.Node
}

// NewPage wraps an already parsed document.
func NewPage(doc *html.Node) *Page {
	return &Page{doc: doc}
}

// Load parses an HTML document from r.
func Load(r io.Reader) (*Page, error) {
	doc, err := htmlquery.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, "parsing page")
	}
	return NewPage(doc), nil
}

// Render writes the current document to w.
func (p *Page) Render(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return html.Render(w, p.doc)
}

// Headers returns every element carrying class.
func (p *Page) Headers(class string) ([]*html.Node, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.headers(class)
}

func (p *Page) headers(class string) ([]*html.Node, error) {
	expr, err := classXPath(class)
	if err != nil {
		return nil, err
	}
	nodes, err := htmlquery.QueryAll(p.doc, expr)
	if err != nil {
		return nil, errors.Wrapf(err, "selecting %q", class)
	}
	return nodes, nil
}

// attach appends n to every header. The first header takes n itself, the
// rest a deep copy. It returns the number of headers modified.
func (p *Page) attach(class string, n *html.Node) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	headers, err := p.headers(class)
	if err != nil {
		return 0, err
	}
	for i, h := range headers {
		if i == 0 {
			h.AppendChild(n)
			continue
		}
		h.AppendChild(cloneNode(n))
	}
	return len(headers), nil
}

func classXPath(class string) (string, error) {
	if class == "" || strings.ContainsAny(class, "'\" \t\n") {
		return "", errors.Errorf("invalid header class %q", class)
	}
	return fmt.Sprintf("//*[contains(concat(' ', normalize-space(@class), ' '), ' %s ')]", class), nil
}

func cloneNode(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(cloneNode(child))
	}
	return c
}
