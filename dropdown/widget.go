package dropdown

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// CSS classes of the dropdown skeleton. Styling is left to the page.
const (
	ContainerClass = "dropdown"
	ButtonClass    = "dropbtn"
	ContentClass   = "dropdown-content"
)

type widget struct {
	container *html.Node
	button    *html.Node
	content   *html.Node
	labelled  bool
}

// newWidget builds the detached skeleton: container > {button, content}.
func newWidget() *widget {
	w := &widget{
		container: element(atom.Div, class(ContainerClass)),
		button:    element(atom.Button, class(ButtonClass)),
		content:   element(atom.Div, class(ContentClass)),
	}
	w.container.AppendChild(w.button)
	w.container.AppendChild(w.content)
	return w
}

func (w *widget) addLink(prefix string, v Version) {
	a := element(atom.A,
		html.Attribute{Key: "href", Val: prefix + v.Path},
		html.Attribute{Key: "title", Val: v.Label},
	)
	a.AppendChild(&html.Node{Type: html.TextNode, Data: v.Label})
	w.content.AppendChild(a)
}

// setLabel sets the button text. Only the first call has any effect.
func (w *widget) setLabel(text string) {
	if w.labelled {
		return
	}
	w.labelled = true
	w.button.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func class(name string) html.Attribute {
	return html.Attribute{Key: "class", Val: name}
}
