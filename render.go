package musicxml

import (
	"io"
	"strings"
)

// Render prints the tree rooted at e.
//
// An element other than the root with neither children nor text is written
// as a self-closing tag. The root always gets an explicit closing tag so the
// output can be parsed again.
func Render(e *Element, style Style) string {
	var b strings.Builder
	renderElement(&b, e, style, 0)
	return b.String()
}

// RenderTo writes the output of Render to w.
func RenderTo(w io.Writer, e *Element, style Style) error {
	_, err := io.WriteString(w, Render(e, style))
	return err
}

func renderElement(b *strings.Builder, e *Element, style Style, depth int) {
	if e == nil {
		return
	}
	if depth > 0 && style == Indented {
		newline(b, depth)
	}
	b.WriteByte('<')
	b.WriteString(e.Name)
	for _, a := range e.Attributes {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		b.WriteString(escapeAttr(a.Value))
		b.WriteByte('"')
	}
	if depth > 0 && len(e.Children) == 0 && e.Text == "" {
		b.WriteString("/>")
		return
	}
	b.WriteByte('>')

	for _, c := range e.Children {
		renderElement(b, c, style, depth+1)
	}
	switch {
	case e.Text != "":
		b.WriteString(escapeText(e.Text))
	case style == Indented && len(e.Children) > 0:
		newline(b, depth)
	}
	b.WriteString("</")
	b.WriteString(e.Name)
	b.WriteByte('>')
}

func newline(b *strings.Builder, depth int) {
	b.WriteByte('\n')
	for range depth {
		b.WriteString("  ")
	}
}
