package musicxml

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/logicossoftware/go-musicxml/archive"
)

// openElement is an element whose closing tag has not been read yet.
type openElement struct {
	el   *Element
	text strings.Builder // raw, still escaped
}

// Parse reads a single element tree from text.
//
// Processing instructions, comments and declarations are skipped. Carriage
// returns, line feeds and tabs outside tags are dropped, leading spaces of an
// element's text are ignored and trailing whitespace is trimmed when the
// element closes. Parsing stops once the first top-level element is closed.
//
// Parse fails with ErrMismatchedTag, ErrUnbalanced, ErrSelfClosingRoot,
// ErrMalformedTag or ErrDepthExceeded. Text that is not valid UTF-8 is
// rejected with archive.ErrInvalidText, as in ParseBytes.
func Parse(text string, opts ...ParseOption) (*Element, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: invalid UTF-8", archive.ErrInvalidText)
	}
	cfg := parseConfig{maxDepth: defaultMaxDepth}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxDepth <= 0 {
		cfg.maxDepth = defaultMaxDepth
	}

	var stack []*openElement
	for pos := 0; pos < len(text); {
		if text[pos] != '<' {
			c, size := utf8.DecodeRuneInString(text[pos:])
			pos += size
			if len(stack) == 0 || c == '\r' || c == '\n' || c == '\t' {
				continue
			}
			top := stack[len(stack)-1]
			if top.text.Len() == 0 && c == ' ' {
				continue
			}
			top.text.WriteRune(c)
			continue
		}

		t, n, err := readTag(text[pos:])
		if err != nil {
			return nil, fmt.Errorf("at offset %d: %w", pos, err)
		}
		pos += n

		switch t.kind {
		case tagIgnored:
		case tagCDATA:
			if len(stack) > 0 {
				stack[len(stack)-1].text.WriteString(escapeText(t.text))
			}
		case tagOpen:
			if len(stack) >= cfg.maxDepth {
				return nil, fmt.Errorf("%w: <%s> at offset %d is deeper than %d", ErrDepthExceeded, t.name, pos-n, cfg.maxDepth)
			}
			stack = append(stack, &openElement{el: &Element{Name: t.name, Attributes: t.attrs}})
		case tagSelfClose:
			if len(stack) == 0 {
				return nil, fmt.Errorf("%w: <%s/>", ErrSelfClosingRoot, t.name)
			}
			if len(stack) >= cfg.maxDepth {
				return nil, fmt.Errorf("%w: <%s/> at offset %d is deeper than %d", ErrDepthExceeded, t.name, pos-n, cfg.maxDepth)
			}
			top := stack[len(stack)-1].el
			top.Children = append(top.Children, &Element{Name: t.name, Attributes: t.attrs})
		case tagClose:
			if len(stack) == 0 {
				return nil, fmt.Errorf("%w: unexpected </%s> at offset %d", ErrMismatchedTag, t.name, pos-n)
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if open.el.Name != t.name {
				return nil, fmt.Errorf("%w: expected </%s> but found </%s> at offset %d", ErrMismatchedTag, open.el.Name, t.name, pos-n)
			}
			open.el.Text = unescape(strings.TrimRightFunc(open.text.String(), unicode.IsSpace))
			if len(stack) == 0 {
				return open.el, nil
			}
			parent := stack[len(stack)-1].el
			parent.Children = append(parent.Children, open.el)
		}
	}
	if len(stack) == 0 {
		return nil, fmt.Errorf("%w: no root element", ErrUnbalanced)
	}
	return nil, fmt.Errorf("%w: <%s> is never closed", ErrUnbalanced, stack[len(stack)-1].el.Name)
}

// ParseBytes decodes b as UTF-8 or BOM-marked UTF-16 text and parses it.
func ParseBytes(b []byte, opts ...ParseOption) (*Element, error) {
	text, err := archive.DecodeText(b)
	if err != nil {
		return nil, err
	}
	return Parse(text, opts...)
}
