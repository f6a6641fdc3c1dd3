package musicxml

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type tagKind uint8

const (
	tagOpen tagKind = iota
	tagClose
	tagSelfClose
	tagIgnored
	tagCDATA
)

type tag struct {
	kind  tagKind
	name  string
	attrs []Attr
	text  string // raw CDATA content
}

// tagState is a state of the tag reader. Every state has exactly one entry
// in tagTransitions.
type tagState uint8

const (
	stateTagStart tagState = iota
	stateTagName
	stateTagSpace
	stateAttrName
	stateAttrAfterName
	stateAttrEquals
	stateAttrValue
	stateTagSlash
	stateTagEnd
)

var stateNames = [...]string{
	stateTagStart:      "tag start",
	stateTagName:       "tag name",
	stateTagSpace:      "tag body",
	stateAttrName:      "attribute name",
	stateAttrAfterName: "after attribute name",
	stateAttrEquals:    "attribute value",
	stateAttrValue:     "quoted value",
	stateTagSlash:      "self-closing slash",
	stateTagEnd:        "tag end",
}

func (s tagState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

type tagReader struct {
	state tagState
	kind  tagKind
	name  strings.Builder
	attr  strings.Builder
	value strings.Builder
	quote rune
	attrs []Attr
}

var tagTransitions = [stateTagEnd]func(*tagReader, rune) error{
	stateTagStart:      (*tagReader).onTagStart,
	stateTagName:       (*tagReader).onTagName,
	stateTagSpace:      (*tagReader).onTagSpace,
	stateAttrName:      (*tagReader).onAttrName,
	stateAttrAfterName: (*tagReader).onAttrAfterName,
	stateAttrEquals:    (*tagReader).onAttrEquals,
	stateAttrValue:     (*tagReader).onAttrValue,
	stateTagSlash:      (*tagReader).onTagSlash,
}

func isSpace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isQuote(c rune) bool {
	return c == '"' || c == '\''
}

// isDelim reports characters that can never appear in a tag or attribute
// name.
func isDelim(c rune) bool {
	return isSpace(c) || isQuote(c) || c == '<' || c == '>' || c == '/' || c == '='
}

func (r *tagReader) fail(c rune) error {
	return fmt.Errorf("%w: unexpected %q in %s", ErrMalformedTag, c, r.state)
}

func (r *tagReader) onTagStart(c rune) error {
	switch {
	case c == '/':
		r.kind = tagClose
		r.state = stateTagName
	case isDelim(c):
		return r.fail(c)
	default:
		r.name.WriteRune(c)
		r.state = stateTagName
	}
	return nil
}

func (r *tagReader) onTagName(c rune) error {
	if isDelim(c) && r.name.Len() == 0 {
		return r.fail(c)
	}
	switch {
	case isSpace(c):
		r.state = stateTagSpace
	case c == '>':
		r.state = stateTagEnd
	case c == '/' && r.kind != tagClose:
		r.state = stateTagSlash
	case isDelim(c):
		return r.fail(c)
	default:
		r.name.WriteRune(c)
	}
	return nil
}

func (r *tagReader) onTagSpace(c rune) error {
	switch {
	case isSpace(c):
	case c == '>':
		r.state = stateTagEnd
	case c == '/' && r.kind != tagClose:
		r.state = stateTagSlash
	case isDelim(c):
		return r.fail(c)
	case r.kind == tagClose:
		return fmt.Errorf("%w: closing tag </%s> has attributes", ErrMalformedTag, r.name.String())
	default:
		r.attr.WriteRune(c)
		r.state = stateAttrName
	}
	return nil
}

func (r *tagReader) onAttrName(c rune) error {
	switch {
	case isSpace(c):
		r.state = stateAttrAfterName
	case c == '=':
		r.state = stateAttrEquals
	case isDelim(c):
		return fmt.Errorf("%w: attribute %q has no value", ErrMalformedTag, r.attr.String())
	default:
		r.attr.WriteRune(c)
	}
	return nil
}

func (r *tagReader) onAttrAfterName(c rune) error {
	switch {
	case isSpace(c):
	case c == '=':
		r.state = stateAttrEquals
	default:
		return fmt.Errorf("%w: attribute %q has no value", ErrMalformedTag, r.attr.String())
	}
	return nil
}

func (r *tagReader) onAttrEquals(c rune) error {
	switch {
	case isSpace(c):
	case isQuote(c):
		r.quote = c
		r.state = stateAttrValue
	default:
		return fmt.Errorf("%w: value of attribute %q is not quoted", ErrMalformedTag, r.attr.String())
	}
	return nil
}

// onAttrValue accepts every character up to the matching quote literally,
// including '/', '>' and whitespace.
func (r *tagReader) onAttrValue(c rune) error {
	if c != r.quote {
		r.value.WriteRune(c)
		return nil
	}
	r.attrs = append(r.attrs, Attr{Name: r.attr.String(), Value: unescape(r.value.String())})
	r.attr.Reset()
	r.value.Reset()
	r.state = stateTagSpace
	return nil
}

func (r *tagReader) onTagSlash(c rune) error {
	if c != '>' {
		return r.fail(c)
	}
	r.kind = tagSelfClose
	r.state = stateTagEnd
	return nil
}

// readTag reads the tag whose '<' is at src[0] and returns it with the
// number of bytes consumed.
func readTag(src string) (tag, int, error) {
	body := src[1:]
	switch {
	case strings.HasPrefix(body, "!--"):
		return skipTo(src, len("<!--"), "-->")
	case strings.HasPrefix(body, "![CDATA["):
		const open = "<![CDATA["
		end := strings.Index(src[len(open):], "]]>")
		if end < 0 {
			return tag{}, 0, fmt.Errorf("%w: unterminated CDATA section", ErrMalformedTag)
		}
		return tag{kind: tagCDATA, text: src[len(open) : len(open)+end]}, len(open) + end + len("]]>"), nil
	case strings.HasPrefix(body, "?"):
		return skipTo(src, len("<?"), "?>")
	case strings.HasPrefix(body, "!"):
		return skipDeclaration(src)
	}

	r := tagReader{state: stateTagStart, kind: tagOpen}
	for i := 1; i < len(src); {
		c, size := utf8.DecodeRuneInString(src[i:])
		i += size
		if err := tagTransitions[r.state](&r, c); err != nil {
			return tag{}, 0, err
		}
		if r.state == stateTagEnd {
			return tag{kind: r.kind, name: r.name.String(), attrs: r.attrs}, i, nil
		}
	}
	return tag{}, 0, fmt.Errorf("%w: unterminated tag", ErrMalformedTag)
}

func skipTo(src string, from int, terminator string) (tag, int, error) {
	end := strings.Index(src[from:], terminator)
	if end < 0 {
		return tag{}, 0, fmt.Errorf("%w: missing %q", ErrMalformedTag, terminator)
	}
	return tag{kind: tagIgnored}, from + end + len(terminator), nil
}

// skipDeclaration skips a <!...> declaration such as DOCTYPE, including a
// bracketed internal subset.
func skipDeclaration(src string) (tag, int, error) {
	depth := 0
	var quote byte
	for i := 1; i < len(src); i++ {
		c := src[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '[':
			depth++
		case c == ']':
			depth--
		case c == '>' && depth <= 0:
			return tag{kind: tagIgnored}, i + 1, nil
		}
	}
	return tag{}, 0, fmt.Errorf("%w: unterminated declaration", ErrMalformedTag)
}
