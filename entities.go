package musicxml

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var namedEntities = map[string]rune{
	"lt":   '<',
	"gt":   '>',
	"amp":  '&',
	"quot": '"',
	"apos": '\'',
}

// maxEntityLen bounds how far past '&' a terminating ';' is looked for.
const maxEntityLen = 12

// unescape replaces predefined and numeric character references. Anything
// that is not a well-formed reference is kept verbatim.
func unescape(s string) string {
	if strings.IndexByte(s, '&') < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for {
		amp := strings.IndexByte(s, '&')
		if amp < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:amp])
		s = s[amp:]
		semi := strings.IndexByte(s, ';')
		if semi < 0 || semi > maxEntityLen {
			b.WriteByte('&')
			s = s[1:]
			continue
		}
		if r, ok := decodeEntity(s[1:semi]); ok {
			b.WriteRune(r)
			s = s[semi+1:]
			continue
		}
		b.WriteByte('&')
		s = s[1:]
	}
}

func decodeEntity(name string) (rune, bool) {
	if r, ok := namedEntities[name]; ok {
		return r, true
	}
	if len(name) < 2 || name[0] != '#' {
		return 0, false
	}
	var n uint64
	var err error
	if name[1] == 'x' || name[1] == 'X' {
		n, err = strconv.ParseUint(name[2:], 16, 32)
	} else {
		n, err = strconv.ParseUint(name[1:], 10, 32)
	}
	if err != nil || !utf8.ValidRune(rune(n)) || n == 0 {
		return 0, false
	}
	return rune(n), true
}

// escapeText escapes s for use as element content. Leading spaces, trailing
// whitespace and line breaks are written as character references so Parse
// returns them unchanged.
func escapeText(s string) string {
	lead := len(s) - len(strings.TrimLeft(s, " "))
	trail := len(strings.TrimRightFunc(s, unicode.IsSpace))
	if lead == 0 && trail == len(s) && !strings.ContainsAny(s, "&<>\t\r\n") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 16)
	for i, c := range s {
		switch {
		case i < lead || i >= trail:
			writeCharRef(&b, c)
		case c == '&':
			b.WriteString("&amp;")
		case c == '<':
			b.WriteString("&lt;")
		case c == '>':
			b.WriteString("&gt;")
		case c == '\t' || c == '\r' || c == '\n':
			writeCharRef(&b, c)
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

func escapeAttr(s string) string {
	if !strings.ContainsAny(s, "&<\"\t\r\n") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 16)
	for _, c := range s {
		switch c {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '"':
			b.WriteString("&quot;")
		case '\t', '\r', '\n':
			writeCharRef(&b, c)
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

func writeCharRef(b *strings.Builder, c rune) {
	b.WriteString("&#")
	b.WriteString(strconv.Itoa(int(c)))
	b.WriteByte(';')
}
