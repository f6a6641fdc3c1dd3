package musicxml

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/logicossoftware/go-musicxml/archive"
)

func TestEncode_InvalidTrees(t *testing.T) {
	tests := []struct {
		name string
		root *Element
		want error
	}{
		{"nil root", nil, ErrInvalidElement},
		{"empty name", &Element{}, ErrInvalidElement},
		{"space in name", &Element{Name: "a b"}, ErrInvalidElement},
		{"slash in name", &Element{Name: "a/b"}, ErrInvalidElement},
		{"declaration name", &Element{Name: "!DOCTYPE"}, ErrInvalidElement},
		{"instruction name", &Element{Name: "?xml"}, ErrInvalidElement},
		{"ampersand in name", &Element{Name: "a&b"}, ErrInvalidElement},
		{"bad attribute name", &Element{Name: "a", Attributes: []Attr{{"x=y", "1"}}}, ErrInvalidElement},
		{"empty attribute name", &Element{Name: "a", Attributes: []Attr{{"", "1"}}}, ErrInvalidElement},
		{"invalid attribute value", &Element{Name: "a", Attributes: []Attr{{"x", "\xff"}}}, ErrInvalidElement},
		{"invalid text", &Element{Name: "a", Text: "\xff"}, ErrInvalidElement},
		{"nil child", &Element{Name: "a", Children: []*Element{nil}}, ErrInvalidElement},
		{"bad grandchild", &Element{Name: "a", Children: []*Element{{Name: "b", Children: []*Element{{Name: "c d"}}}}}, ErrInvalidElement},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, tt.root, false); !errors.Is(err, tt.want) {
				t.Fatalf("got %v want %v", err, tt.want)
			}
		})
	}
}

func TestEncode_MaxDepth(t *testing.T) {
	var buf bytes.Buffer
	tree := nestedTree(5)
	if err := Encode(&buf, tree, false, WithWriteLimits(Limits{MaxDepth: 4})); !errors.Is(err, ErrDepthExceeded) {
		t.Fatalf("got %v", err)
	}
	if err := Encode(&buf, tree, false, WithWriteLimits(Limits{MaxDepth: 5})); err != nil {
		t.Fatal(err)
	}
	if err := Encode(&buf, nestedTree(defaultMaxDepth+1), false); !errors.Is(err, ErrDepthExceeded) {
		t.Fatalf("default limit: %v", err)
	}
}

func TestEncode_InvalidRootPath(t *testing.T) {
	for _, p := range []string{ContainerPath, "", "/abs.xml", "../up.xml", `dir\score.xml`, "a/./b.xml"} {
		var buf bytes.Buffer
		err := Encode(&buf, sampleScore(), true, WithRootPath(p))
		if !errors.Is(err, archive.ErrInvalidName) {
			t.Errorf("WithRootPath(%q): %v", p, err)
		}
	}
}

func TestValidateName(t *testing.T) {
	for _, ok := range []string{"a", "score-partwise", "xlink:href", "n0", "ü", "a.b_c"} {
		if err := validateName(ok); err != nil {
			t.Errorf("validateName(%q): %v", ok, err)
		}
	}
	for _, bad := range []string{"", " ", "a\tb", "a>", "<a", `a"`, "a'", "a=b", "?pi", "!x", "a&b"} {
		if err := validateName(bad); err == nil {
			t.Errorf("validateName(%q) accepted", bad)
		}
	}
	if err := validateName(strings.Repeat("x", 1000)); err != nil {
		t.Errorf("long name: %v", err)
	}
}
