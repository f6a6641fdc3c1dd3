package musicxml

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// validateElement checks that every name in the tree can be rendered and
// parsed back unchanged.
func validateElement(root *Element, maxDepth int) error {
	if root == nil {
		return fmt.Errorf("%w: root is nil", ErrInvalidElement)
	}
	type frame struct {
		e     *Element
		depth int
	}
	stack := []frame{{root, 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.depth > maxDepth {
			return fmt.Errorf("%w: <%s> is nested deeper than %d", ErrDepthExceeded, f.e.Name, maxDepth)
		}
		if err := validateName(f.e.Name); err != nil {
			return fmt.Errorf("%w: element name: %v", ErrInvalidElement, err)
		}
		for _, a := range f.e.Attributes {
			if err := validateName(a.Name); err != nil {
				return fmt.Errorf("%w: attribute of <%s>: %v", ErrInvalidElement, f.e.Name, err)
			}
			if !utf8.ValidString(a.Value) {
				return fmt.Errorf("%w: attribute %q of <%s> is not valid UTF-8", ErrInvalidElement, a.Name, f.e.Name)
			}
		}
		if !utf8.ValidString(f.e.Text) {
			return fmt.Errorf("%w: text of <%s> is not valid UTF-8", ErrInvalidElement, f.e.Name)
		}
		for i, c := range f.e.Children {
			if c == nil {
				return fmt.Errorf("%w: child %d of <%s> is nil", ErrInvalidElement, i, f.e.Name)
			}
			stack = append(stack, frame{c, f.depth + 1})
		}
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("name is empty")
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("name %q is not valid UTF-8", name)
	}
	if strings.IndexFunc(name, isDelim) >= 0 || strings.ContainsAny(name, "&") {
		return fmt.Errorf("name %q contains a reserved character", name)
	}
	if name[0] == '!' || name[0] == '?' {
		return fmt.Errorf("name %q starts with %q", name, name[0])
	}
	return nil
}
