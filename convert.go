package musicxml

import (
	"fmt"
	"sort"
	"strconv"
)

// ToTimewise returns root in the score-timewise layout. A score-partwise
// tree is regrouped so that every measure holds one part element per part;
// a score-timewise tree is returned as a copy. root is never modified.
//
// Children of the root other than parts are kept, in order, ahead of the
// measures. Measures are ordered by their numeric number attribute; measures
// with a non-numeric number follow in the order they first appear.
func ToTimewise(root *Element) (*Element, error) {
	switch {
	case root == nil:
		return nil, fmt.Errorf("%w: root is nil", ErrInvalidScore)
	case root.Name == RootTimewise:
		return root.Clone(), nil
	case root.Name != RootPartwise:
		return nil, fmt.Errorf("%w: root is <%s>", ErrInvalidScore, root.Name)
	}
	out, groups, err := regroup(root, RootTimewise, "part", "id", "number")
	if err != nil {
		return nil, err
	}
	sort.SliceStable(groups, func(i, j int) bool { return measureLess(groups[i].key, groups[j].key) })
	for _, g := range groups {
		out.Children = append(out.Children, g.el)
	}
	return out, nil
}

// ToPartwise is the inverse of ToTimewise. Parts are ordered by id.
func ToPartwise(root *Element) (*Element, error) {
	switch {
	case root == nil:
		return nil, fmt.Errorf("%w: root is nil", ErrInvalidScore)
	case root.Name == RootPartwise:
		return root.Clone(), nil
	case root.Name != RootTimewise:
		return nil, fmt.Errorf("%w: root is <%s>", ErrInvalidScore, root.Name)
	}
	out, groups, err := regroup(root, RootPartwise, "measure", "number", "id")
	if err != nil {
		return nil, err
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].key < groups[j].key })
	for _, g := range groups {
		out.Children = append(out.Children, g.el)
	}
	return out, nil
}

type group struct {
	key string
	el  *Element
}

// regroup swaps the two outer levels of a score. Each outer element (named
// outer) contributes a copy of itself to every inner group, holding the
// inner element's children. Inner groups are keyed by innerKey and take
// their name, attributes and text from the first occurrence.
func regroup(root *Element, name, outer, outerKey, innerKey string) (*Element, []group, error) {
	out := &Element{Name: name, Text: root.Text}
	if len(root.Attributes) > 0 {
		out.Attributes = append([]Attr(nil), root.Attributes...)
	}
	var groups []group
	index := make(map[string]int)
	for _, o := range root.Children {
		if o.Name != outer {
			out.Children = append(out.Children, o.Clone())
			continue
		}
		if _, ok := o.Attr(outerKey); !ok {
			return nil, nil, fmt.Errorf("%w: <%s> has no %s", ErrInvalidScore, outer, outerKey)
		}
		for _, in := range o.Children {
			key, ok := in.Attr(innerKey)
			if !ok {
				return nil, nil, fmt.Errorf("%w: <%s> has no %s", ErrInvalidScore, in.Name, innerKey)
			}
			i, seen := index[key]
			if !seen {
				g := &Element{Name: in.Name, Text: in.Text}
				if len(in.Attributes) > 0 {
					g.Attributes = append([]Attr(nil), in.Attributes...)
				}
				i = len(groups)
				index[key] = i
				groups = append(groups, group{key: key, el: g})
			}
			moved := &Element{Name: o.Name, Text: o.Text}
			if len(o.Attributes) > 0 {
				moved.Attributes = append([]Attr(nil), o.Attributes...)
			}
			for _, c := range in.Children {
				moved.Children = append(moved.Children, c.Clone())
			}
			groups[i].el.Children = append(groups[i].el.Children, moved)
		}
	}
	return out, groups, nil
}

// measureLess orders numeric measure numbers numerically, ahead of all
// non-numeric ones.
func measureLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	default:
		return false
	}
}
