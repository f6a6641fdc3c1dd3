package musicxml

// Attr is a single name="value" pair on an element.
type Attr struct {
	Name  string
	Value string
}

// Element is one node of a generic labeled tree.
//
// Attribute and child order are significant and preserved by Parse and
// Render. An element carrying Text is expected to have no Children.
type Element struct {
	Name       string
	Attributes []Attr
	Children   []*Element
	Text       string
}

func NewElement(name string) *Element {
	return &Element{Name: name}
}

// Attr returns the value of the first attribute called name.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr replaces the value of an existing attribute in place, or appends
// a new one.
func (e *Element) SetAttr(name, value string) *Element {
	for i := range e.Attributes {
		if e.Attributes[i].Name == name {
			e.Attributes[i].Value = value
			return e
		}
	}
	e.Attributes = append(e.Attributes, Attr{Name: name, Value: value})
	return e
}

func (e *Element) AddChild(c *Element) *Element {
	e.Children = append(e.Children, c)
	return e
}

// Child returns the first direct child called name, or nil.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (e *Element) ChildrenNamed(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Find descends through the first child matching each name in turn.
func (e *Element) Find(path ...string) *Element {
	cur := e
	for _, name := range path {
		if cur = cur.Child(name); cur == nil {
			return nil
		}
	}
	return cur
}

// Clone returns a deep copy of e.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	out := &Element{Name: e.Name, Text: e.Text}
	if len(e.Attributes) > 0 {
		out.Attributes = append([]Attr(nil), e.Attributes...)
	}
	if len(e.Children) > 0 {
		out.Children = make([]*Element, len(e.Children))
		for i, c := range e.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Equal reports whether e and o describe the same tree. Nil and empty
// attribute or child lists are equal.
func (e *Element) Equal(o *Element) bool {
	if e == nil || o == nil {
		return e == o
	}
	if e.Name != o.Name || e.Text != o.Text {
		return false
	}
	if len(e.Attributes) != len(o.Attributes) || len(e.Children) != len(o.Children) {
		return false
	}
	for i := range e.Attributes {
		if e.Attributes[i] != o.Attributes[i] {
			return false
		}
	}
	for i := range e.Children {
		if !e.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}
