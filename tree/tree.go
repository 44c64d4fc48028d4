package tree

// Attr is a single attribute of an Element.
type Attr struct {
	Name  string
	Value string
}

// Element is one node of a resource tree: a name, optional attributes,
// optional text content, and ordered children. Repeating elements are
// sibling children sharing a name.
type Element struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Element

	// raw holds the original JSON encoding when the element was decoded
	// from FHIR JSON. Used by FHIRJSON to avoid lossy re-synthesis.
	raw []byte
}

// Type returns the resource type of a resource root element.
func (e *Element) Type() string {
	return e.Name
}

// Attr returns the value of the named attribute and whether it exists.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Child returns the first child with the given name, or nil.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns all children with the given name, in document order.
func (e *Element) ChildrenNamed(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// IsLeaf reports whether the element has no children.
func (e *Element) IsLeaf() bool {
	return len(e.Children) == 0
}

// Walk visits e and all descendants depth-first in document order.
// Walking stops when fn returns false.
func (e *Element) Walk(fn func(*Element) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range e.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Bundle is one page of search results containing zero or more resources.
type Bundle struct {
	Resources []*Element
}

// NewBundle wraps a decoded document root as a Bundle. A root named
// "Bundle" contributes the resource of every entry, in entry order;
// any other root is treated as a single freestanding resource.
func NewBundle(root *Element) *Bundle {
	b := &Bundle{}
	if root == nil {
		return b
	}

	if root.Name != "Bundle" {
		b.Resources = append(b.Resources, root)
		return b
	}

	for _, entry := range root.ChildrenNamed("entry") {
		res := entry.Child("resource")
		if res == nil {
			continue
		}
		// The resource element wraps exactly one typed root.
		for _, c := range res.Children {
			b.Resources = append(b.Resources, c)
			break
		}
	}
	return b
}

// Bundles is an ordered sequence of bundles (pages).
type Bundles []*Bundle

// ResourcesOfType returns every resource of the given type across all
// bundles: bundles in input order, resources in document order within
// each bundle.
func (bs Bundles) ResourcesOfType(name string) []*Element {
	var out []*Element
	for _, b := range bs {
		if b == nil {
			continue
		}
		for _, r := range b.Resources {
			if r.Name == name {
				out = append(out, r)
			}
		}
	}
	return out
}

// Len returns the total resource count across all bundles.
func (bs Bundles) Len() int {
	n := 0
	for _, b := range bs {
		if b != nil {
			n += len(b.Resources)
		}
	}
	return n
}
