package tree

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// DecodeXML reads one XML document and returns its root element.
//
// FHIR XML stores primitive values in a "value" attribute rather than
// as character data. The decoder hoists that attribute into
// Element.Text (the attribute itself stays addressable via @value) so
// that leaf extraction sees the primitive without every path having to
// end in an attribute selector.
func DecodeXML(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)

	var root *Element
	var stack []*Element

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name.Local}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				el.Attrs = append(el.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("decode xml: multiple document roots")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("decode xml: unbalanced end element %q", t.Name.Local)
			}
			el := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if el.Text == "" {
				if v, ok := el.Attr("value"); ok {
					el.Text = v
				}
			}

		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			if s := strings.TrimSpace(string(t)); s != "" {
				stack[len(stack)-1].Text += s
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("decode xml: empty document")
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("decode xml: unclosed element %q", stack[len(stack)-1].Name)
	}
	return root, nil
}

// ReadBundleXML decodes one XML document into a Bundle.
func ReadBundleXML(r io.Reader) (*Bundle, error) {
	root, err := DecodeXML(r)
	if err != nil {
		return nil, err
	}
	return NewBundle(root), nil
}
