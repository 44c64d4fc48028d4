package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
)

// jsonField is one key/value pair of a JSON object, in document order.
type jsonField struct {
	name  string
	value any // jsonObject, jsonArray, or string scalar
}

// jsonObject preserves key order, which encoding/json maps discard.
type jsonObject struct {
	fields []jsonField
	raw    []byte
}

type jsonArray []any

// DecodeJSON reads one FHIR JSON document and returns its root element.
//
// The tree mirrors the FHIR XML form so both encodings crack
// identically: an object carrying "resourceType" becomes an element
// named after that type, arrays repeat the element name once per item,
// and scalars become leaf text. Document order is preserved.
func DecodeJSON(r io.Reader) (*Element, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec, data)
	if err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	obj, ok := v.(*jsonObject)
	if !ok {
		return nil, fmt.Errorf("decode json: document root is not an object")
	}

	root := elementFromObject("", obj)
	if root == nil || root.Name == "" {
		return nil, fmt.Errorf("decode json: document root has no resourceType")
	}
	return root, nil
}

// ReadBundleJSON decodes one JSON document into a Bundle.
func ReadBundleJSON(r io.Reader) (*Bundle, error) {
	root, err := DecodeJSON(r)
	if err != nil {
		return nil, err
	}
	return NewBundle(root), nil
}

// decodeValue reads one JSON value from the token stream. data is the
// full input, used to slice out the raw encoding of objects.
func decodeValue(dec *json.Decoder, data []byte) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeToken(dec, data, tok)
}

func decodeToken(dec *json.Decoder, data []byte, tok json.Token) (any, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			// InputOffset sits just past the opening brace.
			start := dec.InputOffset() - 1
			obj := &jsonObject{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T, not string", keyTok)
				}
				val, err := decodeValue(dec, data)
				if err != nil {
					return nil, err
				}
				obj.fields = append(obj.fields, jsonField{name: key, value: val})
			}
			if _, err := dec.Token(); err != nil { // closing brace
				return nil, err
			}
			obj.raw = data[start:dec.InputOffset()]
			return obj, nil

		case '[':
			var arr jsonArray
			for dec.More() {
				val, err := decodeValue(dec, data)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil { // closing bracket
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)

	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		if t {
			return "true", nil
		}
		return "false", nil
	case nil:
		return "", nil
	default:
		return nil, fmt.Errorf("unexpected token %T", tok)
	}
}

// elementFromObject converts an ordered JSON object into an element
// named name. Objects carrying "resourceType" produce an element named
// after the type instead, wrapped in a name element when nested - the
// same shape FHIR XML uses for bundle entries and contained resources.
func elementFromObject(name string, obj *jsonObject) *Element {
	resourceType := ""
	for _, f := range obj.fields {
		if f.name == "resourceType" {
			if s, ok := f.value.(string); ok {
				resourceType = s
			}
			break
		}
	}

	var el *Element
	if resourceType != "" {
		el = &Element{Name: resourceType, raw: obj.raw}
	} else {
		el = &Element{Name: name}
	}

	for _, f := range obj.fields {
		if f.name == "resourceType" {
			continue
		}
		addField(el, f.name, f.value)
	}

	if resourceType != "" && name != "" {
		return &Element{Name: name, Children: []*Element{el}}
	}
	return el
}

func addField(parent *Element, name string, v any) {
	switch val := v.(type) {
	case *jsonObject:
		parent.Children = append(parent.Children, elementFromObject(name, val))
	case jsonArray:
		for _, item := range val {
			addField(parent, name, item)
		}
	case string:
		parent.Children = append(parent.Children, &Element{Name: name, Text: val})
	}
}

var jsonNumberPattern = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// FHIRJSON returns the FHIR JSON encoding of a resource element. The
// original bytes are returned verbatim when the element was decoded
// from JSON; trees from other sources are synthesized, typing scalars
// heuristically. Resources contained in an XML-decoded tree keep their
// wrapper element, so expressions addressing them see one extra level.
func (e *Element) FHIRJSON() ([]byte, error) {
	if e.raw != nil {
		return e.raw, nil
	}

	obj := e.jsonValue().(map[string]any)
	obj["resourceType"] = e.Name
	return json.Marshal(obj)
}

func (e *Element) jsonValue() any {
	if e.IsLeaf() {
		return scalarValue(e.Text)
	}

	obj := make(map[string]any, len(e.Children))
	for _, c := range e.Children {
		existing, ok := obj[c.Name]
		if !ok {
			obj[c.Name] = c.jsonValue()
			continue
		}
		if arr, isArr := existing.([]any); isArr {
			obj[c.Name] = append(arr, c.jsonValue())
		} else {
			obj[c.Name] = []any{existing, c.jsonValue()}
		}
	}
	return obj
}

func scalarValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if jsonNumberPattern.MatchString(s) {
		return json.Number(s)
	}
	return s
}
