package ocpp

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"

	"ocppmsg/types"
)

// XMLElement wraps the SOAP body element of a message with field readers
// mirroring the ones of JSONObject.
type XMLElement struct {
	*etree.Element
}

func NewXMLElement(el *etree.Element) XMLElement {
	return XMLElement{Element: el}
}

// NewXMLRoot creates the root element of a message in the given namespace.
func NewXMLRoot(tag, namespace string) *etree.Element {
	el := etree.NewElement(tag)
	if namespace != "" {
		el.CreateAttr("xmlns", namespace)
	}
	return el
}

func AddXMLText(parent *etree.Element, tag, text string) *etree.Element {
	child := parent.CreateElement(tag)
	child.SetText(text)
	return child
}

// AddOptionalXMLText adds the child only when text is not empty.
func AddOptionalXMLText(parent *etree.Element, tag, text string) {
	if text != "" {
		AddXMLText(parent, tag, text)
	}
}

// ParseXML reads a document and returns its root element.
func ParseXML(data []byte) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, &FormatError{Reason: "malformed XML: " + err.Error()}
	}
	root := doc.Root()
	if root == nil {
		return nil, &FormatError{Reason: "XML document has no root element"}
	}
	return root, nil
}

// XMLBytes serializes an element as a standalone document.
func XMLBytes(el *etree.Element) ([]byte, error) {
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	return doc.WriteToBytes()
}

// CanonicalXML serializes el with sorted attributes, explicit end tags and canonical escaping.
func CanonicalXML(el *etree.Element) ([]byte, error) {
	doc := etree.NewDocument()
	root := el.Copy()
	sortAttrs(root)
	doc.SetRoot(root)
	doc.WriteSettings.CanonicalEndTags = true
	doc.WriteSettings.CanonicalText = true
	doc.WriteSettings.CanonicalAttrVal = true
	return doc.WriteToBytes()
}

func sortAttrs(el *etree.Element) {
	el.SortAttrs()
	for _, child := range el.ChildElements() {
		sortAttrs(child)
	}
}

func (e XMLElement) lookupText(key string, maxLen int) (string, bool, error) {
	child := e.SelectElement(key)
	if child == nil {
		return "", false, nil
	}
	s := child.Text()
	if maxLen > 0 && utf8.RuneCountInString(s) > maxLen {
		return "", true, invalidField(key, "longer than %d characters", maxLen)
	}
	return s, true, nil
}

// lookupToken trims the surrounding whitespace that lookupText keeps.
func (e XMLElement) lookupToken(key string) (string, bool, error) {
	s, present, err := e.lookupText(key, 0)
	return strings.TrimSpace(s), present, err
}

func (e XMLElement) Text(key string, maxLen int) (string, error) {
	s, present, err := e.lookupText(key, maxLen)
	if err != nil {
		return "", err
	}
	if !present {
		return "", missingField(key)
	}
	return s, nil
}

func (e XMLElement) OptionalText(key string, maxLen int) (string, error) {
	s, _, err := e.lookupText(key, maxLen)
	return s, err
}

func (e XMLElement) lookupInt(key string) (int64, bool, error) {
	s, present, err := e.lookupToken(key)
	if err != nil || !present {
		return 0, present, err
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, true, invalidField(key, "expected an integer, got %q", s)
	}
	return i, true, nil
}

func (e XMLElement) Int(key string) (int, error) {
	i, present, err := e.lookupInt(key)
	if err != nil {
		return 0, err
	}
	if !present {
		return 0, missingField(key)
	}
	return toInt(key, i)
}

func (e XMLElement) OptionalInt(key string) (*int, error) {
	i, present, err := e.lookupInt(key)
	if err != nil || !present {
		return nil, err
	}
	n, err := toInt(key, i)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Uint reads a logically unsigned integer; negative values are rejected.
func (e XMLElement) Uint(key string) (uint, error) {
	i, present, err := e.lookupInt(key)
	if err != nil {
		return 0, err
	}
	if !present {
		return 0, missingField(key)
	}
	if i < 0 {
		return 0, invalidField(key, "must not be negative, got %d", i)
	}
	return uint(i), nil
}

func (e XMLElement) OptionalUint(key string) (*uint, error) {
	if e.SelectElement(key) == nil {
		return nil, nil
	}
	u, err := e.Uint(key)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (e XMLElement) Float(key string) (float64, error) {
	s, present, err := e.lookupToken(key)
	if err != nil {
		return 0, err
	}
	if !present {
		return 0, missingField(key)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, invalidField(key, "expected a number, got %q", s)
	}
	return f, nil
}

func (e XMLElement) OptionalBool(key string) (*bool, error) {
	s, present, err := e.lookupToken(key)
	if err != nil || !present {
		return nil, err
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, invalidField(key, "expected a boolean, got %q", s)
	}
	return &b, nil
}

func (e XMLElement) DateTime(key string) (types.DateTime, error) {
	s, err := e.Text(key, 0)
	if err != nil {
		return types.DateTime{}, err
	}
	dt, err := types.ParseDateTime(s)
	if err != nil {
		return types.DateTime{}, invalidField(key, "%s", err)
	}
	return dt, nil
}

func (e XMLElement) OptionalDateTime(key string) (*types.DateTime, error) {
	if e.SelectElement(key) == nil {
		return nil, nil
	}
	dt, err := e.DateTime(key)
	if err != nil {
		return nil, err
	}
	return &dt, nil
}

func (e XMLElement) Child(tag string) (XMLElement, error) {
	child := e.SelectElement(tag)
	if child == nil {
		return XMLElement{}, missingField(tag)
	}
	return XMLElement{Element: child}, nil
}

func (e XMLElement) OptionalChild(tag string) (XMLElement, bool) {
	child := e.SelectElement(tag)
	if child == nil {
		return XMLElement{}, false
	}
	return XMLElement{Element: child}, true
}

func (e XMLElement) Children(tag string) []XMLElement {
	var out []XMLElement
	for _, child := range e.SelectElements(tag) {
		out = append(out, XMLElement{Element: child})
	}
	return out
}
