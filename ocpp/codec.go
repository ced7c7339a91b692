package ocpp

import (
	"strings"
	"time"

	"github.com/beevik/etree"

	"ocppmsg/signature"
	"ocppmsg/types"
)

type Format int

const (
	FormatJSON Format = iota
	FormatXML
)

func (f Format) String() string {
	if f == FormatXML {
		return "xml"
	}
	return "json"
}

const (
	customDataKey = "customData"
	signaturesKey = "signatures"
)

// Schema describes the wire forms of one payload type. A nil reader or writer means
// the payload has no representation in that format.
type Schema[T Feature] struct {
	// Element is the SOAP body element name, e.g. authorizeRequest.
	Element   string
	Namespace string
	ReadJSON  func(JSONObject) (T, error)
	WriteJSON func(T) JSONObject
	ReadXML   func(XMLElement) (T, error)
	WriteXML  func(T, *etree.Element)
}

// RequestMeta is what the transport knows about an incoming request; the payload
// itself does not carry these values.
type RequestMeta struct {
	RequestId       RequestId
	NodeId          NodeId
	NetworkPath     NetworkPath
	EventTrackingId EventTrackingId
	Timestamp       time.Time
	Timeout         time.Duration
}

func (m RequestMeta) options() []Option {
	return []Option{
		WithRequestId(m.RequestId),
		WithNodeId(m.NodeId),
		WithNetworkPath(m.NetworkPath),
		WithEventTrackingId(m.EventTrackingId),
		WithTimestamp(m.Timestamp),
		WithTimeout(m.Timeout),
	}
}

// Codec implements parsing and serialization of one request/response pair in both formats.
// A Codec is immutable; the With... methods return configured copies.
type Codec[P RequestPayload[R], R Feature] struct {
	feature     string
	request     Schema[P]
	response    Schema[R]
	requestExt  Extension[P]
	responseExt Extension[R]
}

func NewCodec[P RequestPayload[R], R Feature](feature string, request Schema[P], response Schema[R]) *Codec[P, R] {
	return &Codec[P, R]{feature: feature, request: request, response: response}
}

func (c *Codec[P, R]) FeatureName() string {
	return c.feature
}

// WithRequestExtension returns a codec that runs ext after the base request parsing and serialization.
func (c *Codec[P, R]) WithRequestExtension(ext Extension[P]) *Codec[P, R] {
	out := *c
	out.requestExt = ext
	return &out
}

// WithResponseExtension returns a codec that runs ext after the base response parsing and serialization.
func (c *Codec[P, R]) WithResponseExtension(ext Extension[R]) *Codec[P, R] {
	out := *c
	out.responseExt = ext
	return &out
}

func (c *Codec[P, R]) requestContext() string {
	return c.feature + " request"
}

func (c *Codec[P, R]) responseContext() string {
	return c.feature + " response"
}

// Failed builds a response for a request whose exchange did not complete.
func (c *Codec[P, R]) Failed(request *Request[P], result Result) *Response[P, R] {
	return Failed[P, R](request, result)
}

// ParseRequestJSON decodes a request payload. It never panics on malformed input;
// every failure is a *FormatError naming the offending field.
func (c *Codec[P, R]) ParseRequestJSON(obj JSONObject, meta RequestMeta) (*Request[P], error) {
	payload, envelope, err := parseJSON(c.request, obj, c.requestExt)
	if err != nil {
		return nil, withContext(c.requestContext(), err)
	}
	return NewRequest(payload, append(meta.options(), envelope...)...), nil
}

// MustParseRequestJSON is ParseRequestJSON for callers that prefer to fail fast; it panics on error.
func (c *Codec[P, R]) MustParseRequestJSON(obj JSONObject, meta RequestMeta) *Request[P] {
	request, err := c.ParseRequestJSON(obj, meta)
	if err != nil {
		panic(err)
	}
	return request
}

func (c *Codec[P, R]) ParseRequestXML(el *etree.Element, meta RequestMeta) (*Request[P], error) {
	payload, err := parseXML(c.request, el, c.requestExt)
	if err != nil {
		return nil, withContext(c.requestContext(), err)
	}
	return NewRequest(payload, meta.options()...), nil
}

func (c *Codec[P, R]) MustParseRequestXML(el *etree.Element, meta RequestMeta) *Request[P] {
	request, err := c.ParseRequestXML(el, meta)
	if err != nil {
		panic(err)
	}
	return request
}

// ParseResponseJSON decodes the response to request.
func (c *Codec[P, R]) ParseResponseJSON(request *Request[P], obj JSONObject) (*Response[P, R], error) {
	payload, envelope, err := parseJSON(c.response, obj, c.responseExt)
	if err != nil {
		return nil, withContext(c.responseContext(), err)
	}
	return NewResponse(request, payload, envelope...), nil
}

func (c *Codec[P, R]) ParseResponseXML(request *Request[P], el *etree.Element) (*Response[P, R], error) {
	payload, err := parseXML(c.response, el, c.responseExt)
	if err != nil {
		return nil, withContext(c.responseContext(), err)
	}
	return NewResponse(request, payload), nil
}

// DecodeResponseJSON never fails: a malformed payload yields a failed response carrying a format error result.
func (c *Codec[P, R]) DecodeResponseJSON(request *Request[P], obj JSONObject) *Response[P, R] {
	response, err := c.ParseResponseJSON(request, obj)
	if err != nil {
		return c.Failed(request, FormatErrorResult(err.Error()))
	}
	return response
}

func (c *Codec[P, R]) DecodeResponseXML(request *Request[P], el *etree.Element) *Response[P, R] {
	response, err := c.ParseResponseXML(request, el)
	if err != nil {
		return c.Failed(request, FormatErrorResult(err.Error()))
	}
	return response
}

func (c *Codec[P, R]) RequestToJSON(request *Request[P]) JSONObject {
	return writeJSON(c.request, request.Payload(), request.CustomData(), request.meta.signatures, c.requestExt)
}

func (c *Codec[P, R]) ResponseToJSON(response *Response[P, R]) JSONObject {
	return writeJSON(c.response, response.Payload(), response.CustomData(), response.meta.signatures, c.responseExt)
}

// RequestToXML returns the SOAP body element; signatures and custom data have no XML channel.
func (c *Codec[P, R]) RequestToXML(request *Request[P]) *etree.Element {
	return writeXML(c.request, request.Payload(), c.requestExt)
}

func (c *Codec[P, R]) ResponseToXML(response *Response[P, R]) *etree.Element {
	return writeXML(c.response, response.Payload(), c.responseExt)
}

func parseJSON[T Feature](schema Schema[T], obj JSONObject, ext Extension[T]) (T, []Option, error) {
	var zero T
	if schema.ReadJSON == nil {
		return zero, nil, &FormatError{Reason: "message has no JSON representation"}
	}
	if obj == nil {
		return zero, nil, &FormatError{Reason: "missing payload"}
	}
	payload, err := schema.ReadJSON(obj)
	if err != nil {
		return zero, nil, err
	}
	customData, err := readCustomDataJSON(obj)
	if err != nil {
		return zero, nil, err
	}
	sigs, err := readSignaturesJSON(obj)
	if err != nil {
		return zero, nil, err
	}
	if ext != nil {
		payload = ext.AfterParseJSON(obj, payload)
	}
	return payload, []Option{WithCustomData(customData), WithSignatures(sigs...)}, nil
}

func parseXML[T Feature](schema Schema[T], el *etree.Element, ext Extension[T]) (T, error) {
	var zero T
	if schema.ReadXML == nil {
		return zero, &FormatError{Reason: "message has no XML representation"}
	}
	if el == nil {
		return zero, &FormatError{Reason: "missing payload"}
	}
	if !strings.EqualFold(el.Tag, schema.Element) {
		return zero, &FormatError{Reason: "unexpected element <" + el.Tag + ">, expected <" + schema.Element + ">"}
	}
	if ns := el.NamespaceURI(); ns != "" && schema.Namespace != "" && ns != schema.Namespace {
		return zero, &FormatError{Reason: "unexpected namespace " + ns}
	}
	payload, err := schema.ReadXML(XMLElement{Element: el})
	if err != nil {
		return zero, err
	}
	if ext != nil {
		payload = ext.AfterParseXML(XMLElement{Element: el}, payload)
	}
	return payload, nil
}

func writeJSON[T Feature](schema Schema[T], payload T, customData *types.CustomData, sigs []signature.Signature, ext Extension[T]) JSONObject {
	obj := JSONObject{}
	if schema.WriteJSON != nil {
		if written := schema.WriteJSON(payload); written != nil {
			obj = written
		}
	}
	if m := customData.Map(); len(m) > 0 {
		obj[customDataKey] = m
	}
	if len(sigs) > 0 {
		obj[signaturesKey] = writeSignaturesJSON(sigs)
	}
	if ext != nil {
		obj = ext.AfterSerializeJSON(payload, obj)
	}
	return obj
}

func writeXML[T Feature](schema Schema[T], payload T, ext Extension[T]) *etree.Element {
	el := NewXMLRoot(schema.Element, schema.Namespace)
	if schema.WriteXML != nil {
		schema.WriteXML(payload, el)
	}
	if ext != nil {
		el = ext.AfterSerializeXML(payload, el)
	}
	return el
}
