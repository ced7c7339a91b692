package ocpp

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"ocppmsg/signature"
	"ocppmsg/types"
)

type options struct {
	requestId       RequestId
	eventTrackingId EventTrackingId
	nodeId          NodeId
	networkPath     NetworkPath
	timestamp       time.Time
	timeout         time.Duration
	signatures      []signature.Signature
	customData      *types.CustomData
}

// Option sets envelope metadata. Correlation options (request id, event tracking id,
// node id, network path, timeout) are ignored by responses, which take them from their request.
type Option func(*options)

func WithRequestId(id RequestId) Option {
	return func(o *options) { o.requestId = id }
}

func WithEventTrackingId(id EventTrackingId) Option {
	return func(o *options) { o.eventTrackingId = id }
}

func WithNodeId(id NodeId) Option {
	return func(o *options) { o.nodeId = id }
}

func WithNetworkPath(path NetworkPath) Option {
	return func(o *options) { o.networkPath = path }
}

func WithTimestamp(t time.Time) Option {
	return func(o *options) { o.timestamp = t }
}

func WithTimeout(timeout time.Duration) Option {
	return func(o *options) { o.timeout = timeout }
}

func WithSignatures(sigs ...signature.Signature) Option {
	return func(o *options) { o.signatures = append(o.signatures, sigs...) }
}

func WithCustomData(data *types.CustomData) Option {
	return func(o *options) { o.customData = data }
}

func applyOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.requestId == "" {
		o.requestId = NewRequestId()
	}
	if o.eventTrackingId == "" {
		o.eventTrackingId = NewEventTrackingId()
	}
	if o.timestamp.IsZero() {
		o.timestamp = time.Now()
	}
	o.timestamp = o.timestamp.UTC()
	return o
}

func copySignatures(sigs []signature.Signature) []signature.Signature {
	if len(sigs) == 0 {
		return nil
	}
	out := make([]signature.Signature, len(sigs))
	copy(out, sigs)
	return out
}

// Request is the envelope around a request payload. It is immutable once built.
type Request[P Feature] struct {
	payload P
	meta    options
}

// NewRequest wraps payload; every correlation field not given by an option gets a fresh default.
func NewRequest[P Feature](payload P, opts ...Option) *Request[P] {
	meta := applyOptions(opts)
	meta.signatures = copySignatures(meta.signatures)
	return &Request[P]{payload: payload, meta: meta}
}

func (r *Request[P]) Payload() P {
	return r.payload
}

func (r *Request[P]) FeatureName() string {
	return r.payload.GetFeatureName()
}

func (r *Request[P]) RequestId() RequestId {
	return r.meta.requestId
}

func (r *Request[P]) EventTrackingId() EventTrackingId {
	return r.meta.eventTrackingId
}

// NodeId is the sending charge box or networking node.
func (r *Request[P]) NodeId() NodeId {
	return r.meta.nodeId
}

func (r *Request[P]) NetworkPath() NetworkPath {
	return r.meta.networkPath
}

func (r *Request[P]) Timestamp() time.Time {
	return r.meta.timestamp
}

// Timeout is transport metadata; zero means the transport default.
func (r *Request[P]) Timeout() time.Duration {
	return r.meta.timeout
}

func (r *Request[P]) Signatures() []signature.Signature {
	return copySignatures(r.meta.signatures)
}

func (r *Request[P]) IsSigned() bool {
	return len(r.meta.signatures) > 0
}

func (r *Request[P]) CustomData() *types.CustomData {
	return r.meta.customData
}

// WithSignatures returns a copy of the request with sigs appended after the existing ones.
func (r *Request[P]) WithSignatures(sigs ...signature.Signature) *Request[P] {
	meta := r.meta
	meta.signatures = append(copySignatures(r.meta.signatures), sigs...)
	return &Request[P]{payload: r.payload, meta: meta}
}

// Equal compares payload and custom data only; correlation metadata and signatures are ignored,
// so two different exchanges carrying the same payload are equal.
func (r *Request[P]) Equal(other *Request[P]) bool {
	if r == nil || other == nil {
		return r == other
	}
	return payloadsEqual(r.payload, other.payload) && r.meta.customData.Equal(other.meta.customData)
}

// payloadsEqual treats nil and empty lists as the same value; the wire formats cannot tell them apart.
func payloadsEqual(a, b any) bool {
	return cmp.Equal(a, b, cmpopts.EquateEmpty())
}

// Hash is consistent with Equal.
func (r *Request[P]) Hash() uint64 {
	return hashOf(r.payload, r.meta.customData, "")
}

func hashOf(payload any, customData *types.CustomData, extra string) uint64 {
	d := xxhash.New()
	_, _ = d.Write(hashableJSON(payload))
	_, _ = d.Write([]byte{0})
	if customData.Len() > 0 {
		data, _ := json.Marshal(customData)
		_, _ = d.Write(data)
	}
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(extra)
	return d.Sum64()
}

// hashableJSON drops null values and empty lists or objects, so payloads equal under
// payloadsEqual produce the same bytes.
func hashableJSON(payload any) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var tree any
	if err := decoder.Decode(&tree); err != nil {
		return data
	}
	normalized, err := json.Marshal(dropEmpty(tree))
	if err != nil {
		return data
	}
	return normalized
}

func dropEmpty(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for key, item := range t {
			item = dropEmpty(item)
			if isEmptyJSON(item) {
				delete(t, key)
				continue
			}
			t[key] = item
		}
		return t
	case []any:
		for i, item := range t {
			item = dropEmpty(item)
			if isEmptyJSON(item) {
				item = nil
			}
			t[i] = item
		}
		return t
	}
	return v
}

func isEmptyJSON(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}

// Response is the envelope around a response payload; it always refers to the request it answers.
type Response[P RequestPayload[R], R Feature] struct {
	request *Request[P]
	payload R
	result  Result
	meta    options
}

// NewResponse builds a successful response. R must be the response type declared by P.
func NewResponse[P RequestPayload[R], R Feature](request *Request[P], payload R, opts ...Option) *Response[P, R] {
	return newResponse(request, payload, OK(), opts)
}

// Failed builds a response for an exchange that did not complete; its payload is the
// zero response and must not be read.
func Failed[P RequestPayload[R], R Feature](request *Request[P], result Result) *Response[P, R] {
	return newResponse(request, request.Payload().EmptyResponse(), result, nil)
}

func newResponse[P RequestPayload[R], R Feature](request *Request[P], payload R, result Result, opts []Option) *Response[P, R] {
	if request == nil {
		panic("ocpp: a response requires the request it answers")
	}
	meta := applyOptions(opts)
	meta.signatures = copySignatures(meta.signatures)
	return &Response[P, R]{request: request, payload: payload, result: result, meta: meta}
}

func (r *Response[P, R]) Request() *Request[P] {
	return r.request
}

func (r *Response[P, R]) Payload() R {
	return r.payload
}

func (r *Response[P, R]) Result() Result {
	return r.result
}

func (r *Response[P, R]) IsSuccess() bool {
	return r.result.IsSuccess()
}

func (r *Response[P, R]) FeatureName() string {
	return r.request.FeatureName()
}

func (r *Response[P, R]) RequestId() RequestId {
	return r.request.RequestId()
}

func (r *Response[P, R]) EventTrackingId() EventTrackingId {
	return r.request.EventTrackingId()
}

// NodeId is the node the response is addressed to, i.e. the sender of the request.
func (r *Response[P, R]) NodeId() NodeId {
	return r.request.NodeId()
}

// NetworkPath is the request path reversed.
func (r *Response[P, R]) NetworkPath() NetworkPath {
	return r.request.NetworkPath().Reverse()
}

func (r *Response[P, R]) Timestamp() time.Time {
	return r.meta.timestamp
}

func (r *Response[P, R]) Signatures() []signature.Signature {
	return copySignatures(r.meta.signatures)
}

func (r *Response[P, R]) IsSigned() bool {
	return len(r.meta.signatures) > 0
}

func (r *Response[P, R]) CustomData() *types.CustomData {
	return r.meta.customData
}

func (r *Response[P, R]) WithSignatures(sigs ...signature.Signature) *Response[P, R] {
	meta := r.meta
	meta.signatures = append(copySignatures(r.meta.signatures), sigs...)
	return &Response[P, R]{request: r.request, payload: r.payload, result: r.result, meta: meta}
}

// Equal compares result code, payload and custom data.
func (r *Response[P, R]) Equal(other *Response[P, R]) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.result.Code == other.result.Code &&
		payloadsEqual(r.payload, other.payload) &&
		r.meta.customData.Equal(other.meta.customData)
}

func (r *Response[P, R]) Hash() uint64 {
	return hashOf(r.payload, r.meta.customData, r.result.Code.String())
}
