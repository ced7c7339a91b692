// Package ocpp holds the request/response envelope shared by every OCPP operation
// and the dual-format (JSON / SOAP-XML) codec contract built on top of it.
package ocpp

const (
	NamespaceChargePoint16   = "urn://Ocpp/Cp/2015/10/"
	NamespaceCentralSystem16 = "urn://Ocpp/Cs/2015/10/"
)

// Feature is implemented by every request and response payload.
type Feature interface {
	// GetFeatureName Returns the unique name of the feature, to which this payload belongs to.
	GetFeatureName() string
}

// RequestPayload binds a request payload to its one response payload type.
// A Response[P, R] can only be built when P declares R here, so the pairing is checked by the compiler.
type RequestPayload[R Feature] interface {
	Feature
	// EmptyResponse returns the zero response used by failed exchanges.
	EmptyResponse() R
}
