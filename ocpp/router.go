package ocpp

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/juju/errors"

	"ocppmsg/signature"
)

// Handler answers one typed request. Returning a failed response or an error makes
// the router report a protocol error to the caller.
type Handler[P RequestPayload[R], R Feature] func(ctx context.Context, request *Request[P]) (*Response[P, R], error)

// Route is the type-erased binding of a codec to its handler, used by transports
// that only know the action name of an incoming message.
type Route interface {
	FeatureName() string
	ServeJSON(ctx context.Context, meta RequestMeta, payload JSONObject, verifier *Verifier) (JSONObject, error)
}

type route[P RequestPayload[R], R Feature] struct {
	codec   *Codec[P, R]
	handler Handler[P, R]
}

func NewRoute[P RequestPayload[R], R Feature](codec *Codec[P, R], handler Handler[P, R]) Route {
	return &route[P, R]{codec: codec, handler: handler}
}

func (r *route[P, R]) FeatureName() string {
	return r.codec.FeatureName()
}

func (r *route[P, R]) ServeJSON(ctx context.Context, meta RequestMeta, payload JSONObject, verifier *Verifier) (JSONObject, error) {
	request, err := r.codec.ParseRequestJSON(payload, meta)
	if err != nil {
		return nil, err
	}
	if verifier != nil {
		status := r.codec.VerifyRequest(request, FormatJSON, verifier.Keys, verifier.Policy)
		if verifier.Observe != nil {
			verifier.Observe(r.FeatureName(), status)
		}
		if status == signature.Failed || (status == signature.Unsigned && verifier.RequireSigned) {
			return nil, &SecurityError{Feature: r.FeatureName(), Status: status}
		}
	}
	response, err := r.handler(ctx, request)
	if err != nil {
		return nil, errors.Annotatef(err, "handling %s", r.FeatureName())
	}
	if response == nil {
		return nil, errors.Errorf("handler for %s returned no response", r.FeatureName())
	}
	if !response.IsSuccess() {
		return nil, &ResultError{Feature: r.FeatureName(), Result: response.Result()}
	}
	return r.codec.ResponseToJSON(response), nil
}

// Verifier configures signature checks of incoming requests.
type Verifier struct {
	Keys          signature.TrustedKeys
	Policy        signature.Policy
	RequireSigned bool
	Observe       func(feature string, status signature.Status)
}

// SecurityError is returned for requests whose signatures do not satisfy the verifier.
type SecurityError struct {
	Feature string
	Status  signature.Status
}

func (e *SecurityError) Error() string {
	return fmt.Sprintf("%s request signature check: %s", e.Feature, e.Status)
}

// ResultError carries the result of a response that did not succeed.
type ResultError struct {
	Feature string
	Result  Result
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("%s: %s", e.Feature, e.Result)
}

// ErrNotImplemented is returned by Dispatch for actions without a route.
var ErrNotImplemented = errors.New("action not implemented")

// Router maps action names to routes. It is safe for concurrent use.
type Router struct {
	mu       sync.RWMutex
	routes   map[string]Route
	verifier *Verifier
}

func NewRouter() *Router {
	return &Router{routes: make(map[string]Route)}
}

func (r *Router) Add(route Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[route.FeatureName()] = route
}

func (r *Router) SetVerifier(verifier *Verifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verifier = verifier
}

func (r *Router) Features() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.routes))
	for name := range r.routes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch decodes payload for action, runs its handler and returns the encoded response.
func (r *Router) Dispatch(ctx context.Context, action string, meta RequestMeta, payload JSONObject) (JSONObject, error) {
	r.mu.RLock()
	route, ok := r.routes[action]
	verifier := r.verifier
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Annotatef(ErrNotImplemented, "%s", action)
	}
	return route.ServeJSON(ctx, meta, payload, verifier)
}
