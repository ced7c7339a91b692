package ocpp

import (
	"crypto"
	"encoding/base64"
	"strconv"

	"github.com/juju/errors"

	"ocppmsg/signature"
	"ocppmsg/types"
)

func readCustomDataJSON(obj JSONObject) (*types.CustomData, error) {
	raw, err := obj.OptionalObject(customDataKey)
	if err != nil || raw == nil {
		return nil, err
	}
	customData, err := types.CustomDataFromMap(raw)
	if err != nil {
		return nil, invalidField(customDataKey, "%s", err)
	}
	return customData, nil
}

func readSignaturesJSON(obj JSONObject) ([]signature.Signature, error) {
	items, err := obj.Objects(signaturesKey)
	if err != nil || len(items) == 0 {
		return nil, err
	}
	sigs := make([]signature.Signature, 0, len(items))
	for i, item := range items {
		sig, err := readSignatureJSON(item)
		if err != nil {
			return nil, Nested(signaturesKey+"["+strconv.Itoa(i)+"]", err)
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}

func readSignatureJSON(obj JSONObject) (signature.Signature, error) {
	keyId, err := obj.Text("keyId", 0)
	if err != nil {
		return signature.Signature{}, err
	}
	encoded, err := obj.Text("value", 0)
	if err != nil {
		return signature.Signature{}, err
	}
	value, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return signature.Signature{}, invalidField("value", "not base64: %s", err)
	}
	method, err := Enum(obj, "signingMethod", signature.ParseMethod)
	if err != nil {
		return signature.Signature{}, err
	}
	customData, err := readCustomDataJSON(obj)
	if err != nil {
		return signature.Signature{}, err
	}
	return signature.Signature{KeyId: keyId, Value: value, SigningMethod: method, CustomData: customData}, nil
}

func writeSignaturesJSON(sigs []signature.Signature) []any {
	out := make([]any, 0, len(sigs))
	for _, sig := range sigs {
		obj := JSONObject{
			"keyId":         sig.KeyId,
			"value":         base64.StdEncoding.EncodeToString(sig.Value),
			"signingMethod": string(sig.SigningMethod),
		}
		if m := sig.CustomData.Map(); len(m) > 0 {
			obj[customDataKey] = m
		}
		out = append(out, map[string]any(obj))
	}
	return out
}

func canonicalJSON(obj JSONObject) ([]byte, error) {
	unsigned := obj.Clone()
	delete(unsigned, signaturesKey)
	return unsigned.Bytes()
}

// CanonicalRequest is the byte form signatures of request are computed over:
// sorted-key JSON without the signatures, or canonical XML of the SOAP body.
func (c *Codec[P, R]) CanonicalRequest(request *Request[P], format Format) ([]byte, error) {
	if format == FormatXML {
		return CanonicalXML(c.RequestToXML(request))
	}
	return canonicalJSON(c.RequestToJSON(request))
}

func (c *Codec[P, R]) CanonicalResponse(response *Response[P, R], format Format) ([]byte, error) {
	if format == FormatXML {
		return CanonicalXML(c.ResponseToXML(response))
	}
	return canonicalJSON(c.ResponseToJSON(response))
}

// SignRequest returns a copy of request with one more signature made by signer.
func (c *Codec[P, R]) SignRequest(request *Request[P], format Format, keyId string, signer crypto.Signer) (*Request[P], error) {
	canonical, err := c.CanonicalRequest(request, format)
	if err != nil {
		return nil, errors.Trace(err)
	}
	sig, err := signature.Sign(canonical, keyId, signer)
	if err != nil {
		return nil, errors.Annotatef(err, "signing %s request", c.feature)
	}
	return request.WithSignatures(sig), nil
}

func (c *Codec[P, R]) SignResponse(response *Response[P, R], format Format, keyId string, signer crypto.Signer) (*Response[P, R], error) {
	canonical, err := c.CanonicalResponse(response, format)
	if err != nil {
		return nil, errors.Trace(err)
	}
	sig, err := signature.Sign(canonical, keyId, signer)
	if err != nil {
		return nil, errors.Annotatef(err, "signing %s response", c.feature)
	}
	return response.WithSignatures(sig), nil
}

// VerifyRequest checks the signatures of request; it does not modify the request.
func (c *Codec[P, R]) VerifyRequest(request *Request[P], format Format, keys signature.TrustedKeys, policy signature.Policy) signature.Status {
	if !request.IsSigned() {
		return signature.Unsigned
	}
	canonical, err := c.CanonicalRequest(request, format)
	if err != nil {
		return signature.Failed
	}
	return signature.Verify(canonical, request.meta.signatures, keys, policy)
}

func (c *Codec[P, R]) VerifyResponse(response *Response[P, R], format Format, keys signature.TrustedKeys, policy signature.Policy) signature.Status {
	if !response.IsSigned() {
		return signature.Unsigned
	}
	canonical, err := c.CanonicalResponse(response, format)
	if err != nil {
		return signature.Failed
	}
	return signature.Verify(canonical, response.meta.signatures, keys, policy)
}
