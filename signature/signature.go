// Package signature signs and verifies the canonical form of OCPP messages.
// It never looks at a message itself, only at the canonical bytes handed in by the codec.
package signature

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"

	"github.com/juju/errors"
	"github.com/lestrrat-go/jwx/v2/jwa"

	"ocppmsg/types"
)

// Method names the signature algorithm, using the JOSE algorithm identifiers.
type Method string

const (
	MethodES256 = Method(jwa.ES256)
	MethodEdDSA = Method(jwa.EdDSA)
	MethodRS256 = Method(jwa.RS256)
)

func ParseMethod(s string) (Method, bool) {
	switch Method(s) {
	case MethodES256, MethodEdDSA, MethodRS256:
		return Method(s), true
	}
	return "", false
}

// Signature is one entry of a message's ordered signature list.
type Signature struct {
	KeyId         string
	Value         []byte
	SigningMethod Method
	CustomData    *types.CustomData
}

func (s Signature) Equal(other Signature) bool {
	return s.KeyId == other.KeyId &&
		s.SigningMethod == other.SigningMethod &&
		bytes.Equal(s.Value, other.Value) &&
		s.CustomData.Equal(other.CustomData)
}

// MethodFor picks the signing method matching the type of a public key.
func MethodFor(pub crypto.PublicKey) (Method, error) {
	switch key := pub.(type) {
	case *ecdsa.PublicKey:
		if key.Curve.Params().Name != elliptic.P256().Params().Name {
			return "", errors.NotSupportedf("ECDSA curve %s", key.Curve.Params().Name)
		}
		return MethodES256, nil
	case ed25519.PublicKey:
		return MethodEdDSA, nil
	case *rsa.PublicKey:
		return MethodRS256, nil
	}
	return "", errors.NotSupportedf("public key type %T", pub)
}

// Sign signs canonical with signer and returns the signature referencing keyId.
func Sign(canonical []byte, keyId string, signer crypto.Signer) (Signature, error) {
	if keyId == "" {
		return Signature{}, errors.NotValidf("empty key id")
	}
	method, err := MethodFor(signer.Public())
	if err != nil {
		return Signature{}, errors.Trace(err)
	}
	var value []byte
	switch method {
	case MethodEdDSA:
		value, err = signer.Sign(rand.Reader, canonical, crypto.Hash(0))
	default:
		digest := sha256.Sum256(canonical)
		value, err = signer.Sign(rand.Reader, digest[:], crypto.SHA256)
	}
	if err != nil {
		return Signature{}, errors.Annotatef(err, "signing with key %q", keyId)
	}
	return Signature{KeyId: keyId, Value: value, SigningMethod: method}, nil
}

func verifyOne(canonical []byte, sig Signature, pub crypto.PublicKey) bool {
	expected, err := MethodFor(pub)
	if err != nil || expected != sig.SigningMethod || len(sig.Value) == 0 {
		return false
	}
	switch key := pub.(type) {
	case ed25519.PublicKey:
		return ed25519.Verify(key, canonical, sig.Value)
	case *ecdsa.PublicKey:
		digest := sha256.Sum256(canonical)
		return ecdsa.VerifyASN1(key, digest[:], sig.Value)
	case *rsa.PublicKey:
		digest := sha256.Sum256(canonical)
		return rsa.VerifyPKCS1v15(key, crypto.SHA256, digest[:], sig.Value) == nil
	}
	return false
}
