package signature

import (
	"crypto"
	"fmt"
)

// Status is the outcome of checking a message's signatures.
type Status int

const (
	// Unsigned means the message carried no signatures at all.
	Unsigned Status = iota
	Verified
	Failed
)

func (s Status) String() string {
	switch s {
	case Unsigned:
		return "unsigned"
	case Verified:
		return "verified"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

type Policy int

const (
	// PolicyAll requires every present signature to verify against a trusted key.
	PolicyAll Policy = iota
	// PolicyAtLeastOne accepts a message once any one signature verifies.
	PolicyAtLeastOne
)

func ParsePolicy(s string) (Policy, bool) {
	switch s {
	case "", "all":
		return PolicyAll, true
	case "any", "at-least-one":
		return PolicyAtLeastOne, true
	}
	return PolicyAll, false
}

// TrustedKeys resolves a key reference to a public key.
type TrustedKeys interface {
	Lookup(keyId string) (crypto.PublicKey, bool)
}

// Verify checks sigs against canonical. Signatures whose key is not trusted count as invalid.
func Verify(canonical []byte, sigs []Signature, keys TrustedKeys, policy Policy) Status {
	if len(sigs) == 0 {
		return Unsigned
	}
	valid := 0
	for _, sig := range sigs {
		ok := false
		if keys != nil {
			if pub, found := keys.Lookup(sig.KeyId); found {
				ok = verifyOne(canonical, sig, pub)
			}
		}
		if ok {
			valid++
		} else if policy == PolicyAll {
			return Failed
		}
	}
	if valid == 0 {
		return Failed
	}
	return Verified
}
