package signature

import (
	"crypto"
	"sync"

	"github.com/juju/errors"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// KeyRing is a trusted key set keyed by key id, safe for concurrent use.
type KeyRing struct {
	mu  sync.RWMutex
	set jwk.Set
}

func NewKeyRing() *KeyRing {
	return &KeyRing{set: jwk.NewSet()}
}

// ParseKeyRing reads a JWK set; every key must carry a "kid".
func ParseKeyRing(data []byte) (*KeyRing, error) {
	set, err := jwk.Parse(data)
	if err != nil {
		return nil, errors.Annotate(err, "parsing trusted key set")
	}
	for i := 0; i < set.Len(); i++ {
		key, _ := set.Key(i)
		if key.KeyID() == "" {
			return nil, errors.NotValidf("trusted key #%d without kid", i)
		}
	}
	return &KeyRing{set: set}, nil
}

// Add trusts pub under keyId, replacing a previous key with the same id.
func (k *KeyRing) Add(keyId string, pub crypto.PublicKey) error {
	if keyId == "" {
		return errors.NotValidf("empty key id")
	}
	key, err := jwk.FromRaw(pub)
	if err != nil {
		return errors.Annotatef(err, "importing key %q", keyId)
	}
	if err = key.Set(jwk.KeyIDKey, keyId); err != nil {
		return errors.Trace(err)
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if old, ok := k.set.LookupKeyID(keyId); ok {
		_ = k.set.RemoveKey(old)
	}
	return errors.Trace(k.set.AddKey(key))
}

func (k *KeyRing) Remove(keyId string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	key, ok := k.set.LookupKeyID(keyId)
	if !ok {
		return false
	}
	return k.set.RemoveKey(key) == nil
}

func (k *KeyRing) Lookup(keyId string) (crypto.PublicKey, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	key, ok := k.set.LookupKeyID(keyId)
	if !ok {
		return nil, false
	}
	var raw interface{}
	if err := key.Raw(&raw); err != nil {
		return nil, false
	}
	return raw, true
}

func (k *KeyRing) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.set.Len()
}
