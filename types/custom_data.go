package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const CustomDataVendorIdKey = "vendorId"

// CustomData is a vendor namespaced bag of extra fields. Its content is kept as a
// normalized JSON tree so that it survives decode/encode round trips untouched.
type CustomData struct {
	fields map[string]any
}

// NewCustomData builds a bag for vendorId. Values must be JSON encodable.
func NewCustomData(vendorId string, fields map[string]any) (*CustomData, error) {
	m := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		m[k] = v
	}
	if vendorId != "" {
		m[CustomDataVendorIdKey] = vendorId
	}
	return CustomDataFromMap(m)
}

// CustomDataFromMap normalizes an already decoded JSON object. Unknown keys are kept as is.
func CustomDataFromMap(m map[string]any) (*CustomData, error) {
	normalized, err := normalize(m)
	if err != nil {
		return nil, err
	}
	return &CustomData{fields: normalized}, nil
}

func normalize(m map[string]any) (map[string]any, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("custom data is not JSON encodable: %w", err)
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var out map[string]any
	if err = decoder.Decode(&out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

func (c *CustomData) VendorId() string {
	if c == nil {
		return ""
	}
	s, _ := c.fields[CustomDataVendorIdKey].(string)
	return s
}

func (c *CustomData) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.fields[key]
	return v, ok
}

func (c *CustomData) Len() int {
	if c == nil {
		return 0
	}
	return len(c.fields)
}

// Map returns a deep copy of the bag.
func (c *CustomData) Map() map[string]any {
	if c == nil {
		return nil
	}
	m, err := normalize(c.fields)
	if err != nil {
		// fields were normalized on construction
		panic(err)
	}
	return m
}

func (c *CustomData) canonical() []byte {
	if c == nil {
		return nil
	}
	data, _ := json.Marshal(c.fields)
	return data
}

func (c *CustomData) Equal(other *CustomData) bool {
	if c.Len() == 0 || other.Len() == 0 {
		return c.Len() == other.Len()
	}
	return bytes.Equal(c.canonical(), other.canonical())
}

func (c *CustomData) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	return json.Marshal(c.fields)
}
