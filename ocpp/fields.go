package ocpp

import "ocppmsg/types"

// FieldReader is implemented by JSONObject and XMLElement so that closed
// enumerations can be read the same way from both trees.
type FieldReader interface {
	lookupText(key string, maxLen int) (string, bool, error)
	// lookupToken reads a value that is not free text: enumerations, numbers, booleans.
	lookupToken(key string) (string, bool, error)
}

// Enum reads a mandatory enumeration value; values outside the closed set are a format error.
func Enum[E ~string](r FieldReader, key string, parse func(string) (E, bool)) (E, error) {
	var zero E
	s, present, err := r.lookupToken(key)
	if err != nil {
		return zero, err
	}
	if !present {
		return zero, missingField(key)
	}
	v, ok := parse(s)
	if !ok {
		return zero, invalidField(key, "%q is not a valid value", s)
	}
	return v, nil
}

// OptionalEnum returns the zero value when key is absent.
func OptionalEnum[E ~string](r FieldReader, key string, parse func(string) (E, bool)) (E, error) {
	var zero E
	s, present, err := r.lookupToken(key)
	if err != nil || !present {
		return zero, err
	}
	v, ok := parse(s)
	if !ok {
		return zero, invalidField(key, "%q is not a valid value", s)
	}
	return v, nil
}

// Fields is the flat field access shared by both trees. Payload readers written against
// Fields serve the JSON and the XML representation with the same code.
type Fields interface {
	FieldReader
	Text(key string, maxLen int) (string, error)
	OptionalText(key string, maxLen int) (string, error)
	Int(key string) (int, error)
	OptionalInt(key string) (*int, error)
	Uint(key string) (uint, error)
	OptionalUint(key string) (*uint, error)
	Float(key string) (float64, error)
	OptionalBool(key string) (*bool, error)
	DateTime(key string) (types.DateTime, error)
	OptionalDateTime(key string) (*types.DateTime, error)
}

var (
	_ Fields = JSONObject(nil)
	_ Fields = XMLElement{}
)
