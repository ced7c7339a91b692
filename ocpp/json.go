package ocpp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"ocppmsg/types"
)

// JSONObject is the JSON tree a message is read from and written to.
type JSONObject map[string]any

// ParseJSON decodes a JSON object keeping numbers as json.Number.
func ParseJSON(data []byte) (JSONObject, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var v any
	if err := decoder.Decode(&v); err != nil {
		return nil, &FormatError{Reason: fmt.Sprintf("malformed JSON: %s", err)}
	}
	obj, ok := asObject(v)
	if !ok {
		return nil, &FormatError{Reason: "JSON payload is not an object"}
	}
	return obj, nil
}

// Bytes encodes the object; keys are written in sorted order, which makes the output canonical.
func (o JSONObject) Bytes() ([]byte, error) {
	return json.Marshal(map[string]any(o))
}

func (o JSONObject) String() string {
	data, err := o.Bytes()
	if err != nil {
		return fmt.Sprintf("<invalid json: %s>", err)
	}
	return string(data)
}

// Clone returns a shallow copy; nested values are shared.
func (o JSONObject) Clone() JSONObject {
	out := make(JSONObject, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// PutOptional sets key only when value is not empty.
func (o JSONObject) PutOptional(key string, value string) {
	if value != "" {
		o[key] = value
	}
}

func asObject(v any) (JSONObject, bool) {
	switch obj := v.(type) {
	case JSONObject:
		return obj, true
	case map[string]any:
		return obj, true
	}
	return nil, false
}

func (o JSONObject) lookupText(key string, maxLen int) (string, bool, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", true, invalidField(key, "expected a string, got %T", v)
	}
	if maxLen > 0 && utf8.RuneCountInString(s) > maxLen {
		return "", true, invalidField(key, "longer than %d characters", maxLen)
	}
	return s, true, nil
}

func (o JSONObject) lookupToken(key string) (string, bool, error) {
	return o.lookupText(key, 0)
}

// Text reads a mandatory string; maxLen <= 0 means unbounded.
func (o JSONObject) Text(key string, maxLen int) (string, error) {
	s, present, err := o.lookupText(key, maxLen)
	if err != nil {
		return "", err
	}
	if !present {
		return "", missingField(key)
	}
	return s, nil
}

func (o JSONObject) OptionalText(key string, maxLen int) (string, error) {
	s, _, err := o.lookupText(key, maxLen)
	return s, err
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if !strings.ContainsAny(string(n), ".eE") {
			return 0, false
		}
		f, err := n.Float64()
		if err != nil || !fitsInt64(f) {
			return 0, false
		}
		return int64(f), true
	case float64:
		if !fitsInt64(n) {
			return 0, false
		}
		return int64(n), true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint32:
		return int64(n), true
	}
	return 0, false
}

// fitsInt64 reports whether f is a whole number in the int64 range; float64(math.MaxInt64)
// rounds up to 2^63, so the upper bound is exclusive.
func fitsInt64(f float64) bool {
	return f == math.Trunc(f) && f >= -(1<<63) && f < 1<<63
}

// toInt narrows a wire integer to int, rejecting values int cannot hold.
func toInt(key string, i int64) (int, error) {
	if i < math.MinInt || i > math.MaxInt {
		return 0, invalidField(key, "%d is out of range", i)
	}
	return int(i), nil
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	i, ok := toInt64(v)
	return float64(i), ok
}

func (o JSONObject) lookupInt(key string) (int64, bool, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	i, ok := toInt64(v)
	if !ok {
		return 0, true, invalidField(key, "expected an integer, got %v", v)
	}
	return i, true, nil
}

func (o JSONObject) Int(key string) (int, error) {
	i, present, err := o.lookupInt(key)
	if err != nil {
		return 0, err
	}
	if !present {
		return 0, missingField(key)
	}
	return toInt(key, i)
}

func (o JSONObject) OptionalInt(key string) (*int, error) {
	i, present, err := o.lookupInt(key)
	if err != nil || !present {
		return nil, err
	}
	n, err := toInt(key, i)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Uint reads a logically unsigned integer; negative wire values are rejected.
func (o JSONObject) Uint(key string) (uint, error) {
	i, present, err := o.lookupInt(key)
	if err != nil {
		return 0, err
	}
	if !present {
		return 0, missingField(key)
	}
	if i < 0 {
		return 0, invalidField(key, "must not be negative, got %d", i)
	}
	return uint(i), nil
}

func (o JSONObject) OptionalUint(key string) (*uint, error) {
	if v, ok := o[key]; !ok || v == nil {
		return nil, nil
	}
	u, err := o.Uint(key)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (o JSONObject) Float(key string) (float64, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return 0, missingField(key)
	}
	f, ok := toFloat64(v)
	if !ok {
		return 0, invalidField(key, "expected a number, got %v", v)
	}
	return f, nil
}

func (o JSONObject) OptionalBool(key string) (*bool, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return nil, nil
	}
	b, ok := v.(bool)
	if !ok {
		return nil, invalidField(key, "expected a boolean, got %v", v)
	}
	return &b, nil
}

func (o JSONObject) DateTime(key string) (types.DateTime, error) {
	s, err := o.Text(key, 0)
	if err != nil {
		return types.DateTime{}, err
	}
	dt, err := types.ParseDateTime(s)
	if err != nil {
		return types.DateTime{}, invalidField(key, "%s", err)
	}
	return dt, nil
}

func (o JSONObject) OptionalDateTime(key string) (*types.DateTime, error) {
	if v, ok := o[key]; !ok || v == nil {
		return nil, nil
	}
	dt, err := o.DateTime(key)
	if err != nil {
		return nil, err
	}
	return &dt, nil
}

func (o JSONObject) Object(key string) (JSONObject, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return nil, missingField(key)
	}
	obj, ok := asObject(v)
	if !ok {
		return nil, invalidField(key, "expected an object, got %T", v)
	}
	return obj, nil
}

func (o JSONObject) OptionalObject(key string) (JSONObject, error) {
	if v, ok := o[key]; !ok || v == nil {
		return nil, nil
	}
	return o.Object(key)
}

// Array reads a mandatory array holding at least one element.
func (o JSONObject) Array(key string) ([]any, error) {
	arr, err := o.OptionalArray(key)
	if err != nil {
		return nil, err
	}
	if len(arr) == 0 {
		return nil, missingField(key)
	}
	return arr, nil
}

func (o JSONObject) OptionalArray(key string) ([]any, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch arr := v.(type) {
	case []any:
		return arr, nil
	case []JSONObject:
		out := make([]any, len(arr))
		for i := range arr {
			out[i] = arr[i]
		}
		return out, nil
	}
	return nil, invalidField(key, "expected an array, got %T", v)
}

// Objects reads an optional array of objects, reporting element errors as key[i].field.
func (o JSONObject) Objects(key string) ([]JSONObject, error) {
	arr, err := o.OptionalArray(key)
	if err != nil {
		return nil, err
	}
	out := make([]JSONObject, 0, len(arr))
	for i, v := range arr {
		obj, ok := asObject(v)
		if !ok {
			return nil, invalidField(key+"["+strconv.Itoa(i)+"]", "expected an object, got %T", v)
		}
		out = append(out, obj)
	}
	return out, nil
}
