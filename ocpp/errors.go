package ocpp

import "fmt"

// FormatError reports a tree that does not match the shape a message expects.
// Field holds the dotted path of the offending field, empty for whole-message problems.
type FormatError struct {
	Context string
	Field   string
	Reason  string
}

func (e *FormatError) Error() string {
	msg := e.Reason
	if e.Field != "" {
		msg = fmt.Sprintf("field %q: %s", e.Field, e.Reason)
	}
	if e.Context != "" {
		return e.Context + ": " + msg
	}
	return msg
}

func missingField(field string) *FormatError {
	return &FormatError{Field: field, Reason: "mandatory field is missing"}
}

func invalidField(field string, format string, args ...any) *FormatError {
	return &FormatError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// InvalidField is used by payload readers to reject values the generic readers accept,
// e.g. cross-field constraints.
func InvalidField(field string, format string, args ...any) error {
	return invalidField(field, format, args...)
}

// Nested prefixes the field path of a FormatError produced while reading a sub-object.
func Nested(parent string, err error) error {
	if err == nil {
		return nil
	}
	fe, ok := err.(*FormatError)
	if !ok {
		return err
	}
	nested := *fe
	if nested.Field == "" {
		nested.Field = parent
	} else {
		nested.Field = parent + "." + nested.Field
	}
	return &nested
}

func withContext(context string, err error) error {
	if err == nil {
		return nil
	}
	fe, ok := err.(*FormatError)
	if !ok {
		return &FormatError{Context: context, Reason: err.Error()}
	}
	out := *fe
	out.Context = context
	return &out
}
