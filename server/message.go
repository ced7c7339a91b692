package server

import (
	"encoding/json"
	"fmt"

	"github.com/juju/errors"

	"ocppmsg/ocpp"
)

type CallType int

const (
	CallTypeRequest CallType = 2
	CallTypeResult  CallType = 3
	CallTypeError   CallType = 4
)

type ErrorCode string

const (
	NotImplemented                ErrorCode = "NotImplemented"
	NotSupported                  ErrorCode = "NotSupported"
	InternalError                 ErrorCode = "InternalError"
	ProtocolError                 ErrorCode = "ProtocolError"
	SecurityError                 ErrorCode = "SecurityError"
	FormationViolation            ErrorCode = "FormationViolation"
	PropertyConstraintViolation   ErrorCode = "PropertyConstraintViolation"
	OccurrenceConstraintViolation ErrorCode = "OccurenceConstraintViolation"
	TypeConstraintViolation       ErrorCode = "TypeConstraintViolation"
	GenericError                  ErrorCode = "GenericError"
)

// CallRequest An OCPP-J Call message, containing an OCPP Request.
type CallRequest struct {
	UniqueId string
	Action   string
	Payload  ocpp.JSONObject
}

func (c *CallRequest) MarshalJSON() ([]byte, error) {
	payload := c.Payload
	if payload == nil {
		payload = ocpp.JSONObject{}
	}
	return json.Marshal([]any{int(CallTypeRequest), c.UniqueId, c.Action, payload})
}

// CallResult An OCPP-J CallResult message, containing an OCPP Response.
type CallResult struct {
	UniqueId string
	Payload  ocpp.JSONObject
}

func (c *CallResult) MarshalJSON() ([]byte, error) {
	payload := c.Payload
	if payload == nil {
		payload = ocpp.JSONObject{}
	}
	return json.Marshal([]any{int(CallTypeResult), c.UniqueId, payload})
}

// CallError An OCPP-J CallError message.
type CallError struct {
	UniqueId         string
	ErrorCode        ErrorCode
	ErrorDescription string
	ErrorDetails     ocpp.JSONObject
}

func (c *CallError) MarshalJSON() ([]byte, error) {
	details := c.ErrorDetails
	if details == nil {
		details = ocpp.JSONObject{}
	}
	return json.Marshal([]any{int(CallTypeError), c.UniqueId, string(c.ErrorCode), c.ErrorDescription, details})
}

func (c *CallError) Error() string {
	return fmt.Sprintf("%s: %s", c.ErrorCode, c.ErrorDescription)
}

// FrameError reports a message that is not a valid OCPP-J frame. UniqueId is set
// when it could be read, so that the sender can still be answered. A broken reply
// is never answered; it fails the call it belongs to.
type FrameError struct {
	UniqueId string
	Reason   string
	IsReply  bool
}

func (e *FrameError) Error() string {
	return "invalid frame: " + e.Reason
}

// ParseMessage decodes one OCPP-J frame into *CallRequest, *CallResult or *CallError.
func ParseMessage(data []byte) (any, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &FrameError{Reason: "message is not a JSON array"}
	}
	if len(fields) < 3 {
		return nil, &FrameError{Reason: fmt.Sprintf("expected at least 3 elements, got %d", len(fields))}
	}
	var typeId int
	if err := json.Unmarshal(fields[0], &typeId); err != nil {
		return nil, &FrameError{Reason: "invalid message type"}
	}
	var uniqueId string
	if err := json.Unmarshal(fields[1], &uniqueId); err != nil || uniqueId == "" {
		return nil, &FrameError{Reason: "invalid message unique id"}
	}
	switch CallType(typeId) {
	case CallTypeRequest:
		if len(fields) != 4 {
			return nil, &FrameError{UniqueId: uniqueId, Reason: "call must have 4 elements"}
		}
		var action string
		if err := json.Unmarshal(fields[2], &action); err != nil || action == "" {
			return nil, &FrameError{UniqueId: uniqueId, Reason: "invalid action"}
		}
		payload, err := parsePayload(fields[3])
		if err != nil {
			return nil, &FrameError{UniqueId: uniqueId, Reason: err.Error()}
		}
		return &CallRequest{UniqueId: uniqueId, Action: action, Payload: payload}, nil
	case CallTypeResult:
		payload, err := parsePayload(fields[2])
		if err != nil {
			return nil, &FrameError{UniqueId: uniqueId, Reason: err.Error(), IsReply: true}
		}
		return &CallResult{UniqueId: uniqueId, Payload: payload}, nil
	case CallTypeError:
		if len(fields) < 4 {
			return nil, &FrameError{UniqueId: uniqueId, Reason: "call error must have at least 4 elements", IsReply: true}
		}
		callError := &CallError{UniqueId: uniqueId}
		var code string
		if err := json.Unmarshal(fields[2], &code); err != nil {
			return nil, &FrameError{UniqueId: uniqueId, Reason: "invalid error code", IsReply: true}
		}
		callError.ErrorCode = ErrorCode(code)
		if err := json.Unmarshal(fields[3], &callError.ErrorDescription); err != nil {
			return nil, &FrameError{UniqueId: uniqueId, Reason: "invalid error description", IsReply: true}
		}
		if len(fields) > 4 {
			details, err := parsePayload(fields[4])
			if err != nil {
				return nil, &FrameError{UniqueId: uniqueId, Reason: "invalid error details: " + err.Error(), IsReply: true}
			}
			callError.ErrorDetails = details
		}
		return callError, nil
	}
	return nil, &FrameError{UniqueId: uniqueId, Reason: fmt.Sprintf("invalid message type id: %d", typeId)}
}

func parsePayload(raw json.RawMessage) (ocpp.JSONObject, error) {
	if string(raw) == "null" {
		return ocpp.JSONObject{}, nil
	}
	return ocpp.ParseJSON(raw)
}

// callErrorFor maps a dispatch error to the CALLERROR answered to the charge point.
func callErrorFor(uniqueId string, err error) *CallError {
	callError := &CallError{UniqueId: uniqueId, ErrorCode: InternalError, ErrorDescription: err.Error()}
	var formatError *ocpp.FormatError
	var securityError *ocpp.SecurityError
	var resultError *ocpp.ResultError
	var frameError *FrameError
	switch {
	case errors.Is(err, ocpp.ErrNotImplemented):
		callError.ErrorCode = NotImplemented
	case errors.As(err, &frameError):
		callError.ErrorCode = FormationViolation
	case errors.As(err, &formatError):
		callError.ErrorCode = FormationViolation
		if formatError.Field != "" {
			callError.ErrorCode = PropertyConstraintViolation
			callError.ErrorDetails = ocpp.JSONObject{"field": formatError.Field}
		}
	case errors.As(err, &securityError):
		callError.ErrorCode = SecurityError
	case errors.As(err, &resultError):
		callError.ErrorCode = ProtocolError
		callError.ErrorDescription = resultError.Result.Description
	}
	return callError
}
