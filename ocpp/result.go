package ocpp

import "fmt"

type ResultCode int

const (
	ResultOK ResultCode = iota
	ResultTimeout
	ResultTransportError
	ResultProtocolError
	ResultFormatError
)

func (c ResultCode) String() string {
	switch c {
	case ResultOK:
		return "OK"
	case ResultTimeout:
		return "Timeout"
	case ResultTransportError:
		return "TransportError"
	case ResultProtocolError:
		return "ProtocolError"
	case ResultFormatError:
		return "FormatError"
	}
	return fmt.Sprintf("ResultCode(%d)", int(c))
}

// Result is the outcome of an exchange carried by every Response. Payload fields of a
// response are only meaningful when IsSuccess reports true.
type Result struct {
	Code        ResultCode
	Status      int
	Description string
}

func OK() Result {
	return Result{Code: ResultOK, Status: 200}
}

func Timeout(description string) Result {
	return Result{Code: ResultTimeout, Status: 408, Description: description}
}

func TransportError(description string) Result {
	return Result{Code: ResultTransportError, Status: 503, Description: description}
}

func ProtocolError(status int, description string) Result {
	return Result{Code: ResultProtocolError, Status: status, Description: description}
}

func FormatErrorResult(description string) Result {
	return Result{Code: ResultFormatError, Status: 400, Description: description}
}

func (r Result) IsSuccess() bool {
	return r.Code == ResultOK
}

func (r Result) String() string {
	if r.Description == "" {
		return fmt.Sprintf("%s (%d)", r.Code, r.Status)
	}
	return fmt.Sprintf("%s (%d): %s", r.Code, r.Status, r.Description)
}
