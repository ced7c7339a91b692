package server

import (
	"encoding/json"

	"github.com/juju/errors"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"ocppmsg/ocpp"
	"ocppmsg/signature"
)

type messageSuite struct{}

var _ = gc.Suite(&messageSuite{})

func (*messageSuite) TestParseCall(c *gc.C) {
	message, err := ParseMessage([]byte(`[2,"19223201","BootNotification",{"chargePointVendor":"Acme","chargePointModel":"X1"}]`))
	c.Assert(err, jc.ErrorIsNil)
	call, ok := message.(*CallRequest)
	c.Assert(ok, jc.IsTrue)
	c.Check(call.UniqueId, gc.Equals, "19223201")
	c.Check(call.Action, gc.Equals, "BootNotification")
	c.Check(call.Payload["chargePointVendor"], gc.Equals, "Acme")
}

func (*messageSuite) TestParseResult(c *gc.C) {
	message, err := ParseMessage([]byte(`[3,"19223201",null]`))
	c.Assert(err, jc.ErrorIsNil)
	result, ok := message.(*CallResult)
	c.Assert(ok, jc.IsTrue)
	c.Check(result.Payload, jc.DeepEquals, ocpp.JSONObject{})
}

func (*messageSuite) TestParseError(c *gc.C) {
	message, err := ParseMessage([]byte(`[4,"7","NotSupported","no reset here",{"reason":"x"}]`))
	c.Assert(err, jc.ErrorIsNil)
	callError, ok := message.(*CallError)
	c.Assert(ok, jc.IsTrue)
	c.Check(callError.ErrorCode, gc.Equals, NotSupported)
	c.Check(callError.ErrorDescription, gc.Equals, "no reset here")
	c.Check(callError.ErrorDetails["reason"], gc.Equals, "x")
	c.Check(callError.Error(), gc.Equals, "NotSupported: no reset here")
}

func (*messageSuite) TestFrameErrors(c *gc.C) {
	for _, test := range []struct {
		input    string
		uniqueId string
		err      string
	}{
		{`{"a":1}`, "", "invalid frame: message is not a JSON array"},
		{`[2,"1"]`, "", "invalid frame: expected at least 3 elements, got 2"},
		{`["2","1",{}]`, "", "invalid frame: invalid message type"},
		{`[2,"",{}]`, "", "invalid frame: invalid message unique id"},
		{`[2,"1","Heartbeat"]`, "1", "invalid frame: call must have 4 elements"},
		{`[2,"1","",{}]`, "1", "invalid frame: invalid action"},
		{`[2,"1","Heartbeat",[]]`, "1", "invalid frame: JSON payload is not an object"},
		{`[5,"1",{}]`, "1", "invalid frame: invalid message type id: 5"},
	} {
		_, err := ParseMessage([]byte(test.input))
		c.Check(err, gc.ErrorMatches, test.err, gc.Commentf("%s", test.input))
		frameError, ok := err.(*FrameError)
		c.Assert(ok, jc.IsTrue)
		c.Check(frameError.UniqueId, gc.Equals, test.uniqueId)
		c.Check(frameError.IsReply, jc.IsFalse)
	}
}

func (*messageSuite) TestReplyFrameErrors(c *gc.C) {
	for _, test := range []struct {
		input string
		err   string
	}{
		{`[3,"1",[]]`, "invalid frame: JSON payload is not an object"},
		{`[4,"1","NotSupported"]`, "invalid frame: call error must have at least 4 elements"},
		{`[4,"1",7,"x",{}]`, "invalid frame: invalid error code"},
		{`[4,"1","NotSupported",5,{}]`, "invalid frame: invalid error description"},
		{`[4,"1","NotSupported","x",[1]]`, "invalid frame: invalid error details: JSON payload is not an object"},
	} {
		_, err := ParseMessage([]byte(test.input))
		c.Check(err, gc.ErrorMatches, test.err, gc.Commentf("%s", test.input))
		frameError, ok := err.(*FrameError)
		c.Assert(ok, jc.IsTrue)
		c.Check(frameError.UniqueId, gc.Equals, "1")
		c.Check(frameError.IsReply, jc.IsTrue)
	}
}

func (*messageSuite) TestMarshal(c *gc.C) {
	for _, test := range []struct {
		frame    json.Marshaler
		expected string
	}{
		{&CallRequest{UniqueId: "1", Action: "Heartbeat"}, `[2,"1","Heartbeat",{}]`},
		{&CallResult{UniqueId: "1", Payload: ocpp.JSONObject{"status": "Accepted"}}, `[3,"1",{"status":"Accepted"}]`},
		{&CallError{UniqueId: "1", ErrorCode: NotImplemented, ErrorDescription: "x"}, `[4,"1","NotImplemented","x",{}]`},
	} {
		data, err := json.Marshal(test.frame)
		c.Assert(err, jc.ErrorIsNil)
		c.Check(string(data), gc.Equals, test.expected)
	}
}

func (*messageSuite) TestCallErrorFor(c *gc.C) {
	for _, test := range []struct {
		err     error
		code    ErrorCode
		details ocpp.JSONObject
	}{
		{errors.Annotate(ocpp.ErrNotImplemented, "Foo"), NotImplemented, nil},
		{&FrameError{UniqueId: "1", Reason: "bad"}, FormationViolation, nil},
		{&ocpp.FormatError{Reason: "missing payload"}, FormationViolation, nil},
		{&ocpp.FormatError{Field: "idTag", Reason: "too long"}, PropertyConstraintViolation, ocpp.JSONObject{"field": "idTag"}},
		{&ocpp.SecurityError{Feature: "Authorize", Status: signature.Failed}, SecurityError, nil},
		{errors.Annotate(&ocpp.ResultError{Feature: "Authorize", Result: ocpp.Timeout("slow")}, "handling"), ProtocolError, nil},
		{errors.New("boom"), InternalError, nil},
	} {
		callError := callErrorFor("u1", test.err)
		c.Check(callError.UniqueId, gc.Equals, "u1")
		c.Check(callError.ErrorCode, gc.Equals, test.code, gc.Commentf("%v", test.err))
		c.Check(callError.ErrorDetails, jc.DeepEquals, test.details)
	}
	c.Check(callErrorFor("u1", &ocpp.ResultError{Result: ocpp.Timeout("slow")}).ErrorDescription, gc.Equals, "slow")
}
