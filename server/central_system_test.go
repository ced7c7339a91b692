package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/juju/errors"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"ocppmsg/handlers"
	"ocppmsg/internal"
	"ocppmsg/ocpp"
	"ocppmsg/ocpp/core"
	"ocppmsg/ocpp/localauth"
	"ocppmsg/types"
)

// fakeSender plays the charge point: every call sent to it is answered by reply, if set.
type fakeSender struct {
	mu    sync.Mutex
	calls []*CallRequest
	err   error
	reply func(call *CallRequest) string
	cs    *CentralSystem
	conn  *fakeConn
	// intruder, if set, answers every call before conn does.
	intruder *fakeConn
}

func (s *fakeSender) Send(id ocpp.NodeId, frame json.Marshaler) error {
	if s.err != nil {
		return s.err
	}
	call := frame.(*CallRequest)
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
	if s.reply != nil {
		answer := s.reply(call)
		go func() {
			if s.intruder != nil {
				_ = s.cs.handleIncomingMessage(s.intruder, []byte(strings.Replace(answer, "Accepted", "Rejected", 1)))
			}
			_ = s.cs.handleIncomingMessage(s.conn, []byte(answer))
		}()
	}
	return nil
}

func (s *fakeSender) Calls() []*CallRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*CallRequest(nil), s.calls...)
}

type centralSystemSuite struct {
	logger  *stubLogger
	handler *internal.SystemHandler
	sender  *fakeSender
	conn    *fakeConn
	cs      *CentralSystem
}

var _ = gc.Suite(&centralSystemSuite{})

func (s *centralSystemSuite) SetUpTest(c *gc.C) {
	s.logger = &stubLogger{}
	s.handler = internal.NewSystemHandler(s.logger)
	router := ocpp.NewRouter()
	handlers.Register(router, s.handler)

	s.conn = &fakeConn{id: "cp-1"}
	s.sender = &fakeSender{conn: s.conn}
	s.cs = newCentralSystem(router, s.sender, s.logger)
	s.cs.SetRemoteTriggerHandler(s.handler)
	s.cs.SetLocalAuthHandler(s.handler)
	s.sender.cs = s.cs
}

func (s *centralSystemSuite) call(c *gc.C, frame string) string {
	before := len(s.conn.Frames())
	c.Assert(s.cs.handleIncomingMessage(s.conn, []byte(frame)), jc.ErrorIsNil)
	frames := s.conn.Frames()
	c.Assert(frames, gc.HasLen, before+1)
	return frames[before]
}

func (s *centralSystemSuite) boot(c *gc.C) {
	answer := s.call(c, `[2,"b1","BootNotification",{"chargePointVendor":"Acme","chargePointModel":"X1"}]`)
	c.Assert(strings.HasPrefix(answer, `[3,"b1",{`), jc.IsTrue, gc.Commentf("%s", answer))
}

func (s *centralSystemSuite) TestBootNotification(c *gc.C) {
	s.handler.SetHeartbeatInterval(120)
	answer := s.call(c, `[2,"b1","BootNotification",{"chargePointVendor":"Acme","chargePointModel":"X1"}]`)

	message, err := ParseMessage([]byte(answer))
	c.Assert(err, jc.ErrorIsNil)
	result, ok := message.(*CallResult)
	c.Assert(ok, jc.IsTrue)
	c.Check(result.UniqueId, gc.Equals, "b1")
	c.Check(result.Payload["status"], gc.Equals, "Accepted")
	c.Check(result.Payload["interval"], gc.Equals, json.Number("120"))

	state, ok := s.handler.ChargePoint("cp-1")
	c.Assert(ok, jc.IsTrue)
	c.Check(state.Vendor, gc.Equals, "Acme")
}

func (s *centralSystemSuite) TestAuthorizeAfterBoot(c *gc.C) {
	c.Check(s.call(c, `[2,"a1","Authorize",{"idTag":"ABCDEF12"}]`), gc.Equals,
		`[3,"a1",{"idTagInfo":{"status":"Blocked"}}]`)
	s.boot(c)
	c.Check(s.call(c, `[2,"a2","Authorize",{"idTag":"ABCDEF12"}]`), gc.Equals,
		`[3,"a2",{"idTagInfo":{"status":"Accepted"}}]`)
}

func (s *centralSystemSuite) TestCallErrors(c *gc.C) {
	c.Check(s.call(c, `[2,"x1","Unknown",{}]`), gc.Equals,
		`[4,"x1","NotImplemented","Unknown: action not implemented",{}]`)
	c.Check(s.call(c, `[2,"x2","Authorize",{"idTag":"ABCDEFGHIJKLMNOPQRSTUVWXYZ"}]`), gc.Equals,
		`[4,"x2","PropertyConstraintViolation","Authorize request: field \"idTag\": longer than 20 characters",{"field":"idTag"}]`)
	c.Check(s.call(c, `[2,"x3","Heartbeat"]`), gc.Equals,
		`[4,"x3","FormationViolation","invalid frame: call must have 4 elements",{}]`)
}

func (s *centralSystemSuite) TestUnreadableFrame(c *gc.C) {
	err := s.cs.handleIncomingMessage(s.conn, []byte(`not json`))
	c.Check(err, gc.ErrorMatches, "invalid frame: message is not a JSON array")
	c.Check(s.conn.Frames(), gc.HasLen, 0)
}

func (s *centralSystemSuite) TestUnexpectedReply(c *gc.C) {
	c.Assert(s.cs.handleIncomingMessage(s.conn, []byte(`[3,"nobody",{}]`)), jc.ErrorIsNil)
	c.Check(s.logger.Warnings(), jc.DeepEquals, []string{"unexpected reply nobody from charge point cp-1"})
}

func (s *centralSystemSuite) TestSendCall(c *gc.C) {
	s.sender.reply = func(call *CallRequest) string {
		return fmt.Sprintf(`[3,%q,{"status":"Accepted"}]`, call.UniqueId)
	}
	request := newOutgoingRequest("cp-1", core.NewResetRequest(types.ResetTypeHard))
	response := SendCall(context.Background(), s.cs, core.Reset, request)

	c.Assert(response.IsSuccess(), jc.IsTrue, gc.Commentf("%s", response.Result()))
	c.Check(response.Payload().Status, gc.Equals, types.ResetStatusAccepted)
	c.Check(response.RequestId(), gc.Equals, request.RequestId())
	c.Check(response.NetworkPath().String(), gc.Equals, "cp-1 -> central-system")

	calls := s.sender.Calls()
	c.Assert(calls, gc.HasLen, 1)
	c.Check(calls[0].UniqueId, gc.Equals, string(request.RequestId()))
	c.Check(calls[0].Action, gc.Equals, core.ResetFeatureName)
	c.Check(calls[0].Payload, jc.DeepEquals, ocpp.JSONObject{"type": "Hard"})
}

func (s *centralSystemSuite) TestSendCallIgnoresRepliesFromOtherNodes(c *gc.C) {
	s.sender.intruder = &fakeConn{id: "cp-2"}
	s.sender.reply = func(call *CallRequest) string {
		return fmt.Sprintf(`[3,%q,{"status":"Accepted"}]`, call.UniqueId)
	}
	request := newOutgoingRequest("cp-1", core.NewResetRequest(types.ResetTypeHard))
	response := SendCall(context.Background(), s.cs, core.Reset, request)

	c.Assert(response.IsSuccess(), jc.IsTrue, gc.Commentf("%s", response.Result()))
	c.Check(response.Payload().Status, gc.Equals, types.ResetStatusAccepted)
	c.Check(s.logger.Warnings(), jc.DeepEquals, []string{
		fmt.Sprintf("reply %s from charge point cp-2 to a call sent to cp-1", request.RequestId()),
	})
}

func (s *centralSystemSuite) TestSendCallError(c *gc.C) {
	s.sender.reply = func(call *CallRequest) string {
		return fmt.Sprintf(`[4,%q,"NotSupported","reset is disabled",{}]`, call.UniqueId)
	}
	response := SendCall(context.Background(), s.cs, core.Reset, newOutgoingRequest("cp-1", core.NewResetRequest(types.ResetTypeSoft)))
	c.Check(response.IsSuccess(), jc.IsFalse)
	c.Check(response.Result(), jc.DeepEquals, ocpp.ProtocolError(502, "NotSupported: reset is disabled"))
	c.Check(response.Payload(), jc.DeepEquals, core.ResetResponse{})
}

func (s *centralSystemSuite) TestSendCallMalformedReply(c *gc.C) {
	s.sender.reply = func(call *CallRequest) string {
		return fmt.Sprintf(`[3,%q,{"status":"Bogus"}]`, call.UniqueId)
	}
	response := SendCall(context.Background(), s.cs, core.Reset, newOutgoingRequest("cp-1", core.NewResetRequest(types.ResetTypeSoft)))
	c.Check(response.Result().Code, gc.Equals, ocpp.ResultFormatError)
	c.Check(response.Result().Description, gc.Matches, `Reset response: field "status": .*`)
}

func (s *centralSystemSuite) TestSendCallBrokenErrorReply(c *gc.C) {
	s.sender.reply = func(call *CallRequest) string {
		return fmt.Sprintf(`[4,%q,"NotSupported",5,{}]`, call.UniqueId)
	}
	response := SendCall(context.Background(), s.cs, core.Reset, newOutgoingRequest("cp-1", core.NewResetRequest(types.ResetTypeSoft)))
	c.Check(response.Result(), jc.DeepEquals, ocpp.FormatErrorResult("invalid frame: invalid error description"))
	c.Check(s.conn.Frames(), gc.HasLen, 0)
}

func (s *centralSystemSuite) TestSendCallTimeout(c *gc.C) {
	request := ocpp.NewRequest(core.NewResetRequest(types.ResetTypeSoft),
		ocpp.WithNodeId("cp-1"), ocpp.WithTimeout(10*time.Millisecond))
	response := SendCall(context.Background(), s.cs, core.Reset, request)
	c.Check(response.Result().Code, gc.Equals, ocpp.ResultTimeout)
	c.Check(response.Result().Description, gc.Equals, "no reply within 10ms")

	// a late reply is dropped
	c.Assert(s.cs.handleIncomingMessage(s.conn, []byte(fmt.Sprintf(`[3,%q,{"status":"Accepted"}]`, request.RequestId()))), jc.ErrorIsNil)
	c.Check(s.logger.Warnings(), gc.HasLen, 1)
}

func (s *centralSystemSuite) TestSendCallCancelled(c *gc.C) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	response := SendCall(ctx, s.cs, core.Reset, newOutgoingRequest("cp-1", core.NewResetRequest(types.ResetTypeSoft)))
	c.Check(response.Result().Code, gc.Equals, ocpp.ResultTimeout)
	c.Check(response.Result().Description, gc.Equals, "context canceled")
}

func (s *centralSystemSuite) TestSendCallTransportError(c *gc.C) {
	s.sender.err = errors.NotFoundf("connection cp-9")
	response := SendCall(context.Background(), s.cs, core.Reset, newOutgoingRequest("cp-9", core.NewResetRequest(types.ResetTypeSoft)))
	c.Check(response.Result(), jc.DeepEquals, ocpp.TransportError("connection cp-9 not found"))
}

func (s *centralSystemSuite) TestApiChangeConfiguration(c *gc.C) {
	s.sender.reply = func(call *CallRequest) string {
		return fmt.Sprintf(`[3,%q,{"status":"RebootRequired"}]`, call.UniqueId)
	}
	payload, result, err := s.cs.handleApiRequest(context.Background(), CentralSystemCommand{
		ChargePointId: "cp-1",
		FeatureName:   core.ChangeConfigurationFeatureName,
		Payload:       "HeartbeatInterval=300",
	})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(result.IsSuccess(), jc.IsTrue)
	c.Check(payload, jc.DeepEquals, ocpp.JSONObject{"status": "RebootRequired"})
	c.Check(s.sender.Calls()[0].Payload, jc.DeepEquals, ocpp.JSONObject{"key": "HeartbeatInterval", "value": "300"})
}

func (s *centralSystemSuite) TestApiSendLocalList(c *gc.C) {
	s.boot(c)
	s.handler.SetIdTag("B2", types.AuthorizationStatusBlocked)
	s.handler.SetIdTag("A1", types.AuthorizationStatusAccepted)
	s.sender.reply = func(call *CallRequest) string {
		return fmt.Sprintf(`[3,%q,{"status":"Accepted"}]`, call.UniqueId)
	}
	_, result, err := s.cs.handleApiRequest(context.Background(), CentralSystemCommand{
		ChargePointId: "cp-1",
		FeatureName:   localauth.SendLocalListFeatureName,
	})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(result.IsSuccess(), jc.IsTrue)

	sent := s.sender.Calls()[0].Payload
	data, err := sent.Bytes()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(string(data), gc.Equals,
		`{"listVersion":2,"localAuthorizationList":[{"idTag":"A1","idTagInfo":{"status":"Accepted"}},`+
			`{"idTag":"B2","idTagInfo":{"status":"Blocked"}}],"updateType":"Full"}`)
}

func (s *centralSystemSuite) TestApiTriggerMessage(c *gc.C) {
	command := CentralSystemCommand{
		ChargePointId: "cp-1",
		FeatureName:   "TriggerMessage",
		Payload:       "Heartbeat",
	}
	_, _, err := s.cs.handleApiRequest(context.Background(), command)
	c.Check(errors.Is(err, errors.NotFound), jc.IsTrue)

	s.boot(c)
	s.sender.reply = func(call *CallRequest) string {
		return fmt.Sprintf(`[3,%q,{"status":"Accepted"}]`, call.UniqueId)
	}
	payload, result, err := s.cs.handleApiRequest(context.Background(), command)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(result.IsSuccess(), jc.IsTrue)
	c.Check(payload, jc.DeepEquals, ocpp.JSONObject{"status": "Accepted"})
	c.Check(s.sender.Calls()[0].Payload, jc.DeepEquals, ocpp.JSONObject{"requestedMessage": "Heartbeat"})
}

func (s *centralSystemSuite) TestApiFailedExchange(c *gc.C) {
	s.cs.SetCallTimeout(10 * time.Millisecond)
	payload, result, err := s.cs.handleApiRequest(context.Background(), CentralSystemCommand{
		ChargePointId: "cp-1",
		FeatureName:   localauth.GetLocalListVersionFeatureName,
	})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(payload, gc.IsNil)
	c.Check(result.Code, gc.Equals, ocpp.ResultTimeout)
}

func (s *centralSystemSuite) TestApiRejectsCommands(c *gc.C) {
	for _, test := range []struct {
		command CentralSystemCommand
		kind    error
	}{
		{CentralSystemCommand{ChargePointId: "cp-1"}, errors.NotValid},
		{CentralSystemCommand{FeatureName: "Reset"}, errors.NotValid},
		{CentralSystemCommand{ChargePointId: "cp-1", FeatureName: "Reset", Payload: "Warm"}, errors.NotValid},
		{CentralSystemCommand{ChargePointId: "cp-1", FeatureName: "ChangeConfiguration", Payload: "novalue"}, errors.NotValid},
		{CentralSystemCommand{ChargePointId: "cp-1", FeatureName: "UpdateFirmware"}, errors.NotSupported},
	} {
		_, _, err := s.cs.handleApiRequest(context.Background(), test.command)
		c.Check(errors.Is(err, test.kind), jc.IsTrue, gc.Commentf("%+v: %v", test.command, err))
	}
	c.Check(s.sender.Calls(), gc.HasLen, 0)
}
