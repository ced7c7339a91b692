package ocpp_test

import (
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"ocppmsg/ocpp"
)

type resultSuite struct{}

var _ = gc.Suite(&resultSuite{})

func (*resultSuite) TestOK(c *gc.C) {
	result := ocpp.OK()
	c.Check(result.IsSuccess(), jc.IsTrue)
	c.Check(result.Status, gc.Equals, 200)
	c.Check(result.String(), gc.Equals, "OK (200)")
}

func (*resultSuite) TestFailures(c *gc.C) {
	for _, test := range []struct {
		result ocpp.Result
		code   ocpp.ResultCode
		status int
		text   string
	}{
		{ocpp.Timeout("no answer"), ocpp.ResultTimeout, 408, "Timeout (408): no answer"},
		{ocpp.TransportError("closed"), ocpp.ResultTransportError, 503, "TransportError (503): closed"},
		{ocpp.ProtocolError(502, "rejected"), ocpp.ResultProtocolError, 502, "ProtocolError (502): rejected"},
		{ocpp.FormatErrorResult("bad"), ocpp.ResultFormatError, 400, "FormatError (400): bad"},
	} {
		c.Check(test.result.IsSuccess(), jc.IsFalse)
		c.Check(test.result.Code, gc.Equals, test.code)
		c.Check(test.result.Status, gc.Equals, test.status)
		c.Check(test.result.String(), gc.Equals, test.text)
	}
}

func (*resultSuite) TestUnknownCode(c *gc.C) {
	c.Check(ocpp.ResultCode(42).String(), gc.Equals, "ResultCode(42)")
}
