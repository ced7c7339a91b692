package localauth_test

import (
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"ocppmsg/ocpp"
	"ocppmsg/ocpp/localauth"
	"ocppmsg/types"
)

type sendLocalListSuite struct{}

var _ = gc.Suite(&sendLocalListSuite{})

func parseJSON(c *gc.C, s string) ocpp.JSONObject {
	obj, err := ocpp.ParseJSON([]byte(s))
	c.Assert(err, jc.ErrorIsNil)
	return obj
}

func fullList() localauth.SendLocalListRequest {
	request := localauth.NewSendLocalListRequest(3, types.UpdateTypeFull)
	request.LocalAuthorizationList = []localauth.AuthorizationData{
		{IdTag: "A1", IdTagInfo: types.NewIdTagInfo(types.AuthorizationStatusAccepted)},
		{IdTag: "B2", IdTagInfo: &types.IdTagInfo{Status: types.AuthorizationStatusBlocked, ParentIdTag: "A1"}},
	}
	return request
}

func (*sendLocalListSuite) TestJSON(c *gc.C) {
	request := ocpp.NewRequest(fullList())
	obj := localauth.SendLocalList.RequestToJSON(request)
	c.Check(obj.String(), gc.Equals,
		`{"listVersion":3,"localAuthorizationList":[{"idTag":"A1","idTagInfo":{"status":"Accepted"}},`+
			`{"idTag":"B2","idTagInfo":{"parentIdTag":"A1","status":"Blocked"}}],"updateType":"Full"}`)

	parsed, err := localauth.SendLocalList.ParseRequestJSON(parseJSON(c, obj.String()), ocpp.RequestMeta{})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(parsed.Equal(request), jc.IsTrue)
}

func (*sendLocalListSuite) TestXML(c *gc.C) {
	request := ocpp.NewRequest(fullList())
	el := localauth.SendLocalList.RequestToXML(request)
	c.Check(el.SelectElements("localAuthorisationList"), gc.HasLen, 2)

	parsed, err := localauth.SendLocalList.ParseRequestXML(el, ocpp.RequestMeta{})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(parsed.Equal(request), jc.IsTrue)
}

func (*sendLocalListSuite) TestFullListRequiresIdTagInfo(c *gc.C) {
	input := `{"listVersion":1,"updateType":"Full","localAuthorizationList":[{"idTag":"A1"}]}`
	_, err := localauth.SendLocalList.ParseRequestJSON(parseJSON(c, input), ocpp.RequestMeta{})
	c.Check(err, gc.ErrorMatches,
		`SendLocalList request: field "localAuthorizationList\[0\].idTagInfo": required when updateType is Full`)

	differential := `{"listVersion":1,"updateType":"Differential","localAuthorizationList":[{"idTag":"A1"}]}`
	request, err := localauth.SendLocalList.ParseRequestJSON(parseJSON(c, differential), ocpp.RequestMeta{})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(request.Payload().LocalAuthorizationList[0].IdTagInfo, gc.IsNil)
}

func (*sendLocalListSuite) TestNestedErrors(c *gc.C) {
	input := `{"listVersion":1,"updateType":"Full","localAuthorizationList":[{"idTag":"A1","idTagInfo":{"status":"Unknown"}}]}`
	_, err := localauth.SendLocalList.ParseRequestJSON(parseJSON(c, input), ocpp.RequestMeta{})
	c.Check(err, gc.ErrorMatches,
		`SendLocalList request: field "localAuthorizationList\[0\].idTagInfo.status": "Unknown" is not a valid value`)

	_, err = localauth.SendLocalList.ParseRequestJSON(parseJSON(c, `{"listVersion":-1,"updateType":"Full"}`), ocpp.RequestMeta{})
	c.Check(err, gc.ErrorMatches, `SendLocalList request: field "listVersion": must not be negative, got -1`)
}

func (*sendLocalListSuite) TestResponse(c *gc.C) {
	request := ocpp.NewRequest(fullList())
	response, err := localauth.SendLocalList.ParseResponseJSON(request, ocpp.JSONObject{"status": "VersionMismatch"})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(response.Payload(), jc.DeepEquals, localauth.NewSendLocalListResponse(types.UpdateStatusVersionMismatch))
}

type getLocalListVersionSuite struct{}

var _ = gc.Suite(&getLocalListVersionSuite{})

func (*getLocalListVersionSuite) TestListVersion(c *gc.C) {
	request := ocpp.NewRequest(localauth.GetLocalListVersionRequest{})
	c.Check(localauth.GetLocalListVersion.RequestToJSON(request).String(), gc.Equals, `{}`)

	for _, version := range []int{-1, 0, 12} {
		response, err := localauth.GetLocalListVersion.ParseResponseJSON(request, ocpp.JSONObject{"listVersion": version})
		c.Assert(err, jc.ErrorIsNil)
		c.Check(response.Payload().ListVersion, gc.Equals, version)
	}

	_, err := localauth.GetLocalListVersion.ParseResponseJSON(request, ocpp.JSONObject{"listVersion": -2})
	c.Check(err, gc.ErrorMatches, `GetLocalListVersion response: field "listVersion": must be -1 or greater, got -2`)

	response := ocpp.NewResponse(request, localauth.NewGetLocalListVersionResponse(-1))
	decoded, err := localauth.GetLocalListVersion.ParseResponseXML(request, localauth.GetLocalListVersion.ResponseToXML(response))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(decoded.Payload().ListVersion, gc.Equals, -1)
}

func (*sendLocalListSuite) TestEmptyListRoundTrip(c *gc.C) {
	payload := localauth.NewSendLocalListRequest(1, types.UpdateTypeDifferential)
	payload.LocalAuthorizationList = []localauth.AuthorizationData{}
	request := ocpp.NewRequest(payload)

	obj := localauth.SendLocalList.RequestToJSON(request)
	c.Check(obj.String(), gc.Equals, `{"listVersion":1,"updateType":"Differential"}`)
	fromJSON, err := localauth.SendLocalList.ParseRequestJSON(parseJSON(c, obj.String()), ocpp.RequestMeta{})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(fromJSON.Payload().LocalAuthorizationList, gc.IsNil)
	c.Check(fromJSON.Equal(request), jc.IsTrue)
	c.Check(fromJSON.Hash(), gc.Equals, request.Hash())

	data, err := ocpp.XMLBytes(localauth.SendLocalList.RequestToXML(request))
	c.Assert(err, jc.ErrorIsNil)
	el, err := ocpp.ParseXML(data)
	c.Assert(err, jc.ErrorIsNil)
	fromXML, err := localauth.SendLocalList.ParseRequestXML(el, ocpp.RequestMeta{})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(fromXML.Equal(request), jc.IsTrue)
	c.Check(fromXML.Hash(), gc.Equals, request.Hash())
}
