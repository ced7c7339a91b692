package core

import (
	"github.com/beevik/etree"

	"ocppmsg/ocpp"
	"ocppmsg/types"
)

const AuthorizeFeatureName = "Authorize"

type AuthorizeRequest struct {
	IdTag string
}

func (r AuthorizeRequest) GetFeatureName() string {
	return AuthorizeFeatureName
}

func (r AuthorizeRequest) EmptyResponse() AuthorizeResponse {
	return AuthorizeResponse{}
}

type AuthorizeResponse struct {
	IdTagInfo types.IdTagInfo
}

func (c AuthorizeResponse) GetFeatureName() string {
	return AuthorizeFeatureName
}

func NewAuthorizeRequest(idTag string) AuthorizeRequest {
	return AuthorizeRequest{IdTag: idTag}
}

func NewAuthorizationResponse(idTagInfo *types.IdTagInfo) AuthorizeResponse {
	return AuthorizeResponse{IdTagInfo: *idTagInfo}
}

func readAuthorizeRequest(f ocpp.Fields) (AuthorizeRequest, error) {
	idTag, err := f.Text("idTag", IdTagMaxLength)
	return AuthorizeRequest{IdTag: idTag}, err
}

var Authorize = ocpp.NewCodec(AuthorizeFeatureName,
	ocpp.Schema[AuthorizeRequest]{
		Element:   "authorizeRequest",
		Namespace: ocpp.NamespaceCentralSystem16,
		ReadJSON: func(obj ocpp.JSONObject) (AuthorizeRequest, error) {
			return readAuthorizeRequest(obj)
		},
		WriteJSON: func(r AuthorizeRequest) ocpp.JSONObject {
			return ocpp.JSONObject{"idTag": r.IdTag}
		},
		ReadXML: func(el ocpp.XMLElement) (AuthorizeRequest, error) {
			return readAuthorizeRequest(el)
		},
		WriteXML: func(r AuthorizeRequest, el *etree.Element) {
			ocpp.AddXMLText(el, "idTag", r.IdTag)
		},
	},
	ocpp.Schema[AuthorizeResponse]{
		Element:   "authorizeResponse",
		Namespace: ocpp.NamespaceCentralSystem16,
		ReadJSON: func(obj ocpp.JSONObject) (AuthorizeResponse, error) {
			info, err := readIdTagInfoJSON(obj)
			return AuthorizeResponse{IdTagInfo: info}, err
		},
		WriteJSON: func(c AuthorizeResponse) ocpp.JSONObject {
			return ocpp.JSONObject{"idTagInfo": WriteIdTagInfoJSON(c.IdTagInfo)}
		},
		ReadXML: func(el ocpp.XMLElement) (AuthorizeResponse, error) {
			info, err := readIdTagInfoXML(el)
			return AuthorizeResponse{IdTagInfo: info}, err
		},
		WriteXML: func(c AuthorizeResponse, el *etree.Element) {
			WriteIdTagInfoXML(c.IdTagInfo, el)
		},
	},
)
