package core

import (
	"github.com/beevik/etree"

	"ocppmsg/ocpp"
	"ocppmsg/types"
)

const ResetFeatureName = "Reset"

type ResetRequest struct {
	Type types.ResetType
}

type ResetResponse struct {
	Status types.ResetStatus
}

func (r ResetRequest) GetFeatureName() string {
	return ResetFeatureName
}

func (r ResetRequest) EmptyResponse() ResetResponse {
	return ResetResponse{}
}

func (c ResetResponse) GetFeatureName() string {
	return ResetFeatureName
}

func NewResetRequest(resetType types.ResetType) ResetRequest {
	return ResetRequest{Type: resetType}
}

func NewResetResponse(status types.ResetStatus) ResetResponse {
	return ResetResponse{Status: status}
}

func readResetRequest(f ocpp.Fields) (ResetRequest, error) {
	t, err := ocpp.Enum(f, "type", types.ParseResetType)
	return ResetRequest{Type: t}, err
}

func readResetResponse(f ocpp.Fields) (ResetResponse, error) {
	status, err := ocpp.Enum(f, "status", types.ParseResetStatus)
	return ResetResponse{Status: status}, err
}

var Reset = ocpp.NewCodec(ResetFeatureName,
	ocpp.Schema[ResetRequest]{
		Element:   "resetRequest",
		Namespace: ocpp.NamespaceChargePoint16,
		ReadJSON: func(obj ocpp.JSONObject) (ResetRequest, error) {
			return readResetRequest(obj)
		},
		WriteJSON: func(r ResetRequest) ocpp.JSONObject {
			return ocpp.JSONObject{"type": string(r.Type)}
		},
		ReadXML: func(el ocpp.XMLElement) (ResetRequest, error) {
			return readResetRequest(el)
		},
		WriteXML: func(r ResetRequest, el *etree.Element) {
			ocpp.AddXMLText(el, "type", string(r.Type))
		},
	},
	ocpp.Schema[ResetResponse]{
		Element:   "resetResponse",
		Namespace: ocpp.NamespaceChargePoint16,
		ReadJSON: func(obj ocpp.JSONObject) (ResetResponse, error) {
			return readResetResponse(obj)
		},
		WriteJSON: func(c ResetResponse) ocpp.JSONObject {
			return ocpp.JSONObject{"status": string(c.Status)}
		},
		ReadXML: func(el ocpp.XMLElement) (ResetResponse, error) {
			return readResetResponse(el)
		},
		WriteXML: func(c ResetResponse, el *etree.Element) {
			ocpp.AddXMLText(el, "status", string(c.Status))
		},
	},
)
