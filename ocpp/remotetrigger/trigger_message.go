package remotetrigger

import (
	"strconv"

	"github.com/beevik/etree"

	"ocppmsg/ocpp"
	"ocppmsg/types"
)

const TriggerMessageFeatureName = "TriggerMessage"

type TriggerMessageRequest struct {
	RequestedMessage types.MessageTrigger
	ConnectorId      *int
}

func (f TriggerMessageRequest) GetFeatureName() string {
	return TriggerMessageFeatureName
}

func (f TriggerMessageRequest) EmptyResponse() TriggerMessageResponse {
	return TriggerMessageResponse{}
}

// NewTriggerMessageRequest leaves the connector unset when connectorId is 0 or less.
func NewTriggerMessageRequest(requestedMessage types.MessageTrigger, connectorId int) TriggerMessageRequest {
	request := TriggerMessageRequest{RequestedMessage: requestedMessage}
	if connectorId > 0 {
		request.ConnectorId = &connectorId
	}
	return request
}

type TriggerMessageResponse struct {
	Status types.TriggerMessageStatus
}

func (f TriggerMessageResponse) GetFeatureName() string {
	return TriggerMessageFeatureName
}

func NewTriggerMessageResponse(status types.TriggerMessageStatus) TriggerMessageResponse {
	return TriggerMessageResponse{Status: status}
}

func readTriggerMessageRequest(f ocpp.Fields) (TriggerMessageRequest, error) {
	r := TriggerMessageRequest{}
	var err error
	if r.RequestedMessage, err = ocpp.Enum(f, "requestedMessage", types.ParseMessageTrigger); err != nil {
		return r, err
	}
	if r.ConnectorId, err = f.OptionalInt("connectorId"); err != nil {
		return r, err
	}
	if r.ConnectorId != nil && *r.ConnectorId <= 0 {
		return r, ocpp.InvalidField("connectorId", "must be greater than 0, got %d", *r.ConnectorId)
	}
	return r, nil
}

func readTriggerMessageResponse(f ocpp.Fields) (TriggerMessageResponse, error) {
	status, err := ocpp.Enum(f, "status", types.ParseTriggerMessageStatus)
	return TriggerMessageResponse{Status: status}, err
}

var TriggerMessage = ocpp.NewCodec(TriggerMessageFeatureName,
	ocpp.Schema[TriggerMessageRequest]{
		Element:   "triggerMessageRequest",
		Namespace: ocpp.NamespaceChargePoint16,
		ReadJSON: func(obj ocpp.JSONObject) (TriggerMessageRequest, error) {
			return readTriggerMessageRequest(obj)
		},
		WriteJSON: func(r TriggerMessageRequest) ocpp.JSONObject {
			obj := ocpp.JSONObject{"requestedMessage": string(r.RequestedMessage)}
			if r.ConnectorId != nil {
				obj["connectorId"] = *r.ConnectorId
			}
			return obj
		},
		ReadXML: func(el ocpp.XMLElement) (TriggerMessageRequest, error) {
			return readTriggerMessageRequest(el)
		},
		WriteXML: func(r TriggerMessageRequest, el *etree.Element) {
			ocpp.AddXMLText(el, "requestedMessage", string(r.RequestedMessage))
			if r.ConnectorId != nil {
				ocpp.AddXMLText(el, "connectorId", strconv.Itoa(*r.ConnectorId))
			}
		},
	},
	ocpp.Schema[TriggerMessageResponse]{
		Element:   "triggerMessageResponse",
		Namespace: ocpp.NamespaceChargePoint16,
		ReadJSON: func(obj ocpp.JSONObject) (TriggerMessageResponse, error) {
			return readTriggerMessageResponse(obj)
		},
		WriteJSON: func(c TriggerMessageResponse) ocpp.JSONObject {
			return ocpp.JSONObject{"status": string(c.Status)}
		},
		ReadXML: func(el ocpp.XMLElement) (TriggerMessageResponse, error) {
			return readTriggerMessageResponse(el)
		},
		WriteXML: func(c TriggerMessageResponse, el *etree.Element) {
			ocpp.AddXMLText(el, "status", string(c.Status))
		},
	},
)
