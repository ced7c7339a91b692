package core

import (
	"time"

	"github.com/beevik/etree"

	"ocppmsg/ocpp"
	"ocppmsg/types"
)

const HeartbeatFeatureName = "Heartbeat"

type HeartbeatRequest struct {
}

type HeartbeatResponse struct {
	CurrentTime types.DateTime
}

func (req HeartbeatRequest) GetFeatureName() string {
	return HeartbeatFeatureName
}

func (req HeartbeatRequest) EmptyResponse() HeartbeatResponse {
	return HeartbeatResponse{}
}

func (res HeartbeatResponse) GetFeatureName() string {
	return HeartbeatFeatureName
}

func NewHeartbeatResponse(currentTime time.Time) HeartbeatResponse {
	return HeartbeatResponse{CurrentTime: *types.NewDateTime(currentTime)}
}

func readHeartbeatResponse(f ocpp.Fields) (HeartbeatResponse, error) {
	currentTime, err := f.DateTime("currentTime")
	return HeartbeatResponse{CurrentTime: currentTime}, err
}

var Heartbeat = ocpp.NewCodec(HeartbeatFeatureName,
	ocpp.Schema[HeartbeatRequest]{
		Element:   "heartbeatRequest",
		Namespace: ocpp.NamespaceCentralSystem16,
		ReadJSON: func(ocpp.JSONObject) (HeartbeatRequest, error) {
			return HeartbeatRequest{}, nil
		},
		WriteJSON: func(HeartbeatRequest) ocpp.JSONObject {
			return ocpp.JSONObject{}
		},
		ReadXML: func(ocpp.XMLElement) (HeartbeatRequest, error) {
			return HeartbeatRequest{}, nil
		},
		WriteXML: func(HeartbeatRequest, *etree.Element) {},
	},
	ocpp.Schema[HeartbeatResponse]{
		Element:   "heartbeatResponse",
		Namespace: ocpp.NamespaceCentralSystem16,
		ReadJSON: func(obj ocpp.JSONObject) (HeartbeatResponse, error) {
			return readHeartbeatResponse(obj)
		},
		WriteJSON: func(res HeartbeatResponse) ocpp.JSONObject {
			return ocpp.JSONObject{"currentTime": res.CurrentTime.String()}
		},
		ReadXML: func(el ocpp.XMLElement) (HeartbeatResponse, error) {
			return readHeartbeatResponse(el)
		},
		WriteXML: func(res HeartbeatResponse, el *etree.Element) {
			ocpp.AddXMLText(el, "currentTime", res.CurrentTime.String())
		},
	},
)
