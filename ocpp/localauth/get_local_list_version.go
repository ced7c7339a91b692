package localauth

import (
	"strconv"

	"github.com/beevik/etree"

	"ocppmsg/ocpp"
)

const GetLocalListVersionFeatureName = "GetLocalListVersion"

type GetLocalListVersionRequest struct{}

// GetLocalListVersionResponse carries -1 when the charge point does not support local lists
// and 0 when the list is empty.
type GetLocalListVersionResponse struct {
	ListVersion int
}

func (r GetLocalListVersionRequest) GetFeatureName() string {
	return GetLocalListVersionFeatureName
}

func (r GetLocalListVersionRequest) EmptyResponse() GetLocalListVersionResponse {
	return GetLocalListVersionResponse{}
}

func (c GetLocalListVersionResponse) GetFeatureName() string {
	return GetLocalListVersionFeatureName
}

func NewGetLocalListVersionResponse(version int) GetLocalListVersionResponse {
	return GetLocalListVersionResponse{ListVersion: version}
}

func readGetLocalListVersionResponse(f ocpp.Fields) (GetLocalListVersionResponse, error) {
	version, err := f.Int("listVersion")
	if err != nil {
		return GetLocalListVersionResponse{}, err
	}
	if version < -1 {
		return GetLocalListVersionResponse{}, ocpp.InvalidField("listVersion", "must be -1 or greater, got %d", version)
	}
	return GetLocalListVersionResponse{ListVersion: version}, nil
}

var GetLocalListVersion = ocpp.NewCodec(GetLocalListVersionFeatureName,
	ocpp.Schema[GetLocalListVersionRequest]{
		Element:   "getLocalListVersionRequest",
		Namespace: ocpp.NamespaceChargePoint16,
		ReadJSON: func(ocpp.JSONObject) (GetLocalListVersionRequest, error) {
			return GetLocalListVersionRequest{}, nil
		},
		WriteJSON: func(GetLocalListVersionRequest) ocpp.JSONObject {
			return ocpp.JSONObject{}
		},
		ReadXML: func(ocpp.XMLElement) (GetLocalListVersionRequest, error) {
			return GetLocalListVersionRequest{}, nil
		},
		WriteXML: func(GetLocalListVersionRequest, *etree.Element) {},
	},
	ocpp.Schema[GetLocalListVersionResponse]{
		Element:   "getLocalListVersionResponse",
		Namespace: ocpp.NamespaceChargePoint16,
		ReadJSON: func(obj ocpp.JSONObject) (GetLocalListVersionResponse, error) {
			return readGetLocalListVersionResponse(obj)
		},
		WriteJSON: func(c GetLocalListVersionResponse) ocpp.JSONObject {
			return ocpp.JSONObject{"listVersion": c.ListVersion}
		},
		ReadXML: func(el ocpp.XMLElement) (GetLocalListVersionResponse, error) {
			return readGetLocalListVersionResponse(el)
		},
		WriteXML: func(c GetLocalListVersionResponse, el *etree.Element) {
			ocpp.AddXMLText(el, "listVersion", strconv.Itoa(c.ListVersion))
		},
	},
)
