package core

import (
	"github.com/beevik/etree"

	"ocppmsg/ocpp"
	"ocppmsg/types"
)

const ChangeConfigurationFeatureName = "ChangeConfiguration"

const (
	configurationKeyMaxLength   = 50
	configurationValueMaxLength = 500
)

type ChangeConfigurationRequest struct {
	Key   string
	Value string
}

type ChangeConfigurationResponse struct {
	Status types.ConfigurationStatus
}

func (r ChangeConfigurationRequest) GetFeatureName() string {
	return ChangeConfigurationFeatureName
}

func (r ChangeConfigurationRequest) EmptyResponse() ChangeConfigurationResponse {
	return ChangeConfigurationResponse{}
}

func (c ChangeConfigurationResponse) GetFeatureName() string {
	return ChangeConfigurationFeatureName
}

func NewChangeConfigurationRequest(key string, value string) ChangeConfigurationRequest {
	return ChangeConfigurationRequest{Key: key, Value: value}
}

func NewChangeConfigurationResponse(status types.ConfigurationStatus) ChangeConfigurationResponse {
	return ChangeConfigurationResponse{Status: status}
}

func readChangeConfigurationRequest(f ocpp.Fields) (ChangeConfigurationRequest, error) {
	r := ChangeConfigurationRequest{}
	var err error
	if r.Key, err = f.Text("key", configurationKeyMaxLength); err != nil {
		return r, err
	}
	r.Value, err = f.Text("value", configurationValueMaxLength)
	return r, err
}

func readChangeConfigurationResponse(f ocpp.Fields) (ChangeConfigurationResponse, error) {
	status, err := ocpp.Enum(f, "status", types.ParseConfigurationStatus)
	return ChangeConfigurationResponse{Status: status}, err
}

var ChangeConfiguration = ocpp.NewCodec(ChangeConfigurationFeatureName,
	ocpp.Schema[ChangeConfigurationRequest]{
		Element:   "changeConfigurationRequest",
		Namespace: ocpp.NamespaceChargePoint16,
		ReadJSON: func(obj ocpp.JSONObject) (ChangeConfigurationRequest, error) {
			return readChangeConfigurationRequest(obj)
		},
		WriteJSON: func(r ChangeConfigurationRequest) ocpp.JSONObject {
			return ocpp.JSONObject{"key": r.Key, "value": r.Value}
		},
		ReadXML: func(el ocpp.XMLElement) (ChangeConfigurationRequest, error) {
			return readChangeConfigurationRequest(el)
		},
		WriteXML: func(r ChangeConfigurationRequest, el *etree.Element) {
			ocpp.AddXMLText(el, "key", r.Key)
			ocpp.AddXMLText(el, "value", r.Value)
		},
	},
	ocpp.Schema[ChangeConfigurationResponse]{
		Element:   "changeConfigurationResponse",
		Namespace: ocpp.NamespaceChargePoint16,
		ReadJSON: func(obj ocpp.JSONObject) (ChangeConfigurationResponse, error) {
			return readChangeConfigurationResponse(obj)
		},
		WriteJSON: func(c ChangeConfigurationResponse) ocpp.JSONObject {
			return ocpp.JSONObject{"status": string(c.Status)}
		},
		ReadXML: func(el ocpp.XMLElement) (ChangeConfigurationResponse, error) {
			return readChangeConfigurationResponse(el)
		},
		WriteXML: func(c ChangeConfigurationResponse, el *etree.Element) {
			ocpp.AddXMLText(el, "status", string(c.Status))
		},
	},
)
