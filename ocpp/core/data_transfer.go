package core

import (
	"github.com/beevik/etree"

	"ocppmsg/ocpp"
	"ocppmsg/types"
)

const DataTransferFeatureName = "DataTransfer"

type DataTransferRequest struct {
	VendorId  string
	MessageId string
	Data      string
}

type DataTransferResponse struct {
	Status types.DataTransferStatus
	Data   string
}

func (r DataTransferRequest) GetFeatureName() string {
	return DataTransferFeatureName
}

func (r DataTransferRequest) EmptyResponse() DataTransferResponse {
	return DataTransferResponse{}
}

func (c DataTransferResponse) GetFeatureName() string {
	return DataTransferFeatureName
}

func NewDataTransferResponse(status types.DataTransferStatus) DataTransferResponse {
	return DataTransferResponse{Status: status}
}

func readDataTransferRequest(f ocpp.Fields) (DataTransferRequest, error) {
	r := DataTransferRequest{}
	var err error
	if r.VendorId, err = f.Text("vendorId", 255); err != nil {
		return r, err
	}
	if r.MessageId, err = f.OptionalText("messageId", 50); err != nil {
		return r, err
	}
	r.Data, err = f.OptionalText("data", 0)
	return r, err
}

func readDataTransferResponse(f ocpp.Fields) (DataTransferResponse, error) {
	c := DataTransferResponse{}
	var err error
	if c.Status, err = ocpp.Enum(f, "status", types.ParseDataTransferStatus); err != nil {
		return c, err
	}
	c.Data, err = f.OptionalText("data", 0)
	return c, err
}

var DataTransfer = ocpp.NewCodec(DataTransferFeatureName,
	ocpp.Schema[DataTransferRequest]{
		Element:   "dataTransferRequest",
		Namespace: ocpp.NamespaceCentralSystem16,
		ReadJSON: func(obj ocpp.JSONObject) (DataTransferRequest, error) {
			return readDataTransferRequest(obj)
		},
		WriteJSON: func(r DataTransferRequest) ocpp.JSONObject {
			obj := ocpp.JSONObject{"vendorId": r.VendorId}
			obj.PutOptional("messageId", r.MessageId)
			obj.PutOptional("data", r.Data)
			return obj
		},
		ReadXML: func(el ocpp.XMLElement) (DataTransferRequest, error) {
			return readDataTransferRequest(el)
		},
		WriteXML: func(r DataTransferRequest, el *etree.Element) {
			ocpp.AddXMLText(el, "vendorId", r.VendorId)
			ocpp.AddOptionalXMLText(el, "messageId", r.MessageId)
			ocpp.AddOptionalXMLText(el, "data", r.Data)
		},
	},
	ocpp.Schema[DataTransferResponse]{
		Element:   "dataTransferResponse",
		Namespace: ocpp.NamespaceCentralSystem16,
		ReadJSON: func(obj ocpp.JSONObject) (DataTransferResponse, error) {
			return readDataTransferResponse(obj)
		},
		WriteJSON: func(c DataTransferResponse) ocpp.JSONObject {
			obj := ocpp.JSONObject{"status": string(c.Status)}
			obj.PutOptional("data", c.Data)
			return obj
		},
		ReadXML: func(el ocpp.XMLElement) (DataTransferResponse, error) {
			return readDataTransferResponse(el)
		},
		WriteXML: func(c DataTransferResponse, el *etree.Element) {
			ocpp.AddXMLText(el, "status", string(c.Status))
			ocpp.AddOptionalXMLText(el, "data", c.Data)
		},
	},
)
