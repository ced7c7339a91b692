package core

import (
	"strconv"

	"github.com/beevik/etree"

	"ocppmsg/ocpp"
	"ocppmsg/types"
)

const StartTransactionFeatureName = "StartTransaction"

type StartTransactionRequest struct {
	ConnectorId   int
	IdTag         string
	MeterStart    uint
	ReservationId *int
	Timestamp     types.DateTime
}

type StartTransactionResponse struct {
	IdTagInfo     types.IdTagInfo
	TransactionId int
}

func (req StartTransactionRequest) GetFeatureName() string {
	return StartTransactionFeatureName
}

func (req StartTransactionRequest) EmptyResponse() StartTransactionResponse {
	return StartTransactionResponse{}
}

func (res StartTransactionResponse) GetFeatureName() string {
	return StartTransactionFeatureName
}

func NewStartTransactionResponse(idTagInfo *types.IdTagInfo, transactionId int) StartTransactionResponse {
	return StartTransactionResponse{IdTagInfo: *idTagInfo, TransactionId: transactionId}
}

func readStartTransactionRequest(f ocpp.Fields) (StartTransactionRequest, error) {
	r := StartTransactionRequest{}
	var err error
	if r.ConnectorId, err = f.Int("connectorId"); err != nil {
		return r, err
	}
	if r.ConnectorId <= 0 {
		return r, ocpp.InvalidField("connectorId", "must be greater than 0, got %d", r.ConnectorId)
	}
	if r.IdTag, err = f.Text("idTag", IdTagMaxLength); err != nil {
		return r, err
	}
	if r.MeterStart, err = f.Uint("meterStart"); err != nil {
		return r, err
	}
	if r.ReservationId, err = f.OptionalInt("reservationId"); err != nil {
		return r, err
	}
	r.Timestamp, err = f.DateTime("timestamp")
	return r, err
}

func writeStartTransactionRequestJSON(r StartTransactionRequest) ocpp.JSONObject {
	obj := ocpp.JSONObject{
		"connectorId": r.ConnectorId,
		"idTag":       r.IdTag,
		"meterStart":  r.MeterStart,
		"timestamp":   r.Timestamp.String(),
	}
	if r.ReservationId != nil {
		obj["reservationId"] = *r.ReservationId
	}
	return obj
}

func writeStartTransactionRequestXML(r StartTransactionRequest, el *etree.Element) {
	ocpp.AddXMLText(el, "connectorId", strconv.Itoa(r.ConnectorId))
	ocpp.AddXMLText(el, "idTag", r.IdTag)
	ocpp.AddXMLText(el, "timestamp", r.Timestamp.String())
	ocpp.AddXMLText(el, "meterStart", strconv.FormatUint(uint64(r.MeterStart), 10))
	if r.ReservationId != nil {
		ocpp.AddXMLText(el, "reservationId", strconv.Itoa(*r.ReservationId))
	}
}

var StartTransaction = ocpp.NewCodec(StartTransactionFeatureName,
	ocpp.Schema[StartTransactionRequest]{
		Element:   "startTransactionRequest",
		Namespace: ocpp.NamespaceCentralSystem16,
		ReadJSON: func(obj ocpp.JSONObject) (StartTransactionRequest, error) {
			return readStartTransactionRequest(obj)
		},
		WriteJSON: writeStartTransactionRequestJSON,
		ReadXML: func(el ocpp.XMLElement) (StartTransactionRequest, error) {
			return readStartTransactionRequest(el)
		},
		WriteXML: writeStartTransactionRequestXML,
	},
	ocpp.Schema[StartTransactionResponse]{
		Element:   "startTransactionResponse",
		Namespace: ocpp.NamespaceCentralSystem16,
		ReadJSON: func(obj ocpp.JSONObject) (StartTransactionResponse, error) {
			res := StartTransactionResponse{}
			var err error
			if res.TransactionId, err = obj.Int("transactionId"); err != nil {
				return res, err
			}
			res.IdTagInfo, err = readIdTagInfoJSON(obj)
			return res, err
		},
		WriteJSON: func(res StartTransactionResponse) ocpp.JSONObject {
			return ocpp.JSONObject{
				"idTagInfo":     WriteIdTagInfoJSON(res.IdTagInfo),
				"transactionId": res.TransactionId,
			}
		},
		ReadXML: func(el ocpp.XMLElement) (StartTransactionResponse, error) {
			res := StartTransactionResponse{}
			var err error
			if res.TransactionId, err = el.Int("transactionId"); err != nil {
				return res, err
			}
			res.IdTagInfo, err = readIdTagInfoXML(el)
			return res, err
		},
		WriteXML: func(res StartTransactionResponse, el *etree.Element) {
			ocpp.AddXMLText(el, "transactionId", strconv.Itoa(res.TransactionId))
			WriteIdTagInfoXML(res.IdTagInfo, el)
		},
	},
)
