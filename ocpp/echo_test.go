package ocpp_test

import (
	"strconv"

	"github.com/beevik/etree"

	"ocppmsg/ocpp"
	"ocppmsg/types"
)

const (
	echoFeatureName = "Echo"
	echoNamespace   = "urn://Echo/2024/"
)

type echoRequest struct {
	Text  string
	Count uint
	At    *types.DateTime
}

func (echoRequest) GetFeatureName() string {
	return echoFeatureName
}

func (echoRequest) EmptyResponse() echoResponse {
	return echoResponse{}
}

type echoResponse struct {
	Text string
}

func (echoResponse) GetFeatureName() string {
	return echoFeatureName
}

func readEchoRequest(f ocpp.Fields) (echoRequest, error) {
	text, err := f.Text("text", 20)
	if err != nil {
		return echoRequest{}, err
	}
	count, err := f.Uint("count")
	if err != nil {
		return echoRequest{}, err
	}
	at, err := f.OptionalDateTime("at")
	if err != nil {
		return echoRequest{}, err
	}
	return echoRequest{Text: text, Count: count, At: at}, nil
}

func readEchoResponse(f ocpp.Fields) (echoResponse, error) {
	text, err := f.Text("text", 0)
	return echoResponse{Text: text}, err
}

var echo = ocpp.NewCodec(echoFeatureName,
	ocpp.Schema[echoRequest]{
		Element:   "echoRequest",
		Namespace: echoNamespace,
		ReadJSON: func(obj ocpp.JSONObject) (echoRequest, error) {
			return readEchoRequest(obj)
		},
		WriteJSON: func(r echoRequest) ocpp.JSONObject {
			obj := ocpp.JSONObject{"text": r.Text, "count": r.Count}
			if r.At != nil {
				obj["at"] = r.At.String()
			}
			return obj
		},
		ReadXML: func(el ocpp.XMLElement) (echoRequest, error) {
			return readEchoRequest(el)
		},
		WriteXML: func(r echoRequest, el *etree.Element) {
			ocpp.AddXMLText(el, "text", r.Text)
			ocpp.AddXMLText(el, "count", strconv.FormatUint(uint64(r.Count), 10))
			if r.At != nil {
				ocpp.AddXMLText(el, "at", r.At.String())
			}
		},
	},
	ocpp.Schema[echoResponse]{
		Element:   "echoResponse",
		Namespace: echoNamespace,
		ReadJSON: func(obj ocpp.JSONObject) (echoResponse, error) {
			return readEchoResponse(obj)
		},
		WriteJSON: func(r echoResponse) ocpp.JSONObject {
			return ocpp.JSONObject{"text": r.Text}
		},
		ReadXML: func(el ocpp.XMLElement) (echoResponse, error) {
			return readEchoResponse(el)
		},
		WriteXML: func(r echoResponse, el *etree.Element) {
			ocpp.AddXMLText(el, "text", r.Text)
		},
	},
)
