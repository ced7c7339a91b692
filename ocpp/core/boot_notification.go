package core

import (
	"strconv"
	"time"

	"github.com/beevik/etree"

	"ocppmsg/ocpp"
	"ocppmsg/types"
)

const BootNotificationFeatureName = "BootNotification"

type BootNotificationRequest struct {
	ChargeBoxSerialNumber   string
	ChargePointModel        string
	ChargePointSerialNumber string
	ChargePointVendor       string
	FirmwareVersion         string
	Iccid                   string
	Imsi                    string
	MeterSerialNumber       string
	MeterType               string
}

// BootNotificationResponse Interval is the heartbeat interval in seconds.
type BootNotificationResponse struct {
	CurrentTime types.DateTime
	Interval    uint
	Status      types.RegistrationStatus
}

func (r BootNotificationRequest) GetFeatureName() string {
	return BootNotificationFeatureName
}

func (r BootNotificationRequest) EmptyResponse() BootNotificationResponse {
	return BootNotificationResponse{}
}

func (c BootNotificationResponse) GetFeatureName() string {
	return BootNotificationFeatureName
}

func NewBootNotificationRequest(vendor, model string) BootNotificationRequest {
	return BootNotificationRequest{ChargePointVendor: vendor, ChargePointModel: model}
}

func NewBootNotificationResponse(currentTime time.Time, interval uint, status types.RegistrationStatus) BootNotificationResponse {
	return BootNotificationResponse{CurrentTime: *types.NewDateTime(currentTime), Interval: interval, Status: status}
}

type textField struct {
	key    string
	maxLen int
	value  *string
}

func (r *BootNotificationRequest) fields() []textField {
	return []textField{
		{"chargePointVendor", 20, &r.ChargePointVendor},
		{"chargePointModel", 20, &r.ChargePointModel},
		{"chargePointSerialNumber", 25, &r.ChargePointSerialNumber},
		{"chargeBoxSerialNumber", 25, &r.ChargeBoxSerialNumber},
		{"firmwareVersion", 50, &r.FirmwareVersion},
		{"iccid", 20, &r.Iccid},
		{"imsi", 20, &r.Imsi},
		{"meterType", 25, &r.MeterType},
		{"meterSerialNumber", 25, &r.MeterSerialNumber},
	}
}

func readBootNotificationRequest(f ocpp.Fields) (BootNotificationRequest, error) {
	r := BootNotificationRequest{}
	for i, field := range r.fields() {
		var err error
		// vendor and model are mandatory
		if i < 2 {
			*field.value, err = f.Text(field.key, field.maxLen)
		} else {
			*field.value, err = f.OptionalText(field.key, field.maxLen)
		}
		if err != nil {
			return BootNotificationRequest{}, err
		}
	}
	return r, nil
}

func writeBootNotificationRequestJSON(r BootNotificationRequest) ocpp.JSONObject {
	obj := ocpp.JSONObject{
		"chargePointVendor": r.ChargePointVendor,
		"chargePointModel":  r.ChargePointModel,
	}
	for _, field := range r.fields()[2:] {
		obj.PutOptional(field.key, *field.value)
	}
	return obj
}

func writeBootNotificationRequestXML(r BootNotificationRequest, el *etree.Element) {
	for i, field := range r.fields() {
		if i < 2 {
			ocpp.AddXMLText(el, field.key, *field.value)
		} else {
			ocpp.AddOptionalXMLText(el, field.key, *field.value)
		}
	}
}

// intervalKey is "interval" in JSON and "heartbeatInterval" in SOAP.
func readBootNotificationResponse(f ocpp.Fields, intervalKey string) (BootNotificationResponse, error) {
	status, err := ocpp.Enum(f, "status", types.ParseRegistrationStatus)
	if err != nil {
		return BootNotificationResponse{}, err
	}
	currentTime, err := f.DateTime("currentTime")
	if err != nil {
		return BootNotificationResponse{}, err
	}
	interval, err := f.Uint(intervalKey)
	if err != nil {
		return BootNotificationResponse{}, err
	}
	return BootNotificationResponse{CurrentTime: currentTime, Interval: interval, Status: status}, nil
}

var BootNotification = ocpp.NewCodec(BootNotificationFeatureName,
	ocpp.Schema[BootNotificationRequest]{
		Element:   "bootNotificationRequest",
		Namespace: ocpp.NamespaceCentralSystem16,
		ReadJSON: func(obj ocpp.JSONObject) (BootNotificationRequest, error) {
			return readBootNotificationRequest(obj)
		},
		WriteJSON: writeBootNotificationRequestJSON,
		ReadXML: func(el ocpp.XMLElement) (BootNotificationRequest, error) {
			return readBootNotificationRequest(el)
		},
		WriteXML: writeBootNotificationRequestXML,
	},
	ocpp.Schema[BootNotificationResponse]{
		Element:   "bootNotificationResponse",
		Namespace: ocpp.NamespaceCentralSystem16,
		ReadJSON: func(obj ocpp.JSONObject) (BootNotificationResponse, error) {
			return readBootNotificationResponse(obj, "interval")
		},
		WriteJSON: func(c BootNotificationResponse) ocpp.JSONObject {
			return ocpp.JSONObject{
				"currentTime": c.CurrentTime.String(),
				"interval":    c.Interval,
				"status":      string(c.Status),
			}
		},
		ReadXML: func(el ocpp.XMLElement) (BootNotificationResponse, error) {
			return readBootNotificationResponse(el, "heartbeatInterval")
		},
		WriteXML: func(c BootNotificationResponse, el *etree.Element) {
			ocpp.AddXMLText(el, "status", string(c.Status))
			ocpp.AddXMLText(el, "currentTime", c.CurrentTime.String())
			ocpp.AddXMLText(el, "heartbeatInterval", strconv.FormatUint(uint64(c.Interval), 10))
		},
	},
)
