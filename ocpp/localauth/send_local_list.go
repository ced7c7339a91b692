package localauth

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"

	"ocppmsg/ocpp"
	"ocppmsg/ocpp/core"
	"ocppmsg/types"
)

const SendLocalListFeatureName = "SendLocalList"

type AuthorizationData struct {
	IdTag     string
	IdTagInfo *types.IdTagInfo
}

type SendLocalListRequest struct {
	ListVersion            uint
	LocalAuthorizationList []AuthorizationData
	UpdateType             types.UpdateType
}

type SendLocalListResponse struct {
	Status types.UpdateStatus
}

func (r SendLocalListRequest) GetFeatureName() string {
	return SendLocalListFeatureName
}

func (r SendLocalListRequest) EmptyResponse() SendLocalListResponse {
	return SendLocalListResponse{}
}

func (c SendLocalListResponse) GetFeatureName() string {
	return SendLocalListFeatureName
}

// NewSendLocalListRequest creates SendLocalListRequest containing all required field. Optional fields may be set afterward.
func NewSendLocalListRequest(version uint, updateType types.UpdateType) SendLocalListRequest {
	return SendLocalListRequest{ListVersion: version, UpdateType: updateType}
}

// NewSendLocalListResponse Creates a new SendLocalListConfirmation, containing all required fields. There are no optional fields for this message.
func NewSendLocalListResponse(status types.UpdateStatus) SendLocalListResponse {
	return SendLocalListResponse{Status: status}
}

func readAuthorizationData(f ocpp.Fields, idTagInfo func() (ocpp.Fields, bool, error)) (AuthorizationData, error) {
	data := AuthorizationData{}
	var err error
	if data.IdTag, err = f.Text("idTag", core.IdTagMaxLength); err != nil {
		return data, err
	}
	child, ok, err := idTagInfo()
	if err != nil || !ok {
		return data, err
	}
	info, err := core.ReadIdTagInfo(child)
	if err != nil {
		return data, ocpp.Nested("idTagInfo", err)
	}
	data.IdTagInfo = &info
	return data, nil
}

// validate checks the rule that a full list must carry idTagInfo for every entry.
func (r SendLocalListRequest) validate(listKey string) error {
	if r.UpdateType != types.UpdateTypeFull {
		return nil
	}
	for i, data := range r.LocalAuthorizationList {
		if data.IdTagInfo == nil {
			return ocpp.InvalidField(fmt.Sprintf("%s[%d].idTagInfo", listKey, i), "required when updateType is %s", types.UpdateTypeFull)
		}
	}
	return nil
}

func readSendLocalListJSON(obj ocpp.JSONObject) (SendLocalListRequest, error) {
	r := SendLocalListRequest{}
	var err error
	if r.ListVersion, err = obj.Uint("listVersion"); err != nil {
		return r, err
	}
	if r.UpdateType, err = ocpp.Enum(obj, "updateType", types.ParseUpdateType); err != nil {
		return r, err
	}
	items, err := obj.Objects("localAuthorizationList")
	if err != nil {
		return r, err
	}
	for i, item := range items {
		data, err := readAuthorizationData(item, func() (ocpp.Fields, bool, error) {
			child, err := item.OptionalObject("idTagInfo")
			return child, child != nil, err
		})
		if err != nil {
			return r, ocpp.Nested(fmt.Sprintf("localAuthorizationList[%d]", i), err)
		}
		r.LocalAuthorizationList = append(r.LocalAuthorizationList, data)
	}
	return r, r.validate("localAuthorizationList")
}

func writeSendLocalListJSON(r SendLocalListRequest) ocpp.JSONObject {
	obj := ocpp.JSONObject{
		"listVersion": r.ListVersion,
		"updateType":  string(r.UpdateType),
	}
	if len(r.LocalAuthorizationList) > 0 {
		list := make([]any, 0, len(r.LocalAuthorizationList))
		for _, data := range r.LocalAuthorizationList {
			item := ocpp.JSONObject{"idTag": data.IdTag}
			if data.IdTagInfo != nil {
				item["idTagInfo"] = core.WriteIdTagInfoJSON(*data.IdTagInfo)
			}
			list = append(list, item)
		}
		obj["localAuthorizationList"] = list
	}
	return obj
}

// SOAP spells the list element localAuthorisationList.
func readSendLocalListXML(el ocpp.XMLElement) (SendLocalListRequest, error) {
	r := SendLocalListRequest{}
	var err error
	if r.ListVersion, err = el.Uint("listVersion"); err != nil {
		return r, err
	}
	if r.UpdateType, err = ocpp.Enum(el, "updateType", types.ParseUpdateType); err != nil {
		return r, err
	}
	for i, item := range el.Children("localAuthorisationList") {
		data, err := readAuthorizationData(item, func() (ocpp.Fields, bool, error) {
			child, ok := item.OptionalChild("idTagInfo")
			return child, ok, nil
		})
		if err != nil {
			return r, ocpp.Nested(fmt.Sprintf("localAuthorisationList[%d]", i), err)
		}
		r.LocalAuthorizationList = append(r.LocalAuthorizationList, data)
	}
	return r, r.validate("localAuthorisationList")
}

func writeSendLocalListXML(r SendLocalListRequest, el *etree.Element) {
	ocpp.AddXMLText(el, "listVersion", strconv.FormatUint(uint64(r.ListVersion), 10))
	for _, data := range r.LocalAuthorizationList {
		item := el.CreateElement("localAuthorisationList")
		ocpp.AddXMLText(item, "idTag", data.IdTag)
		if data.IdTagInfo != nil {
			core.WriteIdTagInfoXML(*data.IdTagInfo, item)
		}
	}
	ocpp.AddXMLText(el, "updateType", string(r.UpdateType))
}

func readSendLocalListResponse(f ocpp.Fields) (SendLocalListResponse, error) {
	status, err := ocpp.Enum(f, "status", types.ParseUpdateStatus)
	return SendLocalListResponse{Status: status}, err
}

var SendLocalList = ocpp.NewCodec(SendLocalListFeatureName,
	ocpp.Schema[SendLocalListRequest]{
		Element:   "sendLocalListRequest",
		Namespace: ocpp.NamespaceChargePoint16,
		ReadJSON:  readSendLocalListJSON,
		WriteJSON: writeSendLocalListJSON,
		ReadXML:   readSendLocalListXML,
		WriteXML:  writeSendLocalListXML,
	},
	ocpp.Schema[SendLocalListResponse]{
		Element:   "sendLocalListResponse",
		Namespace: ocpp.NamespaceChargePoint16,
		ReadJSON: func(obj ocpp.JSONObject) (SendLocalListResponse, error) {
			return readSendLocalListResponse(obj)
		},
		WriteJSON: func(c SendLocalListResponse) ocpp.JSONObject {
			return ocpp.JSONObject{"status": string(c.Status)}
		},
		ReadXML: func(el ocpp.XMLElement) (SendLocalListResponse, error) {
			return readSendLocalListResponse(el)
		},
		WriteXML: func(c SendLocalListResponse, el *etree.Element) {
			ocpp.AddXMLText(el, "status", string(c.Status))
		},
	},
)
