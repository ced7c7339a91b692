package core

import (
	"github.com/beevik/etree"

	"ocppmsg/ocpp"
	"ocppmsg/types"
)

const IdTagMaxLength = 20

func ReadIdTagInfo(f ocpp.Fields) (types.IdTagInfo, error) {
	status, err := ocpp.Enum(f, "status", types.ParseAuthorizationStatus)
	if err != nil {
		return types.IdTagInfo{}, err
	}
	expiryDate, err := f.OptionalDateTime("expiryDate")
	if err != nil {
		return types.IdTagInfo{}, err
	}
	parentIdTag, err := f.OptionalText("parentIdTag", IdTagMaxLength)
	if err != nil {
		return types.IdTagInfo{}, err
	}
	return types.IdTagInfo{ExpiryDate: expiryDate, ParentIdTag: parentIdTag, Status: status}, nil
}

func readIdTagInfoJSON(obj ocpp.JSONObject) (types.IdTagInfo, error) {
	child, err := obj.Object("idTagInfo")
	if err != nil {
		return types.IdTagInfo{}, err
	}
	info, err := ReadIdTagInfo(child)
	return info, ocpp.Nested("idTagInfo", err)
}

func readIdTagInfoXML(el ocpp.XMLElement) (types.IdTagInfo, error) {
	child, err := el.Child("idTagInfo")
	if err != nil {
		return types.IdTagInfo{}, err
	}
	info, err := ReadIdTagInfo(child)
	return info, ocpp.Nested("idTagInfo", err)
}

func WriteIdTagInfoJSON(info types.IdTagInfo) ocpp.JSONObject {
	obj := ocpp.JSONObject{"status": string(info.Status)}
	if info.ExpiryDate != nil {
		obj["expiryDate"] = info.ExpiryDate.String()
	}
	obj.PutOptional("parentIdTag", info.ParentIdTag)
	return obj
}

func WriteIdTagInfoXML(info types.IdTagInfo, parent *etree.Element) {
	el := parent.CreateElement("idTagInfo")
	if info.ExpiryDate != nil {
		ocpp.AddXMLText(el, "expiryDate", info.ExpiryDate.String())
	}
	ocpp.AddOptionalXMLText(el, "parentIdTag", info.ParentIdTag)
	ocpp.AddXMLText(el, "status", string(info.Status))
}
