package ocpp

import "github.com/beevik/etree"

// Extension is the vendor hook of a codec. Parse hooks run only after the base reader has
// fully validated the payload and their result replaces it; serialize hooks receive the
// complete tree produced by the base writer and return the tree to put on the wire.
type Extension[T Feature] interface {
	AfterParseJSON(obj JSONObject, payload T) T
	AfterSerializeJSON(payload T, obj JSONObject) JSONObject
	AfterParseXML(el XMLElement, payload T) T
	AfterSerializeXML(payload T, el *etree.Element) *etree.Element
}

// ExtensionFuncs adapts plain functions to Extension; nil functions leave the value unchanged.
type ExtensionFuncs[T Feature] struct {
	ParseJSON     func(obj JSONObject, payload T) T
	SerializeJSON func(payload T, obj JSONObject) JSONObject
	ParseXML      func(el XMLElement, payload T) T
	SerializeXML  func(payload T, el *etree.Element) *etree.Element
}

func (f ExtensionFuncs[T]) AfterParseJSON(obj JSONObject, payload T) T {
	if f.ParseJSON == nil {
		return payload
	}
	return f.ParseJSON(obj, payload)
}

func (f ExtensionFuncs[T]) AfterSerializeJSON(payload T, obj JSONObject) JSONObject {
	if f.SerializeJSON == nil {
		return obj
	}
	return f.SerializeJSON(payload, obj)
}

func (f ExtensionFuncs[T]) AfterParseXML(el XMLElement, payload T) T {
	if f.ParseXML == nil {
		return payload
	}
	return f.ParseXML(el, payload)
}

func (f ExtensionFuncs[T]) AfterSerializeXML(payload T, el *etree.Element) *etree.Element {
	if f.SerializeXML == nil {
		return el
	}
	return f.SerializeXML(payload, el)
}
