package localauth

import "ocppmsg/ocpp"

// SystemHandler builds the local authorization list pushed to a charge point.
type SystemHandler interface {
	OnSendLocalList(nodeId ocpp.NodeId) (SendLocalListRequest, error)
}
