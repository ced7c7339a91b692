package remotetrigger

import (
	"ocppmsg/ocpp"
	"ocppmsg/types"
)

type SystemHandler interface {
	OnTriggerMessage(nodeId ocpp.NodeId, connectorId int, messageTrigger types.MessageTrigger) (TriggerMessageRequest, error)
}
