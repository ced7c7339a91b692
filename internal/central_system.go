package internal

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/juju/errors"

	"ocppmsg/ocpp"
	"ocppmsg/ocpp/core"
	"ocppmsg/ocpp/localauth"
	"ocppmsg/ocpp/remotetrigger"
	"ocppmsg/types"
)

const defaultHeartbeatInterval = 600

type ChargePointState struct {
	Vendor          string
	Model           string
	SerialNumber    string
	FirmwareVersion string
	LastSeen        time.Time
	Transactions    map[int]string
}

// SystemHandler is the default central system: it registers every charge point that boots,
// accepts id tags unless they are listed with another status and numbers transactions.
type SystemHandler struct {
	mux               sync.Mutex
	chargePoints      map[ocpp.NodeId]*ChargePointState
	idTags            map[string]types.AuthorizationStatus
	listVersion       uint
	nextTransactionId int
	heartbeatInterval uint
	logger            LogHandler
	now               func() time.Time
}

func NewSystemHandler(logger LogHandler) *SystemHandler {
	return &SystemHandler{
		chargePoints:      make(map[ocpp.NodeId]*ChargePointState),
		idTags:            make(map[string]types.AuthorizationStatus),
		nextTransactionId: 1,
		heartbeatInterval: defaultHeartbeatInterval,
		logger:            logger,
		now:               time.Now,
	}
}

func (h *SystemHandler) SetHeartbeatInterval(seconds uint) {
	h.mux.Lock()
	defer h.mux.Unlock()
	if seconds > 0 {
		h.heartbeatInterval = seconds
	}
}

// SetIdTag records the status returned for idTag and bumps the local list version.
func (h *SystemHandler) SetIdTag(idTag string, status types.AuthorizationStatus) {
	h.mux.Lock()
	defer h.mux.Unlock()
	h.idTags[idTag] = status
	h.listVersion++
}

func (h *SystemHandler) ChargePoint(nodeId ocpp.NodeId) (ChargePointState, bool) {
	h.mux.Lock()
	defer h.mux.Unlock()
	state, ok := h.chargePoints[nodeId]
	if !ok {
		return ChargePointState{}, false
	}
	return *state, true
}

// touch must be called with h.mux held.
func (h *SystemHandler) touch(nodeId ocpp.NodeId) (*ChargePointState, bool) {
	state, ok := h.chargePoints[nodeId]
	if ok {
		state.LastSeen = h.now()
	}
	return state, ok
}

func (h *SystemHandler) authorize(idTag string) types.AuthorizationStatus {
	if status, ok := h.idTags[idTag]; ok {
		return status
	}
	return types.AuthorizationStatusAccepted
}

func (h *SystemHandler) OnBootNotification(_ context.Context, request *ocpp.Request[core.BootNotificationRequest]) (*ocpp.Response[core.BootNotificationRequest, core.BootNotificationResponse], error) {
	payload := request.Payload()
	h.logger.Dump("boot notification", payload)

	h.mux.Lock()
	state, ok := h.touch(request.NodeId())
	if !ok {
		state = &ChargePointState{Transactions: make(map[int]string), LastSeen: h.now()}
		h.chargePoints[request.NodeId()] = state
	}
	state.Vendor = payload.ChargePointVendor
	state.Model = payload.ChargePointModel
	state.SerialNumber = payload.ChargePointSerialNumber
	state.FirmwareVersion = payload.FirmwareVersion
	interval := h.heartbeatInterval
	h.mux.Unlock()

	status := types.RegistrationStatusAccepted
	h.logger.FeatureEvent(payload.GetFeatureName(), string(request.NodeId()), fmt.Sprintf("%s %s: %s", payload.ChargePointVendor, payload.ChargePointModel, status))
	return ocpp.NewResponse(request, core.NewBootNotificationResponse(h.now(), interval, status)), nil
}

func (h *SystemHandler) OnAuthorize(_ context.Context, request *ocpp.Request[core.AuthorizeRequest]) (*ocpp.Response[core.AuthorizeRequest, core.AuthorizeResponse], error) {
	h.mux.Lock()
	_, known := h.touch(request.NodeId())
	status := h.authorize(request.Payload().IdTag)
	h.mux.Unlock()
	if !known {
		status = types.AuthorizationStatusBlocked
	}
	h.logger.FeatureEvent(request.Payload().GetFeatureName(), string(request.NodeId()), fmt.Sprintf("id tag %s: %s", request.Payload().IdTag, status))
	return ocpp.NewResponse(request, core.NewAuthorizationResponse(types.NewIdTagInfo(status))), nil
}

func (h *SystemHandler) OnHeartbeat(_ context.Context, request *ocpp.Request[core.HeartbeatRequest]) (*ocpp.Response[core.HeartbeatRequest, core.HeartbeatResponse], error) {
	h.mux.Lock()
	h.touch(request.NodeId())
	h.mux.Unlock()
	return ocpp.NewResponse(request, core.NewHeartbeatResponse(h.now())), nil
}

func (h *SystemHandler) OnStartTransaction(_ context.Context, request *ocpp.Request[core.StartTransactionRequest]) (*ocpp.Response[core.StartTransactionRequest, core.StartTransactionResponse], error) {
	payload := request.Payload()
	h.mux.Lock()
	defer h.mux.Unlock()
	state, ok := h.touch(request.NodeId())
	if !ok {
		h.logger.Warn(fmt.Sprintf("start transaction from unknown charge point %s", request.NodeId()))
		return ocpp.NewResponse(request, core.NewStartTransactionResponse(types.NewIdTagInfo(types.AuthorizationStatusBlocked), 0)), nil
	}
	status := h.authorize(payload.IdTag)
	transactionId := 0
	if status == types.AuthorizationStatusAccepted {
		transactionId = h.nextTransactionId
		h.nextTransactionId++
		state.Transactions[transactionId] = payload.IdTag
	}
	h.logger.FeatureEvent(payload.GetFeatureName(), string(request.NodeId()),
		fmt.Sprintf("connector %d, id tag %s: %s, transaction %d", payload.ConnectorId, payload.IdTag, status, transactionId))
	return ocpp.NewResponse(request, core.NewStartTransactionResponse(types.NewIdTagInfo(status), transactionId)), nil
}

func (h *SystemHandler) OnDataTransfer(_ context.Context, request *ocpp.Request[core.DataTransferRequest]) (*ocpp.Response[core.DataTransferRequest, core.DataTransferResponse], error) {
	payload := request.Payload()
	h.logger.FeatureEvent(payload.GetFeatureName(), string(request.NodeId()), fmt.Sprintf("vendor %s, message %s", payload.VendorId, payload.MessageId))
	return ocpp.NewResponse(request, core.NewDataTransferResponse(types.DataTransferStatusAccepted)), nil
}

// OnSendLocalList builds a full list of every recorded id tag.
func (h *SystemHandler) OnSendLocalList(nodeId ocpp.NodeId) (localauth.SendLocalListRequest, error) {
	h.mux.Lock()
	defer h.mux.Unlock()
	if _, ok := h.chargePoints[nodeId]; !ok {
		return localauth.SendLocalListRequest{}, errors.NotFoundf("charge point %s", nodeId)
	}
	request := localauth.NewSendLocalListRequest(h.listVersion, types.UpdateTypeFull)
	tags := make([]string, 0, len(h.idTags))
	for idTag := range h.idTags {
		tags = append(tags, idTag)
	}
	sort.Strings(tags)
	for _, idTag := range tags {
		request.LocalAuthorizationList = append(request.LocalAuthorizationList, localauth.AuthorizationData{
			IdTag:     idTag,
			IdTagInfo: types.NewIdTagInfo(h.idTags[idTag]),
		})
	}
	return request, nil
}

func (h *SystemHandler) OnTriggerMessage(nodeId ocpp.NodeId, connectorId int, messageTrigger types.MessageTrigger) (remotetrigger.TriggerMessageRequest, error) {
	h.mux.Lock()
	_, ok := h.chargePoints[nodeId]
	h.mux.Unlock()
	if !ok {
		return remotetrigger.TriggerMessageRequest{}, errors.NotFoundf("charge point %s", nodeId)
	}
	if _, valid := types.ParseMessageTrigger(string(messageTrigger)); !valid {
		return remotetrigger.TriggerMessageRequest{}, errors.NotValidf("message trigger %q", messageTrigger)
	}
	return remotetrigger.NewTriggerMessageRequest(messageTrigger, connectorId), nil
}
