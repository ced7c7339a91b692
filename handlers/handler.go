package handlers

import (
	"context"

	"ocppmsg/ocpp"
	"ocppmsg/ocpp/core"
)

// SystemHandler answers the operations a charge point initiates.
type SystemHandler interface {
	OnBootNotification(ctx context.Context, request *ocpp.Request[core.BootNotificationRequest]) (*ocpp.Response[core.BootNotificationRequest, core.BootNotificationResponse], error)
	OnAuthorize(ctx context.Context, request *ocpp.Request[core.AuthorizeRequest]) (*ocpp.Response[core.AuthorizeRequest, core.AuthorizeResponse], error)
	OnHeartbeat(ctx context.Context, request *ocpp.Request[core.HeartbeatRequest]) (*ocpp.Response[core.HeartbeatRequest, core.HeartbeatResponse], error)
	OnStartTransaction(ctx context.Context, request *ocpp.Request[core.StartTransactionRequest]) (*ocpp.Response[core.StartTransactionRequest, core.StartTransactionResponse], error)
	OnDataTransfer(ctx context.Context, request *ocpp.Request[core.DataTransferRequest]) (*ocpp.Response[core.DataTransferRequest, core.DataTransferResponse], error)
}

// Register adds a route for every operation of handler.
func Register(router *ocpp.Router, handler SystemHandler) {
	router.Add(ocpp.NewRoute(core.BootNotification, handler.OnBootNotification))
	router.Add(ocpp.NewRoute(core.Authorize, handler.OnAuthorize))
	router.Add(ocpp.NewRoute(core.Heartbeat, handler.OnHeartbeat))
	router.Add(ocpp.NewRoute(core.StartTransaction, handler.OnStartTransaction))
	router.Add(ocpp.NewRoute(core.DataTransfer, handler.OnDataTransfer))
}
