package server

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/juju/errors"

	"ocppmsg/handlers"
	"ocppmsg/internal"
	"ocppmsg/internal/config"
	"ocppmsg/metrics/counters"
	"ocppmsg/ocpp"
	"ocppmsg/ocpp/core"
	"ocppmsg/ocpp/localauth"
	"ocppmsg/ocpp/remotetrigger"
	"ocppmsg/signature"
	"ocppmsg/types"
)

const (
	centralSystemNode  ocpp.NodeId = "central-system"
	defaultCallTimeout             = 30 * time.Second
)

type sender interface {
	Send(id ocpp.NodeId, frame json.Marshaler) error
}

type CentralSystem struct {
	server        *Server
	api           *Api
	sender        sender
	router        *ocpp.Router
	logger        internal.LogHandler
	remoteTrigger remotetrigger.SystemHandler
	localAuth     localauth.SystemHandler
	callTimeout   time.Duration
	mux           sync.Mutex
	pending       map[string]pendingCall
}

// pendingCall waits for the reply of the node the call was sent to.
type pendingCall struct {
	nodeId ocpp.NodeId
	reply  chan any
}

type CentralSystemCommand struct {
	ChargePointId string `json:"charge_point_id"`
	ConnectorId   int    `json:"connector_id"`
	FeatureName   string `json:"feature_name"`
	Payload       string `json:"payload"`
}

func newCentralSystem(router *ocpp.Router, sender sender, logger internal.LogHandler) *CentralSystem {
	return &CentralSystem{
		sender:      sender,
		router:      router,
		logger:      logger,
		callTimeout: defaultCallTimeout,
		pending:     make(map[string]pendingCall),
	}
}

func (cs *CentralSystem) SetRemoteTriggerHandler(handler remotetrigger.SystemHandler) {
	cs.remoteTrigger = handler
}

func (cs *CentralSystem) SetLocalAuthHandler(handler localauth.SystemHandler) {
	cs.localAuth = handler
}

func (cs *CentralSystem) SetCallTimeout(timeout time.Duration) {
	if timeout > 0 {
		cs.callTimeout = timeout
	}
}

func (cs *CentralSystem) handleIncomingMessage(conn Connection, data []byte) error {
	message, err := ParseMessage(data)
	if err != nil {
		counters.CountFormatError("")
		var frameError *FrameError
		if errors.As(err, &frameError) && frameError.UniqueId != "" {
			if frameError.IsReply {
				cs.resolve(conn.ID(), frameError.UniqueId, frameError)
				return err
			}
			return writeFrame(cs.logger, conn, callErrorFor(frameError.UniqueId, err))
		}
		return err
	}
	switch m := message.(type) {
	case *CallResult:
		cs.resolve(conn.ID(), m.UniqueId, m)
	case *CallError:
		cs.logger.Warn(fmt.Sprintf("error message received from charge point %s: %s", conn.ID(), m.Error()))
		cs.resolve(conn.ID(), m.UniqueId, m)
	case *CallRequest:
		return writeFrame(cs.logger, conn, cs.serveCall(conn.ID(), m))
	}
	return nil
}

func (cs *CentralSystem) serveCall(nodeId ocpp.NodeId, call *CallRequest) json.Marshaler {
	meta := ocpp.RequestMeta{
		RequestId:   ocpp.RequestId(call.UniqueId),
		NodeId:      nodeId,
		NetworkPath: ocpp.NewNetworkPath(nodeId, centralSystemNode),
		Timestamp:   time.Now(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), cs.callTimeout)
	defer cancel()
	payload, err := cs.router.Dispatch(ctx, call.Action, meta, call.Payload)
	if err != nil {
		var formatError *ocpp.FormatError
		if errors.As(err, &formatError) {
			counters.CountFormatError(call.Action)
		}
		cs.logger.FeatureEvent(call.Action, string(nodeId), fmt.Sprintf("call %s rejected: %s", call.UniqueId, err))
		return callErrorFor(call.UniqueId, err)
	}
	counters.CountDecoded(call.Action)
	return &CallResult{UniqueId: call.UniqueId, Payload: payload}
}

func (cs *CentralSystem) register(nodeId ocpp.NodeId, uniqueId string) chan any {
	reply := make(chan any, 1)
	cs.mux.Lock()
	cs.pending[uniqueId] = pendingCall{nodeId: nodeId, reply: reply}
	cs.mux.Unlock()
	return reply
}

func (cs *CentralSystem) unregister(uniqueId string) {
	cs.mux.Lock()
	delete(cs.pending, uniqueId)
	cs.mux.Unlock()
}

func (cs *CentralSystem) resolve(nodeId ocpp.NodeId, uniqueId string, frame any) {
	cs.mux.Lock()
	call, ok := cs.pending[uniqueId]
	if ok && call.nodeId != nodeId {
		cs.mux.Unlock()
		cs.logger.Warn(fmt.Sprintf("reply %s from charge point %s to a call sent to %s", uniqueId, nodeId, call.nodeId))
		return
	}
	delete(cs.pending, uniqueId)
	cs.mux.Unlock()
	if !ok {
		cs.logger.Warn(fmt.Sprintf("unexpected reply %s from charge point %s", uniqueId, nodeId))
		return
	}
	call.reply <- frame
}

// SendCall sends request to its node and waits for the reply. It never returns nil: transport
// failures, timeouts, CALLERRORs and malformed replies come back as a failed response.
func SendCall[P ocpp.RequestPayload[R], R ocpp.Feature](ctx context.Context, cs *CentralSystem, codec *ocpp.Codec[P, R], request *ocpp.Request[P]) *ocpp.Response[P, R] {
	response := sendCall(ctx, cs, codec, request)
	counters.CountCallResult(codec.FeatureName(), response.Result().Code.String())
	if !response.IsSuccess() {
		cs.logger.FeatureEvent(codec.FeatureName(), string(request.NodeId()), response.Result().String())
	}
	return response
}

func sendCall[P ocpp.RequestPayload[R], R ocpp.Feature](ctx context.Context, cs *CentralSystem, codec *ocpp.Codec[P, R], request *ocpp.Request[P]) *ocpp.Response[P, R] {
	uniqueId := string(request.RequestId())
	reply := cs.register(request.NodeId(), uniqueId)
	defer cs.unregister(uniqueId)

	call := &CallRequest{UniqueId: uniqueId, Action: codec.FeatureName(), Payload: codec.RequestToJSON(request)}
	if err := cs.sender.Send(request.NodeId(), call); err != nil {
		return codec.Failed(request, ocpp.TransportError(err.Error()))
	}

	timeout := request.Timeout()
	if timeout <= 0 {
		timeout = cs.callTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return codec.Failed(request, ocpp.Timeout(ctx.Err().Error()))
	case <-timer.C:
		return codec.Failed(request, ocpp.Timeout(fmt.Sprintf("no reply within %s", timeout)))
	case frame := <-reply:
		switch f := frame.(type) {
		case *CallResult:
			return codec.DecodeResponseJSON(request, f.Payload)
		case *CallError:
			return codec.Failed(request, ocpp.ProtocolError(502, f.Error()))
		case *FrameError:
			return codec.Failed(request, ocpp.FormatErrorResult(f.Error()))
		}
		return codec.Failed(request, ocpp.ProtocolError(500, fmt.Sprintf("unexpected reply %T", frame)))
	}
}

func newOutgoingRequest[P ocpp.Feature](nodeId ocpp.NodeId, payload P) *ocpp.Request[P] {
	return ocpp.NewRequest(payload,
		ocpp.WithNodeId(nodeId),
		ocpp.WithNetworkPath(ocpp.NewNetworkPath(centralSystemNode, nodeId)))
}

func exchange[P ocpp.RequestPayload[R], R ocpp.Feature](ctx context.Context, cs *CentralSystem, codec *ocpp.Codec[P, R], nodeId ocpp.NodeId, payload P) (ocpp.JSONObject, ocpp.Result) {
	response := SendCall(ctx, cs, codec, newOutgoingRequest(nodeId, payload))
	if !response.IsSuccess() {
		return nil, response.Result()
	}
	return codec.ResponseToJSON(response), response.Result()
}

// handleApiRequest sends the command to its charge point and returns the encoded response.
func (cs *CentralSystem) handleApiRequest(ctx context.Context, command CentralSystemCommand) (ocpp.JSONObject, ocpp.Result, error) {
	if command.FeatureName == "" {
		return nil, ocpp.Result{}, errors.NotValidf("empty feature name")
	}
	nodeId := ocpp.NodeId(command.ChargePointId)
	if nodeId == "" {
		return nil, ocpp.Result{}, errors.NotValidf("empty charge point id")
	}
	switch command.FeatureName {
	case core.ResetFeatureName:
		resetType, ok := types.ParseResetType(command.Payload)
		if !ok {
			return nil, ocpp.Result{}, errors.NotValidf("reset type %q", command.Payload)
		}
		payload, result := exchange(ctx, cs, core.Reset, nodeId, core.NewResetRequest(resetType))
		return payload, result, nil
	case core.ChangeConfigurationFeatureName:
		key, value, ok := strings.Cut(command.Payload, "=")
		if !ok || key == "" {
			return nil, ocpp.Result{}, errors.NotValidf("configuration %q, expected key=value", command.Payload)
		}
		payload, result := exchange(ctx, cs, core.ChangeConfiguration, nodeId, core.NewChangeConfigurationRequest(key, value))
		return payload, result, nil
	case localauth.GetLocalListVersionFeatureName:
		payload, result := exchange(ctx, cs, localauth.GetLocalListVersion, nodeId, localauth.GetLocalListVersionRequest{})
		return payload, result, nil
	case localauth.SendLocalListFeatureName:
		if cs.localAuth == nil {
			return nil, ocpp.Result{}, errors.NotSupportedf("%s", command.FeatureName)
		}
		request, err := cs.localAuth.OnSendLocalList(nodeId)
		if err != nil {
			return nil, ocpp.Result{}, err
		}
		payload, result := exchange(ctx, cs, localauth.SendLocalList, nodeId, request)
		return payload, result, nil
	case remotetrigger.TriggerMessageFeatureName:
		if cs.remoteTrigger == nil {
			return nil, ocpp.Result{}, errors.NotSupportedf("%s", command.FeatureName)
		}
		request, err := cs.remoteTrigger.OnTriggerMessage(nodeId, command.ConnectorId, types.MessageTrigger(command.Payload))
		if err != nil {
			return nil, ocpp.Result{}, err
		}
		payload, result := exchange(ctx, cs, remotetrigger.TriggerMessage, nodeId, request)
		return payload, result, nil
	}
	return nil, ocpp.Result{}, errors.NotSupportedf("feature %s", command.FeatureName)
}

func (cs *CentralSystem) Start() {
	go func() {
		if err := cs.server.Start(); err != nil {
			cs.logger.Error("websocket server failed", err)
		}
	}()

	go func() {
		if err := cs.api.Start(); err != nil {
			cs.logger.Error("api server failed", err)
		}
	}()

	select {}
}

func loadVerifier(conf *config.Config) (*ocpp.Verifier, error) {
	policy, ok := signature.ParsePolicy(conf.Signing.Policy)
	if !ok {
		return nil, errors.NotValidf("signing policy %q", conf.Signing.Policy)
	}
	if conf.Signing.TrustedKeys == "" {
		if conf.Signing.RequireSigned {
			return nil, errors.NotValidf("require_signed without trusted keys")
		}
		return nil, nil
	}
	data, err := os.ReadFile(conf.Signing.TrustedKeys)
	if err != nil {
		return nil, errors.Annotate(err, "reading trusted keys")
	}
	keys, err := signature.ParseKeyRing(data)
	if err != nil {
		return nil, errors.Annotatef(err, "parsing %s", conf.Signing.TrustedKeys)
	}
	return &ocpp.Verifier{
		Keys:          keys,
		Policy:        policy,
		RequireSigned: conf.Signing.RequireSigned,
		Observe: func(feature string, status signature.Status) {
			counters.CountSignatureCheck(status.String())
		},
	}, nil
}

func NewCentralSystem(conf *config.Config) (*CentralSystem, error) {
	location, err := time.LoadLocation(conf.TimeZone)
	if err != nil {
		return nil, errors.Annotate(err, "time zone initialization failed")
	}

	logService := internal.NewLogger(location)
	logService.SetDebugMode(conf.Debug())

	var database internal.Database
	mongo, err := internal.NewMongoClient(conf)
	if err != nil {
		return nil, errors.Annotate(err, "mongodb setup failed")
	}
	if mongo != nil {
		database = mongo
		logService.SetDatabase(database)
		logService.Debug("mongodb is configured and enabled")
	} else {
		logService.Debug("database is disabled")
	}
	api := NewServerApi(conf, logService, database)

	systemHandler := internal.NewSystemHandler(logService)
	systemHandler.SetHeartbeatInterval(conf.Ocpp.HeartbeatInterval)

	router := ocpp.NewRouter()
	handlers.Register(router, systemHandler)
	verifier, err := loadVerifier(conf)
	if err != nil {
		return nil, err
	}
	if verifier != nil {
		router.SetVerifier(verifier)
		logService.Debug(fmt.Sprintf("signature verification enabled, policy %s", conf.Signing.Policy))
	}

	wsServer := NewServer(conf, logService)
	wsServer.AddSupportedSubProtocol(types.SubProtocol16)

	cs := newCentralSystem(router, wsServer, logService)
	cs.server = wsServer
	cs.api = api
	cs.SetCallTimeout(time.Duration(conf.Ocpp.CallTimeout) * time.Second)
	cs.SetRemoteTriggerHandler(systemHandler)
	cs.SetLocalAuthHandler(systemHandler)
	wsServer.SetMessageHandler(func(ws *WebSocket, data []byte) error {
		return cs.handleIncomingMessage(ws, data)
	})
	api.SetRequestHandler(cs.handleApiRequest)
	logService.Debug(fmt.Sprintf("routes: %s", strings.Join(router.Features(), ", ")))
	return cs, nil
}
