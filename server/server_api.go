package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/juju/errors"
	"github.com/julienschmidt/httprouter"

	"ocppmsg/api"
	"ocppmsg/internal"
	"ocppmsg/internal/config"
	"ocppmsg/ocpp"
)

const (
	apiEndpoint = "/api"
)

type Api struct {
	conf           *config.Config
	httpServer     *http.Server
	requestHandler func(ctx context.Context, command CentralSystemCommand) (ocpp.JSONObject, ocpp.Result, error)
	logger         internal.LogHandler
}

type commandResponse struct {
	Result  string          `json:"result"`
	Payload ocpp.JSONObject `json:"payload,omitempty"`
}

func NewServerApi(conf *config.Config, logger internal.LogHandler, database internal.Database) *Api {
	server := Api{
		conf:   conf,
		logger: logger,
	}
	router := httprouter.New()
	router.POST(apiEndpoint, server.handleCommand)
	api.NewApiHandler(logger, database).Register(router)
	server.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%s", conf.Api.BindIP, conf.Api.Port),
		Handler: router,
	}
	return &server
}

func (s *Api) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Api) SetRequestHandler(handler func(ctx context.Context, command CentralSystemCommand) (ocpp.JSONObject, ocpp.Result, error)) {
	s.requestHandler = handler
}

func statusFor(result ocpp.Result) int {
	switch result.Code {
	case ocpp.ResultOK:
		return http.StatusOK
	case ocpp.ResultTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func (s *Api) handleCommand(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Warn(fmt.Sprintf("api: error reading body from %s: %s", r.RemoteAddr, err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	var cmd CentralSystemCommand
	if err = json.Unmarshal(body, &cmd); err != nil {
		s.logger.Warn(fmt.Sprintf("api: error parsing command from %s: %s", r.RemoteAddr, err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if s.requestHandler == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	payload, result, err := s.requestHandler(r.Context(), cmd)
	if err != nil {
		s.logger.Warn(fmt.Sprintf("api: error sending command %s to %s: %s", cmd.FeatureName, cmd.ChargePointId, err))
		switch {
		case errors.Is(err, errors.NotValid):
			w.WriteHeader(http.StatusBadRequest)
		case errors.Is(err, errors.NotFound):
			w.WriteHeader(http.StatusNotFound)
		case errors.Is(err, errors.NotSupported):
			w.WriteHeader(http.StatusNotImplemented)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}
	data, err := json.Marshal(commandResponse{Result: result.String(), Payload: payload})
	if err != nil {
		s.logger.Error("api: encoding response", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Add("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusFor(result))
	_, _ = w.Write(data)
}
