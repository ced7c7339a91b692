package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"ocppmsg/internal"
)

const (
	logEndpoint     = "/api/log"
	logNodeEndpoint = "/api/log/:id"
)

type Handler struct {
	logger   internal.LogHandler
	database internal.Database
}

func NewApiHandler(logger internal.LogHandler, database internal.Database) *Handler {
	return &Handler{logger: logger, database: database}
}

func (h *Handler) Register(router *httprouter.Router) {
	router.GET(logEndpoint, h.ReadLog)
	router.GET(logNodeEndpoint, h.ReadLog)
}

// ReadLog answers the newest feature log records, optionally for one charge point
// and limited by the limit query parameter.
func (h *Handler) ReadLog(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	nodeId := params.ByName("id")
	h.logger.Debug(fmt.Sprintf("api call ReadLog %s from remote %s", nodeId, r.RemoteAddr))
	if h.database == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	var limit int64
	if value := r.URL.Query().Get("limit"); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil || parsed <= 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	data, err := h.database.ReadLog(r.Context(), nodeId, limit)
	if err != nil {
		h.logger.Error("read log error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if data == nil {
		data = []internal.FeatureLogMessage{}
	}
	byteData, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("encoding log data failed", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Add("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(byteData)
}
