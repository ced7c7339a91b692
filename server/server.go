package server

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"slices"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/juju/errors"
	"github.com/julienschmidt/httprouter"

	"ocppmsg/internal"
	"ocppmsg/internal/config"
	"ocppmsg/metrics/counters"
	"ocppmsg/ocpp"
)

const (
	wsEndpoint = "/ws/:id"
)

type Server struct {
	conf           *config.Config
	httpServer     *http.Server
	upgrader       websocket.Upgrader
	messageHandler func(ws *WebSocket, data []byte) error
	logger         internal.LogHandler
	mux            sync.RWMutex
	connections    map[ocpp.NodeId]*WebSocket
}

type WebSocket struct {
	conn   *websocket.Conn
	id     ocpp.NodeId
	mux    sync.Mutex
	closed bool
}

func (ws *WebSocket) ID() ocpp.NodeId {
	return ws.id
}

func (ws *WebSocket) IsClosed() bool {
	ws.mux.Lock()
	defer ws.mux.Unlock()
	return ws.closed
}

// Write serializes writers; gorilla connections support one concurrent writer.
func (ws *WebSocket) Write(data []byte) error {
	ws.mux.Lock()
	defer ws.mux.Unlock()
	if ws.closed {
		return errors.Errorf("connection %s is closed", ws.id)
	}
	return ws.conn.WriteMessage(websocket.TextMessage, data)
}

func (ws *WebSocket) close() error {
	ws.mux.Lock()
	defer ws.mux.Unlock()
	if ws.closed {
		return nil
	}
	ws.closed = true
	return ws.conn.Close()
}

func NewServer(conf *config.Config, logger internal.LogHandler) *Server {
	server := Server{
		conf:        conf,
		logger:      logger,
		upgrader:    websocket.Upgrader{Subprotocols: []string{}},
		connections: make(map[ocpp.NodeId]*WebSocket),
	}
	server.upgrader.CheckOrigin = func(r *http.Request) bool {
		return true
	}
	// register itself as a router for httpServer handler
	router := httprouter.New()
	server.Register(router)
	server.httpServer = &http.Server{
		Handler: router,
	}
	return &server
}

func (s *Server) AddSupportedSubProtocol(proto string) {
	if slices.Contains(s.upgrader.Subprotocols, proto) {
		return
	}
	s.upgrader.Subprotocols = append(s.upgrader.Subprotocols, proto)
}

func (s *Server) SetMessageHandler(handler func(ws *WebSocket, data []byte) error) {
	s.messageHandler = handler
}

func (s *Server) Register(router *httprouter.Router) {
	router.GET(wsEndpoint, s.handleWsRequest)
}

// Connection returns the live socket of a charge point.
func (s *Server) Connection(id ocpp.NodeId) (*WebSocket, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	ws, ok := s.connections[id]
	return ws, ok
}

// supportsSubProtocol accepts any client when no sub protocol is configured.
func (s *Server) supportsSubProtocol(r *http.Request) bool {
	if len(s.upgrader.Subprotocols) == 0 {
		return true
	}
	for _, proto := range websocket.Subprotocols(r) {
		if slices.Contains(s.upgrader.Subprotocols, proto) {
			return true
		}
	}
	return false
}

func (s *Server) handleWsRequest(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	id := ocpp.NodeId(params.ByName("id"))
	s.logger.Debug(fmt.Sprintf("connection initiated from remote %s", r.RemoteAddr))

	if !s.supportsSubProtocol(r) {
		s.logger.Warn(fmt.Sprintf("%s: no supported sub protocol in %v", id, websocket.Subprotocols(r)))
		http.Error(w, "unsupported sub protocol", http.StatusBadRequest)
		return
	}

	// the upgrader answers the negotiated protocol itself
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("upgrade failed", err)
		return
	}

	s.logger.Debug(fmt.Sprintf("upgraded socket for %s and ready to receive data", id))
	ws := &WebSocket{
		conn: conn,
		id:   id,
	}
	s.addConnection(ws)

	go s.messageReader(ws)
}

func (s *Server) addConnection(ws *WebSocket) {
	s.mux.Lock()
	previous, ok := s.connections[ws.id]
	s.connections[ws.id] = ws
	count := len(s.connections)
	s.mux.Unlock()
	if ok && previous != ws {
		s.logger.Warn(fmt.Sprintf("%s reconnected, closing previous socket", ws.id))
		_ = previous.close()
	}
	counters.ObserveConnections(count)
}

func (s *Server) removeConnection(ws *WebSocket) {
	s.mux.Lock()
	if current, ok := s.connections[ws.id]; ok && current == ws {
		delete(s.connections, ws.id)
	}
	count := len(s.connections)
	s.mux.Unlock()
	counters.ObserveConnections(count)
}

func (s *Server) messageReader(ws *WebSocket) {
	defer s.removeConnection(ws)
	conn := ws.conn
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, 3001) {
				s.logger.Debug(fmt.Sprintf("id %s leaving session", ws.id))
			} else {
				s.logger.Debug(fmt.Sprintf("id %s is closing session %s", ws.id, err))
			}
			if err = ws.close(); err != nil {
				s.logger.Warn(fmt.Sprintf("error while closing socket %s %s", ws.id, err))
			}
			return
		}
		s.logger.RawDataEvent("IN", string(message))
		if s.messageHandler != nil {
			if err = s.messageHandler(ws, message); err != nil {
				s.logger.Error(fmt.Sprintf("handling message from %s", ws.id), err)
			}
		}
	}
}

func (s *Server) Start() error {
	if s.conf == nil {
		return errors.New("configuration not loaded")
	}
	serverAddress := fmt.Sprintf("%s:%s", s.conf.Listen.BindIP, s.conf.Listen.Port)
	s.logger.Debug(fmt.Sprintf("starting server on %s", serverAddress))
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return errors.Trace(err)
	}
	if s.conf.Listen.TLS {
		s.logger.Debug("starting https TLS server")
		err = s.httpServer.ServeTLS(listener, s.conf.Listen.CertFile, s.conf.Listen.KeyFile)
	} else {
		s.logger.Debug("starting http server")
		err = s.httpServer.Serve(listener)
	}
	return err
}

// Connection is the socket of one charge point as seen by the message handler.
type Connection interface {
	ID() ocpp.NodeId
	Write(data []byte) error
}

// Send writes one OCPP-J frame to the charge point id.
func (s *Server) Send(id ocpp.NodeId, frame json.Marshaler) error {
	ws, ok := s.Connection(id)
	if !ok {
		return errors.NotFoundf("connection %s", id)
	}
	return writeFrame(s.logger, ws, frame)
}

func writeFrame(logger internal.LogHandler, conn Connection, frame json.Marshaler) error {
	data, err := frame.MarshalJSON()
	if err != nil {
		logger.Error("error encoding frame", err)
		return errors.Trace(err)
	}
	logger.RawDataEvent("OUT", string(data))
	if err = conn.Write(data); err != nil {
		logger.Error(fmt.Sprintf("error sending frame to %s", conn.ID()), err)
	}
	return err
}
