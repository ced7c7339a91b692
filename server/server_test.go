package server

import (
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gorilla/websocket"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"ocppmsg/internal/config"
)

type serverSuite struct {
	logger *stubLogger
	server *Server
	http   *httptest.Server
}

var _ = gc.Suite(&serverSuite{})

func (s *serverSuite) SetUpTest(c *gc.C) {
	s.logger = &stubLogger{}
	s.server = NewServer(&config.Config{}, s.logger)
	s.server.AddSupportedSubProtocol("ocpp1.6")
	s.server.SetMessageHandler(func(*WebSocket, []byte) error { return nil })
	s.http = httptest.NewServer(s.server.httpServer.Handler)
}

func (s *serverSuite) TearDownTest(c *gc.C) {
	s.http.Close()
}

func (s *serverSuite) dial(protocols ...string) (*websocket.Conn, *http.Response, error) {
	dialer := websocket.Dialer{Subprotocols: protocols}
	return dialer.Dial("ws"+strings.TrimPrefix(s.http.URL, "http")+"/ws/cp-1", nil)
}

func (s *serverSuite) TestNegotiatesSubProtocol(c *gc.C) {
	conn, _, err := s.dial("ocpp2.0.1", "ocpp1.6")
	c.Assert(err, jc.ErrorIsNil)
	defer conn.Close()
	c.Check(conn.Subprotocol(), gc.Equals, "ocpp1.6")
}

func (s *serverSuite) TestRejectsUnsupportedSubProtocol(c *gc.C) {
	_, response, err := s.dial("ocpp2.0.1")
	c.Assert(err, gc.Equals, websocket.ErrBadHandshake)
	c.Check(response.StatusCode, gc.Equals, http.StatusBadRequest)
	c.Check(s.logger.Warnings(), jc.DeepEquals, []string{"cp-1: no supported sub protocol in [ocpp2.0.1]"})

	_, response, err = s.dial()
	c.Assert(err, gc.Equals, websocket.ErrBadHandshake)
	c.Check(response.StatusCode, gc.Equals, http.StatusBadRequest)
}
