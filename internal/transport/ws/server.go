// Package ws exposes sessions over a WebSocket request/reply protocol.
// One connection owns one session; the client drives RESET/ACT strictly
// in turn and every step is answered with an OBS frame.
package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"craftstream.ai/internal/protocol"
	simenc "craftstream.ai/internal/sim/encoding"
	"craftstream.ai/internal/sim/session"
	"craftstream.ai/internal/sim/world"
)

// Config wires the server to the rest of the process. NewSession is
// called once per connection; the hooks fire on the session's behalf
// and must not block for long.
type Config struct {
	NewSession func() *session.Session
	Welcome    func(sessionID string) protocol.WelcomeMsg

	OnEpisodeEnd func(session.EpisodeLogEntry)
	OnFeedback   func(sessionID string, rates []float64)
}

type Server struct {
	cfg Config
	log *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(cfg Config, logger *log.Logger) *Server {
	return &Server{
		cfg: cfg,
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sessionID, ok := s.handshake(conn)
		if !ok {
			return
		}

		c := &client{
			srv:       s,
			conn:      conn,
			sessionID: sessionID,
			sess:      s.cfg.NewSession(),
		}
		c.loop()
	}
}

func (s *Server) handshake(conn *websocket.Conn) (sessionID string, ok bool) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", false
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return "", false
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", false
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return "", false
	}

	sessionID = uuid.NewString()
	welcome := s.cfg.Welcome(sessionID)
	if err := writeJSON(conn, welcome); err != nil {
		return "", false
	}
	if s.log != nil {
		name := hello.AgentName
		if name == "" {
			name = "agent"
		}
		s.log.Printf("session %s: %s connected", sessionID, name)
	}
	return sessionID, true
}

// client is the per-connection state. The loop is synchronous: no
// writer goroutine is needed because replies are only sent in response
// to requests.
type client struct {
	srv       *Server
	conn      *websocket.Conn
	sessionID string
	sess      *session.Session

	episodeLogged bool
}

func (c *client) loop() {
	defer c.finishEpisode()
	for {
		_ = c.conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			c.sendError(protocol.ErrProtoBadRequest, "malformed JSON")
			continue
		}
		if base.ProtocolVersion != protocol.Version {
			c.sendError(protocol.ErrProtoBadRequest, "bad protocol_version")
			continue
		}

		switch base.Type {
		case protocol.TypeReset:
			c.handleReset(msg)
		case protocol.TypeAct:
			c.handleAct(msg)
		case protocol.TypeFeedback:
			c.handleFeedback(msg)
		default:
			c.sendError(protocol.ErrProtoBadRequest, "unexpected message type "+base.Type)
		}
	}
}

func (c *client) handleReset(msg []byte) {
	var req protocol.ResetMsg
	if err := json.Unmarshal(msg, &req); err != nil {
		c.sendError(protocol.ErrProtoBadRequest, "malformed RESET")
		return
	}
	switch req.Mode {
	case "", "train":
		c.sess.SetCurriculum(true)
	case "eval":
		c.sess.SetCurriculum(false)
	default:
		c.sendError(protocol.ErrProtoBadRequest, "unknown mode "+req.Mode)
		return
	}

	// An abandoned in-flight episode still gets logged.
	c.finishEpisode()

	obs := c.sess.Reset()
	c.episodeLogged = false
	c.send(c.obsMsg(obs, 0, false, nil, nil))
}

func (c *client) handleAct(msg []byte) {
	var req protocol.ActMsg
	if err := json.Unmarshal(msg, &req); err != nil {
		c.sendError(protocol.ErrProtoBadRequest, "malformed ACT")
		return
	}
	a, err := world.ParseAction(req.Action)
	if err != nil {
		c.sendError(protocol.ErrBadAction, err.Error())
		return
	}
	if c.sess.Episode() == 0 {
		c.sendError(protocol.ErrNotReset, "RESET required before ACT")
		return
	}
	if c.sess.Done() {
		c.sendError(protocol.ErrEpisodeDone, "episode is done; RESET required")
		return
	}

	res, err := c.sess.Step(a)
	if err != nil {
		c.sendError(protocol.ErrInternal, err.Error())
		return
	}
	if res.Done {
		c.finishEpisode()
	}
	c.send(c.obsMsg(res.Obs, res.Reward, res.Done, res.Given, res.Follow))
}

func (c *client) handleFeedback(msg []byte) {
	var req protocol.FeedbackMsg
	if err := json.Unmarshal(msg, &req); err != nil {
		c.sendError(protocol.ErrProtoBadRequest, "malformed FEEDBACK")
		return
	}
	if err := c.sess.PushEvalFeedback(req.TaskSuccessRates); err != nil {
		c.sendError(protocol.ErrBadFeedback, err.Error())
		return
	}
	if c.srv.cfg.OnFeedback != nil {
		c.srv.cfg.OnFeedback(c.sessionID, req.TaskSuccessRates)
	}
}

// finishEpisode logs the current episode exactly once. Called when an
// episode completes, when the client resets early, and on disconnect.
func (c *client) finishEpisode() {
	if c.episodeLogged || c.sess == nil || c.sess.Episode() == 0 {
		return
	}
	c.episodeLogged = true
	if c.srv.cfg.OnEpisodeEnd != nil {
		c.srv.cfg.OnEpisodeEnd(c.sess.LogEntry(uuid.NewString()))
	}
}

func (c *client) obsMsg(obs session.Observation, reward float64, done bool, given, follow map[string]int) protocol.ObsMsg {
	p := c.sess.World().Player()
	enc := make([]uint8, len(obs.TaskEnc))
	copy(enc, obs.TaskEnc)
	return protocol.ObsMsg{
		Type:            protocol.TypeObs,
		ProtocolVersion: protocol.Version,
		Episode:         c.sess.Episode(),
		Step:            c.sess.StepCount(),
		View: protocol.ViewObs{
			Side:     obs.ViewSide,
			Encoding: "RLE",
			Data:     simenc.EncodeView(obs.View),
		},
		TaskEnc: enc,
		Self: protocol.SelfObs{
			Pos:      [2]int{p.Pos.X, p.Pos.Y},
			Facing:   [2]int{p.Facing.X, p.Facing.Y},
			HP:       p.HP,
			Food:     p.Food,
			Drink:    p.Drink,
			Energy:   p.Energy,
			Sleeping: p.Sleeping,
		},
		Inventory:  p.CopyInventory(),
		Reward:     reward,
		Done:       done,
		GivenAchs:  given,
		FollowAchs: follow,
	}
}

func (c *client) sendError(code, message string) {
	c.send(protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         message,
	})
}

func (c *client) send(v any) {
	if err := writeJSON(c.conn, v); err != nil && c.srv.log != nil {
		c.srv.log.Printf("session %s: write failed: %v", c.sessionID, err)
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
