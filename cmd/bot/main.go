package main

import (
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"craftstream.ai/internal/protocol"
)

// A random-policy client, useful for smoke-testing a server and for
// generating baseline episode logs.
func main() {
	var (
		url      = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name     = flag.String("name", "bot", "agent name")
		mode     = flag.String("mode", "train", "episode mode: train or eval")
		episodes = flag.Int("episodes", 10, "episodes to run (0 = forever)")
		seed     = flag.Int64("seed", 1, "policy rng seed")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	rng := rand.New(rand.NewSource(*seed))

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		AgentName:       *name,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	var actions []string
	finished := 0
	epReturn := 0.0

	reset := func() {
		msg := protocol.ResetMsg{Type: protocol.TypeReset, ProtocolVersion: protocol.Version, Mode: *mode}
		if err := conn.WriteJSON(msg); err != nil {
			logger.Fatalf("send RESET: %v", err)
		}
		epReturn = 0
	}

	for {
		select {
		case <-stop:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			actions = w.Tasks.Actions
			logger.Printf("WELCOME session=%s tasks=%d enc_width=%d actions=%d",
				w.SessionID, w.Tasks.Count, w.Tasks.EncodingWidth, len(actions))
			reset()

		case protocol.TypeObs:
			var obs protocol.ObsMsg
			if err := json.Unmarshal(msg, &obs); err != nil {
				continue
			}
			epReturn += obs.Reward
			if obs.Done {
				finished++
				logger.Printf("episode %d done: steps=%d return=%.1f", obs.Episode, obs.Step, epReturn)
				if *episodes > 0 && finished >= *episodes {
					return
				}
				reset()
				continue
			}
			act := protocol.ActMsg{
				Type:            protocol.TypeAct,
				ProtocolVersion: protocol.Version,
				Action:          actions[rng.Intn(len(actions))],
			}
			if err := conn.WriteJSON(act); err != nil {
				return
			}

		case protocol.TypeError:
			var e protocol.ErrorMsg
			if err := json.Unmarshal(msg, &e); err != nil {
				continue
			}
			logger.Printf("server error %s: %s", e.Code, e.Message)
			if e.Code == protocol.ErrEpisodeDone || e.Code == protocol.ErrNotReset {
				reset()
			}
		}
	}
}
