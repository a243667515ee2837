package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/globetrotter/internal/adapters/nats"
)

const wsPingInterval = 30 * time.Second

// wsMessage is sent by the page. Actions: add_run, reset, toggle_animation,
// subscribe and unsubscribe (channel "events" relays the NATS journey stream).
type wsMessage struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

type ackData struct {
	Action   string `json:"action"`
	RunCount *int   `json:"run_count,omitempty"`
	Running  *bool  `json:"running,omitempty"`
	Channel  string `json:"channel,omitempty"`
}

type errorData struct {
	Message string `json:"message"`
}

// WebSocketHandler registers the connection with the hub, forwards every hub
// message to it, and executes the actions the page sends back.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		log := slog.Default().With("remote", c.RemoteAddr().String())
		if rid, ok := c.Locals("requestid").(string); ok {
			log = log.With("request_id", rid)
		}
		ctx := WithLogger(context.Background(), log)
		log.Info("ws client connected")

		client := deps.Hub.Register()
		writerDone := make(chan struct{})
		go wsWriter(c, client, writerDone)

		session := newWSSession(deps, client)
		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				break
			}
			session.handle(ctx, raw)
		}

		session.close()
		deps.Hub.Unregister(client)
		<-writerDone
		log.Info("ws client disconnected")
	}
}

// wsSession executes the actions one connected page sends. Replies go through
// the hub so they queue behind the broadcasts the action triggered.
type wsSession struct {
	deps   *Dependencies
	client *Client
	relay  *nats.Subscription
}

func newWSSession(deps *Dependencies, client *Client) *wsSession {
	return &wsSession{deps: deps, client: client}
}

func (s *wsSession) reply(msg Message) {
	s.deps.Hub.SendTo(s.client, msg)
}

func (s *wsSession) fail(text string) {
	s.reply(Message{Type: MsgError, Data: errorData{Message: text}})
}

func (s *wsSession) handle(ctx context.Context, raw []byte) {
	var m wsMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		s.fail("invalid JSON")
		return
	}

	switch m.Action {
	case "add_run":
		event := s.deps.Journeys.AddRun(ctx)
		n := event.Snapshot.RunCount
		s.reply(Message{Type: MsgAck, Data: ackData{Action: m.Action, RunCount: &n}})

	case "reset":
		event := s.deps.Journeys.Reset(ctx)
		n := event.Snapshot.RunCount
		s.reply(Message{Type: MsgAck, Data: ackData{Action: m.Action, RunCount: &n}})

	case "toggle_animation":
		running := s.deps.Animation.Toggle()
		s.reply(Message{Type: MsgAck, Data: ackData{Action: m.Action, Running: &running}})

	case "subscribe":
		if m.Channel != "events" {
			s.fail("unknown channel: " + m.Channel)
			return
		}
		if s.deps.NATS == nil {
			s.fail("event bus not configured")
			return
		}
		if s.relay != nil {
			s.reply(Message{Type: MsgAck, Data: ackData{Action: "already_subscribed", Channel: m.Channel}})
			return
		}
		client := s.client
		sub, err := s.deps.NATS.Subscribe(natsadapter.SubjectAll, func(msg *nats.Msg) {
			s.deps.Hub.SendTo(client, Message{Type: MsgJourneyEvent, Data: json.RawMessage(msg.Data)})
		})
		if err != nil {
			s.fail("subscribe failed: " + err.Error())
			return
		}
		s.relay = sub
		s.reply(Message{Type: MsgAck, Data: ackData{Action: m.Action, Channel: m.Channel}})

	case "unsubscribe":
		if s.relay == nil {
			s.fail("not subscribed to " + m.Channel)
			return
		}
		_ = s.relay.Unsubscribe()
		s.relay = nil
		s.reply(Message{Type: MsgAck, Data: ackData{Action: m.Action, Channel: m.Channel}})

	default:
		s.fail("unknown action: " + m.Action)
	}
}

// close drops the event relay, if any.
func (s *wsSession) close() {
	if s.relay != nil {
		_ = s.relay.Unsubscribe()
		s.relay = nil
	}
}

// wsWriter is the only goroutine writing to c. It exits when the hub closes
// the client's channel or a write fails.
func wsWriter(c *websocket.Conn, client *Client, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-client.Messages():
			if !ok {
				return
			}
			if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
