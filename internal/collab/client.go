package collab

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
	bufferSize = 256
)

// Client is one websocket connection editing a drawing. ReadPump decodes
// frames, Run applies them to the connection's Session on one goroutine, and
// WritePump drains outgoing frames.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	session *Session

	send   chan []byte
	inbox  chan *Message
	remote chan OpBroadcastPayload

	done     chan struct{}
	doneOnce sync.Once

	ClientID    string
	TemplateID  string
	ProfileID   string
	DisplayName string
}

func NewClient(hub *Hub, conn *websocket.Conn, session *Session, clientID, profileID, displayName string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		session:     session,
		send:        make(chan []byte, bufferSize),
		inbox:       make(chan *Message, bufferSize),
		remote:      make(chan OpBroadcastPayload, bufferSize),
		done:        make(chan struct{}),
		ClientID:    clientID,
		TemplateID:  session.template.ID,
		ProfileID:   profileID,
		DisplayName: displayName,
	}
}

func (c *Client) ReadPump(ctx context.Context) {
	defer close(c.inbox)

	c.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			slog.Debug("read error", "error", err, "client", c.ClientID)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("invalid message", "error", err, "client", c.ClientID)
			c.sendError("invalid message")
			continue
		}
		msg.ClientID = c.ClientID
		msg.TemplateID = c.TemplateID

		// Presence does not touch the engine and is fanned out by the hub.
		if msg.Type == TypePresenceUpdate {
			c.hub.handlePresenceUpdate(c, &msg)
			continue
		}

		select {
		case c.inbox <- &msg:
		case <-ctx.Done():
			return
		}
	}
}

// Run greets the client and then serves its messages and the room's remote
// changes until ReadPump stops.
func (c *Client) Run(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	if msg, err := newMessage(TypeWelcome, c.session.Welcome(c.ClientID)); err == nil {
		c.Send(msg)
	}
	c.sendRender()

	for {
		select {
		case msg, ok := <-c.inbox:
			if !ok {
				return
			}
			c.handle(ctx, msg)

		case op := <-c.remote:
			c.session.ApplyRemote(op)
			if msg, err := newMessage(TypeOpBroadcast, op); err == nil {
				c.Send(msg)
			}
			c.sendRender()

		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) handle(ctx context.Context, msg *Message) {
	out, err := c.session.Handle(ctx, msg)
	if err != nil {
		slog.Debug("message rejected", "type", msg.Type, "error", err, "client", c.ClientID)
		c.sendError(err.Error())
		return
	}
	for _, reply := range out.Replies {
		reply.Seq = msg.Seq
		c.Send(reply)
	}
	for _, r := range out.Commits {
		c.hub.broadcastOp(c, r)
	}
}

func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message := <-c.send:
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				slog.Debug("write error", "error", err, "client", c.ClientID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	select {
	case <-c.done:
	case c.send <- data:
	default:
		slog.Warn("client send buffer full, dropping message", "client", c.ClientID)
	}
}

// deliver queues a remote change for Run. It never blocks the sender.
func (c *Client) deliver(op OpBroadcastPayload) {
	select {
	case <-c.done:
	case c.remote <- op:
	default:
		slog.Warn("client remote buffer full, dropping change", "client", c.ClientID, "shape", op.Shape.ID)
	}
}

func (c *Client) sendRender() {
	msg, err := c.session.RenderMessage()
	if err != nil {
		slog.Error("render frame", "error", err)
		return
	}
	c.Send(msg)
}

func (c *Client) sendError(text string) {
	if msg, err := newMessage(TypeError, ErrorPayload{Message: text}); err == nil {
		c.Send(msg)
	}
}

func (c *Client) close() {
	c.doneOnce.Do(func() { close(c.done) })
}
