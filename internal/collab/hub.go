package collab

import (
	"log/slog"
	"sync"

	"github.com/coder/websocket"

	"github.com/apppaint/apppaint/internal/engine"
)

// Room is every connection editing one drawing.
type Room struct {
	templateID string
	clients    map[string]*Client // clientID -> client
	presence   *PresenceManager
	serverSeq  int64
}

func NewRoom(templateID string) *Room {
	return &Room{
		templateID: templateID,
		clients:    make(map[string]*Client),
		presence:   NewPresenceManager(),
	}
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // templateID -> room
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
	stopOnce   sync.Once
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.quit:
			return
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
		client.close()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
		client.close()
	}
}

// Stop closes every connection with a going-away status and stops Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.quit)

		h.mu.Lock()
		var wg sync.WaitGroup
		for _, room := range h.rooms {
			for _, c := range room.clients {
				c.close()
				if c.conn == nil {
					continue
				}
				wg.Add(1)
				go func(conn *websocket.Conn) {
					defer wg.Done()
					conn.Close(websocket.StatusGoingAway, "server shutting down")
				}(c.conn)
			}
		}
		h.rooms = make(map[string]*Room)
		h.mu.Unlock()
		wg.Wait()
	})
}

// ClientCount reports the connections currently in a drawing's room.
func (h *Hub) ClientCount(templateID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if room, ok := h.rooms[templateID]; ok {
		return len(room.clients)
	}
	return 0
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.TemplateID]
	if !ok {
		room = NewRoom(client.TemplateID)
		h.rooms[client.TemplateID] = room
	}
	room.clients[client.ClientID] = client
	room.presence.Join(client.ClientID, client.DisplayName)
	h.mu.Unlock()

	if stateMsg := room.presence.StateMessage(); stateMsg != nil {
		client.Send(stateMsg)
	}

	if joinMsg, err := newMessage(TypePresenceJoin, PresenceJoinPayload{
		ClientID:    client.ClientID,
		DisplayName: client.DisplayName,
	}); err == nil {
		joinMsg.ClientID = client.ClientID
		h.broadcastToRoom(client.TemplateID, joinMsg, client.ClientID)
	}

	slog.Info("client joined", "client", client.ClientID, "template", client.TemplateID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.TemplateID]
	if !ok {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	client.close()
	room.presence.Remove(client.ClientID)

	if len(room.clients) == 0 {
		delete(h.rooms, client.TemplateID)
	}
	h.mu.Unlock()

	if leaveMsg, err := newMessage(TypePresenceLeave, PresenceLeavePayload{ClientID: client.ClientID}); err == nil {
		leaveMsg.ClientID = client.ClientID
		h.broadcastToRoom(client.TemplateID, leaveMsg, "")
	}

	slog.Info("client left", "client", client.ClientID, "template", client.TemplateID)
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	presence, err := decodePresence(msg.Payload)
	if err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	h.mu.RLock()
	room, ok := h.rooms[sender.TemplateID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	merged := room.presence.Update(sender.ClientID, presence)
	if merged.DisplayName == "" {
		merged.DisplayName = sender.DisplayName
	}

	outMsg, err := newMessage(TypePresenceUpdate, merged)
	if err != nil {
		return
	}
	outMsg.ClientID = sender.ClientID
	h.broadcastToRoom(sender.TemplateID, outMsg, sender.ClientID)
}

// broadcastOp stamps a committed change with the room's next sequence number
// and hands it to every other connection in the room.
func (h *Hub) broadcastOp(sender *Client, r engine.Result) {
	h.mu.Lock()
	room, ok := h.rooms[sender.TemplateID]
	if !ok {
		h.mu.Unlock()
		return
	}
	room.serverSeq++
	op := OpBroadcastPayload{
		Op:        r.Op,
		Shape:     r.Shape,
		ClientID:  sender.ClientID,
		ServerSeq: room.serverSeq,
	}
	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != sender.ClientID {
			clients = append(clients, c)
		}
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.deliver(op)
	}
}

func (h *Hub) broadcastToRoom(templateID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[templateID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}
