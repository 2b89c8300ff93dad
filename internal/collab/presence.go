package collab

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// PresenceManager tracks cursors and selections per connection in one room.
type PresenceManager struct {
	mu        sync.RWMutex
	presences map[string]*PresencePayload // clientID -> presence
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		presences: make(map[string]*PresencePayload),
	}
}

// Join records a connection with no cursor yet.
func (pm *PresenceManager) Join(clientID, displayName string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.presences[clientID] = &PresencePayload{DisplayName: displayName}
}

// Update merges p into the stored presence. A nil cursor or selection keeps
// the previous value. A copy of the merged presence is returned.
func (pm *PresenceManager) Update(clientID string, p *PresencePayload) *PresencePayload {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	cur, ok := pm.presences[clientID]
	if !ok {
		cur = &PresencePayload{}
	}
	next := *cur
	if p.Cursor != nil {
		next.Cursor = p.Cursor
	}
	if p.Selection != nil {
		next.Selection = p.Selection
	}
	pm.presences[clientID] = &next
	out := next
	return &out
}

func (pm *PresenceManager) Remove(clientID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.presences, clientID)
}

func (pm *PresenceManager) GetAll() map[string]*PresencePayload {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	result := make(map[string]*PresencePayload, len(pm.presences))
	for k, v := range pm.presences {
		result[k] = v
	}
	return result
}

func (pm *PresenceManager) StateMessage() *Message {
	msg, err := newMessage(TypePresenceState, PresenceStatePayload{Presences: pm.GetAll()})
	if err != nil {
		slog.Error("marshal presence state", "error", err)
		return nil
	}
	return msg
}

func decodePresence(raw json.RawMessage) (*PresencePayload, error) {
	var p PresencePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
