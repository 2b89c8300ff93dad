package collab

import (
	"encoding/json"
	"testing"

	"github.com/apppaint/apppaint/internal/document"
	"github.com/apppaint/apppaint/internal/engine"
)

func drainTypes(c *Client) []string {
	var types []string
	for {
		select {
		case data := <-c.send:
			var m Message
			if err := json.Unmarshal(data, &m); err == nil {
				types = append(types, m.Type)
			}
		default:
			return types
		}
	}
}

func contains(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}

func TestHubRoomLifecycle(t *testing.T) {
	st, tmpl := newTestStore(t)
	h := NewHub()

	a := NewClient(h, nil, newTestSession(t, st, tmpl.ID), "client_a", "", "Ann")
	b := NewClient(h, nil, newTestSession(t, st, tmpl.ID), "client_b", "", "Bo")

	h.addClient(a)
	h.addClient(b)
	if got := h.ClientCount(tmpl.ID); got != 2 {
		t.Fatalf("ClientCount = %d, want 2", got)
	}
	if got := drainTypes(a); !contains(got, TypePresenceState) || !contains(got, TypePresenceJoin) {
		t.Errorf("first client got %v, want state and join", got)
	}
	if got := drainTypes(b); contains(got, TypePresenceJoin) {
		t.Errorf("joining client got its own join: %v", got)
	}

	h.removeClient(b)
	if got := h.ClientCount(tmpl.ID); got != 1 {
		t.Fatalf("ClientCount = %d, want 1", got)
	}
	if got := drainTypes(a); !contains(got, TypePresenceLeave) {
		t.Errorf("remaining client got %v, want leave", got)
	}
	select {
	case <-b.done:
	default:
		t.Error("removed client not closed")
	}

	h.removeClient(a)
	if got := h.ClientCount(tmpl.ID); got != 0 {
		t.Errorf("ClientCount = %d after empty room", got)
	}
}

func TestHubBroadcastOp(t *testing.T) {
	st, tmpl := newTestStore(t)
	h := NewHub()

	a := NewClient(h, nil, newTestSession(t, st, tmpl.ID), "client_a", "", "Ann")
	b := NewClient(h, nil, newTestSession(t, st, tmpl.ID), "client_b", "", "Bo")
	h.addClient(a)
	h.addClient(b)

	shape := document.Shape{
		ID:     "shape_x",
		Kind:   document.KindLine,
		Points: []document.Point{{X: 0, Y: 0}, {X: 1, Y: 1}},
		Style:  document.DefaultStyle(),
	}
	h.broadcastOp(a, engine.Result{Op: engine.ResultCreated, Shape: shape})
	h.broadcastOp(a, engine.Result{Op: engine.ResultDeleted, Shape: shape})

	for i, want := range []struct {
		op  engine.ResultOp
		seq int64
	}{{engine.ResultCreated, 1}, {engine.ResultDeleted, 2}} {
		select {
		case op := <-b.remote:
			if op.Op != want.op || op.ServerSeq != want.seq || op.ClientID != a.ClientID {
				t.Errorf("op %d = %+v, want %s seq %d", i, op, want.op, want.seq)
			}
		default:
			t.Fatalf("op %d not delivered", i)
		}
	}
	select {
	case op := <-a.remote:
		t.Errorf("sender received its own op %+v", op)
	default:
	}
}

func TestHubPresenceUpdate(t *testing.T) {
	st, tmpl := newTestStore(t)
	h := NewHub()

	a := NewClient(h, nil, newTestSession(t, st, tmpl.ID), "client_a", "", "Ann")
	b := NewClient(h, nil, newTestSession(t, st, tmpl.ID), "client_b", "", "Bo")
	h.addClient(a)
	h.addClient(b)
	drainTypes(a)
	drainTypes(b)

	msg, err := newMessage(TypePresenceUpdate, PresencePayload{Cursor: &CursorPos{X: 4, Y: 5}})
	if err != nil {
		t.Fatal(err)
	}
	h.handlePresenceUpdate(a, msg)

	select {
	case data := <-b.send:
		var got Message
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatal(err)
		}
		var p PresencePayload
		if err := json.Unmarshal(got.Payload, &p); err != nil {
			t.Fatal(err)
		}
		if got.ClientID != a.ClientID || p.DisplayName != "Ann" || p.Cursor == nil || p.Cursor.X != 4 {
			t.Errorf("presence = %+v %+v", got, p)
		}
	default:
		t.Fatal("presence not broadcast")
	}
	if got := drainTypes(a); len(got) != 0 {
		t.Errorf("sender got %v", got)
	}
}

func TestHubStopClosesClients(t *testing.T) {
	st, tmpl := newTestStore(t)
	h := NewHub()
	a := NewClient(h, nil, newTestSession(t, st, tmpl.ID), "client_a", "", "Ann")
	h.addClient(a)

	h.Stop()
	h.Stop()

	select {
	case <-a.done:
	default:
		t.Error("client not closed on stop")
	}
	if got := h.ClientCount(tmpl.ID); got != 0 {
		t.Errorf("ClientCount = %d after stop", got)
	}

	late := NewClient(h, nil, newTestSession(t, st, tmpl.ID), "client_late", "", "Late")
	h.Register(late)
	select {
	case <-late.done:
	default:
		t.Error("register after stop should close the client")
	}
}
