package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(userID int) *Client {
	return &Client{
		userID: userID,
		send:   make(chan ServerEvent, 8),
	}
}

func drain(c *Client) []ServerEvent {
	var events []ServerEvent
	for {
		select {
		case evt := <-c.send:
			events = append(events, evt)
		default:
			return events
		}
	}
}

func TestHubRoomMembership(t *testing.T) {
	hub := newHub()
	a := newTestClient(1)
	b := newTestClient(2)
	hub.register(a)
	hub.register(b)
	defer hub.unregister(a)
	defer hub.unregister(b)

	hub.joinRoom(a, "date-1")
	hub.joinRoom(b, "date-1")

	hub.broadcastToRoom("date-1", a, ServerEvent{Type: "message", From: 1})

	if events := drain(b); len(events) != 1 || events[0].Type != "message" {
		t.Errorf("expected b to receive one message, got %v", events)
	}
	if events := drain(a); len(events) != 0 {
		t.Errorf("expected sender to be excluded from broadcast, got %v", events)
	}

	hub.leaveRoom(b, "date-1")
	hub.broadcastToRoom("date-1", a, ServerEvent{Type: "message", From: 1})
	if events := drain(b); len(events) != 0 {
		t.Errorf("expected no delivery after leaving the room, got %v", events)
	}
}

func TestHubUnregisterRemovesFromRooms(t *testing.T) {
	hub := newHub()
	a := newTestClient(1)
	b := newTestClient(2)
	hub.register(a)
	hub.register(b)
	hub.joinRoom(a, "date-2")
	hub.joinRoom(b, "date-2")

	hub.unregister(b)
	hub.broadcastToRoom("date-2", a, ServerEvent{Type: "message", From: 1})

	if events := drain(b); len(events) != 0 {
		t.Errorf("expected no delivery to an unregistered client, got %v", events)
	}
	hub.unregister(a)
}

func TestCallSignalingRelay(t *testing.T) {
	caller := newTestClient(1)
	callee := newTestClient(2)
	rtcHub.register(caller)
	rtcHub.register(callee)
	defer rtcHub.unregister(caller)
	defer rtcHub.unregister(callee)

	handleClientEvent(caller, ClientEvent{Type: "call-user", To: 2, Signal: []byte(`{"sdp":"offer"}`)})
	events := drain(callee)
	if len(events) != 1 || events[0].Type != "incoming-call" || events[0].From != 1 {
		t.Fatalf("expected incoming-call from 1, got %v", events)
	}

	handleClientEvent(callee, ClientEvent{Type: "answer-call", To: 1, Signal: []byte(`{"sdp":"answer"}`)})
	events = drain(caller)
	if len(events) != 1 || events[0].Type != "call-answered" || events[0].From != 2 {
		t.Fatalf("expected call-answered from 2, got %v", events)
	}

	handleClientEvent(caller, ClientEvent{Type: "ice-candidate", To: 2, Candidate: []byte(`{"candidate":"c"}`)})
	events = drain(callee)
	if len(events) != 1 || events[0].Type != "ice-candidate" {
		t.Fatalf("expected ice-candidate relay, got %v", events)
	}

	handleClientEvent(caller, ClientEvent{Type: "end-call", To: 2})
	events = drain(callee)
	if len(events) != 1 || events[0].Type != "call-ended" {
		t.Fatalf("expected call-ended relay, got %v", events)
	}
}

func TestTypingRelay(t *testing.T) {
	sender := newTestClient(1)
	peer := newTestClient(2)
	rtcHub.register(sender)
	rtcHub.register(peer)
	defer rtcHub.unregister(sender)
	defer rtcHub.unregister(peer)

	handleClientEvent(sender, ClientEvent{Type: "typing", To: 2})

	events := drain(peer)
	if len(events) != 1 || events[0].Type != "typing" || events[0].From != 1 {
		t.Errorf("expected typing from 1, got %v", events)
	}
}

func TestJoinRoomRequiresName(t *testing.T) {
	c := newTestClient(1)
	rtcHub.register(c)
	defer rtcHub.unregister(c)

	handleClientEvent(c, ClientEvent{Type: "join-room"})

	events := drain(c)
	if len(events) != 1 || events[0].Type != "error" {
		t.Errorf("expected an error event, got %v", events)
	}
}

func TestUnknownEventType(t *testing.T) {
	c := newTestClient(1)
	rtcHub.register(c)
	defer rtcHub.unregister(c)

	handleClientEvent(c, ClientEvent{Type: "self-destruct"})

	events := drain(c)
	if len(events) != 1 || events[0].Type != "error" {
		t.Errorf("expected an error event, got %v", events)
	}
}

func TestWSUnauthorized(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	w := httptest.NewRecorder()

	wsHandler(db).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}

func TestChatHistoryRouting(t *testing.T) {
	token := mustToken(t, 1)

	t.Run("Unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/chats/2", nil)
		w := httptest.NewRecorder()
		chatHistoryHandler(db).ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", w.Code)
		}
	})

	t.Run("Non-Numeric Peer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/chats/bob", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		chatHistoryHandler(db).ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", w.Code)
		}
	})
}
