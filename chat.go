package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ClientEvent is a message from a connected client. Type selects the action;
// the remaining fields are filled per type.
type ClientEvent struct {
	Type      string          `json:"type"` // join-room | leave-room | send-message | typing | call-user | answer-call | reject-call | ice-candidate | end-call
	Room      string          `json:"room,omitempty"`
	To        int             `json:"to,omitempty"`
	Body      string          `json:"body,omitempty"`
	Signal    json.RawMessage `json:"signal,omitempty"`    // SDP offer/answer blob, relayed untouched
	Candidate json.RawMessage `json:"candidate,omitempty"` // ICE candidate blob, relayed untouched
}

// ServerEvent is pushed to clients.
type ServerEvent struct {
	Type string `json:"type"` // message | typing | incoming-call | call-answered | call-rejected | ice-candidate | call-ended | info | error
	From int    `json:"from,omitempty"`
	Room string `json:"room,omitempty"`
	Data any    `json:"data,omitempty"`
}

// ChatMessage is a persisted chat message as relayed to both parties.
type ChatMessage struct {
	ID   int64     `json:"id"`
	From int       `json:"from"`
	To   int       `json:"to"`
	Body string    `json:"body"`
	Ts   time.Time `json:"ts"`
}

// Client represents one WebSocket connection. Room membership is tracked by
// the hub, which sweeps the client out of every room on unregister.
type Client struct {
	userID int
	conn   *websocket.Conn
	send   chan ServerEvent
	db     *sql.DB
}

// Hub manages client connections and room membership.
type Hub struct {
	clientsByUser map[int]map[*Client]bool
	rooms         map[string]map[*Client]bool
	mu            sync.RWMutex
}

func newHub() *Hub {
	return &Hub{
		clientsByUser: make(map[int]map[*Client]bool),
		rooms:         make(map[string]map[*Client]bool),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clientsByUser[c.userID] == nil {
		h.clientsByUser[c.userID] = make(map[*Client]bool)
	}
	h.clientsByUser[c.userID][c] = true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if peers, ok := h.clientsByUser[c.userID]; ok {
		delete(peers, c)
		if len(peers) == 0 {
			delete(h.clientsByUser, c.userID)
		}
	}
	for room, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

func (h *Hub) joinRoom(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][c] = true
}

func (h *Hub) leaveRoom(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

func (h *Hub) sendToUser(userID int, evt ServerEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if peers, ok := h.clientsByUser[userID]; ok {
		for c := range peers {
			select {
			case c.send <- evt:
			default:
				// Drop message if the client's buffer is full
			}
		}
	}
}

// broadcastToRoom delivers to every room member except the sender.
func (h *Hub) broadcastToRoom(room string, sender *Client, evt ServerEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		if c == sender {
			continue
		}
		select {
		case c.send <- evt:
		default:
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Frontend dev servers connect cross-origin
	CheckOrigin: func(r *http.Request) bool { return true },
}

// global hub
var rtcHub = newHub()

// GET /ws - authenticated realtime endpoint for chat and call signaling
func wsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := getUserIDFromRequest(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WS upgrade error for user %d: %v", userID, err)
			return
		}

		client := &Client{
			userID: userID,
			conn:   conn,
			send:   make(chan ServerEvent, 16),
			db:     db,
		}
		rtcHub.register(client)

		client.send <- ServerEvent{Type: "info", Data: "connected"}

		go clientWriter(client)
		clientReader(client)
	}
}

func clientReader(c *Client) {
	defer func() {
		rtcHub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(1 << 20)
	_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var evt ClientEvent
		if err := json.Unmarshal(payload, &evt); err != nil {
			c.send <- ServerEvent{Type: "error", Data: "invalid message format"}
			continue
		}
		handleClientEvent(c, evt)
	}
}

func handleClientEvent(c *Client, evt ClientEvent) {
	switch evt.Type {
	case "join-room":
		if evt.Room == "" {
			c.send <- ServerEvent{Type: "error", Data: "missing room"}
			return
		}
		rtcHub.joinRoom(c, evt.Room)
		c.send <- ServerEvent{Type: "info", Room: evt.Room, Data: "joined"}

	case "leave-room":
		rtcHub.leaveRoom(c, evt.Room)
		c.send <- ServerEvent{Type: "info", Room: evt.Room, Data: "left"}

	case "send-message":
		msg, err := saveChatMsg(c.db, c.userID, evt.To, evt.Body)
		if err != nil {
			c.send <- ServerEvent{Type: "error", Data: "cannot send message"}
			return
		}
		out := ServerEvent{Type: "message", From: c.userID, Room: evt.Room, Data: msg}
		if evt.Room != "" {
			rtcHub.broadcastToRoom(evt.Room, c, out)
		} else {
			rtcHub.sendToUser(evt.To, out)
		}
		// Echo so the sender UI updates instantly
		rtcHub.sendToUser(c.userID, out)

	case "typing":
		rtcHub.sendToUser(evt.To, ServerEvent{Type: "typing", From: c.userID})

	case "call-user":
		rtcHub.sendToUser(evt.To, ServerEvent{Type: "incoming-call", From: c.userID, Data: evt.Signal})

	case "answer-call":
		rtcHub.sendToUser(evt.To, ServerEvent{Type: "call-answered", From: c.userID, Data: evt.Signal})

	case "reject-call":
		rtcHub.sendToUser(evt.To, ServerEvent{Type: "call-rejected", From: c.userID})

	case "ice-candidate":
		rtcHub.sendToUser(evt.To, ServerEvent{Type: "ice-candidate", From: c.userID, Data: evt.Candidate})

	case "end-call":
		rtcHub.sendToUser(evt.To, ServerEvent{Type: "call-ended", From: c.userID})

	default:
		c.send <- ServerEvent{Type: "error", Data: "unknown message type"}
	}
}

func clientWriter(c *Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case evt, ok := <-c.send:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			// ping to keep the connection alive
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func saveChatMsg(db *sql.DB, fromUserID, toUserID int, body string) (ChatMessage, error) {
	msg := ChatMessage{From: fromUserID, To: toUserID, Body: body}
	err := db.QueryRow(`
        INSERT INTO messages (from_id, to_id, body)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `, fromUserID, toUserID, body).Scan(&msg.ID, &msg.Ts)
	return msg, err
}

// GET /chats/{peerID} - message history with one peer, oldest first
func chatHistoryHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 2 || parts[0] != "chats" {
			http.NotFound(w, r)
			return
		}
		peerID, err := strconv.Atoi(parts[1])
		if err != nil {
			http.NotFound(w, r)
			return
		}
		userID := r.Context().Value(userIDKey).(int)

		rows, err := db.Query(`
            SELECT id, from_id, to_id, body, created_at
            FROM messages
            WHERE (from_id = $1 AND to_id = $2) OR (from_id = $2 AND to_id = $1)
            ORDER BY created_at ASC
            LIMIT 200
        `, userID, peerID)
		if err != nil {
			log.Println("Error loading chat history:", err)
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		defer rows.Close()

		messages := []ChatMessage{}
		for rows.Next() {
			var m ChatMessage
			if rows.Scan(&m.ID, &m.From, &m.To, &m.Body, &m.Ts) == nil {
				messages = append(messages, m)
			}
		}
		writeJSON(w, http.StatusOK, map[string][]ChatMessage{"messages": messages})
	})
}
