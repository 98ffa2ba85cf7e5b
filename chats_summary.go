package main

import (
	"database/sql"
	"net/http"
	"time"
)

// ChatPeerSummary is one row of the chat sidebar: a peer with the latest
// message exchanged and their online state.
type ChatPeerSummary struct {
	UserID        int        `json:"user_id"`
	UserName      string     `json:"user_name"`
	ProfileImage  string     `json:"profile_image"`
	LastMessage   string     `json:"last_message"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	IsOnline      bool       `json:"is_online"`
}

// GET /chats/summary
// Returns every peer the user has exchanged messages with, newest
// conversation first.
func chatSummaryHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		userID, ok := getUserIDFromBearer(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		// 1) peers = everyone with at least one message to/from me
		// 2) latest = the most recent message per peer
		const q = `
WITH peers AS (
  SELECT DISTINCT CASE WHEN m.from_id = $1 THEN m.to_id ELSE m.from_id END AS peer_id
  FROM messages m
  WHERE m.from_id = $1 OR m.to_id = $1
),
latest AS (
  SELECT DISTINCT ON (peer_id)
         CASE WHEN m.from_id = $1 THEN m.to_id ELSE m.from_id END AS peer_id,
         m.body,
         m.created_at
  FROM messages m
  WHERE m.from_id = $1 OR m.to_id = $1
  ORDER BY peer_id, m.created_at DESC
)
SELECT u.id, u.name, COALESCE(u.profile_image, ''), l.body, l.created_at
FROM peers p
JOIN users u  ON u.id = p.peer_id
JOIN latest l ON l.peer_id = p.peer_id
ORDER BY l.created_at DESC, u.id ASC
;`

		rows, err := db.Query(q, userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		defer rows.Close()

		summaries := make([]ChatPeerSummary, 0, 32)
		for rows.Next() {
			var s ChatPeerSummary
			var last time.Time
			if err := rows.Scan(&s.UserID, &s.UserName, &s.ProfileImage, &s.LastMessage, &last); err != nil {
				writeError(w, http.StatusInternalServerError, "db_error")
				return
			}
			s.LastMessageAt = &last

			online, err := isOnlineNow(db, s.UserID)
			if err != nil {
				online = false
			}
			s.IsOnline = online
			summaries = append(summaries, s)
		}

		writeJSON(w, http.StatusOK, map[string][]ChatPeerSummary{"chats": summaries})
	}
}
