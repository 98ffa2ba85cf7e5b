package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Stream is a live-stream announcement. Media flows through the external
// video platform; this is just the directory entry.
type Stream struct {
	ID           string    `json:"id"`
	UserID       int       `json:"user_id"`
	UserName     string    `json:"user_name"`
	ProfileImage string    `json:"profile_image"`
	Title        string    `json:"title"`
	RoomName     string    `json:"room_name"`
	StartedAt    time.Time `json:"started_at"`
}

// GET /streams | POST /streams
func streamsHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			listStreams(w, db)
		case http.MethodPost:
			startStream(w, r, db)
		default:
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
		}
	})
}

func listStreams(w http.ResponseWriter, db *sql.DB) {
	rows, err := db.Query(`
        SELECT s.id, s.user_id, u.name, COALESCE(u.profile_image, ''), s.title, s.room_name, s.started_at
        FROM streams s
        JOIN users u ON u.id = s.user_id
        WHERE s.is_live = TRUE
        ORDER BY s.started_at DESC
    `)
	if err != nil {
		log.Println("Error querying streams:", err)
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	defer rows.Close()

	streams := []Stream{}
	for rows.Next() {
		var s Stream
		if rows.Scan(&s.ID, &s.UserID, &s.UserName, &s.ProfileImage, &s.Title, &s.RoomName, &s.StartedAt) == nil {
			streams = append(streams, s)
		}
	}
	writeJSON(w, http.StatusOK, map[string][]Stream{"streams": streams})
}

func startStream(w http.ResponseWriter, r *http.Request, db *sql.DB) {
	userID := r.Context().Value(userIDKey).(int)

	type StartStreamRequest struct {
		Title string `json:"title"`
	}
	var req StartStreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "missing_title")
		return
	}

	id := uuid.NewString()
	roomName := "stream-" + id
	var startedAt time.Time
	err := db.QueryRow(`
        INSERT INTO streams (id, user_id, title, room_name)
        VALUES ($1, $2, $3, $4)
        RETURNING started_at
    `, id, userID, req.Title, roomName).Scan(&startedAt)
	if err != nil {
		log.Println("Error starting stream:", err)
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":         id,
		"title":      req.Title,
		"room_name":  roomName,
		"started_at": startedAt,
	})
}

// DELETE /streams/{id} - end own stream
func endStreamHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 2 || parts[0] != "streams" {
			http.NotFound(w, r)
			return
		}
		streamID := parts[1]
		if _, err := uuid.Parse(streamID); err != nil {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		userID := r.Context().Value(userIDKey).(int)

		res, err := db.Exec(`
            UPDATE streams SET is_live = FALSE, ended_at = NOW()
            WHERE id = $1 AND user_id = $2 AND is_live = TRUE
        `, streamID, userID)
		if err != nil {
			log.Println("Error ending stream:", err)
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ended": true})
	})
}
