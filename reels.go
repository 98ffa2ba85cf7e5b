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

// Reel is one short video clip with its owner's display info. The clip
// itself lives in cloud video storage; only its URL is kept here.
type Reel struct {
	ID           string    `json:"id"`
	UserID       int       `json:"user_id"`
	UserName     string    `json:"user_name"`
	ProfileImage string    `json:"profile_image"`
	VideoURL     string    `json:"video_url"`
	Caption      string    `json:"caption"`
	CreatedAt    time.Time `json:"created_at"`
}

// GET /reels | POST /reels
func reelsHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			listReels(w, db)
		case http.MethodPost:
			createReel(w, r, db)
		default:
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
		}
	})
}

func listReels(w http.ResponseWriter, db *sql.DB) {
	rows, err := db.Query(`
        SELECT r.id, r.user_id, u.name, COALESCE(u.profile_image, ''), r.video_url, r.caption, r.created_at
        FROM reels r
        JOIN users u ON u.id = r.user_id
        ORDER BY r.created_at DESC
        LIMIT 50
    `)
	if err != nil {
		log.Println("Error querying reels:", err)
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	defer rows.Close()

	reels := []Reel{}
	for rows.Next() {
		var reel Reel
		if rows.Scan(&reel.ID, &reel.UserID, &reel.UserName, &reel.ProfileImage,
			&reel.VideoURL, &reel.Caption, &reel.CreatedAt) == nil {
			reels = append(reels, reel)
		}
	}
	writeJSON(w, http.StatusOK, map[string][]Reel{"reels": reels})
}

func createReel(w http.ResponseWriter, r *http.Request, db *sql.DB) {
	userID := r.Context().Value(userIDKey).(int)

	type CreateReelRequest struct {
		VideoURL string `json:"video_url"`
		Caption  string `json:"caption"`
	}
	var req CreateReelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	req.VideoURL = strings.TrimSpace(req.VideoURL)
	if req.VideoURL == "" {
		writeError(w, http.StatusBadRequest, "missing_video_url")
		return
	}

	id := uuid.NewString()
	var createdAt time.Time
	err := db.QueryRow(`
        INSERT INTO reels (id, user_id, video_url, caption)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at
    `, id, userID, req.VideoURL, req.Caption).Scan(&createdAt)
	if err != nil {
		log.Println("Error creating reel:", err)
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":         id,
		"video_url":  req.VideoURL,
		"caption":    req.Caption,
		"created_at": createdAt,
	})
}
