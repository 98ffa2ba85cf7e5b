package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Video room access tokens bind a user identity to one room for a limited
// time. The media itself is carried by the external video platform; clients
// hand this token to it when joining.

const videoTokenTTL = time.Hour

func getVideoTokenSecret() []byte {
	if secret := os.Getenv("VIDEO_TOKEN_SECRET"); secret != "" {
		return []byte(secret)
	}
	// Fall back to the session secret in development
	return jwtSecret
}

var videoTokenSecret = getVideoTokenSecret()

// POST /video/token {"room": "..."}
func videoTokenHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		userID := r.Context().Value(userIDKey).(int)

		type TokenRequest struct {
			Room string `json:"room"`
		}
		var req TokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		req.Room = strings.TrimSpace(req.Room)
		if req.Room == "" {
			writeError(w, http.StatusBadRequest, "missing_room")
			return
		}

		token, expiresAt, err := mintVideoToken(userID, req.Room)
		if err != nil {
			log.Println("Error minting video token:", err)
			writeError(w, http.StatusInternalServerError, "token_generation_error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"token":      token,
			"room":       req.Room,
			"identity":   userID,
			"expires_at": expiresAt.Unix(),
		})
	})
}

func mintVideoToken(userID int, room string) (string, time.Time, error) {
	expiresAt := time.Now().Add(videoTokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":      "heartstream",
		"identity": userID,
		"room":     room,
		"exp":      expiresAt.Unix(),
	})
	signed, err := token.SignedString(videoTokenSecret)
	return signed, expiresAt, err
}

// verifyVideoToken checks signature and expiry and returns the identity and
// room claims.
func verifyVideoToken(tokenStr string) (identity int, room string, ok bool) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return videoTokenSecret, nil
	})
	if err != nil || !token.Valid {
		return 0, "", false
	}
	fv, idOK := claims["identity"].(float64)
	roomClaim, roomOK := claims["room"].(string)
	if !idOK || !roomOK {
		return 0, "", false
	}
	return int(fv), roomClaim, true
}
