package main

import (
	"database/sql"
	"net/http"
)

// POST /me/ping - mark the caller as online "now". Clients fire this on an
// interval; the sidebar and user cards read it back through isOnlineNow.
func mePingHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		userID, ok := getUserIDFromBearer(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		_, _ = db.Exec(`UPDATE users SET last_online = NOW() WHERE id = $1`, userID)
		w.WriteHeader(http.StatusNoContent)
	}
}

func isOnlineNow(db *sql.DB, userID int) (bool, error) {
	var online bool
	err := db.QueryRow(`
        SELECT COALESCE(last_online > NOW() - INTERVAL '2 minutes', FALSE)
        FROM users
        WHERE id = $1
    `, userID).Scan(&online)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return online, err
}
