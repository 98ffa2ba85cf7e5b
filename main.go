package main

import (
	"log"
	"net/http"
	"os"

	"github.com/heartstream/backend/matching"
)

// JWT secret from environment variable or fallback
func getJWTSecret() []byte {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return []byte(secret)
	}
	return []byte("your_secret_key_please_change_in_production")
}

var jwtSecret = getJWTSecret()

// matchEngine is the process-wide scoring engine. The learned strategy is
// opt-in via MATCH_STRATEGY=learned and degrades to the heuristic when the
// model artifact cannot be loaded.
var matchEngine = newMatchEngine()

func newMatchEngine() *matching.Engine {
	if os.Getenv("MATCH_STRATEGY") != "learned" {
		return matching.NewEngine(nil)
	}
	modelPath := os.Getenv("MATCH_MODEL_PATH")
	if modelPath == "" {
		modelPath = "./models/matching_model.json"
	}
	return matching.NewEngine(matching.NewLearned(modelPath))
}

func main() {
	initDB()

	mux := http.NewServeMux()

	// Auth & identity
	mux.Handle("/signup", signupHandler(db))
	mux.Handle("/login", loginHandler(db))
	mux.Handle("/me", meHandler(db))

	// Profile & preferences
	mux.Handle("/me/profile", meProfileHandler(db))
	mux.Handle("/me/preferences", mePreferencesHandler(db))

	// Ping: mark this user as online "now"
	mux.Handle("/me/ping", mePingHandler(db)) // POST

	// Matching
	mux.Handle("/matches", matchesHandler(db))
	mux.Handle("/recommendations", recommendationsHandler(db))
	mux.Handle("/recommendations/", dismissRecommendationHandler(db)) // /recommendations/{id}/dismiss

	// Public user cards
	mux.Handle("/users/", userCardHandler(db))

	// Reels & live streams
	mux.Handle("/reels", reelsHandler(db))
	mux.Handle("/streams", streamsHandler(db))
	mux.Handle("/streams/", endStreamHandler(db)) // DELETE /streams/{id}

	// Realtime chat + call signaling
	mux.Handle("/ws", wsHandler(db))
	mux.Handle("/chats/summary", chatSummaryHandler(db)) // GET, sidebar ordering
	mux.Handle("/chats/", chatHistoryHandler(db))        // GET /chats/{peerID}

	// Video room access tokens
	mux.Handle("/video/token", videoTokenHandler(db))

	// Health check endpoint for Docker
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Default().Println("Starting Heartstream backend on port " + port + "...")
	http.ListenAndServe(":"+port, withCORS(mux))
}
