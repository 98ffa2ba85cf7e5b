package main

import (
	"database/sql"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/heartstream/backend/matching"
)

// Callers bound the candidate page before scoring for cost control.
const recommendationPageSize = 20

// GET /recommendations - top candidates that have both a profile and
// preferences, excluding self and dismissed users, ranked by the engine.
func recommendationsHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		userID := r.Context().Value(userIDKey).(int)

		viewer, prefs, ok := loadViewerSnapshot(w, db, userID)
		if !ok {
			return
		}

		// Candidate page: ids plus display fields. Profiles are batch-loaded
		// separately so the scoring path shares one loader round-trip.
		rows, err := db.Query(`
            SELECT u.id, u.name, u.profile_image
            FROM users u
            JOIN profiles p ON p.user_id = u.id
            JOIN preferences pr ON pr.user_id = u.id
            WHERE u.id <> $1
              AND NOT EXISTS (
                  SELECT 1 FROM dismissed_recommendations d
                  WHERE d.user_id = $1 AND d.dismissed_user_id = u.id
              )
            ORDER BY u.id
            LIMIT $2
        `, userID, recommendationPageSize)
		if err != nil {
			log.Println("Error querying recommendation candidates:", err)
			writeError(w, http.StatusInternalServerError, "recommendation_error")
			return
		}
		defer rows.Close()

		type card struct {
			name  string
			image string
		}
		cards := make(map[int]card)
		var candidateIDs []int
		for rows.Next() {
			var id int
			var name string
			var imageSQL sql.NullString
			if rows.Scan(&id, &name, &imageSQL) == nil {
				cards[id] = card{name: name, image: imageSQL.String}
				candidateIDs = append(candidateIDs, id)
			}
		}

		loaders := NewLoaders(db)
		candidates := loaders.LoadProfiles(r.Context(), candidateIDs)
		candidatePrefs := loaders.LoadPreferences(r.Context(), candidateIDs)

		// Mutual gate: drop candidates whose own stated preferences rule
		// the viewer out. A candidate with no row passes through.
		mutual := candidates[:0]
		for _, c := range candidates {
			cp, found := candidatePrefs[c.ID]
			if found && !accepts(cp, viewer) {
				continue
			}
			mutual = append(mutual, c)
		}

		results := matchEngine.Rank(viewer, prefs, mutual)

		ages := make(map[int]int, len(mutual))
		genders := make(map[int]string, len(mutual))
		for _, c := range mutual {
			ages[c.ID] = c.Age
			genders[c.ID] = c.Gender
		}

		entries := make([]MatchEntry, 0, len(results))
		for _, res := range results {
			entries = append(entries, MatchEntry{
				ID:           res.CandidateID,
				Name:         cards[res.CandidateID].name,
				Age:          ages[res.CandidateID],
				Gender:       genders[res.CandidateID],
				ProfileImage: cards[res.CandidateID].image,
				MatchScore:   res.Score,
				MatchReason:  res.Reason,
			})
		}

		writeJSON(w, http.StatusOK, map[string][]MatchEntry{"recommendations": entries})
	})
}

// accepts reports whether prefs tolerate the given profile: age inside the
// stated range, and gender in the stated set when one is stated.
func accepts(prefs *matching.Preferences, p *matching.Profile) bool {
	if p.Age < prefs.AgeRange.Min || p.Age > prefs.AgeRange.Max {
		return false
	}
	if len(prefs.Genders) > 0 && !prefs.Genders.Contains(p.Gender) {
		return false
	}
	return true
}

// POST /recommendations/{id}/dismiss
func dismissRecommendationHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		path := strings.Trim(r.URL.Path, "/")
		parts := strings.Split(path, "/")
		if len(parts) != 3 || parts[0] != "recommendations" || parts[2] != "dismiss" {
			http.NotFound(w, r)
			return
		}
		id, err := strconv.Atoi(parts[1])
		if err != nil {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		userID := r.Context().Value(userIDKey).(int)

		// Ensure the target user exists and has a complete dating profile
		var exists bool
		err = db.QueryRow(`
            SELECT EXISTS (
                SELECT 1 FROM users
                JOIN profiles ON users.id = profiles.user_id
                WHERE users.id = $1
            )
        `, id).Scan(&exists)
		if err != nil || !exists || id == userID {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}

		// Insert dismissal (ignore duplicates)
		_, err = db.Exec(`
            INSERT INTO dismissed_recommendations (user_id, dismissed_user_id)
            VALUES ($1, $2) ON CONFLICT DO NOTHING
        `, userID, id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "dismiss_error")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]bool{"dismissed": true})
	})
}
