package main

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/lib/pq"

	"github.com/heartstream/backend/matching"
)

// MatchEntry is one scored candidate in a /matches or /recommendations
// response. Display fields pass through unchanged from the users table.
type MatchEntry struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Age          int     `json:"age"`
	Gender       string  `json:"gender"`
	ProfileImage string  `json:"profile_image"`
	MatchScore   float64 `json:"match_score"`
	MatchReason  string  `json:"match_reason"`
}

// GET /matches - candidates pre-filtered in SQL by the viewer's age range and
// gender preference, then scored and sorted by the engine.
func matchesHandler(db *sql.DB) http.HandlerFunc {
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

		rows, err := db.Query(`
            SELECT u.id, u.name, u.profile_image,
                   p.age, p.gender, p.latitude, p.longitude, p.interests,
                   p.relationship_goal, p.smoking, p.drinking, p.exercise,
                   p.bio, p.education, p.occupation
            FROM users u
            JOIN profiles p ON p.user_id = u.id
            WHERE u.id <> $1
              AND p.age BETWEEN $2 AND $3
              AND (cardinality($4::text[]) = 0 OR p.gender = ANY($4))
        `, userID, prefs.AgeRange.Min, prefs.AgeRange.Max, pq.Array([]string(prefs.Genders)))
		if err != nil {
			log.Println("Error querying match candidates:", err)
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		defer rows.Close()

		type card struct {
			name  string
			image string
		}
		cards := make(map[int]card)
		var candidates []*matching.Profile

		for rows.Next() {
			var p matching.Profile
			var name string
			var imageSQL sql.NullString
			var lat, lon sql.NullFloat64
			var interests []string
			err := rows.Scan(
				&p.ID, &name, &imageSQL,
				&p.Age, &p.Gender, &lat, &lon, pq.Array(&interests),
				&p.RelationshipGoal, &p.Lifestyle.Smoking, &p.Lifestyle.Drinking, &p.Lifestyle.Exercise,
				&p.Bio, &p.Education, &p.Occupation,
			)
			if err != nil {
				continue
			}
			p.Interests = interests
			p.Location = nullFloatsToLocation(lat, lon)
			cards[p.ID] = card{name: name, image: imageSQL.String}
			candidates = append(candidates, &p)
		}

		ages := make(map[int]int, len(candidates))
		genders := make(map[int]string, len(candidates))
		for _, c := range candidates {
			ages[c.ID] = c.Age
			genders[c.ID] = c.Gender
		}

		results := matchEngine.Rank(viewer, prefs, candidates)
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

		writeJSON(w, http.StatusOK, map[string][]MatchEntry{"matches": entries})
	})
}

// loadViewerSnapshot fetches the caller's profile and preferences, writing
// the gating error itself when either is missing.
func loadViewerSnapshot(w http.ResponseWriter, db *sql.DB, userID int) (*matching.Profile, *matching.Preferences, bool) {
	viewer, err := loadProfile(db, userID)
	if err == sql.ErrNoRows {
		writeError(w, http.StatusForbidden, "incomplete_profile")
		return nil, nil, false
	} else if err != nil {
		log.Println("Error loading viewer profile:", err)
		writeError(w, http.StatusInternalServerError, "db_error")
		return nil, nil, false
	}
	prefs, err := loadPreferences(db, userID)
	if err == sql.ErrNoRows {
		writeError(w, http.StatusForbidden, "incomplete_profile")
		return nil, nil, false
	} else if err != nil {
		log.Println("Error loading viewer preferences:", err)
		writeError(w, http.StatusInternalServerError, "db_error")
		return nil, nil, false
	}
	return viewer, prefs, true
}
