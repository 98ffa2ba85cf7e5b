package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/heartstream/backend/matching"
)

// profilePayload is the wire shape for GET/PUT /me/profile.
type profilePayload struct {
	Age              int                `json:"age"`
	Gender           string             `json:"gender"`
	Location         *matching.Location `json:"location,omitempty"`
	Interests        []string           `json:"interests"`
	RelationshipGoal string             `json:"relationship_goal"`
	Smoking          bool               `json:"smoking"`
	Drinking         bool               `json:"drinking"`
	Exercise         string             `json:"exercise"`
	Bio              string             `json:"bio"`
	Education        string             `json:"education"`
	Occupation       string             `json:"occupation"`
}

// preferencesPayload is the wire shape for GET/PUT /me/preferences. Genders
// accepts both a single string and an array.
type preferencesPayload struct {
	MinAge           int                `json:"min_age"`
	MaxAge           int                `json:"max_age"`
	Genders          matching.GenderSet `json:"genders"`
	Location         *matching.Location `json:"location,omitempty"`
	Interests        []string           `json:"interests"`
	RelationshipGoal string             `json:"relationship_goal"`
	Smoking          bool               `json:"smoking"`
	Drinking         bool               `json:"drinking"`
	Exercise         string             `json:"exercise"`
}

var validExercise = map[string]bool{
	"":                         true,
	matching.ExerciseNever:     true,
	matching.ExerciseSometimes: true,
	matching.ExerciseRegularly: true,
}

// GET/PUT /me/profile
func meProfileHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(userIDKey).(int)

		switch r.Method {
		case http.MethodGet:
			profile, err := loadProfile(db, userID)
			if err == sql.ErrNoRows {
				writeError(w, http.StatusNotFound, "no_profile")
				return
			} else if err != nil {
				log.Println("Error loading profile:", err)
				writeError(w, http.StatusInternalServerError, "db_error")
				return
			}
			writeJSON(w, http.StatusOK, profileToPayload(profile))

		case http.MethodPut, http.MethodPost:
			var req profilePayload
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_json")
				return
			}
			if req.Age < 18 || req.Age > 100 {
				writeError(w, http.StatusBadRequest, "invalid_age")
				return
			}
			if !validGenders[req.Gender] {
				writeError(w, http.StatusBadRequest, "invalid_gender")
				return
			}
			if !validExercise[req.Exercise] {
				writeError(w, http.StatusBadRequest, "invalid_exercise")
				return
			}

			lat, lon := locationToNullFloats(req.Location)
			_, err := db.Exec(`
                INSERT INTO profiles (user_id, age, gender, latitude, longitude, interests,
                                      relationship_goal, smoking, drinking, exercise,
                                      bio, education, occupation, updated_at)
                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
                ON CONFLICT (user_id) DO UPDATE SET
                    age = EXCLUDED.age, gender = EXCLUDED.gender,
                    latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude,
                    interests = EXCLUDED.interests,
                    relationship_goal = EXCLUDED.relationship_goal,
                    smoking = EXCLUDED.smoking, drinking = EXCLUDED.drinking,
                    exercise = EXCLUDED.exercise, bio = EXCLUDED.bio,
                    education = EXCLUDED.education, occupation = EXCLUDED.occupation,
                    updated_at = NOW()
            `, userID, req.Age, req.Gender, lat, lon, pq.Array(req.Interests),
				req.RelationshipGoal, req.Smoking, req.Drinking, req.Exercise,
				req.Bio, req.Education, req.Occupation)
			if err != nil {
				log.Println("Error saving profile:", err)
				writeError(w, http.StatusInternalServerError, "db_error")
				return
			}
			writeJSON(w, http.StatusOK, map[string]bool{"saved": true})

		default:
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
		}
	})
}

// GET/PUT /me/preferences
func mePreferencesHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(userIDKey).(int)

		switch r.Method {
		case http.MethodGet:
			prefs, err := loadPreferences(db, userID)
			if err == sql.ErrNoRows {
				writeError(w, http.StatusNotFound, "no_preferences")
				return
			} else if err != nil {
				log.Println("Error loading preferences:", err)
				writeError(w, http.StatusInternalServerError, "db_error")
				return
			}
			writeJSON(w, http.StatusOK, preferencesToPayload(prefs))

		case http.MethodPut, http.MethodPost:
			var req preferencesPayload
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_json")
				return
			}
			if req.MinAge > req.MaxAge || req.MinAge < 18 || req.MaxAge > 100 {
				writeError(w, http.StatusBadRequest, "invalid_age_range")
				return
			}
			for _, g := range req.Genders {
				if !validGenders[g] {
					writeError(w, http.StatusBadRequest, "invalid_gender")
					return
				}
			}
			if !validExercise[req.Exercise] {
				writeError(w, http.StatusBadRequest, "invalid_exercise")
				return
			}

			lat, lon := locationToNullFloats(req.Location)
			_, err := db.Exec(`
                INSERT INTO preferences (user_id, min_age, max_age, genders, latitude, longitude,
                                         interests, relationship_goal, smoking, drinking, exercise, updated_at)
                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
                ON CONFLICT (user_id) DO UPDATE SET
                    min_age = EXCLUDED.min_age, max_age = EXCLUDED.max_age,
                    genders = EXCLUDED.genders,
                    latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude,
                    interests = EXCLUDED.interests,
                    relationship_goal = EXCLUDED.relationship_goal,
                    smoking = EXCLUDED.smoking, drinking = EXCLUDED.drinking,
                    exercise = EXCLUDED.exercise, updated_at = NOW()
            `, userID, req.MinAge, req.MaxAge, pq.Array([]string(req.Genders)), lat, lon,
				pq.Array(req.Interests), req.RelationshipGoal, req.Smoking, req.Drinking, req.Exercise)
			if err != nil {
				log.Println("Error saving preferences:", err)
				writeError(w, http.StatusInternalServerError, "db_error")
				return
			}
			writeJSON(w, http.StatusOK, map[string]bool{"saved": true})

		default:
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
		}
	})
}

// GET /users/{id} - public user card with online status
func userCardHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 2 || parts[0] != "users" {
			http.NotFound(w, r)
			return
		}
		targetID, err := strconv.Atoi(parts[1])
		if err != nil {
			http.NotFound(w, r)
			return
		}

		var name, gender string
		var age int
		var imageSQL sql.NullString
		err = db.QueryRow("SELECT name, age, gender, profile_image FROM users WHERE id = $1", targetID).
			Scan(&name, &age, &gender, &imageSQL)
		if err != nil {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}

		online, err := isOnlineNow(db, targetID)
		if err != nil {
			// Not critical. If the check fails, assume offline.
			online = false
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id":            targetID,
			"name":          name,
			"age":           age,
			"gender":        gender,
			"profile_image": imageSQL.String,
			"is_online":     online,
		})
	})
}

// --- Row mapping to matching snapshots ---

func loadProfile(db *sql.DB, userID int) (*matching.Profile, error) {
	var p matching.Profile
	var lat, lon sql.NullFloat64
	var interests []string
	err := db.QueryRow(`
        SELECT user_id, age, gender, latitude, longitude, interests,
               relationship_goal, smoking, drinking, exercise, bio, education, occupation
        FROM profiles WHERE user_id = $1
    `, userID).Scan(
		&p.ID, &p.Age, &p.Gender, &lat, &lon, pq.Array(&interests),
		&p.RelationshipGoal, &p.Lifestyle.Smoking, &p.Lifestyle.Drinking, &p.Lifestyle.Exercise,
		&p.Bio, &p.Education, &p.Occupation,
	)
	if err != nil {
		return nil, err
	}
	p.Interests = interests
	p.Location = nullFloatsToLocation(lat, lon)
	return &p, nil
}

func loadPreferences(db *sql.DB, userID int) (*matching.Preferences, error) {
	var prefs matching.Preferences
	var lat, lon sql.NullFloat64
	var genders, interests []string
	err := db.QueryRow(`
        SELECT min_age, max_age, genders, latitude, longitude, interests,
               relationship_goal, smoking, drinking, exercise
        FROM preferences WHERE user_id = $1
    `, userID).Scan(
		&prefs.AgeRange.Min, &prefs.AgeRange.Max, pq.Array(&genders), &lat, &lon, pq.Array(&interests),
		&prefs.RelationshipGoal, &prefs.Lifestyle.Smoking, &prefs.Lifestyle.Drinking, &prefs.Lifestyle.Exercise,
	)
	if err != nil {
		return nil, err
	}
	prefs.Genders = matching.GenderSet(genders)
	prefs.Interests = interests
	prefs.Location = nullFloatsToLocation(lat, lon)
	return &prefs, nil
}

func nullFloatsToLocation(lat, lon sql.NullFloat64) *matching.Location {
	if !lat.Valid || !lon.Valid {
		return nil
	}
	return &matching.Location{Latitude: lat.Float64, Longitude: lon.Float64}
}

func locationToNullFloats(loc *matching.Location) (sql.NullFloat64, sql.NullFloat64) {
	if loc == nil {
		return sql.NullFloat64{}, sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: loc.Latitude, Valid: true},
		sql.NullFloat64{Float64: loc.Longitude, Valid: true}
}

func profileToPayload(p *matching.Profile) profilePayload {
	return profilePayload{
		Age:              p.Age,
		Gender:           p.Gender,
		Location:         p.Location,
		Interests:        p.Interests,
		RelationshipGoal: p.RelationshipGoal,
		Smoking:          p.Lifestyle.Smoking,
		Drinking:         p.Lifestyle.Drinking,
		Exercise:         p.Lifestyle.Exercise,
		Bio:              p.Bio,
		Education:        p.Education,
		Occupation:       p.Occupation,
	}
}

func preferencesToPayload(prefs *matching.Preferences) preferencesPayload {
	return preferencesPayload{
		MinAge:           prefs.AgeRange.Min,
		MaxAge:           prefs.AgeRange.Max,
		Genders:          prefs.Genders,
		Location:         prefs.Location,
		Interests:        prefs.Interests,
		RelationshipGoal: prefs.RelationshipGoal,
		Smoking:          prefs.Lifestyle.Smoking,
		Drinking:         prefs.Lifestyle.Drinking,
		Exercise:         prefs.Lifestyle.Exercise,
	}
}
