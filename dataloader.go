package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/lib/pq"

	"github.com/heartstream/backend/matching"
)

// Loaders batch per-user row fetches so scoring a candidate page costs two
// queries instead of 2N. Built per request; the dataloader cache must not
// outlive one request or it would serve stale profiles.
type Loaders struct {
	Profiles    *dataloader.Loader[int, *matching.Profile]
	Preferences *dataloader.Loader[int, *matching.Preferences]
}

// NewLoaders creates request-scoped loaders over the database connection.
func NewLoaders(db *sql.DB) *Loaders {
	return &Loaders{
		Profiles:    dataloader.NewBatchedLoader(profileBatchFn(db), dataloader.WithWait[int, *matching.Profile](4*time.Millisecond)),
		Preferences: dataloader.NewBatchedLoader(preferencesBatchFn(db), dataloader.WithWait[int, *matching.Preferences](4*time.Millisecond)),
	}
}

// LoadProfiles resolves many profiles at once, dropping users that have no
// profile row instead of failing the batch.
func (l *Loaders) LoadProfiles(ctx context.Context, userIDs []int) []*matching.Profile {
	thunks := make([]func() (*matching.Profile, error), len(userIDs))
	for i, id := range userIDs {
		thunks[i] = l.Profiles.Load(ctx, id)
	}
	profiles := make([]*matching.Profile, 0, len(userIDs))
	for _, thunk := range thunks {
		if p, err := thunk(); err == nil && p != nil {
			profiles = append(profiles, p)
		}
	}
	return profiles
}

// LoadPreferences resolves many preference rows at once, keyed by user id.
// Users without a row are simply absent from the map.
func (l *Loaders) LoadPreferences(ctx context.Context, userIDs []int) map[int]*matching.Preferences {
	thunks := make([]func() (*matching.Preferences, error), len(userIDs))
	for i, id := range userIDs {
		thunks[i] = l.Preferences.Load(ctx, id)
	}
	prefs := make(map[int]*matching.Preferences, len(userIDs))
	for i, thunk := range thunks {
		if p, err := thunk(); err == nil && p != nil {
			prefs[userIDs[i]] = p
		}
	}
	return prefs
}

func profileBatchFn(db *sql.DB) dataloader.BatchFunc[int, *matching.Profile] {
	return func(ctx context.Context, keys []int) []*dataloader.Result[*matching.Profile] {
		results := make([]*dataloader.Result[*matching.Profile], len(keys))
		for i := range results {
			results[i] = &dataloader.Result[*matching.Profile]{}
		}
		if len(keys) == 0 {
			return results
		}

		indexByID := make(map[int]int, len(keys))
		for i, key := range keys {
			indexByID[key] = i
		}

		rows, err := db.QueryContext(ctx, `
            SELECT user_id, age, gender, latitude, longitude, interests,
                   relationship_goal, smoking, drinking, exercise, bio, education, occupation
            FROM profiles WHERE user_id = ANY($1)
        `, pq.Array(keys))
		if err != nil {
			for i := range results {
				results[i].Error = err
			}
			return results
		}
		defer rows.Close()

		for rows.Next() {
			var p matching.Profile
			var lat, lon sql.NullFloat64
			var interests []string
			err := rows.Scan(
				&p.ID, &p.Age, &p.Gender, &lat, &lon, pq.Array(&interests),
				&p.RelationshipGoal, &p.Lifestyle.Smoking, &p.Lifestyle.Drinking, &p.Lifestyle.Exercise,
				&p.Bio, &p.Education, &p.Occupation,
			)
			if err != nil {
				continue
			}
			p.Interests = interests
			p.Location = nullFloatsToLocation(lat, lon)
			if i, ok := indexByID[p.ID]; ok {
				results[i].Data = &p
			}
		}
		return results
	}
}

func preferencesBatchFn(db *sql.DB) dataloader.BatchFunc[int, *matching.Preferences] {
	return func(ctx context.Context, keys []int) []*dataloader.Result[*matching.Preferences] {
		results := make([]*dataloader.Result[*matching.Preferences], len(keys))
		for i := range results {
			results[i] = &dataloader.Result[*matching.Preferences]{}
		}
		if len(keys) == 0 {
			return results
		}

		indexByID := make(map[int]int, len(keys))
		for i, key := range keys {
			indexByID[key] = i
		}

		rows, err := db.QueryContext(ctx, `
            SELECT user_id, min_age, max_age, genders, latitude, longitude, interests,
                   relationship_goal, smoking, drinking, exercise
            FROM preferences WHERE user_id = ANY($1)
        `, pq.Array(keys))
		if err != nil {
			for i := range results {
				results[i].Error = err
			}
			return results
		}
		defer rows.Close()

		for rows.Next() {
			var userID int
			var prefs matching.Preferences
			var lat, lon sql.NullFloat64
			var genders, interests []string
			err := rows.Scan(
				&userID, &prefs.AgeRange.Min, &prefs.AgeRange.Max, pq.Array(&genders),
				&lat, &lon, pq.Array(&interests),
				&prefs.RelationshipGoal, &prefs.Lifestyle.Smoking, &prefs.Lifestyle.Drinking, &prefs.Lifestyle.Exercise,
			)
			if err != nil {
				continue
			}
			prefs.Genders = matching.GenderSet(genders)
			prefs.Interests = interests
			prefs.Location = nullFloatsToLocation(lat, lon)
			if i, ok := indexByID[userID]; ok {
				results[i].Data = &prefs
			}
		}
		return results
	}
}
