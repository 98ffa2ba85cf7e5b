// Package matching computes compatibility between a viewer and candidate
// profiles. It is a pure in-memory core: no HTTP, no storage, no sessions.
// Callers hand it read-only snapshots and get back a score in [0,1] plus a
// human-readable reason.
package matching

import (
	"encoding/json"
	"errors"
)

var (
	// ErrInvalidInput is returned when a required entity reference is
	// structurally absent (nil viewer/candidate/preferences).
	ErrInvalidInput = errors.New("matching: invalid input")

	// ErrModelUnavailable is returned by the model loader when the learned
	// artifact is missing or corrupt. Scoring itself never surfaces it; the
	// learned strategy falls back to the heuristic instead.
	ErrModelUnavailable = errors.New("matching: model unavailable")
)

// Exercise frequency labels as stored on profiles and preferences.
const (
	ExerciseNever     = "never"
	ExerciseSometimes = "sometimes"
	ExerciseRegularly = "regularly"
)

// Location is a geographic position.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Lifestyle groups the habit attributes compared during scoring.
type Lifestyle struct {
	Smoking  bool   `json:"smoking"`
	Drinking bool   `json:"drinking"`
	Exercise string `json:"exercise"`
}

// Profile is a read-only snapshot of one user's dating profile.
// Location may be nil when the user has not shared coordinates.
type Profile struct {
	ID               int        `json:"id"`
	Age              int        `json:"age"`
	Gender           string     `json:"gender"`
	Location         *Location  `json:"location,omitempty"`
	Interests        []string   `json:"interests"`
	RelationshipGoal string     `json:"relationship_goal"`
	Lifestyle        Lifestyle  `json:"lifestyle"`
	Bio              string     `json:"bio"`
	Education        string     `json:"education"`
	Occupation       string     `json:"occupation"`
}

// AgeRange is an inclusive [Min, Max] pair. Callers are expected to keep
// Min <= Max; the scorer degrades rather than failing when they don't.
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// GenderSet is the viewer's desired genders. Stored rows and client payloads
// carry it either as a single string ("female") or as an array
// (["female","other"]); both shapes unmarshal to a set.
type GenderSet []string

func (g *GenderSet) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*g = nil
		} else {
			*g = GenderSet{single}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*g = GenderSet(many)
	return nil
}

// Contains reports whether gender is one of the desired genders.
func (g GenderSet) Contains(gender string) bool {
	for _, want := range g {
		if want == gender {
			return true
		}
	}
	return false
}

// Preferences are the viewer's stated match preferences, applied when the
// viewer is the requesting side of a scoring call.
type Preferences struct {
	AgeRange         AgeRange  `json:"age_range"`
	Genders          GenderSet `json:"genders"`
	Location         *Location `json:"location,omitempty"`
	Interests        []string  `json:"interests"`
	RelationshipGoal string    `json:"relationship_goal"`
	Lifestyle        Lifestyle `json:"lifestyle"`
}

// MatchResult is the outcome of scoring one candidate for one viewer.
// It is derived per call and never persisted by this package.
type MatchResult struct {
	CandidateID int     `json:"candidate_id"`
	Score       float64 `json:"score"`
	Reason      string  `json:"reason"`
}

// Strategy converts a (viewer, candidate, preferences) triple into a score
// in [0,1]. Implementations must be safe for concurrent use.
type Strategy interface {
	Score(viewer, candidate *Profile, prefs *Preferences) (float64, error)
}

// Engine wraps a scoring strategy and attaches reason generation and batch
// ranking. The zero strategy is the heuristic.
type Engine struct {
	strategy Strategy
}

// NewEngine returns an engine using the given strategy, or the heuristic
// strategy when nil is passed.
func NewEngine(s Strategy) *Engine {
	if s == nil {
		s = Heuristic{}
	}
	return &Engine{strategy: s}
}

// Match scores one candidate against the viewer and explains the result.
// It never mutates its inputs and returns ErrInvalidInput when any of the
// three snapshots is nil.
func (e *Engine) Match(viewer, candidate *Profile, prefs *Preferences) (MatchResult, error) {
	if viewer == nil || candidate == nil || prefs == nil {
		return MatchResult{}, ErrInvalidInput
	}
	score, err := e.strategy.Score(viewer, candidate, prefs)
	if err != nil {
		return MatchResult{}, err
	}
	return MatchResult{
		CandidateID: candidate.ID,
		Score:       score,
		Reason:      buildReason(viewer, candidate, prefs, score),
	}, nil
}
