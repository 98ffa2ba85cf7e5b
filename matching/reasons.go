package matching

import "strings"

// fallbackReason is returned when no specific compatibility signal fires.
const fallbackReason = "You might be a good match!"

// Reason predicate thresholds.
const (
	closeAgeYears      = 2
	highScoreThreshold = 0.8
)

// buildReason evaluates the reason predicates in a fixed order and joins the
// clauses that fire. It is independent of the scoring arithmetic except for
// the final high-score clause.
func buildReason(viewer, candidate *Profile, prefs *Preferences, score float64) string {
	var reasons []string

	ageDiff := viewer.Age - candidate.Age
	if ageDiff < 0 {
		ageDiff = -ageDiff
	}
	if ageDiff <= closeAgeYears {
		reasons = append(reasons, "You are close in age")
	}

	if prefs.Genders.Contains(candidate.Gender) {
		reasons = append(reasons, "You share gender preferences")
	}

	if shared := sharedInterests(viewer.Interests, candidate.Interests); len(shared) > 0 {
		reasons = append(reasons, "You both enjoy "+strings.Join(shared, ", "))
	}

	if viewer.Location != nil && candidate.Location != nil {
		dist := haversineKm(
			viewer.Location.Latitude, viewer.Location.Longitude,
			candidate.Location.Latitude, candidate.Location.Longitude,
		)
		if dist < sameAreaKm {
			reasons = append(reasons, "You live in the same area")
		}
	}

	if score > highScoreThreshold {
		reasons = append(reasons, "You have a very high compatibility score")
	}

	if len(reasons) == 0 {
		return fallbackReason
	}
	return strings.Join(reasons, " and ") + "!"
}

// sharedInterests returns the exact-match intersection, preserving the
// viewer's tag order so the sentence is deterministic.
func sharedInterests(viewer, candidate []string) []string {
	if len(viewer) == 0 || len(candidate) == 0 {
		return nil
	}
	have := make(map[string]struct{}, len(candidate))
	for _, tag := range candidate {
		have[tag] = struct{}{}
	}
	var shared []string
	seen := make(map[string]struct{}, len(viewer))
	for _, tag := range viewer {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		if _, ok := have[tag]; ok {
			shared = append(shared, tag)
		}
	}
	return shared
}
