package matching

import "math"

// Weights of the heuristic scoring terms. The gender term is neutral on a
// mismatch so a candidate outside the viewer's gender preference is not
// penalized twice alongside the age term.
const (
	baseScore = 0.5

	ageBonus      = 0.2  // full credit inside the preferred range
	agePenaltyMax = 0.35 // fully decayed penalty 10+ years outside it
	ageDecayYears = 10.0

	genderBonus = 0.2

	locationBonus    = 0.15
	locationRadiusKm = 50.0

	interestBonus = 0.15

	smokingBonus  = 0.035
	drinkingBonus = 0.035
	exerciseBonus = 0.03
)

// sameAreaKm is the distance below which two users count as living in the
// same area for reason generation.
const sameAreaKm = 25.0

// Heuristic is the canonical deterministic scoring strategy: a weighted sum
// of age, gender-preference, location, interest-overlap and lifestyle terms
// on top of a 0.5 base, clamped to [0,1].
type Heuristic struct{}

func (Heuristic) Score(viewer, candidate *Profile, prefs *Preferences) (float64, error) {
	if viewer == nil || candidate == nil || prefs == nil {
		return 0, ErrInvalidInput
	}

	score := baseScore
	score += ageTerm(candidate.Age, prefs.AgeRange)
	if prefs.Genders.Contains(candidate.Gender) {
		score += genderBonus
	}
	score += locationTerm(viewer.Location, candidate.Location)
	score += interestBonus * jaccard(viewer.Interests, candidate.Interests)
	score += lifestyleTerm(prefs.Lifestyle, candidate.Lifestyle)

	return clamp01(score), nil
}

// ageTerm gives full credit inside the preferred range and decays linearly
// outside it, bottoming out agePenaltyMax below zero once the candidate is
// ageDecayYears or more past the nearest boundary. A degenerate range
// (min > max) places every age outside and yields the penalty path.
func ageTerm(age int, r AgeRange) float64 {
	if age >= r.Min && age <= r.Max {
		return ageBonus
	}
	dist := math.Min(math.Abs(float64(age-r.Min)), math.Abs(float64(age-r.Max)))
	decay := math.Min(dist/ageDecayYears, 1)
	return ageBonus - (ageBonus+agePenaltyMax)*decay
}

// locationTerm is neutral when either side lacks coordinates; otherwise the
// bonus decays from full at distance 0 to nothing at locationRadiusKm.
func locationTerm(a, b *Location) float64 {
	if a == nil || b == nil {
		return 0
	}
	dist := haversineKm(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
	if dist >= locationRadiusKm {
		return 0
	}
	return locationBonus * (1 - dist/locationRadiusKm)
}

// jaccard is |A∩B| / |A∪B| over exact, case-sensitive tags.
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	union := make(map[string]struct{}, len(a)+len(b))
	inA := make(map[string]struct{}, len(a))
	for _, tag := range a {
		union[tag] = struct{}{}
		inA[tag] = struct{}{}
	}
	shared := 0
	for _, tag := range b {
		if _, seen := union[tag]; !seen {
			union[tag] = struct{}{}
		}
	}
	counted := make(map[string]struct{}, len(b))
	for _, tag := range b {
		if _, dup := counted[tag]; dup {
			continue
		}
		counted[tag] = struct{}{}
		if _, ok := inA[tag]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(union))
}

// lifestyleTerm rewards exact matches between the viewer's desired habits and
// the candidate's. Exercise only counts when both sides actually state a
// frequency.
func lifestyleTerm(want, have Lifestyle) float64 {
	term := 0.0
	if want.Smoking == have.Smoking {
		term += smokingBonus
	}
	if want.Drinking == have.Drinking {
		term += drinkingBonus
	}
	if want.Exercise != "" && want.Exercise == have.Exercise {
		term += exerciseBonus
	}
	return term
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// haversineKm returns the great-circle distance between two points in km.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371
	dLat := (lat2 - lat1) * (math.Pi / 180)
	dLon := (lon2 - lon1) * (math.Pi / 180)
	lat1 = lat1 * (math.Pi / 180)
	lat2 = lat2 * (math.Pi / 180)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1)*math.Cos(lat2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}
