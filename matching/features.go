package matching

// Feature extraction for the learned strategy. Each profile is reduced to a
// fixed-width numeric vector; the model consumes the viewer and candidate
// vectors concatenated.

const profileFeatureCount = 10

// featureCount is the model's input width.
const featureCount = 2 * profileFeatureCount

// interestVocabulary is the known tag vocabulary used for the coverage
// feature. Profiles may carry tags outside it; those simply don't count
// toward coverage.
var interestVocabulary = []string{
	"music", "sports", "travel", "food", "movies",
	"reading", "art", "technology", "fitness", "fashion",
}

// featurize converts one profile, seen through the viewer's preferences,
// into its feature vector.
func featurize(p *Profile, prefs *Preferences) []float64 {
	f := make([]float64, 0, profileFeatureCount)

	f = append(f, float64(p.Age)/100)
	f = append(f, oneHotGender(p.Gender)...)
	f = append(f, locationTerm(p.Location, prefs.Location)/locationBonus)
	f = append(f, ageCompatibility(p.Age, prefs.AgeRange))
	f = append(f, vocabularyCoverage(p.Interests))
	f = append(f, boolFeature(p.Lifestyle.Smoking))
	f = append(f, boolFeature(p.Lifestyle.Drinking))
	f = append(f, exerciseFeature(p.Lifestyle.Exercise))

	return f
}

// pairFeatures concatenates the viewer's and candidate's vectors into the
// model input.
func pairFeatures(viewer, candidate *Profile, prefs *Preferences) []float64 {
	combined := make([]float64, 0, featureCount)
	combined = append(combined, featurize(viewer, prefs)...)
	combined = append(combined, featurize(candidate, prefs)...)
	return combined
}

func oneHotGender(gender string) []float64 {
	encoded := []float64{0, 0, 0}
	switch gender {
	case "male":
		encoded[0] = 1
	case "female":
		encoded[1] = 1
	case "other":
		encoded[2] = 1
	}
	return encoded
}

// ageCompatibility is 1 inside the preferred range and decays linearly to 0
// at ageDecayYears past the nearest boundary.
func ageCompatibility(age int, r AgeRange) float64 {
	term := ageTerm(age, r)
	if term < 0 {
		return 0
	}
	return term / ageBonus
}

// vocabularyCoverage is the share of the known vocabulary this profile's
// tags cover.
func vocabularyCoverage(interests []string) float64 {
	if len(interests) == 0 {
		return 0
	}
	have := make(map[string]struct{}, len(interests))
	for _, tag := range interests {
		have[tag] = struct{}{}
	}
	covered := 0
	for _, tag := range interestVocabulary {
		if _, ok := have[tag]; ok {
			covered++
		}
	}
	return float64(covered) / float64(len(interestVocabulary))
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func exerciseFeature(exercise string) float64 {
	switch exercise {
	case ExerciseNever:
		return 0
	case ExerciseSometimes:
		return 0.5
	case ExerciseRegularly:
		return 1
	}
	return 0.5
}
