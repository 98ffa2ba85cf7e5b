package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReasonFallbackWhenNothingFires(t *testing.T) {
	viewer := &Profile{ID: 1, Age: 28, Gender: "male"}
	candidate := &Profile{ID: 2, Age: 45, Gender: "male"}
	prefs := &Preferences{Genders: GenderSet{"female"}}

	reason := buildReason(viewer, candidate, prefs, 0.4)
	assert.Equal(t, "You might be a good match!", reason)
}

func TestReasonNeverEmpty(t *testing.T) {
	viewer := &Profile{ID: 1}
	candidate := &Profile{ID: 2}
	prefs := &Preferences{}

	assert.NotEmpty(t, buildReason(viewer, candidate, prefs, 0))
}

func TestReasonClauseOrderAndJoining(t *testing.T) {
	viewer := &Profile{
		ID:        1,
		Age:       28,
		Gender:    "male",
		Location:  &Location{Latitude: 59.43, Longitude: 24.75},
		Interests: []string{"music", "travel"},
	}
	candidate := &Profile{
		ID:        2,
		Age:       29,
		Gender:    "female",
		Location:  &Location{Latitude: 59.44, Longitude: 24.76},
		Interests: []string{"travel", "music"},
	}
	prefs := &Preferences{Genders: GenderSet{"female"}}

	reason := buildReason(viewer, candidate, prefs, 0.95)
	assert.Equal(t,
		"You are close in age and You share gender preferences and "+
			"You both enjoy music, travel and You live in the same area and "+
			"You have a very high compatibility score!",
		reason)
}

func TestReasonHighScoreClauseThreshold(t *testing.T) {
	viewer := &Profile{ID: 1, Age: 28}
	candidate := &Profile{ID: 2, Age: 29}
	prefs := &Preferences{}

	atThreshold := buildReason(viewer, candidate, prefs, 0.8)
	above := buildReason(viewer, candidate, prefs, 0.81)

	assert.NotContains(t, atThreshold, "very high compatibility")
	assert.Contains(t, above, "very high compatibility")
}

func TestSharedInterestsKeepViewerOrder(t *testing.T) {
	shared := sharedInterests(
		[]string{"art", "music", "travel", "art"},
		[]string{"travel", "art"},
	)
	assert.Equal(t, []string{"art", "travel"}, shared)
}

func TestSameAreaRequiresBothLocations(t *testing.T) {
	viewer := &Profile{ID: 1, Age: 28, Location: &Location{Latitude: 10, Longitude: 10}}
	candidate := &Profile{ID: 2, Age: 45}
	prefs := &Preferences{}

	reason := buildReason(viewer, candidate, prefs, 0.5)
	assert.NotContains(t, reason, "same area")
}
