package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/heartstream/backend/matching"
)

// ============================================================================
// MATCHES AND RECOMMENDATIONS ROUTING TESTS
// (database-backed scoring behavior is covered in the matching package)
// ============================================================================

func TestMatchesUnauthorized(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/matches", nil)
	w := httptest.NewRecorder()

	matchesHandler(db).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}

func TestMatchesRejectsWrongMethod(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/matches", nil)
	req.Header.Set("Authorization", "Bearer "+mustToken(t, 3))
	w := httptest.NewRecorder()

	matchesHandler(db).ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestRecommendationsUnauthorized(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/recommendations", nil)
	w := httptest.NewRecorder()

	recommendationsHandler(db).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}

func TestDismissRouting(t *testing.T) {
	token := mustToken(t, 3)

	t.Run("Wrong Method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/recommendations/5/dismiss", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		dismissRecommendationHandler(db).ServeHTTP(w, req)

		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status 405, got %d", w.Code)
		}
	})

	t.Run("Non-Numeric ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/recommendations/abc/dismiss", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		dismissRecommendationHandler(db).ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", w.Code)
		}
	})

	t.Run("Malformed Path", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/recommendations/5/block", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		dismissRecommendationHandler(db).ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", w.Code)
		}
	})
}

func TestMutualPreferenceGate(t *testing.T) {
	viewer := &matching.Profile{ID: 1, Age: 28, Gender: "male"}

	tests := []struct {
		name  string
		prefs *matching.Preferences
		want  bool
	}{
		{"Accepts In Range", &matching.Preferences{AgeRange: matching.AgeRange{Min: 25, Max: 35}, Genders: matching.GenderSet{"male"}}, true},
		{"Rejects Too Old", &matching.Preferences{AgeRange: matching.AgeRange{Min: 18, Max: 25}, Genders: matching.GenderSet{"male"}}, false},
		{"Rejects Gender", &matching.Preferences{AgeRange: matching.AgeRange{Min: 25, Max: 35}, Genders: matching.GenderSet{"female"}}, false},
		{"Empty Gender Set Accepts Anyone", &matching.Preferences{AgeRange: matching.AgeRange{Min: 25, Max: 35}}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := accepts(tc.prefs, viewer); got != tc.want {
				t.Errorf("accepts = %v, want %v", got, tc.want)
			}
		})
	}
}
