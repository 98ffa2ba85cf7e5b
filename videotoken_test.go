package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestVideoTokenRoundTrip(t *testing.T) {
	token, expiresAt, err := mintVideoToken(42, "date-room-1")
	if err != nil {
		t.Fatalf("mintVideoToken: %v", err)
	}
	if expiresAt.IsZero() {
		t.Error("expected a non-zero expiry")
	}

	identity, room, ok := verifyVideoToken(token)
	if !ok {
		t.Fatal("expected minted token to verify")
	}
	if identity != 42 || room != "date-room-1" {
		t.Errorf("expected (42, date-room-1), got (%d, %s)", identity, room)
	}
}

func TestVerifyVideoTokenRejectsGarbage(t *testing.T) {
	if _, _, ok := verifyVideoToken("garbage"); ok {
		t.Error("expected garbage token to be rejected")
	}
	// Session tokens are not video tokens even though both are HS256:
	// the identity/room claims are missing.
	session := mustToken(t, 42)
	if _, _, ok := verifyVideoToken(session); ok {
		t.Error("expected session token to be rejected as a video token")
	}
}

func TestVideoTokenHandler(t *testing.T) {
	token := mustToken(t, 9)

	t.Run("Unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/video/token", strings.NewReader(`{"room":"r"}`))
		w := httptest.NewRecorder()
		videoTokenHandler(db).ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", w.Code)
		}
	})

	t.Run("Wrong Method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/video/token", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		videoTokenHandler(db).ServeHTTP(w, req)
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status 405, got %d", w.Code)
		}
	})

	t.Run("Missing Room", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/video/token", strings.NewReader(`{"room":"  "}`))
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		videoTokenHandler(db).ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", w.Code)
		}
	})

	t.Run("Mints Token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/video/token", strings.NewReader(`{"room":"date-room-9"}`))
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		videoTokenHandler(db).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}
		var resp struct {
			Token    string `json:"token"`
			Room     string `json:"room"`
			Identity int    `json:"identity"`
		}
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Room != "date-room-9" || resp.Identity != 9 {
			t.Errorf("unexpected response: %+v", resp)
		}
		identity, room, ok := verifyVideoToken(resp.Token)
		if !ok || identity != 9 || room != "date-room-9" {
			t.Errorf("minted token does not verify: (%d, %s, %v)", identity, room, ok)
		}
	})
}
