package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStreamsValidation(t *testing.T) {
	token := mustToken(t, 4)

	t.Run("Unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/streams", nil)
		w := httptest.NewRecorder()
		streamsHandler(db).ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", w.Code)
		}
	})

	t.Run("Missing Title", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/streams", strings.NewReader(`{"title":"  "}`))
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		streamsHandler(db).ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", w.Code)
		}
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/streams", strings.NewReader("{"))
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		streamsHandler(db).ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", w.Code)
		}
	})
}

func TestEndStreamRouting(t *testing.T) {
	token := mustToken(t, 4)

	t.Run("Wrong Method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/streams/some-id", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		endStreamHandler(db).ServeHTTP(w, req)
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status 405, got %d", w.Code)
		}
	})

	t.Run("Non-UUID ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/streams/42", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		endStreamHandler(db).ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", w.Code)
		}
	})
}

func TestReelsValidation(t *testing.T) {
	token := mustToken(t, 4)

	t.Run("Unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/reels", nil)
		w := httptest.NewRecorder()
		reelsHandler(db).ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", w.Code)
		}
	})

	t.Run("Missing Video URL", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/reels", strings.NewReader(`{"caption":"hi"}`))
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		reelsHandler(db).ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", w.Code)
		}
	})

	t.Run("Wrong Method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/reels", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		reelsHandler(db).ServeHTTP(w, req)
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status 405, got %d", w.Code)
		}
	})
}
