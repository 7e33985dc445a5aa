package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
)

// ============ DenylistHandler Tests ============

func TestDenylistHandler_GetDenylist(t *testing.T) {
	t.Run("returns empty list initially", func(t *testing.T) {
		mockSvc := NewMockSettingsService()
		handler := NewDenylistHandler(mockSvc)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/denylist", nil)
		w := httptest.NewRecorder()

		handler.GetDenylist(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
		}

		var response GetDenylistResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response.Total != 0 {
			t.Errorf("expected total 0, got %d", response.Total)
		}
		if response.Symbols == nil {
			t.Error("symbols should be [], not null")
		}
	})

	t.Run("returns denied symbols", func(t *testing.T) {
		mockSvc := NewMockSettingsService()
		handler := NewDenylistHandler(mockSvc)

		mockSvc.AddDeniedSymbol("SHIBUSDT")
		mockSvc.AddDeniedSymbol("PEPEUSDT")

		req := httptest.NewRequest(http.MethodGet, "/api/v1/denylist", nil)
		w := httptest.NewRecorder()

		handler.GetDenylist(w, req)

		var response GetDenylistResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response.Total != 2 {
			t.Errorf("expected total 2, got %d", response.Total)
		}
	})

	t.Run("returns 500 on service error", func(t *testing.T) {
		mockSvc := NewMockSettingsService()
		handler := NewDenylistHandler(mockSvc)

		mockSvc.SetError("get", ErrMockDatabase)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/denylist", nil)
		w := httptest.NewRecorder()

		handler.GetDenylist(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
	})
}

func TestDenylistHandler_AddToDenylist(t *testing.T) {
	t.Run("adds symbol with normalization", func(t *testing.T) {
		mockSvc := NewMockSettingsService()
		handler := NewDenylistHandler(mockSvc)

		jsonBody, _ := json.Marshal(AddToDenylistRequest{Symbol: "  shibusdt "})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/denylist", bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		handler.AddToDenylist(w, req)

		if w.Code != http.StatusCreated {
			t.Errorf("expected status %d, got %d", http.StatusCreated, w.Code)
		}

		var response DenylistChangeResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response.Symbol != "SHIBUSDT" {
			t.Errorf("expected normalized symbol SHIBUSDT, got %s", response.Symbol)
		}
		if !response.Changed {
			t.Error("expected changed=true on first add")
		}
	})

	t.Run("duplicate add is not an error", func(t *testing.T) {
		mockSvc := NewMockSettingsService()
		handler := NewDenylistHandler(mockSvc)

		mockSvc.AddDeniedSymbol("SHIBUSDT")

		jsonBody, _ := json.Marshal(AddToDenylistRequest{Symbol: "SHIBUSDT"})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/denylist", bytes.NewReader(jsonBody))
		w := httptest.NewRecorder()

		handler.AddToDenylist(w, req)

		if w.Code != http.StatusCreated {
			t.Errorf("expected status %d, got %d", http.StatusCreated, w.Code)
		}

		var response DenylistChangeResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response.Changed {
			t.Error("expected changed=false on duplicate add")
		}
	})

	t.Run("returns 400 on empty symbol", func(t *testing.T) {
		mockSvc := NewMockSettingsService()
		handler := NewDenylistHandler(mockSvc)

		jsonBody, _ := json.Marshal(AddToDenylistRequest{Symbol: "   "})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/denylist", bytes.NewReader(jsonBody))
		w := httptest.NewRecorder()

		handler.AddToDenylist(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("returns 400 on invalid JSON", func(t *testing.T) {
		mockSvc := NewMockSettingsService()
		handler := NewDenylistHandler(mockSvc)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/denylist", bytes.NewReader([]byte("not json")))
		w := httptest.NewRecorder()

		handler.AddToDenylist(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("returns 500 on service error", func(t *testing.T) {
		mockSvc := NewMockSettingsService()
		handler := NewDenylistHandler(mockSvc)

		mockSvc.SetError("update", ErrMockDatabase)

		jsonBody, _ := json.Marshal(AddToDenylistRequest{Symbol: "SHIBUSDT"})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/denylist", bytes.NewReader(jsonBody))
		w := httptest.NewRecorder()

		handler.AddToDenylist(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
	})
}

func TestDenylistHandler_RemoveFromDenylist(t *testing.T) {
	t.Run("removes existing symbol", func(t *testing.T) {
		mockSvc := NewMockSettingsService()
		handler := NewDenylistHandler(mockSvc)

		mockSvc.AddDeniedSymbol("SHIBUSDT")

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/denylist/shibusdt", nil)
		req = mux.SetURLVars(req, map[string]string{"symbol": "shibusdt"})
		w := httptest.NewRecorder()

		handler.RemoveFromDenylist(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
		}

		settings, _ := mockSvc.GetSettings()
		if len(settings.DeniedSymbols) != 0 {
			t.Errorf("expected empty denylist, got %v", settings.DeniedSymbols)
		}
	})

	t.Run("returns 404 when symbol not in list", func(t *testing.T) {
		mockSvc := NewMockSettingsService()
		handler := NewDenylistHandler(mockSvc)

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/denylist/SHIBUSDT", nil)
		req = mux.SetURLVars(req, map[string]string{"symbol": "SHIBUSDT"})
		w := httptest.NewRecorder()

		handler.RemoveFromDenylist(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
		}
	})

	t.Run("returns 500 on service error", func(t *testing.T) {
		mockSvc := NewMockSettingsService()
		handler := NewDenylistHandler(mockSvc)

		mockSvc.SetError("update", ErrMockDatabase)

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/denylist/SHIBUSDT", nil)
		req = mux.SetURLVars(req, map[string]string{"symbol": "SHIBUSDT"})
		w := httptest.NewRecorder()

		handler.RemoveFromDenylist(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
	})
}
