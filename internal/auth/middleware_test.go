package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func protectedHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		if !ok {
			t.Error("UserIDFromContext() returned false inside RequireAuth")
		}
		w.Write([]byte(id))
	})
}

func TestRequireAuth(t *testing.T) {
	ts := newTestTokenService(t)
	valid, err := ts.Generate("user-42")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	expired, _ := issuedAt(ts, -2*time.Hour).Generate("user-42")

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
	}{
		{"no credentials", func(r *http.Request) {}, http.StatusUnauthorized},
		{"cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: CookieName, Value: valid})
		}, http.StatusOK},
		{"bearer header", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+valid)
		}, http.StatusOK},
		{"lowercase scheme", func(r *http.Request) {
			r.Header.Set("Authorization", "bearer "+valid)
		}, http.StatusOK},
		{"basic scheme", func(r *http.Request) {
			r.Header.Set("Authorization", "Basic "+valid)
		}, http.StatusUnauthorized},
		{"expired cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: CookieName, Value: expired})
		}, http.StatusUnauthorized},
		{"garbage bearer", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer not.a.jwt")
		}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
			tt.setup(req)
			rr := httptest.NewRecorder()

			RequireAuth(ts)(protectedHandler(t)).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if tt.wantStatus == http.StatusOK && rr.Body.String() != "user-42" {
				t.Errorf("body = %q, want user-42", rr.Body.String())
			}
			if tt.wantStatus == http.StatusUnauthorized && rr.Header().Get("Content-Type") != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", rr.Header().Get("Content-Type"))
			}
		})
	}
}

func TestRequireAuth_ExpiredMessage(t *testing.T) {
	ts := newTestTokenService(t)
	expired, err := issuedAt(ts, -2*time.Hour).Generate("user-42")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: expired})
	rr := httptest.NewRecorder()
	RequireAuth(ts)(protectedHandler(t)).ServeHTTP(rr, req)

	if !strings.Contains(rr.Body.String(), "session expired") {
		t.Errorf("body = %q, want session expired message", rr.Body.String())
	}
}

func TestUserIDFromContext_Anonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id, ok := UserIDFromContext(req.Context()); ok {
		t.Errorf("UserIDFromContext() = (%q, true), want anonymous", id)
	}
	if _, ok := UserIDFromContext(WithUserID(req.Context(), "")); ok {
		t.Error("an empty user id must count as anonymous")
	}
}
