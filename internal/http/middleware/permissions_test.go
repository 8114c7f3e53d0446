package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mirocommunity/submit-service/internal/types"
)

func TestCanSubmitVideo(t *testing.T) {
	tests := []struct {
		name     string
		settings types.SiteSettings
		userID   string
		isAdmin  bool
		want     bool
	}{
		{
			name:     "anonymous allowed when login not required",
			settings: types.SiteSettings{},
			want:     true,
		},
		{
			name:     "anonymous denied when login required",
			settings: types.SiteSettings{SubmissionRequiresLogin: true},
			want:     false,
		},
		{
			name: "logged-in allowed when submit button displayed",
			settings: types.SiteSettings{
				SubmissionRequiresLogin: true,
				DisplaySubmitButton:     true,
			},
			userID: "1",
			want:   true,
		},
		{
			name:     "logged-in denied when submit button hidden",
			settings: types.SiteSettings{SubmissionRequiresLogin: true},
			userID:   "1",
			want:     false,
		},
		{
			name:     "admin allowed when submit button hidden",
			settings: types.SiteSettings{SubmissionRequiresLogin: true},
			userID:   "1",
			isAdmin:  true,
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanSubmitVideo(&tt.settings, tt.userID, tt.isAdmin)
			if got != tt.want {
				t.Errorf("CanSubmitVideo() = %v, want %v", got, tt.want)
			}
		})
	}
}

type staticSettings struct {
	settings types.SiteSettings
}

func (s *staticSettings) GetSiteSettings() (*types.SiteSettings, error) {
	return &s.settings, nil
}

func TestRequireSubmitPermissions(t *testing.T) {
	source := &staticSettings{settings: types.SiteSettings{SubmissionRequiresLogin: true}}

	called := false
	handler := RequireSubmitPermissions(source)(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) { called = true }))

	r := httptest.NewRequest("GET", "/submit/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 for anonymous, got %d", w.Code)
	}
	if called {
		t.Fatal("Handler must not run for a denied request")
	}

	ctx := context.WithValue(r.Context(), UserIDKey, "1")
	ctx = context.WithValue(ctx, IsAdminKey, true)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r.WithContext(ctx))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for an admin, got %d", w.Code)
	}
	if !called {
		t.Fatal("Handler should run for an admin")
	}
}
