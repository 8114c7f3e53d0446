package middleware

import (
	"errors"
	"net/http"

	"github.com/mirocommunity/submit-service/internal/types"
	"github.com/mirocommunity/submit-service/internal/utils/response"
)

// SettingsSource resolves the site settings governing who may submit.
type SettingsSource interface {
	GetSiteSettings() (*types.SiteSettings, error)
}

// CanSubmitVideo reports whether a request passes the submission rules:
// everyone when login is not required; any logged-in user when a submit
// button is displayed; admins otherwise.
func CanSubmitVideo(settings *types.SiteSettings, userID string, isAdmin bool) bool {
	if !settings.SubmissionRequiresLogin {
		return true
	}
	if userID == "" {
		return false
	}
	if settings.DisplaySubmitButton {
		return true
	}
	return isAdmin
}

// RequireSubmitPermissions guards the submission endpoints. Settings are
// resolved lazily per request so admin changes take effect without restart.
func RequireSubmitPermissions(source SettingsSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			settings, err := source.GetSiteSettings()
			if err != nil {
				response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
				return
			}

			userID, _ := GetUserIDFromContext(r.Context())
			if !CanSubmitVideo(settings, userID, GetIsAdminFromContext(r.Context())) {
				response.WriteJSON(w, http.StatusForbidden, response.GeneralError(
					errors.New("video submission is not permitted")))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
