package submit

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mirocommunity/submit-service/internal/classify"
	"github.com/mirocommunity/submit-service/internal/events"
	"github.com/mirocommunity/submit-service/internal/forms"
	"github.com/mirocommunity/submit-service/internal/http/middleware"
	"github.com/mirocommunity/submit-service/internal/resolver"
	"github.com/mirocommunity/submit-service/internal/services/media"
	"github.com/mirocommunity/submit-service/internal/staging"
	"github.com/mirocommunity/submit-service/internal/storage"
	"github.com/mirocommunity/submit-service/internal/tags"
	"github.com/mirocommunity/submit-service/internal/types"
	"github.com/mirocommunity/submit-service/internal/utils/response"
)

// Handlers wires the submission workflow: classify at /submit/, finalize at
// the three type-specific pages, confirm at the thanks page.
type Handlers struct {
	storage      storage.Storage
	staging      *staging.Store
	resolver     resolver.Resolver
	notifier     *events.Notifier
	thumbnails   media.ThumbnailStore
	dests        classify.Destinations
	submitURL    string
	requireEmail bool
}

func NewHandlers(storage storage.Storage, stagingStore *staging.Store,
	videoResolver resolver.Resolver, notifier *events.Notifier,
	thumbnails media.ThumbnailStore, dests classify.Destinations,
	submitURL string, requireEmail bool) *Handlers {
	return &Handlers{
		storage:      storage,
		staging:      stagingStore,
		resolver:     videoResolver,
		notifier:     notifier,
		thumbnails:   thumbnails,
		dests:        dests,
		submitURL:    submitURL,
		requireEmail: requireEmail,
	}
}

// SubmitURL handles the URL-submission entry point
// @Summary Submit a video URL
// @Description Classify a URL and stage the submission for finalization
// @Tags submit
// @Accept x-www-form-urlencoded
// @Produce json
// @Param url query string true "Video URL"
// @Success 302 "Redirect to the classification-specific form"
// @Success 200 {object} response.Response "Duplicate video"
// @Failure 400 {object} response.Response "Invalid URL"
// @Router /submit/ [post]
func (h *Handlers) SubmitURL() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form := forms.BindSubmitURLForm(r)
		if errs := form.Validate(); errs != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.FieldErrors(errs))
			return
		}

		// Duplicate detection is delegated to the persistence layer.
		duplicate, err := h.storage.FindDuplicate(form.URL)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}
		if duplicate != nil {
			response.WriteJSON(w, http.StatusOK, response.RequestOK(
				"That video has already been submitted",
				map[string]interface{}{
					"was_duplicate": true,
					"video":         duplicate,
				}))
			return
		}

		// The resolver is invoked exactly once. Fetch failures are
		// swallowed and fall through to the most conservative
		// classification; they never reach the user.
		video, err := h.resolver.Resolve(r.Context(), form.URL)
		if err != nil {
			slog.Warn("Resolver failed, treating URL as unresolved",
				slog.String("url", form.URL),
				slog.String("error", err.Error()))
			video = nil
		}

		classification := classify.Classify(video)
		destination := h.dests.For(classification, form.URL)

		sessionID, ok := middleware.GetSessionIDFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(
				errors.New("no session on request")))
			return
		}

		staged := &types.StagedSubmission{URL: form.URL, Video: video}
		if err := h.staging.Put(r.Context(), sessionID, destination, staged); err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		// Carry the original query string so the next-step form resumes
		// with the same URL context.
		query := r.URL.Query()
		if query.Get("url") == "" {
			query.Set("url", form.URL)
		}

		response.Redirect(w, r, classify.SuccessURL(destination, query.Encode()))
	}
}

// SubmitVideo handles a type-specific finalization page
// @Summary Finalize a staged submission
// @Description Render or accept the classification-specific form
// @Tags submit
// @Accept mpfd
// @Produce json
// @Success 302 "Redirect to the thanks page, or back to /submit/ when nothing is staged"
// @Success 200 {object} response.Response "Form values for a staged submission"
// @Failure 400 {object} response.Response "Validation errors"
// @Router /submit/{kind}/ [post]
func (h *Handlers) SubmitVideo(destination string) http.HandlerFunc {
	kind, ok := forms.DestinationKind(h.dests, destination)
	if !ok {
		panic("submit: unknown destination " + destination)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, sessionOK := middleware.GetSessionIDFromContext(r.Context())
		if !sessionOK {
			response.Redirect(w, r, h.submitURL)
			return
		}

		staged, err := h.staging.Get(r.Context(), sessionID, destination)
		if errors.Is(err, staging.ErrNotStaged) {
			// Hard precondition, not a validation error: without staged
			// data the user starts over at the entry point.
			response.Redirect(w, r, h.submitURL)
			return
		} else if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		if r.Method == http.MethodGet {
			h.renderForm(w, staged)
			return
		}

		h.finalize(w, r, kind, sessionID, destination, staged)
	}
}

func (h *Handlers) renderForm(w http.ResponseWriter, staged *types.StagedSubmission) {
	var tagNames []string
	if staged.Video != nil && len(staged.Video.Tags) > 0 {
		var err error
		tagNames, err = h.storage.GetOrCreateTags(tags.Normalize(staged.Video.Tags))
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}
	}

	response.WriteJSON(w, http.StatusOK, response.RequestOK("Submission in progress",
		map[string]interface{}{
			"url":     staged.URL,
			"initial": forms.Initial(staged.Video, tagNames),
			"data":    forms.CompatibilityData(staged.Video),
		}))
}

func (h *Handlers) finalize(w http.ResponseWriter, r *http.Request, kind forms.Kind,
	sessionID, destination string, staged *types.StagedSubmission) {
	form, err := forms.BindSubmitVideoForm(r, kind)
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return
	}

	if errs := form.Validate(h.requireEmail); errs != nil {
		// The staged entry is preserved so the user may retry without
		// re-resolving the URL.
		response.WriteJSON(w, http.StatusBadRequest, response.FieldErrors(errs))
		return
	}

	video := form.BuildVideo(staged)
	if userID, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		video.UserID = userID
	}

	if form.HasThumbnailFile() {
		if h.thumbnails == nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(
				errors.New("thumbnail uploads are not enabled")))
			return
		}
		objectKey, err := h.thumbnails.StoreThumbnail(r.Context(), form.ThumbnailFileName, form.ThumbnailFile)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}
		// An uploaded file strictly overrides any thumbnail_url.
		video.ThumbnailKey = objectKey
		video.ThumbnailURL = ""
	}

	videoID, err := h.storage.CreateVideo(video)
	if err != nil {
		response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
		return
	}
	video.ID = videoID

	if err := h.staging.Delete(r.Context(), sessionID, destination); err != nil {
		slog.Warn("Failed to clear staged submission",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
	}

	h.notifier.SubmitFinished(video)
	slog.Info("Video submitted", slog.String("video_id", videoID))

	response.Redirect(w, r, h.submitURL+"thanks/"+videoID)
}

// Thanks handles the post-completion confirmation page
// @Summary Submission confirmation
// @Tags submit
// @Produce json
// @Param video_id path string true "Video ID"
// @Success 200 {object} response.Response "The submitted video"
// @Failure 404 {object} response.Response "Video not found"
// @Router /submit/thanks/{video_id} [get]
func (h *Handlers) Thanks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID := r.PathValue("video_id")
		if videoID == "" {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(
				errors.New("video ID is required")))
			return
		}

		video, err := h.storage.GetVideoByID(videoID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				response.WriteJSON(w, http.StatusNotFound, response.GeneralError(
					errors.New("video not found")))
				return
			}
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Thanks for submitting!", video))
	}
}
