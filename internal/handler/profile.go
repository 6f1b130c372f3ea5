// Package handler contains the JSON HTTP handlers for the Tacklor API.
//
// This file implements the angler profile endpoints.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/tacklor/server/internal/domain"
	"github.com/tacklor/server/internal/service"
)

// =============================================================================
// Request / Response Types
// =============================================================================

// birthDateLayout is the wire format for birth dates.
const birthDateLayout = "2006-01-02"

// updateProfileRequest is the JSON body for PUT /profile.
// Absent fields are left unchanged.
type updateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	PhotoURL    *string `json:"photo_url"`
	IsPublic    *bool   `json:"is_public"`
	BirthDate   *string `json:"birth_date"` // YYYY-MM-DD; empty string clears it
	ShowAge     *bool   `json:"show_age"`
}

// profileResponse is the JSON representation of a profile.
type profileResponse struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
	IsPublic    bool   `json:"is_public"`
	BirthDate   string `json:"birth_date,omitempty"`
	ShowAge     bool   `json:"show_age"`
	Age         int    `json:"age,omitempty"`
}

// =============================================================================
// Handler Configuration
// =============================================================================

// ProfileHandler handles profile-related HTTP requests.
type ProfileHandler struct {
	profileService service.ProfileService
	logger         *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileService service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		logger:         logger,
	}
}

// RegisterRoutes registers the profile routes with the provided mux.
//
// Routes:
// - GET /profile -> Get
// - PUT /profile -> Update
func (h *ProfileHandler) RegisterRoutes(mux *http.ServeMux, requireUser func(http.Handler) http.Handler) {
	mux.Handle("GET /profile", requireUser(http.HandlerFunc(h.Get)))
	mux.Handle("PUT /profile", requireUser(http.HandlerFunc(h.Update)))
}

// =============================================================================
// GET /profile - Get Profile
// =============================================================================

// Get returns the authenticated angler's profile. Anglers who never saved a
// profile get the defaults back rather than a 404.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	profile, err := h.profileService.Get(r.Context(), userID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, toProfileResponse(profile))
}

// =============================================================================
// PUT /profile - Update Profile
// =============================================================================

// Update applies a partial profile update.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	params := domain.UpdateProfileParams{
		UserID:      userID,
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		IsPublic:    req.IsPublic,
		ShowAge:     req.ShowAge,
	}
	if req.BirthDate != nil {
		if *req.BirthDate == "" {
			var zero time.Time
			params.BirthDate = &zero
		} else {
			parsed, err := time.Parse(birthDateLayout, *req.BirthDate)
			if err != nil {
				ErrorResponse(w, r, h.logger, domain.Invalid("ProfileHandler.Update", "birth_date must be YYYY-MM-DD"))
				return
			}
			params.BirthDate = &parsed
		}
	}

	profile, err := h.profileService.Update(r.Context(), params)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, toProfileResponse(profile))
}

// =============================================================================
// Helper Functions
// =============================================================================

func toProfileResponse(p *domain.UserProfile) profileResponse {
	resp := profileResponse{
		UserID:      p.UserID.String(),
		DisplayName: p.DisplayName,
		PhotoURL:    p.PhotoURL,
		IsPublic:    p.IsPublic,
		ShowAge:     p.ShowAge,
	}
	if p.BirthDate != nil && !p.BirthDate.IsZero() {
		resp.BirthDate = p.BirthDate.Format(birthDateLayout)
	}
	if age, ok := p.Age(time.Now()); ok {
		resp.Age = age
	}
	return resp
}
