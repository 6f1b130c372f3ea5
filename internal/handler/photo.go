// Package handler contains the JSON HTTP handlers for the Tacklor API.
//
// This file implements the catch photo upload endpoint.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/tacklor/server/internal/domain"
	"github.com/tacklor/server/internal/service"
)

// =============================================================================
// Handler Configuration
// =============================================================================

// PhotoHandler handles catch photo uploads.
type PhotoHandler struct {
	photoService service.PhotoService
	catchHandler *CatchHandler
	logger       *slog.Logger
}

// NewPhotoHandler creates a new PhotoHandler. The catch handler is used to
// render the updated catch after an upload.
func NewPhotoHandler(photoService service.PhotoService, catchHandler *CatchHandler, logger *slog.Logger) *PhotoHandler {
	return &PhotoHandler{
		photoService: photoService,
		catchHandler: catchHandler,
		logger:       logger,
	}
}

// RegisterRoutes registers the photo routes with the provided mux.
//
// Routes:
// - POST /catches/{id}/photo -> Upload
func (h *PhotoHandler) RegisterRoutes(mux *http.ServeMux, requireUser func(http.Handler) http.Handler) {
	mux.Handle("POST /catches/{id}/photo", requireUser(http.HandlerFunc(h.Upload)))
}

// =============================================================================
// POST /catches/{id}/photo - Upload Photo
// =============================================================================

// Upload attaches a photo to a catch. The image is normalized, a thumbnail is
// generated, and an AI analysis job is queued. The response is the updated
// catch with analysis_status set to pending.
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	catchID, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	// Cap the whole request body before touching the multipart reader.
	r.Body = http.MaxBytesReader(w, r.Body, service.MaxUploadSize)

	if err := r.ParseMultipartForm(8 << 20); err != nil {
		h.logger.Info("failed to parse multipart form", "error", err, "catch_id", catchID)
		writeJSONError(w, http.StatusBadRequest, domain.EINVALID, "Failed to parse upload form")
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, domain.EINVALID, "Missing photo file")
		return
	}
	defer func() { _ = file.Close() }()

	rec, err := h.photoService.Upload(r.Context(), service.UploadPhotoParams{
		CatchID:     catchID,
		UserID:      userID,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        file,
		Lang:        string(requestLanguage(r)),
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.logger.Info("photo uploaded",
		"catch_id", catchID,
		"user_id", userID,
		"filename", header.Filename,
	)

	respondJSON(w, h.logger, http.StatusAccepted, h.catchHandler.toCatchResponse(r, rec))
}
