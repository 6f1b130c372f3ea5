// Package handler contains the JSON HTTP handlers for the Tacklor API.
//
// This file implements the catch logbook endpoints: CRUD, compliance
// evaluation and declaration acknowledgement.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/tacklor/server/internal/domain"
	"github.com/tacklor/server/internal/service"
	"github.com/tacklor/server/internal/weather"
)

// =============================================================================
// Request / Response Types
// =============================================================================

// createCatchRequest is the JSON body for POST /catches.
type createCatchRequest struct {
	Species            string   `json:"species"`
	LengthCm           float64  `json:"length_cm"`
	WeightKg           float64  `json:"weight_kg"`
	IsSensitiveSpecies bool     `json:"is_sensitive_species"`
	Technique          string   `json:"technique"`
	SpotType           string   `json:"spot_type"`
	CaughtAt           string   `json:"caught_at"` // RFC 3339; defaults to now
	Location           string   `json:"location"`
	LocationName       string   `json:"location_name"`
	Tags               []string `json:"tags"`
	Lat                *float64 `json:"lat"`
	Lon                *float64 `json:"lon"`
}

// updateCatchRequest is the JSON body for PATCH /catches/{id}.
// Absent fields are left unchanged.
type updateCatchRequest struct {
	Species            *string   `json:"species"`
	LengthCm           *float64  `json:"length_cm"`
	WeightKg           *float64  `json:"weight_kg"`
	IsSensitiveSpecies *bool     `json:"is_sensitive_species"`
	Technique          *string   `json:"technique"`
	SpotType           *string   `json:"spot_type"`
	Location           *string   `json:"location"`
	Tags               *[]string `json:"tags"`
	CaughtAt           *string   `json:"caught_at"`
}

// weatherResponse mirrors the stored weather snapshot.
type weatherResponse struct {
	Temp         float64 `json:"temp"`
	Wind         float64 `json:"wind"`
	Pressure     float64 `json:"pressure"`
	Code         int     `json:"code"`
	Desc         string  `json:"desc"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	LocationName string  `json:"location_name,omitempty"`
}

// complianceResponse is the verdict block attached to every catch.
type complianceResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message,omitempty"`
	Advice      string `json:"advice,omitempty"`
	RuleVersion string `json:"rule_version,omitempty"`
}

// catchResponse is the JSON representation of a catch.
type catchResponse struct {
	ID                 string              `json:"id"`
	Species            string              `json:"species,omitempty"`
	LengthCm           float64             `json:"length_cm,omitempty"`
	WeightKg           float64             `json:"weight_kg,omitempty"`
	IsSensitiveSpecies bool                `json:"is_sensitive_species"`
	Technique          string              `json:"technique,omitempty"`
	SpotType           string              `json:"spot_type,omitempty"`
	CaughtAt           time.Time           `json:"caught_at"`
	Location           string              `json:"location,omitempty"`
	Tags               []string            `json:"tags"`
	PhotoURL           string              `json:"photo_url,omitempty"`
	ThumbnailURL       string              `json:"thumbnail_url,omitempty"`
	AnalysisStatus     string              `json:"analysis_status"`
	Weather            *weatherResponse    `json:"weather,omitempty"`
	Compliance         complianceResponse  `json:"compliance"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// listCatchesResponse is a page of catches.
type listCatchesResponse struct {
	Catches    []catchResponse `json:"catches"`
	TotalCount int64           `json:"total_count"`
	Limit      int             `json:"limit"`
	Offset     int             `json:"offset"`
}

// verdictResponse is returned by the explicit evaluate endpoint.
type verdictResponse struct {
	Status      string    `json:"status"`
	Message     string    `json:"message,omitempty"`
	Advice      string    `json:"advice,omitempty"`
	RuleVersion string    `json:"rule_version"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// =============================================================================
// Handler Configuration
// =============================================================================

// photoURLTTL is how long presigned photo URLs stay valid.
const photoURLTTL = 15 * time.Minute

// CatchHandler handles catch-related HTTP requests.
type CatchHandler struct {
	catchService service.CatchService
	photoService service.PhotoService
	weather      *weather.Client
	logger       *slog.Logger
}

// NewCatchHandler creates a new CatchHandler.
func NewCatchHandler(
	catchService service.CatchService,
	photoService service.PhotoService,
	weatherClient *weather.Client,
	logger *slog.Logger,
) *CatchHandler {
	return &CatchHandler{
		catchService: catchService,
		photoService: photoService,
		weather:      weatherClient,
		logger:       logger,
	}
}

// =============================================================================
// Route Registration
// =============================================================================

// RegisterRoutes registers all catch routes with the provided mux.
//
// All routes require an authenticated identity via the requireUser middleware.
//
// Routes:
// - POST   /catches                                -> Create
// - GET    /catches                                -> List
// - GET    /catches/{id}                           -> Get
// - PATCH  /catches/{id}                           -> Update
// - DELETE /catches/{id}                           -> Delete
// - POST   /catches/{id}/evaluate                  -> Evaluate
// - POST   /catches/{id}/acknowledge-declaration   -> AcknowledgeDeclaration
func (h *CatchHandler) RegisterRoutes(mux *http.ServeMux, requireUser func(http.Handler) http.Handler) {
	mux.Handle("POST /catches", requireUser(http.HandlerFunc(h.Create)))
	mux.Handle("GET /catches", requireUser(http.HandlerFunc(h.List)))
	mux.Handle("GET /catches/{id}", requireUser(http.HandlerFunc(h.Get)))
	mux.Handle("PATCH /catches/{id}", requireUser(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /catches/{id}", requireUser(http.HandlerFunc(h.Delete)))
	mux.Handle("POST /catches/{id}/evaluate", requireUser(http.HandlerFunc(h.Evaluate)))
	mux.Handle("POST /catches/{id}/acknowledge-declaration", requireUser(http.HandlerFunc(h.AcknowledgeDeclaration)))
}

// =============================================================================
// POST /catches - Create Catch
// =============================================================================

// Create logs a new catch. When coordinates are provided, a weather snapshot
// is fetched best-effort and attached; a weather outage never blocks the log.
func (h *CatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	var req createCatchRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	caughtAt := time.Now()
	if req.CaughtAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.CaughtAt)
		if err != nil {
			ErrorResponse(w, r, h.logger, domain.Invalid("CatchHandler.Create", "caught_at must be RFC 3339"))
			return
		}
		caughtAt = parsed
	}

	lang := requestLanguage(r)

	params := domain.CreateCatchParams{
		UserID: userID,
		Analysis: domain.CatchAnalysis{
			Species:            req.Species,
			LengthCm:           req.LengthCm,
			WeightKg:           req.WeightKg,
			IsSensitiveSpecies: req.IsSensitiveSpecies,
			Technique:          req.Technique,
			SpotType:           req.SpotType,
		},
		CaughtAt:        caughtAt,
		Location:        req.Location,
		Tags:            req.Tags,
		WeatherSnapshot: h.snapshotFor(r, req),
		Lang:            string(lang),
	}

	rec, err := h.catchService.Create(r.Context(), params)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, h.toCatchResponse(r, rec))
}

// snapshotFor builds the weather snapshot for a new catch. Returns nil when
// no coordinates were supplied.
func (h *CatchHandler) snapshotFor(r *http.Request, req createCatchRequest) *domain.WeatherSnapshot {
	if req.Lat == nil || req.Lon == nil {
		return nil
	}

	snap, err := h.weather.Current(r.Context(), *req.Lat, *req.Lon)
	if err != nil {
		h.logger.Warn("weather lookup failed, storing coordinates only",
			"error", err,
			"lat", *req.Lat,
			"lon", *req.Lon,
		)
		snap = &domain.WeatherSnapshot{Lat: *req.Lat, Lon: *req.Lon}
	}
	if req.LocationName != "" {
		snap.LocationName = req.LocationName
	}
	return snap
}

// =============================================================================
// GET /catches - List Catches
// =============================================================================

// List returns a page of the authenticated angler's catches, newest first.
func (h *CatchHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	result, err := h.catchService.List(r.Context(), domain.ListCatchesParams{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	resp := listCatchesResponse{
		Catches:    make([]catchResponse, 0, len(result.Catches)),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	}
	for _, rec := range result.Catches {
		resp.Catches = append(resp.Catches, h.toCatchResponse(r, rec))
	}

	respondJSON(w, h.logger, http.StatusOK, resp)
}

// =============================================================================
// GET /catches/{id} - Get Catch
// =============================================================================

// Get returns a single catch owned by the authenticated angler.
func (h *CatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	rec, err := h.catchService.GetByID(r.Context(), id, userID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, h.toCatchResponse(r, rec))
}

// =============================================================================
// PATCH /catches/{id} - Update Catch
// =============================================================================

// Update applies a partial update and re-evaluates compliance when any field
// the regulation engine looks at changed.
func (h *CatchHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req updateCatchRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	params := domain.UpdateCatchParams{
		ID:                 id,
		UserID:             userID,
		Species:            req.Species,
		LengthCm:           req.LengthCm,
		WeightKg:           req.WeightKg,
		IsSensitiveSpecies: req.IsSensitiveSpecies,
		Technique:          req.Technique,
		SpotType:           req.SpotType,
		Location:           req.Location,
		Tags:               req.Tags,
		Lang:               string(requestLanguage(r)),
	}
	if req.CaughtAt != nil {
		parsed, err := time.Parse(time.RFC3339, *req.CaughtAt)
		if err != nil {
			ErrorResponse(w, r, h.logger, domain.Invalid("CatchHandler.Update", "caught_at must be RFC 3339"))
			return
		}
		params.CaughtAt = &parsed
	}

	rec, err := h.catchService.Update(r.Context(), params)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, h.toCatchResponse(r, rec))
}

// =============================================================================
// DELETE /catches/{id} - Delete Catch
// =============================================================================

// Delete removes a catch and its stored photos.
func (h *CatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.catchService.Delete(r.Context(), id, userID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// POST /catches/{id}/evaluate - Evaluate Compliance
// =============================================================================

// Evaluate forces a compliance re-evaluation of the catch and returns the
// resulting verdict.
func (h *CatchHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	verdict, err := h.catchService.Evaluate(r.Context(), id, userID, requestLanguage(r))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, verdictResponse{
		Status:      verdict.Status.String(),
		Message:     verdict.Message,
		Advice:      verdict.Advice,
		RuleVersion: verdict.RuleVersion,
		EvaluatedAt: verdict.EvaluatedAt,
	})
}

// =============================================================================
// POST /catches/{id}/acknowledge-declaration - Acknowledge Declaration
// =============================================================================

// AcknowledgeDeclaration marks a declaration-required catch as validated.
// The validated status is terminal: later automatic re-evaluations keep it.
func (h *CatchHandler) AcknowledgeDeclaration(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	rec, err := h.catchService.AcknowledgeDeclaration(r.Context(), id, userID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, h.toCatchResponse(r, rec))
}

// =============================================================================
// Helper Functions
// =============================================================================

// toCatchResponse converts a catch record to its JSON representation,
// resolving photo URLs. URL resolution failures degrade to empty URLs.
func (h *CatchHandler) toCatchResponse(r *http.Request, rec *domain.CatchRecord) catchResponse {
	resp := catchResponse{
		ID:                 rec.ID.String(),
		Species:            rec.Species,
		LengthCm:           rec.LengthCm,
		WeightKg:           rec.WeightKg,
		IsSensitiveSpecies: rec.IsSensitiveSpecies,
		Technique:          rec.Technique,
		SpotType:           rec.SpotType,
		CaughtAt:           rec.CaughtAt,
		Location:           rec.Location,
		Tags:               rec.Tags,
		AnalysisStatus:     rec.AnalysisStatus.String(),
		Compliance: complianceResponse{
			Status:      rec.ComplianceStatus.String(),
			Message:     rec.ComplianceMessage,
			Advice:      rec.AIAdvice,
			RuleVersion: rec.RuleVersion,
		},
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}

	if ws := rec.WeatherSnapshot; ws != nil {
		resp.Weather = &weatherResponse{
			Temp:         ws.Temp,
			Wind:         ws.Wind,
			Pressure:     ws.Pressure,
			Code:         ws.Code,
			Desc:         ws.Desc,
			Lat:          ws.Lat,
			Lon:          ws.Lon,
			LocationName: ws.LocationName,
		}
	}

	if rec.HasPhoto() {
		url, err := h.photoService.PhotoURL(r.Context(), rec, photoURLTTL)
		if err != nil {
			h.logger.Error("failed to resolve photo URL", "error", err, "catch_id", rec.ID)
		} else {
			resp.PhotoURL = url
		}
		thumb, err := h.photoService.ThumbnailURL(r.Context(), rec, photoURLTTL)
		if err != nil {
			h.logger.Error("failed to resolve thumbnail URL", "error", err, "catch_id", rec.ID)
		} else {
			resp.ThumbnailURL = thumb
		}
	}

	return resp
}

// queryInt parses an integer query parameter, falling back to def.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
