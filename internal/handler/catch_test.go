package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tacklor/server/internal/domain"
	"github.com/tacklor/server/internal/i18n"
	"github.com/tacklor/server/internal/middleware"
	"github.com/tacklor/server/internal/service"
	"github.com/tacklor/server/internal/weather"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Stubs
// =============================================================================

type stubCatchService struct {
	created     *domain.CreateCatchParams
	record      *domain.CatchRecord
	verdict     *domain.Verdict
	err         error
	lastListing domain.ListCatchesParams
}

func (s *stubCatchService) Create(_ context.Context, params domain.CreateCatchParams) (*domain.CatchRecord, error) {
	s.created = &params
	return s.record, s.err
}

func (s *stubCatchService) GetByID(_ context.Context, id, userID uuid.UUID) (*domain.CatchRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.record, nil
}

func (s *stubCatchService) List(_ context.Context, params domain.ListCatchesParams) (*domain.ListCatchesResult, error) {
	s.lastListing = params
	return &domain.ListCatchesResult{
		Catches:    []*domain.CatchRecord{s.record},
		TotalCount: 1,
		Limit:      params.Limit,
		Offset:     params.Offset,
	}, s.err
}

func (s *stubCatchService) Update(_ context.Context, params domain.UpdateCatchParams) (*domain.CatchRecord, error) {
	return s.record, s.err
}

func (s *stubCatchService) Delete(_ context.Context, id, userID uuid.UUID) error {
	return s.err
}

func (s *stubCatchService) Evaluate(_ context.Context, id, userID uuid.UUID, lang i18n.Language) (*domain.Verdict, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.verdict, nil
}

func (s *stubCatchService) AcknowledgeDeclaration(_ context.Context, id, userID uuid.UUID) (*domain.CatchRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.record, nil
}

type stubPhotoService struct{}

func (s *stubPhotoService) Upload(_ context.Context, params service.UploadPhotoParams) (*domain.CatchRecord, error) {
	return nil, domain.Invalid("photo.upload", "not implemented in stub")
}

func (s *stubPhotoService) PhotoURL(_ context.Context, rec *domain.CatchRecord, _ time.Duration) (string, error) {
	return "http://localhost/files/" + rec.PhotoKey, nil
}

func (s *stubPhotoService) ThumbnailURL(_ context.Context, rec *domain.CatchRecord, _ time.Duration) (string, error) {
	return "http://localhost/files/" + rec.ThumbnailKey, nil
}

// =============================================================================
// Test Setup
// =============================================================================

func newTestServer(t *testing.T, catches *stubCatchService) *http.ServeMux {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	weatherClient := weather.NewClient(weather.Config{}, logger)
	h := NewCatchHandler(catches, &stubPhotoService{}, weatherClient, logger)

	identityMw := middleware.NewIdentityMiddleware(logger)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux, identityMw.RequireIdentity)
	return mux
}

func sampleCatch(userID uuid.UUID) *domain.CatchRecord {
	now := time.Date(2025, 8, 14, 6, 30, 0, 0, time.UTC)
	return &domain.CatchRecord{
		ID:     uuid.New(),
		UserID: userID,
		CatchAnalysis: domain.CatchAnalysis{
			Species:  "Bar commun",
			LengthCm: 52,
			WeightKg: 1.8,
		},
		CaughtAt:          now,
		Location:          "Pointe de Chassiron",
		Tags:              []string{"surfcasting"},
		AnalysisStatus:    domain.AnalysisStatusNone,
		ComplianceStatus:  domain.StatusCompliant,
		ComplianceMessage: "Capture conforme.",
		RuleVersion:       "2025.2",
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// =============================================================================
// Tests
// =============================================================================

func TestCatchHandler_Create(t *testing.T) {
	userID := uuid.New()
	stub := &stubCatchService{record: sampleCatch(userID)}
	mux := newTestServer(t, stub)

	body := `{"species":"Bar commun","length_cm":52,"weight_kg":1.8,"location":"Pointe de Chassiron","tags":["surfcasting"]}`
	req := httptest.NewRequest("POST", "/catches", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en")
	req.Header.Set(middleware.UserIDHeader, userID.String())
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp catchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Bar commun", resp.Species)
	assert.Equal(t, "compliant", resp.Compliance.Status)
	assert.Equal(t, "2025.2", resp.Compliance.RuleVersion)

	// The service saw the decoded params with the resolved language.
	require.NotNil(t, stub.created)
	assert.Equal(t, userID, stub.created.UserID)
	assert.Equal(t, "en", stub.created.Lang)
	assert.Nil(t, stub.created.WeatherSnapshot)
}

func TestCatchHandler_Create_InvalidBody(t *testing.T) {
	userID := uuid.New()
	stub := &stubCatchService{record: sampleCatch(userID)}
	mux := newTestServer(t, stub)

	req := httptest.NewRequest("POST", "/catches", strings.NewReader(`{"species":`))
	req.Header.Set(middleware.UserIDHeader, userID.String())
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid")
}

func TestCatchHandler_Get_InvalidID(t *testing.T) {
	userID := uuid.New()
	mux := newTestServer(t, &stubCatchService{record: sampleCatch(userID)})

	req := httptest.NewRequest("GET", "/catches/not-a-uuid", nil)
	req.Header.Set(middleware.UserIDHeader, userID.String())
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatchHandler_Get_NotFound(t *testing.T) {
	userID := uuid.New()
	stub := &stubCatchService{err: domain.NotFound("catch.get", "catch", uuid.NewString())}
	mux := newTestServer(t, stub)

	req := httptest.NewRequest("GET", "/catches/"+uuid.NewString(), nil)
	req.Header.Set(middleware.UserIDHeader, userID.String())
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatchHandler_MissingIdentity(t *testing.T) {
	mux := newTestServer(t, &stubCatchService{})

	req := httptest.NewRequest("GET", "/catches", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCatchHandler_List(t *testing.T) {
	userID := uuid.New()
	stub := &stubCatchService{record: sampleCatch(userID)}
	mux := newTestServer(t, stub)

	req := httptest.NewRequest("GET", "/catches?limit=10&offset=20", nil)
	req.Header.Set(middleware.UserIDHeader, userID.String())
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, stub.lastListing.Limit)
	assert.Equal(t, 20, stub.lastListing.Offset)

	var resp listCatchesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Catches, 1)
	assert.Equal(t, int64(1), resp.TotalCount)
}

func TestCatchHandler_Evaluate(t *testing.T) {
	userID := uuid.New()
	stub := &stubCatchService{
		record: sampleCatch(userID),
		verdict: &domain.Verdict{
			Status:      domain.StatusToDeclare,
			Message:     "Taille sous la maille.",
			RuleVersion: "2025.2",
			EvaluatedAt: time.Now(),
		},
	}
	mux := newTestServer(t, stub)

	req := httptest.NewRequest("POST", "/catches/"+uuid.NewString()+"/evaluate", nil)
	req.Header.Set(middleware.UserIDHeader, userID.String())
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp verdictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "to_declare", resp.Status)
	assert.Equal(t, "2025.2", resp.RuleVersion)
}

func TestCatchHandler_Delete(t *testing.T) {
	userID := uuid.New()
	mux := newTestServer(t, &stubCatchService{record: sampleCatch(userID)})

	req := httptest.NewRequest("DELETE", "/catches/"+uuid.NewString(), nil)
	req.Header.Set(middleware.UserIDHeader, userID.String())
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
