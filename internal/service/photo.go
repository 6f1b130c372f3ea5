// Package service contains the business logic layer.
//
// This file implements catch photo uploads: validation, re-encoding,
// thumbnail generation, storage and queuing of the vision analysis job.
package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/tacklor/server/internal/domain"
	"github.com/tacklor/server/internal/repository"
	"github.com/tacklor/server/internal/storage"
	"github.com/tacklor/server/internal/worker"
)

// Photo processing limits. Uploads are re-encoded to bounded JPEGs before
// storage so the vision provider never sees oversized payloads.
const (
	MaxUploadSize    = 20 << 20 // 20 MB raw upload limit
	photoMaxDim      = 800
	photoJPEGQuality = 85
	thumbMaxDim      = 300
	thumbJPEGQuality = 80
)

// =============================================================================
// Interface Definition
// =============================================================================

// UploadPhotoParams contains parameters for attaching a photo to a catch.
type UploadPhotoParams struct {
	CatchID     uuid.UUID
	UserID      uuid.UUID
	Filename    string
	ContentType string
	Data        io.Reader
	Lang        string // Language for the eventual AI analysis
}

// PhotoService handles catch photo uploads and access.
type PhotoService interface {
	// Upload validates, re-encodes and stores a catch photo, then queues the
	// vision analysis job. Returns the updated catch.
	// Returns domain.ENOTFOUND if the catch doesn't belong to the user,
	// domain.EINVALID for unsupported images and domain.ETOOLARGE for
	// oversized uploads.
	Upload(ctx context.Context, params UploadPhotoParams) (*domain.CatchRecord, error)

	// PhotoURL returns an access URL for a catch's stored photo, or an empty
	// string if no photo is attached.
	PhotoURL(ctx context.Context, rec *domain.CatchRecord, expires time.Duration) (string, error)

	// ThumbnailURL returns an access URL for a catch's thumbnail, or an
	// empty string if none exists.
	ThumbnailURL(ctx context.Context, rec *domain.CatchRecord, expires time.Duration) (string, error)
}

// =============================================================================
// Implementation
// =============================================================================

type photoService struct {
	queries *repository.Queries
	store   storage.Storage
	logger  *slog.Logger
}

// NewPhotoService creates a new PhotoService.
func NewPhotoService(queries *repository.Queries, store storage.Storage, logger *slog.Logger) PhotoService {
	return &photoService{
		queries: queries,
		store:   store,
		logger:  logger,
	}
}

func (s *photoService) Upload(ctx context.Context, params UploadPhotoParams) (*domain.CatchRecord, error) {
	const op = "photo.upload"

	// Verify the catch exists and belongs to the caller.
	if _, err := s.queries.GetCatchByIDAndUserID(ctx, repository.GetCatchByIDAndUserIDParams{
		ID:     params.CatchID,
		UserID: params.UserID,
	}); err != nil {
		return nil, domain.NotFound(op, "catch", params.CatchID.String())
	}

	contentType := storage.DetectContentType(params.ContentType, params.Filename, nil)
	if !storage.IsAllowedImageType(contentType) {
		return nil, domain.Invalid(op, fmt.Sprintf("unsupported image type %q", contentType))
	}

	// Read the upload with a hard size cap.
	raw, err := io.ReadAll(io.LimitReader(params.Data, MaxUploadSize+1))
	if err != nil {
		return nil, domain.Internal(err, op, "failed to read upload")
	}
	if len(raw) > MaxUploadSize {
		return nil, domain.Errorf(domain.ETOOLARGE, op, "photo exceeds the %d MB limit", MaxUploadSize>>20)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, domain.Invalid(op, "could not decode image")
	}

	photo, err := encodeJPEG(img, photoMaxDim, photoJPEGQuality)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to encode photo")
	}
	thumb, err := encodeJPEG(img, thumbMaxDim, thumbJPEGQuality)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to encode thumbnail")
	}

	// Everything is stored as JPEG after re-encoding.
	photoKey := storage.PhotoKey(params.CatchID, "photo.jpg")
	thumbKey := storage.ThumbnailKey(params.CatchID, "thumb.jpg")

	putOpts := storage.PutOptions{ContentType: "image/jpeg", Overwrite: true}
	if err := s.store.Put(ctx, photoKey, bytes.NewReader(photo), putOpts); err != nil {
		return nil, domain.Internal(err, op, "failed to store photo")
	}
	if err := s.store.Put(ctx, thumbKey, bytes.NewReader(thumb), putOpts); err != nil {
		// Roll back the photo so we never keep a half-stored pair.
		_ = s.store.Delete(ctx, photoKey)
		return nil, domain.Internal(err, op, "failed to store thumbnail")
	}

	if err := s.queries.UpdateCatchPhoto(ctx, repository.UpdateCatchPhotoParams{
		ID:             params.CatchID,
		PhotoKey:       nullString(photoKey),
		ThumbnailKey:   nullString(thumbKey),
		AnalysisStatus: string(domain.AnalysisStatusPending),
	}); err != nil {
		return nil, domain.Internal(err, op, "failed to attach photo")
	}

	if _, err := worker.EnqueueAnalyzeCatchPhoto(ctx, s.queries, params.CatchID, params.UserID, params.Lang,
		worker.WithPriority(worker.PriorityHigh)); err != nil {
		// The photo is stored; analysis can be retried later.
		s.logger.Error("failed to enqueue photo analysis", "catch_id", params.CatchID, "error", err)
	}

	row, err := s.queries.GetCatchByIDAndUserID(ctx, repository.GetCatchByIDAndUserIDParams{
		ID:     params.CatchID,
		UserID: params.UserID,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to reload catch")
	}

	s.logger.Info("photo uploaded",
		"catch_id", params.CatchID,
		"user_id", params.UserID,
		"photo_key", photoKey,
		"size", len(photo),
	)

	return rowToCatch(row)
}

func (s *photoService) PhotoURL(ctx context.Context, rec *domain.CatchRecord, expires time.Duration) (string, error) {
	if rec.PhotoKey == "" {
		return "", nil
	}
	return s.store.URL(ctx, rec.PhotoKey, expires)
}

func (s *photoService) ThumbnailURL(ctx context.Context, rec *domain.CatchRecord, expires time.Duration) (string, error) {
	if rec.ThumbnailKey == "" {
		return "", nil
	}
	return s.store.URL(ctx, rec.ThumbnailKey, expires)
}

// encodeJPEG fits the image within maxDim x maxDim preserving aspect ratio
// and encodes it as JPEG. Images already smaller than maxDim are re-encoded
// without resizing.
func encodeJPEG(img image.Image, maxDim, quality int) ([]byte, error) {
	bounds := img.Bounds()
	resized := img
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		resized = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
