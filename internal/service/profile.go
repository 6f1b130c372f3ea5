// Package service contains the business logic layer.
//
// This file implements the profile service for angler-facing profiles.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/tacklor/server/internal/domain"
	"github.com/tacklor/server/internal/repository"
)

// ProfileService defines the interface for profile operations.
//
// Profiles are created lazily: reading a profile that does not exist yet
// returns a default one, and the first update persists it.
type ProfileService interface {
	// Get retrieves a user's profile, or a default profile if none is stored.
	Get(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error)

	// Update patches and persists a user's profile.
	// Returns domain.EINVALID for validation errors.
	Update(ctx context.Context, params domain.UpdateProfileParams) (*domain.UserProfile, error)
}

type profileService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewProfileService creates a new ProfileService.
func NewProfileService(queries *repository.Queries, logger *slog.Logger) ProfileService {
	return &profileService{queries: queries, logger: logger}
}

func (s *profileService) Get(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error) {
	const op = "profile.get"

	row, err := s.queries.GetProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Not stored yet: new users are public by default.
			return &domain.UserProfile{UserID: userID, IsPublic: true}, nil
		}
		return nil, domain.Internal(err, op, "failed to get profile")
	}

	return rowToProfile(row), nil
}

const maxDisplayNameLength = 60

func (s *profileService) Update(ctx context.Context, params domain.UpdateProfileParams) (*domain.UserProfile, error) {
	const op = "profile.update"

	current, err := s.Get(ctx, params.UserID)
	if err != nil {
		return nil, err
	}

	if params.DisplayName != nil {
		name := strings.TrimSpace(*params.DisplayName)
		if len(name) > maxDisplayNameLength {
			return nil, domain.Invalid(op, "display name is too long")
		}
		current.DisplayName = name
	}
	if params.PhotoURL != nil {
		current.PhotoURL = *params.PhotoURL
	}
	if params.IsPublic != nil {
		current.IsPublic = *params.IsPublic
	}
	if params.BirthDate != nil {
		// A zero time clears the recorded birth date.
		if params.BirthDate.IsZero() {
			current.BirthDate = nil
		} else {
			current.BirthDate = params.BirthDate
		}
	}
	if params.ShowAge != nil {
		current.ShowAge = *params.ShowAge
	}

	birthDate := sql.NullTime{}
	if current.BirthDate != nil {
		birthDate = sql.NullTime{Time: *current.BirthDate, Valid: true}
	}

	row, err := s.queries.UpsertProfile(ctx, repository.UpsertProfileParams{
		UserID:      params.UserID,
		DisplayName: current.DisplayName,
		PhotoUrl:    current.PhotoURL,
		IsPublic:    current.IsPublic,
		BirthDate:   birthDate,
		ShowAge:     current.ShowAge,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to save profile")
	}

	s.logger.Info("profile updated", "user_id", params.UserID)
	return rowToProfile(row), nil
}

func rowToProfile(row repository.Profile) *domain.UserProfile {
	p := &domain.UserProfile{
		UserID:      row.UserID,
		DisplayName: row.DisplayName,
		PhotoURL:    row.PhotoUrl,
		IsPublic:    row.IsPublic,
		ShowAge:     row.ShowAge,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if row.BirthDate.Valid {
		birthDate := row.BirthDate.Time
		p.BirthDate = &birthDate
	}
	return p
}
