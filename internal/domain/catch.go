// Package domain contains core business types and interfaces.
//
// This file defines the CatchRecord domain type and related types for
// managing logged catches and their AI analysis lifecycle.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Photo Analysis Status
// =============================================================================

// AnalysisStatus represents the AI vision analysis state of a catch photo.
type AnalysisStatus string

const (
	// AnalysisStatusNone indicates no photo has been attached yet.
	AnalysisStatusNone AnalysisStatus = "none"

	// AnalysisStatusPending indicates a photo is queued for analysis.
	AnalysisStatusPending AnalysisStatus = "pending"

	// AnalysisStatusAnalyzing indicates the vision provider is processing the photo.
	AnalysisStatusAnalyzing AnalysisStatus = "analyzing"

	// AnalysisStatusCompleted indicates analysis finished and the estimate was applied.
	AnalysisStatusCompleted AnalysisStatus = "completed"

	// AnalysisStatusFailed indicates analysis failed permanently.
	AnalysisStatusFailed AnalysisStatus = "failed"
)

// String returns the string representation of the status.
func (s AnalysisStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a recognized value.
func (s AnalysisStatus) IsValid() bool {
	switch s {
	case AnalysisStatusNone, AnalysisStatusPending, AnalysisStatusAnalyzing,
		AnalysisStatusCompleted, AnalysisStatusFailed:
		return true
	}
	return false
}

// =============================================================================
// Weather Snapshot
// =============================================================================

// WeatherSnapshot captures the Open-Meteo conditions at the moment of the
// catch. Coordinates drive fishing-zone resolution; everything else is
// informational.
type WeatherSnapshot struct {
	Temp         float64 `json:"temp"`          // Air temperature, °C
	Wind         float64 `json:"wind"`          // Wind speed, km/h
	Pressure     float64 `json:"pressure"`      // Surface pressure, hPa
	Code         int     `json:"code"`          // WMO weather code
	Desc         string  `json:"desc"`          // Human-readable description
	Lat          float64 `json:"lat"`           // Capture latitude
	Lon          float64 `json:"lon"`           // Capture longitude
	LocationName string  `json:"location_name"` // Optional place name
}

// =============================================================================
// Catch Analysis
// =============================================================================

// CatchAnalysis is the best-effort estimate produced by the vision provider
// (or entered manually by the angler).
type CatchAnalysis struct {
	Species            string  // Free-text common name (user- or AI-provided)
	LengthCm           float64 // Estimated length; <= 0 means unmeasured
	WeightKg           float64 // Estimated weight; <= 0 means unknown
	IsSensitiveSpecies bool    // Manual/AI flag for sensitive species
	Technique          string  // Optional: inferred fishing technique
	SpotType           string  // Optional: inferred spot/environment type
}

// =============================================================================
// Catch Record
// =============================================================================

// CatchRecord represents one logged catch.
//
// The compliance verdict is recomputed whenever species, length, sensitivity
// or language change, and attached to the record at save time. EvalSeq guards
// concurrent evaluations: only the result of the most recently initiated
// evaluation may be applied.
type CatchRecord struct {
	ID     uuid.UUID // Unique identifier
	UserID uuid.UUID // Owning angler

	CatchAnalysis // Species, measurements and flags

	CaughtAt        time.Time        // When the fish was caught
	Location        string           // Free-text location/address
	Tags            []string         // Free-form user tags ("nuit", "surfcasting", ...)
	PhotoKey        string           // Storage key of the photo (empty if none)
	ThumbnailKey    string           // Storage key of the thumbnail
	AnalysisStatus  AnalysisStatus   // Vision analysis state
	WeatherSnapshot *WeatherSnapshot // Conditions at capture time (optional)

	ComplianceStatus  ComplianceStatus // Current verdict status
	ComplianceMessage string           // Localized verdict explanation
	AIAdvice          string           // Tacklor Guide angling tip
	RuleVersion       string           // Rule-table version of the stored verdict
	EvalSeq           int64            // Sequence number of the applied evaluation

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasCoordinates returns true if a weather snapshot with coordinates is attached.
func (c *CatchRecord) HasCoordinates() bool {
	return c.WeatherSnapshot != nil
}

// HasPhoto returns true if a photo is attached to this catch.
func (c *CatchRecord) HasPhoto() bool {
	return c.PhotoKey != ""
}

// Snapshot extracts the evaluation input from the record.
func (c *CatchRecord) Snapshot() CatchSnapshot {
	snap := CatchSnapshot{
		Species:            c.Species,
		LengthCm:           c.LengthCm,
		IsSensitiveSpecies: c.IsSensitiveSpecies,
	}
	if c.WeatherSnapshot != nil {
		lat, lon := c.WeatherSnapshot.Lat, c.WeatherSnapshot.Lon
		snap.Lat, snap.Lon = &lat, &lon
	}
	return snap
}

// =============================================================================
// Catch Snapshot (evaluation input)
// =============================================================================

// CatchSnapshot is the partial view of a catch fed to the compliance engine.
// All fields are optional; absent fields must never trigger a rule.
type CatchSnapshot struct {
	Species            string   // Free-text species name, any case/diacritics
	LengthCm           float64  // Measured length; <= 0 means unmeasured
	IsSensitiveSpecies bool     // Manual sensitivity flag
	Lat                *float64 // Capture latitude (nil if unknown)
	Lon                *float64 // Capture longitude (nil if unknown)
}

// =============================================================================
// Service Parameters
// =============================================================================

// CreateCatchParams contains validated parameters for creating a catch.
type CreateCatchParams struct {
	UserID          uuid.UUID
	Analysis        CatchAnalysis
	CaughtAt        time.Time
	Location        string
	Tags            []string
	WeatherSnapshot *WeatherSnapshot
	Lang            string // Language tag for the localized verdict
}

// ListCatchesParams contains parameters for listing a user's catches.
type ListCatchesParams struct {
	UserID uuid.UUID
	Limit  int
	Offset int
}

// ListCatchesResult is a page of catches plus the total count.
type ListCatchesResult struct {
	Catches    []*CatchRecord
	TotalCount int64
	Limit      int
	Offset     int
}

// UpdateCatchParams contains validated parameters for updating a catch.
//
// Nil pointer fields are left unchanged.
type UpdateCatchParams struct {
	ID     uuid.UUID
	UserID uuid.UUID

	Species            *string
	LengthCm           *float64
	WeightKg           *float64
	IsSensitiveSpecies *bool
	Technique          *string
	SpotType           *string
	Location           *string
	Tags               *[]string
	CaughtAt           *time.Time

	Lang string // Language tag for the localized verdict
}
