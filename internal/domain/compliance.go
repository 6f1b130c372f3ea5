// Package domain contains core business types and interfaces.
//
// This file defines the compliance verdict types attached to catch records
// and the status state machine governing re-evaluation.
package domain

import (
	"fmt"
	"time"
)

// =============================================================================
// Compliance Status
// =============================================================================

// ComplianceStatus represents the regulatory state of a catch record.
type ComplianceStatus string

const (
	// StatusPending indicates no evaluation has run yet.
	// This is the initial status of every catch record.
	StatusPending ComplianceStatus = "pending"

	// StatusCompliant indicates no regulatory rule triggered.
	StatusCompliant ComplianceStatus = "compliant"

	// StatusToDeclare indicates a minor issue (manual sensitivity flag or
	// generic undersize threshold). The angler should verify local rules.
	StatusToDeclare ComplianceStatus = "to_declare"

	// StatusDeclarationRequired indicates a regulated species matched for the
	// resolved fishing zone. A mandatory external legal filing is required.
	StatusDeclarationRequired ComplianceStatus = "legal_declaration_required"

	// StatusDeclarationValidated indicates the angler followed through on the
	// external declaration. Terminal: reached only via explicit user action,
	// never via automatic re-evaluation.
	StatusDeclarationValidated ComplianceStatus = "legal_declaration_validated"
)

// String returns the string representation of the status.
func (s ComplianceStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a recognized value.
func (s ComplianceStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusCompliant, StatusToDeclare,
		StatusDeclarationRequired, StatusDeclarationValidated:
		return true
	}
	return false
}

// Severity returns a display ordering for statuses (higher = more severe).
// This ordering is for presentation only and plays no part in evaluation.
func (s ComplianceStatus) Severity() int {
	switch s {
	case StatusCompliant:
		return 0
	case StatusPending:
		return 1
	case StatusToDeclare:
		return 2
	case StatusDeclarationValidated:
		return 3
	case StatusDeclarationRequired:
		return 4
	}
	return 0
}

// =============================================================================
// Verdict
// =============================================================================

// Verdict is the outcome of one compliance evaluation of a catch snapshot.
//
// Message is localized and comes from the message catalog; Advice is an
// unrelated angling tip whose generation must never block the verdict.
type Verdict struct {
	Status      ComplianceStatus // Evaluated status
	Message     string           // Localized explanation
	Advice      string           // Localized angling tip (may be empty)
	RuleVersion string           // Rule-table version used for the evaluation
	EvaluatedAt time.Time        // When the evaluation ran
}

// =============================================================================
// Status State Machine
// =============================================================================

// ApplyEvaluation folds a freshly computed verdict into the current status.
//
// The validated status is sticky: automatic re-evaluations update the message
// and advice but never move the status away from it, even when the new
// evaluation computed compliant. Passing fresh=true treats the catch as a new
// evaluation context (the angler edited away the triggering condition) and
// lets the computed status replace the stored one.
func (s ComplianceStatus) ApplyEvaluation(computed ComplianceStatus, fresh bool) ComplianceStatus {
	if s == StatusDeclarationValidated && !fresh {
		return StatusDeclarationValidated
	}
	return computed
}

// Acknowledge transitions the status to validated after the angler opened the
// external declaration link. Only a catch currently requiring a declaration
// can be acknowledged.
func (s ComplianceStatus) Acknowledge() (ComplianceStatus, error) {
	switch s {
	case StatusDeclarationRequired:
		return StatusDeclarationValidated, nil
	case StatusDeclarationValidated:
		// Idempotent: acknowledging twice is not an error.
		return StatusDeclarationValidated, nil
	default:
		return s, fmt.Errorf("cannot acknowledge declaration from status %q", s)
	}
}
