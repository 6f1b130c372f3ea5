package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComplianceStatus_ApplyEvaluation(t *testing.T) {
	tests := []struct {
		name     string
		current  ComplianceStatus
		computed ComplianceStatus
		fresh    bool
		want     ComplianceStatus
	}{
		{"pending takes first result", StatusPending, StatusCompliant, false, StatusCompliant},
		{"compliant can worsen", StatusCompliant, StatusDeclarationRequired, false, StatusDeclarationRequired},
		{"to_declare can clear", StatusToDeclare, StatusCompliant, false, StatusCompliant},
		{"required can clear", StatusDeclarationRequired, StatusCompliant, false, StatusCompliant},

		// Validated is sticky against automatic re-evaluation, even when the
		// new evaluation computed compliant.
		{"validated sticks vs required", StatusDeclarationValidated, StatusDeclarationRequired, false, StatusDeclarationValidated},
		{"validated sticks vs to_declare", StatusDeclarationValidated, StatusToDeclare, false, StatusDeclarationValidated},
		{"validated sticks vs compliant", StatusDeclarationValidated, StatusCompliant, false, StatusDeclarationValidated},

		// An explicit edit that removes the trigger is a fresh context.
		{"fresh context clears validated", StatusDeclarationValidated, StatusCompliant, true, StatusCompliant},
		{"fresh context can re-trigger", StatusDeclarationValidated, StatusDeclarationRequired, true, StatusDeclarationRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.current.ApplyEvaluation(tt.computed, tt.fresh))
		})
	}
}

func TestComplianceStatus_Acknowledge(t *testing.T) {
	got, err := StatusDeclarationRequired.Acknowledge()
	assert.NoError(t, err)
	assert.Equal(t, StatusDeclarationValidated, got)

	// Idempotent
	got, err = StatusDeclarationValidated.Acknowledge()
	assert.NoError(t, err)
	assert.Equal(t, StatusDeclarationValidated, got)

	for _, s := range []ComplianceStatus{StatusPending, StatusCompliant, StatusToDeclare} {
		got, err := s.Acknowledge()
		assert.Error(t, err, "status %s", s)
		assert.Contains(t, err.Error(), "cannot acknowledge")
		assert.Equal(t, s, got)
	}
}

func TestComplianceStatus_IsValid(t *testing.T) {
	for _, s := range []ComplianceStatus{
		StatusPending, StatusCompliant, StatusToDeclare,
		StatusDeclarationRequired, StatusDeclarationValidated,
	} {
		assert.True(t, s.IsValid())
	}
	assert.False(t, ComplianceStatus("checking").IsValid())
	assert.False(t, ComplianceStatus("").IsValid())
}

func TestComplianceStatus_Severity(t *testing.T) {
	// Display ordering only: required > validated > to_declare > pending > compliant.
	assert.Greater(t, StatusDeclarationRequired.Severity(), StatusDeclarationValidated.Severity())
	assert.Greater(t, StatusDeclarationValidated.Severity(), StatusToDeclare.Severity())
	assert.Greater(t, StatusToDeclare.Severity(), StatusPending.Severity())
	assert.Greater(t, StatusPending.Severity(), StatusCompliant.Severity())
}
