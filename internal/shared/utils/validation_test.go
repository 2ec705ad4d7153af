package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidRFC(t *testing.T) {
	tests := []struct {
		name  string
		rfc   string
		valid bool
	}{
		{"persona fisica", "GODE561231GR8", true},
		{"persona moral", "ABC680524P76", true},
		{"lowercase accepted", "gode561231gr8", true},
		{"surrounding spaces", " GODE561231GR8 ", true},
		{"too short", "GO561231GR8", false},
		{"no date block", "GODEABCDEFGR8", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidRFC(tt.rfc))
		})
	}
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	type form struct {
		Email    string `json:"email" validate:"required,email"`
		Identity string `json:"identity_number" validate:"omitempty,rfc"`
	}

	err := ValidateStruct(form{Email: "not-an-email", Identity: "nope"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "identity_number")

	assert.NoError(t, ValidateStruct(form{Email: "ana@example.com", Identity: "GODE561231GR8"}))
}
