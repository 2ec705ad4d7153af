package otp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "bare national number", input: "5512345678", want: "+525512345678"},
		{name: "spaces and dashes", input: "55 1234-5678", want: "+525512345678"},
		{name: "parenthesized area code", input: "(55) 1234 5678", want: "+525512345678"},
		{name: "country code no plus", input: "525512345678", want: "+525512345678"},
		{name: "already international", input: "+525512345678", want: "+525512345678"},
		{name: "other country kept", input: "+14155550123", want: "+14155550123"},
		{name: "too short", input: "12345", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "letters only", input: "not-a-phone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidPhone)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
