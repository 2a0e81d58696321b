package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDisplayName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
		errMsg  string
	}{
		{
			name:  "valid name",
			input: "alice",
			want:  "alice",
		},
		{
			name:  "trims spaces",
			input: "  Alice Smith  ",
			want:  "Alice Smith",
		},
		{
			name:  "unicode name",
			input: "Алиса",
			want:  "Алиса",
		},
		{
			name:    "invalid - empty",
			input:   "",
			wantErr: true,
			errMsg:  "please enter your name",
		},
		{
			name:    "invalid - whitespace only",
			input:   " \t ",
			wantErr: true,
			errMsg:  "please enter your name",
		},
		{
			name:    "invalid - too long",
			input:   strings.Repeat("a", MaxDisplayNameLen+1),
			wantErr: true,
			errMsg:  "must not exceed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateDisplayName(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)

				var vErr *Error
				require.True(t, errors.As(err, &vErr))
				assert.Equal(t, "username", vErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateRoomCode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "already normalized", input: "AB12CD34", want: "AB12CD34"},
		{name: "lowercase with spaces", input: "  ab12cd34 ", want: "AB12CD34"},
		{name: "empty", input: "   ", wantErr: true},
		{name: "dash", input: "AB-12", wantErr: true},
		{name: "too short", input: "AB", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateRoomCode(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				var vErr *Error
				require.True(t, errors.As(err, &vErr))
				assert.Equal(t, "room_code", vErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		errMsg   string
		size     int64
		wantErr  bool
	}{
		{name: "small pdf", mimeType: PDFMimeType, size: 1024},
		{name: "exactly 50MB", mimeType: PDFMimeType, size: MaxUploadSize},
		{name: "60MB pdf", mimeType: PDFMimeType, size: 60 * 1024 * 1024, wantErr: true, errMsg: "less than 50MB"},
		{name: "text/plain", mimeType: "text/plain", size: 10, wantErr: true, errMsg: "please select a PDF file"},
		{name: "empty mime", mimeType: "", size: 10, wantErr: true, errMsg: "please select a PDF file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.mimeType, tt.size)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestIsPDFFilename(t *testing.T) {
	assert.True(t, IsPDFFilename("notes.pdf"))
	assert.True(t, IsPDFFilename("NOTES.PDF"))
	assert.False(t, IsPDFFilename("notes.txt"))
	assert.False(t, IsPDFFilename("pdf"))
}
