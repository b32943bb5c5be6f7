package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "plain text passes", input: "hello world", want: "hello world"},
		{name: "newlines and tabs survive", input: "a\n\tb\r\n", want: "a\n\tb\r\n"},
		{name: "ansi escape stripped", input: "safe\x1b[31mred\x1b[0m", want: "safe[31mred[0m"},
		{name: "null byte stripped", input: "a\x00b", want: "ab"},
		{name: "invalid utf8 rejected", input: string([]byte{0xff, 0xfe}), wantErr: ErrInvalidUTF8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeInput(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeInputSizeLimit(t *testing.T) {
	_, err := SanitizeInput(strings.Repeat("x", DefaultMaxInputSize+1))
	assert.ErrorIs(t, err, ErrInputTooLarge)
}

func TestSanitizeInputSizeOverride(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "10")

	_, err := SanitizeInput(strings.Repeat("x", 11))
	assert.ErrorIs(t, err, ErrInputTooLarge)

	got, err := SanitizeInput("short")
	require.NoError(t, err)
	assert.Equal(t, "short", got)
}
