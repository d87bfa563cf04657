package security

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateImportFile(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		wantErr  error
	}{
		{"csv text", "students.csv", []byte("email\na@example.com\n"), nil},
		{"csv with bom", "students.CSV", []byte("\ufeffemail\n"), nil},
		{"xlsx zip", "students.xlsx", []byte{0x50, 0x4B, 0x03, 0x04, 0x14, 0x00}, nil},
		{"no extension", "students", []byte("email"), ErrNoExtension},
		{"json", "students.json", []byte("[]"), ErrExtensionNotAllowed},
		{"spoofed xlsx", "students.xlsx", []byte("email\n"), ErrContentMismatch},
		{"binary csv", "students.csv", []byte{0x50, 0x4B, 0x03, 0x04, 0x00}, ErrContentMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImportFile(tt.filename, tt.data)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoginTrackerInMemory(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	lt := NewLoginTracker(nil, LoginTrackerConfig{MaxAttempts: 3, AttemptWindow: time.Minute, BlockDuration: 10 * time.Minute}, nil)
	lt.now = func() time.Time { return now }

	for i := 1; i < 3; i++ {
		blocked, attempts, err := lt.RecordFailedAttempt(ctx, "r@x.com")
		require.NoError(t, err)
		assert.False(t, blocked)
		assert.Equal(t, i, attempts)
	}

	blocked, attempts, err := lt.RecordFailedAttempt(ctx, "r@x.com")
	require.NoError(t, err)
	assert.True(t, blocked)
	assert.Equal(t, 3, attempts)

	isBlocked, err := lt.IsBlocked(ctx, "r@x.com")
	require.NoError(t, err)
	assert.True(t, isBlocked)

	other, err := lt.IsBlocked(ctx, "other@x.com")
	require.NoError(t, err)
	assert.False(t, other)

	t.Run("Block expires", func(t *testing.T) {
		lt.now = func() time.Time { return now.Add(11 * time.Minute) }
		isBlocked, err := lt.IsBlocked(ctx, "r@x.com")
		require.NoError(t, err)
		assert.False(t, isBlocked)
	})

	t.Run("Clear resets counter", func(t *testing.T) {
		_, _, _ = lt.RecordFailedAttempt(ctx, "c@x.com")
		_, _, _ = lt.RecordFailedAttempt(ctx, "c@x.com")
		require.NoError(t, lt.ClearAttempts(ctx, "c@x.com"))

		_, attempts, err := lt.RecordFailedAttempt(ctx, "c@x.com")
		require.NoError(t, err)
		assert.Equal(t, 1, attempts)
	})
}
