package audit_test

import (
	"context"
	"testing"

	"go-headhunter-backend/pkg/audit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "j***@example.com", audit.MaskEmail("john@example.com"))
	assert.Equal(t, "***@example.com", audit.MaskEmail("j@example.com"))
	assert.Equal(t, "***", audit.MaskEmail("a"))
	assert.NotContains(t, audit.MaskEmail("no-at-sign"), "no-at-sign")
}

func TestLogMasksSubjectAndPicksLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := audit.NewLoggerWithZap(zap.New(core), "test")

	ctx := context.WithValue(context.Background(), audit.RequestIDKey, "req-1")
	l.Log(ctx, audit.Event{
		Event:        audit.EventLoginFailed,
		SubjectType:  "email",
		SubjectValue: "john@example.com",
	})

	entries := logs.All()
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "login_failed", entry.Message)

	fields := entry.ContextMap()
	assert.Equal(t, "j***@example.com", fields["subject_value"])
	assert.Equal(t, "req-1", fields["request_id"])
}
