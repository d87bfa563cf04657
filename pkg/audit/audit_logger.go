// Package audit records account lifecycle events as structured zap logs.
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of account event
type EventType string

const (
	EventHrRegistered          EventType = "hr_registered"
	EventStudentsImported      EventType = "students_imported"
	EventAccountActivated      EventType = "account_activated"
	EventActivationFailed      EventType = "activation_failed"
	EventActivationEmailFailed EventType = "activation_email_failed"
	EventLoginSuccess          EventType = "login_success"
	EventLoginFailed           EventType = "login_failed"
	EventStudentReserved       EventType = "student_reserved"
	EventStudentReleased       EventType = "student_released"
	EventRateLimitTriggered    EventType = "rate_limit_triggered"
	EventLoginBlocked          EventType = "login_blocked"
)

// Event represents an account-related event to be logged
type Event struct {
	Timestamp    time.Time
	Event        EventType
	SubjectType  string // "email", "user_id", "ip"
	SubjectValue string // masked for PII
	RequestID    string
	Details      map[string]interface{}
}

// Logger writes audit events
type Logger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

// NewLogger builds a production zap logger writing JSON to stdout
func NewLogger(serviceName string) *Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddCaller())
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return NewLoggerWithZap(logger, serviceName)
}

// NewLoggerWithZap wraps an existing zap logger (tests use zaptest/observer or zap.NewNop)
func NewLoggerWithZap(logger *zap.Logger, serviceName string) *Logger {
	return &Logger{
		zapLogger:   logger,
		serviceName: serviceName,
		environment: getEnvironment(),
	}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return NewLoggerWithZap(zap.NewNop(), "nop")
}

// Log logs an account event
func (l *Logger) Log(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.RequestID == "" {
		if id, ok := ctx.Value(RequestIDKey).(string); ok {
			event.RequestID = id
		}
	}

	level := zapcore.InfoLevel
	switch event.Event {
	case EventLoginFailed, EventLoginBlocked, EventActivationFailed, EventRateLimitTriggered:
		level = zapcore.WarnLevel
	case EventActivationEmailFailed:
		level = zapcore.ErrorLevel
	}

	fields := []zap.Field{
		zap.String("service", l.serviceName),
		zap.String("env", l.environment),
		zap.String("event", string(event.Event)),
		zap.Time("event_time", event.Timestamp),
	}
	if event.SubjectType != "" {
		fields = append(fields, zap.String("subject_type", event.SubjectType))
	}
	if event.SubjectValue != "" {
		fields = append(fields, zap.String("subject_value", maskValue(event.SubjectType, event.SubjectValue)))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", event.Details))
	}

	l.zapLogger.Log(level, string(event.Event), fields...)
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	return l.zapLogger.Sync()
}

type ctxKey string

// RequestIDKey is the context key the HTTP layer stores the request id under
const RequestIDKey ctxKey = "RequestID"

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	if len(email) < 3 {
		return "***"
	}
	atIndex := -1
	for i, c := range email {
		if c == '@' {
			atIndex = i
			break
		}
	}
	if atIndex < 0 {
		return HashValue(email)
	}
	if atIndex <= 1 {
		return "***" + email[atIndex:]
	}
	return string(email[0]) + "***" + email[atIndex:]
}

// HashValue creates a truncated SHA256 hash of a value
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}

func maskValue(subjectType, value string) string {
	switch subjectType {
	case "email":
		return MaskEmail(value)
	case "ip", "user_id":
		return value
	default:
		return HashValue(value)
	}
}

func getEnvironment() string {
	if os.Getenv("GIN_MODE") == "release" {
		return "production"
	}
	return "development"
}
