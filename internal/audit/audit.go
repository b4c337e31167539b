package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// OperationType represents the type of operation performed
type OperationType string

const (
	OperationCreate OperationType = "CREATE"
	OperationUpdate OperationType = "UPDATE"
	OperationDelete OperationType = "DELETE"
	OperationExport OperationType = "EXPORT"
)

// ResourceType represents the type of resource being changed
type ResourceType string

const (
	ResourceAppointment ResourceType = "appointment"
	ResourceMedication  ResourceType = "medication_reminder"
	ResourceProfile     ResourceType = "user_profile"
	ResourceDeviceToken ResourceType = "device_token"
	ResourceUser        ResourceType = "user"
)

// AuditLog represents an audit log entry
type AuditLog struct {
	UserID         string
	OperationType  OperationType
	ResourceType   ResourceType
	ResourceID     string
	Timestamp      time.Time
	IPAddress      string
	UserAgent      string
	AdditionalData map[string]interface{}
}

type requestInfoKey struct{}

type requestInfo struct {
	ip        string
	userAgent string
}

// WithRequestInfo attaches the caller's address and user agent to ctx
func WithRequestInfo(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, requestInfo{ip: ip, userAgent: userAgent})
}

// Logger handles audit logging. Entries always go to the structured logger and,
// when a pool is configured, to the audit_logs table.
type Logger struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewLogger creates a new audit logger. db may be nil.
func NewLogger(db *pgxpool.Pool, logger *zap.Logger) *Logger {
	return &Logger{
		db:     db,
		logger: logger,
	}
}

// Log creates an audit log entry
func (l *Logger) Log(ctx context.Context, entry AuditLog) error {
	// Set timestamp if not provided
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if info, ok := ctx.Value(requestInfoKey{}).(requestInfo); ok {
		if entry.IPAddress == "" {
			entry.IPAddress = info.ip
		}
		if entry.UserAgent == "" {
			entry.UserAgent = info.userAgent
		}
	}

	l.logger.Info("Audit log entry",
		zap.String("user_id", entry.UserID),
		zap.String("operation", string(entry.OperationType)),
		zap.String("resource_type", string(entry.ResourceType)),
		zap.String("resource_id", entry.ResourceID),
		zap.Time("timestamp", entry.Timestamp),
		zap.String("ip_address", entry.IPAddress),
	)

	if l.db == nil {
		return nil
	}

	query := `
		INSERT INTO audit_logs (
			user_id, operation_type, resource_type, resource_id,
			timestamp, ip_address, user_agent, additional_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := l.db.Exec(ctx, query,
		entry.UserID,
		entry.OperationType,
		entry.ResourceType,
		entry.ResourceID,
		entry.Timestamp,
		entry.IPAddress,
		entry.UserAgent,
		entry.AdditionalData,
	)

	if err != nil {
		l.logger.Error("Failed to write audit log to database",
			zap.Error(err),
			zap.String("user_id", entry.UserID),
			zap.String("operation", string(entry.OperationType)),
			zap.String("resource_type", string(entry.ResourceType)),
		)
		return err
	}

	return nil
}

// Record logs an operation on a resource owned by userID. Failures are logged, not returned.
func (l *Logger) Record(ctx context.Context, userID string, op OperationType, resource ResourceType, resourceID string) {
	_ = l.Log(ctx, AuditLog{
		UserID:        userID,
		OperationType: op,
		ResourceType:  resource,
		ResourceID:    resourceID,
	})
}
