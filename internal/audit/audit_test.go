package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_RecordWithoutDatabase(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewLogger(nil, zap.New(core))

	ctx := WithRequestInfo(context.Background(), "203.0.113.7", "healthscope-app/1.0")
	l.Record(ctx, "user-1", OperationCreate, ResourceAppointment, "appt-1")

	entries := logs.FilterMessage("Audit log entry").All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, "user-1", fields["user_id"])
	assert.Equal(t, "CREATE", fields["operation"])
	assert.Equal(t, "appointment", fields["resource_type"])
	assert.Equal(t, "appt-1", fields["resource_id"])
	assert.Equal(t, "203.0.113.7", fields["ip_address"])
}

func TestLogger_LogKeepsExplicitIP(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewLogger(nil, zap.New(core))

	ctx := WithRequestInfo(context.Background(), "10.0.0.1", "ua")
	require.NoError(t, l.Log(ctx, AuditLog{UserID: "u", OperationType: OperationDelete, ResourceType: ResourceMedication, IPAddress: "192.0.2.1"}))

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "192.0.2.1", fields["ip_address"])
}
