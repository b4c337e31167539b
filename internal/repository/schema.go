package repository

// Schema is the ordered list of DDL statements for the Postgres store
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT,
		email TEXT,
		photo_url TEXT,
		age INTEGER CHECK (age IS NULL OR (age >= 0 AND age <= 150)),
		height DOUBLE PRECISION,
		weight DOUBLE PRECISION,
		blood_type TEXT,
		allergies TEXT,
		push_token TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS appointments (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		appointment_date DATE NOT NULL,
		hour SMALLINT NOT NULL CHECK (hour >= 0 AND hour <= 23),
		minute SMALLINT NOT NULL CHECK (minute >= 0 AND minute <= 59),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_user ON appointments (user_id, appointment_date, hour, minute)`,
	`CREATE TABLE IF NOT EXISTS medication_reminders (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		hour SMALLINT NOT NULL CHECK (hour >= 0 AND hour <= 23),
		minute SMALLINT NOT NULL CHECK (minute >= 0 AND minute <= 59),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_medication_reminders_user ON medication_reminders (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_medication_reminders_time ON medication_reminders (hour, minute)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id TEXT NOT NULL,
		operation_type VARCHAR(20) NOT NULL,
		resource_type VARCHAR(50) NOT NULL,
		resource_id TEXT,
		timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		ip_address TEXT,
		user_agent TEXT,
		additional_data JSONB
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_user ON audit_logs (user_id, timestamp DESC)`,
}
