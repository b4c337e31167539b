// Package repository persists per-user appointments, medication reminders and profiles.
// Every operation is scoped by the owning user id; there is no cross-user access path.
package repository

import (
	"context"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/vcscsvcscs/healthscope/pkg/model"
)

// AppointmentStore manages a user's appointments
type AppointmentStore interface {
	ListAppointments(ctx context.Context, userID string) ([]model.Appointment, error)
	// CreateAppointment stores a new appointment and returns its store-assigned id
	CreateAppointment(ctx context.Context, userID string, appt model.Appointment) (string, error)
	// UpdateAppointment replaces the appointment with appt.ID; apperr.KindNotFound if the user has none
	UpdateAppointment(ctx context.Context, userID string, appt model.Appointment) error
	DeleteAppointment(ctx context.Context, userID, id string) error
}

// MedicationStore manages a user's medication reminders
type MedicationStore interface {
	ListMedications(ctx context.Context, userID string) ([]model.MedicationReminder, error)
	CreateMedication(ctx context.Context, userID string, med model.MedicationReminder) (string, error)
	UpdateMedication(ctx context.Context, userID string, med model.MedicationReminder) error
	DeleteMedication(ctx context.Context, userID, id string) error
}

// ProfileStore manages the user record. Profile merges and push token upserts
// never overwrite each other's fields.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (model.UserProfile, error)
	MergeProfile(ctx context.Context, userID string, patch model.UserProfile) (model.UserProfile, error)
	UpsertPushToken(ctx context.Context, userID, token string) error
}

// ReminderSource finds reminders due at a local date and minute for users with a push token
type ReminderSource interface {
	DueReminders(ctx context.Context, date openapi_types.Date, at model.ClockTime) ([]model.DueReminder, error)
}

// UserDataStore erases everything held for a user
type UserDataStore interface {
	// DeleteUserData removes the user record and every owned row. Erasing an unknown user is not an error.
	DeleteUserData(ctx context.Context, userID string) error
}

// Store is the full persistence backend
type Store interface {
	AppointmentStore
	MedicationStore
	ProfileStore
	UserDataStore
	ReminderSource
	Ping(ctx context.Context) error
	Close() error
}
