package repository

import (
	"context"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/vcscsvcscs/healthscope/internal/apperr"
	"github.com/vcscsvcscs/healthscope/pkg/model"
	"go.uber.org/zap"
)

// ListAppointments retrieves all appointments for a user, soonest first
func (s *PostgresStore) ListAppointments(ctx context.Context, userID string) ([]model.Appointment, error) {
	query := `
		SELECT id::text, user_id, title, appointment_date, hour, minute
		FROM appointments
		WHERE user_id = $1
		ORDER BY appointment_date, hour, minute, title
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		s.logger.Error("failed to list appointments", zap.Error(err), zap.String("user_id", userID))
		return nil, apperr.Store("failed to list appointments", err)
	}
	defer rows.Close()

	appointments := []model.Appointment{}
	for rows.Next() {
		var (
			appt model.Appointment
			date time.Time
		)
		if err := rows.Scan(&appt.ID, &appt.UserID, &appt.Title, &date, &appt.Time.Hour, &appt.Time.Minute); err != nil {
			s.logger.Error("failed to scan appointment", zap.Error(err))
			return nil, apperr.Store("failed to list appointments", err)
		}
		appt.Date = openapi_types.Date{Time: date}
		appointments = append(appointments, appt)
	}

	if err := rows.Err(); err != nil {
		s.logger.Error("error iterating appointments", zap.Error(err))
		return nil, apperr.Store("failed to list appointments", err)
	}

	return appointments, nil
}

// CreateAppointment inserts an appointment and returns the generated id
func (s *PostgresStore) CreateAppointment(ctx context.Context, userID string, appt model.Appointment) (string, error) {
	query := `
		INSERT INTO appointments (user_id, title, appointment_date, hour, minute)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text
	`

	var id string
	err := s.db.QueryRow(ctx, query, userID, appt.Title, appt.Date.Time, appt.Time.Hour, appt.Time.Minute).Scan(&id)
	if err != nil {
		s.logger.Error("failed to create appointment",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return "", apperr.Store("failed to create appointment", err)
	}

	return id, nil
}

// UpdateAppointment rewrites an existing appointment owned by userID
func (s *PostgresStore) UpdateAppointment(ctx context.Context, userID string, appt model.Appointment) error {
	if !validID(appt.ID) {
		return apperr.NotFound("appointment not found")
	}

	query := `
		UPDATE appointments
		SET title = $1, appointment_date = $2, hour = $3, minute = $4, updated_at = NOW()
		WHERE id = $5 AND user_id = $6
	`

	result, err := s.db.Exec(ctx, query, appt.Title, appt.Date.Time, appt.Time.Hour, appt.Time.Minute, appt.ID, userID)
	if err != nil {
		s.logger.Error("failed to update appointment",
			zap.Error(err),
			zap.String("appointment_id", appt.ID),
		)
		return apperr.Store("failed to update appointment", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("appointment not found")
	}

	return nil
}

// DeleteAppointment removes an appointment owned by userID
func (s *PostgresStore) DeleteAppointment(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return apperr.NotFound("appointment not found")
	}

	result, err := s.db.Exec(ctx, `DELETE FROM appointments WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		s.logger.Error("failed to delete appointment",
			zap.Error(err),
			zap.String("appointment_id", id),
		)
		return apperr.Store("failed to delete appointment", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("appointment not found")
	}

	return nil
}
