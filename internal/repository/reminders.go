package repository

import (
	"context"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/vcscsvcscs/healthscope/internal/apperr"
	"github.com/vcscsvcscs/healthscope/pkg/model"
	"go.uber.org/zap"
)

// DueReminders returns the daily medication reminders at the given minute and the
// appointments on the given date and minute, for users that registered a push token
func (s *PostgresStore) DueReminders(ctx context.Context, date openapi_types.Date, at model.ClockTime) ([]model.DueReminder, error) {
	query := `
		SELECT m.user_id, u.push_token, 'medication', m.id::text, m.name
		FROM medication_reminders m
		JOIN users u ON u.id = m.user_id
		WHERE m.hour = $1 AND m.minute = $2
		  AND u.push_token IS NOT NULL AND u.push_token <> ''
		UNION ALL
		SELECT a.user_id, u.push_token, 'appointment', a.id::text, a.title
		FROM appointments a
		JOIN users u ON u.id = a.user_id
		WHERE a.appointment_date = $3 AND a.hour = $1 AND a.minute = $2
		  AND u.push_token IS NOT NULL AND u.push_token <> ''
	`

	rows, err := s.db.Query(ctx, query, at.Hour, at.Minute, date.Time)
	if err != nil {
		s.logger.Error("failed to query due reminders", zap.Error(err), zap.String("at", at.String()))
		return nil, apperr.Store("failed to query due reminders", err)
	}
	defer rows.Close()

	var due []model.DueReminder
	for rows.Next() {
		var (
			r    model.DueReminder
			kind string
		)
		if err := rows.Scan(&r.UserID, &r.PushToken, &kind, &r.RefID, &r.Title); err != nil {
			return nil, apperr.Store("failed to query due reminders", err)
		}
		r.Kind = model.ReminderKind(kind)
		r.Time = at
		due = append(due, r)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Store("failed to query due reminders", err)
	}

	return due, nil
}
