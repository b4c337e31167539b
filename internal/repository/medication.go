package repository

import (
	"context"

	"github.com/vcscsvcscs/healthscope/internal/apperr"
	"github.com/vcscsvcscs/healthscope/pkg/model"
	"go.uber.org/zap"
)

// ListMedications retrieves all medication reminders for a user, earliest time first
func (s *PostgresStore) ListMedications(ctx context.Context, userID string) ([]model.MedicationReminder, error) {
	query := `
		SELECT id::text, user_id, name, hour, minute
		FROM medication_reminders
		WHERE user_id = $1
		ORDER BY hour, minute, name
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		s.logger.Error("failed to find medications", zap.Error(err), zap.String("user_id", userID))
		return nil, apperr.Store("failed to list medications", err)
	}
	defer rows.Close()

	medications := []model.MedicationReminder{}
	for rows.Next() {
		var med model.MedicationReminder
		if err := rows.Scan(&med.ID, &med.UserID, &med.Name, &med.Time.Hour, &med.Time.Minute); err != nil {
			s.logger.Error("failed to scan medication", zap.Error(err))
			return nil, apperr.Store("failed to list medications", err)
		}
		medications = append(medications, med)
	}

	if err := rows.Err(); err != nil {
		s.logger.Error("error iterating medications", zap.Error(err))
		return nil, apperr.Store("failed to list medications", err)
	}

	return medications, nil
}

// CreateMedication inserts a medication reminder and returns the generated id
func (s *PostgresStore) CreateMedication(ctx context.Context, userID string, med model.MedicationReminder) (string, error) {
	query := `
		INSERT INTO medication_reminders (user_id, name, hour, minute)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text
	`

	var id string
	if err := s.db.QueryRow(ctx, query, userID, med.Name, med.Time.Hour, med.Time.Minute).Scan(&id); err != nil {
		s.logger.Error("failed to create medication",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return "", apperr.Store("failed to create medication", err)
	}

	return id, nil
}

// UpdateMedication rewrites an existing medication reminder owned by userID
func (s *PostgresStore) UpdateMedication(ctx context.Context, userID string, med model.MedicationReminder) error {
	if !validID(med.ID) {
		return apperr.NotFound("medication not found")
	}

	query := `
		UPDATE medication_reminders
		SET name = $1, hour = $2, minute = $3, updated_at = NOW()
		WHERE id = $4 AND user_id = $5
	`

	result, err := s.db.Exec(ctx, query, med.Name, med.Time.Hour, med.Time.Minute, med.ID, userID)
	if err != nil {
		s.logger.Error("failed to update medication",
			zap.Error(err),
			zap.String("medication_id", med.ID),
		)
		return apperr.Store("failed to update medication", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("medication not found")
	}

	return nil
}

// DeleteMedication removes a medication reminder owned by userID
func (s *PostgresStore) DeleteMedication(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return apperr.NotFound("medication not found")
	}

	result, err := s.db.Exec(ctx, `DELETE FROM medication_reminders WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		s.logger.Error("failed to delete medication",
			zap.Error(err),
			zap.String("medication_id", id),
		)
		return apperr.Store("failed to delete medication", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("medication not found")
	}

	return nil
}
