package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/vcscsvcscs/healthscope/internal/apperr"
	"github.com/vcscsvcscs/healthscope/pkg/model"
	"go.uber.org/zap"
)

// GetProfile returns the stored profile. A user without a record has an empty profile.
func (s *PostgresStore) GetProfile(ctx context.Context, userID string) (model.UserProfile, error) {
	query := `
		SELECT name, email, photo_url, age, height, weight, blood_type, allergies
		FROM users
		WHERE id = $1
	`

	var p model.UserProfile
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&p.Name, &p.Email, &p.PhotoURL, &p.Age, &p.Height, &p.Weight, &p.BloodType, &p.Allergies,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.UserProfile{}, nil
	}
	if err != nil {
		s.logger.Error("failed to get profile", zap.Error(err), zap.String("user_id", userID))
		return model.UserProfile{}, apperr.Store("failed to load profile", err)
	}

	return p, nil
}

// MergeProfile applies the non-nil fields of patch and returns the resulting profile.
// The push token column is never touched.
func (s *PostgresStore) MergeProfile(ctx context.Context, userID string, patch model.UserProfile) (model.UserProfile, error) {
	query := `
		INSERT INTO users (id, name, email, photo_url, age, height, weight, blood_type, allergies)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = COALESCE(EXCLUDED.name, users.name),
			email = COALESCE(EXCLUDED.email, users.email),
			photo_url = COALESCE(EXCLUDED.photo_url, users.photo_url),
			age = COALESCE(EXCLUDED.age, users.age),
			height = COALESCE(EXCLUDED.height, users.height),
			weight = COALESCE(EXCLUDED.weight, users.weight),
			blood_type = COALESCE(EXCLUDED.blood_type, users.blood_type),
			allergies = COALESCE(EXCLUDED.allergies, users.allergies),
			updated_at = NOW()
		RETURNING name, email, photo_url, age, height, weight, blood_type, allergies
	`

	var p model.UserProfile
	err := s.db.QueryRow(ctx, query,
		userID,
		patch.Name,
		patch.Email,
		patch.PhotoURL,
		patch.Age,
		patch.Height,
		patch.Weight,
		patch.BloodType,
		patch.Allergies,
	).Scan(&p.Name, &p.Email, &p.PhotoURL, &p.Age, &p.Height, &p.Weight, &p.BloodType, &p.Allergies)
	if err != nil {
		s.logger.Error("failed to merge profile", zap.Error(err), zap.String("user_id", userID))
		return model.UserProfile{}, apperr.Store("failed to save profile", err)
	}

	return p, nil
}

// UpsertPushToken stores the device token without touching profile fields
func (s *PostgresStore) UpsertPushToken(ctx context.Context, userID, token string) error {
	query := `
		INSERT INTO users (id, push_token)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET push_token = EXCLUDED.push_token, updated_at = NOW()
	`

	if _, err := s.db.Exec(ctx, query, userID, token); err != nil {
		s.logger.Error("failed to save push token", zap.Error(err), zap.String("user_id", userID))
		return apperr.Store("failed to save device token", err)
	}

	return nil
}

// DeleteUserData removes the user's reminders, appointments and record in one transaction
func (s *PostgresStore) DeleteUserData(ctx context.Context, userID string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		s.logger.Error("failed to start transaction", zap.Error(err), zap.String("user_id", userID))
		return apperr.Store("failed to delete user data", err)
	}
	defer tx.Rollback(ctx)

	for _, stmt := range []string{
		"DELETE FROM medication_reminders WHERE user_id = $1",
		"DELETE FROM appointments WHERE user_id = $1",
		"DELETE FROM users WHERE id = $1",
	} {
		if _, err := tx.Exec(ctx, stmt, userID); err != nil {
			s.logger.Error("failed to delete user data", zap.Error(err), zap.String("user_id", userID))
			return apperr.Store("failed to delete user data", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error("failed to commit user deletion", zap.Error(err), zap.String("user_id", userID))
		return apperr.Store("failed to delete user data", err)
	}
	return nil
}
