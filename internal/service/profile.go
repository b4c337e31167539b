package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/vcscsvcscs/healthscope/internal/apperr"
	"github.com/vcscsvcscs/healthscope/internal/audit"
	"github.com/vcscsvcscs/healthscope/internal/repository"
	"github.com/vcscsvcscs/healthscope/pkg/model"
	"go.uber.org/zap"
)

const maxPushTokenLength = 4096

// ProfileService manages the user record: profile fields and the device push token
type ProfileService struct {
	store  repository.ProfileStore
	audit  Auditor
	logger *zap.Logger
}

// NewProfileService creates a new ProfileService. A nil auditor disables auditing.
func NewProfileService(store repository.ProfileStore, auditor Auditor, logger *zap.Logger) *ProfileService {
	if auditor == nil {
		auditor = nopAuditor{}
	}
	return &ProfileService{
		store:  store,
		audit:  auditor,
		logger: logger,
	}
}

func validateProfile(p model.UserProfile) error {
	if p.Email != nil && *p.Email != "" && !strings.Contains(*p.Email, "@") {
		return apperr.Validation("Please provide a valid email address")
	}
	if p.Age != nil && (*p.Age < 0 || *p.Age > 150) {
		return apperr.Validation("Age must be between 0 and 150")
	}
	if p.Height != nil && *p.Height <= 0 {
		return apperr.Validation("Height must be positive")
	}
	if p.Weight != nil && *p.Weight <= 0 {
		return apperr.Validation("Weight must be positive")
	}
	return nil
}

// Get returns the user's profile; a user with no record gets an empty profile
func (s *ProfileService) Get(ctx context.Context, userID string) (*model.UserProfile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// Update merges the provided fields into the stored profile
func (s *ProfileService) Update(ctx context.Context, userID string, patch model.UserProfile) (*model.UserProfile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := validateProfile(patch); err != nil {
		return nil, err
	}

	profile, err := s.store.MergeProfile(ctx, userID, patch)
	if err != nil {
		s.logger.Error("failed to update profile", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.audit.Record(ctx, userID, audit.OperationUpdate, audit.ResourceProfile, userID)
	s.logger.Info("profile updated", zap.String("user_id", userID))
	return &profile, nil
}

// RegisterDeviceToken stores the push token against the user record
func (s *ProfileService) RegisterDeviceToken(ctx context.Context, userID, token string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return apperr.Validation("Please provide a device token")
	}
	if len(token) > maxPushTokenLength {
		return apperr.Validation("Device token is too long")
	}

	if err := s.store.UpsertPushToken(ctx, userID, token); err != nil {
		s.logger.Error("failed to register device token", zap.Error(err), zap.String("user_id", userID))
		return fmt.Errorf("failed to register device token: %w", err)
	}

	s.audit.Record(ctx, userID, audit.OperationUpdate, audit.ResourceDeviceToken, userID)
	s.logger.Info("device token registered", zap.String("user_id", userID))
	return nil
}
