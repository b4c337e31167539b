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

// MedicationService handles medication reminder business logic
type MedicationService struct {
	store  repository.MedicationStore
	audit  Auditor
	logger *zap.Logger
}

// NewMedicationService creates a new MedicationService. A nil auditor disables auditing.
func NewMedicationService(store repository.MedicationStore, auditor Auditor, logger *zap.Logger) *MedicationService {
	if auditor == nil {
		auditor = nopAuditor{}
	}
	return &MedicationService{
		store:  store,
		audit:  auditor,
		logger: logger,
	}
}

func validateMedication(med *model.MedicationReminder) error {
	med.Name = strings.TrimSpace(med.Name)
	if med.Name == "" {
		return apperr.Validation("Please provide a medication name")
	}
	if len(med.Name) > maxTitleLength {
		return apperr.Validation(fmt.Sprintf("Medication name must be at most %d characters", maxTitleLength))
	}
	if !med.Time.Valid() {
		return apperr.Validation("Please provide a valid reminder time")
	}
	return nil
}

// List retrieves all medication reminders for a user
func (s *MedicationService) List(ctx context.Context, userID string) ([]model.MedicationReminder, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	medications, err := s.store.ListMedications(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list medications",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	model.SortMedications(medications)

	s.logger.Info("medications listed successfully",
		zap.String("user_id", userID),
		zap.Int("count", len(medications)),
	)

	return medications, nil
}

// Create adds a new daily medication reminder
func (s *MedicationService) Create(ctx context.Context, userID string, med model.MedicationReminder) (*model.MedicationReminder, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := validateMedication(&med); err != nil {
		return nil, err
	}
	med.ID = ""
	med.UserID = userID

	id, err := s.store.CreateMedication(ctx, userID, med)
	if err != nil {
		s.logger.Error("failed to add medication",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("medication_name", med.Name),
		)
		return nil, fmt.Errorf("failed to add medication: %w", err)
	}
	med.ID = id

	s.audit.Record(ctx, userID, audit.OperationCreate, audit.ResourceMedication, id)
	s.logger.Info("medication added successfully",
		zap.String("medication_id", id),
		zap.String("user_id", userID),
		zap.String("time", med.Time.String()),
	)

	return &med, nil
}

// Update replaces an existing medication reminder
func (s *MedicationService) Update(ctx context.Context, userID, id string, med model.MedicationReminder) (*model.MedicationReminder, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, apperr.Validation("Medication ID is required")
	}
	if err := validateMedication(&med); err != nil {
		return nil, err
	}
	med.ID = id
	med.UserID = userID

	if err := s.store.UpdateMedication(ctx, userID, med); err != nil {
		s.logger.Error("failed to update medication",
			zap.Error(err),
			zap.String("medication_id", id),
		)
		return nil, fmt.Errorf("failed to update medication: %w", err)
	}

	s.audit.Record(ctx, userID, audit.OperationUpdate, audit.ResourceMedication, id)
	s.logger.Info("medication updated successfully",
		zap.String("medication_id", id),
		zap.String("name", med.Name),
	)

	return &med, nil
}

// Delete deletes a medication reminder
func (s *MedicationService) Delete(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if id == "" {
		return apperr.Validation("Medication ID is required")
	}

	if err := s.store.DeleteMedication(ctx, userID, id); err != nil {
		s.logger.Error("failed to delete medication",
			zap.Error(err),
			zap.String("medication_id", id),
		)
		return fmt.Errorf("failed to delete medication: %w", err)
	}

	s.audit.Record(ctx, userID, audit.OperationDelete, audit.ResourceMedication, id)
	s.logger.Info("medication deleted successfully",
		zap.String("medication_id", id),
	)

	return nil
}
