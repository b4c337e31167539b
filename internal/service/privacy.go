package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vcscsvcscs/healthscope/internal/audit"
	"github.com/vcscsvcscs/healthscope/internal/repository"
	"github.com/vcscsvcscs/healthscope/pkg/model"
	"go.uber.org/zap"
)

// PrivacyStore is what data export and erasure need from the store
type PrivacyStore interface {
	repository.ProfileStore
	repository.AppointmentStore
	repository.MedicationStore
	repository.UserDataStore
}

// PrivacyService handles the right to data portability and the right to be forgotten
type PrivacyService struct {
	store  PrivacyStore
	audit  Auditor
	now    func() time.Time
	logger *zap.Logger
}

// NewPrivacyService creates a new PrivacyService. A nil auditor disables auditing.
func NewPrivacyService(store PrivacyStore, auditor Auditor, logger *zap.Logger) *PrivacyService {
	if auditor == nil {
		auditor = nopAuditor{}
	}
	return &PrivacyService{
		store:  store,
		audit:  auditor,
		now:    time.Now,
		logger: logger,
	}
}

// Export collects the user's profile, appointments and medication reminders
func (s *PrivacyService) Export(ctx context.Context, userID string) (*model.UserDataExport, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to export profile: %w", err)
	}
	appointments, err := s.store.ListAppointments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to export appointments: %w", err)
	}
	medications, err := s.store.ListMedications(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to export medications: %w", err)
	}
	if appointments == nil {
		appointments = []model.Appointment{}
	}
	if medications == nil {
		medications = []model.MedicationReminder{}
	}
	model.SortAppointments(appointments)
	model.SortMedications(medications)

	s.audit.Record(ctx, userID, audit.OperationExport, audit.ResourceUser, userID)
	s.logger.Info("user data exported",
		zap.String("user_id", userID),
		zap.Int("appointments", len(appointments)),
		zap.Int("medications", len(medications)),
	)

	return &model.UserDataExport{
		Profile:      profile,
		Appointments: appointments,
		Medications:  medications,
		ExportedAt:   s.now().UTC().Format(model.TimestampLayout),
	}, nil
}

// Erase deletes everything stored for the user. The audit trail is kept.
func (s *PrivacyService) Erase(ctx context.Context, userID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if err := s.store.DeleteUserData(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user data: %w", err)
	}

	s.audit.Record(ctx, userID, audit.OperationDelete, audit.ResourceUser, userID)
	s.logger.Info("user data erased", zap.String("user_id", userID))
	return nil
}
