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

// Auditor records changes to user-owned resources
type Auditor interface {
	Record(ctx context.Context, userID string, op audit.OperationType, resource audit.ResourceType, resourceID string)
}

type nopAuditor struct{}

func (nopAuditor) Record(context.Context, string, audit.OperationType, audit.ResourceType, string) {}

const maxTitleLength = 200

// AppointmentService handles appointment business logic
type AppointmentService struct {
	store  repository.AppointmentStore
	audit  Auditor
	logger *zap.Logger
}

// NewAppointmentService creates a new AppointmentService. A nil auditor disables auditing.
func NewAppointmentService(store repository.AppointmentStore, auditor Auditor, logger *zap.Logger) *AppointmentService {
	if auditor == nil {
		auditor = nopAuditor{}
	}
	return &AppointmentService{
		store:  store,
		audit:  auditor,
		logger: logger,
	}
}

func validateAppointment(appt *model.Appointment) error {
	appt.Title = strings.TrimSpace(appt.Title)
	if appt.Title == "" {
		return apperr.Validation("Please provide an appointment title")
	}
	if len(appt.Title) > maxTitleLength {
		return apperr.Validation(fmt.Sprintf("Appointment title must be at most %d characters", maxTitleLength))
	}
	if appt.Date.Time.IsZero() {
		return apperr.Validation("Please provide an appointment date")
	}
	if !appt.Time.Valid() {
		return apperr.Validation("Please provide a valid appointment time")
	}
	return nil
}

func requireUser(userID string) error {
	if userID == "" {
		return apperr.Unauthorized("Authentication required")
	}
	return nil
}

// List returns the user's appointments, soonest first
func (s *AppointmentService) List(ctx context.Context, userID string) ([]model.Appointment, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	appointments, err := s.store.ListAppointments(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list appointments", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	model.SortAppointments(appointments)

	s.logger.Info("appointments listed",
		zap.String("user_id", userID),
		zap.Int("count", len(appointments)),
	)
	return appointments, nil
}

// Create stores a new appointment and returns it with its assigned id
func (s *AppointmentService) Create(ctx context.Context, userID string, appt model.Appointment) (*model.Appointment, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := validateAppointment(&appt); err != nil {
		return nil, err
	}
	appt.ID = ""
	appt.UserID = userID

	id, err := s.store.CreateAppointment(ctx, userID, appt)
	if err != nil {
		s.logger.Error("failed to create appointment", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	appt.ID = id

	s.audit.Record(ctx, userID, audit.OperationCreate, audit.ResourceAppointment, id)
	s.logger.Info("appointment created",
		zap.String("appointment_id", id),
		zap.String("user_id", userID),
		zap.String("date", appt.Date.String()),
		zap.String("time", appt.Time.String()),
	)
	return &appt, nil
}

// Update replaces an existing appointment; the id never changes
func (s *AppointmentService) Update(ctx context.Context, userID, id string, appt model.Appointment) (*model.Appointment, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, apperr.Validation("Appointment ID is required")
	}
	if err := validateAppointment(&appt); err != nil {
		return nil, err
	}
	appt.ID = id
	appt.UserID = userID

	if err := s.store.UpdateAppointment(ctx, userID, appt); err != nil {
		s.logger.Error("failed to update appointment",
			zap.Error(err),
			zap.String("appointment_id", id),
		)
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	s.audit.Record(ctx, userID, audit.OperationUpdate, audit.ResourceAppointment, id)
	s.logger.Info("appointment updated", zap.String("appointment_id", id))
	return &appt, nil
}

// Delete removes an appointment
func (s *AppointmentService) Delete(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if id == "" {
		return apperr.Validation("Appointment ID is required")
	}

	if err := s.store.DeleteAppointment(ctx, userID, id); err != nil {
		s.logger.Error("failed to delete appointment",
			zap.Error(err),
			zap.String("appointment_id", id),
		)
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	s.audit.Record(ctx, userID, audit.OperationDelete, audit.ResourceAppointment, id)
	s.logger.Info("appointment deleted", zap.String("appointment_id", id))
	return nil
}
