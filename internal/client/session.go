package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/vcscsvcscs/healthscope/pkg/model"
	"go.uber.org/zap"
)

// Greeting is the assistant turn every conversation starts with
const Greeting = "Hi! I'm Sakhi, your AI health assistant. I can help you with health questions, provide wellness tips, and offer guidance. What would you like to know?"

// ErrPending is returned when the same operation is already in flight
var ErrPending = errors.New("operation already in progress")

// ErrEmptyMessage is returned for a blank chat message
var ErrEmptyMessage = errors.New("message is empty")

// Op names a session operation that has its own pending flag
type Op string

const (
	OpChat         Op = "chat"
	OpVitals       Op = "vitals"
	OpMood         Op = "mood"
	OpHospitals    Op = "hospitals"
	OpAppointments Op = "appointments"
	OpMedications  Op = "medications"
)

// API is the subset of Client a Session drives
type API interface {
	AnalyzeVitals(ctx context.Context, v model.VitalsReading) (*model.AnalysisResult, error)
	RecommendActivities(ctx context.Context, entry model.MoodEntry) (*model.MoodRecommendation, error)
	Chat(ctx context.Context, message string, history []model.ChatMessage) (*model.ChatReply, error)
	NearbyHospitals(ctx context.Context, coords model.Coordinates) (*model.HospitalSearchResult, error)
	ListAppointments(ctx context.Context) ([]model.Appointment, error)
	CreateAppointment(ctx context.Context, appt model.Appointment) (*model.Appointment, error)
	UpdateAppointment(ctx context.Context, id string, appt model.Appointment) (*model.Appointment, error)
	DeleteAppointment(ctx context.Context, id string) error
	ListMedications(ctx context.Context) ([]model.MedicationReminder, error)
	CreateMedication(ctx context.Context, med model.MedicationReminder) (*model.MedicationReminder, error)
	UpdateMedication(ctx context.Context, id string, med model.MedicationReminder) (*model.MedicationReminder, error)
	DeleteMedication(ctx context.Context, id string) error
}

// Session holds the state of one signed-in user's screens
type Session struct {
	api    API
	now    func() time.Time
	logger *zap.Logger

	mu           sync.Mutex
	pending      map[Op]bool
	chat         []model.ChatMessage
	vitals       []model.AnalysisResult
	mood         *model.MoodRecommendation
	hospitals    []model.Hospital
	appointments []model.Appointment
	medications  []model.MedicationReminder
}

// NewSession creates a Session whose chat starts with the greeting
func NewSession(api API, logger *zap.Logger) *Session {
	s := &Session{
		api:     api,
		now:     time.Now,
		logger:  logger,
		pending: map[Op]bool{},
	}
	s.chat = []model.ChatMessage{{
		Role:      model.ChatRoleAssistant,
		Content:   Greeting,
		Timestamp: s.timestamp(),
	}}
	return s
}

func (s *Session) timestamp() string {
	return s.now().UTC().Format(model.TimestampLayout)
}

// begin marks op in flight or reports that it already is
func (s *Session) begin(op Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending[op] {
		return ErrPending
	}
	s.pending[op] = true
	return nil
}

func (s *Session) end(op Op) {
	s.mu.Lock()
	delete(s.pending, op)
	s.mu.Unlock()
}

// Pending reports whether op is in flight
func (s *Session) Pending(op Op) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[op]
}

// SendChat appends the user turn, sends the conversation before it and
// appends the reply. On failure the user turn stays in the history.
func (s *Session) SendChat(ctx context.Context, message string) (*model.ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if err := s.begin(OpChat); err != nil {
		return nil, err
	}
	defer s.end(OpChat)

	s.mu.Lock()
	history := append([]model.ChatMessage(nil), s.chat...)
	s.chat = append(s.chat, model.ChatMessage{
		Role:      model.ChatRoleUser,
		Content:   message,
		Timestamp: s.timestamp(),
	})
	s.mu.Unlock()

	reply, err := s.api.Chat(ctx, message, history)
	if err != nil {
		s.logger.Warn("chat failed", zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	s.chat = append(s.chat, model.ChatMessage{
		Role:      model.ChatRoleAssistant,
		Content:   reply.Response,
		Timestamp: reply.Timestamp,
	})
	s.mu.Unlock()
	return reply, nil
}

// AnalyzeVitals submits a reading and records the result at the head of the history
func (s *Session) AnalyzeVitals(ctx context.Context, v model.VitalsReading) (*model.AnalysisResult, error) {
	if err := s.begin(OpVitals); err != nil {
		return nil, err
	}
	defer s.end(OpVitals)

	result, err := s.api.AnalyzeVitals(ctx, v)
	if err != nil {
		s.logger.Warn("vitals analysis failed", zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	s.vitals = append([]model.AnalysisResult{*result}, s.vitals...)
	s.mu.Unlock()
	return result, nil
}

// RecommendActivities asks for suggestions for a mood and keeps the latest answer
func (s *Session) RecommendActivities(ctx context.Context, entry model.MoodEntry) (*model.MoodRecommendation, error) {
	if err := s.begin(OpMood); err != nil {
		return nil, err
	}
	defer s.end(OpMood)

	rec, err := s.api.RecommendActivities(ctx, entry)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.mood = rec
	s.mu.Unlock()
	return rec, nil
}

// FindHospitals looks up hospitals around coords and keeps the list
func (s *Session) FindHospitals(ctx context.Context, coords model.Coordinates) ([]model.Hospital, error) {
	if err := s.begin(OpHospitals); err != nil {
		return nil, err
	}
	defer s.end(OpHospitals)

	result, err := s.api.NearbyHospitals(ctx, coords)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.hospitals = append([]model.Hospital(nil), result.Hospitals...)
	s.mu.Unlock()
	return result.Hospitals, nil
}

// LoadAppointments replaces the local list with the server's
func (s *Session) LoadAppointments(ctx context.Context) error {
	if err := s.begin(OpAppointments); err != nil {
		return err
	}
	defer s.end(OpAppointments)

	list, err := s.api.ListAppointments(ctx)
	if err != nil {
		return err
	}
	model.SortAppointments(list)

	s.mu.Lock()
	s.appointments = list
	s.mu.Unlock()
	return nil
}

// SaveAppointment creates appt when it has no id and edits it in place otherwise
func (s *Session) SaveAppointment(ctx context.Context, appt model.Appointment) (*model.Appointment, error) {
	if err := s.begin(OpAppointments); err != nil {
		return nil, err
	}
	defer s.end(OpAppointments)

	var (
		saved *model.Appointment
		err   error
	)
	if appt.ID == "" {
		saved, err = s.api.CreateAppointment(ctx, appt)
	} else {
		saved, err = s.api.UpdateAppointment(ctx, appt.ID, appt)
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	replaced := false
	for i := range s.appointments {
		if s.appointments[i].ID == saved.ID {
			s.appointments[i] = *saved
			replaced = true
			break
		}
	}
	if !replaced {
		s.appointments = append(s.appointments, *saved)
	}
	model.SortAppointments(s.appointments)
	s.mu.Unlock()
	return saved, nil
}

// DeleteAppointment removes appointment id on the server and locally
func (s *Session) DeleteAppointment(ctx context.Context, id string) error {
	if err := s.begin(OpAppointments); err != nil {
		return err
	}
	defer s.end(OpAppointments)

	if err := s.api.DeleteAppointment(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.appointments {
		if s.appointments[i].ID == id {
			s.appointments = append(s.appointments[:i], s.appointments[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// LoadMedications replaces the local medication list with the server's
func (s *Session) LoadMedications(ctx context.Context) error {
	if err := s.begin(OpMedications); err != nil {
		return err
	}
	defer s.end(OpMedications)

	list, err := s.api.ListMedications(ctx)
	if err != nil {
		return err
	}
	model.SortMedications(list)

	s.mu.Lock()
	s.medications = list
	s.mu.Unlock()
	return nil
}

// AddMedication creates a medication reminder
func (s *Session) AddMedication(ctx context.Context, med model.MedicationReminder) (*model.MedicationReminder, error) {
	med.ID = ""
	return s.SaveMedication(ctx, med)
}

// SaveMedication creates med when it has no id and edits it in place otherwise
func (s *Session) SaveMedication(ctx context.Context, med model.MedicationReminder) (*model.MedicationReminder, error) {
	if err := s.begin(OpMedications); err != nil {
		return nil, err
	}
	defer s.end(OpMedications)

	var (
		saved *model.MedicationReminder
		err   error
	)
	if med.ID == "" {
		saved, err = s.api.CreateMedication(ctx, med)
	} else {
		saved, err = s.api.UpdateMedication(ctx, med.ID, med)
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	replaced := false
	for i := range s.medications {
		if s.medications[i].ID == saved.ID {
			s.medications[i] = *saved
			replaced = true
			break
		}
	}
	if !replaced {
		s.medications = append(s.medications, *saved)
	}
	model.SortMedications(s.medications)
	s.mu.Unlock()
	return saved, nil
}

// RemoveMedication deletes medication reminder id
func (s *Session) RemoveMedication(ctx context.Context, id string) error {
	if err := s.begin(OpMedications); err != nil {
		return err
	}
	defer s.end(OpMedications)

	if err := s.api.DeleteMedication(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.medications {
		if s.medications[i].ID == id {
			s.medications = append(s.medications[:i], s.medications[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// ChatHistory returns a copy of the conversation, oldest first
func (s *Session) ChatHistory() []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ChatMessage(nil), s.chat...)
}

// VitalsHistory returns a copy of past analyses, most recent first
func (s *Session) VitalsHistory() []model.AnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.AnalysisResult(nil), s.vitals...)
}

// Mood returns the latest recommendation, or nil
func (s *Session) Mood() *model.MoodRecommendation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mood == nil {
		return nil
	}
	m := *s.mood
	return &m
}

// Hospitals returns the last hospital list
func (s *Session) Hospitals() []model.Hospital {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Hospital(nil), s.hospitals...)
}

// Appointments returns a copy of the sorted appointment list
func (s *Session) Appointments() []model.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Appointment(nil), s.appointments...)
}

// Medications returns a copy of the sorted medication list
func (s *Session) Medications() []model.MedicationReminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.MedicationReminder(nil), s.medications...)
}
