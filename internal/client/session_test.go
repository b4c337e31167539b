package client

import (
	"context"
	"errors"
	"testing"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/healthscope/pkg/model"
	"go.uber.org/zap"
)

// MockAPI is a mock implementation of API
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) AnalyzeVitals(ctx context.Context, v model.VitalsReading) (*model.AnalysisResult, error) {
	args := m.Called(ctx, v)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AnalysisResult), args.Error(1)
}

func (m *MockAPI) RecommendActivities(ctx context.Context, entry model.MoodEntry) (*model.MoodRecommendation, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MoodRecommendation), args.Error(1)
}

func (m *MockAPI) Chat(ctx context.Context, message string, history []model.ChatMessage) (*model.ChatReply, error) {
	args := m.Called(ctx, message, history)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChatReply), args.Error(1)
}

func (m *MockAPI) NearbyHospitals(ctx context.Context, coords model.Coordinates) (*model.HospitalSearchResult, error) {
	args := m.Called(ctx, coords)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.HospitalSearchResult), args.Error(1)
}

func (m *MockAPI) ListAppointments(ctx context.Context) ([]model.Appointment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Appointment), args.Error(1)
}

func (m *MockAPI) CreateAppointment(ctx context.Context, appt model.Appointment) (*model.Appointment, error) {
	args := m.Called(ctx, appt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appointment), args.Error(1)
}

func (m *MockAPI) UpdateAppointment(ctx context.Context, id string, appt model.Appointment) (*model.Appointment, error) {
	args := m.Called(ctx, id, appt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appointment), args.Error(1)
}

func (m *MockAPI) DeleteAppointment(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAPI) ListMedications(ctx context.Context) ([]model.MedicationReminder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MedicationReminder), args.Error(1)
}

func (m *MockAPI) CreateMedication(ctx context.Context, med model.MedicationReminder) (*model.MedicationReminder, error) {
	args := m.Called(ctx, med)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MedicationReminder), args.Error(1)
}

func (m *MockAPI) UpdateMedication(ctx context.Context, id string, med model.MedicationReminder) (*model.MedicationReminder, error) {
	args := m.Called(ctx, id, med)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MedicationReminder), args.Error(1)
}

func (m *MockAPI) DeleteMedication(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func newTestSession(api API) *Session {
	s := NewSession(api, zap.NewNop())
	s.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }
	return s
}

func appt(id, title string, d, h int) model.Appointment {
	return model.Appointment{
		ID:    id,
		Title: title,
		Date:  openapi_types.Date{Time: time.Date(2026, 5, d, 0, 0, 0, 0, time.UTC)},
		Time:  model.ClockTime{Hour: h},
	}
}

func TestNewSession_StartsWithGreeting(t *testing.T) {
	s := NewSession(new(MockAPI), zap.NewNop())

	history := s.ChatHistory()

	require.Len(t, history, 1)
	assert.Equal(t, model.ChatRoleAssistant, history[0].Role)
	assert.Equal(t, Greeting, history[0].Content)
}

func TestSession_SendChat(t *testing.T) {
	// Arrange
	api := new(MockAPI)
	api.On("Chat", mock.Anything, "How much water?", mock.MatchedBy(func(h []model.ChatMessage) bool {
		return len(h) == 1 && h[0].Content == Greeting
	})).Return(&model.ChatReply{Response: "About 2 litres.", Timestamp: "2026-03-14T09:30:01.000Z"}, nil)
	s := newTestSession(api)

	// Act
	reply, err := s.SendChat(context.Background(), "  How much water? ")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "About 2 litres.", reply.Response)
	history := s.ChatHistory()
	require.Len(t, history, 3)
	assert.Equal(t, model.ChatRoleUser, history[1].Role)
	assert.Equal(t, "How much water?", history[1].Content)
	assert.Equal(t, "2026-03-14T09:30:00.000Z", history[1].Timestamp)
	assert.Equal(t, model.ChatRoleAssistant, history[2].Role)
	assert.Equal(t, "About 2 litres.", history[2].Content)
	api.AssertExpectations(t)
}

func TestSession_SendChatFailureKeepsUserTurn(t *testing.T) {
	api := new(MockAPI)
	api.On("Chat", mock.Anything, "hello", mock.Anything).Return(nil, errors.New("boom"))
	s := newTestSession(api)

	_, err := s.SendChat(context.Background(), "hello")

	require.Error(t, err)
	history := s.ChatHistory()
	require.Len(t, history, 2)
	assert.Equal(t, "hello", history[1].Content)
	assert.False(t, s.Pending(OpChat))
}

func TestSession_SendChatRejectsBlank(t *testing.T) {
	api := new(MockAPI)
	s := newTestSession(api)

	_, err := s.SendChat(context.Background(), "   ")

	assert.ErrorIs(t, err, ErrEmptyMessage)
	api.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything, mock.Anything)
	assert.Len(t, s.ChatHistory(), 1)
}

func TestSession_ChatHistoryIsACopy(t *testing.T) {
	s := newTestSession(new(MockAPI))

	history := s.ChatHistory()
	history[0].Content = "changed"

	assert.Equal(t, Greeting, s.ChatHistory()[0].Content)
}

func TestSession_VitalsHistoryMostRecentFirst(t *testing.T) {
	api := new(MockAPI)
	first := model.VitalsReading{HeartRate: f64(70)}
	second := model.VitalsReading{HeartRate: f64(90)}
	api.On("AnalyzeVitals", mock.Anything, first).Return(&model.AnalysisResult{Vitals: first, Analysis: "first"}, nil)
	api.On("AnalyzeVitals", mock.Anything, second).Return(&model.AnalysisResult{Vitals: second, Analysis: "second"}, nil)
	s := newTestSession(api)

	_, err := s.AnalyzeVitals(context.Background(), first)
	require.NoError(t, err)
	_, err = s.AnalyzeVitals(context.Background(), second)
	require.NoError(t, err)

	history := s.VitalsHistory()
	require.Len(t, history, 2)
	assert.Equal(t, "second", history[0].Analysis)
	assert.Equal(t, "first", history[1].Analysis)
}

func TestSession_VitalsFailureLeavesHistory(t *testing.T) {
	api := new(MockAPI)
	api.On("AnalyzeVitals", mock.Anything, mock.Anything).Return(nil, errors.New("down"))
	s := newTestSession(api)

	_, err := s.AnalyzeVitals(context.Background(), model.VitalsReading{HeartRate: f64(70)})

	require.Error(t, err)
	assert.Empty(t, s.VitalsHistory())
}

func TestSession_SecondCallWhilePendingIsRejected(t *testing.T) {
	// Arrange
	api := new(MockAPI)
	entered := make(chan struct{})
	release := make(chan struct{})
	api.On("NearbyHospitals", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(&model.HospitalSearchResult{Hospitals: []model.Hospital{{Name: "City Hospital"}}}, nil).
		Once()
	api.On("RecommendActivities", mock.Anything, mock.Anything).
		Return(&model.MoodRecommendation{Mood: model.MoodCalm, Recommendations: "walk"}, nil)
	s := newTestSession(api)

	done := make(chan error, 1)
	go func() {
		_, err := s.FindHospitals(context.Background(), model.Coordinates{Latitude: 19.07, Longitude: 72.87})
		done <- err
	}()
	<-entered

	// Act
	_, err := s.FindHospitals(context.Background(), model.Coordinates{})
	rec, otherErr := s.RecommendActivities(context.Background(), model.MoodEntry{Mood: model.MoodCalm})

	// Assert
	assert.ErrorIs(t, err, ErrPending)
	assert.True(t, s.Pending(OpHospitals))
	require.NoError(t, otherErr, "other operations keep their own flag")
	assert.Equal(t, "walk", rec.Recommendations)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, s.Pending(OpHospitals))
	assert.Equal(t, []model.Hospital{{Name: "City Hospital"}}, s.Hospitals())
	assert.Equal(t, "walk", s.Mood().Recommendations)
	api.AssertNumberOfCalls(t, "NearbyHospitals", 1)
}

func TestSession_Appointments(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	api.On("ListAppointments", mock.Anything).Return([]model.Appointment{
		appt("b", "Dentist", 9, 10),
		appt("a", "Blood test", 3, 8),
	}, nil)
	s := newTestSession(api)

	require.NoError(t, s.LoadAppointments(ctx))
	require.Len(t, s.Appointments(), 2)
	assert.Equal(t, "a", s.Appointments()[0].ID)

	t.Run("create inserts in order", func(t *testing.T) {
		draft := appt("", "Eye check", 5, 12)
		api.On("CreateAppointment", mock.Anything, draft).Return(&model.Appointment{
			ID: "c", Title: draft.Title, Date: draft.Date, Time: draft.Time,
		}, nil).Once()

		_, err := s.SaveAppointment(ctx, draft)
		require.NoError(t, err)

		ids := []string{}
		for _, a := range s.Appointments() {
			ids = append(ids, a.ID)
		}
		assert.Equal(t, []string{"a", "c", "b"}, ids)
	})

	t.Run("edit replaces in place", func(t *testing.T) {
		edited := appt("b", "Dentist (moved)", 1, 9)
		api.On("UpdateAppointment", mock.Anything, "b", edited).Return(&edited, nil).Once()

		_, err := s.SaveAppointment(ctx, edited)
		require.NoError(t, err)

		list := s.Appointments()
		require.Len(t, list, 3)
		assert.Equal(t, "b", list[0].ID)
		assert.Equal(t, "Dentist (moved)", list[0].Title)
	})

	t.Run("delete removes", func(t *testing.T) {
		api.On("DeleteAppointment", mock.Anything, "c").Return(nil).Once()

		require.NoError(t, s.DeleteAppointment(ctx, "c"))

		for _, a := range s.Appointments() {
			assert.NotEqual(t, "c", a.ID)
		}
		assert.Len(t, s.Appointments(), 2)
	})

	t.Run("failed delete keeps the item", func(t *testing.T) {
		api.On("DeleteAppointment", mock.Anything, "a").Return(errors.New("offline")).Once()

		require.Error(t, s.DeleteAppointment(ctx, "a"))
		assert.Len(t, s.Appointments(), 2)
	})
}

func TestSession_Medications(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	api.On("ListMedications", mock.Anything).Return([]model.MedicationReminder{
		{ID: "m2", Name: "Vitamin D", Time: model.ClockTime{Hour: 21}},
	}, nil)
	api.On("CreateMedication", mock.Anything, mock.Anything).Return(&model.MedicationReminder{
		ID: "m1", Name: "Metformin", Time: model.ClockTime{Hour: 8},
	}, nil)
	api.On("DeleteMedication", mock.Anything, "m2").Return(nil)
	s := newTestSession(api)

	require.NoError(t, s.LoadMedications(ctx))
	_, err := s.AddMedication(ctx, model.MedicationReminder{Name: "Metformin", Time: model.ClockTime{Hour: 8}})
	require.NoError(t, err)

	meds := s.Medications()
	require.Len(t, meds, 2)
	assert.Equal(t, "m1", meds[0].ID)

	require.NoError(t, s.RemoveMedication(ctx, "m2"))
	assert.Len(t, s.Medications(), 1)
}

func TestSession_SaveMedicationEditsInPlace(t *testing.T) {
	// Arrange
	ctx := context.Background()
	api := new(MockAPI)
	api.On("ListMedications", mock.Anything).Return([]model.MedicationReminder{
		{ID: "m1", Name: "Metformin", Time: model.ClockTime{Hour: 8}},
		{ID: "m2", Name: "Vitamin D", Time: model.ClockTime{Hour: 21}},
	}, nil)
	edited := model.MedicationReminder{ID: "m2", Name: "Vitamin D", Time: model.ClockTime{Hour: 7, Minute: 30}}
	api.On("UpdateMedication", mock.Anything, "m2", edited).Return(&edited, nil).Once()
	s := newTestSession(api)
	require.NoError(t, s.LoadMedications(ctx))

	// Act
	saved, err := s.SaveMedication(ctx, edited)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "m2", saved.ID)
	meds := s.Medications()
	require.Len(t, meds, 2)
	assert.Equal(t, "m2", meds[0].ID)
	assert.Equal(t, model.ClockTime{Hour: 7, Minute: 30}, meds[0].Time)
	api.AssertNotCalled(t, "CreateMedication", mock.Anything, mock.Anything)
	api.AssertExpectations(t)
}

func TestSession_SaveMedicationFailureKeepsList(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	api.On("ListMedications", mock.Anything).Return([]model.MedicationReminder{
		{ID: "m1", Name: "Metformin", Time: model.ClockTime{Hour: 8}},
	}, nil)
	api.On("UpdateMedication", mock.Anything, "m1", mock.Anything).Return(nil, errors.New("offline")).Once()
	s := newTestSession(api)
	require.NoError(t, s.LoadMedications(ctx))

	_, err := s.SaveMedication(ctx, model.MedicationReminder{ID: "m1", Name: "Metformin", Time: model.ClockTime{Hour: 9}})

	require.Error(t, err)
	assert.Equal(t, model.ClockTime{Hour: 8}, s.Medications()[0].Time)
}
