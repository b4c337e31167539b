package service

import (
	"context"
	"strings"
	"time"

	"github.com/vcscsvcscs/healthscope/internal/ai"
	"github.com/vcscsvcscs/healthscope/internal/apperr"
	"github.com/vcscsvcscs/healthscope/internal/prompt"
	"github.com/vcscsvcscs/healthscope/pkg/model"
	"go.uber.org/zap"
)

// Validation messages returned to clients
const (
	MsgVitalsRequired      = "Please provide at least one vital sign measurement"
	MsgMoodRequired        = "Please provide your current mood"
	MsgMessageRequired     = "Please provide a valid message"
	MsgCoordinatesRequired = "Please provide valid latitude and longitude coordinates"
	MsgCoordinatesInvalid  = "Invalid coordinates provided"
)

// Invoker sends a prompt to the generative model
type Invoker interface {
	Invoke(ctx context.Context, op ai.Operation, prompt string, opts ai.Options) (string, error)
}

// AssistantService implements the AI-backed features. Input is validated before any model call.
type AssistantService struct {
	ai     Invoker
	now    func() time.Time
	logger *zap.Logger
}

// NewAssistantService creates a new AssistantService
func NewAssistantService(invoker Invoker, logger *zap.Logger) *AssistantService {
	return &AssistantService{
		ai:     invoker,
		now:    time.Now,
		logger: logger,
	}
}

func (s *AssistantService) timestamp() string {
	return s.now().UTC().Format(model.TimestampLayout)
}

// AnalyzeVitals asks the model for a non-diagnostic assessment of the readings
func (s *AssistantService) AnalyzeVitals(ctx context.Context, vitals model.VitalsReading, locale model.Locale) (*model.AnalysisResult, error) {
	if vitals.IsEmpty() {
		return nil, apperr.Validation(MsgVitalsRequired)
	}

	analysis, err := s.ai.Invoke(ctx, ai.OperationAnalyzeVitals, prompt.Vitals(vitals, locale), ai.Options{})
	if err != nil {
		return nil, err
	}

	return &model.AnalysisResult{
		Vitals:    vitals,
		Analysis:  analysis,
		Timestamp: s.timestamp(),
	}, nil
}

// RecommendActivities suggests activities for the given mood.
// Unknown mood tags are forwarded as free text.
func (s *AssistantService) RecommendActivities(ctx context.Context, entry model.MoodEntry, locale model.Locale) (*model.MoodRecommendation, error) {
	entry.Mood = model.MoodTag(strings.ToLower(strings.TrimSpace(string(entry.Mood))))
	entry.Description = strings.TrimSpace(entry.Description)
	if entry.Mood == "" {
		return nil, apperr.Validation(MsgMoodRequired)
	}
	if !entry.Mood.Known() {
		s.logger.Warn("unknown mood tag", zap.String("mood", string(entry.Mood)))
	}

	recommendations, err := s.ai.Invoke(ctx, ai.OperationRecommendMood, prompt.Mood(entry, locale), ai.Options{})
	if err != nil {
		return nil, err
	}

	return &model.MoodRecommendation{
		Mood:            entry.Mood,
		Description:     entry.Description,
		Recommendations: recommendations,
		Timestamp:       s.timestamp(),
	}, nil
}

// Chat answers a user message in the context of the recent conversation
func (s *AssistantService) Chat(ctx context.Context, message string, history []model.ChatMessage, locale model.Locale) (*model.ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperr.Validation(MsgMessageRequired)
	}

	turns := make([]model.ChatMessage, 0, len(history))
	for _, turn := range prompt.LastTurns(history, prompt.ChatContextWindow) {
		if strings.TrimSpace(turn.Content) == "" {
			continue
		}
		if turn.Role != model.ChatRoleUser && turn.Role != model.ChatRoleAssistant {
			s.logger.Debug("skipping chat turn with unknown role", zap.String("role", string(turn.Role)))
			continue
		}
		turns = append(turns, turn)
	}

	response, err := s.ai.Invoke(ctx, ai.OperationChat, prompt.Chat(message, turns, locale), ai.Options{})
	if err != nil {
		return nil, err
	}

	return &model.ChatReply{
		Message:   message,
		Response:  response,
		Timestamp: s.timestamp(),
	}, nil
}

// ValidateCoordinates checks that both values are within geographic range.
// Zero is a valid latitude and longitude.
func ValidateCoordinates(c model.Coordinates) error {
	if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
		return apperr.Validation(MsgCoordinatesInvalid)
	}
	return nil
}

// NearbyHospitals asks the model for hospitals near the coordinates.
// A well-formed reply that is not a list yields no hospitals.
func (s *AssistantService) NearbyHospitals(ctx context.Context, coords model.Coordinates, locale model.Locale) (*model.HospitalSearchResult, error) {
	if err := ValidateCoordinates(coords); err != nil {
		return nil, err
	}

	raw, err := s.ai.Invoke(ctx, ai.OperationNearbyHospital, prompt.Hospitals(coords, locale), ai.Options{ExpectJSON: true, JSONArray: true})
	if err != nil {
		return nil, err
	}

	hospitals, err := ai.DecodeHospitals(raw)
	if err != nil {
		s.logger.Error("failed to decode hospitals", zap.Error(err))
		return nil, err
	}

	s.logger.Info("nearby hospitals found",
		zap.Float64("latitude", coords.Latitude),
		zap.Float64("longitude", coords.Longitude),
		zap.Int("count", len(hospitals)),
	)

	return &model.HospitalSearchResult{
		Coordinates: coords,
		Hospitals:   hospitals,
		Timestamp:   s.timestamp(),
	}, nil
}
