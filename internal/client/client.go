// Package client is a typed HTTP client for the HealthScope API and the
// per-user session state built on it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vcscsvcscs/healthscope/pkg/model"
	"go.uber.org/zap"
)

// APIError is a non-2xx response
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// TokenSource supplies the bearer token for authenticated routes
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed bearer token
type StaticToken string

// Token returns the token
func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// Config configures a Client
type Config struct {
	BaseURL string
	// Tokens may be nil for the unauthenticated AI routes
	Tokens TokenSource
	// Locale is sent as Accept-Language
	Locale     model.Locale
	HTTPClient *http.Client
}

// Client calls the HealthScope API. Every call is made once.
type Client struct {
	baseURL string
	tokens  TokenSource
	locale  model.Locale
	http    *http.Client
	logger  *zap.Logger
}

// New creates a Client
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		tokens:  cfg.Tokens,
		locale:  cfg.Locale,
		http:    httpClient,
		logger:  logger,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.locale != "" {
		req.Header.Set("Accept-Language", string(c.locale))
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("failed to get token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("request failed", zap.Error(err), zap.String("method", method), zap.String("path", path))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// AnalyzeVitals posts a reading for analysis
func (c *Client) AnalyzeVitals(ctx context.Context, v model.VitalsReading) (*model.AnalysisResult, error) {
	var out model.AnalysisResult
	if err := c.do(ctx, http.MethodPost, "/api/vitals/analyze", v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RecommendActivities asks for mood-based suggestions
func (c *Client) RecommendActivities(ctx context.Context, entry model.MoodEntry) (*model.MoodRecommendation, error) {
	var out model.MoodRecommendation
	if err := c.do(ctx, http.MethodPost, "/api/mood/recommendations", entry, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chat sends a message with the prior conversation
func (c *Client) Chat(ctx context.Context, message string, history []model.ChatMessage) (*model.ChatReply, error) {
	in := struct {
		Message     string              `json:"message"`
		ChatHistory []model.ChatMessage `json:"chatHistory,omitempty"`
	}{Message: message, ChatHistory: history}

	var out model.ChatReply
	if err := c.do(ctx, http.MethodPost, "/api/chat/sakhi", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// NearbyHospitals looks up hospitals around coords
func (c *Client) NearbyHospitals(ctx context.Context, coords model.Coordinates) (*model.HospitalSearchResult, error) {
	var out model.HospitalSearchResult
	if err := c.do(ctx, http.MethodPost, "/api/hospitals/nearby", coords, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EmergencyContacts returns the configured helplines
func (c *Client) EmergencyContacts(ctx context.Context) ([]model.EmergencyContact, error) {
	var out []model.EmergencyContact
	if err := c.do(ctx, http.MethodGet, "/api/emergency/contacts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAppointments returns the signed-in user's appointments
func (c *Client) ListAppointments(ctx context.Context) ([]model.Appointment, error) {
	var out []model.Appointment
	if err := c.do(ctx, http.MethodGet, "/api/users/me/appointments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAppointment stores a new appointment and returns it with its id
func (c *Client) CreateAppointment(ctx context.Context, appt model.Appointment) (*model.Appointment, error) {
	var out model.Appointment
	if err := c.do(ctx, http.MethodPost, "/api/users/me/appointments", appt, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAppointment replaces appointment id
func (c *Client) UpdateAppointment(ctx context.Context, id string, appt model.Appointment) (*model.Appointment, error) {
	var out model.Appointment
	if err := c.do(ctx, http.MethodPut, "/api/users/me/appointments/"+id, appt, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAppointment removes appointment id
func (c *Client) DeleteAppointment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/users/me/appointments/"+id, nil, nil)
}

// ListMedications returns the signed-in user's medication reminders
func (c *Client) ListMedications(ctx context.Context) ([]model.MedicationReminder, error) {
	var out []model.MedicationReminder
	if err := c.do(ctx, http.MethodGet, "/api/users/me/medications", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateMedication adds a daily medication reminder
func (c *Client) CreateMedication(ctx context.Context, med model.MedicationReminder) (*model.MedicationReminder, error) {
	var out model.MedicationReminder
	if err := c.do(ctx, http.MethodPost, "/api/users/me/medications", med, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMedication replaces medication reminder id
func (c *Client) UpdateMedication(ctx context.Context, id string, med model.MedicationReminder) (*model.MedicationReminder, error) {
	var out model.MedicationReminder
	if err := c.do(ctx, http.MethodPut, "/api/users/me/medications/"+id, med, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMedication removes medication reminder id
func (c *Client) DeleteMedication(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/users/me/medications/"+id, nil, nil)
}

// GetProfile returns the signed-in user's profile
func (c *Client) GetProfile(ctx context.Context) (*model.UserProfile, error) {
	var out model.UserProfile
	if err := c.do(ctx, http.MethodGet, "/api/users/me/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile merges patch into the stored profile
func (c *Client) UpdateProfile(ctx context.Context, patch model.UserProfile) (*model.UserProfile, error) {
	var out model.UserProfile
	if err := c.do(ctx, http.MethodPut, "/api/users/me/profile", patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterDeviceToken stores the device push token for the signed-in user
func (c *Client) RegisterDeviceToken(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPut, "/api/users/me/device-token", map[string]string{"token": token}, nil)
}

// ExportData downloads everything stored for the signed-in user
func (c *Client) ExportData(ctx context.Context) (*model.UserDataExport, error) {
	var out model.UserDataExport
	if err := c.do(ctx, http.MethodGet, "/api/users/me/export", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EraseAccount deletes everything stored for the signed-in user
func (c *Client) EraseAccount(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/users/me", nil, nil)
}
