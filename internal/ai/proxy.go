// Package ai sends prompts to the configured generative model and normalizes its replies.
package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vcscsvcscs/healthscope/internal/apperr"
	"go.uber.org/zap"
)

// Options tunes a single generation request
type Options struct {
	// ExpectJSON asks the model for a JSON reply and validates it
	ExpectJSON bool
	// JSONArray marks a JSON reply whose top-level value is an array
	JSONArray bool
}

// Generator is a generative model backend. Implementations make exactly one attempt per call.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// Operation names an assistant feature for logging, metrics and error messages
type Operation string

const (
	OperationAnalyzeVitals  Operation = "analyze_vitals"
	OperationRecommendMood  Operation = "recommend_activities"
	OperationChat           Operation = "chat"
	OperationNearbyHospital Operation = "nearby_hospitals"
)

// FailureMessage is the user-facing message for a failed call
func (o Operation) FailureMessage() string {
	switch o {
	case OperationAnalyzeVitals:
		return "Failed to analyze vital signs. Please check your connection and try again."
	case OperationRecommendMood:
		return "Failed to generate activity recommendations. Please check your connection and try again."
	case OperationChat:
		return "I'm experiencing some technical difficulties. Please try again in a moment."
	case OperationNearbyHospital:
		return "Failed to find nearby hospitals. Please check your connection and try again."
	default:
		return "The AI service is unavailable. Please try again."
	}
}

// SchemaMessage is the user-facing message when the model reply is malformed
const SchemaMessage = "The assistant returned an unexpected response. Please try again."

// ErrEmptyResponse is returned when the model produced no text
var ErrEmptyResponse = errors.New("empty response from model")

// Recorder receives one observation per model call
type Recorder interface {
	ObserveAI(operation, outcome string, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveAI(string, string, time.Duration) {}

// Proxy wraps a Generator with error normalization, logging and metrics.
// It never retries.
type Proxy struct {
	gen      Generator
	recorder Recorder
	logger   *zap.Logger
}

// NewProxy creates a Proxy. A nil recorder disables metrics.
func NewProxy(gen Generator, recorder Recorder, logger *zap.Logger) *Proxy {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Proxy{
		gen:      gen,
		recorder: recorder,
		logger:   logger,
	}
}

// Invoke sends prompt once and returns the reply text.
// Transport failures and empty replies become apperr.KindAITransport.
// With ExpectJSON, the JSON value is taken out of markdown fences or surrounding
// prose and a reply without one becomes apperr.KindAISchema.
func (p *Proxy) Invoke(ctx context.Context, op Operation, prompt string, opts Options) (string, error) {
	start := time.Now()

	text, err := p.gen.Generate(ctx, prompt, opts)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyResponse
	}
	if err != nil {
		p.finish(op, "transport_error", start, zap.Error(err))
		return "", apperr.AITransport(op.FailureMessage(), err)
	}

	text = strings.TrimSpace(text)
	if opts.ExpectJSON {
		cleaned, ok := ExtractJSON(text)
		if !ok {
			p.finish(op, "schema_error", start, zap.Int("response_length", len(text)))
			return "", apperr.AISchema(SchemaMessage, errors.New("model reply is not valid JSON"))
		}
		text = cleaned
	}

	p.finish(op, "ok", start, zap.Int("response_length", len(text)))
	return text, nil
}

func (p *Proxy) finish(op Operation, outcome string, start time.Time, extra ...zap.Field) {
	duration := time.Since(start)
	p.recorder.ObserveAI(string(op), outcome, duration)

	fields := append([]zap.Field{
		zap.String("operation", string(op)),
		zap.String("outcome", outcome),
		zap.Duration("duration", duration),
	}, extra...)

	if outcome == "ok" {
		p.logger.Info("AI request completed", fields...)
		return
	}
	p.logger.Error("AI request failed", fields...)
}
