package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/vcscsvcscs/healthscope/internal/ai"
	"github.com/vcscsvcscs/healthscope/internal/config"
	"github.com/vcscsvcscs/healthscope/internal/service"
	"github.com/vcscsvcscs/healthscope/pkg/model"
)

func main() {
	// Initialize logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := config.AIConfig{
		Provider:   envOr("AI_PROVIDER", config.ProviderGemini),
		Model:      os.Getenv("AI_MODEL"),
		APIKey:     firstEnv("AI_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY", "AZURE_OPENAI_API_KEY"),
		Endpoint:   firstEnv("AI_ENDPOINT", "AZURE_OPENAI_ENDPOINT"),
		APIVersion: os.Getenv("AZURE_OPENAI_API_VERSION"),
	}
	if cfg.Model == "" && cfg.Provider == config.ProviderGemini {
		cfg.Model = ai.DefaultGeminiModel
	}
	if cfg.APIKey == "" {
		logger.Fatal("Missing AI credentials. Set AI_API_KEY or the provider specific key")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gen, err := ai.NewGenerator(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create AI client", zap.Error(err))
	}
	assistant := service.NewAssistantService(ai.NewProxy(gen, nil, logger), logger)

	heartRate, systolic, diastolic := 88.0, 135.0, 85.0
	checks := []struct {
		name string
		run  func() (string, error)
	}{
		{"vitals analysis", func() (string, error) {
			r, err := assistant.AnalyzeVitals(ctx, model.VitalsReading{
				HeartRate: &heartRate, SystolicBP: &systolic, DiastolicBP: &diastolic,
			}, model.LocaleEnglish)
			if err != nil {
				return "", err
			}
			return r.Analysis, nil
		}},
		{"mood recommendations", func() (string, error) {
			r, err := assistant.RecommendActivities(ctx, model.MoodEntry{Mood: model.MoodStressed, Description: "deadline at work"}, model.LocaleHindi)
			if err != nil {
				return "", err
			}
			return r.Recommendations, nil
		}},
		{"chat", func() (string, error) {
			r, err := assistant.Chat(ctx, "How much water should I drink daily?", nil, model.LocaleEnglish)
			if err != nil {
				return "", err
			}
			return r.Response, nil
		}},
		{"nearby hospitals", func() (string, error) {
			r, err := assistant.NearbyHospitals(ctx, model.Coordinates{Latitude: 19.076, Longitude: 72.8777}, model.LocaleEnglish)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d hospitals", len(r.Hospitals)), nil
		}},
	}

	failed := 0
	for _, check := range checks {
		logger.Info("=== Testing "+check.name+" ===", zap.String("provider", cfg.Provider))
		start := time.Now()
		out, err := check.run()
		if err != nil {
			failed++
			logger.Error("Check failed", zap.String("check", check.name), zap.Error(err))
			continue
		}
		logger.Info("Check passed",
			zap.String("check", check.name),
			zap.Duration("duration", time.Since(start)),
			zap.Int("response_length", len(out)),
			zap.String("response", out),
		)
	}

	logger.Info("=== All checks completed ===", zap.Int("failed", failed))
	if failed > 0 {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
