// Package main runs the bot as a plain HTTP server for local development.
// Configuration comes from the environment, optionally via a .env file.
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Yuito3784/recbook/internal/analyzer"
	"github.com/Yuito3784/recbook/internal/boot"
	"github.com/Yuito3784/recbook/internal/bot"
	"github.com/Yuito3784/recbook/internal/card"
	"github.com/Yuito3784/recbook/internal/chat"
	"github.com/Yuito3784/recbook/internal/lineapi"
	"github.com/Yuito3784/recbook/internal/logging"
)

func main() {
	initStart := time.Now()
	if err := godotenv.Load(); err != nil {
		// Optional in local dev; the environment may already be populated.
		log.Debug().Err(err).Msg("No .env file loaded")
	}
	logging.Init()

	cfg, err := boot.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()
	geminiClient, err := chat.NewGeminiClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	lineClient := lineapi.NewClient(cfg.ChannelAccessToken)
	coverAnalyzer := analyzer.New(chat.VisionGenerator(geminiClient, cfg.ModelName))
	renderer := card.NewRenderer(cfg.AffiliateTag)
	handler := bot.New(cfg.ChannelSecret, lineClient, coverAnalyzer, renderer)

	addr := ":" + logging.EnvOrDefault("PORT", "8080")

	mux := http.NewServeMux()
	mux.Handle("/api/index", handler)

	logging.NewStartupLogger("recbook-server").
		Config("model", cfg.ModelName).
		Config("affiliateTag", cfg.AffiliateTag).
		Config("addr", addr).
		InitDuration(time.Since(initStart)).
		Log()

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
