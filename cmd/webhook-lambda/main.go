// Package main provides the Lambda entry point for the book-cover bot.
//
// This is a single lightweight handler: POST /api/index receives LINE
// webhook deliveries, analysis happens inline in the invocation, and the
// reply goes out before the delivery is acknowledged.
//
// Secrets are loaded at cold start from environment variables, falling back
// to SSM Parameter Store:
//   - /recbook/prod/line-channel-secret
//   - /recbook/prod/line-channel-access-token
//   - /recbook/prod/gemini-api-key
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog/log"

	"github.com/Yuito3784/recbook/internal/analyzer"
	"github.com/Yuito3784/recbook/internal/boot"
	"github.com/Yuito3784/recbook/internal/bot"
	"github.com/Yuito3784/recbook/internal/card"
	"github.com/Yuito3784/recbook/internal/chat"
	"github.com/Yuito3784/recbook/internal/lineapi"
	"github.com/Yuito3784/recbook/internal/logging"
)

var botHandler *bot.Bot

func init() {
	initStart := time.Now()
	logging.Init()

	ctx := context.Background()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}
	ssmClient := ssm.NewFromConfig(awsCfg)

	channelSecret := boot.LoadParameter(ctx, ssmClient,
		boot.EnvChannelSecret, "SSM_CHANNEL_SECRET_PARAM", "/recbook/prod/line-channel-secret")
	accessToken := boot.LoadParameter(ctx, ssmClient,
		boot.EnvAccessToken, "SSM_ACCESS_TOKEN_PARAM", "/recbook/prod/line-channel-access-token")
	geminiKey := boot.LoadParameter(ctx, ssmClient,
		boot.EnvGeminiAPIKey, "SSM_GEMINI_KEY_PARAM", "/recbook/prod/gemini-api-key")

	affiliateTag := os.Getenv(boot.EnvAffiliateTag)
	if affiliateTag == "" {
		affiliateTag = boot.DefaultAffiliateTag
		log.Warn().Str("tag", affiliateTag).Msg("Affiliate tag not configured, using placeholder")
	}
	modelName := chat.GetModelName()

	geminiClient, err := chat.NewGeminiClient(ctx, geminiKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	lineClient := lineapi.NewClient(accessToken)
	coverAnalyzer := analyzer.New(chat.VisionGenerator(geminiClient, modelName))
	renderer := card.NewRenderer(affiliateTag)
	botHandler = bot.New(channelSecret, lineClient, coverAnalyzer, renderer)

	logging.NewStartupLogger("webhook-lambda").
		Config("model", modelName).
		Config("affiliateTag", affiliateTag).
		Feature("keyPoints", true).
		InitDuration(time.Since(initStart)).
		Log()
}

func main() {
	mux := http.NewServeMux()
	mux.Handle("/api/index", botHandler)

	adapter := httpadapter.NewV2(mux)
	lambda.Start(adapter.ProxyWithContext)
}
