// Package boot provides shared cold-start bootstrap logic for the bot's
// entrypoints: configuration from environment variables, with an SSM
// Parameter Store fallback for secrets when running on Lambda.
package boot

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/Yuito3784/recbook/internal/chat"
)

// DefaultAffiliateTag is the placeholder affiliate tag used when none is
// configured. Replace it in production or every purchase link attributes to
// a dummy associate.
const DefaultAffiliateTag = "dummy-tag-22"

// Environment variable names for the process-wide configuration. Read once
// at startup and never mutated.
const (
	EnvChannelSecret = "LINE_CHANNEL_SECRET"
	EnvAccessToken   = "LINE_CHANNEL_ACCESS_TOKEN"
	EnvGeminiAPIKey  = "GEMINI_API_KEY"
	EnvAffiliateTag  = "AMAZON_ASSOCIATE_TAG"
)

// Config is the immutable process-wide configuration.
type Config struct {
	ChannelSecret      string
	ChannelAccessToken string
	GeminiAPIKey       string
	AffiliateTag       string
	ModelName          string
}

// FromEnv reads the configuration from environment variables only.
// The affiliate tag falls back to DefaultAffiliateTag; everything else is
// required.
func FromEnv() (Config, error) {
	cfg := Config{
		ChannelSecret:      os.Getenv(EnvChannelSecret),
		ChannelAccessToken: os.Getenv(EnvAccessToken),
		GeminiAPIKey:       os.Getenv(EnvGeminiAPIKey),
		AffiliateTag:       os.Getenv(EnvAffiliateTag),
		ModelName:          chat.GetModelName(),
	}
	if cfg.ChannelSecret == "" {
		return Config{}, fmt.Errorf("%s is required", EnvChannelSecret)
	}
	if cfg.ChannelAccessToken == "" {
		return Config{}, fmt.Errorf("%s is required", EnvAccessToken)
	}
	if cfg.GeminiAPIKey == "" {
		return Config{}, fmt.Errorf("%s is required", EnvGeminiAPIKey)
	}
	if cfg.AffiliateTag == "" {
		cfg.AffiliateTag = DefaultAffiliateTag
		log.Warn().Str("tag", cfg.AffiliateTag).Msg("Affiliate tag not configured, using placeholder")
	}
	return cfg, nil
}

// LoadParameter resolves a secret: the env var wins if set; otherwise the
// value is fetched from SSM Parameter Store at the path named by paramEnvVar,
// falling back to defaultParam. Fatals on SSM error, matching the Lambda
// cold-start contract where a missing secret makes the function useless.
func LoadParameter(ctx context.Context, client *ssm.Client, envVar, paramEnvVar, defaultParam string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}

	paramName := os.Getenv(paramEnvVar)
	if paramName == "" {
		paramName = defaultParam
	}

	result, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &paramName,
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		log.Fatal().Err(err).Str("param", paramName).Msg("Failed to read parameter from SSM")
	}

	log.Debug().Str("param", paramName).Msg("Parameter loaded from SSM")
	return *result.Parameter.Value
}
