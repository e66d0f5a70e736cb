// Package main provides a CLI for running the book-cover analysis pipeline
// against a local image file, without going through LINE. Useful for tuning
// prompts and strategies before deploying.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Yuito3784/recbook/internal/analyzer"
	"github.com/Yuito3784/recbook/internal/boot"
	"github.com/Yuito3784/recbook/internal/card"
	"github.com/Yuito3784/recbook/internal/chat"
	"github.com/Yuito3784/recbook/internal/logging"
)

var (
	imageFlag    string
	strategyFlag int
	modelFlag    string
	tagFlag      string
	cardFlag     bool
)

var rootCmd = &cobra.Command{
	Use:   "recbook-cli",
	Short: "Analyze a book-cover image and print the generated pitch",
	Long: `recbook-cli runs the same analysis pipeline as the webhook bot against a
local image file: the cover is sent to Gemini with one persuasion strategy,
and the parsed pitch is printed together with the affiliate purchase URL.

Examples:
  recbook-cli --image cover.jpg
  recbook-cli -i cover.jpg --strategy 2          # pin the third strategy
  recbook-cli -i cover.jpg --model gemini-2.5-pro
  recbook-cli -i cover.jpg --card                # also print the Flex card JSON`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().StringVarP(&imageFlag, "image", "i", "", "Path to the book-cover image (required)")
	rootCmd.Flags().IntVarP(&strategyFlag, "strategy", "s", -1, "Strategy index to pin (-1 = uniform random)")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", chat.DefaultModelName, "Gemini model to use")
	rootCmd.Flags().StringVarP(&tagFlag, "tag", "t", boot.DefaultAffiliateTag, "Affiliate tag for the purchase URL")
	rootCmd.Flags().BoolVar(&cardFlag, "card", false, "Print the rendered Flex card JSON as well")
	rootCmd.MarkFlagRequired("image")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	logging.Init()

	apiKey := os.Getenv(boot.EnvGeminiAPIKey)
	if apiKey == "" {
		log.Fatal().Str("envVar", boot.EnvGeminiAPIKey).Msg("Gemini API key is required")
	}

	image, err := os.ReadFile(imageFlag)
	if err != nil {
		log.Fatal().Err(err).Str("path", imageFlag).Msg("Failed to read image file")
	}

	if strategyFlag >= len(analyzer.DefaultStrategies) {
		log.Fatal().
			Int("strategy", strategyFlag).
			Int("available", len(analyzer.DefaultStrategies)).
			Msg("Strategy index out of range")
	}

	ctx := context.Background()
	client, err := chat.NewGeminiClient(ctx, apiKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	opts := []analyzer.Option{}
	if strategyFlag >= 0 {
		pinned := analyzer.DefaultStrategies[strategyFlag]
		log.Info().Str("angle", pinned.Angle).Msg("Strategy pinned")
		opts = append(opts, analyzer.WithSelector(func([]analyzer.Strategy) analyzer.Strategy {
			return pinned
		}))
	}

	a := analyzer.New(chat.VisionGenerator(client, modelFlag), opts...)
	result, err := a.Analyze(ctx, image)
	if err != nil {
		log.Fatal().Err(err).Msg("Analysis failed")
	}

	renderer := card.NewRenderer(tagFlag)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal result")
	}
	fmt.Println(string(out))
	fmt.Println()
	fmt.Println("Purchase URL:", renderer.PurchaseURL(result.SearchKeyword))

	if cardFlag {
		cardJSON, err := json.MarshalIndent(renderer.Bubble(result), "", "  ")
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to marshal card")
		}
		fmt.Println()
		fmt.Println(string(cardJSON))
	}
}
