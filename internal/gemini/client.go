// Package gemini implements the integration with Google's Gemini API. It
// provides the text-generation capabilities behind digests, user profiles,
// and support answers.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/tldrbot/tldrbot/internal/config"
	"github.com/tldrbot/tldrbot/internal/database"
	"github.com/tldrbot/tldrbot/internal/text"
)

// Client defines the interface for AI operations used throughout the
// application. It is a black-box text-generation capability: calls may fail or
// be slow, and callers decide how failures surface.
type Client interface {
	// GenerateDigest writes a prose summary of the given messages. The hours
	// and scheduled flag only select the header framing.
	GenerateDigest(ctx context.Context, messages []database.Message, hours int, scheduled bool) (string, error)

	// GenerateProfile writes a personality profile of a user from their
	// messages.
	GenerateProfile(ctx context.Context, username string, messages []database.Message) (string, error)

	// GenerateAnswer answers a question using the given messages as context.
	GenerateAnswer(ctx context.Context, question string, messages []database.Message) (string, error)
}

type sdkClient struct {
	genaiClient      *genai.Client
	log              *slog.Logger
	contentConfig    *genai.GenerateContentConfig
	defaultModelName string
	maxRetries       int
	retryDelay       time.Duration
}

// NewClient creates a new Gemini AI client with the provided configuration.
// It initializes the connection to the Gemini API and sets up necessary parameters.
func NewClient(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	baseCfg := &genai.GenerateContentConfig{
		Temperature: &cfg.Temperature,

		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
		},
	}

	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized successfully", "model", cfg.ModelName)
	return &sdkClient{
		genaiClient:      gi,
		log:              logger,
		contentConfig:    baseCfg,
		defaultModelName: cfg.ModelName,
		maxRetries:       cfg.MaxRetries,
		retryDelay:       time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}, nil
}

func (c *sdkClient) generateContentWithRetries(ctx context.Context, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
	var resp *genai.GenerateContentResponse
	var err error

	for i := 0; i <= c.maxRetries; i++ {
		resp, err = c.genaiClient.Models.GenerateContent(ctx, c.defaultModelName, contents, c.contentConfig)
		if err == nil {
			return resp, nil
		}

		c.log.WarnContext(ctx, "Gemini API call failed, checking for retry", "attempt", i+1, "max_retries", c.maxRetries, "error", err)

		var apiErr *genai.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == 500 || apiErr.Code == 503) { // Retriable HTTP codes
			if i < c.maxRetries {
				c.log.InfoContext(ctx, "Retrying Gemini API call due to retriable APIError", "delay", c.retryDelay, "code", apiErr.Code)
				time.Sleep(c.retryDelay)
				continue
			}
			c.log.ErrorContext(ctx, "Gemini API call failed after max retries with APIError", "error", err, "code", apiErr.Code)
			return nil, fmt.Errorf("gemini API call failed after %d retries (APIError code %d): %w", c.maxRetries, apiErr.Code, err)
		}

		c.log.ErrorContext(ctx, "Gemini API call failed with non-retriable error", "error", err)
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}

	return nil, err
}

func (c *sdkClient) generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := c.generateContentWithRetries(ctx, contents)
	if err != nil {
		return "", err
	}

	return c.extractTextFromResponse(ctx, resp)
}

// GenerateDigest writes a prose summary of a chat window.
func (c *sdkClient) GenerateDigest(ctx context.Context, messages []database.Message, hours int, scheduled bool) (string, error) {
	c.log.DebugContext(ctx, "Generating digest", "message_count", len(messages), "hours", hours, "scheduled", scheduled)

	header := fmt.Sprintf("📋 *TLDR — Last %dh*", hours)
	if scheduled {
		header = "📰 *Daily Digest*"
	}

	prompt := fmt.Sprintf(DigestPrompt, header, hours, text.FormatTranscript(messages))

	out, err := c.generate(ctx, prompt)
	if err != nil {
		c.log.ErrorContext(ctx, "Gemini digest generation failed", "error", err)
		return "", fmt.Errorf("failed to generate digest: %w", err)
	}
	return out, nil
}

// GenerateProfile writes a personality profile from a user's messages.
func (c *sdkClient) GenerateProfile(ctx context.Context, username string, messages []database.Message) (string, error) {
	c.log.DebugContext(ctx, "Generating profile", "username", username, "message_count", len(messages))

	prompt := fmt.Sprintf(ProfilePrompt, username, text.FormatTranscript(messages))

	out, err := c.generate(ctx, prompt)
	if err != nil {
		c.log.ErrorContext(ctx, "Gemini profile generation failed", "username", username, "error", err)
		return "", fmt.Errorf("failed to generate profile: %w", err)
	}
	return out, nil
}

// GenerateAnswer answers a question from chat history.
func (c *sdkClient) GenerateAnswer(ctx context.Context, question string, messages []database.Message) (string, error) {
	c.log.DebugContext(ctx, "Generating answer", "message_count", len(messages))

	prompt := fmt.Sprintf(AnswerPrompt, question, text.FormatTranscript(messages))

	out, err := c.generate(ctx, prompt)
	if err != nil {
		c.log.ErrorContext(ctx, "Gemini answer generation failed", "error", err)
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	return out, nil
}

func (c *sdkClient) extractTextFromResponse(ctx context.Context, resp *genai.GenerateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reasonMsg := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reasonMsg = resp.PromptFeedback.BlockReasonMessage
		}
		c.log.ErrorContext(ctx, "Gemini request blocked", "reason", reasonMsg)
		return "", fmt.Errorf("generation blocked by safety filter: %s", reasonMsg)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
			finishReason = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		c.log.WarnContext(ctx, "Gemini response missing candidates or content", "finish_reason", finishReason)
		return "", fmt.Errorf("generation returned no content, finish reason: %s", finishReason)
	}

	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return "", fmt.Errorf("generation returned empty text")
	}

	return out, nil
}
