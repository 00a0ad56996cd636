package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/fieldproof/tradecheck/internal/domain/inference"
	"github.com/fieldproof/tradecheck/internal/infra/ai/prompt"
)

const maxTokens = 2048

const defaultModel = "gpt-4o"

type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

// AnalyzePhoto runs the vision call for one photo (or a before/after pair)
// and returns the schema-validated findings.
func (c *Client) AnalyzePhoto(ctx context.Context, req inference.AnalyzeRequest) (*inference.Findings, error) {
	user := prompt.AnalyzeUserPrompt(req.WorkType, req.Jurisdiction, req.UserDescription, len(req.PhotoURLs) > 1)
	raw, err := c.complete(ctx, prompt.AnalyzeSystemPrompt(), user, req.PhotoURLs)
	if err != nil {
		return nil, err
	}
	return decodeFindings(ctx, raw)
}

// RecheckPhoto runs the reconciliation call over the before/after pair.
func (c *Client) RecheckPhoto(ctx context.Context, req inference.RecheckRequest) (*inference.Reconciliation, error) {
	user := prompt.RecheckUserPrompt(req.OriginalViolations, req.Jurisdiction, req.UserDescription)
	urls := make([]string, 0, 2)
	if req.BeforePhotoURL != "" {
		urls = append(urls, req.BeforePhotoURL)
	}
	urls = append(urls, req.AfterPhotoURL)
	raw, err := c.complete(ctx, prompt.RecheckSystemPrompt(), user, urls)
	if err != nil {
		return nil, err
	}
	return decodeReconciliation(ctx, raw)
}

func (c *Client) complete(ctx context.Context, system, user string, photoURLs []string) (string, error) {
	model := c.Model
	if model == "" {
		model = defaultModel
	}

	parts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: user},
	}
	for _, url := range photoURLs {
		parts = append(parts, openai.ChatMessagePart{
			Type:     openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{URL: url, Detail: openai.ImageURLDetailAuto},
		})
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("%v: %w", err, inference.ErrQuotaExceeded)
		}
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response: %w", inference.ErrParse)
	}

	return resp.Choices[0].Message.Content, nil
}
