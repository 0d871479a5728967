package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/nuntius/internal/common"
	"github.com/ternarybob/nuntius/internal/httpclient"
	"github.com/ternarybob/nuntius/internal/models"
)

// Client sends extracted article text to the structured-analysis service
// and validates the response shape. Transport failures ("service
// unreachable") and malformed-content failures ("service answered
// garbage") carry distinct failure kinds so the caller can tell them
// apart.
type Client struct {
	config  *common.AnalysisConfig
	logger  arbor.ILogger
	client  *http.Client
	timeout time.Duration
}

// completionRequest is the chat-style wire body for the completion endpoint
type completionRequest struct {
	Model     string    `json:"model,omitempty"`
	Messages  []message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// completionResponse is the envelope the completion endpoint returns
type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewClient creates an analysis client from configuration
func NewClient(config *common.AnalysisConfig, logger arbor.ILogger) *Client {
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		config:  config,
		logger:  logger,
		client:  httpclient.NewDefaultHTTPClient(timeout),
		timeout: timeout,
	}
}

// Analyze submits the article text and parses the structured analysis out
// of the completion response. A hung call times out and fails this item
// only; the sentiment score range is the service's responsibility and is
// passed through unvalidated.
func (c *Client) Analyze(ctx context.Context, token, text string) (*models.StructuredAnalysis, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload := completionRequest{
		Model: c.config.Model,
		Messages: []message{
			{Role: "system", Content: systemPersona},
			{Role: "user", Content: buildPrompt(text)},
		},
		MaxTokens: c.config.MaxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, models.NewFailure(models.FailureAnalysis, fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, models.NewFailure(models.FailureAnalysis, fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	startTime := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, models.NewFailure(models.FailureAnalysis, fmt.Errorf("analysis request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, models.NewFailure(models.FailureAnalysis, fmt.Errorf("analysis endpoint returned status %d", resp.StatusCode))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, models.NewFailure(models.FailureAnalysis, fmt.Errorf("failed to read response: %w", err))
	}

	var completion completionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return nil, models.NewFailure(models.FailureAnalysis, fmt.Errorf("failed to decode completion envelope: %w", err))
	}
	if len(completion.Choices) == 0 {
		return nil, models.NewFailure(models.FailureAnalysis, fmt.Errorf("completion response contains no choices"))
	}

	content := completion.Choices[0].Message.Content

	var analysis models.StructuredAnalysis
	if err := json.Unmarshal([]byte(content), &analysis); err != nil {
		// The service answered, but not with the requested JSON object.
		// Keep the raw text for diagnostic replay.
		return nil, models.NewMalformedAnalysisFailure(content,
			fmt.Errorf("message content is not a valid analysis object: %w", err))
	}
	analysis.Raw = json.RawMessage(content)

	c.logger.Debug().
		Float64("sentiment_score", analysis.SentimentScore).
		Int("text_length", len(text)).
		Dur("duration", time.Since(startTime)).
		Msg("Analysis completed")

	return &analysis, nil
}
