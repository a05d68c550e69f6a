package classifier

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/models"
)

type openAIResponse struct {
	Sentiment  string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
}

// OpenAIClassifier scores text with a chat completion model. It is
// constructed explicitly and injected by the caller; there is no
// process-wide model handle.
type OpenAIClassifier struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
	limiter     *rate.Limiter
	fallback    *KeywordClassifier
	logger      *zap.Logger
}

// OpenAIOptions configures the model-backed classifier.
type OpenAIOptions struct {
	APIKey string
	// BaseURL overrides the API endpoint; empty means the public API.
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	// Timeout bounds each classification call. A timed-out call is a
	// classifier failure, not a fatal error.
	Timeout time.Duration
	// RequestsPerSecond throttles API traffic. Zero disables throttling.
	RequestsPerSecond float64
}

func NewOpenAIClassifier(opts OpenAIOptions, logger *zap.Logger) *OpenAIClassifier {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	return &OpenAIClassifier{
		client:      openai.NewClientWithConfig(cfg),
		model:       opts.Model,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		timeout:     timeout,
		limiter:     limiter,
		fallback:    NewKeywordClassifier(),
		logger:      logger,
	}
}

const sentimentPrompt = `Classify the sentiment of the following customer support text.
The text may be in any language.

Return the response as a JSON object with this structure:
{
    "sentiment": "positive" | "neutral" | "negative",
    "confidence": 0.0-1.0
}

Text: %TEXT%`

func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{Label: models.LabelNeutral, Confidence: 0}, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return Result{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := strings.Replace(sentimentPrompt, "%TEXT%", PreprocessText(text), 1)

	resp, err := c.client.CreateChatCompletion(
		callCtx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   c.maxTokens,
			Temperature: float32(c.temperature),
		},
	)
	if err != nil {
		c.logger.Warn("Classifier call failed, using keyword fallback", zap.Error(err))
		return c.fallback.Classify(ctx, text)
	}
	if len(resp.Choices) == 0 {
		c.logger.Warn("Classifier returned no choices, using keyword fallback")
		return c.fallback.Classify(ctx, text)
	}

	var parsed openAIResponse
	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		c.logger.Warn("Failed to parse classifier response",
			zap.Error(err),
			zap.String("response", raw))
		return c.fallback.Classify(ctx, text)
	}

	conf := parsed.Confidence
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}

	return Result{Label: models.ParseLabel(parsed.Sentiment), Confidence: conf}, nil
}

// PreprocessText normalizes mentions and URLs the way the sentiment
// model expects: @handles become "@user" and links become "http".
func PreprocessText(text string) string {
	if text == "" {
		return ""
	}

	words := strings.Split(text, " ")
	for i, w := range words {
		if strings.HasPrefix(w, "@") && len(w) > 1 {
			words[i] = "@user"
		} else if strings.HasPrefix(w, "http") {
			words[i] = "http"
		}
	}
	return strings.Join(words, " ")
}
