package transcribe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"distill/internal/language"
	"distill/internal/services"
)

const defaultTranscribeTimeout = 300 * time.Second

// OpenAIConfig captures the runtime settings for an OpenAI-compatible
// speech-to-text endpoint (OpenAI itself, or a local Whisper server).
type OpenAIConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	TimeoutSeconds int
}

// OpenAIService transcribes audio through the OpenAI audio transcription API.
type OpenAIService struct {
	client *openai.Client
	model  string
}

// NewOpenAIService constructs a transcription service from the supplied
// configuration. Local Whisper servers usually accept any non-empty key.
func NewOpenAIService(cfg OpenAIConfig) (*OpenAIService, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "setup", "transcription model required", nil)
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		apiKey = "unused"
	}
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	timeout := defaultTranscribeTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenAIService{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}, nil
}

func (s *OpenAIService) Transcribe(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.AudioPath) == "" {
		return Result{}, services.Wrap(services.ErrValidation, "transcribe", "request", "empty audio path", nil)
	}

	audioReq := openai.AudioRequest{
		Model:    s.model,
		FilePath: req.AudioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	}
	if lang := language.ToISO2(req.Language); lang != "" {
		audioReq.Language = lang
	}

	resp, err := s.client.CreateTranscription(ctx, audioReq)
	if err != nil {
		return Result{}, classifyOpenAIError(req.Index, err)
	}

	result := Result{
		Text:            strings.TrimSpace(resp.Text),
		Language:        resp.Language,
		DurationSeconds: resp.Duration,
	}
	for _, seg := range resp.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		result.Segments = append(result.Segments, Segment{
			StartSeconds: seg.Start,
			EndSeconds:   seg.End,
			Text:         text,
		})
	}
	return result, nil
}

func classifyOpenAIError(index int, err error) error {
	op := fmt.Sprintf("chunk %d", index)

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		marker := services.ErrPermanent
		if retryableStatus(apiErr.HTTPStatusCode) {
			marker = services.ErrTransient
		}
		msg := fmt.Sprintf("transcription API http %d", apiErr.HTTPStatusCode)
		return services.Wrap(marker, "transcribe", op, msg, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		marker := services.ErrPermanent
		if retryableStatus(reqErr.HTTPStatusCode) {
			marker = services.ErrTransient
		}
		msg := fmt.Sprintf("transcription request http %d", reqErr.HTTPStatusCode)
		return services.Wrap(marker, "transcribe", op, msg, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, "transcribe", op, "transcription timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	// Network-level failures without a status are assumed transient.
	return services.Wrap(services.ErrTransient, "transcribe", op, "transcription request failed", err)
}

func retryableStatus(status int) bool {
	switch {
	case status == http.StatusRequestTimeout:
		return true
	case status == http.StatusTooManyRequests:
		return true
	case status >= http.StatusInternalServerError:
		return true
	default:
		return false
	}
}
