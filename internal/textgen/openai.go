package textgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const openAIDefaultModel = "gpt-4o"

var openAIStatusPattern = regexp.MustCompile(`status code: (\d{3})`)

// OpenAIGenerator calls the OpenAI chat completions API through langchaingo.
// BaseURL may point at any OpenAI-compatible endpoint.
type OpenAIGenerator struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Client    *http.Client

	once    sync.Once
	llm     llms.Model
	initErr error
}

func (o *OpenAIGenerator) Name() string {
	return fmt.Sprintf("OpenAI (%s)", o.model())
}

func (o *OpenAIGenerator) model() string {
	if o.Model == "" {
		return openAIDefaultModel
	}
	return o.Model
}

func (o *OpenAIGenerator) init() {
	opts := []openai.Option{
		openai.WithToken(o.APIKey),
		openai.WithModel(o.model()),
	}
	if o.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(strings.TrimRight(o.BaseURL, "/")))
	}
	if o.Client != nil {
		opts = append(opts, openai.WithHTTPClient(o.Client))
	}
	o.llm, o.initErr = openai.New(opts...)
}

func (o *OpenAIGenerator) Generate(ctx context.Context, systemPrompt, prompt string) (string, error) {
	o.once.Do(o.init)
	if o.initErr != nil {
		return "", fmt.Errorf("openai: create client: %w", o.initErr)
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	resp, err := o.llm.GenerateContent(ctx, messages, llms.WithMaxTokens(maxTokensOrDefault(o.MaxTokens)))
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices: %w", ErrEmptyResponse)
	}

	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return "", fmt.Errorf("openai: %w", ErrEmptyResponse)
	}
	return text, nil
}

func (o *OpenAIGenerator) Available() bool {
	return o.APIKey != ""
}

// langchaingo reports HTTP failures as plain strings; lift the status code
// back out so retry classification works the same as for the other backends.
func classifyOpenAIError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("openai: %w", err)
	}
	if m := openAIStatusPattern.FindStringSubmatch(err.Error()); m != nil {
		code, _ := strconv.Atoi(m[1])
		return &StatusError{Provider: "openai", Code: code, Message: err.Error()}
	}
	return fmt.Errorf("openai: %w", err)
}
