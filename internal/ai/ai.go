package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arpxspace/recommit/internal/config"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Rewriter is the capability the analyzer needs from a text-generation
// service: rewrite a message it judged lazy, or write one from the diff
// alone. Implementations return raw model text; sanitizing it into a
// single commit line is the caller's job.
type Rewriter interface {
	RewriteMessage(ctx context.Context, diff, message string) (string, error)
	GenerateFromDiff(ctx context.Context, diff string) (string, error)
}

// NewClient creates a Rewriter for the configured provider.
func NewClient(cfg *config.Config) (Rewriter, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.OpenAIAPIKey), nil
	case config.ProviderOllama:
		return NewOllamaClient(cfg.OllamaURL, cfg.OllamaModel), nil
	default:
		if cfg.OpenAIAPIKey != "" {
			return NewOpenAIClient(cfg.OpenAIAPIKey), nil
		}
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

// GenerateSchema creates a JSON schema for a given type T.
// This is used for OpenAI Structured Outputs.
func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	return schema
}

const rewriteSystemPrompt = `You are an expert software developer.
Rewrite the user's commit message so it accurately describes the staged changes.
Follow the Conventional Commits specification: <type>(<scope>): <description>.
Allowed types: feat, fix, docs, style, refactor, perf, test, build, ci, chore, revert.

Rules:
1. Respond with a SINGLE line, nothing else.
2. Keep the description under 72 characters.
3. Use the imperative mood ("add", not "added").
4. Do not end with a period.
5. Do not wrap the message in quotes or markdown.

Describe the intent of the change, not a file-by-file recap of the diff.`

const generateSystemPrompt = `You are an expert software developer.
Write a commit message for the staged changes, following the Conventional
Commits specification: <type>(<scope>): <description>.
Allowed types: feat, fix, docs, style, refactor, perf, test, build, ci, chore, revert.

Rules:
1. Respond with a SINGLE line, nothing else.
2. Keep the description under 72 characters.
3. Use the imperative mood ("add", not "added").
4. Do not end with a period.
5. Do not wrap the message in quotes or markdown.`

// --- OpenAI Implementation ---

type OpenAIClient struct {
	client *openai.Client
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{
		client: &client,
	}
}

type SubjectResponse struct {
	Subject string `json:"subject" jsonschema_description:"A single-line commit message subject following the Conventional Commits specification."`
}

// Generate the JSON schema at initialization time
var SubjectResponseSchema = GenerateSchema[SubjectResponse]()

func (c *OpenAIClient) RewriteMessage(ctx context.Context, diff, message string) (string, error) {
	userPrompt := fmt.Sprintf("Original message: %s\n\nStaged diff:\n%s", message, diff)
	return c.complete(ctx, rewriteSystemPrompt, userPrompt)
}

func (c *OpenAIClient) GenerateFromDiff(ctx context.Context, diff string) (string, error) {
	userPrompt := fmt.Sprintf("Staged diff:\n%s", diff)
	return c.complete(ctx, generateSystemPrompt, userPrompt)
}

func (c *OpenAIClient) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "subject_response",
		Description: openai.String("A single-line commit message"),
		Schema:      SubjectResponseSchema,
		Strict:      openai.Bool(true),
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Model: openai.ChatModelGPT4o2024_08_06,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
	})

	if err != nil {
		return "", fmt.Errorf("failed to generate commit message: %w", err)
	}

	return subjectFromChoices(resp.Choices)
}

func subjectFromChoices(choices []openai.ChatCompletionChoice) (string, error) {
	if len(choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}

	content := choices[0].Message.Content
	var result SubjectResponse
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		// Some gateways silently drop the response_format constraint and
		// return plain text; hand it back raw and let the cleaner cope.
		return content, nil
	}

	return result.Subject, nil
}

// --- Ollama Implementation ---

type OllamaClient struct {
	client *openai.Client
	model  string
}

func NewOllamaClient(baseURL, model string) *OllamaClient {
	client := openai.NewClient(
		option.WithBaseURL(normalizeBaseURL(baseURL)),
		option.WithAPIKey("ollama"), // Required but unused by Ollama
	)

	return &OllamaClient{
		client: &client,
		model:  model,
	}
}

// normalizeBaseURL ensures the URL ends with /v1/ for OpenAI compatibility.
// This handles the default "http://localhost:11434" -> "http://localhost:11434/v1/"
func normalizeBaseURL(baseURL string) string {
	if baseURL != "" && baseURL[len(baseURL)-1] != '/' {
		baseURL += "/"
	}
	if len(baseURL) < 3 || baseURL[len(baseURL)-3:] != "v1/" {
		baseURL += "v1/"
	}
	return baseURL
}

func (c *OllamaClient) RewriteMessage(ctx context.Context, diff, message string) (string, error) {
	userPrompt := fmt.Sprintf("Original message: %s\n\nStaged diff:\n%s", message, diff)
	return c.complete(ctx, rewriteSystemPrompt, userPrompt)
}

func (c *OllamaClient) GenerateFromDiff(ctx context.Context, diff string) (string, error) {
	userPrompt := fmt.Sprintf("Staged diff:\n%s", diff)
	return c.complete(ctx, generateSystemPrompt, userPrompt)
}

// complete asks for free-form text; local models are unreliable with
// structured outputs, so the response is whatever the model felt like
// writing and the cleaner downstream deals with it.
func (c *OllamaClient) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Model: c.model,
	})

	if err != nil {
		return "", fmt.Errorf("failed to generate commit message: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
