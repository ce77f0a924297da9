package translate

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
)

const (
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-haiku-4-5-20251001"
)

// ErrMissingAPIKey は、LLMプロバイダにAPIキーが設定されていないことを表します。
var ErrMissingAPIKey = errors.New("翻訳プロバイダのAPIキーが設定されていません")

// systemPrompt は、1文だけを訳して余計な説明を付けないようモデルに指示します。
func systemPrompt(sourceLang, targetLang string) string {
	return fmt.Sprintf(
		"You are a translation engine. Translate the user's text from %s to %s. "+
			"Reply with the translation only, without quotes or commentary. Keep astronomical names accurate.",
		sourceLang, targetLang)
}

// OpenAI は、OpenAI互換のチャット補完APIで翻訳する Translator です。
type OpenAI struct {
	client     openai.Client
	model      string
	sourceLang string
}

// NewOpenAI は、新しい OpenAI を生成します。endpoint が空の場合は公式APIを使います。
func NewOpenAI(apiKey, model, endpoint, sourceLang string) (*OpenAI, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrMissingAPIKey)
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(apiKey),
		openaioption.WithMaxRetries(0),
	}
	if normalized := normalizeOpenAIBaseURL(endpoint); normalized != "" {
		opts = append(opts, openaioption.WithBaseURL(normalized))
	}
	return &OpenAI{client: openai.NewClient(opts...), model: model, sourceLang: sourceLang}, nil
}

func (o *OpenAI) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt(o.sourceLang, targetLang)),
			openai.UserMessage(text),
		},
	})
	if err != nil {
		return "", fmt.Errorf("OpenAIでの翻訳に失敗しました: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("OpenAIの応答に候補がありません")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// normalizeOpenAIBaseURL は、エンドポイントのパスが /v1 で終わるように補います。
func normalizeOpenAIBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return ""
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.TrimRight(base, "/")
	}
	path := strings.TrimRight(parsed.Path, "/")
	if !strings.HasSuffix(path, "/v1") {
		path += "/v1"
	}
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}

// Anthropic は、Anthropic Messages APIで翻訳する Translator です。
type Anthropic struct {
	client     anthropic.Client
	model      string
	sourceLang string
}

// NewAnthropic は、新しい Anthropic を生成します。
func NewAnthropic(apiKey, model, endpoint, sourceLang string) (*Anthropic, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic: %w", ErrMissingAPIKey)
	}
	if model == "" {
		model = DefaultAnthropicModel
	}
	opts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(apiKey),
		anthropicoption.WithMaxRetries(0),
	}
	if endpoint = strings.TrimSpace(endpoint); endpoint != "" {
		opts = append(opts, anthropicoption.WithBaseURL(strings.TrimRight(endpoint, "/")))
	}
	return &Anthropic{client: anthropic.NewClient(opts...), model: model, sourceLang: sourceLang}, nil
}

func (a *Anthropic) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 1024,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt(a.sourceLang, targetLang)}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("Anthropicでの翻訳に失敗しました: %w", err)
	}
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("Anthropicの応答にテキストがありません")
	}
	return strings.TrimSpace(sb.String()), nil
}
