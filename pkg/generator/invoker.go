package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/avireal12/Visionary-ai-v2/pkg/imgutil"
	"google.golang.org/genai"
)

// responseModalities は配備時定数です。IMAGE 単独の要求はプロバイダが
// 画像を返さなくなるため、TEXT と IMAGE の両方を常に指定します。
var responseModalities = []string{"TEXT", "IMAGE"}

// SafetyPolicy は安全フィルターの強度を表す配備時ポリシーです。
// リクエストごとの切り替えはできません。
type SafetyPolicy string

const (
	SafetyBlockNone           SafetyPolicy = "block_none"
	SafetyBlockOnlyHigh       SafetyPolicy = "block_only_high"
	SafetyBlockMediumAndAbove SafetyPolicy = "block_medium_and_above"
	SafetyBlockLowAndAbove    SafetyPolicy = "block_low_and_above"
)

// DefaultSafetyPolicy は未指定時のポリシーです。
const DefaultSafetyPolicy = SafetyBlockMediumAndAbove

// safetyCategories はしきい値を適用する害カテゴリの固定リストです。
var safetyCategories = []genai.HarmCategory{
	genai.HarmCategoryHarassment,
	genai.HarmCategoryHateSpeech,
	genai.HarmCategorySexuallyExplicit,
	genai.HarmCategoryDangerousContent,
}

// GeminiModel は google.golang.org/genai を使った ModelInvoker / TextModel の実装です。
type GeminiModel struct {
	client *genai.Client
	safety []*genai.SafetySetting
}

// NewGeminiModel は genai クライアントと安全ポリシーから GeminiModel を初期化します。
func NewGeminiModel(client *genai.Client, policy SafetyPolicy) (*GeminiModel, error) {
	if client == nil {
		return nil, fmt.Errorf("client is required")
	}
	settings, err := safetySettings(policy)
	if err != nil {
		return nil, err
	}
	return &GeminiModel{client: client, safety: settings}, nil
}

// ParseSafetyPolicy は設定値文字列を SafetyPolicy に変換します。
// 空文字は既定ポリシーになります。
func ParseSafetyPolicy(s string) (SafetyPolicy, error) {
	switch p := SafetyPolicy(s); p {
	case SafetyBlockNone, SafetyBlockOnlyHigh, SafetyBlockMediumAndAbove, SafetyBlockLowAndAbove:
		return p, nil
	case "":
		return DefaultSafetyPolicy, nil
	}
	return "", fmt.Errorf("不明な安全ポリシーです: %s", s)
}

func safetySettings(policy SafetyPolicy) ([]*genai.SafetySetting, error) {
	var threshold genai.HarmBlockThreshold
	switch policy {
	case SafetyBlockNone:
		threshold = genai.HarmBlockThresholdBlockNone
	case SafetyBlockOnlyHigh:
		threshold = genai.HarmBlockThresholdBlockOnlyHigh
	case SafetyBlockMediumAndAbove, "":
		threshold = genai.HarmBlockThresholdBlockMediumAndAbove
	case SafetyBlockLowAndAbove:
		threshold = genai.HarmBlockThresholdBlockLowAndAbove
	default:
		return nil, fmt.Errorf("不明な安全ポリシーです: %s", policy)
	}

	settings := make([]*genai.SafetySetting, 0, len(safetyCategories))
	for _, category := range safetyCategories {
		settings = append(settings, &genai.SafetySetting{Category: category, Threshold: threshold})
	}
	return settings, nil
}

// Invoke はモデルを1回だけ呼び出し、応答を Envelope に写し取ります。
// リトライもストリーミングも行いません。タイムアウトは ctx に委ねます。
func (g *GeminiModel) Invoke(ctx context.Context, req ModelRequest) (*Envelope, error) {
	config := &genai.GenerateContentConfig{
		ResponseModalities: responseModalities,
		SafetySettings:     g.safety,
	}

	contents := genai.Text(req.Prompt)
	if req.Reference != nil {
		parts := []*genai.Part{genai.NewPartFromText(req.Prompt), req.Reference}
		contents = []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	}

	slog.DebugContext(ctx, "モデル呼び出しを実行します", "model", req.Model, "with_reference", req.Reference != nil)

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			// プロバイダが応答として返したエラーは通信失敗ではなく分類対象
			return envelopeFromAPIError(apiErr), nil
		}
		return nil, err
	}
	return envelopeFromResponse(resp), nil
}

// GenerateText はテキスト専用の1往復呼び出しです。プロンプト清書が利用します。
func (g *GeminiModel) GenerateText(ctx context.Context, model string, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("モデルからテキスト応答が得られませんでした")
	}
	return text, nil
}

func envelopeFromAPIError(apiErr genai.APIError) *Envelope {
	return &Envelope{
		Error: &ProviderError{
			Message: apiErr.Message,
			Status:  apiErr.Status,
			Code:    apiErr.Code,
		},
	}
}

// envelopeFromResponse は SDK の応答を防御的に写し取ります。
// フィールドの有無をそのまま保存し、解釈は Validate / Classify に委ねます。
func envelopeFromResponse(resp *genai.GenerateContentResponse) *Envelope {
	env := &Envelope{}
	if resp == nil {
		return env
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		env.PromptFeedback = &PromptFeedback{BlockReason: string(resp.PromptFeedback.BlockReason)}
	}

	// nil と空スライスの区別を保存する
	if resp.Candidates != nil {
		env.Candidates = make([]Candidate, 0, len(resp.Candidates))
		for _, cand := range resp.Candidates {
			if cand == nil {
				continue
			}
			env.Candidates = append(env.Candidates, Candidate{
				FinishReason:  string(cand.FinishReason),
				FinishMessage: cand.FinishMessage,
			})
		}
	}

	env.Media = mediaFromCandidates(resp.Candidates)
	return env
}

// mediaFromCandidates は先頭候補から画像パーツを探します。
// 最初の候補のみを利用する現行仕様に合わせています。
func mediaFromCandidates(candidates []*genai.Candidate) *Media {
	if len(candidates) == 0 || candidates[0] == nil || candidates[0].Content == nil {
		return nil
	}

	for _, part := range candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.InlineData != nil {
			if len(part.InlineData.Data) == 0 {
				// バイト列が空。URL を持たない Media として分類側へ渡す
				return &Media{}
			}
			url := imgutil.EncodeDataURI(part.InlineData.MIMEType, part.InlineData.Data)
			return &Media{URL: &url}
		}
		if part.FileData != nil && part.FileData.FileURI != "" {
			// data URI ではないため後段の検証が不正メディアとして弾く
			uri := part.FileData.FileURI
			return &Media{URL: &uri}
		}
	}
	return nil
}
