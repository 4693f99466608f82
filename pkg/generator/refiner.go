package generator

import (
	"context"
	"fmt"
	"strings"
)

// refineInstruction はプロンプト清書の指示テンプレートです。
// 前置きや引用符を出力させないよう制約しています。
const refineInstruction = `You are a prompt engineer for an image generation model.
Rewrite the user's idea into a single detailed English prompt describing subject, style, lighting, and composition.

Rules:
- Output only the rewritten prompt, without quotes or explanations.
- Keep the user's intent and do not introduce new subjects.

User's idea: %s`

// PromptRefiner は短い下書きを画像生成向けの詳細なプロンプトへ清書します。
// 生成フローからは独立しており、利用者が明示的に要求した場合のみ動きます。
type PromptRefiner struct {
	model   TextModel
	modelID string
}

// NewPromptRefiner は依存関係を注入して PromptRefiner を初期化します。
func NewPromptRefiner(model TextModel, modelID string) (*PromptRefiner, error) {
	if model == nil {
		return nil, fmt.Errorf("model is required")
	}
	if modelID == "" {
		return nil, fmt.Errorf("modelID is required")
	}

	return &PromptRefiner{model: model, modelID: modelID}, nil
}

// Refine は下書きを清書して返します。
func (r *PromptRefiner) Refine(ctx context.Context, draft string) (string, error) {
	draft = strings.TrimSpace(draft)
	if draft == "" {
		return "", fmt.Errorf("下書きプロンプトが空です")
	}

	refined, err := r.model.GenerateText(ctx, r.modelID, fmt.Sprintf(refineInstruction, draft))
	if err != nil {
		return "", fmt.Errorf("プロンプト清書に失敗しました: %w", err)
	}

	refined = strings.TrimSpace(refined)
	if refined == "" {
		return "", fmt.Errorf("清書結果が空でした")
	}
	return refined, nil
}
