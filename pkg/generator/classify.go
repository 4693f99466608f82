package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// 候補なし・候補空・画像なしの文言は利用者が原因を切り分けられるよう
// 互いに異なる文字列を維持します。
const (
	detailNoCandidates = "応答に候補が含まれていませんでした。APIキーの有効性、課金状態、APIの有効化を確認してください"
	detailFiltered     = "すべての候補がフィルタリングされました。プロンプトを変えて再度お試しください"
	detailNoImage      = "モデルは正常終了しましたが画像を返しませんでした。プロンプトをより具体的にして再度お試しください"
)

// Classify は検証を通過しなかった Envelope を分類済みエラーへ変換します。
// Validate が結果を返さなかった場合にのみ呼ばれます。
// 完全な応答内容は1件だけ運用ログへ残し、呼び出し元へ返る Detail には
// 生の応答を含めません。
func Classify(ctx context.Context, env *Envelope) *Error {
	gerr := classify(env)
	slog.ErrorContext(ctx, "画像生成応答を結果に変換できませんでした",
		"reason", string(gerr.Reason),
		"detail", gerr.Detail,
		"response", rawEnvelope(env),
	)
	return gerr
}

// classify は優先順位付きの判定本体です。最初に一致した分類だけを採用します。
func classify(env *Envelope) *Error {
	if env == nil {
		return newGenerationError(ReasonNoCandidates, detailNoCandidates)
	}

	// 1. プロバイダのトップレベルエラーが最優先。
	//    設定・課金・クォータの問題はここに現れる
	if env.Error != nil {
		return newGenerationError(ReasonProviderError, providerErrorDetail(env.Error))
	}

	// 2. メディア欠落
	if env.Media == nil {
		// フィールドごと欠落しているのは認証や課金の失敗の典型
		if env.Candidates == nil {
			return newGenerationError(ReasonNoCandidates, detailNoCandidates)
		}
		// 存在するが空。候補ごとの理由が無いため独立した文言で返す
		if len(env.Candidates) == 0 {
			return newGenerationError(ReasonCandidatesFiltered, filteredDetail(env))
		}
		// 先頭候補の終了理由を見る。正常終了以外は安全フィルター等の停止
		first := env.Candidates[0]
		if first.FinishReason != "" && first.FinishReason != finishReasonStop {
			return newGenerationError(ReasonSafetyBlocked, finishDetail(first))
		}
		return newGenerationError(ReasonNoImage, detailNoImage)
	}

	// 3. メディアはあるが不正
	if env.Media.URL == nil {
		return newGenerationError(ReasonMalformedMedia, "応答のメディアURLが欠落しているか文字列ではありませんでした")
	}
	return newGenerationError(ReasonMalformedMedia, fmt.Sprintf(
		"応答のメディアURLが画像のdata URIではありませんでした: %s",
		truncateDetail(*env.Media.URL, urlPreviewLimit),
	))
}

func providerErrorDetail(p *ProviderError) string {
	detail := "プロバイダがエラーを返しました: " + p.Message
	if p.Status != "" {
		detail += fmt.Sprintf(" (status: %s)", p.Status)
	}
	if p.Code != 0 {
		detail += fmt.Sprintf(" (code: %d)", p.Code)
	}
	return detail
}

func filteredDetail(env *Envelope) string {
	if env.PromptFeedback != nil && env.PromptFeedback.BlockReason != "" {
		return fmt.Sprintf("%s (blockReason: %s)", detailFiltered, env.PromptFeedback.BlockReason)
	}
	return detailFiltered
}

func finishDetail(c Candidate) string {
	detail := fmt.Sprintf("画像生成がブロックされました (finishReason: %s)", c.FinishReason)
	if c.FinishMessage != "" {
		detail += ": " + c.FinishMessage
	}
	return detail
}

// rawEnvelope はログ用に応答全体をJSONへ直列化します。
func rawEnvelope(env *Envelope) string {
	if env == nil {
		return "null"
	}
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Sprintf("%+v", env)
	}
	return string(b)
}
