package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/avireal12/Visionary-ai-v2/pkg/domain"
	"google.golang.org/genai"
)

// Service は画像生成の一連の流れを束ねるオーケストレーターです。
// 可変状態を持たないため、単一のインスタンスを並行利用できます。
// タイムアウトは設けず、中断は呼び出し元の context に委ねます。
type Service struct {
	invoker ModelInvoker
	refs    ReferencePreparer
	cfg     ServiceConfig
}

// ServiceConfig は Service の配備時設定です。
type ServiceConfig struct {
	// Model は画像出力に対応した唯一のモデルIDです。差し替えは設定変更で行います。
	Model string
	// APIKey は資格情報の存在証明です。空のままではネットワークに触れません。
	APIKey string
}

// NewService は依存関係を注入して Service を初期化します。
// refs は nil を許容します（参照画像なし動作）。
func NewService(invoker ModelInvoker, refs ReferencePreparer, cfg ServiceConfig) (*Service, error) {
	if invoker == nil {
		return nil, fmt.Errorf("invoker is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	return &Service{
		invoker: invoker,
		refs:    refs,
		cfg:     cfg,
	}, nil
}

// Generate は1件の生成要求を処理します。
// 流れは直線的で、リトライもループもありません。
//
//	設定検査 → プロンプト合成 → モデル呼び出し → 検証 → (失敗時のみ) 分類
func (s *Service) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	// 1. 資格情報が無ければ何もせずに返す
	if s.cfg.APIKey == "" {
		slog.ErrorContext(ctx, "資格情報が未設定のため生成を中止しました", "env", EnvAPIKey)
		return nil, newConfigError(EnvAPIKey)
	}

	// 2. プロンプト合成（純粋関数）
	prompt := ComposePrompt(req)
	slog.DebugContext(ctx, "プロンプトを合成しました", "prompt", prompt)

	// 3. 参照画像は任意。取得に失敗しても生成は続行する
	var ref *genai.Part
	if s.refs != nil && req.ReferenceURL != "" {
		ref = s.refs.Prepare(ctx, req.ReferenceURL)
	}

	// 4. モデル呼び出し（1往復のみ）
	env, err := s.invoker.Invoke(ctx, ModelRequest{Model: s.cfg.Model, Prompt: prompt, Reference: ref})
	if err != nil {
		// 既に分類済みのエラーはそのまま通す（二重ラップ防止）
		var gerr *Error
		if errors.As(err, &gerr) {
			return nil, gerr
		}
		slog.ErrorContext(ctx, "モデル呼び出しに失敗しました", "model", s.cfg.Model, "error", err)
		return nil, newServiceError(truncateDetail(err.Error(), serviceDetailLimit), err)
	}

	// 5. 検証。合格なら URL を同一のまま返す
	if result, ok := Validate(env); ok {
		slog.InfoContext(ctx, "画像生成に成功しました", "model", s.cfg.Model, "url_length", len(result.ImageURL))
		return result, nil
	}

	// 6. 不合格の理由を分類して返す
	return nil, Classify(ctx, env)
}
