package generator

import (
	"context"

	"google.golang.org/genai"
)

// ModelInvoker は画像対応モデルへの1往復の呼び出し窓口です。
// プロバイダが応答としてエラーオブジェクトを返した場合は Envelope.Error に
// 正規化して (env, nil) を返し、通信そのものの失敗だけを error にします。
type ModelInvoker interface {
	Invoke(ctx context.Context, req ModelRequest) (*Envelope, error)
}

// TextModel はテキスト応答だけを使う呼び出し窓口です。
// プロンプト清書のような補助機能が利用します。
type TextModel interface {
	GenerateText(ctx context.Context, model string, prompt string) (string, error)
}

// ReferencePreparer は参照画像を取得してモデルへ渡せるパーツに変換します。
// 失敗時は nil を返し、生成処理自体は継続されます。
type ReferencePreparer interface {
	Prepare(ctx context.Context, rawURL string) *genai.Part
}
