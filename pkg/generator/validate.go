package generator

import (
	"strings"

	"github.com/avireal12/Visionary-ai-v2/pkg/domain"
)

// Validate は応答 Envelope が使用可能な生成結果を持つかどうかを判定します。
// チェックは順序付きで、存在 → 型 → 接頭辞 の順に行います。
// プロバイダは media を持ちながら不正な url を返すことがあるため、
// この順序は入れ替えられません。
//
// 成功時はこの関数だけが GenerationResult を構築し、URL は一切変換せず
// そのまま運びます。失敗の理由付けは行わず Classify に委ねます。
func Validate(env *Envelope) (*domain.GenerationResult, bool) {
	// 1. media の欠落
	if env == nil || env.Media == nil {
		return nil, false
	}
	// 2. url が文字列として存在しない
	if env.Media.URL == nil {
		return nil, false
	}
	// 3. data:image/ 以外（テキスト応答や外部リンク）は成功にしない
	if !strings.HasPrefix(*env.Media.URL, domain.DataImagePrefix) {
		return nil, false
	}
	// 4. 合格。URL を同一のまま結果に写す
	return &domain.GenerationResult{ImageURL: *env.Media.URL}, true
}
