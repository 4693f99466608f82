package generator

import (
	"fmt"
	"strings"

	"github.com/avireal12/Visionary-ai-v2/pkg/domain"
)

// ComposePrompt は利用者のプロンプトから最終的な合成プロンプトを組み立てます。
// 純粋関数であり、同じリクエストからは常に同一の文字列が得られます。
//
//  1. 利用者のプロンプトをそのまま先頭に置く
//  2. 品質強化語を固定の順序で付与する
//  3. 縦横比の指示文を末尾に埋め込む（未指定は 1:1）
func ComposePrompt(req domain.GenerationRequest) string {
	ratio := domain.NormalizeAspectRatio(string(req.AspectRatio))

	var b strings.Builder
	b.WriteString(req.Prompt)
	b.WriteString(", ")
	b.WriteString(strings.Join(qualityDescriptors, ", "))
	b.WriteString(". ")
	b.WriteString(fmt.Sprintf(aspectRatioInstruction, ratio))
	return b.String()
}
