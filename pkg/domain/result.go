package domain

// DataImagePrefix は正常な生成結果の URL が必ず持つ接頭辞です。
const DataImagePrefix = "data:image/"

// GenerationResult は検証を通過した生成結果です。
// ImageURL は常に data:image/ で始まる自己完結した Data URI であり、
// 生成元のレスポンスから変換なしでそのまま引き渡されます。
type GenerationResult struct {
	ImageURL string
}
