package domain

// AspectRatio は生成画像の縦横比を表す列挙型です。
// プロバイダは構造化された縦横比パラメータを受け付けないため、
// この値はプロンプト合成時にテキストとして埋め込まれます。
type AspectRatio string

const (
	// AspectSquare は正方形 (1:1) です。未指定時の既定値になります。
	AspectSquare AspectRatio = "1:1"
	// AspectLandscape は横長 (16:9) です。
	AspectLandscape AspectRatio = "16:9"
	// AspectPortrait は縦長 (9:16) です。
	AspectPortrait AspectRatio = "9:16"
)

// Valid は既知の縦横比かどうかを返します。
func (a AspectRatio) Valid() bool {
	switch a {
	case AspectSquare, AspectLandscape, AspectPortrait:
		return true
	}
	return false
}

// NormalizeAspectRatio は外部入力の縦横比を正規化します。
// 空文字や未知の値は既定値 (1:1) に落とします。
func NormalizeAspectRatio(s string) AspectRatio {
	a := AspectRatio(s)
	if a.Valid() {
		return a
	}
	return AspectSquare
}

// GenerationRequest は単一の画像生成要求です。
type GenerationRequest struct {
	Prompt      string
	AspectRatio AspectRatio

	// ReferenceURL は任意の参照画像 (https:// または gs://) です。
	// 取得に失敗してもリクエスト自体は失敗せず、テキストのみで続行します。
	ReferenceURL string
}
