package generator

import "google.golang.org/genai"

// EnvAPIKey は資格情報の環境変数名です。
// 設定エラーはこの名前をそのまま利用者へ示します。
const EnvAPIKey = "GEMINI_API_KEY"

// qualityDescriptors は合成プロンプトへ付与する品質強化語の固定リストです。
// 順序も含めて決定的であり、利用者入力からは変更できません。
var qualityDescriptors = []string{
	"photorealistic",
	"highly detailed",
	"cinematic lighting",
}

// aspectRatioInstruction は縦横比をテキストで指示する定型文です。
// プロバイダは構造化された縦横比パラメータを持たないため、
// プロンプト埋め込みが唯一の指定手段になります。
const aspectRatioInstruction = "IMPORTANT: The image must have an aspect ratio of exactly %s."

// finishReasonStop は正常終了を示すプロバイダの番兵値です。
const finishReasonStop = "STOP"

const (
	// urlPreviewLimit は不正URLをエラー文へ載せる際の先頭プレビュー上限です。
	urlPreviewLimit = 64
	// serviceDetailLimit は下位エラー要約を呼び出し元へ返す際の上限です。
	serviceDetailLimit = 160
)

// ModelRequest は1回のモデル呼び出しに必要な入力です。
// 応答モダリティと安全しきい値は配備時に GeminiModel 側で固定されるため、
// リクエストごとには指定できません。
type ModelRequest struct {
	Model  string
	Prompt string

	// Reference は任意の参照画像パーツです。nil の場合はテキストのみで呼び出します。
	Reference *genai.Part
}
