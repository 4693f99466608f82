package generator

// Envelope は外部モデルの応答を信頼しない前提で写し取った境界構造体です。
// プロバイダはどのフィールドの存在も保証しないため、すべてを任意項目として
// 表現し、解釈は Validate と Classify の二箇所だけに集約します。
// JSONタグはプロバイダのワイヤ表記に合わせてあり、ログやフィクスチャが
// 生の応答と同じ形で読めるようにしています。
type Envelope struct {
	Media          *Media          `json:"media,omitempty"`
	Candidates     []Candidate     `json:"candidates"`
	Error          *ProviderError  `json:"error,omitempty"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
}

// Media は応答中の画像参照です。
// URL は「存在しない」「文字列として使えない」の両方がありうるため
// ポインタで保持します。nil は使用可能な文字列が無かったことを意味します。
type Media struct {
	URL *string `json:"url,omitempty"`
}

// Candidate は生成候補の終了状態です。
// Candidates スライスの nil は「フィールド欠落」、空の非nilは
// 「存在するが空」を表し、分類時に区別されます。
type Candidate struct {
	FinishReason  string `json:"finishReason,omitempty"`
	FinishMessage string `json:"finishMessage,omitempty"`
}

// ProviderError はプロバイダがトップレベルで返すエラーオブジェクトです。
// 課金・クォータ・設定の問題はこの形で現れます。
type ProviderError struct {
	Message string `json:"message,omitempty"`
	Status  string `json:"status,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// PromptFeedback はプロンプト自体がブロックされた場合の診断情報です。
type PromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}
