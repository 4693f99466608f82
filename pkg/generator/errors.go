package generator

import "errors"

// Kind は失敗の大分類です。
// 利用者への案内（設定を直す / プロンプトを変える / 後で再試行する）と
// HTTP層の応答コードは、この値だけで決まります。
type Kind string

const (
	// KindConfig は資格情報など配備設定の不備です。ネットワークに触れる前に返ります。
	KindConfig Kind = "config"
	// KindGeneration は呼び出し自体は完走したが画像を得られなかった失敗です。
	KindGeneration Kind = "generation"
	// KindService は通信障害など、それ以外の予期しない失敗です。
	KindService Kind = "service"
)

// Reason は生成失敗 (KindGeneration) の細分類です。
type Reason string

const (
	ReasonProviderError      Reason = "provider_error"
	ReasonSafetyBlocked      Reason = "safety_blocked"
	ReasonNoCandidates       Reason = "no_candidates"
	ReasonCandidatesFiltered Reason = "candidates_filtered"
	ReasonNoImage            Reason = "no_image"
	ReasonMalformedMedia     Reason = "malformed_media"
)

// Error は分類済みの失敗です。
// 再ラップ判定は文字列接頭辞の照合ではなく errors.As による
// 構造的な判別で行います。Detail に生の応答は含めません。
type Error struct {
	Kind   Kind
	Reason Reason
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindConfig:
		return "設定エラー: " + e.Detail
	case KindService:
		return "画像生成サービスエラー: " + e.Detail
	default:
		return "画像生成エラー: " + e.Detail
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func newConfigError(envName string) *Error {
	return &Error{
		Kind:   KindConfig,
		Detail: "環境変数 " + envName + " が設定されていません。APIキーを設定してから再起動してください",
	}
}

func newGenerationError(reason Reason, detail string) *Error {
	return &Error{Kind: KindGeneration, Reason: reason, Detail: detail}
}

func newServiceError(detail string, cause error) *Error {
	return &Error{Kind: KindService, Detail: detail, Cause: cause}
}

// IsConfigError は err が設定エラーかどうかを構造的に判定します。
func IsConfigError(err error) bool { return hasKind(err, KindConfig) }

// IsGenerationError は err が生成失敗かどうかを構造的に判定します。
func IsGenerationError(err error) bool { return hasKind(err, KindGeneration) }

// IsServiceError は err がサービスエラーかどうかを構造的に判定します。
func IsServiceError(err error) bool { return hasKind(err, KindService) }

func hasKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// truncateDetail は呼び出し元へ返す文字列を一定長に丸めます。
// 完全な内容は運用ログ側にのみ残します。
func truncateDetail(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
