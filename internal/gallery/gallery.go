// Package gallery は生成結果の保存と一覧を提供します。
package gallery

import (
	"context"
	"io"
	"time"
)

// Item はギャラリーに保存される1件の生成結果です。
// Data は Save のときだけ使い、List の応答には含めません。
type Item struct {
	ID          string    `json:"id"`
	Prompt      string    `json:"prompt"`
	AspectRatio string    `json:"aspectRatio"`
	MIMEType    string    `json:"mimeType"`
	CreatedAt   time.Time `json:"createdAt"`
	Data        []byte    `json:"-"`
}

// Store は生成結果の永続化を抽象化するインターフェースです。
// 保存の失敗は生成応答の成否に影響させません。
type Store interface {
	Save(ctx context.Context, item Item) error
	List(ctx context.Context, limit int) ([]Item, error)
	Open(ctx context.Context, id string) (io.ReadCloser, string, error)
}
