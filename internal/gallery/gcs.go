package gallery

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

const (
	objectPrefix    = "generations/"
	defaultGCSLimit = 20
)

// GCSStore は Cloud Storage バケットへ保存する Store 実装です。
// オブジェクト本体が画像で、プロンプト等はオブジェクトのメタデータに持たせます。
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore は GCSStore を初期化します。
func NewGCSStore(client *storage.Client, bucket string) (*GCSStore, error) {
	if client == nil {
		return nil, fmt.Errorf("client is required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

// Save は画像本体を書き込み、プロンプト等をメタデータとして残します。
func (s *GCSStore) Save(ctx context.Context, item Item) error {
	w := s.client.Bucket(s.bucket).Object(objectPrefix + item.ID).NewWriter(ctx)
	w.ContentType = item.MIMEType
	w.Metadata = map[string]string{
		"prompt":       item.Prompt,
		"aspect_ratio": item.AspectRatio,
		"created_at":   item.CreatedAt.UTC().Format(time.RFC3339),
	}

	if _, err := w.Write(item.Data); err != nil {
		w.Close()
		return fmt.Errorf("ギャラリーへの書き込みに失敗しました: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("ギャラリーへの書き込みを確定できませんでした: %w", err)
	}
	return nil
}

// List は新しい順にメタデータを返します。
func (s *GCSStore) List(ctx context.Context, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = defaultGCSLimit
	}

	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: objectPrefix})
	var items []Item
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ギャラリー一覧の取得に失敗しました: %w", err)
		}
		items = append(items, itemFromAttrs(attrs))
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// Open は保存済み画像の読み取りストリームとMIMEタイプを返します。
func (s *GCSStore) Open(ctx context.Context, id string) (io.ReadCloser, string, error) {
	// パス区切りを含むIDで接頭辞の外を読ませない
	id = path.Base(id)

	rc, err := s.client.Bucket(s.bucket).Object(objectPrefix + id).NewReader(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("画像を開けませんでした: %w", err)
	}
	return rc, rc.Attrs.ContentType, nil
}

// itemFromAttrs はオブジェクト属性からメタデータだけの Item を復元します。
func itemFromAttrs(attrs *storage.ObjectAttrs) Item {
	item := Item{
		ID:        path.Base(attrs.Name),
		MIMEType:  attrs.ContentType,
		CreatedAt: attrs.Created,
	}
	if attrs.Metadata != nil {
		item.Prompt = attrs.Metadata["prompt"]
		item.AspectRatio = attrs.Metadata["aspect_ratio"]
		if ts, err := time.Parse(time.RFC3339, attrs.Metadata["created_at"]); err == nil {
			item.CreatedAt = ts
		}
	}
	return item
}
