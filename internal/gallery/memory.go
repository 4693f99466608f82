package gallery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

const defaultMemoryLimit = 50

// MemoryStore はプロセス内メモリのみで動く Store 実装です。
// バケット未設定の環境や開発時に使います。再起動で内容は消えます。
type MemoryStore struct {
	mu    sync.RWMutex
	items []Item
	limit int
}

// NewMemoryStore は保持件数上限付きの MemoryStore を初期化します。
func NewMemoryStore(limit int) *MemoryStore {
	if limit <= 0 {
		limit = defaultMemoryLimit
	}
	return &MemoryStore{limit: limit}
}

// Save は新しいアイテムを先頭に積みます。上限を超えた古いものは捨てます。
func (s *MemoryStore) Save(ctx context.Context, item Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append([]Item{item}, s.items...)
	if len(s.items) > s.limit {
		s.items = s.items[:s.limit]
	}
	return nil
}

// List は新しい順にメタデータを返します。
func (s *MemoryStore) List(ctx context.Context, limit int) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.items) {
		limit = len(s.items)
	}

	out := make([]Item, 0, limit)
	for _, item := range s.items[:limit] {
		item.Data = nil
		out = append(out, item)
	}
	return out, nil
}

// Open は保存済み画像の読み取りストリームとMIMEタイプを返します。
func (s *MemoryStore) Open(ctx context.Context, id string) (io.ReadCloser, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items {
		if item.ID == id {
			return io.NopCloser(bytes.NewReader(item.Data)), item.MIMEType, nil
		}
	}
	return nil, "", fmt.Errorf("画像が見つかりません: %s", id)
}
