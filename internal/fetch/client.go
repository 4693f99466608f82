// Package fetch は httpkit.ClientInterface の実装を提供します。
// 参照画像のダウンロードなど、外部HTTPリソースへのアクセスに使います。
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
)

const (
	defaultTimeout = 30 * time.Second
	// maxResponseBytes は1応答あたりに読み込む最大サイズです。
	maxResponseBytes = 20 << 20
)

// Client は net/http ベースのフェッチャーです。
type Client struct {
	http *http.Client
}

var _ httpkit.ClientInterface = (*Client)(nil)

// NewClient は Client を初期化します。base が nil の場合は
// 既定のタイムアウト付きクライアントを使います。
func NewClient(base *http.Client) *Client {
	if base == nil {
		base = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{http: base}
}

// FetchBytes は URL の内容をサイズ上限付きで読み切って返します。
func (c *Client) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗しました: %w", err)
	}
	return c.DoRequest(req)
}

// DoRequest は組み立て済みのリクエストを実行してボディを返します。
func (c *Client) DoRequest(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("予期しないステータスコード: %d (%s)", resp.StatusCode, req.URL)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("応答の読み取りに失敗しました: %w", err)
	}
	if len(data) > maxResponseBytes {
		return nil, fmt.Errorf("応答サイズが上限 (%d バイト) を超えました", maxResponseBytes)
	}
	return data, nil
}

// FetchAndDecodeJSON は URL の内容を取得して v へデコードします。
func (c *Client) FetchAndDecodeJSON(ctx context.Context, url string, v any) error {
	data, err := c.FetchBytes(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("JSONのデコードに失敗しました: %w", err)
	}
	return nil
}

// PostJSONAndFetchBytes は data を JSON として POST し、応答ボディを返します。
func (c *Client) PostJSONAndFetchBytes(ctx context.Context, url string, data any) ([]byte, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("JSONのエンコードに失敗しました: %w", err)
	}
	return c.PostRawBodyAndFetchBytes(ctx, url, body, "application/json")
}

// PostRawBodyAndFetchBytes は任意のボディを POST し、応答ボディを返します。
func (c *Client) PostRawBodyAndFetchBytes(ctx context.Context, url string, body []byte, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	return c.DoRequest(req)
}
