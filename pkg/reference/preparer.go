package reference

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"google.golang.org/genai"

	"github.com/avireal12/Visionary-ai-v2/pkg/imgutil"
)

const (
	// UseImageCompression は参照画像をJPEGへ再圧縮するかどうかです。
	UseImageCompression = true
	// ImageCompressionQuality は再圧縮時のJPEG品質です。
	ImageCompressionQuality = 75
	// compressionThreshold を超えるサイズの画像だけを再圧縮の対象にします。
	compressionThreshold = 512 * 1024
)

// ImageCacher は取得済み参照画像のキャッシュ操作を抽象化するインターフェースです。
type ImageCacher interface {
	Get(key string) (any, bool)
	Set(key string, value any, d time.Duration)
}

// Preparer は参照画像のURLをモデルへ渡せる genai.Part に変換するコンポーネントです。
// 参照画像はあくまで補助入力であるため、どの段階で失敗しても nil を返すだけで
// 生成リクエスト全体は失敗させません。
type Preparer struct {
	httpClient httpkit.ClientInterface
	reader     remoteio.InputReader
	cache      ImageCacher
	cacheTTL   time.Duration
}

// NewPreparer は依存関係を注入して Preparer を初期化します。
func NewPreparer(httpClient httpkit.ClientInterface, reader remoteio.InputReader, cache ImageCacher, cacheTTL time.Duration) (*Preparer, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	if reader == nil {
		return nil, fmt.Errorf("reader is required")
	}
	// cache は nil を許容（キャッシュなし動作）

	return &Preparer{
		httpClient: httpClient,
		reader:     reader,
		cache:      cache,
		cacheTTL:   cacheTTL,
	}, nil
}

// Prepare は参照画像を取得して genai.Part (InlineData) に変換します。
func (p *Preparer) Prepare(ctx context.Context, rawURL string) *genai.Part {
	// キャッシュの確認
	if p.cache != nil {
		if cached, found := p.cache.Get(rawURL); found {
			if data, ok := cached.([]byte); ok {
				return toPart(data)
			}
			slog.WarnContext(ctx, "キャッシュデータが不正な型です", "url", rawURL, "type", fmt.Sprintf("%T", cached))
		}
	}

	data, err := p.fetch(ctx, rawURL)
	if err != nil {
		slog.WarnContext(ctx, "参照画像を取得できませんでした。テキストのみで続行します", "url", rawURL, "error", err)
		return nil
	}

	// 大きな画像だけJPEGへ再エンコードしてリクエストサイズを抑える
	if UseImageCompression && len(data) > compressionThreshold {
		if compressed, err := imgutil.CompressToJPEG(data, ImageCompressionQuality); err == nil {
			data = compressed
		}
	}

	part := toPart(data)
	if part == nil {
		slog.WarnContext(ctx, "参照URLの内容が画像ではありませんでした", "url", rawURL)
		return nil
	}

	if p.cache != nil {
		p.cache.Set(rawURL, data, p.cacheTTL)
	}
	return part
}

// fetch は gs:// と http(s) を出し分けてバイト列を取得します。
// http(s) はSSRF対策の検証を通過したものだけを取得します。
func (p *Preparer) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.HasPrefix(rawURL, "gs://") {
		rc, err := p.reader.Open(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}

	safe, err := IsSafeURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("URLの安全性を確認できませんでした: %w", err)
	}
	if !safe {
		return nil, fmt.Errorf("内部ネットワークを指すURLは参照できません: %s", rawURL)
	}
	return p.httpClient.FetchBytes(ctx, rawURL)
}

// toPart はバイト列を genai.Part (InlineData) に変換します。画像以外は nil を返します。
func toPart(data []byte) *genai.Part {
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil
	}
	return &genai.Part{
		InlineData: &genai.Blob{
			MIMEType: mimeType,
			Data:     data,
		},
	}
}
