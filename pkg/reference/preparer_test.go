package reference

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// PNGの最小構成バイナリ（シグネチャ含む）
var validPNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00\x90w\x53\xde")

// 検証用URLにはDNSに依存しないIP直書きのものを使う
const publicImageURL = "http://203.0.113.10/image.png"

func newTestPreparer(t *testing.T, httpClient *mockHTTPClient, reader *mockReader, cache ImageCacher) *Preparer {
	t.Helper()
	p, err := NewPreparer(httpClient, reader, cache, time.Hour)
	require.NoError(t, err)
	return p
}

func TestNewPreparer(t *testing.T) {
	t.Run("httpClient が nil の場合はエラーになるのだ", func(t *testing.T) {
		_, err := NewPreparer(nil, &mockReader{}, nil, time.Hour)
		assert.Error(t, err)
	})

	t.Run("reader が nil の場合はエラーになるのだ", func(t *testing.T) {
		_, err := NewPreparer(&mockHTTPClient{}, nil, nil, time.Hour)
		assert.Error(t, err)
	})

	t.Run("cache は nil でも初期化できるのだ", func(t *testing.T) {
		p, err := NewPreparer(&mockHTTPClient{}, &mockReader{}, nil, time.Hour)
		assert.NoError(t, err)
		assert.NotNil(t, p)
	})
}

func TestPreparer_Prepare(t *testing.T) {
	ctx := context.Background()

	t.Run("キャッシュにある場合はフェッチせずに返すのだ", func(t *testing.T) {
		httpClient := &mockHTTPClient{}
		cache := &mockCache{data: map[string]any{publicImageURL: validPNG}}
		p := newTestPreparer(t, httpClient, &mockReader{}, cache)

		part := p.Prepare(ctx, publicImageURL)

		require.NotNil(t, part)
		require.NotNil(t, part.InlineData)
		assert.Equal(t, validPNG, part.InlineData.Data)
		assert.Equal(t, "image/png", part.InlineData.MIMEType)
		assert.Equal(t, 0, httpClient.callCount)
	})

	t.Run("キャッシュにない場合はフェッチして保存するのだ", func(t *testing.T) {
		httpClient := &mockHTTPClient{data: validPNG}
		cache := &mockCache{}
		p := newTestPreparer(t, httpClient, &mockReader{}, cache)

		part := p.Prepare(ctx, publicImageURL)

		require.NotNil(t, part)
		assert.Equal(t, 1, httpClient.callCount)
		assert.Equal(t, publicImageURL, httpClient.lastURL)

		cached, found := cache.Get(publicImageURL)
		require.True(t, found, "取得した画像がキャッシュに保存されていないのだ")
		assert.Equal(t, validPNG, cached)
	})

	t.Run("二回目の呼び出しはキャッシュから返すのだ", func(t *testing.T) {
		httpClient := &mockHTTPClient{data: validPNG}
		p := newTestPreparer(t, httpClient, &mockReader{}, &mockCache{})

		first := p.Prepare(ctx, publicImageURL)
		second := p.Prepare(ctx, publicImageURL)

		require.NotNil(t, first)
		require.NotNil(t, second)
		assert.Equal(t, 1, httpClient.callCount)
	})

	t.Run("キャッシュ値の型が不正な場合はフェッチし直すのだ", func(t *testing.T) {
		httpClient := &mockHTTPClient{data: validPNG}
		cache := &mockCache{data: map[string]any{publicImageURL: "not-bytes"}}
		p := newTestPreparer(t, httpClient, &mockReader{}, cache)

		part := p.Prepare(ctx, publicImageURL)

		require.NotNil(t, part)
		assert.Equal(t, 1, httpClient.callCount)
	})

	t.Run("内部ネットワークを指すURLはフェッチ前にブロックするのだ", func(t *testing.T) {
		tests := []struct {
			name string
			url  string
		}{
			{"ループバック", "http://127.0.0.1/secret.png"},
			{"プライベートIP", "http://10.255.255.254/internal.png"},
			{"リンクローカル (メタデータサーバー)", "http://169.254.169.254/computeMetadata"},
			{"不許可スキーム", "ftp://203.0.113.10/image.png"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				httpClient := &mockHTTPClient{data: validPNG}
				p := newTestPreparer(t, httpClient, &mockReader{}, nil)

				part := p.Prepare(ctx, tt.url)

				assert.Nil(t, part)
				assert.Equal(t, 0, httpClient.callCount)
			})
		}
	})

	t.Run("フェッチ失敗時は nil を返して続行するのだ", func(t *testing.T) {
		httpClient := &mockHTTPClient{err: errors.New("connection refused")}
		p := newTestPreparer(t, httpClient, &mockReader{}, nil)

		part := p.Prepare(ctx, publicImageURL)

		assert.Nil(t, part)
	})

	t.Run("画像以外のデータは nil になりキャッシュもされないのだ", func(t *testing.T) {
		httpClient := &mockHTTPClient{data: []byte("<html>not an image</html>")}
		cache := &mockCache{}
		p := newTestPreparer(t, httpClient, &mockReader{}, cache)

		part := p.Prepare(ctx, publicImageURL)

		assert.Nil(t, part)
		_, found := cache.Get(publicImageURL)
		assert.False(t, found)
	})

	t.Run("gs スキームはリモートリーダー経由で読むのだ", func(t *testing.T) {
		httpClient := &mockHTTPClient{}
		reader := &mockReader{data: validPNG}
		p := newTestPreparer(t, httpClient, reader, nil)

		part := p.Prepare(ctx, "gs://my-bucket/ref/style.png")

		require.NotNil(t, part)
		assert.Equal(t, "gs://my-bucket/ref/style.png", reader.lastURI)
		assert.Equal(t, 0, httpClient.callCount)
	})

	t.Run("gs の読み取り失敗時も nil で続行するのだ", func(t *testing.T) {
		reader := &mockReader{err: errors.New("object not found")}
		p := newTestPreparer(t, &mockHTTPClient{}, reader, nil)

		part := p.Prepare(ctx, "gs://my-bucket/missing.png")

		assert.Nil(t, part)
	})

	t.Run("巨大データの再圧縮に失敗しても元データで続行するのだ", func(t *testing.T) {
		// PNGシグネチャだけ本物で中身は壊れている巨大データ。
		// DetectContentType は画像と判定するが jpeg への再圧縮は失敗する。
		big := make([]byte, compressionThreshold+1)
		copy(big, validPNG)
		httpClient := &mockHTTPClient{data: big}
		p := newTestPreparer(t, httpClient, &mockReader{}, nil)

		part := p.Prepare(ctx, publicImageURL)

		require.NotNil(t, part)
		assert.Len(t, part.InlineData.Data, len(big))
	})
}
