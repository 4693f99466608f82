// Package gcsio は Cloud Storage を remoteio.InputReader として公開します。
// gs:// 形式の参照画像URIの読み取りに使います。
package gcsio

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"google.golang.org/api/iterator"
)

// Reader は GCS バケットからの読み取りアダプターです。
type Reader struct {
	client *storage.Client
}

var _ remoteio.InputReader = (*Reader)(nil)

// NewReader は Reader を初期化します。
func NewReader(client *storage.Client) (*Reader, error) {
	if client == nil {
		return nil, fmt.Errorf("client is required")
	}
	return &Reader{client: client}, nil
}

// Open は gs://bucket/object 形式の URI を読み取りストリームとして開きます。
func (r *Reader) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, object, err := splitURI(uri)
	if err != nil {
		return nil, err
	}
	if object == "" {
		return nil, fmt.Errorf("オブジェクト名がありません: %s", uri)
	}
	return r.client.Bucket(bucket).Object(object).NewReader(ctx)
}

// List は接頭辞配下のオブジェクトURIを列挙してコールバックへ渡します。
func (r *Reader) List(ctx context.Context, uri string, fn func(string) error) error {
	bucket, prefix, err := splitURI(uri)
	if err != nil {
		return err
	}

	it := r.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return fmt.Errorf("オブジェクト一覧の取得に失敗しました: %w", err)
		}
		if err := fn(fmt.Sprintf("gs://%s/%s", bucket, attrs.Name)); err != nil {
			return err
		}
	}
}

// splitURI は gs://bucket/object をバケット名とオブジェクト名に分けます。
func splitURI(uri string) (string, string, error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("gs:// 形式のURIではありません: %s", uri)
	}

	bucket, object, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("バケット名がありません: %s", uri)
	}
	return bucket, object, nil
}

// Disabled は常に初期化時のエラーを返す InputReader を生成します。
// GCS クライアントを用意できない構成で gs:// 参照だけを無効化するために使います。
func Disabled(cause error) remoteio.InputReader {
	return &disabledReader{cause: cause}
}

type disabledReader struct {
	cause error
}

func (d *disabledReader) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("GCSクライアントが無効のため %s を開けません: %w", uri, d.cause)
}

func (d *disabledReader) List(ctx context.Context, uri string, fn func(string) error) error {
	return fmt.Errorf("GCSクライアントが無効のため %s を列挙できません: %w", uri, d.cause)
}
