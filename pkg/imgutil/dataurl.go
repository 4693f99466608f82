package imgutil

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// EncodeDataURI はバイト列を data URI (data:{mime};base64,{payload}) に変換します。
func EncodeDataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI は data URI を MIME タイプと元のバイト列に戻します。
// base64 エンコーディング以外の data URI は対象外です。
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("data URIではありません")
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("data URIの区切り文字が見つかりません")
	}

	mimeType, found := strings.CutSuffix(meta, ";base64")
	if !found {
		return "", nil, fmt.Errorf("base64以外のdata URIはサポートしていません")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("base64デコード失敗: %w", err)
	}
	return mimeType, data, nil
}
