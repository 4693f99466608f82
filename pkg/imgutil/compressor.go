package imgutil

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// CompressToJPEG は画像データをJPEG形式に再エンコードします。
// image.Decode がサポートするフォーマット (PNG, GIF, JPEG, WebP) に対応しています。
// 参照画像をモデルへ送る前の縮小に使うもので、生成結果そのものには適用しません。
func CompressToJPEG(data []byte, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
