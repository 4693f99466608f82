// Package logging はアプリケーション共通の slog ロガーを構築します。
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// New は JSON 形式のロガーを構築します。
// debug レベルのときだけ呼び出し元の位置情報を付与します。
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}))
}

// ParseLevel は設定文字列を slog.Level へ変換します。空文字列は info 扱いです。
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("不明なログレベルです: %s (debug, info, warn, error のいずれかを指定してください)", s)
}
