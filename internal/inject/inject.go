// Package inject はアプリケーション全体の依存関係を組み立てます。
package inject

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/storage"
	"github.com/patrickmn/go-cache"
	"github.com/samber/do"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"google.golang.org/genai"

	"github.com/avireal12/Visionary-ai-v2/internal/config"
	"github.com/avireal12/Visionary-ai-v2/internal/fetch"
	"github.com/avireal12/Visionary-ai-v2/internal/gallery"
	"github.com/avireal12/Visionary-ai-v2/internal/gcsio"
	"github.com/avireal12/Visionary-ai-v2/internal/web"
	"github.com/avireal12/Visionary-ai-v2/pkg/generator"
	"github.com/avireal12/Visionary-ai-v2/pkg/reference"
)

// Setup はプロバイダを登録した injector を返します。
// 各プロバイダは遅延評価されるため、GCS クライアントのような重い依存は
// 実際に必要とする構成でのみ初期化されます。
func Setup(ctx context.Context, cfg *config.Config) *do.Injector {
	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			slog.Debug(fmt.Sprintf(format, args...))
		},
	})

	do.ProvideValue[*config.Config](injector, cfg)

	do.Provide[*genai.Client](injector, func(i *do.Injector) (*genai.Client, error) {
		c := do.MustInvoke[*config.Config](i)
		return genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  c.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
	})

	do.Provide[*storage.Client](injector, func(i *do.Injector) (*storage.Client, error) {
		return storage.NewClient(ctx)
	})

	do.Provide[httpkit.ClientInterface](injector, func(i *do.Injector) (httpkit.ClientInterface, error) {
		return fetch.NewClient(nil), nil
	})

	// GCS クライアントを用意できない環境では gs:// 参照だけを諦めて続行する
	do.Provide[remoteio.InputReader](injector, func(i *do.Injector) (remoteio.InputReader, error) {
		client, err := do.Invoke[*storage.Client](i)
		if err != nil {
			slog.Warn("GCSクライアントを初期化できないため gs:// 参照は無効になります", "error", err)
			return gcsio.Disabled(err), nil
		}
		return gcsio.NewReader(client)
	})

	do.Provide[*reference.Preparer](injector, func(i *do.Injector) (*reference.Preparer, error) {
		c := do.MustInvoke[*config.Config](i)
		imageCache := cache.New(c.ReferenceCacheTTL, 2*c.ReferenceCacheTTL)
		return reference.NewPreparer(
			do.MustInvoke[httpkit.ClientInterface](i),
			do.MustInvoke[remoteio.InputReader](i),
			imageCache,
			c.ReferenceCacheTTL,
		)
	})

	do.Provide[*generator.GeminiModel](injector, func(i *do.Injector) (*generator.GeminiModel, error) {
		c := do.MustInvoke[*config.Config](i)
		return generator.NewGeminiModel(do.MustInvoke[*genai.Client](i), c.SafetyPolicy)
	})

	do.Provide[*generator.Service](injector, func(i *do.Injector) (*generator.Service, error) {
		c := do.MustInvoke[*config.Config](i)
		return generator.NewService(
			do.MustInvoke[*generator.GeminiModel](i),
			do.MustInvoke[*reference.Preparer](i),
			generator.ServiceConfig{Model: c.Model, APIKey: c.APIKey},
		)
	})

	do.Provide[*generator.PromptRefiner](injector, func(i *do.Injector) (*generator.PromptRefiner, error) {
		c := do.MustInvoke[*config.Config](i)
		return generator.NewPromptRefiner(do.MustInvoke[*generator.GeminiModel](i), c.TextModel)
	})

	do.Provide[gallery.Store](injector, func(i *do.Injector) (gallery.Store, error) {
		c := do.MustInvoke[*config.Config](i)
		if c.GalleryBucket == "" {
			slog.Info("ギャラリーはメモリ保存で動作します", "limit", c.GalleryLimit)
			return gallery.NewMemoryStore(c.GalleryLimit), nil
		}

		client, err := do.Invoke[*storage.Client](i)
		if err != nil {
			return nil, fmt.Errorf("ギャラリーバケットが設定されていますが GCS クライアントを初期化できません: %w", err)
		}
		return gallery.NewGCSStore(client, c.GalleryBucket)
	})

	do.Provide[*web.Handler](injector, func(i *do.Injector) (*web.Handler, error) {
		return web.NewHandler(
			do.MustInvoke[*generator.Service](i),
			do.MustInvoke[*generator.PromptRefiner](i),
			do.MustInvoke[gallery.Store](i),
		)
	})

	return injector
}
