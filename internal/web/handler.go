// Package web は画像生成の HTTP API と画面を提供します。
package web

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/samber/lo"

	"github.com/avireal12/Visionary-ai-v2/internal/gallery"
	"github.com/avireal12/Visionary-ai-v2/pkg/domain"
	"github.com/avireal12/Visionary-ai-v2/pkg/generator"
	"github.com/avireal12/Visionary-ai-v2/pkg/imgutil"
)

//go:embed templates/index.html
var indexTmpl string

const galleryListLimit = 24

// ImageGenerator は生成オーケストレーターへの窓口です。
type ImageGenerator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error)
}

// PromptRefiner はプロンプト清書への窓口です。
type PromptRefiner interface {
	Refine(ctx context.Context, draft string) (string, error)
}

// Handler は HTTP API と画面のルーティングを担います。
type Handler struct {
	svc     ImageGenerator
	refiner PromptRefiner
	store   gallery.Store

	tmpl *template.Template
	once sync.Once
}

// NewHandler は依存関係を注入して Handler を初期化します。
// refiner と store は nil を許容します。nil のときは該当機能を無効化します。
func NewHandler(svc ImageGenerator, refiner PromptRefiner, store gallery.Store) (*Handler, error) {
	if svc == nil {
		return nil, fmt.Errorf("svc is required")
	}
	return &Handler{svc: svc, refiner: refiner, store: store}, nil
}

// Register は全エンドポイントをルーターへ登録します。
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/", h.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/generate", h.handleGenerate).Methods(http.MethodPost)
	r.HandleFunc("/api/refine", h.handleRefine).Methods(http.MethodPost)
	r.HandleFunc("/api/gallery", h.handleGalleryList).Methods(http.MethodGet)
	r.HandleFunc("/gallery/{id}/image", h.handleGalleryImage).Methods(http.MethodGet)
}

type generateRequest struct {
	Prompt       string `json:"prompt"`
	AspectRatio  string `json:"aspectRatio"`
	ReferenceURL string `json:"referenceUrl"`
}

type generateResponse struct {
	ImageURL string `json:"imageUrl"`
	ID       string `json:"id,omitempty"`
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "リクエストボディを解釈できませんでした")
		return
	}

	// 空プロンプトはここで弾き、生成コアには渡さない
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "プロンプトを入力してください")
		return
	}

	result, err := h.svc.Generate(ctx, domain.GenerationRequest{
		Prompt:       req.Prompt,
		AspectRatio:  domain.NormalizeAspectRatio(req.AspectRatio),
		ReferenceURL: strings.TrimSpace(req.ReferenceURL),
	})
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	id := h.saveToGallery(ctx, req, result)
	writeJSON(w, http.StatusOK, generateResponse{ImageURL: result.ImageURL, ID: id})
}

// statusForError は分類済みエラーの種別を応答コードへ対応付けます。
// 設定不備はサーバー側の問題、安全フィルター等による失敗は要求内容の問題、
// 通信障害は上流の問題として扱います。
func statusForError(err error) int {
	switch {
	case generator.IsConfigError(err):
		return http.StatusInternalServerError
	case generator.IsGenerationError(err):
		return http.StatusUnprocessableEntity
	case generator.IsServiceError(err):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// saveToGallery は成功した生成結果を保存してIDを返します。
// 保存に失敗しても生成応答は成功のまま返します。
func (h *Handler) saveToGallery(ctx context.Context, req generateRequest, result *domain.GenerationResult) string {
	if h.store == nil {
		return ""
	}

	mimeType, data, err := imgutil.DecodeDataURI(result.ImageURL)
	if err != nil {
		slog.WarnContext(ctx, "生成結果をデコードできずギャラリー保存を諦めました", "error", err)
		return ""
	}

	item := gallery.Item{
		ID:          uuid.NewString(),
		Prompt:      req.Prompt,
		AspectRatio: string(domain.NormalizeAspectRatio(req.AspectRatio)),
		MIMEType:    mimeType,
		CreatedAt:   time.Now().UTC(),
		Data:        data,
	}
	if err := h.store.Save(ctx, item); err != nil {
		slog.WarnContext(ctx, "ギャラリーへの保存に失敗しました", "error", err, "id", item.ID)
		return ""
	}
	return item.ID
}

type refineRequest struct {
	Prompt string `json:"prompt"`
}

func (h *Handler) handleRefine(w http.ResponseWriter, r *http.Request) {
	if h.refiner == nil {
		writeError(w, http.StatusNotFound, "プロンプト清書は利用できません")
		return
	}

	var req refineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "リクエストボディを解釈できませんでした")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "プロンプトを入力してください")
		return
	}

	refined, err := h.refiner.Refine(r.Context(), req.Prompt)
	if err != nil {
		slog.ErrorContext(r.Context(), "プロンプト清書に失敗しました", "error", err)
		writeError(w, http.StatusBadGateway, "プロンプトの清書に失敗しました")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"prompt": refined})
}

type galleryItemView struct {
	ID          string `json:"id"`
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspectRatio"`
	CreatedAt   string `json:"createdAt"`
	ImagePath   string `json:"imagePath"`
}

func (h *Handler) handleGalleryList(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusOK, map[string]any{"items": []galleryItemView{}})
		return
	}

	items, err := h.store.List(r.Context(), galleryListLimit)
	if err != nil {
		slog.ErrorContext(r.Context(), "ギャラリー一覧の取得に失敗しました", "error", err)
		writeError(w, http.StatusInternalServerError, "ギャラリーを取得できませんでした")
		return
	}

	views := lo.Map(items, func(item gallery.Item, _ int) galleryItemView {
		return galleryItemView{
			ID:          item.ID,
			Prompt:      item.Prompt,
			AspectRatio: item.AspectRatio,
			CreatedAt:   item.CreatedAt.UTC().Format(time.RFC3339),
			ImagePath:   "/gallery/" + item.ID + "/image",
		}
	})
	writeJSON(w, http.StatusOK, map[string]any{"items": views})
}

func (h *Handler) handleGalleryImage(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		http.NotFound(w, r)
		return
	}

	id := mux.Vars(r)["id"]
	rc, mimeType, err := h.store.Open(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, rc); err != nil {
		slog.WarnContext(r.Context(), "画像の送出に失敗しました", "error", err, "id", id)
	}
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.once.Do(func() {
		h.tmpl = template.Must(template.New("index").Parse(indexTmpl))
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := map[string]any{
		"Ratios": []domain.AspectRatio{domain.AspectSquare, domain.AspectLandscape, domain.AspectPortrait},
	}
	if err := h.tmpl.Execute(w, data); err != nil {
		slog.WarnContext(r.Context(), "画面の描画に失敗しました", "error", err)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("応答の書き出しに失敗しました", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
