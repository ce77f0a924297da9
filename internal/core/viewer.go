package core

import (
	"context"
	"errors"
	"time"

	"GoApodViewer/internal/apod"
	"GoApodViewer/internal/config"
	"GoApodViewer/internal/i18n"
	"GoApodViewer/internal/model"
	"GoApodViewer/internal/network"
	"GoApodViewer/internal/query"
	"GoApodViewer/internal/translate"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Fetcher は、組み立て済みURLからAPODレスポンスを取得します。
type Fetcher interface {
	Fetch(ctx context.Context, url string) (model.Response, error)
}

// Page は、1回の描画パスの結果です。UIはこれをそのまま描画します。
type Page struct {
	RenderID   string
	Language   string
	Labels     i18n.Labels
	Selection  model.Selection
	RequestURL string
	// MaskedURL は、api_key を伏せた表示用のURLです。
	MaskedURL string
	// Warnings は、ロケール済みの警告文です(開始日 > 終了日 など)。
	Warnings []string
	// Error は、ロケール済みのエラーバナーです。空でなければ Items は空です。
	Error string
	// Multi は、レスポンスが配列だったかどうかです。見出しのレベルが変わります。
	Multi bool
	Items []model.RenderedItem
}

// Viewer は、クエリ構築 → 取得・正規化 → 表示準備 の描画パスを実行します。
// 設定は読み取り専用で、描画パスの間に状態は持ち越しません(統計を除く)。
type Viewer struct {
	cfg       *config.Config
	catalog   *i18n.Catalog
	fetcher   Fetcher
	presenter *Presenter
	stats     *SessionStats
	logger    *zap.Logger
	now       func() time.Time
}

// NewViewer は、新しい Viewer を生成します。
func NewViewer(cfg *config.Config, catalog *i18n.Catalog, fetcher Fetcher, downloader Getter, tr translate.Translator, stats *SessionStats, logger *zap.Logger) *Viewer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Viewer{
		cfg:       cfg,
		catalog:   catalog,
		fetcher:   fetcher,
		presenter: NewPresenter(downloader, tr, cfg.SourceLanguage, cfg.ScratchDirectory, stats, logger),
		stats:     stats,
		logger:    logger,
		now:       time.Now,
	}
}

// Catalog は、ビューアが使うロケールカタログを返します。
func (v *Viewer) Catalog() *i18n.Catalog { return v.catalog }

// Stats は、セッション統計を返します。
func (v *Viewer) Stats() *SessionStats { return v.stats }

// ScratchDirectory は、スクラッチファイルのルートを返します。
func (v *Viewer) ScratchDirectory() string { return v.cfg.ScratchDirectory }

// Now は、日付の既定値に使う現在時刻を返します。
func (v *Viewer) Now() time.Time { return v.now() }

// Render は、1回の描画パスを実行します。
// APIが200以外を返した場合は Page.Error にバナーを設定し、エラーなしで返します。
// それ以外の失敗(デコード、翻訳、ダウンロード、書き込み)は、途中までのPageと共にエラーを返します。
func (v *Viewer) Render(ctx context.Context, lang string, sel model.Selection) (*Page, error) {
	if !v.catalog.Supports(lang) {
		lang = v.catalog.Fallback()
	}
	labels := v.catalog.Labels(lang)

	requestURL, warnings := query.BuildURL(v.cfg.APODBaseURL, v.cfg.APIKey, sel)
	page := &Page{
		RenderID:   uuid.NewString(),
		Language:   lang,
		Labels:     labels,
		Selection:  sel,
		RequestURL: requestURL,
		MaskedURL:  network.Redact(requestURL),
	}
	for _, w := range warnings {
		page.Warnings = append(page.Warnings, localizeWarning(labels, w))
	}

	log := v.logger.With(zap.String("render_id", page.RenderID), zap.String("mode", string(sel.Mode)), zap.String("lang", lang))
	v.stats.beginPass()
	start := time.Now()

	if len(warnings) > 0 {
		log.Warn("開始日が終了日より後ですが、そのままリクエストします",
			zap.String("start_date", query.FormatDate(sel.StartDate)), zap.String("end_date", query.FormatDate(sel.EndDate)))
	}

	resp, err := v.fetcher.Fetch(ctx, requestURL)
	if err != nil {
		var httpErr *network.HTTPError
		if errors.As(err, &httpErr) {
			log.Warn("APODがエラーを返しました", zap.Int("status", httpErr.StatusCode), zap.String("url", page.MaskedURL))
			page.Error = labels.APIError
			v.stats.recordAPIError(err)
			return page, nil
		}
		v.stats.recordFailure(err)
		return page, err
	}

	_, page.Multi = resp.(model.ManyResponse)
	items := apod.Normalize(resp, labels.Placeholders())

	rendered, err := v.presenter.Present(ctx, items, lang, page.Multi)
	if err != nil {
		v.stats.recordFailure(err)
		return page, err
	}
	page.Items = rendered
	v.stats.recordItems(len(rendered))

	log.Info("描画パスが完了しました", zap.Int("items", len(rendered)), zap.Duration("elapsed", time.Since(start)))
	return page, nil
}

func localizeWarning(labels i18n.Labels, w query.Warning) string {
	switch w {
	case query.WarningInvalidRange:
		return labels.ImageWarning
	default:
		return string(w)
	}
}
