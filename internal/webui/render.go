package webui

import (
	"bytes"
	"html/template"
	"net/url"
	"path"
	"strings"

	"GoApodViewer/internal/core"
	"GoApodViewer/internal/model"
	"GoApodViewer/internal/query"

	"github.com/yuin/goldmark"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

var markdownEngine = goldmark.New(
	goldmark.WithRendererOptions(
		htmlrenderer.WithXHTML(),
	),
)

// directVideoExts は、<video> タグで直接再生できる拡張子です。それ以外はプレーヤーとして iframe で埋め込みます。
var directVideoExts = map[string]bool{".mp4": true, ".webm": true, ".ogg": true, ".ogv": true, ".mov": true}

type langOption struct {
	Code     string
	Name     string
	Selected bool
}

type modeOption struct {
	Value   model.QueryMode
	Label   string
	Checked bool
}

// indexView は、index.html.tmpl に渡すデータです。
type indexView struct {
	Page        *core.Page
	Languages   []langOption
	Modes       []modeOption
	Date        string
	StartDate   string
	EndDate     string
	Count       int
	MinCount    int
	MaxCount    int
	RequestLink template.HTML
	// RenderError は、描画パスが失敗した場合の詳細メッセージです。
	RenderError string
}

func newIndexView(page *core.Page, languages []langOption) indexView {
	sel := page.Selection
	l := page.Labels
	return indexView{
		Page:      page,
		Languages: languages,
		Modes: []modeOption{
			{Value: model.ModeSingle, Label: l.SingleImage, Checked: sel.Mode == model.ModeSingle},
			{Value: model.ModeRange, Label: l.DateRange, Checked: sel.Mode == model.ModeRange},
			{Value: model.ModeRandom, Label: l.RandomImages, Checked: sel.Mode == model.ModeRandom},
		},
		Date:        query.FormatDate(sel.Date),
		StartDate:   query.FormatDate(sel.StartDate),
		EndDate:     query.FormatDate(sel.EndDate),
		Count:       sel.Count,
		MinCount:    query.MinCount,
		MaxCount:    query.MaxCount,
		RequestLink: requestLinkHTML(l.RequestLink, page.RequestURL, page.MaskedURL),
	}
}

// requestLinkHTML は、サイドバーの「NASAへのリクエスト」リンクをMarkdownから描画します。
// リンク先は実際のURL、表示するURLは api_key を伏せたものです。
func requestLinkHTML(label, requestURL, maskedURL string) template.HTML {
	if requestURL == "" {
		return ""
	}
	label = strings.NewReplacer("[", `\[`, "]", `\]`).Replace(label)
	md := "[" + label + "](<" + requestURL + ">)\n\n`" + maskedURL + "`\n"

	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(label))
	}
	return template.HTML(buf.String())
}

// isDirectVideo は、URLが動画ファイルを直接指しているかどうかを返します。
func isDirectVideo(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return directVideoExts[strings.ToLower(path.Ext(u.Path))]
}

// scratchURL は、スクラッチファイルの配信URLを返します。
// ファイルは同じ名前で上書きされるため、描画パスのIDでキャッシュを無効化します。
func scratchURL(rel, renderID string) string {
	return "/scratch/" + (&url.URL{Path: rel}).EscapedPath() + "?v=" + url.QueryEscape(renderID)
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"isDirectVideo": isDirectVideo,
		"scratchURL":    scratchURL,
	}
}
