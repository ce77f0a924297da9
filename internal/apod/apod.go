// Package apod は、APOD APIの呼び出しとレスポンスの正規化を行います。
// レスポンスの形状(単一オブジェクト/配列)はJSONの境界で一度だけ判定し、
// 以降はタグ付きユニオン model.Response として扱います。
package apod

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"GoApodViewer/internal/model"

	"github.com/PuerkitoBio/goquery"
)

// ErrUnexpectedShape は、レスポンスがJSONオブジェクトでも配列でもないことを表します。
var ErrUnexpectedShape = errors.New("APODレスポンスの形式が想定外です")

// Getter は、URLからボディを取得するHTTPクライアントです。
// 200以外のステータスは *network.HTTPError として返される前提です。
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Client は、APOD APIへの1回の問い合わせを行います。
type Client struct {
	http Getter
}

// NewClient は、新しい Client を生成します。
func NewClient(g Getter) *Client {
	return &Client{http: g}
}

// Fetch は、組み立て済みのURLに対してブロッキングのGETを1回行い、レスポンスを解析します。
// HTTPエラーはラップして返すので、呼び出し側は errors.As で *network.HTTPError を判別できます。
func (c *Client) Fetch(ctx context.Context, url string) (model.Response, error) {
	body, err := c.http.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("APODの取得に失敗しました: %w", err)
	}
	return Decode(body)
}

// Decode は、先頭の空白以外の1バイトでレスポンスの形状を判定し、タグ付きユニオンに変換します。
func Decode(body []byte) (model.Response, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("空のレスポンス: %w", ErrUnexpectedShape)
	}

	switch trimmed[0] {
	case '{':
		var item model.RawItem
		if err := json.Unmarshal(trimmed, &item); err != nil {
			return nil, fmt.Errorf("APODオブジェクトの解析に失敗しました: %w", err)
		}
		return model.SingleResponse{Item: item}, nil
	case '[':
		var list []model.RawItem
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("APOD配列の解析に失敗しました: %w", err)
		}
		return model.ManyResponse{List: list}, nil
	default:
		return nil, fmt.Errorf("先頭文字 %q: %w", trimmed[0], ErrUnexpectedShape)
	}
}

// Normalize は、レスポンスの形状に関係なく一様なアイテム列を返します。
// 欠けたフィールドはロケールのプレースホルダで埋め、media_type が無い場合は画像とみなします。
func Normalize(resp model.Response, ph model.Placeholders) []model.Item {
	raws := resp.Items()
	items := make([]model.Item, 0, len(raws))
	for _, raw := range raws {
		items = append(items, normalizeItem(raw, ph))
	}
	return items
}

func normalizeItem(raw model.RawItem, ph model.Placeholders) model.Item {
	return model.Item{
		Title:       valueOr(raw.Title, ph.Title),
		Explanation: PlainText(valueOr(raw.Explanation, ph.Explanation)),
		MediaURL:    valueOr(raw.URL, ""),
		MediaType:   model.ParseMediaType(valueOr(raw.MediaType, string(model.MediaImage))),
		Author:      strings.TrimSpace(valueOr(raw.Copyright, ph.Author)),
		Date:        valueOr(raw.Date, ""),
		HDURL:       valueOr(raw.HDURL, ""),

		TitleIsPlaceholder:       raw.Title == nil,
		ExplanationIsPlaceholder: raw.Explanation == nil,
	}
}

// valueOr は、キーが存在すればその値を、存在しなければ既定値を返します。
// 空文字は「存在する」とみなします。
func valueOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

// markupTag は、閉じた '>' を持つHTMLタグ(開始・終了・自己終了)にマッチします。
// "a<b" のような比較式や "AT&T" はタグとみなしません。
var markupTag = regexp.MustCompile(`</?[A-Za-z][A-Za-z0-9]*(\s[^<>]*)?/?>`)

// PlainText は、説明文に含まれるインラインHTML(リンクなど)を取り除いてテキストにします。
// 要素として解析できるタグが無い文字列は、空白や実体参照も含めてそのまま返します。
func PlainText(s string) string {
	if !markupTag.MatchString(s) {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil || doc.Find("body *").Length() == 0 {
		return s
	}
	return strings.Join(strings.Fields(doc.Find("body").Text()), " ")
}
