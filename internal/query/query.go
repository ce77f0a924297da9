// Package query は、ユーザーの選択(モードと入力値)からAPODのリクエストURLを組み立てます。
package query

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"GoApodViewer/internal/model"
)

// DateLayout は、APIとフォームで使う日付の書式です。
const DateLayout = "2006-01-02"

const (
	MinCount     = 1
	MaxCount     = 10
	DefaultCount = 1
)

// Warning は、URLの組み立ては続行できるがユーザーに知らせるべき問題を表します。
type Warning string

// WarningInvalidRange は、開始日が終了日より後になっていることを表します。
// ロケールの image_warning に対応します。
const WarningInvalidRange Warning = "image_warning"

// BuildURL は、選択内容からリクエストURLを1つ組み立てます。
// この層にエラーはありません。開始日 > 終了日 の場合も警告を返すだけで、URLはそのまま組み立てます。
func BuildURL(baseURL, apiKey string, sel model.Selection) (string, []Warning) {
	var warnings []Warning
	params := url.Values{}
	params.Set("api_key", apiKey)

	switch sel.Mode {
	case model.ModeRange:
		if sel.StartDate.After(sel.EndDate) {
			warnings = append(warnings, WarningInvalidRange)
		}
		params.Set("start_date", FormatDate(sel.StartDate))
		params.Set("end_date", FormatDate(sel.EndDate))
	case model.ModeRandom:
		params.Set("count", strconv.Itoa(sel.Count))
	default:
		params.Set("date", FormatDate(sel.Date))
	}

	return strings.TrimRight(baseURL, "?") + "?" + params.Encode(), warnings
}

// FormatDate は、日付を YYYY-MM-DD 形式にします。
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ClampCount は、件数をスライダーの範囲 [MinCount, MaxCount] に収めます。
func ClampCount(n int) int {
	if n < MinCount {
		return MinCount
	}
	if n > MaxCount {
		return MaxCount
	}
	return n
}

// DefaultSelection は、入力ウィジェットの初期値で埋めた選択を返します。
// 単一日付は今日、期間は今月1日から今日、ランダムは1件です。
func DefaultSelection(mode model.QueryMode, now time.Time) model.Selection {
	today := truncateDay(now)
	return model.Selection{
		Mode:      mode,
		Date:      today,
		StartDate: time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()),
		EndDate:   today,
		Count:     DefaultCount,
	}
}

// ParseSelection は、フォーム/クエリの値(mode, date, start_date, end_date, count)を選択に変換します。
// 解析できない値は、日付ピッカーと同じく既定値に置き換えます。
func ParseSelection(values url.Values, now time.Time) model.Selection {
	sel := DefaultSelection(model.ParseQueryMode(values.Get("mode")), now)

	if d, ok := parseDate(values.Get("date"), now.Location()); ok {
		sel.Date = d
	}
	if d, ok := parseDate(values.Get("start_date"), now.Location()); ok {
		sel.StartDate = d
	}
	if d, ok := parseDate(values.Get("end_date"), now.Location()); ok {
		sel.EndDate = d
	}
	if raw := strings.TrimSpace(values.Get("count")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			sel.Count = ClampCount(n)
		}
	}
	return sel
}

func parseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
