// Package model は、APODビューアの各層で共有されるデータ型を定義します。
package model

import (
	"time"
)

// MediaType は、アイテムが指すメディアの種類です。
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// ParseMediaType は、APIの media_type 文字列を MediaType に変換します。
// "video" 以外（空文字や "other" を含む）はすべて画像として扱います。
func ParseMediaType(s string) MediaType {
	if s == string(MediaVideo) {
		return MediaVideo
	}
	return MediaImage
}

// Item は、1件の「今日の天文写真」レコードを保持します。
type Item struct {
	Title       string
	Explanation string
	MediaURL    string
	MediaType   MediaType
	Author      string // 著作権表示。APIが返さない場合はロケールのプレースホルダ
	Date        string // YYYY-MM-DD (表示用、任意)
	HDURL       string // 高解像度画像URL (表示用、任意)

	// TitleIsPlaceholder と ExplanationIsPlaceholder は、APIが値を返さずロケールの既定文字列で埋めたことを表します。
	// 既に表示言語の文字列なので翻訳しません。
	TitleIsPlaceholder       bool
	ExplanationIsPlaceholder bool
}

// IsVideo は、アイテムが動画かどうかを返します。
func (it Item) IsVideo() bool {
	return it.MediaType == MediaVideo
}

// QueryMode は、ユーザーが選択したリクエストモードです。
type QueryMode string

const (
	ModeSingle QueryMode = "single"
	ModeRange  QueryMode = "range"
	ModeRandom QueryMode = "random"
)

// ParseQueryMode は、文字列をQueryModeに変換します。未知の値は ModeSingle になります。
func ParseQueryMode(s string) QueryMode {
	switch QueryMode(s) {
	case ModeRange:
		return ModeRange
	case ModeRandom:
		return ModeRandom
	default:
		return ModeSingle
	}
}

// Selection は、UIで選択されたモードとその入力値です。
// UIの操作ごとに作り直され、永続化されません。
type Selection struct {
	Mode      QueryMode
	Date      time.Time // ModeSingle
	StartDate time.Time // ModeRange
	EndDate   time.Time // ModeRange
	Count     int       // ModeRandom (1-10)
}

// Response は、データソースから返されたレスポンスの形状を表すタグ付きユニオンです。
// 実装は SingleResponse と ManyResponse のみです。
type Response interface {
	// Items は、形状に関係なくアイテムの列を返します。
	Items() []RawItem
	isResponse()
}

// SingleResponse は、単一オブジェクトのレスポンスです。
type SingleResponse struct {
	Item RawItem
}

// ManyResponse は、配列のレスポンスです。
type ManyResponse struct {
	List []RawItem
}

func (r SingleResponse) Items() []RawItem { return []RawItem{r.Item} }
func (r ManyResponse) Items() []RawItem   { return r.List }

func (SingleResponse) isResponse() {}
func (ManyResponse) isResponse()   {}

// RawItem は、APIのJSONレコードをそのまま保持します。
// 各フィールドはnilで「キーが存在しない」ことを表します。
type RawItem struct {
	Title       *string `json:"title,omitempty"`
	Explanation *string `json:"explanation,omitempty"`
	URL         *string `json:"url,omitempty"`
	MediaType   *string `json:"media_type,omitempty"`
	Copyright   *string `json:"copyright,omitempty"`
	Date        *string `json:"date,omitempty"`
	HDURL       *string `json:"hdurl,omitempty"`
}

// RenderedItem は、表示準備が完了したアイテムです。
type RenderedItem struct {
	Item
	// ScratchPath は、画像を書き出したスクラッチファイルのパス（スクラッチルートからの相対、スラッシュ区切り）。
	// 動画の場合は空です。
	ScratchPath string
}

// Placeholders は、APIがフィールドを返さなかった場合に表示するロケール依存の既定文字列です。
type Placeholders struct {
	Title       string
	Explanation string
	Author      string
}
