package core

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"
)

const (
	// SingleImageName は、単一日付モードで書き出すスクラッチファイル名です。
	SingleImageName = "image.png"
	// MultiImageDir は、複数アイテムモードの画像を置くサブディレクトリです。
	MultiImageDir = "images"
	// maxTitleBytes は、ファイル名に使うタイトルの最大バイト数です。
	// "image_" と ".png" を付けても一般的な上限の255バイトに収まります。
	maxTitleBytes = 200
)

var filenameReplacer = strings.NewReplacer(
	"/", "／",
	"\\", "＼",
	":", "：",
	"*", "＊",
	"?", "？",
	"\"", "”",
	"<", "＜",
	">", "＞",
	"|", "｜",
)

// SanitizeFilename は、ファイル名として使えない文字を全角文字に置き換えます。
// 制御文字は取り除き、maxTitleBytes を超える分は文字単位で切り詰め、先頭末尾の空白とドットは削ります。
func SanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, filenameReplacer.Replace(name))
	name = truncateBytes(strings.Trim(name, " ."), maxTitleBytes)
	name = strings.Trim(name, " .")
	if name == "" {
		return "untitled"
	}
	return name
}

// ScratchPath は、スクラッチルートからの相対パス(スラッシュ区切り)を返します。
// 単一モードは常に image.png、複数モードは images/image_<タイトル>.png です。
func ScratchPath(multi bool, title string) string {
	if !multi {
		return SingleImageName
	}
	return path.Join(MultiImageDir, "image_"+SanitizeFilename(title)+".png")
}

// writeScratch は、データをスクラッチファイルに書き出します。親ディレクトリが無ければ作成します。
// 既存のファイルは上書きされ、削除されることはありません。
func writeScratch(root, rel string, data []byte) (string, error) {
	dest := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("スクラッチディレクトリの作成に失敗しました (%s): %w", filepath.Dir(dest), err)
	}
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return "", fmt.Errorf("スクラッチファイルの書き込みに失敗しました (path=%s, size=%d bytes): %w", dest, len(data), err)
	}
	return dest, nil
}

// truncateBytes は、UTF-8の文字を分断せずに limit バイト以内へ切り詰めます。
func truncateBytes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := 0
	for i := range s {
		if i > limit {
			break
		}
		cut = i
	}
	return s[:cut]
}
