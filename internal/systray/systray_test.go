package systray

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"strings"
	"testing"

	"GoApodViewer/internal/core"
)

func TestRenderPNG(t *testing.T) {
	data := renderPNG(core.StateIdle)

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("PNGのデコードに失敗しました: %v", err)
	}
	if b := img.Bounds(); b.Dx() != iconSize || b.Dy() != iconSize {
		t.Errorf("アイコンのサイズ = %v", b)
	}
	r, g, b, _ := img.At(iconSize/2, iconSize/2).RGBA()
	want := stateColors[core.StateIdle]
	if uint8(r>>8) != want.R || uint8(g>>8) != want.G || uint8(b>>8) != want.B {
		t.Errorf("中心の色が状態色ではありません: %d %d %d", r>>8, g>>8, b>>8)
	}
}

func TestWrapICO(t *testing.T) {
	pngData := renderPNG(core.StateError)

	ico := wrapICO(pngData)

	if binary.LittleEndian.Uint16(ico[2:4]) != 1 || binary.LittleEndian.Uint16(ico[4:6]) != 1 {
		t.Errorf("ICONDIR ヘッダーが不正です: % x", ico[:6])
	}
	if size := binary.LittleEndian.Uint32(ico[14:18]); int(size) != len(pngData) {
		t.Errorf("画像サイズ = %d, want %d", size, len(pngData))
	}
	if !bytes.Equal(ico[22:], pngData) {
		t.Error("PNGデータがオフセット22から始まっていません")
	}
}

func TestTooltip(t *testing.T) {
	got := tooltip(core.AppStatus{StateText: "エラー", Detail: "disk full"})
	if !strings.Contains(got, "エラー") || !strings.Contains(got, "disk full") {
		t.Errorf("tooltip = %s", got)
	}
	if got := tooltip(core.AppStatus{StateText: "待機中"}); got != "APOD Viewer: 待機中" {
		t.Errorf("tooltip = %s", got)
	}
}
