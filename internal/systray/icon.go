package systray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"runtime"

	"GoApodViewer/internal/core"
)

const iconSize = 32

// stateColors は、状態ごとのアイコンの色です。
var stateColors = map[core.AppState]color.RGBA{
	core.StateInitializing: {0x9e, 0x9e, 0x9e, 0xff},
	core.StateIdle:         {0x1e, 0x88, 0xe5, 0xff},
	core.StateRendering:    {0xfb, 0xc0, 0x2d, 0xff},
	core.StateError:        {0xe5, 0x39, 0x35, 0xff},
}

// IconData は、状態に応じたトレイアイコンを返します。
// Windowsでは ICO 形式、それ以外では PNG 形式です。
func IconData(state core.AppState) []byte {
	pngData := renderPNG(state)
	if runtime.GOOS == "windows" {
		return wrapICO(pngData)
	}
	return pngData
}

// renderPNG は、夜空を背景に状態色の星(円)を描いたPNGを生成します。
func renderPNG(state core.AppState) []byte {
	fg, ok := stateColors[state]
	if !ok {
		fg = stateColors[core.StateInitializing]
	}
	bg := color.RGBA{0x0b, 0x10, 0x2a, 0xff}

	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	center := float64(iconSize-1) / 2
	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			dx, dy := float64(x)-center, float64(y)-center
			d2 := dx*dx + dy*dy
			switch {
			case d2 <= 8*8:
				img.SetRGBA(x, y, fg)
			case d2 <= 15*15:
				img.SetRGBA(x, y, bg)
			}
		}
	}

	var buf bytes.Buffer
	// メモリ上のエンコードなので失敗しない
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// wrapICO は、PNGデータを1枚だけ含むICOコンテナで包みます。
func wrapICO(pngData []byte) []byte {
	var buf bytes.Buffer
	// ICONDIR
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // reserved
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // type: icon
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // count
	// ICONDIRENTRY
	buf.WriteByte(iconSize)
	buf.WriteByte(iconSize)
	buf.WriteByte(0) // palette
	buf.WriteByte(0) // reserved
	binary.Write(&buf, binary.LittleEndian, uint16(1))  // planes
	binary.Write(&buf, binary.LittleEndian, uint16(32)) // bpp
	binary.Write(&buf, binary.LittleEndian, uint32(len(pngData)))
	binary.Write(&buf, binary.LittleEndian, uint32(6+16)) // offset
	buf.Write(pngData)
	return buf.Bytes()
}
