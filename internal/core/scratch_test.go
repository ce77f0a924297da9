package core

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Orion Nebula", "Orion Nebula"},
		{"M31: Andromeda?", "M31： Andromeda？"},
		{"a/b\\c", "a／b＼c"},
		{"  ..tab\there..  ", "tabhere"},
		{"", "untitled"},
		{"...", "untitled"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFilename_LongTitleFitsNameLimit(t *testing.T) {
	title := strings.Repeat("Туманность Андромеды ", 30)

	got := SanitizeFilename(title)
	name := "image_" + got + ".png"

	if len(name) > 255 {
		t.Errorf("ファイル名が255バイトを超えています: %d", len(name))
	}
	if !utf8.ValidString(got) {
		t.Errorf("文字の途中で切り詰められています: %q", got)
	}
	if !strings.HasPrefix(title, got) {
		t.Errorf("タイトルの先頭が保たれていません: %q", got)
	}
	if _, err := writeScratch(t.TempDir(), ScratchPath(true, title), []byte("png")); err != nil {
		t.Errorf("長いタイトルのスクラッチファイルを書き出せませんでした: %v", err)
	}
}

func TestScratchPath(t *testing.T) {
	if got := ScratchPath(false, "Whatever"); got != "image.png" {
		t.Errorf("単一モード: %s", got)
	}
	if got := ScratchPath(true, "Crab Nebula"); got != "images/image_Crab Nebula.png" {
		t.Errorf("複数モード: %s", got)
	}
	if got := ScratchPath(true, "../../etc/passwd"); strings.Contains(got, "../") {
		t.Errorf("パス区切りが残っています: %s", got)
	}
}

func TestSessionStats(t *testing.T) {
	start := time.Now().Add(-90 * time.Minute)
	st := NewSessionStats(start)
	if st.Status().State != StateInitializing {
		t.Errorf("初期状態 = %s", st.Status().State)
	}
	st.MarkIdle()

	st.beginPass()
	st.recordDownload(1024 * 1024)
	st.recordItems(2)
	st.beginPass()
	st.recordFailure(errors.New("disk full"))

	status := st.Status()
	snap := status.Stats
	if snap.RenderPasses != 2 || snap.ItemsShown != 2 || snap.ImagesDownloaded != 1 || snap.Failures != 1 {
		t.Errorf("統計が期待値と異なります: %+v", snap)
	}
	if status.State != StateError || status.Detail != "disk full" {
		t.Errorf("状態が期待値と異なります: %s %q", status.State, status.Detail)
	}
	if !strings.Contains(status.SessionInfo, "起動: 1h30m") || !strings.Contains(status.SessionInfo, "1.0MB") {
		t.Errorf("SessionInfo = %s", status.SessionInfo)
	}
}
