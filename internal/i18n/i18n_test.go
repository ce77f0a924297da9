package i18n

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func mustLoad(t *testing.T, override string) *Catalog {
	t.Helper()
	c, err := Load(override, "en")
	if err != nil {
		t.Fatalf("Loadで予期せぬエラーが発生しました: %v", err)
	}
	return c
}

func TestLoad_EmbeddedTablesAreComplete(t *testing.T) {
	c := mustLoad(t, "")

	langs := c.Languages()
	if len(langs) != 2 || langs[0] != "en" || langs[1] != "ru" {
		t.Fatalf("Languages = %v", langs)
	}
	for _, code := range langs {
		l := c.Labels(code)
		fields := map[string]string{
			"select_language":  l.SelectLanguage,
			"header":           l.Header,
			"select_mode":      l.SelectMode,
			"single_image":     l.SingleImage,
			"date_range":       l.DateRange,
			"random_images":    l.RandomImages,
			"select_date":      l.SelectDate,
			"start_date":       l.StartDate,
			"end_date":         l.EndDate,
			"image_warning":    l.ImageWarning,
			"number_of_images": l.NumberOfImages,
			"api_error":        l.APIError,
			"explanation":      l.Explanation,
			"author":           l.Author,
			"request_link":     l.RequestLink,
			"show":             l.Show,
			"render_error":     l.RenderError,
		}
		for key, v := range fields {
			if v == "" {
				t.Errorf("%s: キー %s が空です", code, key)
			}
		}
	}
}

func TestLabels_Placeholders(t *testing.T) {
	c := mustLoad(t, "")

	p := c.Labels("ru").Placeholders()
	if p.Title != c.Labels("ru").Header {
		t.Errorf("タイトルのプレースホルダは header であるべきです: %s", p.Title)
	}
	if p.Author != "Автор" {
		t.Errorf("Author = %s", p.Author)
	}
}

func TestLabels_UnknownFallsBack(t *testing.T) {
	c := mustLoad(t, "")

	if c.Labels("de").Header != c.Labels("en").Header {
		t.Error("未知の言語は既定言語にフォールバックするべきです")
	}
	if _, err := c.Lookup("de"); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("ErrUnsupportedLanguage が期待されました: %v", err)
	}
	if !c.Supports("RU") {
		t.Error("大文字の言語コードも受け付けるべきです")
	}
}

func TestNegotiate(t *testing.T) {
	c := mustLoad(t, "")

	tests := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"ru-RU,ru;q=0.9,en;q=0.8", "ru"},
		{"en-GB,en;q=0.9", "en"},
		{"fr-FR", "en"},
		{"!!invalid!!", "en"},
	}
	for _, tt := range tests {
		if got := c.Negotiate(tt.header); got != tt.want {
			t.Errorf("Negotiate(%q) = %s, want %s", tt.header, got, tt.want)
		}
	}
}

func TestLoad_OverrideFile(t *testing.T) {
	// 1. Arrange (準備) - translations.json 形式の上書きファイル
	dir := t.TempDir()
	path := filepath.Join(dir, "translations.json")
	data := `{
  "ru": {"header": "Картинка дня"},
  "de": {"header": "Astronomiebild des Tages", "author": "Autor"}
}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	// 2. Act (実行)
	c := mustLoad(t, path)

	// 3. Assert (検証)
	if c.Labels("ru").Header != "Картинка дня" {
		t.Errorf("ru.header が上書きされていません: %s", c.Labels("ru").Header)
	}
	if c.Labels("ru").Author != "Автор" {
		t.Errorf("上書きされていないキーは組み込みの値が残るべきです: %s", c.Labels("ru").Author)
	}
	if !c.Supports("de") {
		t.Fatal("新しい言語 de が追加されていません")
	}
	if c.Labels("de").Show != c.Labels("en").Show {
		t.Errorf("新しい言語の欠けたキーは英語で補われるべきです: %s", c.Labels("de").Show)
	}
}

func TestLoad_UnknownFallback(t *testing.T) {
	if _, err := Load("", "xx"); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("ErrUnsupportedLanguage が期待されました: %v", err)
	}
}
