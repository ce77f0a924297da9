// Package i18n は、画面のラベルとプレースホルダ文字列を言語コードごとに管理します。
// 組み込みのYAMLテーブル(en, ru)に加えて、任意の上書きファイル(JSONまたはYAML)を読み込めます。
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"GoApodViewer/internal/model"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var embeddedLocales embed.FS

// ErrUnsupportedLanguage は、テーブルに存在しない言語が要求されたことを表します。
var ErrUnsupportedLanguage = errors.New("サポートされていない言語です")

// Labels は、1言語分のラベル表です。キーは translations.json と同じです。
type Labels struct {
	LanguageName   string `yaml:"language_name" json:"language_name"`
	SelectLanguage string `yaml:"select_language" json:"select_language"`
	Header         string `yaml:"header" json:"header"`
	SelectMode     string `yaml:"select_mode" json:"select_mode"`
	SingleImage    string `yaml:"single_image" json:"single_image"`
	DateRange      string `yaml:"date_range" json:"date_range"`
	RandomImages   string `yaml:"random_images" json:"random_images"`
	SelectDate     string `yaml:"select_date" json:"select_date"`
	StartDate      string `yaml:"start_date" json:"start_date"`
	EndDate        string `yaml:"end_date" json:"end_date"`
	ImageWarning   string `yaml:"image_warning" json:"image_warning"`
	NumberOfImages string `yaml:"number_of_images" json:"number_of_images"`
	APIError       string `yaml:"api_error" json:"api_error"`
	Explanation    string `yaml:"explanation" json:"explanation"`
	Author         string `yaml:"author" json:"author"`
	RequestLink    string `yaml:"request_link" json:"request_link"`
	Show           string `yaml:"show" json:"show"`
	RenderError    string `yaml:"render_error" json:"render_error"`
}

// Placeholders は、欠損フィールドの既定文字列を返します。
// タイトルには header、説明には explanation、著作権には author を使います。
func (l Labels) Placeholders() model.Placeholders {
	return model.Placeholders{
		Title:       l.Header,
		Explanation: l.Explanation,
		Author:      l.Author,
	}
}

// Catalog は、読み込み済みの全言語のラベル表です。読み込み後は読み取り専用です。
type Catalog struct {
	tables   map[string]Labels
	codes    []string
	fallback string
	matcher  language.Matcher
}

// Load は、組み込みのロケールを読み込み、overridePath が空でなければその内容で上書きします。
// fallback は未知の言語が要求されたときに使う言語コードです。
func Load(overridePath, fallback string) (*Catalog, error) {
	tables := make(map[string]Labels)

	entries, err := embeddedLocales.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("組み込みロケールの列挙に失敗しました: %w", err)
	}
	for _, e := range entries {
		data, err := embeddedLocales.ReadFile(path.Join("locales", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("組み込みロケール '%s' の読み込みに失敗しました: %w", e.Name(), err)
		}
		var labels Labels
		if err := yaml.Unmarshal(data, &labels); err != nil {
			return nil, fmt.Errorf("組み込みロケール '%s' の解析に失敗しました: %w", e.Name(), err)
		}
		tables[strings.TrimSuffix(e.Name(), path.Ext(e.Name()))] = labels
	}

	if overridePath != "" {
		data, err := os.ReadFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("ロケールファイル '%s' の読み込みに失敗しました: %w", overridePath, err)
		}
		if err := mergeOverrides(tables, data); err != nil {
			return nil, fmt.Errorf("ロケールファイル '%s' の解析に失敗しました: %w", overridePath, err)
		}
	}

	return newCatalog(tables, fallback)
}

// mergeOverrides は、{lang: {key: text}} 形式のデータを既存のテーブルに重ねます。
// JSONはYAMLの部分集合なので、どちらの形式もyamlで読み込めます。
// 上書きファイルに無いキーは組み込みの値(新しい言語の場合は英語)が残ります。
func mergeOverrides(tables map[string]Labels, data []byte) error {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	for code, node := range raw {
		code = strings.ToLower(strings.TrimSpace(code))
		labels, ok := tables[code]
		if !ok {
			labels = tables["en"]
		}
		if err := node.Decode(&labels); err != nil {
			return fmt.Errorf("言語 '%s': %w", code, err)
		}
		tables[code] = labels
	}
	return nil
}

func newCatalog(tables map[string]Labels, fallback string) (*Catalog, error) {
	if len(tables) == 0 {
		return nil, errors.New("ロケールが1つもありません")
	}
	fallback = strings.ToLower(fallback)
	if _, ok := tables[fallback]; !ok {
		return nil, fmt.Errorf("既定言語 '%s': %w", fallback, ErrUnsupportedLanguage)
	}

	codes := make([]string, 0, len(tables))
	for code := range tables {
		codes = append(codes, code)
	}
	// 既定言語を先頭に、残りはコード順
	sort.Slice(codes, func(i, j int) bool {
		if codes[i] == fallback || codes[j] == fallback {
			return codes[i] == fallback
		}
		return codes[i] < codes[j]
	})

	tags := make([]language.Tag, 0, len(codes))
	for _, code := range codes {
		tags = append(tags, language.Make(code))
	}

	return &Catalog{
		tables:   tables,
		codes:    codes,
		fallback: fallback,
		matcher:  language.NewMatcher(tags),
	}, nil
}

// Languages は、選択可能な言語コードを既定言語から順に返します。
func (c *Catalog) Languages() []string {
	out := make([]string, len(c.codes))
	copy(out, c.codes)
	return out
}

// Fallback は、既定の言語コードを返します。
func (c *Catalog) Fallback() string {
	return c.fallback
}

// Supports は、言語コードがテーブルに存在するかどうかを返します。
func (c *Catalog) Supports(code string) bool {
	_, ok := c.tables[strings.ToLower(code)]
	return ok
}

// Labels は、指定言語のラベル表を返します。未知の言語の場合は既定言語の表を返します。
func (c *Catalog) Labels(code string) Labels {
	if l, ok := c.tables[strings.ToLower(code)]; ok {
		return l
	}
	return c.tables[c.fallback]
}

// Lookup は、指定言語のラベル表を返します。未知の言語では ErrUnsupportedLanguage を返します。
func (c *Catalog) Lookup(code string) (Labels, error) {
	l, ok := c.tables[strings.ToLower(code)]
	if !ok {
		return Labels{}, fmt.Errorf("'%s': %w", code, ErrUnsupportedLanguage)
	}
	return l, nil
}

// Negotiate は、Accept-Language ヘッダーから最も適した言語コードを選びます。
// ヘッダーが空、または解析できない場合は既定言語を返します。
func (c *Catalog) Negotiate(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return c.fallback
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return c.fallback
	}
	_, index, confidence := c.matcher.Match(prefs...)
	if confidence == language.No {
		return c.fallback
	}
	return c.codes[index]
}
