package apod

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"GoApodViewer/internal/config"
	"GoApodViewer/internal/model"
	"GoApodViewer/internal/network"
)

var testPlaceholders = model.Placeholders{
	Title:       "NASA Astronomy Picture of the Day",
	Explanation: "Explanation",
	Author:      "Author",
}

func newServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func newClient() *Client {
	return NewClient(network.NewClient(config.NetworkSettings{RequestTimeoutMillis: 2000}))
}

func TestFetch_SingleObject(t *testing.T) {
	// 1. Arrange (準備)
	server := newServer(t, http.StatusOK, `{"title":"T","explanation":"One. Two.","url":"http://x/img.jpg","media_type":"image","copyright":"Someone"}`)

	// 2. Act (実行)
	resp, err := newClient().Fetch(context.Background(), server.URL)

	// 3. Assert (検証)
	if err != nil {
		t.Fatalf("Fetchで予期せぬエラーが発生しました: %v", err)
	}
	single, ok := resp.(model.SingleResponse)
	if !ok {
		t.Fatalf("SingleResponse が期待されましたが %T でした", resp)
	}
	items := Normalize(single, testPlaceholders)
	if len(items) != 1 {
		t.Fatalf("アイテム数 = %d", len(items))
	}
	if items[0].Title != "T" || items[0].Explanation != "One. Two." || items[0].Author != "Someone" {
		t.Errorf("アイテムが期待値と異なります: %+v", items[0])
	}
}

func TestFetch_ArrayYieldsNItems(t *testing.T) {
	server := newServer(t, http.StatusOK, `[{"title":"A"},{"title":"B"},{"title":"C"}]`)

	resp, err := newClient().Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := resp.(model.ManyResponse); !ok {
		t.Fatalf("ManyResponse が期待されましたが %T でした", resp)
	}
	items := Normalize(resp, testPlaceholders)
	if len(items) != 3 {
		t.Fatalf("アイテム数 = %d, want 3", len(items))
	}
	for i, want := range []string{"A", "B", "C"} {
		if items[i].Title != want {
			t.Errorf("items[%d].Title = %s", i, items[i].Title)
		}
	}
}

func TestFetch_Non200IsHTTPError(t *testing.T) {
	server := newServer(t, http.StatusBadRequest, `{"code":400,"msg":"Date must be between Jun 16, 1995 and today."}`)

	_, err := newClient().Fetch(context.Background(), server.URL)

	var httpErr *network.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("*network.HTTPError が期待されましたが %v でした", err)
	}
	if httpErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d", httpErr.StatusCode)
	}
}

func TestDecode_UnexpectedShape(t *testing.T) {
	for _, body := range []string{"", "   ", `"text"`, "42"} {
		if _, err := Decode([]byte(body)); !errors.Is(err, ErrUnexpectedShape) {
			t.Errorf("Decode(%q): ErrUnexpectedShape が期待されました: %v", body, err)
		}
	}
}

func TestNormalize_MissingFieldsUsePlaceholders(t *testing.T) {
	resp, err := Decode([]byte(`{}`))
	if err != nil {
		t.Fatal(err)
	}

	item := Normalize(resp, testPlaceholders)[0]

	if item.Title != testPlaceholders.Title {
		t.Errorf("Title = %s", item.Title)
	}
	if item.Explanation != testPlaceholders.Explanation {
		t.Errorf("Explanation = %s", item.Explanation)
	}
	if item.Author != testPlaceholders.Author {
		t.Errorf("Author = %s", item.Author)
	}
	if item.MediaType != model.MediaImage {
		t.Errorf("MediaType = %s", item.MediaType)
	}
	if item.MediaURL != "" {
		t.Errorf("MediaURL = %s", item.MediaURL)
	}
	if !item.TitleIsPlaceholder || !item.ExplanationIsPlaceholder {
		t.Errorf("プレースホルダのフラグが立っていません: %+v", item)
	}
	present := Normalize(model.SingleResponse{Item: model.RawItem{Title: new(string)}}, testPlaceholders)[0]
	if present.TitleIsPlaceholder {
		t.Error("空文字のタイトルはAPIの値として扱うべきです")
	}
}

func TestNormalize_MediaTypes(t *testing.T) {
	resp, err := Decode([]byte(`[{"media_type":"video","url":"https://www.youtube.com/embed/x"},{"media_type":"other"}]`))
	if err != nil {
		t.Fatal(err)
	}

	items := Normalize(resp, testPlaceholders)

	if !items[0].IsVideo() {
		t.Error("video が動画として扱われていません")
	}
	if items[1].IsVideo() {
		t.Error("other は画像として扱われるべきです")
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Plain sentence.", "Plain sentence."},
		{`See <a href="ap240101.html">yesterday's picture</a>.`, "See yesterday's picture."},
		{"<p>Stars &amp; galaxies</p>", "Stars & galaxies"},
		// タグが無ければ比較記号や実体参照、連続した空白もそのまま
		{"AT&T built it.  Then a<b happened.", "AT&T built it.  Then a<b happened."},
		{"Sun &amp; Moon.  Two.", "Sun &amp; Moon.  Two."},
		{"If x < 3 and y > 5 then z.", "If x < 3 and y > 5 then z."},
	}
	for _, tt := range tests {
		if got := PlainText(tt.in); got != tt.want {
			t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
