package rss

import (
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestRelayURL(t *testing.T) {
	r := NewRelay("https://api.allorigins.win/")
	got := r.URL("https://feeds.bbci.co.uk/arabic/rss.xml?x=1&y=2", time.UnixMilli(42))

	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("生成的地址无法解析: %v", err)
	}
	if u.Host != "api.allorigins.win" || u.Path != "/get" {
		t.Errorf("地址不匹配: %s", got)
	}
	if u.Query().Get("url") != "https://feeds.bbci.co.uk/arabic/rss.xml?x=1&y=2" {
		t.Errorf("url 参数应完整编码: %s", got)
	}
	if u.Query().Get("t") != "42" {
		t.Errorf("t 参数不匹配: %s", got)
	}
	if !strings.Contains(got, "?url=") || strings.Index(got, "url=") > strings.Index(got, "&t=") {
		t.Errorf("参数顺序应为 url 在前: %s", got)
	}
}

func TestDecodeEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr error
	}{
		{"ok", `{"contents":"<rss/>","status":{"http_code":200}}`, "<rss/>", nil},
		{"missing", `{"status":{}}`, "", ErrNoContents},
		{"null", `{"contents":null}`, "", ErrNoContents},
		{"empty", `{"contents":""}`, "", ErrNoContents},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeEnvelope(strings.NewReader(tc.body))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("contents = %q, want %q", got, tc.want)
			}
		})
	}

	if _, err := DecodeEnvelope(strings.NewReader("not json")); err == nil {
		t.Fatal("非 JSON 应返回错误")
	}
}
