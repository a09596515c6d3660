package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/iabetor/newsdesk/internal/desk"
	"github.com/iabetor/newsdesk/internal/telegram"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Test</title>
<item><title>First story</title><link>https://example.com/1</link></item>
<item><title>Second story</title><link>https://example.com/2</link></item>
</channel></rss>`

var createdRe = regexp.MustCompile(`已创建稿件 (\S+)`)

func writeConfig(t *testing.T, extra string) (path, dir string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "newsdesk.yaml")
	content := fmt.Sprintf("desk:\n  data_dir: %q\nlog:\n  level: error\n%s", dir, extra)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}
	return path, dir
}

func execute(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func mustExecute(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	out, err := execute(t, cfgPath, args...)
	if err != nil {
		t.Fatalf("%v 失败: %v\n%s", args, err, out)
	}
	return out
}

func createArticle(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	out := mustExecute(t, cfgPath, append([]string{"article", "new"}, args...)...)
	m := createdRe.FindStringSubmatch(out)
	if m == nil {
		t.Fatalf("输出中没有稿件 ID: %q", out)
	}
	return m[1]
}

func TestAgencyAndCategory(t *testing.T) {
	cfgPath, _ := writeConfig(t, "")

	out := mustExecute(t, cfgPath, "agency", "list")
	if !strings.Contains(out, "الوكالة المركزية") {
		t.Errorf("agency list 缺少内置机构: %q", out)
	}

	mustExecute(t, cfgPath, "category", "add", "--agency", "1", "سياسة")
	out = mustExecute(t, cfgPath, "category", "list", "--agency", "1")
	if !strings.Contains(out, "سياسة") || !strings.Contains(out, "أخبار عاجلة") {
		t.Errorf("category list 结果不对: %q", out)
	}

	if _, err := execute(t, cfgPath, "category", "add", "--agency", "nope", "x"); !errors.Is(err, desk.ErrNotFound) {
		t.Errorf("未知机构应返回 ErrNotFound，实际: %v", err)
	}
}

func TestArticleLifecycle(t *testing.T) {
	cfgPath, dir := writeConfig(t, "")

	if _, err := execute(t, cfgPath, "article", "new"); !errors.Is(err, desk.ErrNoCategory) {
		t.Fatalf("未指定分类应返回 ErrNoCategory，实际: %v", err)
	}

	id := createArticle(t, cfgPath, "--cat", "101", "--title", "تقرير")
	mustExecute(t, cfgPath, "article", "edit", id, "--content", "<p>كلمة أولى</p><p>ثانية</p>")
	mustExecute(t, cfgPath, "article", "sign", id)

	out := mustExecute(t, cfgPath, "article", "show", id)
	if !strings.Contains(out, "كلمة أولى") || !strings.Contains(out, "تحرير: المحرر") {
		t.Errorf("article show 结果不对: %q", out)
	}

	out = mustExecute(t, cfgPath, "article", "list", "--cat", "101")
	if !strings.Contains(out, id) {
		t.Errorf("article list 缺少稿件 %s: %q", id, out)
	}

	mustExecute(t, cfgPath, "article", "export-docx", id, "-o", dir)
	exported := filepath.Join(dir, "تقرير.docx")
	if _, err := os.Stat(exported); err != nil {
		t.Fatalf("导出文件不存在: %v", err)
	}

	out = mustExecute(t, cfgPath, "article", "import-docx", exported, "--cat", "201")
	if !strings.Contains(out, "تقرير") {
		t.Errorf("import-docx 输出不对: %q", out)
	}

	mustExecute(t, cfgPath, "article", "delete", id)
	if _, err := execute(t, cfgPath, "article", "show", id); !errors.Is(err, desk.ErrNotFound) {
		t.Errorf("删除后应返回 ErrNotFound，实际: %v", err)
	}
}

func TestFeedsFetchAndImport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeed))
	}))
	defer srv.Close()

	cfgPath, _ := writeConfig(t, fmt.Sprintf(`rss:
  relay_url: "-"
  sources:
    - id: "t1"
      name: "Test Feed"
      url: %q
`, srv.URL+"/feed.xml"))

	out := mustExecute(t, cfgPath, "feeds", "list")
	if !strings.Contains(out, "Test Feed") {
		t.Errorf("feeds list 缺少配置的订阅源: %q", out)
	}

	out = mustExecute(t, cfgPath, "feeds", "fetch")
	if !strings.Contains(out, "[Test Feed] First story • [Test Feed] Second story") {
		t.Errorf("feeds fetch 滚动条不对: %q", out)
	}

	out = mustExecute(t, cfgPath, "feeds", "fetch", "--source", "test")
	if !strings.Contains(out, "First story") {
		t.Errorf("feeds fetch --source 结果不对: %q", out)
	}
	if _, err := execute(t, cfgPath, "feeds", "fetch", "--source", "nope"); err == nil {
		t.Error("未知订阅源应返回错误")
	}

	out = mustExecute(t, cfgPath, "feeds", "latest")
	if !strings.Contains(out, "Second story") {
		t.Errorf("feeds latest 应返回已保存的结果: %q", out)
	}

	out = mustExecute(t, cfgPath, "article", "import-feed", "--cat", "101", "2")
	if !strings.Contains(out, "Second story") {
		t.Errorf("import-feed 输出不对: %q", out)
	}

	if _, err := execute(t, cfgPath, "article", "import-feed", "--cat", "101", "9"); err == nil {
		t.Error("序号越界应返回错误")
	}
}

func TestFeedsAddRemove(t *testing.T) {
	cfgPath, _ := writeConfig(t, "")

	mustExecute(t, cfgPath, "feeds", "add", "Local", "https://local.example/rss")
	if _, err := execute(t, cfgPath, "feeds", "add", "Again", "https://local.example/rss"); err == nil {
		t.Error("重复地址应返回错误")
	}
	out := mustExecute(t, cfgPath, "feeds", "list")
	if !strings.Contains(out, "Local") {
		t.Errorf("feeds list 缺少新订阅源: %q", out)
	}

	mustExecute(t, cfgPath, "feeds", "remove", "local")
	if _, err := execute(t, cfgPath, "feeds", "remove", "local"); err == nil {
		t.Error("删除不存在的订阅源应返回错误")
	}
}

func TestArticleSendNotConfigured(t *testing.T) {
	cfgPath, _ := writeConfig(t, "")
	id := createArticle(t, cfgPath, "--cat", "101")

	if _, err := execute(t, cfgPath, "article", "send", id); !errors.Is(err, telegram.ErrNotConfigured) {
		t.Errorf("未配置 Telegram 应返回 ErrNotConfigured，实际: %v", err)
	}
}

func TestArticleSend(t *testing.T) {
	var (
		mu   sync.Mutex
		path string
		body map[string]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		path = r.URL.Path
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	cfgPath, _ := writeConfig(t, fmt.Sprintf("telegram:\n  api_url: %q\n", srv.URL))
	mustExecute(t, cfgPath, "settings", "set", "--tg-token", "123:abc", "--tg-chat", "42")
	id := createArticle(t, cfgPath, "--cat", "101", "--title", "عاجل")
	mustExecute(t, cfgPath, "article", "send", id)

	mu.Lock()
	defer mu.Unlock()
	if path != "/bot123:abc/sendMessage" {
		t.Errorf("请求路径 = %q", path)
	}
	if body["chat_id"] != "42" || body["parse_mode"] != "Markdown" || !strings.HasPrefix(body["text"], "📢 *عاجل*") {
		t.Errorf("请求体不对: %v", body)
	}

	out := mustExecute(t, cfgPath, "chat", "log")
	if !strings.Contains(out, "تم إرسال المسودة: عاجل") {
		t.Errorf("chat log 缺少发送记录: %q", out)
	}
}

func TestChatSend(t *testing.T) {
	cfgPath, _ := writeConfig(t, "telegram:\n  ack_delay_ms: 5\n")

	out := mustExecute(t, cfgPath, "chat", "send", "وصلت", "إلى", "الموقع")
	if !strings.Contains(out, telegram.DefaultAckText) {
		t.Errorf("chat send 应输出自动回复: %q", out)
	}

	out = mustExecute(t, cfgPath, "chat", "log")
	if !strings.Contains(out, "وصلت إلى الموقع") || !strings.Contains(out, telegram.DefaultAckText) {
		t.Errorf("chat log 结果不对: %q", out)
	}
}

func TestSettings(t *testing.T) {
	cfgPath, _ := writeConfig(t, "")
	mustExecute(t, cfgPath, "settings", "set", "--author", "سارة", "--tg-token", "123456789")

	out := mustExecute(t, cfgPath, "settings", "show")
	if !strings.Contains(out, "سارة") || !strings.Contains(out, "****6789") || strings.Contains(out, "123456789") {
		t.Errorf("settings show 结果不对: %q", out)
	}
}
