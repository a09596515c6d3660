package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iabetor/newsdesk/internal/desk"
	"github.com/iabetor/newsdesk/internal/logger"
	"github.com/iabetor/newsdesk/internal/storage"
)

// ErrNotConfigured 未设置 Bot Token 或会话 ID。
var ErrNotConfigured = errors.New("يرجى ضبط إعدادات تلغرام أولاً")

// ErrEmptyMessage 消息内容为空。
var ErrEmptyMessage = errors.New("消息内容不能为空")

const (
	// DefaultAckText 外勤记者的自动回复。
	DefaultAckText  = "تم الاستلام، سأقوم بالمتابعة."
	defaultAckDelay = 1500 * time.Millisecond
	untitled        = "بدون عنوان"
)

var tagRe = regexp.MustCompile(`<[^>]+>`)

// Sender 发送一条 Telegram 消息。
type Sender interface {
	SendMessage(ctx context.Context, chatID, text, parseMode string) error
}

// ChatMessage 会话记录中的一条消息。
type ChatMessage struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	FromMe    bool   `json:"fromMe"`
	Timestamp int64  `json:"timestamp"` // Unix 毫秒
}

// DispatcherConfig 调度器配置。
type DispatcherConfig struct {
	ChatID   string
	AckDelay time.Duration
	AckText  string
}

// Dispatcher 维护与外勤记者的会话记录并发送稿件。
type Dispatcher struct {
	mu       sync.Mutex
	kv       storage.KV
	sender   Sender
	cfg      DispatcherConfig
	messages []ChatMessage
	pending  sync.WaitGroup
	now      func() time.Time
}

// NewDispatcher 创建调度器并恢复会话记录。sender 为 nil 时无法发送稿件。
func NewDispatcher(kv storage.KV, sender Sender, cfg DispatcherConfig) *Dispatcher {
	if cfg.AckDelay <= 0 {
		cfg.AckDelay = defaultAckDelay
	}
	if cfg.AckText == "" {
		cfg.AckText = DefaultAckText
	}
	cfg.ChatID = strings.TrimSpace(cfg.ChatID)

	d := &Dispatcher{kv: kv, sender: sender, cfg: cfg, now: time.Now}
	kv.Load(storage.KeyChat, &d.messages)
	return d
}

// SendArticle 把稿件发到会话，并在记录中追加一条发送提示。
// 记录先于网络请求写入，发送失败时记录保留。
func (d *Dispatcher) SendArticle(ctx context.Context, a desk.Article) error {
	if d.sender == nil || d.cfg.ChatID == "" {
		return ErrNotConfigured
	}

	d.append(fmt.Sprintf("تم إرسال المسودة: %s", a.Title), true)

	title := a.Title
	if title == "" {
		title = untitled
	}
	text := fmt.Sprintf("📢 *%s*\n\n%s", title, articleText(a.Content))
	if err := d.sender.SendMessage(ctx, d.cfg.ChatID, text, "Markdown"); err != nil {
		logger.Warnf("[telegram] 发送稿件 %s 失败: %v", a.ID, err)
		return fmt.Errorf("发送稿件失败: %w", err)
	}
	logger.Infof("[telegram] 稿件已发送: %s", a.ID)
	return nil
}

// SendChat 追加一条本方消息，并在延迟后追加自动回复。
func (d *Dispatcher) SendChat(text string) (ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ChatMessage{}, ErrEmptyMessage
	}
	msg := d.append(text, true)

	d.pending.Add(1)
	time.AfterFunc(d.cfg.AckDelay, func() {
		defer d.pending.Done()
		d.append(d.cfg.AckText, false)
	})
	return msg, nil
}

// Wait 等待已排期的自动回复全部写入。
func (d *Dispatcher) Wait() {
	d.pending.Wait()
}

// Messages 返回会话记录副本，按时间先后排列。
func (d *Dispatcher) Messages() []ChatMessage {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]ChatMessage(nil), d.messages...)
}

func (d *Dispatcher) append(text string, fromMe bool) ChatMessage {
	d.mu.Lock()
	defer d.mu.Unlock()
	msg := ChatMessage{
		ID:        uuid.NewString(),
		Text:      text,
		FromMe:    fromMe,
		Timestamp: d.now().UnixMilli(),
	}
	d.messages = append(d.messages, msg)
	d.kv.Save(storage.KeyChat, d.messages)
	return msg
}

// articleText 把每个标签替换为换行，得到可直接发送的正文。
func articleText(content string) string {
	return html.UnescapeString(tagRe.ReplaceAllString(content, "\n"))
}
