package rss

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"
)

// Relay 跨域中转服务，形如 https://<host>/get?url=<订阅地址>&t=<时间戳>。
type Relay struct {
	base string
}

// NewRelay 创建中转地址构造器，base 不含 /get。
func NewRelay(base string) *Relay {
	return &Relay{base: strings.TrimRight(base, "/")}
}

// URL 返回包装后的请求地址，t 参数用于绕过中转缓存。
func (r *Relay) URL(sourceURL string, now time.Time) string {
	return fmt.Sprintf("%s/get?url=%s&t=%d", r.base, url.QueryEscape(sourceURL), now.UnixMilli())
}

type envelope struct {
	Contents *string `json:"contents"`
}

// DecodeEnvelope 从中转响应中取出 contents 字段。
func DecodeEnvelope(r io.Reader) (string, error) {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return "", fmt.Errorf("解析中转响应失败: %w", err)
	}
	if env.Contents == nil || *env.Contents == "" {
		return "", ErrNoContents
	}
	return *env.Contents, nil
}
