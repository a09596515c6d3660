// Package telegram 将稿件和消息发送给外勤记者所在的 Telegram 会话。
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultAPIURL Telegram Bot API 地址。
const DefaultAPIURL = "https://api.telegram.org"

// Client Telegram Bot API 客户端。
type Client struct {
	apiURL     string
	token      string
	httpClient *http.Client
}

// NewClient 创建客户端，apiURL 为空时使用官方地址。
func NewClient(apiURL, token string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		apiURL: strings.TrimSuffix(apiURL, "/"),
		token:  token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendMessage 调用 sendMessage。parseMode 可为空。
func (c *Client) SendMessage(ctx context.Context, chatID, text, parseMode string) error {
	data, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text, ParseMode: parseMode})
	if err != nil {
		return fmt.Errorf("序列化请求体失败: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.apiURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}

	var result apiResponse
	_ = json.Unmarshal(body, &result)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API 错误 (状态码 %d): %s", resp.StatusCode, describe(result, body))
	}
	if !result.OK {
		return fmt.Errorf("API 错误: %s", describe(result, body))
	}
	return nil
}

func describe(r apiResponse, body []byte) string {
	if r.Description != "" {
		return r.Description
	}
	return strings.TrimSpace(string(body))
}
