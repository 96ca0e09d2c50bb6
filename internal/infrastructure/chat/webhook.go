package chat

import (
	"context"
	"fmt"
	"time"

	"sellerhub/internal/config"

	"github.com/go-resty/resty/v2"
)

// Client 向固定频道推送文本消息的 webhook 客户端
type Client struct {
	http    *resty.Client
	url     string
	channel string
}

type postMessage struct {
	Channel string `json:"channel,omitempty"`
	Text    string `json:"text"`
}

func NewClient(cfg *config.ChatConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
		url:     cfg.WebhookURL,
		channel: cfg.Channel,
	}
}

// Post 发送一条消息，非 2xx 视为失败
func (c *Client) Post(ctx context.Context, text string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(postMessage{Channel: c.channel, Text: text}).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("chat webhook 请求失败: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("chat webhook 返回 %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
