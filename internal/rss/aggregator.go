package rss

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iabetor/newsdesk/internal/logger"
	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
	"golang.org/x/sync/errgroup"
)

const (
	// MaxItemsPerSource 每个订阅源最多取的条目数。
	MaxItemsPerSource = 5
	// NoTitle 条目缺少标题时的占位文本。
	NoTitle = "No Title"

	defaultFetchTimeout = 10 * time.Second
	maxBodySize         = 10 << 20
	userAgent           = "Newsdesk/1.0 RSS Reader"
)

// ErrNoContents 中转服务的响应中没有 contents 字段。
var ErrNoContents = errors.New("中转服务未返回内容")

// Aggregator 并发抓取多个订阅源并合并结果。
// 不保存跨调用的状态，可以被并发调用。
type Aggregator struct {
	client *http.Client
	relay  *Relay // nil 表示直连
	now    func() time.Time
}

// NewAggregator 创建聚合器。relayURL 为空时直接抓取订阅源地址。
// timeout 是单个请求的传输超时，<=0 使用默认值。
func NewAggregator(relayURL string, timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	a := &Aggregator{
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
	}
	if relayURL != "" {
		a.relay = NewRelay(relayURL)
	}
	return a
}

// FetchFeeds 抓取所有订阅源，返回按订阅源顺序拼接的条目。
// 单个订阅源的任何失败只记录警告，该源贡献 0 条，不影响其他源。
func (a *Aggregator) FetchFeeds(ctx context.Context, sources []Source) []Item {
	if len(sources) == 0 {
		return nil
	}

	// 每个源写自己的槽位，汇合后按输入顺序拼接
	results := make([][]Item, len(sources))
	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() error {
			items, err := a.fetchSource(ctx, src)
			if err != nil {
				logger.Warnf("[rss] 获取 %s 失败: %v", src.Name, err)
				return nil
			}
			results[i] = items
			return nil
		})
	}
	_ = g.Wait()

	var all []Item
	for _, items := range results {
		all = append(all, items...)
	}
	return all
}

// fetchSource 处理单个订阅源，panic 也按失败处理。
func (a *Aggregator) fetchSource(ctx context.Context, src Source) (items []Item, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	doc, err := a.download(ctx, src.URL)
	if err != nil {
		return nil, err
	}

	// gofeed.Parser 内部有解析状态，不能跨 goroutine 共享
	feed, err := gofeed.NewParser().ParseString(doc)
	if err != nil {
		return nil, fmt.Errorf("解析订阅内容失败: %w", err)
	}
	return convertItems(feed, src.Name), nil
}

// download 获取原始订阅文档，经中转时解开 JSON 信封。
func (a *Aggregator) download(ctx context.Context, sourceURL string) (string, error) {
	target := sourceURL
	if a.relay != nil {
		target = a.relay.URL(sourceURL, a.now())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, maxBodySize)
	if a.relay != nil {
		return DecodeEnvelope(body)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("读取响应失败: %w", err)
	}
	return string(data), nil
}

// convertItems 取前 MaxItemsPerSource 条并规范化标题和链接。
func convertItems(feed *gofeed.Feed, sourceName string) []Item {
	n := min(len(feed.Items), MaxItemsPerSource)
	items := make([]Item, 0, n)
	for _, gItem := range feed.Items[:n] {
		title := strings.TrimSpace(gItem.Title)
		if title == "" {
			title = NoTitle
		}
		items = append(items, Item{
			Title:  title,
			Source: sourceName,
			Link:   itemLink(gItem),
		})
	}
	return items
}

// itemLink 依次尝试 link 文本、link 的 href、atom:link 的 href。
func itemLink(it *gofeed.Item) string {
	if l := strings.TrimSpace(it.Link); l != "" {
		return l
	}
	for _, l := range it.Links {
		if l = strings.TrimSpace(l); l != "" {
			return l
		}
	}
	return atomLinkHref(it.Extensions)
}

func atomLinkHref(exts ext.Extensions) string {
	for _, e := range exts["atom"]["link"] {
		if href := strings.TrimSpace(e.Attrs["href"]); href != "" {
			return href
		}
	}
	return ""
}
