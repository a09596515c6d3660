// Package ticker 周期性刷新新闻滚动条。
package ticker

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/iabetor/newsdesk/internal/logger"
	"github.com/iabetor/newsdesk/internal/rss"
	"github.com/iabetor/newsdesk/internal/storage"
)

const defaultInterval = time.Minute

// FeedFetcher 抓取订阅源，由 rss.Aggregator 实现。
type FeedFetcher interface {
	FetchFeeds(ctx context.Context, sources []rss.Source) []rss.Item
}

// SourceLister 提供当前订阅源，由 rss.SourceStore 实现。
type SourceLister interface {
	List() []rss.Source
}

// Poller 启动时立即抓取一次，之后每隔 interval 抓取一次。
// 每轮结果整体替换上一轮；同一个 Poller 内的抓取是串行的。
type Poller struct {
	fetcher  FeedFetcher
	sources  SourceLister
	interval time.Duration
	kv       storage.KV // 可为 nil

	// OnUpdate 每轮抓取完成后调用，可为 nil。
	OnUpdate func(items []rss.Item)

	mu     sync.RWMutex
	latest []rss.Item
}

// NewPoller 创建轮询器。kv 非 nil 时会恢复并保存最近一轮结果。
func NewPoller(fetcher FeedFetcher, sources SourceLister, interval time.Duration, kv storage.KV) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	p := &Poller{
		fetcher:  fetcher,
		sources:  sources,
		interval: interval,
		kv:       kv,
	}
	if kv != nil {
		kv.Load(storage.KeyFeedItems, &p.latest)
	}
	return p
}

// Run 阻塞直到 ctx 取消。
func (p *Poller) Run(ctx context.Context) error {
	p.Poll(ctx)

	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			p.Poll(ctx)
		}
	}
}

// Poll 执行一轮抓取。没有订阅源时保持上一轮结果不变。
func (p *Poller) Poll(ctx context.Context) []rss.Item {
	sources := p.sources.List()
	if len(sources) == 0 {
		logger.Debug("[ticker] 没有订阅源，跳过本轮")
		return p.Latest()
	}

	items := p.fetcher.FetchFeeds(ctx, sources)
	logger.Debugf("[ticker] 本轮获取 %d 条（%d 个订阅源）", len(items), len(sources))

	p.mu.Lock()
	p.latest = append([]rss.Item(nil), items...)
	p.mu.Unlock()

	if p.kv != nil {
		p.kv.Save(storage.KeyFeedItems, items)
	}
	if p.OnUpdate != nil {
		p.OnUpdate(items)
	}
	return items
}

// Latest 返回最近一轮的结果副本。
func (p *Poller) Latest() []rss.Item {
	p.mu.RLock()
	defer p.mu.RUnlock()
	result := make([]rss.Item, len(p.latest))
	copy(result, p.latest)
	return result
}

// Format 渲染滚动条文本，形如 "[来源] 标题 • [来源] 标题"。
func Format(items []rss.Item) string {
	if len(items) == 0 {
		return "جاري تحميل الأخبار العالمية..."
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, "["+it.Source+"] "+it.Title)
	}
	return strings.Join(parts, " • ")
}
