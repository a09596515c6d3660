// Package rss 汇总多个 RSS/Atom 订阅源，供新闻滚动条和一键导入使用。
package rss

// Source 订阅源。
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Item 单条新闻。Source 为订阅源的显示名称而非 Feed 自身的标题。
// 每次抓取都会生成新的 Item，不做去重。
type Item struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	Link   string `json:"link,omitempty"`
}
