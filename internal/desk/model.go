// Package desk 管理编辑台的机构、分类和稿件草稿。
package desk

import "errors"

var (
	// ErrNoCategory 未选择分类就创建或导入稿件。
	ErrNoCategory = errors.New("اختر تصنيفاً أولاً")
	// ErrNotFound 指定的机构、分类或稿件不存在。
	ErrNotFound = errors.New("غير موجود")
	// ErrEmptyName 机构或分类名称为空。
	ErrEmptyName = errors.New("الاسم مطلوب")
)

// Agency 新闻机构（侧边栏的顶层）。
type Agency struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Category 机构下的分类。
type Category struct {
	ID       string `json:"id"`
	AgencyID string `json:"agencyId"`
	Name     string `json:"name"`
}

// Article 稿件草稿，Content 为 HTML。
type Article struct {
	ID           string `json:"id"`
	CatID        string `json:"catId"`
	AgencyID     string `json:"agencyId"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	Date         string `json:"date"`
	LastModified int64  `json:"lastModified"` // Unix 毫秒
}

// Settings 编辑台设置。订阅源单独由 rss.SourceStore 保存。
type Settings struct {
	AuthorName string `json:"authorName"`
	TGToken    string `json:"tgToken"`
	TGChatID   string `json:"tgChatId"`
}

// 内置数据，首次启动时写入。
var (
	InitialAgencies = []Agency{
		{ID: "1", Name: "الوكالة المركزية"},
		{ID: "2", Name: "القسم الرياضي"},
	}
	InitialCategories = []Category{
		{ID: "101", AgencyID: "1", Name: "أخبار عاجلة"},
		{ID: "102", AgencyID: "1", Name: "تقارير ميدانية"},
		{ID: "201", AgencyID: "2", Name: "كرة القدم"},
	}
)
