package desk

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iabetor/newsdesk/internal/logger"
	"github.com/iabetor/newsdesk/internal/rss"
	"github.com/iabetor/newsdesk/internal/storage"
	"github.com/iabetor/newsdesk/internal/translate"
	"github.com/microcosm-cc/bluemonday"
)

const dateLayout = "2006/01/02"

// Desk 编辑台数据。每次修改后整体写回存储。
type Desk struct {
	mu         sync.RWMutex
	kv         storage.KV
	agencies   []Agency
	categories []Category
	articles   []Article // 新稿件在前
	settings   Settings

	translator translate.Translator
	targetLang string
	policy     *bluemonday.Policy
	now        func() time.Time
}

// New 从存储加载编辑台。seed 为 true 时，缺失的机构和分类使用内置数据。
func New(kv storage.KV, seed bool) *Desk {
	d := &Desk{
		kv:     kv,
		policy: bluemonday.UGCPolicy(),
		now:    time.Now,
	}
	if !kv.Load(storage.KeyAgencies, &d.agencies) && seed {
		d.agencies = append([]Agency(nil), InitialAgencies...)
		kv.Save(storage.KeyAgencies, d.agencies)
	}
	if !kv.Load(storage.KeyCategories, &d.categories) && seed {
		d.categories = append([]Category(nil), InitialCategories...)
		kv.Save(storage.KeyCategories, d.categories)
	}
	kv.Load(storage.KeyArticles, &d.articles)
	kv.Load(storage.KeySettings, &d.settings)
	return d
}

// SetTranslator 启用导入新闻时的标题翻译。
func (d *Desk) SetTranslator(tr translate.Translator, targetLang string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.translator = tr
	d.targetLang = targetLang
}

// Settings 返回当前设置。
func (d *Desk) Settings() Settings {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.settings
}

// UpdateSettings 保存设置。
func (d *Desk) UpdateSettings(s Settings) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s.AuthorName = strings.TrimSpace(s.AuthorName)
	s.TGToken = strings.TrimSpace(s.TGToken)
	s.TGChatID = strings.TrimSpace(s.TGChatID)
	d.settings = s
	d.kv.Save(storage.KeySettings, d.settings)
}

// Agencies 列出所有机构。
func (d *Desk) Agencies() []Agency {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Agency(nil), d.agencies...)
}

// AddAgency 添加机构。
func (d *Desk) AddAgency(name string) (Agency, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Agency{}, ErrEmptyName
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	a := Agency{ID: uuid.NewString(), Name: name}
	d.agencies = append(d.agencies, a)
	d.kv.Save(storage.KeyAgencies, d.agencies)
	return a, nil
}

// Categories 列出机构下的分类；agencyID 为空时返回全部。
func (d *Desk) Categories(agencyID string) []Category {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var result []Category
	for _, c := range d.categories {
		if agencyID == "" || c.AgencyID == agencyID {
			result = append(result, c)
		}
	}
	return result
}

// AddCategory 在机构下添加分类。
func (d *Desk) AddCategory(agencyID, name string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, ErrEmptyName
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.hasAgency(agencyID) {
		return Category{}, fmt.Errorf("机构 %s: %w", agencyID, ErrNotFound)
	}
	c := Category{ID: uuid.NewString(), AgencyID: agencyID, Name: name}
	d.categories = append(d.categories, c)
	d.kv.Save(storage.KeyCategories, d.categories)
	return c, nil
}

// Articles 列出分类下的稿件，新稿件在前；catID 为空时返回全部。
func (d *Desk) Articles(catID string) []Article {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var result []Article
	for _, a := range d.articles {
		if catID == "" || a.CatID == catID {
			result = append(result, a)
		}
	}
	return result
}

// Article 按 ID 获取稿件。
func (d *Desk) Article(id string) (Article, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i := d.articleIndex(id); i >= 0 {
		return d.articles[i], nil
	}
	return Article{}, fmt.Errorf("稿件 %s: %w", id, ErrNotFound)
}

// CreateArticle 在分类下新建空白草稿。
func (d *Desk) CreateArticle(catID string) (Article, error) {
	return d.addArticle(catID, "", "")
}

// ImportFeedItem 将滚动条中的新闻导入为草稿。
func (d *Desk) ImportFeedItem(ctx context.Context, catID string, item rss.Item) (Article, error) {
	title := item.Title
	d.mu.RLock()
	tr, lang := d.translator, d.targetLang
	d.mu.RUnlock()
	if tr != nil {
		if translated, err := tr.Translate(ctx, title, lang); err != nil {
			logger.Warnf("[desk] 翻译标题失败，保留原标题: %v", err)
		} else if translated = strings.TrimSpace(translated); translated != "" {
			title = translated
		}
	}

	content := fmt.Sprintf("<p><b>المصدر: %s</b></p><br/><p>جاري تحرير الخبر...</p>", html.EscapeString(item.Source))
	return d.addArticle(catID, title, content)
}

// ImportDocument 将转换后的文档 HTML 导入为草稿，内容经过清洗。
func (d *Desk) ImportDocument(catID, title, content string) (Article, error) {
	return d.addArticle(catID, strings.TrimSpace(title), d.policy.Sanitize(content))
}

func (d *Desk) addArticle(catID, title, content string) (Article, error) {
	if catID == "" {
		return Article{}, ErrNoCategory
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	cat, ok := d.category(catID)
	if !ok {
		return Article{}, fmt.Errorf("分类 %s: %w", catID, ErrNotFound)
	}

	now := d.now()
	a := Article{
		ID:           uuid.NewString(),
		CatID:        cat.ID,
		AgencyID:     cat.AgencyID,
		Title:        title,
		Content:      content,
		Date:         now.Format(dateLayout),
		LastModified: now.UnixMilli(),
	}
	d.articles = append([]Article{a}, d.articles...)
	d.kv.Save(storage.KeyArticles, d.articles)
	return a, nil
}

// SetTitle 修改稿件标题。
func (d *Desk) SetTitle(id, title string) (Article, error) {
	return d.update(id, func(a *Article) { a.Title = title })
}

// SetContent 修改稿件正文。
func (d *Desk) SetContent(id, content string) (Article, error) {
	return d.update(id, func(a *Article) { a.Content = content })
}

func (d *Desk) update(id string, fn func(a *Article)) (Article, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.articleIndex(id)
	if i < 0 {
		return Article{}, fmt.Errorf("稿件 %s: %w", id, ErrNotFound)
	}
	fn(&d.articles[i])
	d.articles[i].LastModified = d.now().UnixMilli()
	d.kv.Save(storage.KeyArticles, d.articles)
	return d.articles[i], nil
}

// DeleteArticle 删除稿件。
func (d *Desk) DeleteArticle(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.articleIndex(id)
	if i < 0 {
		return fmt.Errorf("稿件 %s: %w", id, ErrNotFound)
	}
	d.articles = append(d.articles[:i], d.articles[i+1:]...)
	d.kv.Save(storage.KeyArticles, d.articles)
	return nil
}

func (d *Desk) hasAgency(id string) bool {
	for _, a := range d.agencies {
		if a.ID == id {
			return true
		}
	}
	return false
}

func (d *Desk) category(id string) (Category, bool) {
	for _, c := range d.categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

func (d *Desk) articleIndex(id string) int {
	for i := range d.articles {
		if d.articles[i].ID == id {
			return i
		}
	}
	return -1
}
