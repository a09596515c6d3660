package desk

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// 去标签时在标签位置插入空格，避免相邻段落的词粘连
	textPolicy = func() *bluemonday.Policy {
		p := bluemonday.StrictPolicy()
		p.AddSpaceWhenStrippingTag(true)
		return p
	}()

	blockBreakRe = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|h[1-6]|li)>`)
	spaceRunRe   = regexp.MustCompile(`[ \t]+`)
	blankLinesRe = regexp.MustCompile(`\n\s*\n\s*\n`)
)

// defaultAuthor 未设置作者名时签名使用的称呼。
const defaultAuthor = "المحرر"

// WordCount 统计 HTML 正文的词数。
func WordCount(content string) int {
	text := html.UnescapeString(textPolicy.Sanitize(content))
	return len(strings.Fields(text))
}

// PlainText 将 HTML 转为纯文本，块级元素之间保留换行。
func PlainText(content string) string {
	withBreaks := blockBreakRe.ReplaceAllString(content, "\n")
	text := html.UnescapeString(bluemonday.StrictPolicy().Sanitize(withBreaks))
	return strings.TrimSpace(text)
}

// Sign 在稿件末尾追加编辑署名。
func (d *Desk) Sign(id string) (Article, error) {
	author := d.Settings().AuthorName
	if author == "" {
		author = defaultAuthor
	}
	sig := fmt.Sprintf(`<br><p dir="rtl" style="color:#1e40af; font-weight:bold; border-top:1px solid #ddd; padding-top:10px; margin-top:20px;">✍️ تحرير: %s</p>`,
		html.EscapeString(author))
	return d.update(id, func(a *Article) { a.Content += sig })
}

// CleanText 将正文整理为纯文本段落：合并连续空格，最多保留一个空行。
func (d *Desk) CleanText(id string) (Article, error) {
	return d.update(id, func(a *Article) { a.Content = cleanHTML(a.Content) })
}

func cleanHTML(content string) string {
	text := spaceRunRe.ReplaceAllString(PlainText(content), " ")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var b strings.Builder
	for _, para := range strings.Split(text, "\n\n") {
		lines := strings.Split(strings.TrimSpace(para), "\n")
		for i := range lines {
			lines[i] = html.EscapeString(strings.TrimSpace(lines[i]))
		}
		b.WriteString("<p>")
		b.WriteString(strings.Join(lines, "<br>"))
		b.WriteString("</p>")
	}
	return b.String()
}
