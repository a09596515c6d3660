package docx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

	relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

	documentHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	documentFooter = `<w:sectPr><w:bidi/></w:sectPr></w:body></w:document>`
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// blockTags 遇到这些元素时结束当前段落，元素内容另起段落。
var blockTags = map[string]bool{
	"p": true, "div": true, "blockquote": true, "pre": true, "li": true,
	"ul": true, "ol": true, "table": true, "thead": true, "tbody": true, "tr": true,
	"td": true, "th": true, "section": true, "article": true, "header": true,
	"footer": true, "figure": true, "figcaption": true, "hr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// run 段落中的一段文字；br 为 true 时表示换行。
type run struct {
	text string
	bold bool
	br   bool
}

// Export 将标题和 HTML 正文写为从右到左排版的 .docx。
// 标题使用 Heading1 样式。正文中每个块级元素生成一个段落，
// 块之间的零散文字和行内元素合并为独立段落。
func Export(w io.Writer, title, content string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("解析 HTML 失败: %w", err)
	}

	var body strings.Builder
	body.WriteString(documentHeader)
	if t := strings.TrimSpace(title); t != "" {
		writeParagraph(&body, "Heading1", []run{{text: t}})
	}

	e := &exporter{b: &body}
	if bodyNode := doc.Find("body"); bodyNode.Length() > 0 {
		e.walk(bodyNode.Nodes[0], false)
		e.flush("")
	}
	body.WriteString(documentFooter)

	zw := zip.NewWriter(w)
	parts := []struct{ name, data string }{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{documentPart, body.String()},
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("写入 %s 失败: %w", p.name, err)
		}
		if _, err := io.WriteString(f, p.data); err != nil {
			return fmt.Errorf("写入 %s 失败: %w", p.name, err)
		}
	}
	return zw.Close()
}

// FileName 返回导出文件名，标题为空时使用 document。
func FileName(title string) string {
	name := strings.TrimSpace(title)
	if name == "" {
		name = "document"
	}
	name = strings.NewReplacer("/", "_", `\`, "_").Replace(name)
	return name + ".docx"
}

func paragraphStyle(tag string) string {
	switch tag {
	case "h1":
		return "Heading1"
	case "h2":
		return "Heading2"
	case "h3":
		return "Heading3"
	default:
		return ""
	}
}

// exporter 按文档顺序遍历 HTML，累积行内文字，遇到块边界时输出段落。
type exporter struct {
	b       *strings.Builder
	pending []run
}

func (e *exporter) walk(n *html.Node, bold bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if text := whitespaceRe.ReplaceAllString(c.Data, " "); text != "" {
				e.pending = append(e.pending, run{text: text, bold: bold})
			}
		case html.ElementNode:
			switch {
			case c.Data == "br":
				e.pending = append(e.pending, run{br: true})
			case c.Data == "script" || c.Data == "style":
				// 不输出
			case blockTags[c.Data]:
				e.flush("")
				e.walk(c, bold)
				e.flush(paragraphStyle(c.Data))
			default:
				e.walk(c, bold || c.Data == "b" || c.Data == "strong")
			}
		}
	}
}

// flush 把累积的文字写为一个段落，全为空白时丢弃。
func (e *exporter) flush(style string) {
	runs := trimRuns(e.pending)
	e.pending = nil
	if len(runs) > 0 {
		writeParagraph(e.b, style, runs)
	}
}

// trimRuns 去掉首尾的空白，丢弃只剩空白的结果。
func trimRuns(runs []run) []run {
	for len(runs) > 0 && !runs[0].br && strings.TrimSpace(runs[0].text) == "" {
		runs = runs[1:]
	}
	for len(runs) > 0 && !runs[len(runs)-1].br && strings.TrimSpace(runs[len(runs)-1].text) == "" {
		runs = runs[:len(runs)-1]
	}
	if len(runs) == 0 {
		return nil
	}
	runs[0].text = strings.TrimLeft(runs[0].text, " ")
	runs[len(runs)-1].text = strings.TrimRight(runs[len(runs)-1].text, " ")
	return runs
}

func writeParagraph(b *strings.Builder, style string, runs []run) {
	b.WriteString("<w:p><w:pPr>")
	if style != "" {
		fmt.Fprintf(b, `<w:pStyle w:val="%s"/>`, style)
	}
	b.WriteString("<w:bidi/></w:pPr>")
	for _, r := range runs {
		if r.br {
			b.WriteString("<w:r><w:br/></w:r>")
			continue
		}
		b.WriteString("<w:r><w:rPr>")
		if r.bold {
			b.WriteString("<w:b/>")
		}
		b.WriteString(`<w:rtl/></w:rPr><w:t xml:space="preserve">`)
		_ = xml.EscapeText(b, []byte(r.text))
		b.WriteString("</w:t></w:r>")
	}
	b.WriteString("</w:p>")
}
