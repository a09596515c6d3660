// Package docx 在稿件 HTML 与 Word (.docx) 文件之间转换。
package docx

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"
)

// ErrNoDocument 压缩包中缺少 word/document.xml。
var ErrNoDocument = errors.New("docx 中缺少 word/document.xml")

const documentPart = "word/document.xml"

// Import 读取 .docx 并转换为 HTML。
// 段落输出为 <p>，Heading1-3 样式输出为 <h1>-<h3>，粗体文字输出为 <strong>。
func Import(r io.ReaderAt, size int64) (string, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("打开 docx 失败: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != documentPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("读取 %s 失败: %w", documentPart, err)
		}
		defer rc.Close()
		return convert(rc)
	}
	return "", ErrNoDocument
}

// convert 流式解析 document.xml。只按元素本地名匹配，忽略命名空间前缀。
func convert(r io.Reader) (string, error) {
	var (
		out    strings.Builder
		para   strings.Builder
		run    strings.Builder
		style  string
		inRun  bool
		inRPr  bool
		inText bool
		bold   bool
	)

	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("解析 %s 失败: %w", documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				para.Reset()
				style = ""
			case "pStyle":
				style = attr(t, "val")
			case "r":
				inRun = true
				bold = false
				run.Reset()
			case "rPr":
				inRPr = inRun
			case "b":
				if inRPr {
					v := attr(t, "val")
					bold = v != "0" && v != "false"
				}
			case "t":
				inText = inRun
			case "tab":
				if inRun {
					run.WriteString(" ")
				}
			case "br":
				if inRun {
					run.WriteString("<br>")
				}
			}

		case xml.CharData:
			if inText {
				run.WriteString(html.EscapeString(string(t)))
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "rPr":
				inRPr = false
			case "r":
				inRun = false
				if run.Len() == 0 {
					continue
				}
				if bold {
					para.WriteString("<strong>" + run.String() + "</strong>")
				} else {
					para.WriteString(run.String())
				}
			case "p":
				if para.Len() == 0 {
					continue
				}
				tag := blockTag(style)
				fmt.Fprintf(&out, "<%s>%s</%s>", tag, para.String(), tag)
			}
		}
	}
	return out.String(), nil
}

func attr(e xml.StartElement, local string) string {
	for _, a := range e.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// blockTag 将段落样式名映射为 HTML 标签，"Heading1" 与 "heading 1" 等写法都能识别。
func blockTag(style string) string {
	switch strings.ToLower(strings.ReplaceAll(style, " ", "")) {
	case "title", "heading1":
		return "h1"
	case "heading2":
		return "h2"
	case "heading3":
		return "h3"
	default:
		return "p"
	}
}
