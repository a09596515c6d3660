package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/iabetor/newsdesk/internal/desk"
	"github.com/iabetor/newsdesk/internal/docx"
	"github.com/iabetor/newsdesk/internal/output"
	"github.com/iabetor/newsdesk/internal/telegram"
	"github.com/spf13/cobra"
)

func newArticleCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "article",
		Aliases: []string{"a"},
		Short:   "管理稿件草稿",
	}
	cmd.AddCommand(
		newArticleNewCmd(c),
		newArticleListCmd(c),
		newArticleShowCmd(c),
		newArticleTitleCmd(c),
		newArticleEditCmd(c),
		newArticleDeleteCmd(c),
		newArticleSignCmd(c),
		newArticleCleanCmd(c),
		newArticleImportFeedCmd(c),
		newArticleImportDocxCmd(c),
		newArticleExportDocxCmd(c),
		newArticleSendCmd(c),
	)
	return cmd
}

func newArticleNewCmd(c *cli) *cobra.Command {
	var catID, title string
	cmd := &cobra.Command{
		Use:   "new",
		Short: "在分类下新建空白草稿",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			art, err := a.desk.CreateArticle(catID)
			if err != nil {
				return err
			}
			if title != "" {
				if art, err = a.desk.SetTitle(art.ID, title); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已创建稿件 %s\n", art.ID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&catID, "cat", "", "分类 ID")
	cmd.Flags().StringVar(&title, "title", "", "标题")
	return cmd
}

func newArticleListCmd(c *cli) *cobra.Command {
	var catID string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "列出稿件，新稿件在前",
		Args:    cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			table := output.NewTable(cmd.OutOrStdout(), "id", "category", "date", "words", "title")
			for _, art := range a.desk.Articles(catID) {
				table.AddRow(art.ID, art.CatID, art.Date, strconv.Itoa(desk.WordCount(art.Content)), art.Title)
			}
			return table.Render()
		}),
	}
	cmd.Flags().StringVar(&catID, "cat", "", "分类 ID（为空时列出全部）")
	return cmd
}

func newArticleShowCmd(c *cli) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "显示稿件",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			art, err := a.desk.Article(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n%s · %d كلمة\n\n", art.Title, art.Date, desk.WordCount(art.Content))
			if raw {
				fmt.Fprintln(out, art.Content)
			} else {
				fmt.Fprintln(out, desk.PlainText(art.Content))
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&raw, "html", false, "输出 HTML 原文")
	return cmd
}

func newArticleTitleCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "title <id> <title>",
		Short: "修改标题",
		Args:  cobra.ExactArgs(2),
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			if _, err := a.desk.SetTitle(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "标题已更新")
			return nil
		}),
	}
}

func newArticleEditCmd(c *cli) *cobra.Command {
	var content, file string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "替换正文（--content 或 --file，--file - 表示标准输入）",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			body, err := readContent(cmd, content, file)
			if err != nil {
				return err
			}
			art, err := a.desk.SetContent(args[0], body)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "正文已更新 (%d كلمة)\n", desk.WordCount(art.Content))
			return nil
		}),
	}
	cmd.Flags().StringVar(&content, "content", "", "HTML 正文")
	cmd.Flags().StringVar(&file, "file", "", "从文件读取 HTML 正文")
	cmd.MarkFlagsMutuallyExclusive("content", "file")
	cmd.MarkFlagsOneRequired("content", "file")
	return cmd
}

func readContent(cmd *cobra.Command, content, file string) (string, error) {
	switch file {
	case "":
		return content, nil
	case "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("读取标准输入失败: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("读取文件失败: %w", err)
		}
		return string(data), nil
	}
}

func newArticleDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "删除稿件",
		Args:    cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.desk.DeleteArticle(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "稿件已删除")
			return nil
		}),
	}
}

func newArticleSignCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "sign <id>",
		Short: "在正文末尾追加编辑署名",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			if _, err := a.desk.Sign(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "已添加署名")
			return nil
		}),
	}
}

func newArticleCleanCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "clean <id>",
		Short: "清理格式，只保留段落和换行",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			if _, err := a.desk.CleanText(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "格式已清理")
			return nil
		}),
	}
}

func newArticleImportFeedCmd(c *cli) *cobra.Command {
	var catID string
	var refresh bool
	cmd := &cobra.Command{
		Use:   "import-feed <n>",
		Short: "把滚动条中第 n 条新闻导入为草稿（序号见 feeds latest）",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			if catID == "" {
				return desk.ErrNoCategory
			}
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("无效的序号: %s", args[0])
			}

			p := a.poller()
			items := p.Latest()
			if refresh || len(items) == 0 {
				items = p.Poll(cmd.Context())
			}
			if n < 1 || n > len(items) {
				return fmt.Errorf("序号超出范围: %d（共 %d 条）", n, len(items))
			}

			art, err := a.desk.ImportFeedItem(cmd.Context(), catID, items[n-1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已导入稿件 %s: %s\n", art.ID, art.Title)
			return nil
		}),
	}
	cmd.Flags().StringVar(&catID, "cat", "", "分类 ID")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "导入前重新抓取")
	return cmd
}

func newArticleImportDocxCmd(c *cli) *cobra.Command {
	var catID string
	cmd := &cobra.Command{
		Use:   "import-docx <file.docx>",
		Short: "把 Word 文档导入为草稿，标题取自文件名",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			if catID == "" {
				return desk.ErrNoCategory
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("读取文件失败: %w", err)
			}
			content, err := docx.Import(bytes.NewReader(data), int64(len(data)))
			if err != nil {
				return err
			}

			title := strings.TrimSuffix(filepath.Base(args[0]), ".docx")
			art, err := a.desk.ImportDocument(catID, title, content)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已导入稿件 %s: %s\n", art.ID, art.Title)
			return nil
		}),
	}
	cmd.Flags().StringVar(&catID, "cat", "", "分类 ID")
	return cmd
}

func newArticleExportDocxCmd(c *cli) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "export-docx <id>",
		Short: "导出为 Word 文档",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			art, err := a.desk.Article(args[0])
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := docx.Export(&buf, art.Title, art.Content); err != nil {
				return err
			}
			path := filepath.Join(dir, docx.FileName(art.Title))
			if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
				return fmt.Errorf("写入文件失败: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已导出 %s\n", path)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&dir, "out", "o", ".", "输出目录")
	return cmd
}

func newArticleSendCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "send <id>",
		Short: "把稿件发送给外勤记者",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			art, err := a.desk.Article(args[0])
			if err != nil {
				return err
			}
			if err := a.dispatcher().SendArticle(cmd.Context(), art); err != nil {
				if errors.Is(err, telegram.ErrNotConfigured) {
					return fmt.Errorf("%w（settings set --tg-token --tg-chat）", err)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "تم الإرسال للمراسل")
			return nil
		}),
	}
}
